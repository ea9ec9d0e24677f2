package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/marketpulse/pkg/domain"
)

// VoteRepository handles per-user votes
type VoteRepository struct {
	db *sqlx.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *sqlx.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast records the user's vote for an item and returns the item's tally after it.
// Like replaces dislike and the other way around, clear removes the user's vote.
// Returns ErrNotFound if the item is not stored.
func (r *VoteRepository) Cast(ctx context.Context, kind domain.Kind, id, user string, vote domain.Vote) (domain.Tally, error) {
	if !vote.Valid() {
		return domain.Tally{}, fmt.Errorf("cast vote: invalid vote %q", vote)
	}

	var tally domain.Tally
	err := withRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var exists bool
		if err := tx.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM items WHERE kind = ? AND id = ?)", string(kind), id); err != nil {
			return fmt.Errorf("check item exists: %w", err)
		}
		if !exists {
			return fmt.Errorf("item %s/%s: %w", kind, id, ErrNotFound)
		}

		if vote == domain.VoteClear {
			_, err = tx.ExecContext(ctx,
				"DELETE FROM votes WHERE kind = ? AND item_id = ? AND user_id = ?", string(kind), id, user)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO votes (kind, item_id, user_id, vote) VALUES (?, ?, ?, ?)
				ON CONFLICT(kind, item_id, user_id) DO UPDATE SET
					vote = excluded.vote,
					voted_at = CURRENT_TIMESTAMP
				WHERE votes.vote != excluded.vote`, string(kind), id, user, string(vote))
		}
		if err != nil {
			return fmt.Errorf("store vote: %w", err)
		}

		if tally, err = countVotes(ctx, tx, kind, id); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit vote: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Tally{}, err
	}
	return tally, nil
}

// Tally returns current vote counts of an item
func (r *VoteRepository) Tally(ctx context.Context, kind domain.Kind, id string) (domain.Tally, error) {
	return countVotes(ctx, r.db, kind, id)
}

func countVotes(ctx context.Context, q sqlx.QueryerContext, kind domain.Kind, id string) (domain.Tally, error) {
	var counts struct {
		Likes    int `db:"likes"`
		Dislikes int `db:"dislikes"`
	}
	err := sqlx.GetContext(ctx, q, &counts, `
		SELECT
			COALESCE(SUM(CASE WHEN vote = 'like' THEN 1 ELSE 0 END), 0) AS likes,
			COALESCE(SUM(CASE WHEN vote = 'dislike' THEN 1 ELSE 0 END), 0) AS dislikes
		FROM votes WHERE kind = ? AND item_id = ?`, string(kind), id)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("count votes: %w", err)
	}
	return domain.Tally{Likes: counts.Likes, Dislikes: counts.Dislikes}, nil
}
