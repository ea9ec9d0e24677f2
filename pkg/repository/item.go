package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/marketpulse/pkg/domain"
)

// ItemRepository handles item-related database operations
type ItemRepository struct {
	db *sqlx.DB
}

// itemSQL represents an item for SQL operations
type itemSQL struct {
	Kind    string     `db:"kind"`
	ID      string     `db:"id"`
	Payload payloadSQL `db:"payload"`
	Rank    int64      `db:"rank"`
}

// voteSQL is a single stored vote
type voteSQL struct {
	ItemID string `db:"item_id"`
	UserID string `db:"user_id"`
	Vote   string `db:"vote"`
}

// payloadSQL is the JSON object of item fields for SQL operations
type payloadSQL map[string]any

// Value implements driver.Valuer for database storage
func (p payloadSQL) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval
func (p *payloadSQL) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*p = payloadSQL{}
		return nil
	}
	res := payloadSQL{}
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	*p = res
	return nil
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Upsert stores records of the given kind, existing items get new payload and rank.
// Votes of existing items are kept. Records without id are skipped.
func (r *ItemRepository) Upsert(ctx context.Context, kind domain.Kind, recs []domain.Record) error {
	if !kind.Valid() {
		return fmt.Errorf("upsert items: invalid kind %q", kind)
	}
	rows := make([]itemSQL, 0, len(recs))
	for _, rec := range recs {
		if rec.ID == "" {
			lgr.Printf("[WARN] skip %s item without id", kind)
			continue
		}
		rows = append(rows, itemSQL{Kind: string(kind), ID: rec.ID, Payload: rec.Fields, Rank: rec.Rank})
	}
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO items (kind, id, payload, rank)
		VALUES (:kind, :id, :payload, :rank)
		ON CONFLICT(kind, id) DO UPDATE SET
			payload = excluded.payload,
			rank = excluded.rank,
			updated_at = CURRENT_TIMESTAMP
	`
	return withRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
				return fmt.Errorf("upsert item %s/%s: %w", kind, row.ID, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit upsert: %w", err)
		}
		return nil
	})
}

// List returns up to limit items of the given kind, highest rank first, with their voters
func (r *ItemRepository) List(ctx context.Context, kind domain.Kind, limit int) ([]domain.Record, error) {
	var rows []itemSQL
	query := `
		SELECT kind, id, payload, rank FROM items
		WHERE kind = ?
		ORDER BY rank DESC, created_at DESC, id
		LIMIT ?
	`
	if err := r.db.SelectContext(ctx, &rows, query, string(kind), limit); err != nil {
		return nil, fmt.Errorf("list %s items: %w", kind, err)
	}
	if len(rows) == 0 {
		return []domain.Record{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	votes, err := r.voters(ctx, kind, ids)
	if err != nil {
		return nil, err
	}

	res := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		rec := domain.Record{ID: row.ID, Kind: kind, Fields: row.Payload, Rank: row.Rank}
		for _, v := range votes[row.ID] {
			switch domain.Vote(v.Vote) {
			case domain.VoteLike:
				rec.LikedBy = append(rec.LikedBy, v.UserID)
			case domain.VoteDislike:
				rec.DislikedBy = append(rec.DislikedBy, v.UserID)
			}
		}
		res = append(res, rec)
	}
	return res, nil
}

// Exists checks if an item is stored
func (r *ItemRepository) Exists(ctx context.Context, kind domain.Kind, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM items WHERE kind = ? AND id = ?)", string(kind), id)
	if err != nil {
		return false, fmt.Errorf("check item exists: %w", err)
	}
	return exists, nil
}

// Prune keeps the keep highest ranked items of the kind and deletes the rest with their votes
func (r *ItemRepository) Prune(ctx context.Context, kind domain.Kind, keep int) (int64, error) {
	keepIDs := `SELECT id FROM items WHERE kind = ? ORDER BY rank DESC, created_at DESC, id LIMIT ?`
	var deleted int64
	err := withRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err = tx.ExecContext(ctx, `DELETE FROM votes WHERE kind = ? AND item_id NOT IN (`+keepIDs+`)`,
			string(kind), string(kind), keep); err != nil {
			return fmt.Errorf("prune %s votes: %w", kind, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE kind = ? AND id NOT IN (`+keepIDs+`)`,
			string(kind), string(kind), keep)
		if err != nil {
			return fmt.Errorf("prune %s items: %w", kind, err)
		}
		if deleted, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("get affected rows: %w", err)
		}
		return tx.Commit()
	})
	return deleted, err
}

// voters loads votes of the given items grouped by item id, in voting order
func (r *ItemRepository) voters(ctx context.Context, kind domain.Kind, ids []string) (map[string][]voteSQL, error) {
	query, args, err := sqlx.In(`
		SELECT item_id, user_id, vote FROM votes
		WHERE kind = ? AND item_id IN (?)
		ORDER BY voted_at, user_id`, string(kind), ids)
	if err != nil {
		return nil, fmt.Errorf("build voters query: %w", err)
	}
	var rows []voteSQL
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load voters: %w", err)
	}
	res := make(map[string][]voteSQL, len(ids))
	for _, v := range rows {
		res[v.ItemID] = append(res[v.ItemID], v)
	}
	return res, nil
}
