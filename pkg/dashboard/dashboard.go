// Package dashboard aggregates the four votable collections and reconciles votes.
//
// Load fetches news, coins, insights and memes concurrently and commits them together or not
// at all. ApplyVote classifies an item, sends the vote to the authority and writes the returned
// tally back into the matching collection. Failures of either end up in a single error slot
// which only the next Load clears. After Close no result is committed.
package dashboard

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/marketpulse/pkg/classify"
	"github.com/umputun/marketpulse/pkg/domain"
)

//go:generate moq -out mocks/source.go -pkg mocks -skip-ensure -fmt goimports . Source

// Source is the remote data and vote authority
type Source interface {
	Fetch(ctx context.Context, kind domain.Kind, limit int) (json.RawMessage, error)
	Vote(ctx context.Context, kind domain.Kind, id string, vote domain.Vote) (json.RawMessage, error)
}

// fallback messages when a failure carries no detail
const (
	msgLoadFailed = "Failed to load data"
	msgVoteFailed = "Voting failed"
)

// Limits caps the number of items requested per collection
type Limits struct {
	News     int
	Coins    int
	Insights int
	Memes    int
}

// DefaultLimits are the caps used for zero Limits fields
var DefaultLimits = Limits{News: 8, Coins: 10, Insights: 3, Memes: 1}

// Opts defines dashboard parameters
type Opts struct {
	Limits Limits
}

// Dashboard owns the collections, loading flags and the error slot of one dashboard view
type Dashboard struct {
	source Source
	limits Limits

	mu      sync.Mutex
	store   Collections
	loading Loading
	errMsg  string
	gen     uint64 // incremented by each Load, older batches can't commit
	closed  bool
}

// New makes an empty dashboard with all collections marked as loading
func New(src Source, opts Opts) *Dashboard {
	return &Dashboard{
		source:  src,
		limits:  opts.Limits.withDefaults(),
		loading: Loading{News: true, Coins: true, Insights: true, Meme: true},
	}
}

// Load fetches all four collections concurrently and replaces them together.
// If any fetch fails nothing is replaced and the error slot is set.
// Loading flags are cleared once the batch settles either way.
func (d *Dashboard) Load(ctx context.Context) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.gen++
	gen := d.gen
	d.errMsg = ""
	d.loading = Loading{News: true, Coins: true, Insights: true, Meme: true}
	d.mu.Unlock()

	var batch Collections
	var memes []domain.Item
	g, gctx := errgroup.WithContext(ctx)
	d.fetch(gctx, g, domain.KindNews, d.limits.News, &batch.News)
	d.fetch(gctx, g, domain.KindCoin, d.limits.Coins, &batch.Coins)
	d.fetch(gctx, g, domain.KindInsight, d.limits.Insights, &batch.Insights)
	d.fetch(gctx, g, domain.KindMeme, d.limits.Memes, &memes)
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.activeLocked(gen) {
		lgr.Printf("[DEBUG] dashboard load %d discarded, dashboard closed or reloaded", gen)
		return
	}
	d.loading = Loading{}

	if err != nil {
		d.errMsg = errorMessage(err, msgLoadFailed, "message")
		lgr.Printf("[WARN] dashboard load failed, %v", err)
		return
	}

	if len(memes) > 0 {
		batch.Meme = &memes[0]
	}
	d.store = batch
	lgr.Printf("[DEBUG] dashboard loaded, news:%d, coins:%d, insights:%d, meme:%t",
		len(batch.News), len(batch.Coins), len(batch.Insights), batch.Meme != nil)
}

// fetch schedules one collection fetch, the source error is returned as is
func (d *Dashboard) fetch(ctx context.Context, g *errgroup.Group, kind domain.Kind, limit int, dst *[]domain.Item) {
	g.Go(func() error {
		raw, err := d.source.Fetch(ctx, kind, limit)
		if err != nil {
			lgr.Printf("[DEBUG] fetch %s failed, %v", kind, err)
			return err
		}
		*dst = decodeItems(kind, raw)
		return nil
	})
}

// ApplyVote sends the vote for the item and reconciles the returned tally.
// Items which can't be classified are ignored. On failure the collections stay as they are
// and the error slot is set.
func (d *Dashboard) ApplyVote(ctx context.Context, item domain.Item, vote domain.Vote) {
	kind := classify.Item(item)
	if kind == domain.KindUnknown {
		lgr.Printf("[DEBUG] vote %s ignored, item %q is not classifiable", vote, item.ID)
		return
	}
	if !vote.Valid() {
		lgr.Printf("[WARN] vote %q ignored for %s/%s, unknown action", vote, kind, item.ID)
		return
	}

	if !d.alive() {
		return
	}

	raw, err := d.source.Vote(ctx, kind, item.ID, vote)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		lgr.Printf("[DEBUG] vote result for %s/%s discarded, dashboard closed", kind, item.ID)
		return
	}
	if err != nil {
		d.errMsg = errorMessage(err, msgVoteFailed, "error", "message")
		lgr.Printf("[WARN] vote %s for %s/%s failed, %v", vote, kind, item.ID, err)
		return
	}

	tally := decodeTally(raw)
	if !d.store.reconcile(kind, item.ID, tally) {
		lgr.Printf("[DEBUG] %s/%s not in dashboard, tally %+v dropped", kind, item.ID, tally)
		return
	}
	lgr.Printf("[DEBUG] %s/%s voted %s, tally %+v", kind, item.ID, vote, tally)
}

// Close marks the dashboard as disposed. Requests in flight are not aborted,
// their results are dropped.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// State returns a snapshot of the collections, loading flags and the current error
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{Collections: d.store.clone(), Loading: d.loading, Error: d.errMsg}
}

// Find looks up an item by id across all collections
func (d *Dashboard) Find(id string) (domain.Item, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.find(id)
}

func (d *Dashboard) alive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed
}

// activeLocked reports whether a batch of the given generation may commit, mu must be held
func (d *Dashboard) activeLocked(gen uint64) bool {
	return !d.closed && gen == d.gen
}

func (l Limits) withDefaults() Limits {
	if l.News <= 0 {
		l.News = DefaultLimits.News
	}
	if l.Coins <= 0 {
		l.Coins = DefaultLimits.Coins
	}
	if l.Insights <= 0 {
		l.Insights = DefaultLimits.Insights
	}
	if l.Memes <= 0 {
		l.Memes = DefaultLimits.Memes
	}
	return l
}
