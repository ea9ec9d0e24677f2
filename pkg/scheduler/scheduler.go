// Package scheduler ingests news items from the configured feeds on a fixed interval.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/marketpulse/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/item_store.go -pkg mocks -skip-ensure -fmt goimports . ItemStore

// Fetcher retrieves news records of a feed
type Fetcher interface {
	Fetch(ctx context.Context, feed domain.Feed) ([]domain.Record, error)
}

// ItemStore persists ingested records
type ItemStore interface {
	Upsert(ctx context.Context, kind domain.Kind, recs []domain.Record) error
	Prune(ctx context.Context, kind domain.Kind, keep int) (int64, error)
}

// Params defines scheduler dependencies and settings
type Params struct {
	Fetcher        Fetcher
	Store          ItemStore
	Feeds          []domain.Feed
	UpdateInterval time.Duration
	MaxWorkers     int
	KeepNews       int // news items retained after each update, 0 keeps all
}

// Stats describes a completed update
type Stats struct {
	Feeds   int       `json:"feeds"`
	Failed  int       `json:"failed"`
	Items   int       `json:"items"`
	Pruned  int64     `json:"pruned"`
	Updated time.Time `json:"updated"`
}

// Scheduler manages periodic feed updates
type Scheduler struct {
	fetcher        Fetcher
	store          ItemStore
	feeds          []domain.Feed
	updateInterval time.Duration
	maxWorkers     int
	keepNews       int

	wg     sync.WaitGroup
	cancel context.CancelFunc
	last   atomic.Pointer[Stats]
}

// NewScheduler creates a new scheduler instance
func NewScheduler(params Params) *Scheduler {
	if params.UpdateInterval <= 0 {
		params.UpdateInterval = 30 * time.Minute
	}
	if params.MaxWorkers <= 0 {
		params.MaxWorkers = 5
	}
	return &Scheduler{
		fetcher:        params.Fetcher,
		store:          params.Store,
		feeds:          params.Feeds,
		updateInterval: params.UpdateInterval,
		maxWorkers:     params.MaxWorkers,
		keepNews:       params.KeepNews,
	}
}

// Start runs an update immediately and then on every interval until Stop or ctx cancellation
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.feedUpdateWorker(ctx)

	lgr.Printf("[INFO] scheduler started with update interval %v, %d feeds", s.updateInterval, len(s.feeds))
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// LastUpdate returns stats of the most recent completed update, nil before the first one
func (s *Scheduler) LastUpdate() *Stats {
	return s.last.Load()
}

func (s *Scheduler) feedUpdateWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	// run immediately on start
	s.UpdateNow(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.UpdateNow(ctx)
		}
	}
}

// UpdateNow fetches all feeds concurrently and stores their items.
// A failing feed is logged and counted, other feeds are not affected.
func (s *Scheduler) UpdateNow(ctx context.Context) Stats {
	lgr.Printf("[INFO] updating %d feeds", len(s.feeds))

	var failed, items atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.maxWorkers)
	for _, f := range s.feeds {
		g.Go(func() error {
			n, err := s.updateFeed(ctx, f)
			if err != nil {
				failed.Add(1)
				lgr.Printf("[WARN] feed %s update failed: %v", f.URL, err)
				return nil
			}
			items.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	stats := Stats{Feeds: len(s.feeds), Failed: int(failed.Load()), Items: int(items.Load()), Updated: time.Now()}
	if s.keepNews > 0 && ctx.Err() == nil {
		pruned, err := s.store.Prune(ctx, domain.KindNews, s.keepNews)
		if err != nil {
			lgr.Printf("[WARN] failed to prune news: %v", err)
		}
		stats.Pruned = pruned
	}
	s.last.Store(&stats)

	lgr.Printf("[INFO] feed update completed, items:%d, failed feeds:%d, pruned:%d", stats.Items, stats.Failed, stats.Pruned)
	return stats
}

// updateFeed fetches a single feed and upserts its records
func (s *Scheduler) updateFeed(ctx context.Context, f domain.Feed) (int, error) {
	lgr.Printf("[DEBUG] updating feed: %s", f.URL)

	recs, err := s.fetcher.Fetch(ctx, f)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}
	if err := s.store.Upsert(ctx, domain.KindNews, recs); err != nil {
		return 0, err
	}
	lgr.Printf("[DEBUG] stored %d items from feed %s", len(recs), f.Name)
	return len(recs), nil
}
