package feed

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/marketpulse/pkg/domain"
)

const maxSummaryLen = 280

// Fetcher fetches RSS/Atom feeds via HTTP and converts entries to news records
type Fetcher struct {
	parser    *gofeed.Parser
	sanitizer *bluemonday.Policy
	timeout   time.Duration
	now       func() time.Time
}

// NewFetcher creates a new feed fetcher
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{
		Timeout:   timeout,
		Transport: &headersTransport{next: http.DefaultTransport},
	}
	return &Fetcher{
		parser:    parser,
		sanitizer: bluemonday.StrictPolicy(),
		timeout:   timeout,
		now:       time.Now,
	}
}

// Fetch retrieves the feed and returns its entries as news records.
// Entries without a link are skipped, the dashboard can't show them as news.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Feed) ([]domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	source := src.Name
	if source == "" {
		source = parsed.Title
	}

	seen := make(map[string]bool, len(parsed.Items))
	recs := make([]domain.Record, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			lgr.Printf("[DEBUG] skip entry %q of %s, no link", item.Title, src.URL)
			continue
		}

		id := itemID(item.GUID, link)
		if seen[id] {
			continue
		}
		seen[id] = true

		published := f.now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		fields := map[string]any{
			"title":     f.clean(item.Title),
			"url":       link,
			"source":    source,
			"published": published.UTC().Format(time.RFC3339),
		}
		if summary := truncate(f.clean(item.Description), maxSummaryLen); summary != "" {
			fields["summary"] = summary
		}
		if len(src.Tickers) > 0 {
			fields["tickers"] = append([]string(nil), src.Tickers...)
		}

		recs = append(recs, domain.Record{ID: id, Kind: domain.KindNews, Fields: fields, Rank: published.Unix()})
	}

	return recs, nil
}

// clean strips all markup and collapses whitespace
func (f *Fetcher) clean(s string) string {
	s = html.UnescapeString(f.sanitizer.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// itemID makes a stable id from the entry guid, or from the link if there is no guid
func itemID(guid, link string) string {
	key := strings.TrimSpace(guid)
	if key == "" {
		key = link
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
