package dashboard

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/marketpulse/pkg/classify"
	"github.com/umputun/marketpulse/pkg/domain"
)

// maxCount caps decoded tallies
const maxCount = math.MaxInt32

// decodeItems normalizes a collection payload. A JSON array is used as is, an object with an
// "items" array gives that array, anything else is an empty collection. Elements which are not
// objects are skipped, later duplicates of an id are dropped.
func decodeItems(kind domain.Kind, raw json.RawMessage) []domain.Item {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		lgr.Printf("[WARN] %s payload is not json, treated as empty, %v", kind, err)
		return []domain.Item{}
	}

	var elems []any
	switch v := payload.(type) {
	case []any:
		elems = v
	case map[string]any:
		elems, _ = v["items"].([]any)
	}

	res := make([]domain.Item, 0, len(elems))
	seen := make(map[string]bool, len(elems))
	for i, el := range elems {
		fields, ok := el.(map[string]any)
		if !ok {
			lgr.Printf("[DEBUG] %s element %d is not an object, skipped", kind, i)
			continue
		}
		it := domain.Item{ID: domain.IDOf(fields), Kind: classify.Kind(fields), Tally: fetchedTally(fields), Fields: fields}
		if it.ID != "" {
			if seen[it.ID] {
				lgr.Printf("[WARN] duplicate %s id %q, skipped", kind, it.ID)
				continue
			}
			seen[it.ID] = true
		}
		if it.Kind != kind {
			lgr.Printf("[DEBUG] %s item %q is shaped as %s", kind, it.ID, it.Kind)
		}
		res = append(res, it)
	}
	return res
}

// fetchedTally reads counts of a fetched item from likeCount/dislikeCount, likes/dislikes
// or the length of likedBy/dislikedBy, whichever is present first
func fetchedTally(fields map[string]any) domain.Tally {
	return domain.Tally{
		Likes:    fetchedCount(fields, "likeCount", "likes", "likedBy"),
		Dislikes: fetchedCount(fields, "dislikeCount", "dislikes", "dislikedBy"),
	}
}

func fetchedCount(fields map[string]any, countKey, altKey, votersKey string) int {
	for _, key := range []string{countKey, altKey} {
		if v, ok := fields[key]; ok && v != nil {
			return toCount(v)
		}
	}
	if voters, ok := fields[votersKey].([]any); ok {
		return len(voters)
	}
	return 0
}

// decodeTally reads {likes, dislikes} of a vote response, malformed input gives zeros
func decodeTally(raw json.RawMessage) domain.Tally {
	var resp map[string]any
	if err := json.Unmarshal(raw, &resp); err != nil {
		lgr.Printf("[WARN] vote response is not a json object, %v", err)
		return domain.Tally{}
	}
	return domain.Tally{Likes: toCount(resp["likes"]), Dislikes: toCount(resp["dislikes"])}
}

// toCount converts a loosely typed number to a non-negative int. Numeric strings and booleans
// are accepted, fractions truncate, everything else is 0.
func toCount(v any) int {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case int:
		f = float64(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > maxCount {
		return maxCount
	}
	return int(f)
}

// detailer is implemented by transport errors carrying the authority's error payload
type detailer interface {
	Detail(field string) string
}

// errorMessage picks the most specific text for the error slot: the first non-empty payload
// field, then the error text, then the fallback
func errorMessage(err error, fallback string, fields ...string) string {
	if err == nil {
		return fallback
	}
	var de detailer
	if errors.As(err, &de) {
		for _, f := range fields {
			if s := de.Detail(f); s != "" {
				return s
			}
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
