// Package classify determines the resource kind of an item from the shape of its fields.
// The authority does not tag items, so the kind is inferred by a fixed priority chain:
// news (string url), coin (string coingeckoId), meme (string imageUrl), insight (no url and
// either a tickers array or a string text). The order matters, an item with both url and
// tickers is news.
package classify

import (
	"math"

	"github.com/umputun/marketpulse/pkg/domain"
)

// Kind classifies raw item fields, returns domain.KindUnknown if nothing matches
func Kind(fields map[string]any) domain.Kind {
	if fields == nil {
		return domain.KindUnknown
	}
	switch {
	case isString(fields, "url"):
		return domain.KindNews
	case isString(fields, "coingeckoId"):
		return domain.KindCoin
	case isString(fields, "imageUrl"):
		return domain.KindMeme
	case !truthy(fields["url"]) && (isArray(fields, "tickers") || isString(fields, "text")):
		return domain.KindInsight
	}
	return domain.KindUnknown
}

// Item returns the item's tag if it has one, otherwise classifies its fields
func Item(it domain.Item) domain.Kind {
	if it.Kind.Valid() {
		return it.Kind
	}
	return Kind(it.Fields)
}

func isString(fields map[string]any, key string) bool {
	_, ok := fields[key].(string)
	return ok
}

func isArray(fields map[string]any, key string) bool {
	switch fields[key].(type) {
	case []any, []string:
		return true
	}
	return false
}

// truthy treats nil, false, zero numbers and empty strings as absent
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0 && !math.IsNaN(val)
	case int:
		return val != 0
	case int64:
		return val != 0
	}
	return true
}
