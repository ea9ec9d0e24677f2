package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/umputun/marketpulse/pkg/domain"
)

func TestKind(t *testing.T) {
	tbl := []struct {
		name   string
		fields map[string]any
		want   domain.Kind
	}{
		{"nil", nil, domain.KindUnknown},
		{"empty", map[string]any{}, domain.KindUnknown},
		{"news", map[string]any{"_id": "n1", "url": "http://x", "title": "t"}, domain.KindNews},
		{"news with empty url", map[string]any{"url": ""}, domain.KindNews},
		{"news with tickers", map[string]any{"url": "http://x", "tickers": []any{"BTC"}}, domain.KindNews},
		{"news with text", map[string]any{"url": "http://x", "text": "hello"}, domain.KindNews},
		{"news with coingecko id", map[string]any{"url": "http://x", "coingeckoId": "bitcoin"}, domain.KindNews},
		{"coin", map[string]any{"coingeckoId": "bitcoin", "symbol": "BTC"}, domain.KindCoin},
		{"coin with image", map[string]any{"coingeckoId": "bitcoin", "imageUrl": "http://img"}, domain.KindCoin},
		{"meme", map[string]any{"imageUrl": "http://img", "title": "lol"}, domain.KindMeme},
		{"meme with tickers", map[string]any{"imageUrl": "http://img", "tickers": []any{}}, domain.KindMeme},
		{"insight with tickers", map[string]any{"tickers": []any{"ETH"}}, domain.KindInsight},
		{"insight with empty tickers", map[string]any{"tickers": []any{}}, domain.KindInsight},
		{"insight with string tickers", map[string]any{"tickers": []string{"ETH"}}, domain.KindInsight},
		{"insight with text", map[string]any{"text": "to the moon"}, domain.KindInsight},
		{"insight with null url", map[string]any{"url": nil, "text": "x"}, domain.KindInsight},
		{"insight with false url", map[string]any{"url": false, "tickers": []any{}}, domain.KindInsight},
		{"insight with zero url", map[string]any{"url": float64(0), "text": "x"}, domain.KindInsight},
		{"numeric url is not news and not insight", map[string]any{"url": float64(5), "text": "x"}, domain.KindUnknown},
		{"tickers not array", map[string]any{"tickers": "BTC"}, domain.KindUnknown},
		{"text not string", map[string]any{"text": float64(1)}, domain.KindUnknown},
		{"non-string coingecko id", map[string]any{"coingeckoId": float64(1)}, domain.KindUnknown},
		{"non-string image url", map[string]any{"imageUrl": true}, domain.KindUnknown},
		{"only title", map[string]any{"_id": "x", "title": "something"}, domain.KindUnknown},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.fields))
		})
	}
}

func TestKind_URLTakesPriority(t *testing.T) {
	// any combination of other discriminators still yields news when url is a string
	extras := []map[string]any{
		{"tickers": []any{"BTC"}},
		{"text": "x"},
		{"coingeckoId": "btc"},
		{"imageUrl": "http://img"},
		{"tickers": []any{}, "text": "x", "coingeckoId": "btc", "imageUrl": "http://img"},
	}
	for _, extra := range extras {
		fields := map[string]any{"url": "http://example.com"}
		for k, v := range extra {
			fields[k] = v
		}
		assert.Equal(t, domain.KindNews, Kind(fields), "fields: %v", fields)
	}
}

func TestItem(t *testing.T) {
	t.Run("tag wins", func(t *testing.T) {
		it := domain.Item{ID: "c1", Kind: domain.KindCoin, Fields: map[string]any{"url": "http://x"}}
		assert.Equal(t, domain.KindCoin, Item(it))
	})

	t.Run("untagged falls back to fields", func(t *testing.T) {
		it := domain.Item{ID: "i1", Fields: map[string]any{"text": "hodl"}}
		assert.Equal(t, domain.KindInsight, Item(it))
	})

	t.Run("invalid tag falls back to fields", func(t *testing.T) {
		it := domain.Item{ID: "n1", Kind: domain.Kind("bogus"), Fields: map[string]any{"url": "http://x"}}
		assert.Equal(t, domain.KindNews, Item(it))
	})

	t.Run("untagged without fields", func(t *testing.T) {
		assert.Equal(t, domain.KindUnknown, Item(domain.Item{ID: "x"}))
	})
}
