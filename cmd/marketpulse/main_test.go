package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/marketpulse/pkg/config"
	"github.com/umputun/marketpulse/pkg/dashboard"
	"github.com/umputun/marketpulse/pkg/domain"
)

func TestRunServer_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := runServer(ctx, ServerCmd{Config: "non-existent-config.yml"}, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRunServer_InvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := runServer(ctx, ServerCmd{Config: configPath}, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRunServerAndDashboard(t *testing.T) {
	color.NoColor = true

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	tmpDir := t.TempDir()
	configContent := fmt.Sprintf(`
server:
  listen: "127.0.0.1:%d"
database:
  dsn: "file:%s?_txlock=immediate"
auth:
  tokens:
    tkn-alice: alice
seed:
  coins:
    - _id: c1
      coingeckoId: bitcoin
      name: Bitcoin
      symbol: btc
  insights:
    - _id: i1
      text: funding rates flipped
      tickers: [BTC]
  memes:
    - _id: m1
      imageUrl: https://example.com/m.png
      title: wen moon
`, port, filepath.Join(tmpDir, "test.db"))
	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() { serverErr <- runServer(ctx, ServerCmd{Config: configPath}, false) }()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(baseURL + "/ping")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	t.Run("load only", func(t *testing.T) {
		var out bytes.Buffer
		err := runDashboard(ctx, DashboardCmd{URL: baseURL, Token: "tkn-alice", Timeout: time.Second}, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Bitcoin BTC")
		assert.Contains(t, out.String(), "funding rates flipped [BTC]")
		assert.Contains(t, out.String(), "wen moon")
	})

	t.Run("vote", func(t *testing.T) {
		var out bytes.Buffer
		err := runDashboard(ctx, DashboardCmd{URL: baseURL, Token: "tkn-alice", Timeout: time.Second,
			ID: "c1", Vote: "like"}, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "+1/-0 Bitcoin BTC")
	})

	t.Run("vote is per user", func(t *testing.T) {
		var out bytes.Buffer
		err := runDashboard(ctx, DashboardCmd{URL: baseURL, Token: "tkn-alice", Timeout: time.Second,
			ID: "c1", Vote: "like"}, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "+1/-0 Bitcoin BTC", "second like by the same user is not counted")
	})

	t.Run("bad token", func(t *testing.T) {
		var out bytes.Buffer
		err := runDashboard(ctx, DashboardCmd{URL: baseURL, Token: "wrong", Timeout: time.Second}, &out)
		require.Error(t, err)
		assert.Equal(t, "request failed with status code 401", err.Error())
		assert.Contains(t, out.String(), "error: request failed with status code 401")
	})

	t.Run("unknown item", func(t *testing.T) {
		var out bytes.Buffer
		err := runDashboard(ctx, DashboardCmd{URL: baseURL, Token: "tkn-alice", Timeout: time.Second,
			ID: "nope", Vote: "dislike"}, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `item "nope" is not on the dashboard`)
	})

	cancel()
	select {
	case err := <-serverErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server shutdown timeout")
	}
}

func TestRunDashboard_FlagsTogether(t *testing.T) {
	err := runDashboard(context.Background(), DashboardCmd{URL: "http://127.0.0.1:1", ID: "x"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--id and --vote")
}

type upsertRecorder struct {
	calls map[domain.Kind][]domain.Record
}

func (u *upsertRecorder) Upsert(_ context.Context, kind domain.Kind, recs []domain.Record) error {
	if u.calls == nil {
		u.calls = map[domain.Kind][]domain.Record{}
	}
	u.calls[kind] = append(u.calls[kind], recs...)
	return nil
}

func TestSeedItems(t *testing.T) {
	seed := config.SeedConfig{
		Coins: []map[string]any{
			{"_id": "c1", "coingeckoId": "bitcoin", "likedBy": []any{"x"}},
			{"coingeckoId": "ethereum"},
		},
		Memes: []map[string]any{{"imageUrl": "https://example.com/m.png"}},
	}
	rec := &upsertRecorder{}
	require.NoError(t, seedItems(context.Background(), rec, seed))

	coins := rec.calls[domain.KindCoin]
	require.Len(t, coins, 2)
	assert.Equal(t, "c1", coins[0].ID)
	assert.Equal(t, map[string]any{"coingeckoId": "bitcoin"}, coins[0].Fields, "vote lists are not seeded")
	assert.NotEmpty(t, coins[1].ID)
	assert.Greater(t, coins[0].Rank, coins[1].Rank, "config order kept")
	assert.Empty(t, rec.calls[domain.KindInsight])
	require.Len(t, rec.calls[domain.KindMeme], 1)

	// derived ids are stable
	again := &upsertRecorder{}
	require.NoError(t, seedItems(context.Background(), again, seed))
	assert.Equal(t, coins[1].ID, again.calls[domain.KindCoin][1].ID)
	assert.Equal(t, rec.calls[domain.KindMeme][0].ID, again.calls[domain.KindMeme][0].ID)
}

func TestPrintDashboard(t *testing.T) {
	color.NoColor = true
	st := dashboard.State{
		Collections: dashboard.Collections{
			News: []domain.Item{{ID: "n1", Kind: domain.KindNews, Tally: domain.Tally{Likes: 2},
				Fields: map[string]any{"title": "BTC up", "source": "wire"}}},
			Coins: []domain.Item{{ID: "c1", Kind: domain.KindCoin,
				Fields: map[string]any{"coingeckoId": "bitcoin"}}},
			Meme: &domain.Item{ID: "m1", Kind: domain.KindMeme, Tally: domain.Tally{Dislikes: 4},
				Fields: map[string]any{"imageUrl": "https://example.com/m.png"}},
		},
		Error: "Voting failed",
	}
	var out bytes.Buffer
	printDashboard(&out, st)
	assert.Contains(t, out.String(), "+2/-0 BTC up (wire)  n1")
	assert.Contains(t, out.String(), "+0/-0 bitcoin  c1")
	assert.Contains(t, out.String(), "+0/-4 https://example.com/m.png  m1")
	assert.Contains(t, out.String(), "error: Voting failed")
}

func TestSetupLog(t *testing.T) {
	t.Run("debug mode enabled", func(t *testing.T) {
		SetupLog(true)
	})

	t.Run("debug mode disabled", func(t *testing.T) {
		SetupLog(false)
	})

	t.Run("with secrets", func(t *testing.T) {
		SetupLog(true, "secret1", "", "secret2")
	})
}
