package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/marketpulse/pkg/domain"
	"github.com/umputun/marketpulse/pkg/repository"
	"github.com/umputun/marketpulse/pkg/scheduler"
	"github.com/umputun/marketpulse/server/mocks"
)

func testConfig(users map[string]string) *mocks.ConfigProviderMock {
	return &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) { return ":8080", 30 * time.Second },
		UsersFunc:           func() map[string]string { return users },
	}
}

func TestServer_New(t *testing.T) {
	srv := New(testConfig(nil), &mocks.ItemStoreMock{}, &mocks.VoteStoreMock{}, &mocks.SchedulerMock{}, "1.0.0", false)
	assert.NotNil(t, srv)
	assert.Equal(t, "1.0.0", srv.version)
	assert.False(t, srv.debug)
}

func TestServer_Run(t *testing.T) {
	// find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	cfg := &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) {
			return fmt.Sprintf("127.0.0.1:%d", port), 30 * time.Second
		},
	}
	srv := New(cfg, &mocks.ItemStoreMock{}, &mocks.VoteStoreMock{}, &mocks.SchedulerMock{}, "1.0.0", true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// wait for server to start
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "pong"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_Status(t *testing.T) {
	updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sched := &mocks.SchedulerMock{LastUpdateFunc: func() *scheduler.Stats {
		return &scheduler.Stats{Feeds: 3, Failed: 1, Items: 20, Updated: updated}
	}}
	srv := New(testConfig(map[string]string{"t": "u"}), &mocks.ItemStoreMock{}, &mocks.VoteStoreMock{}, sched, "1.2.3", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "status is public")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "marketpulse", w.Header().Get("App-Name"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "1.2.3", resp["version"])
	assert.NotEmpty(t, resp["time"])
	upd, ok := resp["news_update"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 20, upd["items"], 0)
	assert.InDelta(t, 1, upd["failed"], 0)
}

func TestServer_List(t *testing.T) {
	items := &mocks.ItemStoreMock{ListFunc: func(ctx context.Context, kind domain.Kind, limit int) ([]domain.Record, error) {
		switch kind {
		case domain.KindCoin:
			return []domain.Record{{ID: "c1", Kind: kind, Fields: map[string]any{"coingeckoId": "bitcoin"},
				LikedBy: []string{"alice"}}}, nil
		case domain.KindMeme:
			return nil, errors.New("db is gone")
		}
		return []domain.Record{}, nil
	}}
	srv := New(testConfig(nil), items, &mocks.VoteStoreMock{}, &mocks.SchedulerMock{}, "test", false)

	tests := []struct {
		name      string
		url       string
		wantCode  int
		wantBody  string
		wantLimit int
	}{
		{name: "coins default limit", url: "/coins", wantCode: http.StatusOK,
			wantBody:  `{"items":[{"_id":"c1","coingeckoId":"bitcoin","likedBy":["alice"],"dislikedBy":[]}]}`,
			wantLimit: 20},
		{name: "news with limit", url: "/news?limit=8", wantCode: http.StatusOK, wantBody: `{"items":[]}`, wantLimit: 8},
		{name: "limit capped", url: "/insights?limit=1000", wantCode: http.StatusOK, wantBody: `{"items":[]}`,
			wantLimit: 100},
		{name: "bad limit", url: "/news?limit=abc", wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid limit \"abc\""}`},
		{name: "zero limit", url: "/news?limit=0", wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid limit \"0\""}`},
		{name: "storage failure", url: "/memes?limit=1", wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"can't load memes"}`, wantLimit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(items.ListCalls())
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, http.NoBody))
			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			if tt.wantLimit > 0 {
				calls := items.ListCalls()
				require.Len(t, calls, before+1)
				assert.Equal(t, tt.wantLimit, calls[len(calls)-1].Limit)
			}
		})
	}

	t.Run("unknown collection", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stocks", http.NoBody))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_Vote(t *testing.T) {
	votes := &mocks.VoteStoreMock{CastFunc: func(ctx context.Context, kind domain.Kind, id, user string,
		vote domain.Vote) (domain.Tally, error) {
		switch id {
		case "missing":
			return domain.Tally{}, fmt.Errorf("item: %w", repository.ErrNotFound)
		case "broken":
			return domain.Tally{}, errors.New("disk I/O error")
		}
		return domain.Tally{Likes: 3, Dislikes: 1}, nil
	}}
	srv := New(testConfig(nil), &mocks.ItemStoreMock{}, votes, &mocks.SchedulerMock{}, "test", false)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantBody string
	}{
		{name: "like", path: "/vote/news/n1", body: `{"vote":"like"}`, wantCode: http.StatusOK,
			wantBody: `{"likes":3,"dislikes":1}`},
		{name: "clear", path: "/vote/memes/m1", body: `{"vote":"clear"}`, wantCode: http.StatusOK,
			wantBody: `{"likes":3,"dislikes":1}`},
		{name: "bad kind", path: "/vote/stocks/s1", body: `{"vote":"like"}`, wantCode: http.StatusBadRequest},
		{name: "bad vote", path: "/vote/coins/c1", body: `{"vote":"love"}`, wantCode: http.StatusBadRequest},
		{name: "bad body", path: "/vote/coins/c1", body: `vote=like`, wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid request body"}`},
		{name: "unknown item", path: "/vote/insights/missing", body: `{"vote":"dislike"}`,
			wantCode: http.StatusNotFound, wantBody: `{"error":"insights item \"missing\" not found"}`},
		{name: "storage failure", path: "/vote/news/broken", body: `{"vote":"like"}`,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"vote store unavailable","message":"try again later"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			srv.router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}

	calls := votes.CastCalls()
	require.NotEmpty(t, calls)
	assert.Equal(t, domain.KindNews, calls[0].Kind)
	assert.Equal(t, "n1", calls[0].ID)
	assert.Equal(t, anonymousUser, calls[0].User)
	assert.Equal(t, domain.VoteLike, calls[0].Vote)
}

func TestServer_Auth(t *testing.T) {
	items := &mocks.ItemStoreMock{ListFunc: func(ctx context.Context, kind domain.Kind, limit int) ([]domain.Record, error) {
		return []domain.Record{}, nil
	}}
	votes := &mocks.VoteStoreMock{CastFunc: func(ctx context.Context, kind domain.Kind, id, user string,
		vote domain.Vote) (domain.Tally, error) {
		return domain.Tally{Likes: 1}, nil
	}}
	srv := New(testConfig(map[string]string{"tkn-alice": "alice", "tkn-bob": "bob"}), items, votes,
		&mocks.SchedulerMock{}, "test", false)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "no header", header: "", wantCode: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic dGtuLWFsaWNl", wantCode: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", wantCode: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer tkn-alice", wantCode: http.StatusOK},
		{name: "case insensitive scheme", header: "bearer tkn-bob", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, req := range []*http.Request{
				httptest.NewRequest(http.MethodGet, "/news", http.NoBody),
				httptest.NewRequest(http.MethodPost, "/vote/news/n1", strings.NewReader(`{"vote":"like"}`)),
			} {
				if tt.header != "" {
					req.Header.Set("Authorization", tt.header)
				}
				w := httptest.NewRecorder()
				srv.router.ServeHTTP(w, req)
				assert.Equal(t, tt.wantCode, w.Code, req.URL.Path)
				if tt.wantCode == http.StatusUnauthorized {
					assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
				}
			}
		})
	}

	calls := votes.CastCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "alice", calls[0].User)
	assert.Equal(t, "bob", calls[1].User)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "", want: 20},
		{in: "1", want: 1},
		{in: "100", want: 100},
		{in: "101", want: 100},
		{in: "-3", wantErr: true},
		{in: "1.5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseLimit(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRenderError(t *testing.T) {
	w := httptest.NewRecorder()
	RenderError(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody), nil, http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.JSONEq(t, `{"error":"unknown error"}`, w.Body.String())
}
