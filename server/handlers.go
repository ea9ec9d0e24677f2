package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/marketpulse/pkg/domain"
	"github.com/umputun/marketpulse/pkg/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	if s.scheduler != nil {
		if last := s.scheduler.LastUpdate(); last != nil {
			status["news_update"] = last
		}
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// listHandler returns up to ?limit items of the kind as {"items": [...]}
func (s *Server) listHandler(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			RenderError(w, r, err, http.StatusBadRequest)
			return
		}

		recs, err := s.items.List(r.Context(), kind, limit)
		if err != nil {
			lgr.Printf("[ERROR] failed to list %s: %v", kind, err)
			RenderError(w, r, fmt.Errorf("can't load %s", kind), http.StatusInternalServerError)
			return
		}
		RenderJSON(w, r, http.StatusOK, map[string]any{"items": recs})
	}
}

// voteHandler records the caller's vote and returns the item's new tally
func (s *Server) voteHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseKind(r.PathValue("kind"))
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")

	var req struct {
		Vote string `json:"vote"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RenderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	vote, err := domain.ParseVote(req.Vote)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	user := userFrom(r.Context())
	tally, err := s.votes.Cast(r.Context(), kind, id, user, vote)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			RenderError(w, r, fmt.Errorf("%s item %q not found", kind, id), http.StatusNotFound)
			return
		}
		lgr.Printf("[ERROR] failed to store vote %s for %s/%s by %s: %v", vote, kind, id, user, err)
		RenderJSON(w, r, http.StatusInternalServerError,
			map[string]string{"error": "vote store unavailable", "message": "try again later"})
		return
	}

	lgr.Printf("[DEBUG] %s voted %s for %s/%s, %+v", user, vote, kind, id, tally)
	RenderJSON(w, r, http.StatusOK, tally)
}

// parseLimit reads the limit query value, empty means default and large values are capped
func parseLimit(s string) (int, error) {
	if s == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("invalid limit %q", s)
	}
	return min(limit, maxLimit), nil
}
