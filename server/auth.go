package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// anonymousUser votes when no tokens are configured
const anonymousUser = "anonymous"

type userCtxKey struct{}

// authMiddleware maps the bearer token to a user id, unknown or missing tokens get 401.
// With no tokens configured every request passes as the anonymous user.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users := s.config.Users()
		if len(users) == 0 {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, anonymousUser)))
			return
		}

		user, ok := lookupUser(users, bearerToken(r))
		if !ok {
			RenderJSON(w, r, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
	})
}

// bearerToken extracts the token from the Authorization header
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// lookupUser finds the user of a token, comparing every configured token in constant time
func lookupUser(users map[string]string, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	var found string
	for tkn, user := range users {
		if subtle.ConstantTimeCompare([]byte(tkn), []byte(token)) == 1 {
			found = user
		}
	}
	return found, found != ""
}

// userFrom returns the authenticated user id of the request
func userFrom(ctx context.Context) string {
	if user, ok := ctx.Value(userCtxKey{}).(string); ok && user != "" {
		return user
	}
	return anonymousUser
}
