package httpserver

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

type contextKey string

const ctxKeyUser contextKey = "user"

// Identity headers set by the authentication collaborator in front of this
// service. The service never authenticates anyone itself; it only trusts
// what the gateway forwarded.
const (
	headerForwardedUser  = "X-Forwarded-User"
	headerForwardedAdmin = "X-Forwarded-Admin"
)

// identityMiddleware resolves the forwarded identity headers into an
// optional *domain.User on the request context. Requests without the
// header proceed anonymously; handlers that need an identity reject them
// individually.
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(headerForwardedUser))
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		user := &domain.User{
			ID:    userID,
			Name:  userID,
			Admin: strings.EqualFold(r.Header.Get(headerForwardedAdmin), "true"),
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromContext extracts the authenticated user from the request context.
// Returns nil for anonymous requests.
func userFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(ctxKeyUser).(*domain.User); ok {
		return u
	}
	return nil
}

// rateLimitMiddleware applies a token bucket limit to the wrapped routes.
// Used on the mutating endpoints so a misbehaving client cannot flood
// writes through to the database.
func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// jsonContentTypeMiddleware sets Content-Type: application/json for all responses.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
