package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comic-con-museum/fan-forge/internal/assembler"
	"github.com/comic-con-museum/fan-forge/internal/domain"
)

func TestIdentityMiddleware(t *testing.T) {
	t.Run("no header means anonymous", func(t *testing.T) {
		var seen *domain.User
		handler := identityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = userFromContext(r.Context())
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Nil(t, seen)
	})

	t.Run("forwarded user header resolves a user", func(t *testing.T) {
		var seen *domain.User
		handler := identityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = userFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-User", "carol")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, seen)
		assert.Equal(t, "carol", seen.ID)
		assert.False(t, seen.Admin)
	})

	t.Run("admin header grants admin", func(t *testing.T) {
		var seen *domain.User
		handler := identityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = userFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-User", "root")
		req.Header.Set("X-Forwarded-Admin", "TRUE")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, seen)
		assert.True(t, seen.Admin)
	})

	t.Run("admin header is ignored without a user", func(t *testing.T) {
		var seen *domain.User
		handler := identityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = userFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-Admin", "true")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Nil(t, seen)
	})
}

func TestWriteRateLimit(t *testing.T) {
	// A one-token bucket with no refill to speak of: the first write goes
	// through, the second is rejected.
	svc := &mockService{
		createFn: func(_ context.Context, _ *domain.User, _ *domain.Exhibit) (int64, error) {
			return 1, nil
		},
		feedFn: func(_ context.Context, _ *domain.User, _ domain.FeedType, _ int) (*assembler.FeedPage, error) {
			return &assembler.FeedPage{PageSize: 10, Exhibits: []assembler.FeedEntry{}}, nil
		},
	}
	cfg := Config{
		Address:        ":0",
		WriteRateLimit: 0.0001,
		WriteRateBurst: 1,
	}
	s := NewServer(cfg, svc, nil, zerolog.Nop())

	body := `{"title": "t", "description": "d", "tags": []}`

	first := doRequest(s, asUser(httptest.NewRequest(http.MethodPost, "/exhibit", strings.NewReader(body)), "carol"))
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(s, asUser(httptest.NewRequest(http.MethodPost, "/exhibit", strings.NewReader(body)), "carol"))
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	// Reads are not throttled by the write bucket.
	read := doRequest(s, httptest.NewRequest(http.MethodGet, "/feed/new", nil))
	require.Equal(t, http.StatusOK, read.Code)
}
