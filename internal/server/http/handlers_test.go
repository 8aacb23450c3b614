package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comic-con-museum/fan-forge/internal/assembler"
	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// mockService implements ExhibitService with overridable functions.
type mockService struct {
	feedFn      func(ctx context.Context, viewer *domain.User, feedType domain.FeedType, startIdx int) (*assembler.FeedPage, error)
	detailFn    func(ctx context.Context, viewer *domain.User, id int64) (*assembler.ExhibitDetail, error)
	createFn    func(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) (int64, error)
	updateFn    func(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) (*assembler.ExhibitDetail, error)
	deleteFn    func(ctx context.Context, actor *domain.User, id int64) error
	supportFn   func(ctx context.Context, actor *domain.User, exhibitID int64, survey *domain.Survey) (bool, error)
	unsupportFn func(ctx context.Context, actor *domain.User, exhibitID int64) (bool, error)
}

func (m *mockService) Feed(ctx context.Context, viewer *domain.User, feedType domain.FeedType, startIdx int) (*assembler.FeedPage, error) {
	return m.feedFn(ctx, viewer, feedType, startIdx)
}

func (m *mockService) Detail(ctx context.Context, viewer *domain.User, id int64) (*assembler.ExhibitDetail, error) {
	return m.detailFn(ctx, viewer, id)
}

func (m *mockService) Create(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) (int64, error) {
	return m.createFn(ctx, actor, exhibit)
}

func (m *mockService) Update(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) (*assembler.ExhibitDetail, error) {
	return m.updateFn(ctx, actor, exhibit)
}

func (m *mockService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	return m.deleteFn(ctx, actor, id)
}

func (m *mockService) Support(ctx context.Context, actor *domain.User, exhibitID int64, survey *domain.Survey) (bool, error) {
	return m.supportFn(ctx, actor, exhibitID, survey)
}

func (m *mockService) Unsupport(ctx context.Context, actor *domain.User, exhibitID int64) (bool, error) {
	return m.unsupportFn(ctx, actor, exhibitID)
}

func newTestServer(svc ExhibitService) *Server {
	cfg := Config{
		Address:        ":0",
		WriteRateLimit: 1000,
		WriteRateBurst: 1000,
	}
	return NewServer(cfg, svc, nil, zerolog.Nop())
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func asUser(req *http.Request, id string) *http.Request {
	req.Header.Set("X-Forwarded-User", id)
	return req
}

func asAdmin(req *http.Request, id string) *http.Request {
	req.Header.Set("X-Forwarded-User", id)
	req.Header.Set("X-Forwarded-Admin", "true")
	return req
}

func TestGetFeed(t *testing.T) {
	t.Run("returns a feed page for anonymous viewers", func(t *testing.T) {
		svc := &mockService{
			feedFn: func(_ context.Context, viewer *domain.User, feedType domain.FeedType, startIdx int) (*assembler.FeedPage, error) {
				assert.Nil(t, viewer)
				assert.Equal(t, domain.FeedTypeNew, feedType)
				assert.Equal(t, 10, startIdx)
				return &assembler.FeedPage{
					StartIdx: 10,
					Count:    42,
					PageSize: 10,
					Exhibits: []assembler.FeedEntry{
						{
							ID:          7,
							Title:       "a title",
							Description: "and a description",
							Created:     time.Unix(200, 0).UTC(),
							Supporters:  3,
						},
					},
				}, nil
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/feed/new?startIdx=10", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{
			"startIdx": 10,
			"count": 42,
			"pageSize": 10,
			"exhibits": [{
				"id": 7,
				"title": "a title",
				"description": "and a description",
				"featured": false,
				"created": "1970-01-01T00:03:20Z",
				"supporters": 3
			}]
		}`, rec.Body.String())
		// No viewer, no flag.
		assert.NotContains(t, rec.Body.String(), "supported")
	})

	t.Run("includes the supported flag for authenticated viewers", func(t *testing.T) {
		supported := true
		svc := &mockService{
			feedFn: func(_ context.Context, viewer *domain.User, _ domain.FeedType, _ int) (*assembler.FeedPage, error) {
				require.NotNil(t, viewer)
				assert.Equal(t, "carol", viewer.ID)
				return &assembler.FeedPage{
					PageSize: 10,
					Count:    1,
					Exhibits: []assembler.FeedEntry{
						{ID: 1, Title: "t", Description: "d", Created: time.Unix(0, 0).UTC(), Supported: &supported},
					},
				}, nil
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodGet, "/feed/alphabetical", nil), "carol"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"supported":true`)
	})

	t.Run("returns 404 for an unknown feed type", func(t *testing.T) {
		s := newTestServer(&mockService{})

		rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/feed/trending", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "no such feed")
	})

	t.Run("rejects a non-integer startIdx", func(t *testing.T) {
		s := newTestServer(&mockService{})

		rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/feed/new?startIdx=abc", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetExhibit(t *testing.T) {
	t.Run("returns the full detail view", func(t *testing.T) {
		svc := &mockService{
			detailFn: func(_ context.Context, viewer *domain.User, id int64) (*assembler.ExhibitDetail, error) {
				assert.Nil(t, viewer)
				assert.Equal(t, int64(0), id)
				return &assembler.ExhibitDetail{
					Exhibit: &domain.Exhibit{
						ID:          0,
						Title:       "a title",
						Description: "and a description",
						Author:      "me!",
						Created:     time.Unix(200, 0).UTC(),
						Tags:        []string{"a", "b"},
					},
				}, nil
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/exhibit/0", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{
			"id": 0,
			"title": "a title",
			"description": "and a description",
			"featured": false,
			"author": "me!",
			"created": "1970-01-01T00:03:20Z",
			"tags": ["a", "b"],
			"supporters": 0,
			"artifacts": [],
			"comments": []
		}`, rec.Body.String())
	})

	t.Run("serializes artifacts with their image reference", func(t *testing.T) {
		supported := false
		svc := &mockService{
			detailFn: func(_ context.Context, viewer *domain.User, _ int64) (*assembler.ExhibitDetail, error) {
				require.NotNil(t, viewer)
				return &assembler.ExhibitDetail{
					Exhibit: &domain.Exhibit{
						ID:      4,
						Title:   "t",
						Author:  "bob",
						Created: time.Unix(0, 0).UTC(),
						Tags:    []string{},
					},
					Supporters: 2,
					Supported:  &supported,
					Artifacts: []*domain.Artifact{
						{ID: 9, Title: "poster", Cover: true, Creator: "bob", Created: time.Unix(0, 0).UTC(), Exhibit: 4},
					},
					Comments: []*domain.Comment{
						{ID: 3, Text: "neat", Author: "eve", Created: time.Unix(0, 0).UTC(), Exhibit: 4},
					},
				}, nil
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodGet, "/exhibit/4", nil), "carol"))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"image":9`)
		assert.Contains(t, body, `"supported":false`)
		assert.Contains(t, body, `"text":"neat"`)
	})

	t.Run("returns 404 for a missing exhibit", func(t *testing.T) {
		svc := &mockService{
			detailFn: func(_ context.Context, _ *domain.User, id int64) (*assembler.ExhibitDetail, error) {
				return nil, domain.NewNotFoundError("exhibit", strconv.FormatInt(id, 10))
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/exhibit/99", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects a non-integer id", func(t *testing.T) {
		s := newTestServer(&mockService{})

		rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/exhibit/not-a-number", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateExhibit(t *testing.T) {
	t.Run("creates an exhibit and returns its id", func(t *testing.T) {
		svc := &mockService{
			createFn: func(_ context.Context, actor *domain.User, exhibit *domain.Exhibit) (int64, error) {
				require.NotNil(t, actor)
				assert.Equal(t, "carol", actor.ID)
				assert.Equal(t, "a title", exhibit.Title)
				assert.Equal(t, []string{"a", "b"}, exhibit.Tags)
				return 12, nil
			},
		}
		s := newTestServer(svc)

		body := `{"title": "a title", "description": "and a description", "tags": ["a", "b"]}`
		req := asUser(httptest.NewRequest(http.MethodPost, "/exhibit", strings.NewReader(body)), "carol")
		rec := doRequest(s, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.JSONEq(t, `{"id": 12}`, rec.Body.String())
	})

	t.Run("passes the featured flag through for admins", func(t *testing.T) {
		svc := &mockService{
			createFn: func(_ context.Context, actor *domain.User, exhibit *domain.Exhibit) (int64, error) {
				require.NotNil(t, actor)
				assert.True(t, actor.Admin)
				assert.True(t, exhibit.Featured)
				return 2, nil
			},
		}
		s := newTestServer(svc)

		body := `{"title": "t", "description": "d", "tags": [], "featured": true}`
		rec := doRequest(s, asAdmin(httptest.NewRequest(http.MethodPost, "/exhibit", strings.NewReader(body)), "root"))

		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("accepts an explicitly empty tag list", func(t *testing.T) {
		svc := &mockService{
			createFn: func(_ context.Context, _ *domain.User, exhibit *domain.Exhibit) (int64, error) {
				require.NotNil(t, exhibit.Tags)
				assert.Empty(t, exhibit.Tags)
				return 1, nil
			},
		}
		s := newTestServer(svc)

		body := `{"title": "t", "description": "d", "tags": []}`
		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPost, "/exhibit", strings.NewReader(body)), "carol"))

		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("rejects a body without a tags field", func(t *testing.T) {
		s := newTestServer(&mockService{})

		body := `{"title": "t", "description": "d"}`
		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPost, "/exhibit", strings.NewReader(body)), "carol"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "tags is required")
	})

	t.Run("rejects a body without a title", func(t *testing.T) {
		s := newTestServer(&mockService{})

		body := `{"description": "d", "tags": []}`
		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPost, "/exhibit", strings.NewReader(body)), "carol"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "title is required")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		s := newTestServer(&mockService{})

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPost, "/exhibit", strings.NewReader("{not json")), "carol"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 401 for anonymous creators", func(t *testing.T) {
		svc := &mockService{
			createFn: func(_ context.Context, actor *domain.User, _ *domain.Exhibit) (int64, error) {
				assert.Nil(t, actor)
				return 0, domain.ErrUnauthorized
			},
		}
		s := newTestServer(svc)

		body := `{"title": "t", "description": "d", "tags": []}`
		rec := doRequest(s, httptest.NewRequest(http.MethodPost, "/exhibit", strings.NewReader(body)))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateExhibit(t *testing.T) {
	t.Run("updates and returns the refreshed detail", func(t *testing.T) {
		svc := &mockService{
			updateFn: func(_ context.Context, actor *domain.User, exhibit *domain.Exhibit) (*assembler.ExhibitDetail, error) {
				require.NotNil(t, actor)
				assert.Equal(t, int64(5), exhibit.ID)
				assert.Equal(t, "new title", exhibit.Title)
				return &assembler.ExhibitDetail{
					Exhibit: &domain.Exhibit{
						ID:      5,
						Title:   "new title",
						Author:  actor.ID,
						Created: time.Unix(0, 0).UTC(),
						Tags:    []string{"x"},
					},
				}, nil
			},
		}
		s := newTestServer(svc)

		body := `{"title": "new title", "description": "d", "tags": ["x"]}`
		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPut, "/exhibit/5", strings.NewReader(body)), "carol"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"title":"new title"`)
	})

	t.Run("returns 403 when the actor is not the author", func(t *testing.T) {
		svc := &mockService{
			updateFn: func(_ context.Context, actor *domain.User, exhibit *domain.Exhibit) (*assembler.ExhibitDetail, error) {
				return nil, domain.NewForbiddenError(actor.ID, "edit", "exhibit", strconv.FormatInt(exhibit.ID, 10))
			},
		}
		s := newTestServer(svc)

		body := `{"title": "t", "description": "d", "tags": []}`
		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPut, "/exhibit/5", strings.NewReader(body)), "mallory"))

		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestDeleteExhibit(t *testing.T) {
	t.Run("deletes and returns no content", func(t *testing.T) {
		svc := &mockService{
			deleteFn: func(_ context.Context, actor *domain.User, id int64) error {
				require.NotNil(t, actor)
				assert.Equal(t, int64(5), id)
				return nil
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodDelete, "/exhibit/5", nil), "carol"))

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("returns 404 for a missing exhibit", func(t *testing.T) {
		svc := &mockService{
			deleteFn: func(_ context.Context, _ *domain.User, id int64) error {
				return domain.NewNotFoundError("exhibit", strconv.FormatInt(id, 10))
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodDelete, "/exhibit/99", nil), "carol"))

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSupportExhibit(t *testing.T) {
	t.Run("returns no content for a fresh support", func(t *testing.T) {
		svc := &mockService{
			supportFn: func(_ context.Context, actor *domain.User, exhibitID int64, survey *domain.Survey) (bool, error) {
				require.NotNil(t, actor)
				assert.Equal(t, "carol", actor.ID)
				assert.Equal(t, int64(3), exhibitID)
				assert.Nil(t, survey)
				return true, nil
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPut, "/support/exhibit/3", nil), "carol"))

		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("passes the survey through", func(t *testing.T) {
		svc := &mockService{
			supportFn: func(_ context.Context, _ *domain.User, _ int64, survey *domain.Survey) (bool, error) {
				require.NotNil(t, survey)
				assert.Equal(t, 4, survey.Visits)
				assert.Equal(t, 9, survey.Rating)
				assert.True(t, survey.Populations["teens"])
				return true, nil
			},
		}
		s := newTestServer(svc)

		body := `{"visits": 4, "rating": 9, "populations": {"teens": true}}`
		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPut, "/support/exhibit/3", strings.NewReader(body)), "carol"))

		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("returns 400 when already supporting", func(t *testing.T) {
		svc := &mockService{
			supportFn: func(_ context.Context, _ *domain.User, _ int64, _ *domain.Survey) (bool, error) {
				return false, nil
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPut, "/support/exhibit/3", nil), "carol"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "already supporting")
	})

	t.Run("returns 404 when the exhibit does not exist", func(t *testing.T) {
		svc := &mockService{
			supportFn: func(_ context.Context, _ *domain.User, exhibitID int64, _ *domain.Survey) (bool, error) {
				return false, domain.NewNotFoundError("exhibit", strconv.FormatInt(exhibitID, 10))
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodPut, "/support/exhibit/99", nil), "carol"))

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUnsupportExhibit(t *testing.T) {
	t.Run("returns no content when a support is removed", func(t *testing.T) {
		svc := &mockService{
			unsupportFn: func(_ context.Context, actor *domain.User, exhibitID int64) (bool, error) {
				require.NotNil(t, actor)
				assert.Equal(t, int64(3), exhibitID)
				return true, nil
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodDelete, "/support/exhibit/3", nil), "carol"))

		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("returns 400 when not supporting", func(t *testing.T) {
		svc := &mockService{
			unsupportFn: func(_ context.Context, _ *domain.User, _ int64) (bool, error) {
				return false, nil
			},
		}
		s := newTestServer(svc)

		rec := doRequest(s, asUser(httptest.NewRequest(http.MethodDelete, "/support/exhibit/3", nil), "carol"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "not supporting")
	})
}
