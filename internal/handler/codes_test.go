package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanlink/scanlink-server-go/internal/config"
	"github.com/scanlink/scanlink-server-go/internal/model"
	"github.com/scanlink/scanlink-server-go/internal/service"
)

func newCodesServer(repo *mockCodeRepo) *chi.Mux {
	cfg := &config.Config{PublicBaseURL: "https://scl.ink"}
	h := NewCodeHandler(service.NewCodeService(repo), cfg)

	r := chi.NewRouter()
	r.Mount("/v1/codes", h.Routes())
	return r
}

func testAccount() *model.Account {
	return &model.Account{ID: "acct-1", Name: "Test"}
}

func TestCodeHandler_Create(t *testing.T) {
	t.Run("creates a draft and returns the short url", func(t *testing.T) {
		repo := &mockCodeRepo{
			insertFunc: func(ctx context.Context, params model.CreateShortCodeParams) (*model.ShortCode, error) {
				return &model.ShortCode{
					ID:      params.ID,
					OwnerID: params.OwnerID,
					Title:   params.Title,
					Kind:    params.Kind,
					Status:  model.CodeStatusActive,
				}, nil
			},
		}

		body := `{"title":"Launch poster","kind":"url","content":{"url":"https://example.com"}}`
		req := httptest.NewRequest(http.MethodPost, "/v1/codes", bytes.NewBufferString(body))
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			ID       string `json:"id"`
			OwnerID  string `json:"ownerId"`
			ShortURL string `json:"shortUrl"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.ID, config.CodeLength)
		assert.Equal(t, "acct-1", resp.OwnerID)
		assert.Equal(t, "https://scl.ink/"+resp.ID, resp.ShortURL)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/codes", bytes.NewBufferString(`{broken`))
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(&mockCodeRepo{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a draft without a title", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/codes", bytes.NewBufferString(`{"kind":"url"}`))
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(&mockCodeRepo{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCodeHandler_Get(t *testing.T) {
	t.Run("returns an owned code", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.ShortCode, error) {
				return &model.ShortCode{ID: id, OwnerID: "acct-1", Title: "Mine"}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/codes/abc123", nil)
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("hides another owner's code", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.ShortCode, error) {
				return &model.ShortCode{ID: id, OwnerID: "acct-2"}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/codes/abc123", nil)
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCodeHandler_List(t *testing.T) {
	t.Run("lists the owner's codes", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByOwnerIDFunc: func(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error) {
				assert.Equal(t, "acct-1", ownerID)
				assert.Equal(t, 50, limit)
				return []model.ShortCode{{ID: "aaa111"}, {ID: "bbb222"}}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/codes", nil)
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Codes []json.RawMessage `json:"codes"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Codes, 2)
	})

	t.Run("clamps an oversized page", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByOwnerIDFunc: func(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error) {
				assert.Equal(t, 50, limit)
				return nil, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/codes?limit=100000", nil)
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCodeHandler_Update(t *testing.T) {
	t.Run("patches the title", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.ShortCode, error) {
				return &model.ShortCode{ID: id, OwnerID: "acct-1", Kind: model.KindURL}, nil
			},
			updateFunc: func(ctx context.Context, id string, params model.UpdateShortCodeParams) (*model.ShortCode, error) {
				require.NotNil(t, params.Title)
				return &model.ShortCode{ID: id, OwnerID: "acct-1", Title: *params.Title}, nil
			},
		}

		req := httptest.NewRequest(http.MethodPatch, "/v1/codes/abc123", bytes.NewBufferString(`{"title":"Renamed"}`))
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Renamed")
	})

	t.Run("rejects an invalid status", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.ShortCode, error) {
				return &model.ShortCode{ID: id, OwnerID: "acct-1", Kind: model.KindURL}, nil
			},
		}

		req := httptest.NewRequest(http.MethodPatch, "/v1/codes/abc123", bytes.NewBufferString(`{"status":"frozen"}`))
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCodeHandler_Publish(t *testing.T) {
	t.Run("publishes with a style config", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.ShortCode, error) {
				return &model.ShortCode{ID: id, OwnerID: "acct-1", Kind: model.KindURL}, nil
			},
			publishFunc: func(ctx context.Context, id string, styleConfig json.RawMessage) (*model.ShortCode, error) {
				return &model.ShortCode{ID: id, OwnerID: "acct-1", StyleConfig: styleConfig, IsComplete: true}, nil
			},
		}

		body := `{"styleConfig":{"fg":"#000","bg":"#fff"}}`
		req := httptest.NewRequest(http.MethodPost, "/v1/codes/abc123/publish", bytes.NewBufferString(body))
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"isComplete":true`)
	})

	t.Run("requires a style config", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.ShortCode, error) {
				return &model.ShortCode{ID: id, OwnerID: "acct-1", Kind: model.KindURL}, nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/codes/abc123/publish", bytes.NewBufferString(`{}`))
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCodeHandler_Delete(t *testing.T) {
	t.Run("deletes an owned code", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.ShortCode, error) {
				return &model.ShortCode{ID: id, OwnerID: "acct-1"}, nil
			},
		}

		req := httptest.NewRequest(http.MethodDelete, "/v1/codes/abc123", nil)
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestCodeHandler_Stats(t *testing.T) {
	t.Run("reports scan usage", func(t *testing.T) {
		repo := &mockCodeRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.ShortCode, error) {
				return &model.ShortCode{ID: id, OwnerID: "acct-1", ScanCount: 7, ScanLimit: 10}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/codes/abc123/stats", nil)
		req = withAccount(req, testAccount())
		rec := httptest.NewRecorder()
		newCodesServer(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var stats struct {
			ScanCount int64  `json:"scanCount"`
			ScanLimit int64  `json:"scanLimit"`
			Remaining *int64 `json:"remaining"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, int64(7), stats.ScanCount)
		require.NotNil(t, stats.Remaining)
		assert.Equal(t, int64(3), *stats.Remaining)
	})
}
