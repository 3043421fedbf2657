package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scanlink/scanlink-server-go/internal/config"
	apperrors "github.com/scanlink/scanlink-server-go/internal/errors"
	"github.com/scanlink/scanlink-server-go/internal/middleware"
	"github.com/scanlink/scanlink-server-go/internal/model"
	"github.com/scanlink/scanlink-server-go/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// CodeHandler is the authenticated dashboard surface for managing codes.
type CodeHandler struct {
	codes *service.CodeService
	cfg   *config.Config
}

func NewCodeHandler(codes *service.CodeService, cfg *config.Config) *CodeHandler {
	return &CodeHandler{codes: codes, cfg: cfg}
}

func (h *CodeHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/publish", h.Publish)
	r.Get("/{id}/stats", h.Stats)

	return r
}

type createCodeRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Kind        model.CodeKind  `json:"kind"`
	Content     json.RawMessage `json:"content"`
	ScanLimit   int64           `json:"scanLimit"`
	ExpiresAt   *time.Time      `json:"expiresAt"`
}

type codeResponse struct {
	*model.ShortCode
	ShortURL string `json:"shortUrl"`
}

func (h *CodeHandler) respond(code *model.ShortCode) codeResponse {
	return codeResponse{ShortCode: code, ShortURL: h.cfg.ShortURL(code.ID)}
}

func (h *CodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	var req createCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "invalid JSON"))
		return
	}

	code, err := h.codes.CreateDraft(r.Context(), account.ID, service.CreateDraftParams{
		Title:       req.Title,
		Description: req.Description,
		Kind:        req.Kind,
		Content:     req.Content,
		ScanLimit:   req.ScanLimit,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.respond(code))
}

func (h *CodeHandler) List(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	limit := queryInt(r, "limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	completeOnly := r.URL.Query().Get("complete") == "true"

	codes, err := h.codes.List(r.Context(), account.ID, completeOnly, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]codeResponse, 0, len(codes))
	for i := range codes {
		items = append(items, h.respond(&codes[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"codes":  items,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *CodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	code, err := h.codes.Get(r.Context(), account.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(code))
}

type updateCodeRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Content     json.RawMessage   `json:"content"`
	ScanLimit   *int64            `json:"scanLimit"`
	ExpiresAt   *time.Time        `json:"expiresAt"`
	ClearExpiry bool              `json:"clearExpiry"`
	Status      *model.CodeStatus `json:"status"`
}

func (h *CodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	var req updateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "invalid JSON"))
		return
	}

	code, err := h.codes.Update(r.Context(), account.ID, chi.URLParam(r, "id"), model.UpdateShortCodeParams{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		ScanLimit:   req.ScanLimit,
		ExpiresAt:   req.ExpiresAt,
		ClearExpiry: req.ClearExpiry,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(code))
}

func (h *CodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	if err := h.codes.Delete(r.Context(), account.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type publishCodeRequest struct {
	StyleConfig json.RawMessage `json:"styleConfig"`
}

func (h *CodeHandler) Publish(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	var req publishCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "invalid JSON"))
		return
	}

	code, err := h.codes.Publish(r.Context(), account.ID, chi.URLParam(r, "id"), req.StyleConfig)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(code))
}

func (h *CodeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	stats, err := h.codes.Stats(r.Context(), account.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
