package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/scanlink/scanlink-server-go/internal/errors"
	"github.com/scanlink/scanlink-server-go/internal/model"
	"github.com/scanlink/scanlink-server-go/internal/service"
)

// ResolveHandler serves the visitor-facing short code path. It never requires
// authentication: anyone holding a code may scan it.
type ResolveHandler struct {
	resolver      *service.ResolverService
	deniedPageURL string
}

func NewResolveHandler(resolver *service.ResolverService, deniedPageURL string) *ResolveHandler {
	return &ResolveHandler{
		resolver:      resolver,
		deniedPageURL: deniedPageURL,
	}
}

// Resolve handles GET /{code}.
//
// Redirect kinds answer 302 to the destination. Page kinds answer the decoded
// content as JSON for the landing renderer. Denied visits answer 302 to the
// explanatory page with the reason in the query string, so the visitor sees
// why the code stopped working instead of a dead link. API callers that ask
// for JSON (Accept: application/json) get a 410 error payload instead of the
// redirect.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	hints := service.VisitHints{
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		IP:        r.RemoteAddr,
	}

	resolution, err := h.resolver.Resolve(r.Context(), code, hints)
	if err != nil {
		writeError(w, err)
		return
	}

	switch resolution.Outcome {
	case service.OutcomeRedirect:
		http.Redirect(w, r, resolution.TargetURL, http.StatusFound)

	case service.OutcomeRender:
		writeJSON(w, http.StatusOK, renderPayload{
			Kind:    resolution.Kind,
			Content: resolution.Content,
		})

	case service.OutcomeDenied:
		if wantsJSON(r) {
			writeError(w, denialError(resolution.Reason))
			return
		}
		http.Redirect(w, r, h.deniedURL(resolution.Reason), http.StatusFound)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "Code not found",
		})
	}
}

type renderPayload struct {
	Kind    model.CodeKind `json:"kind"`
	Content model.Content  `json:"content"`
}

func (h *ResolveHandler) deniedURL(reason service.DenyReason) string {
	return fmt.Sprintf("%s?reason=%s", h.deniedPageURL, url.QueryEscape(string(reason)))
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func denialError(reason service.DenyReason) *apperrors.AppError {
	switch reason {
	case service.DenyExpired:
		return apperrors.CodeExpired()
	case service.DenyLimit:
		return apperrors.ScanLimitReached()
	default:
		return apperrors.CodeInactive()
	}
}
