package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scanlink/scanlink-server-go/internal/audit"
	apperrors "github.com/scanlink/scanlink-server-go/internal/errors"
	"github.com/scanlink/scanlink-server-go/internal/middleware"
	"github.com/scanlink/scanlink-server-go/internal/repository"
	"github.com/scanlink/scanlink-server-go/internal/util"
)

// AccountHandler exposes the caller's own account. Accounts are provisioned
// out of band; the API only reads them and rotates credentials.
type AccountHandler struct {
	accountRepo repository.AccountRepository
}

func NewAccountHandler(accountRepo repository.AccountRepository) *AccountHandler {
	return &AccountHandler{accountRepo: accountRepo}
}

func (h *AccountHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Me)
	r.Post("/token", h.RegenerateToken)

	return r
}

// Me re-reads the account row rather than echoing the copy the auth layer
// stamped on the context, so out-of-band edits (rate limit overrides, renames)
// are visible immediately.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	fresh, err := h.accountRepo.FindByID(r.Context(), account.ID)
	if err != nil {
		writeError(w, apperrors.Database(err))
		return
	}
	if fresh == nil {
		writeError(w, apperrors.NotFound("Account"))
		return
	}

	writeJSON(w, http.StatusOK, fresh)
}

// RegenerateToken replaces the account's API token. The plaintext is returned
// exactly once; only its hash is stored.
func (h *AccountHandler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	token, err := util.GenerateToken()
	if err != nil {
		writeError(w, apperrors.Internal("could not generate token"))
		return
	}

	updated, err := h.accountRepo.UpdateToken(r.Context(), account.ID, util.HashToken(token))
	if err != nil {
		writeError(w, apperrors.Database(err))
		return
	}
	if updated == nil {
		writeError(w, apperrors.NotFound("Account"))
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventTokenRegenerate,
		OwnerID: account.ID,
	})

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
