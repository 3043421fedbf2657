package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scanlink/scanlink-server-go/internal/audit"
	apperrors "github.com/scanlink/scanlink-server-go/internal/errors"
	"github.com/scanlink/scanlink-server-go/internal/model"
	"github.com/scanlink/scanlink-server-go/internal/repository"
	"github.com/scanlink/scanlink-server-go/internal/util"
)

type contextKey string

const AccountContextKey contextKey = "account"

func GetAccount(ctx context.Context) *model.Account {
	if account, ok := ctx.Value(AccountContextKey).(*model.Account); ok {
		return account
	}
	return nil
}

// AuthMiddleware resolves a bearer token to the owning account. The token is
// issued by the external auth collaborator; this layer only maps its hash to
// an account row.
type AuthMiddleware struct {
	accountRepo repository.AccountRepository
}

func NewAuthMiddleware(accountRepo repository.AccountRepository) *AuthMiddleware {
	return &AuthMiddleware{accountRepo: accountRepo}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, apperrors.Unauthorized("Missing authentication token"))
			return
		}

		tokenHash := util.HashToken(token)
		account, err := m.accountRepo.FindByTokenHash(r.Context(), tokenHash)
		if err != nil {
			log.Error().Err(err).Msg("auth middleware: database error")
			writeError(w, apperrors.Database(err))
			return
		}

		if account == nil {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
			writeError(w, apperrors.InvalidToken("Invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
