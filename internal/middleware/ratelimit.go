package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scanlink/scanlink-server-go/internal/audit"
	"github.com/scanlink/scanlink-server-go/internal/config"
	apperrors "github.com/scanlink/scanlink-server-go/internal/errors"
	"github.com/scanlink/scanlink-server-go/internal/service"
)

const accountRateLimitWindow = time.Minute

// RateLimitMiddleware throttles authenticated dashboard calls per account,
// honouring the per-account override stored on the account row.
type RateLimitMiddleware struct {
	limiter *service.RateLimiter
}

func NewRateLimitMiddleware(limiter *service.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := GetAccount(r.Context())
		if account == nil {
			next.ServeHTTP(w, r)
			return
		}

		limit := account.RateLimitPerMin
		if limit <= 0 {
			limit = config.DefaultRateLimitPerMin
		}

		key := "account:" + account.ID
		allowed, resetAt := m.limiter.CheckLimit(r.Context(), key, limit, accountRateLimitWindow)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			log.Warn().Str("accountId", account.ID).Msg("rate limit exceeded")
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				OwnerID: account.ID,
			})
			w.Header().Set("Retry-After", "60")
			writeError(w, apperrors.RateLimitExceeded())
			return
		}

		next.ServeHTTP(w, r)
	})
}
