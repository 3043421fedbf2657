package service

import (
	"time"

	"github.com/scanlink/scanlink-server-go/internal/model"
)

// DenyReason is the user-facing classification of a refused visit. The string
// values are part of the external interface: they travel verbatim as the
// `reason` query parameter on the explanatory redirect.
type DenyReason string

const (
	DenyNone     DenyReason = ""
	DenyNotFound DenyReason = "not_found"
	DenyInactive DenyReason = "inactive"
	DenyExpired  DenyReason = "expired"
	DenyLimit    DenyReason = "limit"
)

// Decision is the outcome of the admission gate.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

var allowed = Decision{Allowed: true}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// EvaluateGate decides whether a resolution attempt may proceed. Pure and
// deterministic: same record and clock in, same decision out.
//
// The check order is part of the contract. The most permanent reason wins so
// that a paused or expired code never reveals whether its limit was reached.
func EvaluateGate(rec *model.ShortCode, now time.Time) Decision {
	if rec == nil {
		return deny(DenyNotFound)
	}
	if rec.Status != model.CodeStatusActive {
		return deny(DenyInactive)
	}
	if rec.ExpiresAt != nil && !now.Before(*rec.ExpiresAt) {
		return deny(DenyExpired)
	}
	if rec.ScanLimit > 0 && rec.ScanCount >= rec.ScanLimit {
		return deny(DenyLimit)
	}
	return allowed
}
