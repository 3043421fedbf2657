package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/scanlink/scanlink-server-go/internal/model"
)

// ScanEvent describes one counted visit. It is published to the live SSE feed
// and, when configured, to the analytics queue.
type ScanEvent struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	OwnerID   string         `json:"ownerId"`
	Kind      model.CodeKind `json:"kind"`
	ScanCount int64          `json:"scanCount"`
	UserAgent string         `json:"userAgent,omitempty"`
	Referrer  string         `json:"referrer,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewScanEvent(rec *model.ShortCode, newCount int64, userAgent, referrer string) ScanEvent {
	return ScanEvent{
		ID:        uuid.NewString(),
		Code:      rec.ID,
		OwnerID:   rec.OwnerID,
		Kind:      rec.Kind,
		ScanCount: newCount,
		UserAgent: userAgent,
		Referrer:  referrer,
		Timestamp: time.Now().UTC(),
	}
}
