package model

import (
	"encoding/json"
	"time"
)

type ShortCode struct {
	ID          string          `db:"id" json:"id"`
	OwnerID     string          `db:"owner_id" json:"ownerId"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Kind        CodeKind        `db:"kind" json:"kind"`
	Content     json.RawMessage `db:"content" json:"content"`
	StyleConfig json.RawMessage `db:"style_config" json:"styleConfig,omitempty"`
	ScanCount   int64           `db:"scan_count" json:"scanCount"`
	ScanLimit   int64           `db:"scan_limit" json:"scanLimit"`
	ExpiresAt   *time.Time      `db:"expires_at" json:"expiresAt,omitempty"`
	Status      CodeStatus      `db:"status" json:"status"`
	IsComplete  bool            `db:"is_complete" json:"isComplete"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

type CreateShortCodeParams struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Kind        CodeKind
	Content     json.RawMessage
	ScanLimit   int64
	ExpiresAt   *time.Time
}

// UpdateShortCodeParams carries an owner edit. Nil fields are left unchanged.
// Kind and scan count are deliberately absent: both are immutable from the
// dashboard.
type UpdateShortCodeParams struct {
	Title       *string
	Description *string
	Content     json.RawMessage
	ScanLimit   *int64
	ExpiresAt   *time.Time
	ClearExpiry bool
	Status      *CodeStatus
}
