package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scanlink/scanlink-server-go/internal/model"
)

func TestNewScanEvent(t *testing.T) {
	rec := &model.ShortCode{
		ID:      "abc123",
		OwnerID: "owner-1",
		Kind:    model.KindURL,
	}

	t.Run("captures the visit", func(t *testing.T) {
		event := NewScanEvent(rec, 5, "agent", "https://referrer.example")

		assert.NotEmpty(t, event.ID)
		assert.Equal(t, "abc123", event.Code)
		assert.Equal(t, "owner-1", event.OwnerID)
		assert.Equal(t, model.KindURL, event.Kind)
		assert.Equal(t, int64(5), event.ScanCount)
		assert.Equal(t, "agent", event.UserAgent)
		assert.WithinDuration(t, time.Now(), event.Timestamp, time.Second)
	})

	t.Run("assigns a fresh id per event", func(t *testing.T) {
		first := NewScanEvent(rec, 1, "", "")
		second := NewScanEvent(rec, 2, "", "")

		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestNopPublisher(t *testing.T) {
	t.Run("accepts events and closes cleanly", func(t *testing.T) {
		p := NopPublisher{}

		assert.NoError(t, p.Publish(context.Background(), ScanEvent{}))
		assert.NoError(t, p.Close())
	})
}
