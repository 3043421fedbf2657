package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scanlink/scanlink-server-go/internal/middleware"
	"github.com/scanlink/scanlink-server-go/internal/sse"
)

// EventsHandler streams live scan events to the owner's dashboard over SSE.
type EventsHandler struct {
	broker *sse.Broker
}

func NewEventsHandler(broker *sse.Broker) *EventsHandler {
	return &EventsHandler{broker: broker}
}

// Stream handles GET /v1/events. The connection stays open until the client
// disconnects or the server shuts down.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Streaming not supported",
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := h.broker.Subscribe(account.ID)
	defer h.broker.Unsubscribe(client)

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(sse.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-client.Done:
			return

		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()

		case event := <-client.Events:
			data, err := json.Marshal(event.Data)
			if err != nil {
				log.Error().Err(err).Msg("failed to marshal sse event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}
