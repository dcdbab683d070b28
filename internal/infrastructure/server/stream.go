package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/specforge/pkg/application"
	"github.com/felixgeelhaar/specforge/pkg/domain/events"
)

const keepaliveInterval = 30 * time.Second

// streamHandler serves per-project event streams over SSE and WebSocket.
type streamHandler struct {
	service   *application.ProjectService
	bus       *events.Bus
	logger    *slog.Logger
	keepalive time.Duration
	upgrader  websocket.Upgrader
}

func newStreamHandler(service *application.ProjectService, bus *events.Bus, logger *slog.Logger) *streamHandler {
	return &streamHandler{
		service:   service,
		bus:       bus,
		logger:    logger,
		keepalive: keepaliveInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// serveSSE streams project events as Server-Sent Events. The stream opens
// with a "connected" event and closes after a terminal event.
func (h *streamHandler) serveSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	projectID := chi.URLParam(r, "id")
	if _, err := h.service.Get(r.Context(), projectID); err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	// Subscribe before writing headers so no event falls in the gap.
	sub := h.bus.Subscribe(projectID)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {\"project_id\":%q}\n\n", projectID)
	flusher.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				h.logger.Error("marshal event", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data)
			flusher.Flush()
			if e.Terminal() {
				return
			}
		}
	}
}

// serveWS streams the same events over a WebSocket connection.
func (h *streamHandler) serveWS(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if _, err := h.service.Get(r.Context(), projectID); err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	sub := h.bus.Subscribe(projectID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		return
	}

	go func() {
		defer sub.Close()
		defer conn.Close()

		// Drain client frames so close handshakes are noticed.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(h.keepalive)
		defer ticker.Stop()

		type connected struct {
			Type      string `json:"type"`
			ProjectID string `json:"project_id"`
		}
		if err := conn.WriteJSON(connected{Type: "connected", ProjectID: projectID}); err != nil {
			return
		}

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			case e, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := conn.WriteJSON(e); err != nil {
					return
				}
				if e.Terminal() {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "pipeline finished"),
						time.Now().Add(5*time.Second))
					return
				}
			}
		}
	}()
}
