package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering happens at the CORS layer; websocket upgrades from
		// the dashboard carry no credentials worth protecting here
		return true
	},
}

// HandleExtractionStream streams extraction progress over a websocket.
// Buffered events replay first so a late subscriber still sees every stage.
func (h *Handler) HandleExtractionStream(w http.ResponseWriter, r *http.Request) {
	extractionID := chi.URLParam(r, "extractionID")
	if extractionID == "" {
		respondError(w, http.StatusBadRequest, "extraction id is required", nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	replay, live := h.hub.Subscribe(extractionID)
	if live != nil {
		defer h.hub.Unsubscribe(extractionID, live)
	}

	h.logger.WithFields(logrus.Fields{
		"extraction_id": extractionID,
		"replayed":      len(replay),
	}).Debug("Extraction stream subscriber connected")

	for _, event := range replay {
		if err := writeEvent(conn, event); err != nil {
			return
		}
		if event.Terminal() {
			return
		}
	}
	if live == nil {
		// stream finished before this subscriber connected and history held
		// no terminal event; nothing more will arrive
		return
	}

	// discard inbound frames, surfacing only close errors
	go func() {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-live:
			if !ok {
				return
			}
			if err := writeEvent(conn, event); err != nil {
				return
			}
			if event.Terminal() {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, event ExtractionEvent) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(event)
}
