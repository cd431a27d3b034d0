package server

import (
	"sync"

	"github.com/yourusername/parlayscope/internal/metrics"
	"github.com/yourusername/parlayscope/internal/models"
)

// ExtractionEvent is one progress update on an extraction stream
type ExtractionEvent struct {
	Stage        models.ExtractionStage `json:"stage"`
	Percent      int                    `json:"percent"`
	Message      string                 `json:"message,omitempty"`
	SlipID       string                 `json:"slip_id,omitempty"`
	SimulationID string                 `json:"simulation_id,omitempty"`
}

// Terminal reports whether no further events follow this one
func (e ExtractionEvent) Terminal() bool {
	return e.Stage == models.StageComplete || e.Stage == models.StageError
}

// Hub fans extraction progress out to websocket subscribers. Events are
// buffered per extraction so a subscriber that connects mid-run still sees
// the full monotonic sequence.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[chan ExtractionEvent]struct{}
	history map[string][]ExtractionEvent
	closed  map[string]bool
}

// NewHub creates an extraction progress hub
func NewHub() *Hub {
	return &Hub{
		subs:    make(map[string]map[chan ExtractionEvent]struct{}),
		history: make(map[string][]ExtractionEvent),
		closed:  make(map[string]bool),
	}
}

// Publish records an event and delivers it to current subscribers.
// A terminal event closes the stream for everyone.
func (h *Hub) Publish(extractionID string, event ExtractionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed[extractionID] {
		return
	}
	h.history[extractionID] = append(h.history[extractionID], event)

	for ch := range h.subs[extractionID] {
		select {
		case ch <- event:
		default: // slow subscriber, it will catch up from history on reconnect
		}
	}

	if event.Terminal() {
		h.closed[extractionID] = true
		for ch := range h.subs[extractionID] {
			close(ch)
			metrics.WebsocketSubscribers.Dec()
		}
		delete(h.subs, extractionID)
	}
}

// Subscribe returns buffered history plus a channel of future events. The
// channel is nil when the stream already hit a terminal stage.
func (h *Hub) Subscribe(extractionID string) ([]ExtractionEvent, chan ExtractionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	replay := make([]ExtractionEvent, len(h.history[extractionID]))
	copy(replay, h.history[extractionID])

	if h.closed[extractionID] {
		return replay, nil
	}

	ch := make(chan ExtractionEvent, 64)
	if h.subs[extractionID] == nil {
		h.subs[extractionID] = make(map[chan ExtractionEvent]struct{})
	}
	h.subs[extractionID][ch] = struct{}{}
	metrics.WebsocketSubscribers.Inc()
	return replay, ch
}

// Unsubscribe detaches a live subscriber channel
func (h *Hub) Unsubscribe(extractionID string, ch chan ExtractionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[extractionID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
			metrics.WebsocketSubscribers.Dec()
		}
	}
}

// Forget drops the buffered history for a finished extraction
func (h *Hub) Forget(extractionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.history, extractionID)
	delete(h.closed, extractionID)
}
