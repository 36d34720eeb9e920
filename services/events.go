package services

import (
	"sync"

	"verbum-lector/internal/config"
	"verbum-lector/internal/editor"
	"verbum-lector/internal/logger"
	"verbum-lector/models"
)

// EventType names what changed in a session.
type EventType string

const (
	EventStage       EventType = "stage"
	EventError       EventType = "error"
	EventFocus       EventType = "focus"
	EventSegments    EventType = "segments"
	EventTranslation EventType = "translation"
)

// Event is published to session subscribers after every state change.
type Event struct {
	Type      EventType               `json:"type"`
	SessionID string                  `json:"sessionId"`
	Status    *models.SessionStatus   `json:"status,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Focus     *editor.FocusRequest    `json:"focus,omitempty"`
	Segments  []editor.Segment        `json:"segments,omitempty"`
	Rows      []models.TranslationRow `json:"rows,omitempty"`
}

// hub fans events out to subscribers. Slow subscribers lose events rather
// than stalling the session.
type hub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan Event
	closed bool
	log    *logger.Logger
}

func newHub(log *logger.Logger) *hub {
	return &hub{subs: make(map[int]chan Event), log: log}
}

func (h *hub) subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, config.SessionEventBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

func (h *hub) publish(events ...Event) {
	if len(events) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ev := range events {
		for id, ch := range h.subs {
			select {
			case ch <- ev:
			default:
				h.log.Warn("dropping %s event for slow subscriber %d", ev.Type, id)
			}
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
