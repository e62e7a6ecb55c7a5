package store

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Subscription is a live-listener handle. Cancel stops delivery; it is safe
// to call more than once.
type Subscription struct {
	ID   string
	Path string

	ch     chan json.RawMessage
	cancel func()
	once   sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// hub fans writes out to subscribers. Each subscriber owns a buffered
// channel drained by its own goroutine, so a slow callback never blocks a
// writer; when the buffer is full the oldest snapshot is dropped, because
// every delivery is a full snapshot and only the latest matters.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[string]*Subscription
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[string]*Subscription)}
}

func (h *hub) subscribe(path string, onChange func(doc json.RawMessage)) *Subscription {
	sub := &Subscription{
		ID:   uuid.NewString(),
		Path: path,
		ch:   make(chan json.RawMessage, 16),
	}
	sub.cancel = func() {
		h.mu.Lock()
		if byID, ok := h.subs[path]; ok {
			delete(byID, sub.ID)
			if len(byID) == 0 {
				delete(h.subs, path)
			}
		}
		h.mu.Unlock()
		close(sub.ch)
	}

	h.mu.Lock()
	if h.subs[path] == nil {
		h.subs[path] = make(map[string]*Subscription)
	}
	h.subs[path][sub.ID] = sub
	h.mu.Unlock()

	go func() {
		for doc := range sub.ch {
			onChange(doc)
		}
	}()

	return sub
}

// paths returns every path that currently has at least one subscriber.
func (h *hub) paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	paths := make([]string, 0, len(h.subs))
	for path := range h.subs {
		paths = append(paths, path)
	}
	return paths
}

func (h *hub) publish(path string, doc json.RawMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs[path] {
		select {
		case sub.ch <- doc:
		default:
			// buffer full, drop the oldest snapshot to make room
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- doc:
			default:
			}
		}
	}
}
