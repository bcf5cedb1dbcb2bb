package watch

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/szaher/layermake/internal/events"
)

// SSEWriter wraps an http.ResponseWriter for Server-Sent Event streaming.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates an SSE writer, setting the streaming headers.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one event, named by its lifecycle type.
func (s *SSEWriter) WriteEvent(e *events.Event) error {
	data, err := e.JSON()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Broadcaster fans events out to any number of SSE subscribers. It
// implements events.Emitter, so it can sit in a MultiEmitter next to
// logging.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan *events.Event]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan *events.Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel must be
// called when the subscriber goes away.
func (b *Broadcaster) Subscribe() (<-chan *events.Event, func()) {
	ch := make(chan *events.Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Emit implements events.Emitter. Slow subscribers lose events rather
// than blocking the run.
func (b *Broadcaster) Emit(e *events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
