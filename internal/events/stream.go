package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Stream pushes published events to browsers as server-sent events so open
// screens can refresh the records they display.
type Stream struct {
	bus       *Bus
	logger    *slog.Logger
	heartbeat time.Duration
	buffer    int
	done      chan struct{}
	closeOnce sync.Once
}

// NewStream constructs a Stream over bus.
func NewStream(bus *Bus, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{bus: bus, logger: logger, heartbeat: 15 * time.Second, buffer: 32, done: make(chan struct{})}
}

// Close ends every open stream. It is meant for server shutdown, where
// long-lived connections would otherwise hold Shutdown until its deadline.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	queue := make(chan Event, s.buffer)
	unsubscribe := s.bus.SubscribeAll(func(_ context.Context, evt Event) {
		select {
		case queue <- evt:
		default:
			s.logger.Warn("event stream client too slow, dropping event", slog.String("topic", string(evt.Topic())))
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "retry: 3000\n\n")
	flusher.Flush()

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		case evt := <-queue:
			if err := writeEvent(w, evt); err != nil {
				s.logger.Debug("event stream write", slog.Any("error", err))
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Topic(), data)
	return err
}
