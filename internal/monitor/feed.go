package monitor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/courtside-data/stroke.report/internal/monitoring"
	"github.com/courtside-data/stroke.report/internal/swing"
)

// feedBacklog is how many recent events a new subscriber receives on
// connect.
const feedBacklog = 16

// Feed broadcasts stroke events to server-sent-event subscribers. It
// implements swing.StrokeSink; HandleStroke never blocks on a slow
// subscriber, it drops the event for that subscriber instead.
type Feed struct {
	mu     sync.Mutex
	subs   map[int]chan []byte
	nextID int
	recent [][]byte
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan []byte)}
}

// HandleStroke serializes the event and fans it out.
func (f *Feed) HandleStroke(ev *swing.StrokeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal stroke for feed: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.recent = append(f.recent, payload)
	if len(f.recent) > feedBacklog {
		f.recent = f.recent[1:]
	}
	for id, ch := range f.subs {
		select {
		case ch <- payload:
		default:
			monitoring.Logf("Stroke feed: dropping event for slow subscriber %d", id)
		}
	}
	return nil
}

// Subscribers returns the current subscriber count.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) subscribe() (int, chan []byte, [][]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	ch := make(chan []byte, 32)
	f.subs[id] = ch
	backlog := make([][]byte, len(f.recent))
	copy(backlog, f.recent)
	return id, ch, backlog
}

func (f *Feed) unsubscribe(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, id)
}

// ServeHTTP streams strokes as server-sent events until the client
// disconnects.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch, backlog := f.subscribe()
	defer f.unsubscribe(id)

	for _, payload := range backlog {
		fmt.Fprintf(w, "event: stroke\ndata: %s\n\n", payload)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload := <-ch:
			fmt.Fprintf(w, "event: stroke\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
