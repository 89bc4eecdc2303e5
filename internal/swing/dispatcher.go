package swing

import (
	"sync"

	"github.com/courtside-data/stroke.report/internal/monitoring"
)

// dispatcher delivers stroke events to the sinks on a dedicated
// goroutine so a slow sink (a database write, a network publish) never
// stalls frame ingestion. The queue is unbounded and drained strictly in
// emission order, preserving the chronology guarantee; strokes are rare
// enough that the queue stays tiny in practice.
type dispatcher struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*StrokeEvent
	closed bool
	done   chan struct{}

	sinks []StrokeSink
}

func newDispatcher(sinks []StrokeSink) *dispatcher {
	d := &dispatcher{sinks: sinks, done: make(chan struct{})}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// enqueue hands an event to the worker without blocking. Events enqueued
// after close are dropped.
func (d *dispatcher) enqueue(ev *StrokeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		monitoring.Logf("Dropping stroke %s: dispatcher closed", ev.ID)
		return
	}
	d.queue = append(d.queue, ev)
	d.cond.Signal()
}

func (d *dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		ev := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		for _, s := range d.sinks {
			if err := s.HandleStroke(ev); err != nil {
				monitoring.Logf("Stroke sink error for %s: %v", ev.ID, err)
			}
		}
	}
}

// close delivers everything still queued, then stops the worker and
// waits for it to exit.
func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()
	<-d.done
}
