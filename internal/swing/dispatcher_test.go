package swing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// channelSink pushes every delivery onto a channel so tests can observe
// sink calls from the dispatcher goroutine without data races.
type channelSink struct {
	got chan *StrokeEvent
}

func newChannelSink(capacity int) *channelSink {
	return &channelSink{got: make(chan *StrokeEvent, capacity)}
}

func (c *channelSink) HandleStroke(ev *StrokeEvent) error {
	c.got <- ev
	return nil
}

// gateSink blocks inside HandleStroke until released, standing in for a
// slow database or network sink.
type gateSink struct {
	release chan struct{}
	got     chan *StrokeEvent
}

func newGateSink(capacity int) *gateSink {
	return &gateSink{release: make(chan struct{}), got: make(chan *StrokeEvent, capacity)}
}

func (g *gateSink) HandleStroke(ev *StrokeEvent) error {
	<-g.release
	g.got <- ev
	return nil
}

type failingSink struct{}

func (failingSink) HandleStroke(*StrokeEvent) error { return errSinkFailed }

var errSinkFailed = errors.New("sink failed")

func TestDispatcher_DeliversInOrder(t *testing.T) {
	sink := newChannelSink(10)
	d := newDispatcher([]StrokeSink{sink})

	for i := 0; i < 5; i++ {
		d.enqueue(&StrokeEvent{TimestampMs: int64(i)})
	}
	d.close()

	require.Len(t, sink.got, 5, "close must drain everything still queued")
	for i := 0; i < 5; i++ {
		ev := <-sink.got
		assert.Equal(t, int64(i), ev.TimestampMs, "delivery order must match emission order")
	}
}

func TestDispatcher_EnqueueNeverBlocksOnSlowSink(t *testing.T) {
	sink := newGateSink(10)
	d := newDispatcher([]StrokeSink{sink})

	// The first event parks the worker inside the sink; the rest must
	// still enqueue without waiting for it.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 4; i++ {
			d.enqueue(&StrokeEvent{TimestampMs: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked behind a slow sink")
	}

	close(sink.release)
	d.close()
	require.Len(t, sink.got, 4)
	for i := 0; i < 4; i++ {
		assert.Equal(t, int64(i), (<-sink.got).TimestampMs)
	}
}

func TestDispatcher_DropsAfterClose(t *testing.T) {
	sink := newChannelSink(2)
	d := newDispatcher([]StrokeSink{sink})
	d.close()

	d.enqueue(&StrokeEvent{ID: "late"})
	assert.Empty(t, sink.got, "events enqueued after close are dropped, not delivered")
}

func TestDispatcher_SinkErrorDoesNotStopStream(t *testing.T) {
	sink := newChannelSink(4)
	d := newDispatcher([]StrokeSink{failingSink{}, sink})

	d.enqueue(&StrokeEvent{TimestampMs: 1})
	d.enqueue(&StrokeEvent{TimestampMs: 2})
	d.close()

	require.Len(t, sink.got, 2, "a failing sink must not block later sinks or events")
}
