package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/courtside-data/stroke.report/internal/monitoring"
	"github.com/courtside-data/stroke.report/internal/pose"
	"github.com/courtside-data/stroke.report/internal/swing"
	"github.com/courtside-data/stroke.report/internal/timeutil"
)

// Processor consumes one frame of joints at a time. *swing.Pipeline
// satisfies it.
type Processor interface {
	ProcessFrame(joints *pose.Joints, timestampMs int64) *swing.StrokeEvent
}

// Replayer drives a Processor from a recorded session. In realtime mode
// it paces frames by their recorded timestamps using the clock;
// otherwise it runs flat out.
type Replayer struct {
	proc     Processor
	clock    timeutil.Clock
	realtime bool
}

// NewReplayer creates a replayer. clock may be nil unless realtime is
// set.
func NewReplayer(proc Processor, clock timeutil.Clock, realtime bool) *Replayer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Replayer{proc: proc, clock: clock, realtime: realtime}
}

// ReplayStats summarizes one replay run.
type ReplayStats struct {
	Frames  int
	Skipped int
	Strokes int
}

// Replay feeds every record from r through the processor. Malformed
// lines are logged and skipped; the stream only aborts on read errors or
// context cancellation.
func (rp *Replayer) Replay(ctx context.Context, r io.Reader) (ReplayStats, error) {
	var stats ReplayStats
	reader := NewReader(r)
	var prevTs int64

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			monitoring.Logf("Skipping bad session record: %v", err)
			stats.Skipped++
			continue
		}
		joints, err := rec.Joints()
		if err != nil {
			monitoring.Logf("Skipping bad session record: %v", err)
			stats.Skipped++
			continue
		}

		if rp.realtime && prevTs > 0 && rec.TimestampMs > prevTs {
			rp.clock.Sleep(time.Duration(rec.TimestampMs-prevTs) * time.Millisecond)
		}
		prevTs = rec.TimestampMs

		stats.Frames++
		if ev := rp.proc.ProcessFrame(joints, rec.TimestampMs); ev != nil {
			stats.Strokes++
		}
	}
}
