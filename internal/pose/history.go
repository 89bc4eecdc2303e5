package pose

// DefaultHistoryCapacity is roughly two seconds of frames at 30 Hz.
const DefaultHistoryCapacity = 60

// History is a bounded FIFO of enriched frames: the working memory for
// boundary detection and phase segmentation. Timestamps are strictly
// monotonic; appends that violate this are dropped. The buffer is fully
// cleared when a stroke is finalized, which is what guarantees at most
// one in-flight stroke at a time.
type History struct {
	frames   []Frame
	capacity int
}

// NewHistory creates a History with the given capacity. A capacity of
// zero or less falls back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		frames:   make([]Frame, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a frame, dropping the oldest on overflow. Returns false
// when the frame's timestamp is not strictly after the newest frame.
func (h *History) Append(f Frame) bool {
	if n := len(h.frames); n > 0 && f.TimestampMs <= h.frames[n-1].TimestampMs {
		return false
	}
	if len(h.frames) == h.capacity {
		copy(h.frames, h.frames[1:])
		h.frames = h.frames[:h.capacity-1]
	}
	h.frames = append(h.frames, f)
	return true
}

// Len returns the number of buffered frames.
func (h *History) Len() int { return len(h.frames) }

// Capacity returns the buffer capacity.
func (h *History) Capacity() int { return h.capacity }

// At returns the frame at index i, oldest first.
func (h *History) At(i int) *Frame { return &h.frames[i] }

// Last returns the newest frame, or nil when empty.
func (h *History) Last() *Frame {
	if len(h.frames) == 0 {
		return nil
	}
	return &h.frames[len(h.frames)-1]
}

// Frames returns the underlying frame slice, oldest first. The slice is
// shared, read-only working storage: phase boundaries index into it
// rather than copying sub-sequences.
func (h *History) Frames() []Frame { return h.frames }

// Clear empties the buffer. Called at stroke finalization.
func (h *History) Clear() { h.frames = h.frames[:0] }
