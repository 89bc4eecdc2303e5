package swing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/stroke.report/internal/testutil"
)

func TestSegmenter_SegmentsFullStroke(t *testing.T) {
	s := NewSegmenter(testTuning())
	script := testutil.DefaultStrokeScript()
	frames := script.Build()

	ps, reason := s.Segment(frames, script.ContactIndex())
	require.Equal(t, RejectNone, reason)

	// Phase boundaries land on the scripted transitions: the coil starts
	// at frame 8 and the forward swing at frame 16.
	assert.Equal(t, 8, ps.Loading.Start)
	assert.Equal(t, 16, ps.Acceleration.Start)
	assert.Equal(t, script.ContactIndex(), ps.Contact.Start)
	assert.Equal(t, 1, ps.Contact.Len())
	assert.Equal(t, ps.Contact.End, ps.FollowThrough.Start)

	// Strict ordering.
	assert.Less(t, ps.Preparation.Start, ps.Loading.Start)
	assert.Less(t, ps.Loading.Start, ps.Acceleration.Start)
	assert.Less(t, ps.Acceleration.Start, ps.Contact.Start)
	assert.Less(t, ps.Contact.Start, ps.FollowThrough.Start)

	assert.True(t, s.FullyValid(&ps))
}

func TestSegmenter_RejectsContactAtBufferEdge(t *testing.T) {
	s := NewSegmenter(testTuning())
	frames := testutil.DefaultStrokeScript().Build()

	_, reason := s.Segment(frames, len(frames)-1)
	assert.Equal(t, RejectContactNotInside, reason)

	_, reason = s.Segment(frames, 1)
	assert.Equal(t, RejectContactNotInside, reason)
}

func TestSegmenter_RejectsWithoutCoil(t *testing.T) {
	s := NewSegmenter(testTuning())

	// No rotation at all: there is no still-but-coiling frame to anchor
	// the loading phase on.
	script := testutil.DefaultStrokeScript()
	script.RotationGain = 0
	_, reason := s.Segment(script.Build(), script.ContactIndex())
	assert.Equal(t, RejectNoLoadingStart, reason)
}

func TestSegmenter_RejectsInsufficientRotationGain(t *testing.T) {
	s := NewSegmenter(testTuning())

	// A token coil: rotation increases, so segmentation finds the
	// phases, but the gain is under the configured minimum.
	script := testutil.DefaultStrokeScript()
	script.RotationGain = 1.0
	_, reason := s.Segment(script.Build(), script.ContactIndex())
	assert.Equal(t, RejectNoRotationGain, reason)
}

func TestSegmenter_ServeExemptFromRotationGain(t *testing.T) {
	s := NewSegmenter(testTuning())

	script := testutil.DefaultStrokeScript()
	script.RotationGain = 1.0
	frames := script.Build()
	for i := script.PrepFrames + script.LoadFrames; i <= script.ContactIndex(); i++ {
		frames[i].VerticalMotion = 1.2
	}

	_, reason := s.Segment(frames, script.ContactIndex())
	assert.Equal(t, RejectNone, reason)
}

func TestSegmenter_RejectsShortFollowThrough(t *testing.T) {
	s := NewSegmenter(testTuning())

	script := testutil.DefaultStrokeScript()
	script.FollowFrames = 2
	_, reason := s.Segment(script.Build(), script.ContactIndex())
	assert.Equal(t, RejectShortFollow, reason)
}

func TestSegmenter_FullyValidNeedsLongerPhases(t *testing.T) {
	s := NewSegmenter(testTuning())

	// Four acceleration frames pass detection-time validation but fall
	// short of the full-analysis minimum.
	script := testutil.DefaultStrokeScript()
	script.AccelFrames = 4
	ps, reason := s.Segment(script.Build(), script.ContactIndex())
	require.Equal(t, RejectNone, reason)
	assert.False(t, s.FullyValid(&ps))
}
