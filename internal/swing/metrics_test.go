package swing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/stroke.report/internal/config"
	"github.com/courtside-data/stroke.report/internal/testutil"
)

func TestExtractMetrics(t *testing.T) {
	a := newAnalyzer(testTuning(), config.HandRight)
	frames, ps := segmentScript(t, testutil.DefaultStrokeScript())

	m := a.ExtractMetrics(frames, &ps)

	elbow, ok := m.Get(MetricContactElbowAngle)
	require.True(t, ok)
	assert.InDelta(t, 140, elbow, 1.0)

	gain, ok := m.Get(MetricLoadingRotGain)
	require.True(t, ok)
	assert.InDelta(t, 17.5, gain, 0.1)

	follow, ok := m.Get(MetricFollowFrames)
	require.True(t, ok)
	assert.Equal(t, float64(ps.FollowThrough.Len()), follow)

	peakVel, ok := m.Get(MetricPeakVelocity)
	require.True(t, ok)
	assert.InDelta(t, 0.06, peakVel, 1e-9)

	peakAccel, ok := m.Get(MetricPeakAcceleration)
	require.True(t, ok)
	assert.InDelta(t, 0.5, peakAccel, 1e-9)

	height, ok := m.Get(MetricContactHeight)
	require.True(t, ok)
	assert.Greater(t, height, 0.0)
	assert.Less(t, height, 1.0)

	lead, ok := m.Get(MetricWristLead)
	require.True(t, ok)
	assert.Greater(t, lead, 0.0, "wrist out front along the swing direction")

	// Flat hips in the script: no split-step.
	split, ok := m.Get(MetricSplitStep)
	require.True(t, ok)
	assert.Zero(t, split)

	balanced, ok := m.Get(MetricBalancedFinish)
	require.True(t, ok)
	assert.Equal(t, 1.0, balanced)
}

func TestExtractMetrics_OccludedJointsOmitted(t *testing.T) {
	a := newAnalyzer(testTuning(), config.HandRight)
	frames, ps := segmentScript(t, testutil.DefaultStrokeScript())

	// Hide the dominant arm at the contact frame: the elbow and wrist
	// metrics must be absent, never zero.
	contact := &frames[ps.Contact.Start]
	contact.ElbowAngle = nil
	contact.Joints[a.wrist()].Visibility = 0

	m := a.ExtractMetrics(frames, &ps)
	_, ok := m.Get(MetricContactElbowAngle)
	assert.False(t, ok)
	_, ok = m.Get(MetricContactHeight)
	assert.False(t, ok)
	_, ok = m.Get(MetricWristLead)
	assert.False(t, ok)

	// Metrics from other phases are unaffected.
	_, ok = m.Get(MetricLoadingRotGain)
	assert.True(t, ok)
}
