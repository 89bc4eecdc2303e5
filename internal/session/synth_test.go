package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/stroke.report/internal/pose"
)

func TestSyntheticGenerator(t *testing.T) {
	g := NewSyntheticGenerator(SynthConfig{Strokes: 2, RestFrames: 10})
	records := g.Generate()

	perStroke := synthPrep + synthCoil + synthSwing + synthFollow + 10
	require.Len(t, records, 2*perStroke)

	// Timestamps are strictly increasing at the default frame spacing.
	for i := 1; i < len(records); i++ {
		assert.Equal(t, records[i-1].TimestampMs+33, records[i].TimestampMs)
	}

	// Every record converts into a full joint set.
	for _, rec := range records {
		j, err := rec.Joints()
		require.NoError(t, err)
		assert.True(t, j.AllVisible(pose.LeftShoulder, pose.RightShoulder, pose.RightWrist))
	}
}

func TestSyntheticGenerator_WristActuallySwings(t *testing.T) {
	g := NewSyntheticGenerator(SynthConfig{Strokes: 1, RestFrames: 1, SwingReach: 0.25})
	records := g.Generate()

	// The forward swing sweeps the wrist across the body: min and max X
	// over the stroke span more than the configured reach.
	minX, maxX := 1.0, 0.0
	for _, rec := range records {
		x := rec.Landmarks[pose.RightWrist].X
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
	}
	assert.Greater(t, maxX-minX, 0.25)
}

func TestSyntheticGenerator_DepthTogglesAngledView(t *testing.T) {
	flat := NewSyntheticGenerator(SynthConfig{Strokes: 1}).Generate()
	deep := NewSyntheticGenerator(SynthConfig{Strokes: 1, IncludeTorso3: true}).Generate()

	assert.Zero(t, flat[0].Landmarks[pose.LeftShoulder].Z)
	assert.NotZero(t, deep[0].Landmarks[pose.LeftShoulder].Z)
}
