package pose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lm(x, y float64) Landmark {
	return Landmark{X: x, Y: y, Visibility: 1.0}
}

func TestAngleAt(t *testing.T) {
	t.Run("right angle", func(t *testing.T) {
		got := AngleAt(lm(0, 1), lm(0, 0), lm(1, 0))
		assert.InDelta(t, 90.0, got, 1e-9)
	})

	t.Run("straight line", func(t *testing.T) {
		got := AngleAt(lm(0, 0), lm(1, 0), lm(2, 0))
		assert.InDelta(t, 180.0, got, 1e-9)
	})

	t.Run("degenerate segment returns zero", func(t *testing.T) {
		got := AngleAt(lm(1, 1), lm(1, 1), lm(2, 0))
		assert.Equal(t, 0.0, got)
	})
}

func TestLineAngle(t *testing.T) {
	assert.InDelta(t, 0.0, LineAngle(lm(0, 0), lm(1, 0)), 1e-9)
	assert.InDelta(t, 90.0, LineAngle(lm(0, 0), lm(0, 1)), 1e-9)
	assert.InDelta(t, 45.0, LineAngle(lm(0, 0), lm(1, 1)), 1e-9)
}

func TestTorsoLength(t *testing.T) {
	var j Joints
	j[LeftShoulder] = lm(0.4, 0.3)
	j[RightShoulder] = lm(0.6, 0.3)
	j[LeftHip] = lm(0.45, 0.6)
	j[RightHip] = lm(0.55, 0.6)

	length, ok := TorsoLength(&j)
	assert.True(t, ok)
	assert.InDelta(t, 0.3, length, 1e-9)

	t.Run("hidden hip invalidates", func(t *testing.T) {
		j2 := j
		j2[LeftHip].Visibility = 0.2
		_, ok := TorsoLength(&j2)
		assert.False(t, ok)
	})
}

func TestVisibilityThreshold(t *testing.T) {
	l := Landmark{Visibility: VisibilityThreshold}
	assert.True(t, l.Visible())
	l.Visibility = VisibilityThreshold - 0.01
	assert.False(t, l.Visible())
}

func TestMidpointPreservesMinVisibility(t *testing.T) {
	a := Landmark{X: 0, Y: 0, Visibility: 0.9}
	b := Landmark{X: 1, Y: 1, Visibility: 0.4}
	m := Midpoint(a, b)
	assert.Equal(t, 0.5, m.X)
	assert.Equal(t, 0.5, m.Y)
	assert.Equal(t, 0.4, m.Visibility)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, math.Sqrt2, Distance(lm(0, 0), lm(1, 1)), 1e-12)
}
