package swing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/stroke.report/internal/config"
	"github.com/courtside-data/stroke.report/internal/pose"
	"github.com/courtside-data/stroke.report/internal/testutil"
)

// segmentScript builds and segments a script, failing the test on any
// reject.
func segmentScript(t *testing.T, script testutil.StrokeScript) ([]pose.Frame, PhaseSet) {
	t.Helper()
	frames := script.Build()
	ps, reason := NewSegmenter(testTuning()).Segment(frames, script.ContactIndex())
	require.Equal(t, RejectNone, reason)
	return frames, ps
}

func TestAnalyzePreparation(t *testing.T) {
	a := newAnalyzer(testTuning(), config.HandRight)

	t.Run("flat_preparation_loses_split_step_and_turn", func(t *testing.T) {
		frames, ps := segmentScript(t, testutil.DefaultStrokeScript())
		score := a.AnalyzePreparation(frames, ps.Preparation)
		// Quiet (no stillness deduction) but no split-step and no early
		// shoulder turn.
		assert.InDelta(t, 45, score.Score, 0.01)
		assert.Len(t, score.Issues, 2)
	})

	t.Run("split_step_and_early_turn_score_clean", func(t *testing.T) {
		script := testutil.DefaultStrokeScript()
		script.PrepFrames = 6
		frames, ps := segmentScript(t, script)

		// Inject a hip-height dip (image Y grows downward) and a unit
		// turn through the window.
		mid := ps.Preparation.Start + ps.Preparation.Len()/2
		frames[mid].HipHeight = pose.Float64Ptr(*frames[mid].HipHeight + 0.02)
		frames[ps.Preparation.End-1].BodyRotation = 6

		score := a.AnalyzePreparation(frames, ps.Preparation)
		assert.Equal(t, 100.0, score.Score)
		assert.Empty(t, score.Issues)
	})

	t.Run("empty_window_scores_zero", func(t *testing.T) {
		score := a.AnalyzePreparation(nil, Interval{})
		assert.Zero(t, score.Score)
	})
}

func TestAnalyzeContact(t *testing.T) {
	a := newAnalyzer(testTuning(), config.HandRight)

	t.Run("extended_arm_out_front", func(t *testing.T) {
		frames, ps := segmentScript(t, testutil.DefaultStrokeScript())
		score := a.AnalyzeContact(frames, ps.Contact)
		assert.Equal(t, 100.0, score.Score)
		assert.Empty(t, score.Issues)
	})

	t.Run("contact_behind_body", func(t *testing.T) {
		frames, ps := segmentScript(t, testutil.DefaultStrokeScript())
		// Reverse the motion direction: the wrist now trails the
		// shoulder along the swing.
		frames[ps.Contact.Start].VelocityX = -0.06
		score := a.AnalyzeContact(frames, ps.Contact)
		assert.Less(t, score.Score, 100.0)
		assert.Contains(t, score.Issues[0], "meet the ball out front")
	})

	t.Run("no_rotation_through_contact", func(t *testing.T) {
		frames, ps := segmentScript(t, testutil.DefaultStrokeScript())
		frames[ps.Contact.Start].BodyRotation = 0
		score := a.AnalyzeContact(frames, ps.Contact)
		assert.InDelta(t, 80, score.Score, 0.01)
	})

	t.Run("malformed_window", func(t *testing.T) {
		frames, _ := segmentScript(t, testutil.DefaultStrokeScript())
		score := a.AnalyzeContact(frames, Interval{Start: 0, End: 2})
		assert.Zero(t, score.Score)
	})
}

func TestAnalyzeFollowThrough(t *testing.T) {
	a := newAnalyzer(testTuning(), config.HandRight)

	t.Run("decaying_finish", func(t *testing.T) {
		frames, ps := segmentScript(t, testutil.DefaultStrokeScript())
		score := a.AnalyzeFollowThrough(frames, ps.FollowThrough)
		// Monotonic decay and a balanced base; the standing pose never
		// wraps the wrist across, so that deduction stands.
		assert.InDelta(t, 75, score.Score, 0.01)
	})

	t.Run("short_window_deducts", func(t *testing.T) {
		frames, ps := segmentScript(t, testutil.DefaultStrokeScript())
		short := Interval{Start: ps.FollowThrough.Start, End: ps.FollowThrough.Start + 3}
		score := a.AnalyzeFollowThrough(frames, short)
		assert.Less(t, score.Score, 75.0)
	})
}

func TestAnalyzeKineticChain(t *testing.T) {
	a := newAnalyzer(testTuning(), config.HandRight)

	chainFrames := func(hipPeak, shoulderPeak, elbowPeak, wristPeak int) []pose.Frame {
		frames := make([]pose.Frame, 6)
		for i := range frames {
			peaked := func(at int) *float64 {
				if i == at {
					return pose.Float64Ptr(10)
				}
				return pose.Float64Ptr(1)
			}
			frames[i].HipRotationRate = peaked(hipPeak)
			frames[i].ShoulderRate = peaked(shoulderPeak)
			frames[i].ElbowSpeed = peaked(elbowPeak)
			frames[i].WristSpeed = peaked(wristPeak)
		}
		return frames
	}
	accel := Interval{Start: 0, End: 6}

	t.Run("ground_up_sequencing_scores_100", func(t *testing.T) {
		score := a.AnalyzeKineticChain(chainFrames(0, 2, 3, 5), accel)
		assert.Equal(t, 100.0, score.Score)
		assert.Empty(t, score.Issues)
	})

	t.Run("arm_leading_hips_deducts", func(t *testing.T) {
		// Wrist peaks first, everything else after: each downstream link
		// compares against the latest peak seen so far.
		score := a.AnalyzeKineticChain(chainFrames(5, 2, 3, 0), accel)
		assert.Less(t, score.Score, 100.0)
		assert.NotEmpty(t, score.Issues)
	})

	t.Run("missing_signals_are_skipped", func(t *testing.T) {
		frames := make([]pose.Frame, 6)
		for i := range frames {
			frames[i].WristSpeed = pose.Float64Ptr(float64(i))
		}
		score := a.AnalyzeKineticChain(frames, accel)
		assert.Equal(t, 100.0, score.Score)
	})

	t.Run("window_too_short", func(t *testing.T) {
		score := a.AnalyzeKineticChain(chainFrames(0, 1, 2, 3), Interval{Start: 0, End: 1})
		assert.Zero(t, score.Score)
	})
}

func TestPhaseTimingScore(t *testing.T) {
	t.Run("ideal_proportions", func(t *testing.T) {
		// 7/5/3/5 of 20 frames matches the 0.35/0.25/0.15/0.25 shares.
		ps := PhaseSet{
			Preparation:   Interval{0, 7},
			Loading:       Interval{7, 12},
			Acceleration:  Interval{12, 15},
			Contact:       Interval{15, 16},
			FollowThrough: Interval{16, 21},
		}
		assert.InDelta(t, 100, phaseTimingScore(&ps), 0.01)
	})

	t.Run("single_phase_dominates", func(t *testing.T) {
		ps := PhaseSet{
			Preparation:   Interval{0, 20},
			Contact:       Interval{20, 21},
			FollowThrough: Interval{21, 21},
		}
		assert.InDelta(t, 35, phaseTimingScore(&ps), 0.01)
	})
}

func TestAnalyzeSequence(t *testing.T) {
	a := newAnalyzer(testTuning(), config.HandRight)
	frames, ps := segmentScript(t, testutil.DefaultStrokeScript())

	seq := a.AnalyzeSequence(frames, &ps)
	require.NotNil(t, seq)
	assert.GreaterOrEqual(t, seq.Overall, 0.0)
	assert.LessOrEqual(t, seq.Overall, 100.0)
	assert.Equal(t, 100.0, seq.Contact.Score)
	assert.Greater(t, seq.PhaseTiming, 0.0)
}
