package swing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/stroke.report/internal/config"
)

// forehandEvaluator builds an evaluator against the default forehand
// intermediate reference (elbow ideal range 114-169).
func forehandEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	ref, ok := config.DefaultReferenceTable().Lookup("forehand", config.TierIntermediate)
	require.True(t, ok)
	return NewEvaluator(ref, config.EmptyTuningConfig())
}

// cleanMetrics places every checkpoint metric comfortably inside its
// ideal range.
func cleanMetrics() Metrics {
	return Metrics{
		MetricSplitStep:         1,
		MetricPrepMeanVelocity:  0.1, // under ready*1.5 = 0.3
		MetricLoadingRotGain:    40,
		MetricKneeBendMin:       130,
		MetricMaxHipShoulderSep: 37.5,
		MetricAccelMeanJerk:     10,
		MetricContactElbowAngle: 140,
		MetricContactHeight:     0.5,
		MetricWristLead:         0.2,
		MetricFollowFrames:      20,
		MetricWrapFinish:        1,
		MetricBalancedFinish:    1,
	}
}

func TestEvaluator_AllCheckpointsPass(t *testing.T) {
	e := forehandEvaluator(t)

	ev := e.Evaluate(cleanMetrics(), nil)
	require.NotNil(t, ev)
	assert.Equal(t, 100.0, ev.Overall)
	assert.Len(t, ev.Passed, 12)
	assert.Empty(t, ev.Failed)
	assert.Empty(t, ev.Faults)
	assert.Equal(t, AllCheckpointsPassedFeedback, ev.PrimaryFeedback)
	assert.Empty(t, ev.SecondaryFeedback)

	for _, ph := range Phases {
		assert.Equal(t, 100.0, ev.PhaseScores[ph], "phase %s", ph)
	}
}

func TestEvaluator_CollapsingElbow(t *testing.T) {
	e := forehandEvaluator(t)

	m := cleanMetrics()
	m[MetricContactElbowAngle] = 90

	ev := e.Evaluate(m, nil)
	require.Len(t, ev.Faults, 1)
	assert.Equal(t, "collapsing_elbow", ev.Faults[0].ID)
	assert.Equal(t, 8, ev.Faults[0].Priority)
	assert.NotEmpty(t, ev.Faults[0].Drills)

	// The fault's fix cue outranks the failed checkpoint's feedback.
	assert.Equal(t, "Keep your hitting arm extended through contact", ev.PrimaryFeedback)
	assert.Equal(t, "Extend the hitting arm through contact", ev.SecondaryFeedback)

	// Partial credit: 90 misses the 114-169 ideal range by 24 degrees,
	// 43.6% of the range width.
	require.Len(t, ev.Failed, 1)
	fail := ev.Failed[0]
	assert.Equal(t, "elbow_extension", fail.ID)
	assert.False(t, fail.Passed)
	assert.InDelta(t, 56.4, fail.Score, 0.1)
	assert.Less(t, ev.Overall, 100.0)
	assert.Greater(t, ev.Overall, 0.0)
}

func TestEvaluator_ElbowAt140FiresNoFault(t *testing.T) {
	e := forehandEvaluator(t)
	ev := e.Evaluate(cleanMetrics(), nil)
	assert.Empty(t, ev.Faults)
}

func TestEvaluator_FaultPriorityOrdering(t *testing.T) {
	e := forehandEvaluator(t)

	m := cleanMetrics()
	m[MetricContactElbowAngle] = 90 // collapsing_elbow, priority 8
	m[MetricLoadingRotGain] = 1    // no_body_rotation, priority 7

	ev := e.Evaluate(m, nil)
	require.Len(t, ev.Faults, 2)
	assert.Equal(t, "collapsing_elbow", ev.Faults[0].ID)
	assert.Equal(t, "no_body_rotation", ev.Faults[1].ID)
	assert.Equal(t, ev.Faults[0].FixCue, ev.PrimaryFeedback)
	assert.Equal(t, ev.Faults[1].FixCue, ev.SecondaryFeedback)
}

func TestEvaluator_MissingMetricExcludesCheckpoint(t *testing.T) {
	e := forehandEvaluator(t)

	// Elbow never computed (occluded arm): the checkpoint and its
	// weight drop out entirely, and the elbow faults cannot fire.
	m := cleanMetrics()
	delete(m, MetricContactElbowAngle)

	ev := e.Evaluate(m, nil)
	assert.Len(t, ev.Passed, 11)
	assert.Empty(t, ev.Failed)
	assert.Empty(t, ev.Faults)
	assert.Equal(t, 100.0, ev.Overall, "exclusion must not read as a zero score")
}

func TestEvaluator_KineticChainFromSequence(t *testing.T) {
	e := forehandEvaluator(t)

	seq := &SequenceAnalysis{KineticChain: PhaseScore{Score: 20}}
	ev := e.Evaluate(cleanMetrics(), seq)

	require.Len(t, ev.Faults, 1)
	assert.Equal(t, "broken_kinetic_chain", ev.Faults[0].ID)
}

func TestEvaluator_FailedFeedbackWithoutFaults(t *testing.T) {
	e := forehandEvaluator(t)

	// Over the ideal elbow range but under the locked-elbow fault
	// threshold: a failed checkpoint with no fault fired.
	m := cleanMetrics()
	m[MetricContactElbowAngle] = 173

	ev := e.Evaluate(m, nil)
	assert.Empty(t, ev.Faults)
	require.Len(t, ev.Failed, 1)
	assert.Equal(t, "Arm fully locked at contact; keep a relaxed bend", ev.PrimaryFeedback)
}

func TestGradeCheckpoint(t *testing.T) {
	cp := Checkpoint{Min: 10, Max: 20, Weight: 1, UnderFeedback: "under", OverFeedback: "over"}

	t.Run("inside_range", func(t *testing.T) {
		score, passed, feedback := gradeCheckpoint(cp, 15)
		assert.Equal(t, 100.0, score)
		assert.True(t, passed)
		assert.Empty(t, feedback)
	})

	t.Run("under_with_partial_credit", func(t *testing.T) {
		score, passed, feedback := gradeCheckpoint(cp, 5)
		assert.InDelta(t, 50, score, 0.01)
		assert.False(t, passed)
		assert.Equal(t, "under", feedback)
	})

	t.Run("over_with_partial_credit", func(t *testing.T) {
		score, _, feedback := gradeCheckpoint(cp, 22.5)
		assert.InDelta(t, 75, score, 0.01)
		assert.Equal(t, "over", feedback)
	})

	t.Run("far_outside_floors_at_zero", func(t *testing.T) {
		score, _, _ := gradeCheckpoint(cp, 1000)
		assert.Zero(t, score)
	})

	t.Run("boolean_target", func(t *testing.T) {
		b := Checkpoint{Bool: true, UnderFeedback: "do it"}
		score, passed, _ := gradeCheckpoint(b, 1)
		assert.Equal(t, 100.0, score)
		assert.True(t, passed)

		score, passed, feedback := gradeCheckpoint(b, 0)
		assert.Zero(t, score)
		assert.False(t, passed)
		assert.Equal(t, "do it", feedback)
	})
}

func TestEvaluator_DoesNotMutateInputMetrics(t *testing.T) {
	e := forehandEvaluator(t)

	in := cleanMetrics()
	before := make(Metrics, len(in))
	for k, v := range in {
		before[k] = v
	}

	seq := &SequenceAnalysis{KineticChain: PhaseScore{Score: 72}}
	ev := e.Evaluate(in, seq)

	assert.Equal(t, before, in, "the caller's metrics map must come back untouched")
	_, present := in[MetricKineticChainScore]
	assert.False(t, present, "the kinetic chain score belongs to the evaluation, not the input")

	got, ok := ev.Metrics.Get(MetricKineticChainScore)
	require.True(t, ok)
	assert.Equal(t, 72.0, got)

	// The evaluation's map is a copy, not an alias.
	ev.Metrics[MetricSplitStep] = 0
	assert.Equal(t, 1.0, in[MetricSplitStep])
}
