package swing

import "github.com/courtside-data/stroke.report/internal/config"

// Metric names used in the flat stroke metrics map. Extraction lives in
// the pipeline; the catalogs below reference these keys.
const (
	MetricPrepFrames        = "preparation_frames"
	MetricPrepMeanVelocity  = "prep_mean_velocity"
	MetricSplitStep         = "split_step"
	MetricLoadingRotGain    = "loading_rotation_gain"
	MetricKneeBendMin       = "knee_bend_min"
	MetricPeakAcceleration  = "peak_acceleration"
	MetricAccelMeanJerk     = "accel_mean_jerk"
	MetricMaxHipShoulderSep = "max_hip_shoulder_separation"
	MetricContactElbowAngle = "contact_elbow_angle"
	MetricContactHeight     = "contact_height" // 0 = shoulder level, 1 = hip level
	MetricWristLead         = "contact_wrist_lead"
	MetricFollowFrames      = "follow_through_frames"
	MetricWrapFinish        = "wrap_finish"
	MetricBalancedFinish    = "balanced_finish"
	MetricKineticChainScore = "kinetic_chain_score"
	MetricPeakVelocity      = "peak_velocity"
)

// Checkpoint is one weighted biomechanical criterion: either an ideal
// numeric range or a boolean target. The catalog is fixed at
// construction and never mutated at runtime.
type Checkpoint struct {
	ID       string
	Phase    Phase
	Metric   string
	Min, Max float64 // ideal range when Bool is false
	Bool     bool    // boolean target: value >= 0.5 passes
	Weight   float64

	UnderFeedback string
	OverFeedback  string
}

// NewCheckpointCatalog builds the per-phase checkpoint catalog. Angle
// ranges come from the calibrated reference so a recalibration swap
// rebuilds the catalog consistently.
func NewCheckpointCatalog(ref config.Reference, cfg *config.TuningConfig) []Checkpoint {
	ready := cfg.GetReadyThreshold()
	return []Checkpoint{
		{
			ID: "split_step", Phase: PhasePreparation, Metric: MetricSplitStep,
			Bool: true, Weight: 1.0,
			UnderFeedback: "Add a split-step as your opponent strikes the ball",
		},
		{
			ID: "early_stillness", Phase: PhasePreparation, Metric: MetricPrepMeanVelocity,
			Min: 0, Max: ready * 1.5, Weight: 1.0,
			OverFeedback: "Get set earlier; you are still moving as the stroke begins",
		},
		{
			ID: "rotation_gain", Phase: PhaseLoading, Metric: MetricLoadingRotGain,
			Min: 10, Max: 70, Weight: 1.5,
			UnderFeedback: "Coil further during loading; turn your shoulders away from the net",
			OverFeedback:  "Over-rotating in the backswing costs timing",
		},
		{
			ID: "knee_bend", Phase: PhaseLoading, Metric: MetricKneeBendMin,
			Min: 100, Max: 155, Weight: 1.0,
			UnderFeedback: "Excessive knee bend; stay athletic, not crouched",
			OverFeedback:  "Bend your knees more while loading",
		},
		{
			ID: "hip_shoulder_separation", Phase: PhaseAcceleration, Metric: MetricMaxHipShoulderSep,
			Min: ref.HipShoulderSepMin, Max: ref.HipShoulderSepMax, Weight: 1.5,
			UnderFeedback: "Create separation: fire the hips before the shoulders",
			OverFeedback:  "Too much separation; keep the torso connected",
		},
		{
			ID: "smooth_acceleration", Phase: PhaseAcceleration, Metric: MetricAccelMeanJerk,
			Min: 0, Max: jerkSmoothCeiling, Weight: 1.0,
			OverFeedback: "Accelerate progressively instead of snatching at the ball",
		},
		{
			ID: "elbow_extension", Phase: PhaseContact, Metric: MetricContactElbowAngle,
			Min: ref.ElbowAngleMin, Max: ref.ElbowAngleMax, Weight: 2.0,
			UnderFeedback: "Extend the hitting arm through contact",
			OverFeedback:  "Arm fully locked at contact; keep a relaxed bend",
		},
		{
			ID: "contact_height", Phase: PhaseContact, Metric: MetricContactHeight,
			Min: 0, Max: 1, Weight: 1.5,
			UnderFeedback: "Contact above shoulder height; let the ball drop into the strike zone",
			OverFeedback:  "Contact too low; take the ball earlier",
		},
		{
			ID: "contact_out_front", Phase: PhaseContact, Metric: MetricWristLead,
			Min: wristLeadMin, Max: 0.6, Weight: 1.5,
			UnderFeedback: "Meet the ball further out in front of your body",
			OverFeedback:  "Reaching too far ahead; let the ball come to you",
		},
		{
			ID: "follow_duration", Phase: PhaseFollowThrough, Metric: MetricFollowFrames,
			Min: 8, Max: 45, Weight: 1.0,
			UnderFeedback: "Finish the swing; don't stop the racket after contact",
			OverFeedback:  "Overlong finish delays recovery",
		},
		{
			ID: "wrap_finish", Phase: PhaseFollowThrough, Metric: MetricWrapFinish,
			Bool: true, Weight: 1.0,
			UnderFeedback: "Swing across to the opposite shoulder on the finish",
		},
		{
			ID: "balanced_finish", Phase: PhaseFollowThrough, Metric: MetricBalancedFinish,
			Bool: true, Weight: 1.0,
			UnderFeedback: "Hold your balance over your base as the swing finishes",
		},
	}
}

// Fault is a named technique flaw: a prioritized predicate over the
// stroke metrics with a corrective cue and drill suggestions. Predicates
// treat missing metrics as not-fired, never as zero.
type Fault struct {
	ID       string
	Name     string
	Priority int // 1-10, higher wins feedback selection
	Detect   func(m Metrics) bool
	FixCue   string
	Drills   []string
}

// fires is a helper for predicates over a single maybe-missing metric.
func fires(m Metrics, metric string, pred func(v float64) bool) bool {
	v, ok := m.Get(metric)
	return ok && pred(v)
}

// NewFaultCatalog builds the fixed fault catalog.
func NewFaultCatalog() []Fault {
	return []Fault{
		{
			ID: "collapsing_elbow", Name: "Collapsing elbow", Priority: 8,
			Detect: func(m Metrics) bool {
				return fires(m, MetricContactElbowAngle, func(v float64) bool { return v < 100 })
			},
			FixCue: "Keep your hitting arm extended through contact",
			Drills: []string{
				"Shadow swings holding a towel under the off arm",
				"Slow-feed rallies focusing on a long contact zone",
			},
		},
		{
			ID: "locked_elbow", Name: "Locked elbow", Priority: 5,
			Detect: func(m Metrics) bool {
				return fires(m, MetricContactElbowAngle, func(v float64) bool { return v > 176 })
			},
			FixCue: "Soften the arm; a rigid elbow kills racket-head speed",
			Drills: []string{"Loose-grip shadow swings at half pace"},
		},
		{
			ID: "no_body_rotation", Name: "Arm-only swing", Priority: 7,
			Detect: func(m Metrics) bool {
				return fires(m, MetricLoadingRotGain, func(v float64) bool { return v < 3 })
			},
			FixCue: "Turn your shoulders and hips into the shot instead of swinging with the arm",
			Drills: []string{"Hit with the off hand on the chest to feel the torso turn"},
		},
		{
			ID: "broken_kinetic_chain", Name: "Broken kinetic chain", Priority: 6,
			Detect: func(m Metrics) bool {
				return fires(m, MetricKineticChainScore, func(v float64) bool { return v < 40 })
			},
			FixCue: "Sequence from the ground up: hips, then shoulders, then the racket",
			Drills: []string{"Step-and-hit drill with an exaggerated hip lead"},
		},
		{
			ID: "contact_behind_body", Name: "Late contact", Priority: 6,
			Detect: func(m Metrics) bool {
				return fires(m, MetricWristLead, func(v float64) bool { return v < -0.05 })
			},
			FixCue: "Prepare earlier so contact happens in front of your hip",
			Drills: []string{"Call 'bounce-hit' out loud to sharpen timing"},
		},
		{
			ID: "no_follow_through", Name: "Truncated follow-through", Priority: 5,
			Detect: func(m Metrics) bool {
				return fires(m, MetricFollowFrames, func(v float64) bool { return v < 4 })
			},
			FixCue: "Let the racket decelerate naturally over the opposite shoulder",
			Drills: []string{"Freeze-finish drill: hold the finish for two seconds"},
		},
		{
			ID: "off_balance", Name: "Off-balance finish", Priority: 4,
			Detect: func(m Metrics) bool {
				return fires(m, MetricBalancedFinish, func(v float64) bool { return v < 0.5 })
			},
			FixCue: "Finish with your weight centered between your feet",
			Drills: []string{"Recovery-step drill after every fed ball"},
		},
	}
}
