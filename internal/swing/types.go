// Package swing segments the enriched pose stream into discrete,
// quality-scored stroke events: boundary detection, phase segmentation,
// per-phase biomechanics, kinetic-chain sequencing, classification, and
// checkpoint/fault evaluation.
package swing

import "sort"

// StrokeType is the classified stroke label.
type StrokeType string

const (
	StrokeServe        StrokeType = "serve"
	StrokeOverhead     StrokeType = "overhead"
	StrokeVolley       StrokeType = "volley"
	StrokeForehand     StrokeType = "forehand"
	StrokeBackhand     StrokeType = "backhand"
	StrokeGroundstroke StrokeType = "groundstroke"
)

// Phase names the five temporal sub-segments of a stroke.
type Phase string

const (
	PhasePreparation   Phase = "preparation"
	PhaseLoading       Phase = "loading"
	PhaseAcceleration  Phase = "acceleration"
	PhaseContact       Phase = "contact"
	PhaseFollowThrough Phase = "follow_through"
)

// Phases lists the phases in temporal order.
var Phases = []Phase{PhasePreparation, PhaseLoading, PhaseAcceleration, PhaseContact, PhaseFollowThrough}

// Interval is a half-open [Start, End) index range into a shared history
// snapshot. Phase boundaries index into one read-only frame slice
// instead of copying sub-sequences.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of frames in the interval.
func (iv Interval) Len() int { return iv.End - iv.Start }

// PhaseSet is the five phase intervals of one candidate stroke.
// Invariants: strictly ordered start indices, contact has length 1.
type PhaseSet struct {
	Preparation   Interval `json:"preparation"`
	Loading       Interval `json:"loading"`
	Acceleration  Interval `json:"acceleration"`
	Contact       Interval `json:"contact"`
	FollowThrough Interval `json:"follow_through"`
}

// Get returns the interval for the named phase.
func (ps *PhaseSet) Get(p Phase) Interval {
	switch p {
	case PhasePreparation:
		return ps.Preparation
	case PhaseLoading:
		return ps.Loading
	case PhaseAcceleration:
		return ps.Acceleration
	case PhaseContact:
		return ps.Contact
	default:
		return ps.FollowThrough
	}
}

// PhaseScore is one phase analyzer's verdict: a 0-100 score plus
// human-readable issues. An empty issue list means the phase looked good.
type PhaseScore struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// SequenceAnalysis aggregates the five phase scores, the kinetic-chain
// score, and phase timing into one weighted sequence quality.
type SequenceAnalysis struct {
	Preparation   PhaseScore `json:"preparation"`
	Loading       PhaseScore `json:"loading"`
	Acceleration  PhaseScore `json:"acceleration"`
	Contact       PhaseScore `json:"contact"`
	FollowThrough PhaseScore `json:"follow_through"`
	KineticChain  PhaseScore `json:"kinetic_chain"`
	PhaseTiming   float64    `json:"phase_timing"`
	Overall       float64    `json:"overall"`
}

// QualityBreakdown is the weighted sub-score decomposition of the
// classifier's base quality assessment.
type QualityBreakdown struct {
	Velocity     float64 `json:"velocity"`
	Acceleration float64 `json:"acceleration"`
	Rotation     float64 `json:"rotation"`
	Smoothness   float64 `json:"smoothness"`
	Bonus        float64 `json:"bonus"`
	Overall      float64 `json:"overall"`
}

// CheckpointResult is one checkpoint's outcome for a stroke.
type CheckpointResult struct {
	ID       string  `json:"id"`
	Phase    Phase   `json:"phase"`
	Metric   string  `json:"metric"`
	Passed   bool    `json:"passed"`
	Score    float64 `json:"score"` // 0-100 with proportional partial credit
	Weight   float64 `json:"weight"`
	Value    float64 `json:"value"`
	Feedback string  `json:"feedback,omitempty"`
}

// DetectedFault is a fired fault predicate with its corrective cue.
type DetectedFault struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Priority int      `json:"priority"` // 1-10, higher first
	FixCue   string   `json:"fix_cue"`
	Drills   []string `json:"drills,omitempty"`
}

// Evaluation is the biomechanical checkpoint evaluator's output.
type Evaluation struct {
	PhaseScores       map[Phase]float64  `json:"phase_scores"`
	Overall           float64            `json:"overall"`
	Passed            []CheckpointResult `json:"passed"`
	Failed            []CheckpointResult `json:"failed"`
	Faults            []DetectedFault    `json:"faults,omitempty"`
	PrimaryFeedback   string             `json:"primary_feedback"`
	SecondaryFeedback string             `json:"secondary_feedback,omitempty"`
	Metrics           Metrics            `json:"metrics,omitempty"`
}

// StanceAnalysis is the optional footwork sub-analysis for groundstrokes.
type StanceAnalysis struct {
	StanceWidth float64 `json:"stance_width"` // ankle spread in torso lengths
	OpenStance  bool    `json:"open_stance"`
	Balanced    bool    `json:"balanced"`
}

// ServeAnalysis is the optional serve-specific sub-analysis.
type ServeAnalysis struct {
	PeakWristHeight float64 `json:"peak_wrist_height"` // image Y at the highest point, lower is higher
	KneeBendDeg     float64 `json:"knee_bend_deg"`
	UpwardDrive     bool    `json:"upward_drive"`
}

// ContactPoint is the dominant-wrist position at the contact frame.
type ContactPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StrokeEvent is the single emitted record per validated stroke. It is
// immutable and handed to sinks; the pipeline retains nothing.
type StrokeEvent struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	Type        StrokeType `json:"type"`
	TimestampMs int64      `json:"timestamp_ms"`

	// Kinematic scalars at/around contact, body-relative when Normalized.
	Velocity       float64 `json:"velocity"`
	Acceleration   float64 `json:"acceleration"`
	Rotation       float64 `json:"rotation"`
	VerticalMotion float64 `json:"vertical_motion"`
	Smoothness     float64 `json:"smoothness"`
	BallSpeedKPH   float64 `json:"ball_speed_kph"` // estimated outgoing speed
	Normalized     bool    `json:"normalized"`

	Quality    QualityBreakdown  `json:"quality"`
	Sequence   *SequenceAnalysis `json:"sequence"`
	Evaluation *Evaluation       `json:"evaluation"`
	Phases     PhaseSet          `json:"phases"`

	Contact         ContactPoint `json:"contact"`
	ContactVariance float64      `json:"contact_variance"` // rolling variance across recent strokes

	// FinalScore blends the quality score with the checkpoint evaluation.
	FinalScore float64 `json:"final_score"`

	Stance *StanceAnalysis `json:"stance,omitempty"`
	Serve  *ServeAnalysis  `json:"serve,omitempty"`
}

// Metrics is the flat metric map extracted from a stroke for checkpoint
// and fault evaluation. A missing key means the metric could not be
// computed from the visible joints and must not be treated as zero.
type Metrics map[string]float64

// Get returns the metric and whether it was computed.
func (m Metrics) Get(name string) (float64, bool) {
	v, ok := m[name]
	return v, ok
}

// sortFaults orders faults by priority descending, stable by id.
func sortFaults(faults []DetectedFault) {
	sort.SliceStable(faults, func(i, j int) bool {
		if faults[i].Priority != faults[j].Priority {
			return faults[i].Priority > faults[j].Priority
		}
		return faults[i].ID < faults[j].ID
	})
}
