package swing

import (
	"math"

	"github.com/courtside-data/stroke.report/internal/config"
	"github.com/courtside-data/stroke.report/internal/pose"
)

// RejectReason names why a contact candidate failed segmentation. These
// are diagnostics, not errors: a rejected candidate is silently dropped
// and the stream continues.
type RejectReason string

const (
	RejectNone             RejectReason = ""
	RejectNoLoadingStart   RejectReason = "no_loading_start"
	RejectNoPreparation    RejectReason = "no_preparation_start"
	RejectNoAcceleration   RejectReason = "no_acceleration_start"
	RejectOrdering         RejectReason = "phase_ordering"
	RejectShortAccel       RejectReason = "acceleration_too_short"
	RejectShortFollow      RejectReason = "follow_through_too_short"
	RejectNoRotationGain   RejectReason = "insufficient_rotation_gain"
	RejectContactNotInside RejectReason = "contact_outside_buffer"
)

// Segmenter delimits the five phases around a contact candidate and
// validates that the candidate is a real stroke rather than noise.
type Segmenter struct {
	cfg *config.TuningConfig
}

// NewSegmenter creates a Segmenter with the given tuning.
func NewSegmenter(cfg *config.TuningConfig) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// Segment searches backward and forward from the contact candidate and
// returns the validated PhaseSet. The returned reason is RejectNone on
// success.
func (s *Segmenter) Segment(frames []pose.Frame, contactIdx int) (PhaseSet, RejectReason) {
	n := len(frames)
	if contactIdx < 2 || contactIdx >= n-1 {
		return PhaseSet{}, RejectContactNotInside
	}

	// Backward: loading spans the still-but-coiling frames before the
	// forward swing. Walk back through the contiguous run of frames that
	// are quiet yet still gaining rotation, so loadingStart lands at the
	// beginning of the coil rather than its end.
	stillness := s.cfg.GetStillnessThreshold()
	loadingStart := -1
	for i := contactIdx - 1; i >= 2; i-- {
		if frames[i].VelocityMag < stillness && rotationIncreasing(frames, i) {
			loadingStart = i
			continue
		}
		if loadingStart >= 0 {
			break
		}
	}
	if loadingStart < 0 {
		return PhaseSet{}, RejectNoLoadingStart
	}

	// Further back: preparation spans the contiguous ready-position run
	// before the coil began.
	ready := s.cfg.GetReadyThreshold()
	prepStart := -1
	for i := loadingStart - 1; i >= 0; i-- {
		if frames[i].VelocityMag < ready {
			prepStart = i
			continue
		}
		if prepStart >= 0 {
			break
		}
	}
	if prepStart < 0 {
		return PhaseSet{}, RejectNoPreparation
	}

	// Forward from loading: acceleration starts at the first rapid,
	// genuinely accelerating frame.
	rapid := s.cfg.GetRapidSwingThreshold()
	minAccel := s.cfg.GetMinAcceleration()
	accelStart := -1
	for i := loadingStart + 1; i < contactIdx; i++ {
		if frames[i].VelocityMag > rapid && frames[i].AccelMag > minAccel {
			accelStart = i
			break
		}
	}
	if accelStart < 0 {
		return PhaseSet{}, RejectNoAcceleration
	}

	// Forward from contact: follow-through ends at the first settled
	// point far enough past contact, or the end of the buffer.
	minAhead := s.cfg.GetFollowSearchMinAhead()
	followEnd := n
	for i := contactIdx + minAhead; i < n; i++ {
		if frames[i].VelocityMag < stillness {
			followEnd = i
			break
		}
	}

	ps := PhaseSet{
		Preparation:   Interval{Start: prepStart, End: loadingStart},
		Loading:       Interval{Start: loadingStart, End: accelStart},
		Acceleration:  Interval{Start: accelStart, End: contactIdx},
		Contact:       Interval{Start: contactIdx, End: contactIdx + 1},
		FollowThrough: Interval{Start: contactIdx + 1, End: followEnd},
	}
	if reason := s.validate(frames, &ps); reason != RejectNone {
		return PhaseSet{}, reason
	}
	return ps, RejectNone
}

// validate applies the detector-time validity rules.
func (s *Segmenter) validate(frames []pose.Frame, ps *PhaseSet) RejectReason {
	if !(ps.Preparation.Start < ps.Loading.Start &&
		ps.Loading.Start < ps.Acceleration.Start &&
		ps.Acceleration.Start < ps.Contact.Start &&
		ps.Contact.Start < ps.FollowThrough.Start) {
		return RejectOrdering
	}
	if ps.Acceleration.Len() < s.cfg.GetMinAccelFrames() {
		return RejectShortAccel
	}
	if ps.FollowThrough.Len() < s.cfg.GetMinFollowFrames() {
		return RejectShortFollow
	}

	// Non-serve strokes must show real coiling through the loading
	// window; serves rotate differently and are exempted when the
	// vertical-motion signal says the arm was driving upward.
	if !s.looksLikeServe(frames, ps) {
		if rotationGain(frames, ps.Loading) < s.cfg.GetMinRotationGainDeg() {
			return RejectNoRotationGain
		}
	}
	return RejectNone
}

// FullyValid reports whether the phase set meets the stronger minimums
// required for full phase analysis (as opposed to bare detection).
func (s *Segmenter) FullyValid(ps *PhaseSet) bool {
	return ps.Acceleration.Len() >= s.cfg.GetFullAccelFrames() &&
		ps.FollowThrough.Len() >= s.cfg.GetFullFollowFrames()
}

// looksLikeServe applies the vertical-motion heuristic across the
// acceleration window and contact frame.
func (s *Segmenter) looksLikeServe(frames []pose.Frame, ps *PhaseSet) bool {
	threshold := s.cfg.GetServeVerticalMotion()
	for i := ps.Acceleration.Start; i < ps.Contact.End; i++ {
		if frames[i].VerticalMotion >= threshold {
			return true
		}
	}
	return false
}

// rotationIncreasing reports whether body rotation at i has grown versus
// two frames earlier: the signature of active coiling.
func rotationIncreasing(frames []pose.Frame, i int) bool {
	if i < 2 {
		return false
	}
	return math.Abs(frames[i].BodyRotation) > math.Abs(frames[i-2].BodyRotation)+1e-9
}

// rotationGain returns how many degrees of body rotation the interval
// gained, measured from its first frame to its in-window maximum.
func rotationGain(frames []pose.Frame, iv Interval) float64 {
	if iv.Len() <= 0 {
		return 0
	}
	base := math.Abs(frames[iv.Start].BodyRotation)
	maxRot := base
	for i := iv.Start; i < iv.End; i++ {
		if r := math.Abs(frames[i].BodyRotation); r > maxRot {
			maxRot = r
		}
	}
	return maxRot - base
}
