package swing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/courtside-data/stroke.report/internal/pose"
)

// Sequence quality weights. Fixed: these are part of the scoring
// contract, not tuning.
const (
	weightPreparation   = 0.10
	weightLoading       = 0.15
	weightAcceleration  = 0.25
	weightContact       = 0.25
	weightFollowThrough = 0.10
	weightKineticChain  = 0.10
	weightPhaseTiming   = 0.05
)

// chainSegment names one link of the kinetic chain, proximal to distal.
type chainSegment struct {
	name   string
	peakAt int // frame index of the segment's speed peak, -1 if unknown
}

// AnalyzeKineticChain scores whether rotation/velocity peaks occur in
// proximal-to-distal order (hips → shoulders → arm → racket hand)
// through the acceleration window. Each out-of-order link deducts.
func (a *analyzer) AnalyzeKineticChain(frames []pose.Frame, accel Interval) PhaseScore {
	if accel.Len() < 2 {
		return PhaseScore{Score: 0, Issues: []string{"acceleration window too short for chain analysis"}}
	}

	segments := []chainSegment{
		{name: "hips", peakAt: peakIndex(frames, accel, func(f *pose.Frame) (float64, bool) {
			if f.HipRotationRate == nil {
				return 0, false
			}
			return math.Abs(*f.HipRotationRate), true
		})},
		{name: "shoulders", peakAt: peakIndex(frames, accel, func(f *pose.Frame) (float64, bool) {
			if f.ShoulderRate == nil {
				return 0, false
			}
			return math.Abs(*f.ShoulderRate), true
		})},
		{name: "arm", peakAt: peakIndex(frames, accel, func(f *pose.Frame) (float64, bool) {
			if f.ElbowSpeed == nil {
				return 0, false
			}
			return *f.ElbowSpeed, true
		})},
		{name: "racket hand", peakAt: peakIndex(frames, accel, func(f *pose.Frame) (float64, bool) {
			if f.WristSpeed == nil {
				return 0, false
			}
			return *f.WristSpeed, true
		})},
	}

	score := 100.0
	var issues []string
	prev := -1
	prevName := ""
	for _, seg := range segments {
		if seg.peakAt < 0 {
			continue // segment signal missing this stroke; skip, don't penalize
		}
		if prev >= 0 && seg.peakAt < prev {
			score -= 25
			issues = append(issues, fmt.Sprintf("%s peaked before %s; fire the chain from the ground up", seg.name, prevName))
		}
		prev = seg.peakAt
		prevName = seg.name
	}

	return PhaseScore{Score: clampScore(score), Issues: issues}
}

// peakIndex returns the frame index of the maximum of metric over the
// interval, or -1 when the metric was never available.
func peakIndex(frames []pose.Frame, iv Interval, metric func(*pose.Frame) (float64, bool)) int {
	best := -1
	bestV := math.Inf(-1)
	for i := iv.Start; i < iv.End; i++ {
		v, ok := metric(&frames[i])
		if !ok {
			continue
		}
		if v > bestV {
			bestV = v
			best = i
		}
	}
	return best
}

// idealPhaseShares are the expected relative durations of the four
// multi-frame phases (contact is a single frame by construction).
var idealPhaseShares = []float64{0.35, 0.25, 0.15, 0.25} // prep, loading, accel, follow

// phaseTimingScore compares the observed phase-duration proportions
// against the ideal shares. Perfect proportions score 100.
func phaseTimingScore(ps *PhaseSet) float64 {
	durations := []float64{
		float64(ps.Preparation.Len()),
		float64(ps.Loading.Len()),
		float64(ps.Acceleration.Len()),
		float64(ps.FollowThrough.Len()),
	}
	total := durations[0] + durations[1] + durations[2] + durations[3]
	if total <= 0 {
		return 0
	}

	var deviation float64
	for i, d := range durations {
		deviation += math.Abs(d/total - idealPhaseShares[i])
	}
	// Max possible deviation is 2 (complete mismatch).
	return clampScore(100 * (1 - deviation/2))
}

// AnalyzeSequence runs all phase analyzers plus the kinetic chain and
// aggregates them into one weighted sequence quality.
func (a *analyzer) AnalyzeSequence(frames []pose.Frame, ps *PhaseSet) *SequenceAnalysis {
	seq := &SequenceAnalysis{
		Preparation:   a.AnalyzePreparation(frames, ps.Preparation),
		Loading:       a.AnalyzeLoading(frames, ps.Loading),
		Acceleration:  a.AnalyzeAcceleration(frames, ps.Acceleration),
		Contact:       a.AnalyzeContact(frames, ps.Contact),
		FollowThrough: a.AnalyzeFollowThrough(frames, ps.FollowThrough),
		KineticChain:  a.AnalyzeKineticChain(frames, ps.Acceleration),
		PhaseTiming:   phaseTimingScore(ps),
	}

	scores := []float64{
		seq.Preparation.Score,
		seq.Loading.Score,
		seq.Acceleration.Score,
		seq.Contact.Score,
		seq.FollowThrough.Score,
		seq.KineticChain.Score,
		seq.PhaseTiming,
	}
	weights := []float64{
		weightPreparation,
		weightLoading,
		weightAcceleration,
		weightContact,
		weightFollowThrough,
		weightKineticChain,
		weightPhaseTiming,
	}
	// The weights sum to 1, so the weighted mean is the weighted sum.
	seq.Overall = clampScore(stat.Mean(scores, weights))
	return seq
}
