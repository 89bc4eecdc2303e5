package swing

import (
	"github.com/courtside-data/stroke.report/internal/config"
)

// AllCheckpointsPassedFeedback is the primary feedback when no fault
// fired and every evaluable checkpoint passed.
const AllCheckpointsPassedFeedback = "Solid mechanics across the whole stroke. Keep grooving it."

// Evaluator scores a stroke's extracted metrics against the checkpoint
// catalog and scans for technique faults. Catalogs are fixed at
// construction; Evaluate is pure with respect to them.
type Evaluator struct {
	checkpoints []Checkpoint
	faults      []Fault
}

func NewEvaluator(ref config.Reference, cfg *config.TuningConfig) *Evaluator {
	return &Evaluator{
		checkpoints: NewCheckpointCatalog(ref, cfg),
		faults:      NewFaultCatalog(),
	}
}

// Evaluate grades metrics against every checkpoint whose metric is
// present (missing metrics exclude the checkpoint and its weight
// entirely), runs the fault predicates, and assembles prioritized
// feedback. seq, when non-nil, contributes the kinetic chain score as a
// derived metric before the fault scan.
func (e *Evaluator) Evaluate(in Metrics, seq *SequenceAnalysis) *Evaluation {
	// Work on a copy: the caller's map is never written to or aliased.
	m := make(Metrics, len(in)+1)
	for k, v := range in {
		m[k] = v
	}
	if seq != nil {
		m[MetricKineticChainScore] = seq.KineticChain.Score
	}

	ev := &Evaluation{
		PhaseScores: make(map[Phase]float64),
		Metrics:     m,
	}

	phaseWeight := make(map[Phase]float64)
	phaseSum := make(map[Phase]float64)
	var totalWeight, totalSum float64

	for _, cp := range e.checkpoints {
		v, ok := m.Get(cp.Metric)
		if !ok {
			continue
		}
		score, passed, feedback := gradeCheckpoint(cp, v)
		res := CheckpointResult{
			ID:       cp.ID,
			Phase:    cp.Phase,
			Metric:   cp.Metric,
			Value:    v,
			Score:    score,
			Passed:   passed,
			Weight:   cp.Weight,
			Feedback: feedback,
		}
		if passed {
			ev.Passed = append(ev.Passed, res)
		} else {
			ev.Failed = append(ev.Failed, res)
		}
		phaseWeight[cp.Phase] += cp.Weight
		phaseSum[cp.Phase] += score * cp.Weight
		totalWeight += cp.Weight
		totalSum += score * cp.Weight
	}

	for ph, w := range phaseWeight {
		ev.PhaseScores[ph] = phaseSum[ph] / w
	}
	if totalWeight > 0 {
		ev.Overall = totalSum / totalWeight
	}

	for _, f := range e.faults {
		if f.Detect(m) {
			ev.Faults = append(ev.Faults, DetectedFault{
				ID:       f.ID,
				Name:     f.Name,
				Priority: f.Priority,
				FixCue:   f.FixCue,
				Drills:   f.Drills,
			})
		}
	}
	sortFaults(ev.Faults)

	e.assignFeedback(ev)
	return ev
}

// gradeCheckpoint returns the 0-100 score, pass flag, and directional
// feedback for a single checkpoint. Range checkpoints earn proportional
// partial credit by how far outside the ideal range the value landed,
// measured in units of the range width.
func gradeCheckpoint(cp Checkpoint, v float64) (score float64, passed bool, feedback string) {
	if cp.Bool {
		if v >= 0.5 {
			return 100, true, ""
		}
		return 0, false, cp.UnderFeedback
	}
	if v >= cp.Min && v <= cp.Max {
		return 100, true, ""
	}
	width := cp.Max - cp.Min
	if width <= 0 {
		width = 1
	}
	var miss float64
	if v < cp.Min {
		miss = (cp.Min - v) / width
		feedback = cp.UnderFeedback
	} else {
		miss = (v - cp.Max) / width
		feedback = cp.OverFeedback
	}
	credit := 1 - miss
	if credit < 0 {
		credit = 0
	}
	return credit * 100, false, feedback
}

// assignFeedback fills PrimaryFeedback and SecondaryFeedback: the top
// fault's fix cue wins, then the heaviest failed checkpoint, then the
// all-passed message.
func (e *Evaluator) assignFeedback(ev *Evaluation) {
	var pool []string
	for _, f := range ev.Faults {
		pool = append(pool, f.FixCue)
	}
	for _, res := range heaviestFirst(ev.Failed) {
		if res.Feedback != "" {
			pool = append(pool, res.Feedback)
		}
	}
	if len(pool) == 0 {
		ev.PrimaryFeedback = AllCheckpointsPassedFeedback
		return
	}
	ev.PrimaryFeedback = pool[0]
	if len(pool) > 1 {
		ev.SecondaryFeedback = pool[1]
	}
}

// heaviestFirst orders failed checkpoints by weight descending, then by
// how badly they scored, keeping the order deterministic.
func heaviestFirst(failed []CheckpointResult) []CheckpointResult {
	out := make([]CheckpointResult, len(failed))
	copy(out, failed)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if b.Weight > a.Weight || (b.Weight == a.Weight && b.Score < a.Score) {
				out[j-1], out[j] = b, a
			} else {
				break
			}
		}
	}
	return out
}
