package swing

import (
	"math"

	"github.com/courtside-data/stroke.report/internal/config"
)

// Quality sub-score weights. Fixed scoring contract.
const (
	qualityWeightVelocity     = 0.35
	qualityWeightAcceleration = 0.25
	qualityWeightRotation     = 0.20
	qualityWeightSmoothness   = 0.20

	// techniqueBonusMax caps the stroke-specific signature bonus.
	techniqueBonusMax = 5.0
)

// QualityAssessor maps raw kinematics onto calibrated 0-100 quality
// scores using the per-stroke-type, per-skill-tier reference tables.
// The table is swappable at runtime for recalibration.
type QualityAssessor struct {
	refs config.ReferenceTable
	tier string
}

// NewQualityAssessor creates an assessor against the given table/tier.
func NewQualityAssessor(refs config.ReferenceTable, tier string) *QualityAssessor {
	return &QualityAssessor{refs: refs, tier: tier}
}

// SetReferences swaps in a new calibration table.
func (q *QualityAssessor) SetReferences(refs config.ReferenceTable) {
	q.refs = refs
}

// SwingPath is the dominant-wrist trajectory through the acceleration
// window, used for the smoothness estimate.
type SwingPath struct {
	Xs []float64
	Ys []float64
}

// Assess computes the weighted quality breakdown for one stroke.
// Overall is always within [0,100] for any finite input.
func (q *QualityAssessor) Assess(strokeType StrokeType, velocity, accel, rotation float64, path SwingPath) QualityBreakdown {
	ref, ok := q.refs.Lookup(string(strokeType), q.tier)
	if !ok {
		// No calibration at all: neutral mid-band scores.
		ref = config.DefaultReferenceTable()["groundstroke"][config.TierIntermediate]
	}

	b := QualityBreakdown{
		Velocity:     scoreAgainstCurve(velocity, ref.Velocity),
		Acceleration: scoreAgainstCurve(accel, ref.Acceleration),
		Rotation:     scoreAgainstCurve(math.Abs(rotation), ref.RotationDeg),
		Smoothness:   PathSmoothness(path),
		Bonus:        techniqueBonus(strokeType, velocity, accel, rotation),
	}

	overall := b.Velocity*qualityWeightVelocity +
		b.Acceleration*qualityWeightAcceleration +
		b.Rotation*qualityWeightRotation +
		b.Smoothness*qualityWeightSmoothness +
		b.Bonus
	b.Overall = clampScore(overall)
	return b
}

// scoreAgainstCurve maps a value through the three-tier piecewise-linear
// curve: 0 → below-average → good → excellent maps onto 0 → 50 → 80 →
// 100, saturating above the excellent reference.
func scoreAgainstCurve(value float64, c config.Curve) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	switch {
	case value < c.BelowAverage:
		return lerp(value, 0, c.BelowAverage, 0, 50)
	case value < c.Good:
		return lerp(value, c.BelowAverage, c.Good, 50, 80)
	case value < c.Excellent:
		return lerp(value, c.Good, c.Excellent, 80, 100)
	default:
		return 100
	}
}

func lerp(v, x0, x1, y0, y1 float64) float64 {
	if x1-x0 < 1e-12 {
		return y1
	}
	return y0 + (v-x0)*(y1-y0)/(x1-x0)
}

// techniqueBonus rewards stroke-specific kinematic signatures.
func techniqueBonus(strokeType StrokeType, velocity, accel, rotation float64) float64 {
	var bonus float64
	switch strokeType {
	case StrokeServe, StrokeOverhead:
		// Upward drive with violent acceleration is the signature of a
		// well-struck serve.
		if accel > 20 && velocity > 2.0 {
			bonus = techniqueBonusMax
		} else if accel > 12 {
			bonus = techniqueBonusMax / 2
		}
	case StrokeForehand, StrokeBackhand, StrokeGroundstroke:
		// Heavy rotation with pace indicates real topspin mechanics.
		if math.Abs(rotation) > 30 && velocity > 1.8 {
			bonus = techniqueBonusMax
		} else if math.Abs(rotation) > 20 {
			bonus = techniqueBonusMax / 2
		}
	case StrokeVolley:
		// Volleys reward compactness: modest velocity, little excess.
		if velocity < 1.0 && accel < 10 {
			bonus = techniqueBonusMax / 2
		}
	}
	return bonus
}

// PathSmoothness converts the swing path's mean three-point turning
// angle into a 20-100 smoothness score. A straight path turns 0° per
// step and scores 100; a thrashing path approaches the 20 floor.
func PathSmoothness(path SwingPath) float64 {
	n := len(path.Xs)
	if n != len(path.Ys) || n < 3 {
		return 60 // not enough path to judge; neutral
	}

	var totalTurn float64
	var segments int
	for i := 1; i < n-1; i++ {
		v1x := path.Xs[i] - path.Xs[i-1]
		v1y := path.Ys[i] - path.Ys[i-1]
		v2x := path.Xs[i+1] - path.Xs[i]
		v2y := path.Ys[i+1] - path.Ys[i]
		n1 := math.Hypot(v1x, v1y)
		n2 := math.Hypot(v2x, v2y)
		if n1 < 1e-9 || n2 < 1e-9 {
			continue
		}
		cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
		cos = math.Max(-1, math.Min(1, cos))
		totalTurn += math.Acos(cos) * 180 / math.Pi
		segments++
	}
	if segments == 0 {
		return 60
	}

	meanTurn := totalTurn / float64(segments)
	// 0° mean turning → 100; 60°+ mean turning → 20.
	score := 100 - meanTurn*(80.0/60.0)
	return math.Max(20, math.Min(100, score))
}
