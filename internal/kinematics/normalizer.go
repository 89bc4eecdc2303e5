package kinematics

import (
	"sort"

	"github.com/courtside-data/stroke.report/internal/monitoring"
	"github.com/courtside-data/stroke.report/internal/pose"
)

// Normalizer calibration constants.
const (
	// CalibrationSamples is how many confident torso observations are
	// accumulated before the session scale is fixed.
	CalibrationSamples = 15

	// DefaultMinValidScale is the floor below which a torso length is
	// considered a detection artifact rather than a usable reference.
	DefaultMinValidScale = 0.01

	// maxTorsoShoulderRatio rejects samples where the torso/shoulder
	// proportion is anatomically implausible (landmark mixup).
	maxTorsoShoulderRatio = 4.0
	minTorsoShoulderRatio = 0.5
)

// Normalizer calibrates the body-relative length scale (torso length)
// once per session and converts raw-unit kinematics into
// torso-lengths-per-second. Calibration is idempotent: once the scale is
// cached, further samples are ignored and identical raw input yields
// bit-identical normalized output.
type Normalizer struct {
	minValidScale float64

	samples  []float64
	scale    float64
	valid    bool
	onValid  func(scale float64)
	notified bool
}

// NewNormalizer creates a Normalizer. minValidScale <= 0 falls back to
// DefaultMinValidScale. onValid, if non-nil, is invoked exactly once
// when the scale first becomes valid, so metric-scaled thresholds
// downstream can be rescaled in one place.
func NewNormalizer(minValidScale float64, onValid func(scale float64)) *Normalizer {
	if minValidScale <= 0 {
		minValidScale = DefaultMinValidScale
	}
	return &Normalizer{
		minValidScale: minValidScale,
		samples:       make([]float64, 0, CalibrationSamples),
		onValid:       onValid,
	}
}

// Calibrate feeds one frame of joints into the calibration accumulator.
// It returns the cached scale and true once calibration has completed.
func (n *Normalizer) Calibrate(joints *pose.Joints) (float64, bool) {
	if n.valid {
		return n.scale, true
	}

	torso, ok := pose.TorsoLength(joints)
	if !ok || torso < n.minValidScale {
		return 0, false
	}
	if width, wok := pose.ShoulderWidth(joints); wok && width > 1e-9 {
		ratio := torso / width
		if ratio < minTorsoShoulderRatio || ratio > maxTorsoShoulderRatio {
			return 0, false
		}
	}

	n.samples = append(n.samples, torso)
	if len(n.samples) < CalibrationSamples {
		return 0, false
	}

	// Median of the accumulated samples: robust against the occasional
	// landmark glitch during the calibration window.
	sorted := append([]float64(nil), n.samples...)
	sort.Float64s(sorted)
	n.scale = sorted[len(sorted)/2]
	n.valid = n.scale >= n.minValidScale
	if !n.valid {
		// Restart accumulation rather than caching a junk scale.
		n.samples = n.samples[:0]
		return 0, false
	}

	if n.onValid != nil && !n.notified {
		n.notified = true
		n.onValid(n.scale)
	}
	monitoring.Logf("kinematics: body scale calibrated at %.4f (n=%d)", n.scale, len(n.samples))
	return n.scale, true
}

// Scale returns the cached session scale and whether it is valid.
func (n *Normalizer) Scale() (float64, bool) {
	return n.scale, n.valid
}

// Normalize divides v by the session scale. When the scale is not yet
// valid the value is returned unchanged and ok is false, so callers can
// flag the frame as non-normalized instead of dividing by zero.
func (n *Normalizer) Normalize(v float64) (value float64, ok bool) {
	if !n.valid {
		return v, false
	}
	return v / n.scale, true
}

// Reset zeroes all accumulated calibration state for a new session. The
// one-shot propagation latch is re-armed too.
func (n *Normalizer) Reset() {
	n.samples = n.samples[:0]
	n.scale = 0
	n.valid = false
	n.notified = false
}
