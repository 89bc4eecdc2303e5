// Package units provides shared constants and conversions for the
// body-relative and real-world speed units used in stroke reports.
package units

// Unit constants
const (
	TLPS = "tlps" // torso-lengths per second (body-relative)
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid unit values.
var ValidUnits = []string{TLPS, MPS, MPH, KMPH, KPH}

// DefaultTorsoMeters is the torso length assumed when converting
// body-relative speeds into real-world units for display. Reports store
// speeds in torso-lengths per second; real-world values are estimates.
const DefaultTorsoMeters = 0.52

// IsValid checks if the given unit is in the list of valid units.
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units
// for error messages.
func GetValidUnitsString() string {
	return "tlps, mps, mph, kmph, kph"
}

// ConvertSpeed converts a body-relative speed (torso-lengths/sec) to the
// target units using the given torso length in meters. torsoMeters <= 0
// falls back to DefaultTorsoMeters.
func ConvertSpeed(speedTLPS float64, targetUnits string, torsoMeters float64) float64 {
	if torsoMeters <= 0 {
		torsoMeters = DefaultTorsoMeters
	}
	mps := speedTLPS * torsoMeters
	switch targetUnits {
	case TLPS:
		return speedTLPS
	case MPS:
		return mps
	case MPH:
		return mps * 2.2369362920544
	case KMPH, KPH:
		return mps * 3.6
	default:
		return speedTLPS
	}
}

// EstimateBallSpeedKPH estimates outgoing ball speed in km/h from the
// racket-hand speed at contact. The multiplier folds in the racket lever
// and typical energy transfer; it is a display heuristic, not physics.
func EstimateBallSpeedKPH(contactSpeedTLPS float64, torsoMeters float64) float64 {
	const racketLeverFactor = 1.6
	const energyTransfer = 1.35
	return ConvertSpeed(contactSpeedTLPS, KPH, torsoMeters) * racketLeverFactor * energyTransfer
}
