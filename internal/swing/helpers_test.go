package swing

import (
	"github.com/courtside-data/stroke.report/internal/config"
)

// testTuning returns tuning whose velocity thresholds match the
// scaled-down synthetic stroke profiles used throughout these tests
// (still ~0.01, peak ~0.06 torso-lengths/sec). Everything not named here
// keeps its default.
func testTuning() *config.TuningConfig {
	cfg := config.EmptyTuningConfig()
	cfg.MinVelocityFloor = fptr(0.04)
	cfg.StillnessThreshold = fptr(0.012)
	cfg.ReadyThreshold = fptr(0.011)
	cfg.RapidSwingThreshold = fptr(0.015)
	cfg.MinAcceleration = fptr(0.3)
	return cfg
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
