package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Skill tiers for the calibrated reference tables.
const (
	TierBeginner     = "beginner"
	TierIntermediate = "intermediate"
	TierAdvanced     = "advanced"
)

// Curve is a three-tier reference for one metric: the below-average,
// good, and excellent calibration points of a piecewise-linear scoring
// curve. Values are body-relative (torso-lengths/sec for velocity,
// torso-lengths/sec² for acceleration, degrees for angles).
type Curve struct {
	BelowAverage float64 `json:"below_average"`
	Good         float64 `json:"good"`
	Excellent    float64 `json:"excellent"`
}

// Reference holds the calibrated reference values for one stroke type at
// one skill tier.
type Reference struct {
	Velocity     Curve `json:"velocity"`
	Acceleration Curve `json:"acceleration"`
	RotationDeg  Curve `json:"rotation_deg"`

	// Ideal ranges used by the biomechanical checkpoints.
	ElbowAngleMin     float64 `json:"elbow_angle_min"`
	ElbowAngleMax     float64 `json:"elbow_angle_max"`
	HipShoulderSepMin float64 `json:"hip_shoulder_sep_min"`
	HipShoulderSepMax float64 `json:"hip_shoulder_sep_max"`
}

// ReferenceTable maps stroke-type name → skill tier → Reference. It is
// constructed once and handed to the pipeline; swapping in a new table
// at runtime recalibrates scoring without restarting the session.
type ReferenceTable map[string]map[string]Reference

// Lookup returns the reference for the given stroke type and tier,
// falling back to the groundstroke entry and then the intermediate tier
// when the specific combination is missing.
func (t ReferenceTable) Lookup(strokeType, tier string) (Reference, bool) {
	byTier, ok := t[strokeType]
	if !ok {
		byTier, ok = t["groundstroke"]
		if !ok {
			return Reference{}, false
		}
	}
	ref, ok := byTier[tier]
	if !ok {
		ref, ok = byTier[TierIntermediate]
	}
	return ref, ok
}

// scaled returns a Reference with every curve multiplied by f. Used to
// derive tier tables from the intermediate baseline.
func (r Reference) scaled(f float64) Reference {
	s := r
	s.Velocity = Curve{r.Velocity.BelowAverage * f, r.Velocity.Good * f, r.Velocity.Excellent * f}
	s.Acceleration = Curve{r.Acceleration.BelowAverage * f, r.Acceleration.Good * f, r.Acceleration.Excellent * f}
	s.RotationDeg = Curve{r.RotationDeg.BelowAverage * f, r.RotationDeg.Good * f, r.RotationDeg.Excellent * f}
	return s
}

// DefaultReferenceTable returns the built-in calibration, derived from
// session statistics collected with the video calibration tooling.
// Angle ranges are tier-independent; kinematic curves scale by tier.
func DefaultReferenceTable() ReferenceTable {
	base := map[string]Reference{
		"serve": {
			Velocity:     Curve{1.5, 3.0, 4.5},
			Acceleration: Curve{8, 20, 40},
			RotationDeg:  Curve{10, 25, 45},
			ElbowAngleMin: 130, ElbowAngleMax: 175,
			HipShoulderSepMin: 15, HipShoulderSepMax: 50,
		},
		"overhead": {
			Velocity:     Curve{1.2, 2.5, 4.0},
			Acceleration: Curve{6, 16, 32},
			RotationDeg:  Curve{8, 20, 40},
			ElbowAngleMin: 125, ElbowAngleMax: 175,
			HipShoulderSepMin: 10, HipShoulderSepMax: 45,
		},
		"forehand": {
			Velocity:     Curve{1.0, 2.2, 3.6},
			Acceleration: Curve{5, 14, 28},
			RotationDeg:  Curve{15, 35, 60},
			ElbowAngleMin: 114, ElbowAngleMax: 169,
			HipShoulderSepMin: 20, HipShoulderSepMax: 55,
		},
		"backhand": {
			Velocity:     Curve{0.9, 2.0, 3.4},
			Acceleration: Curve{5, 13, 26},
			RotationDeg:  Curve{15, 35, 60},
			ElbowAngleMin: 114, ElbowAngleMax: 169,
			HipShoulderSepMin: 15, HipShoulderSepMax: 50,
		},
		"volley": {
			Velocity:     Curve{0.5, 1.2, 2.0},
			Acceleration: Curve{3, 8, 16},
			RotationDeg:  Curve{5, 12, 25},
			ElbowAngleMin: 100, ElbowAngleMax: 160,
			HipShoulderSepMin: 5, HipShoulderSepMax: 30,
		},
		"groundstroke": {
			Velocity:     Curve{0.9, 2.0, 3.4},
			Acceleration: Curve{5, 13, 26},
			RotationDeg:  Curve{12, 30, 55},
			ElbowAngleMin: 114, ElbowAngleMax: 169,
			HipShoulderSepMin: 15, HipShoulderSepMax: 50,
		},
	}

	table := make(ReferenceTable, len(base))
	for stroke, ref := range base {
		table[stroke] = map[string]Reference{
			TierBeginner:     ref.scaled(0.7),
			TierIntermediate: ref,
			TierAdvanced:     ref.scaled(1.25),
		}
	}
	return table
}

// LoadReferenceTable loads a ReferenceTable from a JSON file, for hot
// recalibration from captured session statistics.
func LoadReferenceTable(path string) (ReferenceTable, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("reference table must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference table: %w", err)
	}
	var table ReferenceTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse reference table: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("reference table %s is empty", cleanPath)
	}
	return table, nil
}
