package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// minCalibrationStrokes is how many observed strokes of a type are
// needed before a calibrated reference is derived for it.
const minCalibrationStrokes = 8

// MetricSummary describes the distribution of one observed metric over
// a session.
type MetricSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
}

// CalibrationSummary holds the per-metric distributions for one stroke
// type.
type CalibrationSummary struct {
	Velocity     MetricSummary `json:"velocity"`
	Acceleration MetricSummary `json:"acceleration"`
	RotationDeg  MetricSummary `json:"rotation_deg"`
}

type strokeSamples struct {
	velocity     []float64
	acceleration []float64
	rotation     []float64
}

// Calibrator accumulates per-stroke kinematics over a session and
// derives a recalibrated reference table from the observed
// distributions. Safe for concurrent use.
type Calibrator struct {
	mu      sync.Mutex
	samples map[string]*strokeSamples
}

// NewCalibrator returns an empty calibrator.
func NewCalibrator() *Calibrator {
	return &Calibrator{samples: make(map[string]*strokeSamples)}
}

// Observe records one stroke's peak kinematics under its stroke type.
func (c *Calibrator) Observe(strokeType string, velocity, acceleration, rotationDeg float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.samples[strokeType]
	if !ok {
		s = &strokeSamples{}
		c.samples[strokeType] = s
	}
	s.velocity = append(s.velocity, velocity)
	s.acceleration = append(s.acceleration, acceleration)
	s.rotation = append(s.rotation, rotationDeg)
}

// Summaries returns the per-stroke-type metric distributions observed
// so far.
func (c *Calibrator) Summaries() map[string]CalibrationSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]CalibrationSummary, len(c.samples))
	for strokeType, s := range c.samples {
		out[strokeType] = CalibrationSummary{
			Velocity:     summarize(s.velocity),
			Acceleration: summarize(s.acceleration),
			RotationDeg:  summarize(s.rotation),
		}
	}
	return out
}

// DeriveTable builds a reference table from the observed distributions:
// the below-average, good, and excellent calibration points are the
// p25, p50, and p90 of the session. Stroke types with fewer than
// minCalibrationStrokes observations are skipped; checkpoint angle
// ranges are not data-derived and carry over from the built-in table.
// The result is empty when no stroke type has enough observations.
func (c *Calibrator) DeriveTable() ReferenceTable {
	summaries := c.Summaries()
	defaults := DefaultReferenceTable()

	table := make(ReferenceTable)
	for strokeType, sum := range summaries {
		if sum.Velocity.Count < minCalibrationStrokes {
			continue
		}
		ref, _ := defaults.Lookup(strokeType, TierIntermediate)
		ref.Velocity = Curve{sum.Velocity.P25, sum.Velocity.P50, sum.Velocity.P90}
		ref.Acceleration = Curve{sum.Acceleration.P25, sum.Acceleration.P50, sum.Acceleration.P90}
		ref.RotationDeg = Curve{sum.RotationDeg.P25, sum.RotationDeg.P50, sum.RotationDeg.P90}

		table[strokeType] = map[string]Reference{
			TierBeginner:     ref.scaled(0.7),
			TierIntermediate: ref,
			TierAdvanced:     ref.scaled(1.25),
		}
	}
	return table
}

func summarize(values []float64) MetricSummary {
	if len(values) == 0 {
		return MetricSummary{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	stddev := 0.0
	if len(sorted) > 1 {
		stddev = stat.StdDev(sorted, nil)
	}
	return MetricSummary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		StdDev: stddev,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P50:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
}

// SaveReferenceTable writes a reference table as indented JSON, in the
// format LoadReferenceTable reads back.
func SaveReferenceTable(path string, table ReferenceTable) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("reference table must have .json extension, got %q", ext)
	}
	if len(table) == 0 {
		return fmt.Errorf("refusing to write empty reference table")
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reference table: %w", err)
	}
	if err := os.WriteFile(cleanPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write reference table: %w", err)
	}
	return nil
}
