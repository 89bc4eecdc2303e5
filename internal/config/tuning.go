// Package config holds the tuning parameters and calibrated reference
// tables for the stroke pipeline. Everything here is explicitly
// constructed and swappable at runtime: nothing in the pipeline reads
// module-level mutable state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// Handedness values accepted by the pipeline.
const (
	HandLeft  = "left"
	HandRight = "right"
	HandAuto  = "auto"
)

// TuningConfig is the root tuning configuration. Fields are pointers so
// a partial JSON file only overrides what it names; the Get* accessors
// supply defaults for everything else.
type TuningConfig struct {
	// Detection params
	Cooldown              *string  `json:"cooldown,omitempty"` // duration string like "1.5s"
	MinHistoryFrames      *int     `json:"min_history_frames,omitempty"`
	DetectionWindowFrames *int     `json:"detection_window_frames,omitempty"`
	MinVelocityFloor      *float64 `json:"min_velocity_floor,omitempty"`

	// Segmentation params
	StillnessThreshold   *float64 `json:"stillness_threshold,omitempty"`
	ReadyThreshold       *float64 `json:"ready_threshold,omitempty"`
	RapidSwingThreshold  *float64 `json:"rapid_swing_threshold,omitempty"`
	MinAcceleration      *float64 `json:"min_acceleration,omitempty"`
	MinRotationGainDeg   *float64 `json:"min_rotation_gain_deg,omitempty"`
	ServeVerticalMotion  *float64 `json:"serve_vertical_motion,omitempty"`
	MinAccelFrames       *int     `json:"min_accel_frames,omitempty"`
	MinFollowFrames      *int     `json:"min_follow_frames,omitempty"`
	FullAccelFrames      *int     `json:"full_accel_frames,omitempty"`
	FullFollowFrames     *int     `json:"full_follow_frames,omitempty"`
	FollowSearchMinAhead *int     `json:"follow_search_min_ahead,omitempty"`

	// Normalization params
	ScaleValidityFloor *float64 `json:"scale_validity_floor,omitempty"`

	// Player params
	DominantHand *string `json:"dominant_hand,omitempty"` // "left", "right", "auto"
	SkillTier    *string `json:"skill_tier,omitempty"`

	// History params
	HistoryCapacity *int `json:"history_capacity,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the file retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.Cooldown != nil && *c.Cooldown != "" {
		if _, err := time.ParseDuration(*c.Cooldown); err != nil {
			return fmt.Errorf("invalid cooldown '%s': %w", *c.Cooldown, err)
		}
	}
	if c.MinHistoryFrames != nil && *c.MinHistoryFrames < 2 {
		return fmt.Errorf("min_history_frames must be at least 2, got %d", *c.MinHistoryFrames)
	}
	if c.DetectionWindowFrames != nil && *c.DetectionWindowFrames < 3 {
		return fmt.Errorf("detection_window_frames must be at least 3, got %d", *c.DetectionWindowFrames)
	}
	if c.MinVelocityFloor != nil && *c.MinVelocityFloor < 0 {
		return fmt.Errorf("min_velocity_floor must be non-negative, got %f", *c.MinVelocityFloor)
	}
	if c.ScaleValidityFloor != nil && *c.ScaleValidityFloor <= 0 {
		return fmt.Errorf("scale_validity_floor must be positive, got %f", *c.ScaleValidityFloor)
	}
	if c.DominantHand != nil {
		switch *c.DominantHand {
		case HandLeft, HandRight, HandAuto:
		default:
			return fmt.Errorf("dominant_hand must be left, right, or auto, got %q", *c.DominantHand)
		}
	}
	if c.SkillTier != nil {
		switch *c.SkillTier {
		case TierBeginner, TierIntermediate, TierAdvanced:
		default:
			return fmt.Errorf("skill_tier must be beginner, intermediate, or advanced, got %q", *c.SkillTier)
		}
	}
	return nil
}

// GetCooldown parses and returns the cooldown as a time.Duration.
func (c *TuningConfig) GetCooldown() time.Duration {
	if c.Cooldown == nil || *c.Cooldown == "" {
		return 1500 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.Cooldown)
	if err != nil {
		return 1500 * time.Millisecond
	}
	return d
}

// GetMinHistoryFrames returns the minimum history length for detection.
func (c *TuningConfig) GetMinHistoryFrames() int {
	if c.MinHistoryFrames == nil {
		return 20
	}
	return *c.MinHistoryFrames
}

// GetDetectionWindowFrames returns the peak-search window length.
func (c *TuningConfig) GetDetectionWindowFrames() int {
	if c.DetectionWindowFrames == nil {
		return 30
	}
	return *c.DetectionWindowFrames
}

// GetMinVelocityFloor returns the normalized minimum-velocity floor for
// a contact-point candidate, in torso-lengths per second.
func (c *TuningConfig) GetMinVelocityFloor() float64 {
	if c.MinVelocityFloor == nil {
		return 1.0
	}
	return *c.MinVelocityFloor
}

// GetStillnessThreshold returns the velocity below which the body is
// considered still (loading-start search).
func (c *TuningConfig) GetStillnessThreshold() float64 {
	if c.StillnessThreshold == nil {
		return 0.35
	}
	return *c.StillnessThreshold
}

// GetReadyThreshold returns the even lower "ready position" velocity
// used for the preparation-start search.
func (c *TuningConfig) GetReadyThreshold() float64 {
	if c.ReadyThreshold == nil {
		return 0.2
	}
	return *c.ReadyThreshold
}

// GetRapidSwingThreshold returns the velocity above which the forward
// swing is considered to have started.
func (c *TuningConfig) GetRapidSwingThreshold() float64 {
	if c.RapidSwingThreshold == nil {
		return 0.8
	}
	return *c.RapidSwingThreshold
}

// GetMinAcceleration returns the minimum acceleration for the
// acceleration-phase start.
func (c *TuningConfig) GetMinAcceleration() float64 {
	if c.MinAcceleration == nil {
		return 4.0
	}
	return *c.MinAcceleration
}

// GetMinRotationGainDeg returns the rotation gain a non-serve stroke
// must show through the loading window.
func (c *TuningConfig) GetMinRotationGainDeg() float64 {
	if c.MinRotationGainDeg == nil {
		return 1.5
	}
	return *c.MinRotationGainDeg
}

// GetServeVerticalMotion returns the vertical-motion signal above which
// a candidate is treated as a serve and exempted from the rotation-gain
// requirement.
func (c *TuningConfig) GetServeVerticalMotion() float64 {
	if c.ServeVerticalMotion == nil {
		return 0.9
	}
	return *c.ServeVerticalMotion
}

// GetMinAccelFrames returns the detector-time acceleration-phase minimum.
func (c *TuningConfig) GetMinAccelFrames() int {
	if c.MinAccelFrames == nil {
		return 2
	}
	return *c.MinAccelFrames
}

// GetMinFollowFrames returns the detector-time follow-through minimum.
func (c *TuningConfig) GetMinFollowFrames() int {
	if c.MinFollowFrames == nil {
		return 3
	}
	return *c.MinFollowFrames
}

// GetFullAccelFrames returns the acceleration-phase minimum for full
// phase-analysis validity.
func (c *TuningConfig) GetFullAccelFrames() int {
	if c.FullAccelFrames == nil {
		return 6
	}
	return *c.FullAccelFrames
}

// GetFullFollowFrames returns the follow-through minimum for full
// phase-analysis validity.
func (c *TuningConfig) GetFullFollowFrames() int {
	if c.FullFollowFrames == nil {
		return 8
	}
	return *c.FullFollowFrames
}

// GetFollowSearchMinAhead returns how far past contact the
// follow-through end search begins.
func (c *TuningConfig) GetFollowSearchMinAhead() int {
	if c.FollowSearchMinAhead == nil {
		return 8
	}
	return *c.FollowSearchMinAhead
}

// GetScaleValidityFloor returns the body-scale validity floor.
func (c *TuningConfig) GetScaleValidityFloor() float64 {
	if c.ScaleValidityFloor == nil {
		return 0.01
	}
	return *c.ScaleValidityFloor
}

// GetDominantHand returns the configured handedness.
func (c *TuningConfig) GetDominantHand() string {
	if c.DominantHand == nil || *c.DominantHand == "" {
		return HandAuto
	}
	return *c.DominantHand
}

// GetSkillTier returns the configured skill tier.
func (c *TuningConfig) GetSkillTier() string {
	if c.SkillTier == nil || *c.SkillTier == "" {
		return TierIntermediate
	}
	return *c.SkillTier
}

// GetHistoryCapacity returns the pose history capacity.
func (c *TuningConfig) GetHistoryCapacity() int {
	if c.HistoryCapacity == nil {
		return 60
	}
	return *c.HistoryCapacity
}
