package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	assert.Equal(t, 1500*time.Millisecond, cfg.GetCooldown())
	assert.Equal(t, 20, cfg.GetMinHistoryFrames())
	assert.Equal(t, 30, cfg.GetDetectionWindowFrames())
	assert.Equal(t, 1.0, cfg.GetMinVelocityFloor())
	assert.Equal(t, 0.35, cfg.GetStillnessThreshold())
	assert.Equal(t, 0.2, cfg.GetReadyThreshold())
	assert.Equal(t, 0.8, cfg.GetRapidSwingThreshold())
	assert.Equal(t, 4.0, cfg.GetMinAcceleration())
	assert.Equal(t, 1.5, cfg.GetMinRotationGainDeg())
	assert.Equal(t, 2, cfg.GetMinAccelFrames())
	assert.Equal(t, 3, cfg.GetMinFollowFrames())
	assert.Equal(t, 6, cfg.GetFullAccelFrames())
	assert.Equal(t, 8, cfg.GetFullFollowFrames())
	assert.Equal(t, 60, cfg.GetHistoryCapacity())
	assert.Equal(t, HandAuto, cfg.GetDominantHand())
	assert.Equal(t, TierIntermediate, cfg.GetSkillTier())
}

func TestLoadTuningConfig(t *testing.T) {
	t.Run("partial_override", func(t *testing.T) {
		path := writeConfig(t, "tuning.json", `{
			"cooldown": "2s",
			"min_velocity_floor": 1.4,
			"dominant_hand": "left"
		}`)
		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 2*time.Second, cfg.GetCooldown())
		assert.Equal(t, 1.4, cfg.GetMinVelocityFloor())
		assert.Equal(t, HandLeft, cfg.GetDominantHand())
		// Everything the file omits keeps its default.
		assert.Equal(t, 20, cfg.GetMinHistoryFrames())
		assert.Equal(t, TierIntermediate, cfg.GetSkillTier())
	})

	t.Run("rejects_non_json_extension", func(t *testing.T) {
		path := writeConfig(t, "tuning.yaml", "cooldown: 2s")
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, ".json extension")
	})

	t.Run("rejects_malformed_json", func(t *testing.T) {
		path := writeConfig(t, "tuning.json", "{nope")
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("rejects_invalid_values", func(t *testing.T) {
		path := writeConfig(t, "tuning.json", `{"min_history_frames": 1}`)
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, "min_history_frames")
	})
}

func TestTuningConfigValidate(t *testing.T) {
	str := func(s string) *string { return &s }
	i := func(v int) *int { return &v }
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		mutate  func(c *TuningConfig)
		wantErr string
	}{
		{"empty_is_valid", func(c *TuningConfig) {}, ""},
		{"bad_cooldown", func(c *TuningConfig) { c.Cooldown = str("soon") }, "invalid cooldown"},
		{"good_cooldown", func(c *TuningConfig) { c.Cooldown = str("750ms") }, ""},
		{"tiny_window", func(c *TuningConfig) { c.DetectionWindowFrames = i(2) }, "detection_window_frames"},
		{"negative_floor", func(c *TuningConfig) { c.MinVelocityFloor = f(-0.1) }, "min_velocity_floor"},
		{"zero_scale_floor", func(c *TuningConfig) { c.ScaleValidityFloor = f(0) }, "scale_validity_floor"},
		{"bad_hand", func(c *TuningConfig) { c.DominantHand = str("ambidextrous") }, "dominant_hand"},
		{"auto_hand", func(c *TuningConfig) { c.DominantHand = str(HandAuto) }, ""},
		{"bad_tier", func(c *TuningConfig) { c.SkillTier = str("pro") }, "skill_tier"},
		{"good_tier", func(c *TuningConfig) { c.SkillTier = str(TierAdvanced) }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := EmptyTuningConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
