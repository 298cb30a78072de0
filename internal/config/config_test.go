package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, 8000, cfg.DailyStepGoal)
	assert.True(t, cfg.NotificationsEnabled)
	assert.Equal(t, 3, cfg.WeeklyChallengeCount)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "daily_step_goal: 12000\nnotifications_enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12000, cfg.DailyStepGoal)
	assert.False(t, cfg.NotificationsEnabled)
	// Untouched fields keep their defaults
	assert.Equal(t, 3, cfg.WeeklyChallengeCount)
	assert.Equal(t, 14, cfg.HistoryDays)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero step goal", "daily_step_goal: 0\n"},
		{"negative challenge count", "weekly_challenge_count: -1\n"},
		{"malformed yaml", "daily_step_goal: [not a number\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg, err := Load(path)
			assert.Error(t, err)
			// Caller can still proceed with defaults
			assert.Equal(t, Default(), cfg)
		})
	}
}
