package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wispapp/wisp/internal/core"
)

// Config holds user-tunable settings for the reward engine.
type Config struct {
	// DataDir overrides the default state directory.
	DataDir string `yaml:"data_dir"`

	// DailyStepGoal is the step count that marks a day as "met" for streaks.
	DailyStepGoal int `yaml:"daily_step_goal"`

	// NotificationsEnabled controls whether reward events surface to the
	// notification feed. State changes are recorded either way.
	NotificationsEnabled bool `yaml:"notifications_enabled"`

	// WeeklyChallengeCount is how many challenges are generated per week.
	WeeklyChallengeCount int `yaml:"weekly_challenge_count"`

	// HistoryDays is the size of the recent-history window used when
	// deriving challenge targets.
	HistoryDays int `yaml:"history_days"`

	// LogLevel is a zap level string: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		DataDir:              core.DataDir(),
		DailyStepGoal:        8000,
		NotificationsEnabled: true,
		WeeklyChallengeCount: 3,
		HistoryDays:          14,
		LogLevel:             "info",
	}
}

// Load reads the config file at path, merging it over defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Default(), err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.DailyStepGoal <= 0 {
		return fmt.Errorf("daily_step_goal must be positive, got %d", c.DailyStepGoal)
	}
	if c.WeeklyChallengeCount <= 0 {
		return fmt.Errorf("weekly_challenge_count must be positive, got %d", c.WeeklyChallengeCount)
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("history_days must be positive, got %d", c.HistoryDays)
	}
	return nil
}
