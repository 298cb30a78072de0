package companion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wispapp/wisp/internal/achievement"
	"github.com/wispapp/wisp/internal/config"
	"github.com/wispapp/wisp/internal/health"
	"github.com/wispapp/wisp/internal/notify"
)

func newTestManager(t *testing.T) *Manager {
	cfg := config.Default()
	m, err := NewManager(cfg, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func obsOn(d time.Time, steps int) health.Observation {
	return health.Observation{Date: d, Steps: steps, SleepMinutes: 430, HRV: 55}
}

func TestSeventhGoalDayUnlocksWeekStreak(t *testing.T) {
	m := newTestManager(t)
	start := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		require.NoError(t, m.ProcessObservation(obsOn(start.AddDate(0, 0, i), 9000), nil))
	}
	require.Equal(t, 6, m.Streaks().Current())
	require.False(t, m.Achievements().Earned("streak_7"))

	require.NoError(t, m.ProcessObservation(obsOn(start.AddDate(0, 0, 6), 9000), nil))

	assert.Equal(t, 7, m.Streaks().Current())
	assert.True(t, m.Achievements().Earned("streak_7"))
	assert.True(t, m.Inventory().Owned("color_sunrise"))

	kinds := map[notify.Kind]bool{}
	for _, ev := range m.Notifications().Snapshot() {
		kinds[ev.Kind] = true
	}
	assert.True(t, kinds[notify.KindStreakMilestone])
	assert.True(t, kinds[notify.KindAchievementUnlocked])
	assert.True(t, kinds[notify.KindCosmeticUnlocked])
}

func TestBelowGoalDayDoesNotExtendStreak(t *testing.T) {
	m := newTestManager(t)
	start := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, m.ProcessObservation(obsOn(start, 9000), nil))
	require.NoError(t, m.ProcessObservation(obsOn(start.AddDate(0, 0, 1), 2000), nil))

	assert.Equal(t, 0, m.Streaks().Current())
	// The low day still counted toward step achievements.
	assert.True(t, m.Achievements().Earned("first_steps"))
}

func TestStepMilestonesUnlockFromObservation(t *testing.T) {
	m := newTestManager(t)
	d := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, m.ProcessObservation(obsOn(d, 16000), nil))

	assert.True(t, m.Achievements().Earned("first_steps"))
	assert.True(t, m.Achievements().Earned("steps_10k"))
	assert.True(t, m.Achievements().Earned("steps_15k"))
	assert.False(t, m.Achievements().Earned("steps_20k"))
	assert.True(t, m.Inventory().Owned("hat_leaf"))
	assert.True(t, m.Inventory().Owned("theme_forest"))
	assert.True(t, m.Inventory().Owned("acc_medal"))
}

func TestObservationAdvancesChallenges(t *testing.T) {
	m := newTestManager(t)
	d := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, m.ProcessObservation(obsOn(d, 9000), nil))

	active := m.Challenges().Active()
	require.NotEmpty(t, active)
	advanced := false
	for _, c := range active {
		if c.Progress > 0 {
			advanced = true
		}
	}
	assert.True(t, advanced)
}

func TestRepeatedObservationDoesNotInflateChallenges(t *testing.T) {
	m := newTestManager(t)
	d := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, m.ProcessObservation(obsOn(d, 9000), nil))
	first := m.Challenges().Active()

	// A sync re-delivering the same day leaves every challenge where
	// it was.
	require.NoError(t, m.ProcessObservation(obsOn(d, 9000), nil))
	second := m.Challenges().Active()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Progress, second[i].Progress, first[i].ID)
	}
}

func TestEvolutionStages(t *testing.T) {
	m := newTestManager(t)
	assert.Equal(t, StageEgg, m.EvolutionStage())

	start := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, m.ProcessObservation(obsOn(start, 9000), nil))
	assert.Equal(t, StageHatchling, m.EvolutionStage())

	// A 20k-step week builds enough streak and badges for a sprite.
	for i := 1; i < 7; i++ {
		require.NoError(t, m.ProcessObservation(obsOn(start.AddDate(0, 0, i), 21000), nil))
	}
	assert.Equal(t, StageSprite, m.EvolutionStage())
	assert.True(t, m.Achievements().Earned("evolution_sprite"))
}

func TestExportWritesFullState(t *testing.T) {
	m := newTestManager(t)
	start := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		require.NoError(t, m.ProcessObservation(obsOn(start.AddDate(0, 0, i), 12000), nil))
	}

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, m.Export(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var state ExportState
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, 7, state.Streak.Current)
	// Locked achievements are part of the export, not just earned ones.
	assert.Len(t, state.Achievements, len(achievement.AllAchievements))
	assert.Greater(t, state.Statistics.TotalEarned, 0)
	assert.Less(t, state.Statistics.TotalEarned, len(achievement.AllAchievements))
	assert.NotEmpty(t, state.Challenges)
	assert.NotEmpty(t, state.Cosmetics)
	assert.NotEmpty(t, state.Pending)
	assert.NotEmpty(t, state.EvolutionStage)
	// Export is read-only; the queue still holds its events.
	assert.NotZero(t, m.Notifications().Pending())
}

func TestSuppressedNotificationsStayRecorded(t *testing.T) {
	cfg := config.Default()
	cfg.NotificationsEnabled = false
	m, err := NewManager(cfg, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	d := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, m.ProcessObservation(obsOn(d, 12000), nil))

	assert.True(t, m.Achievements().Earned("steps_10k"))
	assert.Zero(t, m.Notifications().Pending())
}

func TestRenderDashboard(t *testing.T) {
	m := newTestManager(t)
	d := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, m.ProcessObservation(obsOn(d, 12000), nil))

	out := m.RenderDashboard()
	assert.Contains(t, out, "WISP")
	assert.Contains(t, out, "Streak")
	assert.Contains(t, out, "Achievements")
}
