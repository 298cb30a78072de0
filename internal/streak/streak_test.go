package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wispapp/wisp/internal/achievement"
	"github.com/wispapp/wisp/internal/notify"
	"github.com/wispapp/wisp/internal/storage"
)

type nopGranter struct{}

func (nopGranter) Grant(string, string) error { return nil }

func newTestEngine(t *testing.T) (*Engine, *achievement.Engine, *notify.Queue, *storage.Store) {
	store, err := storage.NewStore(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	queue := notify.NewQueue(true, zap.NewNop())
	achievements := achievement.NewEngine(store, nopGranter{}, queue, zap.NewNop())
	engine := NewEngine(store, achievements, queue, zap.NewNop())
	return engine, achievements, queue, store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func recordRange(t *testing.T, e *Engine, start time.Time, days int, met bool) {
	t.Helper()
	for i := 0; i < days; i++ {
		require.NoError(t, e.RecordDailyProgress(start.AddDate(0, 0, i), met))
	}
}

func TestConsecutiveDaysExtendStreak(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	recordRange(t, engine, day(2025, 3, 1), 5, true)
	assert.Equal(t, 5, engine.Current())
	assert.Equal(t, 5, engine.Longest())
}

func TestDuplicateDayIsNoOp(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	d := day(2025, 3, 1)
	require.NoError(t, engine.RecordDailyProgress(d, true))
	require.NoError(t, engine.RecordDailyProgress(d, true))
	require.NoError(t, engine.RecordDailyProgress(d.Add(13*time.Hour), false))

	assert.Equal(t, 1, engine.Current())
	assert.Len(t, engine.Snapshot().History, 1)
}

func TestMissedDayResetsStreak(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	recordRange(t, engine, day(2025, 3, 1), 3, true)
	// March 4 skipped entirely, goal met again on the 5th.
	require.NoError(t, engine.RecordDailyProgress(day(2025, 3, 5), true))

	assert.Equal(t, 1, engine.Current())
	assert.Equal(t, 3, engine.Longest())
}

func TestUnmetDayResetsStreak(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	recordRange(t, engine, day(2025, 3, 1), 3, true)
	require.NoError(t, engine.RecordDailyProgress(day(2025, 3, 4), false))

	assert.Equal(t, 0, engine.Current())
	assert.Equal(t, 3, engine.Longest())
}

func TestLongestNeverDecreases(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	recordRange(t, engine, day(2025, 3, 1), 10, true)
	require.NoError(t, engine.RecordDailyProgress(day(2025, 3, 11), false))
	recordRange(t, engine, day(2025, 3, 12), 4, true)

	assert.Equal(t, 4, engine.Current())
	assert.Equal(t, 10, engine.Longest())
}

func TestOutOfOrderCorrectionLeavesCountersAlone(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	recordRange(t, engine, day(2025, 3, 1), 5, true)
	// Correct an earlier day to unmet. History is rewritten, counters are not.
	require.NoError(t, engine.RecordDailyProgress(day(2025, 3, 2), false))

	assert.Equal(t, 5, engine.Current())
	snap := engine.Snapshot()
	require.Len(t, snap.History, 5)
	assert.False(t, snap.History[1].GoalMet)
}

func TestMilestoneFiresExactlyOnLadderDay(t *testing.T) {
	engine, achievements, queue, _ := newTestEngine(t)

	recordRange(t, engine, day(2025, 3, 1), 6, true)
	assert.False(t, achievements.Earned("streak_7"))

	require.NoError(t, engine.RecordDailyProgress(day(2025, 3, 7), true))
	assert.True(t, achievements.Earned("streak_7"))

	var milestone *notify.Event
	for {
		ev, ok := queue.Dequeue()
		if !ok {
			break
		}
		if ev.Kind == notify.KindStreakMilestone {
			milestone = &ev
			break
		}
	}
	require.NotNil(t, milestone)
	payload, ok := milestone.Payload.(notify.StreakPayload)
	require.True(t, ok)
	assert.Equal(t, 7, payload.Days)
	assert.Equal(t, "streak_7", payload.AchievementID)
}

func TestMilestoneAchievementUnlocksOnce(t *testing.T) {
	engine, achievements, queue, _ := newTestEngine(t)

	recordRange(t, engine, day(2025, 3, 1), 7, true)
	require.NoError(t, engine.RecordDailyProgress(day(2025, 3, 8), false))
	recordRange(t, engine, day(2025, 3, 9), 7, true)

	// The badge stays singular but the second run still gets its
	// milestone notification.
	assert.True(t, achievements.Earned("streak_7"))
	assert.Equal(t, 1, achievements.EarnedCount())

	milestoneEvents := 0
	for _, ev := range queue.Drain() {
		if ev.Kind == notify.KindStreakMilestone {
			milestoneEvents++
		}
	}
	assert.Equal(t, 2, milestoneEvents)
}

func TestNextMilestone(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	assert.Equal(t, 7, engine.NextMilestone())
	assert.Equal(t, 7, engine.DaysUntilMilestone())

	recordRange(t, engine, day(2025, 3, 1), 7, true)
	assert.Equal(t, 14, engine.NextMilestone())
	assert.Equal(t, 7, engine.DaysUntilMilestone())
}

func TestComebackAfterLongLostStreak(t *testing.T) {
	engine, achievements, _, _ := newTestEngine(t)

	recordRange(t, engine, day(2025, 1, 1), 14, true)
	require.NoError(t, engine.RecordDailyProgress(day(2025, 1, 15), false))
	assert.False(t, achievements.Earned("special_comeback"))

	require.NoError(t, engine.RecordDailyProgress(day(2025, 1, 20), true))
	assert.True(t, achievements.Earned("special_comeback"))
}

func TestStatePersistsAcrossReload(t *testing.T) {
	engine, _, _, store := newTestEngine(t)

	recordRange(t, engine, day(2025, 3, 1), 9, true)

	queue := notify.NewQueue(true, zap.NewNop())
	achievements := achievement.NewEngine(store, nopGranter{}, queue, zap.NewNop())
	reloaded := NewEngine(store, achievements, queue, zap.NewNop())

	assert.Equal(t, 9, reloaded.Current())
	assert.Equal(t, 9, reloaded.Longest())
	assert.Len(t, reloaded.Snapshot().History, 9)
}

func TestInconsistentRecordRecoversFromHistory(t *testing.T) {
	store, err := storage.NewStore(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	history := []DayEntry{
		{Date: day(2025, 3, 1), GoalMet: true},
		{Date: day(2025, 3, 2), GoalMet: false},
		{Date: day(2025, 3, 3), GoalMet: true},
		{Date: day(2025, 3, 4), GoalMet: true},
	}
	// Current larger than longest is impossible; counters must be rebuilt.
	require.NoError(t, store.Save(RecordKey, streakRecord{State: State{
		Current: 99,
		Longest: 3,
		History: history,
	}}))

	queue := notify.NewQueue(true, zap.NewNop())
	achievements := achievement.NewEngine(store, nopGranter{}, queue, zap.NewNop())
	engine := NewEngine(store, achievements, queue, zap.NewNop())

	assert.Equal(t, 2, engine.Current())
	assert.Equal(t, 2, engine.Longest())
	assert.Len(t, engine.Snapshot().History, 4)
}

func TestUnreadableRecordResetsToZero(t *testing.T) {
	store, err := storage.NewStore(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Save(RecordKey, []int{1, 2, 3}))

	queue := notify.NewQueue(true, zap.NewNop())
	achievements := achievement.NewEngine(store, nopGranter{}, queue, zap.NewNop())
	engine := NewEngine(store, achievements, queue, zap.NewNop())

	assert.Equal(t, 0, engine.Current())
	assert.Equal(t, 0, engine.Longest())

	// The engine keeps working after recovery.
	require.NoError(t, engine.RecordDailyProgress(day(2025, 3, 1), true))
	assert.Equal(t, 1, engine.Current())
}

func TestRecoverFromCorruptionExplicit(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	recordRange(t, engine, day(2025, 3, 1), 8, true)
	engine.mu.Lock()
	engine.state.Current = -5
	engine.mu.Unlock()

	engine.RecoverFromCorruption()
	assert.Equal(t, 8, engine.Current())
	assert.Equal(t, 8, engine.Longest())
}
