package companion

import (
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wispapp/wisp/internal/achievement"
	"github.com/wispapp/wisp/internal/challenge"
	"github.com/wispapp/wisp/internal/config"
	"github.com/wispapp/wisp/internal/cosmetic"
	"github.com/wispapp/wisp/internal/health"
	"github.com/wispapp/wisp/internal/notify"
	"github.com/wispapp/wisp/internal/storage"
	"github.com/wispapp/wisp/internal/streak"
)

// Stage is the companion's evolution stage.
type Stage int

const (
	StageEgg Stage = iota
	StageHatchling
	StageSprite
	StageGuardian
	StageElder
)

var stageNames = map[Stage]string{
	StageEgg:       "egg",
	StageHatchling: "hatchling",
	StageSprite:    "sprite",
	StageGuardian:  "guardian",
	StageElder:     "elder",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "egg"
}

// Nightly sleep and recovery baselines used when scoring combined
// challenge objectives.
const (
	goodSleepMinutes = 420
	goodHRV          = 50.0
)

// Manager wires the reward engines together and drives them from
// daily health observations.
type Manager struct {
	cfg    config.Config
	logger *zap.Logger

	store        *storage.Store
	queue        *notify.Queue
	inventory    *cosmetic.Inventory
	achievements *achievement.Engine
	streaks      *streak.Engine
	challenges   *challenge.Engine
}

// NewManager opens the state store and loads every engine.
func NewManager(cfg config.Config, dbFilePath string, logger *zap.Logger) (*Manager, error) {
	store, err := storage.NewStore(dbFilePath, logger)
	if err != nil {
		return nil, err
	}

	queue := notify.NewQueue(cfg.NotificationsEnabled, logger)
	inventory := cosmetic.NewInventory(store, logger)
	achievements := achievement.NewEngine(store, inventory, queue, logger)
	streaks := streak.NewEngine(store, achievements, queue, logger)
	challenges := challenge.NewEngine(store, achievements, inventory, cfg.WeeklyChallengeCount, logger)

	return &Manager{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		queue:        queue,
		inventory:    inventory,
		achievements: achievements,
		streaks:      streaks,
		challenges:   challenges,
	}, nil
}

// Close flushes deferred writes and releases the store.
func (m *Manager) Close() error {
	if n := m.store.FlushDeferred(); n > 0 {
		m.logger.Warn("deferred writes still pending at close", zap.Int("count", n))
	}
	return m.store.Close()
}

// ProcessObservation folds one day's readings through every engine:
// streak first, then challenge progress, then achievement checks.
func (m *Manager) ProcessObservation(obs health.Observation, window []health.DayRecord) error {
	met := obs.Steps >= m.cfg.DailyStepGoal
	window = m.trimWindow(window)

	if err := m.streaks.RecordDailyProgress(obs.Date, met); err != nil {
		return err
	}

	if err := m.challenges.GenerateWeekly(obs.Date, window); err != nil {
		return err
	}
	if err := m.applyObservationToChallenges(obs, met); err != nil {
		return err
	}

	return m.checkAchievements(obs)
}

func (m *Manager) applyObservationToChallenges(obs health.Observation, met bool) error {
	if err := m.challenges.ApplyMetric(obs.Date, challenge.ObjectiveSteps, obs.Steps); err != nil {
		return err
	}
	if err := m.challenges.ApplyMetric(obs.Date, challenge.ObjectiveSleep, obs.SleepMinutes); err != nil {
		return err
	}
	if err := m.challenges.ApplyMetric(obs.Date, challenge.ObjectiveHRV, int(obs.HRV)); err != nil {
		return err
	}
	if met {
		if err := m.challenges.ApplyMetric(obs.Date, challenge.ObjectiveStreak, 1); err != nil {
			return err
		}
	}

	score := 0
	if met {
		score += 5
	}
	if obs.SleepMinutes >= goodSleepMinutes {
		score += 5
	}
	if obs.HRV >= goodHRV {
		score += 5
	}
	if score > 0 {
		return m.challenges.ApplyMetric(obs.Date, challenge.ObjectiveCombined, score)
	}
	return nil
}

// checkAchievements runs milestone checks until nothing new unlocks.
// Unlocks can raise the evolution stage, which can itself satisfy
// further conditions, so one pass is not always enough.
func (m *Manager) checkAchievements(obs health.Observation) error {
	for pass := 0; pass < len(stageNames); pass++ {
		metrics := m.Metrics(obs)
		ids := m.achievements.CheckMilestone(metrics)
		if len(ids) == 0 {
			return nil
		}
		for _, id := range ids {
			if _, err := m.achievements.Unlock(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Metrics assembles the snapshot achievement conditions evaluate
// against.
func (m *Manager) Metrics(obs health.Observation) health.Metrics {
	return health.Metrics{
		Steps:               obs.Steps,
		SleepMinutes:        obs.SleepMinutes,
		HRV:                 obs.HRV,
		Streak:              m.streaks.Current(),
		ChallengesCompleted: m.challenges.TotalCompleted(),
		EvolutionStage:      int(m.EvolutionStage()),
	}
}

// EvolutionStage derives the companion's form from its owner's track
// record. Stages only depend on monotone inputs, so a companion never
// devolves.
func (m *Manager) EvolutionStage() Stage {
	longest := m.streaks.Longest()
	earned := m.achievements.EarnedCount()

	switch {
	case longest >= 60 && earned >= 10:
		return StageElder
	case longest >= 30 && earned >= 6:
		return StageGuardian
	case longest >= 7 && earned >= 3:
		return StageSprite
	case longest >= 1 || earned >= 1:
		return StageHatchling
	default:
		return StageEgg
	}
}

// RolloverWeek generates the current week's challenge set from the
// recent history window.
func (m *Manager) RolloverWeek(now time.Time, window []health.DayRecord) error {
	return m.challenges.GenerateWeekly(now, m.trimWindow(window))
}

// trimWindow keeps only the most recent HistoryDays entries so stale
// history does not skew adaptive challenge targets.
func (m *Manager) trimWindow(window []health.DayRecord) []health.DayRecord {
	if m.cfg.HistoryDays > 0 && len(window) > m.cfg.HistoryDays {
		return window[len(window)-m.cfg.HistoryDays:]
	}
	return window
}

// Achievements exposes the achievement engine for queries.
func (m *Manager) Achievements() *achievement.Engine { return m.achievements }

// Streaks exposes the streak engine for queries.
func (m *Manager) Streaks() *streak.Engine { return m.streaks }

// Challenges exposes the challenge engine for queries.
func (m *Manager) Challenges() *challenge.Engine { return m.challenges }

// Inventory exposes the cosmetic inventory for queries.
func (m *Manager) Inventory() *cosmetic.Inventory { return m.inventory }

// Notifications exposes the pending reward queue.
func (m *Manager) Notifications() *notify.Queue { return m.queue }

// ExportState is the full reward state as one document. Achievements
// carries the whole catalog, earned and locked alike.
type ExportState struct {
	ExportedAt     time.Time                 `json:"exportedAt"`
	EvolutionStage string                    `json:"evolutionStage"`
	Achievements   []achievement.Achievement `json:"achievements"`
	Statistics     achievement.Statistics    `json:"statistics"`
	Streak         streak.State              `json:"streak"`
	Challenges     []challenge.Challenge     `json:"challenges"`
	Cosmetics      []cosmetic.Cosmetic       `json:"cosmetics"`
	Pending        []notify.Event            `json:"pendingNotifications"`
}

// Export writes the full reward state to path as indented JSON.
func (m *Manager) Export(path string) error {
	achievements, err := m.achievements.List(achievement.Filter{})
	if err != nil {
		return err
	}

	state := ExportState{
		ExportedAt:     time.Now(),
		EvolutionStage: m.EvolutionStage().String(),
		Achievements:   achievements,
		Statistics:     m.achievements.Statistics(),
		Streak:         m.streaks.Snapshot(),
		Challenges:     m.challenges.Active(),
		Cosmetics:      m.inventory.Items(),
		Pending:        m.queue.Snapshot(),
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	m.logger.Info("state exported", zap.String("path", path))
	return nil
}
