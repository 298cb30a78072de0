package challenge

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/wispapp/wisp/internal/achievement"
	"github.com/wispapp/wisp/internal/health"
	"github.com/wispapp/wisp/internal/storage"
)

// RecordKey is the storage key for challenge state.
const RecordKey = "challenges"

var (
	// ErrUnknownChallenge reports a challenge id with no active instance
	// this week.
	ErrUnknownChallenge = errors.New("unknown challenge")

	// ErrInvalidProgress reports an out-of-range progress value.
	ErrInvalidProgress = errors.New("invalid progress value")
)

type challengeRecord struct {
	ActiveChallenges      []Challenge `json:"activeChallenges"`
	CompletedChallengeIDs []string    `json:"completedChallengeIds"`
	TotalCompleted        int         `json:"totalCompleted"`
	WeekStartDate         time.Time   `json:"weekStartDate"`
}

// Engine generates weekly challenges and tracks their progress.
type Engine struct {
	store        *storage.Store
	achievements *achievement.Engine
	granter      achievement.Granter
	logger       *zap.Logger
	count        int

	mu             sync.Mutex
	active         []Challenge
	completedIDs   []string
	totalCompleted int
	weekStart      time.Time
}

// NewEngine loads persisted challenge state. count is how many
// challenges each week gets.
func NewEngine(store *storage.Store, achievements *achievement.Engine, granter achievement.Granter, count int, logger *zap.Logger) *Engine {
	e := &Engine{
		store:        store,
		achievements: achievements,
		granter:      granter,
		logger:       logger,
		count:        count,
	}

	var rec challengeRecord
	found, err := store.Load(RecordKey, &rec)
	if err != nil {
		logger.Warn("challenge record unreadable, starting fresh", zap.Error(err))
		return e
	}
	if !found {
		return e
	}

	e.completedIDs = rec.CompletedChallengeIDs
	e.totalCompleted = rec.TotalCompleted
	e.weekStart = rec.WeekStartDate
	e.active = lo.Filter(rec.ActiveChallenges, func(c Challenge, _ int) bool {
		if TemplateByID(c.TemplateID) == nil {
			logger.Warn("dropping challenge with unknown template", zap.String("id", c.ID))
			return false
		}
		return true
	})
	return e
}

// GenerateWeekly ensures the week containing now has its challenge
// set. Calling it again within the same week keeps the existing set
// untouched, so progress survives restarts.
func (e *Engine) GenerateWeekly(now time.Time, window []health.DayRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := WeekStart(now)
	if !e.weekStart.IsZero() && e.weekStart.Equal(start) && len(e.active) > 0 {
		return nil
	}

	picks := pickTemplates(e.count, WeeklySeed(now))
	end := start.AddDate(0, 0, 7)

	e.active = make([]Challenge, 0, len(picks))
	for _, tpl := range picks {
		e.active = append(e.active, Challenge{
			ID:          fmt.Sprintf("%s_%s", tpl.ID, start.Format("2006_01_02")),
			TemplateID:  tpl.ID,
			Name:        tpl.Name,
			Description: tpl.Description,
			Icon:        tpl.Icon,
			Kind:        tpl.Kind,
			Unit:        tpl.Unit,
			Target:      adaptTarget(tpl, window),
			Reward:      tpl.Reward,
			WeekStart:   start,
			WeekEnd:     end,
		})
	}
	e.weekStart = start

	e.logger.Info("weekly challenges generated",
		zap.Time("weekStart", start),
		zap.Int("count", len(e.active)))
	return e.persistLocked()
}

// pickTemplates shuffles the template pool with the week's seed and
// keeps the first count entries.
func pickTemplates(count int, seed int64) []Template {
	if count > len(WeeklyTemplates) {
		count = len(WeeklyTemplates)
	}
	r := rand.New(rand.NewSource(seed))

	shuffled := make([]Template, len(WeeklyTemplates))
	copy(shuffled, WeeklyTemplates)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:count]
}

// adaptTarget scales a template's target from the recent history
// window, never dropping below the base target.
func adaptTarget(tpl Template, window []health.DayRecord) int {
	if tpl.AdaptFactor == 0 || len(window) == 0 {
		return tpl.BaseTarget
	}

	var avg float64
	switch tpl.Kind {
	case ObjectiveSteps:
		avg = float64(health.AverageSteps(window))
	case ObjectiveSleep:
		avg = float64(health.AverageSleepMinutes(window))
	case ObjectiveHRV:
		avg = health.AverageHRV(window)
	default:
		return tpl.BaseTarget
	}

	target := int(avg * tpl.AdaptFactor)
	if target < tpl.BaseTarget {
		return tpl.BaseTarget
	}
	return target
}

// UpdateProgress records the cumulative progress reported for the
// named active challenge. Reports are clamped to [0, target] and never
// move progress backwards, so re-delivering an earlier report is a
// no-op. Reaching the target completes the challenge exactly once.
func (e *Engine) UpdateProgress(challengeID string, value int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if value < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidProgress, value)
	}

	c := e.findLocked(challengeID)
	if c == nil {
		return fmt.Errorf("%w: %q", ErrUnknownChallenge, challengeID)
	}
	if c.Completed {
		return nil
	}

	total := value
	if total > c.Target {
		total = c.Target
	}
	if total <= c.Progress {
		return nil
	}

	c.Progress = total
	if c.Progress >= c.Target {
		e.completeLocked(c)
	}
	return e.persistLocked()
}

// ApplyMetric records a day's reading against every active challenge of
// the given kind. Contributions are keyed by day, so a reading
// re-delivered for the same day replaces the earlier value instead of
// stacking on top of it.
func (e *Engine) ApplyMetric(day time.Time, kind ObjectiveKind, value int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if value <= 0 {
		return nil
	}

	key := health.Day(day).Format("2006-01-02")
	changed := false
	for i := range e.active {
		c := &e.active[i]
		if c.Kind != kind || c.Completed {
			continue
		}
		if c.Contributions == nil {
			c.Contributions = make(map[string]int)
		}
		if value <= c.Contributions[key] {
			continue
		}
		c.Contributions[key] = value
		changed = true

		total := 0
		for _, v := range c.Contributions {
			total += v
		}
		if total > c.Target {
			total = c.Target
		}
		if total <= c.Progress {
			continue
		}
		c.Progress = total
		if c.Progress >= c.Target {
			e.completeLocked(c)
		}
	}

	if !changed {
		return nil
	}
	return e.persistLocked()
}

func (e *Engine) findLocked(challengeID string) *Challenge {
	for i := range e.active {
		if e.active[i].ID == challengeID {
			return &e.active[i]
		}
	}
	return nil
}

// completeLocked marks the challenge done and pays its reward. The
// completed-ids list guards against double dispatch. The caller
// persists.
func (e *Engine) completeLocked(c *Challenge) {
	if lo.Contains(e.completedIDs, c.ID) {
		c.Completed = true
		return
	}

	now := time.Now()
	c.Completed = true
	c.CompletedAt = &now
	e.completedIDs = append(e.completedIDs, c.ID)
	e.totalCompleted++

	e.logger.Info("challenge completed",
		zap.String("id", c.ID),
		zap.Int("totalCompleted", e.totalCompleted))

	if c.Reward.BonusPoints > 0 {
		if err := e.achievements.AddBonusPoints(c.Reward.BonusPoints); err != nil {
			e.logger.Warn("bonus points not credited", zap.Error(err))
		}
	}
	if c.Reward.AchievementID != "" {
		if _, err := e.achievements.Unlock(c.Reward.AchievementID); err != nil {
			e.logger.Warn("reward achievement not unlocked",
				zap.String("id", c.Reward.AchievementID), zap.Error(err))
		}
	}
	if c.Reward.CosmeticID != "" {
		if err := e.granter.Grant(c.Reward.CosmeticID, c.ID); err != nil {
			e.logger.Warn("reward cosmetic not granted",
				zap.String("cosmetic", c.Reward.CosmeticID), zap.Error(err))
		}
	}

	// Lifetime completion milestones.
	for count, id := range map[int]string{1: "challenge_first", 5: "challenge_5", 20: "challenge_20"} {
		if e.totalCompleted >= count {
			if _, err := e.achievements.Unlock(id); err != nil {
				e.logger.Warn("completion milestone not unlocked",
					zap.String("id", id), zap.Error(err))
			}
		}
	}

	if e.allCompletedLocked() {
		if _, err := e.achievements.Unlock("challenge_clean_sweep"); err != nil {
			e.logger.Warn("clean sweep not unlocked", zap.Error(err))
		}
	}
}

// CheckAllCompleted reports whether every active challenge this week
// is done.
func (e *Engine) CheckAllCompleted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.allCompletedLocked()
}

func (e *Engine) allCompletedLocked() bool {
	if len(e.active) == 0 {
		return false
	}
	for _, c := range e.active {
		if !c.Completed {
			return false
		}
	}
	return true
}

// Active returns a copy of this week's challenges.
func (e *Engine) Active() []Challenge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Challenge(nil), e.active...)
}

// TotalCompleted returns the lifetime number of completed challenges.
func (e *Engine) TotalCompleted() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalCompleted
}

// WeekStartDate returns the Monday of the currently generated week,
// zero before the first generation.
func (e *Engine) WeekStartDate() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.weekStart
}

func (e *Engine) persistLocked() error {
	return e.store.Save(RecordKey, challengeRecord{
		ActiveChallenges:      e.active,
		CompletedChallengeIDs: e.completedIDs,
		TotalCompleted:        e.totalCompleted,
		WeekStartDate:         e.weekStart,
	})
}
