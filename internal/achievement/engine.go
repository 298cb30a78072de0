package achievement

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/wispapp/wisp/internal/health"
	"github.com/wispapp/wisp/internal/notify"
	"github.com/wispapp/wisp/internal/storage"
)

// RecordKey is the storage key for achievement state.
const RecordKey = "achievements"

// recentUnlockLimit bounds the recent-unlock list in Statistics.
const recentUnlockLimit = 10

// ErrInvalidFilter reports a filter with an unrecognized field value.
var ErrInvalidFilter = errors.New("invalid achievement filter")

// Granter hands out cosmetic rewards when achievements unlock. It is
// satisfied by the cosmetic inventory.
type Granter interface {
	Grant(cosmeticID, sourceAchievement string) error
}

// Statistics summarizes earned achievements for display.
type Statistics struct {
	TotalEarned          int           `json:"totalEarned"`
	TotalAvailable       int           `json:"totalAvailable"`
	CompletionPercentage float64       `json:"completionPercentage"`
	RarestBadge          *Achievement  `json:"rarestBadge,omitempty"`
	RecentUnlocks        []Achievement `json:"recentUnlocks,omitempty"`
	BonusPoints          int           `json:"bonusPoints"`
}

// Filter selects a subset of the catalog. Zero-valued fields match
// everything; set fields combine conjunctively.
type Filter struct {
	Category Category
	Status   string // "earned", "locked", or "" for both
	Rarity   Rarity
}

type achievementRecord struct {
	Achievements []earnedEntry `json:"achievements"`
	Statistics   Statistics    `json:"statistics"`
	BonusPoints  int           `json:"bonusPoints"`
	LastUpdated  time.Time     `json:"lastUpdated"`
}

type earnedEntry struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// Engine tracks which achievements are earned and unlocks new ones.
type Engine struct {
	store   *storage.Store
	granter Granter
	queue   *notify.Queue
	logger  *zap.Logger

	mu          sync.Mutex
	earned      map[string]time.Time
	bonusPoints int
}

// NewEngine loads persisted unlock state. A corrupt or missing record
// starts the engine empty.
func NewEngine(store *storage.Store, granter Granter, queue *notify.Queue, logger *zap.Logger) *Engine {
	e := &Engine{
		store:   store,
		granter: granter,
		queue:   queue,
		logger:  logger,
		earned:  make(map[string]time.Time),
	}

	var rec achievementRecord
	found, err := store.Load(RecordKey, &rec)
	if err != nil {
		logger.Warn("achievement record unreadable, starting fresh", zap.Error(err))
		return e
	}
	if !found {
		return e
	}

	e.bonusPoints = rec.BonusPoints
	for _, entry := range rec.Achievements {
		if ByID(entry.ID) == nil {
			logger.Warn("dropping unknown achievement from record", zap.String("id", entry.ID))
			continue
		}
		if entry.UnlockedAt.IsZero() {
			logger.Warn("dropping achievement entry with no unlock time", zap.String("id", entry.ID))
			continue
		}
		e.earned[entry.ID] = entry.UnlockedAt
	}
	return e
}

// CheckMilestone returns the ids of catalog achievements whose
// conditions the given metrics now satisfy and which are not yet
// earned. It does not unlock anything and does not persist.
func (e *Engine) CheckMilestone(metrics health.Metrics) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var matched []string
	for _, a := range AllAchievements {
		if _, ok := e.earned[a.ID]; ok {
			continue
		}
		if conditionMet(a.Condition, metrics) {
			matched = append(matched, a.ID)
		}
	}
	return matched
}

func conditionMet(c Condition, m health.Metrics) bool {
	var value int
	switch c.Kind {
	case KindSteps:
		value = m.Steps
	case KindStreak:
		value = m.Streak
	case KindChallenge:
		value = m.ChallengesCompleted
	case KindEvolution:
		value = m.EvolutionStage
	default:
		return false
	}

	switch c.Compare {
	case CompareExact:
		return value == c.Threshold
	case CompareAtLeast, CompareConsecutiveDays:
		return value >= c.Threshold
	default:
		return false
	}
}

// Unlock marks the achievement earned, grants its cosmetic rewards,
// and queues a notification. Unlocking an already-earned achievement
// is a no-op; the returned flag is true only on a fresh unlock.
func (e *Engine) Unlock(id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	def := ByID(id)
	if def == nil {
		return false, fmt.Errorf("unknown achievement %q", id)
	}
	if _, ok := e.earned[id]; ok {
		return false, nil
	}

	now := time.Now()
	e.earned[id] = now
	e.logger.Info("achievement unlocked",
		zap.String("id", id),
		zap.String("rarity", string(def.Rarity)))

	for _, cosmeticID := range def.CosmeticRewards {
		if err := e.granter.Grant(cosmeticID, id); err != nil {
			e.logger.Warn("cosmetic reward not granted",
				zap.String("cosmetic", cosmeticID),
				zap.String("achievement", id),
				zap.Error(err))
			continue
		}
		e.queue.Enqueue(notify.Event{
			Kind:  notify.KindCosmeticUnlocked,
			Title: "New cosmetic!",
			Body:  fmt.Sprintf("Unlocked by %s", def.Name),
			Payload: notify.CosmeticPayload{
				CosmeticID:        cosmeticID,
				SourceAchievement: id,
			},
		})
	}

	e.queue.Enqueue(notify.Event{
		Kind:  notify.KindAchievementUnlocked,
		Title: fmt.Sprintf("%s %s", def.Icon, def.Name),
		Body:  def.Description,
		Payload: notify.AchievementPayload{
			AchievementID: id,
			Name:          def.Name,
			Rarity:        string(def.Rarity),
		},
	})

	if err := e.persistLocked(); err != nil {
		return true, err
	}
	return true, nil
}

// Earned reports whether id has been unlocked.
func (e *Engine) Earned(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.earned[id]
	return ok
}

// EarnedCount returns the number of unlocked achievements.
func (e *Engine) EarnedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.earned)
}

// ProgressFor computes progress toward an achievement from the given
// metrics. Earned achievements always report full progress.
func (e *Engine) ProgressFor(id string, metrics health.Metrics) (Progress, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	def := ByID(id)
	if def == nil {
		return Progress{}, fmt.Errorf("unknown achievement %q", id)
	}

	target := def.Condition.Threshold
	if target <= 0 {
		target = 1
	}
	if _, ok := e.earned[id]; ok {
		return Progress{Current: target, Target: target, Percentage: 100}, nil
	}

	var current int
	switch def.Condition.Kind {
	case KindSteps:
		current = metrics.Steps
	case KindStreak:
		current = metrics.Streak
	case KindChallenge:
		current = metrics.ChallengesCompleted
	case KindEvolution:
		current = metrics.EvolutionStage
	}
	if current < 0 {
		current = 0
	}
	if current > target {
		current = target
	}
	return Progress{
		Current:    current,
		Target:     target,
		Percentage: 100 * float64(current) / float64(target),
	}, nil
}

// Statistics returns an aggregate view of unlock state.
func (e *Engine) Statistics() Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statisticsLocked()
}

func (e *Engine) statisticsLocked() Statistics {
	stats := Statistics{
		TotalEarned:    len(e.earned),
		TotalAvailable: len(AllAchievements),
		BonusPoints:    e.bonusPoints,
	}
	if stats.TotalAvailable > 0 {
		stats.CompletionPercentage = 100 * float64(stats.TotalEarned) / float64(stats.TotalAvailable)
	}

	earned := e.earnedListLocked()
	if len(earned) == 0 {
		return stats
	}

	rarest := earned[0]
	for _, a := range earned[1:] {
		if a.Rarity.Rank() > rarest.Rarity.Rank() {
			rarest = a
			continue
		}
		if a.Rarity.Rank() == rarest.Rarity.Rank() && a.UnlockedAt.Before(*rarest.UnlockedAt) {
			rarest = a
		}
	}
	stats.RarestBadge = &rarest

	sort.Slice(earned, func(i, j int) bool {
		return earned[i].UnlockedAt.After(*earned[j].UnlockedAt)
	})
	stats.RecentUnlocks = lo.Slice(earned, 0, recentUnlockLimit)
	return stats
}

// AddBonusPoints credits challenge bonus points and persists.
func (e *Engine) AddBonusPoints(points int) error {
	if points <= 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bonusPoints += points
	return e.persistLocked()
}

// List returns catalog achievements matching the filter, with
// unlock metadata filled in for earned ones. Results keep catalog
// order. A status other than "earned", "locked", or empty is rejected
// with ErrInvalidFilter.
func (e *Engine) List(f Filter) ([]Achievement, error) {
	switch f.Status {
	case "", "earned", "locked":
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, f.Status)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Achievement
	for _, a := range AllAchievements {
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.Rarity != "" && a.Rarity != f.Rarity {
			continue
		}
		when, earned := e.earned[a.ID]
		switch f.Status {
		case "earned":
			if !earned {
				continue
			}
		case "locked":
			if earned {
				continue
			}
		}
		if earned {
			ts := when
			a.UnlockedAt = &ts
		}
		out = append(out, a)
	}
	return out, nil
}

func (e *Engine) earnedListLocked() []Achievement {
	var out []Achievement
	for _, a := range AllAchievements {
		if when, ok := e.earned[a.ID]; ok {
			ts := when
			a.UnlockedAt = &ts
			out = append(out, a)
		}
	}
	return out
}

func (e *Engine) persistLocked() error {
	rec := achievementRecord{
		Statistics:  e.statisticsLocked(),
		BonusPoints: e.bonusPoints,
		LastUpdated: time.Now(),
	}
	for id, when := range e.earned {
		rec.Achievements = append(rec.Achievements, earnedEntry{ID: id, UnlockedAt: when})
	}
	sort.Slice(rec.Achievements, func(i, j int) bool {
		return rec.Achievements[i].ID < rec.Achievements[j].ID
	})
	return e.store.Save(RecordKey, rec)
}
