package streak

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wispapp/wisp/internal/achievement"
	"github.com/wispapp/wisp/internal/health"
	"github.com/wispapp/wisp/internal/notify"
	"github.com/wispapp/wisp/internal/storage"
)

// RecordKey is the storage key for streak state.
const RecordKey = "streak"

// Milestones is the streak milestone ladder, ascending.
var Milestones = []int{7, 14, 30, 60, 90}

// comebackRun is the lost-streak length that qualifies for the
// comeback achievement when a new run starts.
const comebackRun = 14

// DayEntry is one day of streak history.
type DayEntry struct {
	Date    time.Time `json:"date"`
	GoalMet bool      `json:"goalMet"`
	Streak  int       `json:"streak"`
}

// State is the persisted streak snapshot.
type State struct {
	Current       int          `json:"current"`
	Longest       int          `json:"longest"`
	LastDate      time.Time    `json:"lastDate"`
	LastLostRun   int          `json:"lastLostRun"`
	MilestonesHit map[int]bool `json:"milestonesHit"`
	History       []DayEntry   `json:"history"`
}

type streakRecord struct {
	State       State     `json:"state"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Engine maintains the consecutive-goal-day counter and fires
// milestone rewards through the achievement engine.
type Engine struct {
	store        *storage.Store
	achievements *achievement.Engine
	queue        *notify.Queue
	logger       *zap.Logger

	mu    sync.Mutex
	state State
}

// NewEngine loads persisted streak state. A corrupt record triggers
// recovery rather than an error.
func NewEngine(store *storage.Store, achievements *achievement.Engine, queue *notify.Queue, logger *zap.Logger) *Engine {
	e := &Engine{
		store:        store,
		achievements: achievements,
		queue:        queue,
		logger:       logger,
		state:        emptyState(),
	}

	var rec streakRecord
	found, err := store.Load(RecordKey, &rec)
	if err != nil {
		logger.Warn("streak record unreadable, recovering", zap.Error(err))
		e.state = recoverState(rec.State, logger)
		return e
	}
	if !found {
		return e
	}

	if s, ok := validateState(rec.State); ok {
		e.state = s
	} else {
		logger.Warn("streak record inconsistent, recovering")
		e.state = recoverState(rec.State, logger)
	}
	return e
}

func emptyState() State {
	return State{MilestonesHit: make(map[int]bool)}
}

// RecordDailyProgress folds one day's goal outcome into the streak.
// Calling it twice for the same day is a no-op, and a date earlier
// than the latest recorded day only corrects history without touching
// the counters.
func (e *Engine) RecordDailyProgress(date time.Time, met bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	day := health.Day(date)

	if !e.state.LastDate.IsZero() {
		last := health.Day(e.state.LastDate)
		if day.Equal(last) {
			return nil
		}
		if day.Before(last) {
			e.amendHistoryLocked(day, met)
			return e.persistLocked()
		}
	}

	switch {
	case !met:
		if e.state.Current >= comebackRun {
			e.state.LastLostRun = e.state.Current
		}
		e.state.Current = 0
		e.state.MilestonesHit = make(map[int]bool)
	case e.state.LastDate.IsZero() || health.DaysBetween(e.state.LastDate, day) == 1:
		e.extendLocked()
	default:
		// At least one day was missed before this met day.
		if e.state.Current >= comebackRun {
			e.state.LastLostRun = e.state.Current
		}
		e.state.Current = 0
		e.state.MilestonesHit = make(map[int]bool)
		e.extendLocked()
	}

	e.state.LastDate = day
	e.state.History = append(e.state.History, DayEntry{
		Date: day, GoalMet: met, Streak: e.state.Current,
	})

	return e.persistLocked()
}

// extendLocked bumps the counter by one day and fires any milestone it
// lands on exactly.
func (e *Engine) extendLocked() {
	starting := e.state.Current == 0
	e.state.Current++
	if e.state.Current > e.state.Longest {
		e.state.Longest = e.state.Current
	}

	if starting && e.state.LastLostRun >= comebackRun {
		e.state.LastLostRun = 0
		if _, err := e.achievements.Unlock("special_comeback"); err != nil {
			e.logger.Warn("comeback unlock failed", zap.Error(err))
		}
	}

	for _, m := range Milestones {
		if e.state.Current != m || e.state.MilestonesHit[m] {
			continue
		}
		e.state.MilestonesHit[m] = true
		id := fmt.Sprintf("streak_%d", m)
		if _, err := e.achievements.Unlock(id); err != nil {
			e.logger.Warn("milestone unlock failed", zap.String("id", id), zap.Error(err))
		}
		e.queue.Enqueue(notify.Event{
			Kind:  notify.KindStreakMilestone,
			Title: fmt.Sprintf("%d-day streak!", m),
			Body:  fmt.Sprintf("You met your goal %d days in a row", m),
			Payload: notify.StreakPayload{
				Days:          m,
				AchievementID: id,
			},
		})
	}
}

// amendHistoryLocked rewrites the stored outcome for an already-passed
// day. Counters are left alone so the replayed timeline stays the
// source of truth only during recovery.
func (e *Engine) amendHistoryLocked(day time.Time, met bool) {
	for i := range e.state.History {
		if health.Day(e.state.History[i].Date).Equal(day) {
			e.state.History[i].GoalMet = met
			return
		}
	}
	e.state.History = append(e.state.History, DayEntry{Date: day, GoalMet: met})
	sort.Slice(e.state.History, func(i, j int) bool {
		return e.state.History[i].Date.Before(e.state.History[j].Date)
	})
}

// Current returns the live streak length.
func (e *Engine) Current() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Current
}

// Longest returns the best streak ever recorded.
func (e *Engine) Longest() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Longest
}

// Snapshot returns a copy of the full streak state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state)
}

// NextMilestone returns the first milestone above the current streak,
// or 0 when the ladder is exhausted.
func (e *Engine) NextMilestone() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range Milestones {
		if e.state.Current < m {
			return m
		}
	}
	return 0
}

// DaysUntilMilestone returns how many more consecutive goal days reach
// the next milestone, or 0 past the ladder.
func (e *Engine) DaysUntilMilestone() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range Milestones {
		if e.state.Current < m {
			return m - e.state.Current
		}
	}
	return 0
}

// RecoverFromCorruption rebuilds counters from history and persists
// the result. It never fails; an unusable history resets the counters
// to zero while keeping whatever days could be salvaged.
func (e *Engine) RecoverFromCorruption() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = recoverState(e.state, e.logger)
	if err := e.persistLocked(); err != nil {
		e.logger.Warn("recovered streak state not persisted", zap.Error(err))
	}
}

// validateState checks internal consistency of a loaded record.
func validateState(s State) (State, bool) {
	if s.Current < 0 || s.Longest < 0 || s.Current > s.Longest {
		return State{}, false
	}
	if s.Current > 0 && s.LastDate.IsZero() {
		return State{}, false
	}
	for _, d := range s.History {
		if d.Date.IsZero() {
			return State{}, false
		}
	}
	if s.MilestonesHit == nil {
		s.MilestonesHit = make(map[int]bool)
	}
	return s, true
}

// recoverState replays the trailing run of consecutive met days from
// history. Days that cannot be interpreted are dropped.
func recoverState(s State, logger *zap.Logger) State {
	history := make([]DayEntry, 0, len(s.History))
	for _, d := range s.History {
		if d.Date.IsZero() {
			continue
		}
		d.Date = health.Day(d.Date)
		history = append(history, d)
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})

	out := emptyState()
	out.History = history
	if len(history) == 0 {
		logger.Info("streak recovery found no usable history")
		return out
	}

	// Count the trailing contiguous run of met days.
	run := 0
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].GoalMet {
			break
		}
		if run > 0 && health.DaysBetween(history[i].Date, history[i+1].Date) != 1 {
			break
		}
		run++
	}

	longest, cur := 0, 0
	for i, d := range history {
		if !d.GoalMet {
			cur = 0
			history[i].Streak = 0
			continue
		}
		if i > 0 && history[i-1].GoalMet && health.DaysBetween(history[i-1].Date, d.Date) == 1 {
			cur++
		} else {
			cur = 1
		}
		history[i].Streak = cur
		if cur > longest {
			longest = cur
		}
	}

	out.Current = run
	out.Longest = longest
	out.LastDate = history[len(history)-1].Date
	for _, m := range Milestones {
		if run >= m {
			out.MilestonesHit[m] = true
		}
	}
	logger.Info("streak state recovered",
		zap.Int("current", out.Current),
		zap.Int("longest", out.Longest),
		zap.Int("historyDays", len(history)))
	return out
}

func cloneState(s State) State {
	out := s
	out.MilestonesHit = make(map[int]bool, len(s.MilestonesHit))
	for k, v := range s.MilestonesHit {
		out.MilestonesHit[k] = v
	}
	out.History = append([]DayEntry(nil), s.History...)
	return out
}

func (e *Engine) persistLocked() error {
	return e.store.Save(RecordKey, streakRecord{
		State:       e.state,
		LastUpdated: time.Now(),
	})
}
