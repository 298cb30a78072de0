package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind tags the event carried by a queue entry.
type Kind string

const (
	KindAchievementUnlocked Kind = "achievement_unlocked"
	KindStreakMilestone     Kind = "streak_milestone"
	KindCosmeticUnlocked    Kind = "cosmetic_unlocked"
)

// AchievementPayload describes an achievement unlock event.
type AchievementPayload struct {
	AchievementID string `json:"achievementId"`
	Name          string `json:"name"`
	Rarity        string `json:"rarity"`
}

// StreakPayload describes a streak milestone event.
type StreakPayload struct {
	Days          int    `json:"days"`
	AchievementID string `json:"achievementId"`
}

// CosmeticPayload describes a cosmetic grant event.
type CosmeticPayload struct {
	CosmeticID        string `json:"cosmeticId"`
	SourceAchievement string `json:"sourceAchievement"`
}

// Event is one pending reward notification.
type Event struct {
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Payload    any       `json:"payload"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	Suppressed bool      `json:"suppressed"`
}

// Queue delivers reward events to the presentation layer strictly in enqueue
// order. When disabled, events are still recorded (tagged suppressed) but
// never surface through Dequeue.
type Queue struct {
	mu      sync.Mutex
	events  []Event
	enabled bool
	logger  *zap.Logger
}

// NewQueue creates a queue. enabled reflects the user's notification
// preference; it can be toggled later with SetEnabled.
func NewQueue(enabled bool, logger *zap.Logger) *Queue {
	return &Queue{enabled: enabled, logger: logger}
}

// SetEnabled toggles whether newly enqueued events surface. Already-queued
// events keep the tag they were recorded with.
func (q *Queue) SetEnabled(enabled bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enabled = enabled
}

// Enabled reports the current preference.
func (q *Queue) Enabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enabled
}

// Enqueue appends an event. The underlying state change has already happened
// by the time this is called; disabling notifications only hides the event.
func (q *Queue) Enqueue(event Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	event.EnqueuedAt = time.Now()
	event.Suppressed = !q.enabled
	q.events = append(q.events, event)

	if event.Suppressed {
		q.logger.Debug("notification suppressed", zap.String("kind", string(event.Kind)))
	}
}

// Dequeue returns the oldest visible event, or false when none is pending.
// Suppressed events are skipped permanently.
func (q *Queue) Dequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.events) > 0 {
		event := q.events[0]
		q.events = q.events[1:]
		if !event.Suppressed {
			return event, true
		}
	}
	return Event{}, false
}

// Pending counts visible events waiting for delivery.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, e := range q.events {
		if !e.Suppressed {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of every visible event without removing
// anything.
func (q *Queue) Snapshot() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	var visible []Event
	for _, e := range q.events {
		if !e.Suppressed {
			visible = append(visible, e)
		}
	}
	return visible
}

// Drain returns and removes every visible event, preserving order.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	var visible []Event
	for _, e := range q.events {
		if !e.Suppressed {
			visible = append(visible, e)
		}
	}
	q.events = nil
	return visible
}
