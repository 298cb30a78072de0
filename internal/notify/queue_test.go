package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFIFOOrder(t *testing.T) {
	q := NewQueue(true, zap.NewNop())

	for i := 0; i < 5; i++ {
		q.Enqueue(Event{Kind: KindAchievementUnlocked, Title: fmt.Sprintf("event %d", i)})
	}

	assert.Equal(t, 5, q.Pending())
	for i := 0; i < 5; i++ {
		event, ok := q.Dequeue()
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("event %d", i), event.Title)
	}

	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestSuppressionHidesButRecords(t *testing.T) {
	q := NewQueue(false, zap.NewNop())

	q.Enqueue(Event{Kind: KindStreakMilestone, Title: "7 days"})

	assert.Equal(t, 0, q.Pending())
	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestToggleAffectsOnlyNewEvents(t *testing.T) {
	q := NewQueue(false, zap.NewNop())

	q.Enqueue(Event{Kind: KindCosmeticUnlocked, Title: "hidden"})
	q.SetEnabled(true)
	q.Enqueue(Event{Kind: KindCosmeticUnlocked, Title: "visible"})

	assert.Equal(t, 1, q.Pending())
	event, ok := q.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, "visible", event.Title)
}

func TestDrainPreservesOrder(t *testing.T) {
	q := NewQueue(true, zap.NewNop())
	q.Enqueue(Event{Title: "a"})
	q.Enqueue(Event{Title: "b"})

	events := q.Drain()
	assert.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Title)
	assert.Equal(t, "b", events[1].Title)
	assert.Equal(t, 0, q.Pending())
}
