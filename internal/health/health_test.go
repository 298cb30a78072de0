package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetweenAcrossDST(t *testing.T) {
	location, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "spring forward is still one day",
			from: time.Date(2024, 3, 10, 12, 0, 0, 0, location),
			to:   time.Date(2024, 3, 11, 12, 0, 0, 0, location),
			want: 1,
		},
		{
			name: "fall back is still one day",
			from: time.Date(2024, 11, 3, 12, 0, 0, 0, location),
			to:   time.Date(2024, 11, 4, 12, 0, 0, 0, location),
			want: 1,
		},
		{
			name: "same day",
			from: time.Date(2024, 6, 15, 1, 0, 0, 0, location),
			to:   time.Date(2024, 6, 15, 23, 0, 0, 0, location),
			want: 0,
		},
		{
			name: "across new year",
			from: time.Date(2023, 12, 31, 23, 59, 59, 0, location),
			to:   time.Date(2024, 1, 1, 0, 0, 1, 0, location),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.from, tt.to))
		})
	}
}

func TestWindowAverages(t *testing.T) {
	window := []DayRecord{
		{Steps: 8000, SleepMinutes: 420, HRV: 50},
		{Steps: 10000, SleepMinutes: 480, HRV: 60},
		{Steps: 6000, SleepMinutes: 390, HRV: 40},
	}

	assert.Equal(t, 8000, AverageSteps(window))
	assert.Equal(t, 430, AverageSleepMinutes(window))
	assert.InDelta(t, 50.0, AverageHRV(window), 0.001)
}

func TestWindowAveragesEmpty(t *testing.T) {
	assert.Equal(t, 0, AverageSteps(nil))
	assert.Equal(t, 0, AverageSleepMinutes(nil))
	assert.Equal(t, 0.0, AverageHRV(nil))
}
