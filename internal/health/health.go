package health

import "time"

// Observation is one day's worth of health readings as delivered by the
// platform health integration.
type Observation struct {
	Date         time.Time `json:"date"`
	Steps        int       `json:"steps"`
	SleepMinutes int       `json:"sleepMinutes"`
	HRV          float64   `json:"hrv"`
}

// DayRecord is one entry of the recent-history window handed to the engine
// by the host application.
type DayRecord struct {
	Date         time.Time `json:"date"`
	Steps        int       `json:"steps"`
	SleepMinutes int       `json:"sleepMinutes"`
	HRV          float64   `json:"hrv"`
	GoalMet      bool      `json:"goalMet"`
}

// Metrics is the snapshot achievement conditions are evaluated against.
type Metrics struct {
	Steps               int
	SleepMinutes        int
	HRV                 float64
	Streak              int
	ChallengesCompleted int
	EvolutionStage      int
}

// Day normalizes a timestamp to midnight in its own location. All streak and
// challenge bookkeeping works on these day values.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from one timestamp's day to another's.
// Walking day by day keeps the count correct across DST transitions, where
// dividing elapsed hours by 24 does not.
func DaysBetween(from, to time.Time) int {
	fromDay := Day(from)
	toDay := Day(to)

	days := 0
	for d := fromDay; d.Before(toDay); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// AverageSteps returns the mean daily step count across the window, or 0 for
// an empty window.
func AverageSteps(window []DayRecord) int {
	if len(window) == 0 {
		return 0
	}
	total := 0
	for _, r := range window {
		total += r.Steps
	}
	return total / len(window)
}

// AverageSleepMinutes returns the mean nightly sleep across the window.
func AverageSleepMinutes(window []DayRecord) int {
	if len(window) == 0 {
		return 0
	}
	total := 0
	for _, r := range window {
		total += r.SleepMinutes
	}
	return total / len(window)
}

// AverageHRV returns the mean HRV across the window.
func AverageHRV(window []DayRecord) float64 {
	if len(window) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range window {
		total += r.HRV
	}
	return total / float64(len(window))
}
