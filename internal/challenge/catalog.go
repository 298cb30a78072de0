package challenge

import "time"

// ObjectiveKind names the metric a challenge tracks over its week.
type ObjectiveKind string

const (
	ObjectiveSteps    ObjectiveKind = "steps"
	ObjectiveSleep    ObjectiveKind = "sleep"
	ObjectiveHRV      ObjectiveKind = "hrv"
	ObjectiveStreak   ObjectiveKind = "streak"
	ObjectiveCombined ObjectiveKind = "combined"
)

// Difficulty buckets templates for the weekly mix.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Reward is what completing a challenge pays out. Any field may be
// zero-valued.
type Reward struct {
	AchievementID string `json:"achievementId,omitempty"`
	CosmeticID    string `json:"cosmeticId,omitempty"`
	BonusPoints   int    `json:"bonusPoints,omitempty"`
}

// Template is a weekly challenge blueprint. Targets marked adaptive
// are scaled from the player's recent history at generation time.
type Template struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Kind        ObjectiveKind
	Unit        string
	BaseTarget  int
	// AdaptFactor scales the recent average into the target. Zero
	// means the base target is used as-is.
	AdaptFactor float64
	Difficulty  Difficulty
	Reward      Reward
}

// Challenge is a live weekly challenge instance. Contributions maps
// observation days to the metric value applied for that day, so a
// re-delivered reading replaces rather than double-counts.
type Challenge struct {
	ID            string         `json:"id"`
	TemplateID    string         `json:"templateId"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Icon          string         `json:"icon"`
	Kind          ObjectiveKind  `json:"kind"`
	Unit          string         `json:"unit"`
	Target        int            `json:"target"`
	Progress      int            `json:"progress"`
	Contributions map[string]int `json:"contributions,omitempty"`
	Reward        Reward         `json:"reward"`
	WeekStart     time.Time      `json:"weekStart"`
	WeekEnd       time.Time      `json:"weekEnd"`
	Completed     bool           `json:"completed"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
}

// WeeklyTemplates holds every weekly challenge blueprint.
var WeeklyTemplates = []Template{
	// Step volume
	{ID: "weekly_step_stacker", Name: "Step Stacker", Description: "Walk more than your recent weekly total", Icon: "👟", Kind: ObjectiveSteps, Unit: "steps", BaseTarget: 50000, AdaptFactor: 7.7, Difficulty: DifficultyMedium, Reward: Reward{BonusPoints: 100}},
	{ID: "weekly_step_surge", Name: "Step Surge", Description: "Push well past your usual weekly steps", Icon: "🚀", Kind: ObjectiveSteps, Unit: "steps", BaseTarget: 70000, AdaptFactor: 8.4, Difficulty: DifficultyHard, Reward: Reward{BonusPoints: 200}},
	{ID: "weekly_daily_mover", Name: "Daily Mover", Description: "Hit your step goal on 5 days this week", Icon: "📅", Kind: ObjectiveStreak, Unit: "days", BaseTarget: 5, Difficulty: DifficultyEasy, Reward: Reward{BonusPoints: 75}},

	// Sleep
	{ID: "weekly_well_rested", Name: "Well Rested", Description: "Bank 49 hours of sleep this week", Icon: "😴", Kind: ObjectiveSleep, Unit: "minutes", BaseTarget: 2940, Difficulty: DifficultyMedium, Reward: Reward{BonusPoints: 100}},
	{ID: "weekly_sleep_upgrade", Name: "Sleep Upgrade", Description: "Sleep more than your recent nightly average, every night", Icon: "🌙", Kind: ObjectiveSleep, Unit: "minutes", BaseTarget: 2800, AdaptFactor: 7.35, Difficulty: DifficultyHard, Reward: Reward{BonusPoints: 150}},

	// Recovery
	{ID: "weekly_calm_mind", Name: "Calm Mind", Description: "Keep your recovery trending upward", Icon: "🧘", Kind: ObjectiveHRV, Unit: "points", BaseTarget: 350, AdaptFactor: 7.2, Difficulty: DifficultyMedium, Reward: Reward{BonusPoints: 125}},

	// Consistency
	{ID: "weekly_perfect_week", Name: "Perfect Week", Description: "Meet your step goal all 7 days", Icon: "⭐", Kind: ObjectiveStreak, Unit: "days", BaseTarget: 7, Difficulty: DifficultyHard, Reward: Reward{CosmeticID: "acc_lantern", BonusPoints: 250}},

	// Combined
	{ID: "weekly_balanced_week", Name: "Balanced Week", Description: "Score on steps, sleep, and recovery together", Icon: "⚖️", Kind: ObjectiveCombined, Unit: "points", BaseTarget: 100, Difficulty: DifficultyMedium, Reward: Reward{BonusPoints: 150}},
	{ID: "weekly_triple_crown", Name: "Triple Crown", Description: "Excel across every metric this week", Icon: "👑", Kind: ObjectiveCombined, Unit: "points", BaseTarget: 150, Difficulty: DifficultyHard, Reward: Reward{BonusPoints: 300}},
}

// TemplateByID returns the blueprint for id, or nil when unknown.
func TemplateByID(id string) *Template {
	for i := range WeeklyTemplates {
		if WeeklyTemplates[i].ID == id {
			return &WeeklyTemplates[i]
		}
	}
	return nil
}

// WeeklySeed derives the generation seed for the week containing t, so
// regenerating within the same ISO week always yields the same set.
func WeeklySeed(t time.Time) int64 {
	year, week := t.ISOWeek()
	return int64(year*100 + week)
}

// WeekStart returns the Monday midnight of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// TimeRemaining returns how long until the week containing t rolls
// over to the next challenge set.
func TimeRemaining(t time.Time) time.Duration {
	return WeekStart(t).AddDate(0, 0, 7).Sub(t)
}
