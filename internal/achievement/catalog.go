package achievement

import "time"

// Category groups achievements for filtering and display.
type Category string

const (
	CategoryHealthMilestone     Category = "health_milestone"
	CategoryStreakReward        Category = "streak_reward"
	CategoryChallengeCompletion Category = "challenge_completion"
	CategoryExploration         Category = "exploration"
	CategorySpecialEvent        Category = "special_event"
)

// Rarity orders achievements from common to legendary.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// rarityRank is used for "rarest badge" selection and display priority.
var rarityRank = map[Rarity]int{
	RarityCommon:    0,
	RarityRare:      1,
	RarityEpic:      2,
	RarityLegendary: 3,
}

// Rank returns the ordering position of r (common lowest).
func (r Rarity) Rank() int {
	return rarityRank[r]
}

// ConditionKind names the metric an unlock condition evaluates.
type ConditionKind string

const (
	KindSteps     ConditionKind = "steps"
	KindStreak    ConditionKind = "streak"
	KindChallenge ConditionKind = "challenge"
	KindEvolution ConditionKind = "evolution"
	// KindCustom achievements are never matched by CheckMilestone; they are
	// unlocked explicitly by whoever owns the triggering event.
	KindCustom ConditionKind = "custom"
)

// Comparison is how a metric value is tested against the threshold.
type Comparison string

const (
	CompareAtLeast         Comparison = "at_least"
	CompareExact           Comparison = "exact"
	CompareConsecutiveDays Comparison = "consecutive_days"
)

// Condition is an achievement's unlock rule.
type Condition struct {
	Kind      ConditionKind `json:"kind"`
	Threshold int           `json:"threshold"`
	Compare   Comparison    `json:"compare"`
}

// Progress is a snapshot of how close an achievement is to unlocking.
type Progress struct {
	Current    int     `json:"current"`
	Target     int     `json:"target"`
	Percentage float64 `json:"percentage"`
}

// Achievement is a catalog definition plus, once earned, its unlock
// metadata. UnlockedAt is set if and only if the achievement is earned.
type Achievement struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Icon            string     `json:"icon"`
	Category        Category   `json:"category"`
	Rarity          Rarity     `json:"rarity"`
	Condition       Condition  `json:"condition"`
	CosmeticRewards []string   `json:"cosmeticRewards,omitempty"`
	UnlockedAt      *time.Time `json:"unlockedAt,omitempty"`
	Progress        *Progress  `json:"progress,omitempty"`
}

// Earned reports whether the achievement has been unlocked.
func (a Achievement) Earned() bool {
	return a.UnlockedAt != nil
}

// AllAchievements is the static achievement catalog.
var AllAchievements = []Achievement{
	// ====== HEALTH MILESTONES ======
	{ID: "first_steps", Name: "First Steps", Description: "Record your first day of steps", Icon: "👣", Category: CategoryHealthMilestone, Rarity: RarityCommon, Condition: Condition{Kind: KindSteps, Threshold: 1, Compare: CompareAtLeast}, CosmeticRewards: []string{"hat_leaf", "bg_meadow"}},
	{ID: "steps_10k", Name: "Ten Thousand", Description: "Walk 10,000 steps in a day", Icon: "🚶", Category: CategoryHealthMilestone, Rarity: RarityCommon, Condition: Condition{Kind: KindSteps, Threshold: 10000, Compare: CompareAtLeast}, CosmeticRewards: []string{"theme_forest"}},
	{ID: "steps_15k", Name: "Trailblazer", Description: "Walk 15,000 steps in a day", Icon: "🥾", Category: CategoryHealthMilestone, Rarity: RarityRare, Condition: Condition{Kind: KindSteps, Threshold: 15000, Compare: CompareAtLeast}, CosmeticRewards: []string{"acc_medal"}},
	{ID: "steps_20k", Name: "Summit", Description: "Walk 20,000 steps in a day", Icon: "⛰️", Category: CategoryHealthMilestone, Rarity: RarityEpic, Condition: Condition{Kind: KindSteps, Threshold: 20000, Compare: CompareAtLeast}, CosmeticRewards: []string{"hat_crown"}},

	// ====== STREAK REWARDS ======
	{ID: "streak_7", Name: "One Week Strong", Description: "Meet your goal 7 days in a row", Icon: "🔥", Category: CategoryStreakReward, Rarity: RarityCommon, Condition: Condition{Kind: KindStreak, Threshold: 7, Compare: CompareConsecutiveDays}, CosmeticRewards: []string{"color_sunrise"}},
	{ID: "streak_14", Name: "Fortnight", Description: "Meet your goal 14 days in a row", Icon: "💪", Category: CategoryStreakReward, Rarity: RarityRare, Condition: Condition{Kind: KindStreak, Threshold: 14, Compare: CompareConsecutiveDays}, CosmeticRewards: []string{"bg_night_sky"}},
	{ID: "streak_30", Name: "Monthly Devotion", Description: "Meet your goal 30 days in a row", Icon: "🏆", Category: CategoryStreakReward, Rarity: RarityRare, Condition: Condition{Kind: KindStreak, Threshold: 30, Compare: CompareConsecutiveDays}, CosmeticRewards: []string{"color_twilight"}},
	{ID: "streak_60", Name: "Unstoppable", Description: "Meet your goal 60 days in a row", Icon: "⚡", Category: CategoryStreakReward, Rarity: RarityEpic, Condition: Condition{Kind: KindStreak, Threshold: 60, Compare: CompareConsecutiveDays}, CosmeticRewards: []string{"color_gold"}},
	{ID: "streak_90", Name: "Season of Care", Description: "Meet your goal 90 days in a row", Icon: "👑", Category: CategoryStreakReward, Rarity: RarityLegendary, Condition: Condition{Kind: KindStreak, Threshold: 90, Compare: CompareConsecutiveDays}, CosmeticRewards: []string{"hat_halo", "bg_aurora"}},

	// ====== CHALLENGE COMPLETION ======
	{ID: "challenge_first", Name: "Challenge Accepted", Description: "Complete your first weekly challenge", Icon: "🎯", Category: CategoryChallengeCompletion, Rarity: RarityCommon, Condition: Condition{Kind: KindChallenge, Threshold: 1, Compare: CompareAtLeast}, CosmeticRewards: []string{"acc_scarf"}},
	{ID: "challenge_5", Name: "Challenger", Description: "Complete 5 weekly challenges", Icon: "🎖️", Category: CategoryChallengeCompletion, Rarity: RarityRare, Condition: Condition{Kind: KindChallenge, Threshold: 5, Compare: CompareAtLeast}},
	{ID: "challenge_20", Name: "Relentless", Description: "Complete 20 weekly challenges", Icon: "🌟", Category: CategoryChallengeCompletion, Rarity: RarityEpic, Condition: Condition{Kind: KindChallenge, Threshold: 20, Compare: CompareAtLeast}},
	{ID: "challenge_clean_sweep", Name: "Clean Sweep", Description: "Complete every challenge in a single week", Icon: "🧹", Category: CategoryChallengeCompletion, Rarity: RarityEpic, Condition: Condition{Kind: KindCustom}, CosmeticRewards: []string{"theme_ocean"}},

	// ====== EXPLORATION (companion evolution) ======
	{ID: "evolution_sprite", Name: "New Form", Description: "Your companion became a sprite", Icon: "🧚", Category: CategoryExploration, Rarity: RarityRare, Condition: Condition{Kind: KindEvolution, Threshold: 2, Compare: CompareAtLeast}},
	{ID: "evolution_guardian", Name: "Guardian", Description: "Your companion became a guardian", Icon: "🛡️", Category: CategoryExploration, Rarity: RarityEpic, Condition: Condition{Kind: KindEvolution, Threshold: 3, Compare: CompareAtLeast}, CosmeticRewards: []string{"acc_wings"}},
	{ID: "evolution_elder", Name: "Elder", Description: "Your companion reached its final form", Icon: "🌳", Category: CategoryExploration, Rarity: RarityLegendary, Condition: Condition{Kind: KindEvolution, Threshold: 4, Compare: CompareAtLeast}},

	// ====== SPECIAL EVENTS ======
	{ID: "special_comeback", Name: "Comeback", Description: "Start a new streak after losing one of 14+ days", Icon: "🌅", Category: CategorySpecialEvent, Rarity: RarityRare, Condition: Condition{Kind: KindCustom}},
}

// ByID returns the catalog definition for id, or nil when unknown.
func ByID(id string) *Achievement {
	for i := range AllAchievements {
		if AllAchievements[i].ID == id {
			return &AllAchievements[i]
		}
	}
	return nil
}
