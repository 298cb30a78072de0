package cosmetic

import "time"

// Category is the slot a cosmetic occupies. Each slot holds at most one
// equipped item at a time.
type Category string

const (
	CategoryBackground Category = "background"
	CategoryTheme      Category = "theme"
	CategoryColor      Category = "color"
	CategoryAccessory  Category = "accessory"
	CategoryHat        Category = "hat"
)

// categoryOrder is the declaration order used to break layer-index ties.
var categoryOrder = map[Category]int{
	CategoryBackground: 0,
	CategoryTheme:      1,
	CategoryColor:      2,
	CategoryAccessory:  3,
	CategoryHat:        4,
}

// Rarity classifies how hard a cosmetic is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// RenderDescriptor tells the renderer where a cosmetic sits on the
// companion. Lower layers draw first.
type RenderDescriptor struct {
	Layer         int    `json:"layer"`
	OffsetX       int    `json:"offsetX"`
	OffsetY       int    `json:"offsetY"`
	ColorOverride string `json:"colorOverride,omitempty"`
}

// Cosmetic is one unlockable item. Catalog entries are static; UnlockedAt
// and SourceAchievement are stamped when an item enters an inventory.
type Cosmetic struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Icon              string           `json:"icon"`
	Category          Category         `json:"category"`
	Rarity            Rarity           `json:"rarity"`
	Render            RenderDescriptor `json:"render"`
	UnlockCondition   string           `json:"unlockCondition,omitempty"`
	UnlockedAt        *time.Time       `json:"unlockedAt,omitempty"`
	SourceAchievement string           `json:"sourceAchievement,omitempty"`
}

// Layer indices per category band. Within a band, individual items may vary.
const (
	layerBackground = 0
	layerTheme      = 5
	layerColor      = 10
	layerAccessory  = 20
	layerHat        = 30
)

// AllCosmetics is the static cosmetic catalog.
var AllCosmetics = []Cosmetic{
	// Backgrounds
	{ID: "bg_meadow", Name: "Meadow", Description: "A sunny meadow backdrop", Icon: "🌼", Category: CategoryBackground, Rarity: RarityCommon, Render: RenderDescriptor{Layer: layerBackground}, UnlockCondition: "first_steps"},
	{ID: "bg_night_sky", Name: "Night Sky", Description: "Stars over the burrow", Icon: "🌌", Category: CategoryBackground, Rarity: RarityRare, Render: RenderDescriptor{Layer: layerBackground}, UnlockCondition: "streak_14"},
	{ID: "bg_aurora", Name: "Aurora", Description: "Northern lights", Icon: "🌠", Category: CategoryBackground, Rarity: RarityLegendary, Render: RenderDescriptor{Layer: layerBackground}, UnlockCondition: "streak_90"},

	// Themes
	{ID: "theme_forest", Name: "Forest Theme", Description: "Mossy UI accents", Icon: "🌲", Category: CategoryTheme, Rarity: RarityCommon, Render: RenderDescriptor{Layer: layerTheme}, UnlockCondition: "steps_10k"},
	{ID: "theme_ocean", Name: "Ocean Theme", Description: "Deep blue UI accents", Icon: "🌊", Category: CategoryTheme, Rarity: RarityEpic, Render: RenderDescriptor{Layer: layerTheme}, UnlockCondition: "challenge_clean_sweep"},

	// Colors
	{ID: "color_sunrise", Name: "Sunrise Coat", Description: "Warm orange coat", Icon: "🧡", Category: CategoryColor, Rarity: RarityCommon, Render: RenderDescriptor{Layer: layerColor, ColorOverride: "#ff9a56"}, UnlockCondition: "streak_7"},
	{ID: "color_twilight", Name: "Twilight Coat", Description: "Violet shimmer coat", Icon: "💜", Category: CategoryColor, Rarity: RarityRare, Render: RenderDescriptor{Layer: layerColor, ColorOverride: "#8d6fd1"}, UnlockCondition: "streak_30"},
	{ID: "color_gold", Name: "Golden Coat", Description: "For the truly dedicated", Icon: "✨", Category: CategoryColor, Rarity: RarityLegendary, Render: RenderDescriptor{Layer: layerColor, ColorOverride: "#e8c04a"}, UnlockCondition: "streak_60"},

	// Accessories
	{ID: "acc_scarf", Name: "Cozy Scarf", Description: "A knitted scarf", Icon: "🧣", Category: CategoryAccessory, Rarity: RarityCommon, Render: RenderDescriptor{Layer: layerAccessory, OffsetY: 4}, UnlockCondition: "challenge_first"},
	{ID: "acc_medal", Name: "Step Medal", Description: "Earned on the trail", Icon: "🏅", Category: CategoryAccessory, Rarity: RarityRare, Render: RenderDescriptor{Layer: layerAccessory, OffsetY: 6}, UnlockCondition: "steps_15k"},
	{ID: "acc_wings", Name: "Glimmer Wings", Description: "Faint glowing wings", Icon: "🪽", Category: CategoryAccessory, Rarity: RarityEpic, Render: RenderDescriptor{Layer: layerAccessory, OffsetX: -2}, UnlockCondition: "evolution_guardian"},
	{ID: "acc_lantern", Name: "Firefly Lantern", Description: "Lights the way after a flawless week", Icon: "🏮", Category: CategoryAccessory, Rarity: RarityRare, Render: RenderDescriptor{Layer: layerAccessory, OffsetX: 3}, UnlockCondition: "weekly_perfect_week"},

	// Hats
	{ID: "hat_leaf", Name: "Leaf Cap", Description: "A single leaf, worn proudly", Icon: "🍃", Category: CategoryHat, Rarity: RarityCommon, Render: RenderDescriptor{Layer: layerHat, OffsetY: -8}, UnlockCondition: "first_steps"},
	{ID: "hat_crown", Name: "Tiny Crown", Description: "Royalty of the step count", Icon: "👑", Category: CategoryHat, Rarity: RarityEpic, Render: RenderDescriptor{Layer: layerHat, OffsetY: -10}, UnlockCondition: "steps_20k"},
	{ID: "hat_halo", Name: "Halo", Description: "Ninety days of showing up", Icon: "😇", Category: CategoryHat, Rarity: RarityLegendary, Render: RenderDescriptor{Layer: layerHat, OffsetY: -12}, UnlockCondition: "streak_90"},
}

// ByID returns the catalog entry for id, or nil when unknown.
func ByID(id string) *Cosmetic {
	for i := range AllCosmetics {
		if AllCosmetics[i].ID == id {
			return &AllCosmetics[i]
		}
	}
	return nil
}

// ValidCategory reports whether c is one of the known slots.
func ValidCategory(c Category) bool {
	_, ok := categoryOrder[c]
	return ok
}
