package cosmetic

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/wispapp/wisp/internal/storage"
)

// RecordKey is the persisted record name for the cosmetic inventory.
const RecordKey = "cosmetics"

// ErrNotOwned is returned when equipping a cosmetic the user has not earned.
var ErrNotOwned = errors.New("cosmetic not owned")

// ErrUnknownCosmetic is returned when an id does not exist in the catalog.
var ErrUnknownCosmetic = errors.New("unknown cosmetic")

// inventoryRecord is the persisted shape of the inventory.
type inventoryRecord struct {
	Inventory   inventoryState `json:"inventory"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

type inventoryState struct {
	Items    []Cosmetic          `json:"items"`
	Equipped map[Category]string `json:"equipped"`
}

// Inventory holds the cosmetics a user owns and what is currently equipped.
// Every mutation writes through to the store before returning.
type Inventory struct {
	store  *storage.Store
	logger *zap.Logger

	mu       sync.Mutex
	items    map[string]Cosmetic
	equipped map[Category]string
}

// NewInventory loads the persisted inventory, starting empty when the record
// is absent or unreadable. Stored items that fail validation are dropped with
// a warning; the rest are kept.
func NewInventory(store *storage.Store, logger *zap.Logger) *Inventory {
	inv := &Inventory{
		store:    store,
		logger:   logger,
		items:    make(map[string]Cosmetic),
		equipped: make(map[Category]string),
	}

	var record inventoryRecord
	found, err := store.Load(RecordKey, &record)
	if err != nil {
		logger.Warn("cosmetic inventory unreadable, starting empty", zap.Error(err))
		return inv
	}
	if !found {
		return inv
	}

	for _, item := range record.Inventory.Items {
		if item.ID == "" || !ValidCategory(item.Category) {
			logger.Warn("dropping invalid stored cosmetic",
				zap.String("id", item.ID), zap.String("category", string(item.Category)))
			continue
		}
		inv.items[item.ID] = item
	}

	// Equipped ids must exist in items; anything else is stale
	for category, id := range record.Inventory.Equipped {
		if _, owned := inv.items[id]; owned && ValidCategory(category) {
			inv.equipped[category] = id
		} else {
			logger.Warn("dropping stale equipped reference",
				zap.String("category", string(category)), zap.String("id", id))
		}
	}

	return inv
}

// Grant adds the catalog cosmetic with the given id, stamping its unlock
// time and source achievement. Granting an already-owned cosmetic is a no-op.
func (inv *Inventory) Grant(cosmeticID, sourceAchievement string) error {
	def := ByID(cosmeticID)
	if def == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCosmetic, cosmeticID)
	}

	item := *def
	now := time.Now()
	item.UnlockedAt = &now
	item.SourceAchievement = sourceAchievement

	return inv.Add(item)
}

// Add inserts the cosmetic if absent; re-adding an owned cosmetic does
// nothing, keeping the original unlock metadata.
func (inv *Inventory) Add(item Cosmetic) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, owned := inv.items[item.ID]; owned {
		return nil
	}

	inv.items[item.ID] = item
	return inv.persistLocked()
}

// Equip puts the cosmetic in its category slot, replacing whatever was
// there. Equipping an unowned id returns ErrNotOwned and changes nothing.
func (inv *Inventory) Equip(id string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	item, owned := inv.items[id]
	if !owned {
		return fmt.Errorf("%w: %s", ErrNotOwned, id)
	}

	inv.equipped[item.Category] = id
	return inv.persistLocked()
}

// Unequip clears the cosmetic's slot if that cosmetic is the one equipped.
func (inv *Inventory) Unequip(id string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	item, owned := inv.items[id]
	if !owned {
		return fmt.Errorf("%w: %s", ErrNotOwned, id)
	}

	if inv.equipped[item.Category] == id {
		delete(inv.equipped, item.Category)
		return inv.persistLocked()
	}
	return nil
}

// Owned reports whether the user has the cosmetic.
func (inv *Inventory) Owned(id string) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	_, owned := inv.items[id]
	return owned
}

// Items returns every owned cosmetic, ordered by id.
func (inv *Inventory) Items() []Cosmetic {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	items := lo.Values(inv.items)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// Equipped returns the current category → cosmetic id mapping.
func (inv *Inventory) Equipped() map[Category]string {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	out := make(map[Category]string, len(inv.equipped))
	for k, v := range inv.equipped {
		out[k] = v
	}
	return out
}

// Layers returns the equipped cosmetics in draw order: ascending layer
// index, ties broken by category declaration order. Stable, so the renderer
// can rely on it frame to frame.
func (inv *Inventory) Layers() []Cosmetic {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	var layers []Cosmetic
	for _, id := range inv.equipped {
		if item, owned := inv.items[id]; owned {
			layers = append(layers, item)
		}
	}

	sort.SliceStable(layers, func(i, j int) bool {
		if layers[i].Render.Layer != layers[j].Render.Layer {
			return layers[i].Render.Layer < layers[j].Render.Layer
		}
		return categoryOrder[layers[i].Category] < categoryOrder[layers[j].Category]
	})
	return layers
}

// Count returns how many cosmetics are owned.
func (inv *Inventory) Count() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.items)
}

func (inv *Inventory) persistLocked() error {
	items := lo.Values(inv.items)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	record := inventoryRecord{
		Inventory: inventoryState{
			Items:    items,
			Equipped: inv.equipped,
		},
		LastUpdated: time.Now(),
	}
	return inv.store.Save(RecordKey, record)
}
