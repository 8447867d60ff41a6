// Package inventory lists, filters and uses the items a character carries.
package inventory

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

var ErrItemNotAvailable = errors.New("item is not available")

// Catalog resolves static item definitions. *world.Graph satisfies it.
type Catalog interface {
	Item(id int64) (*world.Item, bool)
}

// Entry is an inventory stack joined with its item definition.
type Entry struct {
	world.InventoryEntry
	Item *world.Item
}

// Usable reports whether the stack can be used from the inventory.
func (e Entry) Usable() bool {
	return e.Item != nil && e.Item.Usable
}

// List returns the character's stacks in insertion order. Stacks whose item
// definition can't be resolved are skipped.
func List(c *world.Character, items Catalog) []Entry {
	out := make([]Entry, 0, len(c.Inventory))
	for _, inv := range c.Inventory {
		item, ok := items.Item(inv.ItemID)
		if !ok {
			continue
		}
		out = append(out, Entry{InventoryEntry: inv, Item: item})
	}
	return out
}

// Usable returns List filtered to usable items.
func Usable(c *world.Character, items Catalog) []Entry {
	var out []Entry
	for _, e := range List(c, items) {
		if e.Usable() && e.Count > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Add puts n of an item into the inventory, stacking onto an existing entry.
func Add(c *world.Character, itemID int64, n int) {
	if n <= 0 {
		return
	}
	for i := range c.Inventory {
		if c.Inventory[i].ItemID == itemID {
			c.Inventory[i].Count += n
			return
		}
	}
	c.Inventory = append(c.Inventory, world.InventoryEntry{ItemID: itemID, Count: n})
}

// Count returns how many of an item the character carries.
func Count(c *world.Character, itemID int64) int {
	for _, e := range c.Inventory {
		if e.ItemID == itemID {
			return e.Count
		}
	}
	return 0
}

// Use applies the item's effect, consumes one and returns text describing
// what happened.
func Use(c *world.Character, items Catalog, itemID int64) (string, error) {
	idx := -1
	for i, e := range c.Inventory {
		if e.ItemID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 || c.Inventory[idx].Count <= 0 {
		return "", fmt.Errorf("item %d: %w", itemID, ErrItemNotAvailable)
	}
	item, ok := items.Item(itemID)
	if !ok || !item.Usable {
		return "", fmt.Errorf("item %d is not usable: %w", itemID, ErrItemNotAvailable)
	}

	text := applyEffect(c, item)

	c.Inventory[idx].Count--
	if c.Inventory[idx].Count == 0 {
		c.Inventory = append(c.Inventory[:idx], c.Inventory[idx+1:]...)
	}
	return text, nil
}

func applyEffect(c *world.Character, item *world.Item) string {
	switch item.Effect.Kind {
	case world.EffectHeal:
		before := c.HP
		c.HP = min(c.HP+item.Effect.Amount, c.MaxHP)
		return fmt.Sprintf("You use the %s and recover %d health.", item.Name, c.HP-before)
	case world.EffectVigor:
		c.MaxHP += item.Effect.Amount
		c.HP += item.Effect.Amount
		return fmt.Sprintf("You use the %s. Your maximum health rises by %d.", item.Name, item.Effect.Amount)
	default:
		return fmt.Sprintf("You use the %s. Nothing seems to happen.", item.Name)
	}
}
