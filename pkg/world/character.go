package world

import (
	"fmt"
	"regexp"
	"slices"
	"time"
)

const (
	DefaultHP    = 100
	DefaultLevel = 1
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// InventoryEntry is a stack of one item. Count never goes below zero and
// empty stacks are removed from the inventory.
type InventoryEntry struct {
	ItemID int64 `json:"item_id"`
	Count  int   `json:"count"`
}

// JournalEntry records progress on one quest. A missing entry means the quest
// was never started.
type JournalEntry struct {
	QuestID   int64 `json:"quest_id"`
	Completed bool  `json:"completed"`
}

// Character is a player's persistent avatar. ID is the player's identity on the
// transport.
type Character struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	HP         int              `json:"hp"`
	MaxHP      int              `json:"max_hp"`
	Level      int              `json:"level"`
	XP         int              `json:"xp"`
	LocationID int64            `json:"location_id"`
	Inventory  []InventoryEntry `json:"inventory,omitempty"`
	Journal    []JournalEntry   `json:"journal,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ValidName reports whether name is acceptable as a character name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// NewCharacter builds a level 1 character at the given location.
func NewCharacter(id int64, name string, hp int, locationID int64) (*Character, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("invalid character name %q", name)
	}
	if hp <= 0 {
		hp = DefaultHP
	}
	now := time.Now().UTC()
	return &Character{
		ID:         id,
		Name:       name,
		HP:         hp,
		MaxHP:      hp,
		Level:      DefaultLevel,
		LocationID: locationID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Clone returns a deep copy safe to cache while the original keeps changing.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Inventory = slices.Clone(c.Inventory)
	cp.Journal = slices.Clone(c.Journal)
	return &cp
}

// JournalEntry returns the entry for questID, if the quest was ever accepted.
func (c *Character) JournalEntry(questID int64) (*JournalEntry, bool) {
	for i := range c.Journal {
		if c.Journal[i].QuestID == questID {
			return &c.Journal[i], true
		}
	}
	return nil, false
}

// XPForLevel is the experience needed to advance from level to level+1.
func XPForLevel(level int) int {
	return level * 100
}

// GrantXP adds experience and levels the character up for every threshold
// crossed. It returns the number of levels gained.
func (c *Character) GrantXP(xp int) int {
	if xp <= 0 {
		return 0
	}
	c.XP += xp
	gained := 0
	for c.XP >= XPForLevel(c.Level) {
		c.XP -= XPForLevel(c.Level)
		c.Level++
		gained++
	}
	return gained
}
