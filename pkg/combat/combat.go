// Package combat resolves a single fight between a character and an enemy.
package combat

import (
	"errors"
	"fmt"
	"math"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// ErrDeath is returned when the character would not survive the fight. The
// character passed to Attack is left untouched.
var ErrDeath = errors.New("character died")

// Steepness of the win-probability curve over the level difference.
const steepness = 0.6

const (
	baseArmour  = 10
	xpPerLevel  = 10
	lossPerLvl  = 8
	spreadPerLv = 4
	graze       = 5
)

// Rand is the randomness the resolver draws on. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Outcome describes a survived fight.
type Outcome struct {
	Won          bool
	Damage       int
	XP           int
	LevelsGained int
	Loot         *world.Item
}

type Resolver struct {
	Rand  Rand
	Items inventory.Catalog
}

func NewResolver(r Rand, items inventory.Catalog) *Resolver {
	return &Resolver{Rand: r, Items: items}
}

// WinChance is the probability a character of the given level beats the enemy.
// It is strictly increasing in level - enemyLevel.
func WinChance(level, enemyLevel int) float64 {
	return 1 / (1 + math.Exp(-steepness*float64(level-enemyLevel)))
}

// Attack runs one fight. On victory the character takes a graze that never
// kills, gains XP and picks up the enemy's loot. On defeat it takes a heavy
// blow; if that would bring HP to zero ErrDeath is returned instead.
func (r *Resolver) Attack(c *world.Character, e *world.Enemy) (Outcome, error) {
	a, err := actorFor(c)
	if err != nil {
		return Outcome{}, err
	}

	won := r.Rand.Float64() < WinChance(c.Level, e.Level)

	var out Outcome
	if won {
		out.Won = true
		out.Damage = min(r.Rand.IntN(graze*e.Level+1), a.HP()-1)
	} else {
		out.Damage = lossPerLvl*e.Level + r.Rand.IntN(spreadPerLv*e.Level+1)
	}

	hp := a.HP() - out.Damage
	if hp <= 0 {
		return Outcome{}, fmt.Errorf("%s fell to %s: %w", c.Name, e.Name, ErrDeath)
	}
	if out.Damage > 0 {
		if err := a.SetHP(hp); err != nil {
			return Outcome{}, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	c.HP = a.HP()

	if won {
		out.XP = xpPerLevel * e.Level
		out.LevelsGained = c.GrantXP(out.XP)
		if e.LootItemID != 0 {
			if item, ok := r.Items.Item(e.LootItemID); ok {
				inventory.Add(c, item.ID, 1)
				out.Loot = item
			}
		}
	}
	return out, nil
}

// Revive restores a dead character at the start location with full health.
// Inventory and journal are kept.
func Revive(c *world.Character, start *world.Location) {
	c.HP = c.MaxHP
	c.LocationID = start.ID
}

func actorFor(c *world.Character) (*d20.Actor, error) {
	a, err := d20.NewActor(c.Name).
		WithHP(c.MaxHP).
		WithAC(baseArmour).
		WithAttributes(map[string]int{"level": c.Level}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}
	if c.HP != c.MaxHP && c.HP > 0 {
		if err := a.SetHP(c.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return a, nil
}
