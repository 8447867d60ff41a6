package combat

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/world/worldtest"
)

// fixedRand returns the same draws every time.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }

func (r fixedRand) IntN(n int) int { return min(r.n, n-1) }

func TestWinChance_Monotonic(t *testing.T) {
	prev := 0.0
	for diff := -10; diff <= 10; diff++ {
		p := WinChance(5+diff, 5)
		assert.Greater(t, p, prev, "diff %d", diff)
		assert.Less(t, p, 1.0)
		prev = p
	}
	assert.InDelta(t, 0.5, WinChance(3, 3), 1e-9)
}

func TestAttack_Victory(t *testing.T) {
	g := worldtest.Graph(t)
	wolf, _ := g.Enemy(worldtest.WolfID)
	c := worldtest.Character(t, 1)

	r := NewResolver(fixedRand{f: 0, n: 2}, g)
	out, err := r.Attack(c, wolf)
	require.NoError(t, err)

	assert.True(t, out.Won)
	assert.Equal(t, 2, out.Damage)
	assert.Equal(t, c.MaxHP-2, c.HP)
	assert.Equal(t, 10, out.XP)
	assert.Equal(t, 10, c.XP)
	require.NotNil(t, out.Loot)
	assert.Equal(t, worldtest.PeltID, out.Loot.ID)
	assert.Equal(t, 1, inventory.Count(c, worldtest.PeltID))
}

func TestAttack_VictoryNeverKills(t *testing.T) {
	g := worldtest.Graph(t)
	bandit, _ := g.Enemy(worldtest.BanditID)
	c := worldtest.Character(t, 1)
	c.HP = 1

	out, err := NewResolver(fixedRand{f: 0, n: 100}, g).Attack(c, bandit)
	require.NoError(t, err)
	assert.True(t, out.Won)
	assert.Equal(t, 1, c.HP)
}

func TestAttack_NoLoot(t *testing.T) {
	g := worldtest.Graph(t)
	rat, _ := g.Enemy(worldtest.RatID)
	c := worldtest.Character(t, 1)

	out, err := NewResolver(fixedRand{f: 0}, g).Attack(c, rat)
	require.NoError(t, err)
	assert.Nil(t, out.Loot)
	assert.Empty(t, c.Inventory)
}

func TestAttack_Loss(t *testing.T) {
	g := worldtest.Graph(t)
	bandit, _ := g.Enemy(worldtest.BanditID)
	c := worldtest.Character(t, 1)

	out, err := NewResolver(fixedRand{f: 0.999, n: 3}, g).Attack(c, bandit)
	require.NoError(t, err)
	assert.False(t, out.Won)
	assert.Equal(t, 2*8+3, out.Damage)
	assert.Equal(t, c.MaxHP-19, c.HP)
	assert.Zero(t, c.XP)
}

func TestAttack_Death(t *testing.T) {
	g := worldtest.Graph(t)
	bandit, _ := g.Enemy(worldtest.BanditID)
	c := worldtest.Character(t, 1)
	c.HP = 10
	before := c.Clone()

	_, err := NewResolver(fixedRand{f: 0.999}, g).Attack(c, bandit)
	assert.True(t, errors.Is(err, ErrDeath))
	assert.Equal(t, before, c, "character untouched on death")
}

func TestAttack_SeededRandStaysInBounds(t *testing.T) {
	g := worldtest.Graph(t)
	wolf, _ := g.Enemy(worldtest.WolfID)
	r := NewResolver(rand.New(rand.NewPCG(1, 2)), g)

	for i := 0; i < 200; i++ {
		c := worldtest.Character(t, 1)
		_, err := r.Attack(c, wolf)
		if err != nil {
			require.ErrorIs(t, err, ErrDeath)
			continue
		}
		assert.Greater(t, c.HP, 0)
		assert.LessOrEqual(t, c.HP, c.MaxHP)
	}
}

func TestRevive(t *testing.T) {
	g := worldtest.Graph(t)
	c := worldtest.Character(t, 1)
	c.HP = 0
	c.LocationID = worldtest.ForestID
	inventory.Add(c, worldtest.PotionID, 1)

	Revive(c, g.Start())
	assert.Equal(t, c.MaxHP, c.HP)
	assert.Equal(t, worldtest.SquareID, c.LocationID)
	assert.Equal(t, 1, inventory.Count(c, worldtest.PotionID))
}
