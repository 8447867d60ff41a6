package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/world"
	"github.com/jwebster45206/quest-engine/pkg/world/worldtest"
)

func TestListAndUsable_PreserveOrder(t *testing.T) {
	g := worldtest.Graph(t)
	c := worldtest.Character(t, 1)
	Add(c, worldtest.PeltID, 1)
	Add(c, worldtest.PotionID, 2)
	Add(c, worldtest.ElixirID, 1)
	Add(c, worldtest.PeltID, 2)

	list := List(c, g)
	require.Len(t, list, 3)
	assert.Equal(t, worldtest.PeltID, list[0].ItemID)
	assert.Equal(t, 3, list[0].Count)
	assert.Equal(t, worldtest.PotionID, list[1].ItemID)
	assert.Equal(t, worldtest.ElixirID, list[2].ItemID)

	usable := Usable(c, g)
	require.Len(t, usable, 2)
	assert.Equal(t, worldtest.PotionID, usable[0].ItemID)
	assert.Equal(t, worldtest.ElixirID, usable[1].ItemID)
}

func TestUse_DecrementsAndRemoves(t *testing.T) {
	g := worldtest.Graph(t)
	c := worldtest.Character(t, 1)
	c.HP = 50
	Add(c, worldtest.PotionID, 2)

	text, err := Use(c, g, worldtest.PotionID)
	require.NoError(t, err)
	assert.Contains(t, text, "recover 30")
	assert.Equal(t, 80, c.HP)
	assert.Equal(t, 1, Count(c, worldtest.PotionID))

	text, err = Use(c, g, worldtest.PotionID)
	require.NoError(t, err)
	assert.Contains(t, text, "recover 20", "heal is capped at max hp")
	assert.Equal(t, c.MaxHP, c.HP)
	assert.Empty(t, c.Inventory, "empty stacks are removed")

	_, err = Use(c, g, worldtest.PotionID)
	assert.True(t, errors.Is(err, ErrItemNotAvailable))
}

func TestUse_Vigor(t *testing.T) {
	g := worldtest.Graph(t)
	c := worldtest.Character(t, 1)
	Add(c, worldtest.ElixirID, 1)

	_, err := Use(c, g, worldtest.ElixirID)
	require.NoError(t, err)
	assert.Equal(t, world.DefaultHP+10, c.MaxHP)
	assert.Equal(t, world.DefaultHP+10, c.HP)
}

func TestUse_NotAvailable(t *testing.T) {
	g := worldtest.Graph(t)

	tests := []struct {
		name  string
		setup func(c *world.Character)
		item  int64
	}{
		{"absent", func(c *world.Character) {}, worldtest.PotionID},
		{"zero count", func(c *world.Character) {
			c.Inventory = []world.InventoryEntry{{ItemID: worldtest.PotionID, Count: 0}}
		}, worldtest.PotionID},
		{"not usable", func(c *world.Character) { Add(c, worldtest.PeltID, 1) }, worldtest.PeltID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := worldtest.Character(t, 1)
			tt.setup(c)
			before := c.Clone()

			_, err := Use(c, g, tt.item)
			assert.True(t, errors.Is(err, ErrItemNotAvailable), "got %v", err)
			assert.Equal(t, before.Inventory, c.Inventory)
			for _, e := range c.Inventory {
				assert.GreaterOrEqual(t, e.Count, 0)
			}
		})
	}
}

func TestAdd_IgnoresNonPositive(t *testing.T) {
	c := worldtest.Character(t, 1)
	Add(c, worldtest.PotionID, 0)
	Add(c, worldtest.PotionID, -3)
	assert.Empty(t, c.Inventory)
}
