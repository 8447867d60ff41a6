package world_test

import (
	"errors"
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/world"
	"github.com/jwebster45206/quest-engine/pkg/world/worldtest"
)

func TestNewGraph_RejectsBrokenReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *world.Atlas)
	}{
		{"unknown start", func(a *world.Atlas) { a.StartLocationID = 99 }},
		{"unknown direction", func(a *world.Atlas) { a.Locations[0].Directions = append(a.Locations[0].Directions, 42) }},
		{"unknown npc", func(a *world.Atlas) { a.Locations[0].NPCs = []int64{42} }},
		{"unknown enemy", func(a *world.Atlas) { a.Locations[1].Enemies = []int64{42} }},
		{"unknown loot", func(a *world.Atlas) { a.Enemies[0].LootItemID = 42 }},
		{"unknown quest owner", func(a *world.Atlas) { a.Quests[0].NPCID = 42 }},
		{"unknown reward item", func(a *world.Atlas) { a.Quests[0].Reward.Items[0].ItemID = 42 }},
		{"duplicate location", func(a *world.Atlas) { a.Locations[1].ID = a.Locations[0].ID }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := worldtest.Atlas()
			tt.mutate(a)
			if _, err := world.NewGraph(a); err == nil {
				t.Error("NewGraph() expected error, got nil")
			}
		})
	}
}

func TestGraph_Accessors(t *testing.T) {
	g := worldtest.Graph(t)

	if g.Start().ID != worldtest.SquareID {
		t.Fatalf("Start() = %d, want %d", g.Start().ID, worldtest.SquareID)
	}

	square, _ := g.Location(worldtest.SquareID)
	dirs := g.Directions(square)
	if len(dirs) != 2 || dirs[0].ID != worldtest.ForestID || dirs[1].ID != worldtest.MillID {
		t.Errorf("Directions(square) = %v, want [forest mill] in order", dirs)
	}

	npcs := g.NPCs(square)
	if len(npcs) != 2 || npcs[0].ID != worldtest.ElderID {
		t.Errorf("NPCs(square) = %v, want elder first", npcs)
	}

	forest, _ := g.Location(worldtest.ForestID)
	enemies := g.Enemies(forest)
	if len(enemies) != 2 || enemies[0].ID != worldtest.WolfID || enemies[1].ID != worldtest.BanditID {
		t.Errorf("Enemies(forest) = %v, want [wolf bandit]", enemies)
	}

	if q, ok := g.QuestForNPC(worldtest.ElderID); !ok || q.ID != worldtest.ElderQuestID {
		t.Errorf("QuestForNPC(elder) = %v, %v", q, ok)
	}
	if _, ok := g.QuestForNPC(worldtest.HermitID); ok {
		t.Error("QuestForNPC(hermit) should be absent")
	}
	if l, ok := g.LocationOfNPC(worldtest.HermitID); !ok || l.ID != worldtest.ForestID {
		t.Errorf("LocationOfNPC(hermit) = %v, %v", l, ok)
	}
}

func TestGraph_Go(t *testing.T) {
	g := worldtest.Graph(t)

	for _, l := range g.Locations() {
		for _, target := range g.Locations() {
			c := worldtest.Character(t, 1)
			c.LocationID = l.ID

			_, err := g.Go(c, target.ID)
			reachable := false
			for _, d := range g.Directions(l) {
				if d.ID == target.ID {
					reachable = true
				}
			}

			if reachable {
				if err != nil {
					t.Errorf("Go(%d -> %d) unexpected error: %v", l.ID, target.ID, err)
				}
				if c.LocationID != target.ID {
					t.Errorf("Go(%d -> %d) location = %d", l.ID, target.ID, c.LocationID)
				}
				continue
			}
			if !errors.Is(err, world.ErrUnreachableLocation) {
				t.Errorf("Go(%d -> %d) error = %v, want ErrUnreachableLocation", l.ID, target.ID, err)
			}
			if c.LocationID != l.ID {
				t.Errorf("Go(%d -> %d) mutated location to %d on failure", l.ID, target.ID, c.LocationID)
			}
		}
	}
}

func TestGraph_GoUnknownTarget(t *testing.T) {
	g := worldtest.Graph(t)
	c := worldtest.Character(t, 1)

	if _, err := g.Go(c, 404); !errors.Is(err, world.ErrUnreachableLocation) {
		t.Errorf("Go(404) error = %v, want ErrUnreachableLocation", err)
	}
	if c.LocationID != worldtest.SquareID {
		t.Errorf("location changed to %d", c.LocationID)
	}
}
