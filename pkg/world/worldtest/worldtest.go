// Package worldtest provides a small, fixed world for tests.
package worldtest

import (
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

const (
	SquareID int64 = 1
	ForestID int64 = 2
	MillID   int64 = 3

	ElderID  int64 = 1
	SmithID  int64 = 2
	HermitID int64 = 3

	WolfID   int64 = 1
	BanditID int64 = 2
	RatID    int64 = 3

	PotionID int64 = 1
	ElixirID int64 = 2
	PeltID   int64 = 3

	ElderQuestID int64 = 1
	SmithQuestID int64 = 2
)

// Atlas returns a fresh copy of the fixture world on every call.
func Atlas() *world.Atlas {
	return &world.Atlas{
		StartLocationID: SquareID,
		Locations: []world.Location{
			{ID: SquareID, Name: "village square", Description: "A quiet square.", Directions: []int64{ForestID, MillID}, NPCs: []int64{ElderID, SmithID}},
			{ID: ForestID, Name: "old forest", Description: "Dark trees.", Directions: []int64{SquareID}, NPCs: []int64{HermitID}, Enemies: []int64{WolfID, BanditID}},
			{ID: MillID, Name: "riverside mill", Description: "A creaking mill.", Directions: []int64{SquareID}, Enemies: []int64{RatID}},
		},
		NPCs: []world.NPC{
			{
				ID: ElderID, Name: "elder maren", QuestID: ElderQuestID,
				Stages: []world.Stage{
					{ID: 1, Text: "Welcome, traveller.", Responses: []world.Response{
						{Text: "Tell me about the village.", NextStageID: 2},
						{Text: "Any news?", NextStageID: 3},
						{Text: "Goodbye."},
					}},
					{ID: 2, Text: "We were farmers once.", Responses: []world.Response{
						{Text: "Something else.", NextStageID: 1},
						{Text: "Goodbye."},
					}},
					{ID: 3, Text: "Wolves in the forest.", Responses: []world.Response{
						{Text: "Back.", NextStageID: 1},
					}},
				},
			},
			{
				ID: SmithID, Name: "brom the smith", QuestID: SmithQuestID,
				Stages: []world.Stage{
					{ID: 1, Text: "Mind the sparks.", Responses: []world.Response{{Text: "Bye."}}},
				},
			},
			{
				ID: HermitID, Name: "hermit ilsa",
				Stages: []world.Stage{
					{ID: 1, Text: "Tread kindly.", Responses: []world.Response{{Text: "I will."}}},
				},
			},
		},
		Quests: []world.Quest{
			{ID: ElderQuestID, NPCID: ElderID, RequiredLevel: 1, Task: "Thin out the wolves.",
				Reward: world.Reward{XP: 150, Items: []world.RewardItem{{ItemID: PotionID, Count: 2}}}},
			{ID: SmithQuestID, NPCID: SmithID, RequiredLevel: 3, Task: "Recover the hammer.",
				Reward: world.Reward{XP: 300, Items: []world.RewardItem{{ItemID: ElixirID, Count: 1}}}},
		},
		Enemies: []world.Enemy{
			{ID: WolfID, Name: "wolf", Level: 1, LootItemID: PeltID},
			{ID: BanditID, Name: "bandit", Level: 2, LootItemID: PotionID},
			{ID: RatID, Name: "giant rat", Level: 1},
		},
		Items: []world.Item{
			{ID: PotionID, Name: "healing potion", Usable: true, Effect: world.Effect{Kind: world.EffectHeal, Amount: 30}},
			{ID: ElixirID, Name: "elixir of vigor", Usable: true, Effect: world.Effect{Kind: world.EffectVigor, Amount: 10}},
			{ID: PeltID, Name: "wolf pelt"},
		},
	}
}

// Graph builds the fixture graph, failing the test on error.
func Graph(t testing.TB) *world.Graph {
	t.Helper()
	g, err := world.NewGraph(Atlas())
	if err != nil {
		t.Fatalf("failed to build fixture graph: %v", err)
	}
	return g
}

// Character returns a fresh level 1 character standing in the square.
func Character(t testing.TB, id int64) *world.Character {
	t.Helper()
	c, err := world.NewCharacter(id, "Aria1", world.DefaultHP, SquareID)
	if err != nil {
		t.Fatalf("failed to build fixture character: %v", err)
	}
	return c
}
