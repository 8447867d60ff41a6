package world

// DefaultEntryStageID is the dialog stage an NPC opens with when its
// definition doesn't name one.
const DefaultEntryStageID int64 = 1

// EffectKind identifies what using an item does.
type EffectKind string

const (
	EffectHeal  EffectKind = "heal"  // restores HP, capped at MaxHP
	EffectVigor EffectKind = "vigor" // raises MaxHP and HP by the same amount
)

// Effect is applied to a character when an item is used.
type Effect struct {
	Kind   EffectKind `yaml:"kind" json:"kind"`
	Amount int        `yaml:"amount" json:"amount"`
}

// Item is a static item definition.
type Item struct {
	ID     int64  `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Usable bool   `yaml:"usable,omitempty" json:"usable,omitempty"`
	Effect Effect `yaml:"effect,omitempty" json:"effect,omitempty"`
}

// Response is one player choice on a dialog stage. A zero NextStageID ends
// the conversation.
type Response struct {
	Text        string `yaml:"text" json:"text"`
	NextStageID int64  `yaml:"next_stage_id,omitempty" json:"next_stage_id,omitempty"`
}

// Terminal reports whether choosing this response closes the conversation.
func (r Response) Terminal() bool {
	return r.NextStageID == 0
}

// Stage is a node of an NPC's dialog tree. Stage ids are scoped to the NPC.
type Stage struct {
	ID        int64      `yaml:"id" json:"id"`
	Text      string     `yaml:"text" json:"text"`
	Responses []Response `yaml:"responses" json:"responses"`
}

// NPC is a non-player character. Dialog trees may contain cycles.
type NPC struct {
	ID           int64   `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	EntryStageID int64   `yaml:"entry_stage_id,omitempty" json:"entry_stage_id,omitempty"`
	Stages       []Stage `yaml:"stages" json:"stages"`
	QuestID      int64   `yaml:"quest_id,omitempty" json:"quest_id,omitempty"`
}

// Entry returns the id of the stage every conversation with this NPC starts at.
func (n *NPC) Entry() int64 {
	if n.EntryStageID == 0 {
		return DefaultEntryStageID
	}
	return n.EntryStageID
}

// Stage looks up a stage of this NPC's tree by id.
func (n *NPC) Stage(id int64) (*Stage, bool) {
	for i := range n.Stages {
		if n.Stages[i].ID == id {
			return &n.Stages[i], true
		}
	}
	return nil, false
}

// RewardItem is a stack of items handed out on quest completion.
type RewardItem struct {
	ItemID int64 `yaml:"item_id" json:"item_id"`
	Count  int   `yaml:"count" json:"count"`
}

// Reward is granted once when a quest is completed.
type Reward struct {
	XP    int          `yaml:"xp,omitempty" json:"xp,omitempty"`
	Items []RewardItem `yaml:"items,omitempty" json:"items,omitempty"`
}

// Quest is offered by exactly one NPC.
type Quest struct {
	ID            int64  `yaml:"id" json:"id"`
	NPCID         int64  `yaml:"npc_id" json:"npc_id"`
	RequiredLevel int    `yaml:"required_level" json:"required_level"`
	Task          string `yaml:"task" json:"task"`
	Reward        Reward `yaml:"reward" json:"reward"`
}

// Enemy is a static foe attached to one or more locations.
type Enemy struct {
	ID         int64  `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Level      int    `yaml:"level" json:"level"`
	LootItemID int64  `yaml:"loot_item_id,omitempty" json:"loot_item_id,omitempty"`
}

// Location is a place in the world. Directions are ordered and need not be
// symmetric.
type Location struct {
	ID          int64   `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Directions  []int64 `yaml:"directions" json:"directions"`
	NPCs        []int64 `yaml:"npcs,omitempty" json:"npcs,omitempty"`
	Enemies     []int64 `yaml:"enemies,omitempty" json:"enemies,omitempty"`
}

// Atlas is the full static world as stored or seeded.
type Atlas struct {
	StartLocationID int64      `yaml:"start_location_id" json:"start_location_id"`
	Locations       []Location `yaml:"locations" json:"locations"`
	NPCs            []NPC      `yaml:"npcs" json:"npcs"`
	Quests          []Quest    `yaml:"quests" json:"quests"`
	Enemies         []Enemy    `yaml:"enemies" json:"enemies"`
	Items           []Item     `yaml:"items" json:"items"`
}
