package world

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnreachableLocation = errors.New("location is not reachable from here")
	ErrUnknownLocation     = errors.New("unknown location")
)

// Graph is a read-only index over an Atlas. It is never mutated after
// NewGraph returns, so it can be shared between goroutines without locking.
type Graph struct {
	start     int64
	locations map[int64]*Location
	npcs      map[int64]*NPC
	enemies   map[int64]*Enemy
	items     map[int64]*Item
	quests    map[int64]*Quest
	npcQuests map[int64]*Quest
	order     []int64
}

// NewGraph indexes the atlas and checks that every reference resolves.
func NewGraph(a *Atlas) (*Graph, error) {
	if a == nil {
		return nil, errors.New("atlas cannot be nil")
	}
	g := &Graph{
		start:     a.StartLocationID,
		locations: make(map[int64]*Location, len(a.Locations)),
		npcs:      make(map[int64]*NPC, len(a.NPCs)),
		enemies:   make(map[int64]*Enemy, len(a.Enemies)),
		items:     make(map[int64]*Item, len(a.Items)),
		quests:    make(map[int64]*Quest, len(a.Quests)),
		npcQuests: make(map[int64]*Quest, len(a.Quests)),
	}

	for i := range a.Locations {
		l := &a.Locations[i]
		if _, dup := g.locations[l.ID]; dup {
			return nil, fmt.Errorf("duplicate location id %d", l.ID)
		}
		g.locations[l.ID] = l
		g.order = append(g.order, l.ID)
	}
	for i := range a.NPCs {
		n := &a.NPCs[i]
		if _, dup := g.npcs[n.ID]; dup {
			return nil, fmt.Errorf("duplicate npc id %d", n.ID)
		}
		g.npcs[n.ID] = n
	}
	for i := range a.Enemies {
		e := &a.Enemies[i]
		if _, dup := g.enemies[e.ID]; dup {
			return nil, fmt.Errorf("duplicate enemy id %d", e.ID)
		}
		g.enemies[e.ID] = e
	}
	for i := range a.Items {
		it := &a.Items[i]
		if _, dup := g.items[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d", it.ID)
		}
		g.items[it.ID] = it
	}
	for i := range a.Quests {
		q := &a.Quests[i]
		if _, dup := g.quests[q.ID]; dup {
			return nil, fmt.Errorf("duplicate quest id %d", q.ID)
		}
		g.quests[q.ID] = q
	}

	if err := g.link(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) link() error {
	if _, ok := g.locations[g.start]; !ok {
		return fmt.Errorf("start location %d: %w", g.start, ErrUnknownLocation)
	}
	for _, l := range g.locations {
		for _, id := range l.Directions {
			if _, ok := g.locations[id]; !ok {
				return fmt.Errorf("location %d has direction to %d: %w", l.ID, id, ErrUnknownLocation)
			}
		}
		for _, id := range l.NPCs {
			if _, ok := g.npcs[id]; !ok {
				return fmt.Errorf("location %d references unknown npc %d", l.ID, id)
			}
		}
		for _, id := range l.Enemies {
			if _, ok := g.enemies[id]; !ok {
				return fmt.Errorf("location %d references unknown enemy %d", l.ID, id)
			}
		}
	}
	for _, e := range g.enemies {
		if e.LootItemID != 0 {
			if _, ok := g.items[e.LootItemID]; !ok {
				return fmt.Errorf("enemy %d drops unknown item %d", e.ID, e.LootItemID)
			}
		}
	}
	for _, q := range g.quests {
		if _, ok := g.npcs[q.NPCID]; !ok {
			return fmt.Errorf("quest %d owned by unknown npc %d", q.ID, q.NPCID)
		}
		for _, r := range q.Reward.Items {
			if _, ok := g.items[r.ItemID]; !ok {
				return fmt.Errorf("quest %d rewards unknown item %d", q.ID, r.ItemID)
			}
		}
		g.npcQuests[q.NPCID] = q
	}
	for _, n := range g.npcs {
		if n.QuestID == 0 {
			continue
		}
		q, ok := g.quests[n.QuestID]
		if !ok {
			return fmt.Errorf("npc %d offers unknown quest %d", n.ID, n.QuestID)
		}
		g.npcQuests[n.ID] = q
	}
	return nil
}

// Start returns the location new and revived characters are placed at.
func (g *Graph) Start() *Location {
	return g.locations[g.start]
}

func (g *Graph) Location(id int64) (*Location, bool) {
	l, ok := g.locations[id]
	return l, ok
}

// Locations returns every location in atlas order.
func (g *Graph) Locations() []*Location {
	out := make([]*Location, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.locations[id])
	}
	return out
}

func (g *Graph) NPC(id int64) (*NPC, bool) {
	n, ok := g.npcs[id]
	return n, ok
}

func (g *Graph) Enemy(id int64) (*Enemy, bool) {
	e, ok := g.enemies[id]
	return e, ok
}

func (g *Graph) Item(id int64) (*Item, bool) {
	it, ok := g.items[id]
	return it, ok
}

func (g *Graph) Quest(id int64) (*Quest, bool) {
	q, ok := g.quests[id]
	return q, ok
}

// QuestForNPC returns the quest offered by an NPC, if any.
func (g *Graph) QuestForNPC(npcID int64) (*Quest, bool) {
	q, ok := g.npcQuests[npcID]
	return q, ok
}

// LocationOfNPC returns the first location an NPC stands in.
func (g *Graph) LocationOfNPC(npcID int64) (*Location, bool) {
	for _, id := range g.order {
		l := g.locations[id]
		if slices.Contains(l.NPCs, npcID) {
			return l, true
		}
	}
	return nil, false
}

// Directions returns the locations reachable from l, in order.
func (g *Graph) Directions(l *Location) []*Location {
	out := make([]*Location, 0, len(l.Directions))
	for _, id := range l.Directions {
		out = append(out, g.locations[id])
	}
	return out
}

// NPCs returns the NPCs present at l, in order.
func (g *Graph) NPCs(l *Location) []*NPC {
	out := make([]*NPC, 0, len(l.NPCs))
	for _, id := range l.NPCs {
		out = append(out, g.npcs[id])
	}
	return out
}

// Enemies returns the enemies present at l, in order.
func (g *Graph) Enemies(l *Location) []*Enemy {
	out := make([]*Enemy, 0, len(l.Enemies))
	for _, id := range l.Enemies {
		out = append(out, g.enemies[id])
	}
	return out
}

// Whereami resolves the character's current location.
func (g *Graph) Whereami(c *Character) (*Location, error) {
	l, ok := g.locations[c.LocationID]
	if !ok {
		return nil, fmt.Errorf("character %d at %d: %w", c.ID, c.LocationID, ErrUnknownLocation)
	}
	return l, nil
}

// Go moves the character along a direction edge of its current location. The
// character is left untouched on failure.
func (g *Graph) Go(c *Character, locationID int64) (*Location, error) {
	from, err := g.Whereami(c)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(from.Directions, locationID) {
		return nil, fmt.Errorf("from %d to %d: %w", from.ID, locationID, ErrUnreachableLocation)
	}
	c.LocationID = locationID
	return g.locations[locationID], nil
}
