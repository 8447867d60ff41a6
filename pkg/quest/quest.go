// Package quest tracks quest progress in a character's journal.
package quest

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

var (
	ErrLevelTooLow      = errors.New("character level too low for quest")
	ErrAlreadyAccepted  = errors.New("quest already accepted")
	ErrAlreadyCompleted = errors.New("quest already completed")
	ErrNotAccepted      = errors.New("quest not accepted")
)

type Status int

const (
	NotStarted Status = iota
	Accepted
	Completed
	LevelTooLow
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Accepted:
		return "accepted"
	case Completed:
		return "completed"
	case LevelTooLow:
		return "level too low"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// StatusOf derives the quest's status for c. LevelTooLow is only reported for
// quests that were never started.
func StatusOf(c *world.Character, q *world.Quest) Status {
	if e, ok := c.JournalEntry(q.ID); ok {
		if e.Completed {
			return Completed
		}
		return Accepted
	}
	if c.Level < q.RequiredLevel {
		return LevelTooLow
	}
	return NotStarted
}

// Accept writes a journal entry for q. The character is unchanged on error.
func Accept(c *world.Character, q *world.Quest) error {
	switch StatusOf(c, q) {
	case Accepted:
		return fmt.Errorf("quest %d: %w", q.ID, ErrAlreadyAccepted)
	case Completed:
		return fmt.Errorf("quest %d: %w", q.ID, ErrAlreadyCompleted)
	case LevelTooLow:
		return fmt.Errorf("quest %d needs level %d, have %d: %w", q.ID, q.RequiredLevel, c.Level, ErrLevelTooLow)
	}
	c.Journal = append(c.Journal, world.JournalEntry{QuestID: q.ID})
	return nil
}

// Result summarises what completing a quest granted.
type Result struct {
	XP           int
	LevelsGained int
	Items        []world.RewardItem
}

// Complete marks an accepted quest done and grants its reward. The reward is
// granted exactly once: later calls return ErrAlreadyCompleted and change
// nothing.
func Complete(c *world.Character, q *world.Quest) (Result, error) {
	e, ok := c.JournalEntry(q.ID)
	if !ok {
		return Result{}, fmt.Errorf("quest %d: %w", q.ID, ErrNotAccepted)
	}
	if e.Completed {
		return Result{}, fmt.Errorf("quest %d: %w", q.ID, ErrAlreadyCompleted)
	}
	e.Completed = true
	for _, r := range q.Reward.Items {
		inventory.Add(c, r.ItemID, r.Count)
	}
	return Result{
		XP:           q.Reward.XP,
		LevelsGained: c.GrantXP(q.Reward.XP),
		Items:        q.Reward.Items,
	}, nil
}

// Source resolves the static data the active quest list needs. *world.Graph
// satisfies it.
type Source interface {
	Quest(id int64) (*world.Quest, bool)
	NPC(id int64) (*world.NPC, bool)
	LocationOfNPC(npcID int64) (*world.Location, bool)
}

// ActiveQuest is an accepted, unfinished quest as shown in the journal view.
type ActiveQuest struct {
	Quest    *world.Quest
	NPCName  string
	Location string
}

// Active lists the character's open quests in the order they were accepted.
func Active(c *world.Character, src Source) []ActiveQuest {
	var out []ActiveQuest
	for _, e := range c.Journal {
		if e.Completed {
			continue
		}
		q, ok := src.Quest(e.QuestID)
		if !ok {
			continue
		}
		aq := ActiveQuest{Quest: q}
		if n, ok := src.NPC(q.NPCID); ok {
			aq.NPCName = n.Name
		}
		if l, ok := src.LocationOfNPC(q.NPCID); ok {
			aq.Location = l.Name
		}
		out = append(out, aq)
	}
	return out
}
