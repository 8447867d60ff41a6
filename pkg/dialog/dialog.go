// Package dialog walks NPC dialog trees one player choice at a time.
//
// A conversation is suspended between requests as a Cursor value. Resuming is
// a pure lookup of (NPC, stage), so nothing but the Cursor has to survive
// between two inbound events.
package dialog

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

var (
	ErrInvalidStage = errors.New("stage does not exist in this dialog")
	ErrStaleCursor  = errors.New("conversation cursor is stale")
)

// Cursor marks a player as mid-conversation with an NPC at a given stage.
type Cursor struct {
	NPCID   int64 `json:"npc_id"`
	StageID int64 `json:"stage_id"`
}

// Start opens a conversation at the NPC's entry stage.
func Start(npc *world.NPC) (Cursor, *world.Stage, error) {
	if npc == nil {
		return Cursor{}, nil, errors.New("npc cannot be nil")
	}
	stage, ok := npc.Stage(npc.Entry())
	if !ok {
		return Cursor{}, nil, fmt.Errorf("npc %d entry stage %d: %w", npc.ID, npc.Entry(), ErrInvalidStage)
	}
	return Cursor{NPCID: npc.ID, StageID: stage.ID}, stage, nil
}

// Resume moves the conversation to stageID. The returned cursor replaces cur.
func Resume(npc *world.NPC, cur Cursor, stageID int64) (Cursor, *world.Stage, error) {
	if err := Validate(npc, cur); err != nil {
		return Cursor{}, nil, err
	}
	stage, ok := npc.Stage(stageID)
	if !ok {
		return Cursor{}, nil, fmt.Errorf("npc %d stage %d: %w", npc.ID, stageID, ErrInvalidStage)
	}
	return Cursor{NPCID: npc.ID, StageID: stage.ID}, stage, nil
}

// Validate reports whether cur still points into npc's tree.
func Validate(npc *world.NPC, cur Cursor) error {
	if npc == nil || cur.NPCID != npc.ID {
		return ErrStaleCursor
	}
	if _, ok := npc.Stage(cur.StageID); !ok {
		return fmt.Errorf("npc %d stage %d: %w", npc.ID, cur.StageID, ErrStaleCursor)
	}
	return nil
}

// Current resolves the stage a valid cursor points at.
func Current(npc *world.NPC, cur Cursor) (*world.Stage, error) {
	if err := Validate(npc, cur); err != nil {
		return nil, err
	}
	stage, _ := npc.Stage(cur.StageID)
	return stage, nil
}

// CheckTree lists integrity problems in an NPC's dialog tree.
func CheckTree(npc *world.NPC) []error {
	var errs []error
	seen := make(map[int64]bool, len(npc.Stages))
	for _, s := range npc.Stages {
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("npc %d: duplicate stage id %d", npc.ID, s.ID))
		}
		seen[s.ID] = true
	}
	if !seen[npc.Entry()] {
		errs = append(errs, fmt.Errorf("npc %d: entry stage %d missing", npc.ID, npc.Entry()))
	}
	for _, s := range npc.Stages {
		if len(s.Responses) == 0 {
			errs = append(errs, fmt.Errorf("npc %d stage %d: no responses", npc.ID, s.ID))
		}
		for _, r := range s.Responses {
			if !r.Terminal() && !seen[r.NextStageID] {
				errs = append(errs, fmt.Errorf("npc %d stage %d: response %q leads to missing stage %d", npc.ID, s.ID, r.Text, r.NextStageID))
			}
		}
	}
	return errs
}
