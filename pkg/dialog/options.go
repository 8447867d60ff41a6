package dialog

import (
	"github.com/jwebster45206/quest-engine/pkg/action"
	"github.com/jwebster45206/quest-engine/pkg/render"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// Options maps a stage's responses to buttons, in order. npcIndex is the NPC's
// position in the list the player picked it from. Terminal responses lead back
// to the NPC menu.
func Options(npcIndex int, stage *world.Stage) []render.Button {
	buttons := make([]render.Button, 0, len(stage.Responses))
	for _, r := range stage.Responses {
		token := action.Token(action.InteractWithNPC, int64(npcIndex))
		if !r.Terminal() {
			token = action.Token(action.NPCDialog, int64(npcIndex), r.NextStageID)
		}
		buttons = append(buttons, render.Button{Label: r.Text, Action: token})
	}
	return buttons
}
