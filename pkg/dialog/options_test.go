package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/quest-engine/pkg/render"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

func TestOptions(t *testing.T) {
	stage := &world.Stage{ID: 1, Text: "Hello.", Responses: []world.Response{
		{Text: "Tell me more.", NextStageID: 2},
		{Text: "Again.", NextStageID: 1},
		{Text: "Goodbye."},
	}}

	got := Options(3, stage)
	want := []render.Button{
		{Label: "Tell me more.", Action: "npc_dialog:3:2"},
		{Label: "Again.", Action: "npc_dialog:3:1"},
		{Label: "Goodbye.", Action: "interact_with_npc:3"},
	}
	assert.Equal(t, want, got)
}
