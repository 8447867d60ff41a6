package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/action"
	"github.com/jwebster45206/quest-engine/pkg/combat"
	"github.com/jwebster45206/quest-engine/pkg/dialog"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/render"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

func (o *Orchestrator) routes() map[action.Verb]handlerFunc {
	return map[action.Verb]handlerFunc{
		action.GetLocation:      o.getLocation,
		action.GetStats:         o.getStats,
		action.GetInventory:     o.getInventory,
		action.GetUsableItems:   o.getUsableItems,
		action.UseItem:          o.useItem,
		action.ChangeLocation:   o.changeLocation,
		action.SetLocation:      o.setLocation,
		action.GetNPCs:          o.getNPCs,
		action.InteractWithNPC:  o.interactWithNPC,
		action.NPCDialog:        o.npcDialog,
		action.NPCQuest:         o.npcQuest,
		action.NPCQuestAccept:   o.npcQuestAccept,
		action.NPCQuestComplete: o.npcQuestComplete,
		action.GetQuests:        o.getQuests,
		action.GetEnemies:       o.getEnemies,
		action.Fight:            o.fight,
		action.Noop:             o.noop,
	}
}

func (o *Orchestrator) here(t *turn) (*world.Location, error) {
	return o.graph.Whereami(t.char)
}

func indexed[T any](list []T, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(list) {
		return zero, fmt.Errorf("index %d of %d: %w", i, len(list), ErrIndexOutOfRange)
	}
	return list[i], nil
}

func (o *Orchestrator) getLocation(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	l, err := o.here(t)
	if err != nil {
		return nil, err
	}
	text := render.Lines(
		fmt.Sprintf("You are at the %s.", render.Title(l.Name)),
		render.Wrap(l.Description, 0),
	)
	return screen(text, backButton()), nil
}

func (o *Orchestrator) getStats(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	c := t.char
	l, err := o.here(t)
	if err != nil {
		return nil, err
	}
	text := strings.Join([]string{
		"Name: " + c.Name,
		fmt.Sprintf("Level: %d", c.Level),
		fmt.Sprintf("XP: %d/%d", c.XP, world.XPForLevel(c.Level)),
		fmt.Sprintf("HP: %d/%d", c.HP, c.MaxHP),
		"Location: " + render.Title(l.Name),
	}, "\n")
	return screen(text, backButton()), nil
}

func (o *Orchestrator) getInventory(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	entries := inventory.List(t.char, o.graph)
	if len(entries) == 0 {
		return screen(msgEmptyInventory, backButton()), nil
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %d", render.Title(e.Item.Name), e.Count))
	}
	return screen(strings.Join(lines, "\n"), backButton()), nil
}

func (o *Orchestrator) usableScreen(t *turn, prefix string) *render.Payload {
	entries := inventory.Usable(t.char, o.graph)
	if len(entries) == 0 {
		return screen(render.Lines(prefix, msgNothingToUse), backButton())
	}
	buttons := make([]render.Button, 0, len(entries)+1)
	for i, e := range entries {
		buttons = append(buttons, render.Button{
			Label:  fmt.Sprintf("%s (%d)", render.Title(e.Item.Name), e.Count),
			Action: action.Token(action.UseItem, int64(i)),
		})
	}
	buttons = append(buttons, backButton())
	return screen(render.Lines(prefix, "What do you want to use?"), buttons...)
}

func (o *Orchestrator) getUsableItems(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	return o.usableScreen(t, ""), nil
}

func (o *Orchestrator) useItem(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	e, err := indexed(inventory.Usable(t.char, o.graph), a.Index(0))
	if err != nil {
		return nil, err
	}
	text, err := inventory.Use(t.char, o.graph, e.ItemID)
	if err != nil {
		if errors.Is(err, inventory.ErrItemNotAvailable) {
			return o.usableScreen(t, "You can't use that right now."), nil
		}
		return nil, err
	}
	t.dirty = true
	return o.usableScreen(t, text), nil
}

func (o *Orchestrator) changeLocation(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	l, err := o.here(t)
	if err != nil {
		return nil, err
	}
	dirs := o.graph.Directions(l)
	buttons := make([]render.Button, 0, len(dirs)+1)
	for _, d := range dirs {
		buttons = append(buttons, render.Button{
			Label:  render.Title(d.Name),
			Action: action.Token(action.SetLocation, d.ID),
		})
	}
	buttons = append(buttons, backButton())
	p := screen(fmt.Sprintf("You are at the %s. Where do you want to go?", render.Title(l.Name)), buttons...)
	p.Columns = 2
	return p, nil
}

func (o *Orchestrator) setLocation(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	l, err := o.graph.Go(t.char, a.Arg(0))
	if err != nil {
		if errors.Is(err, world.ErrUnreachableLocation) || errors.Is(err, world.ErrUnknownLocation) {
			return screen(msgUnreachable,
				render.Button{Label: "Travel", Action: action.Token(action.ChangeLocation)},
				backButton(),
			), nil
		}
		return nil, err
	}
	t.dirty = true
	return mainMenu(render.Lines(
		fmt.Sprintf("You travel to the %s.", render.Title(l.Name)),
		render.Wrap(l.Description, 0),
	)), nil
}

func (o *Orchestrator) npcsHere(t *turn) ([]*world.NPC, error) {
	l, err := o.here(t)
	if err != nil {
		return nil, err
	}
	return o.graph.NPCs(l), nil
}

func (o *Orchestrator) npcAt(t *turn, i int) (*world.NPC, error) {
	npcs, err := o.npcsHere(t)
	if err != nil {
		return nil, err
	}
	return indexed(npcs, i)
}

func (o *Orchestrator) getNPCs(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	npcs, err := o.npcsHere(t)
	if err != nil {
		return nil, err
	}
	if len(npcs) == 0 {
		return screen(msgNobodyHere, backButton()), nil
	}
	buttons := make([]render.Button, 0, len(npcs)+1)
	for i, n := range npcs {
		buttons = append(buttons, render.Button{
			Label:  render.Title(n.Name),
			Action: action.Token(action.InteractWithNPC, int64(i)),
		})
	}
	buttons = append(buttons, backButton())
	return screen("Who do you want to talk to?", buttons...), nil
}

func npcMenu(i int, n *world.NPC, msg string) *render.Payload {
	idx := int64(i)
	p := screen(
		render.Lines(msg, fmt.Sprintf("What do you want to do with %s?", render.Title(n.Name))),
		render.Button{Label: "Talk", Action: action.Token(action.NPCDialog, idx, n.Entry())},
		render.Button{Label: "Quest", Action: action.Token(action.NPCQuest, idx)},
		render.Button{Label: "Back", Action: action.Token(action.GetNPCs)},
		render.Button{Label: "Menu", Action: action.Token(action.MainMenu)},
	)
	p.Columns = 2
	return p
}

func (o *Orchestrator) interactWithNPC(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	n, err := o.npcAt(t, a.Index(0))
	if err != nil {
		return nil, err
	}
	return npcMenu(a.Index(0), n, ""), nil
}

func (o *Orchestrator) npcDialog(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	i := a.Index(0)
	n, err := o.npcAt(t, i)
	if err != nil {
		t.sess.Cursor = nil
		return nil, err
	}

	var (
		cur   dialog.Cursor
		stage *world.Stage
	)
	switch {
	case a.Arg(1) == n.Entry():
		cur, stage, err = dialog.Start(n)
	case t.sess.Cursor == nil:
		err = dialog.ErrStaleCursor
	default:
		cur, stage, err = dialog.Resume(n, *t.sess.Cursor, a.Arg(1))
	}
	if err != nil {
		t.sess.Cursor = nil
		if errors.Is(err, dialog.ErrStaleCursor) || errors.Is(err, dialog.ErrInvalidStage) {
			t.log.Debug("Dialog rejected", "npc_id", n.ID, "stage_id", a.Arg(1), "error", err)
			return npcMenu(i, n, msgDialogMoved), nil
		}
		return nil, err
	}

	t.sess.Cursor = &cur
	text := fmt.Sprintf("%s: %s", render.Title(n.Name), render.Wrap(stage.Text, 0))
	return screen(text, dialog.Options(i, stage)...), nil
}

func (o *Orchestrator) npcQuest(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	i := a.Index(0)
	n, err := o.npcAt(t, i)
	if err != nil {
		return nil, err
	}
	back := render.Button{Label: "Back", Action: action.Token(action.InteractWithNPC, int64(i))}

	q, ok := o.graph.QuestForNPC(n.ID)
	if !ok {
		return screen(fmt.Sprintf("%s has no quest for you.", render.Title(n.Name)), back), nil
	}

	text := fmt.Sprintf("%s: %s", render.Title(n.Name), q.Task)
	switch quest.StatusOf(t.char, q) {
	case quest.Completed:
		return screen(fmt.Sprintf("%s has no quest for you.", render.Title(n.Name)), back), nil
	case quest.Accepted:
		return screen(text,
			render.Button{Label: "Complete", Action: action.Token(action.NPCQuestComplete, int64(i))},
			back,
		), nil
	case quest.LevelTooLow:
		return screen(text,
			render.Button{Label: fmt.Sprintf("Requires level %d", q.RequiredLevel), Action: action.Token(action.Noop)},
			back,
		), nil
	default:
		return screen(text,
			render.Button{Label: "Accept", Action: action.Token(action.NPCQuestAccept, int64(i))},
			back,
		), nil
	}
}

func (o *Orchestrator) npcQuestAccept(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	i := a.Index(0)
	n, err := o.npcAt(t, i)
	if err != nil {
		return nil, err
	}
	q, ok := o.graph.QuestForNPC(n.ID)
	if !ok {
		return npcMenu(i, n, fmt.Sprintf("%s has no quest for you.", render.Title(n.Name))), nil
	}

	switch err := quest.Accept(t.char, q); {
	case err == nil:
		t.dirty = true
		return npcMenu(i, n, "Quest accepted: "+q.Task), nil
	case errors.Is(err, quest.ErrLevelTooLow):
		return npcMenu(i, n, fmt.Sprintf("You need to be level %d for this quest.", q.RequiredLevel)), nil
	case errors.Is(err, quest.ErrAlreadyAccepted):
		return npcMenu(i, n, "You have already accepted this quest."), nil
	case errors.Is(err, quest.ErrAlreadyCompleted):
		return npcMenu(i, n, "You have already completed this quest."), nil
	default:
		return nil, err
	}
}

func (o *Orchestrator) npcQuestComplete(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	i := a.Index(0)
	n, err := o.npcAt(t, i)
	if err != nil {
		return nil, err
	}
	q, ok := o.graph.QuestForNPC(n.ID)
	if !ok {
		return npcMenu(i, n, fmt.Sprintf("%s has no quest for you.", render.Title(n.Name))), nil
	}

	res, err := quest.Complete(t.char, q)
	switch {
	case err == nil:
	case errors.Is(err, quest.ErrNotAccepted):
		return npcMenu(i, n, "You haven't accepted this quest."), nil
	case errors.Is(err, quest.ErrAlreadyCompleted):
		return npcMenu(i, n, "You have already completed this quest."), nil
	default:
		return nil, err
	}
	t.dirty = true

	lines := []string{fmt.Sprintf("Quest complete! You gain %d XP.", res.XP)}
	if rewards := o.rewardNames(res.Items); rewards != "" {
		lines = append(lines, "You receive: "+rewards+".")
	}
	if res.LevelsGained > 0 {
		lines = append(lines, fmt.Sprintf("You reached level %d!", t.char.Level))
	}
	return npcMenu(i, n, strings.Join(lines, "\n")), nil
}

func (o *Orchestrator) rewardNames(items []world.RewardItem) string {
	names := make([]string, 0, len(items))
	for _, r := range items {
		if it, ok := o.graph.Item(r.ItemID); ok {
			names = append(names, fmt.Sprintf("%d x %s", r.Count, it.Name))
		}
	}
	return strings.Join(names, ", ")
}

func (o *Orchestrator) getQuests(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	active := quest.Active(t.char, o.graph)
	if len(active) == 0 {
		return screen(msgNoQuests, backButton()), nil
	}
	lines := make([]string, 0, len(active))
	for _, aq := range active {
		lines = append(lines, fmt.Sprintf("%s (%s, %s)", aq.Quest.Task, render.Title(aq.NPCName), render.Title(aq.Location)))
	}
	return screen(render.Lines("Active quests:", bullet(lines)), backButton()), nil
}

func (o *Orchestrator) enemiesHere(t *turn) ([]*world.Enemy, error) {
	l, err := o.here(t)
	if err != nil {
		return nil, err
	}
	return o.graph.Enemies(l), nil
}

func (o *Orchestrator) enemiesScreen(t *turn, prefix string) (*render.Payload, error) {
	enemies, err := o.enemiesHere(t)
	if err != nil {
		return nil, err
	}
	if len(enemies) == 0 {
		return screen(render.Lines(prefix, msgNoEnemies), backButton()), nil
	}
	buttons := make([]render.Button, 0, len(enemies)+1)
	for i, e := range enemies {
		buttons = append(buttons, render.Button{
			Label:  fmt.Sprintf("%s (lvl %d)", render.Title(e.Name), e.Level),
			Action: action.Token(action.Fight, int64(i)),
		})
	}
	buttons = append(buttons, backButton())
	return screen(render.Lines(prefix, "Who do you want to fight?"), buttons...), nil
}

func (o *Orchestrator) getEnemies(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	return o.enemiesScreen(t, "")
}

func (o *Orchestrator) fight(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	enemies, err := o.enemiesHere(t)
	if err != nil {
		return nil, err
	}
	e, err := indexed(enemies, a.Index(0))
	if err != nil {
		return nil, err
	}

	out, err := o.combat.Attack(t.char, e)
	if errors.Is(err, combat.ErrDeath) {
		start := o.graph.Start()
		combat.Revive(t.char, start)
		t.dirty = true
		t.evict = true
		t.log.Info("Character died", "enemy_id", e.ID, "level", t.char.Level)
		return mainMenu(fmt.Sprintf(msgDied, "the "+render.Title(start.Name))), nil
	}
	if err != nil {
		return nil, err
	}
	t.dirty = true

	var lines []string
	name := render.Title(e.Name)
	if out.Won {
		lines = append(lines, fmt.Sprintf("You defeated the %s! You gain %d XP.", name, out.XP))
		if out.Loot != nil {
			lines = append(lines, fmt.Sprintf("You found: %s.", out.Loot.Name))
		} else {
			lines = append(lines, "You found nothing of value.")
		}
		if out.LevelsGained > 0 {
			lines = append(lines, fmt.Sprintf("You reached level %d!", t.char.Level))
		}
	} else {
		lines = append(lines, fmt.Sprintf("The %s drove you back. You lost %d HP.", name, out.Damage))
	}
	lines = append(lines, fmt.Sprintf("HP: %d/%d", t.char.HP, t.char.MaxHP))
	return o.enemiesScreen(t, strings.Join(lines, "\n"))
}

// noop backs disabled buttons. The adapter keeps the screen as it is.
func (o *Orchestrator) noop(ctx context.Context, t *turn, a action.Action) (*render.Payload, error) {
	return &render.Payload{Unchanged: true}, nil
}
