// Package action encodes and decodes the opaque tokens carried by buttons.
//
// A token is a verb optionally followed by colon separated integer
// arguments, e.g. "npc_dialog:0:3". Positional arguments index into the list
// that was rendered on the screen the button came from and must be
// re-validated by the caller.
package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidToken = errors.New("invalid action token")

type Verb string

const (
	MainMenu         Verb = "main_menu"
	CreateCharacter  Verb = "create_character"
	GetLocation      Verb = "get_location"
	GetStats         Verb = "get_stats"
	GetInventory     Verb = "get_inventory"
	GetUsableItems   Verb = "get_usable_items"
	UseItem          Verb = "use_item"
	ChangeLocation   Verb = "change_location"
	SetLocation      Verb = "set_location"
	GetNPCs          Verb = "get_npcs"
	InteractWithNPC  Verb = "interact_with_npc"
	NPCDialog        Verb = "npc_dialog"
	NPCQuest         Verb = "npc_quest"
	NPCQuestAccept   Verb = "npc_quest_accept"
	NPCQuestComplete Verb = "npc_quest_complete"
	GetQuests        Verb = "get_quests"
	GetEnemies       Verb = "get_enemies"
	Fight            Verb = "fight"
	Noop             Verb = "noop"
)

const sep = ":"

// arity is the number of integer arguments each verb takes.
var arity = map[Verb]int{
	MainMenu:         0,
	CreateCharacter:  0,
	GetLocation:      0,
	GetStats:         0,
	GetInventory:     0,
	GetUsableItems:   0,
	UseItem:          1,
	ChangeLocation:   0,
	SetLocation:      1,
	GetNPCs:          0,
	InteractWithNPC:  1,
	NPCDialog:        2,
	NPCQuest:         1,
	NPCQuestAccept:   1,
	NPCQuestComplete: 1,
	GetQuests:        0,
	GetEnemies:       0,
	Fight:            1,
	Noop:             0,
}

// Action is a decoded token.
type Action struct {
	Verb Verb
	Args []int64
}

// Arg returns the i-th argument, or zero when absent.
func (a Action) Arg(i int) int64 {
	if i < 0 || i >= len(a.Args) {
		return 0
	}
	return a.Args[i]
}

// Index returns the i-th argument as a list index.
func (a Action) Index(i int) int {
	return int(a.Arg(i))
}

// RequiresCharacter reports whether the verb can only run for a player with a
// live character. Only the menu and creation entry points are exempt.
func (v Verb) RequiresCharacter() bool {
	switch v {
	case MainMenu, CreateCharacter:
		return false
	}
	return true
}

// Parse decodes a token. Unknown verbs, wrong arity and non-numeric or
// negative arguments are rejected.
func Parse(token string) (Action, error) {
	if token == "" {
		return Action{}, fmt.Errorf("empty token: %w", ErrInvalidToken)
	}
	parts := strings.Split(token, sep)
	v := Verb(parts[0])
	n, ok := arity[v]
	if !ok {
		return Action{}, fmt.Errorf("unknown verb %q: %w", parts[0], ErrInvalidToken)
	}
	if len(parts)-1 != n {
		return Action{}, fmt.Errorf("verb %s takes %d args, got %d: %w", v, n, len(parts)-1, ErrInvalidToken)
	}
	a := Action{Verb: v}
	if n > 0 {
		a.Args = make([]int64, 0, n)
	}
	for _, p := range parts[1:] {
		x, err := strconv.ParseInt(p, 10, 64)
		if err != nil || x < 0 {
			return Action{}, fmt.Errorf("bad argument %q for %s: %w", p, v, ErrInvalidToken)
		}
		a.Args = append(a.Args, x)
	}
	return a, nil
}

// Token encodes a verb and its arguments.
func Token(v Verb, args ...int64) string {
	if len(args) == 0 {
		return string(v)
	}
	var b strings.Builder
	b.WriteString(string(v))
	for _, a := range args {
		b.WriteString(sep)
		b.WriteString(strconv.FormatInt(a, 10))
	}
	return b.String()
}

// String re-encodes the action.
func (a Action) String() string {
	return Token(a.Verb, a.Args...)
}
