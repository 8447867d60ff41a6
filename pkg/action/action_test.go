package action

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		token string
		verb  Verb
		args  []int64
	}{
		{"main_menu", MainMenu, nil},
		{"get_stats", GetStats, nil},
		{"use_item:2", UseItem, []int64{2}},
		{"set_location:14", SetLocation, []int64{14}},
		{"npc_dialog:0:3", NPCDialog, []int64{0, 3}},
		{"fight:1", Fight, []int64{1}},
		{"noop", Noop, nil},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			a, err := Parse(tt.token)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.token, err)
			}
			if a.Verb != tt.verb {
				t.Errorf("verb = %s, want %s", a.Verb, tt.verb)
			}
			if len(a.Args) != len(tt.args) {
				t.Fatalf("args = %v, want %v", a.Args, tt.args)
			}
			for i := range tt.args {
				if a.Args[i] != tt.args[i] {
					t.Errorf("arg %d = %d, want %d", i, a.Args[i], tt.args[i])
				}
			}
			if got := a.String(); got != tt.token {
				t.Errorf("String() = %q, want %q", got, tt.token)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, token := range []string{
		"",
		"dance",
		"main_menu:1",
		"use_item",
		"npc_dialog:1",
		"npc_dialog:1:2:3",
		"fight:x",
		"fight:-1",
		"fight:",
	} {
		t.Run(token, func(t *testing.T) {
			if _, err := Parse(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidToken", token, err)
			}
		})
	}
}

func TestRequiresCharacter(t *testing.T) {
	for v := range arity {
		want := v != MainMenu && v != CreateCharacter
		if got := v.RequiresCharacter(); got != want {
			t.Errorf("%s.RequiresCharacter() = %v, want %v", v, got, want)
		}
	}
}

func TestArg_OutOfRange(t *testing.T) {
	a := Action{Verb: Fight, Args: []int64{4}}
	if a.Arg(1) != 0 || a.Arg(-1) != 0 {
		t.Error("out of range Arg should be zero")
	}
	if a.Index(0) != 4 {
		t.Errorf("Index(0) = %d, want 4", a.Index(0))
	}
}
