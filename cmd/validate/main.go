package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/dialog"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &WorldValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("World file is valid!")
}

type WorldValidator struct {
	errors   []string
	warnings []string
}

func (v *WorldValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	ext := filepath.Ext(filename)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("world file must have .yaml extension: %s", filepath.Base(filename))
	}

	atlas, err := world.LoadSeed(filename)
	if err != nil {
		return err
	}

	v.errors = nil
	v.warnings = nil

	// Reference integrity is the graph's job; the rest is authoring lint.
	graph, err := world.NewGraph(atlas)
	if err != nil {
		v.addError(err.Error())
	}
	v.validateAtlas(atlas)
	if graph != nil {
		v.checkReachable(graph)
	}

	for _, w := range v.warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *WorldValidator) validateAtlas(a *world.Atlas) {
	for _, l := range a.Locations {
		v.validateName("location", l.ID, l.Name)
		if strings.TrimSpace(l.Description) == "" {
			v.addError(fmt.Sprintf("location %d has no description", l.ID))
		}
	}

	for i := range a.NPCs {
		n := &a.NPCs[i]
		v.validateName("npc", n.ID, n.Name)
		for _, err := range dialog.CheckTree(n) {
			v.addError(err.Error())
		}
	}

	for _, e := range a.Enemies {
		v.validateName("enemy", e.ID, e.Name)
		if e.Level < 1 {
			v.addError(fmt.Sprintf("enemy %d has level %d, must be at least 1", e.ID, e.Level))
		}
	}

	for _, it := range a.Items {
		v.validateName("item", it.ID, it.Name)
		v.validateItem(it)
	}

	for _, q := range a.Quests {
		if strings.TrimSpace(q.Task) == "" {
			v.addError(fmt.Sprintf("quest %d has no task", q.ID))
		}
		if q.RequiredLevel < 1 {
			v.addError(fmt.Sprintf("quest %d has required level %d, must be at least 1", q.ID, q.RequiredLevel))
		}
		for _, r := range q.Reward.Items {
			if r.Count <= 0 {
				v.addError(fmt.Sprintf("quest %d rewards %d of item %d", q.ID, r.Count, r.ItemID))
			}
		}
	}
}

func (v *WorldValidator) validateItem(it world.Item) {
	if !it.Usable {
		if it.Effect.Kind != "" {
			v.addWarning(fmt.Sprintf("item %d has an effect but is not usable", it.ID))
		}
		return
	}
	switch it.Effect.Kind {
	case world.EffectHeal, world.EffectVigor:
	default:
		v.addError(fmt.Sprintf("usable item %d has unknown effect %q", it.ID, it.Effect.Kind))
		return
	}
	if it.Effect.Amount <= 0 {
		v.addError(fmt.Sprintf("item %d effect amount must be positive", it.ID))
	}
}

// checkReachable warns about locations no path from the start leads to.
func (v *WorldValidator) checkReachable(g *world.Graph) {
	seen := map[int64]bool{g.Start().ID: true}
	queue := []*world.Location{g.Start()}
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]
		for _, next := range g.Directions(l) {
			if !seen[next.ID] {
				seen[next.ID] = true
				queue = append(queue, next)
			}
		}
	}
	for _, l := range g.Locations() {
		if !seen[l.ID] {
			v.addWarning(fmt.Sprintf("location %d (%s) is unreachable from the start", l.ID, l.Name))
		}
	}
}

func (v *WorldValidator) validateName(kind string, id int64, name string) {
	if name == "" {
		v.addError(fmt.Sprintf("%s %d has no name", kind, id))
		return
	}
	if !isValidName(name) {
		v.addError(fmt.Sprintf("%s %d name '%s' should be lowercase words", kind, id, name))
	}
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, msg)
}

func (v *WorldValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, msg)
}

// Names are stored lowercase and title-cased on display.
func isValidName(name string) bool {
	matched, _ := regexp.MatchString(`^[a-z0-9]+( [a-z0-9']+)*$`, name)
	return matched
}
