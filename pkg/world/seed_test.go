package world

import "testing"

func TestLoadSeed_BundledWorld(t *testing.T) {
	a, err := LoadSeed("../../data/world.yaml")
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	if _, err := NewGraph(a); err != nil {
		t.Fatalf("bundled world does not link: %v", err)
	}
	if len(a.Locations) == 0 || len(a.NPCs) == 0 {
		t.Errorf("bundled world looks empty: %d locations, %d npcs", len(a.Locations), len(a.NPCs))
	}
}

func TestParseSeed_RejectsUnknownFields(t *testing.T) {
	data := []byte("start_location_id: 1\nlocatoins: []\n")
	if _, err := ParseSeed(data); err == nil {
		t.Error("ParseSeed() expected error for misspelled field")
	}
}

func TestParseSeed_TerminalResponses(t *testing.T) {
	data := []byte(`
start_location_id: 1
locations:
  - id: 1
    name: a
    description: b
    directions: []
    npcs: [1]
npcs:
  - id: 1
    name: n
    stages:
      - id: 1
        text: hi
        responses:
          - text: loop
            next_stage_id: 1
          - text: bye
`)
	a, err := ParseSeed(data)
	if err != nil {
		t.Fatalf("ParseSeed() error = %v", err)
	}
	stage, ok := a.NPCs[0].Stage(1)
	if !ok {
		t.Fatal("stage 1 missing")
	}
	if stage.Responses[0].Terminal() || !stage.Responses[1].Terminal() {
		t.Errorf("terminal flags wrong: %+v", stage.Responses)
	}
	if a.NPCs[0].Entry() != DefaultEntryStageID {
		t.Errorf("Entry() = %d, want default", a.NPCs[0].Entry())
	}
}
