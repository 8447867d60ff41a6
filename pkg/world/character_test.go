package world

import "testing"

func TestValidName(t *testing.T) {
	tests := map[string]bool{
		"Aria1":     true,
		"bob":       true,
		"123":       true,
		"":          false,
		"Aria 1":    false,
		"Ária":      false,
		"name!":     false,
		"ab_cd":     false,
		"line\nbrk": false,
	}
	for name, want := range tests {
		if got := ValidName(name); got != want {
			t.Errorf("ValidName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewCharacter(t *testing.T) {
	c, err := NewCharacter(7, "Aria1", 0, 3)
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}
	if c.Level != 1 || c.HP != DefaultHP || c.MaxHP != DefaultHP || c.LocationID != 3 {
		t.Errorf("NewCharacter() = %+v", c)
	}

	if _, err := NewCharacter(7, "bad name", 10, 3); err == nil {
		t.Error("NewCharacter() with invalid name should fail")
	}
}

func TestCharacter_GrantXP(t *testing.T) {
	c := &Character{Level: 1}

	if gained := c.GrantXP(50); gained != 0 || c.Level != 1 || c.XP != 50 {
		t.Fatalf("GrantXP(50): gained=%d level=%d xp=%d", gained, c.Level, c.XP)
	}
	// 50 + 300 = 350: level 1->2 costs 100, 2->3 costs 200, leaving 50.
	if gained := c.GrantXP(300); gained != 2 || c.Level != 3 || c.XP != 50 {
		t.Fatalf("GrantXP(300): gained=%d level=%d xp=%d", gained, c.Level, c.XP)
	}
	if gained := c.GrantXP(-5); gained != 0 || c.XP != 50 {
		t.Errorf("GrantXP(-5) changed state: gained=%d xp=%d", gained, c.XP)
	}
}

func TestCharacter_CloneIsDeep(t *testing.T) {
	c := &Character{
		Inventory: []InventoryEntry{{ItemID: 1, Count: 2}},
		Journal:   []JournalEntry{{QuestID: 1}},
	}
	cp := c.Clone()
	cp.Inventory[0].Count = 0
	cp.Journal[0].Completed = true

	if c.Inventory[0].Count != 2 || c.Journal[0].Completed {
		t.Error("Clone() shares slices with the original")
	}
	if (*Character)(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}
