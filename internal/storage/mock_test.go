package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/world/worldtest"
)

func TestMockStorage_CopiesOnReadAndWrite(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	c := worldtest.Character(t, 1)
	if err := m.CreateCharacter(ctx, c); err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	c.HP = 1

	got, err := m.GetCharacter(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.HP == 1 {
		t.Error("stored character aliased the caller's value")
	}

	got.HP = 2
	again, _ := m.GetCharacter(ctx, 1)
	if again.HP == 2 {
		t.Error("returned character aliased the stored value")
	}

	if err := m.CreateCharacter(ctx, c); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate create = %v, want ErrAlreadyExists", err)
	}
	if err := m.SaveCharacter(ctx, worldtest.Character(t, 2)); !errors.Is(err, ErrNotFound) {
		t.Errorf("save unknown = %v, want ErrNotFound", err)
	}
	if none, err := m.GetCharacter(ctx, 2); none != nil || err != nil {
		t.Errorf("GetCharacter missing = %v, %v", none, err)
	}
}

func TestMockStorage_World(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	if _, err := m.LoadWorld(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadWorld before seed = %v", err)
	}
	if ok, err := m.SeedWorld(ctx, worldtest.Atlas()); !ok || err != nil {
		t.Fatalf("SeedWorld = %v, %v", ok, err)
	}
	if ok, _ := m.SeedWorld(ctx, worldtest.Atlas()); ok {
		t.Error("second seed should be a no-op")
	}
	a, err := m.LoadWorld(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Locations) != len(worldtest.Atlas().Locations) {
		t.Errorf("locations = %d", len(a.Locations))
	}
}
