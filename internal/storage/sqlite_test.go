package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/world"
	"github.com/jwebster45206/quest-engine/pkg/world/worldtest"
)

func openTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "quest.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "  ", slog.Default())
	assert.Error(t, err)
}

func TestOpenSQLite_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quest.db")
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s, err := OpenSQLite(context.Background(), path, logger)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(context.Background(), path, logger)
	require.NoError(t, err)
	defer s.Close()

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLite_SeedAndLoadWorld(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LoadWorld(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))

	seeded, err := s.SeedWorld(ctx, worldtest.Atlas())
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedWorld(ctx, worldtest.Atlas())
	require.NoError(t, err)
	assert.False(t, seeded, "second seed is a no-op")

	got, err := s.LoadWorld(ctx)
	require.NoError(t, err)
	assert.Equal(t, worldtest.Atlas(), got)

	_, err = world.NewGraph(got)
	require.NoError(t, err)
}

func TestSQLite_CharacterLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.SeedWorld(ctx, worldtest.Atlas())
	require.NoError(t, err)

	got, err := s.GetCharacter(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	c := worldtest.Character(t, 7)
	require.NoError(t, s.CreateCharacter(ctx, c))

	err = s.CreateCharacter(ctx, worldtest.Character(t, 7))
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	c.HP = 40
	c.XP = 30
	c.LocationID = worldtest.ForestID
	inventory.Add(c, worldtest.PeltID, 2)
	inventory.Add(c, worldtest.PotionID, 1)
	c.Journal = append(c.Journal, world.JournalEntry{QuestID: worldtest.ElderQuestID})
	require.NoError(t, s.SaveCharacter(ctx, c))

	got, err = s.GetCharacter(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Aria1", got.Name)
	assert.Equal(t, 40, got.HP)
	assert.Equal(t, 30, got.XP)
	assert.Equal(t, worldtest.ForestID, got.LocationID)
	assert.Equal(t, c.Inventory, got.Inventory, "inventory order is preserved")
	assert.Equal(t, c.Journal, got.Journal)

	// Using the last potion removes the row on the next save.
	c.Inventory = c.Inventory[:1]
	c.Journal[0].Completed = true
	require.NoError(t, s.SaveCharacter(ctx, c))

	got, err = s.GetCharacter(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, got.Inventory, 1)
	assert.True(t, got.Journal[0].Completed)
}

func TestSQLite_SaveUnknownCharacter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.SeedWorld(ctx, worldtest.Atlas())
	require.NoError(t, err)

	err = s.SaveCharacter(ctx, worldtest.Character(t, 99))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_RejectsUnknownLocation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.SeedWorld(ctx, worldtest.Atlas())
	require.NoError(t, err)

	c := worldtest.Character(t, 3)
	c.LocationID = 404
	assert.Error(t, s.CreateCharacter(ctx, c), "foreign keys are enforced")
}

func TestSQLite_SeedFileRoundTrip(t *testing.T) {
	atlas, err := world.LoadSeed("../../data/world.yaml")
	require.NoError(t, err)

	s := openTestStore(t)
	ctx := context.Background()
	_, err = s.SeedWorld(ctx, atlas)
	require.NoError(t, err)

	got, err := s.LoadWorld(ctx)
	require.NoError(t, err)
	assert.Equal(t, atlas, got)
}

func TestUpSection(t *testing.T) {
	in := "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id INT);\n", upSection(in))
	assert.Equal(t, "SELECT 1;", upSection("SELECT 1;"))
}
