// Package storage is the authoritative store for the static world and for
// player characters.
package storage

import (
	"context"
	"errors"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Storage defines every persistence operation the engine needs.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Static world. SeedWorld writes the atlas only when no world is stored
	// yet and reports whether it did.
	SeedWorld(ctx context.Context, a *world.Atlas) (bool, error)
	LoadWorld(ctx context.Context) (*world.Atlas, error)

	// Characters. GetCharacter returns nil, nil when the player has none.
	GetCharacter(ctx context.Context, id int64) (*world.Character, error)
	CreateCharacter(ctx context.Context, c *world.Character) error
	SaveCharacter(ctx context.Context, c *world.Character) error
}
