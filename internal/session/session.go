// Package session keeps per-player conversational state between inbound
// events and serialises events for the same player.
package session

import (
	"context"
	"time"

	"github.com/jwebster45206/quest-engine/pkg/dialog"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// DefaultTTL is how long an idle session survives.
const DefaultTTL = 24 * time.Hour

// Session is everything the engine remembers about a player that isn't part of
// the persistent character. Losing it only costs the player a menu re-render.
type Session struct {
	PlayerID int64 `json:"player_id"`
	// Character is a cached snapshot; the World Store stays authoritative.
	Character *world.Character `json:"character,omitempty"`
	// Cursor is set only while the player is mid-conversation.
	Cursor *dialog.Cursor `json:"cursor,omitempty"`
	// MessageContext identifies the screen buttons are expected to come from.
	MessageContext string    `json:"message_context,omitempty"`
	AwaitingName   bool      `json:"awaiting_name,omitempty"`
	LastSeen       time.Time `json:"last_seen"`
}

// New returns an empty session for a player.
func New(playerID int64) *Session {
	return &Session{PlayerID: playerID, LastSeen: time.Now().UTC()}
}

// Store persists sessions. Load returns nil, nil when no session exists.
type Store interface {
	Load(ctx context.Context, playerID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, playerID int64) error
	Ping(ctx context.Context) error
	Close() error
}

// Locker serialises work per key. The returned unlock func is safe to call
// more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
