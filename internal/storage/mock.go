package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

// MockStorage is an in-memory Storage for tests.
type MockStorage struct {
	mu         sync.RWMutex
	atlas      []byte
	characters map[int64]*world.Character
	pingError  error
	saveError  error
	saves      int
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{characters: make(map[int64]*world.Character)}
}

// SetPingError configures the mock to fail on ping with the given error.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes SaveCharacter and CreateCharacter fail with err.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Saves reports how many times SaveCharacter succeeded.
func (m *MockStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) SeedWorld(ctx context.Context, a *world.Atlas) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.atlas != nil {
		return false, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("failed to marshal atlas: %w", err)
	}
	m.atlas = data
	return true, nil
}

func (m *MockStorage) LoadWorld(ctx context.Context) (*world.Atlas, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.atlas == nil {
		return nil, fmt.Errorf("world: %w", ErrNotFound)
	}
	var a world.Atlas
	if err := json.Unmarshal(m.atlas, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal atlas: %w", err)
	}
	return &a, nil
}

func (m *MockStorage) GetCharacter(ctx context.Context, id int64) (*world.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.characters[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (m *MockStorage) CreateCharacter(ctx context.Context, c *world.Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	if _, ok := m.characters[c.ID]; ok {
		return fmt.Errorf("character %d: %w", c.ID, ErrAlreadyExists)
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	m.characters[c.ID] = c.Clone()
	return nil
}

func (m *MockStorage) SaveCharacter(ctx context.Context, c *world.Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	if _, ok := m.characters[c.ID]; !ok {
		return fmt.Errorf("character %d: %w", c.ID, ErrNotFound)
	}
	c.UpdatedAt = time.Now().UTC()
	m.characters[c.ID] = c.Clone()
	m.saves++
	return nil
}
