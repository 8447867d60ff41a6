// Package game turns inbound chat events into screens. It owns the session
// lifecycle, the per-player lock and the single guard every action passes
// through before it touches game state.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/session"
	"github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/pkg/action"
	"github.com/jwebster45206/quest-engine/pkg/combat"
	"github.com/jwebster45206/quest-engine/pkg/render"
	"github.com/jwebster45206/quest-engine/pkg/textfilter"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

var (
	ErrNoActiveCharacter   = errors.New("no active character")
	ErrStaleMessageContext = errors.New("stale message context")
	ErrIndexOutOfRange     = errors.New("index out of range")
)

const (
	StartCommand   = "/start"
	DefaultTimeout = 5 * time.Second
)

// Event is one inbound message from the transport. Exactly one of Text and
// Action is expected to be set.
type Event struct {
	PlayerID       int64  `json:"player_id"`
	Text           string `json:"text,omitempty"`
	Action         string `json:"action,omitempty"`
	MessageContext string `json:"message_context,omitempty"`
}

type Config struct {
	// Timeout bounds lock acquisition and all I/O for one event.
	Timeout time.Duration
	StartHP int
}

type Orchestrator struct {
	graph    *world.Graph
	store    storage.Storage
	sessions session.Store
	locker   session.Locker
	combat   *combat.Resolver
	cfg      Config
	logger   *slog.Logger

	names      *textfilter.NameFilter
	newContext func() string
	handlers   map[action.Verb]handlerFunc
}

// turn carries the state of one event through dispatch.
type turn struct {
	sess  *session.Session
	char  *world.Character
	event Event
	log   *slog.Logger
	// dirty means char changed and must be written to the World Store.
	dirty bool
	// evict drops the cached character after the turn.
	evict bool
}

type handlerFunc func(ctx context.Context, t *turn, a action.Action) (*render.Payload, error)

func New(
	graph *world.Graph,
	store storage.Storage,
	sessions session.Store,
	locker session.Locker,
	resolver *combat.Resolver,
	cfg Config,
	log *slog.Logger,
) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.StartHP <= 0 {
		cfg.StartHP = world.DefaultHP
	}
	o := &Orchestrator{
		graph:      graph,
		store:      store,
		sessions:   sessions,
		locker:     locker,
		combat:     resolver,
		cfg:        cfg,
		logger:     log,
		names:      textfilter.NewNameFilter(),
		newContext: uuid.NewString,
	}
	o.handlers = o.routes()
	return o
}

// Handle processes one event. Events for the same player are serialised. The
// returned error is non-nil only when the event could not be processed at all
// (lock not acquired before the deadline); game-level failures come back as a
// payload.
func (o *Orchestrator) Handle(ctx context.Context, ev Event) (*render.Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	log := logger.WithPlayer(o.logger, ev.PlayerID)

	unlock, err := o.locker.Lock(ctx, strconv.FormatInt(ev.PlayerID, 10))
	if err != nil {
		log.Warn("Failed to acquire player lock", "error", err)
		return nil, fmt.Errorf("acquire player lock: %w", err)
	}
	defer unlock()

	sess, err := o.sessions.Load(ctx, ev.PlayerID)
	if err != nil {
		// A lost session only costs the player a re-render.
		log.Warn("Failed to load session, starting fresh", "error", err)
	}
	if sess == nil {
		sess = session.New(ev.PlayerID)
	}

	t := &turn{sess: sess, event: ev, log: log}
	p := o.dispatch(ctx, t)

	if t.dirty && t.char != nil {
		if err := o.store.SaveCharacter(ctx, t.char); err != nil {
			log.Error("Failed to save character", "error", err)
			t.evict = true
			p = o.failure(t)
		}
	}
	if t.evict {
		sess.Character = nil
	} else if t.char != nil {
		sess.Character = t.char.Clone()
	}

	// Every rendered screen gets its own context so only its buttons are
	// accepted. An unchanged payload leaves the previous screen current.
	if !p.Unchanged {
		o.mint(t)
	}

	sess.LastSeen = time.Now().UTC()
	if err := o.sessions.Save(ctx, sess); err != nil {
		log.Error("Failed to save session", "error", err)
	}

	if !p.Unchanged {
		p.MessageContext = sess.MessageContext
	}
	return p, nil
}

// dispatch routes the event and turns a panic into the generic failure screen.
func (o *Orchestrator) dispatch(ctx context.Context, t *turn) (p *render.Payload) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("Recovered from panic", "panic", r, "stack", string(debug.Stack()))
			t.dirty = false
			t.evict = true
			p = o.failure(t)
		}
	}()
	if t.event.Action != "" {
		return o.handleAction(ctx, t)
	}
	return o.handleText(ctx, t)
}

func (o *Orchestrator) handleText(ctx context.Context, t *turn) *render.Payload {
	text := strings.TrimSpace(t.event.Text)

	if text == StartCommand {
		t.sess.AwaitingName = false
		t.sess.Cursor = nil
		c, err := o.character(ctx, t)
		if err != nil {
			t.log.Error("Failed to load character", "error", err)
			return o.failure(t)
		}
		if c == nil {
			p := screen(msgWelcomeNew, createButton())
			p.Fresh = true
			return p
		}
		p := mainMenu(welcome(c.Name))
		p.Fresh = true
		return p
	}

	if t.sess.AwaitingName {
		return o.createCharacter(ctx, t, text)
	}
	return screen(msgHelp)
}

func (o *Orchestrator) createCharacter(ctx context.Context, t *turn, name string) *render.Payload {
	if !world.ValidName(name) {
		return screen(msgInvalidName)
	}
	if !o.names.Allowed(name) {
		return screen(msgNameNotAllowed)
	}

	existing, err := o.character(ctx, t)
	if err != nil {
		t.log.Error("Failed to load character", "error", err)
		return o.failure(t)
	}
	if existing != nil {
		t.sess.AwaitingName = false
		return mainMenu(msgAlreadyCreated)
	}

	c, err := world.NewCharacter(t.event.PlayerID, name, o.cfg.StartHP, o.graph.Start().ID)
	if err != nil {
		return screen(msgInvalidName)
	}
	if err := o.store.CreateCharacter(ctx, c); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			t.sess.AwaitingName = false
			t.sess.Character = nil
			return mainMenu(msgAlreadyCreated)
		}
		t.log.Error("Failed to create character", "error", err)
		return o.failure(t)
	}
	t.log.Info("Character created", "name", c.Name)

	t.char = c
	t.sess.AwaitingName = false
	p := mainMenu(created(c.Name))
	p.Fresh = true
	return p
}

func (o *Orchestrator) handleAction(ctx context.Context, t *turn) *render.Payload {
	a, err := action.Parse(t.event.Action)
	if err != nil {
		t.log.Warn("Rejected action token", "token", t.event.Action, "error", err)
		return screen(msgUnknownAction, backButton())
	}

	if !a.Verb.RequiresCharacter() {
		return o.handleEntry(ctx, t, a)
	}

	if err := o.guard(ctx, t); err != nil {
		switch {
		case errors.Is(err, ErrNoActiveCharacter):
			return screen(msgNoCharacter, createButton())
		case errors.Is(err, ErrStaleMessageContext):
			return o.stale(t)
		default:
			t.log.Error("Guard failed", "error", err)
			return o.failure(t)
		}
	}

	if a.Verb != action.NPCDialog {
		t.sess.Cursor = nil
	}

	h, ok := o.handlers[a.Verb]
	if !ok {
		return screen(msgUnknownAction, backButton())
	}
	p, err := h(ctx, t, a)
	if err != nil {
		if errors.Is(err, ErrIndexOutOfRange) || errors.Is(err, ErrStaleMessageContext) {
			t.log.Debug("Stale selection", "action", a.String(), "error", err)
			t.dirty = false
			return o.stale(t)
		}
		t.log.Error("Action failed", "action", a.String(), "error", err)
		t.dirty = false
		t.evict = true
		return o.failure(t)
	}
	return p
}

// handleEntry serves the verbs that work without a character.
func (o *Orchestrator) handleEntry(ctx context.Context, t *turn, a action.Action) *render.Payload {
	t.sess.Cursor = nil
	c, err := o.character(ctx, t)
	if err != nil {
		t.log.Error("Failed to load character", "error", err)
		return o.failure(t)
	}
	t.char = c

	switch a.Verb {
	case action.CreateCharacter:
		if c != nil {
			return mainMenu(msgAlreadyCreated)
		}
		t.sess.AwaitingName = true
		return screen(msgAskName)
	default:
		if c == nil {
			return screen(msgWelcomeNew, createButton())
		}
		return mainMenu("")
	}
}

// guard is the single check every character action passes: the player must
// have a character and the button must come from the current screen.
func (o *Orchestrator) guard(ctx context.Context, t *turn) error {
	c, err := o.character(ctx, t)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNoActiveCharacter
	}
	t.char = c
	if t.sess.MessageContext == "" || t.event.MessageContext != t.sess.MessageContext {
		return ErrStaleMessageContext
	}
	return nil
}

// character returns a working copy of the player's character, from the
// session cache when possible. It returns nil, nil if there is none.
func (o *Orchestrator) character(ctx context.Context, t *turn) (*world.Character, error) {
	if t.sess.Character != nil {
		return t.sess.Character.Clone(), nil
	}
	c, err := o.store.GetCharacter(ctx, t.event.PlayerID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (o *Orchestrator) mint(t *turn) {
	t.sess.MessageContext = o.newContext()
}

func (o *Orchestrator) stale(t *turn) *render.Payload {
	t.sess.Cursor = nil
	return mainMenu(msgStale)
}

func (o *Orchestrator) failure(t *turn) *render.Payload {
	t.sess.Cursor = nil
	return screen(msgFailure, backButton())
}
