package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwebster45206/quest-engine/internal/storage/migrations"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// SQLiteStorage implements Storage on a single SQLite database file.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Storage = (*SQLiteStorage)(nil)

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// embedded migrations.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("SQLite storage opened", "path", path)
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// inTx runs fn in a transaction, retrying the whole transaction while the
// database is busy.
func (s *SQLiteStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return retryBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

// World operations

func (s *SQLiteStorage) SeedWorld(ctx context.Context, a *world.Atlas) (bool, error) {
	seeded := false
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM world_meta`).Scan(&n); err != nil {
			return fmt.Errorf("check world: %w", err)
		}
		if n > 0 {
			return nil
		}
		if err := insertWorld(ctx, tx, a); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed world: %w", err)
	}
	if seeded {
		s.logger.Info("World seeded",
			"locations", len(a.Locations),
			"npcs", len(a.NPCs),
			"quests", len(a.Quests),
			"enemies", len(a.Enemies),
			"items", len(a.Items),
		)
	}
	return seeded, nil
}

func insertWorld(ctx context.Context, tx *sql.Tx, a *world.Atlas) error {
	exec := func(query string, args ...any) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}

	for i, l := range a.Locations {
		if err := exec(`INSERT INTO locations (id, name, description, position) VALUES (?, ?, ?, ?)`,
			l.ID, l.Name, l.Description, i); err != nil {
			return fmt.Errorf("insert location %d: %w", l.ID, err)
		}
	}
	for _, l := range a.Locations {
		for i, to := range l.Directions {
			if err := exec(`INSERT INTO location_directions (location_id, target_id, position) VALUES (?, ?, ?)`,
				l.ID, to, i); err != nil {
				return fmt.Errorf("insert direction %d->%d: %w", l.ID, to, err)
			}
		}
	}
	for _, it := range a.Items {
		if err := exec(`INSERT INTO items (id, name, usable, effect_kind, effect_amount) VALUES (?, ?, ?, ?, ?)`,
			it.ID, it.Name, boolInt(it.Usable), string(it.Effect.Kind), it.Effect.Amount); err != nil {
			return fmt.Errorf("insert item %d: %w", it.ID, err)
		}
	}
	for i, n := range a.NPCs {
		if err := exec(`INSERT INTO npcs (id, name, entry_stage_id, quest_id, position) VALUES (?, ?, ?, ?, ?)`,
			n.ID, n.Name, n.EntryStageID, n.QuestID, i); err != nil {
			return fmt.Errorf("insert npc %d: %w", n.ID, err)
		}
		for j, st := range n.Stages {
			if err := exec(`INSERT INTO dialog_stages (npc_id, stage_id, text, position) VALUES (?, ?, ?, ?)`,
				n.ID, st.ID, st.Text, j); err != nil {
				return fmt.Errorf("insert npc %d stage %d: %w", n.ID, st.ID, err)
			}
		}
		for _, st := range n.Stages {
			for k, r := range st.Responses {
				if err := exec(`INSERT INTO dialog_responses (npc_id, stage_id, position, text, next_stage_id) VALUES (?, ?, ?, ?, ?)`,
					n.ID, st.ID, k, r.Text, r.NextStageID); err != nil {
					return fmt.Errorf("insert npc %d stage %d response %d: %w", n.ID, st.ID, k, err)
				}
			}
		}
	}
	for _, l := range a.Locations {
		for i, id := range l.NPCs {
			if err := exec(`INSERT INTO location_npcs (location_id, npc_id, position) VALUES (?, ?, ?)`,
				l.ID, id, i); err != nil {
				return fmt.Errorf("insert location %d npc %d: %w", l.ID, id, err)
			}
		}
	}
	for i, q := range a.Quests {
		if err := exec(`INSERT INTO quests (id, npc_id, required_level, task, reward_xp, position) VALUES (?, ?, ?, ?, ?, ?)`,
			q.ID, q.NPCID, q.RequiredLevel, q.Task, q.Reward.XP, i); err != nil {
			return fmt.Errorf("insert quest %d: %w", q.ID, err)
		}
		for j, r := range q.Reward.Items {
			if err := exec(`INSERT INTO quest_rewards (quest_id, item_id, count, position) VALUES (?, ?, ?, ?)`,
				q.ID, r.ItemID, r.Count, j); err != nil {
				return fmt.Errorf("insert quest %d reward: %w", q.ID, err)
			}
		}
	}
	for i, e := range a.Enemies {
		if err := exec(`INSERT INTO enemies (id, name, level, loot_item_id, position) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.Level, e.LootItemID, i); err != nil {
			return fmt.Errorf("insert enemy %d: %w", e.ID, err)
		}
	}
	for _, l := range a.Locations {
		for i, id := range l.Enemies {
			if err := exec(`INSERT INTO location_enemies (location_id, enemy_id, position) VALUES (?, ?, ?)`,
				l.ID, id, i); err != nil {
				return fmt.Errorf("insert location %d enemy %d: %w", l.ID, id, err)
			}
		}
	}
	if err := exec(`INSERT INTO world_meta (id, start_location_id, seeded_at) VALUES (1, ?, ?)`,
		a.StartLocationID, toMillis(time.Now())); err != nil {
		return fmt.Errorf("insert world meta: %w", err)
	}
	return nil
}

// LoadWorld reads the stored atlas back in seed order. It returns ErrNotFound
// when the world was never seeded.
func (s *SQLiteStorage) LoadWorld(ctx context.Context) (*world.Atlas, error) {
	var a world.Atlas
	err := retryBusy(ctx, func() error {
		a = world.Atlas{}
		return s.loadWorld(ctx, &a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStorage) loadWorld(ctx context.Context, a *world.Atlas) error {
	err := s.db.QueryRowContext(ctx, `SELECT start_location_id FROM world_meta WHERE id = 1`).Scan(&a.StartLocationID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("world: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load world meta: %w", err)
	}

	locIdx := map[int64]int{}
	if err := s.each(ctx, `SELECT id, name, description FROM locations ORDER BY position`, func(rows *sql.Rows) error {
		var l world.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Description); err != nil {
			return err
		}
		locIdx[l.ID] = len(a.Locations)
		a.Locations = append(a.Locations, l)
		return nil
	}); err != nil {
		return fmt.Errorf("load locations: %w", err)
	}

	links := []struct {
		query string
		add   func(l *world.Location, id int64)
	}{
		{`SELECT location_id, target_id FROM location_directions ORDER BY location_id, position`,
			func(l *world.Location, id int64) { l.Directions = append(l.Directions, id) }},
		{`SELECT location_id, npc_id FROM location_npcs ORDER BY location_id, position`,
			func(l *world.Location, id int64) { l.NPCs = append(l.NPCs, id) }},
		{`SELECT location_id, enemy_id FROM location_enemies ORDER BY location_id, position`,
			func(l *world.Location, id int64) { l.Enemies = append(l.Enemies, id) }},
	}
	for _, link := range links {
		if err := s.each(ctx, link.query, func(rows *sql.Rows) error {
			var from, to int64
			if err := rows.Scan(&from, &to); err != nil {
				return err
			}
			i, ok := locIdx[from]
			if !ok {
				return fmt.Errorf("link from unknown location %d", from)
			}
			link.add(&a.Locations[i], to)
			return nil
		}); err != nil {
			return fmt.Errorf("load location links: %w", err)
		}
	}

	if err := s.each(ctx, `SELECT id, name, usable, effect_kind, effect_amount FROM items ORDER BY id`, func(rows *sql.Rows) error {
		var it world.Item
		var usable int
		var kind string
		if err := rows.Scan(&it.ID, &it.Name, &usable, &kind, &it.Effect.Amount); err != nil {
			return err
		}
		it.Usable = usable != 0
		it.Effect.Kind = world.EffectKind(kind)
		a.Items = append(a.Items, it)
		return nil
	}); err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	npcIdx := map[int64]int{}
	if err := s.each(ctx, `SELECT id, name, entry_stage_id, quest_id FROM npcs ORDER BY position`, func(rows *sql.Rows) error {
		var n world.NPC
		if err := rows.Scan(&n.ID, &n.Name, &n.EntryStageID, &n.QuestID); err != nil {
			return err
		}
		npcIdx[n.ID] = len(a.NPCs)
		a.NPCs = append(a.NPCs, n)
		return nil
	}); err != nil {
		return fmt.Errorf("load npcs: %w", err)
	}

	type stageKey struct{ npc, stage int64 }
	stageIdx := map[stageKey]int{}
	if err := s.each(ctx, `SELECT npc_id, stage_id, text FROM dialog_stages ORDER BY npc_id, position`, func(rows *sql.Rows) error {
		var npcID int64
		var st world.Stage
		if err := rows.Scan(&npcID, &st.ID, &st.Text); err != nil {
			return err
		}
		i, ok := npcIdx[npcID]
		if !ok {
			return fmt.Errorf("stage for unknown npc %d", npcID)
		}
		stageIdx[stageKey{npcID, st.ID}] = len(a.NPCs[i].Stages)
		a.NPCs[i].Stages = append(a.NPCs[i].Stages, st)
		return nil
	}); err != nil {
		return fmt.Errorf("load dialog stages: %w", err)
	}

	if err := s.each(ctx, `SELECT npc_id, stage_id, text, next_stage_id FROM dialog_responses ORDER BY npc_id, stage_id, position`, func(rows *sql.Rows) error {
		var npcID, stageID int64
		var r world.Response
		if err := rows.Scan(&npcID, &stageID, &r.Text, &r.NextStageID); err != nil {
			return err
		}
		j, ok := stageIdx[stageKey{npcID, stageID}]
		if !ok {
			return fmt.Errorf("response for unknown stage %d/%d", npcID, stageID)
		}
		st := &a.NPCs[npcIdx[npcID]].Stages[j]
		st.Responses = append(st.Responses, r)
		return nil
	}); err != nil {
		return fmt.Errorf("load dialog responses: %w", err)
	}

	questIdx := map[int64]int{}
	if err := s.each(ctx, `SELECT id, npc_id, required_level, task, reward_xp FROM quests ORDER BY position`, func(rows *sql.Rows) error {
		var q world.Quest
		if err := rows.Scan(&q.ID, &q.NPCID, &q.RequiredLevel, &q.Task, &q.Reward.XP); err != nil {
			return err
		}
		questIdx[q.ID] = len(a.Quests)
		a.Quests = append(a.Quests, q)
		return nil
	}); err != nil {
		return fmt.Errorf("load quests: %w", err)
	}

	if err := s.each(ctx, `SELECT quest_id, item_id, count FROM quest_rewards ORDER BY quest_id, position`, func(rows *sql.Rows) error {
		var questID int64
		var r world.RewardItem
		if err := rows.Scan(&questID, &r.ItemID, &r.Count); err != nil {
			return err
		}
		i, ok := questIdx[questID]
		if !ok {
			return fmt.Errorf("reward for unknown quest %d", questID)
		}
		a.Quests[i].Reward.Items = append(a.Quests[i].Reward.Items, r)
		return nil
	}); err != nil {
		return fmt.Errorf("load quest rewards: %w", err)
	}

	if err := s.each(ctx, `SELECT id, name, level, loot_item_id FROM enemies ORDER BY position`, func(rows *sql.Rows) error {
		var e world.Enemy
		if err := rows.Scan(&e.ID, &e.Name, &e.Level, &e.LootItemID); err != nil {
			return err
		}
		a.Enemies = append(a.Enemies, e)
		return nil
	}); err != nil {
		return fmt.Errorf("load enemies: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) each(ctx context.Context, query string, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Character operations

func (s *SQLiteStorage) GetCharacter(ctx context.Context, id int64) (*world.Character, error) {
	var c *world.Character
	err := retryBusy(ctx, func() error {
		var err error
		c, err = s.getCharacter(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to load character", "player_id", id, "error", err)
		return nil, fmt.Errorf("get character %d: %w", id, err)
	}
	return c, nil
}

func (s *SQLiteStorage) getCharacter(ctx context.Context, id int64) (*world.Character, error) {
	var c world.Character
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, hp, max_hp, level, xp, location_id, created_at, updated_at
		   FROM characters WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.HP, &c.MaxHP, &c.Level, &c.XP, &c.LocationID, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)

	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, count FROM inventory WHERE character_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var e world.InventoryEntry
		if err := rows.Scan(&e.ItemID, &e.Count); err != nil {
			rows.Close()
			return nil, err
		}
		c.Inventory = append(c.Inventory, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT quest_id, completed FROM journal WHERE character_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var j world.JournalEntry
		var completed int
		if err := rows.Scan(&j.QuestID, &completed); err != nil {
			return nil, err
		}
		j.Completed = completed != 0
		c.Journal = append(c.Journal, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCharacter inserts a new character. It returns ErrAlreadyExists if the
// player already has one.
func (s *SQLiteStorage) CreateCharacter(ctx context.Context, c *world.Character) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO characters (id, name, hp, max_hp, level, xp, location_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.HP, c.MaxHP, c.Level, c.XP, c.LocationID, toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
		); err != nil {
			return err
		}
		return writeChildren(ctx, tx, c)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("character %d: %w", c.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("create character %d: %w", c.ID, err)
	}
	return nil
}

// SaveCharacter writes the character row, its inventory and its journal in one
// transaction. The character must already exist.
func (s *SQLiteStorage) SaveCharacter(ctx context.Context, c *world.Character) error {
	c.UpdatedAt = time.Now().UTC()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE characters
			    SET name = ?, hp = ?, max_hp = ?, level = ?, xp = ?, location_id = ?, updated_at = ?
			  WHERE id = ?`,
			c.Name, c.HP, c.MaxHP, c.Level, c.XP, c.LocationID, toMillis(c.UpdatedAt), c.ID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("character %d: %w", c.ID, ErrNotFound)
		}
		for _, q := range []string{
			`DELETE FROM inventory WHERE character_id = ?`,
			`DELETE FROM journal WHERE character_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, c.ID); err != nil {
				return err
			}
		}
		return writeChildren(ctx, tx, c)
	})
	if err != nil {
		s.logger.Error("Failed to save character", "player_id", c.ID, "error", err)
		return fmt.Errorf("save character %d: %w", c.ID, err)
	}
	return nil
}

func writeChildren(ctx context.Context, tx *sql.Tx, c *world.Character) error {
	for i, e := range c.Inventory {
		if e.Count <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inventory (character_id, item_id, count, position) VALUES (?, ?, ?, ?)`,
			c.ID, e.ItemID, e.Count, i,
		); err != nil {
			return fmt.Errorf("insert inventory item %d: %w", e.ItemID, err)
		}
	}
	for i, j := range c.Journal {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO journal (character_id, quest_id, completed, position) VALUES (?, ?, ?, ?)`,
			c.ID, j.QuestID, boolInt(j.Completed), i,
		); err != nil {
			return fmt.Errorf("insert journal quest %d: %w", j.QuestID, err)
		}
	}
	return nil
}
