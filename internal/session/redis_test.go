package session

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/pkg/dialog"
	"github.com/jwebster45206/quest-engine/pkg/world/worldtest"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create redis client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, time.Hour, testLogger())
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	got, err := store.Load(ctx, 42)
	if err != nil || got != nil {
		t.Fatalf("Load missing = %v, %v; want nil, nil", got, err)
	}

	s := New(42)
	s.Character = worldtest.Character(t, 42)
	s.Cursor = &dialog.Cursor{NPCID: worldtest.ElderID, StageID: 3}
	s.MessageContext = "abc"
	s.AwaitingName = true
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !mr.Exists("session:42") {
		t.Fatal("expected key session:42")
	}
	if ttl := mr.TTL("session:42"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	got, err = store.Load(ctx, 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Character == nil || got.Character.Name != s.Character.Name {
		t.Errorf("Character = %+v", got.Character)
	}
	if got.Cursor == nil || *got.Cursor != *s.Cursor {
		t.Errorf("Cursor = %+v, want %+v", got.Cursor, s.Cursor)
	}
	if !got.AwaitingName || got.MessageContext != "abc" {
		t.Errorf("session fields not round-tripped: %+v", got)
	}

	if err := store.Delete(ctx, 42); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Load(ctx, 42); got != nil {
		t.Error("expected nil after delete")
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute, testLogger())
	ctx := context.Background()

	if err := store.Save(ctx, New(1)); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	got, err := store.Load(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("session should have expired")
	}
}

func TestRedisStore_CorruptValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute, testLogger())

	if err := mr.Set("session:5", "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(context.Background(), 5); err == nil {
		t.Error("expected unmarshal error")
	}
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker := NewRedisLocker(client, time.Minute, testLogger())
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if !mr.Exists("player-lock:1") {
		t.Fatal("expected lock key")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(waitCtx, "1"); err == nil {
		t.Fatal("second Lock should time out while held")
	}

	// Other keys are independent.
	unlockOther, err := locker.Lock(ctx, "2")
	if err != nil {
		t.Fatalf("Lock other key: %v", err)
	}
	unlockOther()

	unlock()
	unlock()
	if mr.Exists("player-lock:1") {
		t.Error("lock key should be released")
	}

	unlock2, err := locker.Lock(ctx, "1")
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	unlock2()
}

func TestRedisLocker_ReleaseChecksOwner(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker := NewRedisLocker(client, time.Second, testLogger())
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "9")
	if err != nil {
		t.Fatal(err)
	}

	// Lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	if err := mr.Set("player-lock:9", "someone-else"); err != nil {
		t.Fatal(err)
	}

	unlock()
	v, err := mr.Get("player-lock:9")
	if err != nil || v != "someone-else" {
		t.Errorf("foreign lock was released: %q, %v", v, err)
	}
}

func TestRedisLocker_ReleaseWakesWaiter(t *testing.T) {
	client, _ := setupTestRedis(t)
	locker := NewRedisLocker(client, time.Minute, testLogger())

	unlock, err := locker.Lock(context.Background(), "3")
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan time.Time, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		unlock2, err := locker.Lock(ctx, "3")
		if err != nil {
			t.Errorf("waiter Lock: %v", err)
			close(acquired)
			return
		}
		acquired <- time.Now()
		unlock2()
	}()

	time.Sleep(100 * time.Millisecond)
	released := time.Now()
	unlock()

	at, ok := <-acquired
	if !ok {
		return
	}
	// A blocked wait lasts at least a second, so a faster hand-off means the
	// release woke the waiter.
	if d := at.Sub(released); d > 900*time.Millisecond {
		t.Errorf("waiter took %v to acquire after release", d)
	}
}
