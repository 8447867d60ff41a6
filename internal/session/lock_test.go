package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestKeyedMutex_Serialises(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := km.Lock(ctx, "p1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
	if n := km.keys(); n != 0 {
		t.Errorf("idle keys retained: %d", n)
	}
}

func TestKeyedMutex_ContextDeadline(t *testing.T) {
	km := NewKeyedMutex()
	unlock, err := km.Lock(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := km.Lock(ctx, "p1"); err == nil {
		t.Fatal("expected deadline error while held")
	}

	other, err := km.Lock(context.Background(), "p2")
	if err != nil {
		t.Fatalf("independent key blocked: %v", err)
	}
	other()

	unlock()
	unlock()
	if n := km.keys(); n != 0 {
		t.Errorf("keys = %d after release, want 0", n)
	}
}
