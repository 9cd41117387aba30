package entitlement

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/finsight/finsight-portal/internal/common"
)

// memKV is an in-memory KeyValueStorage for tests.
type memKV struct {
	mu    sync.Mutex
	items map[string]string
	fail  bool
}

func newMemKV() *memKV {
	return &memKV{items: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", fmt.Errorf("storage unavailable")
	}
	v, ok := m.items[key]
	if !ok {
		return "", fmt.Errorf("key not found: %s", key)
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("storage unavailable")
	}
	m.items[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("storage unavailable")
	}
	delete(m.items, key)
	return nil
}

func (m *memKV) GetAll(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.items))
	for k, v := range m.items {
		out[k] = v
	}
	return out, nil
}

func newTestStore(kv *memKV) *Store {
	return NewStore(kv, common.NewSilentLogger())
}

func TestIsEntitled_EmptyState(t *testing.T) {
	s := newTestStore(newMemKV())
	if s.IsEntitled(context.Background()) {
		t.Error("fresh store should not be entitled")
	}
}

func TestGrantPermanent_Idempotent(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := newTestStore(kv)

	s.GrantPermanent(ctx)
	if !s.IsEntitled(ctx) {
		t.Fatal("expected entitled after permanent grant")
	}

	// Second grant has no observable difference
	s.GrantPermanent(ctx)
	if !s.IsEntitled(ctx) {
		t.Fatal("expected entitled after repeated permanent grant")
	}

	_, permanent, ok := s.TimeRemaining(ctx)
	if !ok || !permanent {
		t.Errorf("expected permanent marker, got permanent=%v ok=%v", permanent, ok)
	}

	if kv.items["entitlement:pro"] != "true" {
		t.Error("expected permanent flag persisted")
	}
}

func TestGrantTimeBoxed_Stacks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newMemKV())

	now := time.Now()
	s.now = func() time.Time { return now }

	s.GrantTimeBoxed(ctx, 30)
	s.GrantTimeBoxed(ctx, 30)

	remaining, permanent, ok := s.TimeRemaining(ctx)
	if !ok || permanent {
		t.Fatalf("expected active time-boxed grant, got permanent=%v ok=%v", permanent, ok)
	}
	// Two consecutive 30 minute grants stack to 60, not reset to 30
	if remaining != 60*time.Minute {
		t.Errorf("expected 60m remaining, got %v", remaining)
	}
}

func TestGrantTimeBoxed_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := newTestStore(kv)

	now := time.Now()
	s.now = func() time.Time { return now }

	s.GrantTimeBoxed(ctx, 1)
	if !s.IsEntitled(ctx) {
		t.Fatal("expected entitled immediately after 1 minute grant")
	}

	// Cross the boundary
	now = now.Add(61 * time.Second)
	if s.IsEntitled(ctx) {
		t.Fatal("expected not entitled after expiry")
	}

	// No permanent flag was set, and the stale expiry was cleared
	if _, found := kv.items["entitlement:pro"]; found {
		t.Error("permanent flag must not be set by a time-boxed grant")
	}
	if _, found := kv.items["entitlement:expiry"]; found {
		t.Error("expected expired value to be cleared from storage")
	}
}

func TestGrantTimeBoxed_AfterExpiryStartsFromNow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newMemKV())

	now := time.Now()
	s.now = func() time.Time { return now }

	s.GrantTimeBoxed(ctx, 1)
	now = now.Add(10 * time.Minute)

	// Expired grant must not count as base for the new one
	s.GrantTimeBoxed(ctx, 30)
	remaining, _, ok := s.TimeRemaining(ctx)
	if !ok {
		t.Fatal("expected entitled after re-grant")
	}
	if remaining != 30*time.Minute {
		t.Errorf("expected 30m remaining, got %v", remaining)
	}
}

func TestPersistenceAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()

	s1 := newTestStore(kv)
	now := time.Now()
	s1.now = func() time.Time { return now }
	s1.GrantTimeBoxed(ctx, 30)

	// A new store over the same KV sees the grant
	s2 := newTestStore(kv)
	s2.now = func() time.Time { return now }
	if !s2.IsEntitled(ctx) {
		t.Error("expected entitlement to survive restart")
	}

	remaining, _, ok := s2.TimeRemaining(ctx)
	if !ok || remaining != 30*time.Minute {
		t.Errorf("expected 30m remaining after reload, got %v ok=%v", remaining, ok)
	}
}

func TestCorruptPersistedExpiry(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.items["entitlement:expiry"] = "not-a-number"

	s := newTestStore(kv)
	if s.IsEntitled(ctx) {
		t.Error("corrupt persisted expiry must read as not entitled")
	}
	if _, found := kv.items["entitlement:expiry"]; found {
		t.Error("expected corrupt value to be cleared")
	}
}

func TestStorageUnavailable_DegradesToMemory(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.fail = true

	s := newTestStore(kv)
	now := time.Now()
	s.now = func() time.Time { return now }

	// Grants still work for the session despite storage errors
	s.GrantTimeBoxed(ctx, 30)
	if !s.IsEntitled(ctx) {
		t.Error("expected in-memory entitlement despite storage failure")
	}

	s.GrantPermanent(ctx)
	if !s.IsEntitled(ctx) {
		t.Error("expected in-memory permanent entitlement despite storage failure")
	}
}

func TestNilStorage(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil, common.NewSilentLogger())

	if s.IsEntitled(ctx) {
		t.Error("fresh memory-only store should not be entitled")
	}
	s.GrantTimeBoxed(ctx, 5)
	if !s.IsEntitled(ctx) {
		t.Error("memory-only store should honor grants")
	}
}

func TestConcurrentGrantAndRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newMemKV())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.GrantTimeBoxed(ctx, 1)
				s.IsEntitled(ctx)
				s.TimeRemaining(ctx)
			}
		}()
	}
	wg.Wait()

	if !s.IsEntitled(ctx) {
		t.Error("expected entitled after concurrent grants")
	}
}
