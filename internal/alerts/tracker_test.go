package alerts

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/models"
)

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

func triggered(id int64, at string) models.Alert {
	return models.Alert{
		ID:          id,
		Symbol:      "AAPL",
		Type:        models.AlertTypePrice,
		Status:      models.AlertStatusTriggered,
		TriggeredAt: at,
	}
}

func TestObserve_ReturnsOnlyNewTriggers(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(newMemKV(), common.NewSilentLogger())

	active := models.Alert{ID: 1, Status: models.AlertStatusActive}
	first := triggered(2, "2026-09-01T10:00:00")

	fresh := tr.Observe(ctx, []models.Alert{active, first})
	if len(fresh) != 1 || fresh[0].ID != 2 {
		t.Fatalf("expected one new trigger, got %+v", fresh)
	}

	// Same trigger again is silent
	fresh = tr.Observe(ctx, []models.Alert{active, first})
	if len(fresh) != 0 {
		t.Errorf("expected no repeat notification, got %+v", fresh)
	}
}

func TestObserve_SameAlertRetriggers(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(newMemKV(), common.NewSilentLogger())

	tr.Observe(ctx, []models.Alert{triggered(7, "2026-09-01T10:00:00")})

	// A later trigger of the same alert ID carries a new timestamp
	fresh := tr.Observe(ctx, []models.Alert{triggered(7, "2026-09-01T14:30:00")})
	if len(fresh) != 1 {
		t.Errorf("expected re-trigger to notify again, got %+v", fresh)
	}
}

func TestObserve_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()

	tr1 := NewTracker(kv, common.NewSilentLogger())
	tr1.Observe(ctx, []models.Alert{triggered(3, "2026-09-01T09:00:00")})

	tr2 := NewTracker(kv, common.NewSilentLogger())
	fresh := tr2.Observe(ctx, []models.Alert{triggered(3, "2026-09-01T09:00:00")})
	if len(fresh) != 0 {
		t.Errorf("seen markers must survive restart, got %+v", fresh)
	}
}

func TestNewTracker_CorruptListStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.items["alerts:seen"] = "{not json["

	tr := NewTracker(kv, common.NewSilentLogger())
	fresh := tr.Observe(ctx, []models.Alert{triggered(5, "2026-09-01T11:00:00")})
	if len(fresh) != 1 {
		t.Errorf("corrupt list should reset to empty, got %+v", fresh)
	}
	if _, found := kv.items["alerts:seen"]; !found {
		t.Error("expected rebuilt seen list to be persisted")
	}
}

func TestTracker_StorageFailureDegradesToMemory(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.fail = true

	tr := NewTracker(kv, common.NewSilentLogger())
	alert := triggered(9, "2026-09-01T12:00:00")

	fresh := tr.Observe(ctx, []models.Alert{alert})
	if len(fresh) != 1 {
		t.Fatalf("expected trigger despite storage failure, got %+v", fresh)
	}
	// Still deduped in memory
	fresh = tr.Observe(ctx, []models.Alert{alert})
	if len(fresh) != 0 {
		t.Errorf("expected in-memory dedupe despite storage failure, got %+v", fresh)
	}
}

func TestReset_ClearsMarkers(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	tr := NewTracker(kv, common.NewSilentLogger())

	alert := triggered(4, "2026-09-01T08:00:00")
	tr.Observe(ctx, []models.Alert{alert})
	if !tr.Seen(alert.SeenMarker()) {
		t.Fatal("expected marker recorded")
	}

	tr.Reset(ctx)
	if tr.Seen(alert.SeenMarker()) {
		t.Error("expected markers cleared after reset")
	}
	if _, found := kv.items["alerts:seen"]; found {
		t.Error("expected persisted list removed after reset")
	}
}
