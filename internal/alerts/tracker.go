// Package alerts tracks which triggered alerts the user has already been
// notified about, so the polling loop only surfaces each trigger once.
package alerts

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/interfaces"
	"github.com/finsight/finsight-portal/internal/models"
)

const keySeen = "alerts:seen"

// Tracker persists the set of seen trigger markers. Persistence failures
// degrade to in-memory tracking for the session.
type Tracker struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	kv     interfaces.KeyValueStorage
	logger *common.Logger
}

// NewTracker loads the persisted seen list. A missing or corrupt value
// starts the tracker empty.
func NewTracker(kv interfaces.KeyValueStorage, logger *common.Logger) *Tracker {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	t := &Tracker{
		seen:   make(map[string]struct{}),
		kv:     kv,
		logger: logger,
	}
	t.load(context.Background())
	return t
}

func (t *Tracker) load(ctx context.Context) {
	if t.kv == nil {
		return
	}
	raw, err := t.kv.Get(ctx, keySeen)
	if err != nil {
		return
	}
	var markers []string
	if err := json.Unmarshal([]byte(raw), &markers); err != nil {
		t.logger.Warn().Err(err).Msg("Corrupt seen-alerts list, resetting")
		if derr := t.kv.Delete(ctx, keySeen); derr != nil {
			t.logger.Warn().Err(derr).Msg("Failed to clear corrupt seen-alerts list")
		}
		return
	}
	for _, m := range markers {
		t.seen[m] = struct{}{}
	}
}

// Observe filters alerts down to triggered ones the user has not been
// notified about, marks them seen, and persists the updated list. The
// returned slice preserves input order.
func (t *Tracker) Observe(ctx context.Context, list []models.Alert) []models.Alert {
	t.mu.Lock()
	defer t.mu.Unlock()

	var fresh []models.Alert
	for i := range list {
		a := &list[i]
		if a.Status != models.AlertStatusTriggered {
			continue
		}
		marker := a.SeenMarker()
		if _, ok := t.seen[marker]; ok {
			continue
		}
		t.seen[marker] = struct{}{}
		fresh = append(fresh, *a)
	}

	if len(fresh) > 0 {
		t.persist(ctx)
	}
	return fresh
}

// Seen reports whether a specific trigger has already been surfaced.
func (t *Tracker) Seen(marker string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[marker]
	return ok
}

// Reset clears all seen markers, in memory and persisted.
func (t *Tracker) Reset(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = make(map[string]struct{})
	if t.kv == nil {
		return
	}
	if err := t.kv.Delete(ctx, keySeen); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to clear seen-alerts list")
	}
}

// persist writes the marker list best-effort. Must be called with mu held.
func (t *Tracker) persist(ctx context.Context) {
	if t.kv == nil {
		return
	}
	markers := make([]string, 0, len(t.seen))
	for m := range t.seen {
		markers = append(markers, m)
	}
	raw, err := json.Marshal(markers)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Failed to encode seen-alerts list")
		return
	}
	if err := t.kv.Set(ctx, keySeen, string(raw)); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to persist seen-alerts list")
	}
}
