// Package entitlement decides whether gated features are unlocked.
//
// Entitlement comes from either a permanent purchase or a decaying
// time-boxed grant earned through reward sessions. State is persisted in the
// portal's key-value storage so it survives restarts; when storage is
// unavailable the store degrades to in-memory state for the session rather
// than surfacing errors to callers.
//
// All gated operations must go through this store — it is deliberately the
// single read/write surface for entitlement so the backing can later move to
// a server-held record without touching call sites.
package entitlement

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/interfaces"
)

// Persisted keys.
const (
	keyPermanent = "entitlement:pro"
	keyExpiry    = "entitlement:expiry"
)

// Store is the single source of truth for "is the gated feature unlocked
// right now". Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	kv     interfaces.KeyValueStorage // nil when storage is unavailable
	logger *common.Logger
	now    func() time.Time

	permanent bool
	expiresAt int64 // epoch millis; 0 means no time-boxed grant
}

// NewStore creates an entitlement store backed by kv. A nil kv is allowed
// and yields a memory-only store. Persisted state is loaded eagerly; corrupt
// or unreadable values are treated as "not entitled", never as an error.
func NewStore(kv interfaces.KeyValueStorage, logger *common.Logger) *Store {
	s := &Store{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
	s.load()
	return s
}

// load reads persisted entitlement state. Best effort: any storage or parse
// failure leaves the in-memory state empty.
func (s *Store) load() {
	if s.kv == nil {
		return
	}
	ctx := context.Background()

	if v, err := s.kv.Get(ctx, keyPermanent); err == nil {
		s.permanent = v == "true"
	}

	v, err := s.kv.Get(ctx, keyExpiry)
	if err != nil {
		return
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		s.logger.Warn().Str("value", v).Msg("corrupt entitlement expiry, treating as not entitled")
		s.deleteQuiet(ctx, keyExpiry)
		return
	}
	s.expiresAt = ms
}

// IsEntitled returns true if the gated features are unlocked right now.
// An expired time-boxed grant is cleared lazily by this read so UI timers
// can detect the transition to "not entitled".
func (s *Store) IsEntitled(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permanent {
		return true
	}
	if s.expiresAt == 0 {
		return false
	}
	if s.now().UnixMilli() < s.expiresAt {
		return true
	}

	// Expired: clear so subsequent reads don't re-parse a stale value.
	s.expiresAt = 0
	s.deleteQuiet(ctx, keyExpiry)
	return false
}

// GrantPermanent marks the installation as permanently entitled.
// Idempotent; persisted immediately.
func (s *Store) GrantPermanent(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permanent {
		return
	}
	s.permanent = true
	s.setQuiet(ctx, keyPermanent, "true")
	s.logger.Info().Msg("permanent entitlement granted")
}

// GrantTimeBoxed extends the time-boxed entitlement by the given number of
// minutes. Grants stack: the extension is added to the later of "now" and
// the current expiry, so back-to-back reward sessions accumulate time
// instead of resetting the clock.
func (s *Store) GrantTimeBoxed(ctx context.Context, minutes int) {
	if minutes <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nowMs := s.now().UnixMilli()
	base := nowMs
	if s.expiresAt > nowMs {
		base = s.expiresAt
	}
	s.expiresAt = base + int64(minutes)*60_000
	s.setQuiet(ctx, keyExpiry, strconv.FormatInt(s.expiresAt, 10))

	s.logger.Info().
		Int("minutes", minutes).
		Int64("expires_at_ms", s.expiresAt).
		Msg("time-boxed entitlement granted")
}

// TimeRemaining reports the remaining entitlement for UI display.
// permanent is true for purchased installations (remaining is meaningless
// then); ok is false when not entitled at all.
func (s *Store) TimeRemaining(ctx context.Context) (remaining time.Duration, permanent bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permanent {
		return 0, true, true
	}
	if s.expiresAt == 0 {
		return 0, false, false
	}
	nowMs := s.now().UnixMilli()
	if nowMs >= s.expiresAt {
		s.expiresAt = 0
		s.deleteQuiet(ctx, keyExpiry)
		return 0, false, false
	}
	return time.Duration(s.expiresAt-nowMs) * time.Millisecond, false, true
}

// setQuiet persists a key best-effort. Must be called with mu held.
func (s *Store) setQuiet(ctx context.Context, key, value string) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.logger.Warn().Str("key", key).Err(err).Msg("failed to persist entitlement state, continuing in-memory")
	}
}

// deleteQuiet removes a key best-effort. Must be called with mu held.
func (s *Store) deleteQuiet(ctx context.Context, key string) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		s.logger.Warn().Str("key", key).Err(err).Msg("failed to clear entitlement state")
	}
}
