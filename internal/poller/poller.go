// Package poller keeps a registered set of remote resources fresh on fixed
// cadences. Each resource polls on its own goroutine; results land in a
// shared snapshot and fan out to subscribers.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/finsight/finsight-portal/internal/common"
)

// FetchFunc fetches the current value of one resource.
type FetchFunc func(ctx context.Context) (interface{}, error)

// Update is one successful fetch result.
type Update struct {
	Resource  string      `json:"resource"`
	Data      interface{} `json:"data"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type resource struct {
	name     string
	interval time.Duration
	fetch    FetchFunc
}

// Poller runs one polling goroutine per registered resource. A tick does
// not overlap the previous fetch for the same resource: the fetch runs
// inline on the resource goroutine, and ticks arriving while it is in
// flight are dropped by the ticker. Fetch errors are logged and the next
// tick retries.
type Poller struct {
	mu        sync.RWMutex
	resources []resource
	snapshot  map[string]Update
	subs      []func(Update)
	logger    *common.Logger

	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New returns an empty poller.
func New(logger *common.Logger) *Poller {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Poller{
		snapshot: make(map[string]Update),
		logger:   logger,
	}
}

// Register adds a resource. Must be called before Start.
func (p *Poller) Register(name string, interval time.Duration, fetch FetchFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resources = append(p.resources, resource{name: name, interval: interval, fetch: fetch})
}

// Subscribe registers a callback invoked on every successful fetch.
// Callbacks run on the resource's polling goroutine and should be quick.
func (p *Poller) Subscribe(fn func(Update)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Start launches the polling goroutines. Each resource fetches once
// immediately, then on its interval. Idempotent while running.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	resources := make([]resource, len(p.resources))
	copy(resources, p.resources)
	p.mu.Unlock()

	for _, r := range resources {
		p.wg.Add(1)
		go p.run(ctx, r)
	}
	p.logger.Info().Int("resources", len(resources)).Msg("Poller started")
}

// Stop cancels all polling goroutines and waits for them to exit. In-flight
// fetches may complete but their results are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
	p.logger.Info().Msg("Poller stopped")
}

// Get returns the latest update for a resource.
func (p *Poller) Get(name string) (Update, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.snapshot[name]
	return u, ok
}

// Snapshot returns a copy of the latest update for every resource that has
// fetched successfully at least once.
func (p *Poller) Snapshot() map[string]Update {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]Update, len(p.snapshot))
	for k, v := range p.snapshot {
		out[k] = v
	}
	return out
}

func (p *Poller) run(ctx context.Context, r resource) {
	defer p.wg.Done()

	p.poll(ctx, r)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, r)
		}
	}
}

func (p *Poller) poll(ctx context.Context, r resource) {
	data, err := r.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn().Err(err).Str("resource", r.name).Msg("Poll failed")
		}
		return
	}
	// A fetch that resolved after Stop must not land in the snapshot.
	if ctx.Err() != nil {
		return
	}

	update := Update{Resource: r.name, Data: data, UpdatedAt: time.Now()}

	p.mu.Lock()
	p.snapshot[r.name] = update
	subs := make([]func(Update), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(update)
	}
}
