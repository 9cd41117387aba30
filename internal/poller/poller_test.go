package poller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finsight/finsight-portal/internal/common"
)

func TestPoller_FetchesImmediatelyAndOnInterval(t *testing.T) {
	var calls atomic.Int64
	p := New(common.NewSilentLogger())
	p.Register("quotes", 20*time.Millisecond, func(ctx context.Context) (interface{}, error) {
		return calls.Add(1), nil
	})

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 fetches, got %d", calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	u, ok := p.Get("quotes")
	if !ok {
		t.Fatal("expected snapshot entry for quotes")
	}
	if u.Resource != "quotes" || u.UpdatedAt.IsZero() {
		t.Errorf("unexpected update: %+v", u)
	}
}

func TestPoller_ErrorsAreSwallowedAndRetried(t *testing.T) {
	var calls atomic.Int64
	p := New(common.NewSilentLogger())
	p.Register("alerts", 10*time.Millisecond, func(ctx context.Context) (interface{}, error) {
		n := calls.Add(1)
		if n < 3 {
			return nil, fmt.Errorf("transient network failure")
		}
		return "ok", nil
	})

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if u, ok := p.Get("alerts"); ok {
			if u.Data != "ok" {
				t.Errorf("unexpected data: %v", u.Data)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("poller never recovered from transient errors")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPoller_NoOverlappingFetches(t *testing.T) {
	var inFlight atomic.Int64
	var overlapped atomic.Bool

	p := New(common.NewSilentLogger())
	p.Register("slow", 5*time.Millisecond, func(ctx context.Context) (interface{}, error) {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		defer inFlight.Add(-1)
		time.Sleep(30 * time.Millisecond)
		return "done", nil
	})

	p.Start(context.Background())
	time.Sleep(150 * time.Millisecond)
	p.Stop()

	if overlapped.Load() {
		t.Error("fetches for the same resource must not overlap")
	}
}

func TestPoller_StopDiscardsLateResults(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	p := New(common.NewSilentLogger())
	p.Register("slow", time.Hour, func(ctx context.Context) (interface{}, error) {
		once.Do(func() { close(started) })
		<-release
		return "late", nil
	})

	p.Start(context.Background())
	<-started

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	// Let the in-flight fetch resolve after cancellation
	time.Sleep(10 * time.Millisecond)
	close(release)
	<-done

	if _, ok := p.Get("slow"); ok {
		t.Error("result resolved after Stop must be discarded")
	}
}

func TestPoller_SubscribersReceiveUpdates(t *testing.T) {
	updates := make(chan Update, 16)

	p := New(common.NewSilentLogger())
	p.Subscribe(func(u Update) { updates <- u })
	p.Register("watchlist", 10*time.Millisecond, func(ctx context.Context) (interface{}, error) {
		return []string{"AAPL", "TSLA"}, nil
	})

	p.Start(context.Background())
	defer p.Stop()

	select {
	case u := <-updates:
		if u.Resource != "watchlist" {
			t.Errorf("unexpected resource: %s", u.Resource)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received an update")
	}
}

func TestPoller_IndependentResources(t *testing.T) {
	p := New(common.NewSilentLogger())
	p.Register("good", 10*time.Millisecond, func(ctx context.Context) (interface{}, error) {
		return 1, nil
	})
	p.Register("bad", 10*time.Millisecond, func(ctx context.Context) (interface{}, error) {
		return nil, fmt.Errorf("always failing")
	})

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := p.Get("good"); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("healthy resource starved by failing neighbor")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, ok := p.Get("bad"); ok {
		t.Error("failing resource must not appear in snapshot")
	}

	snap := p.Snapshot()
	if len(snap) != 1 {
		t.Errorf("expected 1 snapshot entry, got %d", len(snap))
	}
}

func TestPoller_StartIsIdempotent(t *testing.T) {
	var calls atomic.Int64
	p := New(common.NewSilentLogger())
	p.Register("once", time.Hour, func(ctx context.Context) (interface{}, error) {
		calls.Add(1)
		return nil, nil
	})

	ctx := context.Background()
	p.Start(ctx)
	p.Start(ctx)
	defer p.Stop()

	time.Sleep(50 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single immediate fetch, got %d", n)
	}
}
