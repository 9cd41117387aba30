package reward

import (
	"context"
	"errors"
	"testing"

	"github.com/finsight/finsight-portal/internal/common"
)

type fakeGranter struct {
	calls   int
	minutes []int
}

func (g *fakeGranter) GrantTimeBoxed(_ context.Context, minutes int) {
	g.calls++
	g.minutes = append(g.minutes, minutes)
}

type fakeAds struct {
	requests int
	err      error
}

func (a *fakeAds) RequestAd(_ context.Context) error {
	a.requests++
	return a.err
}

func newTestController(g *fakeGranter, a AdRequester) *Controller {
	return NewController(g, a, common.NewSilentLogger())
}

func TestStart_RequestsFirstAd(t *testing.T) {
	ads := &fakeAds{}
	c := newTestController(&fakeGranter{}, ads)

	if err := c.Start(context.Background(), 5, 30); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if ads.requests != 1 {
		t.Errorf("expected 1 ad request after start, got %d", ads.requests)
	}

	st := c.Progress()
	if st.State != StatePlaying || st.Completed != 0 || st.Target != 5 {
		t.Errorf("unexpected status after start: %+v", st)
	}
}

func TestStart_RejectsConcurrentSession(t *testing.T) {
	c := newTestController(&fakeGranter{}, nil)
	ctx := context.Background()

	if err := c.Start(ctx, 5, 30); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := c.Start(ctx, 5, 30); !errors.Is(err, ErrSessionActive) {
		t.Errorf("expected ErrSessionActive, got %v", err)
	}
}

func TestStart_ValidatesParameters(t *testing.T) {
	c := newTestController(&fakeGranter{}, nil)
	if err := c.Start(context.Background(), 0, 30); err == nil {
		t.Error("expected error for zero ad target")
	}
	if err := c.Start(context.Background(), 5, 0); err == nil {
		t.Error("expected error for zero reward minutes")
	}
}

func TestCompletion_GrantsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	granter := &fakeGranter{}
	ads := &fakeAds{}
	c := newTestController(granter, ads)

	if err := c.Start(ctx, 5, 30); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		c.OnAdCompleted(ctx)
	}
	if granter.calls != 0 {
		t.Fatalf("grant issued before target reached, calls=%d", granter.calls)
	}
	st := c.Progress()
	if st.State != StatePlaying || st.Completed != 4 {
		t.Fatalf("expected playing at 4/5, got %+v", st)
	}

	// Fifth ad completes the session
	c.OnAdCompleted(ctx)
	if granter.calls != 1 {
		t.Errorf("expected exactly one grant, got %d", granter.calls)
	}
	if len(granter.minutes) != 1 || granter.minutes[0] != 30 {
		t.Errorf("expected grant of 30 minutes, got %v", granter.minutes)
	}
	if st := c.Progress(); st.State != StateIdle || st.Completed != 0 {
		t.Errorf("expected idle after completion, got %+v", st)
	}

	// Stray completion without a new session is ignored
	c.OnAdCompleted(ctx)
	if granter.calls != 1 {
		t.Errorf("stray completion must not grant, calls=%d", granter.calls)
	}
	if st := c.Progress(); st.State != StateIdle || st.Completed != 0 {
		t.Errorf("stray completion must not change state, got %+v", st)
	}
}

func TestCompletion_AutoRequestsNextAd(t *testing.T) {
	ctx := context.Background()
	ads := &fakeAds{}
	c := newTestController(&fakeGranter{}, ads)

	if err := c.Start(ctx, 3, 15); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.OnAdCompleted(ctx)
	c.OnAdCompleted(ctx)
	// start + two mid-session requests; the final completion requests nothing
	if ads.requests != 3 {
		t.Errorf("expected 3 ad requests, got %d", ads.requests)
	}
	c.OnAdCompleted(ctx)
	if ads.requests != 3 {
		t.Errorf("completion must not request another ad, got %d", ads.requests)
	}
}

func TestFailure_PreservesProgressForResume(t *testing.T) {
	ctx := context.Background()
	granter := &fakeGranter{}
	c := newTestController(granter, nil)

	if err := c.Start(ctx, 5, 30); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.OnAdCompleted(ctx)
	c.OnAdCompleted(ctx)
	c.OnAdFailed("ad network timeout")

	st := c.Progress()
	if st.State != StateFailed || st.Completed != 2 || st.Reason != "ad network timeout" {
		t.Fatalf("unexpected failed status: %+v", st)
	}

	// Same parameters resume the preserved progress
	if err := c.Start(ctx, 5, 30); err != nil {
		t.Fatalf("resume Start failed: %v", err)
	}
	if st := c.Progress(); st.State != StatePlaying || st.Completed != 2 {
		t.Fatalf("expected resume at 2/5, got %+v", st)
	}

	c.OnAdCompleted(ctx)
	c.OnAdCompleted(ctx)
	c.OnAdCompleted(ctx)
	if granter.calls != 1 {
		t.Errorf("expected single grant after resumed completion, got %d", granter.calls)
	}
}

func TestFailure_DifferentParametersResetProgress(t *testing.T) {
	ctx := context.Background()
	c := newTestController(&fakeGranter{}, nil)

	if err := c.Start(ctx, 5, 30); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.OnAdCompleted(ctx)
	c.OnAdFailed("load error")

	if err := c.Start(ctx, 3, 15); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if st := c.Progress(); st.Completed != 0 || st.Target != 3 {
		t.Errorf("expected fresh session at 0/3, got %+v", st)
	}
}

func TestCancel_DiscardsProgress(t *testing.T) {
	ctx := context.Background()
	granter := &fakeGranter{}
	c := newTestController(granter, nil)

	if err := c.Start(ctx, 5, 30); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.OnAdCompleted(ctx)
	c.OnAdCompleted(ctx)
	c.Cancel()

	if st := c.Progress(); st.State != StateIdle || st.Completed != 0 {
		t.Fatalf("expected idle with no progress after cancel, got %+v", st)
	}

	// A cancelled session starts over from zero
	if err := c.Start(ctx, 5, 30); err != nil {
		t.Fatalf("Start after cancel failed: %v", err)
	}
	if st := c.Progress(); st.Completed != 0 {
		t.Errorf("expected fresh start after cancel, got %+v", st)
	}
	if granter.calls != 0 {
		t.Errorf("cancel must not grant, calls=%d", granter.calls)
	}
}

func TestFailedAdRequest_MovesSessionToFailed(t *testing.T) {
	ads := &fakeAds{err: errors.New("no fill")}
	c := newTestController(&fakeGranter{}, ads)

	if err := c.Start(context.Background(), 5, 30); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if st := c.Progress(); st.State != StateFailed || st.Reason != "no fill" {
		t.Errorf("expected failed session with reason, got %+v", st)
	}
}

func TestEvents_PublishedInOrder(t *testing.T) {
	ctx := context.Background()
	c := newTestController(&fakeGranter{}, nil)

	var events []Event
	c.Subscribe(func(e Event) { events = append(events, e) })

	if err := c.Start(ctx, 2, 10); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.OnAdCompleted(ctx)
	c.OnAdCompleted(ctx)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != EventProgress || events[0].Completed != 1 {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Kind != EventCompleted || events[1].Completed != 2 {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestEvents_FailureAndCancel(t *testing.T) {
	ctx := context.Background()
	c := newTestController(&fakeGranter{}, nil)

	var events []Event
	c.Subscribe(func(e Event) { events = append(events, e) })

	if err := c.Start(ctx, 5, 30); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c.OnAdFailed("timeout")
	if err := c.Start(ctx, 5, 30); err != nil {
		t.Fatalf("resume Start failed: %v", err)
	}
	c.Cancel()

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != EventFailed || events[0].Reason != "timeout" {
		t.Errorf("unexpected failure event: %+v", events[0])
	}
	if events[1].Kind != EventCancelled {
		t.Errorf("unexpected cancel event: %+v", events[1])
	}
}
