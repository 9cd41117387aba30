// Package reward drives the "watch N ads, earn M minutes" flow. The ad
// collaborator is external; this package only does the bookkeeping and
// issues the entitlement grant on full completion.
package reward

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/finsight/finsight-portal/internal/common"
)

// ErrSessionActive is returned by Start while a session is already playing.
var ErrSessionActive = errors.New("reward session busy")

// State is the controller's lifecycle phase.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StateFailed  State = "failed"
)

// EventKind identifies what a published Event describes.
type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventCompleted EventKind = "completed"
	EventFailed    EventKind = "failed"
	EventCancelled EventKind = "cancelled"
)

// Event is pushed to subscribers on every session transition.
type Event struct {
	Kind      EventKind `json:"kind"`
	Completed int       `json:"completed"`
	Target    int       `json:"target"`
	Minutes   int       `json:"minutes"`
	Reason    string    `json:"reason,omitempty"`
}

// Status is a snapshot of the session for the API surface.
type Status struct {
	State     State  `json:"state"`
	Completed int    `json:"completed"`
	Target    int    `json:"target"`
	Minutes   int    `json:"minutes"`
	Reason    string `json:"reason,omitempty"`
}

// Granter is the slice of the entitlement store the controller needs.
type Granter interface {
	GrantTimeBoxed(ctx context.Context, minutes int)
}

// AdRequester asks the external ad collaborator to play one ad unit.
// Completion or failure comes back asynchronously through OnAdCompleted /
// OnAdFailed.
type AdRequester interface {
	RequestAd(ctx context.Context) error
}

// Controller is the reward session state machine. One session at a time;
// concurrent Start calls are rejected with ErrSessionActive.
type Controller struct {
	mu sync.Mutex

	state     State
	target    int
	minutes   int
	completed int
	reason    string

	granter     Granter
	ads         AdRequester
	logger      *common.Logger
	subscribers []func(Event)
}

// NewController returns an idle controller. granter must not be nil; ads
// may be nil when no ad collaborator is wired (events still fire, callers
// drive OnAdCompleted directly).
func NewController(granter Granter, ads AdRequester, logger *common.Logger) *Controller {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Controller{
		state:   StateIdle,
		granter: granter,
		ads:     ads,
		logger:  logger,
	}
}

// Subscribe registers a callback for session events. Not safe to call
// concurrently with event delivery; register subscribers at wiring time.
func (c *Controller) Subscribe(fn func(Event)) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Start begins a session of target ads worth minutes of entitlement.
// Restarting a failed session with the same parameters resumes from the
// preserved progress; any other Start begins from zero. A session already
// playing rejects the call.
func (c *Controller) Start(ctx context.Context, target, minutes int) error {
	if target <= 0 {
		return fmt.Errorf("invalid ad target: %d", target)
	}
	if minutes <= 0 {
		return fmt.Errorf("invalid reward minutes: %d", minutes)
	}

	c.mu.Lock()
	if c.state == StatePlaying {
		c.mu.Unlock()
		return ErrSessionActive
	}

	resumed := c.state == StateFailed && c.target == target && c.minutes == minutes
	if !resumed {
		c.completed = 0
	}
	c.state = StatePlaying
	c.target = target
	c.minutes = minutes
	c.reason = ""
	completed := c.completed
	c.mu.Unlock()

	c.logger.Info().
		Int("target", target).
		Int("minutes", minutes).
		Int("completed", completed).
		Bool("resumed", resumed).
		Msg("Reward session started")

	c.requestAd(ctx)
	return nil
}

// OnAdCompleted records one finished ad unit. Reaching the target issues
// the entitlement grant exactly once and resets the session to idle; short
// of the target the next ad is requested. Calls outside a playing session
// are ignored.
func (c *Controller) OnAdCompleted(ctx context.Context) {
	c.mu.Lock()
	if c.state != StatePlaying {
		c.mu.Unlock()
		c.logger.Debug().Msg("Ad completion ignored, no active reward session")
		return
	}

	c.completed++
	done := c.completed >= c.target
	event := Event{Completed: c.completed, Target: c.target, Minutes: c.minutes}
	var minutes int
	if done {
		minutes = c.minutes
		event.Kind = EventCompleted
		c.state = StateIdle
		c.completed = 0
	} else {
		event.Kind = EventProgress
	}
	c.mu.Unlock()

	if done {
		c.granter.GrantTimeBoxed(ctx, minutes)
		c.logger.Info().Int("minutes", minutes).Msg("Reward session completed, entitlement granted")
		c.publish(event)
		return
	}

	c.logger.Debug().
		Int("completed", event.Completed).
		Int("target", event.Target).
		Msg("Reward ad completed")
	c.publish(event)
	c.requestAd(ctx)
}

// OnAdFailed moves a playing session to failed, preserving progress so a
// Start with the same parameters can resume.
func (c *Controller) OnAdFailed(reason string) {
	c.mu.Lock()
	if c.state != StatePlaying {
		c.mu.Unlock()
		return
	}
	c.state = StateFailed
	c.reason = reason
	event := Event{
		Kind:      EventFailed,
		Completed: c.completed,
		Target:    c.target,
		Minutes:   c.minutes,
		Reason:    reason,
	}
	c.mu.Unlock()

	c.logger.Warn().Str("reason", reason).Int("completed", event.Completed).Msg("Reward ad failed")
	c.publish(event)
}

// Cancel aborts the session and discards progress. A cancelled session
// starts over from zero on the next Start.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	event := Event{
		Kind:      EventCancelled,
		Completed: c.completed,
		Target:    c.target,
		Minutes:   c.minutes,
	}
	c.state = StateIdle
	c.completed = 0
	c.reason = ""
	c.mu.Unlock()

	c.logger.Info().Msg("Reward session cancelled")
	c.publish(event)
}

// Progress returns the current session snapshot.
func (c *Controller) Progress() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:     c.state,
		Completed: c.completed,
		Target:    c.target,
		Minutes:   c.minutes,
		Reason:    c.reason,
	}
}

// requestAd asks the collaborator for the next unit. A synchronous request
// failure is treated like an asynchronous ad failure.
func (c *Controller) requestAd(ctx context.Context) {
	if c.ads == nil {
		return
	}
	if err := c.ads.RequestAd(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Ad request failed")
		c.OnAdFailed(err.Error())
	}
}

func (c *Controller) publish(event Event) {
	c.mu.Lock()
	subs := make([]func(Event), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}
