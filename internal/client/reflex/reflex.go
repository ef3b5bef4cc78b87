// Package reflex re-probes canonical identity after profile mutations,
// coalescing bursts of triggers into a single probe.
//
// The coalescer is a three-state machine:
//
//	Idle → Scheduled (timer running) → InFlight (probe sent) → Idle
//
// Any trigger while Scheduled or InFlight cancels the current work — timer
// and in-flight request both — and re-enters Scheduled. That guarantees at
// most one network probe per burst, and that the probe which commits reflects
// the most recent save. An aborted probe is a benign no-op.
package reflex

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matchpoint-app/matchpoint/internal/logging"
)

type State int

const (
	Idle State = iota
	Scheduled
	InFlight
)

func (s State) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case InFlight:
		return "in-flight"
	default:
		return "idle"
	}
}

// DefaultDelay is the coalescing window observed in the product: triggers
// closer together than this merge into one probe.
const DefaultDelay = 200 * time.Millisecond

// Prober performs one cancellable identity probe. It must treat context
// cancellation as "commit nothing" and surface it as the context's error.
type Prober func(ctx context.Context) error

// Coalescer implements the reflex state machine. Safe for concurrent use;
// triggers may arrive from UI callbacks and bus handlers alike.
type Coalescer struct {
	probe  Prober
	delay  time.Duration
	logger logging.Logger

	mu     sync.Mutex
	state  State
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewCoalescer(probe Prober, delay time.Duration, logger logging.Logger) *Coalescer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Coalescer{probe: probe, delay: delay, logger: logger}
}

// Trigger schedules a probe after the coalescing delay, superseding any
// scheduled or in-flight work.
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	gen := c.gen
	c.cancelCurrentLocked()

	c.state = Scheduled
	c.timer = time.AfterFunc(c.delay, func() { c.fire(gen) })
}

// cancelCurrentLocked stops the pending timer and aborts the in-flight
// probe, if any. Caller holds c.mu.
func (c *Coalescer) cancelCurrentLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Coalescer) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		// Superseded while the timer was firing.
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.state = InFlight
	c.timer = nil
	c.cancel = cancel
	c.mu.Unlock()

	err := c.probe(ctx)

	c.mu.Lock()
	if gen == c.gen {
		c.state = Idle
		c.cancel = nil
	}
	c.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn(context.Background(), "post-save probe failed", "err", err)
	}
}

// State reports the current machine state.
func (c *Coalescer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stop cancels any pending or in-flight work and returns to Idle.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.cancelCurrentLocked()
	c.state = Idle
}
