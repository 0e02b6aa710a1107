package session

import (
	"context"
	"sync"
	"time"
)

// Countdown counts whole seconds down to an exam's end time. It is driven by
// Tick, usually from Run, and closes Expired exactly once when it reaches zero.
type Countdown struct {
	mu        sync.Mutex
	remaining int64
	expired   chan struct{}
	once      sync.Once
}

// NewCountdown starts a countdown at the whole seconds left between now and
// end. A countdown opened at or after end is expired immediately.
func NewCountdown(end, now time.Time) *Countdown {
	remaining := int64(end.Sub(now) / time.Second)
	if remaining < 0 {
		remaining = 0
	}
	c := &Countdown{remaining: remaining, expired: make(chan struct{})}
	if remaining == 0 {
		c.expire()
	}
	return c
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Tick removes one second and returns what is left. Ticks after expiry are no-ops.
func (c *Countdown) Tick() int64 {
	c.mu.Lock()
	if c.remaining == 0 {
		c.mu.Unlock()
		return 0
	}
	c.remaining--
	left := c.remaining
	c.mu.Unlock()

	if left == 0 {
		c.expire()
	}
	return left
}

// Expired is closed once the countdown reaches zero.
func (c *Countdown) Expired() <-chan struct{} {
	return c.expired
}

func (c *Countdown) expire() {
	c.once.Do(func() { close(c.expired) })
}

// Run ticks once a second until the countdown expires or ctx is cancelled.
// onTick, when set, receives the remaining seconds after every tick.
func (c *Countdown) Run(ctx context.Context, onTick func(remaining int64)) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	c.run(ctx, ticker.C, onTick)
}

func (c *Countdown) run(ctx context.Context, ticks <-chan time.Time, onTick func(int64)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.expired:
			return
		case <-ticks:
			left := c.Tick()
			if onTick != nil {
				onTick(left)
			}
		}
	}
}
