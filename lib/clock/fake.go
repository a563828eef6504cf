// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called. After, Sleep, and ticker operations
// register pending waiters that fire when the clock advances past
// their deadline.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.registered = sync.NewCond(&c.mu)
	return c
}

// FakeClock is a deterministic Clock for testing. Time advances only
// when Advance is called. Timers, tickers, and sleeps block until the
// clock is advanced past their deadline.
type FakeClock struct {
	mu         sync.Mutex
	current    time.Time
	pending    []*pendingWait
	registered *sync.Cond
}

// pendingWait is a registered After, Sleep, or ticker wait.
type pendingWait struct {
	deadline time.Time

	// channel receives the fire time. Capacity 1; sends are
	// non-blocking, matching time.Ticker's drop-if-full behavior.
	channel chan time.Time

	// interval is non-zero for ticker waits. After firing, the wait
	// is rescheduled at deadline + interval.
	interval time.Duration

	// stopped is set by Ticker.Stop. Stopped waits are skipped during
	// Advance and dropped from the pending list.
	stopped bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives after duration d elapses. If
// d <= 0, the channel receives immediately without registering a
// waiter.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}

	c.pending = append(c.pending, &pendingWait{
		deadline: c.current.Add(d),
		channel:  channel,
	})
	c.registered.Broadcast()
	return channel
}

// NewTicker returns a Ticker that delivers ticks on its C channel at
// the specified interval. Panics if d <= 0.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	wait := &pendingWait{
		deadline: c.current.Add(d),
		channel:  channel,
		interval: d,
	}
	c.pending = append(c.pending, wait)
	c.registered.Broadcast()

	return &Ticker{
		C: channel,
		stopFunc: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			wait.stopped = true
		},
	}
}

// Sleep pauses the calling goroutine until the clock advances past
// the deadline. If d <= 0, returns immediately.
func (c *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-c.After(d)
}

// Advance moves the clock forward by d and fires every pending wait
// whose deadline falls within the new time, in deadline order. If the
// advance spans multiple ticker intervals, the ticker fires once per
// interval; ticks that overflow the channel buffer are dropped.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mu.Unlock()

	for {
		expired := c.takeExpired(target)
		if len(expired) == 0 {
			return
		}

		sort.Slice(expired, func(i, j int) bool {
			return expired[i].deadline.Before(expired[j].deadline)
		})

		for _, wait := range expired {
			select {
			case wait.channel <- target:
			default:
			}
		}
	}
}

// takeExpired removes expired waits from the pending list, reschedules
// tickers, and returns the waits that should fire.
func (c *FakeClock) takeExpired(target time.Time) []*pendingWait {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []*pendingWait
	var remaining []*pendingWait

	for _, wait := range c.pending {
		if wait.stopped {
			continue
		}
		if !wait.deadline.After(target) {
			expired = append(expired, wait)
		} else {
			remaining = append(remaining, wait)
		}
	}

	// Tickers reschedule for the next interval; one-shot waits are
	// done once fired.
	for _, wait := range expired {
		if wait.interval > 0 {
			wait.deadline = wait.deadline.Add(wait.interval)
			remaining = append(remaining, wait)
		}
	}

	c.pending = remaining
	return expired
}

// WaitForTimers blocks until at least n waits (After, Sleep, or
// ticker) are pending. This eliminates the race between a goroutine
// registering a timer and the test advancing the clock:
//
//	go func() { fakeClock.Sleep(5 * time.Second) }()
//	fakeClock.WaitForTimers(1)         // blocks until Sleep registers
//	fakeClock.Advance(5 * time.Second) // deterministically fires
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.activeLocked() < n {
		c.registered.Wait()
	}
}

// PendingCount returns the number of active pending waits.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked()
}

func (c *FakeClock) activeLocked() int {
	count := 0
	for _, wait := range c.pending {
		if !wait.stopped {
			count++
		}
	}
	return count
}
