// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package winservice

import (
	"testing"
	"time"

	"github.com/moooozi/switchboot/lib/clock"
	"github.com/moooozi/switchboot/lib/testutil"
)

func TestWatchdogFiresAfterGrace(t *testing.T) {
	clk := clock.Fake(time.Now())
	fired := make(chan struct{})

	w := NewWatchdog(5*time.Second, clk, testLogger(), func() { close(fired) })
	w.Arm(make(chan struct{}))

	clk.WaitForTimers(1)
	clk.Advance(5 * time.Second)
	testutil.RequireClosed(t, fired, 5*time.Second, "watchdog expiry")
}

func TestWatchdogDisarmedByCompletion(t *testing.T) {
	clk := clock.Fake(time.Now())
	fired := make(chan struct{})
	done := make(chan struct{})

	w := NewWatchdog(5*time.Second, clk, testLogger(), func() { close(fired) })
	w.Arm(done)
	clk.WaitForTimers(1)

	close(done)
	// The expire path must not run even when the grace deadline later
	// passes.
	clk.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	select {
	case <-fired:
		t.Fatal("watchdog fired after disarm")
	default:
	}
}
