// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package winservice

import (
	"log/slog"
	"time"

	"github.com/moooozi/switchboot/lib/clock"
)

// Watchdog bounds a shutdown. Armed when stop begins, it fires the
// expire callback if the worker has not finished within the grace
// period. The callback must not return control to the stuck worker:
// in production it reports Stopped to the SCM and exits the process.
type Watchdog struct {
	grace  time.Duration
	clk    clock.Clock
	logger *slog.Logger
	expire func()
}

// NewWatchdog creates a Watchdog. expire runs at most once.
func NewWatchdog(grace time.Duration, clk clock.Clock, logger *slog.Logger, expire func()) *Watchdog {
	return &Watchdog{
		grace:  grace,
		clk:    clk,
		logger: logger,
		expire: expire,
	}
}

// Arm starts the countdown. Closing done before the grace period
// elapses disarms it.
func (w *Watchdog) Arm(done <-chan struct{}) {
	go func() {
		select {
		case <-done:
		case <-w.clk.After(w.grace):
			// done wins when it was closed before the deadline even
			// if the select drew the timer branch.
			select {
			case <-done:
				return
			default:
			}
			w.logger.Error("shutdown exceeded grace period, forcing exit", "grace", w.grace)
			w.expire()
		}
	}()
}
