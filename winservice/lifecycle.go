// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package winservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/moooozi/switchboot/lib/clock"
)

// State is an advertised service state. The Windows glue maps these
// onto SCM states; portable tests observe them directly.
type State string

const (
	StateStartPending State = "start-pending"
	StateRunning      State = "running"
	StateStopPending  State = "stop-pending"
	StateStopped      State = "stopped"
)

// Control is a request delivered to the running service.
type Control int

const (
	// ControlStop asks the service to shut down. Stop and system
	// shutdown both map here.
	ControlStop Control = iota
)

// StatusSink receives state transitions. waitHint tells the observer
// how long the next transition may take; zero means no hint.
type StatusSink interface {
	SetState(state State, waitHint time.Duration)
}

// Worker is the service payload. Ready is closed once the worker is
// serving; Run blocks until the worker finishes on its own or ctx is
// cancelled.
type Worker interface {
	Ready() <-chan struct{}
	Run(ctx context.Context) error
}

// RunnerConfig carries everything a Runner needs.
type RunnerConfig struct {
	Worker Worker
	Status StatusSink

	// ReadyTimeout bounds the wait for the worker's readiness signal.
	// On timeout the runner logs a warning and advertises Running
	// anyway; a worker that never becomes ready will end through its
	// own error path.
	ReadyTimeout time.Duration

	// StopGrace bounds the wait for the worker after a stop request.
	// When it elapses, ForceExit runs.
	StopGrace time.Duration

	// ForceExit is the watchdog's last resort. In production it
	// reports Stopped and exits the process.
	ForceExit func()

	// Clock drives the timeouts. Nil means the real clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Runner walks the service state machine around a Worker: it
// advertises StartPending while the worker comes up, Running while it
// serves, StopPending once a stop arrives, and Stopped at the end. A
// worker that finishes on its own (the listener's idle shutdown) also
// lands in Stopped.
type Runner struct {
	cfg RunnerConfig
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	return &Runner{cfg: cfg}
}

// Run executes the state machine until the worker ends. Returns the
// worker's error, nil for a clean stop.
func (r *Runner) Run(ctx context.Context, controls <-chan Control) error {
	r.cfg.Status.SetState(StateStartPending, r.cfg.ReadyTimeout)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- r.cfg.Worker.Run(workerCtx)
	}()

	select {
	case <-r.cfg.Worker.Ready():
	case <-r.cfg.Clock.After(r.cfg.ReadyTimeout):
		r.cfg.Logger.Warn("worker not ready in time, advertising running anyway",
			"timeout", r.cfg.ReadyTimeout)
	case err := <-workerErr:
		// Worker died during startup.
		r.cfg.Status.SetState(StateStopped, 0)
		return err
	}

	r.cfg.Status.SetState(StateRunning, 0)
	r.cfg.Logger.Info("service running")

	var finalErr error
	select {
	case finalErr = <-workerErr:
		// The worker ended on its own, typically the listener's idle
		// or serve-once shutdown.
		r.cfg.Logger.Info("worker finished", "error", finalErr)
	case <-controls:
		r.cfg.Logger.Info("stop requested")
		r.cfg.Status.SetState(StateStopPending, r.cfg.StopGrace)

		done := make(chan struct{})
		NewWatchdog(r.cfg.StopGrace, r.cfg.Clock, r.cfg.Logger, r.cfg.ForceExit).Arm(done)

		stopWorker()
		finalErr = <-workerErr
		close(done)
	}

	r.cfg.Status.SetState(StateStopped, 0)
	return finalErr
}
