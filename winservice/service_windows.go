// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package winservice

import (
	"context"
	"os"
	"time"

	"golang.org/x/sys/windows/svc"
)

// IsWindowsService reports whether the process was launched by the
// service control manager.
func IsWindowsService() (bool, error) {
	return svc.IsWindowsService()
}

// RunService hands the process to the SCM and drives the state
// machine around cfg.Worker. cfg.Status and cfg.ForceExit are filled
// in with the SCM-backed implementations.
func RunService(name string, cfg RunnerConfig) error {
	return svc.Run(name, &scmHandler{cfg: cfg})
}

type scmHandler struct {
	cfg RunnerConfig
}

func (h *scmHandler) Execute(_ []string, requests <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	controls := make(chan Control)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case request := <-requests:
				switch request.Cmd {
				case svc.Interrogate:
					status <- request.CurrentStatus
				case svc.Stop, svc.Shutdown:
					select {
					case controls <- ControlStop:
					case <-done:
						return
					}
				}
			}
		}
	}()

	h.cfg.Status = &scmStatusSink{status: status}
	if h.cfg.ForceExit == nil {
		h.cfg.ForceExit = func() {
			// The SCM must see Stopped even though the worker is
			// wedged; after that the only honest move is exiting.
			status <- svc.Status{State: svc.Stopped}
			os.Exit(1)
		}
	}

	if err := NewRunner(h.cfg).Run(context.Background(), controls); err != nil {
		return false, 1
	}
	return false, 0
}

// scmStatusSink forwards state transitions to the SCM status channel.
type scmStatusSink struct {
	status chan<- svc.Status
}

func (s *scmStatusSink) SetState(state State, hint time.Duration) {
	switch state {
	case StateStartPending:
		s.status <- svc.Status{State: svc.StartPending, WaitHint: uint32(hint / time.Millisecond)}
	case StateRunning:
		s.status <- svc.Status{State: svc.Running, Accepts: svc.AcceptStop | svc.AcceptShutdown}
	case StateStopPending:
		s.status <- svc.Status{State: svc.StopPending, WaitHint: uint32(hint / time.Millisecond)}
	case StateStopped:
		s.status <- svc.Status{State: svc.Stopped}
	}
}
