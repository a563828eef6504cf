// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package winservice

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"

	"github.com/moooozi/switchboot/lib/clock"
)

// statePollInterval is how often lifecycle waits re-query the SCM.
const statePollInterval = 250 * time.Millisecond

// Manager performs service registration and lifecycle operations
// against the local service control manager. Most operations require
// administrator rights; Start alone works for any user once the start
// grant is in place.
type Manager struct {
	clk    clock.Clock
	logger *slog.Logger
}

// NewManager creates a Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{clk: clock.Real(), logger: logger}
}

// Install registers the service as demand-start and applies the start
// grant when the descriptor asks for it.
func (m *Manager) Install(d Descriptor) error {
	scm, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connecting to service manager: %w", err)
	}
	defer scm.Disconnect()

	if existing, err := scm.OpenService(d.Name); err == nil {
		existing.Close()
		return fmt.Errorf("service %s is already installed", d.Name)
	}

	service, err := scm.CreateService(d.Name, d.ExecutablePath, mgr.Config{
		DisplayName: d.DisplayName,
		StartType:   mgr.StartManual,
	}, d.LaunchArguments...)
	if err != nil {
		return fmt.Errorf("creating service %s: %w", d.Name, err)
	}
	defer service.Close()

	if d.GrantStartToEveryone {
		if err := m.grantStartToEveryone(d.Name); err != nil {
			return fmt.Errorf("granting start permission: %w", err)
		}
	}
	m.logger.Info("service installed", "name", d.Name, "path", d.ExecutablePath)
	return nil
}

// grantStartToEveryone rewrites the service's DACL with the world
// start ACE. The descriptor round-trips through SDDL so the edit
// stays textual.
func (m *Manager) grantStartToEveryone(name string) error {
	descriptor, err := windows.GetNamedSecurityInfo(
		name, windows.SE_SERVICE, windows.DACL_SECURITY_INFORMATION)
	if err != nil {
		return fmt.Errorf("reading security descriptor: %w", err)
	}

	updated, err := windows.SecurityDescriptorFromString(InjectWorldAce(descriptor.String()))
	if err != nil {
		return fmt.Errorf("parsing updated descriptor: %w", err)
	}
	dacl, _, err := updated.DACL()
	if err != nil {
		return fmt.Errorf("extracting DACL: %w", err)
	}

	if err := windows.SetNamedSecurityInfo(
		name, windows.SE_SERVICE, windows.DACL_SECURITY_INFORMATION,
		nil, nil, dacl, nil); err != nil {
		return fmt.Errorf("writing security descriptor: %w", err)
	}
	return nil
}

// Uninstall stops the service if needed and deletes its registration,
// waiting up to wait for the SCM to complete the removal. A service
// that is already gone counts as success.
func (m *Manager) Uninstall(name string, wait time.Duration) error {
	scm, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connecting to service manager: %w", err)
	}
	defer scm.Disconnect()

	service, err := scm.OpenService(name)
	if err != nil {
		if errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST) {
			return nil
		}
		return fmt.Errorf("opening service %s: %w", name, err)
	}

	// Best effort; a service that is not running rejects the control.
	if _, err := service.Control(svc.Stop); err != nil &&
		!errors.Is(err, windows.ERROR_SERVICE_NOT_ACTIVE) {
		m.logger.Warn("stop before uninstall failed", "name", name, "error", err)
	}

	if err := service.Delete(); err != nil {
		service.Close()
		if errors.Is(err, windows.ERROR_SERVICE_MARKED_FOR_DELETE) {
			return nil
		}
		return fmt.Errorf("deleting service %s: %w", name, err)
	}
	service.Close()

	// Deletion is asynchronous: the registration lingers until every
	// open handle is gone. Poll until it disappears or wait elapses.
	deadline := m.clk.Now().Add(wait)
	for {
		probe, err := scm.OpenService(name)
		if err != nil {
			return nil
		}
		probe.Close()
		if m.clk.Now().After(deadline) {
			m.logger.Warn("service still registered after delete", "name", name)
			return nil
		}
		m.clk.Sleep(statePollInterval)
	}
}

// Start starts the service and waits up to timeout for it to reach
// Running.
func (m *Manager) Start(name string, timeout time.Duration) error {
	scm, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connecting to service manager: %w", err)
	}
	defer scm.Disconnect()

	service, err := scm.OpenService(name)
	if err != nil {
		return fmt.Errorf("opening service %s: %w", name, err)
	}
	defer service.Close()

	if err := service.Start(); err != nil &&
		!errors.Is(err, windows.ERROR_SERVICE_ALREADY_RUNNING) {
		return fmt.Errorf("starting service %s: %w", name, err)
	}
	return m.waitForState(service, name, svc.Running, timeout)
}

// Stop asks the service to stop and waits up to wait for it to reach
// Stopped. A service that is not running counts as stopped.
func (m *Manager) Stop(name string, wait time.Duration) error {
	scm, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connecting to service manager: %w", err)
	}
	defer scm.Disconnect()

	service, err := scm.OpenService(name)
	if err != nil {
		return fmt.Errorf("opening service %s: %w", name, err)
	}
	defer service.Close()

	if _, err := service.Control(svc.Stop); err != nil {
		if errors.Is(err, windows.ERROR_SERVICE_NOT_ACTIVE) {
			return nil
		}
		return fmt.Errorf("stopping service %s: %w", name, err)
	}
	return m.waitForState(service, name, svc.Stopped, wait)
}

func (m *Manager) waitForState(service *mgr.Service, name string, want svc.State, timeout time.Duration) error {
	deadline := m.clk.Now().Add(timeout)
	for {
		status, err := service.Query()
		if err != nil {
			return fmt.Errorf("querying service %s: %w", name, err)
		}
		if status.State == want {
			return nil
		}
		if m.clk.Now().After(deadline) {
			return fmt.Errorf("service %s did not reach state %d within %v", name, want, timeout)
		}
		m.clk.Sleep(statePollInterval)
	}
}

// IsInstalled reports whether the service is registered.
func (m *Manager) IsInstalled(name string) (bool, error) {
	scm, err := mgr.Connect()
	if err != nil {
		return false, fmt.Errorf("connecting to service manager: %w", err)
	}
	defer scm.Disconnect()

	service, err := scm.OpenService(name)
	if err != nil {
		if errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST) {
			return false, nil
		}
		return false, fmt.Errorf("opening service %s: %w", name, err)
	}
	service.Close()
	return true, nil
}

// BinaryPath returns the executable path the registration points at.
func (m *Manager) BinaryPath(name string) (string, error) {
	scm, err := mgr.Connect()
	if err != nil {
		return "", fmt.Errorf("connecting to service manager: %w", err)
	}
	defer scm.Disconnect()

	service, err := scm.OpenService(name)
	if err != nil {
		return "", fmt.Errorf("opening service %s: %w", name, err)
	}
	defer service.Close()

	cfg, err := service.Config()
	if err != nil {
		return "", fmt.Errorf("reading config of service %s: %w", name, err)
	}
	return ParseCommandPath(cfg.BinaryPathName), nil
}
