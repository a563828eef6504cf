// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package main

import (
	"fmt"
	"log/slog"

	"github.com/moooozi/switchboot/lib/config"
	"github.com/moooozi/switchboot/lib/process"
	"github.com/moooozi/switchboot/winservice"
)

// runService is the SCM entry point: the registered binary runs
// "switchboot-cli service" and lands here.
func runService(cfg config.Config, logger *slog.Logger) error {
	isService, err := winservice.IsWindowsService()
	if err != nil {
		return fmt.Errorf("detecting service environment: %w", err)
	}
	if !isService {
		return fmt.Errorf("the service command only runs under the service control manager; use serve for a foreground listener")
	}

	worker, err := newWorker(cfg, logger)
	if err != nil {
		return err
	}
	return winservice.RunService(cfg.Service.Name, winservice.RunnerConfig{
		Worker:       worker,
		ReadyTimeout: cfg.Service.ReadyTimeout.Std(),
		StopGrace:    cfg.Service.StopGrace.Std(),
		Logger:       logger,
	})
}

// serviceDescriptor builds the registration for this binary.
func serviceDescriptor(cfg config.Config) (winservice.Descriptor, error) {
	executable, err := process.Executable()
	if err != nil {
		return winservice.Descriptor{}, err
	}
	return winservice.Descriptor{
		Name:                 cfg.Service.Name,
		DisplayName:          cfg.Service.DisplayName,
		ExecutablePath:       executable,
		LaunchArguments:      []string{"service"},
		GrantStartToEveryone: true,
	}, nil
}

// ensureService gets the service side running before the broker
// connects: installed if missing, pointing at this binary, started.
func ensureService(cfg config.Config, logger *slog.Logger) error {
	manager := winservice.NewManager(logger)

	descriptor, err := serviceDescriptor(cfg)
	if err != nil {
		return err
	}

	installed, err := manager.IsInstalled(cfg.Service.Name)
	if err != nil {
		return err
	}
	if installed {
		registered, err := manager.BinaryPath(cfg.Service.Name)
		if err != nil {
			return err
		}
		if registered != descriptor.ExecutablePath {
			return fmt.Errorf("service %s is registered to %s, not this binary; uninstall it first",
				cfg.Service.Name, registered)
		}
	} else {
		if err := manager.Install(descriptor); err != nil {
			return err
		}
	}

	return manager.Start(cfg.Service.Name, cfg.Service.StartTimeout.Std())
}

// releaseService stops the service once the broker session is over.
// The listener's own shutdown policy makes this best effort.
func releaseService(cfg config.Config, logger *slog.Logger) {
	manager := winservice.NewManager(logger)
	if err := manager.Stop(cfg.Service.Name, cfg.Service.StopGrace.Std()); err != nil {
		logger.Debug("stop after session failed", "name", cfg.Service.Name, "error", err)
	}
}

func installService(cfg config.Config, logger *slog.Logger) error {
	descriptor, err := serviceDescriptor(cfg)
	if err != nil {
		return err
	}
	return winservice.NewManager(logger).Install(descriptor)
}

func uninstallService(cfg config.Config, logger *slog.Logger) error {
	return winservice.NewManager(logger).Uninstall(cfg.Service.Name, cfg.Service.StopGrace.Std())
}

func startService(cfg config.Config, logger *slog.Logger) error {
	return winservice.NewManager(logger).Start(cfg.Service.Name, cfg.Service.StartTimeout.Std())
}

func stopService(cfg config.Config, logger *slog.Logger) error {
	return winservice.NewManager(logger).Stop(cfg.Service.Name, cfg.Service.StopGrace.Std())
}
