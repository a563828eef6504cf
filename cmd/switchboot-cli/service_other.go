// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package main

import (
	"fmt"
	"log/slog"

	"github.com/moooozi/switchboot/lib/config"
)

var errServiceManagementUnsupported = fmt.Errorf("service management requires windows; run serve to host the listener directly")

func runService(cfg config.Config, logger *slog.Logger) error {
	return errServiceManagementUnsupported
}

// ensureService assumes an already-running serve process on platforms
// without a service manager; the broker's connect retries cover the
// gap.
func ensureService(config.Config, *slog.Logger) error {
	return nil
}

func releaseService(config.Config, *slog.Logger) {}

func installService(config.Config, *slog.Logger) error {
	return errServiceManagementUnsupported
}

func uninstallService(config.Config, *slog.Logger) error {
	return errServiceManagementUnsupported
}

func startService(config.Config, *slog.Logger) error {
	return errServiceManagementUnsupported
}

func stopService(config.Config, *slog.Logger) error {
	return errServiceManagementUnsupported
}
