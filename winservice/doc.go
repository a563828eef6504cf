// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package winservice manages the elevated peer's life as a Windows
// service: registration with the service control manager, the start
// permission grant for unprivileged callers, and the state machine
// that walks StartPending, Running, StopPending, Stopped around the
// listener worker.
//
// The state machine, the shutdown watchdog, and the security
// descriptor handling are portable and tested everywhere; only the
// thin SCM bindings are Windows-specific.
package winservice
