// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for switchboot
// packages: channel receive/send/close waits with timeout safety
// valves, and short-path temporary directories for unix-socket
// endpoints.
package testutil
