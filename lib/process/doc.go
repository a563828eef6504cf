// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides small process-level helpers shared by
// switchboot binaries: fatal-error exit and executable path lookup.
package process
