// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for
// testability.
//
// Production code accepts a Clock parameter instead of calling
// time.Now, time.After, time.NewTicker, or time.Sleep directly. In
// production, Real() provides the standard library behavior. In tests,
// Fake() provides a deterministic clock that advances only when
// Advance is called.
//
// The transport listener's shutdown monitor, the client's
// connect-retry loop, and the service lifecycle watchdog are the
// consumers in this module; their tests drive time with a FakeClock
// instead of sleeping.
//
// When a goroutine calls Sleep, After, or NewTicker on a FakeClock, it
// registers a pending wait. Use WaitForTimers to block until a given
// number of waits are registered before calling Advance; this removes
// the race between registration and advancement that plagues tests
// using real sleeps for synchronization.
package clock
