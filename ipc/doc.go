// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc implements the request-response protocol that runs over
// the transport channel, and the stdio broker that exposes it to an
// unprivileged parent process.
//
// Inside the channel, requests and responses are CBOR envelopes
// correlated by a unique request ID. The broker's outer surface is
// line-oriented JSON: one argv array per input line, one
// {"code","message"} object per output line.
package ipc
