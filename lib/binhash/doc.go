// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes keyed BLAKE3 digests of executable images.
//
// The same-installation handshake uses these digests to verify that
// the peer on the other end of the pipe was built from the same
// binary as the local process, in addition to comparing executable
// paths. Digests are keyed with a fixed domain-separation key so they
// never collide with hashes computed elsewhere.
package binhash
