// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport implements the encrypted duplex channel between
// the unprivileged broker and the elevated service peer.
//
// Messages travel as length-prefixed frames: a 4-byte little-endian
// length followed by that many payload bytes. Each payload is sealed
// with ChaCha20-Poly1305 under a shared 256-bit key, with a fresh
// random 12-byte nonce prepended to the ciphertext. A receiver
// rejects frames whose claimed length exceeds the configured maximum
// before allocating, and rejects any payload that fails
// authentication.
//
// On Windows the endpoint is a named pipe; elsewhere it is a Unix
// socket, which keeps the package testable on development machines.
package transport
