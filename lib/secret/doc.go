// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for sensitive data --
// in this module, the channel's AEAD key.
//
// [Buffer] allocates memory outside the Go heap and locks it into
// physical RAM (mmap+mlock on unix, VirtualAlloc+VirtualLock on
// Windows). On Close, the memory is zeroed and released. Because the
// memory lives outside the Go heap, the garbage collector cannot copy
// or relocate it, so key material does not linger after release.
//
// Constructors:
//
//   - [New] -- allocates a zero-filled buffer of a given size
//   - [NewFromBytes] -- copies into protected memory, zeros the source
//   - [ReadFromPath] -- reads a secret from a file or stdin
//   - [ReadKeyHex], [PromptKeyHex] -- load a hex-encoded key
//
// Access via [Buffer.Bytes] (slice into the protected region).
// [Buffer.Equal] uses constant-time comparison. After Close, any
// access panics. Close is idempotent.
package secret
