// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides switchboot's standard CBOR encoding
// configuration.
//
// Switchboot uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: the broker's line-oriented stdio
//     protocol and command results handed back to the controlling
//     process.
//   - CBOR for the bridge itself: the request/response envelopes and
//     handshake messages carried inside pipe frames.
//
// This package provides the shared CBOR encoding and decoding modes
// so that both sides of the bridge encode identically without
// duplicating configuration. The encoder uses Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items.
//
// For buffer-oriented operations (frame payloads):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types that only ever cross the pipe carry `cbor` struct tags; types
// that also appear on the stdio surface carry `json` tags (which
// fxamacker/cbor reads as a fallback). Never both on the same field.
package codec
