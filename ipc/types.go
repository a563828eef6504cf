// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import "github.com/moooozi/switchboot/lib/codec"

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request is one command sent to the elevated peer. Args is the argv
// the peer dispatches on, with the command name at index zero.
type Request struct {
	ID   string   `cbor:"id"`
	Args []string `cbor:"args"`
}

// Response answers exactly one Request, matched by ID. Status is
// StatusOK with Result set, or StatusError with Error set.
type Response struct {
	ID     string           `cbor:"id"`
	Status string           `cbor:"status"`
	Result codec.RawMessage `cbor:"result,omitempty"`
	Error  string           `cbor:"error,omitempty"`
}

// BrokerOutput is one line of the broker's stdout protocol. Code 0
// means success and Message carries the command's JSON result; code 1
// means failure and Message carries the error text.
type BrokerOutput struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RemoteError is a failure reported by the elevated peer, as opposed
// to a channel failure.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }
