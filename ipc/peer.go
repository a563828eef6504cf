// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/moooozi/switchboot/lib/codec"
	"github.com/moooozi/switchboot/transport"
)

// Dispatcher executes one command argv and returns its result value.
// The result is marshaled into the response envelope; a returned
// error becomes a StatusError response.
type Dispatcher interface {
	Dispatch(ctx context.Context, args []string) (any, error)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, args []string) (any, error)

func (f DispatcherFunc) Dispatch(ctx context.Context, args []string) (any, error) {
	return f(ctx, args)
}

// ServeConn answers requests on conn until the peer disconnects or
// ctx is cancelled. A malformed request gets an error response and
// the session continues; only channel failures end it.
func ServeConn(ctx context.Context, conn *transport.Conn, dispatcher Dispatcher, logger *slog.Logger) {
	for {
		payload, err := conn.ReceiveMessage()
		if err != nil {
			if !errors.Is(err, transport.ErrConnectionClosed) {
				logger.Warn("receive failed", "conn", conn.ID(), "error", err)
			}
			return
		}

		var request Request
		if err := codec.Unmarshal(payload, &request); err != nil {
			logger.Warn("malformed request", "conn", conn.ID(), "error", err)
			if !respond(conn, logger, Response{
				Status: StatusError,
				Error:  "malformed request: " + err.Error(),
			}) {
				return
			}
			continue
		}

		response := dispatch(ctx, dispatcher, request, logger)
		if !respond(conn, logger, response) {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func dispatch(ctx context.Context, dispatcher Dispatcher, request Request, logger *slog.Logger) Response {
	result, err := dispatcher.Dispatch(ctx, request.Args)
	if err != nil {
		logger.Warn("command failed", "id", request.ID, "args", request.Args, "error", err)
		return Response{ID: request.ID, Status: StatusError, Error: err.Error()}
	}

	response := Response{ID: request.ID, Status: StatusOK}
	if result != nil {
		encoded, err := codec.Marshal(result)
		if err != nil {
			logger.Error("encoding result failed", "id", request.ID, "error", err)
			return Response{ID: request.ID, Status: StatusError, Error: "internal: encoding result failed"}
		}
		response.Result = encoded
	}
	return response
}

// respond writes a response envelope. Returns false when the channel
// is gone and the serve loop should end.
func respond(conn *transport.Conn, logger *slog.Logger, response Response) bool {
	payload, err := codec.Marshal(response)
	if err != nil {
		logger.Error("encoding response failed", "id", response.ID, "error", err)
		return true
	}
	if err := conn.SendMessage(payload); err != nil {
		if !errors.Is(err, transport.ErrConnectionClosed) {
			logger.Warn("send failed", "conn", conn.ID(), "error", err)
		}
		return false
	}
	return true
}
