// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/moooozi/switchboot/lib/clock"
)

// ErrNotConnected reports that the retry budget was exhausted without
// establishing a session.
var ErrNotConnected = errors.New("could not connect to service endpoint")

// DialConfig carries everything Dial needs.
type DialConfig struct {
	// Endpoint is the endpoint name to connect to.
	Endpoint string

	// Cipher seals the channel. Nil disables sealing (tests only).
	Cipher *Cipher

	// MaxFrameSize caps incoming frame lengths. Zero means
	// DefaultMaxFrameSize.
	MaxFrameSize uint32

	// Attempts is the connect retry budget. The endpoint may not
	// exist yet while the service is still starting, so the first
	// connect is expected to race service startup.
	Attempts int

	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration

	// Identity, when non-nil, is sent as the hello immediately after
	// connecting.
	Identity *Identity

	// Clock drives the retry delays. Nil means the real clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Dial connects to the endpoint, retrying with a fixed delay up to
// the configured attempt budget. On success the hello has already
// been sent and the returned Conn is ready for request traffic.
func Dial(ctx context.Context, cfg DialConfig) (*Conn, error) {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-cfg.Clock.After(cfg.RetryDelay):
			}
		}

		nc, err := dialEndpoint(ctx, cfg.Endpoint)
		if err != nil {
			lastErr = err
			cfg.Logger.Debug("connect attempt failed",
				"endpoint", cfg.Endpoint, "attempt", attempt, "error", err)
			continue
		}

		conn := NewConn(nc, cfg.Cipher, cfg.MaxFrameSize)
		if cfg.Identity != nil {
			if err := SendIdentity(conn, *cfg.Identity); err != nil {
				conn.Close()
				lastErr = err
				continue
			}
		}
		return conn, nil
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %w",
		ErrNotConnected, cfg.Endpoint, cfg.Attempts, lastErr)
}
