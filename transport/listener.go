// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/moooozi/switchboot/lib/clock"
)

// shutdownPollInterval is how often the listener's monitor evaluates
// its shutdown policy.
const shutdownPollInterval = 250 * time.Millisecond

// Policy controls when a listener shuts itself down.
type Policy struct {
	// MaxIdle shuts the listener down after this long without an
	// active session. Zero disables idle shutdown.
	MaxIdle time.Duration

	// WaitForNewClient, when false, shuts the listener down as soon
	// as its first session ends.
	WaitForNewClient bool
}

// Handler serves one established session. It owns the session for its
// duration but not the Conn's lifetime; the listener closes the Conn
// after the handler returns. The listener serves sessions one at a
// time, so at most one Handler runs at any moment.
type Handler func(ctx context.Context, conn *Conn)

// ListenerConfig carries everything a Listener needs.
type ListenerConfig struct {
	// Endpoint is the endpoint name to listen on.
	Endpoint string

	// Cipher seals the channel. Nil disables sealing (tests only).
	Cipher *Cipher

	// MaxFrameSize caps incoming frame lengths. Zero means
	// DefaultMaxFrameSize.
	MaxFrameSize uint32

	Policy  Policy
	Handler Handler

	// Expected, when non-nil, is the identity every connecting peer
	// must prove in its hello before the handler runs.
	Expected *Identity

	// Clock drives the shutdown monitor. Nil means the real clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Listener accepts sessions on a local endpoint, one at a time, and
// shuts itself down per its Policy. A second client connecting while
// a session is active waits in the accept backlog until the first
// session ends.
type Listener struct {
	cfg ListenerConfig

	mu           sync.Mutex
	active       bool
	servedFirst  bool
	lastActivity time.Time

	ready     chan struct{}
	readyOnce sync.Once
}

// NewListener creates a Listener. Call Serve to run it.
func NewListener(cfg ListenerConfig) *Listener {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = DefaultMaxFrameSize
	}
	return &Listener{
		cfg:   cfg,
		ready: make(chan struct{}),
	}
}

// Ready is closed once the endpoint exists and the listener is
// accepting. Callers use it to sequence readiness reporting.
func (l *Listener) Ready() <-chan struct{} {
	return l.ready
}

// Serve listens on the endpoint and dispatches sessions to the
// handler until the policy triggers shutdown or ctx is cancelled.
// Policy-driven shutdown returns nil.
func (l *Listener) Serve(ctx context.Context) error {
	nl, err := listenEndpoint(l.cfg.Endpoint)
	if err != nil {
		return err
	}
	defer nl.Close()

	l.mu.Lock()
	l.lastActivity = l.cfg.Clock.Now()
	l.mu.Unlock()

	shutdownCtx, shutdown := context.WithCancel(ctx)
	defer shutdown()

	// Unblock Accept when shutdown triggers, whether from the monitor
	// or the caller's context.
	go func() {
		<-shutdownCtx.Done()
		nl.Close()
	}()
	go l.monitor(shutdownCtx, shutdown)

	l.cfg.Logger.Info("listening", "endpoint", l.cfg.Endpoint)
	l.readyOnce.Do(func() { close(l.ready) })

	for {
		nc, err := nl.Accept()
		if err != nil {
			if shutdownCtx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.cfg.Logger.Error("accept failed", "error", err)
			continue
		}
		l.serveSession(shutdownCtx, nc)
	}
}

func (l *Listener) serveSession(ctx context.Context, nc net.Conn) {
	conn := NewConn(nc, l.cfg.Cipher, l.cfg.MaxFrameSize)

	// Shutdown must reach a handler blocked in ReceiveMessage, not
	// just the accept loop. Closing the conn unblocks it with
	// ErrConnectionClosed.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if l.cfg.Expected != nil {
		if err := VerifyPeer(conn, *l.cfg.Expected); err != nil {
			l.cfg.Logger.Warn("rejecting peer", "conn", conn.ID(), "error", err)
			conn.Close()
			l.endSession()
			return
		}
	}

	l.mu.Lock()
	l.active = true
	l.mu.Unlock()

	l.cfg.Logger.Info("session started", "conn", conn.ID())
	l.cfg.Handler(ctx, conn)
	conn.Close()
	l.cfg.Logger.Info("session ended", "conn", conn.ID())

	l.endSession()
}

// endSession records the session boundary for the shutdown policy. A
// rejected peer counts too: its connect attempt both refreshes the
// idle deadline and consumes the serve-once budget.
func (l *Listener) endSession() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = false
	l.servedFirst = true
	l.lastActivity = l.cfg.Clock.Now()
}

func (l *Listener) monitor(ctx context.Context, shutdown context.CancelFunc) {
	ticker := l.cfg.Clock.NewTicker(shutdownPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if reason := l.shutdownReason(); reason != "" {
				l.cfg.Logger.Info("shutting down listener", "reason", reason)
				shutdown()
				return
			}
		}
	}
}

// shutdownReason returns a non-empty description when the policy says
// to stop, or "" to keep serving.
func (l *Listener) shutdownReason() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active {
		return ""
	}
	if l.servedFirst && !l.cfg.Policy.WaitForNewClient {
		return "first session complete"
	}
	if l.cfg.Policy.MaxIdle > 0 && l.cfg.Clock.Now().Sub(l.lastActivity) >= l.cfg.Policy.MaxIdle {
		return "idle timeout"
	}
	return ""
}
