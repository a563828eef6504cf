// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moooozi/switchboot/lib/clock"
	"github.com/moooozi/switchboot/lib/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEndpoint(t *testing.T) string {
	t.Helper()
	return filepath.Join(testutil.SocketDir(t), "endpoint.sock")
}

// echoHandler answers every message with its own payload until the
// peer disconnects.
func echoHandler(_ context.Context, conn *Conn) {
	for {
		payload, err := conn.ReceiveMessage()
		if err != nil {
			return
		}
		if err := conn.SendMessage(payload); err != nil {
			return
		}
	}
}

func TestListenerServesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cipher := testCipher(t)
	endpoint := testEndpoint(t)

	listener := NewListener(ListenerConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Policy:   Policy{WaitForNewClient: true},
		Handler:  echoHandler,
		Logger:   testLogger(),
	})

	serveErr := make(chan error, 1)
	go func() { serveErr <- listener.Serve(ctx) }()
	testutil.RequireClosed(t, listener.Ready(), 5*time.Second, "listener ready")

	conn, err := Dial(ctx, DialConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Attempts: 3,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.SendMessage([]byte("echo me")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	got, err := conn.ReceiveMessage()
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	if string(got) != "echo me" {
		t.Errorf("received %q", got)
	}

	cancel()
	if err := testutil.RequireReceive(t, serveErr, 5*time.Second, "serve return"); err != nil {
		t.Errorf("Serve: %v", err)
	}
}

func TestListenerShutdownAbortsActiveSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cipher := testCipher(t)
	endpoint := testEndpoint(t)

	listener := NewListener(ListenerConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Policy:   Policy{WaitForNewClient: true},
		Handler:  echoHandler,
		Logger:   testLogger(),
	})

	serveErr := make(chan error, 1)
	go func() { serveErr <- listener.Serve(ctx) }()
	testutil.RequireClosed(t, listener.Ready(), 5*time.Second, "listener ready")

	conn, err := Dial(ctx, DialConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Attempts: 3,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Establish the session, then leave the client idle; the handler
	// is now blocked in ReceiveMessage.
	if err := conn.SendMessage([]byte("settle in")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := conn.ReceiveMessage(); err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}

	// Shutdown must end the session without waiting for the client
	// to hang up.
	cancel()
	if err := testutil.RequireReceive(t, serveErr, 5*time.Second, "serve return"); err != nil {
		t.Errorf("Serve: %v", err)
	}
	if _, err := conn.ReceiveMessage(); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("client receive after shutdown: %v", err)
	}
}

func TestListenerServesOneSessionAtATime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cipher := testCipher(t)
	endpoint := testEndpoint(t)

	var active atomic.Int32
	var overlapped atomic.Bool
	listener := NewListener(ListenerConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Policy:   Policy{WaitForNewClient: true},
		Handler: func(_ context.Context, conn *Conn) {
			if active.Add(1) > 1 {
				overlapped.Store(true)
			}
			defer active.Add(-1)

			payload, err := conn.ReceiveMessage()
			if err != nil {
				return
			}
			// Hold the session so later dialers would overlap if the
			// listener allowed it.
			time.Sleep(20 * time.Millisecond)
			_ = conn.SendMessage(payload)
		},
		Logger: testLogger(),
	})

	go func() { _ = listener.Serve(ctx) }()
	testutil.RequireClosed(t, listener.Ready(), 5*time.Second, "listener ready")

	const clients = 5
	var wg sync.WaitGroup
	errs := make(chan error, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := Dial(ctx, DialConfig{
				Endpoint:   endpoint,
				Cipher:     cipher,
				Attempts:   20,
				RetryDelay: 25 * time.Millisecond,
				Logger:     testLogger(),
			})
			if err != nil {
				errs <- err
				return
			}
			defer conn.Close()
			if err := conn.SendMessage([]byte("one of many")); err != nil {
				errs <- err
				return
			}
			if _, err := conn.ReceiveMessage(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()

	close(errs)
	for err := range errs {
		t.Errorf("client: %v", err)
	}
	if overlapped.Load() {
		t.Fatal("more than one session was active at once")
	}
}

func TestListenerIdleShutdown(t *testing.T) {
	clk := clock.Fake(time.Now())
	listener := NewListener(ListenerConfig{
		Endpoint: testEndpoint(t),
		Policy:   Policy{MaxIdle: 5 * time.Second, WaitForNewClient: true},
		Handler:  echoHandler,
		Clock:    clk,
		Logger:   testLogger(),
	})

	serveErr := make(chan error, 1)
	go func() { serveErr <- listener.Serve(context.Background()) }()
	testutil.RequireClosed(t, listener.Ready(), 5*time.Second, "listener ready")

	clk.WaitForTimers(1)
	clk.Advance(5 * time.Second)

	if err := testutil.RequireReceive(t, serveErr, 5*time.Second, "idle shutdown"); err != nil {
		t.Errorf("Serve: %v", err)
	}
}

func TestListenerServeOnce(t *testing.T) {
	ctx := context.Background()
	clk := clock.Fake(time.Now())
	cipher := testCipher(t)
	endpoint := testEndpoint(t)

	listener := NewListener(ListenerConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Policy:   Policy{WaitForNewClient: false},
		Handler:  echoHandler,
		Clock:    clk,
		Logger:   testLogger(),
	})

	serveErr := make(chan error, 1)
	go func() { serveErr <- listener.Serve(ctx) }()
	testutil.RequireClosed(t, listener.Ready(), 5*time.Second, "listener ready")
	clk.WaitForTimers(1)

	conn, err := Dial(ctx, DialConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Attempts: 3,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := conn.SendMessage([]byte("only session")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := conn.ReceiveMessage(); err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	conn.Close()

	// The monitor only observes the session end on a later tick, so
	// keep feeding ticks until Serve returns.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-serveErr:
			if err != nil {
				t.Fatalf("Serve: %v", err)
			}
			return
		case <-deadline:
			t.Fatal("listener did not shut down after first session")
		default:
			clk.Advance(shutdownPollInterval)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestListenerRejectsWrongIdentity(t *testing.T) {
	ctx := context.Background()
	cipher := testCipher(t)
	endpoint := testEndpoint(t)

	expected := testIdentity()
	served := make(chan struct{}, 1)
	listener := NewListener(ListenerConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Policy:   Policy{WaitForNewClient: true},
		Expected: &expected,
		Handler: func(_ context.Context, conn *Conn) {
			served <- struct{}{}
			echoHandler(ctx, conn)
		},
		Logger: testLogger(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- listener.Serve(ctx) }()
	testutil.RequireClosed(t, listener.Ready(), 5*time.Second, "listener ready")

	// An impostor identity is rejected before the handler runs.
	impostor := testIdentity()
	impostor.Digest = []byte{0xde, 0xad}
	conn, err := Dial(ctx, DialConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Attempts: 3,
		Identity: &impostor,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if _, err := conn.ReceiveMessage(); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("expected rejection, got %v", err)
	}
	conn.Close()
	select {
	case <-served:
		t.Fatal("handler ran for rejected peer")
	default:
	}

	// The listener keeps serving; a matching identity gets through.
	conn, err = Dial(ctx, DialConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Attempts: 3,
		Identity: &expected,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	testutil.RequireClosed(t, served, 5*time.Second, "handler for valid peer")
}
