// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moooozi/switchboot/lib/testutil"
)

func TestDialRetriesUntilEndpointExists(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cipher := testCipher(t)
	endpoint := testEndpoint(t)

	// Start dialing before the listener exists; the retry budget must
	// absorb the startup race.
	type dialResult struct {
		conn *Conn
		err  error
	}
	results := make(chan dialResult, 1)
	go func() {
		conn, err := Dial(ctx, DialConfig{
			Endpoint:   endpoint,
			Cipher:     cipher,
			Attempts:   50,
			RetryDelay: 10 * time.Millisecond,
			Logger:     testLogger(),
		})
		results <- dialResult{conn, err}
	}()

	time.Sleep(30 * time.Millisecond)
	listener := NewListener(ListenerConfig{
		Endpoint: endpoint,
		Cipher:   cipher,
		Policy:   Policy{WaitForNewClient: true},
		Handler:  echoHandler,
		Logger:   testLogger(),
	})
	go func() { _ = listener.Serve(ctx) }()

	result := testutil.RequireReceive(t, results, 5*time.Second, "dial result")
	if result.err != nil {
		t.Fatalf("Dial: %v", result.err)
	}
	result.conn.Close()
}

func TestDialExhaustsRetries(t *testing.T) {
	_, err := Dial(context.Background(), DialConfig{
		Endpoint:   testEndpoint(t),
		Attempts:   3,
		RetryDelay: time.Millisecond,
		Logger:     testLogger(),
	})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestDialHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dial(ctx, DialConfig{
		Endpoint:   testEndpoint(t),
		Attempts:   100,
		RetryDelay: time.Hour,
		Logger:     testLogger(),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
