// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/moooozi/switchboot/lib/codec"
	"github.com/moooozi/switchboot/transport"
)

// Client issues requests over an established channel. Calls are
// strictly sequential: each request waits for its response before the
// next request goes out. The protocol has no pipelining, so a Client
// serializes concurrent callers internally.
type Client struct {
	mu   sync.Mutex
	conn *transport.Conn
}

// NewClient wraps conn. The Client does not own the connection; close
// it separately when the session ends.
func NewClient(conn *transport.Conn) *Client {
	return &Client{conn: conn}
}

// Call sends args to the peer and returns the raw result. A peer-side
// command failure is returned as a *RemoteError; anything else is a
// channel failure.
func (c *Client) Call(args []string) (codec.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	request := Request{
		ID:   uuid.NewString(),
		Args: args,
	}
	payload, err := codec.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	if err := c.conn.SendMessage(payload); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	replyPayload, err := c.conn.ReceiveMessage()
	if err != nil {
		return nil, fmt.Errorf("receiving response: %w", err)
	}
	var response Response
	if err := codec.Unmarshal(replyPayload, &response); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if response.ID != request.ID {
		return nil, fmt.Errorf("response ID %q does not match request %q", response.ID, request.ID)
	}
	if response.Status != StatusOK {
		return nil, &RemoteError{Message: response.Error}
	}
	return response.Result, nil
}
