// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
)

// ErrConnectionClosed reports an operation on a connection that has
// been closed, locally or by the peer.
var ErrConnectionClosed = errors.New("connection closed")

// Conn is one encrypted channel over a net.Conn. It owns the
// underlying connection and closes it on Close. Sends and receives
// are each serialized internally, so a Conn may be shared by a sender
// goroutine and a receiver goroutine without external locking.
type Conn struct {
	id           string
	conn         net.Conn
	cipher       *Cipher
	maxFrameSize uint32

	sendMu sync.Mutex
	recvMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// NewConn wraps nc in an encrypted channel. A nil cipher passes
// payloads through unsealed; that mode exists for tests and must
// never carry production traffic.
func NewConn(nc net.Conn, cipher *Cipher, maxFrameSize uint32) *Conn {
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &Conn{
		id:           uuid.NewString(),
		conn:         nc,
		cipher:       cipher,
		maxFrameSize: maxFrameSize,
		closed:       make(chan struct{}),
	}
}

// ID returns the connection's unique identifier, used to correlate
// log lines across both sides of a session.
func (c *Conn) ID() string { return c.id }

// SendMessage seals payload and writes it as one frame.
func (c *Conn) SendMessage(payload []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.isClosed() {
		return ErrConnectionClosed
	}

	sealed := payload
	if c.cipher != nil {
		var err error
		sealed, err = c.cipher.Seal(payload)
		if err != nil {
			return fmt.Errorf("sealing message: %w", err)
		}
	}
	if err := WriteFrame(c.conn, sealed, c.maxFrameSize); err != nil {
		if c.isClosed() || errors.Is(err, net.ErrClosed) {
			return ErrConnectionClosed
		}
		return err
	}
	return nil
}

// ReceiveMessage reads one frame and opens it. A peer disconnect is
// reported as ErrConnectionClosed.
func (c *Conn) ReceiveMessage() ([]byte, error) {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()

	if c.isClosed() {
		return nil, ErrConnectionClosed
	}

	sealed, err := ReadFrame(c.conn, c.maxFrameSize)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || c.isClosed() {
			return nil, ErrConnectionClosed
		}
		return nil, err
	}
	if c.cipher == nil {
		return sealed, nil
	}
	plaintext, err := c.cipher.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("opening message: %w", err)
	}
	return plaintext, nil
}

// Close closes the underlying connection. Safe to call more than
// once and from any goroutine; blocked sends and receives unblock
// with ErrConnectionClosed.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
