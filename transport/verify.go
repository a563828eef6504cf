// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/moooozi/switchboot/lib/binhash"
	"github.com/moooozi/switchboot/lib/codec"
	"github.com/moooozi/switchboot/lib/process"
)

// ErrPeerMismatch reports a connecting peer whose executable does not
// match this installation.
var ErrPeerMismatch = errors.New("peer is not the same installation")

// Identity describes one side's executable for the post-connect
// hello. It travels inside the sealed channel, so a peer cannot claim
// an identity without also holding the channel key.
type Identity struct {
	Path   string `cbor:"path"`
	Digest []byte `cbor:"digest"`
}

// LocalIdentity resolves the running executable's path and binary
// digest.
func LocalIdentity() (Identity, error) {
	path, err := process.Executable()
	if err != nil {
		return Identity{}, fmt.Errorf("resolving executable: %w", err)
	}
	digest, err := binhash.HashFile(path)
	if err != nil {
		return Identity{}, fmt.Errorf("hashing executable: %w", err)
	}
	return Identity{Path: path, Digest: digest[:]}, nil
}

// SendIdentity writes the hello message. The connecting side calls
// this immediately after the channel is established.
func SendIdentity(conn *Conn, id Identity) error {
	payload, err := codec.Marshal(id)
	if err != nil {
		return fmt.Errorf("encoding hello: %w", err)
	}
	if err := conn.SendMessage(payload); err != nil {
		return fmt.Errorf("sending hello: %w", err)
	}
	return nil
}

// VerifyPeer reads the peer's hello and checks it against expected.
// The accepting side calls this before serving any request on the
// connection.
func VerifyPeer(conn *Conn, expected Identity) error {
	payload, err := conn.ReceiveMessage()
	if err != nil {
		return fmt.Errorf("receiving hello: %w", err)
	}
	var peer Identity
	if err := codec.Unmarshal(payload, &peer); err != nil {
		return fmt.Errorf("decoding hello: %w", err)
	}
	if peer.Path != expected.Path {
		return fmt.Errorf("%w: executable %q, expected %q", ErrPeerMismatch, peer.Path, expected.Path)
	}
	if !bytes.Equal(peer.Digest, expected.Digest) {
		var got, want binhash.Digest
		copy(got[:], peer.Digest)
		copy(want[:], expected.Digest)
		return fmt.Errorf("%w: binary digest %s for %q, expected %s", ErrPeerMismatch, got, peer.Path, want)
	}
	return nil
}
