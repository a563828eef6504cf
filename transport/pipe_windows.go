// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
)

// worldAccessPipeSecurity lets any local client open the pipe. Access
// control happens inside the channel: the AEAD key and the hello
// handshake, not the pipe ACL, decide who gets served.
const worldAccessPipeSecurity = "D:(A;;GRGW;;;WD)"

func listenEndpoint(name string) (net.Listener, error) {
	listener, err := winio.ListenPipe(name, &winio.PipeConfig{
		SecurityDescriptor: worldAccessPipeSecurity,
		MessageMode:        false,
	})
	if err != nil {
		return nil, fmt.Errorf("listening on pipe %s: %w", name, err)
	}
	return listener, nil
}

func dialEndpoint(ctx context.Context, name string) (net.Conn, error) {
	conn, err := winio.DialPipeContext(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("dialing pipe %s: %w", name, err)
	}
	return conn, nil
}
