// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package transport

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

const pipePrefix = `\\.\pipe\`

// endpointSocketPath maps an endpoint name to a Unix socket path.
// Windows pipe names map into the temp directory; anything else is
// taken as a filesystem path directly, which is what tests pass.
func endpointSocketPath(name string) string {
	if id, ok := strings.CutPrefix(name, pipePrefix); ok {
		return filepath.Join(os.TempDir(), "switchboot-"+id+".sock")
	}
	return name
}

func listenEndpoint(name string) (net.Listener, error) {
	path := endpointSocketPath(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", path, err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", path, err)
	}
	return listener, nil
}

func dialEndpoint(ctx context.Context, name string) (net.Conn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", endpointSocketPath(name))
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", name, err)
	}
	return conn, nil
}
