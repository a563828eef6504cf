// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"fmt"
)

// Handler executes one named command. args excludes the command name.
type Handler func(ctx context.Context, args []string) (any, error)

// Registry maps command names to handlers. It implements Dispatcher
// with args[0] as the command name.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Handle registers a handler for the given command name. Panics on a
// duplicate registration.
func (r *Registry) Handle(name string, handler Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("ipc.Registry: duplicate handler for command %q", name))
	}
	r.handlers[name] = handler
}

// Dispatch implements Dispatcher.
func (r *Registry) Dispatch(ctx context.Context, args []string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	handler, ok := r.handlers[args[0]]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", args[0])
	}
	return handler(ctx, args[1:])
}
