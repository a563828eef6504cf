// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/moooozi/switchboot/lib/codec"
	"github.com/moooozi/switchboot/transport"
)

// Caller issues one command and returns its raw CBOR result. In
// production this is a *Client; tests substitute their own.
type Caller interface {
	Call(args []string) (codec.RawMessage, error)
}

// Broker bridges a line-oriented stdio protocol to the channel
// protocol. Each input line is a JSON array of strings (an argv);
// each output line is a BrokerOutput object. A malformed input line
// produces an error line and the loop continues; input EOF ends the
// broker cleanly.
type Broker struct {
	caller Caller
	input  io.Reader
	output io.Writer
	logger *slog.Logger
}

// NewBroker creates a Broker reading argv lines from input and
// writing result lines to output.
func NewBroker(caller Caller, input io.Reader, output io.Writer, logger *slog.Logger) *Broker {
	return &Broker{
		caller: caller,
		input:  input,
		output: output,
		logger: logger,
	}
}

// Run processes input lines until EOF or channel loss. A lost channel
// is an error; EOF is not.
func (b *Broker) Run() error {
	scanner := bufio.NewScanner(b.input)
	encoder := json.NewEncoder(b.output)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var args []string
		if err := json.Unmarshal(line, &args); err != nil {
			b.logger.Warn("malformed input line", "error", err)
			if err := encoder.Encode(BrokerOutput{Code: 1, Message: "malformed command line: " + err.Error()}); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			continue
		}

		output, fatal := b.execute(args)
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		// A lost channel cannot serve any further line. The error
		// line above already told the parent what happened.
		if fatal != nil {
			return fatal
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func (b *Broker) execute(args []string) (BrokerOutput, error) {
	result, err := b.caller.Call(args)
	if err != nil {
		if errors.Is(err, transport.ErrConnectionClosed) {
			return BrokerOutput{Code: 1, Message: "service connection lost"}, err
		}
		var remote *RemoteError
		if errors.As(err, &remote) {
			return BrokerOutput{Code: 1, Message: remote.Message}, nil
		}
		return BrokerOutput{Code: 1, Message: err.Error()}, nil
	}

	// Results travel as CBOR inside the channel but the stdio surface
	// speaks JSON.
	message := ""
	if len(result) > 0 {
		var value any
		if err := codec.Unmarshal(result, &value); err != nil {
			return BrokerOutput{Code: 1, Message: "malformed result: " + err.Error()}, nil
		}
		rendered, err := json.Marshal(value)
		if err != nil {
			return BrokerOutput{Code: 1, Message: "rendering result: " + err.Error()}, nil
		}
		message = string(rendered)
	}
	return BrokerOutput{Code: 0, Message: message}, nil
}
