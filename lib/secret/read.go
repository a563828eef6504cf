// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ReadFromPath reads a secret from a file path, or from stdin if path
// is "-". The returned buffer is locked into RAM and must be closed
// by the caller. Leading/trailing whitespace is trimmed before
// storing. Returns an error if the source is empty after trimming.
func ReadFromPath(path string) (*Buffer, error) {
	var data []byte

	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return nil, fmt.Errorf("stdin is empty")
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret source %s is empty", path)
	}

	// NewFromBytes copies into locked memory and zeros trimmed; zero
	// the whitespace prefix/suffix that trimmed does not cover.
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

// ReadKeyHex loads a hex-encoded key from path ("-" for stdin) and
// returns the decoded raw bytes in a locked buffer. keySize is the
// expected decoded length in bytes.
func ReadKeyHex(path string, keySize int) (*Buffer, error) {
	encoded, err := ReadFromPath(path)
	if err != nil {
		return nil, err
	}
	defer encoded.Close()

	return decodeKeyHex(encoded.Bytes(), keySize)
}

// PromptKeyHex reads a hex-encoded key from the terminal with echo
// disabled and returns the decoded raw bytes in a locked buffer.
// Fails when stdin is not a terminal; non-interactive callers should
// use ReadKeyHex with "-" instead.
func PromptKeyHex(prompt string, keySize int) (*Buffer, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal; pass the key via a file or '-'")
	}

	fmt.Fprint(os.Stderr, prompt)
	line, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading key from terminal: %w", err)
	}

	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		Zero(line)
		return nil, fmt.Errorf("no key entered")
	}
	buffer, err := decodeKeyHex(trimmed, keySize)
	Zero(line)
	return buffer, err
}

// decodeKeyHex hex-decodes encoded into a locked buffer of keySize
// bytes. The intermediate decode buffer is zeroed before returning.
func decodeKeyHex(encoded []byte, keySize int) (*Buffer, error) {
	if hex.DecodedLen(len(encoded)) != keySize {
		return nil, fmt.Errorf("key is %d hex characters, want %d", len(encoded), hex.EncodedLen(keySize))
	}

	raw := make([]byte, keySize)
	if _, err := hex.Decode(raw, encoded); err != nil {
		Zero(raw)
		return nil, fmt.Errorf("decoding hex key: %w", err)
	}

	// NewFromBytes zeros raw after copying it into locked memory.
	return NewFromBytes(raw)
}
