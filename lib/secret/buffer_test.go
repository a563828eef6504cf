// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"testing"
)

func TestNewFromBytesZerosSource(t *testing.T) {
	source := []byte("super-secret-key-material")
	original := append([]byte(nil), source...)

	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes() error: %v", err)
	}
	defer buffer.Close()

	if !bytes.Equal(buffer.Bytes(), original) {
		t.Errorf("buffer contents = %q, want %q", buffer.Bytes(), original)
	}
	for index, b := range source {
		if b != 0 {
			t.Fatalf("source[%d] = %#x, want 0 (source must be zeroed)", index, b)
		}
	}
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d) succeeded, want error", size)
		}
	}
}

func TestEqualConstantTimeCompare(t *testing.T) {
	buffer, err := NewFromBytes([]byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewFromBytes() error: %v", err)
	}
	defer buffer.Close()

	if !buffer.Equal([]byte("0123456789abcdef")) {
		t.Error("Equal() = false for identical contents")
	}
	if buffer.Equal([]byte("0123456789abcdeX")) {
		t.Error("Equal() = true for differing contents")
	}
	if buffer.Equal([]byte("short")) {
		t.Error("Equal() = true for differing lengths")
	}
}

func TestCloseIsIdempotentAndPanicsOnUse(t *testing.T) {
	buffer, err := NewFromBytes([]byte("key"))
	if err != nil {
		t.Fatalf("NewFromBytes() error: %v", err)
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Bytes() after Close did not panic")
		}
	}()
	buffer.Bytes()
}
