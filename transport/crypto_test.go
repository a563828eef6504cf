// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generating key: %v", err)
	}
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	return c
}

func TestSealOpenRoundTrip(t *testing.T) {
	c := testCipher(t)
	for _, plaintext := range [][]byte{
		[]byte("boot order request"),
		{},
		bytes.Repeat([]byte{0x00}, 8192),
	} {
		sealed, err := c.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		opened, err := c.Open(sealed)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if !bytes.Equal(opened, plaintext) {
			t.Errorf("round trip mismatch for %d-byte plaintext", len(plaintext))
		}
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	c := testCipher(t)
	sealed, err := c.Seal([]byte("untouched"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0x01

	_, err = c.Open(sealed)
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestOpenRejectsShortMessage(t *testing.T) {
	c := testCipher(t)
	_, err := c.Open(make([]byte, 11))
	if !errors.Is(err, ErrMessageTooShort) {
		t.Fatalf("expected ErrMessageTooShort, got %v", err)
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealed, err := testCipher(t).Seal([]byte("for someone else"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	_, err = testCipher(t).Open(sealed)
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestSealUsesFreshNonces(t *testing.T) {
	c := testCipher(t)
	plaintext := []byte("repeated message")

	seen := make(map[string]bool, 100000)
	for i := 0; i < 100000; i++ {
		sealed, err := c.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		nonce := string(sealed[:12])
		if seen[nonce] {
			t.Fatal("nonce reused across messages")
		}
		seen[nonce] = true
	}
}

func TestNewCipherRejectsBadKeySize(t *testing.T) {
	if _, err := NewCipher(make([]byte, 16)); err == nil {
		t.Fatal("expected error for 16-byte key")
	}
}

func TestDefaultKeyIsCopied(t *testing.T) {
	first := DefaultKey()
	first[0] ^= 0xff
	if second := DefaultKey(); second[0] == first[0] {
		t.Fatal("DefaultKey returned a shared buffer")
	}
}
