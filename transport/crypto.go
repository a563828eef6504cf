// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the channel key length in bytes.
const KeySize = chacha20poly1305.KeySize

// ErrMessageTooShort reports a sealed message shorter than the nonce,
// which cannot have come from a conforming sender.
var ErrMessageTooShort = errors.New("sealed message shorter than nonce")

// ErrAuthenticationFailed reports a payload that failed AEAD
// verification. The message was corrupted in transit or produced
// under a different key.
var ErrAuthenticationFailed = errors.New("message authentication failed")

// defaultKey is the compiled-in channel key. It ships inside the
// binary of every installation, so it provides integrity and peer
// binary matching but not confidentiality against a local attacker
// who can read the executable. Installations that need a private key
// import one with the key-import command.
var defaultKey = [KeySize]byte{
	0x5b, 0xd0, 0x3e, 0x91, 0xa7, 0x24, 0xc8, 0x1f,
	0x62, 0xee, 0x09, 0xb3, 0x47, 0xd5, 0x8a, 0x2c,
	0xf1, 0x36, 0x9d, 0x70, 0x0b, 0xc4, 0x58, 0xe2,
	0x83, 0x1a, 0xf7, 0x4e, 0x29, 0xb6, 0x6d, 0x95,
}

// DefaultKey returns a copy of the compiled-in channel key.
func DefaultKey() []byte {
	key := make([]byte, KeySize)
	copy(key, defaultKey[:])
	return key
}

// Cipher seals and opens channel payloads with ChaCha20-Poly1305.
// Sealed form is nonce || ciphertext+tag with a fresh random 12-byte
// nonce per message.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a Cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("creating channel cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts and authenticates plaintext.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts a sealed message.
func (c *Cipher) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < c.aead.NonceSize() {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooShort, len(sealed))
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
