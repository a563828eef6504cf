// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte keyed BLAKE3 digest of a binary image.
type Digest [32]byte

// binaryDomainKey is the 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures executable digests can never collide with hashes
// computed in other contexts. The byte values are the ASCII encoding
// of the domain name, zero-padded to 32 bytes; readable ASCII keeps
// the key inspectable in hex dumps without sacrificing any
// cryptographic property (keyed mode treats it as opaque bytes).
var binaryDomainKey = [32]byte{
	's', 'w', 'i', 't', 'c', 'h', 'b', 'o', 'o', 't', '.', 'b', 'i', 'n', 'a', 'r',
	'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashFile computes the keyed BLAKE3 digest of the file at path. The
// file is streamed through the hash function (via io.Copy) so memory
// usage is constant regardless of binary size.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher, err := blake3.NewKeyed(binaryDomainKey[:])
	if err != nil {
		return Digest{}, fmt.Errorf("initializing keyed hasher: %w", err)
	}
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// String returns the hex-encoded representation of the digest. This is
// the canonical format used in mismatch errors and log output.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
