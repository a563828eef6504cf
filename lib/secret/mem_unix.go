// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// allocateLocked mmaps an anonymous region outside the Go heap,
// locked into physical RAM and excluded from core dumps.
func allocateLocked(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}

	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		// MADV_DONTDUMP is not supported on every kernel; the secret
		// is still locked against swap, so keep going.
		_ = err
	}

	return data, nil
}

// releaseLocked unlocks and unmaps a region from allocateLocked. The
// caller has already zeroed it.
func releaseLocked(data []byte) error {
	var firstError error
	if err := unix.Munlock(data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	return firstError
}
