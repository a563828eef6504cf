// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package secret

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// allocateLocked reserves a committed region outside the Go heap via
// VirtualAlloc and pins it into physical RAM via VirtualLock so key
// material never reaches the pagefile.
func allocateLocked(size int) ([]byte, error) {
	address, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("secret: VirtualAlloc failed: %w", err)
	}

	if err := windows.VirtualLock(address, uintptr(size)); err != nil {
		windows.VirtualFree(address, 0, windows.MEM_RELEASE)
		return nil, fmt.Errorf("secret: VirtualLock failed: %w", err)
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(address)), size), nil
}

// releaseLocked unlocks and frees a region from allocateLocked. The
// caller has already zeroed it.
func releaseLocked(data []byte) error {
	address := uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	size := uintptr(len(data))

	var firstError error
	if err := windows.VirtualUnlock(address, size); err != nil {
		firstError = fmt.Errorf("secret: VirtualUnlock failed: %w", err)
	}
	if err := windows.VirtualFree(address, 0, windows.MEM_RELEASE); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: VirtualFree failed: %w", err)
	}
	return firstError
}
