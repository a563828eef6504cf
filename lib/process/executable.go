// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
	"path/filepath"
)

// Executable returns the absolute, symlink-resolved path of the
// current binary. Service registration and the same-installation
// handshake both need a canonical path, so the resolution is done
// once here rather than at each call site.
func Executable() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving current executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolving executable symlinks for %s: %w", path, err)
	}
	return resolved, nil
}
