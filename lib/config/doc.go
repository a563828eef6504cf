// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads switchboot configuration from a single YAML
// file. The file is located by the --config flag or the
// SWITCHBOOT_CONFIG environment variable; when neither is set the
// compiled-in defaults apply. Unset fields in a config file keep
// their defaults, so a file only states what it changes.
package config
