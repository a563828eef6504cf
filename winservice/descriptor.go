// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package winservice

import "strings"

// Descriptor describes a service registration.
type Descriptor struct {
	// Name is the SCM service name.
	Name string

	// DisplayName is shown in the services UI.
	DisplayName string

	// ExecutablePath is the absolute path of the service binary.
	ExecutablePath string

	// LaunchArguments are appended to the binary path in the
	// registered command line.
	LaunchArguments []string

	// GrantStartToEveryone widens the service's DACL so any local
	// user can start it. Stop and configuration rights stay with
	// administrators.
	GrantStartToEveryone bool
}

// CommandLine builds the registered binary path name, quoting the
// executable path.
func (d Descriptor) CommandLine() string {
	parts := []string{`"` + d.ExecutablePath + `"`}
	parts = append(parts, d.LaunchArguments...)
	return strings.Join(parts, " ")
}

// ParseCommandPath extracts the executable path from a registered
// binary path name, handling both quoted and bare forms. Used to
// check whether an existing registration points at this binary.
func ParseCommandPath(binaryPathName string) string {
	s := strings.TrimSpace(binaryPathName)
	if s == "" {
		return ""
	}
	if s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return s[1 : 1+end]
		}
		return s[1:]
	}
	if space := strings.IndexByte(s, ' '); space >= 0 {
		return s[:space]
	}
	return s
}
