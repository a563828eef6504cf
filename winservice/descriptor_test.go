// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package winservice

import "testing"

func TestCommandLine(t *testing.T) {
	d := Descriptor{
		ExecutablePath:  `C:\Program Files\Switchboot\switchboot-cli.exe`,
		LaunchArguments: []string{"--service"},
	}
	want := `"C:\Program Files\Switchboot\switchboot-cli.exe" --service`
	if got := d.CommandLine(); got != want {
		t.Errorf("CommandLine() = %q, want %q", got, want)
	}
}

func TestParseCommandPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"quoted with args",
			`"C:\Program Files\Switchboot\switchboot-cli.exe" --service`,
			`C:\Program Files\Switchboot\switchboot-cli.exe`,
		},
		{
			"bare with args",
			`C:\Switchboot\switchboot-cli.exe --service`,
			`C:\Switchboot\switchboot-cli.exe`,
		},
		{"bare without args", `C:\Switchboot\switchboot-cli.exe`, `C:\Switchboot\switchboot-cli.exe`},
		{"unterminated quote", `"C:\Switchboot\switchboot-cli.exe`, `C:\Switchboot\switchboot-cli.exe`},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCommandPath(tt.input); got != tt.want {
				t.Errorf("ParseCommandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
