/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the current version of shiftsheet.
// This is set at build time via ldflags:
//
//	-X github.com/friendsincode/shiftsheet/internal/version.Version=X.Y.Z
var Version = "0.3.0"

// Commit is the VCS revision, falling back to the one embedded by the Go
// toolchain when not set via ldflags.
var Commit = ""

// String returns a one-line description for the version command.
func String() string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	if commit == "" {
		return fmt.Sprintf("shiftsheet %s (%s)", Version, runtime.Version())
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("shiftsheet %s (%s, %s)", Version, commit, runtime.Version())
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
