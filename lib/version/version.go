// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at build time.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
)

// Build describes the running binary.
type Build struct {
	Version   string
	Commit    string
	Modified  bool
	GoVersion string
}

// Current returns the build information of the running binary.
func Current() Build {
	build := Build{Version: Version, Commit: GitCommit, GoVersion: runtime.Version()}
	if info, ok := debug.ReadBuildInfo(); ok {
		build = fromSettings(build, info.Settings)
	}
	if build.Commit == "" {
		build.Commit = "unknown"
	}
	return build
}

func fromSettings(build Build, settings []debug.BuildSetting) Build {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if build.Commit == "" {
				build.Commit = setting.Value
				if len(build.Commit) > 12 {
					build.Commit = build.Commit[:12]
				}
			}
		case "vcs.modified":
			build.Modified = setting.Value == "true"
		}
	}
	return build
}

// String formats the build as "0.1.0-dev (abc123def456-dirty, go1.25.6)".
func (b Build) String() string {
	dirty := ""
	if b.Modified {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.GoVersion)
}

// Info returns the formatted build of the running binary.
func Info() string { return Current().String() }
