// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.modified", Value: "true"},
	}
	build := fromSettings(Build{Version: "1.2.3", GoVersion: "go1.25.6"}, settings)
	if build.Commit != "0123456789ab" || !build.Modified {
		t.Fatalf("build = %+v", build)
	}
	if got, want := build.String(), "1.2.3 (0123456789ab-dirty, go1.25.6)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestInjectedCommitWins(t *testing.T) {
	build := fromSettings(Build{Commit: "release"}, []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}})
	if build.Commit != "release" {
		t.Errorf("commit = %q, want release", build.Commit)
	}
}

func TestInfo(t *testing.T) {
	if info := Info(); !strings.HasPrefix(info, Version+" (") {
		t.Errorf("Info() = %q", info)
	}
}
