// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build of the running binary for
// --version output and the daemon's startup log line.
//
// [Version] and [GitCommit] may be set with -ldflags -X. When the
// commit is not injected it is read from the VCS stamp the Go
// toolchain embeds in the binary.
//
//	go build -ldflags "-X github.com/bureau-foundation/nfdmgmt/lib/version.Version=0.2.0" ./cmd/...
package version
