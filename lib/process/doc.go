// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the exit path shared by the nfdmgmtd and
// nfdmgmtctl entrypoints. Errors returned from run() are printed to
// stderr, since the structured logger may not exist yet, and mapped to
// an exit status.
package process
