// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manager implements the management modules the daemon
// exposes: fib, rib and strategy-choice.
//
// Each manager registers its control commands and status dataset with
// a [dispatch.Dispatcher] and edits one of the tables in package
// table. Successful commands answer 200 "OK" with the parameters as
// applied, defaults included, so a client learns for instance which
// face a route was bound to. Datasets use the NFD management TLV
// encodings (FibEntry, RibEntry, StrategyChoice).
package manager
