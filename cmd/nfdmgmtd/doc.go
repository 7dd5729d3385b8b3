// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// nfdmgmtd serves the forwarder management protocol on a Unix socket.
//
// Clients connect, send signed command Interests under the configured
// top prefix (default /localhost/nfd), and receive ControlResponse
// Data. Unsigned Interests for <prefix>/<module>/list fetch the FIB,
// RIB and strategy choice datasets.
//
// Every Interest is handed to a single event loop goroutine, which
// owns the dispatcher and the forwarding tables. Socket reader
// goroutines and timers only post work to it.
//
// Configuration is read from the file named by --config or
// NFDMGMT_CONFIG (YAML, or JSON with comments for .json/.jsonc). On
// SIGHUP the authorizations section is reloaded; other sections need
// a restart.
package main
