// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package table holds the forwarding state the management modules
// edit: the FIB, the RIB and the strategy choice table.
//
// These tables stand in for the forwarder's own data structures. They
// are confined to the event loop and take no locks. The RIB keeps the
// FIB in step with it: every route change recomputes the FIB entry for
// the affected prefix, using the cheapest route per face.
package table
