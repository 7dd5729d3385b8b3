// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the
// management plane.
//
// Command timestamps, replay-protection windows, route expiry and
// response versions all read time through a [Clock]. The daemon wires
// [Real]; tests wire [Fake] and move time explicitly with
// [FakeClock.Advance], which replaces a process-wide virtual clock:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	loop := eventloop.New(c, logger)
//	// ... schedule work ...
//	c.Advance(5 * time.Second) // fires due callbacks in deadline order
package clock
