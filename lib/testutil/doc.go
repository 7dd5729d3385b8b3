// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides helpers shared by the nfdmgmt tests.
//
// [SocketDir] returns a short directory under /tmp for Unix sockets.
// sun_path holds 108 bytes, and the nested directories t.TempDir
// creates can exceed that.
//
// [RequireReceive] and [RequireClosed] bound channel waits with a
// wall-clock timeout so a broken test fails instead of hanging. They
// are the only real-time waits in the test suite; everything else
// runs on [clock.FakeClock].
//
// [Logger] routes slog output through t.Log so daemon logs appear
// only for failing tests.
//
// [clock.FakeClock]: github.com/bureau-foundation/nfdmgmt/lib/clock
package testutil
