// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventloop runs the management plane's single-threaded
// cooperative loop.
//
// Every piece of dispatcher, authenticator and table state is touched
// only from tasks running on the loop goroutine, so none of it needs a
// lock. Transport goroutines decode frames and [Loop.Post] them; timers
// created with [Loop.Schedule] fire through the injected
// [clock.Clock] and are re-posted onto the loop before they run.
//
// Tests that do not want a goroutine at all drive the queue directly
// with [Loop.RunPending].
package eventloop
