// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the two time operations the management plane needs.
// Production code injects Real(); tests inject Fake().
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f once duration d has elapsed and returns a
	// Timer that can cancel the pending call. If d <= 0, f runs
	// immediately: in a new goroutine (real) or synchronously (fake).
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the Timer from firing. Returns true if the call stops
// the timer, false if it has already fired or been stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }

// UnixMilli returns the current time of c in milliseconds since the
// Unix epoch, the unit of command timestamps and SignatureTime.
func UnixMilli(c Clock) uint64 {
	return uint64(c.Now().UnixMilli())
}
