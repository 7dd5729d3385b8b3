// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func TestFakeNowStandsStill(t *testing.T) {
	c := Fake(epoch)
	if !c.Now().Equal(epoch) {
		t.Fatalf("Now = %v, want %v", c.Now(), epoch)
	}
	c.Advance(1500 * time.Millisecond)
	if got := UnixMilli(c); got != uint64(epoch.UnixMilli())+1500 {
		t.Errorf("UnixMilli = %d, want %d", got, epoch.UnixMilli()+1500)
	}
}

func TestFakeAfterFuncFiresInDeadlineOrder(t *testing.T) {
	c := Fake(epoch)
	var order []string
	c.AfterFunc(3*time.Second, func() { order = append(order, "third") })
	c.AfterFunc(1*time.Second, func() { order = append(order, "first") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "second") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "second-b") })

	c.Advance(2 * time.Second)
	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "second-b" {
		t.Fatalf("after 2s order = %v", order)
	}
	if c.PendingCount() != 1 {
		t.Errorf("PendingCount = %d, want 1", c.PendingCount())
	}

	c.Advance(time.Second)
	if len(order) != 4 || order[3] != "third" {
		t.Fatalf("after 3s order = %v", order)
	}
}

func TestFakeTimerStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("Stop on pending timer returned false")
	}
	if timer.Stop() {
		t.Error("second Stop returned true")
	}
	c.Advance(time.Minute)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestFakeCallbackSchedulesDueCallback(t *testing.T) {
	c := Fake(epoch)
	count := 0
	c.AfterFunc(time.Second, func() {
		count++
		c.AfterFunc(time.Millisecond, func() { count++ })
	})
	// The nested callback is scheduled relative to the advanced time.
	c.Advance(time.Second)
	if count != 1 {
		t.Fatalf("count = %d after first advance, want 1", count)
	}
	c.Advance(time.Millisecond)
	if count != 2 {
		t.Fatalf("count = %d after second advance, want 2", count)
	}
}

func TestFakeSetBackwards(t *testing.T) {
	c := Fake(epoch)
	fired := false
	c.AfterFunc(time.Second, func() { fired = true })
	c.Set(epoch.Add(-time.Hour))
	if fired {
		t.Fatal("moving backwards fired a timer")
	}
	if !c.Now().Equal(epoch.Add(-time.Hour)) {
		t.Errorf("Now = %v after Set", c.Now())
	}
}

func TestFakeZeroDelayRunsImmediately(t *testing.T) {
	c := Fake(epoch)
	fired := false
	c.AfterFunc(0, func() { fired = true })
	if !fired {
		t.Error("AfterFunc(0) did not run synchronously")
	}
}
