// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventloop

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/testutil"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestLoop(t *testing.T) (*Loop, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(epoch)
	return New(fake, slog.New(slog.NewTextHandler(io.Discard, nil))), fake
}

func TestRunPendingFIFO(t *testing.T) {
	loop, _ := newTestLoop(t)

	var order []int
	for i := range 5 {
		loop.Post(func() { order = append(order, i) })
	}
	if n := loop.RunPending(); n != 5 {
		t.Fatalf("RunPending = %d, want 5", n)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("order = %v, want 0..4", order)
		}
	}
}

func TestTaskPostedByTaskRunsAfterQueue(t *testing.T) {
	loop, _ := newTestLoop(t)

	var order []string
	loop.Post(func() {
		order = append(order, "first")
		loop.Post(func() { order = append(order, "nested") })
	})
	loop.Post(func() { order = append(order, "second") })

	if n := loop.RunPending(); n != 3 {
		t.Fatalf("RunPending = %d, want 3", n)
	}
	want := []string{"first", "second", "nested"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestScheduleFiresThroughClock(t *testing.T) {
	loop, fake := newTestLoop(t)

	fired := false
	loop.Schedule(10*time.Second, func() { fired = true })

	fake.Advance(9 * time.Second)
	loop.RunPending()
	if fired {
		t.Fatal("task fired before its deadline")
	}

	fake.Advance(time.Second)
	if fired {
		t.Fatal("task ran on the clock's goroutine instead of the loop")
	}
	loop.RunPending()
	if !fired {
		t.Fatal("task did not fire at its deadline")
	}
}

func TestScheduleStop(t *testing.T) {
	loop, fake := newTestLoop(t)

	fired := false
	timer := loop.Schedule(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("Stop on a pending timer returned false")
	}
	fake.Advance(time.Minute)
	loop.RunPending()
	if fired {
		t.Fatal("stopped task fired")
	}
}

func TestPanicIsContained(t *testing.T) {
	loop, _ := newTestLoop(t)

	ran := false
	loop.Post(func() { panic("boom") })
	loop.Post(func() { ran = true })
	loop.RunPending()
	if !ran {
		t.Fatal("task after a panicking task did not run")
	}
}

func TestRunProcessesPostsFromOtherGoroutines(t *testing.T) {
	loop, _ := newTestLoop(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	results := make(chan int, 3)
	for i := range 3 {
		go loop.Post(func() { results <- i })
	}
	seen := map[int]bool{}
	for range 3 {
		seen[testutil.RequireReceive(t, results, 5*time.Second, "waiting for posted task")] = true
	}
	if len(seen) != 3 {
		t.Fatalf("saw %v, want three distinct tasks", seen)
	}

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run to return"); err != nil {
		t.Fatalf("Run returned %v, want nil", err)
	}
	if loop.Post(func() {}) {
		t.Fatal("Post after shutdown returned true")
	}
	if err := loop.Run(context.Background()); err == nil {
		t.Fatal("second Run returned nil")
	}
}
