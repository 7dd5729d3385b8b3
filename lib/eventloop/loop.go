// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventloop

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/clock"
)

// Loop executes posted tasks one at a time in FIFO order.
type Loop struct {
	clock  clock.Clock
	logger *slog.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool

	// wake has capacity one: a pending signal already means "the queue
	// is non-empty", so further signals are dropped.
	wake chan struct{}
}

// New creates a loop. Tasks may be posted before Run is called; they
// run once the loop starts.
func New(clk clock.Clock, logger *slog.Logger) *Loop {
	return &Loop{
		clock:  clk,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Clock returns the clock the loop schedules against.
func (l *Loop) Clock() clock.Clock { return l.clock }

// Post enqueues task. Returns false, without enqueueing, once Run has
// returned. Safe to call from any goroutine, including from a task.
func (l *Loop) Post(task func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Schedule posts task after d has elapsed on the loop's clock. The
// returned timer cancels the call if it has not fired yet; once fired,
// the task is queued and will run.
func (l *Loop) Schedule(d time.Duration, task func()) *clock.Timer {
	return l.clock.AfterFunc(d, func() {
		if !l.Post(task) {
			l.logger.Debug("scheduled task dropped after loop shutdown", "delay", d)
		}
	})
}

// Run processes tasks until ctx is cancelled. Tasks still queued at
// cancellation are discarded and later Posts are refused. Run returns
// nil on cancellation; a loop can only be run once.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		dropped := len(l.queue)
		l.queue = nil
		l.closed = true
		l.mu.Unlock()
		if dropped > 0 {
			l.logger.Debug("event loop stopped with queued tasks", "dropped", dropped)
		}
	}()

	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return fmt.Errorf("eventloop: loop already stopped")
	}

	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
		}
	}
}

// RunPending runs queued tasks, including tasks they post, until the
// queue is empty. Returns the number of tasks run. Run calls it on each
// wakeup; tests call it directly to drive a loop without a goroutine.
func (l *Loop) RunPending() int {
	count := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return count
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.runTask(task)
		count++
	}
}

// runTask runs one task. A panicking task is logged and discarded so
// that a single bad handler cannot take the loop down.
func (l *Loop) runTask(task func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			l.logger.Error("event loop task panicked",
				"panic", fmt.Sprint(recovered),
				"stack", string(debug.Stack()),
			)
		}
	}()
	task()
}
