// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

// Replay protection defaults.
const (
	DefaultGracePeriod    = 2 * time.Minute
	DefaultMaxRecords     = 1000
	DefaultRecordLifetime = time.Hour
)

// ReplayOptions configures a ReplayChecker. Zero fields take the
// defaults above.
type ReplayOptions struct {
	// GracePeriod bounds how far a request timestamp may lie from the
	// local clock in either direction.
	GracePeriod time.Duration

	// MaxRecords bounds the number of signing keys remembered. The
	// least recently used record is evicted first.
	MaxRecords int

	// RecordLifetime is how long a key's last timestamp is remembered
	// without a new accepted request.
	RecordLifetime time.Duration
}

type replayRecord struct {
	timestamp uint64
	refreshed time.Time
}

// ReplayChecker rejects command timestamps that are stale, too far in
// the future, or not newer than the last accepted timestamp from the
// same key.
type ReplayChecker struct {
	clock   clock.Clock
	options ReplayOptions

	// mu makes check-and-commit atomic; the cache has its own lock.
	mu      sync.Mutex
	records *lru.Cache[string, replayRecord]
}

// NewReplayChecker returns a ReplayChecker reading time from clk.
func NewReplayChecker(clk clock.Clock, options ReplayOptions) (*ReplayChecker, error) {
	if options.GracePeriod <= 0 {
		options.GracePeriod = DefaultGracePeriod
	}
	if options.MaxRecords <= 0 {
		options.MaxRecords = DefaultMaxRecords
	}
	if options.RecordLifetime <= 0 {
		options.RecordLifetime = DefaultRecordLifetime
	}
	records, err := lru.New[string, replayRecord](options.MaxRecords)
	if err != nil {
		return nil, fmt.Errorf("command: creating replay records: %w", err)
	}
	return &ReplayChecker{clock: clk, options: options, records: records}, nil
}

// Accept checks timestamp (milliseconds since the Unix epoch) for
// keyName and, when it passes, records it as the key's latest.
func (r *ReplayChecker) Accept(keyName name.Name, timestamp uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timestamp == 0 {
		return &VerificationError{Kind: Replay, Err: fmt.Errorf("request carries no timestamp")}
	}
	now := r.clock.Now()
	requestTime := time.UnixMilli(int64(timestamp))
	if skew := requestTime.Sub(now).Abs(); skew > r.options.GracePeriod {
		return verificationError(Replay, "timestamp %s is %v from local time, beyond grace period %v",
			requestTime.UTC().Format(time.RFC3339Nano), skew, r.options.GracePeriod)
	}

	key := keyName.String()
	if record, ok := r.records.Get(key); ok && now.Sub(record.refreshed) <= r.options.RecordLifetime {
		if timestamp <= record.timestamp {
			return verificationError(Replay, "timestamp %d not after last accepted %d from %s",
				timestamp, record.timestamp, keyName)
		}
	}
	r.records.Add(key, replayRecord{timestamp: timestamp, refreshed: now})
	return nil
}

// Len returns the number of remembered keys.
func (r *ReplayChecker) Len() int { return r.records.Len() }
