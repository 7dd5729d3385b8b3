// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"sync/atomic"

	"github.com/bureau-foundation/nfdmgmt/lib/response"
)

// Stats counts dispatcher outcomes. Counters only grow.
type Stats struct {
	received          atomic.Uint64
	dropped           atomic.Uint64
	cacheHits         atomic.Uint64
	datasets          atomic.Uint64
	succeeded         atomic.Uint64
	signatureRejected atomic.Uint64
	unknownCommand    atomic.Uint64
	unauthorized      atomic.Uint64
	malformed         atomic.Uint64
	failed            atomic.Uint64
	otherStatus       atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Received          uint64
	Dropped           uint64
	CacheHits         uint64
	Datasets          uint64
	Succeeded         uint64
	SignatureRejected uint64
	UnknownCommand    uint64
	Unauthorized      uint64
	Malformed         uint64
	Failed            uint64
	OtherStatus       uint64
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Received:          s.received.Load(),
		Dropped:           s.dropped.Load(),
		CacheHits:         s.cacheHits.Load(),
		Datasets:          s.datasets.Load(),
		Succeeded:         s.succeeded.Load(),
		SignatureRejected: s.signatureRejected.Load(),
		UnknownCommand:    s.unknownCommand.Load(),
		Unauthorized:      s.unauthorized.Load(),
		Malformed:         s.malformed.Load(),
		Failed:            s.failed.Load(),
		OtherStatus:       s.otherStatus.Load(),
	}
}

func (s *Stats) recordOutcome(code uint64) {
	switch code {
	case response.StatusOK:
		s.succeeded.Add(1)
	case response.StatusSignatureError:
		s.signatureRejected.Add(1)
	case response.StatusUnknownCommand:
		s.unknownCommand.Add(1)
	case response.StatusForbidden:
		s.unauthorized.Add(1)
	case response.StatusMalformedParameters:
		s.malformed.Add(1)
	case response.StatusInternalError:
		s.failed.Add(1)
	default:
		s.otherStatus.Add(1)
	}
}
