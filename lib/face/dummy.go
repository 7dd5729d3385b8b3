// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package face

import (
	"fmt"
	"sync"

	"github.com/bureau-foundation/nfdmgmt/lib/packet"
)

// DummyFace records every packet sent to it. Data packets are decoded
// so tests can inspect them directly.
type DummyFace struct {
	id uint64

	mu        sync.Mutex
	data      []*packet.Data
	interests []*packet.Interest
	sendError error
}

// NewDummyFace returns a recording face with the given id.
func NewDummyFace(id uint64) *DummyFace {
	return &DummyFace{id: id}
}

func (f *DummyFace) ID() uint64 { return f.id }

// Send decodes wire and records it. Undecodable packets are an error,
// as is anything set with FailSends.
func (f *DummyFace) Send(wire []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendError != nil {
		return f.sendError
	}

	typ, err := packet.PeekType(wire)
	if err != nil {
		return err
	}
	switch typ {
	case packet.TypeData:
		data, err := packet.DecodeData(wire)
		if err != nil {
			return err
		}
		f.data = append(f.data, data)
	case packet.TypeInterest:
		interest, err := packet.DecodeInterest(wire)
		if err != nil {
			return err
		}
		f.interests = append(f.interests, interest)
	default:
		return fmt.Errorf("face: dummy face %d: unexpected packet type %d", f.id, typ)
	}
	return nil
}

// SentData returns the Data packets sent so far, in order.
func (f *DummyFace) SentData() []*packet.Data {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*packet.Data(nil), f.data...)
}

// SentInterests returns the Interests sent so far, in order.
func (f *DummyFace) SentInterests() []*packet.Interest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*packet.Interest(nil), f.interests...)
}

// Reset discards everything recorded.
func (f *DummyFace) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = nil
	f.interests = nil
}

// FailSends makes every later Send return err. Nil restores normal
// recording.
func (f *DummyFace) FailSends(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendError = err
}
