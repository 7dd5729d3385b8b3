// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
)

// DefaultMaxPayload is half the 8800-byte packet limit, leaving room
// for the name, MetaInfo and signature.
const DefaultMaxPayload = 4400

// ErrEmptyTarget is returned by Segment and Encode when target has no
// components; every response packet is named under its request.
var ErrEmptyTarget = errors.New("response: target name is empty")

// Options controls segmentation.
type Options struct {
	// MaxPayload is the largest content per packet. Zero means
	// DefaultMaxPayload.
	MaxPayload int

	// ContentType is set in every packet's MetaInfo.
	ContentType uint64

	// Freshness is the FreshnessPeriod of every packet. Zero omits
	// it; command responses are sent that way.
	Freshness time.Duration

	// Signer signs every packet. Nil means DigestSha256.
	Signer security.Signer

	// Segmented names even a single packet <target>/seg=0, as status
	// datasets require.
	Segmented bool
}

// Segment splits block into signed Data packets under target. The
// concatenated contents of the returned packets, in order, equal block.
func Segment(target name.Name, block []byte, options Options) ([]*packet.Data, error) {
	if target.IsEmpty() {
		return nil, ErrEmptyTarget
	}
	payload := options.MaxPayload
	if payload <= 0 {
		payload = DefaultMaxPayload
	}
	signer := options.Signer
	if signer == nil {
		signer = security.DigestSigner{}
	}

	if len(block) <= payload && !options.Segmented {
		final := name.Segment(0)
		data := &packet.Data{
			Name:         target,
			ContentType:  options.ContentType,
			Freshness:    options.Freshness,
			FinalBlockID: &final,
			Content:      block,
		}
		if err := security.SignData(data, signer); err != nil {
			return nil, err
		}
		return []*packet.Data{data}, nil
	}

	count := max(1, (len(block)+payload-1)/payload)
	final := name.Segment(uint64(count - 1))
	segments := make([]*packet.Data, 0, count)
	for i := range count {
		start := i * payload
		end := min(start+payload, len(block))
		data := &packet.Data{
			Name:         target.Append(name.Segment(uint64(i))),
			ContentType:  options.ContentType,
			Freshness:    options.Freshness,
			FinalBlockID: &final,
			Content:      block[start:end],
		}
		if err := security.SignData(data, signer); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, data)
	}
	return segments, nil
}

// Encode segments the encoded response under target.
func Encode(target name.Name, outcome ControlResponse, options Options) ([]*packet.Data, error) {
	return Segment(target, outcome.Encode(), options)
}
