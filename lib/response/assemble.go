// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
)

// Assembly errors. Each is wrapped with the offending segment or name.
var (
	// ErrWrongName: a packet's name is not target/seg=<n>.
	ErrWrongName = errors.New("response: segment name not under target")

	// ErrMissingSegment: no packets were supplied, or a segment
	// between 0 and the FinalBlockId is absent.
	ErrMissingSegment = errors.New("response: missing segment")

	// ErrInconsistentFinalBlock: a segment lacks a FinalBlockId, the
	// packets disagree on it, or a segment lies beyond it.
	ErrInconsistentFinalBlock = errors.New("response: inconsistent FinalBlockId")

	// ErrDuplicateSegment: the same segment number arrived twice with
	// different content.
	ErrDuplicateSegment = errors.New("response: conflicting duplicate segment")
)

// Assemble validates segments of the object named target and returns
// their contents joined in segment order. Segments may arrive in any
// order; identical duplicates are ignored. An unsegmented object is a
// single packet named exactly target. verify, when non-nil, is called
// on every packet before its content is used.
func Assemble(target name.Name, segments []*packet.Data, verify func(*packet.Data) error) ([]byte, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no packets for %s", ErrMissingSegment, target)
	}
	for _, data := range segments {
		if verify != nil {
			if err := verify(data); err != nil {
				return nil, fmt.Errorf("verifying %s: %w", data.Name, err)
			}
		}
	}

	if len(segments) == 1 && segments[0].Name.Equal(target) {
		data := segments[0]
		if data.FinalBlockID != nil && !data.FinalBlockID.Equal(name.Segment(0)) {
			return nil, fmt.Errorf("%w: unsegmented %s declares %s", ErrInconsistentFinalBlock, target, data.FinalBlockID)
		}
		return bytes.Clone(data.Content), nil
	}

	var final *name.Component
	bySegment := make(map[uint64]*packet.Data, len(segments))
	for _, data := range segments {
		if data.Name.Len() != target.Len()+1 || !target.IsPrefixOf(data.Name) || !data.Name.At(-1).IsSegment() {
			return nil, fmt.Errorf("%w: %s under %s", ErrWrongName, data.Name, target)
		}
		index, err := data.Name.At(-1).ToSegment()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrWrongName, data.Name, err)
		}
		if data.FinalBlockID == nil || !data.FinalBlockID.IsSegment() {
			return nil, fmt.Errorf("%w: %s has no segment FinalBlockId", ErrInconsistentFinalBlock, data.Name)
		}
		if final == nil {
			final = data.FinalBlockID
		} else if !final.Equal(*data.FinalBlockID) {
			return nil, fmt.Errorf("%w: %s declares %s, earlier segments %s", ErrInconsistentFinalBlock, data.Name, data.FinalBlockID, final)
		}
		if existing, ok := bySegment[index]; ok {
			if !bytes.Equal(existing.Content, data.Content) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateSegment, data.Name)
			}
			continue
		}
		bySegment[index] = data
	}

	last, err := final.ToSegment()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInconsistentFinalBlock, err)
	}
	if uint64(len(bySegment)) != last+1 {
		for i := uint64(0); i <= last; i++ {
			if _, ok := bySegment[i]; !ok {
				return nil, fmt.Errorf("%w: %s of %s", ErrMissingSegment, name.Segment(i), target)
			}
		}
		return nil, fmt.Errorf("%w: segments beyond final %d", ErrInconsistentFinalBlock, last)
	}

	var block []byte
	for i := uint64(0); i <= last; i++ {
		data, ok := bySegment[i]
		if !ok {
			return nil, fmt.Errorf("%w: %s of %s", ErrMissingSegment, name.Segment(i), target)
		}
		block = append(block, data.Content...)
	}
	return block, nil
}

// Fetcher expresses one Interest and returns the Data answering it.
type Fetcher interface {
	Fetch(ctx context.Context, interest *packet.Interest) (*packet.Data, error)
}

// FetchResult is a fetched object and the name its segments share.
type FetchResult struct {
	// Name is the object name without segment component, including
	// the version a dataset producer chose.
	Name    name.Name
	Content []byte
}

// Fetch retrieves the object at prefix: the first packet is requested
// with CanBePrefix so a versioned dataset is discovered, then the
// remaining segments are requested by exact name and everything is
// assembled.
func Fetch(ctx context.Context, fetcher Fetcher, prefix name.Name, verify func(*packet.Data) error) (*FetchResult, error) {
	first, err := fetcher.Fetch(ctx, &packet.Interest{Name: prefix, CanBePrefix: true, MustBeFresh: true})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", prefix, err)
	}
	if !prefix.IsPrefixOf(first.Name) {
		return nil, fmt.Errorf("%w: %s answers %s", ErrWrongName, first.Name, prefix)
	}

	if first.Name.IsEmpty() || !first.Name.At(-1).IsSegment() {
		content, err := Assemble(first.Name, []*packet.Data{first}, verify)
		if err != nil {
			return nil, err
		}
		return &FetchResult{Name: first.Name, Content: content}, nil
	}

	object := first.Name.Prefix(-1)
	if first.FinalBlockID == nil {
		return nil, fmt.Errorf("%w: %s has no FinalBlockId", ErrInconsistentFinalBlock, first.Name)
	}
	last, err := first.FinalBlockID.ToSegment()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInconsistentFinalBlock, err)
	}
	firstIndex, err := first.Name.At(-1).ToSegment()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrongName, err)
	}

	segments := []*packet.Data{first}
	for i := uint64(0); i <= last; i++ {
		if i == firstIndex {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fetcher.Fetch(ctx, &packet.Interest{Name: object.Append(name.Segment(i)), MustBeFresh: true})
		if err != nil {
			return nil, fmt.Errorf("fetching segment %d of %s: %w", i, object, err)
		}
		segments = append(segments, data)
	}
	content, err := Assemble(object, segments, verify)
	if err != nil {
		return nil, err
	}
	return &FetchResult{Name: object, Content: content}, nil
}
