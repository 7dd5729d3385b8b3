// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/table"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// Dataset element types. Field elements reuse the ControlParameters
// numbering.
const (
	TypeFIBEntry       = 128
	TypeNextHopRecord  = 129
	TypeRIBEntry       = 128
	TypeRoute          = 129
	TypeStrategyChoice = 128
	TypeStrategy       = uint64(controlparams.FieldStrategy)
)

var (
	typeFaceID           = uint64(controlparams.FieldFaceID)
	typeCost             = uint64(controlparams.FieldCost)
	typeOrigin           = uint64(controlparams.FieldOrigin)
	typeFlags            = uint64(controlparams.FieldFlags)
	typeExpirationPeriod = uint64(controlparams.FieldExpirationPeriod)
)

// EncodeFIB encodes a fib/list dataset: one FibEntry per prefix.
func EncodeFIB(entries []table.FIBEntry) []byte {
	var out []byte
	for _, entry := range entries {
		value := entry.Prefix.Encode()
		for _, hop := range entry.NextHops {
			var record []byte
			record = tlv.AppendUint(record, typeFaceID, hop.FaceID)
			record = tlv.AppendUint(record, typeCost, hop.Cost)
			value = tlv.Append(value, TypeNextHopRecord, record)
		}
		out = tlv.Append(out, TypeFIBEntry, value)
	}
	return out
}

// EncodeRIB encodes a rib/list dataset. Expiring routes carry their
// remaining lifetime at now.
func EncodeRIB(entries []table.RIBEntry, now time.Time) []byte {
	var out []byte
	for _, entry := range entries {
		value := entry.Prefix.Encode()
		for _, route := range entry.Routes {
			var record []byte
			record = tlv.AppendUint(record, typeFaceID, route.FaceID)
			record = tlv.AppendUint(record, typeOrigin, route.Origin)
			record = tlv.AppendUint(record, typeCost, route.Cost)
			record = tlv.AppendUint(record, typeFlags, route.Flags)
			if !route.Expires.IsZero() {
				record = tlv.AppendUint(record, typeExpirationPeriod, uint64(route.Remaining(now).Milliseconds()))
			}
			value = tlv.Append(value, TypeRoute, record)
		}
		out = tlv.Append(out, TypeRIBEntry, value)
	}
	return out
}

// EncodeStrategyChoices encodes a strategy-choice/list dataset.
func EncodeStrategyChoices(choices []table.StrategyChoice) []byte {
	var out []byte
	for _, choice := range choices {
		value := choice.Prefix.Encode()
		value = tlv.Append(value, TypeStrategy, choice.Strategy.Encode())
		out = tlv.Append(out, TypeStrategyChoice, value)
	}
	return out
}

// DecodeFIB decodes a fib/list dataset.
func DecodeFIB(content []byte) ([]table.FIBEntry, error) {
	blocks, err := tlv.Elements(content)
	if err != nil {
		return nil, fmt.Errorf("decoding fib dataset: %w", err)
	}
	entries := make([]table.FIBEntry, 0, len(blocks))
	for _, block := range blocks {
		if block.Type != TypeFIBEntry {
			return nil, fmt.Errorf("decoding fib dataset: %w: element %d", tlv.ErrUnexpectedType, block.Type)
		}
		prefix, records, err := splitEntry(block.Value)
		if err != nil {
			return nil, fmt.Errorf("decoding fib dataset: %w", err)
		}
		entry := table.FIBEntry{Prefix: prefix}
		for _, record := range records {
			fields, err := recordFields(record, TypeNextHopRecord)
			if err != nil {
				return nil, fmt.Errorf("decoding fib dataset: %w", err)
			}
			entry.NextHops = append(entry.NextHops, table.NextHop{
				FaceID: fields[typeFaceID],
				Cost:   fields[typeCost],
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DecodeRIB decodes a rib/list dataset. Route expiry is reported in
// ExpirationPeriod as the remaining lifetime.
func DecodeRIB(content []byte) ([]table.RIBEntry, error) {
	blocks, err := tlv.Elements(content)
	if err != nil {
		return nil, fmt.Errorf("decoding rib dataset: %w", err)
	}
	entries := make([]table.RIBEntry, 0, len(blocks))
	for _, block := range blocks {
		if block.Type != TypeRIBEntry {
			return nil, fmt.Errorf("decoding rib dataset: %w: element %d", tlv.ErrUnexpectedType, block.Type)
		}
		prefix, records, err := splitEntry(block.Value)
		if err != nil {
			return nil, fmt.Errorf("decoding rib dataset: %w", err)
		}
		entry := table.RIBEntry{Prefix: prefix}
		for _, record := range records {
			fields, err := recordFields(record, TypeRoute)
			if err != nil {
				return nil, fmt.Errorf("decoding rib dataset: %w", err)
			}
			entry.Routes = append(entry.Routes, table.Route{
				FaceID:           fields[typeFaceID],
				Origin:           fields[typeOrigin],
				Cost:             fields[typeCost],
				Flags:            fields[typeFlags],
				ExpirationPeriod: time.Duration(fields[typeExpirationPeriod]) * time.Millisecond,
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DecodeStrategyChoices decodes a strategy-choice/list dataset.
func DecodeStrategyChoices(content []byte) ([]table.StrategyChoice, error) {
	blocks, err := tlv.Elements(content)
	if err != nil {
		return nil, fmt.Errorf("decoding strategy-choice dataset: %w", err)
	}
	choices := make([]table.StrategyChoice, 0, len(blocks))
	for _, block := range blocks {
		if block.Type != TypeStrategyChoice {
			return nil, fmt.Errorf("decoding strategy-choice dataset: %w: element %d", tlv.ErrUnexpectedType, block.Type)
		}
		prefix, rest, err := splitEntry(block.Value)
		if err != nil {
			return nil, fmt.Errorf("decoding strategy-choice dataset: %w", err)
		}
		if len(rest) != 1 || rest[0].Type != TypeStrategy {
			return nil, fmt.Errorf("decoding strategy-choice dataset: missing Strategy for %s", prefix)
		}
		strategy, err := name.Decode(rest[0].Value)
		if err != nil {
			return nil, fmt.Errorf("decoding strategy-choice dataset: %w", err)
		}
		choices = append(choices, table.StrategyChoice{Prefix: prefix, Strategy: strategy})
	}
	return choices, nil
}

// splitEntry decodes the leading Name of an entry and returns the
// elements after it.
func splitEntry(value []byte) (name.Name, []tlv.Block, error) {
	blocks, err := tlv.Elements(value)
	if err != nil {
		return name.Name{}, nil, err
	}
	if len(blocks) == 0 || blocks[0].Type != name.TypeName {
		return name.Name{}, nil, fmt.Errorf("%w: entry does not start with a Name", tlv.ErrUnexpectedType)
	}
	prefix, err := name.FromBlock(blocks[0])
	if err != nil {
		return name.Name{}, nil, err
	}
	return prefix, blocks[1:], nil
}

// recordFields decodes the NonNegativeInteger fields of a record.
func recordFields(record tlv.Block, expected uint64) (map[uint64]uint64, error) {
	if record.Type != expected {
		return nil, fmt.Errorf("%w: element %d, want %d", tlv.ErrUnexpectedType, record.Type, expected)
	}
	blocks, err := tlv.Elements(record.Value)
	if err != nil {
		return nil, err
	}
	fields := make(map[uint64]uint64, len(blocks))
	for _, block := range blocks {
		value, err := block.Uint()
		if err != nil {
			return nil, err
		}
		fields[block.Type] = value
	}
	return fields, nil
}
