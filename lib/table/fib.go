// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"cmp"
	"slices"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

// NextHop is one outgoing face of a FIB entry.
type NextHop struct {
	FaceID uint64
	Cost   uint64
}

// FIBEntry is a prefix with its next hops, ordered by cost then face.
type FIBEntry struct {
	Prefix   name.Name
	NextHops []NextHop
}

// FIB maps name prefixes to next hops.
type FIB struct {
	entries map[string]*FIBEntry
}

// NewFIB returns an empty FIB.
func NewFIB() *FIB {
	return &FIB{entries: make(map[string]*FIBEntry)}
}

// AddNextHop adds faceID to prefix, or updates its cost if present.
func (f *FIB) AddNextHop(prefix name.Name, faceID, cost uint64) {
	key := prefix.String()
	entry, ok := f.entries[key]
	if !ok {
		entry = &FIBEntry{Prefix: prefix}
		f.entries[key] = entry
	}
	index := slices.IndexFunc(entry.NextHops, func(hop NextHop) bool { return hop.FaceID == faceID })
	if index >= 0 {
		entry.NextHops[index].Cost = cost
	} else {
		entry.NextHops = append(entry.NextHops, NextHop{FaceID: faceID, Cost: cost})
	}
	sortNextHops(entry.NextHops)
}

// RemoveNextHop removes faceID from prefix. The entry disappears with
// its last next hop. Returns false if there was nothing to remove.
func (f *FIB) RemoveNextHop(prefix name.Name, faceID uint64) bool {
	key := prefix.String()
	entry, ok := f.entries[key]
	if !ok {
		return false
	}
	before := len(entry.NextHops)
	entry.NextHops = slices.DeleteFunc(entry.NextHops, func(hop NextHop) bool { return hop.FaceID == faceID })
	if len(entry.NextHops) == 0 {
		delete(f.entries, key)
	}
	return len(entry.NextHops) != before
}

// RemoveFace removes faceID from every entry, as when a face closes.
func (f *FIB) RemoveFace(faceID uint64) {
	for _, entry := range f.entries {
		f.RemoveNextHop(entry.Prefix, faceID)
	}
}

// Replace sets the next hops of prefix, removing the entry when hops
// is empty.
func (f *FIB) Replace(prefix name.Name, hops []NextHop) {
	key := prefix.String()
	if len(hops) == 0 {
		delete(f.entries, key)
		return
	}
	sorted := slices.Clone(hops)
	sortNextHops(sorted)
	f.entries[key] = &FIBEntry{Prefix: prefix, NextHops: sorted}
}

// Get returns the entry for exactly prefix.
func (f *FIB) Get(prefix name.Name) (FIBEntry, bool) {
	entry, ok := f.entries[prefix.String()]
	if !ok {
		return FIBEntry{}, false
	}
	return entry.clone(), true
}

// Lookup returns the entry with the longest prefix of n.
func (f *FIB) Lookup(n name.Name) (FIBEntry, bool) {
	for length := n.Len(); length >= 0; length-- {
		if entry, ok := f.entries[n.Prefix(length).String()]; ok {
			return entry.clone(), true
		}
	}
	return FIBEntry{}, false
}

// Entries returns every entry in canonical name order.
func (f *FIB) Entries() []FIBEntry {
	entries := make([]FIBEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		entries = append(entries, entry.clone())
	}
	slices.SortFunc(entries, func(a, b FIBEntry) int { return a.Prefix.Compare(b.Prefix) })
	return entries
}

// Len returns the number of entries.
func (f *FIB) Len() int { return len(f.entries) }

func (e *FIBEntry) clone() FIBEntry {
	return FIBEntry{Prefix: e.Prefix, NextHops: slices.Clone(e.NextHops)}
}

func sortNextHops(hops []NextHop) {
	slices.SortFunc(hops, func(a, b NextHop) int {
		return cmp.Or(cmp.Compare(a.Cost, b.Cost), cmp.Compare(a.FaceID, b.FaceID))
	})
}
