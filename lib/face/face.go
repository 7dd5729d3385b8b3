// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package face

import (
	"errors"
	"sort"
	"sync"
)

// FirstFaceID is the lowest id assigned to an accepted connection.
const FirstFaceID uint64 = 256

var (
	ErrClosed        = errors.New("face: face is closed")
	ErrFrameTooLarge = errors.New("face: frame exceeds maximum packet size")
)

// Face is one endpoint packets can be sent to.
type Face interface {
	ID() uint64
	Send(wire []byte) error
}

// Table tracks live faces by id. Safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	faces map[uint64]Face
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{faces: make(map[uint64]Face)}
}

// Add registers f under f.ID(), replacing any face with the same id.
func (t *Table) Add(f Face) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.faces[f.ID()] = f
}

// Remove forgets the face with the given id.
func (t *Table) Remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.faces, id)
}

// Get returns the face with the given id.
func (t *Table) Get(id uint64) (Face, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.faces[id]
	return f, ok
}

// IDs returns the ids of all registered faces in ascending order.
func (t *Table) IDs() []uint64 {
	t.mu.RLock()
	ids := make([]uint64, 0, len(t.faces))
	for id := range t.faces {
		ids = append(ids, id)
	}
	t.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered faces.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.faces)
}
