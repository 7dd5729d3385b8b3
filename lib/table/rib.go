// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"cmp"
	"slices"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

// Scheduler runs a task after a delay. eventloop.Loop implements it,
// which keeps route expiry on the loop goroutine.
type Scheduler interface {
	Schedule(d time.Duration, task func()) *clock.Timer
	Clock() clock.Clock
}

// Route is one registration of a prefix.
type Route struct {
	FaceID uint64
	Origin uint64
	Cost   uint64
	Flags  uint64

	// ExpirationPeriod is zero for routes that never expire.
	ExpirationPeriod time.Duration

	// Expires is when the route will be removed; zero when it does not
	// expire.
	Expires time.Time

	timer *clock.Timer
}

// Remaining returns the time left before the route expires, or zero
// for a permanent route.
func (r Route) Remaining(now time.Time) time.Duration {
	if r.Expires.IsZero() {
		return 0
	}
	return max(0, r.Expires.Sub(now))
}

// RIBEntry is a prefix with its routes, ordered by face then origin.
type RIBEntry struct {
	Prefix name.Name
	Routes []Route
}

// RIB holds registered routes and keeps a FIB derived from them.
type RIB struct {
	fib       *FIB
	scheduler Scheduler
	entries   map[string]*RIBEntry
}

// NewRIB returns an empty RIB that maintains fib.
func NewRIB(fib *FIB, scheduler Scheduler) *RIB {
	return &RIB{fib: fib, scheduler: scheduler, entries: make(map[string]*RIBEntry)}
}

// Register adds route under prefix. A route with the same face and
// origin is replaced, cancelling its pending expiry. A non-zero
// ExpirationPeriod schedules removal.
func (r *RIB) Register(prefix name.Name, route Route) {
	key := prefix.String()
	entry, ok := r.entries[key]
	if !ok {
		entry = &RIBEntry{Prefix: prefix}
		r.entries[key] = entry
	}

	route.timer = nil
	route.Expires = time.Time{}
	if route.ExpirationPeriod > 0 {
		route.Expires = r.scheduler.Clock().Now().Add(route.ExpirationPeriod)
		faceID, origin := route.FaceID, route.Origin
		var timer *clock.Timer
		timer = r.scheduler.Schedule(route.ExpirationPeriod, func() {
			r.expire(prefix, faceID, origin, timer)
		})
		route.timer = timer
	}

	index := entry.find(route.FaceID, route.Origin)
	if index >= 0 {
		if old := entry.Routes[index].timer; old != nil {
			old.Stop()
		}
		entry.Routes[index] = route
	} else {
		entry.Routes = append(entry.Routes, route)
		slices.SortFunc(entry.Routes, compareRoutes)
	}
	r.syncFIB(entry)
}

// Unregister removes the route with faceID and origin. Returns false if
// no such route exists.
func (r *RIB) Unregister(prefix name.Name, faceID, origin uint64) bool {
	entry, ok := r.entries[prefix.String()]
	if !ok {
		return false
	}
	index := entry.find(faceID, origin)
	if index < 0 {
		return false
	}
	r.remove(entry, index)
	return true
}

// expire removes a route when its timer fires, unless the route was
// re-registered with a different timer in the meantime.
func (r *RIB) expire(prefix name.Name, faceID, origin uint64, timer *clock.Timer) {
	entry, ok := r.entries[prefix.String()]
	if !ok {
		return
	}
	index := entry.find(faceID, origin)
	if index < 0 || entry.Routes[index].timer != timer {
		return
	}
	r.remove(entry, index)
}

func (r *RIB) remove(entry *RIBEntry, index int) {
	if timer := entry.Routes[index].timer; timer != nil {
		timer.Stop()
	}
	entry.Routes = slices.Delete(entry.Routes, index, index+1)
	if len(entry.Routes) == 0 {
		delete(r.entries, entry.Prefix.String())
	}
	r.syncFIB(entry)
}

// RemoveFace removes every route through faceID.
func (r *RIB) RemoveFace(faceID uint64) {
	for _, entry := range r.entries {
		for index := len(entry.Routes) - 1; index >= 0; index-- {
			if entry.Routes[index].FaceID == faceID {
				r.remove(entry, index)
			}
		}
	}
}

// syncFIB sets the FIB entry for the prefix to the cheapest route per
// face.
func (r *RIB) syncFIB(entry *RIBEntry) {
	cheapest := make(map[uint64]uint64)
	for _, route := range entry.Routes {
		if cost, ok := cheapest[route.FaceID]; !ok || route.Cost < cost {
			cheapest[route.FaceID] = route.Cost
		}
	}
	hops := make([]NextHop, 0, len(cheapest))
	for faceID, cost := range cheapest {
		hops = append(hops, NextHop{FaceID: faceID, Cost: cost})
	}
	r.fib.Replace(entry.Prefix, hops)
}

// Get returns the entry for exactly prefix.
func (r *RIB) Get(prefix name.Name) (RIBEntry, bool) {
	entry, ok := r.entries[prefix.String()]
	if !ok {
		return RIBEntry{}, false
	}
	return entry.clone(), true
}

// Entries returns every entry in canonical name order.
func (r *RIB) Entries() []RIBEntry {
	entries := make([]RIBEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry.clone())
	}
	slices.SortFunc(entries, func(a, b RIBEntry) int { return a.Prefix.Compare(b.Prefix) })
	return entries
}

// Len returns the number of prefixes with at least one route.
func (r *RIB) Len() int { return len(r.entries) }

func (e *RIBEntry) find(faceID, origin uint64) int {
	return slices.IndexFunc(e.Routes, func(route Route) bool {
		return route.FaceID == faceID && route.Origin == origin
	})
}

func (e *RIBEntry) clone() RIBEntry {
	routes := slices.Clone(e.Routes)
	for i := range routes {
		routes[i].timer = nil
	}
	return RIBEntry{Prefix: e.Prefix, Routes: routes}
}

func compareRoutes(a, b Route) int {
	return cmp.Or(cmp.Compare(a.FaceID, b.FaceID), cmp.Compare(a.Origin, b.Origin))
}
