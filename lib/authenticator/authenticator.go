// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package authenticator decides whether a verified signer may issue
// commands to a management module.
//
// A [PrivilegeSet] maps identities to the modules they hold privileges
// for. Authorization is an exact module match and defaults to deny.
// An "any signer" grant applies to every verified identity, but only
// for the modules it names.
package authenticator

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

// Privileges a grant may name, one per management module.
const (
	PrivilegeFaces          = "faces"
	PrivilegeFib            = "fib"
	PrivilegeRib            = "rib"
	PrivilegeCs             = "cs"
	PrivilegeStrategyChoice = "strategy-choice"
)

// KnownPrivileges lists every grantable privilege.
var KnownPrivileges = []string{
	PrivilegeFaces,
	PrivilegeFib,
	PrivilegeRib,
	PrivilegeCs,
	PrivilegeStrategyChoice,
}

// AnyIdentity is the configuration spelling of the any-signer grant.
const AnyIdentity = "any"

var ErrUnknownPrivilege = errors.New("authenticator: unknown privilege")

// IsKnownPrivilege reports whether module names a grantable privilege.
func IsKnownPrivilege(module string) bool {
	return slices.Contains(KnownPrivileges, module)
}

// PrivilegeSet holds grants. Mutations take effect for the next
// Authorize call. PrivilegeSet is safe for concurrent use.
type PrivilegeSet struct {
	mu     sync.RWMutex
	grants map[string]map[string]bool
	any    map[string]bool
}

// New returns an empty PrivilegeSet, which denies everything.
func New() *PrivilegeSet {
	return &PrivilegeSet{
		grants: make(map[string]map[string]bool),
		any:    make(map[string]bool),
	}
}

func checkPrivileges(modules []string) error {
	var errs []error
	for _, module := range modules {
		if !IsKnownPrivilege(module) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownPrivilege, module))
		}
	}
	return errors.Join(errs...)
}

// Grant gives identity privileges for modules. Nothing is granted if
// any module is unknown.
func (p *PrivilegeSet) Grant(identity name.Name, modules ...string) error {
	if err := checkPrivileges(modules); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	key := identity.String()
	held, ok := p.grants[key]
	if !ok {
		held = make(map[string]bool)
		p.grants[key] = held
	}
	for _, module := range modules {
		held[module] = true
	}
	return nil
}

// GrantAny gives every verified signer privileges for modules.
func (p *PrivilegeSet) GrantAny(modules ...string) error {
	if err := checkPrivileges(modules); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, module := range modules {
		p.any[module] = true
	}
	return nil
}

// Revoke removes identity's privileges for modules.
func (p *PrivilegeSet) Revoke(identity name.Name, modules ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := identity.String()
	held := p.grants[key]
	for _, module := range modules {
		delete(held, module)
	}
	if len(held) == 0 {
		delete(p.grants, key)
	}
}

// RevokeAny removes any-signer privileges for modules.
func (p *PrivilegeSet) RevokeAny(modules ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, module := range modules {
		delete(p.any, module)
	}
}

// RevokeIdentity removes every privilege held by identity.
func (p *PrivilegeSet) RevokeIdentity(identity name.Name) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.grants, identity.String())
}

// Replace swaps in the grants of other, as when configuration is
// reloaded. other is copied and may be reused.
func (p *PrivilegeSet) Replace(other *PrivilegeSet) {
	other.mu.RLock()
	grants := make(map[string]map[string]bool, len(other.grants))
	for identity, held := range other.grants {
		grants[identity] = maps.Clone(held)
	}
	anySigner := maps.Clone(other.any)
	other.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.grants = grants
	p.any = anySigner
}

// Authorize reports whether identity may issue commands to module.
func (p *PrivilegeSet) Authorize(identity name.Name, module string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.any[module] {
		return true
	}
	return p.grants[identity.String()][module]
}

// Privileges returns identity's own grants, sorted. Any-signer grants
// are not included.
func (p *PrivilegeSet) Privileges(identity name.Name) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Sorted(maps.Keys(p.grants[identity.String()]))
}
