// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

// KeyChain holds keys by identity. The first key added for an identity
// becomes its default. KeyChain is safe for concurrent use.
type KeyChain struct {
	mu       sync.RWMutex
	keys     map[string]*Key
	defaults map[string]*Key
}

// NewKeyChain returns an empty KeyChain.
func NewKeyChain() *KeyChain {
	return &KeyChain{
		keys:     make(map[string]*Key),
		defaults: make(map[string]*Key),
	}
}

// AddKey stores key. Adding a key that is already present replaces it,
// so a public-only key can be upgraded with its private part.
func (kc *KeyChain) AddKey(key *Key) {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	keyName := key.Name().String()
	kc.keys[keyName] = key
	identity := key.Identity().String()
	if current, ok := kc.defaults[identity]; !ok || current.Name().Equal(key.Name()) {
		kc.defaults[identity] = key
	}
}

// SetDefault makes the named key its identity's default.
func (kc *KeyChain) SetDefault(keyName name.Name) error {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	key, ok := kc.keys[keyName.String()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, keyName)
	}
	kc.defaults[key.Identity().String()] = key
	return nil
}

// DefaultKey returns the default key of identity. It fails with
// ErrNoKey when the identity has no key, and ErrNoPrivateKey when the
// default key cannot sign.
func (kc *KeyChain) DefaultKey(identity name.Name) (*Key, error) {
	kc.mu.RLock()
	defer kc.mu.RUnlock()

	key, ok := kc.defaults[identity.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoKey, identity)
	}
	if !key.CanSign() {
		return nil, fmt.Errorf("%w: %s", ErrNoPrivateKey, key.Name())
	}
	return key, nil
}

// ResolveKey implements KeyResolver.
func (kc *KeyChain) ResolveKey(keyName name.Name) (PublicKey, error) {
	kc.mu.RLock()
	defer kc.mu.RUnlock()

	key, ok := kc.keys[keyName.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, keyName)
	}
	return key, nil
}

// RemoveIdentity deletes every key of identity.
func (kc *KeyChain) RemoveIdentity(identity name.Name) {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	for keyName, key := range kc.keys {
		if key.Identity().Equal(identity) {
			delete(kc.keys, keyName)
		}
	}
	delete(kc.defaults, identity.String())
}

// Identities returns every identity with a key, sorted.
func (kc *KeyChain) Identities() []name.Name {
	kc.mu.RLock()
	defer kc.mu.RUnlock()

	identities := make([]name.Name, 0, len(kc.defaults))
	for _, key := range kc.defaults {
		identities = append(identities, key.Identity())
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].Compare(identities[j]) < 0
	})
	return identities
}
