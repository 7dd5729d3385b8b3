// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"github.com/zeebo/blake3"
)

// KeyIDSize is the length of the key id component of a key name.
const KeyIDSize = 8

// keyIDDomainKey separates key ids from any other BLAKE3 use. It is
// the ASCII domain name zero-padded to 32 bytes; changing it renames
// every key.
var keyIDDomainKey = [32]byte{
	'n', 'f', 'd', 'm', 'g', 'm', 't', '.', 'k', 'e', 'y', '.', 'i', 'd',
}

// KeyID returns the key id for an encoded public key.
func KeyID(public []byte) []byte {
	hasher, err := blake3.NewKeyed(keyIDDomainKey[:])
	if err != nil {
		panic("security: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(public)
	return hasher.Sum(nil)[:KeyIDSize]
}
