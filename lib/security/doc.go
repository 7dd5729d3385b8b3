// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package security provides the signing capability used by management
// commands and responses.
//
// A [Key] belongs to an identity (a Name) and is itself named
// <identity>/KEY/<key-id>, where the key id is the first eight bytes
// of a domain-separated BLAKE3 hash of the public key. Ed25519 and
// ECDSA P-256 keys are supported. [DigestSigner] produces the
// unauthenticated DigestSha256 signature used for integrity only.
//
// A [KeyChain] holds keys by identity and serves as both the signing
// side (DefaultKey) and, through [KeyResolver], the verification side.
// Keys persist as CBOR [KeyFile]s.
package security
