// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration used for the
// management daemon's on-disk state, chiefly signing key files.
//
// Packets on the wire are NDN TLV (see lib/tlv); CBOR is only used for
// local files that never leave the host. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2), so the same logical value
// always produces identical bytes.
//
// Types implementing encoding.TextMarshaler, such as name.Name, are
// encoded as CBOR text strings in their URI form:
//
//	data, err := codec.Marshal(keyFile)
//	err = codec.Unmarshal(data, &keyFile)
package codec
