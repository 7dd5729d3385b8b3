// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tlv implements the NDN Type-Length-Value wire primitives that
// every packet, name and command parameter in the management plane is
// built from.
//
// TLV-TYPE and TLV-LENGTH are VAR-NUMBERs: one byte for values below
// 253, otherwise a marker byte (253, 254, 255) followed by a 2, 4 or 8
// byte big-endian integer. Numeric values inside elements use the
// NonNegativeInteger encoding (1, 2, 4 or 8 bytes, big-endian).
//
// Decoding never panics on malformed input. Every error is one of the
// sentinel values below, wrapped with context, so callers can reject a
// single packet and keep serving.
//
// # Evolvability
//
// A TLV-TYPE is critical when it is <= 31 or odd. Decoders that meet a
// type they do not recognise must reject the enclosing element if the
// type is critical and may skip it otherwise; [IsCritical] implements
// the rule.
package tlv
