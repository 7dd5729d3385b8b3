// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package packet encodes and decodes the two NDN network-layer packets
// the management plane exchanges: Interests (command requests and
// dataset queries) and Data (responses and response segments).
//
// The package is purely structural. It knows where signature material
// lives in each packet and exposes the exact byte ranges a signer
// covers ([Data.SignedPortion]), but it does not sign or verify
// anything itself; see lib/security and lib/command.
//
// Decoders follow the TLV evolvability rule: unrecognised non-critical
// elements are skipped, unrecognised critical elements reject the
// packet.
package packet
