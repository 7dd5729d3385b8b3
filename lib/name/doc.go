// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package name implements hierarchical NDN names: ordered sequences of
// typed, opaque components. Names address command targets
// (/localhost/nfd/fib/add-nexthop), signing keys
// (/operator/KEY/<key-id>) and response segments
// (/localhost/nfd/fib/list/v=<version>/seg=<n>).
//
// [Name] is immutable: every operation that changes a name returns a
// new value and never aliases the receiver's storage. Names are totally
// ordered by [Name.Compare] using NDN canonical order (component type,
// then value length, then value bytes; a proper prefix sorts first).
//
// The URI form accepted by [Parse] and produced by [Name.String]
// percent-encodes generic components and uses the conventional
// shorthands for typed components:
//
//	seg=3            Segment
//	v=1700000000000  Version
//	t=...            Timestamp
//	seq=...          SequenceNum
//	params-sha256=.. ParametersSha256Digest (hex)
//	sha256digest=..  ImplicitSha256Digest (hex)
//	32=hello         any other type, by number
package name
