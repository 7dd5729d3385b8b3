// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package face is the transport the management plane talks through.
//
// A [Face] is anything a packet can be sent to. The daemon accepts
// [StreamFace] connections on a Unix socket through a [Listener]; each
// frame on a stream is one complete Interest or Data TLV element, so
// the TLV header itself delimits frames. Tests use [DummyFace], which
// records what the dispatcher sent instead of writing it anywhere.
//
// Face ids below [FirstFaceID] are reserved, as in NFD, for internal
// faces; the listener numbers connections upward from there.
package face
