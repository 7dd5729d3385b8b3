// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package response encodes command outcomes into signed Data packets
// and reassembles them on the consumer side.
//
// A [ControlResponse] carries a status code, a status text and an
// optional body. [Segment] splits any encoded block into packets of at
// most MaxPayload content bytes: a block that fits is sent as one
// packet named exactly after the request, a larger one as
// <target>/seg=0 .. <target>/seg=N-1, each carrying FinalBlockId
// seg=N-1.
//
// [Check] and [Concatenate] inspect a list of received packets the way
// management tests do. [Assemble] validates and orders segments, and
// [Fetch] retrieves a whole segmented object through a [Fetcher].
package response
