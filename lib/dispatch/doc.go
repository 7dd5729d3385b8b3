// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch routes management Interests to command handlers.
//
// A [Dispatcher] owns one or more top prefixes (normally
// /localhost/nfd). Under a top prefix, the next two name components
// select a command module and verb:
//
//	/localhost/nfd/fib/add-nexthop/<ControlParameters>/<signature...>
//
// Control commands pass through a fixed pipeline, and a failure at any
// stage is answered without running the stages after it:
//
//  1. signature verification and format policy (401)
//  2. handler lookup by module and verb (404)
//  3. authorization of the signer for the module (403)
//  4. parameter decoding and validation (400)
//  5. the handler itself (its own response, or 500 on error or panic)
//
// Every outcome is a [response.ControlResponse] named after the
// request, segmented when it exceeds the payload limit, signed, and
// sent back to the requesting face. Status datasets registered with
// [Dispatcher.AddStatusDataset] answer unsigned Interests with
// versioned, segmented Data; later segments are served from an
// in-memory response cache.
//
// The cache answers by exact Interest name, before verification. It
// holds dataset segments and the responses to requests that passed
// verification; a 401 is never cached. A retransmitted command is
// therefore answered with the same packets as the original without
// running its handler again, and a retransmission that arrives while
// the handler is still pending is dropped.
//
// The dispatcher is not safe for concurrent use: all calls to
// HandleInterest must come from one goroutine (the event loop).
// Handlers may complete from any goroutine through their
// [Continuation]. An outcome delivered before the handler returns is
// sent when it returns; a later one is posted onto the loop.
package dispatch
