// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package command builds and verifies signed management commands.
//
// A command is an Interest named <command>/<ControlParameters> and
// signed in one of two mutually exclusive formats:
//
//   - [FormatA], the legacy signed Interest: four components are
//     appended to the name (timestamp, nonce, SignatureInfo,
//     SignatureValue) and the signature covers every component before
//     the SignatureValue component.
//   - [FormatB], the current signed Interest: the signature travels in
//     InterestSignatureInfo and InterestSignatureValue, and a
//     ParametersSha256Digest component binds the name to the
//     ApplicationParameters and signature elements.
//
// [Builder] produces either format. [Verifier] detects the format from
// structure alone, recomputes the signed portion, resolves the signing
// key and, when a [ReplayChecker] is configured, rejects stale or
// repeated timestamps. Failures are reported as [*VerificationError]
// with a [Kind] so callers can map them to status codes.
package command
