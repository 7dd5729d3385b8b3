// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

// Builder errors.
var (
	// ErrEmptyCommandName is returned when asked to sign a command
	// with no name components.
	ErrEmptyCommandName = errors.New("command: command name is empty")

	// ErrUnknownFormat is returned for a Format outside FormatA and
	// FormatB, and by ParseFormat for unrecognized text.
	ErrUnknownFormat = errors.New("command: unknown signed Interest format")
)

// Verification sentinels, one per Kind. A *VerificationError matches
// the sentinel of its Kind under errors.Is. ErrFormatMismatch is also
// returned by the Builder when a prefix announcement is requested in
// FormatA.
var (
	// ErrMalformedRequest: the Interest lacks the elements of either
	// signed format, or they do not decode.
	ErrMalformedRequest = errors.New("command: malformed signed request")

	// ErrUnknownSigner: the KeyLocator names a key the resolver does
	// not hold.
	ErrUnknownSigner = errors.New("command: unknown signer")

	// ErrSignatureInvalid: the signature, or the FormatB parameters
	// digest, does not match the signed portion.
	ErrSignatureInvalid = errors.New("command: signature invalid")

	// ErrFormatMismatch: the request mixes elements of both formats,
	// or uses a format its command does not allow.
	ErrFormatMismatch = errors.New("command: signed Interest format mismatch")

	// ErrReplay: the timestamp is missing, outside the grace period,
	// or not newer than the signer's last accepted request.
	ErrReplay = errors.New("command: replayed or stale request")
)

// Kind classifies a verification failure. The zero Kind means the
// error did not come from verification.
type Kind int

const (
	MalformedRequest Kind = iota + 1
	UnknownSigner
	SignatureInvalid
	FormatMismatch
	Replay
)

func (k Kind) String() string {
	switch k {
	case MalformedRequest:
		return "MalformedRequest"
	case UnknownSigner:
		return "UnknownSigner"
	case SignatureInvalid:
		return "SignatureInvalid"
	case FormatMismatch:
		return "FormatMismatch"
	case Replay:
		return "Replay"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case MalformedRequest:
		return ErrMalformedRequest
	case UnknownSigner:
		return ErrUnknownSigner
	case SignatureInvalid:
		return ErrSignatureInvalid
	case FormatMismatch:
		return ErrFormatMismatch
	case Replay:
		return ErrReplay
	}
	return nil
}

// VerificationError reports why a signed request was rejected.
// errors.Is matches both the Kind's sentinel and the wrapped cause.
type VerificationError struct {
	Kind Kind
	Err  error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind.sentinel(), e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

func (e *VerificationError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func verificationError(kind Kind, format string, args ...any) *VerificationError {
	return &VerificationError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of a verification failure, or zero when err
// is not a *VerificationError.
func KindOf(err error) Kind {
	var verification *VerificationError
	if errors.As(err, &verification) {
		return verification.Kind
	}
	return 0
}

// SigningError reports that a command could not be signed as the
// requested identity.
type SigningError struct {
	Identity name.Name
	Err      error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("command: cannot sign as %s: %v", e.Identity, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }
