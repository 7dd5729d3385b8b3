// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"crypto/sha256"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// legacySuffixLength is the number of components a legacy signature
// appends: timestamp, nonce, SignatureInfo and SignatureValue.
const legacySuffixLength = 4

// Verified is a command whose signature has been checked.
type Verified struct {
	// Identity is the signer, the KeyName prefix before KEY.
	Identity name.Name
	KeyName  name.Name

	// Name is the request name without any signature material.
	Name name.Name

	// CommandName is Name without the parameter component. When the
	// last component of Name holds exactly one ControlParameters
	// element it is the parameter component, and Parameters holds its
	// value; otherwise CommandName equals Name and Parameters is nil.
	CommandName name.Name
	Parameters  []byte

	// ApplicationParameters is nil when absent.
	ApplicationParameters []byte

	Format Format

	// Timestamp is the signed request time; zero when the request
	// carries none.
	Timestamp time.Time
}

// DecodeParameters decodes the parameter component. A command without
// one yields empty Parameters.
func (v *Verified) DecodeParameters() (*controlparams.Parameters, error) {
	if v.Parameters == nil {
		return controlparams.New(), nil
	}
	return controlparams.Decode(v.Parameters)
}

// Verifier checks signed commands.
type Verifier struct {
	keys   security.KeyResolver
	replay *ReplayChecker
}

// NewVerifier returns a Verifier resolving signing keys through keys.
// replay may be nil to skip timestamp checks.
func NewVerifier(keys security.KeyResolver, replay *ReplayChecker) *Verifier {
	return &Verifier{keys: keys, replay: replay}
}

// VerifyWire decodes and verifies an encoded Interest.
func (v *Verifier) VerifyWire(wire []byte) (*Verified, error) {
	interest, err := packet.DecodeInterest(wire)
	if err != nil {
		return nil, &VerificationError{Kind: MalformedRequest, Err: err}
	}
	return v.Verify(interest)
}

// signedRequest is the format-specific view the common checks run on.
type signedRequest struct {
	format    Format
	info      *packet.SignatureInfo
	signature []byte
	portion   []byte
	unsigned  name.Name
	timestamp uint64
}

// Verify checks interest and returns the signer and command it carries.
func (v *Verifier) Verify(interest *packet.Interest) (*Verified, error) {
	var request *signedRequest
	var err error
	switch {
	case interest.SignatureInfo != nil:
		request, err = parseSigned(interest)
	case isLegacySigned(interest.Name):
		request, err = parseLegacySigned(interest)
	default:
		return nil, verificationError(MalformedRequest, "%s carries no signature", interest.Name)
	}
	if err != nil {
		return nil, err
	}

	if request.info.KeyLocator.IsEmpty() {
		return nil, verificationError(UnknownSigner, "%v signature has no KeyLocator", request.info.Type)
	}
	identity, err := security.IdentityOf(request.info.KeyLocator)
	if err != nil {
		return nil, &VerificationError{Kind: UnknownSigner, Err: err}
	}
	key, err := v.keys.ResolveKey(request.info.KeyLocator)
	if err != nil {
		return nil, &VerificationError{Kind: UnknownSigner, Err: err}
	}
	if key.SignatureType() != request.info.Type {
		return nil, verificationError(SignatureInvalid, "%v signature from %v key %s",
			request.info.Type, key.SignatureType(), request.info.KeyLocator)
	}
	if !key.Verify(request.portion, request.signature) {
		return nil, verificationError(SignatureInvalid, "signature by %s does not match", request.info.KeyLocator)
	}

	if v.replay != nil {
		if err := v.replay.Accept(request.info.KeyLocator, request.timestamp); err != nil {
			return nil, err
		}
	}

	verified := &Verified{
		Identity:              identity,
		KeyName:               request.info.KeyLocator,
		Name:                  request.unsigned,
		CommandName:           request.unsigned,
		ApplicationParameters: interest.ApplicationParameters,
		Format:                request.format,
	}
	if request.timestamp != 0 {
		verified.Timestamp = time.UnixMilli(int64(request.timestamp))
	}
	if !request.unsigned.IsEmpty() {
		last := request.unsigned.At(-1)
		if isParameterComponent(last) {
			verified.CommandName = request.unsigned.Prefix(-1)
			verified.Parameters = last.Value()
		}
	}
	return verified, nil
}

func isParameterComponent(component name.Component) bool {
	if component.Type() != name.TypeGeneric {
		return false
	}
	_, err := tlv.DecodeExact(component.Value(), controlparams.TypeControlParameters)
	return err == nil
}

// isLegacySigned reports whether the name ends in SignatureInfo and
// SignatureValue components.
func isLegacySigned(n name.Name) bool {
	if n.Len() < legacySuffixLength {
		return false
	}
	_, infoErr := tlv.DecodeExact(n.At(-2).Value(), packet.TypeSignatureInfo)
	_, valueErr := tlv.DecodeExact(n.At(-1).Value(), packet.TypeSignatureValue)
	return infoErr == nil && valueErr == nil
}

func parseLegacySigned(interest *packet.Interest) (*signedRequest, error) {
	if len(interest.ApplicationParameters) > 0 {
		return nil, verificationError(FormatMismatch, "legacy signed Interest carries ApplicationParameters")
	}
	n := interest.Name

	infoBlock, err := tlv.DecodeExact(n.At(-2).Value(), packet.TypeSignatureInfo)
	if err != nil {
		return nil, &VerificationError{Kind: MalformedRequest, Err: err}
	}
	info, err := packet.DecodeSignatureInfo(infoBlock)
	if err != nil {
		return nil, &VerificationError{Kind: MalformedRequest, Err: err}
	}
	valueBlock, err := tlv.DecodeExact(n.At(-1).Value(), packet.TypeSignatureValue)
	if err != nil {
		return nil, &VerificationError{Kind: MalformedRequest, Err: err}
	}
	timestamp, err := tlv.DecodeNonNegativeInteger(n.At(-4).Value())
	if err != nil {
		return nil, verificationError(MalformedRequest, "timestamp component: %v", err)
	}
	if n.At(-3).Len() != NonceSize {
		return nil, verificationError(MalformedRequest, "nonce component has %d bytes", n.At(-3).Len())
	}

	return &signedRequest{
		format:    FormatA,
		info:      info,
		signature: valueBlock.Value,
		portion:   legacySignedPortion(n.Prefix(-1)),
		unsigned:  n.Prefix(-legacySuffixLength),
		timestamp: timestamp,
	}, nil
}

func parseSigned(interest *packet.Interest) (*signedRequest, error) {
	n := interest.Name
	if interest.ApplicationParameters == nil {
		return nil, verificationError(MalformedRequest, "InterestSignatureInfo without ApplicationParameters")
	}
	if interest.SignatureValue == nil {
		return nil, verificationError(MalformedRequest, "InterestSignatureInfo without InterestSignatureValue")
	}
	if n.IsEmpty() || !n.At(-1).IsParametersDigest() {
		return nil, verificationError(MalformedRequest, "ParametersSha256Digest is not the last component")
	}
	for _, component := range n.Prefix(-1).Components() {
		if component.IsParametersDigest() {
			return nil, verificationError(MalformedRequest, "more than one ParametersSha256Digest")
		}
	}
	digest := sha256.Sum256(interest.ParametersElements(true))
	if !bytes.Equal(digest[:], n.At(-1).Value()) {
		return nil, verificationError(SignatureInvalid, "ParametersSha256Digest does not match parameters")
	}

	var timestamp uint64
	if interest.SignatureInfo.Time != nil {
		timestamp = *interest.SignatureInfo.Time
	}
	return &signedRequest{
		format:    FormatB,
		info:      interest.SignatureInfo,
		signature: interest.SignatureValue,
		portion:   signedPortion(interest),
		unsigned:  n.Prefix(-1),
		timestamp: timestamp,
	}, nil
}
