// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
)

var (
	ErrNoKey                = errors.New("security: identity has no key")
	ErrUnknownKey           = errors.New("security: unknown key")
	ErrNoPrivateKey         = errors.New("security: key has no private part")
	ErrUnsupportedAlgorithm = errors.New("security: unsupported algorithm")
	ErrNotKeyName           = errors.New("security: not a key name")
	ErrSignatureInvalid     = errors.New("security: signature verification failed")
)

// Signer signs the signed portion of a packet.
type Signer interface {
	SignatureType() packet.SignatureType

	// KeyName is carried in the KeyLocator. Empty for DigestSha256.
	KeyName() name.Name

	Sign(portion []byte) ([]byte, error)
}

// PublicKey verifies signatures produced by the matching Signer.
type PublicKey interface {
	SignatureType() packet.SignatureType
	Verify(portion, signature []byte) bool
}

// KeyResolver finds the public key named by a KeyLocator.
type KeyResolver interface {
	ResolveKey(keyName name.Name) (PublicKey, error)
}

// DigestSigner produces DigestSha256 signatures: a plain SHA-256 of
// the signed portion with no KeyLocator.
type DigestSigner struct{}

func (DigestSigner) SignatureType() packet.SignatureType { return packet.SignatureDigestSha256 }

func (DigestSigner) KeyName() name.Name { return name.Name{} }

func (DigestSigner) Sign(portion []byte) ([]byte, error) {
	digest := sha256.Sum256(portion)
	return digest[:], nil
}

// VerifyDigest reports whether signature is the SHA-256 of portion.
func VerifyDigest(portion, signature []byte) bool {
	digest := sha256.Sum256(portion)
	return subtle.ConstantTimeCompare(digest[:], signature) == 1
}

// SignData fills in the SignatureInfo and SignatureValue of data.
func SignData(data *packet.Data, signer Signer) error {
	data.SignatureInfo = packet.SignatureInfo{
		Type:       signer.SignatureType(),
		KeyLocator: signer.KeyName(),
	}
	signature, err := signer.Sign(data.SignedPortion())
	if err != nil {
		return fmt.Errorf("signing %s: %w", data.Name, err)
	}
	data.SignatureValue = signature
	return nil
}

// VerifyData checks the signature of data. DigestSha256 signatures are
// checked without a resolver; other types resolve the KeyLocator
// through resolver, which may be nil to accept digests only.
func VerifyData(data *packet.Data, resolver KeyResolver) error {
	portion := data.SignedPortion()
	if data.SignatureInfo.Type == packet.SignatureDigestSha256 {
		if !VerifyDigest(portion, data.SignatureValue) {
			return ErrSignatureInvalid
		}
		return nil
	}
	if resolver == nil || data.SignatureInfo.KeyLocator.IsEmpty() {
		return fmt.Errorf("%w: %s signature without resolvable KeyLocator", ErrUnknownKey, data.SignatureInfo.Type)
	}
	key, err := resolver.ResolveKey(data.SignatureInfo.KeyLocator)
	if err != nil {
		return err
	}
	if key.SignatureType() != data.SignatureInfo.Type || !key.Verify(portion, data.SignatureValue) {
		return ErrSignatureInvalid
	}
	return nil
}
