// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package packet

import (
	"errors"
	"fmt"
)

// TLV-TYPE numbers for packet elements.
const (
	TypeInterest               uint64 = 5
	TypeData                   uint64 = 6
	TypeNonce                  uint64 = 10
	TypeInterestLifetime       uint64 = 12
	TypeMustBeFresh            uint64 = 18
	TypeMetaInfo               uint64 = 20
	TypeContent                uint64 = 21
	TypeSignatureInfo          uint64 = 22
	TypeSignatureValue         uint64 = 23
	TypeContentType            uint64 = 24
	TypeFreshnessPeriod        uint64 = 25
	TypeFinalBlockID           uint64 = 26
	TypeSignatureType          uint64 = 27
	TypeKeyLocator             uint64 = 28
	TypeKeyDigest              uint64 = 29
	TypeForwardingHint         uint64 = 30
	TypeCanBePrefix            uint64 = 33
	TypeHopLimit               uint64 = 34
	TypeApplicationParameters  uint64 = 36
	TypeSignatureNonce         uint64 = 38
	TypeSignatureTime          uint64 = 40
	TypeSignatureSeqNum        uint64 = 42
	TypeInterestSignatureInfo  uint64 = 44
	TypeInterestSignatureValue uint64 = 46
)

// ContentType values carried in Data MetaInfo.
const (
	ContentTypeBlob      uint64 = 0
	ContentTypeLink      uint64 = 1
	ContentTypeKey       uint64 = 2
	ContentTypeNack      uint64 = 3
	ContentTypeManifest  uint64 = 4
	ContentTypePrefixAnn uint64 = 5
)

// SignatureType identifies a signing algorithm.
type SignatureType uint64

const (
	SignatureDigestSha256    SignatureType = 0
	SignatureSha256WithRsa   SignatureType = 1
	SignatureSha256WithEcdsa SignatureType = 3
	SignatureHmacWithSha256  SignatureType = 4
	SignatureEd25519         SignatureType = 5
)

// String returns the conventional name of the signature type.
func (t SignatureType) String() string {
	switch t {
	case SignatureDigestSha256:
		return "DigestSha256"
	case SignatureSha256WithRsa:
		return "SignatureSha256WithRsa"
	case SignatureSha256WithEcdsa:
		return "SignatureSha256WithEcdsa"
	case SignatureHmacWithSha256:
		return "SignatureHmacWithSha256"
	case SignatureEd25519:
		return "SignatureEd25519"
	default:
		return fmt.Sprintf("SignatureType(%d)", uint64(t))
	}
}

var (
	ErrMalformed   = errors.New("packet: malformed packet")
	ErrMissingName = errors.New("packet: missing Name")
	ErrTooLarge    = errors.New("packet: packet exceeds maximum size")
)
