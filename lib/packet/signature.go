// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package packet

import (
	"bytes"
	"fmt"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// SignatureInfo describes how a packet was signed. The same structure
// is carried as SignatureInfo in Data, as InterestSignatureInfo in
// signed Interests, and as a name component in legacy signed
// Interests.
type SignatureInfo struct {
	Type SignatureType

	// KeyLocator names the signing key. Empty when absent.
	KeyLocator name.Name

	// Nonce, Time and SeqNum are the Interest replay-protection
	// fields. Time is milliseconds since the Unix epoch.
	Nonce  []byte
	Time   *uint64
	SeqNum *uint64
}

// Encode returns the SignatureInfo as an element of the given outer
// type (TypeSignatureInfo or TypeInterestSignatureInfo).
func (s *SignatureInfo) Encode(outer uint64) []byte {
	var value []byte
	value = tlv.AppendUint(value, TypeSignatureType, uint64(s.Type))
	if !s.KeyLocator.IsEmpty() {
		value = tlv.Append(value, TypeKeyLocator, s.KeyLocator.Encode())
	}
	if s.Nonce != nil {
		value = tlv.Append(value, TypeSignatureNonce, s.Nonce)
	}
	if s.Time != nil {
		value = tlv.AppendUint(value, TypeSignatureTime, *s.Time)
	}
	if s.SeqNum != nil {
		value = tlv.AppendUint(value, TypeSignatureSeqNum, *s.SeqNum)
	}
	return tlv.Encode(outer, value)
}

// DecodeSignatureInfo decodes a SignatureInfo or InterestSignatureInfo
// element.
func DecodeSignatureInfo(block tlv.Block) (*SignatureInfo, error) {
	if block.Type != TypeSignatureInfo && block.Type != TypeInterestSignatureInfo {
		return nil, fmt.Errorf("%w: SignatureInfo has type %d", ErrMalformed, block.Type)
	}
	elements, err := tlv.Elements(block.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: SignatureInfo: %v", ErrMalformed, err)
	}
	if len(elements) == 0 || elements[0].Type != TypeSignatureType {
		return nil, fmt.Errorf("%w: SignatureInfo does not start with SignatureType", ErrMalformed)
	}

	info := &SignatureInfo{}
	for i, element := range elements {
		switch element.Type {
		case TypeSignatureType:
			if i > 0 {
				return nil, fmt.Errorf("%w: repeated SignatureType", ErrMalformed)
			}
			n, err := element.Uint()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			info.Type = SignatureType(n)
		case TypeKeyLocator:
			locator, err := tlv.Elements(element.Value)
			if err != nil || len(locator) != 1 {
				return nil, fmt.Errorf("%w: KeyLocator", ErrMalformed)
			}
			if locator[0].Type != name.TypeName {
				// KeyDigest locators are not resolvable here.
				continue
			}
			keyName, err := name.FromBlock(locator[0])
			if err != nil {
				return nil, fmt.Errorf("%w: KeyLocator: %v", ErrMalformed, err)
			}
			info.KeyLocator = keyName
		case TypeSignatureNonce:
			info.Nonce = bytes.Clone(element.Value)
		case TypeSignatureTime:
			n, err := element.Uint()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			info.Time = &n
		case TypeSignatureSeqNum:
			n, err := element.Uint()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			info.SeqNum = &n
		default:
			if tlv.IsCritical(element.Type) {
				return nil, fmt.Errorf("%w: SignatureInfo element %d", tlv.ErrUnrecognizedCritical, element.Type)
			}
		}
	}
	return info, nil
}
