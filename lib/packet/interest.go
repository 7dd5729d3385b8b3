// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package packet

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// NonceSize is the length of the Interest Nonce element.
const NonceSize = 4

// Interest is an NDN Interest packet.
type Interest struct {
	Name        name.Name
	CanBePrefix bool
	MustBeFresh bool

	// Nonce is omitted from the encoding when nil.
	Nonce []byte

	// Lifetime is omitted from the encoding when zero (the network
	// default of 4 seconds applies).
	Lifetime time.Duration

	HopLimit *uint8

	// ApplicationParameters is absent when nil and present-but-empty
	// when non-nil with length zero.
	ApplicationParameters []byte

	// SignatureInfo and SignatureValue are the detached signature of a
	// signed Interest. Both are nil for unsigned Interests and for
	// Interests signed in the legacy name-embedded format.
	SignatureInfo  *SignatureInfo
	SignatureValue []byte
}

// HasParameters reports whether ApplicationParameters is present.
func (i *Interest) HasParameters() bool { return i.ApplicationParameters != nil }

// ParametersElements returns the encoded elements from
// ApplicationParameters onwards: ApplicationParameters,
// InterestSignatureInfo and, when withSignatureValue is set,
// InterestSignatureValue. Elements that are absent are skipped.
func (i *Interest) ParametersElements(withSignatureValue bool) []byte {
	var out []byte
	if i.ApplicationParameters != nil {
		out = tlv.Append(out, TypeApplicationParameters, i.ApplicationParameters)
	}
	if i.SignatureInfo != nil {
		out = append(out, i.SignatureInfo.Encode(TypeInterestSignatureInfo)...)
	}
	if withSignatureValue && i.SignatureValue != nil {
		out = tlv.Append(out, TypeInterestSignatureValue, i.SignatureValue)
	}
	return out
}

// Encode returns the Interest TLV.
func (i *Interest) Encode() []byte {
	value := i.Name.AppendTo(nil)
	if i.CanBePrefix {
		value = tlv.Append(value, TypeCanBePrefix, nil)
	}
	if i.MustBeFresh {
		value = tlv.Append(value, TypeMustBeFresh, nil)
	}
	if i.Nonce != nil {
		value = tlv.Append(value, TypeNonce, i.Nonce)
	}
	if i.Lifetime > 0 {
		value = tlv.AppendUint(value, TypeInterestLifetime, uint64(i.Lifetime.Milliseconds()))
	}
	if i.HopLimit != nil {
		value = tlv.Append(value, TypeHopLimit, []byte{*i.HopLimit})
	}
	value = append(value, i.ParametersElements(true)...)
	return tlv.Encode(TypeInterest, value)
}

// DecodeInterest decodes an Interest TLV. The returned Interest does
// not alias wire.
func DecodeInterest(wire []byte) (*Interest, error) {
	if len(wire) > tlv.MaxPacketSize {
		return nil, ErrTooLarge
	}
	block, err := tlv.DecodeExact(wire, TypeInterest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	elements, err := tlv.Elements(block.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(elements) == 0 || elements[0].Type != name.TypeName {
		return nil, ErrMissingName
	}

	interest := &Interest{}
	interest.Name, err = name.FromBlock(elements[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	seen := make(map[uint64]bool)
	for _, element := range elements[1:] {
		if seen[element.Type] {
			return nil, fmt.Errorf("%w: repeated element %d", ErrMalformed, element.Type)
		}
		seen[element.Type] = true

		switch element.Type {
		case TypeCanBePrefix:
			interest.CanBePrefix = true
		case TypeMustBeFresh:
			interest.MustBeFresh = true
		case TypeForwardingHint:
			// Carried by the network layer; irrelevant to management.
		case TypeNonce:
			if len(element.Value) != NonceSize {
				return nil, fmt.Errorf("%w: Nonce of %d bytes", ErrMalformed, len(element.Value))
			}
			interest.Nonce = bytes.Clone(element.Value)
		case TypeInterestLifetime:
			ms, err := element.Uint()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			interest.Lifetime = time.Duration(ms) * time.Millisecond
		case TypeHopLimit:
			if len(element.Value) != 1 {
				return nil, fmt.Errorf("%w: HopLimit of %d bytes", ErrMalformed, len(element.Value))
			}
			hopLimit := element.Value[0]
			interest.HopLimit = &hopLimit
		case TypeApplicationParameters:
			interest.ApplicationParameters = append([]byte{}, element.Value...)
		case TypeInterestSignatureInfo:
			info, err := DecodeSignatureInfo(element)
			if err != nil {
				return nil, err
			}
			interest.SignatureInfo = info
		case TypeInterestSignatureValue:
			interest.SignatureValue = append([]byte{}, element.Value...)
		default:
			if tlv.IsCritical(element.Type) {
				return nil, fmt.Errorf("%w: Interest element %d", tlv.ErrUnrecognizedCritical, element.Type)
			}
		}
	}
	return interest, nil
}
