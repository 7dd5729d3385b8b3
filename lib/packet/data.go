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

// Data is an NDN Data packet.
type Data struct {
	Name name.Name

	// MetaInfo fields. ContentType zero is Blob and is not encoded.
	ContentType  uint64
	Freshness    time.Duration
	FinalBlockID *name.Component

	Content []byte

	SignatureInfo  SignatureInfo
	SignatureValue []byte
}

func (d *Data) appendMetaInfo(dst []byte) []byte {
	var value []byte
	if d.ContentType != ContentTypeBlob {
		value = tlv.AppendUint(value, TypeContentType, d.ContentType)
	}
	if d.Freshness > 0 {
		value = tlv.AppendUint(value, TypeFreshnessPeriod, uint64(d.Freshness.Milliseconds()))
	}
	if d.FinalBlockID != nil {
		value = tlv.Append(value, TypeFinalBlockID, d.FinalBlockID.Encode())
	}
	if value == nil {
		return dst
	}
	return tlv.Append(dst, TypeMetaInfo, value)
}

// SignedPortion returns the bytes covered by the Data signature: the
// Name, MetaInfo, Content and SignatureInfo elements.
func (d *Data) SignedPortion() []byte {
	out := d.Name.AppendTo(nil)
	out = d.appendMetaInfo(out)
	out = tlv.Append(out, TypeContent, d.Content)
	return append(out, d.SignatureInfo.Encode(TypeSignatureInfo)...)
}

// Encode returns the Data TLV.
func (d *Data) Encode() []byte {
	value := d.SignedPortion()
	value = tlv.Append(value, TypeSignatureValue, d.SignatureValue)
	return tlv.Encode(TypeData, value)
}

// IsFinalBlock reports whether FinalBlockID is present and equals
// the last name component, or equals segment 0 on an unsegmented
// packet.
func (d *Data) IsFinalBlock() bool {
	if d.FinalBlockID == nil {
		return false
	}
	if d.Name.Len() > 0 && d.Name.At(-1).IsSegment() {
		return d.FinalBlockID.Equal(d.Name.At(-1))
	}
	return d.FinalBlockID.Equal(name.Segment(0))
}

// DecodeData decodes a Data TLV. The returned Data does not alias
// wire.
func DecodeData(wire []byte) (*Data, error) {
	if len(wire) > tlv.MaxPacketSize {
		return nil, ErrTooLarge
	}
	block, err := tlv.DecodeExact(wire, TypeData)
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

	data := &Data{}
	data.Name, err = name.FromBlock(elements[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var haveSignatureInfo, haveSignatureValue bool
	for _, element := range elements[1:] {
		switch element.Type {
		case TypeMetaInfo:
			if err := data.decodeMetaInfo(element); err != nil {
				return nil, err
			}
		case TypeContent:
			data.Content = bytes.Clone(element.Value)
		case TypeSignatureInfo:
			info, err := DecodeSignatureInfo(element)
			if err != nil {
				return nil, err
			}
			data.SignatureInfo = *info
			haveSignatureInfo = true
		case TypeSignatureValue:
			data.SignatureValue = append([]byte{}, element.Value...)
			haveSignatureValue = true
		default:
			if tlv.IsCritical(element.Type) {
				return nil, fmt.Errorf("%w: Data element %d", tlv.ErrUnrecognizedCritical, element.Type)
			}
		}
	}
	if !haveSignatureInfo || !haveSignatureValue {
		return nil, fmt.Errorf("%w: Data is not signed", ErrMalformed)
	}
	return data, nil
}

func (d *Data) decodeMetaInfo(block tlv.Block) error {
	elements, err := tlv.Elements(block.Value)
	if err != nil {
		return fmt.Errorf("%w: MetaInfo: %v", ErrMalformed, err)
	}
	for _, element := range elements {
		switch element.Type {
		case TypeContentType:
			contentType, err := element.Uint()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			d.ContentType = contentType
		case TypeFreshnessPeriod:
			ms, err := element.Uint()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			d.Freshness = time.Duration(ms) * time.Millisecond
		case TypeFinalBlockID:
			component, err := name.DecodeComponent(element.Value)
			if err != nil {
				return fmt.Errorf("%w: FinalBlockId: %v", ErrMalformed, err)
			}
			d.FinalBlockID = &component
		default:
			if tlv.IsCritical(element.Type) {
				return fmt.Errorf("%w: MetaInfo element %d", tlv.ErrUnrecognizedCritical, element.Type)
			}
		}
	}
	return nil
}

// PeekType returns the outer TLV-TYPE of an encoded packet without
// decoding it.
func PeekType(wire []byte) (uint64, error) {
	typ, _, err := tlv.ReadVarNumber(wire)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return typ, nil
}
