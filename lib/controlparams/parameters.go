// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package controlparams

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

var (
	ErrMalformed       = errors.New("controlparams: malformed ControlParameters")
	ErrRepeatedField   = errors.New("controlparams: repeated field")
	ErrFieldOutOfOrder = errors.New("controlparams: field out of order")
)

// Parameters is a ControlParameters value. The zero value has no
// fields present. Setters return the receiver so calls can be chained.
type Parameters struct {
	present uint32

	name     name.Name
	strategy name.Name
	uints    [fieldCount]uint64
	strings  [fieldCount]string
}

// Values are addressed by position in fieldOrder.
const fieldCount = 16

// New returns an empty Parameters.
func New() *Parameters { return &Parameters{} }

func (p *Parameters) bit(f Field) uint32 {
	i, ok := fieldIndex[f]
	if !ok {
		panic(fmt.Sprintf("controlparams: unknown field %d", uint64(f)))
	}
	return 1 << i
}

// Has reports whether field f is present.
func (p *Parameters) Has(f Field) bool {
	return p.present&p.bit(f) != 0
}

// Unset removes field f.
func (p *Parameters) Unset(f Field) *Parameters {
	p.present &^= p.bit(f)
	return p
}

// Fields returns the present fields in encoding order.
func (p *Parameters) Fields() []Field {
	var fields []Field
	for i, info := range fieldOrder {
		if p.present&(1<<i) != 0 {
			fields = append(fields, info.field)
		}
	}
	return fields
}

// Name returns the Name field.
func (p *Parameters) Name() name.Name { return p.name }

// SetName sets the Name field.
func (p *Parameters) SetName(n name.Name) *Parameters {
	p.name = n
	p.present |= p.bit(FieldName)
	return p
}

// Strategy returns the Strategy field.
func (p *Parameters) Strategy() name.Name { return p.strategy }

// SetStrategy sets the Strategy field.
func (p *Parameters) SetStrategy(n name.Name) *Parameters {
	p.strategy = n
	p.present |= p.bit(FieldStrategy)
	return p
}

// Uint returns the value of a numeric field. Duration fields are
// returned in milliseconds.
func (p *Parameters) Uint(f Field) uint64 {
	switch f.kind() {
	case kindUint, kindDuration:
		return p.uints[fieldIndex[f]]
	}
	panic(fmt.Sprintf("controlparams: %s is not numeric", f))
}

// SetUint sets a numeric field. Duration fields take milliseconds.
func (p *Parameters) SetUint(f Field, v uint64) *Parameters {
	switch f.kind() {
	case kindUint, kindDuration:
	default:
		panic(fmt.Sprintf("controlparams: %s is not numeric", f))
	}
	p.uints[fieldIndex[f]] = v
	p.present |= p.bit(f)
	return p
}

// Text returns the value of a string field (Uri or LocalUri).
func (p *Parameters) Text(f Field) string {
	if f.kind() != kindString {
		panic(fmt.Sprintf("controlparams: %s is not a string", f))
	}
	return p.strings[fieldIndex[f]]
}

// SetText sets a string field.
func (p *Parameters) SetText(f Field, s string) *Parameters {
	if f.kind() != kindString {
		panic(fmt.Sprintf("controlparams: %s is not a string", f))
	}
	p.strings[fieldIndex[f]] = s
	p.present |= p.bit(f)
	return p
}

// FaceID, Cost, Origin and Flags are shorthands for Uint and SetUint.
func (p *Parameters) FaceID() uint64 {
	return p.Uint(FieldFaceID)
}

func (p *Parameters) SetFaceID(id uint64) *Parameters {
	return p.SetUint(FieldFaceID, id)
}

func (p *Parameters) Cost() uint64 {
	return p.Uint(FieldCost)
}

func (p *Parameters) SetCost(cost uint64) *Parameters {
	return p.SetUint(FieldCost, cost)
}

func (p *Parameters) Origin() uint64 {
	return p.Uint(FieldOrigin)
}

func (p *Parameters) SetOrigin(origin uint64) *Parameters {
	return p.SetUint(FieldOrigin, origin)
}

func (p *Parameters) Flags() uint64 {
	return p.Uint(FieldFlags)
}

func (p *Parameters) SetFlags(flags uint64) *Parameters {
	return p.SetUint(FieldFlags, flags)
}

// ExpirationPeriod returns the ExpirationPeriod field as a duration.
func (p *Parameters) ExpirationPeriod() time.Duration {
	return time.Duration(p.Uint(FieldExpirationPeriod)) * time.Millisecond
}

// SetExpirationPeriod sets ExpirationPeriod, truncated to milliseconds.
func (p *Parameters) SetExpirationPeriod(d time.Duration) *Parameters {
	return p.SetUint(FieldExpirationPeriod, uint64(d.Milliseconds()))
}

// Clone returns an independent copy.
func (p *Parameters) Clone() *Parameters {
	clone := *p
	return &clone
}

// Equal reports whether p and other have the same fields present with
// the same values.
func (p *Parameters) Equal(other *Parameters) bool {
	if p.present != other.present {
		return false
	}
	for _, f := range p.Fields() {
		switch f.kind() {
		case kindName:
			if !p.name.Equal(other.name) {
				return false
			}
		case kindStrategy:
			if !p.strategy.Equal(other.strategy) {
				return false
			}
		case kindString:
			if p.Text(f) != other.Text(f) {
				return false
			}
		default:
			if p.Uint(f) != other.Uint(f) {
				return false
			}
		}
	}
	return true
}

// EncodeValue returns the TLV-VALUE of the ControlParameters block.
func (p *Parameters) EncodeValue() []byte {
	var value []byte
	for _, f := range p.Fields() {
		switch f.kind() {
		case kindName:
			value = p.name.AppendTo(value)
		case kindStrategy:
			value = tlv.Append(value, uint64(f), p.strategy.Encode())
		case kindString:
			value = tlv.Append(value, uint64(f), []byte(p.Text(f)))
		default:
			value = tlv.AppendUint(value, uint64(f), p.Uint(f))
		}
	}
	return value
}

// Encode returns the ControlParameters TLV.
func (p *Parameters) Encode() []byte {
	return tlv.Encode(TypeControlParameters, p.EncodeValue())
}

// Decode decodes a ControlParameters TLV.
func Decode(wire []byte) (*Parameters, error) {
	block, err := tlv.DecodeExact(wire, TypeControlParameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return DecodeValue(block.Value)
}

// DecodeValue decodes the TLV-VALUE of a ControlParameters block.
func DecodeValue(value []byte) (*Parameters, error) {
	elements, err := tlv.Elements(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	p := New()
	last := -1
	for _, element := range elements {
		f := Field(element.Type)
		position, known := fieldIndex[f]
		if !known {
			if tlv.IsCritical(element.Type) {
				return nil, fmt.Errorf("%w: field %d", tlv.ErrUnrecognizedCritical, element.Type)
			}
			continue
		}
		if p.Has(f) {
			return nil, fmt.Errorf("%w: %s", ErrRepeatedField, f)
		}
		if position < last {
			return nil, fmt.Errorf("%w: %s", ErrFieldOutOfOrder, f)
		}
		last = position

		switch f.kind() {
		case kindName:
			n, err := name.FromBlock(element)
			if err != nil {
				return nil, fmt.Errorf("%w: Name: %v", ErrMalformed, err)
			}
			p.SetName(n)
		case kindStrategy:
			n, err := name.Decode(element.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: Strategy: %v", ErrMalformed, err)
			}
			p.SetStrategy(n)
		case kindString:
			p.SetText(f, string(element.Value))
		default:
			v, err := element.Uint()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, f, err)
			}
			p.SetUint(f, v)
		}
	}
	return p, nil
}

// String formats the present fields for logs.
func (p *Parameters) String() string {
	var b strings.Builder
	b.WriteString("ControlParameters(")
	for i, f := range p.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
		b.WriteString(": ")
		switch f.kind() {
		case kindName:
			b.WriteString(p.name.String())
		case kindStrategy:
			b.WriteString(p.strategy.String())
		case kindString:
			b.WriteString(p.Text(f))
		case kindDuration:
			b.WriteString((time.Duration(p.Uint(f)) * time.Millisecond).String())
		default:
			fmt.Fprintf(&b, "%d", p.Uint(f))
		}
	}
	b.WriteString(")")
	return b.String()
}
