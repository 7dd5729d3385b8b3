// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxPacketSize is the largest Interest or Data element the management
// plane sends or accepts, matching the NDN link-layer packet limit.
const MaxPacketSize = 8800

var (
	ErrTruncated            = errors.New("tlv: truncated element")
	ErrInvalidLength        = errors.New("tlv: invalid length")
	ErrUnexpectedType       = errors.New("tlv: unexpected type")
	ErrTrailingBytes        = errors.New("tlv: trailing bytes after element")
	ErrUnrecognizedCritical = errors.New("tlv: unrecognized critical element")
)

// Block is one TLV element. Wire holds the complete encoding (type,
// length and value) when the block was produced by a decoder; it is nil
// for blocks built in memory.
type Block struct {
	Type  uint64
	Value []byte
	Wire  []byte
}

// IsCritical reports whether an unrecognised element of this type must
// cause the enclosing element to be rejected.
func IsCritical(typ uint64) bool {
	return typ <= 31 || typ&1 == 1
}

// VarNumberSize returns the encoded size of n as a VAR-NUMBER.
func VarNumberSize(n uint64) int {
	switch {
	case n < 253:
		return 1
	case n <= 0xFFFF:
		return 3
	case n <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// AppendVarNumber appends n to dst as a VAR-NUMBER.
func AppendVarNumber(dst []byte, n uint64) []byte {
	switch {
	case n < 253:
		return append(dst, byte(n))
	case n <= 0xFFFF:
		dst = append(dst, 253)
		return binary.BigEndian.AppendUint16(dst, uint16(n))
	case n <= 0xFFFFFFFF:
		dst = append(dst, 254)
		return binary.BigEndian.AppendUint32(dst, uint32(n))
	default:
		dst = append(dst, 255)
		return binary.BigEndian.AppendUint64(dst, n)
	}
}

// ReadVarNumber decodes a VAR-NUMBER from the front of buf and returns
// the value and the number of bytes consumed.
func ReadVarNumber(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrTruncated
	}
	switch first := buf[0]; first {
	case 253:
		if len(buf) < 3 {
			return 0, 0, ErrTruncated
		}
		return uint64(binary.BigEndian.Uint16(buf[1:3])), 3, nil
	case 254:
		if len(buf) < 5 {
			return 0, 0, ErrTruncated
		}
		return uint64(binary.BigEndian.Uint32(buf[1:5])), 5, nil
	case 255:
		if len(buf) < 9 {
			return 0, 0, ErrTruncated
		}
		return binary.BigEndian.Uint64(buf[1:9]), 9, nil
	default:
		return uint64(first), 1, nil
	}
}

// NonNegativeInteger returns the shortest NonNegativeInteger encoding
// of n.
func NonNegativeInteger(n uint64) []byte {
	switch {
	case n <= 0xFF:
		return []byte{byte(n)}
	case n <= 0xFFFF:
		return binary.BigEndian.AppendUint16(nil, uint16(n))
	case n <= 0xFFFFFFFF:
		return binary.BigEndian.AppendUint32(nil, uint32(n))
	default:
		return binary.BigEndian.AppendUint64(nil, n)
	}
}

// DecodeNonNegativeInteger decodes a NonNegativeInteger value. Lengths
// other than 1, 2, 4 and 8 are rejected.
func DecodeNonNegativeInteger(value []byte) (uint64, error) {
	switch len(value) {
	case 1:
		return uint64(value[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(value)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(value)), nil
	case 8:
		return binary.BigEndian.Uint64(value), nil
	default:
		return 0, fmt.Errorf("%w: NonNegativeInteger of %d bytes", ErrInvalidLength, len(value))
	}
}

// Append appends the element (typ, value) to dst.
func Append(dst []byte, typ uint64, value []byte) []byte {
	dst = AppendVarNumber(dst, typ)
	dst = AppendVarNumber(dst, uint64(len(value)))
	return append(dst, value...)
}

// AppendUint appends an element whose value is the NonNegativeInteger
// encoding of n.
func AppendUint(dst []byte, typ uint64, n uint64) []byte {
	return Append(dst, typ, NonNegativeInteger(n))
}

// Encode returns the encoding of the element (typ, value).
func Encode(typ uint64, value []byte) []byte {
	return Append(make([]byte, 0, Size(typ, len(value))), typ, value)
}

// Size returns the encoded size of an element with the given type and
// value length.
func Size(typ uint64, valueLength int) int {
	return VarNumberSize(typ) + VarNumberSize(uint64(valueLength)) + valueLength
}

// Encode returns the wire encoding of b, reusing b.Wire when present.
func (b Block) Encode() []byte {
	if b.Wire != nil {
		return b.Wire
	}
	return Encode(b.Type, b.Value)
}

// Uint decodes the block's value as a NonNegativeInteger.
func (b Block) Uint() (uint64, error) {
	number, err := DecodeNonNegativeInteger(b.Value)
	if err != nil {
		return 0, fmt.Errorf("element %d: %w", b.Type, err)
	}
	return number, nil
}

// ReadBlock decodes one element from the front of buf. It returns the
// block and the number of bytes the element occupies. The returned
// Value and Wire alias buf.
func ReadBlock(buf []byte) (Block, int, error) {
	typ, typeSize, err := ReadVarNumber(buf)
	if err != nil {
		return Block{}, 0, err
	}
	length, lengthSize, err := ReadVarNumber(buf[typeSize:])
	if err != nil {
		return Block{}, 0, err
	}
	header := typeSize + lengthSize
	if length > uint64(len(buf)-header) {
		return Block{}, 0, fmt.Errorf("%w: element %d declares %d bytes, %d available",
			ErrTruncated, typ, length, len(buf)-header)
	}
	end := header + int(length)
	return Block{
		Type:  typ,
		Value: buf[header:end:end],
		Wire:  buf[:end:end],
	}, end, nil
}

// DecodeExact decodes buf as exactly one element of the expected type.
func DecodeExact(buf []byte, expected uint64) (Block, error) {
	block, n, err := ReadBlock(buf)
	if err != nil {
		return Block{}, err
	}
	if block.Type != expected {
		return Block{}, fmt.Errorf("%w: got %d, want %d", ErrUnexpectedType, block.Type, expected)
	}
	if n != len(buf) {
		return Block{}, fmt.Errorf("%w: %d bytes after element %d", ErrTrailingBytes, len(buf)-n, expected)
	}
	return block, nil
}

// Elements decodes value as a sequence of elements, as found inside a
// nested TLV.
func Elements(value []byte) ([]Block, error) {
	var blocks []Block
	for offset := 0; offset < len(value); {
		block, n, err := ReadBlock(value[offset:])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
		offset += n
	}
	return blocks, nil
}
