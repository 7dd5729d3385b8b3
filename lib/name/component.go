// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package name

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// Component types.
const (
	TypeImplicitSha256Digest   uint64 = 1
	TypeParametersSha256Digest uint64 = 2
	TypeGeneric                uint64 = 8
	TypeKeyword                uint64 = 32
	TypeSegment                uint64 = 50
	TypeByteOffset             uint64 = 52
	TypeVersion                uint64 = 54
	TypeTimestamp              uint64 = 56
	TypeSequenceNum            uint64 = 58
)

// digestSize is the required value length of both SHA-256 digest
// component types.
const digestSize = 32

var (
	ErrInvalidComponent = errors.New("name: invalid component")
	ErrNotNumber        = errors.New("name: component is not a number")
)

// Component is one name component. The zero value is not a valid
// component; use the constructors.
type Component struct {
	typ   uint64
	value []byte
}

// NewComponent returns a component of the given type. The value is
// copied.
func NewComponent(typ uint64, value []byte) Component {
	return Component{typ: typ, value: bytes.Clone(value)}
}

// Generic returns a GenericNameComponent holding value.
func Generic(value []byte) Component {
	return NewComponent(TypeGeneric, value)
}

// GenericString returns a GenericNameComponent holding the bytes of s.
func GenericString(s string) Component {
	return Component{typ: TypeGeneric, value: []byte(s)}
}

// Number returns a component of type typ whose value is the
// NonNegativeInteger encoding of n.
func Number(typ uint64, n uint64) Component {
	return Component{typ: typ, value: tlv.NonNegativeInteger(n)}
}

// Segment returns a SegmentNameComponent for segment n.
func Segment(n uint64) Component { return Number(TypeSegment, n) }

// Version returns a VersionNameComponent for version n.
func Version(n uint64) Component { return Number(TypeVersion, n) }

// ParametersDigest returns a ParametersSha256DigestComponent.
func ParametersDigest(digest []byte) Component {
	return NewComponent(TypeParametersSha256Digest, digest)
}

// Type returns the component's TLV-TYPE.
func (c Component) Type() uint64 { return c.typ }

// Value returns a copy of the component's value bytes.
func (c Component) Value() []byte { return bytes.Clone(c.value) }

// Len returns the length of the component's value.
func (c Component) Len() int { return len(c.value) }

// IsSegment reports whether c is a SegmentNameComponent.
func (c Component) IsSegment() bool { return c.typ == TypeSegment }

// IsVersion reports whether c is a VersionNameComponent.
func (c Component) IsVersion() bool { return c.typ == TypeVersion }

// IsParametersDigest reports whether c is a
// ParametersSha256DigestComponent.
func (c Component) IsParametersDigest() bool { return c.typ == TypeParametersSha256Digest }

// ToNumber decodes the value as a NonNegativeInteger, regardless of
// the component's type.
func (c Component) ToNumber() (uint64, error) {
	n, err := tlv.DecodeNonNegativeInteger(c.value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotNumber, err)
	}
	return n, nil
}

// ToSegment returns the segment number of a SegmentNameComponent.
func (c Component) ToSegment() (uint64, error) {
	if c.typ != TypeSegment {
		return 0, fmt.Errorf("%w: type %d is not a segment", ErrNotNumber, c.typ)
	}
	return c.ToNumber()
}

// Encode returns the component's TLV encoding.
func (c Component) Encode() []byte {
	return tlv.Encode(c.typ, c.value)
}

func (c Component) appendTo(dst []byte) []byte {
	return tlv.Append(dst, c.typ, c.value)
}

// Equal reports whether c and other have the same type and value.
func (c Component) Equal(other Component) bool {
	return c.typ == other.typ && bytes.Equal(c.value, other.value)
}

// Compare orders components canonically: by type, then by value
// length, then by value bytes.
func (c Component) Compare(other Component) int {
	switch {
	case c.typ < other.typ:
		return -1
	case c.typ > other.typ:
		return 1
	case len(c.value) < len(other.value):
		return -1
	case len(c.value) > len(other.value):
		return 1
	default:
		return bytes.Compare(c.value, other.value)
	}
}

// componentFromBlock validates a decoded component element.
func componentFromBlock(block tlv.Block) (Component, error) {
	if block.Type == 0 || block.Type > 0xFFFF {
		return Component{}, fmt.Errorf("%w: type %d out of range", ErrInvalidComponent, block.Type)
	}
	if (block.Type == TypeImplicitSha256Digest || block.Type == TypeParametersSha256Digest) &&
		len(block.Value) != digestSize {
		return Component{}, fmt.Errorf("%w: digest component of %d bytes", ErrInvalidComponent, len(block.Value))
	}
	return NewComponent(block.Type, block.Value), nil
}

// DecodeComponent decodes one component from its TLV encoding.
func DecodeComponent(wire []byte) (Component, error) {
	block, n, err := tlv.ReadBlock(wire)
	if err != nil {
		return Component{}, fmt.Errorf("%w: %v", ErrInvalidComponent, err)
	}
	if n != len(wire) {
		return Component{}, fmt.Errorf("%w: trailing bytes", ErrInvalidComponent)
	}
	return componentFromBlock(block)
}

// numberPrefixes maps URI shorthands to numeric component types.
var numberPrefixes = map[string]uint64{
	"seg": TypeSegment,
	"off": TypeByteOffset,
	"v":   TypeVersion,
	"t":   TypeTimestamp,
	"seq": TypeSequenceNum,
}

// String returns the URI representation of the component.
func (c Component) String() string {
	switch c.typ {
	case TypeGeneric:
		return escape(c.value)
	case TypeImplicitSha256Digest:
		return "sha256digest=" + hex.EncodeToString(c.value)
	case TypeParametersSha256Digest:
		return "params-sha256=" + hex.EncodeToString(c.value)
	}
	for prefix, typ := range numberPrefixes {
		if typ != c.typ {
			continue
		}
		if n, err := c.ToNumber(); err == nil {
			return prefix + "=" + strconv.FormatUint(n, 10)
		}
	}
	return strconv.FormatUint(c.typ, 10) + "=" + escape(c.value)
}

// ParseComponent parses one component in URI form.
func ParseComponent(s string) (Component, error) {
	prefix, rest, typed := strings.Cut(s, "=")
	if !typed {
		value, err := unescape(s)
		if err != nil {
			return Component{}, err
		}
		return Component{typ: TypeGeneric, value: value}, nil
	}

	switch prefix {
	case "sha256digest", "params-sha256":
		digest, err := hex.DecodeString(rest)
		if err != nil || len(digest) != digestSize {
			return Component{}, fmt.Errorf("%w: bad digest %q", ErrInvalidComponent, rest)
		}
		typ := TypeImplicitSha256Digest
		if prefix == "params-sha256" {
			typ = TypeParametersSha256Digest
		}
		return Component{typ: typ, value: digest}, nil
	}

	if typ, ok := numberPrefixes[prefix]; ok {
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return Component{}, fmt.Errorf("%w: %q is not a number", ErrInvalidComponent, rest)
		}
		return Number(typ, n), nil
	}

	typ, err := strconv.ParseUint(prefix, 10, 16)
	if err != nil || typ == 0 {
		// Not a typed component after all: '=' inside a generic value.
		value, err := unescape(s)
		if err != nil {
			return Component{}, err
		}
		return Component{typ: TypeGeneric, value: value}, nil
	}
	value, err := unescape(rest)
	if err != nil {
		return Component{}, err
	}
	return Component{typ: typ, value: value}, nil
}

func isUnreserved(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9' ||
		b == '-' || b == '.' || b == '_' || b == '~'
}

// escape percent-encodes a generic value. Values made only of periods
// gain three extra periods so that "." and ".." stay unambiguous.
func escape(value []byte) string {
	if len(bytes.Trim(value, ".")) == 0 {
		return "..." + string(value)
	}
	var builder strings.Builder
	for _, b := range value {
		if isUnreserved(b) {
			builder.WriteByte(b)
			continue
		}
		fmt.Fprintf(&builder, "%%%02X", b)
	}
	return builder.String()
}

func unescape(s string) ([]byte, error) {
	if len(strings.Trim(s, ".")) == 0 {
		if len(s) < 3 {
			return nil, fmt.Errorf("%w: %q is not a valid component", ErrInvalidComponent, s)
		}
		return []byte(s[3:]), nil
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			out = append(out, s[i])
			continue
		}
		if i+2 >= len(s) {
			return nil, fmt.Errorf("%w: truncated escape in %q", ErrInvalidComponent, s)
		}
		decoded, err := hex.DecodeString(s[i+1 : i+3])
		if err != nil {
			return nil, fmt.Errorf("%w: bad escape in %q", ErrInvalidComponent, s)
		}
		out = append(out, decoded[0])
		i += 2
	}
	return out, nil
}
