// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package name

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// TypeName is the TLV-TYPE of an encoded Name.
const TypeName uint64 = 7

// Name is an immutable sequence of components.
type Name struct {
	components []Component
}

// New returns a name made of the given components.
func New(components ...Component) Name {
	return Name{components: append([]Component(nil), components...)}
}

// Parse parses a name in URI form. An optional "ndn:" scheme is
// accepted; empty path segments are ignored.
func Parse(uri string) (Name, error) {
	uri = strings.TrimPrefix(uri, "ndn:")
	var components []Component
	for _, part := range strings.Split(uri, "/") {
		if part == "" {
			continue
		}
		component, err := ParseComponent(part)
		if err != nil {
			return Name{}, fmt.Errorf("parsing name %q: %w", uri, err)
		}
		components = append(components, component)
	}
	return Name{components: components}, nil
}

// MustParse is like Parse but panics on error. For constants and tests.
func MustParse(uri string) Name {
	n, err := Parse(uri)
	if err != nil {
		panic(err)
	}
	return n
}

// Len returns the number of components.
func (n Name) Len() int { return len(n.components) }

// IsEmpty reports whether n has no components (the root name "/").
func (n Name) IsEmpty() bool { return len(n.components) == 0 }

// At returns component i. Negative indexes count from the end: At(-1)
// is the last component. Panics if i is out of range.
func (n Name) At(i int) Component {
	if i < 0 {
		i += len(n.components)
	}
	return n.components[i]
}

// Components returns a copy of the component list.
func (n Name) Components() []Component {
	return append([]Component(nil), n.components...)
}

// Append returns n followed by the given components.
func (n Name) Append(components ...Component) Name {
	combined := make([]Component, 0, len(n.components)+len(components))
	combined = append(combined, n.components...)
	combined = append(combined, components...)
	return Name{components: combined}
}

// AppendString appends one generic component per argument.
func (n Name) AppendString(values ...string) Name {
	components := make([]Component, len(values))
	for i, value := range values {
		components[i] = GenericString(value)
	}
	return n.Append(components...)
}

// AppendName returns n followed by every component of suffix.
func (n Name) AppendName(suffix Name) Name {
	return n.Append(suffix.components...)
}

// Prefix returns the first count components. A negative count drops
// -count components from the end. Counts beyond the name's length are
// clamped.
func (n Name) Prefix(count int) Name {
	if count < 0 {
		count += len(n.components)
	}
	count = max(0, min(count, len(n.components)))
	return New(n.components[:count]...)
}

// Sub returns up to count components starting at start. A negative
// count means "through the end".
func (n Name) Sub(start, count int) Name {
	if start < 0 {
		start += len(n.components)
	}
	start = max(0, min(start, len(n.components)))
	end := len(n.components)
	if count >= 0 && start+count < end {
		end = start + count
	}
	return New(n.components[start:end]...)
}

// IsPrefixOf reports whether n is a prefix of (or equal to) other.
func (n Name) IsPrefixOf(other Name) bool {
	if len(n.components) > len(other.components) {
		return false
	}
	for i, component := range n.components {
		if !component.Equal(other.components[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether n and other have identical components.
func (n Name) Equal(other Name) bool {
	return len(n.components) == len(other.components) && n.IsPrefixOf(other)
}

// Compare orders names component by component in canonical order. A
// proper prefix sorts before any name it prefixes.
func (n Name) Compare(other Name) int {
	for i := 0; i < len(n.components) && i < len(other.components); i++ {
		if c := n.components[i].Compare(other.components[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n.components) < len(other.components):
		return -1
	case len(n.components) > len(other.components):
		return 1
	default:
		return 0
	}
}

// String returns the URI representation, "/" for the empty name.
func (n Name) String() string {
	if len(n.components) == 0 {
		return "/"
	}
	var builder strings.Builder
	for _, component := range n.components {
		builder.WriteByte('/')
		builder.WriteString(component.String())
	}
	return builder.String()
}

// EncodeValue returns the concatenated encodings of every component,
// the value of the Name element.
func (n Name) EncodeValue() []byte {
	var value []byte
	for _, component := range n.components {
		value = component.appendTo(value)
	}
	return value
}

// Encode returns the Name TLV.
func (n Name) Encode() []byte {
	return tlv.Encode(TypeName, n.EncodeValue())
}

// AppendTo appends the Name TLV to dst.
func (n Name) AppendTo(dst []byte) []byte {
	return tlv.Append(dst, TypeName, n.EncodeValue())
}

// Decode decodes a Name TLV.
func Decode(wire []byte) (Name, error) {
	block, err := tlv.DecodeExact(wire, TypeName)
	if err != nil {
		return Name{}, fmt.Errorf("decoding name: %w", err)
	}
	return FromBlock(block)
}

// FromBlock decodes an already-framed Name element.
func FromBlock(block tlv.Block) (Name, error) {
	if block.Type != TypeName {
		return Name{}, fmt.Errorf("decoding name: %w: got %d", tlv.ErrUnexpectedType, block.Type)
	}
	elements, err := tlv.Elements(block.Value)
	if err != nil {
		return Name{}, fmt.Errorf("decoding name: %w", err)
	}
	components := make([]Component, len(elements))
	for i, element := range elements {
		component, err := componentFromBlock(element)
		if err != nil {
			return Name{}, fmt.Errorf("decoding name component %d: %w", i, err)
		}
		components[i] = component
	}
	return Name{components: components}, nil
}

// MarshalText implements encoding.TextMarshaler so names serialize as
// URIs in YAML, JSON and CBOR.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
