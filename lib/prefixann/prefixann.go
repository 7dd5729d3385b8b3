// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package prefixann encodes and decodes prefix announcements: signed
// Data packets, named <prefix>/32=PA/<version>/<segment 0>, that ask a
// forwarder to route <prefix> toward the announcer for a limited time.
package prefixann

import (
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// Content element types.
const (
	TypeExpirationPeriod = 109
	TypeValidityPeriod   = 253
	TypeNotBefore        = 254
	TypeNotAfter         = 255
)

const timestampLayout = "20060102T150405"

var (
	ErrMalformed   = errors.New("prefixann: malformed prefix announcement")
	ErrEmptyPrefix = errors.New("prefixann: announced prefix is empty")
)

// keyword marks a prefix announcement name.
var keyword = name.NewComponent(name.TypeKeyword, []byte("PA"))

// ValidityPeriod bounds when an announcement may be honored.
type ValidityPeriod struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// Contains reports whether t falls inside the period, inclusive.
func (v ValidityPeriod) Contains(t time.Time) bool {
	return !t.Before(v.NotBefore) && !t.After(v.NotAfter)
}

// Announcement is a decoded prefix announcement.
type Announcement struct {
	Prefix     name.Name
	Version    uint64
	Expiration time.Duration
	Validity   *ValidityPeriod
}

// DataName returns the name of the announcement Data packet.
func (a *Announcement) DataName() name.Name {
	return a.Prefix.Append(keyword, name.Version(a.Version), name.Segment(0))
}

// Data returns the unsigned announcement packet.
func (a *Announcement) Data() (*packet.Data, error) {
	if a.Prefix.IsEmpty() {
		return nil, ErrEmptyPrefix
	}
	if a.Expiration < 0 {
		return nil, fmt.Errorf("%w: negative expiration %v", ErrMalformed, a.Expiration)
	}
	content := tlv.AppendUint(nil, TypeExpirationPeriod, uint64(a.Expiration.Milliseconds()))
	if a.Validity != nil {
		var validity []byte
		validity = tlv.Append(validity, TypeNotBefore, []byte(a.Validity.NotBefore.UTC().Format(timestampLayout)))
		validity = tlv.Append(validity, TypeNotAfter, []byte(a.Validity.NotAfter.UTC().Format(timestampLayout)))
		content = tlv.Append(content, TypeValidityPeriod, validity)
	}
	return &packet.Data{
		Name:        a.DataName(),
		ContentType: packet.ContentTypePrefixAnn,
		Content:     content,
	}, nil
}

// Encode returns the announcement Data signed by signer.
func (a *Announcement) Encode(signer security.Signer) ([]byte, error) {
	data, err := a.Data()
	if err != nil {
		return nil, err
	}
	if err := security.SignData(data, signer); err != nil {
		return nil, err
	}
	return data.Encode(), nil
}

// Decode parses an encoded announcement Data packet. The signature is
// not checked; see [Verify].
func Decode(wire []byte) (*Announcement, *packet.Data, error) {
	data, err := packet.DecodeData(wire)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	announcement, err := FromData(data)
	if err != nil {
		return nil, nil, err
	}
	return announcement, data, nil
}

// FromData extracts the announcement carried by data.
func FromData(data *packet.Data) (*Announcement, error) {
	if data.ContentType != packet.ContentTypePrefixAnn {
		return nil, fmt.Errorf("%w: content type %d", ErrMalformed, data.ContentType)
	}
	n := data.Name
	if n.Len() < 4 || !n.At(-3).Equal(keyword) || !n.At(-2).IsVersion() || !n.At(-1).IsSegment() {
		return nil, fmt.Errorf("%w: name %s", ErrMalformed, n)
	}
	version, err := n.At(-2).ToNumber()
	if err != nil {
		return nil, fmt.Errorf("%w: version: %v", ErrMalformed, err)
	}

	announcement := &Announcement{Prefix: n.Prefix(-3), Version: version}
	elements, err := tlv.Elements(data.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var haveExpiration bool
	for _, element := range elements {
		switch element.Type {
		case TypeExpirationPeriod:
			ms, err := element.Uint()
			if err != nil {
				return nil, fmt.Errorf("%w: ExpirationPeriod: %v", ErrMalformed, err)
			}
			announcement.Expiration = time.Duration(ms) * time.Millisecond
			haveExpiration = true
		case TypeValidityPeriod:
			validity, err := decodeValidity(element.Value)
			if err != nil {
				return nil, err
			}
			announcement.Validity = validity
		default:
			if tlv.IsCritical(element.Type) {
				return nil, fmt.Errorf("%w: content element %d", tlv.ErrUnrecognizedCritical, element.Type)
			}
		}
	}
	if !haveExpiration {
		return nil, fmt.Errorf("%w: missing ExpirationPeriod", ErrMalformed)
	}
	return announcement, nil
}

func decodeValidity(value []byte) (*ValidityPeriod, error) {
	elements, err := tlv.Elements(value)
	if err != nil || len(elements) != 2 || elements[0].Type != TypeNotBefore || elements[1].Type != TypeNotAfter {
		return nil, fmt.Errorf("%w: ValidityPeriod", ErrMalformed)
	}
	notBefore, err := time.Parse(timestampLayout, string(elements[0].Value))
	if err != nil {
		return nil, fmt.Errorf("%w: NotBefore: %v", ErrMalformed, err)
	}
	notAfter, err := time.Parse(timestampLayout, string(elements[1].Value))
	if err != nil {
		return nil, fmt.Errorf("%w: NotAfter: %v", ErrMalformed, err)
	}
	return &ValidityPeriod{NotBefore: notBefore, NotAfter: notAfter}, nil
}

// Verify checks the announcement's signature. DigestSha256
// announcements need no resolver.
func Verify(data *packet.Data, resolver security.KeyResolver) error {
	return security.VerifyData(data, resolver)
}

// RouteLifetime returns how long a route installed from the
// announcement should live at now: the expiration period, shortened to
// the end of the validity period when that comes first. A zero result
// means the announcement must not be honored.
func (a *Announcement) RouteLifetime(now time.Time) time.Duration {
	lifetime := a.Expiration
	if a.Validity != nil {
		if !a.Validity.Contains(now) {
			return 0
		}
		lifetime = min(lifetime, a.Validity.NotAfter.Sub(now))
	}
	return max(lifetime, 0)
}
