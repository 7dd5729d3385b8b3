// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prefixann

import (
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
)

func TestEncodeDecode(t *testing.T) {
	key, err := security.GenerateKey(name.MustParse("/announcer"), security.Ed25519)
	if err != nil {
		t.Fatal(err)
	}
	original := &Announcement{
		Prefix:     name.MustParse("/example/app"),
		Version:    3,
		Expiration: 10 * time.Minute,
		Validity: &ValidityPeriod{
			NotBefore: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			NotAfter:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	wire, err := original.Encode(key)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, data, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.Prefix.Equal(original.Prefix) || decoded.Version != 3 || decoded.Expiration != original.Expiration {
		t.Errorf("decoded %+v", decoded)
	}
	if decoded.Validity == nil || !decoded.Validity.NotAfter.Equal(original.Validity.NotAfter) {
		t.Errorf("validity = %+v", decoded.Validity)
	}
	if data.ContentType != packet.ContentTypePrefixAnn {
		t.Errorf("ContentType = %d", data.ContentType)
	}

	chain := security.NewKeyChain()
	chain.AddKey(key.PublicOnly())
	if err := Verify(data, chain); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestDataName(t *testing.T) {
	announcement := &Announcement{Prefix: name.MustParse("/p"), Version: 1, Expiration: time.Second}
	got := announcement.DataName()
	if got.Len() != 4 || got.At(1).Type() != name.TypeKeyword || !got.At(-1).IsSegment() {
		t.Errorf("DataName = %s", got)
	}
}

func TestEmptyPrefixRejected(t *testing.T) {
	if _, err := (&Announcement{Expiration: time.Second}).Encode(security.DigestSigner{}); !errors.Is(err, ErrEmptyPrefix) {
		t.Errorf("got %v, want ErrEmptyPrefix", err)
	}
}

func TestDecodeRejectsOrdinaryData(t *testing.T) {
	data := &packet.Data{Name: name.MustParse("/not/an/announcement"), Content: []byte{}}
	if err := security.SignData(data, security.DigestSigner{}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Decode(data.Encode()); !errors.Is(err, ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestRouteLifetime(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	announcement := &Announcement{Prefix: name.MustParse("/p"), Expiration: time.Hour}
	if got := announcement.RouteLifetime(now); got != time.Hour {
		t.Errorf("no validity: %v", got)
	}

	announcement.Validity = &ValidityPeriod{NotBefore: now.Add(-time.Hour), NotAfter: now.Add(10 * time.Minute)}
	if got := announcement.RouteLifetime(now); got != 10*time.Minute {
		t.Errorf("validity ends first: %v", got)
	}

	announcement.Validity = &ValidityPeriod{NotBefore: now.Add(time.Hour), NotAfter: now.Add(2 * time.Hour)}
	if got := announcement.RouteLifetime(now); got != 0 {
		t.Errorf("not yet valid: %v", got)
	}
}
