// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package packet

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

func TestInterestRoundTrip(t *testing.T) {
	signatureTime := uint64(1700000000000)
	hopLimit := uint8(8)
	original := &Interest{
		Name:                  name.MustParse("/localhost/nfd/rib/announce"),
		CanBePrefix:           true,
		MustBeFresh:           true,
		Nonce:                 []byte{1, 2, 3, 4},
		Lifetime:              2 * time.Second,
		HopLimit:              &hopLimit,
		ApplicationParameters: []byte("payload"),
		SignatureInfo: &SignatureInfo{
			Type:       SignatureEd25519,
			KeyLocator: name.MustParse("/operator/KEY/k1"),
			Nonce:      []byte{9, 9, 9, 9, 9, 9, 9, 9},
			Time:       &signatureTime,
		},
		SignatureValue: bytes.Repeat([]byte{0x5A}, 64),
	}

	decoded, err := DecodeInterest(original.Encode())
	if err != nil {
		t.Fatalf("DecodeInterest: %v", err)
	}
	if !decoded.Name.Equal(original.Name) {
		t.Errorf("Name = %s", decoded.Name)
	}
	if !decoded.CanBePrefix || !decoded.MustBeFresh {
		t.Error("selectors lost")
	}
	if !bytes.Equal(decoded.Nonce, original.Nonce) || decoded.Lifetime != original.Lifetime {
		t.Errorf("Nonce/Lifetime = %x/%v", decoded.Nonce, decoded.Lifetime)
	}
	if decoded.HopLimit == nil || *decoded.HopLimit != 8 {
		t.Error("HopLimit lost")
	}
	if string(decoded.ApplicationParameters) != "payload" {
		t.Errorf("ApplicationParameters = %q", decoded.ApplicationParameters)
	}
	info := decoded.SignatureInfo
	if info == nil || info.Type != SignatureEd25519 || !info.KeyLocator.Equal(original.SignatureInfo.KeyLocator) {
		t.Fatalf("SignatureInfo = %+v", info)
	}
	if info.Time == nil || *info.Time != signatureTime || !bytes.Equal(info.Nonce, original.SignatureInfo.Nonce) {
		t.Errorf("SignatureInfo replay fields = %+v", info)
	}
	if !bytes.Equal(decoded.Encode(), original.Encode()) {
		t.Error("re-encoding differs")
	}
}

func TestInterestEmptyParametersPresent(t *testing.T) {
	interest := &Interest{Name: name.MustParse("/a"), ApplicationParameters: []byte{}}
	decoded, err := DecodeInterest(interest.Encode())
	if err != nil {
		t.Fatalf("DecodeInterest: %v", err)
	}
	if !decoded.HasParameters() || len(decoded.ApplicationParameters) != 0 {
		t.Errorf("empty ApplicationParameters not preserved: %v", decoded.ApplicationParameters)
	}

	bare, err := DecodeInterest((&Interest{Name: name.MustParse("/a")}).Encode())
	if err != nil {
		t.Fatalf("DecodeInterest: %v", err)
	}
	if bare.HasParameters() {
		t.Error("absent ApplicationParameters decoded as present")
	}
}

func TestDecodeInterestRejects(t *testing.T) {
	validName := name.MustParse("/a").Encode()
	tests := map[string][]byte{
		"not an interest": tlv.Encode(TypeData, validName),
		"missing name":    tlv.Encode(TypeInterest, tlv.Append(nil, TypeNonce, []byte{1, 2, 3, 4})),
		"short nonce":     tlv.Encode(TypeInterest, tlv.Append(validName, TypeNonce, []byte{1})),
		"critical unknown": tlv.Encode(TypeInterest,
			tlv.Append(validName, 31, nil)),
		"repeated nonce": tlv.Encode(TypeInterest,
			tlv.Append(tlv.Append(validName, TypeNonce, []byte{1, 2, 3, 4}), TypeNonce, []byte{1, 2, 3, 4})),
		"truncated": validName[:2],
	}
	for label, wire := range tests {
		if _, err := DecodeInterest(wire); err == nil {
			t.Errorf("%s: decoded without error", label)
		}
	}

	// Non-critical unknown elements are skipped.
	skippable := tlv.Encode(TypeInterest, tlv.Append(validName, 200, []byte("x")))
	if _, err := DecodeInterest(skippable); err != nil {
		t.Errorf("non-critical element rejected: %v", err)
	}
}

func TestDataRoundTrip(t *testing.T) {
	final := name.Segment(2)
	original := &Data{
		Name:          name.MustParse("/localhost/nfd/fib/list").Append(name.Version(7), name.Segment(2)),
		ContentType:   ContentTypeNack,
		Freshness:     time.Second,
		FinalBlockID:  &final,
		Content:       []byte("content"),
		SignatureInfo: SignatureInfo{Type: SignatureDigestSha256},
		SignatureValue: bytes.Repeat([]byte{1}, 32),
	}
	decoded, err := DecodeData(original.Encode())
	if err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if !decoded.Name.Equal(original.Name) || decoded.ContentType != ContentTypeNack || decoded.Freshness != time.Second {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.FinalBlockID == nil || !decoded.FinalBlockID.Equal(final) {
		t.Error("FinalBlockID lost")
	}
	if !decoded.IsFinalBlock() {
		t.Error("IsFinalBlock = false for last segment")
	}
	if !bytes.Equal(decoded.SignedPortion(), original.SignedPortion()) {
		t.Error("signed portion changed across round trip")
	}
}

func TestDataBlobContentTypeOmitted(t *testing.T) {
	data := &Data{Name: name.MustParse("/a"), SignatureValue: []byte{}}
	decoded, err := DecodeData(data.Encode())
	if err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if decoded.ContentType != ContentTypeBlob {
		t.Errorf("ContentType = %d", decoded.ContentType)
	}
	if decoded.IsFinalBlock() {
		t.Error("IsFinalBlock without FinalBlockID")
	}
}

func TestDecodeDataRequiresSignature(t *testing.T) {
	unsigned := tlv.Encode(TypeData, name.MustParse("/a").Encode())
	if _, err := DecodeData(unsigned); !errors.Is(err, ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestDecodeSignatureInfoRejectsRepeatedType(t *testing.T) {
	value := tlv.AppendUint(nil, TypeSignatureType, 0)
	value = tlv.AppendUint(value, TypeSignatureType, 5)
	block, _, err := tlv.ReadBlock(tlv.Encode(TypeSignatureInfo, value))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeSignatureInfo(block); !errors.Is(err, ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestPacketSizeLimit(t *testing.T) {
	oversized := (&Interest{
		Name:                  name.MustParse("/a"),
		ApplicationParameters: make([]byte, tlv.MaxPacketSize),
	}).Encode()
	if _, err := DecodeInterest(oversized); !errors.Is(err, ErrTooLarge) {
		t.Errorf("got %v, want ErrTooLarge", err)
	}
}
