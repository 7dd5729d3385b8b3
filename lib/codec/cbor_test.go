// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

type sampleRecord struct {
	Identity name.Name `cbor:"identity"`
	Label    string    `cbor:"label,omitempty"`
	Count    int       `cbor:"count"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Identity: name.MustParse("/localhost/operator"),
		Label:    "primary",
		Count:    42,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Identity.Equal(original.Identity) || decoded.Label != original.Label || decoded.Count != original.Count {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestNameEncodedAsText(t *testing.T) {
	data, err := Marshal(name.MustParse("/a/b"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// CBOR text string of length 4 (major type 3) followed by "/a/b".
	want := append([]byte{0x64}, "/a/b"...)
	if !bytes.Equal(data, want) {
		t.Errorf("Marshal(/a/b) = %x, want %x", data, want)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestUnmarshalRejectsDuplicateKeys(t *testing.T) {
	// {"count": 1, "count": 2}
	data := []byte{0xa2, 0x65, 'c', 'o', 'u', 'n', 't', 0x01, 0x65, 'c', 'o', 'u', 'n', 't', 0x02}
	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err == nil {
		t.Error("duplicate map key accepted")
	}
}

func TestUnmarshalRejectsOversizedMap(t *testing.T) {
	// A map of 17 integer pairs, one more than the decoder accepts.
	data := []byte{0xb1}
	for key := byte(0); key < 17; key++ {
		data = append(data, key, 0x00)
	}
	var decoded map[int]int
	if err := Unmarshal(data, &decoded); err == nil {
		t.Error("map with 17 pairs accepted")
	}
}
