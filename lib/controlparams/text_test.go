// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package controlparams

import (
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		label string
		want  Field
	}{
		{"Name", FieldName},
		{"face-id", FieldFaceID},
		{"faceid", FieldFaceID},
		{"expiration_period", FieldExpirationPeriod},
		{"STRATEGY", FieldStrategy},
		{"mtu", FieldMtu},
	}
	for _, test := range tests {
		got, err := ParseField(test.label)
		if err != nil || got != test.want {
			t.Errorf("ParseField(%q) = %v, %v; want %v", test.label, got, err, test.want)
		}
	}
	if _, err := ParseField("color"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("ParseField(color) error = %v", err)
	}
}

func TestParseAssignments(t *testing.T) {
	p, err := ParseAssignments([]string{
		"name=/example/app",
		"face-id=300",
		"cost=0x10",
		"expiration-period=1m30s",
		"strategy=/localhost/nfd/strategy/multicast",
		"uri=udp4://192.0.2.1:6363",
	})
	if err != nil {
		t.Fatalf("ParseAssignments: %v", err)
	}
	want := New().
		SetName(name.MustParse("/example/app")).
		SetFaceID(300).
		SetCost(16).
		SetExpirationPeriod(90*time.Second).
		SetStrategy(name.MustParse("/localhost/nfd/strategy/multicast")).
		SetText(FieldURI, "udp4://192.0.2.1:6363")
	if !p.Equal(want) {
		t.Fatalf("parsed %v, want %v", p, want)
	}

	p, err = ParseAssignments([]string{"expiration-period=2500"})
	if err != nil {
		t.Fatal(err)
	}
	if p.ExpirationPeriod() != 2500*time.Millisecond {
		t.Errorf("plain milliseconds parsed as %v", p.ExpirationPeriod())
	}
}

func TestParseAssignmentsReportsEveryError(t *testing.T) {
	_, err := ParseAssignments([]string{"cost=cheap", "nonsense", "color=blue"})
	if err == nil {
		t.Fatal("ParseAssignments accepted bad input")
	}
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("error %v does not wrap ErrUnknownField", err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 3 {
		t.Errorf("error = %v, want three joined problems", err)
	}
}
