// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

var target = name.MustParse("/localhost/nfd/fib/add-nexthop/request")

func patternBlock(length int) []byte {
	block := make([]byte, length)
	for i := range block {
		block[i] = byte(i % 251)
	}
	return block
}

func TestControlResponseRoundTrip(t *testing.T) {
	body := tlv.Encode(104, tlv.AppendUint(nil, 106, 10))
	original := OK(body)
	decoded, err := Decode(original.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.Equal(original) {
		t.Errorf("decoded %v, want %v", decoded, original)
	}

	bare, err := Decode(New(StatusUnknownCommand, TextUnknownCommand).Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if bare.Body != nil || bare.Code != 404 {
		t.Errorf("decoded %v", bare)
	}
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	missingText := tlv.Encode(TypeControlResponse, tlv.AppendUint(nil, TypeStatusCode, 200))
	missingCode := tlv.Encode(TypeControlResponse, tlv.Append(nil, TypeStatusText, []byte("OK")))
	for label, wire := range map[string][]byte{
		"missing text": missingText,
		"missing code": missingCode,
		"empty":        tlv.Encode(TypeControlResponse, nil),
		"wrong type":   tlv.Encode(6, nil),
	} {
		if _, err := Decode(wire); !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("%s: got %v, want ErrInvalidResponse", label, err)
		}
	}
}

func TestSegmentCounts(t *testing.T) {
	tests := []struct {
		length, payload, want int
	}{
		{0, 4400, 1},
		{1, 4400, 1},
		{4400, 4400, 1},
		{4401, 4400, 2},
		{10000, 4000, 3},
		{12000, 4000, 3},
		{12001, 4000, 4},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d/%d", test.length, test.payload), func(t *testing.T) {
			block := patternBlock(test.length)
			segments, err := Segment(target, block, Options{MaxPayload: test.payload})
			if err != nil {
				t.Fatalf("Segment: %v", err)
			}
			if len(segments) != test.want {
				t.Fatalf("got %d packets, want %d", len(segments), test.want)
			}
			joined, err := Concatenate(segments, 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(joined, block) {
				t.Error("concatenation does not reproduce the block")
			}
			for _, data := range segments {
				if len(data.Content) > test.payload {
					t.Errorf("%s carries %d bytes", data.Name, len(data.Content))
				}
				if err := security.VerifyData(data, nil); err != nil {
					t.Errorf("%s: %v", data.Name, err)
				}
			}
		})
	}
}

func TestSegmentNaming(t *testing.T) {
	single, err := Segment(target, []byte("small"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !single[0].Name.Equal(target) {
		t.Errorf("single packet named %s", single[0].Name)
	}
	if single[0].FinalBlockID == nil || !single[0].FinalBlockID.Equal(name.Segment(0)) {
		t.Error("single packet lacks FinalBlockId seg=0")
	}

	many, err := Segment(target, patternBlock(10000), Options{MaxPayload: 4000})
	if err != nil {
		t.Fatal(err)
	}
	for i, data := range many {
		if !data.Name.Equal(target.Append(name.Segment(uint64(i)))) {
			t.Errorf("packet %d named %s", i, data.Name)
		}
		if !data.FinalBlockID.Equal(name.Segment(2)) {
			t.Errorf("packet %d FinalBlockId %s", i, data.FinalBlockID)
		}
	}
	if !many[2].IsFinalBlock() || many[1].IsFinalBlock() {
		t.Error("IsFinalBlock wrong")
	}

	dataset, err := Segment(target, []byte("x"), Options{Segmented: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(dataset) != 1 || !dataset[0].Name.Equal(target.Append(name.Segment(0))) {
		t.Errorf("segmented single packet named %s", dataset[0].Name)
	}

	if _, err := Segment(name.Name{}, nil, Options{}); !errors.Is(err, ErrEmptyTarget) {
		t.Errorf("empty target: %v", err)
	}
}

func TestCheck(t *testing.T) {
	body := tlv.Append(nil, 200, []byte("body"))
	expected := OK(body)
	responses, err := Encode(target, expected, Options{})
	if err != nil {
		t.Fatal(err)
	}
	garbage := &packet.Data{Name: target, Content: []byte{1, 2, 3}}
	responses = append(responses, garbage)

	tests := []struct {
		label       string
		idx         int
		name        name.Name
		expected    ControlResponse
		contentType int
		options     CheckOptions
		want        CheckResult
	}{
		{"ok", 0, target, expected, AnyContentType, CheckOptions{}, CheckOK},
		{"ok with content type", 0, target, expected, int(packet.ContentTypeBlob), CheckOptions{}, CheckOK},
		{"beyond count", 2, target, expected, AnyContentType, CheckOptions{}, OutOfBoundary},
		{"negative", -1, target, expected, AnyContentType, CheckOptions{}, OutOfBoundary},
		{"name", 0, name.MustParse("/other"), expected, AnyContentType, CheckOptions{}, WrongName},
		{"content type", 0, target, expected, int(packet.ContentTypeNack), CheckOptions{}, WrongContentType},
		{"undecodable", 1, target, expected, AnyContentType, CheckOptions{}, InvalidResponse},
		{"code", 0, target, ControlResponse{Code: 400, Text: TextOK, Body: body}, AnyContentType, CheckOptions{}, WrongCode},
		{"text", 0, target, ControlResponse{Code: 200, Text: "fine", Body: body}, AnyContentType, CheckOptions{}, WrongText},
		{"text ignored", 0, target, ControlResponse{Code: 200, Body: body}, AnyContentType, CheckOptions{IgnoreText: true}, CheckOK},
		{"empty text not ignored", 0, target, ControlResponse{Code: 200, Body: body}, AnyContentType, CheckOptions{}, WrongText},
		{"body size", 0, target, OK(nil), AnyContentType, CheckOptions{}, WrongBodySize},
		{"body value", 0, target, OK(tlv.Append(nil, 200, []byte("BODY"))), AnyContentType, CheckOptions{}, WrongBodyValue},
		// Code is compared before text.
		{"first mismatch wins", 0, target, ControlResponse{Code: 500, Text: "other"}, AnyContentType, CheckOptions{}, WrongCode},
	}
	for _, test := range tests {
		got := Check(responses, test.idx, test.name, test.expected, test.contentType, test.options)
		if got != test.want {
			t.Errorf("%s: got %v, want %v", test.label, got, test.want)
		}
	}
}

func TestConcatenateRange(t *testing.T) {
	segments, err := Segment(target, patternBlock(10), Options{MaxPayload: 3})
	if err != nil {
		t.Fatal(err)
	}
	middle, err := Concatenate(segments, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(middle, patternBlock(10)[3:9]) {
		t.Errorf("Concatenate(1, 2) = %v", middle)
	}
	if _, err := Concatenate(segments, 4, 0); err == nil {
		t.Error("start beyond count accepted")
	}
	if _, err := Concatenate(segments, 2, 5); err == nil {
		t.Error("count beyond end accepted")
	}
}

func TestAssemble(t *testing.T) {
	block := patternBlock(10000)
	segments, err := Segment(target, block, Options{MaxPayload: 4000})
	if err != nil {
		t.Fatal(err)
	}
	verify := func(data *packet.Data) error { return security.VerifyData(data, nil) }

	shuffled := []*packet.Data{segments[2], segments[0], segments[1], segments[0]}
	got, err := Assemble(target, shuffled, verify)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !bytes.Equal(got, block) {
		t.Error("assembled block differs")
	}

	if _, err := Assemble(target, segments[:2], verify); !errors.Is(err, ErrMissingSegment) {
		t.Errorf("missing final: %v", err)
	}
	if _, err := Assemble(target, []*packet.Data{segments[0], segments[2]}, verify); !errors.Is(err, ErrMissingSegment) {
		t.Errorf("missing middle: %v", err)
	}
	if _, err := Assemble(name.MustParse("/elsewhere"), segments, verify); !errors.Is(err, ErrWrongName) {
		t.Errorf("wrong target: %v", err)
	}

	other, err := Segment(target, patternBlock(20000), Options{MaxPayload: 4000})
	if err != nil {
		t.Fatal(err)
	}
	mixed := []*packet.Data{segments[0], segments[1], other[2]}
	if _, err := Assemble(target, mixed, verify); !errors.Is(err, ErrInconsistentFinalBlock) {
		t.Errorf("mixed objects: %v", err)
	}

	tampered := *segments[1]
	tampered.Content = []byte("forged")
	if _, err := Assemble(target, []*packet.Data{segments[0], &tampered, segments[2]}, verify); err == nil {
		t.Error("tampered segment accepted")
	}

	single, err := Segment(target, []byte("one"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	got, err = Assemble(target, single, verify)
	if err != nil || string(got) != "one" {
		t.Errorf("single packet: %q, %v", got, err)
	}
}

type mapFetcher struct {
	packets  map[string]*packet.Data
	requests []string
}

func (f *mapFetcher) Fetch(_ context.Context, interest *packet.Interest) (*packet.Data, error) {
	f.requests = append(f.requests, interest.Name.String())
	if data, ok := f.packets[interest.Name.String()]; ok {
		return data, nil
	}
	if interest.CanBePrefix {
		for _, data := range f.packets {
			if interest.Name.IsPrefixOf(data.Name) && data.Name.At(-1).Equal(name.Segment(0)) {
				return data, nil
			}
		}
	}
	return nil, fmt.Errorf("no data for %s", interest.Name)
}

func TestFetchVersionedDataset(t *testing.T) {
	prefix := name.MustParse("/localhost/nfd/fib/list")
	versioned := prefix.Append(name.Version(1700000000000))
	block := patternBlock(9000)
	segments, err := Segment(versioned, block, Options{MaxPayload: 4000, Segmented: true})
	if err != nil {
		t.Fatal(err)
	}
	fetcher := &mapFetcher{packets: make(map[string]*packet.Data)}
	for _, data := range segments {
		fetcher.packets[data.Name.String()] = data
	}

	result, err := Fetch(context.Background(), fetcher, prefix, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !result.Name.Equal(versioned) {
		t.Errorf("Name = %s, want %s", result.Name, versioned)
	}
	if !bytes.Equal(result.Content, block) {
		t.Error("fetched content differs")
	}
	if len(fetcher.requests) != 3 {
		t.Errorf("requests = %v", fetcher.requests)
	}
}

func TestFetchUnsegmented(t *testing.T) {
	single, err := Segment(target, []byte("one"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	fetcher := &mapFetcher{packets: map[string]*packet.Data{target.String(): single[0]}}
	result, err := Fetch(context.Background(), fetcher, target, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(result.Content) != "one" {
		t.Errorf("Content = %q", result.Content)
	}
}
