// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
)

var (
	epoch       = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	operator    = name.MustParse("/localhost/operator")
	addNexthop  = name.MustParse("/localhost/nfd/fib/add-nexthop")
	ribAnnounce = name.MustParse("/localhost/nfd/rib/announce")
)

type fixture struct {
	clock    *clock.FakeClock
	keyChain *security.KeyChain
	key      *security.Key
	builder  *Builder
}

func newFixture(t *testing.T, algorithm security.Algorithm) *fixture {
	t.Helper()
	key, err := security.GenerateKey(operator, algorithm)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	keyChain := security.NewKeyChain()
	keyChain.AddKey(key)
	fakeClock := clock.Fake(epoch)
	return &fixture{
		clock:    fakeClock,
		keyChain: keyChain,
		key:      key,
		builder:  NewBuilder(keyChain, fakeClock),
	}
}

func (f *fixture) verifier(t *testing.T) *Verifier {
	t.Helper()
	replay, err := NewReplayChecker(f.clock, ReplayOptions{})
	if err != nil {
		t.Fatalf("NewReplayChecker: %v", err)
	}
	return NewVerifier(f.keyChain, replay)
}

func sampleParameters() *controlparams.Parameters {
	return controlparams.New().SetName(name.MustParse("/example")).SetFaceID(300).SetCost(10)
}

func TestRoundTrip(t *testing.T) {
	for _, algorithm := range []security.Algorithm{security.Ed25519, security.ECDSAP256} {
		for _, format := range []Format{FormatA, FormatB} {
			t.Run(string(algorithm)+"/"+format.String(), func(t *testing.T) {
				f := newFixture(t, algorithm)
				params := sampleParameters()
				interest, err := f.builder.MakeCommand(addNexthop, params, format, operator)
				if err != nil {
					t.Fatalf("MakeCommand: %v", err)
				}

				// Through the wire, as the dispatcher sees it.
				verified, err := f.verifier(t).VerifyWire(interest.Encode())
				if err != nil {
					t.Fatalf("VerifyWire: %v", err)
				}
				if !verified.Identity.Equal(operator) {
					t.Errorf("Identity = %s", verified.Identity)
				}
				if !verified.CommandName.Equal(addNexthop) {
					t.Errorf("CommandName = %s", verified.CommandName)
				}
				if verified.Format != format {
					t.Errorf("Format = %v", verified.Format)
				}
				if !verified.Timestamp.Equal(epoch) {
					t.Errorf("Timestamp = %v", verified.Timestamp)
				}
				decoded, err := verified.DecodeParameters()
				if err != nil {
					t.Fatalf("DecodeParameters: %v", err)
				}
				if !decoded.Equal(params) {
					t.Errorf("parameters = %s, want %s", decoded, params)
				}
			})
		}
	}
}

func TestFormatLayout(t *testing.T) {
	f := newFixture(t, security.Ed25519)

	legacy, err := f.builder.MakeCommand(addNexthop, sampleParameters(), FormatA, operator)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := legacy.Name.Len(), addNexthop.Len()+1+legacySuffixLength; got != want {
		t.Errorf("Format A name has %d components, want %d", got, want)
	}
	if legacy.SignatureInfo != nil || legacy.ApplicationParameters != nil {
		t.Error("Format A carries detached signature elements")
	}

	current, err := f.builder.MakeCommand(addNexthop, sampleParameters(), FormatB, operator)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := current.Name.Len(), addNexthop.Len()+2; got != want {
		t.Errorf("Format B name has %d components, want %d", got, want)
	}
	if !current.Name.At(-1).IsParametersDigest() {
		t.Error("Format B name does not end with ParametersSha256Digest")
	}
	info := current.SignatureInfo
	if info == nil || len(info.Nonce) != NonceSize || info.Time == nil {
		t.Fatalf("InterestSignatureInfo = %+v", info)
	}
	if !current.HasParameters() || len(current.ApplicationParameters) != 0 {
		t.Error("Format B command should carry empty ApplicationParameters")
	}
}

func TestBuilderRejects(t *testing.T) {
	f := newFixture(t, security.Ed25519)

	if _, err := f.builder.MakeCommand(name.Name{}, nil, FormatB, operator); !errors.Is(err, ErrEmptyCommandName) {
		t.Errorf("empty name: %v", err)
	}
	if _, err := f.builder.MakeCommand(addNexthop, nil, Format(9), operator); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown format: %v", err)
	}

	_, err := f.builder.MakeCommand(addNexthop, nil, FormatB, name.MustParse("/nobody"))
	var signingErr *SigningError
	if !errors.As(err, &signingErr) || !errors.Is(err, security.ErrNoKey) {
		t.Errorf("missing key: got %v, want SigningError wrapping ErrNoKey", err)
	}
}

func TestAnnounceRequiresFormatB(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	announcement := []byte("announcement bytes")

	interest, err := f.builder.MakeAnnounceCommand(ribAnnounce, announcement, FormatA, operator)
	if !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("Format A announcement: got %v, want ErrFormatMismatch", err)
	}
	if interest != nil {
		t.Error("packet produced despite format mismatch")
	}

	interest, err = f.builder.MakeAnnounce(ribAnnounce, announcement, operator)
	if err != nil {
		t.Fatalf("MakeAnnounce: %v", err)
	}
	verified, err := f.verifier(t).Verify(interest)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if string(verified.ApplicationParameters) != string(announcement) {
		t.Errorf("ApplicationParameters = %q", verified.ApplicationParameters)
	}
	if !verified.CommandName.Equal(ribAnnounce) || verified.Parameters != nil {
		t.Errorf("CommandName = %s, Parameters = %x", verified.CommandName, verified.Parameters)
	}
}

func TestTimestampsStrictlyIncrease(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	verifier := f.verifier(t)
	var last time.Time
	for i := range 5 {
		interest, err := f.builder.MakeCommand(addNexthop, nil, FormatB, operator)
		if err != nil {
			t.Fatal(err)
		}
		verified, err := verifier.Verify(interest)
		if err != nil {
			t.Fatalf("command %d rejected with the clock standing still: %v", i, err)
		}
		if !verified.Timestamp.After(last) {
			t.Errorf("command %d timestamp %v not after %v", i, verified.Timestamp, last)
		}
		last = verified.Timestamp
	}
}

func tamperLegacySignature(t *testing.T, interest *packet.Interest) *packet.Interest {
	t.Helper()
	value := interest.Name.At(-1).Value()
	value[len(value)-1] ^= 0x01
	tampered := *interest
	tampered.Name = interest.Name.Prefix(-1).Append(name.Generic(value))
	return &tampered
}

func TestTamperedSignature(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	verifier := f.verifier(t)

	legacy, err := f.builder.MakeCommand(addNexthop, sampleParameters(), FormatA, operator)
	if err != nil {
		t.Fatal(err)
	}
	_, err = verifier.Verify(tamperLegacySignature(t, legacy))
	if KindOf(err) != SignatureInvalid || !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Format A tampered: got %v, want SignatureInvalid", err)
	}

	current, err := f.builder.MakeCommand(addNexthop, sampleParameters(), FormatB, operator)
	if err != nil {
		t.Fatal(err)
	}
	current.SignatureValue[0] ^= 0x01
	if _, err := verifier.Verify(current); KindOf(err) != SignatureInvalid {
		t.Errorf("Format B tampered: got %v, want SignatureInvalid", err)
	}
}

func TestTamperedParameters(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	interest, err := f.builder.MakeCommand(addNexthop, sampleParameters(), FormatA, operator)
	if err != nil {
		t.Fatal(err)
	}
	components := interest.Name.Components()
	parameterIndex := addNexthop.Len()
	components[parameterIndex] = name.Generic(controlparams.New().SetName(name.MustParse("/other")).Encode())
	interest.Name = name.New(components...)
	if _, err := f.verifier(t).Verify(interest); KindOf(err) != SignatureInvalid {
		t.Errorf("got %v, want SignatureInvalid", err)
	}
}

func TestUnknownSigner(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	interest, err := f.builder.MakeCommand(addNexthop, nil, FormatB, operator)
	if err != nil {
		t.Fatal(err)
	}
	stranger := NewVerifier(security.NewKeyChain(), nil)
	if _, err := stranger.Verify(interest); KindOf(err) != UnknownSigner || !errors.Is(err, security.ErrUnknownKey) {
		t.Errorf("got %v, want UnknownSigner wrapping ErrUnknownKey", err)
	}
}

func TestLegacyWithApplicationParametersIsFormatMismatch(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	interest, err := f.builder.MakeCommand(addNexthop, nil, FormatA, operator)
	if err != nil {
		t.Fatal(err)
	}
	interest.ApplicationParameters = []byte("smuggled")
	if _, err := f.verifier(t).Verify(interest); KindOf(err) != FormatMismatch {
		t.Errorf("got %v, want FormatMismatch", err)
	}
}

func TestMalformedRequests(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	verifier := f.verifier(t)

	unsigned := &packet.Interest{Name: addNexthop.Append(name.Generic(controlparams.New().Encode()))}
	if _, err := verifier.Verify(unsigned); KindOf(err) != MalformedRequest {
		t.Errorf("unsigned: got %v", err)
	}
	if _, err := verifier.VerifyWire([]byte{0x05, 0x10, 0x07}); KindOf(err) != MalformedRequest {
		t.Errorf("truncated wire: got %v", err)
	}

	current, err := f.builder.MakeCommand(addNexthop, nil, FormatB, operator)
	if err != nil {
		t.Fatal(err)
	}
	current.Name = current.Name.Prefix(-1)
	if _, err := verifier.Verify(current); KindOf(err) != MalformedRequest {
		t.Errorf("missing digest: got %v", err)
	}
}

func TestReplayRejected(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	verifier := f.verifier(t)
	interest, err := f.builder.MakeCommand(addNexthop, nil, FormatA, operator)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Verify(interest); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if _, err := verifier.Verify(interest); KindOf(err) != Replay || !errors.Is(err, ErrReplay) {
		t.Errorf("second delivery: got %v, want Replay", err)
	}
}

func TestStaleTimestampRejected(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	interest, err := f.builder.MakeCommand(addNexthop, nil, FormatB, operator)
	if err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(DefaultGracePeriod + time.Second)
	if _, err := f.verifier(t).Verify(interest); KindOf(err) != Replay {
		t.Errorf("got %v, want Replay", err)
	}
}

func TestReplayRecordCommittedOnlyAfterSignature(t *testing.T) {
	f := newFixture(t, security.Ed25519)
	verifier := f.verifier(t)
	interest, err := f.builder.MakeCommand(addNexthop, nil, FormatA, operator)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Verify(tamperLegacySignature(t, interest)); KindOf(err) != SignatureInvalid {
		t.Fatalf("tampered: %v", err)
	}
	if _, err := verifier.Verify(interest); err != nil {
		t.Errorf("genuine request rejected after a forged copy: %v", err)
	}
}

func TestReplayCheckerRecords(t *testing.T) {
	fakeClock := clock.Fake(epoch)
	checker, err := NewReplayChecker(fakeClock, ReplayOptions{MaxRecords: 2, RecordLifetime: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	now := uint64(epoch.UnixMilli())
	keys := []name.Name{name.MustParse("/a/KEY/1"), name.MustParse("/b/KEY/1"), name.MustParse("/c/KEY/1")}
	for _, key := range keys {
		if err := checker.Accept(key, now); err != nil {
			t.Fatalf("Accept(%s): %v", key, err)
		}
	}
	if checker.Len() != 2 {
		t.Errorf("Len = %d, want 2", checker.Len())
	}
	// /a was evicted, so its old timestamp is judged by grace period only.
	if err := checker.Accept(keys[0], now); err != nil {
		t.Errorf("evicted key: %v", err)
	}
	if err := checker.Accept(keys[0], now); KindOf(err) != Replay {
		t.Errorf("repeat: %v", err)
	}

	// Records older than their lifetime no longer bind.
	fakeClock.Advance(time.Minute + time.Second)
	if err := checker.Accept(keys[0], now+1); err != nil {
		t.Errorf("after record lifetime: %v", err)
	}
	if err := checker.Accept(keys[0], 0); KindOf(err) != Replay {
		t.Errorf("missing timestamp: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{"a": FormatA, "V0.2": FormatA, "b": FormatB, "v0.3": FormatB} {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParseFormat("c"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(c) = %v", err)
	}
}
