// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// NonceSize is the length of the Format A nonce component and of the
// Format B SignatureNonce.
const NonceSize = 8

// KeyStore supplies the default signing key of an identity.
// *security.KeyChain satisfies it.
type KeyStore interface {
	DefaultKey(identity name.Name) (*security.Key, error)
}

// Builder produces signed command Interests. Timestamps are strictly
// increasing across every command one Builder produces. A Builder is
// safe for concurrent use.
type Builder struct {
	keys   KeyStore
	clock  clock.Clock
	random io.Reader

	mu            sync.Mutex
	lastTimestamp uint64
}

// NewBuilder returns a Builder signing with keys from store.
func NewBuilder(store KeyStore, clk clock.Clock) *Builder {
	return &Builder{keys: store, clock: clk, random: rand.Reader}
}

// MakeCommand returns commandName/<params> signed by identity in the
// given format. A nil params encodes as an empty ControlParameters.
func (b *Builder) MakeCommand(commandName name.Name, params *controlparams.Parameters, format Format, identity name.Name) (*packet.Interest, error) {
	if commandName.IsEmpty() {
		return nil, ErrEmptyCommandName
	}
	if params == nil {
		params = controlparams.New()
	}
	requestName := commandName.Append(name.Generic(params.Encode()))

	switch format {
	case FormatA:
		return b.signLegacy(requestName, identity)
	case FormatB:
		return b.sign(requestName, []byte{}, identity)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// MakeAnnounceCommand returns commandName signed by identity with the
// encoded prefix announcement as ApplicationParameters. Announcements
// only exist in FormatB; any other format fails with ErrFormatMismatch
// and no packet is produced.
func (b *Builder) MakeAnnounceCommand(commandName name.Name, announcement []byte, format Format, identity name.Name) (*packet.Interest, error) {
	if commandName.IsEmpty() {
		return nil, ErrEmptyCommandName
	}
	switch format {
	case FormatB:
	case FormatA:
		return nil, fmt.Errorf("%w: prefix announcements require %v", ErrFormatMismatch, FormatB)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if announcement == nil {
		announcement = []byte{}
	}
	return b.sign(commandName, announcement, identity)
}

// MakeAnnounce is MakeAnnounceCommand in FormatB.
func (b *Builder) MakeAnnounce(commandName name.Name, announcement []byte, identity name.Name) (*packet.Interest, error) {
	return b.MakeAnnounceCommand(commandName, announcement, FormatB, identity)
}

func (b *Builder) signingKey(identity name.Name) (*security.Key, error) {
	key, err := b.keys.DefaultKey(identity)
	if err != nil {
		return nil, &SigningError{Identity: identity, Err: err}
	}
	return key, nil
}

func (b *Builder) nextTimestamp() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	timestamp := clock.UnixMilli(b.clock)
	if timestamp <= b.lastTimestamp {
		timestamp = b.lastTimestamp + 1
	}
	b.lastTimestamp = timestamp
	return timestamp
}

func (b *Builder) nonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(b.random, nonce); err != nil {
		return nil, fmt.Errorf("command: generating nonce: %w", err)
	}
	return nonce, nil
}

func (b *Builder) signLegacy(requestName name.Name, identity name.Name) (*packet.Interest, error) {
	key, err := b.signingKey(identity)
	if err != nil {
		return nil, err
	}
	nonce, err := b.nonce()
	if err != nil {
		return nil, err
	}
	info := packet.SignatureInfo{Type: key.SignatureType(), KeyLocator: key.Name()}

	unsigned := requestName.Append(
		name.Generic(tlv.NonNegativeInteger(b.nextTimestamp())),
		name.Generic(nonce),
		name.Generic(info.Encode(packet.TypeSignatureInfo)),
	)
	signature, err := key.Sign(legacySignedPortion(unsigned))
	if err != nil {
		return nil, &SigningError{Identity: identity, Err: err}
	}
	signed := unsigned.Append(name.Generic(tlv.Encode(packet.TypeSignatureValue, signature)))
	return &packet.Interest{Name: signed, MustBeFresh: true}, nil
}

func (b *Builder) sign(requestName name.Name, parameters []byte, identity name.Name) (*packet.Interest, error) {
	key, err := b.signingKey(identity)
	if err != nil {
		return nil, err
	}
	nonce, err := b.nonce()
	if err != nil {
		return nil, err
	}
	timestamp := b.nextTimestamp()

	interest := &packet.Interest{
		Name:                  requestName,
		MustBeFresh:           true,
		ApplicationParameters: parameters,
		SignatureInfo: &packet.SignatureInfo{
			Type:       key.SignatureType(),
			KeyLocator: key.Name(),
			Nonce:      nonce,
			Time:       &timestamp,
		},
	}
	signature, err := key.Sign(signedPortion(interest))
	if err != nil {
		return nil, &SigningError{Identity: identity, Err: err}
	}
	interest.SignatureValue = signature
	digest := sha256.Sum256(interest.ParametersElements(true))
	interest.Name = requestName.Append(name.ParametersDigest(digest[:]))
	return interest, nil
}

// legacySignedPortion is the concatenated component TLVs of a legacy
// signed name, excluding its SignatureValue component.
func legacySignedPortion(withoutSignatureValue name.Name) []byte {
	return withoutSignatureValue.EncodeValue()
}

// signedPortion is the component TLVs of the name without its
// ParametersSha256Digest, followed by ApplicationParameters and
// InterestSignatureInfo.
func signedPortion(interest *packet.Interest) []byte {
	var portion []byte
	for _, component := range interest.Name.Components() {
		if component.IsParametersDigest() {
			continue
		}
		portion = append(portion, component.Encode()...)
	}
	return append(portion, interest.ParametersElements(false)...)
}
