// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
)

// Algorithm names a key algorithm as written in key files and
// configuration.
type Algorithm string

const (
	Ed25519   Algorithm = "ed25519"
	ECDSAP256 Algorithm = "ecdsa-p256"
)

// SignatureType returns the NDN SignatureType produced by keys of this
// algorithm.
func (a Algorithm) SignatureType() (packet.SignatureType, error) {
	switch a {
	case Ed25519:
		return packet.SignatureEd25519, nil
	case ECDSAP256:
		return packet.SignatureSha256WithEcdsa, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(a))
}

// keyComponent separates the identity from the key id in a key name.
var keyComponent = name.GenericString("KEY")

// Key is a named signing key. A Key loaded from a public key file can
// verify but not sign.
type Key struct {
	name      name.Name
	algorithm Algorithm
	sigType   packet.SignatureType
	public    crypto.PublicKey
	private   crypto.Signer

	// publicDER is the PKIX encoding the key id is derived from.
	publicDER []byte
}

// GenerateKey creates a new key for identity.
func GenerateKey(identity name.Name, algorithm Algorithm) (*Key, error) {
	var private crypto.Signer
	switch algorithm {
	case Ed25519:
		_, key, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generating Ed25519 key: %w", err)
		}
		private = key
	case ECDSAP256:
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generating ECDSA key: %w", err)
		}
		private = key
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(algorithm))
	}
	return newKey(identity, algorithm, private.Public(), private)
}

// NewPublicKey builds a verification-only key from a PKIX-encoded
// public key.
func NewPublicKey(identity name.Name, algorithm Algorithm, publicDER []byte) (*Key, error) {
	public, err := x509.ParsePKIXPublicKey(publicDER)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	return newKey(identity, algorithm, public, nil)
}

func newKey(identity name.Name, algorithm Algorithm, public crypto.PublicKey, private crypto.Signer) (*Key, error) {
	sigType, err := algorithm.SignatureType()
	if err != nil {
		return nil, err
	}
	switch key := public.(type) {
	case ed25519.PublicKey:
		if algorithm != Ed25519 {
			return nil, fmt.Errorf("%w: Ed25519 key declared as %s", ErrUnsupportedAlgorithm, algorithm)
		}
	case *ecdsa.PublicKey:
		if algorithm != ECDSAP256 || key.Curve != elliptic.P256() {
			return nil, fmt.Errorf("%w: ECDSA key declared as %s", ErrUnsupportedAlgorithm, algorithm)
		}
	default:
		return nil, fmt.Errorf("%w: public key type %T", ErrUnsupportedAlgorithm, public)
	}

	publicDER, err := x509.MarshalPKIXPublicKey(public)
	if err != nil {
		return nil, fmt.Errorf("encoding public key: %w", err)
	}
	return &Key{
		name:      identity.Append(keyComponent, name.Generic(KeyID(publicDER))),
		algorithm: algorithm,
		sigType:   sigType,
		public:    public,
		private:   private,
		publicDER: publicDER,
	}, nil
}

// Name returns the key name, <identity>/KEY/<key-id>.
func (k *Key) Name() name.Name { return k.name }

// KeyName implements Signer.
func (k *Key) KeyName() name.Name { return k.name }

// Identity returns the identity the key belongs to.
func (k *Key) Identity() name.Name { return k.name.Prefix(-2) }

func (k *Key) Algorithm() Algorithm { return k.algorithm }

// SignatureType implements Signer and PublicKey.
func (k *Key) SignatureType() packet.SignatureType { return k.sigType }

// PublicDER returns the PKIX encoding of the public key.
func (k *Key) PublicDER() []byte { return bytes.Clone(k.publicDER) }

// CanSign reports whether the private part is present.
func (k *Key) CanSign() bool { return k.private != nil }

// PublicOnly returns a copy of the key without its private part.
func (k *Key) PublicOnly() *Key {
	public := *k
	public.private = nil
	return &public
}

// Sign implements Signer.
func (k *Key) Sign(portion []byte) ([]byte, error) {
	if k.private == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPrivateKey, k.name)
	}
	switch private := k.private.(type) {
	case ed25519.PrivateKey:
		return ed25519.Sign(private, portion), nil
	case *ecdsa.PrivateKey:
		digest := sha256.Sum256(portion)
		signature, err := ecdsa.SignASN1(rand.Reader, private, digest[:])
		if err != nil {
			return nil, fmt.Errorf("ECDSA signing: %w", err)
		}
		return signature, nil
	}
	return nil, fmt.Errorf("%w: private key type %T", ErrUnsupportedAlgorithm, k.private)
}

// Verify implements PublicKey.
func (k *Key) Verify(portion, signature []byte) bool {
	switch public := k.public.(type) {
	case ed25519.PublicKey:
		return len(signature) == ed25519.SignatureSize && ed25519.Verify(public, portion, signature)
	case *ecdsa.PublicKey:
		digest := sha256.Sum256(portion)
		return ecdsa.VerifyASN1(public, digest[:], signature)
	}
	return false
}

// IdentityOf returns the identity part of a key name: the prefix before
// the last KEY component.
func IdentityOf(keyName name.Name) (name.Name, error) {
	for i := keyName.Len() - 1; i >= 0; i-- {
		if keyName.At(i).Equal(keyComponent) {
			if i == keyName.Len()-1 {
				break
			}
			return keyName.Prefix(i), nil
		}
	}
	return name.Name{}, fmt.Errorf("%w: %s", ErrNotKeyName, keyName)
}
