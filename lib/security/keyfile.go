// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/nfdmgmt/lib/codec"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

// KeyFile is the on-disk form of a key. Private is the PKCS #8
// encoding and is absent in public key files; Public is the PKIX
// encoding.
type KeyFile struct {
	Identity  name.Name `cbor:"identity"`
	Algorithm Algorithm `cbor:"algorithm"`
	Private   []byte    `cbor:"private,omitempty"`
	Public    []byte    `cbor:"public"`
}

// File returns the key file for k, including the private part when
// present.
func (k *Key) File() (KeyFile, error) {
	file := KeyFile{
		Identity:  k.Identity(),
		Algorithm: k.algorithm,
		Public:    bytes.Clone(k.publicDER),
	}
	if k.private != nil {
		private, err := x509.MarshalPKCS8PrivateKey(k.private)
		if err != nil {
			return KeyFile{}, fmt.Errorf("encoding private key: %w", err)
		}
		file.Private = private
	}
	return file, nil
}

// Key reconstructs the key, checking that the private and public parts
// agree.
func (f KeyFile) Key() (*Key, error) {
	public, err := NewPublicKey(f.Identity, f.Algorithm, f.Public)
	if err != nil {
		return nil, err
	}
	if len(f.Private) == 0 {
		return public, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(f.Private)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	signer, ok := parsed.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: private key type %T", ErrUnsupportedAlgorithm, parsed)
	}
	derived, err := newKey(f.Identity, f.Algorithm, signer.Public(), signer)
	if err != nil {
		return nil, err
	}
	if !derived.Name().Equal(public.Name()) {
		return nil, errors.New("security: key file public key does not match private key")
	}
	return derived, nil
}

// SaveKeyFile writes key to path with 0600 permissions. Pass
// key.PublicOnly() to write a public key file.
func SaveKeyFile(path string, key *Key) error {
	file, err := key.File()
	if err != nil {
		return err
	}
	data, err := codec.Marshal(file)
	if err != nil {
		return fmt.Errorf("encoding key file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}
	return nil
}

// MaxKeyFileSize bounds the size of a key file. Real files are a few
// hundred bytes.
const MaxKeyFileSize = 64 << 10

// ErrKeyFileTooLarge is returned by LoadKeyFile for files over
// MaxKeyFileSize.
var ErrKeyFileTooLarge = errors.New("security: key file too large")

// LoadKeyFile reads a key file written by SaveKeyFile.
func LoadKeyFile(path string) (*Key, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	if info.Size() > MaxKeyFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrKeyFileTooLarge, path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	var file KeyFile
	if err := codec.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding key file %s: %w", path, err)
	}
	key, err := file.Key()
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	return key, nil
}

// LoadOrGenerateKeyFile loads the key at path, or generates and saves a
// new one for identity when the file does not exist. It reports whether
// the key was newly generated. A file that exists but cannot be loaded
// is an error, never silently replaced.
func LoadOrGenerateKeyFile(path string, identity name.Name, algorithm Algorithm) (*Key, bool, error) {
	key, err := LoadKeyFile(path)
	if err == nil {
		return key, false, nil
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return nil, false, err
	}

	key, err = GenerateKey(identity, algorithm)
	if err != nil {
		return nil, false, err
	}
	if err := SaveKeyFile(path, key); err != nil {
		return nil, false, err
	}
	return key, true, nil
}
