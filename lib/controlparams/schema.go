// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package controlparams

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField    = errors.New("controlparams: required field missing")
	ErrUnexpectedField = errors.New("controlparams: field not accepted by command")
)

// Schema describes the fields one command verb accepts.
type Schema struct {
	Required []Field
	Optional []Field

	// Defaults fills absent fields after validation. faceID is the
	// face the request arrived on.
	Defaults func(p *Parameters, faceID uint64)
}

// Validate reports every field problem in p, joined.
func (s Schema) Validate(p *Parameters) error {
	var errs []error
	for _, f := range s.Required {
		if !p.Has(f) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingField, f))
		}
	}
	for _, f := range p.Fields() {
		if !s.accepts(f) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnexpectedField, f))
		}
	}
	return errors.Join(errs...)
}

func (s Schema) accepts(f Field) bool {
	for _, candidate := range s.Required {
		if candidate == f {
			return true
		}
	}
	for _, candidate := range s.Optional {
		if candidate == f {
			return true
		}
	}
	return false
}

// Fill returns a copy of p with the schema's defaults applied.
func (s Schema) Fill(p *Parameters, faceID uint64) *Parameters {
	filled := p.Clone()
	if s.Defaults != nil {
		s.Defaults(filled, faceID)
	}
	return filled
}

// DefaultFaceID sets FaceId to the requesting face when it is absent
// or zero.
func DefaultFaceID(p *Parameters, faceID uint64) {
	if !p.Has(FieldFaceID) || p.FaceID() == 0 {
		p.SetFaceID(faceID)
	}
}

// DefaultUint returns a Defaults function setting f to v when absent.
func DefaultUint(f Field, v uint64) func(*Parameters, uint64) {
	return func(p *Parameters, _ uint64) {
		if !p.Has(f) {
			p.SetUint(f, v)
		}
	}
}

// Defaults chains several Defaults functions.
func Defaults(fns ...func(*Parameters, uint64)) func(*Parameters, uint64) {
	return func(p *Parameters, faceID uint64) {
		for _, fn := range fns {
			fn(p, faceID)
		}
	}
}
