// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package controlparams

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
)

var ErrUnknownField = errors.New("controlparams: unknown field")

// ParseField looks up a field by label. Matching ignores case, dashes
// and underscores, so "FaceId", "face-id" and "faceid" are the same.
func ParseField(label string) (Field, error) {
	wanted := normalizeLabel(label)
	for _, info := range fieldOrder {
		if normalizeLabel(info.label) == wanted {
			return info.field, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, label)
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(label))
}

// SetFromText sets f from its textual form: a name URI for Name and
// Strategy, a Go duration or plain milliseconds for periods, and a
// decimal number otherwise.
func (p *Parameters) SetFromText(f Field, text string) error {
	if !f.Known() {
		return fmt.Errorf("%w: %d", ErrUnknownField, uint64(f))
	}
	switch f.kind() {
	case kindName, kindStrategy:
		parsed, err := name.Parse(text)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		if f == FieldName {
			p.SetName(parsed)
		} else {
			p.SetStrategy(parsed)
		}
	case kindString:
		p.SetText(f, text)
	case kindDuration:
		if milliseconds, err := strconv.ParseUint(text, 10, 64); err == nil {
			p.SetUint(f, milliseconds)
			return nil
		}
		d, err := time.ParseDuration(text)
		if err != nil || d < 0 {
			return fmt.Errorf("%s: %q is not a duration", f, text)
		}
		p.SetUint(f, uint64(d.Milliseconds()))
	default:
		v, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", f, text)
		}
		p.SetUint(f, v)
	}
	return nil
}

// ParseAssignments builds Parameters from "field=value" arguments.
func ParseAssignments(args []string) (*Parameters, error) {
	p := New()
	var errs []error
	for _, arg := range args {
		label, value, ok := strings.Cut(arg, "=")
		if !ok {
			errs = append(errs, fmt.Errorf("%q is not field=value", arg))
			continue
		}
		f, err := ParseField(label)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.SetFromText(f, value); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return p, nil
}
