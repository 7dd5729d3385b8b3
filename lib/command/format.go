// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"strings"
)

// Format is the signed Interest encoding of a command.
type Format int

const (
	// FormatA is the legacy signed Interest (v0.2) with the signature
	// embedded in the name.
	FormatA Format = iota + 1

	// FormatB is the signed Interest (v0.3) with a detached signature.
	FormatB
)

func (f Format) String() string {
	switch f {
	case FormatA:
		return "A (signed Interest v0.2)"
	case FormatB:
		return "B (signed Interest v0.3)"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts "a"/"v0.2" and "b"/"v0.3", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "a", "v0.2", "v02", "legacy":
		return FormatA, nil
	case "b", "v0.3", "v03":
		return FormatB, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}
