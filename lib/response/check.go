// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"bytes"
	"fmt"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
)

// CheckResult is the first mismatch Check finds. The constants are
// listed in the order Check tests them.
type CheckResult int

const (
	// CheckOK means every comparison passed.
	CheckOK CheckResult = iota

	// OutOfBoundary means idx is not an index into responses.
	OutOfBoundary
	WrongName
	WrongContentType
	InvalidResponse
	WrongCode
	WrongText
	WrongBodySize
	WrongBodyValue
)

func (r CheckResult) String() string {
	switch r {
	case CheckOK:
		return "OK"
	case OutOfBoundary:
		return "OUT_OF_BOUNDARY"
	case WrongName:
		return "WRONG_NAME"
	case WrongContentType:
		return "WRONG_CONTENT_TYPE"
	case InvalidResponse:
		return "INVALID_RESPONSE"
	case WrongCode:
		return "WRONG_CODE"
	case WrongText:
		return "WRONG_TEXT"
	case WrongBodySize:
		return "WRONG_BODY_SIZE"
	case WrongBodyValue:
		return "WRONG_BODY_VALUE"
	default:
		return fmt.Sprintf("CheckResult(%d)", int(r))
	}
}

// AnyContentType skips the content type comparison in Check.
const AnyContentType = -1

// CheckOptions relaxes Check.
type CheckOptions struct {
	// IgnoreText skips the status text comparison when the expected
	// text is empty, for failure responses whose wording is not fixed.
	IgnoreText bool
}

// Check compares responses[idx] with the expected name, content type
// and response, reporting the first mismatch in the order of the
// CheckResult constants.
func Check(responses []*packet.Data, idx int, expectedName name.Name, expected ControlResponse, expectedContentType int, options CheckOptions) CheckResult {
	if idx < 0 || idx >= len(responses) {
		return OutOfBoundary
	}
	data := responses[idx]
	if !data.Name.Equal(expectedName) {
		return WrongName
	}
	if expectedContentType >= 0 && data.ContentType != uint64(expectedContentType) {
		return WrongContentType
	}
	got, err := Decode(data.Content)
	if err != nil {
		return InvalidResponse
	}
	if got.Code != expected.Code {
		return WrongCode
	}
	if got.Text != expected.Text && !(options.IgnoreText && expected.Text == "") {
		return WrongText
	}
	if len(got.Body) != len(expected.Body) {
		return WrongBodySize
	}
	if !bytes.Equal(got.Body, expected.Body) {
		return WrongBodyValue
	}
	return CheckOK
}

// Concatenate joins the contents of count packets starting at start,
// in the order given. A count of zero means through the last packet.
// It does not reorder by segment number; see Assemble.
func Concatenate(responses []*packet.Data, start, count int) ([]byte, error) {
	if start < 0 || start >= len(responses) {
		return nil, fmt.Errorf("response: start index %d out of range [0, %d)", start, len(responses))
	}
	if count == 0 {
		count = len(responses) - start
	}
	if count < 0 || start+count > len(responses) {
		return nil, fmt.Errorf("response: %d packets from %d exceeds %d received", count, start, len(responses))
	}
	var block []byte
	for _, data := range responses[start : start+count] {
		block = append(block, data.Content...)
	}
	return block, nil
}
