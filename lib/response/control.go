// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// ControlResponse element types.
const (
	TypeControlResponse = 101
	TypeStatusCode      = 102
	TypeStatusText      = 103
)

// Status codes. Managers may answer with other codes of their own
// (NFD uses 410 and 414, for example); the dispatcher produces only
// these.
const (
	StatusOK                  = 200
	StatusMalformedParameters = 400
	StatusSignatureError      = 401
	StatusForbidden           = 403
	StatusUnknownCommand      = 404
	StatusInternalError       = 500
)

// Status texts sent for dispatcher-level failures. They never carry
// details of the failure.
const (
	TextOK                  = "OK"
	TextMalformedParameters = "malformed parameters"
	TextSignatureError      = "signature verification failed"
	TextForbidden           = "authorization rejected"
	TextUnknownCommand      = "unknown command"
	TextInternalError       = "internal error"
)

// ErrInvalidResponse is returned by Decode for anything that is not a
// ControlResponse with a StatusCode and a StatusText.
var ErrInvalidResponse = errors.New("response: invalid ControlResponse")

// ControlResponse is the outcome of a command.
type ControlResponse struct {
	Code uint64
	Text string

	// Body is zero or more encoded TLV elements, appended verbatim.
	Body []byte
}

// New returns a ControlResponse without body.
func New(code uint64, text string) ControlResponse {
	return ControlResponse{Code: code, Text: text}
}

// OK returns a 200 response carrying body.
func OK(body []byte) ControlResponse {
	return ControlResponse{Code: StatusOK, Text: TextOK, Body: body}
}

// Encode returns the ControlResponse TLV.
func (r ControlResponse) Encode() []byte {
	value := tlv.AppendUint(nil, TypeStatusCode, r.Code)
	value = tlv.Append(value, TypeStatusText, []byte(r.Text))
	value = append(value, r.Body...)
	return tlv.Encode(TypeControlResponse, value)
}

// Equal compares code, text and body.
func (r ControlResponse) Equal(other ControlResponse) bool {
	return r.Code == other.Code && r.Text == other.Text && bytes.Equal(r.Body, other.Body)
}

func (r ControlResponse) String() string {
	return fmt.Sprintf("%d %s (%d-byte body)", r.Code, r.Text, len(r.Body))
}

// Decode parses a ControlResponse TLV. StatusCode and StatusText must
// be the first two elements; everything after them is the body.
func Decode(wire []byte) (ControlResponse, error) {
	block, err := tlv.DecodeExact(wire, TypeControlResponse)
	if err != nil {
		return ControlResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	value := block.Value

	code, n, err := tlv.ReadBlock(value)
	if err != nil || code.Type != TypeStatusCode {
		return ControlResponse{}, fmt.Errorf("%w: missing StatusCode", ErrInvalidResponse)
	}
	value = value[n:]
	statusCode, err := code.Uint()
	if err != nil {
		return ControlResponse{}, fmt.Errorf("%w: StatusCode: %v", ErrInvalidResponse, err)
	}

	text, n, err := tlv.ReadBlock(value)
	if err != nil || text.Type != TypeStatusText {
		return ControlResponse{}, fmt.Errorf("%w: missing StatusText", ErrInvalidResponse)
	}
	body := value[n:]
	if _, err := tlv.Elements(body); err != nil {
		return ControlResponse{}, fmt.Errorf("%w: body: %v", ErrInvalidResponse, err)
	}

	response := ControlResponse{Code: statusCode, Text: string(text.Value)}
	if len(body) > 0 {
		response.Body = bytes.Clone(body)
	}
	return response, nil
}
