// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/nfdmgmt/lib/command"
	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/face"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/prefixann"
	"github.com/bureau-foundation/nfdmgmt/lib/response"
)

// ErrMalformedParameters wraps every parse failure; the dispatcher
// answers it with 400.
var ErrMalformedParameters = errors.New("dispatch: malformed parameters")

// Request is a verified, authorized command ready for its handler.
type Request struct {
	// Face is the face the request arrived on.
	Face     face.Face
	Interest *packet.Interest
	Command  *command.Verified

	// Prefix is the top prefix the request arrived under.
	Prefix name.Name
	Module string
	Verb   string

	// Parameters holds the decoded ControlParameters with the
	// command's defaults applied. Announcement commands get an empty
	// set.
	Parameters *controlparams.Parameters

	// Announcement and AnnouncementData are set for commands parsed
	// with ParseAnnouncement.
	Announcement     *prefixann.Announcement
	AnnouncementData *packet.Data
}

// FaceID returns the id of the requesting face.
func (r *Request) FaceID() uint64 { return r.Face.ID() }

// Continuation delivers a handler's outcome. Only the first call has
// any effect. It may be called from any goroutine, during or after the
// handler.
type Continuation func(response.ControlResponse)

// Handler executes one command. It either calls done or returns an
// error; a returned error (or a panic) before done has been called is
// answered with 500.
type Handler func(request *Request, done Continuation) error

// ParseFunc decodes the command payload into request.
type ParseFunc func(request *Request, schema controlparams.Schema) error

// ControlCommand is one registered module/verb.
type ControlCommand struct {
	Schema controlparams.Schema

	// Parse decodes the payload. Nil means ParseParameters.
	Parse ParseFunc

	Handler Handler
}

// ParseParameters decodes the ControlParameters name component,
// validates it against schema, and applies the schema's defaults. A
// command without a parameter component is validated as an empty set.
func ParseParameters(request *Request, schema controlparams.Schema) error {
	if extra := request.Command.CommandName.Len() - commandDepth(request); extra != 0 {
		return fmt.Errorf("%w: %d unexpected name components", ErrMalformedParameters, extra)
	}
	if len(request.Command.ApplicationParameters) > 0 {
		return fmt.Errorf("%w: command carries ApplicationParameters", ErrMalformedParameters)
	}
	params, err := request.Command.DecodeParameters()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedParameters, err)
	}
	if err := schema.Validate(params); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedParameters, err)
	}
	request.Parameters = schema.Fill(params, request.FaceID())
	return nil
}

// ParseAnnouncement decodes a prefix announcement carried in the
// ApplicationParameters of a Format B command. The announcement's
// signature is not checked here; that is the handler's policy.
func ParseAnnouncement(request *Request, _ controlparams.Schema) error {
	if request.Command.Format != command.FormatB {
		return fmt.Errorf("%w: prefix announcements require %s", ErrMalformedParameters, command.FormatB)
	}
	if request.Command.Parameters != nil || request.Command.CommandName.Len() != commandDepth(request) {
		return fmt.Errorf("%w: announcement command has name parameters", ErrMalformedParameters)
	}
	if len(request.Command.ApplicationParameters) == 0 {
		return fmt.Errorf("%w: missing prefix announcement", ErrMalformedParameters)
	}
	announcement, data, err := prefixann.Decode(request.Command.ApplicationParameters)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedParameters, err)
	}
	request.Announcement = announcement
	request.AnnouncementData = data
	request.Parameters = controlparams.New()
	return nil
}

// commandDepth is the length of <top prefix>/<module>/<verb>.
func commandDepth(request *Request) int {
	return request.Prefix.Len() + 2
}
