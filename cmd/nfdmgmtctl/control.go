// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/controlparams"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/process"
	"github.com/bureau-foundation/nfdmgmt/lib/response"
)

// moduleCommand groups a module's control commands with its list
// dataset.
func (a *app) moduleCommand(module, summary string, verbs []string, extra ...*Command) *Command {
	c := &Command{Name: module, Summary: summary}
	for _, verb := range verbs {
		c.Subcommands = append(c.Subcommands, &Command{
			Name:    verb,
			Summary: fmt.Sprintf("Send %s/%s.", module, verb),
			Usage:   fmt.Sprintf("nfdmgmtctl [flags] %s %s field=value...", module, verb),
			Run: func(args []string) error {
				params, err := controlparams.ParseAssignments(args)
				if err != nil {
					return &process.UsageError{Err: err}
				}
				return a.control(module, verb, params)
			},
		})
	}
	c.Subcommands = append(c.Subcommands, extra...)
	c.Subcommands = append(c.Subcommands, &Command{
		Name:    "list",
		Summary: fmt.Sprintf("Print the %s dataset.", module),
		Run: func(args []string) error {
			if len(args) > 0 {
				return process.Usagef("%s list takes no arguments", module)
			}
			return a.list(module)
		},
	})
	return c
}

// control signs and sends one command built from params.
func (a *app) control(module, verb string, params *controlparams.Parameters) error {
	signer, err := a.signing()
	if err != nil {
		return err
	}
	ctx, cancel := a.context()
	defer cancel()
	s, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	interest, err := signer.builder.MakeCommand(s.prefix.AppendString(module, verb), params, signer.format, signer.key.Identity())
	if err != nil {
		return err
	}
	return s.send(interest, module+"/"+verb)
}

// send transmits a signed command and prints the response.
func (s *session) send(interest *packet.Interest, label string) error {
	ctx, cancel := s.app.context()
	defer cancel()
	segments, err := s.face.Command(ctx, interest)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	content, err := response.Assemble(interest.Name, segments, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	outcome, err := response.Decode(content)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	if outcome.Code != response.StatusOK {
		return fmt.Errorf("%s: %d %s", label, outcome.Code, outcome.Text)
	}

	applied, err := controlparams.Decode(outcome.Body)
	if err != nil {
		// A success without ControlParameters is still a success.
		applied = controlparams.New()
	}
	if s.app.json {
		return writeJSON(s.app.out, struct {
			Code       uint64         `json:"code"`
			Text       string         `json:"text"`
			Parameters map[string]any `json:"parameters"`
		}{outcome.Code, outcome.Text, parameterMap(applied)})
	}
	fmt.Fprintf(s.app.out, "%d %s\n", outcome.Code, outcome.Text)
	for _, field := range applied.Fields() {
		fmt.Fprintf(s.app.out, "  %s: %v\n", field, parameterValue(applied, field))
	}
	return nil
}

func parameterMap(p *controlparams.Parameters) map[string]any {
	values := make(map[string]any)
	for _, field := range p.Fields() {
		values[field.String()] = parameterValue(p, field)
	}
	return values
}

func parameterValue(p *controlparams.Parameters, field controlparams.Field) any {
	switch field {
	case controlparams.FieldName:
		return p.Name().String()
	case controlparams.FieldStrategy:
		return p.Strategy().String()
	case controlparams.FieldURI, controlparams.FieldLocalURI:
		return p.Text(field)
	case controlparams.FieldExpirationPeriod, controlparams.FieldBaseCongestionMarkingInterval:
		return (time.Duration(p.Uint(field)) * time.Millisecond).String()
	}
	return p.Uint(field)
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
