// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/nfdmgmt/lib/authenticator"
	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/command"
	"github.com/bureau-foundation/nfdmgmt/lib/config"
	"github.com/bureau-foundation/nfdmgmt/lib/face"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/process"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
	"github.com/bureau-foundation/nfdmgmt/lib/version"
)

// app holds the global flags shared by every subcommand.
type app struct {
	out io.Writer

	socketPath string
	keyFile    string
	prefix     string
	format     string
	timeout    time.Duration
	json       bool
}

func (a *app) root() *Command {
	defaults := config.Default().Management
	return &Command{
		Name:    "nfdmgmtctl",
		Summary: "Manage a forwarder through nfdmgmtd.",
		Flags: func(flags *pflag.FlagSet) {
			flags.StringVar(&a.socketPath, "socket", defaults.SocketPath, "nfdmgmtd socket")
			flags.StringVarP(&a.keyFile, "key", "k", "", "key file commands are signed with")
			flags.StringVar(&a.prefix, "prefix", defaults.TopPrefix, "management top prefix")
			flags.StringVar(&a.format, "format", "b", "signed Interest format: a (legacy) or b")
			flags.DurationVar(&a.timeout, "timeout", 5*time.Second, "time to wait for a response")
			flags.BoolVar(&a.json, "json", false, "print datasets and responses as JSON")
		},
		Subcommands: []*Command{
			a.moduleCommand(authenticator.PrivilegeFib, "Edit and list FIB next hops.", []string{"add-nexthop", "remove-nexthop"}),
			a.moduleCommand(authenticator.PrivilegeRib, "Register routes and list the RIB.", []string{"register", "unregister"}, a.announceCommand()),
			a.moduleCommand(authenticator.PrivilegeStrategyChoice, "Choose forwarding strategies.", []string{"set", "unset"}),
			a.keygenCommand(),
			{
				Name:    "version",
				Summary: "Print the version.",
				Run: func([]string) error {
					fmt.Fprintf(a.out, "nfdmgmtctl %s\n", version.Info())
					return nil
				},
			},
		},
	}
}

// session is an open connection to the daemon.
type session struct {
	app    *app
	face   *face.StreamFace
	prefix name.Name
}

func (a *app) connect(ctx context.Context) (*session, error) {
	prefix, err := name.Parse(a.prefix)
	if err != nil {
		return nil, process.Usagef("--prefix: %v", err)
	}
	conn, err := face.Dial(ctx, a.socketPath)
	if err != nil {
		return nil, err
	}
	return &session{app: a, face: conn, prefix: prefix}, nil
}

func (s *session) Close() error { return s.face.Close() }

// signing is the key and format commands are sent with.
type signing struct {
	key     *security.Key
	builder *command.Builder
	format  command.Format
}

// signing loads the --key file.
func (a *app) signing() (*signing, error) {
	format, err := command.ParseFormat(a.format)
	if err != nil {
		return nil, process.Usagef("--format: %v", err)
	}
	if a.keyFile == "" {
		return nil, process.Usagef("--key is required to sign commands")
	}
	key, err := security.LoadKeyFile(a.keyFile)
	if err != nil {
		return nil, err
	}
	if !key.CanSign() {
		return nil, fmt.Errorf("%s is a public key file", a.keyFile)
	}
	keys := security.NewKeyChain()
	keys.AddKey(key)
	return &signing{key: key, builder: command.NewBuilder(keys, clock.Real()), format: format}, nil
}

func (a *app) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}
