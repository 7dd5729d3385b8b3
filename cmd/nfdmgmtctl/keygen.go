// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/process"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
)

// keygenCommand writes a signing key and its public half. The public
// file is what an nfdmgmtd authorization's key_file names.
func (a *app) keygenCommand() *Command {
	var (
		identity  string
		out       string
		algorithm string
	)
	return &Command{
		Name:    "keygen",
		Summary: "Generate a command signing key.",
		Usage:   "nfdmgmtctl keygen --identity <name> --out <file>",
		Flags: func(flags *pflag.FlagSet) {
			flags.StringVar(&identity, "identity", "", "identity name the key belongs to (required)")
			flags.StringVar(&out, "out", "", "private key file; the public key is written to <out>.pub (required)")
			flags.StringVar(&algorithm, "algorithm", string(security.Ed25519), "ed25519 or ecdsa-p256")
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return process.Usagef("keygen takes no arguments")
			}
			if identity == "" || out == "" {
				return process.Usagef("--identity and --out are required")
			}
			parsed, err := name.Parse(identity)
			if err != nil {
				return process.Usagef("--identity: %v", err)
			}
			key, err := security.GenerateKey(parsed, security.Algorithm(algorithm))
			if err != nil {
				return err
			}
			if err := security.SaveKeyFile(out, key); err != nil {
				return err
			}
			if err := security.SaveKeyFile(out+".pub", key.PublicOnly()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\n", key.Name())
			return nil
		},
	}
}
