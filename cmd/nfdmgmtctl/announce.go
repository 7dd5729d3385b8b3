// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/nfdmgmt/lib/authenticator"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/prefixann"
	"github.com/bureau-foundation/nfdmgmt/lib/process"
)

func (a *app) announceCommand() *Command {
	var (
		expiration time.Duration
		validity   time.Duration
		version    uint64
	)
	return &Command{
		Name:    "announce",
		Summary: "Announce a prefix with a signed prefix announcement.",
		Usage:   "nfdmgmtctl [flags] rib announce <prefix> [--expiration d] [--validity d]",
		Flags: func(flags *pflag.FlagSet) {
			flags.DurationVar(&expiration, "expiration", time.Hour, "route lifetime requested by the announcement")
			flags.DurationVar(&validity, "validity", 0, "validity period from now; zero omits it")
			flags.Uint64Var(&version, "version", 0, "announcement version (default: current time in milliseconds)")
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return process.Usagef("rib announce takes exactly one prefix")
			}
			prefix, err := name.Parse(args[0])
			if err != nil {
				return &process.UsageError{Err: err}
			}
			if expiration <= 0 {
				return process.Usagef("--expiration must be positive")
			}
			now := time.Now()
			announcement := &prefixann.Announcement{
				Prefix:     prefix,
				Version:    version,
				Expiration: expiration,
			}
			if announcement.Version == 0 {
				announcement.Version = uint64(now.UnixMilli())
			}
			if validity > 0 {
				announcement.Validity = &prefixann.ValidityPeriod{NotBefore: now, NotAfter: now.Add(validity)}
			}
			return a.announce(announcement)
		},
	}
}

func (a *app) announce(announcement *prefixann.Announcement) error {
	signer, err := a.signing()
	if err != nil {
		return err
	}
	wire, err := announcement.Encode(signer.key)
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

	commandName := s.prefix.AppendString(authenticator.PrivilegeRib, "announce")
	interest, err := signer.builder.MakeAnnounceCommand(commandName, wire, signer.format, signer.key.Identity())
	if err != nil {
		return err
	}
	return s.send(interest, "rib/announce")
}
