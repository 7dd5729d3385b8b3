// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/nfdmgmt/lib/authenticator"
	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/command"
	"github.com/bureau-foundation/nfdmgmt/lib/config"
	"github.com/bureau-foundation/nfdmgmt/lib/dispatch"
	"github.com/bureau-foundation/nfdmgmt/lib/eventloop"
	"github.com/bureau-foundation/nfdmgmt/lib/face"
	"github.com/bureau-foundation/nfdmgmt/lib/manager"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
	"github.com/bureau-foundation/nfdmgmt/lib/table"
)

// strategies the forwarder can be asked to use, besides
// table.DefaultStrategy.
var strategies = []name.Name{
	name.MustParse("/localhost/nfd/strategy/multicast"),
	name.MustParse("/localhost/nfd/strategy/access"),
	name.MustParse("/localhost/nfd/strategy/asf"),
}

type daemon struct {
	logger *slog.Logger

	keys       *security.KeyChain
	privileges *authenticator.PrivilegeSet

	// Owned by the loop goroutine once run starts.
	loop       *eventloop.Loop
	fib        *table.FIB
	rib        *table.RIB
	choices    *table.StrategyChoiceTable
	dispatcher *dispatch.Dispatcher

	faces    *face.Table
	listener *face.Listener
}

// newDaemon wires the management stack described by cfg. Nothing
// listens until run.
func newDaemon(cfg *config.Config, clk clock.Clock, logger *slog.Logger) (*daemon, error) {
	topPrefix, err := name.Parse(cfg.Management.TopPrefix)
	if err != nil {
		return nil, fmt.Errorf("management.top_prefix: %w", err)
	}

	keys := security.NewKeyChain()
	signer, err := responseSigner(cfg.Management, keys, logger)
	if err != nil {
		return nil, err
	}
	privileges, err := authenticator.FromConfig(cfg.Authorizations, keys)
	if err != nil {
		return nil, fmt.Errorf("loading authorizations: %w", err)
	}
	replay, err := command.NewReplayChecker(clk, command.ReplayOptions{
		GracePeriod:    cfg.SignedInterest.GracePeriod,
		MaxRecords:     cfg.SignedInterest.MaxRecords,
		RecordLifetime: cfg.SignedInterest.RecordLifetime,
	})
	if err != nil {
		return nil, err
	}

	d := &daemon{
		logger:     logger,
		keys:       keys,
		privileges: privileges,
		loop:       eventloop.New(clk, logger.With("component", "eventloop")),
		fib:        table.NewFIB(),
		choices:    table.NewStrategyChoiceTable(strategies...),
		faces:      face.NewTable(),
	}
	d.rib = table.NewRIB(d.fib, d.loop)

	d.dispatcher, err = dispatch.New(dispatch.Options{
		Verifier:   command.NewVerifier(keys, replay),
		Authorizer: privileges,
		Signer:     signer,
		Logger:     logger.With("component", "dispatch"),
		Clock:      clk,
		MaxPayload: cfg.Management.MaxPayload,
		Freshness:  cfg.Management.ResponseFreshness,
		FormatPolicy: dispatch.FormatPolicy{
			AcceptLegacy:  cfg.SignedInterest.AcceptLegacy,
			LegacyModules: cfg.SignedInterest.LegacyModules,
		},
		Post: d.loop.Post,
	})
	if err != nil {
		return nil, err
	}
	if err := d.dispatcher.AddTopPrefix(topPrefix); err != nil {
		return nil, err
	}
	managerLogger := logger.With("component", "manager")
	manager.NewFIBManager(d.fib, d.faces, managerLogger).Register(d.dispatcher)
	manager.NewRIBManager(d.rib, d.faces, keys, clk, managerLogger).Register(d.dispatcher)
	manager.NewStrategyChoiceManager(d.choices, managerLogger).Register(d.dispatcher)
	d.dispatcher.Seal()

	d.listener = face.NewListener(cfg.Management.SocketPath, d.faces, d.receive, logger.With("component", "face"))
	d.listener.OnClose(d.faceClosed)
	return d, nil
}

// responseSigner returns the identity key responses are signed with,
// generating it on first start, or DigestSha256 when no key file is
// configured.
func responseSigner(management config.ManagementConfig, keys *security.KeyChain, logger *slog.Logger) (security.Signer, error) {
	if management.IdentityKey == "" {
		return security.DigestSigner{}, nil
	}
	identity, err := name.Parse(management.Identity)
	if err != nil {
		return nil, fmt.Errorf("management.identity: %w", err)
	}
	key, generated, err := security.LoadOrGenerateKeyFile(management.IdentityKey, identity, security.Ed25519)
	if err != nil {
		return nil, fmt.Errorf("loading identity key: %w", err)
	}
	if !key.CanSign() {
		return nil, fmt.Errorf("identity key %s has no private part", management.IdentityKey)
	}
	if !key.Identity().Equal(identity) {
		return nil, fmt.Errorf("identity key %s belongs to %s, not %s", management.IdentityKey, key.Identity(), identity)
	}
	if generated {
		logger.Info("generated identity key", "path", management.IdentityKey, "key", key.Name().String())
	}
	keys.AddKey(key)
	return key, nil
}

// receive runs on a face's reader goroutine.
func (d *daemon) receive(from face.Face, wire []byte) {
	if !d.loop.Post(func() { d.dispatcher.HandleInterest(from, wire) }) {
		d.logger.Debug("packet arrived after shutdown", "face", from.ID())
	}
}

func (d *daemon) faceClosed(faceID uint64) {
	d.loop.Post(func() {
		d.rib.RemoveFace(faceID)
		d.fib.RemoveFace(faceID)
	})
}

// run serves until ctx is cancelled or the socket cannot be opened.
func (d *daemon) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() { loopDone <- d.loop.Run(ctx) }()

	serveErr := d.listener.Serve(ctx)
	cancel()
	loopErr := <-loopDone

	stats := d.dispatcher.Stats()
	d.logger.Info("nfdmgmtd stopped",
		"received", stats.Received,
		"dropped", stats.Dropped,
		"cache_hits", stats.CacheHits,
		"datasets", stats.Datasets,
		"succeeded", stats.Succeeded,
		"signature_rejected", stats.SignatureRejected,
		"unknown_command", stats.UnknownCommand,
		"unauthorized", stats.Unauthorized,
		"malformed", stats.Malformed,
		"failed", stats.Failed,
	)
	return errors.Join(serveErr, loopErr)
}

// reloadAuthorizations replaces the privilege grants with those in the
// configuration file at path. On error the current grants stay.
func (d *daemon) reloadAuthorizations(path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	privileges, err := authenticator.FromConfig(cfg.Authorizations, d.keys)
	if err != nil {
		return fmt.Errorf("loading authorizations: %w", err)
	}
	d.privileges.Replace(privileges)
	d.logger.Info("authorizations reloaded", "path", path, "entries", len(cfg.Authorizations))
	return nil
}
