// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/config"
	"github.com/bureau-foundation/nfdmgmt/lib/process"
	"github.com/bureau-foundation/nfdmgmt/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flags := pflag.NewFlagSet("nfdmgmtd", pflag.ContinueOnError)
	var (
		configPath  string
		logLevel    string
		showVersion bool
	)
	flags.StringVar(&configPath, "config", "", "configuration file (default $"+config.EnvironmentVariable+")")
	flags.StringVar(&logLevel, "log-level", "info", "minimum log level: debug, info, warn, error")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return &process.UsageError{Err: err}
	}

	if showVersion {
		fmt.Printf("nfdmgmtd %s\n", version.Info())
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return process.Usagef("--log-level: %v", err)
	}
	logger := newLogger(level)
	slog.SetDefault(logger)

	if configPath == "" {
		configPath = os.Getenv(config.EnvironmentVariable)
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(cfg, clock.Real(), logger)
	if err != nil {
		return err
	}

	if configPath != "" {
		reload := make(chan os.Signal, 1)
		signal.Notify(reload, syscall.SIGHUP)
		defer signal.Stop(reload)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-reload:
					if err := d.reloadAuthorizations(configPath); err != nil {
						logger.Error("configuration reload failed", "path", configPath, "error", err)
					}
				}
			}
		}()
	}

	logger.Info("nfdmgmtd starting",
		"version", version.Info(),
		"environment", cfg.Environment,
		"top_prefix", cfg.Management.TopPrefix,
	)
	return d.run(ctx)
}

// loadConfig reads and validates the configuration at path. An empty
// path selects the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes text to a terminal and JSON otherwise.
func newLogger(level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}
