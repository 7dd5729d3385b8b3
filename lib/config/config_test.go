// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, filename, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Management.TopPrefix != "/localhost/nfd" {
		t.Errorf("expected top_prefix=/localhost/nfd, got %s", cfg.Management.TopPrefix)
	}
	if cfg.Management.MaxPayload != 4400 {
		t.Errorf("expected max_payload=4400, got %d", cfg.Management.MaxPayload)
	}
	if cfg.SignedInterest.GracePeriod != 2*time.Minute {
		t.Errorf("expected grace_period=2m, got %v", cfg.SignedInterest.GracePeriod)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration invalid: %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when NFDMGMT_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "NFDMGMT_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "nfdmgmt.yaml", `
environment: development
management:
  top_prefix: /localhost/test
  socket_path: ${TEST_RUNTIME_DIR:-/tmp}/nfd.sock
  max_payload: 4000
  response_freshness: 500ms
signed_interest:
  accept_legacy: true
  legacy_modules: [fib]
  grace_period: 30s
authorizations:
  - key_file: ${HOME}/operator.key.pub
    privileges: [fib, rib]
  - identity: any
    privileges: [strategy-choice]
`)
	t.Setenv(EnvironmentVariable, path)
	t.Setenv("HOME", "/home/operator")
	t.Setenv("TEST_RUNTIME_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if cfg.Management.TopPrefix != "/localhost/test" {
		t.Errorf("top_prefix = %s", cfg.Management.TopPrefix)
	}
	if cfg.Management.SocketPath != "/tmp/nfd.sock" {
		t.Errorf("socket_path = %s", cfg.Management.SocketPath)
	}
	if cfg.Management.ResponseFreshness != 500*time.Millisecond {
		t.Errorf("response_freshness = %v", cfg.Management.ResponseFreshness)
	}
	if cfg.SignedInterest.GracePeriod != 30*time.Second {
		t.Errorf("grace_period = %v", cfg.SignedInterest.GracePeriod)
	}
	if cfg.SignedInterest.MaxRecords != 1000 {
		t.Errorf("max_records default lost: %d", cfg.SignedInterest.MaxRecords)
	}
	if len(cfg.Authorizations) != 2 {
		t.Fatalf("authorizations = %+v", cfg.Authorizations)
	}
	if cfg.Authorizations[0].KeyFile != "/home/operator/operator.key.pub" {
		t.Errorf("key_file = %s", cfg.Authorizations[0].KeyFile)
	}
	if cfg.Authorizations[1].Identity != "any" {
		t.Errorf("identity = %s", cfg.Authorizations[1].Identity)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "nfdmgmt.jsonc", `{
  // Comments and trailing commas are allowed.
  "environment": "development",
  "management": {
    "top_prefix": "/localhost/jsonc",
    "response_freshness": "2s",
  },
  /* block comment */
  "authorizations": [
    {"identity": "/operator", "privileges": ["fib"]},
  ],
}`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Management.TopPrefix != "/localhost/jsonc" {
		t.Errorf("top_prefix = %s", cfg.Management.TopPrefix)
	}
	if cfg.Management.ResponseFreshness != 2*time.Second {
		t.Errorf("response_freshness = %v", cfg.Management.ResponseFreshness)
	}
	if len(cfg.Authorizations) != 1 || cfg.Authorizations[0].Privileges[0] != "fib" {
		t.Errorf("authorizations = %+v", cfg.Authorizations)
	}
}

func TestProductionRefusesLegacyByDefault(t *testing.T) {
	path := writeConfig(t, "production.yaml", `
environment: production
signed_interest:
  accept_legacy: true
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.SignedInterest.AcceptLegacy {
		t.Error("production accepted legacy signatures without an explicit production override")
	}
}

func TestProductionOverride(t *testing.T) {
	path := writeConfig(t, "production.yaml", `
environment: production
management:
  socket_path: /run/base.sock
production:
  management:
    socket_path: /run/production.sock
  signed_interest:
    accept_legacy: true
    legacy_modules: [rib]
development:
  management:
    socket_path: /run/development.sock
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Management.SocketPath != "/run/production.sock" {
		t.Errorf("socket_path = %s", cfg.Management.SocketPath)
	}
	if !cfg.SignedInterest.AcceptLegacy || len(cfg.SignedInterest.LegacyModules) != 1 {
		t.Errorf("signed_interest = %+v", cfg.SignedInterest)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Environment = "staging"
	cfg.Management.TopPrefix = "/"
	cfg.Management.MaxPayload = 0
	cfg.SignedInterest.AcceptLegacy = false
	cfg.SignedInterest.LegacyModules = []string{"fib"}
	cfg.Authorizations = []Authorization{{Privileges: nil}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted an invalid configuration")
	}
	for _, fragment := range []string{
		"invalid environment",
		"top_prefix",
		"max_payload",
		"legacy_modules",
		"identity or key_file",
		"privileges must not be empty",
	} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error does not mention %q: %v", fragment, err)
		}
	}
}
