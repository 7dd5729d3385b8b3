// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the management daemon's configuration.
//
// Configuration comes from a single file named by either the
// NFDMGMT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no environment override
// of individual values; the only expansion is ${VAR} and
// ${VAR:-default} in path fields.
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas allowed. Anything else is YAML.
//
// The file may contain development and production sections that
// override base values when [Config].Environment matches. Production
// is stricter by default: legacy signed Interests are refused unless
// the production section explicitly accepts them.
//
// This package depends on no other packages of this module.
package config
