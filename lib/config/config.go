// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file for Load.
const EnvironmentVariable = "NFDMGMT_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the daemon configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Management     ManagementConfig     `yaml:"management"`
	SignedInterest SignedInterestConfig `yaml:"signed_interest"`

	// Authorizations grant command privileges to signers.
	Authorizations []Authorization `yaml:"authorizations"`

	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// ManagementConfig configures the command dispatcher and its
// transport.
type ManagementConfig struct {
	// TopPrefix is the name prefix commands are addressed under.
	// Default: /localhost/nfd
	TopPrefix string `yaml:"top_prefix"`

	// SocketPath is the Unix socket the daemon listens on.
	// Default: /run/nfdmgmt/nfd.sock
	SocketPath string `yaml:"socket_path"`

	// MaxPayload is the largest response content carried in one Data
	// packet before segmentation. Default: 4400
	MaxPayload int `yaml:"max_payload"`

	// ResponseFreshness is the FreshnessPeriod of response Data.
	// Default: 1s
	ResponseFreshness time.Duration `yaml:"response_freshness"`

	// Identity is the name responses are signed as.
	// Default: /localhost/nfd
	Identity string `yaml:"identity"`

	// IdentityKey is the key file responses are signed with; it is
	// created on first start. Empty means DigestSha256 responses.
	IdentityKey string `yaml:"identity_key"`
}

// SignedInterestConfig configures command signature acceptance.
type SignedInterestConfig struct {
	// AcceptLegacy allows the legacy name-embedded signature format.
	AcceptLegacy bool `yaml:"accept_legacy"`

	// LegacyModules restricts legacy acceptance to these modules.
	// Empty means every module when AcceptLegacy is set.
	LegacyModules []string `yaml:"legacy_modules"`

	// GracePeriod bounds command timestamp skew. Default: 2m
	GracePeriod time.Duration `yaml:"grace_period"`

	// MaxRecords bounds the number of signers whose last timestamp is
	// remembered. Default: 1000
	MaxRecords int `yaml:"max_records"`

	// RecordLifetime is how long a signer's last timestamp is
	// remembered. Default: 1h
	RecordLifetime time.Duration `yaml:"record_lifetime"`
}

// Authorization grants privileges to one signer. Either KeyFile, a
// public key file whose identity is trusted, or Identity must be set;
// Identity "any" grants the privileges to every verified signer.
type Authorization struct {
	Identity   string   `yaml:"identity"`
	KeyFile    string   `yaml:"key_file"`
	Privileges []string `yaml:"privileges"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	Management     *ManagementConfig        `yaml:"management,omitempty"`
	SignedInterest *SignedInterestOverrides `yaml:"signed_interest,omitempty"`
}

// SignedInterestOverrides are the signed_interest fields an
// environment section may override.
type SignedInterestOverrides struct {
	AcceptLegacy  *bool    `yaml:"accept_legacy,omitempty"`
	LegacyModules []string `yaml:"legacy_modules,omitempty"`
}

// Default returns the configuration values used before the file is
// applied.
func Default() *Config {
	return &Config{
		Environment: Development,
		Management: ManagementConfig{
			TopPrefix:         "/localhost/nfd",
			SocketPath:        "/run/nfdmgmt/nfd.sock",
			MaxPayload:        4400,
			ResponseFreshness: time.Second,
			Identity:          "/localhost/nfd",
		},
		SignedInterest: SignedInterestConfig{
			AcceptLegacy:   true,
			GracePeriod:    2 * time.Minute,
			MaxRecords:     1000,
			RecordLifetime: time.Hour,
		},
	}
}

// Load loads configuration from the file named by NFDMGMT_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your configuration file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path. The result has not been
// validated; call Validate.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.parse(data, filepath.Ext(path))
}

// parse applies configuration data to c. extension selects the
// syntax: ".json" and ".jsonc" are JSON with comments, anything else
// is YAML.
func (c *Config) parse(data []byte, extension string) error {
	switch strings.ToLower(extension) {
	case ".json", ".jsonc":
		// Plain JSON is valid YAML once comments are gone.
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing configuration: %w", err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production refuses legacy signatures unless its own
		// section says otherwise.
		if overrides == nil || overrides.SignedInterest == nil || overrides.SignedInterest.AcceptLegacy == nil {
			c.SignedInterest.AcceptLegacy = false
		}
	}
	if overrides == nil {
		return
	}

	if m := overrides.Management; m != nil {
		if m.TopPrefix != "" {
			c.Management.TopPrefix = m.TopPrefix
		}
		if m.SocketPath != "" {
			c.Management.SocketPath = m.SocketPath
		}
		if m.MaxPayload != 0 {
			c.Management.MaxPayload = m.MaxPayload
		}
		if m.ResponseFreshness != 0 {
			c.Management.ResponseFreshness = m.ResponseFreshness
		}
		if m.Identity != "" {
			c.Management.Identity = m.Identity
		}
		if m.IdentityKey != "" {
			c.Management.IdentityKey = m.IdentityKey
		}
	}
	if s := overrides.SignedInterest; s != nil {
		if s.AcceptLegacy != nil {
			c.SignedInterest.AcceptLegacy = *s.AcceptLegacy
		}
		if s.LegacyModules != nil {
			c.SignedInterest.LegacyModules = s.LegacyModules
		}
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{"HOME": os.Getenv("HOME")}
	c.Management.SocketPath = expandVars(c.Management.SocketPath, vars)
	c.Management.IdentityKey = expandVars(c.Management.IdentityKey, vars)
	for i := range c.Authorizations {
		c.Authorizations[i].KeyFile = expandVars(c.Authorizations[i].KeyFile, vars)
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}

	m := c.Management
	if !strings.HasPrefix(m.TopPrefix, "/") || m.TopPrefix == "/" {
		errs = append(errs, fmt.Errorf("management.top_prefix must be a non-root name, got %q", m.TopPrefix))
	}
	if m.SocketPath == "" {
		errs = append(errs, errors.New("management.socket_path is required"))
	}
	if m.MaxPayload <= 0 || m.MaxPayload > 8800 {
		errs = append(errs, fmt.Errorf("management.max_payload must be in 1..8800, got %d", m.MaxPayload))
	}
	if m.ResponseFreshness < 0 {
		errs = append(errs, fmt.Errorf("management.response_freshness must not be negative, got %v", m.ResponseFreshness))
	}
	if !strings.HasPrefix(m.Identity, "/") {
		errs = append(errs, fmt.Errorf("management.identity must be a name, got %q", m.Identity))
	}

	s := c.SignedInterest
	if s.GracePeriod <= 0 {
		errs = append(errs, fmt.Errorf("signed_interest.grace_period must be positive, got %v", s.GracePeriod))
	}
	if s.MaxRecords <= 0 {
		errs = append(errs, fmt.Errorf("signed_interest.max_records must be positive, got %d", s.MaxRecords))
	}
	if s.RecordLifetime <= 0 {
		errs = append(errs, fmt.Errorf("signed_interest.record_lifetime must be positive, got %v", s.RecordLifetime))
	}
	if len(s.LegacyModules) > 0 && !s.AcceptLegacy {
		errs = append(errs, errors.New("signed_interest.legacy_modules is set but accept_legacy is false"))
	}

	for i, authorization := range c.Authorizations {
		if authorization.KeyFile == "" && authorization.Identity == "" {
			errs = append(errs, fmt.Errorf("authorizations[%d]: identity or key_file is required", i))
		}
		if len(authorization.Privileges) == 0 {
			errs = append(errs, fmt.Errorf("authorizations[%d]: privileges must not be empty", i))
		}
	}

	return errors.Join(errs...)
}
