// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/dotandev/tranche/internal/tranche"
)

// ContractsConfig names the contract deployments.
type ContractsConfig struct {
	Tranche  string `toml:"tranche"`
	Pool     string `toml:"pool"`
	Token    string `toml:"token"`
	RWAToken string `toml:"rwa_token"`
}

// DaemonConfig controls the local JSON-RPC server.
type DaemonConfig struct {
	Addr  string `toml:"addr"`
	Token string `toml:"token"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

// Config is the full runtime configuration. Values are resolved from
// defaults, then the first config file found, then TRANCHE_* variables.
type Config struct {
	RPCURL            string          `toml:"rpc_url"`
	HorizonURL        string          `toml:"horizon_url"`
	Network           rpc.Network     `toml:"network"`
	NetworkPassphrase string          `toml:"network_passphrase"`
	RPCToken          string          `toml:"rpc_token"`
	Contracts         ContractsConfig `toml:"contracts"`
	InvestPolicy      string          `toml:"invest_policy"`
	Debug             bool            `toml:"debug"`
	LogLevel          string          `toml:"log_level"`
	LogFile           string          `toml:"log_file"`
	FeeCeiling        int64           `toml:"fee_ceiling"`
	TxTimeout         time.Duration   `toml:"tx_timeout"`
	Daemon            DaemonConfig    `toml:"daemon"`
	Telemetry         TelemetryConfig `toml:"telemetry"`

	// Source is the file the config was read from, empty if none.
	Source string `toml:"-"`
}

var defaultConfig = Config{
	Network: rpc.Testnet,
	Contracts: ContractsConfig{
		Tranche: tranche.DefaultTrancheContract,
		Pool:    tranche.DefaultPoolContract,
		Token:   tranche.DefaultTokenContract,
	},
	InvestPolicy: string(tranche.PolicyPoolSupply),
	LogLevel:     "info",
	FeeCeiling:   100000,
	TxTimeout:    30 * time.Second,
	Daemon: DaemonConfig{
		Addr: "127.0.0.1:8787",
	},
	Telemetry: TelemetryConfig{
		Endpoint: "http://localhost:4318",
	},
}

// DefaultConfig returns a fresh copy of the built-in defaults.
func DefaultConfig() *Config {
	cfg := defaultConfig
	return &cfg
}

// SearchPaths lists the config files Load considers, first match wins.
func SearchPaths() []string {
	paths := []string{".tranche.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".tranche.toml"))
	}
	return append(paths, "/etc/tranche/config.toml")
}

// Load resolves the configuration from the default search paths.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom resolves the configuration using path as the config file. An
// empty path searches SearchPaths; an explicit path must exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadTOML(path); err != nil {
			return nil, err
		}
	} else if err := cfg.loadFromFile(); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile() error {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return c.loadTOML(path)
	}
	return nil
}

func (c *Config) loadTOML(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.WrapConfigError("failed to parse "+path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return errors.WrapConfigError(fmt.Sprintf("unknown keys in %s: %s", path, strings.Join(keys, ", ")), nil)
	}
	c.Source = path
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.RPCURL, "TRANCHE_RPC_URL")
	setString(&c.HorizonURL, "TRANCHE_HORIZON_URL")
	setString(&c.NetworkPassphrase, "TRANCHE_NETWORK_PASSPHRASE")
	setString(&c.RPCToken, "TRANCHE_RPC_TOKEN")
	setString(&c.Contracts.Tranche, "TRANCHE_CONTRACT_ID")
	setString(&c.Contracts.Pool, "TRANCHE_POOL_CONTRACT_ID")
	setString(&c.Contracts.Token, "TRANCHE_TOKEN_CONTRACT_ID")
	setString(&c.Contracts.RWAToken, "TRANCHE_RWA_TOKEN_ID")
	setString(&c.InvestPolicy, "TRANCHE_INVEST_POLICY")
	setString(&c.LogLevel, "TRANCHE_LOG_LEVEL")
	setString(&c.LogFile, "TRANCHE_LOG_FILE")
	setString(&c.Daemon.Addr, "TRANCHE_DAEMON_ADDR")
	setString(&c.Daemon.Token, "TRANCHE_DAEMON_TOKEN")
	setString(&c.Telemetry.Endpoint, "TRANCHE_OTEL_ENDPOINT")

	if v := os.Getenv("TRANCHE_NETWORK"); v != "" {
		c.Network = rpc.Network(strings.ToLower(v))
	}

	if err := setBool(&c.Debug, "TRANCHE_DEBUG"); err != nil {
		return err
	}
	if err := setBool(&c.Telemetry.Enabled, "TRANCHE_OTEL_ENABLED"); err != nil {
		return err
	}

	if v := os.Getenv("TRANCHE_FEE_CEILING"); v != "" {
		fee, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.WrapConfigError("TRANCHE_FEE_CEILING must be an integer", err)
		}
		c.FeeCeiling = fee
	}
	if v := os.Getenv("TRANCHE_TX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.WrapConfigError("TRANCHE_TX_TIMEOUT must be a duration", err)
		}
		c.TxTimeout = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return errors.WrapConfigError(key+" must be a boolean", nil)
	}
	return nil
}

// Validate runs the default validators.
func (c *Config) Validate() error {
	return RunValidators(c, DefaultValidators())
}

// Policy returns the parsed invest policy.
func (c *Config) Policy() tranche.InvestPolicy {
	p, err := tranche.ParseInvestPolicy(c.InvestPolicy)
	if err != nil {
		return tranche.PolicyPoolSupply
	}
	return p
}

// TrancheContracts converts the contract section for the service.
func (c *Config) TrancheContracts() tranche.Contracts {
	return tranche.Contracts{
		Tranche:  c.Contracts.Tranche,
		Pool:     c.Contracts.Pool,
		Token:    c.Contracts.Token,
		RWAToken: c.Contracts.RWAToken,
	}
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Network: %s, RPC: %s, Horizon: %s, Tranche: %s, Pool: %s, Policy: %s, LogLevel: %s}",
		c.Network, c.RPCURL, c.HorizonURL, c.Contracts.Tranche, c.Contracts.Pool, c.InvestPolicy, c.LogLevel,
	)
}
