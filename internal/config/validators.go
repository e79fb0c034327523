// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/dotandev/tranche/internal/tranche"
	"github.com/stellar/go/strkey"
)

// Validator validates a specific aspect of the configuration.
type Validator interface {
	Validate(cfg *Config) error
}

var validNetworks = map[rpc.Network]bool{
	rpc.Testnet:    true,
	rpc.Mainnet:    true,
	rpc.Futurenet:  true,
	rpc.Standalone: true,
	"public":       true,
}

// NetworkValidator checks that the configured network is recognized.
type NetworkValidator struct{}

func (v NetworkValidator) Validate(cfg *Config) error {
	if cfg.Network != "" && !validNetworks[cfg.Network] {
		return errors.WrapInvalidNetwork(string(cfg.Network))
	}
	return nil
}

// EndpointValidator checks the RPC and Horizon URLs when they are set.
type EndpointValidator struct{}

func (v EndpointValidator) Validate(cfg *Config) error {
	for name, u := range map[string]string{
		"rpc_url":     cfg.RPCURL,
		"horizon_url": cfg.HorizonURL,
	} {
		if u == "" {
			continue
		}
		if err := rpc.ValidateURL(u); err != nil {
			return errors.WrapValidationError(fmt.Sprintf("%s: %v", name, err))
		}
	}
	return nil
}

// ContractValidator checks that every configured contract is a C... strkey.
type ContractValidator struct{}

func (v ContractValidator) Validate(cfg *Config) error {
	fields := []struct {
		name  string
		value string
		need  bool
	}{
		{"contracts.tranche", cfg.Contracts.Tranche, true},
		{"contracts.pool", cfg.Contracts.Pool, true},
		{"contracts.token", cfg.Contracts.Token, true},
		{"contracts.rwa_token", cfg.Contracts.RWAToken, false},
	}
	for _, f := range fields {
		if f.value == "" {
			if f.need {
				return errors.WrapValidationError(f.name + " cannot be empty")
			}
			continue
		}
		if _, err := strkey.Decode(strkey.VersionByteContract, f.value); err != nil {
			return errors.WrapValidationError(fmt.Sprintf("%s is not a contract id: %s", f.name, f.value))
		}
	}
	return nil
}

// PolicyValidator checks the invest policy name.
type PolicyValidator struct{}

func (v PolicyValidator) Validate(cfg *Config) error {
	_, err := tranche.ParseInvestPolicy(cfg.InvestPolicy)
	return err
}

// LogLevelValidator checks that the log level is a known value.
type LogLevelValidator struct{}

func (v LogLevelValidator) Validate(cfg *Config) error {
	if cfg.LogLevel == "" {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "trace", "info", "warn", "warning", "error":
	default:
		return errors.WrapValidationError("log_level must be one of: debug, info, warn, error")
	}
	return nil
}

// LimitsValidator checks fee and timeout bounds.
type LimitsValidator struct{}

func (v LimitsValidator) Validate(cfg *Config) error {
	if cfg.FeeCeiling < 100 {
		return errors.WrapValidationError("fee_ceiling must be at least 100 stroops")
	}
	if cfg.TxTimeout <= 0 {
		return errors.WrapValidationError("tx_timeout must be positive")
	}
	return nil
}

// DaemonValidator requires a listen address and refuses to expose an
// unauthenticated daemon beyond loopback.
type DaemonValidator struct{}

func (v DaemonValidator) Validate(cfg *Config) error {
	addr := strings.TrimSpace(cfg.Daemon.Addr)
	if addr == "" {
		return errors.WrapValidationError("daemon.addr cannot be empty")
	}
	if cfg.Daemon.Token == "" && !isLoopback(addr) {
		return errors.WrapValidationError("daemon.token is required when daemon.addr is not loopback")
	}
	return nil
}

func isLoopback(addr string) bool {
	return strings.HasPrefix(addr, "127.") || strings.HasPrefix(addr, "localhost:") || strings.HasPrefix(addr, "[::1]:")
}

// DefaultValidators returns the standard set of validators.
func DefaultValidators() []Validator {
	return []Validator{
		NetworkValidator{},
		EndpointValidator{},
		ContractValidator{},
		PolicyValidator{},
		LogLevelValidator{},
		LimitsValidator{},
		DaemonValidator{},
	}
}

// RunValidators executes each validator against the config, returning the
// first error encountered.
func RunValidators(cfg *Config, validators []Validator) error {
	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}
