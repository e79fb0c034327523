// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/dotandev/tranche/internal/tranche"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tranche.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, rpc.Testnet, cfg.Network)
	assert.Equal(t, tranche.DefaultTrancheContract, cfg.Contracts.Tranche)
	assert.Equal(t, tranche.DefaultPoolContract, cfg.Contracts.Pool)
	assert.Equal(t, tranche.DefaultTokenContract, cfg.Contracts.Token)
	assert.Equal(t, tranche.PolicyPoolSupply, cfg.Policy())
	assert.Equal(t, 30*time.Second, cfg.TxTimeout)
	require.NoError(t, cfg.Validate())

	// copies are independent
	cfg.Network = rpc.Mainnet
	assert.Equal(t, rpc.Testnet, DefaultConfig().Network)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
network = "futurenet"
rpc_url = "https://rpc.example.com"
invest_policy = "tranche-subscribe"
log_level = "debug"
fee_ceiling = 250000
tx_timeout = "45s"

[contracts]
rwa_token = "CBIELTK6YBZJU5UP2WWQEUCYKLPU6AUNZ2BQ4WWFEIE3USCIHMXQDAMA"

[daemon]
addr = "127.0.0.1:9999"
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, rpc.Futurenet, cfg.Network)
	assert.Equal(t, "https://rpc.example.com", cfg.RPCURL)
	assert.Equal(t, tranche.PolicyTrancheSubscribe, cfg.Policy())
	assert.Equal(t, int64(250000), cfg.FeeCeiling)
	assert.Equal(t, 45*time.Second, cfg.TxTimeout)
	assert.Equal(t, "127.0.0.1:9999", cfg.Daemon.Addr)
	// unset keys keep their defaults
	assert.Equal(t, tranche.DefaultTrancheContract, cfg.Contracts.Tranche)
	assert.NotEmpty(t, cfg.TrancheContracts().RWAToken)
}

func TestLoadFromUnknownKey(t *testing.T) {
	path := writeConfig(t, `netwrok = "testnet"`)

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfig)
	assert.Contains(t, err.Error(), "netwrok")
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := writeConfig(t, `network = `)

	_, err := LoadFrom(path)
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `network = "futurenet"`)

	t.Setenv("TRANCHE_NETWORK", "MAINNET")
	t.Setenv("TRANCHE_DEBUG", "yes")
	t.Setenv("TRANCHE_FEE_CEILING", "5000")
	t.Setenv("TRANCHE_TX_TIMEOUT", "2m")
	t.Setenv("TRANCHE_INVEST_POLICY", "tranche-subscribe")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, rpc.Mainnet, cfg.Network)
	assert.True(t, cfg.Debug)
	assert.Equal(t, int64(5000), cfg.FeeCeiling)
	assert.Equal(t, 2*time.Minute, cfg.TxTimeout)
	assert.Equal(t, tranche.PolicyTrancheSubscribe, cfg.Policy())
}

func TestEnvParseErrors(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"TRANCHE_DEBUG", "maybe"},
		{"TRANCHE_OTEL_ENABLED", "2"},
		{"TRANCHE_FEE_CEILING", "lots"},
		{"TRANCHE_TX_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			path := writeConfig(t, "")
			t.Setenv(tt.key, tt.value)

			_, err := LoadFrom(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrConfig)
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `invest_policy = "yolo"`)

	_, err := LoadFrom(path)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestString(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.String()
	assert.Contains(t, s, "testnet")
	assert.Contains(t, s, cfg.Contracts.Tranche)
}
