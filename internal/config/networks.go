// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/dotandev/tranche/internal/rpc"
)

// NetworkConfig returns the network preset with any configured endpoint or
// passphrase overrides applied.
func (c *Config) NetworkConfig() rpc.NetworkConfig {
	net := rpc.ConfigFor(c.Network)
	if c.RPCURL != "" {
		net.SorobanRPCURL = c.RPCURL
	}
	if c.HorizonURL != "" {
		net.HorizonURL = c.HorizonURL
	}
	if c.NetworkPassphrase != "" {
		net.NetworkPassphrase = c.NetworkPassphrase
	}
	return net
}

// ClientOptions maps the config onto rpc client options. Unset overrides
// leave the network preset in place.
func (c *Config) ClientOptions(extra ...rpc.ClientOption) []rpc.ClientOption {
	opts := []rpc.ClientOption{rpc.WithNetwork(c.Network)}
	if c.RPCURL != "" {
		opts = append(opts, rpc.WithSorobanURL(c.RPCURL))
	}
	if c.HorizonURL != "" {
		opts = append(opts, rpc.WithHorizonURL(c.HorizonURL))
	}
	if c.NetworkPassphrase != "" {
		opts = append(opts, rpc.WithNetworkPassphrase(c.NetworkPassphrase))
	}
	if c.RPCToken != "" {
		opts = append(opts, rpc.WithToken(c.RPCToken))
	}
	return append(opts, extra...)
}
