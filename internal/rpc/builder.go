// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"fmt"
	"net/http"
	"os"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/stellar/go/clients/horizonclient"
)

type ClientOption func(*clientBuilder) error

type clientBuilder struct {
	network    Network
	token      string
	horizonURL string
	sorobanURL string
	passphrase string
	config     *NetworkConfig
	httpClient *http.Client
	telemetry  MethodTelemetry
}

func newBuilder() *clientBuilder {
	return &clientBuilder{
		network: Testnet,
	}
}

func WithNetwork(net Network) ClientOption {
	return func(b *clientBuilder) error {
		if net == "" {
			net = Testnet
		}
		b.network = net
		return nil
	}
}

func WithToken(token string) ClientOption {
	return func(b *clientBuilder) error {
		b.token = token
		return nil
	}
}

func WithHorizonURL(url string) ClientOption {
	return func(b *clientBuilder) error {
		if url != "" {
			if err := isValidURL(url); err != nil {
				return errors.WrapValidationError(fmt.Sprintf("invalid HorizonURL: %v", err))
			}
		}
		b.horizonURL = url
		return nil
	}
}

func WithSorobanURL(url string) ClientOption {
	return func(b *clientBuilder) error {
		if url != "" {
			if err := isValidURL(url); err != nil {
				return errors.WrapValidationError(fmt.Sprintf("invalid SorobanURL: %v", err))
			}
		}
		b.sorobanURL = url
		return nil
	}
}

// WithNetworkPassphrase overrides the passphrase of the selected preset.
func WithNetworkPassphrase(passphrase string) ClientOption {
	return func(b *clientBuilder) error {
		b.passphrase = passphrase
		return nil
	}
}

func WithNetworkConfig(cfg NetworkConfig) ClientOption {
	return func(b *clientBuilder) error {
		if err := ValidateNetworkConfig(cfg); err != nil {
			return errors.WrapValidationError(fmt.Sprintf("invalid network config: %v", err))
		}
		b.config = &cfg
		b.network = Network(cfg.Name)
		b.horizonURL = cfg.HorizonURL
		b.sorobanURL = cfg.SorobanRPCURL
		return nil
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(b *clientBuilder) error {
		b.httpClient = client
		return nil
	}
}

// WithMethodTelemetry installs a timer around every JSON-RPC call.
func WithMethodTelemetry(t MethodTelemetry) ClientOption {
	return func(b *clientBuilder) error {
		b.telemetry = t
		return nil
	}
}

func NewClient(opts ...ClientOption) (*Client, error) {
	builder := newBuilder()
	builder.token = os.Getenv("TRANCHE_RPC_TOKEN")

	for _, opt := range opts {
		if err := opt(builder); err != nil {
			return nil, err
		}
	}

	return builder.build()
}

func (b *clientBuilder) build() (*Client, error) {
	if b.config == nil {
		cfg := ConfigFor(b.network)
		b.config = &cfg
	}
	if b.sorobanURL == "" {
		b.sorobanURL = b.config.SorobanRPCURL
	}
	if b.horizonURL == "" {
		b.horizonURL = b.config.HorizonURL
	}
	if b.passphrase != "" {
		b.config.NetworkPassphrase = b.passphrase
	}
	b.config.SorobanRPCURL = b.sorobanURL
	b.config.HorizonURL = b.horizonURL

	if b.httpClient == nil {
		b.httpClient = createHTTPClient(b.token)
	}
	if b.telemetry == nil {
		b.telemetry = defaultMethodTelemetry()
	}

	if b.token != "" {
		logger.Logger.Debug("RPC client initialized with authentication", "network", b.network)
	} else {
		logger.Logger.Debug("RPC client initialized without authentication", "network", b.network)
	}

	return &Client{
		Horizon: &horizonclient.Client{
			HorizonURL: b.horizonURL,
			HTTP:       b.httpClient,
		},
		HorizonURL: b.horizonURL,
		Network:    b.network,
		SorobanURL: b.sorobanURL,
		Config:     *b.config,
		token:      b.token,
		httpClient: b.httpClient,
		telemetry:  b.telemetry,
	}, nil
}
