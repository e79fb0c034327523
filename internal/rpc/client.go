// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/network"
)

// Network types for Stellar
type Network string

const (
	Testnet    Network = "testnet"
	Mainnet    Network = "mainnet"
	Futurenet  Network = "futurenet"
	Standalone Network = "standalone"
)

// Horizon URLs for each network
const (
	TestnetHorizonURL    = "https://horizon-testnet.stellar.org/"
	MainnetHorizonURL    = "https://horizon.stellar.org/"
	FuturenetHorizonURL  = "https://horizon-futurenet.stellar.org/"
	StandaloneHorizonURL = "http://localhost:8000/"
)

// Soroban RPC URLs
const (
	TestnetSorobanURL    = "https://soroban-testnet.stellar.org"
	MainnetSorobanURL    = "https://mainnet.sorobanrpc.com"
	FuturenetSorobanURL  = "https://rpc-futurenet.stellar.org"
	StandaloneSorobanURL = "http://localhost:8000/soroban/rpc"
)

const defaultRequestTimeout = 30 * time.Second

// StandalonePassphrase is the passphrase of a local quickstart network.
const StandalonePassphrase = "Standalone Network ; February 2017"

// authTransport is a custom HTTP RoundTripper that adds authentication headers
type authTransport struct {
	token     string
	transport http.RoundTripper
}

// RoundTrip implements http.RoundTripper interface
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.transport.RoundTrip(req)
}

// NetworkConfig represents a Stellar network configuration
type NetworkConfig struct {
	Name              string
	HorizonURL        string
	NetworkPassphrase string
	SorobanRPCURL     string
}

// Predefined network configurations
var (
	TestnetConfig = NetworkConfig{
		Name:              string(Testnet),
		HorizonURL:        TestnetHorizonURL,
		NetworkPassphrase: network.TestNetworkPassphrase,
		SorobanRPCURL:     TestnetSorobanURL,
	}

	MainnetConfig = NetworkConfig{
		Name:              string(Mainnet),
		HorizonURL:        MainnetHorizonURL,
		NetworkPassphrase: network.PublicNetworkPassphrase,
		SorobanRPCURL:     MainnetSorobanURL,
	}

	FuturenetConfig = NetworkConfig{
		Name:              string(Futurenet),
		HorizonURL:        FuturenetHorizonURL,
		NetworkPassphrase: network.FutureNetworkPassphrase,
		SorobanRPCURL:     FuturenetSorobanURL,
	}

	StandaloneConfig = NetworkConfig{
		Name:              string(Standalone),
		HorizonURL:        StandaloneHorizonURL,
		NetworkPassphrase: StandalonePassphrase,
		SorobanRPCURL:     StandaloneSorobanURL,
	}
)

// ConfigFor returns the preset for a named network. Unknown names fall back
// to testnet.
func ConfigFor(net Network) NetworkConfig {
	switch net {
	case Mainnet, "public":
		return MainnetConfig
	case Futurenet:
		return FuturenetConfig
	case Standalone:
		return StandaloneConfig
	default:
		return TestnetConfig
	}
}

// Client talks to a Soroban RPC endpoint over JSON-RPC 2.0 and to Horizon
// for account balances.
type Client struct {
	Horizon    horizonclient.ClientInterface
	HorizonURL string
	Network    Network
	SorobanURL string
	Config     NetworkConfig

	token      string // stored for reference, not logged
	httpClient *http.Client
	telemetry  MethodTelemetry
	requestID  atomic.Int64
}

// createHTTPClient creates an HTTP client with optional authentication
func createHTTPClient(token string) *http.Client {
	if token == "" {
		return &http.Client{Timeout: defaultRequestTimeout}
	}

	return &http.Client{
		Timeout: defaultRequestTimeout,
		Transport: &authTransport{
			token:     token,
			transport: http.DefaultTransport,
		},
	}
}

// GetNetworkPassphrase returns the network passphrase for this client
func (c *Client) GetNetworkPassphrase() string {
	return c.Config.NetworkPassphrase
}

// GetNetworkName returns the network name for this client
func (c *Client) GetNetworkName() string {
	if c.Config.Name != "" {
		return c.Config.Name
	}
	return "custom"
}

type jsonRPCRequest struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error object returned by the Soroban RPC server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error: %s (code %d)", e.Message, e.Code)
}

// HTTPError reports a non-2xx response from the RPC endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("rpc endpoint returned HTTP %d: %s", e.StatusCode, e.Body)
}

// call performs one JSON-RPC round trip and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) (err error) {
	timer := c.telemetry.StartMethodTimer(ctx, method, map[string]string{"network": c.GetNetworkName()})
	defer func() { timer.Stop(err) }()

	reqBody := jsonRPCRequest{
		Jsonrpc: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return errors.WrapMarshalFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SorobanURL, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WrapRPCConnectionFailed(err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapRPCConnectionFailed(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.WrapRPCConnectionFailed(&HTTPError{StatusCode: resp.StatusCode, Body: string(respBytes)})
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(respBytes, &rpcResp); err != nil {
		return errors.WrapUnmarshalFailed(err, string(respBytes))
	}

	if rpcResp.Error != nil {
		logger.Logger.Warn("RPC call returned error", "method", method, "code", rpcResp.Error.Code, "message", rpcResp.Error.Message)
		return rpcResp.Error
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return errors.WrapUnmarshalFailed(err, string(rpcResp.Result))
	}
	return nil
}
