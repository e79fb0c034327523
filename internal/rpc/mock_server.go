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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockServer provides a mock HTTP server for testing Soroban RPC and Horizon
// endpoints. JSON-RPC requests (POST /) are routed by method name; every
// other request is routed by its request URI.
type MockServer struct {
	server    *httptest.Server
	routes    map[string]MockRoute
	methods   map[string]MockRoute
	mu        sync.RWMutex
	callCount map[string]int
	lastBody  map[string]json.RawMessage
}

// MockRoute defines the response configuration for an endpoint or method.
// RPCError, when set on a method route, is returned as the JSON-RPC error
// object instead of Body.
type MockRoute struct {
	StatusCode int
	Body       interface{}
	Headers    map[string]string
	RPCError   *RPCError
}

// NewMockServer creates a new mock server with the given path routes
func NewMockServer(routes map[string]MockRoute) *MockServer {
	ms := &MockServer{
		routes:    make(map[string]MockRoute),
		methods:   make(map[string]MockRoute),
		callCount: make(map[string]int),
		lastBody:  make(map[string]json.RawMessage),
	}

	for path, route := range routes {
		ms.routes[path] = route
	}

	ms.server = httptest.NewServer(http.HandlerFunc(ms.handleRequest))

	return ms
}

func (ms *MockServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodPost && (r.URL.Path == "/" || r.URL.Path == "") {
		ms.handleJSONRPC(w, r)
		return
	}

	ms.mu.Lock()
	ms.callCount[r.RequestURI]++
	route, exists := ms.routes[r.RequestURI]
	ms.mu.Unlock()

	if !exists {
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"type":   "https://stellar.org/horizon-errors/not_found",
			"title":  "Resource Missing",
			"status": http.StatusNotFound,
			"detail": fmt.Sprintf("endpoint not found: %s", r.RequestURI),
		}); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
		return
	}

	ms.writeRoute(w, route, route.Body)
}

func (ms *MockServer) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req struct {
		ID     int64           `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ms.mu.Lock()
	ms.callCount[req.Method]++
	ms.lastBody[req.Method] = req.Params
	route, exists := ms.methods[req.Method]
	ms.mu.Unlock()

	if !exists {
		route = MockRoute{RPCError: &RPCError{Code: -32601, Message: "method not found: " + req.Method}}
	}

	envelope := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if route.RPCError != nil {
		envelope["error"] = route.RPCError
	} else {
		envelope["result"] = route.Body
	}
	ms.writeRoute(w, route, envelope)
}

func (ms *MockServer) writeRoute(w http.ResponseWriter, route MockRoute, body interface{}) {
	for key, value := range route.Headers {
		w.Header().Set(key, value)
	}

	status := route.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

// URL returns the base URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close stops the mock server
func (ms *MockServer) Close() {
	if ms.server != nil {
		ms.server.Close()
	}
}

// AddRoute adds or updates a path route in the running server
func (ms *MockServer) AddRoute(path string, route MockRoute) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.routes[path] = route
}

// AddMethod adds or updates a JSON-RPC method route in the running server
func (ms *MockServer) AddMethod(method string, route MockRoute) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.methods[method] = route
}

// RemoveMethod removes a JSON-RPC method route
func (ms *MockServer) RemoveMethod(method string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.methods, method)
}

// CallCount returns the number of times a path or JSON-RPC method was called
func (ms *MockServer) CallCount(key string) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.callCount[key]
}

// LastParams returns the raw params of the most recent call to method
func (ms *MockServer) LastParams(method string) json.RawMessage {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.lastBody[method]
}

// ResetCallCounts resets all call counts
func (ms *MockServer) ResetCallCounts() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.callCount = make(map[string]int)
}

// ErrorRoute creates a route that answers with a bare HTTP error
func ErrorRoute(statusCode int, detail string) MockRoute {
	return MockRoute{
		StatusCode: statusCode,
		Body: map[string]interface{}{
			"title":  http.StatusText(statusCode),
			"status": statusCode,
			"detail": detail,
		},
	}
}

// RPCErrorRoute creates a method route that answers with a JSON-RPC error
func RPCErrorRoute(code int, message string) MockRoute {
	return MockRoute{RPCError: &RPCError{Code: code, Message: message}}
}

// SuccessRoute creates a route with a successful response
func SuccessRoute(body interface{}) MockRoute {
	return MockRoute{
		StatusCode: http.StatusOK,
		Body:       body,
	}
}

// MockAccountResponse is the subset of a Horizon account resource the
// client reads.
type MockAccountResponse struct {
	ID        string                `json:"id"`
	AccountID string                `json:"account_id"`
	Sequence  string                `json:"sequence"`
	Balances  []MockBalanceResponse `json:"balances"`
}

type MockBalanceResponse struct {
	Balance   string `json:"balance"`
	AssetType string `json:"asset_type"`
	AssetCode string `json:"asset_code,omitempty"`
}

// AccountRoute builds the Horizon route for an account holding the given
// native balance.
func AccountRoute(address, nativeBalance string) (string, MockRoute) {
	return "/accounts/" + address, SuccessRoute(MockAccountResponse{
		ID:        address,
		AccountID: address,
		Sequence:  "1",
		Balances:  []MockBalanceResponse{{Balance: nativeBalance, AssetType: "native"}},
	})
}
