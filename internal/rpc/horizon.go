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
	"context"
	"fmt"

	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/telemetry"
	"github.com/stellar/go/clients/horizonclient"
	"go.opentelemetry.io/otel/attribute"
)

// NativeBalance returns the XLM balance of an account as reported by Horizon.
// An account without a native balance line reports "0".
func (c *Client) NativeBalance(ctx context.Context, address string) (string, error) {
	tracer := telemetry.GetTracer()
	_, span := tracer.Start(ctx, "horizon_native_balance")
	span.SetAttributes(
		attribute.String("account", address),
		attribute.String("network", string(c.Network)),
	)
	defer span.End()

	account, err := c.Horizon.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		span.RecordError(err)
		return "", c.handleHorizonError(err, address)
	}

	for _, b := range account.Balances {
		if b.Asset.Type == "native" {
			span.SetAttributes(attribute.String("balance.native", b.Balance))
			return b.Balance, nil
		}
	}
	return "0", nil
}

// handleHorizonError provides detailed error messages for account fetch failures
func (c *Client) handleHorizonError(err error, address string) error {
	if hErr, ok := err.(*horizonclient.Error); ok {
		switch hErr.Problem.Status {
		case 404:
			logger.Logger.Warn("Account not found", "account", address, "status", 404)
			return &AccountNotFoundError{Address: address}
		case 429:
			logger.Logger.Warn("Rate limit exceeded", "account", address, "status", 429)
			return &RateLimitError{Message: "rate limit exceeded, please try again later"}
		default:
			logger.Logger.Error("Horizon error", "account", address, "status", hErr.Problem.Status, "detail", hErr.Problem.Detail)
			return fmt.Errorf("horizon error (status %d): %v", hErr.Problem.Status, hErr.Problem.Detail)
		}
	}

	logger.Logger.Error("Failed to fetch account", "account", address, "error", err)
	return fmt.Errorf("failed to fetch account %s: %w", address, err)
}

// RateLimitError indicates that too many requests have been made
// and the client should back off.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// IsRateLimitError checks if error is a rate limit error
func IsRateLimitError(err error) bool {
	_, ok := err.(*RateLimitError)
	return ok
}
