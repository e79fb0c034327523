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

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/telemetry"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"go.opentelemetry.io/otel/attribute"
)

// Soroban RPC transaction statuses returned by sendTransaction
const (
	StatusPending       = "PENDING"
	StatusDuplicate     = "DUPLICATE"
	StatusTryAgainLater = "TRY_AGAIN_LATER"
	StatusError         = "ERROR"
)

type LedgerEntry struct {
	Key                string `json:"key"`
	Xdr                string `json:"xdr"`
	LastModifiedLedger uint32 `json:"lastModifiedLedgerSeq"`
	LiveUntilLedger    uint32 `json:"liveUntilLedgerSeq,omitempty"`
}

type GetLedgerEntriesResponse struct {
	Entries      []LedgerEntry `json:"entries"`
	LatestLedger uint32        `json:"latestLedger"`
}

type SimulateHostFunctionResult struct {
	XDR  string   `json:"xdr"`
	Auth []string `json:"auth"`
}

type SimulateCost struct {
	CPUInstructions string `json:"cpuInsns"`
	MemoryBytes     string `json:"memBytes"`
}

// SimulateTransactionResponse is the result of simulateTransaction. A
// non-empty Error means the host rejected the invocation.
type SimulateTransactionResponse struct {
	TransactionData string                       `json:"transactionData,omitempty"`
	MinResourceFee  string                       `json:"minResourceFee,omitempty"`
	Results         []SimulateHostFunctionResult `json:"results,omitempty"`
	Events          []string                     `json:"events,omitempty"`
	Cost            *SimulateCost                `json:"cost,omitempty"`
	Error           string                       `json:"error,omitempty"`
	LatestLedger    uint32                       `json:"latestLedger"`
}

type SendTransactionResponse struct {
	Hash                  string `json:"hash"`
	Status                string `json:"status"`
	ErrorResultXDR        string `json:"errorResultXdr,omitempty"`
	LatestLedger          uint32 `json:"latestLedger"`
	LatestLedgerCloseTime string `json:"latestLedgerCloseTime"`
}

// AccountNotFoundError indicates the ledger holds no entry for the account.
type AccountNotFoundError struct {
	Address string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found on ledger", e.Address)
}

// IsAccountNotFound checks if error is an "account not found" error
func IsAccountNotFound(err error) bool {
	var target *AccountNotFoundError
	return errors.As(err, &target)
}

// GetLedgerEntries fetches the current state of ledger entries from Soroban RPC.
// keys should be a list of base64-encoded XDR LedgerKeys. The result maps each
// found key to its base64 LedgerEntryData.
func (c *Client) GetLedgerEntries(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	logger.Logger.Debug("Fetching ledger entries", "count", len(keys), "url", c.SorobanURL)

	var resp GetLedgerEntriesResponse
	if err := c.call(ctx, "getLedgerEntries", map[string]interface{}{"keys": keys}, &resp); err != nil {
		return nil, err
	}

	entries := make(map[string]string, len(resp.Entries))
	for _, entry := range resp.Entries {
		entries[entry.Key] = entry.Xdr
	}

	logger.Logger.Debug("Ledger entries fetched", "found", len(entries), "requested", len(keys))
	return entries, nil
}

// GetAccount resolves the current sequence number of a classic account.
func (c *Client) GetAccount(ctx context.Context, address string) (txnbuild.SimpleAccount, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_get_account")
	span.SetAttributes(
		attribute.String("account", address),
		attribute.String("network", string(c.Network)),
	)
	defer span.End()

	accountID, err := xdr.AddressToAccountId(address)
	if err != nil {
		return txnbuild.SimpleAccount{}, errors.WrapInvalidAddress(address, err)
	}

	key := xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: accountID},
	}
	keyB64, err := xdr.MarshalBase64(key)
	if err != nil {
		return txnbuild.SimpleAccount{}, errors.WrapMarshalFailed(err)
	}

	entries, err := c.GetLedgerEntries(ctx, []string{keyB64})
	if err != nil {
		span.RecordError(err)
		return txnbuild.SimpleAccount{}, err
	}

	raw, ok := entries[keyB64]
	if !ok {
		// Some servers normalize the key encoding; accept a single entry.
		if len(entries) != 1 {
			return txnbuild.SimpleAccount{}, &AccountNotFoundError{Address: address}
		}
		for _, v := range entries {
			raw = v
		}
	}

	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(raw, &data); err != nil {
		return txnbuild.SimpleAccount{}, errors.WrapUnmarshalFailed(err, raw)
	}
	account, ok := data.GetAccount()
	if !ok {
		return txnbuild.SimpleAccount{}, errors.WrapUnmarshalFailed(fmt.Errorf("ledger entry is %s", data.Type), raw)
	}

	span.SetAttributes(attribute.Int64("account.sequence", int64(account.SeqNum)))
	return txnbuild.SimpleAccount{AccountID: address, Sequence: int64(account.SeqNum)}, nil
}

// SimulateTransaction preflights an unsigned envelope. It never changes
// ledger state.
func (c *Client) SimulateTransaction(ctx context.Context, envelopeXDR string) (*SimulateTransactionResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_simulate_transaction")
	span.SetAttributes(
		attribute.String("network", string(c.Network)),
		attribute.Int("envelope.size_bytes", len(envelopeXDR)),
	)
	defer span.End()

	var resp SimulateTransactionResponse
	if err := c.call(ctx, "simulateTransaction", map[string]interface{}{"transaction": envelopeXDR}, &resp); err != nil {
		span.RecordError(err)
		logger.Logger.Error("Simulation request failed", "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("simulation.min_resource_fee", resp.MinResourceFee),
		attribute.Bool("simulation.failed", resp.Error != ""),
	)
	logger.Logger.Debug("Simulation completed", "min_resource_fee", resp.MinResourceFee, "latest_ledger", resp.LatestLedger, "failed", resp.Error != "")
	return &resp, nil
}

// SendTransaction submits a signed envelope once.
func (c *Client) SendTransaction(ctx context.Context, envelopeXDR string) (*SendTransactionResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_send_transaction")
	span.SetAttributes(attribute.String("network", string(c.Network)))
	defer span.End()

	var resp SendTransactionResponse
	if err := c.call(ctx, "sendTransaction", map[string]interface{}{"transaction": envelopeXDR}, &resp); err != nil {
		span.RecordError(err)
		logger.Logger.Error("Submission request failed", "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("transaction.hash", resp.Hash),
		attribute.String("transaction.status", resp.Status),
	)
	logger.Logger.Info("Transaction submitted", "hash", resp.Hash, "status", resp.Status)
	return &resp, nil
}
