// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/scval"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

const (
	// DefaultFeeCeiling is the inclusion fee placeholder for state-changing
	// calls, in stroops. Simulation adds the resource fee on top.
	DefaultFeeCeiling int64 = 100000

	// QueryFee is the inclusion fee used for read-only simulations.
	QueryFee int64 = txnbuild.MinBaseFee

	DefaultTimeout = 30 * time.Second

	// SyntheticSource is the all-zero account used when a simulation needs no
	// authenticated caller.
	SyntheticSource = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"
)

// Request describes one contract call. Build never modifies it.
type Request struct {
	ContractID string
	Function   string
	Args       []xdr.ScVal
	// Source is the account paying for and authorizing the call. Empty
	// means the synthetic source, which is only valid for queries.
	Source string
	// Fee is the inclusion fee ceiling; zero picks a default.
	Fee int64
}

func (r Request) readOnly() bool { return r.Source == "" }

// AccountSource resolves the sequence state of a classic account.
type AccountSource interface {
	GetAccount(ctx context.Context, address string) (txnbuild.SimpleAccount, error)
}

// Builder produces unsigned envelopes.
type Builder struct {
	accounts AccountSource
	ttl      time.Duration
	now      func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTTL sets how long built envelopes stay valid.
func WithTTL(ttl time.Duration) BuilderOption {
	return func(b *Builder) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

func NewBuilder(accounts AccountSource, opts ...BuilderOption) *Builder {
	b := &Builder{
		accounts: accounts,
		ttl:      DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves the source account and returns a built envelope holding a
// single InvokeHostFunction operation.
func (b *Builder) Build(ctx context.Context, req Request) (*Envelope, error) {
	if req.Function == "" {
		return nil, errors.WrapValidationError("function name is required")
	}

	contractAddr, err := scval.ScAddress(req.ContractID)
	if err != nil {
		return nil, err
	}
	if contractAddr.Type != xdr.ScAddressTypeScAddressTypeContract {
		return nil, errors.WrapInvalidAddress(req.ContractID, fmt.Errorf("not a contract address"))
	}

	account, err := b.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	fee := req.Fee
	if fee <= 0 {
		fee = DefaultFeeCeiling
		if req.readOnly() {
			fee = QueryFee
		}
	}

	args := make(xdr.ScVec, len(req.Args))
	copy(args, req.Args)

	op := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: contractAddr,
				FunctionName:    xdr.ScSymbol(req.Function),
				Args:            args,
			},
		},
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              fee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimebounds(0, b.now().Add(b.ttl).Unix()),
		},
	})
	if err != nil {
		return nil, errors.WrapValidationError(err.Error())
	}

	return newEnvelope(tx, StateBuilt, req), nil
}

// resolve returns a private copy of the source account so the caller's
// value and any cache behind AccountSource are never advanced.
func (b *Builder) resolve(ctx context.Context, req Request) (txnbuild.SimpleAccount, error) {
	if req.readOnly() {
		return txnbuild.SimpleAccount{AccountID: SyntheticSource, Sequence: 0}, nil
	}
	if b.accounts == nil {
		return txnbuild.SimpleAccount{}, errors.WrapAccountUnavailable(req.Source, fmt.Errorf("no ledger configured"))
	}

	account, err := b.accounts.GetAccount(ctx, req.Source)
	if err != nil {
		return txnbuild.SimpleAccount{}, errors.WrapAccountUnavailable(req.Source, err)
	}
	return txnbuild.SimpleAccount{AccountID: account.AccountID, Sequence: account.Sequence}, nil
}
