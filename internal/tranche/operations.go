// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package tranche

import (
	"context"
	"math/big"
	"strings"

	"github.com/dotandev/tranche/internal/amount"
	"github.com/dotandev/tranche/internal/contract"
	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/pipeline"
	"github.com/dotandev/tranche/internal/telemetry"
	"github.com/stellar/go/xdr"
	"go.opentelemetry.io/otel/attribute"
)

// parsePositive accepts a decimal amount strictly above zero.
func parsePositive(input string, precision int) (*big.Int, error) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "-") {
		return nil, errors.WrapInvalidAmount(input)
	}
	v, err := amount.ToWire(trimmed, precision)
	if err != nil {
		return nil, err
	}
	if v.Sign() <= 0 {
		return nil, errors.WrapInvalidAmount(input)
	}
	return v, nil
}

// parseNonNegative accepts zero, used for contract minimums.
func parseNonNegative(input string, precision int) (*big.Int, error) {
	if strings.HasPrefix(strings.TrimSpace(input), "-") {
		return nil, errors.WrapInvalidAmount(input)
	}
	return amount.ToWire(input, precision)
}

type argsFunc func(source string) ([]xdr.ScVal, error)

// mutate runs one state-changing call. Validation happens inside args,
// before the session is marked busy and before any network call.
func (s *Service) mutate(ctx context.Context, name, contractID, function string, args argsFunc) (hash string, err error) {
	source, err := s.store.RequireConnected()
	if err != nil {
		return "", err
	}

	encoded, err := args(source)
	if err != nil {
		s.store.SetError(err)
		return "", err
	}

	op, err := s.store.BeginOperation(name)
	if err != nil {
		return "", err
	}
	defer func() { op.End(hash, err) }()

	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "tranche_"+name)
	span.SetAttributes(
		attribute.String("operation", name),
		attribute.String("contract.id", contractID),
		attribute.String("source", source),
	)
	defer span.End()

	result, err := s.pipeline.Execute(ctx, pipeline.Request{
		ContractID: contractID,
		Function:   function,
		Args:       encoded,
		Source:     source,
		Fee:        s.fee,
	})
	if err != nil {
		span.RecordError(err)
		logger.Logger.Error("Operation failed", "operation", name, "kind", errors.KindOf(err), "error", err)
		return "", err
	}

	logger.Logger.Info("Operation settled", "operation", name, "hash", result.Hash, "status", result.Status)
	s.refreshBalance(ctx)
	return result.Hash, nil
}

// Initialize configures the tranche contract with the connected account as
// admin. Empty token or pool fall back to the configured deployments.
func (s *Service) Initialize(ctx context.Context, token, pool, minSenior, minJunior string) (string, error) {
	if token == "" {
		token = s.contracts.Token
	}
	if pool == "" {
		pool = s.contracts.Pool
	}
	return s.mutate(ctx, contract.FnInitialize, s.contracts.Tranche, contract.FnInitialize, func(admin string) ([]xdr.ScVal, error) {
		senior, err := parseNonNegative(minSenior, s.precision)
		if err != nil {
			return nil, err
		}
		junior, err := parseNonNegative(minJunior, s.precision)
		if err != nil {
			return nil, err
		}
		return contract.InitializeArgs(admin, token, pool, senior, junior)
	})
}

// Subscribe deposits amount into the given tranche.
func (s *Service) Subscribe(ctx context.Context, kind contract.TrancheKind, amt string) (string, error) {
	return s.mutate(ctx, contract.FnSubscribe, s.contracts.Tranche, contract.FnSubscribe, func(from string) ([]xdr.ScVal, error) {
		v, err := parsePositive(amt, s.precision)
		if err != nil {
			return nil, err
		}
		return contract.SubscribeArgs(from, kind, v)
	})
}

// Redeem withdraws amount of tranche shares.
func (s *Service) Redeem(ctx context.Context, kind contract.TrancheKind, amt string) (string, error) {
	return s.mutate(ctx, contract.FnRedeem, s.contracts.Tranche, contract.FnRedeem, func(from string) ([]xdr.ScVal, error) {
		v, err := parsePositive(amt, s.precision)
		if err != nil {
			return nil, err
		}
		return contract.RedeemArgs(from, kind, v)
	})
}

// ApproveSubscription is admin-only on the contract side; the client does
// not check the caller.
func (s *Service) ApproveSubscription(ctx context.Context, user string, kind contract.TrancheKind, amt string) (string, error) {
	return s.mutate(ctx, contract.FnApproveSubscription, s.contracts.Tranche, contract.FnApproveSubscription, func(string) ([]xdr.ScVal, error) {
		v, err := parsePositive(amt, s.precision)
		if err != nil {
			return nil, err
		}
		return contract.ApproveSubscriptionArgs(user, kind, v)
	})
}

func (s *Service) poolRequest(ctx context.Context, name string, kind contract.RequestType, asset, amt string) (string, error) {
	if asset == "" {
		asset = s.contracts.Token
	}
	return s.mutate(ctx, name, s.contracts.Pool, contract.FnPoolSubmit, func(from string) ([]xdr.ScVal, error) {
		v, err := parsePositive(amt, s.precision)
		if err != nil {
			return nil, err
		}
		return contract.PoolSubmitArgs(from, []contract.Request{{Asset: asset, Amount: v, Type: kind}})
	})
}

// Supply lends asset to the pool.
func (s *Service) Supply(ctx context.Context, asset, amt string) (string, error) {
	return s.poolRequest(ctx, "supply", contract.RequestSupply, asset, amt)
}

func (s *Service) Withdraw(ctx context.Context, asset, amt string) (string, error) {
	return s.poolRequest(ctx, "withdraw", contract.RequestWithdraw, asset, amt)
}

func (s *Service) Borrow(ctx context.Context, asset, amt string) (string, error) {
	return s.poolRequest(ctx, "borrow", contract.RequestBorrow, asset, amt)
}

func (s *Service) Repay(ctx context.Context, asset, amt string) (string, error) {
	return s.poolRequest(ctx, "repay", contract.RequestRepay, asset, amt)
}
