// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// Simulator dry-runs envelopes.
type Simulator interface {
	SimulateTransaction(ctx context.Context, envelopeXDR string) (*rpc.SimulateTransactionResponse, error)
}

// SimulationOutcome is either a success carrying resource data and the
// return value, or a failure carrying the diagnostic. Check Err first.
type SimulationOutcome struct {
	ok         bool
	diagnostic string
	err        error

	ReturnValue     *xdr.ScVal
	TransactionData xdr.SorobanTransactionData
	MinResourceFee  int64
	Auth            []xdr.SorobanAuthorizationEntry
	LatestLedger    uint32
}

// Succeeded reports the outcome tag.
func (o *SimulationOutcome) Succeeded() bool { return o != nil && o.ok }

// Diagnostic is the raw failure text, empty on success.
func (o *SimulationOutcome) Diagnostic() string {
	if o == nil {
		return ""
	}
	return o.diagnostic
}

// Err returns the classified failure, or nil on success.
func (o *SimulationOutcome) Err() error {
	if o == nil {
		return errors.WrapSimulationFailed("no simulation outcome")
	}
	if o.ok {
		return nil
	}
	return o.err
}

func failedOutcome(diagnostic string, c *Classifier) *SimulationOutcome {
	return &SimulationOutcome{diagnostic: diagnostic, err: c.Classify(diagnostic)}
}

// Simulate asks the network to dry-run a built envelope. Transport failures
// are returned as errors; a contract that rejects the call yields a failed
// outcome.
func (p *Pipeline) Simulate(ctx context.Context, env *Envelope) (*SimulationOutcome, error) {
	if err := env.require(StateBuilt); err != nil {
		return nil, err
	}
	envelopeXDR, err := env.Base64()
	if err != nil {
		return nil, err
	}

	resp, err := p.simulator.SimulateTransaction(ctx, envelopeXDR)
	if err != nil {
		p.hooks.stage(StageSimulate, err)
		return nil, err
	}

	outcome, err := decodeSimulation(resp, p.classifier)
	if err != nil {
		p.hooks.stage(StageSimulate, err)
		return nil, err
	}
	// A rejected call is a failed stage even though the transport succeeded.
	p.hooks.stage(StageSimulate, outcome.Err())
	if !outcome.ok {
		logger.Logger.Warn("Simulation rejected", "function", env.request.Function, "diagnostic", outcome.diagnostic)
	}
	return outcome, nil
}

func decodeSimulation(resp *rpc.SimulateTransactionResponse, c *Classifier) (*SimulationOutcome, error) {
	if resp == nil {
		return failedOutcome("empty simulation response", c), nil
	}
	if resp.Error != "" {
		return failedOutcome(resp.Error, c), nil
	}

	out := &SimulationOutcome{ok: true, LatestLedger: resp.LatestLedger}

	if resp.MinResourceFee != "" {
		fee, err := strconv.ParseInt(resp.MinResourceFee, 10, 64)
		if err != nil {
			return nil, errors.WrapUnmarshalFailed(err, resp.MinResourceFee)
		}
		out.MinResourceFee = fee
	}

	if resp.TransactionData != "" {
		if err := xdr.SafeUnmarshalBase64(resp.TransactionData, &out.TransactionData); err != nil {
			return nil, errors.WrapUnmarshalFailed(err, resp.TransactionData)
		}
	}

	if len(resp.Results) > 0 {
		result := resp.Results[0]
		if result.XDR != "" {
			var val xdr.ScVal
			if err := xdr.SafeUnmarshalBase64(result.XDR, &val); err != nil {
				return nil, errors.WrapUnmarshalFailed(err, result.XDR)
			}
			out.ReturnValue = &val
		}
		for _, raw := range result.Auth {
			var entry xdr.SorobanAuthorizationEntry
			if err := xdr.SafeUnmarshalBase64(raw, &entry); err != nil {
				return nil, errors.WrapUnmarshalFailed(err, raw)
			}
			out.Auth = append(out.Auth, entry)
		}
	}

	return out, nil
}

// Assemble rebuilds a built envelope with the simulated footprint and
// resource fee. It refuses failed outcomes.
func (p *Pipeline) Assemble(env *Envelope, outcome *SimulationOutcome) (*Envelope, error) {
	if err := env.require(StateBuilt); err != nil {
		return nil, err
	}
	if err := outcome.Err(); err != nil {
		return nil, err
	}

	src, err := env.invocation()
	if err != nil {
		return nil, err
	}

	ext, err := xdr.NewTransactionExt(1, outcome.TransactionData)
	if err != nil {
		return nil, errors.WrapMarshalFailed(err)
	}

	op := &txnbuild.InvokeHostFunction{
		HostFunction:  src.HostFunction,
		Auth:          src.Auth,
		SourceAccount: src.SourceAccount,
		Ext:           ext,
	}
	if len(op.Auth) == 0 && len(outcome.Auth) > 0 {
		op.Auth = append([]xdr.SorobanAuthorizationEntry(nil), outcome.Auth...)
	}

	tx := env.tx
	source := tx.SourceAccount()
	account := txnbuild.SimpleAccount{AccountID: source.AccountID, Sequence: tx.SequenceNumber()}
	timebounds := tx.Timebounds()

	assembled, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: false,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              tx.BaseFee(),
		Preconditions:        txnbuild.Preconditions{TimeBounds: timebounds},
	})
	p.hooks.stage(StageAssemble, err)
	if err != nil {
		return nil, errors.WrapValidationError(fmt.Sprintf("assemble: %v", err))
	}

	logger.Logger.Debug("Envelope assembled",
		"function", env.request.Function,
		"min_resource_fee", outcome.MinResourceFee,
		"max_fee", assembled.MaxFee(),
		"auth_entries", len(op.Auth),
	)
	return newEnvelope(assembled, StateAssembled, env.request), nil
}

// Prepare simulates and, only on success, assembles.
func (p *Pipeline) Prepare(ctx context.Context, env *Envelope) (*Envelope, *SimulationOutcome, error) {
	outcome, err := p.Simulate(ctx, env)
	if err != nil {
		return nil, nil, err
	}
	if err := outcome.Err(); err != nil {
		return nil, outcome, err
	}
	assembled, err := p.Assemble(env, outcome)
	if err != nil {
		return nil, outcome, err
	}
	return assembled, outcome, nil
}

// Query runs a read-only call and returns the contract's return value. The
// envelope is never assembled or signed.
func (p *Pipeline) Query(ctx context.Context, req Request) (xdr.ScVal, error) {
	env, err := p.Build(ctx, req)
	if err != nil {
		return xdr.ScVal{}, err
	}
	outcome, err := p.Simulate(ctx, env)
	if err != nil {
		return xdr.ScVal{}, err
	}
	if err := outcome.Err(); err != nil {
		return xdr.ScVal{}, err
	}
	if outcome.ReturnValue == nil {
		return xdr.ScVal{}, errors.WrapUnexpectedValue("return value", xdr.ScValTypeScvVoid)
	}
	return *outcome.ReturnValue, nil
}
