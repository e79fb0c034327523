// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/stellar/go/txnbuild"
)

// Submitter sends signed envelopes.
type Submitter interface {
	SendTransaction(ctx context.Context, envelopeXDR string) (*rpc.SendTransactionResponse, error)
}

// SettlementResult is the network's acknowledgement of a signed envelope.
type SettlementResult struct {
	Hash   string
	Status string
}

// Sign hands an assembled envelope to the wallet.
func (p *Pipeline) Sign(ctx context.Context, env *Envelope) (*Envelope, error) {
	signed, err := p.sign(ctx, env)
	p.hooks.stage(StageSign, err)
	return signed, err
}

func (p *Pipeline) sign(ctx context.Context, env *Envelope) (*Envelope, error) {
	if err := env.require(StateAssembled); err != nil {
		return nil, err
	}
	if p.wallet == nil {
		return nil, errors.WrapSigningRejected(fmt.Errorf("no wallet"))
	}

	unsigned, err := env.Base64()
	if err != nil {
		return nil, err
	}

	signedXDR, err := p.wallet.SignTransaction(ctx, unsigned, p.networkPassphrase)
	if err != nil {
		return nil, errors.WrapSigningRejected(err)
	}
	if strings.TrimSpace(signedXDR) == "" {
		return nil, errors.WrapSigningRejected(fmt.Errorf("wallet returned an empty envelope"))
	}

	parsed, err := txnbuild.TransactionFromXDR(signedXDR)
	if err != nil {
		return nil, errors.WrapSigningRejected(err)
	}
	tx, ok := parsed.Transaction()
	if !ok {
		return nil, errors.WrapSigningRejected(fmt.Errorf("wallet returned a fee-bump envelope"))
	}
	if len(tx.Signatures()) == 0 {
		return nil, errors.WrapSigningRejected(fmt.Errorf("wallet returned no signature"))
	}

	return newEnvelope(tx, StateSigned, env.request), nil
}

// Submit sends a signed envelope exactly once.
func (p *Pipeline) Submit(ctx context.Context, env *Envelope) (*SettlementResult, error) {
	result, err := p.submit(ctx, env)
	p.hooks.stage(StageSubmit, err)
	return result, err
}

func (p *Pipeline) submit(ctx context.Context, env *Envelope) (*SettlementResult, error) {
	if err := env.require(StateSigned); err != nil {
		return nil, err
	}

	signedXDR, err := env.Base64()
	if err != nil {
		return nil, err
	}

	resp, err := p.submitter.SendTransaction(ctx, signedXDR)
	if err != nil {
		return nil, errors.WrapSubmissionFailed("send failed", err)
	}

	switch resp.Status {
	case rpc.StatusPending, rpc.StatusDuplicate:
	case rpc.StatusError:
		msg := "transaction rejected"
		if resp.ErrorResultXDR != "" {
			msg = fmt.Sprintf("transaction rejected: %s", resp.ErrorResultXDR)
		}
		return nil, errors.WrapSubmissionFailed(msg, nil)
	default:
		return nil, errors.WrapSubmissionFailed(fmt.Sprintf("status %s", resp.Status), nil)
	}

	hash := resp.Hash
	if hash == "" {
		if hash, err = env.tx.HashHex(p.networkPassphrase); err != nil {
			return nil, errors.WrapMarshalFailed(err)
		}
	}

	logger.Logger.Info("Transaction accepted", "function", env.request.Function, "hash", hash, "status", resp.Status)
	return &SettlementResult{Hash: hash, Status: resp.Status}, nil
}
