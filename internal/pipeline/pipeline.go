// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package pipeline turns contract call requests into settled transactions:
// build, simulate, assemble, sign and submit, each stage attempted once.
package pipeline

import (
	"context"

	"github.com/dotandev/tranche/internal/telemetry"
	"github.com/dotandev/tranche/internal/wallet"
	"go.opentelemetry.io/otel/attribute"
)

// Stage names reported to Hooks.
type Stage string

const (
	StageBuild    Stage = "build"
	StageSimulate Stage = "simulate"
	StageAssemble Stage = "assemble"
	StageSign     Stage = "sign"
	StageSubmit   Stage = "submit"
)

// Hooks observe stage completions. err is nil on success.
type Hooks struct {
	OnStage func(stage Stage, err error)
}

func (h Hooks) stage(s Stage, err error) {
	if h.OnStage != nil {
		h.OnStage(s, err)
	}
}

// Ledger is everything the pipeline needs from the network.
type Ledger interface {
	AccountSource
	Simulator
	Submitter
}

// Pipeline runs requests against one network with one wallet.
type Pipeline struct {
	builder           *Builder
	simulator         Simulator
	submitter         Submitter
	wallet            wallet.Wallet
	networkPassphrase string
	classifier        *Classifier
	hooks             Hooks
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithHooks(h Hooks) Option {
	return func(p *Pipeline) { p.hooks = h }
}

func WithClassifier(c *Classifier) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.classifier = c
		}
	}
}

func WithBuilderOptions(opts ...BuilderOption) Option {
	return func(p *Pipeline) {
		for _, opt := range opts {
			opt(p.builder)
		}
	}
}

func New(ledger Ledger, w wallet.Wallet, networkPassphrase string, opts ...Option) *Pipeline {
	p := &Pipeline{
		builder:           NewBuilder(ledger),
		simulator:         ledger,
		submitter:         ledger,
		wallet:            w,
		networkPassphrase: networkPassphrase,
		classifier:        defaultClassifier,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NetworkPassphrase returns the passphrase envelopes are signed for.
func (p *Pipeline) NetworkPassphrase() string { return p.networkPassphrase }

// Build produces an unsigned envelope for req.
func (p *Pipeline) Build(ctx context.Context, req Request) (*Envelope, error) {
	env, err := p.builder.Build(ctx, req)
	p.hooks.stage(StageBuild, err)
	return env, err
}

// Execute runs a state-changing request through every stage and returns the
// settlement. Nothing is retried; a failed call must be rebuilt by the
// caller to get a fresh sequence and fee quote.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*SettlementResult, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "pipeline_execute")
	span.SetAttributes(
		attribute.String("contract.id", req.ContractID),
		attribute.String("contract.function", req.Function),
	)
	defer span.End()

	env, err := p.Build(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	assembled, _, err := p.Prepare(ctx, env)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	signed, err := p.Sign(ctx, assembled)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result, err := p.Submit(ctx, signed)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("transaction.hash", result.Hash))
	return result, nil
}
