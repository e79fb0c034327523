// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"github.com/dotandev/tranche/internal/errors"
	"github.com/stellar/go/txnbuild"
)

// State is the lifecycle position of an Envelope.
type State int

const (
	StateBuilt State = iota
	StateAssembled
	StateSigned
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateAssembled:
		return "assembled"
	case StateSigned:
		return "signed"
	default:
		return "unknown"
	}
}

// Envelope is one transaction moving through built, assembled and signed.
// Transitions only go forward; every stage returns a new Envelope and
// leaves its input untouched.
type Envelope struct {
	tx      *txnbuild.Transaction
	state   State
	request Request
}

func newEnvelope(tx *txnbuild.Transaction, state State, req Request) *Envelope {
	return &Envelope{tx: tx, state: state, request: req}
}

func (e *Envelope) State() State { return e.state }

// Request returns the request the envelope was built for.
func (e *Envelope) Request() Request { return e.request }

// Transaction exposes the underlying transaction for inspection.
func (e *Envelope) Transaction() *txnbuild.Transaction { return e.tx }

// Sequence is the sequence number the envelope will consume.
func (e *Envelope) Sequence() int64 { return e.tx.SequenceNumber() }

// MaxFee is the total fee the envelope authorizes, in stroops.
func (e *Envelope) MaxFee() int64 { return e.tx.MaxFee() }

// Base64 returns the envelope XDR.
func (e *Envelope) Base64() (string, error) {
	out, err := e.tx.Base64()
	if err != nil {
		return "", errors.WrapMarshalFailed(err)
	}
	return out, nil
}

func (e *Envelope) require(want State) error {
	if e == nil || e.tx == nil {
		return errors.WrapEnvelopeState(want.String(), "nil")
	}
	if e.state != want {
		return errors.WrapEnvelopeState(want.String(), e.state.String())
	}
	return nil
}

func (e *Envelope) invocation() (*txnbuild.InvokeHostFunction, error) {
	ops := e.tx.Operations()
	if len(ops) != 1 {
		return nil, errors.WrapValidationError("envelope must carry exactly one operation")
	}
	op, ok := ops[0].(*txnbuild.InvokeHostFunction)
	if !ok {
		return nil, errors.WrapValidationError("envelope operation is not a contract invocation")
	}
	return op, nil
}
