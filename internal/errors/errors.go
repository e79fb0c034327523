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

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	ErrMalformedAmount       = errors.New("malformed amount")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrUnknownVariant        = errors.New("unknown variant")
	ErrUnexpectedValue       = errors.New("unexpected contract value")
	ErrOutOfRange            = errors.New("value out of range")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrAccountUnavailable    = errors.New("source account unavailable")
	ErrSimulationFailed      = errors.New("simulation failed")
	ErrSigningRejected       = errors.New("signing rejected")
	ErrSubmissionFailed      = errors.New("submission failed")
	ErrNotConnected          = errors.New("wallet not connected")
	ErrWalletNotDetected     = errors.New("wallet not detected")
	ErrOperationInProgress   = errors.New("another operation is in progress")
	ErrInvalidTransition     = errors.New("invalid session transition")
	ErrEnvelopeState         = errors.New("envelope in wrong state")
	ErrContractUninitialized = errors.New("contract not initialized")
	ErrActionNotAllowed      = errors.New("action not allowed")
	ErrRPCConnectionFailed   = errors.New("RPC connection failed")
	ErrMarshalFailed         = errors.New("failed to marshal request")
	ErrUnmarshalFailed       = errors.New("failed to unmarshal response")
	ErrInvalidNetwork        = errors.New("invalid network")
	ErrConfig                = errors.New("configuration error")
	ErrValidation            = errors.New("validation error")
)

// Wrap functions for consistent error wrapping
func WrapMalformedAmount(input string) error {
	return fmt.Errorf("%w: %q", ErrMalformedAmount, input)
}

func WrapInvalidAmount(input string) error {
	return fmt.Errorf("%w: %q", ErrInvalidAmount, input)
}

func WrapUnknownVariant(tag string) error {
	return fmt.Errorf("%w: %q", ErrUnknownVariant, tag)
}

func WrapUnexpectedValue(want string, got fmt.Stringer) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedValue, want, got)
}

func WrapOutOfRange(msg string) error {
	return fmt.Errorf("%w: %s", ErrOutOfRange, msg)
}

func WrapInvalidAddress(address string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return fmt.Errorf("%w: %q: %w", ErrInvalidAddress, address, err)
}

func WrapAccountUnavailable(address string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrAccountUnavailable, address, err)
}

// WrapSimulationFailed carries the diagnostic text reported by the network.
func WrapSimulationFailed(diagnostic string) error {
	return fmt.Errorf("%w: %s", ErrSimulationFailed, diagnostic)
}

func WrapSigningRejected(err error) error {
	return fmt.Errorf("%w: %w", ErrSigningRejected, err)
}

func WrapSubmissionFailed(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrSubmissionFailed, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrSubmissionFailed, msg, err)
}

func WrapInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func WrapEnvelopeState(want, got string) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrEnvelopeState, want, got)
}

func WrapRPCConnectionFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrRPCConnectionFailed, err)
}

func WrapMarshalFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrMarshalFailed, err)
}

func WrapUnmarshalFailed(err error, output string) error {
	return fmt.Errorf("%w: %w, output: %s", ErrUnmarshalFailed, err, output)
}

func WrapInvalidNetwork(network string) error {
	return fmt.Errorf("%w: %s. Must be one of: testnet, mainnet, futurenet, standalone", ErrInvalidNetwork, network)
}

func WrapConfigError(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrConfig, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrConfig, msg, err)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

var kinds = []struct {
	err  error
	name string
}{
	{ErrMalformedAmount, "MalformedAmount"},
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrUnknownVariant, "UnknownVariant"},
	{ErrUnexpectedValue, "UnexpectedValue"},
	{ErrOutOfRange, "OutOfRange"},
	{ErrInvalidAddress, "InvalidAddress"},
	{ErrAccountUnavailable, "AccountUnavailable"},
	{ErrSimulationFailed, "SimulationFailed"},
	{ErrSigningRejected, "SigningRejected"},
	{ErrSubmissionFailed, "SubmissionFailed"},
	{ErrNotConnected, "NotConnected"},
	{ErrWalletNotDetected, "WalletNotDetected"},
	{ErrOperationInProgress, "OperationInProgress"},
	{ErrInvalidTransition, "InvalidTransition"},
	{ErrEnvelopeState, "EnvelopeState"},
	{ErrRPCConnectionFailed, "RPC"},
	{ErrMarshalFailed, "RPC"},
	{ErrUnmarshalFailed, "RPC"},
	{ErrInvalidNetwork, "Config"},
	{ErrConfig, "Config"},
	{ErrValidation, "Validation"},
}

// KindOf returns the stable taxonomy name of err, or "Unknown".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}

// Is and As re-export the standard helpers so callers importing this
// package under the name errors keep working.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }
