// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package wallet defines the external signing capability used to authorize
// transactions. The holder of the key, not this module, decides whether a
// transaction gets signed.
package wallet

import (
	"context"
	"fmt"
)

// Wallet is the signer-side capability. Implementations may hold keys in
// memory (SoftwareWallet) or delegate to an external application.
type Wallet interface {
	// DetectPresence reports whether a wallet is available at all.
	DetectPresence(ctx context.Context) bool

	// RequestAccess asks the holder to share an address. It may prompt.
	RequestAccess(ctx context.Context) (string, error)

	// GetAddress returns the shared address without prompting. An empty
	// string means access has not been granted yet.
	GetAddress(ctx context.Context) (string, error)

	// SignTransaction returns the signed envelope for a base64 unsigned
	// envelope on the network identified by passphrase.
	SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (string, error)
}

// WalletError represents an error originating from a wallet operation.
type WalletError struct {
	Op  string
	Msg string
	Err error
}

func (e *WalletError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *WalletError) Unwrap() error {
	return e.Err
}

// ErrDeclined is returned when the holder refuses a request.
var ErrDeclined = &WalletError{Op: "approve", Msg: "request declined by user"}

// Approver decides whether a signing request proceeds. Returning an error
// declines it.
type Approver func(ctx context.Context, envelopeXDR string) error

// AutoApprove signs every request.
func AutoApprove(context.Context, string) error { return nil }

// Absent is the wallet used when none is configured.
type Absent struct{}

func (Absent) DetectPresence(context.Context) bool { return false }

func (Absent) RequestAccess(context.Context) (string, error) {
	return "", &WalletError{Op: "access", Msg: "no wallet configured"}
}

func (Absent) GetAddress(context.Context) (string, error) { return "", nil }

func (Absent) SignTransaction(context.Context, string, string) (string, error) {
	return "", &WalletError{Op: "sign", Msg: "no wallet configured"}
}
