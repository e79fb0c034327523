// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/dotandev/tranche/internal/logger"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// SoftwareWallet signs with a Stellar key held in process memory.
type SoftwareWallet struct {
	kp      *keypair.Full
	approve Approver

	mu      sync.Mutex
	granted bool
}

// Option configures a SoftwareWallet.
type Option func(*SoftwareWallet)

// WithApprover installs a per-request approval step.
func WithApprover(a Approver) Option {
	return func(w *SoftwareWallet) {
		if a != nil {
			w.approve = a
		}
	}
}

// WithPreauthorized makes GetAddress return the address without a prior
// RequestAccess, the way a wallet remembers a site it already trusts.
func WithPreauthorized(on bool) Option {
	return func(w *SoftwareWallet) {
		w.granted = on
	}
}

// NewSoftwareWallet accepts either an S... secret seed or a hex-encoded
// Ed25519 key (32-byte seed or 64-byte private key).
func NewSoftwareWallet(secret string, opts ...Option) (*SoftwareWallet, error) {
	secret = strings.TrimSpace(secret)
	kp, err := parseSecret(secret)
	if err != nil {
		return nil, err
	}

	w := &SoftwareWallet{kp: kp, approve: AutoApprove}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// NewSoftwareWalletFromKeypair wraps an existing keypair.
func NewSoftwareWalletFromKeypair(kp *keypair.Full, opts ...Option) *SoftwareWallet {
	w := &SoftwareWallet{kp: kp, approve: AutoApprove}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func parseSecret(secret string) (*keypair.Full, error) {
	if strings.HasPrefix(secret, "S") {
		kp, err := keypair.ParseFull(secret)
		if err != nil {
			return nil, &WalletError{Op: "software", Msg: "invalid secret seed", Err: err}
		}
		return kp, nil
	}

	raw, err := hex.DecodeString(secret)
	if err != nil {
		return nil, &WalletError{Op: "software", Msg: "invalid private key hex", Err: err}
	}

	if len(raw) != ed25519.PrivateKeySize && len(raw) != ed25519.SeedSize {
		return nil, &WalletError{
			Op:  "software",
			Msg: fmt.Sprintf("invalid private key length: %d", len(raw)),
		}
	}

	var seed [32]byte
	copy(seed[:], raw[:ed25519.SeedSize])
	kp, err := keypair.FromRawSeed(seed)
	if err != nil {
		return nil, &WalletError{Op: "software", Msg: "invalid seed", Err: err}
	}
	return kp, nil
}

func (w *SoftwareWallet) DetectPresence(context.Context) bool { return true }

func (w *SoftwareWallet) RequestAccess(ctx context.Context) (string, error) {
	if err := w.approve(ctx, ""); err != nil {
		return "", &WalletError{Op: "access", Msg: "access request declined", Err: err}
	}
	w.mu.Lock()
	w.granted = true
	w.mu.Unlock()
	return w.kp.Address(), nil
}

func (w *SoftwareWallet) GetAddress(context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.granted {
		return "", nil
	}
	return w.kp.Address(), nil
}

// Address returns the public key without access checks.
func (w *SoftwareWallet) Address() string {
	return w.kp.Address()
}

// Revoke forgets a previous grant.
func (w *SoftwareWallet) Revoke() {
	w.mu.Lock()
	w.granted = false
	w.mu.Unlock()
}

func (w *SoftwareWallet) SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (string, error) {
	if err := w.approve(ctx, envelopeXDR); err != nil {
		return "", &WalletError{Op: "sign", Msg: "signature declined", Err: err}
	}

	parsed, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", &WalletError{Op: "sign", Msg: "unreadable envelope", Err: err}
	}
	tx, ok := parsed.Transaction()
	if !ok {
		return "", &WalletError{Op: "sign", Msg: "fee-bump envelopes are not supported"}
	}

	signed, err := tx.Sign(networkPassphrase, w.kp)
	if err != nil {
		return "", &WalletError{Op: "sign", Msg: "signing failed", Err: err}
	}

	out, err := signed.Base64()
	if err != nil {
		return "", &WalletError{Op: "sign", Msg: "encoding failed", Err: err}
	}

	logger.Logger.Debug("Transaction signed", "address", w.kp.Address(), "signatures", len(signed.Signatures()))
	return out, nil
}
