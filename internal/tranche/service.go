// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package tranche is the single entry point for wallet sessions and contract
// operations. Every call checks the session, validates input, runs the
// transaction pipeline and records the outcome on the session.
package tranche

import (
	"context"
	"fmt"

	"github.com/dotandev/tranche/internal/amount"
	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/pipeline"
	"github.com/dotandev/tranche/internal/session"
	"github.com/dotandev/tranche/internal/wallet"
)

// Default testnet deployments.
const (
	DefaultTrancheContract = "CAIUMAVGQUDLA5EMTCC4GY5EF64VMZOFPSS6EFZZKLFWMAB56ZPE5QRP"
	DefaultTokenContract   = "CBIELTK6YBZJU5UP2WWQEUCYKLPU6AUNZ2BQ4WWFEIE3USCIHMXQDAMA"
	DefaultPoolContract    = "CD24SABPPEFJHQ4D5UEVAV52SUYHDERKKBNWX2PUGVPSJ6NCOEJVBLTQ"
)

// Ledger is the network capability the service needs.
type Ledger interface {
	pipeline.Ledger
	NativeBalance(ctx context.Context, address string) (string, error)
}

// Contracts names the deployments the service talks to.
type Contracts struct {
	Tranche string
	Pool    string
	Token   string
	// RWAToken is the asset supplied by the pool-supply invest policy.
	// Empty falls back to Token.
	RWAToken string
}

func (c Contracts) rwaToken() string {
	if c.RWAToken != "" {
		return c.RWAToken
	}
	return c.Token
}

// DefaultContracts returns the testnet deployments.
func DefaultContracts() Contracts {
	return Contracts{
		Tranche: DefaultTrancheContract,
		Pool:    DefaultPoolContract,
		Token:   DefaultTokenContract,
	}
}

// Service coordinates one wallet session against one set of contracts.
type Service struct {
	ledger    Ledger
	wallet    wallet.Wallet
	store     *session.Store
	pipeline  *pipeline.Pipeline
	contracts Contracts
	policy    InvestPolicy
	fee       int64
	precision int

	pipelineOpts []pipeline.Option
}

// Option configures a Service.
type Option func(*Service)

func WithContracts(c Contracts) Option {
	return func(s *Service) { s.contracts = c }
}

func WithInvestPolicy(p InvestPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithFeeCeiling sets the inclusion fee for state-changing calls.
func WithFeeCeiling(stroops int64) Option {
	return func(s *Service) {
		if stroops > 0 {
			s.fee = stroops
		}
	}
}

// WithSession shares an existing store, for example with the daemon.
func WithSession(store *session.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(s *Service) { s.pipelineOpts = append(s.pipelineOpts, opts...) }
}

// NewService wires a service. A nil wallet behaves as no wallet installed.
func NewService(ledger Ledger, w wallet.Wallet, networkPassphrase string, opts ...Option) *Service {
	if w == nil {
		w = wallet.Absent{}
	}
	s := &Service{
		ledger:    ledger,
		wallet:    w,
		contracts: DefaultContracts(),
		policy:    PolicyPoolSupply,
		fee:       pipeline.DefaultFeeCeiling,
		precision: amount.DefaultPrecision,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = session.NewStore()
	}
	s.pipeline = pipeline.New(ledger, w, networkPassphrase, s.pipelineOpts...)
	return s
}

// State returns the current session snapshot.
func (s *Service) State() session.State { return s.store.Snapshot() }

// Session exposes the store for read access and notifications.
func (s *Service) Session() *session.Store { return s.store }

// Watch calls fn on every session change until the returned func is called.
func (s *Service) Watch(fn func(session.State)) (cancel func()) {
	id := s.store.Subscribe(fn)
	return func() { s.store.Unsubscribe(id) }
}

// Contracts returns the configured deployments.
func (s *Service) Contracts() Contracts { return s.contracts }

// Connect asks the wallet for access and moves the session to connected.
// Connecting an already connected session does nothing.
func (s *Service) Connect(ctx context.Context) error {
	if s.store.Snapshot().Connected() {
		return nil
	}
	if err := s.store.BeginConnect(); err != nil {
		return err
	}

	address, err := s.requestAddress(ctx)
	if err != nil {
		logger.Logger.Warn("Wallet connection failed", "error", err)
		_ = s.store.FailConnect(err)
		return err
	}
	if err := s.store.CompleteConnect(address); err != nil {
		_ = s.store.FailConnect(err)
		return err
	}

	logger.Logger.Info("Wallet connected", "address", address, "session", s.store.ID())
	s.refreshBalance(ctx)
	return nil
}

func (s *Service) requestAddress(ctx context.Context) (string, error) {
	if !s.wallet.DetectPresence(ctx) {
		return "", errors.ErrWalletNotDetected
	}
	address, err := s.wallet.RequestAccess(ctx)
	if err != nil {
		return "", fmt.Errorf("wallet access: %w", err)
	}
	if address == "" {
		return "", fmt.Errorf("wallet access: no address shared")
	}
	return address, nil
}

// Resume reconnects without prompting when the wallet already shares an
// address. Failures are logged and leave the session disconnected.
func (s *Service) Resume(ctx context.Context) {
	if s.store.Snapshot().Status != session.StatusDisconnected {
		return
	}
	if !s.wallet.DetectPresence(ctx) {
		return
	}
	address, err := s.wallet.GetAddress(ctx)
	if err != nil || address == "" {
		logger.Logger.Debug("No existing wallet grant", "error", err)
		return
	}

	if err := s.store.BeginConnect(); err != nil {
		return
	}
	if err := s.store.CompleteConnect(address); err != nil {
		_ = s.store.FailConnect(nil)
		return
	}
	logger.Logger.Info("Wallet session resumed", "address", address)
	s.refreshBalance(ctx)
}

// Disconnect resets the session. Wallets that remember grants are asked to
// forget this one.
func (s *Service) Disconnect() error {
	if r, ok := s.wallet.(interface{ Revoke() }); ok {
		r.Revoke()
	}
	return s.store.Disconnect()
}

// RefreshBalance reloads the native balance. On failure the session shows
// a zero balance and the error is returned.
func (s *Service) RefreshBalance(ctx context.Context) (string, error) {
	address, err := s.store.RequireConnected()
	if err != nil {
		return "", err
	}
	balance, err := s.ledger.NativeBalance(ctx, address)
	if err != nil {
		logger.Logger.Warn("Balance refresh failed", "address", address, "error", err)
		s.store.SetBalance(session.ZeroBalance)
		return session.ZeroBalance, err
	}
	s.store.SetBalance(balance)
	return balance, nil
}

func (s *Service) refreshBalance(ctx context.Context) {
	_, _ = s.RefreshBalance(ctx)
}
