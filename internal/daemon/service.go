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

package daemon

import (
	"context"
	"net/http"

	"github.com/dotandev/tranche/internal/contract"
	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/dotandev/tranche/internal/session"
	"github.com/dotandev/tranche/internal/telemetry"
	"github.com/dotandev/tranche/internal/tranche"
	"github.com/gorilla/rpc/v2/json2"
	"go.opentelemetry.io/otel/attribute"
)

// TrancheService is registered as "Tranche" on the JSON-RPC server.
type TrancheService struct {
	backend Backend
}

type NoArgs struct{}

type TrancheArgs struct {
	Tranche string `json:"tranche"`
}

type AmountArgs struct {
	Tranche string `json:"tranche"`
	Amount  string `json:"amount"`
}

type ApproveArgs struct {
	User    string `json:"user"`
	Tranche string `json:"tranche"`
	Amount  string `json:"amount"`
}

type InitializeArgs struct {
	Token     string `json:"token,omitempty"`
	Pool      string `json:"pool,omitempty"`
	MinSenior string `json:"min_senior"`
	MinJunior string `json:"min_junior"`
}

type PoolArgs struct {
	Asset  string `json:"asset,omitempty"`
	Amount string `json:"amount"`
}

type TokenArgs struct {
	Token string `json:"token,omitempty"`
}

type TxReply struct {
	Hash string `json:"hash"`
}

type AmountReply struct {
	Amount string `json:"amount"`
}

type PausedReply struct {
	Paused bool `json:"paused"`
}

// ErrorData is attached to every JSON-RPC error so clients can branch on
// the error kind without parsing messages.
type ErrorData struct {
	Kind string `json:"kind"`
}

var badParamKinds = map[string]bool{
	"MalformedAmount": true,
	"InvalidAmount":   true,
	"InvalidAddress":  true,
	"UnknownVariant":  true,
	"Validation":      true,
}

func rpcError(err error) error {
	if err == nil {
		return nil
	}
	kind := errors.KindOf(err)
	code := json2.E_SERVER
	if badParamKinds[kind] {
		code = json2.E_BAD_PARAMS
	}
	return &json2.Error{
		Code:    code,
		Message: err.Error(),
		Data:    ErrorData{Kind: kind},
	}
}

func (t *TrancheService) trace(r *http.Request, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := telemetry.GetTracer().Start(r.Context(), "rpc_"+name)
	span.SetAttributes(attrs...)
	logger.Logger.Info("Processing RPC", "method", name)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}

func (t *TrancheService) mutate(r *http.Request, name string, reply *TxReply, fn func(ctx context.Context) (string, error)) error {
	ctx, done := t.trace(r, name)
	hash, err := fn(ctx)
	done(err)
	if err != nil {
		return rpcError(err)
	}
	reply.Hash = hash
	return nil
}

func (t *TrancheService) Connect(r *http.Request, _ *NoArgs, reply *session.State) error {
	ctx, done := t.trace(r, "connect")
	err := t.backend.Connect(ctx)
	done(err)
	if err != nil {
		return rpcError(err)
	}
	*reply = t.backend.State()
	return nil
}

func (t *TrancheService) Disconnect(_ *http.Request, _ *NoArgs, reply *session.State) error {
	if err := t.backend.Disconnect(); err != nil {
		return rpcError(err)
	}
	*reply = t.backend.State()
	return nil
}

func (t *TrancheService) State(_ *http.Request, _ *NoArgs, reply *session.State) error {
	*reply = t.backend.State()
	return nil
}

func (t *TrancheService) Balance(r *http.Request, _ *NoArgs, reply *AmountReply) error {
	ctx, done := t.trace(r, "balance")
	bal, err := t.backend.RefreshBalance(ctx)
	done(err)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount = bal
	return nil
}

func (t *TrancheService) Initialize(r *http.Request, args *InitializeArgs, reply *TxReply) error {
	return t.mutate(r, "initialize", reply, func(ctx context.Context) (string, error) {
		return t.backend.Initialize(ctx, args.Token, args.Pool, args.MinSenior, args.MinJunior)
	})
}

func (t *TrancheService) Subscribe(r *http.Request, args *AmountArgs, reply *TxReply) error {
	return t.mutate(r, "subscribe", reply, func(ctx context.Context) (string, error) {
		kind, err := contract.ParseTrancheKind(args.Tranche)
		if err != nil {
			return "", err
		}
		return t.backend.Subscribe(ctx, kind, args.Amount)
	})
}

func (t *TrancheService) Redeem(r *http.Request, args *AmountArgs, reply *TxReply) error {
	return t.mutate(r, "redeem", reply, func(ctx context.Context) (string, error) {
		kind, err := contract.ParseTrancheKind(args.Tranche)
		if err != nil {
			return "", err
		}
		return t.backend.Redeem(ctx, kind, args.Amount)
	})
}

func (t *TrancheService) Approve(r *http.Request, args *ApproveArgs, reply *TxReply) error {
	return t.mutate(r, "approve", reply, func(ctx context.Context) (string, error) {
		kind, err := contract.ParseTrancheKind(args.Tranche)
		if err != nil {
			return "", err
		}
		return t.backend.ApproveSubscription(ctx, args.User, kind, args.Amount)
	})
}

func (t *TrancheService) CreateTokens(r *http.Request, args *AmountArgs, reply *TxReply) error {
	return t.mutate(r, "create_tokens", reply, func(ctx context.Context) (string, error) {
		kind, err := contract.ParseTrancheKind(args.Tranche)
		if err != nil {
			return "", err
		}
		return t.backend.CreateTrancheTokens(ctx, kind, args.Amount)
	})
}

func (t *TrancheService) Invest(r *http.Request, args *AmountArgs, reply *TxReply) error {
	return t.mutate(r, "invest", reply, func(ctx context.Context) (string, error) {
		kind, err := contract.ParseTrancheKind(args.Tranche)
		if err != nil {
			return "", err
		}
		return t.backend.InvestInTranche(ctx, kind, args.Amount)
	})
}

func (t *TrancheService) Supply(r *http.Request, args *PoolArgs, reply *TxReply) error {
	return t.mutate(r, "supply", reply, func(ctx context.Context) (string, error) {
		return t.backend.Supply(ctx, args.Asset, args.Amount)
	})
}

func (t *TrancheService) Withdraw(r *http.Request, args *PoolArgs, reply *TxReply) error {
	return t.mutate(r, "withdraw", reply, func(ctx context.Context) (string, error) {
		return t.backend.Withdraw(ctx, args.Asset, args.Amount)
	})
}

func (t *TrancheService) Borrow(r *http.Request, args *PoolArgs, reply *TxReply) error {
	return t.mutate(r, "borrow", reply, func(ctx context.Context) (string, error) {
		return t.backend.Borrow(ctx, args.Asset, args.Amount)
	})
}

func (t *TrancheService) Repay(r *http.Request, args *PoolArgs, reply *TxReply) error {
	return t.mutate(r, "repay", reply, func(ctx context.Context) (string, error) {
		return t.backend.Repay(ctx, args.Asset, args.Amount)
	})
}

func (t *TrancheService) UserShare(r *http.Request, args *TrancheArgs, reply *AmountReply) error {
	kind, err := contract.ParseTrancheKind(args.Tranche)
	if err != nil {
		return rpcError(err)
	}
	ctx, done := t.trace(r, "user_share", attribute.String("tranche", kind.String()))
	share, err := t.backend.GetUserShare(ctx, kind)
	done(err)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount = share
	return nil
}

func (t *TrancheService) Totals(r *http.Request, _ *NoArgs, reply *tranche.Totals) error {
	ctx, done := t.trace(r, "totals")
	totals, err := t.backend.GetTotals(ctx)
	done(err)
	if err != nil {
		return rpcError(err)
	}
	*reply = totals
	return nil
}

func (t *TrancheService) Minimums(r *http.Request, _ *NoArgs, reply *tranche.Totals) error {
	ctx, done := t.trace(r, "minimums")
	mins, err := t.backend.GetMinimums(ctx)
	done(err)
	if err != nil {
		return rpcError(err)
	}
	*reply = mins
	return nil
}

func (t *TrancheService) Paused(r *http.Request, _ *NoArgs, reply *PausedReply) error {
	ctx, done := t.trace(r, "paused")
	paused, err := t.backend.IsPaused(ctx)
	done(err)
	if err != nil {
		return rpcError(err)
	}
	reply.Paused = paused
	return nil
}

func (t *TrancheService) TokenBalance(r *http.Request, args *TokenArgs, reply *AmountReply) error {
	ctx, done := t.trace(r, "token_balance")
	bal, err := t.backend.GetTokenBalance(ctx, args.Token)
	done(err)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount = bal
	return nil
}

func (t *TrancheService) Position(r *http.Request, _ *NoArgs, reply *tranche.Position) error {
	ctx, done := t.trace(r, "position")
	pos, err := t.backend.GetPoolPosition(ctx)
	done(err)
	if err != nil {
		return rpcError(err)
	}
	*reply = pos
	return nil
}
