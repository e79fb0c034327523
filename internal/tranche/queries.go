// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package tranche

import (
	"context"
	"math/big"
	"sort"

	"github.com/dotandev/tranche/internal/amount"
	"github.com/dotandev/tranche/internal/contract"
	"github.com/dotandev/tranche/internal/pipeline"
	"github.com/stellar/go/xdr"
)

// Totals holds a decimal value per tranche.
type Totals struct {
	Senior string `json:"senior"`
	Junior string `json:"junior"`
}

// Reserve is one pool reserve position.
type Reserve struct {
	Index  uint32 `json:"index"`
	Amount string `json:"amount"`
}

// Position is a user's standing in the lending pool.
type Position struct {
	Liabilities []Reserve `json:"liabilities"`
	Collateral  []Reserve `json:"collateral"`
	Supply      []Reserve `json:"supply"`
}

// query runs a read-only call. Queries need a connected session but never
// touch the busy flag or the balance.
func (s *Service) query(ctx context.Context, contractID, function string, args []xdr.ScVal) (xdr.ScVal, error) {
	if _, err := s.store.RequireConnected(); err != nil {
		return xdr.ScVal{}, err
	}
	return s.pipeline.Query(ctx, pipeline.Request{
		ContractID: contractID,
		Function:   function,
		Args:       args,
	})
}

func (s *Service) format(x *big.Int) string {
	return amount.FromWire(x, s.precision)
}

// GetUserShare returns the connected account's share of a tranche.
func (s *Service) GetUserShare(ctx context.Context, kind contract.TrancheKind) (string, error) {
	address, err := s.store.RequireConnected()
	if err != nil {
		return "", err
	}
	args, err := contract.UserShareArgs(address, kind)
	if err != nil {
		return "", err
	}
	val, err := s.query(ctx, s.contracts.Tranche, contract.FnGetUserShare, args)
	if err != nil {
		return "", err
	}
	share, err := contract.DecodeShare(val)
	if err != nil {
		return "", err
	}
	return s.format(share), nil
}

func (s *Service) pair(ctx context.Context, function string) (Totals, error) {
	val, err := s.query(ctx, s.contracts.Tranche, function, nil)
	if err != nil {
		return Totals{}, err
	}
	p, err := contract.DecodeTranchePair(val)
	if err != nil {
		return Totals{}, err
	}
	return Totals{Senior: s.format(p.Senior), Junior: s.format(p.Junior)}, nil
}

// GetTotals returns the amount deposited in each tranche.
func (s *Service) GetTotals(ctx context.Context) (Totals, error) {
	return s.pair(ctx, contract.FnGetTotals)
}

// GetMinimums returns the minimum subscription per tranche.
func (s *Service) GetMinimums(ctx context.Context) (Totals, error) {
	return s.pair(ctx, contract.FnGetMinimums)
}

func (s *Service) IsPaused(ctx context.Context) (bool, error) {
	val, err := s.query(ctx, s.contracts.Tranche, contract.FnIsPaused, nil)
	if err != nil {
		return false, err
	}
	return contract.DecodePaused(val)
}

// GetTokenBalance returns the connected account's balance of a token
// contract. Empty token means the configured token.
func (s *Service) GetTokenBalance(ctx context.Context, token string) (string, error) {
	address, err := s.store.RequireConnected()
	if err != nil {
		return "", err
	}
	if token == "" {
		token = s.contracts.Token
	}
	args, err := contract.TokenBalanceArgs(address)
	if err != nil {
		return "", err
	}
	val, err := s.query(ctx, token, contract.FnTokenBalance, args)
	if err != nil {
		return "", err
	}
	bal, err := contract.DecodeShare(val)
	if err != nil {
		return "", err
	}
	return s.format(bal), nil
}

// GetPoolPosition returns the connected account's pool positions.
func (s *Service) GetPoolPosition(ctx context.Context) (Position, error) {
	address, err := s.store.RequireConnected()
	if err != nil {
		return Position{}, err
	}
	args, err := contract.PoolPositionsArgs(address)
	if err != nil {
		return Position{}, err
	}
	val, err := s.query(ctx, s.contracts.Pool, contract.FnPoolPositions, args)
	if err != nil {
		return Position{}, err
	}
	pos, err := contract.DecodePositions(val)
	if err != nil {
		return Position{}, err
	}
	return Position{
		Liabilities: s.reserves(pos.Liabilities),
		Collateral:  s.reserves(pos.Collateral),
		Supply:      s.reserves(pos.Supply),
	}, nil
}

func (s *Service) reserves(m map[uint32]*big.Int) []Reserve {
	out := make([]Reserve, 0, len(m))
	for idx, v := range m {
		out = append(out, Reserve{Index: idx, Amount: s.format(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
