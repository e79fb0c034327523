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

package contract

import (
	"math/big"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/scval"
	"github.com/stellar/go/xdr"
)

// Lending pool and token entry points
const (
	FnPoolSubmit    = "submit"
	FnPoolPositions = "get_positions"
	FnTokenBalance  = "balance"
)

// RequestType selects the pool action a Request performs.
type RequestType uint32

const (
	RequestSupply             RequestType = 0
	RequestWithdraw           RequestType = 1
	RequestSupplyCollateral   RequestType = 2
	RequestWithdrawCollateral RequestType = 3
	RequestBorrow             RequestType = 4
	RequestRepay              RequestType = 5
)

var requestTypeNames = map[RequestType]string{
	RequestSupply:             "supply",
	RequestWithdraw:           "withdraw",
	RequestSupplyCollateral:   "supply_collateral",
	RequestWithdrawCollateral: "withdraw_collateral",
	RequestBorrow:             "borrow",
	RequestRepay:              "repay",
}

func (r RequestType) String() string {
	if name, ok := requestTypeNames[r]; ok {
		return name
	}
	return "unknown"
}

// Request is one entry of a pool submit call.
type Request struct {
	Asset  string
	Amount *big.Int
	Type   RequestType
}

func (r Request) encode() (xdr.ScVal, error) {
	if _, ok := requestTypeNames[r.Type]; !ok {
		return xdr.ScVal{}, errors.WrapUnknownVariant(r.Type.String())
	}
	asset, err := scval.Address(r.Asset)
	if err != nil {
		return xdr.ScVal{}, err
	}
	amt, err := scval.I128(r.Amount)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.Struct(map[string]xdr.ScVal{
		"address":      asset,
		"amount":       amt,
		"request_type": scval.U32(uint32(r.Type)),
	}), nil
}

// PoolSubmitArgs builds submit(from, spender, to, requests) with the caller
// acting as all three parties.
func PoolSubmitArgs(from string, requests []Request) ([]xdr.ScVal, error) {
	who, err := scval.Address(from)
	if err != nil {
		return nil, err
	}
	encoded := make([]xdr.ScVal, 0, len(requests))
	for _, r := range requests {
		v, err := r.encode()
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, v)
	}
	return []xdr.ScVal{who, who, who, scval.Vec(encoded...)}, nil
}

func PoolPositionsArgs(user string) ([]xdr.ScVal, error) {
	v, err := scval.Address(user)
	if err != nil {
		return nil, err
	}
	return []xdr.ScVal{v}, nil
}

func TokenBalanceArgs(id string) ([]xdr.ScVal, error) {
	return PoolPositionsArgs(id)
}

// Positions is a user's standing in the pool keyed by reserve index.
type Positions struct {
	Liabilities map[uint32]*big.Int
	Collateral  map[uint32]*big.Int
	Supply      map[uint32]*big.Int
}

func DecodePositions(v xdr.ScVal) (Positions, error) {
	fields, err := scval.DecodeStruct(v)
	if err != nil {
		return Positions{}, err
	}

	var out Positions
	for name, dst := range map[string]*map[uint32]*big.Int{
		"liabilities": &out.Liabilities,
		"collateral":  &out.Collateral,
		"supply":      &out.Supply,
	} {
		raw, ok := fields[name]
		if !ok {
			*dst = map[uint32]*big.Int{}
			continue
		}
		m, err := decodeReserveMap(raw)
		if err != nil {
			return Positions{}, err
		}
		*dst = m
	}
	return out, nil
}

func decodeReserveMap(v xdr.ScVal) (map[uint32]*big.Int, error) {
	entries, err := scval.DecodeMap(v)
	if err != nil {
		return nil, err
	}
	out := make(map[uint32]*big.Int, len(entries))
	for _, e := range entries {
		idx, ok := e.Key.GetU32()
		if !ok {
			return nil, errors.WrapUnexpectedValue("u32 reserve index", e.Key.Type)
		}
		amt, err := scval.DecodeI128(e.Val)
		if err != nil {
			return nil, err
		}
		out[uint32(idx)] = amt
	}
	return out, nil
}
