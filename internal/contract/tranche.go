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

// Package contract holds the argument and return shapes of the tranche,
// token and lending-pool contracts. It is the only place that knows how
// those contracts lay out their values.
package contract

import (
	"math/big"
	"strings"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/scval"
	"github.com/stellar/go/xdr"
)

// Tranche contract entry points
const (
	FnInitialize          = "initialize"
	FnSubscribe           = "subscribe"
	FnRedeem              = "redeem"
	FnApproveSubscription = "approve_subscription"
	FnGetUserShare        = "get_user_share"
	FnGetTotals           = "get_totals"
	FnGetMinimums         = "get_minimums"
	FnIsPaused            = "is_paused"
)

// TrancheKind is a risk class of the tranche contract. The zero value is
// not a valid kind; use Senior or Junior.
type TrancheKind struct {
	tag string
}

var (
	Senior = TrancheKind{tag: "Senior"}
	Junior = TrancheKind{tag: "Junior"}
)

// TrancheKinds lists every kind in contract order.
var TrancheKinds = []TrancheKind{Senior, Junior}

func (k TrancheKind) String() string { return k.tag }

func (k TrancheKind) valid() bool {
	return k == Senior || k == Junior
}

// ParseTrancheKind accepts "senior" or "junior" in any case.
func ParseTrancheKind(s string) (TrancheKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "senior":
		return Senior, nil
	case "junior":
		return Junior, nil
	default:
		return TrancheKind{}, errors.WrapUnknownVariant(s)
	}
}

func EncodeTranche(k TrancheKind) (xdr.ScVal, error) {
	if !k.valid() {
		return xdr.ScVal{}, errors.WrapUnknownVariant(k.tag)
	}
	return scval.UnitVariant(k.tag), nil
}

func DecodeTranche(v xdr.ScVal) (TrancheKind, error) {
	tag, err := scval.DecodeUnitVariant(v)
	if err != nil {
		return TrancheKind{}, err
	}
	switch tag {
	case Senior.tag:
		return Senior, nil
	case Junior.tag:
		return Junior, nil
	default:
		return TrancheKind{}, errors.WrapUnknownVariant(tag)
	}
}

// TranchePair holds one value per tranche kind, as returned by get_totals
// and get_minimums.
type TranchePair struct {
	Senior *big.Int
	Junior *big.Int
}

func InitializeArgs(admin, token, pool string, minSenior, minJunior *big.Int) ([]xdr.ScVal, error) {
	adminVal, err := scval.Address(admin)
	if err != nil {
		return nil, err
	}
	tokenVal, err := scval.Address(token)
	if err != nil {
		return nil, err
	}
	poolVal, err := scval.Address(pool)
	if err != nil {
		return nil, err
	}
	seniorVal, err := scval.I128(minSenior)
	if err != nil {
		return nil, err
	}
	juniorVal, err := scval.I128(minJunior)
	if err != nil {
		return nil, err
	}
	return []xdr.ScVal{adminVal, tokenVal, poolVal, seniorVal, juniorVal}, nil
}

// SubscribeArgs builds (from, tranche, amount). Redeem shares the layout.
func SubscribeArgs(from string, kind TrancheKind, amount *big.Int) ([]xdr.ScVal, error) {
	return addressTrancheAmount(from, kind, amount)
}

func RedeemArgs(from string, kind TrancheKind, amount *big.Int) ([]xdr.ScVal, error) {
	return addressTrancheAmount(from, kind, amount)
}

func ApproveSubscriptionArgs(user string, kind TrancheKind, amount *big.Int) ([]xdr.ScVal, error) {
	return addressTrancheAmount(user, kind, amount)
}

func UserShareArgs(user string, kind TrancheKind) ([]xdr.ScVal, error) {
	userVal, err := scval.Address(user)
	if err != nil {
		return nil, err
	}
	kindVal, err := EncodeTranche(kind)
	if err != nil {
		return nil, err
	}
	return []xdr.ScVal{userVal, kindVal}, nil
}

func addressTrancheAmount(addr string, kind TrancheKind, amount *big.Int) ([]xdr.ScVal, error) {
	args, err := UserShareArgs(addr, kind)
	if err != nil {
		return nil, err
	}
	amountVal, err := scval.I128(amount)
	if err != nil {
		return nil, err
	}
	return append(args, amountVal), nil
}

func DecodeShare(v xdr.ScVal) (*big.Int, error) {
	return scval.DecodeI128(v)
}

// DecodeTranchePair reads a (senior, junior) tuple of integers.
func DecodeTranchePair(v xdr.ScVal) (TranchePair, error) {
	first, second, err := scval.DecodePair(v)
	if err != nil {
		return TranchePair{}, err
	}
	senior, err := scval.DecodeI128(first)
	if err != nil {
		return TranchePair{}, err
	}
	junior, err := scval.DecodeI128(second)
	if err != nil {
		return TranchePair{}, err
	}
	return TranchePair{Senior: senior, Junior: junior}, nil
}

func DecodePaused(v xdr.ScVal) (bool, error) {
	return scval.DecodeBool(v)
}
