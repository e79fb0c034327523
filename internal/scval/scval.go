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

// Package scval encodes Go values into Soroban contract values and decodes
// contract return values back into Go types.
package scval

import (
	"math/big"
	"sort"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

var (
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64  = new(big.Int).SetUint64(^uint64(0))
)

func Symbol(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

func U32(n uint32) xdr.ScVal {
	u := xdr.Uint32(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}
}

func Bool(b bool) xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}
}

func Vec(items ...xdr.ScVal) xdr.ScVal {
	vec := xdr.ScVec(items)
	if vec == nil {
		vec = xdr.ScVec{}
	}
	pv := &vec
	return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &pv}
}

// ScAddress parses a G... account or C... contract strkey.
func ScAddress(address string) (xdr.ScAddress, error) {
	if strkey.IsValidEd25519PublicKey(address) {
		accountID, err := xdr.AddressToAccountId(address)
		if err != nil {
			return xdr.ScAddress{}, errors.WrapInvalidAddress(address, err)
		}
		return xdr.ScAddress{
			Type:      xdr.ScAddressTypeScAddressTypeAccount,
			AccountId: &accountID,
		}, nil
	}

	raw, err := strkey.Decode(strkey.VersionByteContract, address)
	if err != nil {
		return xdr.ScAddress{}, errors.WrapInvalidAddress(address, err)
	}

	// Union arm 1 (contract) followed by the 32-byte contract hash.
	buf := make([]byte, 0, 4+len(raw))
	buf = append(buf, 0, 0, 0, byte(xdr.ScAddressTypeScAddressTypeContract))
	buf = append(buf, raw...)

	var out xdr.ScAddress
	if err := xdr.SafeUnmarshal(buf, &out); err != nil {
		return xdr.ScAddress{}, errors.WrapInvalidAddress(address, err)
	}
	return out, nil
}

func Address(address string) (xdr.ScVal, error) {
	addr, err := ScAddress(address)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}, nil
}

func DecodeAddress(v xdr.ScVal) (string, error) {
	addr, ok := v.GetAddress()
	if !ok {
		return "", errors.WrapUnexpectedValue("address", v.Type)
	}
	s, err := addr.String()
	if err != nil {
		return "", errors.WrapInvalidAddress("", err)
	}
	return s, nil
}

// I128 encodes x as a signed 128-bit integer.
func I128(x *big.Int) (xdr.ScVal, error) {
	if x == nil {
		x = new(big.Int)
	}
	if x.Cmp(maxI128) > 0 || x.Cmp(minI128) < 0 {
		return xdr.ScVal{}, errors.WrapOutOfRange(x.String() + " does not fit in i128")
	}

	u := new(big.Int).Set(x)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	lo := new(big.Int).And(u, mask64).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()

	parts := xdr.Int128Parts{Hi: xdr.Int64(int64(hi)), Lo: xdr.Uint64(lo)}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}, nil
}

// DecodeI128 reads any integer return value (i128, u128, i64, u64, u32)
// into a big.Int.
func DecodeI128(v xdr.ScVal) (*big.Int, error) {
	switch v.Type {
	case xdr.ScValTypeScvI128:
		p := v.MustI128()
		out := new(big.Int).Lsh(big.NewInt(int64(p.Hi)), 64)
		return out.Add(out, new(big.Int).SetUint64(uint64(p.Lo))), nil
	case xdr.ScValTypeScvU128:
		p := v.MustU128()
		out := new(big.Int).Lsh(new(big.Int).SetUint64(uint64(p.Hi)), 64)
		return out.Add(out, new(big.Int).SetUint64(uint64(p.Lo))), nil
	case xdr.ScValTypeScvI64:
		return big.NewInt(int64(v.MustI64())), nil
	case xdr.ScValTypeScvU64:
		return new(big.Int).SetUint64(uint64(v.MustU64())), nil
	case xdr.ScValTypeScvU32:
		return new(big.Int).SetUint64(uint64(v.MustU32())), nil
	default:
		return nil, errors.WrapUnexpectedValue("integer", v.Type)
	}
}

func DecodeBool(v xdr.ScVal) (bool, error) {
	b, ok := v.GetB()
	if !ok {
		return false, errors.WrapUnexpectedValue("bool", v.Type)
	}
	return b, nil
}

func DecodeSymbol(v xdr.ScVal) (string, error) {
	sym, ok := v.GetSym()
	if !ok {
		return "", errors.WrapUnexpectedValue("symbol", v.Type)
	}
	return string(sym), nil
}

func DecodeVec(v xdr.ScVal) ([]xdr.ScVal, error) {
	vec, ok := v.GetVec()
	if !ok || vec == nil {
		return nil, errors.WrapUnexpectedValue("vec", v.Type)
	}
	return []xdr.ScVal(*vec), nil
}

// UnitVariant encodes a payload-free enum case as Vec[Symbol(tag), Vec[]].
func UnitVariant(tag string) xdr.ScVal {
	return Vec(Symbol(tag), Vec())
}

// DecodeUnitVariant returns the tag of a unit enum case. It accepts the
// two-element form written by UnitVariant, the bare Vec[Symbol(tag)] form
// and a plain symbol.
func DecodeUnitVariant(v xdr.ScVal) (string, error) {
	if v.Type == xdr.ScValTypeScvSymbol {
		return DecodeSymbol(v)
	}
	items, err := DecodeVec(v)
	if err != nil {
		return "", err
	}
	if len(items) == 0 || len(items) > 2 {
		return "", errors.WrapUnexpectedValue("unit variant", v.Type)
	}
	if len(items) == 2 {
		rest, err := DecodeVec(items[1])
		if err != nil || len(rest) != 0 {
			return "", errors.WrapUnexpectedValue("unit variant without payload", items[1].Type)
		}
	}
	return DecodeSymbol(items[0])
}

// DecodePair splits a two-element tuple.
func DecodePair(v xdr.ScVal) (xdr.ScVal, xdr.ScVal, error) {
	items, err := DecodeVec(v)
	if err != nil {
		return xdr.ScVal{}, xdr.ScVal{}, err
	}
	if len(items) != 2 {
		return xdr.ScVal{}, xdr.ScVal{}, errors.WrapUnexpectedValue("2-tuple", v.Type)
	}
	return items[0], items[1], nil
}

// Struct encodes named fields as a map keyed by symbol. Keys are sorted, as
// the host requires for map values.
func Struct(fields map[string]xdr.ScVal) xdr.ScVal {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make(xdr.ScMap, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, xdr.ScMapEntry{Key: Symbol(k), Val: fields[k]})
	}
	pm := &entries
	return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &pm}
}

func DecodeMap(v xdr.ScVal) (xdr.ScMap, error) {
	m, ok := v.GetMap()
	if !ok || m == nil {
		return nil, errors.WrapUnexpectedValue("map", v.Type)
	}
	return *m, nil
}

// DecodeStruct reads a symbol-keyed map into a field lookup.
func DecodeStruct(v xdr.ScVal) (map[string]xdr.ScVal, error) {
	m, err := DecodeMap(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]xdr.ScVal, len(m))
	for _, entry := range m {
		name, err := DecodeSymbol(entry.Key)
		if err != nil {
			return nil, err
		}
		out[name] = entry.Val
	}
	return out, nil
}
