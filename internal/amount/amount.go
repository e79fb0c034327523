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

// Package amount converts human decimal strings to and from the fixed-point
// integers contracts store. Conversion is exact; extra fractional digits are
// truncated, never rounded.
package amount

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/dotandev/tranche/internal/errors"
)

// DefaultPrecision is the number of fractional digits used by tranche and
// token contracts.
const DefaultPrecision = 7

var decimalPattern = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// ToWire parses a non-negative decimal string into its scaled integer form.
//
//	ToWire("12.5", 7) -> 125000000
//	ToWire("0.12345678", 7) -> 1234567
func ToWire(s string, precision int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if precision < 0 || !decimalPattern.MatchString(s) {
		return nil, errors.WrapMalformedAmount(s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > precision {
		frac = frac[:precision]
	}
	frac += strings.Repeat("0", precision-len(frac))

	v, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, errors.WrapMalformedAmount(s)
	}
	return v, nil
}

// MustToWire is ToWire for constants known to be valid.
func MustToWire(s string, precision int) *big.Int {
	v, err := ToWire(s, precision)
	if err != nil {
		panic(err)
	}
	return v
}

// FromWire renders a scaled integer in minimal decimal form: trailing
// fractional zeros are dropped and whole values carry no decimal point.
// Negative values keep their sign.
func FromWire(x *big.Int, precision int) string {
	if x == nil {
		return "0"
	}
	if precision <= 0 {
		return x.String()
	}

	abs := new(big.Int).Abs(x)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	var b strings.Builder
	if x.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteString(whole.String())

	if frac.Sign() != 0 {
		digits := frac.String()
		digits = strings.Repeat("0", precision-len(digits)) + digits
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(digits, "0"))
	}
	return b.String()
}

// IsPositive reports whether s parses to a value above zero at the given
// precision. Malformed input yields the parse error.
func IsPositive(s string, precision int) (bool, error) {
	v, err := ToWire(s, precision)
	if err != nil {
		return false, err
	}
	return v.Sign() > 0, nil
}
