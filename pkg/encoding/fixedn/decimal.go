/*
Package fixedn implements fixed-point token amounts. Amounts are kept as
unsigned integers of token units, precision is the number of decimals of the
token.
*/
package fixedn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// MaxPrecision is the maximum number of decimals uint256 amounts can have
// with at least one integral digit.
const MaxPrecision = 77

var (
	errInvalidString    = errors.New("fixed point number must have digits")
	errPrecisionTooHigh = errors.New("too many decimal digits")
	errOverflow         = errors.New("value doesn't fit into 256 bits")
)

func pow10(n int) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

// ToString converts amount of token units to a decimal string, trailing
// fractional zeros are omitted.
func ToString(v *uint256.Int, precision int) string {
	s := v.Dec()
	if precision == 0 {
		return s
	}
	if len(s) <= precision {
		s = strings.Repeat("0", precision-len(s)+1) + s
	}
	integral, fraction := s[:len(s)-precision], strings.TrimRight(s[len(s)-precision:], "0")
	if fraction == "" {
		return integral
	}
	return integral + "." + fraction
}

// FromString parses decimal string s into the amount of token units.
func FromString(s string, precision int) (*uint256.Int, error) {
	if precision < 0 || precision > MaxPrecision {
		return nil, fmt.Errorf("invalid precision %d", precision)
	}
	integral, fraction, dot := strings.Cut(s, ".")
	if integral == "" && fraction == "" || dot && fraction == "" {
		return nil, errInvalidString
	}
	if len(fraction) > precision {
		return nil, errPrecisionTooHigh
	}
	for _, part := range []string{integral, fraction} {
		for i := range part {
			if part[i] < '0' || part[i] > '9' {
				return nil, fmt.Errorf("invalid character %q", part[i])
			}
		}
	}
	digits := strings.TrimLeft(integral+fraction+strings.Repeat("0", precision-len(fraction)), "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, errOverflow
	}
	return v, nil
}

// FromWhole returns the amount of n whole tokens.
func FromWhole(n uint64, precision int) (*uint256.Int, error) {
	v, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(n), pow10(precision))
	if overflow {
		return nil, errOverflow
	}
	return v, nil
}
