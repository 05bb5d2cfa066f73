package vesting

import (
	"math/big"

	"github.com/holiman/uint256"
)

var hundred = big.NewInt(100)

// Accrued returns the part of total unlocked by now for a vesting started at
// initialTimestamp (zero means not started). The initial part and the linear
// part are truncated separately, the result reaches total exactly once all
// periods pass.
func Accrued(total *uint256.Int, p Policy, initialTimestamp, now uint64) *uint256.Int {
	if initialTimestamp == 0 || now < initialTimestamp {
		return new(uint256.Int)
	}
	elapsed := now - initialTimestamp
	if elapsed < p.CliffDuration {
		return new(uint256.Int)
	}
	periods := (elapsed - p.CliffDuration) / p.PeriodDuration
	if periods >= p.TotalPeriods {
		return total.Clone()
	}

	t := total.ToBig()
	initial := new(big.Int).Mul(t, new(big.Int).SetUint64(p.InitialPercentage))
	initial.Quo(initial, hundred)

	linear := new(big.Int).Mul(t, new(big.Int).SetUint64(100-p.InitialPercentage))
	linear.Mul(linear, new(big.Int).SetUint64(periods))
	linear.Quo(linear, new(big.Int).Mul(hundred, new(big.Int).SetUint64(p.TotalPeriods)))

	// Can't exceed total and hence can't overflow.
	return uint256.MustFromBig(initial.Add(initial, linear))
}

// Claimable returns the amount that can be withdrawn now for a grant of total
// tokens with paid of them already released.
func Claimable(total, paid *uint256.Int, p Policy, initialTimestamp, now uint64) *uint256.Int {
	acc := Accrued(total, p, initialTimestamp, now)
	if acc.Lt(paid) {
		return new(uint256.Int)
	}
	return acc.Sub(acc, paid)
}
