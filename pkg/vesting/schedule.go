package vesting

import "github.com/holiman/uint256"

// Step is a single unlock event of the release timetable.
type Step struct {
	// Time is the absolute time of the unlock (or the offset from the
	// vesting start if it's not known).
	Time uint64
	// Period is the number of linear periods passed since the cliff end.
	Period uint64
	// Unlocked is the cumulative amount released at Time.
	Unlocked *uint256.Int
	// Delta is the amount released at Time.
	Delta *uint256.Int
}

// Schedule returns the complete release timetable for a grant of total tokens,
// the first step is the cliff end. Steps releasing nothing (possible for
// tiny grants) are skipped. The policy must be valid.
func Schedule(p Policy, total *uint256.Int, initialTimestamp uint64) []Step {
	var (
		res  []Step
		prev = new(uint256.Int)
		base = initialTimestamp
	)
	if base == 0 {
		// Offsets only, Accrued needs a non-zero start.
		base = 1
	}
	for i := uint64(0); i <= p.TotalPeriods; i++ {
		at := base + p.CliffDuration + i*p.PeriodDuration
		unlocked := Accrued(total, p, base, at)
		if unlocked.Eq(prev) {
			continue
		}
		res = append(res, Step{
			Time:     at - base + initialTimestamp,
			Period:   i,
			Unlocked: unlocked,
			Delta:    new(uint256.Int).Sub(unlocked, prev),
		})
		prev = unlocked
	}
	return res
}
