package vesting

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestSchedule(t *testing.T) {
	p := mustPolicy(t, DefaultPolicies(), Seed)

	steps := Schedule(p, oneToken(), start)
	require.Len(t, steps, int(p.TotalPeriods)+1)
	require.Equal(t, uint64(start+600), steps[0].Time)
	require.Equal(t, "100000000000000000", steps[0].Unlocked.Dec())
	require.Equal(t, steps[0].Unlocked, steps[0].Delta)
	require.Equal(t, uint64(start+960), steps[1].Time)
	require.Equal(t, "20000000000000000", steps[1].Delta.Dec())

	last := steps[len(steps)-1]
	require.Equal(t, uint64(start)+p.Duration(), last.Time)
	require.True(t, last.Unlocked.Eq(oneToken()))

	sum := new(uint256.Int)
	for _, s := range steps {
		sum.Add(sum, s.Delta)
	}
	require.True(t, sum.Eq(oneToken()))
}

func TestScheduleOffsets(t *testing.T) {
	p := mustPolicy(t, DefaultPolicies(), Private)

	steps := Schedule(p, oneToken(), 0)
	require.Equal(t, uint64(600), steps[0].Time)
	require.Equal(t, p.Duration(), steps[len(steps)-1].Time)
}

func TestScheduleSkipsEmptySteps(t *testing.T) {
	p := Policy{PeriodDuration: 10, CliffDuration: 0, InitialPercentage: 0, TotalPeriods: 4}

	// 2 tokens over 4 periods: nothing at cliff, then 0, 1, 1, 2 cumulative.
	steps := Schedule(p, uint256.NewInt(2), start)
	require.Len(t, steps, 2)
	require.Equal(t, uint64(2), steps[0].Period)
	require.Equal(t, uint64(1), steps[0].Delta.Uint64())
	require.Equal(t, uint64(4), steps[1].Period)
	require.Equal(t, uint64(2), steps[1].Unlocked.Uint64())
}

func TestScheduleManyPeriods(t *testing.T) {
	p := Policy{PeriodDuration: 1, InitialPercentage: 10, TotalPeriods: MaxTotalPeriods}
	require.NoError(t, p.Validate())

	total := uint256.NewInt(1000)
	steps := Schedule(p, total, 0)
	// Only steps releasing something are returned.
	require.LessOrEqual(t, len(steps), 901)
	require.Equal(t, "100", steps[0].Delta.Dec())
	require.Equal(t, uint64(MaxTotalPeriods), steps[len(steps)-1].Time)

	sum := new(uint256.Int)
	for _, s := range steps {
		sum.Add(sum, s.Delta)
	}
	require.True(t, sum.Eq(total))
}
