package vesting

import (
	"math"
	"testing"

	"github.com/nspcc-dev/neo-vesting/internal/testserdes"
	"github.com/stretchr/testify/require"
)

func TestPolicyValidate(t *testing.T) {
	good := Policy{PeriodDuration: 360, CliffDuration: 600, InitialPercentage: 10, TotalPeriods: 45}
	require.NoError(t, good.Validate())

	bad := good
	bad.PeriodDuration = 0
	require.Error(t, bad.Validate())

	bad = good
	bad.TotalPeriods = 0
	require.Error(t, bad.Validate())

	bad = good
	bad.InitialPercentage = 101
	require.Error(t, bad.Validate())

	full := good
	full.InitialPercentage = 100
	require.NoError(t, full.Validate())

	t.Run("too many periods", func(t *testing.T) {
		p := Policy{PeriodDuration: 1, InitialPercentage: 10, TotalPeriods: 1 << 44}
		require.Error(t, p.Validate())
		_, err := NewTable(map[AllocationType]Policy{Seed: p})
		require.Error(t, err)

		p.TotalPeriods = MaxTotalPeriods
		require.NoError(t, p.Validate())
		p.TotalPeriods = math.MaxUint64
		require.Error(t, p.Validate())
	})
	t.Run("duration overflow", func(t *testing.T) {
		p := Policy{PeriodDuration: math.MaxUint64 / 2, TotalPeriods: 3}
		require.Error(t, p.Validate())

		p = Policy{PeriodDuration: math.MaxUint64 / 4, TotalPeriods: 2, CliffDuration: math.MaxUint64}
		require.Error(t, p.Validate())

		p.CliffDuration = math.MaxUint64 / 4
		require.NoError(t, p.Validate())
		require.Equal(t, uint64(math.MaxUint64/4*3), p.Duration())
	})
}

func TestNewTable(t *testing.T) {
	tbl, err := NewTable(map[AllocationType]Policy{
		Private: {PeriodDuration: 10, TotalPeriods: 1},
		5:       {PeriodDuration: 1, TotalPeriods: 3, InitialPercentage: 50},
	})
	require.NoError(t, err)
	require.Equal(t, []AllocationType{Private, 5}, tbl.Types())

	_, err = tbl.Policy(Seed)
	require.ErrorIs(t, err, ErrUnknownAllocation)

	_, err = NewTable(map[AllocationType]Policy{Seed: {}})
	require.Error(t, err)
}

func TestDefaultPolicies(t *testing.T) {
	tbl := DefaultPolicies()
	require.Equal(t, []AllocationType{Seed, Private}, tbl.Types())

	p := mustPolicy(t, tbl, Seed)
	require.Equal(t, uint64(600+45*360), p.Duration())
	p = mustPolicy(t, tbl, Private)
	require.Equal(t, uint64(15), p.InitialPercentage)
}

func TestAllocationType(t *testing.T) {
	for _, s := range []string{"seed", "Seed", "SEED", "0", "allocation0"} {
		a, err := ParseAllocationType(s)
		require.NoError(t, err, s)
		require.Equal(t, Seed, a)
	}
	a, err := ParseAllocationType("private")
	require.NoError(t, err)
	require.Equal(t, Private, a)

	a, err = ParseAllocationType(AllocationType(7).String())
	require.NoError(t, err)
	require.Equal(t, AllocationType(7), a)

	for _, s := range []string{"", "public", "256", "allocation"} {
		_, err = ParseAllocationType(s)
		require.ErrorIs(t, err, ErrUnknownAllocation, s)
	}

	seed := Seed
	testserdes.MarshalUnmarshalYAML(t, &seed, new(AllocationType))
	other := AllocationType(42)
	testserdes.MarshalUnmarshalYAML(t, &other, new(AllocationType))
}
