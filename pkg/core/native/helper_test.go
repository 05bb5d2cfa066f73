package native

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/internal/random"
	"github.com/nspcc-dev/neo-vesting/pkg/config"
	"github.com/nspcc-dev/neo-vesting/pkg/core/dao"
	"github.com/nspcc-dev/neo-vesting/pkg/core/interop"
	"github.com/nspcc-dev/neo-vesting/pkg/core/storage"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"github.com/stretchr/testify/require"
)

const now = 1_700_000_000

type testEnv struct {
	cs    *Contracts
	dao   *dao.Simple
	owner util.Uint160
}

func defaultConfig(owner util.Uint160) config.Vesting {
	cfg := config.Default().Vesting
	cfg.Owner = owner
	return cfg
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, defaultConfig(random.Uint160()))
}

func newTestEnvWithConfig(t *testing.T, cfg config.Vesting) *testEnv {
	cs, err := NewContracts(cfg)
	require.NoError(t, err)
	e := &testEnv{
		cs:    cs,
		dao:   dao.NewSimple(storage.NewMemoryStore()),
		owner: cfg.Owner,
	}
	ic := e.context(cfg.Owner, 0)
	for _, c := range cs.Contracts {
		require.NoError(t, c.Initialize(ic))
	}
	return e
}

func (e *testEnv) context(caller util.Uint160, time uint64) *interop.Context {
	return interop.NewContext(e.dao, caller, time, nil)
}

func (e *testEnv) balance(t *testing.T, acc util.Uint160) string {
	b, err := e.cs.Token.BalanceOf(e.dao, acc)
	require.NoError(t, err)
	return b.Dec()
}

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}
