// Package testledger contains helpers creating ledgers for tests.
package testledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/internal/random"
	"github.com/nspcc-dev/neo-vesting/pkg/config"
	"github.com/nspcc-dev/neo-vesting/pkg/core"
	"github.com/nspcc-dev/neo-vesting/pkg/core/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Config returns default vesting configuration with a random owner.
func Config() config.Vesting {
	cfg := config.Default().Vesting
	cfg.Owner = random.Uint160()
	return cfg
}

// New creates an in-memory ledger configured with cfg. It's closed when the
// test ends.
func New(t testing.TB, cfg config.Vesting) *core.Ledger {
	return NewWithStore(t, storage.NewMemoryStore(), cfg)
}

// NewWithStore creates a ledger over s. It's closed when the test ends.
func NewWithStore(t testing.TB, s storage.Store, cfg config.Vesting) *core.Ledger {
	l, err := core.NewLedger(s, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// Tokens returns n whole tokens with 18 decimals.
func Tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}
