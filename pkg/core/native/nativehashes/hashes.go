package nativehashes

import (
	"github.com/nspcc-dev/neo-vesting/pkg/core/interop"
	"github.com/nspcc-dev/neo-vesting/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
)

// Hashes of all built-in contracts.
var (
	Management util.Uint160
	Token      util.Uint160
	Vesting    util.Uint160
)

func init() {
	Management = interop.ContractHash(nativenames.Management)
	Token = interop.ContractHash(nativenames.Token)
	Vesting = interop.ContractHash(nativenames.Vesting)
}
