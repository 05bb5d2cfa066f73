package native

import (
	"github.com/nspcc-dev/neo-vesting/pkg/config"
	"github.com/nspcc-dev/neo-vesting/pkg/core/interop"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
)

// Contracts is a set of registered built-in contracts.
type Contracts struct {
	Management *Management
	Token      *Token
	Vesting    *Vesting
	Contracts  []interop.Contract
}

// ByHash returns built-in contract with the specified hash.
func (cs *Contracts) ByHash(h util.Uint160) interop.Contract {
	for _, ctr := range cs.Contracts {
		if ctr.Metadata().Hash.Equals(h) {
			return ctr
		}
	}
	return nil
}

// ByName returns built-in contract with the specified name.
func (cs *Contracts) ByName(name string) interop.Contract {
	for _, ctr := range cs.Contracts {
		if ctr.Metadata().Name == name {
			return ctr
		}
	}
	return nil
}

// NewContracts returns a new set of built-in contracts configured with cfg.
// Vesting is granted token minting and burning permissions at creation.
func NewContracts(cfg config.Vesting) (*Contracts, error) {
	policies, err := cfg.Table()
	if err != nil {
		return nil, err
	}
	cs := new(Contracts)

	mgmt := newManagement(cfg.Owner)
	cs.Management = mgmt
	cs.Contracts = append(cs.Contracts, mgmt)

	token := newToken(cfg.TokenName, cfg.TokenSymbol, cfg.Decimals)
	token.Management = mgmt
	cs.Token = token
	cs.Contracts = append(cs.Contracts, token)

	v := newVesting(token.Hash, policies, cfg.AllowLateGrants)
	v.Token = token
	v.Access = mgmt
	cs.Vesting = v
	cs.Contracts = append(cs.Contracts, v)

	mgmt.initial[v.Hash] = CanMintTokens.mask() | CanBurnTokens.mask()
	return cs, nil
}
