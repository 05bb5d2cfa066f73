package config

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
)

// Policy table names.
const (
	PolicyTableDefault = "default"
	PolicyTableLegacy  = "legacy"
	PolicyTableCustom  = "custom"
)

// Token defaults.
const (
	DefaultTokenName   = "MyToken"
	DefaultTokenSymbol = "MK"
	DefaultDecimals    = 18
)

// Vesting is the configuration of the vesting contracts.
type Vesting struct {
	// Owner is the Management owner, it's the only administrator initially.
	Owner       util.Uint160 `yaml:"Owner"`
	TokenName   string       `yaml:"TokenName"`
	TokenSymbol string       `yaml:"TokenSymbol"`
	Decimals    uint8        `yaml:"Decimals"`
	// PolicyTable is one of "default", "legacy" or "custom", Policies are
	// used for the latter.
	PolicyTable string        `yaml:"PolicyTable"`
	Policies    []PolicyEntry `yaml:"Policies"`
	// AllowLateGrants permits adding investors after the vesting start.
	AllowLateGrants bool `yaml:"AllowLateGrants"`
}

// PolicyEntry is a custom policy of some allocation type.
type PolicyEntry struct {
	Type           vesting.AllocationType `yaml:"Type"`
	vesting.Policy `yaml:",inline"`
}

// Validate checks Vesting section for consistency.
func (v Vesting) Validate() error {
	if v.Owner.IsZero() {
		return errors.New("no Owner specified")
	}
	if v.TokenSymbol == "" {
		return errors.New("empty TokenSymbol")
	}
	if v.Decimals > 77 {
		return fmt.Errorf("too many decimals: %d", v.Decimals)
	}
	_, err := v.Table()
	return err
}

// Table returns the configured policy table.
func (v Vesting) Table() (*vesting.Table, error) {
	switch v.PolicyTable {
	case PolicyTableDefault, "":
		if len(v.Policies) != 0 {
			return nil, errors.New("policies are only allowed for custom table")
		}
		return vesting.DefaultPolicies(), nil
	case PolicyTableLegacy:
		if len(v.Policies) != 0 {
			return nil, errors.New("policies are only allowed for custom table")
		}
		return vesting.LegacyPolicies(), nil
	case PolicyTableCustom:
		if len(v.Policies) == 0 {
			return nil, errors.New("no Policies for custom PolicyTable")
		}
		m := make(map[vesting.AllocationType]vesting.Policy, len(v.Policies))
		for _, e := range v.Policies {
			if _, ok := m[e.Type]; ok {
				return nil, fmt.Errorf("duplicate %s policy", e.Type)
			}
			m[e.Type] = e.Policy
		}
		return vesting.NewTable(m)
	default:
		return nil, fmt.Errorf("unknown PolicyTable %q", v.PolicyTable)
	}
}
