package state

import (
	"fmt"

	"github.com/nspcc-dev/neo-vesting/pkg/io"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"github.com/nspcc-dev/neo-vesting/pkg/vesting"
)

// maxPolicies is the number of distinct allocation types.
const maxPolicies = 256

// AllocationPolicy is a release policy of some allocation type.
type AllocationPolicy struct {
	Type vesting.AllocationType `json:"type"`
	vesting.Policy
}

// Vesting is the global vesting schedule state.
type Vesting struct {
	// Initialized is set once the contract is bound to its token.
	Initialized bool `json:"initialized"`
	// Token is the address of the vested token.
	Token util.Uint160 `json:"token"`
	// InitialTimestamp is the vesting start, zero means not started.
	InitialTimestamp uint64 `json:"initialtimestamp"`
	// InvestorChanged is set after a successful investor reassignment.
	InvestorChanged bool `json:"investorchanged"`
	// AllowLateGrants and Policies are fixed at initialization.
	AllowLateGrants bool               `json:"allowlategrants"`
	Policies        []AllocationPolicy `json:"policies"`
}

// Started returns true if the vesting start time is set.
func (v *Vesting) Started() bool {
	return v.InitialTimestamp != 0
}

// Table returns the policy table stored in the state.
func (v *Vesting) Table() (*vesting.Table, error) {
	m := make(map[vesting.AllocationType]vesting.Policy, len(v.Policies))
	for _, p := range v.Policies {
		if _, ok := m[p.Type]; ok {
			return nil, fmt.Errorf("duplicate %s policy", p.Type)
		}
		m[p.Type] = p.Policy
	}
	return vesting.NewTable(m)
}

// SetTable replaces Policies with the contents of t.
func (v *Vesting) SetTable(t *vesting.Table) {
	v.Policies = v.Policies[:0]
	for _, a := range t.Types() {
		p, _ := t.Policy(a)
		v.Policies = append(v.Policies, AllocationPolicy{Type: a, Policy: p})
	}
}

// EncodeBinary implements io.Serializable interface.
func (v *Vesting) EncodeBinary(w *io.BinWriter) {
	w.WriteBool(v.Initialized)
	w.WriteBytes(v.Token[:])
	w.WriteU64LE(v.InitialTimestamp)
	w.WriteBool(v.InvestorChanged)
	w.WriteBool(v.AllowLateGrants)
	w.WriteVarUint(uint64(len(v.Policies)))
	for i := range v.Policies {
		p := &v.Policies[i]
		w.WriteB(byte(p.Type))
		w.WriteU64LE(p.PeriodDuration)
		w.WriteU64LE(p.CliffDuration)
		w.WriteU64LE(p.InitialPercentage)
		w.WriteU64LE(p.TotalPeriods)
	}
}

// DecodeBinary implements io.Serializable interface.
func (v *Vesting) DecodeBinary(r *io.BinReader) {
	v.Initialized = r.ReadBool()
	r.ReadBytes(v.Token[:])
	v.InitialTimestamp = r.ReadU64LE()
	v.InvestorChanged = r.ReadBool()
	v.AllowLateGrants = r.ReadBool()
	n := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if n > maxPolicies {
		r.Err = fmt.Errorf("too many policies: %d", n)
		return
	}
	v.Policies = nil
	if n != 0 {
		v.Policies = make([]AllocationPolicy, n)
	}
	for i := range v.Policies {
		p := &v.Policies[i]
		p.Type = vesting.AllocationType(r.ReadB())
		p.PeriodDuration = r.ReadU64LE()
		p.CliffDuration = r.ReadU64LE()
		p.InitialPercentage = r.ReadU64LE()
		p.TotalPeriods = r.ReadU64LE()
	}
}
