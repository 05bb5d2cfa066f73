package vesting

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
)

// MaxTotalPeriods is the maximum number of linear release steps of a policy.
const MaxTotalPeriods = 1 << 16

// ErrUnknownAllocation is returned for allocation types missing from the
// policy table.
var ErrUnknownAllocation = errors.New("unknown allocation type")

// Policy describes how grants of some allocation type are released. Nothing
// is released until CliffDuration seconds pass since the vesting start, then
// InitialPercentage of the grant unlocks at once and the rest is released in
// TotalPeriods equal steps, one every PeriodDuration seconds.
type Policy struct {
	PeriodDuration    uint64 `yaml:"PeriodDuration"`
	CliffDuration     uint64 `yaml:"CliffDuration"`
	InitialPercentage uint64 `yaml:"InitialPercentage"`
	TotalPeriods      uint64 `yaml:"TotalPeriods"`
}

// Validate checks policy parameters for consistency.
func (p Policy) Validate() error {
	if p.PeriodDuration == 0 {
		return errors.New("zero period duration")
	}
	if p.TotalPeriods == 0 {
		return errors.New("zero number of periods")
	}
	if p.TotalPeriods > MaxTotalPeriods {
		return fmt.Errorf("too many periods: %d (at most %d)", p.TotalPeriods, MaxTotalPeriods)
	}
	if p.TotalPeriods > math.MaxUint64/p.PeriodDuration ||
		p.CliffDuration > math.MaxUint64-p.TotalPeriods*p.PeriodDuration {
		return errors.New("vesting duration overflows")
	}
	if p.InitialPercentage > 100 {
		return fmt.Errorf("initial percentage %d is above 100", p.InitialPercentage)
	}
	return nil
}

// Duration returns the number of seconds since the vesting start after which
// grants are fully released. It never overflows for a valid policy.
func (p Policy) Duration() uint64 {
	return p.CliffDuration + p.TotalPeriods*p.PeriodDuration
}

// Table maps allocation types to policies. It's immutable after creation.
type Table struct {
	policies map[AllocationType]Policy
}

// NewTable creates a policy table from the given set, every policy is
// validated.
func NewTable(policies map[AllocationType]Policy) (*Table, error) {
	t := &Table{policies: make(map[AllocationType]Policy, len(policies))}
	for a, p := range policies {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s policy: %w", a, err)
		}
		t.policies[a] = p
	}
	return t, nil
}

// DefaultPolicies returns the canonical policy table.
func DefaultPolicies() *Table {
	return &Table{policies: map[AllocationType]Policy{
		Seed:    {PeriodDuration: 360, CliffDuration: 600, InitialPercentage: 10, TotalPeriods: 45},
		Private: {PeriodDuration: 360, CliffDuration: 600, InitialPercentage: 15, TotalPeriods: 42},
	}}
}

// LegacyPolicies returns the table releasing one percent of a grant per
// period.
func LegacyPolicies() *Table {
	return &Table{policies: map[AllocationType]Policy{
		Seed:    {PeriodDuration: 360, CliffDuration: 600, InitialPercentage: 10, TotalPeriods: 90},
		Private: {PeriodDuration: 360, CliffDuration: 600, InitialPercentage: 15, TotalPeriods: 85},
	}}
}

// Equal checks whether both tables have the same set of policies.
func (t *Table) Equal(other *Table) bool {
	return maps.Equal(t.policies, other.policies)
}

// Policy returns the policy for the given allocation type.
func (t *Table) Policy(a AllocationType) (Policy, error) {
	p, ok := t.policies[a]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %s", ErrUnknownAllocation, a)
	}
	return p, nil
}

// Types returns all allocation types known to the table in ascending order.
func (t *Table) Types() []AllocationType {
	res := make([]AllocationType, 0, len(t.policies))
	for a := range t.policies {
		res = append(res, a)
	}
	slices.Sort(res)
	return res
}
