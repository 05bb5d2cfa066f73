package vesting

import (
	"fmt"
	"strconv"
	"strings"
)

// AllocationType is a category of investor grant, each type is released
// according to its own Policy.
type AllocationType uint8

// Built-in allocation types.
const (
	Seed AllocationType = iota
	Private
)

// String implements the fmt.Stringer interface.
func (a AllocationType) String() string {
	switch a {
	case Seed:
		return "seed"
	case Private:
		return "private"
	default:
		return "allocation" + strconv.Itoa(int(a))
	}
}

// ParseAllocationType parses allocation type from its name or numeric ID.
// Names are case-insensitive.
func ParseAllocationType(s string) (AllocationType, error) {
	switch strings.ToLower(s) {
	case "seed":
		return Seed, nil
	case "private":
		return Private, nil
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "allocation"), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAllocation, s)
	}
	return AllocationType(n), nil
}

// MarshalYAML implements the YAML Marshaler interface.
func (a AllocationType) MarshalYAML() (any, error) {
	return a.String(), nil
}

// UnmarshalYAML implements the YAML Unmarshaler interface.
func (a *AllocationType) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	t, err := ParseAllocationType(s)
	if err != nil {
		return err
	}
	*a = t
	return nil
}
