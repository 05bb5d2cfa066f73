package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// Uint160 is a 20 byte long unsigned integer used as an account address.
type Uint160 [Uint160Size]uint8

// Uint160DecodeString attempts to decode the given hex string (with or
// without 0x prefix) into an Uint160. Mixed-case strings must carry a valid
// EIP-55 checksum.
func Uint160DecodeString(s string) (Uint160, error) {
	var u Uint160
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != Uint160Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint160Size*2, len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return u, err
	}
	copy(u[:], b)
	if raw != strings.ToLower(raw) && raw != strings.ToUpper(raw) &&
		common.BytesToAddress(b).Hex()[2:] != raw {
		return Uint160{}, fmt.Errorf("bad address checksum: %s", s)
	}
	return u, nil
}

// Uint160DecodeBytes attempts to decode the given bytes into an Uint160.
func Uint160DecodeBytes(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected byte size of %d got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return
}

// Bytes returns the byte slice representation of u.
func (u Uint160) Bytes() []byte {
	b := make([]byte, Uint160Size)
	copy(b, u[:])
	return b
}

// StringLE returns lowercase hex representation of u without prefix.
func (u Uint160) StringLE() string {
	return hex.EncodeToString(u[:])
}

// String implements the stringer interface. It returns 0x-prefixed
// checksummed hex.
func (u Uint160) String() string {
	return common.Address(u).Hex()
}

// Equals returns true if both Uint160 values are the same.
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}

// IsZero returns true for the zero address.
func (u Uint160) IsZero() bool {
	return u == Uint160{}
}

// Less returns true if this value is less than the given Uint160 value. It's
// primarily intended to be used for sorting purposes.
func (u Uint160) Less(other Uint160) bool {
	for k := range u {
		if u[k] == other[k] {
			continue
		}
		return u[k] < other[k]
	}
	return false
}

// UnmarshalJSON implements the json unmarshaller interface.
func (u *Uint160) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*u, err = Uint160DecodeString(js)
	return err
}

// MarshalJSON implements the json marshaller interface.
func (u Uint160) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

// UnmarshalYAML implements the YAML Unmarshaler interface.
func (u *Uint160) UnmarshalYAML(unmarshal func(any) error) error {
	var s string

	err := unmarshal(&s)
	if err != nil {
		return err
	}

	*u, err = Uint160DecodeString(s)
	return err
}

// MarshalYAML implements the YAML marshaller interface.
func (u Uint160) MarshalYAML() (any, error) {
	return u.String(), nil
}
