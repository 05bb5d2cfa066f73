package util_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-vesting/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestUint160DecodeString(t *testing.T) {
	val, err := util.Uint160DecodeString(checksummed)
	require.NoError(t, err)
	assert.Equal(t, checksummed, val.String())
	assert.Equal(t, strings.ToLower(checksummed[2:]), val.StringLE())

	lower, err := util.Uint160DecodeString(strings.ToLower(checksummed))
	require.NoError(t, err)
	assert.Equal(t, val, lower)

	noPrefix, err := util.Uint160DecodeString(strings.ToLower(checksummed[2:]))
	require.NoError(t, err)
	assert.Equal(t, val, noPrefix)

	_, err = util.Uint160DecodeString(checksummed[1:])
	assert.Error(t, err)

	_, err = util.Uint160DecodeString("0xzzAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	assert.Error(t, err)

	// One letter flipped to lower case.
	_, err = util.Uint160DecodeString("0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	assert.Error(t, err)
}

func TestUint160DecodeBytes(t *testing.T) {
	b := make([]byte, util.Uint160Size)
	b[0] = 1
	u, err := util.Uint160DecodeBytes(b)
	require.NoError(t, err)
	assert.Equal(t, b, u.Bytes())

	_, err = util.Uint160DecodeBytes(b[1:])
	assert.Error(t, err)
}

func TestUint160Equals(t *testing.T) {
	a := util.Uint160{1, 2, 3}
	b := util.Uint160{1, 2, 4}
	assert.False(t, a.Equals(b))
	assert.True(t, a.Equals(a))
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
	assert.True(t, util.Uint160{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestUint160JSONAndYAML(t *testing.T) {
	expected, err := util.Uint160DecodeString(checksummed)
	require.NoError(t, err)

	data, err := json.Marshal(expected)
	require.NoError(t, err)
	assert.Equal(t, `"`+checksummed+`"`, string(data))

	var actual util.Uint160
	require.NoError(t, json.Unmarshal(data, &actual))
	assert.Equal(t, expected, actual)
	assert.Error(t, actual.UnmarshalJSON([]byte(`123`)))

	data, err = yaml.Marshal(expected)
	require.NoError(t, err)
	var fromYAML util.Uint160
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, expected, fromYAML)
}
