package random

import (
	"math/rand"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
)

// String returns a random string with the n as its length.
func String(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(Int(65, 90))
	}

	return string(b)
}

// Bytes returns a random byte slice of specified length.
func Bytes(n int) []byte {
	b := make([]byte, n)
	Fill(b)
	return b
}

// Fill fills buffer with random bytes.
func Fill(buf []byte) {
	// Rand reader returns no errors
	_, _ = rand.Read(buf)
}

// Int returns a random integer in [minI,maxI).
func Int(minI, maxI int) int {
	return minI + rand.Intn(maxI-minI)
}

// Uint160 returns a random non-zero Uint160.
func Uint160() util.Uint160 {
	var u util.Uint160
	for u.IsZero() {
		Fill(u[:])
	}
	return u
}

// Amount returns a random token amount below max.
func Amount(maxAmount uint64) *uint256.Int {
	return uint256.NewInt(uint64(rand.Int63n(int64(maxAmount))))
}
