package state

import (
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/pkg/io"
)

// TokenBalance represents a token amount stored for an account (or the total
// supply).
type TokenBalance struct {
	Balance uint256.Int
}

// TokenBalanceFromBytes converts serialized TokenBalance to structure. Empty
// data means zero balance.
func TokenBalanceFromBytes(b []byte) (*TokenBalance, error) {
	balance := new(TokenBalance)
	if len(b) == 0 {
		return balance, nil
	}
	if err := io.FromByteArray(balance, b); err != nil {
		return nil, err
	}
	return balance, nil
}

// Bytes returns serialized TokenBalance.
func (s *TokenBalance) Bytes() []byte {
	b := s.Balance.Bytes32()
	return b[:]
}

// EncodeBinary implements io.Serializable interface.
func (s *TokenBalance) EncodeBinary(w *io.BinWriter) {
	encodeAmount(w, &s.Balance)
}

// DecodeBinary implements io.Serializable interface.
func (s *TokenBalance) DecodeBinary(r *io.BinReader) {
	decodeAmount(r, &s.Balance)
}
