package state

import (
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/pkg/io"
)

// amountSize is the size of serialized token amount.
const amountSize = 32

// Grant is a single investor allocation of some type.
type Grant struct {
	// Total is the amount of tokens promised to the investor.
	Total uint256.Int `json:"total"`
	// Paid is the amount of tokens already released to the investor.
	Paid uint256.Int `json:"paid"`
}

// Remaining returns the amount of tokens not yet released.
func (g *Grant) Remaining() *uint256.Int {
	if g.Total.Lt(&g.Paid) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(&g.Total, &g.Paid)
}

// EncodeBinary implements io.Serializable interface.
func (g *Grant) EncodeBinary(w *io.BinWriter) {
	encodeAmount(w, &g.Total)
	encodeAmount(w, &g.Paid)
}

// DecodeBinary implements io.Serializable interface.
func (g *Grant) DecodeBinary(r *io.BinReader) {
	decodeAmount(r, &g.Total)
	decodeAmount(r, &g.Paid)
}

func encodeAmount(w *io.BinWriter, a *uint256.Int) {
	b := a.Bytes32()
	w.WriteBytes(b[:])
}

func decodeAmount(r *io.BinReader, a *uint256.Int) {
	var b [amountSize]byte
	r.ReadBytes(b[:])
	a.SetBytes32(b[:])
}
