package io

import "errors"

// Serializable is an entity stored in the binary form. Errors are kept in
// the Err field of BinReader/BinWriter, so implementations just stop doing
// anything useful once it's set and only the outermost caller checks it.
type Serializable interface {
	DecodeBinary(*BinReader)
	EncodeBinary(*BinWriter)
}

// ErrTrailingData is returned by FromByteArray when the buffer holds more
// bytes than the entity consumed.
var ErrTrailingData = errors.New("trailing data")

// ToByteArray serializes the given entity into a fresh byte slice.
func ToByteArray(entity Serializable) ([]byte, error) {
	w := NewBufBinWriter()
	entity.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// FromByteArray decodes the entity from data, failing if anything is left
// unread.
func FromByteArray(entity Serializable, data []byte) error {
	r := NewBinReaderFromBuf(data)
	entity.DecodeBinary(r)
	if r.Err != nil {
		return r.Err
	}
	var extra [1]byte
	r.ReadBytes(extra[:])
	if r.Err == nil {
		return ErrTrailingData
	}
	return nil
}
