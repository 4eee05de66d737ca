package timelock

import (
	"encoding/binary"
	"errors"
	"math/big"
)

// ErrParse is returned by UnmarshalWire when the buffer is structurally
// invalid: a declared length exceeds what remains, or trailing bytes
// follow the squarings field.
var ErrParse = errors.New("timelock: malformed wire data")

// lengthPrefixSize is the width, in bytes, of each big-integer length
// prefix on the wire (network-order unsigned 64-bit).
const lengthPrefixSize = 8

// squaringsSize is the width, in bytes, of the wire squarings field
// (network-order unsigned 32-bit).
const squaringsSize = 4

// MarshalWire serializes p as:
// [u64 len_a][a_bytes][u64 len_n][n_bytes][u32 squarings], all
// integers in network byte order, a/n as big-endian magnitude.
func (p Puzzle) MarshalWire() []byte {
	aBytes := p.A.Bytes()
	nBytes := p.N.Bytes()

	out := make([]byte, lengthPrefixSize+len(aBytes)+lengthPrefixSize+len(nBytes)+squaringsSize)
	cursor := 0

	binary.BigEndian.PutUint64(out[cursor:], uint64(len(aBytes)))
	cursor += lengthPrefixSize
	copy(out[cursor:], aBytes)
	cursor += len(aBytes)

	binary.BigEndian.PutUint64(out[cursor:], uint64(len(nBytes)))
	cursor += lengthPrefixSize
	copy(out[cursor:], nBytes)
	cursor += len(nBytes)

	binary.BigEndian.PutUint32(out[cursor:], p.Squarings)

	return out
}

// UnmarshalWire parses the format produced by MarshalWire. Every
// declared length is checked against the remaining buffer, and the
// cursor must land exactly on the end of the buffer after the
// squarings field: no trailing bytes are permitted.
func UnmarshalWire(data []byte) (Puzzle, error) {
	cursor := 0

	aBytes, next, err := readLengthPrefixed(data, cursor)
	if err != nil {
		return Puzzle{}, err
	}
	cursor = next

	nBytes, next, err := readLengthPrefixed(data, cursor)
	if err != nil {
		return Puzzle{}, err
	}
	cursor = next

	if len(data)-cursor != squaringsSize {
		return Puzzle{}, ErrParse
	}
	squarings := binary.BigEndian.Uint32(data[cursor:])
	cursor += squaringsSize

	if cursor != len(data) {
		return Puzzle{}, ErrParse
	}

	return Puzzle{
		A:         new(big.Int).SetBytes(aBytes),
		N:         new(big.Int).SetBytes(nBytes),
		Squarings: squarings,
	}, nil
}

// readLengthPrefixed reads one [u64 length][bytes] field starting at
// cursor and returns the field bytes and the cursor position after it.
func readLengthPrefixed(data []byte, cursor int) ([]byte, int, error) {
	if len(data)-cursor < lengthPrefixSize {
		return nil, 0, ErrParse
	}
	length := binary.BigEndian.Uint64(data[cursor:])
	cursor += lengthPrefixSize

	remaining := uint64(len(data) - cursor)
	if length > remaining {
		return nil, 0, ErrParse
	}

	field := data[cursor : cursor+int(length)]
	return field, cursor + int(length), nil
}
