// endian.go - little/big-endian byte reading utilities shared by every
// package that reads raw page bytes.
package format

import (
	"encoding/binary"
	"fmt"
)

// ESE stores almost everything little-endian; the exception is the
// long-value key and other index keys, which need unsigned byte-order
// comparison and so are stored big-endian.

func LE8(b []byte, off int) (uint8, error) {
	if off < 0 || off+1 > len(b) {
		return 0, fmt.Errorf("LE8 at %d: %w", off, errOutOfBounds(len(b)))
	}
	return b[off], nil
}

func LE16(b []byte, off int) (uint16, error) {
	if off < 0 || off+2 > len(b) {
		return 0, fmt.Errorf("LE16 at %d: %w", off, errOutOfBounds(len(b)))
	}
	return binary.LittleEndian.Uint16(b[off : off+2]), nil
}

func LE32(b []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(b) {
		return 0, fmt.Errorf("LE32 at %d: %w", off, errOutOfBounds(len(b)))
	}
	return binary.LittleEndian.Uint32(b[off : off+4]), nil
}

func LE64(b []byte, off int) (uint64, error) {
	if off < 0 || off+8 > len(b) {
		return 0, fmt.Errorf("LE64 at %d: %w", off, errOutOfBounds(len(b)))
	}
	return binary.LittleEndian.Uint64(b[off : off+8]), nil
}

// Be32 reads a big-endian uint32, used for long-value keys.
func Be32(b []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(b) {
		return 0, fmt.Errorf("Be32 at %d: %w", off, errOutOfBounds(len(b)))
	}
	return binary.BigEndian.Uint32(b[off : off+4]), nil
}

// Bytes returns a bounds-checked sub-slice b[off:off+n].
func Bytes(b []byte, off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(b) {
		return nil, fmt.Errorf("Bytes at %d len %d: %w", off, n, errOutOfBounds(len(b)))
	}
	return b[off : off+n], nil
}

func errOutOfBounds(have int) error {
	return fmt.Errorf("%w (buffer length %d)", ErrRecordMalformed, have)
}
