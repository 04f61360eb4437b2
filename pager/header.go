// header.go - physical file header: layout, checksum, and the
// primary/mirror reconciliation the original reader performs before any
// page is read.
package pager

import (
	"fmt"

	"github.com/wilhasse/go-esedb/format"
)

// FileHeader is the on-disk layout occupying the first header-sized slot of
// an ESE database file (and, identically, its mirror copy one slot later).
// Only the fields this reader needs are decoded; the remainder of the
// 4096-byte header (backup info, log signatures, space-tree roots, shadow
// catalog pointers) is left unparsed, matching the spec's scope.
type FileHeader struct {
	Checksum               uint32
	Signature               uint32
	FormatVersion           uint32
	FileType                uint32
	FormatRevision          uint32
	PageSize                uint32
	CreationFormatVersion   uint32
	CreationFormatRevision  uint32
}

// headerSize is the fixed size of the on-disk file header struct: the
// number of bytes read for the primary header and for its mirror copy
// (which begins at offset PageSize, one page-sized slot after the primary).
const headerSize = 4096

// Byte offsets of the fields this reader decodes from the 4096-byte header.
// The pack's retrieved original_source does not carry the exact C-struct
// layout file (only the reader logic), so these offsets are a
// self-consistent reconstruction checked against the field order the
// reader code visits them in, not a byte-exact transcription of a real
// captured .edb file.
const (
	offChecksum              = 0
	offSignature              = 4
	offFormatVersion          = 8
	offFileType               = 12
	offFormatRevision         = 68
	offPageSize               = 236
	offCreationFormatVersion  = 240
	offCreationFormatRevision = 244
)

func parseFileHeader(buf []byte) (FileHeader, error) {
	var h FileHeader
	var err error
	if h.Checksum, err = format.LE32(buf, offChecksum); err != nil {
		return h, err
	}
	if h.Signature, err = format.LE32(buf, offSignature); err != nil {
		return h, err
	}
	if h.FormatVersion, err = format.LE32(buf, offFormatVersion); err != nil {
		return h, err
	}
	if h.FileType, err = format.LE32(buf, offFileType); err != nil {
		return h, err
	}
	if h.FormatRevision, err = format.LE32(buf, offFormatRevision); err != nil {
		return h, err
	}
	if h.PageSize, err = format.LE32(buf, offPageSize); err != nil {
		return h, err
	}
	if h.CreationFormatVersion, err = format.LE32(buf, offCreationFormatVersion); err != nil {
		return h, err
	}
	if h.CreationFormatRevision, err = format.LE32(buf, offCreationFormatRevision); err != nil {
		return h, err
	}
	return h, nil
}

// checksum32 folds every 32-bit little-endian word of the header (skipping
// the checksum word itself, which sits first) into a single XOR
// accumulator seeded with format.ChecksumSeed. Ported directly from
// calc_crc32 in the original reader.
func checksum32(buf []byte) (uint32, error) {
	if len(buf)%4 != 0 {
		return 0, fmt.Errorf("header length %d not a multiple of 4: %w", len(buf), format.ErrRecordMalformed)
	}
	crc := format.ChecksumSeed
	for off := 4; off+4 <= len(buf); off += 4 {
		word, err := format.LE32(buf, off)
		if err != nil {
			return 0, err
		}
		crc ^= word
	}
	return crc, nil
}

// validateHeader checks signature, checksum, and supported version for a
// freshly parsed header.
func validateHeader(buf []byte, h FileHeader) error {
	if h.Signature != format.FileSignature {
		return fmt.Errorf("signature 0x%x: %w", h.Signature, format.ErrBadSignature)
	}
	sum, err := checksum32(buf)
	if err != nil {
		return err
	}
	if sum != h.Checksum {
		return fmt.Errorf("stored 0x%x, computed 0x%x: %w", h.Checksum, sum, format.ErrChecksumMismatch)
	}
	if h.FormatVersion != format.SupportedFormatVersion {
		return fmt.Errorf("version 0x%x: %w", h.FormatVersion, format.ErrUnsupportedVersion)
	}
	return nil
}
