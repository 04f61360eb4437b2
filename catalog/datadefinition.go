// datadefinition.go - the DataDefinition structure embedded in every
// catalog leaf entry, right after the shared DataDefinitionHeader
// (format.DataDefinitionHeader).
//
// The pack's retrieved original_source does not carry the exact C-struct
// layout file (ese_db.rs defining these structs byte-for-byte) — only
// reader.rs, which reads these fields in a fixed order. The byte offsets
// below are a self-consistent reconstruction from that read order, not a
// transcription of a captured .edb file.
package catalog

import "github.com/wilhasse/go-esedb/format"

const ddHeaderSize = format.DataDefinitionHeaderSize

func parseDataDefinitionHeader(buf []byte, off int) (format.DataDefinitionHeader, error) {
	return format.ParseDataDefinitionHeader(buf, off)
}

// dataDefinition is the fixed-size portion of a catalog entry definition:
// 29 bytes, plus 4 more (LCMapFlags) when LastFixedSizeDataType >= 10.
type dataDefinition struct {
	FatherDataPageObjectIdentifier uint32
	Type                           uint16
	Identifier                     uint32
	ColtypOrFDP                    uint32
	SpaceUsage                     uint32
	Flags                          uint32
	PagesOrLocale                  uint32
	RootFlag                       uint8
	RecordOffset                   uint16
	LCMapFlags                     uint32
}

func parseDataDefinition(buf []byte, off int) (dataDefinition, error) {
	var d dataDefinition
	var err error
	if d.FatherDataPageObjectIdentifier, err = format.LE32(buf, off+0); err != nil {
		return d, err
	}
	if d.Type, err = format.LE16(buf, off+4); err != nil {
		return d, err
	}
	if d.Identifier, err = format.LE32(buf, off+6); err != nil {
		return d, err
	}
	if d.ColtypOrFDP, err = format.LE32(buf, off+10); err != nil {
		return d, err
	}
	if d.SpaceUsage, err = format.LE32(buf, off+14); err != nil {
		return d, err
	}
	if d.Flags, err = format.LE32(buf, off+18); err != nil {
		return d, err
	}
	if d.PagesOrLocale, err = format.LE32(buf, off+22); err != nil {
		return d, err
	}
	if d.RootFlag, err = format.LE8(buf, off+26); err != nil {
		return d, err
	}
	if d.RecordOffset, err = format.LE16(buf, off+27); err != nil {
		return d, err
	}
	// LCMapFlags is only present (and only meaningfully read by the
	// caller) when ddh.LastFixedSizeDataType >= 10, but the bytes are
	// harmless to read unconditionally as long as they're in bounds.
	if off+33 <= len(buf) {
		if d.LCMapFlags, err = format.LE32(buf, off+29); err != nil {
			return d, err
		}
	}
	return d, nil
}
