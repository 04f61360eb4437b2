// Package record implements the Record Decoder component: extracting one
// column's value out of a leaf page's tri-partite record layout (fixed,
// variable, and tagged columns), including multi-value, long-value, and
// compressed tagged entries.
package record

import (
	"fmt"

	"github.com/wilhasse/go-esedb/catalog"
	"github.com/wilhasse/go-esedb/format"
	"github.com/wilhasse/go-esedb/longvalue"
	"github.com/wilhasse/go-esedb/page"
)

// Decompressor decompresses a COMPRESSED tagged column's bytes. It is an
// external collaborator, supplied by the caller rather than read from
// process-global state: a nil Decompressor is legal, and decoding a
// compressed column then fails with format.ErrNoDecompressor.
type Decompressor interface {
	// Decompress returns the decompressed form of src in a slice the
	// implementation allocates. The original reader's two-pass decompress
	// calling convention (a sizing call, then a filling call) is collapsed
	// into this one Go call.
	Decompress(src []byte) (dst []byte, err error)
}

// Decoder decodes column values out of one table's leaf records.
type Decoder struct {
	Table        *catalog.TableDefinition
	LongValues   *longvalue.Index
	LVReader     longvalue.ByteReader
	Decompressor Decompressor
}

// NewDecoder builds a Decoder for a table. longValues/lvReader may be nil
// for a table with no LongValue catalog row; decompressor may be nil if
// no COMPRESSED tagged column will ever be read.
func NewDecoder(table *catalog.TableDefinition, longValues *longvalue.Index, lvReader longvalue.ByteReader, decompressor Decompressor) *Decoder {
	return &Decoder{Table: table, LongValues: longValues, LVReader: lvReader, Decompressor: decompressor}
}

// GetColumn returns columnID's value from the record at p's tag index
// tagIndex. multiValueIndex selects among a multi-valued tagged column's
// entries (0 means the first/only value, matching itagSequence == 1 in
// the original API); it is ignored for single-valued columns. A nil
// result with a nil error means the column is NULL, or is not stored in
// this record and has no default value.
func (d *Decoder) GetColumn(p *page.DbPage, tagIndex int, columnID uint32, multiValueIndex int) ([]byte, error) {
	if p.Flags().IsRoot() {
		if _, err := page.ReadRootPageHeader(p); err != nil {
			return nil, err
		}
	}
	if !p.Flags().IsLeaf() {
		return nil, fmt.Errorf("page %d: expected leaf page, flags 0x%x: %w",
			p.PageNumber, uint32(p.Flags()), format.ErrPageFlagsUnexpected)
	}
	if tagIndex <= 0 || tagIndex >= len(p.Tags) {
		return nil, fmt.Errorf("page %d: tag index %d out of range: %w", p.PageNumber, tagIndex, format.ErrOutOfRangeHandle)
	}

	tag := p.Tags[tagIndex]
	tagContentStart := p.Size() + int(tag.Offset)
	_, _, dataOffset, err := p.LocalKey(tag)
	if err != nil {
		return nil, err
	}
	recordDataSize := int(tag.Size) - (dataOffset - tagContentStart)

	offsetDDH := dataOffset
	ddh, err := format.ParseDataDefinitionHeader(p.Buf, offsetDDH)
	if err != nil {
		return nil, err
	}
	offset := offsetDDH + format.DataDefinitionHeaderSize

	offsetBitmask := uint16(0x3fff)
	if p.FormatRevision >= format.FormatRevisionExtendedPageHeader && p.PageSize >= 16384 {
		offsetBitmask = 0x7fff
	}

	fixedBitmaskSize := (int(ddh.LastFixedSizeDataType) + 7) / 8
	var fixedBitmask []byte
	if fixedBitmaskSize > 0 {
		fixedBitmask, err = format.Bytes(p.Buf, offsetDDH+int(ddh.VariableSizeDataTypesOffset)-fixedBitmaskSize, fixedBitmaskSize)
		if err != nil {
			return nil, err
		}
	}

	var numVariable uint16
	if ddh.LastVariableSizeDataType > 127 {
		numVariable = uint16(ddh.LastVariableSizeDataType) - 127
	}

	var (
		taggedIdentifier        uint16
		taggedOffset            uint16
		taggedOffsetDataSize    uint16
		prevTaggedOffset        uint16
		remainingDefinitionSize uint16
		taggedDataOffset        uint16 // == tagged_data_types_offset in the original

		currentVariable     uint32 = 127
		variableOffset             = ddh.VariableSizeDataTypesOffset
		variableValueOffset uint16 = ddh.VariableSizeDataTypesOffset + numVariable*2
		prevVariableSize    uint16
	)

	for j, col := range d.Table.Columns {
		switch {
		case col.Identifier <= 127:
			if col.Identifier <= uint32(ddh.LastFixedSizeDataType) {
				if col.Identifier == columnID {
					if fixedBitmaskSize > 0 && fixedBitmask[j/8]&(1<<(uint(j)%8)) != 0 {
						return nil, nil
					}
					return format.Bytes(p.Buf, offset, int(col.Size))
				}
				offset += int(col.Size)
			} else if col.Identifier == columnID {
				return nil, nil
			}

		case currentVariable < uint32(ddh.LastVariableSizeDataType):
			for currentVariable < uint32(col.Identifier) {
				sizeWord, err := format.LE16(p.Buf, offsetDDH+int(variableOffset))
				if err != nil {
					return nil, err
				}
				variableOffset += 2
				currentVariable++
				if currentVariable == uint32(col.Identifier) {
					if sizeWord&0x8000 == 0 {
						if col.Identifier == columnID {
							return format.Bytes(p.Buf, offsetDDH+int(variableValueOffset), int(sizeWord-prevVariableSize))
						}
						variableValueOffset += sizeWord - prevVariableSize
						prevVariableSize = sizeWord
					}
				}
				if currentVariable >= uint32(ddh.LastVariableSizeDataType) {
					break
				}
			}

		default:
			// tagged
			if taggedDataOffset == 0 {
				taggedDataOffset = variableValueOffset
				remainingDefinitionSize = uint16(recordDataSize) - taggedDataOffset
				offset = offsetDDH + int(taggedDataOffset)

				if remainingDefinitionSize > 0 {
					if taggedIdentifier, err = format.LE16(p.Buf, offset); err != nil {
						return nil, err
					}
					offset += 2
					if taggedOffset, err = format.LE16(p.Buf, offset); err != nil {
						return nil, err
					}
					offset += 2
					if taggedOffset == 0 {
						return nil, fmt.Errorf("page %d: tagged data type offset is zero: %w", p.PageNumber, format.ErrRecordMalformed)
					}
					taggedOffsetDataSize = (taggedOffset & 0x3fff) - 4
					remainingDefinitionSize -= 4
				}
			}

			if remainingDefinitionSize > 0 && col.Identifier == uint32(taggedIdentifier) {
				prevTaggedOffset = taggedOffset
				if taggedOffsetDataSize > 0 {
					if taggedIdentifier, err = format.LE16(p.Buf, offset); err != nil {
						return nil, err
					}
					offset += 2
					if taggedOffset, err = format.LE16(p.Buf, offset); err != nil {
						return nil, err
					}
					offset += 2
					taggedOffsetDataSize -= 4
					remainingDefinitionSize -= 4
				}

				maskedPrev := prevTaggedOffset & offsetBitmask
				maskedCur := taggedOffset & offsetBitmask

				var size uint16
				if maskedCur > maskedPrev {
					size = maskedCur - maskedPrev
				} else {
					size = remainingDefinitionSize
				}
				valueOffset := taggedDataOffset + maskedPrev
				var flags format.TaggedDataTypeFlag

				if size > 0 {
					remainingDefinitionSize -= size
					if (p.FormatRevision >= format.FormatRevisionExtendedPageHeader && p.PageSize >= 16384) ||
						(prevTaggedOffset&0x4000) != 0 {
						fb, err := format.LE8(p.Buf, offsetDDH+int(valueOffset))
						if err != nil {
							return nil, err
						}
						flags = format.TaggedDataTypeFlag(fb)
						valueOffset++
						size--
					}
				}

				if size > 0 && col.Identifier == columnID {
					return d.decodeTaggedValue(p, offsetDDH, valueOffset, size, flags, multiValueIndex)
				}
			}
		}

		if col.Identifier == columnID {
			if len(col.DefaultValue) > 0 {
				return col.DefaultValue, nil
			}
			return nil, nil
		}
	}

	return nil, fmt.Errorf("column %d: %w", columnID, format.ErrColumnNotFound)
}

// decodeTaggedValue resolves one tagged column entry's value, dispatching
// on its flags exactly as the original reader's load_data does.
func (d *Decoder) decodeTaggedValue(p *page.DbPage, offsetDDH int, valueOffset, size uint16, flags format.TaggedDataTypeFlag, multiValueIndex int) ([]byte, error) {
	base := offsetDDH + int(valueOffset)

	switch {
	case flags.Is(format.TaggedDataTypeLongValue):
		key, err := format.LE32(p.Buf, base)
		if err != nil {
			return nil, err
		}
		return d.loadLongValue(key)

	case flags.Is(format.TaggedDataTypeMultiValue) || flags.Is(format.TaggedDataTypeMultiValueOffset):
		return d.decodeMultiValue(p, offsetDDH, valueOffset, size, flags, multiValueIndex)

	case flags.Is(format.TaggedDataTypeCompressed):
		raw, err := format.Bytes(p.Buf, base, int(size))
		if err != nil {
			return nil, err
		}
		if d.Decompressor == nil {
			return nil, format.ErrNoDecompressor
		}
		return d.Decompressor.Decompress(raw)

	default:
		return format.Bytes(p.Buf, base, int(size))
	}
}

type mvEntry struct {
	shift   uint16
	longVal bool
	size    uint16
}

// decodeMultiValue expands a MULTI_VALUE or MULTI_VALUE_OFFSET tagged
// entry into its per-value (shift, is-long-value, size) index, then
// returns the multiValueIndex'th one (1-based in the original API; 0
// selects the first value).
func (d *Decoder) decodeMultiValue(p *page.DbPage, offsetDDH int, valueOffset, size uint16, flags format.TaggedDataTypeFlag, multiValueIndex int) ([]byte, error) {
	base := offsetDDH + int(valueOffset)
	var entries []mvEntry

	if flags.Is(format.TaggedDataTypeMultiValueOffset) {
		v, err := format.LE8(p.Buf, base)
		if err != nil {
			return nil, err
		}
		first := uint16(v)
		entries = append(entries, mvEntry{shift: 1, size: first})
		entries = append(entries, mvEntry{shift: first + 1, size: size - first - 1})
	} else {
		cursor := base
		word, err := format.LE16(p.Buf, cursor)
		if err != nil {
			return nil, err
		}
		cursor += 2

		entryOffset := word & 0x7fff
		entryLV := word&0x8000 != 0
		numEntries := entryOffset / 2

		for k := uint16(1); k < numEntries; k++ {
			word, err = format.LE16(p.Buf, cursor)
			if err != nil {
				return nil, err
			}
			cursor += 2
			entrySize := (word & 0x7fff) - entryOffset
			entries = append(entries, mvEntry{shift: entryOffset, longVal: entryLV, size: entrySize})
			entryLV = word&0x8000 != 0
			entryOffset = word & 0x7fff
		}
		entries = append(entries, mvEntry{shift: entryOffset, longVal: entryLV, size: size - entryOffset})
	}

	idx := 0
	if multiValueIndex > 0 && multiValueIndex-1 < len(entries) {
		idx = multiValueIndex - 1
	}
	if idx >= len(entries) {
		return nil, nil
	}
	e := entries[idx]
	if e.longVal {
		key, err := format.LE32(p.Buf, base+int(e.shift))
		if err != nil {
			return nil, err
		}
		return d.loadLongValue(key)
	}
	return format.Bytes(p.Buf, base+int(e.shift), int(e.size))
}

func (d *Decoder) loadLongValue(key uint32) ([]byte, error) {
	if d.LongValues == nil || d.LVReader == nil {
		return nil, fmt.Errorf("column references long value %d but no long-value index is attached: %w", key, format.ErrLongValueNotFound)
	}
	return d.LongValues.Load(d.LVReader, key)
}
