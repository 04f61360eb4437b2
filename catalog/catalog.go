// Package catalog implements the Catalog Loader component: walking the
// catalog B+tree rooted at FixedPageNumberCatalog and grouping its rows
// into per-table definitions (columns, and the table's long-value
// definition when it has one).
package catalog

import (
	"fmt"

	"github.com/wilhasse/go-esedb/btree"
	"github.com/wilhasse/go-esedb/format"
	"github.com/wilhasse/go-esedb/page"
)

// Definition is one decoded catalog row: a table, column, long-value, or
// index/callback entry (the latter two are recognized but not
// interpreted further, matching the original reader).
type Definition struct {
	CatType                      format.CatalogType
	Identifier                   uint32
	FatherDataPageObjectID       uint32
	ColumnType                   format.ColumnType // only meaningful when CatType == Column
	FatherDataPageNumber         uint32             // only meaningful when CatType != Column
	Size                         uint32             // space_usage: fixed column width, or table/LV space hint
	Codepage                     uint32             // only meaningful when CatType == Column
	LCMapFlags                   uint32
	Name                         string
	DefaultValue                 []byte
}

// TableDefinition groups a Table catalog row with the Column and
// (optional) LongValue rows that follow it in catalog order, mirroring
// jet::TableDefinition in the original reader.
type TableDefinition struct {
	Table     *Definition
	Columns   []*Definition
	LongValue *Definition
}

// Column looks up a column definition by name.
func (t *TableDefinition) Column(name string) (*Definition, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// loader is the narrow page-loading dependency this package needs.
type loader interface {
	LoadPage(pageNo uint32) (*page.DbPage, error)
}

// Load walks the catalog tree rooted at format.FixedPageNumberCatalog and
// returns one TableDefinition per Table row encountered, in catalog
// order, exactly as the original reader's load_catalog does.
func Load(l *page.Loader) ([]*TableDefinition, error) {
	return LoadAt(l, format.FixedPageNumberCatalog)
}

// LoadAt is Load generalized to an arbitrary catalog-tree root page, used
// to read the catalog backup tree (format.FixedPageNumberCatalogBackup)
// when the primary catalog is unavailable.
func LoadAt(l *page.Loader, fdpRootPage uint32) ([]*TableDefinition, error) {
	root, err := l.LoadPage(fdpRootPage)
	if err != nil {
		return nil, err
	}
	if root.Flags().IsRoot() {
		if _, err := page.ReadRootPageHeader(root); err != nil {
			return nil, fmt.Errorf("catalog root page %d: %w", fdpRootPage, err)
		}
	}

	var result []*TableDefinition
	var current *TableDefinition

	err = btree.Walk(l, fdpRootPage, func(p *page.DbPage) error {
		for i := 1; i < len(p.Tags); i++ {
			tag := p.Tags[i]
			if tag.Is(format.PageTagFlagDefunct) {
				continue
			}
			def, err := parseItem(p, tag)
			if err != nil {
				return fmt.Errorf("page %d tag %d: %w", p.PageNumber, i, err)
			}

			switch def.CatType {
			case format.CatalogTypeTable:
				if current != nil {
					result = append(result, current)
				}
				current = &TableDefinition{Table: def}
			case format.CatalogTypeColumn:
				if current == nil {
					return fmt.Errorf("column row before any table row: %w", format.ErrRecordMalformed)
				}
				current.Columns = append(current.Columns, def)
			case format.CatalogTypeLongValue:
				if current == nil {
					return fmt.Errorf("long-value row before any table row: %w", format.ErrRecordMalformed)
				}
				if current.LongValue != nil {
					return fmt.Errorf("table %q: duplicate long-value catalog row", current.Table.Name)
				}
				current.LongValue = def
			case format.CatalogTypeIndex, format.CatalogTypeCallback:
				// recognized, not interpreted — matches the original reader.
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if current != nil {
		result = append(result, current)
	}
	return result, nil
}

// parseItem decodes one catalog row, porting load_catalog_item field for
// field.
func parseItem(p *page.DbPage, tag page.Tag) (*Definition, error) {
	_, _, dataOffset, err := p.LocalKey(tag)
	if err != nil {
		return nil, err
	}
	offsetDDH := dataOffset

	ddh, err := parseDataDefinitionHeader(p.Buf, offsetDDH)
	if err != nil {
		return nil, err
	}
	offset := offsetDDH + ddHeaderSize

	var numVariable uint32
	if ddh.LastVariableSizeDataType > 127 {
		numVariable = uint32(ddh.LastVariableSizeDataType) - 127
	}

	dd, err := parseDataDefinition(p.Buf, offset)
	if err != nil {
		return nil, err
	}

	def := &Definition{
		CatType:                format.CatalogType(dd.Type),
		Identifier:             dd.Identifier,
		FatherDataPageObjectID: dd.FatherDataPageObjectIdentifier,
		Size:                   dd.SpaceUsage,
	}
	if def.CatType == format.CatalogTypeColumn {
		def.ColumnType = format.ColumnType(dd.ColtypOrFDP)
		def.Codepage = dd.PagesOrLocale
	} else {
		def.FatherDataPageNumber = dd.ColtypOrFDP
	}
	if ddh.LastFixedSizeDataType >= 10 {
		def.LCMapFlags = dd.LCMapFlags
	}

	if numVariable > 0 {
		if err := parseVariableFields(p.Buf, offsetDDH, ddh, numVariable, def); err != nil {
			return nil, err
		}
	}
	return def, nil
}

// parseVariableFields walks the variable-size field size table (one u16
// per field, cumulative) and extracts field 128 (name) and 131
// (default_value); the rest (130 template_name, 129/132-136) are
// recognized but not retained, exactly as the original reader's TODOs.
func parseVariableFields(buf []byte, offsetDDH int, ddh format.DataDefinitionHeader, numVariable uint32, def *Definition) error {
	sizeTableOffset := int(ddh.VariableSizeDataTypesOffset)
	valueOffset := sizeTableOffset + int(numVariable)*2
	var previousSize uint16
	dataTypeNumber := 128

	for i := uint32(0); i < numVariable; i++ {
		sizeWord, err := format.LE16(buf, offsetDDH+sizeTableOffset)
		if err != nil {
			return err
		}
		sizeTableOffset += 2

		var dataTypeSize uint16
		if sizeWord&0x8000 != 0 {
			dataTypeSize = 0
		} else {
			dataTypeSize = sizeWord - previousSize
		}

		if dataTypeSize > 0 {
			fieldOffset := offsetDDH + valueOffset + int(previousSize)
			switch dataTypeNumber {
			case 128:
				b, err := format.Bytes(buf, fieldOffset, int(dataTypeSize))
				if err != nil {
					return err
				}
				def.Name = string(b)
			case 131:
				b, err := format.Bytes(buf, fieldOffset, int(dataTypeSize))
				if err != nil {
					return err
				}
				def.DefaultValue = append([]byte(nil), b...)
			}
			previousSize = sizeWord
		}
		dataTypeNumber++
	}
	return nil
}
