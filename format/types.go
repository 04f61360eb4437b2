// Package format holds the constants, flag bits, and enumerations shared by
// every layer of the ESE page-file reader: the physical file header, the
// per-page header variants, the tag array, the catalog row shape, and the
// tagged-column flags used by the record decoder.
package format

// FileSignature is the magic value stored right after the checksum in the
// primary and mirror file headers.
const FileSignature uint32 = 0x89abcdef

// ChecksumSeed is the initial accumulator used when folding the header's
// 32-bit words into the stored checksum.
const ChecksumSeed uint32 = 0x89abcdef

// SupportedFormatVersion is the only jet-blue format version this reader
// understands.
const SupportedFormatVersion uint32 = 0x620

// FormatVersion and FormatRevision identify the on-disk layout of a
// database file. Revision is interpreted relative to the thresholds below.
type FormatVersion = uint32
type FormatRevision = uint32

// Format revision thresholds that change the physical page header shape and
// the tagged-data-type area format.
const (
	// FormatRevisionNewRecordFormat is the revision at which the page
	// header gained the "0x0b" (ECC) shape.
	FormatRevisionNewRecordFormat FormatRevision = 0x0b

	// FormatRevisionExtendedPageHeader is the revision at which the
	// extended page header (and 15-bit tag offsets on pages >= 16KiB)
	// was introduced.
	FormatRevisionExtendedPageHeader FormatRevision = 0x11

	// FormatRevisionLinearTaggedData is the last revision using the
	// legacy "linear" tagged-data-type area layout; revisions above it
	// use the index layout.
	FormatRevisionLinearTaggedData FormatRevision = 2
)

// Fixed page/FDP numbers that exist before the catalog has been read.
const (
	FixedPageNumberDatabase      uint32 = 1
	FixedPageNumberCatalog       uint32 = 4
	FixedPageNumberCatalogBackup uint32 = 24

	FixedFDPNumberDatabase      uint32 = 1
	FixedFDPNumberCatalog       uint32 = 2
	FixedFDPNumberCatalogBackup uint32 = 3
)

// CatalogType enumerates the kind of object a catalog row describes.
type CatalogType uint16

const (
	CatalogTypeTable     CatalogType = 1
	CatalogTypeColumn    CatalogType = 2
	CatalogTypeIndex     CatalogType = 3
	CatalogTypeLongValue CatalogType = 4
	CatalogTypeCallback  CatalogType = 5
)

func (t CatalogType) String() string {
	switch t {
	case CatalogTypeTable:
		return "Table"
	case CatalogTypeColumn:
		return "Column"
	case CatalogTypeIndex:
		return "Index"
	case CatalogTypeLongValue:
		return "LongValue"
	case CatalogTypeCallback:
		return "Callback"
	default:
		return "Unknown"
	}
}

// ColumnType enumerates the JET_COLTYP values a catalog column row may
// carry. Decoding the raw bytes into a typed value is outside the core
// (see spec Non-goals); this is exposed so a caller can do that itself.
type ColumnType uint32

const (
	ColumnTypeNil           ColumnType = 0
	ColumnTypeBit           ColumnType = 1
	ColumnTypeUnsignedByte  ColumnType = 2
	ColumnTypeShort         ColumnType = 3
	ColumnTypeLong          ColumnType = 4
	ColumnTypeCurrency      ColumnType = 5
	ColumnTypeIEEESingle    ColumnType = 6
	ColumnTypeIEEEDouble    ColumnType = 7
	ColumnTypeDateTime      ColumnType = 8
	ColumnTypeBinary        ColumnType = 9
	ColumnTypeText          ColumnType = 10
	ColumnTypeLongBinary    ColumnType = 11
	ColumnTypeLongText      ColumnType = 12
	ColumnTypeSLV           ColumnType = 13
	ColumnTypeUnsignedLong  ColumnType = 14
	ColumnTypeLongLong      ColumnType = 15
	ColumnTypeGUID          ColumnType = 16
	ColumnTypeUnsignedShort ColumnType = 17
	ColumnTypeMax           ColumnType = 18
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeNil:
		return "Nil"
	case ColumnTypeBit:
		return "Bit"
	case ColumnTypeUnsignedByte:
		return "UnsignedByte"
	case ColumnTypeShort:
		return "Short"
	case ColumnTypeLong:
		return "Long"
	case ColumnTypeCurrency:
		return "Currency"
	case ColumnTypeIEEESingle:
		return "IEEESingle"
	case ColumnTypeIEEEDouble:
		return "IEEEDouble"
	case ColumnTypeDateTime:
		return "DateTime"
	case ColumnTypeBinary:
		return "Binary"
	case ColumnTypeText:
		return "Text"
	case ColumnTypeLongBinary:
		return "LongBinary"
	case ColumnTypeLongText:
		return "LongText"
	case ColumnTypeSLV:
		return "SLV"
	case ColumnTypeUnsignedLong:
		return "UnsignedLong"
	case ColumnTypeLongLong:
		return "LongLong"
	case ColumnTypeGUID:
		return "GUID"
	case ColumnTypeUnsignedShort:
		return "UnsignedShort"
	case ColumnTypeMax:
		return "Max"
	default:
		return "Unknown"
	}
}

// Whence values for Cursor.MoveRow, reusing the stable codes named in the
// spec's external interface.
type Whence uint32

const (
	MoveFirst    Whence = 0
	MoveLast     Whence = 1
	MoveNext     Whence = 2
	MovePrevious Whence = 3
)
