package format

// PageFlags are the bits stored in a page's common header. They describe
// the page's role in the tree it belongs to, not the record it carries.
type PageFlags uint32

const (
	PageFlagRoot            PageFlags = 0x0001
	PageFlagLeaf            PageFlags = 0x0002
	PageFlagParentOfLeaf    PageFlags = 0x0004
	PageFlagEmpty           PageFlags = 0x0008
	PageFlagSpaceTree       PageFlags = 0x0020
	PageFlagIndex           PageFlags = 0x0040
	PageFlagLongValue       PageFlags = 0x0080
	PageFlagNewFormat       PageFlags = 0x2000
	PageFlagNewChecksumAttr PageFlags = 0x4000
	PageFlagUnversioned     PageFlags = 0x8000
)

// Is reports whether all bits in want are set in f.
func (f PageFlags) Is(want PageFlags) bool { return f&want == want }

// IsLeaf reports whether the page is a leaf page (carries records/LV data
// directly, no child page pointers).
func (f PageFlags) IsLeaf() bool { return f.Is(PageFlagLeaf) }

// IsRoot reports whether the page is the root of its tree.
func (f PageFlags) IsRoot() bool { return f.Is(PageFlagRoot) }

// IsParentOfLeaf reports whether the page's direct children are leaves.
func (f PageFlags) IsParentOfLeaf() bool { return f.Is(PageFlagParentOfLeaf) }

// IsLongValue reports whether the page belongs to a long-value tree.
func (f PageFlags) IsLongValue() bool { return f.Is(PageFlagLongValue) }

// PageTagFlags are the 3-bit flags packed alongside a tag's offset/size.
type PageTagFlags uint8

const (
	PageTagFlagVersion     PageTagFlags = 0x1
	PageTagFlagDefunct     PageTagFlags = 0x2
	PageTagFlagCommon      PageTagFlags = 0x4
	PageTagFlagIsDefunct                = PageTagFlagDefunct
	PageTagFlagIsCommonKey              = PageTagFlagCommon
)

// TaggedDataTypeFlag are the flags found in the per-entry flags byte of a
// tagged column's index-format entry. This bit assignment is this reader's
// own reconstruction (the pack's retrieved original_source/src/ese/jet.rs
// defines a subset; the remainder is inferred from how reader.rs uses
// them).
type TaggedDataTypeFlag uint8

const (
	TaggedDataTypeVariableSize    TaggedDataTypeFlag = 0x01
	TaggedDataTypeCompressed      TaggedDataTypeFlag = 0x02
	TaggedDataTypeStored          TaggedDataTypeFlag = 0x04
	TaggedDataTypeLongValue       TaggedDataTypeFlag = 0x08
	TaggedDataTypeMultiValue      TaggedDataTypeFlag = 0x10
	TaggedDataTypeMultiValueOffset TaggedDataTypeFlag = 0x20
)

// Is reports whether all bits in want are set in f.
func (f TaggedDataTypeFlag) Is(want TaggedDataTypeFlag) bool { return f&want == want }
