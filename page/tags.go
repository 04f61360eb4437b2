// tags.go - the page tag array, stored at the tail of the page and
// growing inward (toward the header) as tags are appended.
package page

import (
	"github.com/wilhasse/go-esedb/format"
)

// Tag is one entry of a page's tag array: the byte range (relative to the
// start of page content, i.e. right after the header) holding a record,
// branch entry, or long-value segment, plus its flags.
type Tag struct {
	Flags  format.PageTagFlags
	Offset uint16
	Size   uint16
}

// Is reports whether all bits in want are set on the tag's flags.
func (t Tag) Is(want format.PageTagFlags) bool { return t.Flags&want == want }

// parseTags reads the tag array for a page whose header is already known.
// pageBuf is the full page-sized buffer; tagCount is
// header.Common.AvailablePageTag. Tags are stored back-to-front starting
// at the very end of the page, 4 bytes each (offset word, size word),
// and are returned in forward (index 0..tagCount-1) order.
func parseTags(pageBuf []byte, header Header, pageSize uint32, formatRevision format.FormatRevision) ([]Tag, error) {
	tagCount := int(header.Common.AvailablePageTag)
	tags := make([]Tag, tagCount)

	extended := formatRevision >= format.FormatRevisionExtendedPageHeader && pageSize >= 16384
	tagsOffset := int(pageSize)

	headerSize := HeaderSize(header.Revision)

	for i := 0; i < tagCount; i++ {
		tagsOffset -= 2
		tagOffsetWord, err := format.LE16(pageBuf, tagsOffset)
		if err != nil {
			return nil, err
		}
		tagsOffset -= 2
		tagSizeWord, err := format.LE16(pageBuf, tagsOffset)
		if err != nil {
			return nil, err
		}

		var t Tag
		if extended {
			t.Offset = tagOffsetWord & 0x7fff
			t.Size = tagSizeWord & 0x7fff

			flagsOffset := headerSize + int(t.Offset)
			flagsWord, err := format.LE16(pageBuf, flagsOffset)
			if err != nil {
				return nil, err
			}
			t.Flags = format.PageTagFlags(flagsWord >> 13)
		} else {
			t.Flags = format.PageTagFlags(tagOffsetWord >> 13)
			t.Offset = tagOffsetWord & 0x1fff
			t.Size = tagSizeWord & 0x1fff
		}
		tags[i] = t
	}
	return tags, nil
}

// cleanPageTagFlag strips the upper 3 flag bits that extended, large-page
// leaf entries borrow from the first 16-bit word of an entry's content
// (used where that word is itself data, e.g. a common-key size), mirroring
// the original's clean_pgtag_flag.
func cleanPageTagFlag(data uint16, isLeaf bool, pageSize uint32, formatRevision format.FormatRevision) uint16 {
	if formatRevision >= format.FormatRevisionExtendedPageHeader && pageSize >= 16384 && isLeaf {
		return data & 0x1fff
	}
	return data
}
