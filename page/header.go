// header.go - the four on-disk page header shapes (old, 0x0b/ECC,
// 0x11/extended, 0x11 with the extra sub-header used on pages >= 16KiB)
// and the common sub-header every one of them carries.
package page

import (
	"fmt"

	"github.com/wilhasse/go-esedb/format"
)

// Common is the sub-header every page header variant carries after its
// variant-specific checksum/page-number prefix: page flags, sibling
// pointers, and the tag count.
type Common struct {
	FatherDataPageObjectID       uint32
	AvailableDataSize            uint16
	AvailableUncommittedDataSize uint16
	AvailableDataOffset          uint16
	AvailablePageTag             uint16
	PageFlags                    format.PageFlags
	PreviousPage                 uint32
	NextPage                     uint32
}

const commonSize = 4 + 2 + 2 + 2 + 2 + 4 + 4 + 4 // 24 bytes

func parseCommon(buf []byte, off int) (Common, error) {
	var c Common
	var err error
	if c.FatherDataPageObjectID, err = format.LE32(buf, off+0); err != nil {
		return c, err
	}
	var u16 uint16
	if u16, err = format.LE16(buf, off+4); err != nil {
		return c, err
	}
	c.AvailableDataSize = u16
	if u16, err = format.LE16(buf, off+6); err != nil {
		return c, err
	}
	c.AvailableUncommittedDataSize = u16
	if u16, err = format.LE16(buf, off+8); err != nil {
		return c, err
	}
	c.AvailableDataOffset = u16
	if u16, err = format.LE16(buf, off+10); err != nil {
		return c, err
	}
	c.AvailablePageTag = u16
	var u32 uint32
	if u32, err = format.LE32(buf, off+12); err != nil {
		return c, err
	}
	c.PageFlags = format.PageFlags(u32)
	if c.PreviousPage, err = format.LE32(buf, off+16); err != nil {
		return c, err
	}
	if c.NextPage, err = format.LE32(buf, off+20); err != nil {
		return c, err
	}
	return c, nil
}

// Revision identifies which of the four header variants a page uses, a
// pure function of the file's format revision and page size (never the
// page's own content).
type Revision int

const (
	RevisionOld Revision = iota
	Revision0x0b
	Revision0x11
	Revision0x11Ext
)

// RevisionFor returns which page-header variant applies for a file whose
// format revision and page size are as given.
func RevisionFor(formatRevision format.FormatRevision, pageSize uint32) Revision {
	switch {
	case formatRevision < format.FormatRevisionNewRecordFormat:
		return RevisionOld
	case formatRevision < format.FormatRevisionExtendedPageHeader:
		return Revision0x0b
	case pageSize > 8*1024:
		return Revision0x11Ext
	default:
		return Revision0x11
	}
}

// variantSize is the byte size of the variant-specific prefix (before the
// Common sub-header) for each revision. Reconstructed from the field
// order the original reader visits (checksum and page-number width grow
// with revision) since the exact struct layout file was not available in
// the retrieved reference material.
func variantSize(r Revision) int {
	switch r {
	case RevisionOld:
		return 8 // XorChecksum uint32, PageNumber uint32
	case Revision0x0b:
		return 12 // XorChecksum uint32, ECCChecksum uint32, PageNumber uint32
	case Revision0x11, Revision0x11Ext:
		return 12 // Checksum uint64, PageNumber uint32
	default:
		return 8
	}
}

// extSize is the size of the additional ext sub-header present only for
// Revision0x11Ext, following Common.
const extSize = 16 // two reserved uint64 checksum words, per the original's PageHeaderExt0x11

// Header is the fully decoded page header: which variant it is, its
// variant-specific fields, and the Common sub-header every variant
// shares.
type Header struct {
	Revision   Revision
	Checksum   uint64
	PageNumber uint32
	Common     Common
}

// ParseHeader decodes the page header found at the start of buf (a
// page-sized buffer whose offset 0 is the page's first byte), dispatching
// on revision exactly as the original reader's load_page_header does.
func ParseHeader(buf []byte, formatRevision format.FormatRevision, pageSize uint32) (Header, error) {
	r := RevisionFor(formatRevision, pageSize)
	var h Header
	h.Revision = r

	switch r {
	case RevisionOld:
		chk, err := format.LE32(buf, 0)
		if err != nil {
			return h, err
		}
		pn, err := format.LE32(buf, 4)
		if err != nil {
			return h, err
		}
		h.Checksum = uint64(chk)
		h.PageNumber = pn
	case Revision0x0b:
		xorChk, err := format.LE32(buf, 0)
		if err != nil {
			return h, err
		}
		eccChk, err := format.LE32(buf, 4)
		if err != nil {
			return h, err
		}
		pn, err := format.LE32(buf, 8)
		if err != nil {
			return h, err
		}
		h.Checksum = uint64(xorChk) | uint64(eccChk)<<32
		h.PageNumber = pn
	case Revision0x11, Revision0x11Ext:
		chk, err := format.LE64(buf, 0)
		if err != nil {
			return h, err
		}
		pn, err := format.LE32(buf, 8)
		if err != nil {
			return h, err
		}
		h.Checksum = chk
		h.PageNumber = pn
	default:
		return h, fmt.Errorf("unknown page header revision %d", r)
	}

	common, err := parseCommon(buf, variantSize(r))
	if err != nil {
		return h, err
	}
	h.Common = common
	return h, nil
}

// HeaderSize returns the number of bytes ParseHeader consumes for the
// given revision, i.e. the offset at which page content (tags area aside)
// begins.
func HeaderSize(r Revision) int {
	size := variantSize(r) + commonSize
	if r == Revision0x11Ext {
		size += extSize
	}
	return size
}
