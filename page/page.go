// Package page implements the Page Decoder component: parsing a raw page
// buffer into a typed header, tag array, and helpers for locating a tag's
// content and a root page's header. It never descends the tree itself
// (that's package btree) and never interprets record bytes (package
// record); it only exposes where things live on one page.
package page

import (
	"fmt"

	"github.com/wilhasse/go-esedb/format"
)

// PageReader is the narrow interface page needs from the Pager: reading a
// whole page's bytes by logical page number. The file-wide constants
// needed to interpret those bytes are held by Loader.
type PageReader interface {
	ReadPage(pageNo uint32) ([]byte, error)
}

// DbPage is a fully decoded page: its header, tag array, and the raw bytes
// it was parsed from (retained so Content/Tag lookups don't re-read the
// pager).
type DbPage struct {
	PageNumber     uint32
	Buf            []byte
	Header         Header
	Tags           []Tag
	PageSize       uint32
	FormatRevision format.FormatRevision
}

// Load reads and fully decodes page pageNo.
func Load(r PageReader, pageNo uint32, pageSize uint32, formatRevision format.FormatRevision) (*DbPage, error) {
	buf, err := r.ReadPage(pageNo)
	if err != nil {
		return nil, fmt.Errorf("load page %d: %w", pageNo, err)
	}
	header, err := ParseHeader(buf, formatRevision, pageSize)
	if err != nil {
		return nil, fmt.Errorf("parse header of page %d: %w", pageNo, err)
	}
	tags, err := parseTags(buf, header, pageSize, formatRevision)
	if err != nil {
		return nil, fmt.Errorf("parse tags of page %d: %w", pageNo, err)
	}
	return &DbPage{
		PageNumber:     pageNo,
		Buf:            buf,
		Header:         header,
		Tags:           tags,
		PageSize:       pageSize,
		FormatRevision: formatRevision,
	}, nil
}

// Flags returns the page's role flags.
func (p *DbPage) Flags() format.PageFlags { return p.Header.Common.PageFlags }

// PreviousPage/NextPage are the sibling leaf-chain pointers.
func (p *DbPage) PreviousPage() uint32 { return p.Header.Common.PreviousPage }
func (p *DbPage) NextPage() uint32     { return p.Header.Common.NextPage }

// Size returns the number of header bytes preceding page content, i.e.
// the offset at which tag 0's Offset field is measured from.
func (p *DbPage) Size() int { return HeaderSize(p.Header.Revision) }

// TagContent returns the raw bytes a tag refers to.
func (p *DbPage) TagContent(t Tag) ([]byte, error) {
	return format.Bytes(p.Buf, p.Size()+int(t.Offset), int(t.Size))
}

// extended reports whether this page uses the 15-bit tag offset/flag
// scheme (large pages on the extended-header format revision).
func (p *DbPage) extended() bool {
	return p.FormatRevision >= format.FormatRevisionExtendedPageHeader && p.PageSize >= 16384
}

// CleanTagFlag strips borrowed flag bits from a 16-bit word read as the
// first word of a leaf entry's content, matching clean_pgtag_flag.
func (p *DbPage) CleanTagFlag(data uint16) uint16 {
	return cleanPageTagFlag(data, p.Flags().IsLeaf(), p.PageSize, p.FormatRevision)
}

// BranchChildPageNumber returns the child page pointer encoded in a branch
// (non-leaf) entry: an optional common-key-size word, a local-key-size
// word, the local key bytes, then the 4-byte child page number.
func (p *DbPage) BranchChildPageNumber(t Tag) (uint32, error) {
	off := p.Size() + int(t.Offset)
	if t.Is(format.PageTagFlagCommon) {
		off += 2
	}
	localKeySize, err := format.LE16(p.Buf, off)
	if err != nil {
		return 0, err
	}
	localKeySize = p.CleanTagFlag(localKeySize)
	off += 2 + int(localKeySize)
	return format.LE32(p.Buf, off)
}

// LocalKey reads the local-key bytes out of an entry's leading key header,
// returning them plus the byte offset immediately following the key
// header (where the entry's own data begins).
func (p *DbPage) LocalKey(t Tag) (commonKeySize uint16, localKey []byte, dataOffset int, err error) {
	off := p.Size() + int(t.Offset)
	start := off
	firstWordRead := false
	if t.Is(format.PageTagFlagCommon) {
		commonKeySize, err = format.LE16(p.Buf, off)
		if err != nil {
			return
		}
		firstWordRead = true
		off += 2
	}
	localKeySize, err := format.LE16(p.Buf, off)
	if err != nil {
		return
	}
	if !firstWordRead {
		localKeySize = p.CleanTagFlag(localKeySize)
	}
	off += 2
	localKey, err = format.Bytes(p.Buf, off, int(localKeySize))
	if err != nil {
		return
	}
	off += int(localKeySize)
	dataOffset = off
	_ = start
	return
}
