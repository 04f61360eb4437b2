// rootheader.go - RootPageHeader, the structure stored at tag index 0 of
// a page whose IS_ROOT flag is set, instead of ordinary record or
// common-key data.
package page

import (
	"fmt"

	"github.com/wilhasse/go-esedb/format"
)

// RootPageHeader describes a B+tree's root page metadata: the space tree
// it owns and a hint of its initial extent. Two on-disk sizes exist (16
// and 25 bytes); which one a given root page uses is determined purely by
// its tag-0 size, not by format revision.
type RootPageHeader struct {
	InitialNumberOfPages uint32
	ParentFDP            uint32
	ExtentSpace          uint32
	SpaceTreePageNumber  uint32
	// PrimaryExtent is only present in the 25-byte variant; Has25 reports
	// which variant was read.
	PrimaryExtent uint32
	Has25         bool
}

// ReadRootPageHeader decodes the RootPageHeader stored at tag index 0 of a
// root page, dispatching on the tag's size (16 or 25 bytes) the way the
// original reader's load_root_page_header does.
func ReadRootPageHeader(p *DbPage) (RootPageHeader, error) {
	if len(p.Tags) == 0 {
		return RootPageHeader{}, fmt.Errorf("page %d: no tags to hold a root page header", p.PageNumber)
	}
	tag := p.Tags[0]
	content, err := p.TagContent(tag)
	if err != nil {
		return RootPageHeader{}, err
	}

	var h RootPageHeader
	switch tag.Size {
	case 16:
		if h.InitialNumberOfPages, err = format.LE32(content, 0); err != nil {
			return h, err
		}
		if h.ParentFDP, err = format.LE32(content, 4); err != nil {
			return h, err
		}
		if h.ExtentSpace, err = format.LE32(content, 8); err != nil {
			return h, err
		}
		if h.SpaceTreePageNumber, err = format.LE32(content, 12); err != nil {
			return h, err
		}
	case 25:
		if h.InitialNumberOfPages, err = format.LE32(content, 0); err != nil {
			return h, err
		}
		if h.ParentFDP, err = format.LE32(content, 4); err != nil {
			return h, err
		}
		if h.ExtentSpace, err = format.LE32(content, 8); err != nil {
			return h, err
		}
		if h.SpaceTreePageNumber, err = format.LE32(content, 12); err != nil {
			return h, err
		}
		if h.PrimaryExtent, err = format.LE32(content, 16); err != nil {
			return h, err
		}
		h.Has25 = true
	default:
		return h, fmt.Errorf("page %d tag 0: unexpected root page header size %d: %w",
			p.PageNumber, tag.Size, format.ErrRecordMalformed)
	}
	return h, nil
}
