// Package longvalue implements the Long-Value Index component: walking a
// table's long-value tree into an ordered list of (key, segment-offset,
// file-location, size) tags, and reassembling a value's bytes from them.
package longvalue

import (
	"fmt"

	"github.com/wilhasse/go-esedb/format"
	"github.com/wilhasse/go-esedb/page"
)

// Tag is one long-value segment location: key identifies the logical long
// value, segOffset is this segment's byte offset within the reassembled
// value, and fileOffset/size locate the segment's bytes on disk.
type Tag struct {
	Key        uint32
	SegOffset  uint32
	FileOffset int64
	Size       uint32
}

// loader is the narrow page-loading dependency this package needs.
type loader interface {
	LoadPage(pageNo uint32) (*page.DbPage, error)
}

// offsetter is provided by the caller (normally backed by the
// Pager's own page-offset arithmetic) so Tag.FileOffset can address bytes
// directly without this package depending on the Pager type.
type offsetter interface {
	PageOffset(pageNo uint32) int64
}

// Build walks the long-value tree rooted at fdpRootPage and returns every
// segment tag found, discarding the informational 8-byte
// (key+total_size-only) tags the original reader also ignores.
func Build(l loader, off offsetter, fdpRootPage uint32) ([]Tag, error) {
	var tags []Tag
	err := walk(l, off, fdpRootPage, &tags)
	return tags, err
}

// walk mirrors load_lv_metadata's recursive structure: a root/leaf page is
// read directly; a parent-of-leaf (or deeper branch) page recurses into
// its child chain.
func walk(l loader, off offsetter, pageNo uint32, out *[]Tag) error {
	p, err := l.LoadPage(pageNo)
	if err != nil {
		return err
	}
	if !p.Flags().IsLongValue() {
		return fmt.Errorf("page %d: expected IS_LONG_VALUE flag: %w", pageNo, format.ErrPageFlagsUnexpected)
	}
	if p.Flags().IsRoot() {
		if _, err := page.ReadRootPageHeader(p); err != nil {
			return err
		}
	}

	if !p.Flags().IsLeaf() {
		prevPageNumber := pageNo
		if len(p.Tags) < 2 {
			return fmt.Errorf("page %d: branch long-value page has no tag 1: %w", pageNo, format.ErrRecordMalformed)
		}
		child, err := p.BranchChildPageNumber(p.Tags[1])
		if err != nil {
			return err
		}
		for child != 0 {
			cp, err := l.LoadPage(child)
			if err != nil {
				return err
			}
			if cp.PreviousPage() != 0 && prevPageNumber != cp.PreviousPage() {
				return fmt.Errorf("page %d: previous page %d, expected %d: %w",
					cp.PageNumber, cp.PreviousPage(), prevPageNumber, format.ErrSiblingChainBroken)
			}
			if !cp.Flags().IsLeaf() || !cp.Flags().IsLongValue() {
				if err := walk(l, off, child, out); err != nil {
					return err
				}
			} else if err := collectLeaf(cp, off, out); err != nil {
				return err
			}
			prevPageNumber = child
			child = cp.NextPage()
		}
		return nil
	}

	return collectLeaf(p, off, out)
}

func collectLeaf(p *page.DbPage, off offsetter, out *[]Tag) error {
	for i := 1; i < len(p.Tags); i++ {
		tag := p.Tags[i]
		if tag.Is(format.PageTagFlagDefunct) {
			continue
		}
		t, ok, err := parseLVTag(p, tag, off)
		if err != nil {
			return err
		}
		if ok {
			*out = append(*out, t)
		}
	}
	return nil
}

// parseLVTag decodes one long-value leaf entry into a Tag, porting
// load_lv_tag. An entry whose data after the key header is exactly 8 bytes
// (key, total_size) carries no segment bytes; it is informational and
// discarded, matching the original reader's explicit "TODO: handle?"
// comment: ok is false in that case.
func parseLVTag(p *page.DbPage, tag page.Tag, off offsetter) (Tag, bool, error) {
	tag0 := p.Tags[0]
	commonKeySize, localKey, dataOffset, err := p.LocalKey(tag)
	if err != nil {
		return Tag{}, false, err
	}

	var commonKey []byte
	if commonKeySize > 0 {
		commonKey, err = format.Bytes(p.Buf, p.Size()+int(tag0.Offset), int(commonKeySize))
		if err != nil {
			return Tag{}, false, err
		}
	}

	tagContentStart := p.Size() + int(tag.Offset)
	consumed := dataOffset - tagContentStart
	remaining := int(tag.Size) - consumed

	if remaining == 8 {
		// key + total_size only: informational, not a data segment.
		return Tag{}, false, nil
	}

	var pageKey []byte
	switch {
	case int(commonKeySize)+len(localKey) == 8:
		pageKey = append(append([]byte(nil), commonKey...), localKey...)
	case len(localKey) >= 4:
		pageKey = localKey
	case len(commonKey) >= 4:
		pageKey = commonKey
	default:
		return Tag{}, false, fmt.Errorf("page %d tag content: no usable long-value key bytes", p.PageNumber)
	}

	key, err := format.Be32(pageKey, 0)
	if err != nil {
		return Tag{}, false, err
	}

	var segOffset uint32
	if len(pageKey) == 8 {
		segOffset, err = format.Be32(pageKey, 4)
		if err != nil {
			return Tag{}, false, err
		}
	}

	return Tag{
		Key:        key,
		SegOffset:  segOffset,
		FileOffset: off.PageOffset(p.PageNumber) + int64(dataOffset),
		Size:       uint32(remaining),
	}, true, nil
}
