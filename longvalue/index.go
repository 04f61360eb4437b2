package longvalue

import (
	"fmt"

	"github.com/wilhasse/go-esedb/format"
)

// ByteReader reads raw bytes at an absolute file offset, satisfied by
// Pager.ReadAt.
type ByteReader interface {
	ReadAt(off int64, n int) ([]byte, error)
}

// Index is the in-memory long-value tag list for one table, built once by
// Build and then queried by Load for each long-value key encountered by
// the record decoder.
type Index struct {
	tags []Tag
}

// NewIndex wraps a pre-built tag list.
func NewIndex(tags []Tag) *Index { return &Index{tags: tags} }

// Load reassembles a long value's bytes from its segment tags. It
// preserves the original reader's exact (and slightly unusual)
// reassembly algorithm: scan for the next segment whose offset equals
// what has been assembled so far, append it, and restart the scan from
// the beginning — rather than sorting segments by offset first. Segment
// tags are not guaranteed to arrive in offset order, and the original
// reader's design notes call this out as intentional, preserved
// behavior, not a bug to fix.
func (idx *Index) Load(r ByteReader, key uint32) ([]byte, error) {
	var res []byte
	i := 0
	for i < len(idx.tags) {
		t := idx.tags[i]
		if t.Key == key && len(res) == int(t.SegOffset) {
			seg, err := r.ReadAt(t.FileOffset, int(t.Size))
			if err != nil {
				return nil, fmt.Errorf("read long-value segment (key %d, offset %d): %w", key, t.SegOffset, err)
			}
			res = append(res, seg...)
			i = 0
			continue
		}
		i++
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("long-value key %d: %w", key, format.ErrLongValueNotFound)
	}
	return res, nil
}
