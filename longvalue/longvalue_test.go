package longvalue

import (
	"encoding/binary"
	"testing"

	"github.com/wilhasse/go-esedb/format"
	"github.com/wilhasse/go-esedb/page"
)

const testPageSize = 4096

type memPages struct {
	buf map[uint32][]byte
}

func (m memPages) ReadPage(pageNo uint32) ([]byte, error) { return m.buf[pageNo], nil }

type fixedOffsetter struct{ pageSize uint32 }

func (f fixedOffsetter) PageOffset(pageNo uint32) int64 { return int64(pageNo+1) * int64(f.pageSize) }

// encodeLVEntry builds one long-value leaf entry: local-key-size word,
// an 8-byte big-endian (key, segOffset) local key, then the segment
// payload bytes.
func encodeLVEntry(key, segOffset uint32, payload []byte) []byte {
	var buf []byte
	size := make([]byte, 2)
	binary.LittleEndian.PutUint16(size, 8)
	buf = append(buf, size...)

	localKey := make([]byte, 8)
	binary.BigEndian.PutUint32(localKey[0:], key)
	binary.BigEndian.PutUint32(localKey[4:], segOffset)
	buf = append(buf, localKey...)
	buf = append(buf, payload...)
	return buf
}

func buildLVLeaf(t *testing.T, entries [][]byte) []byte {
	t.Helper()
	buf := make([]byte, testPageSize)
	binary.LittleEndian.PutUint16(buf[22:], uint16(len(entries)+1))
	binary.LittleEndian.PutUint32(buf[24:], uint32(format.PageFlagLeaf|format.PageFlagLongValue))

	headerSize := page.HeaderSize(page.Revision0x11)
	tagsCursor := testPageSize
	contentCursor := headerSize

	writeTag := func(content []byte) {
		copy(buf[contentCursor:], content)
		tagsCursor -= 2
		binary.LittleEndian.PutUint16(buf[tagsCursor:], uint16(contentCursor-headerSize))
		tagsCursor -= 2
		binary.LittleEndian.PutUint16(buf[tagsCursor:], uint16(len(content)))
		contentCursor += len(content)
	}

	writeTag(nil) // tag 0
	for _, e := range entries {
		writeTag(e)
	}
	return buf
}

type byteReaderFromPage struct {
	page []byte
	base int64
}

func (b byteReaderFromPage) ReadAt(off int64, n int) ([]byte, error) {
	rel := int(off - b.base)
	return b.page[rel : rel+n], nil
}

func TestBuildAndLoadReassemblesOutOfOrderSegments(t *testing.T) {
	// Two segments for key 42: offset 3 first in the tag order, offset 0 second.
	seg1 := encodeLVEntry(42, 3, []byte{'B', 'A', 'R'})
	seg0 := encodeLVEntry(42, 0, []byte{'F', 'O', 'O'})
	leaf := buildLVLeaf(t, [][]byte{seg1, seg0})

	loader := page.NewLoader(memPages{buf: map[uint32][]byte{5: leaf}}, testPageSize, format.FormatRevisionExtendedPageHeader)
	off := fixedOffsetter{pageSize: testPageSize}

	tags, err := Build(loader, off, 5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(tags))
	}

	idx := NewIndex(tags)
	br := byteReaderFromPage{page: leaf, base: off.PageOffset(5)}
	v, err := idx.Load(br, 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(v) != "FOOBAR" {
		t.Errorf("Load(42) = %q, want %q", v, "FOOBAR")
	}
}

func TestLoadMissingKey(t *testing.T) {
	idx := NewIndex(nil)
	if _, err := idx.Load(byteReaderFromPage{}, 99); err == nil {
		t.Fatalf("expected error for missing key")
	}
}
