package page

import (
	"encoding/binary"
	"testing"

	"github.com/wilhasse/go-esedb/format"
)

type fakeReader struct {
	pages map[uint32][]byte
}

func (f fakeReader) ReadPage(pageNo uint32) ([]byte, error) { return f.pages[pageNo], nil }

// buildPage constructs a page-sized buffer on the 0x11 (extended, <=8KiB)
// revision with the given flags/sibling pointers and a tag array built
// from contents, each appended back-to-front from the page's tail.
func buildPage(t *testing.T, pageSize uint32, flags format.PageFlags, prev, next uint32, contents [][]byte) []byte {
	t.Helper()
	buf := make([]byte, pageSize)

	// variant-specific prefix: 12 bytes (uint64 checksum + uint32 page number)
	binary.LittleEndian.PutUint32(buf[12:], 0)                      // FatherDataPageObjectID
	binary.LittleEndian.PutUint16(buf[16:], 0)                      // AvailableDataSize
	binary.LittleEndian.PutUint16(buf[18:], 0)                      // AvailableUncommittedDataSize
	binary.LittleEndian.PutUint16(buf[20:], 0)                      // AvailableDataOffset
	binary.LittleEndian.PutUint16(buf[22:], uint16(len(contents)))  // AvailablePageTag
	binary.LittleEndian.PutUint32(buf[24:], uint32(flags))          // PageFlags
	binary.LittleEndian.PutUint32(buf[28:], prev)                   // PreviousPage
	binary.LittleEndian.PutUint32(buf[32:], next)                   // NextPage

	headerSize := HeaderSize(Revision0x11)
	contentCursor := headerSize
	tagsCursor := int(pageSize)
	for _, c := range contents {
		copy(buf[contentCursor:], c)
		off := uint16(contentCursor - headerSize)
		size := uint16(len(c))
		tagsCursor -= 2
		binary.LittleEndian.PutUint16(buf[tagsCursor:], off)
		tagsCursor -= 2
		binary.LittleEndian.PutUint16(buf[tagsCursor:], size)
		contentCursor += len(c)
	}
	return buf
}

func TestParseHeaderAndTagsRoundTrip(t *testing.T) {
	const pageSize = 4096
	contents := [][]byte{
		{0xAA, 0xBB},
		{0x01, 0x02, 0x03},
	}
	buf := buildPage(t, pageSize, format.PageFlagLeaf, 0, 0, contents)

	r := fakeReader{pages: map[uint32][]byte{5: buf}}
	dp, err := Load(r, 5, pageSize, format.FormatRevisionExtendedPageHeader)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !dp.Flags().IsLeaf() {
		t.Fatalf("expected leaf flag set")
	}
	if len(dp.Tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(dp.Tags))
	}

	got0, err := dp.TagContent(dp.Tags[0])
	if err != nil {
		t.Fatalf("TagContent(0): %v", err)
	}
	if string(got0) != string(contents[0]) {
		t.Errorf("tag 0 content = %v, want %v", got0, contents[0])
	}

	got1, err := dp.TagContent(dp.Tags[1])
	if err != nil {
		t.Fatalf("TagContent(1): %v", err)
	}
	if string(got1) != string(contents[1]) {
		t.Errorf("tag 1 content = %v, want %v", got1, contents[1])
	}
}

func TestRevisionForThresholds(t *testing.T) {
	cases := []struct {
		revision format.FormatRevision
		pageSize uint32
		want     Revision
	}{
		{0x01, 4096, RevisionOld},
		{0x0b, 4096, Revision0x0b},
		{0x11, 4096, Revision0x11},
		{0x11, 16384, Revision0x11Ext},
	}
	for _, c := range cases {
		if got := RevisionFor(c.revision, c.pageSize); got != c.want {
			t.Errorf("RevisionFor(0x%x, %d) = %v, want %v", c.revision, c.pageSize, got, c.want)
		}
	}
}
