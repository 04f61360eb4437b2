package cursor

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

func (m memPages) ReadPage(pageNo uint32) ([]byte, error)  { return m.buf[pageNo], nil }
func (m memPages) ReadAt(off int64, n int) ([]byte, error) { return nil, format.ErrLongValueNotFound }
func (m memPages) PageOffset(pageNo uint32) int64          { return int64(pageNo+1) * testPageSize }

// encodeCatalogEntry builds one catalog row's tag content (no variable
// fields needed for these tests beyond the name).
func encodeCatalogEntry(catType format.CatalogType, identifier, coltypOrFDP, spaceUsage uint32, name string) []byte {
	const ddSize = 29
	var buf []byte
	buf = append(buf, 0, 0) // local key size = 0

	var ddh [4]byte
	if name != "" {
		ddh[1] = 128
	}
	binary.LittleEndian.PutUint16(ddh[2:], uint16(4+ddSize))
	buf = append(buf, ddh[:]...)

	dd := make([]byte, ddSize)
	binary.LittleEndian.PutUint16(dd[4:], uint16(catType))
	binary.LittleEndian.PutUint32(dd[6:], identifier)
	binary.LittleEndian.PutUint32(dd[10:], coltypOrFDP)
	binary.LittleEndian.PutUint32(dd[14:], spaceUsage)
	buf = append(buf, dd...)

	if name != "" {
		size := make([]byte, 2)
		binary.LittleEndian.PutUint16(size, uint16(len(name)))
		buf = append(buf, size...)
		buf = append(buf, []byte(name)...)
	}
	return buf
}

// encodeRowEntry builds one data-row record: a single fixed uint32
// column (identifier 1), no variable or tagged columns.
func encodeRowEntry(value uint32) []byte {
	const lastFixed = 1
	bitmaskSize := (lastFixed + 7) / 8

	var buf []byte
	buf = append(buf, 0, 0) // local key size = 0

	ddh := make([]byte, 4)
	ddh[0] = lastFixed
	binary.LittleEndian.PutUint16(ddh[2:], uint16(4+4+bitmaskSize))
	buf = append(buf, ddh...)

	fixedBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(fixedBytes, value)
	buf = append(buf, fixedBytes...)
	buf = append(buf, make([]byte, bitmaskSize)...)
	return buf
}

func buildLeaf(t *testing.T, entries [][]byte, prev, next uint32) []byte {
	t.Helper()
	buf := make([]byte, testPageSize)
	binary.LittleEndian.PutUint16(buf[22:], uint16(len(entries)+1))
	binary.LittleEndian.PutUint32(buf[24:], uint32(format.PageFlagLeaf))
	binary.LittleEndian.PutUint32(buf[28:], prev)
	binary.LittleEndian.PutUint32(buf[32:], next)

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

	writeTag(nil)
	for _, e := range entries {
		writeTag(e)
	}
	return buf
}

func buildDB(t *testing.T) *DB {
	t.Helper()

	const dataPage1 = 10
	const dataPage2 = 11

	tableEntry := encodeCatalogEntry(format.CatalogTypeTable, 1, dataPage1, 0, "Widgets")
	colEntry := encodeCatalogEntry(format.CatalogTypeColumn, 1, uint32(format.ColumnTypeLong), 4, "Id")
	catalogLeaf := buildLeaf(t, [][]byte{tableEntry, colEntry}, 0, 0)

	leaf1 := buildLeaf(t, [][]byte{encodeRowEntry(1), encodeRowEntry(2)}, 0, dataPage2)
	leaf2 := buildLeaf(t, [][]byte{encodeRowEntry(3)}, dataPage1, 0)

	mem := memPages{buf: map[uint32][]byte{
		format.FixedPageNumberCatalog: catalogLeaf,
		dataPage1:                    leaf1,
		dataPage2:                    leaf2,
	}}

	loader := page.NewLoader(mem, testPageSize, format.FormatRevisionExtendedPageHeader)
	db, err := Open(loader, mem, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return db
}

func readID(t *testing.T, h *Handle) uint32 {
	t.Helper()
	v, err := h.GetColumn(1)
	if err != nil {
		t.Fatalf("GetColumn(1): %v", err)
	}
	return binary.LittleEndian.Uint32(v)
}

func TestOpenTablePositionsOnFirstRow(t *testing.T) {
	db := buildDB(t)
	if got := db.Tables(); len(got) != 1 || got[0] != "Widgets" {
		t.Fatalf("Tables() = %v, want [Widgets]", got)
	}

	h, err := db.OpenTable("Widgets")
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}
	if got := readID(t, h); got != 1 {
		t.Errorf("first row id = %d, want 1", got)
	}
}

func TestMoveNextCrossesPageBoundary(t *testing.T) {
	db := buildDB(t)
	h, err := db.OpenTable("Widgets")
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}

	var got []uint32
	got = append(got, readID(t, h))
	for h.MoveRow(format.MoveNext) {
		got = append(got, readID(t, h))
	}

	want := []uint32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMoveLastThenPreviousCrossesPageBoundary(t *testing.T) {
	db := buildDB(t)
	h, err := db.OpenTable("Widgets")
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}

	if !h.MoveRow(format.MoveLast) {
		t.Fatalf("MoveLast returned false")
	}
	if got := readID(t, h); got != 3 {
		t.Errorf("last row id = %d, want 3", got)
	}

	if !h.MoveRow(format.MovePrevious) {
		t.Fatalf("MovePrevious returned false")
	}
	if got := readID(t, h); got != 2 {
		t.Errorf("previous row id = %d, want 2", got)
	}

	if !h.MoveRow(format.MovePrevious) {
		t.Fatalf("MovePrevious returned false")
	}
	if got := readID(t, h); got != 1 {
		t.Errorf("previous row id = %d, want 1", got)
	}

	if h.MoveRow(format.MovePrevious) {
		t.Fatalf("expected MovePrevious to exhaust at start of table")
	}
}

func TestCloseTableInvalidatesHandle(t *testing.T) {
	db := buildDB(t)
	h, err := db.OpenTable("Widgets")
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}
	if !db.CloseTable(h) {
		t.Fatalf("CloseTable returned false")
	}
	if _, err := h.GetColumn(1); err == nil {
		t.Fatalf("expected error reading a closed handle")
	}
}

func TestOpenTableUnknownName(t *testing.T) {
	db := buildDB(t)
	if _, err := db.OpenTable("NoSuchTable"); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}
