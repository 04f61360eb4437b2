package pager

import (
	"encoding/binary"
	"errors"
	"os"
	"testing"

	"github.com/wilhasse/go-esedb/format"
)

// buildHeader returns a headerSize-byte buffer with a valid checksum for
// the given page size and format version/revision.
func buildHeader(t *testing.T, pageSize, version, revision uint32) []byte {
	t.Helper()
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[offSignature:], format.FileSignature)
	binary.LittleEndian.PutUint32(buf[offFormatVersion:], version)
	binary.LittleEndian.PutUint32(buf[offFormatRevision:], revision)
	binary.LittleEndian.PutUint32(buf[offPageSize:], pageSize)
	binary.LittleEndian.PutUint32(buf[offCreationFormatVersion:], version)
	binary.LittleEndian.PutUint32(buf[offCreationFormatRevision:], revision)

	sum, err := checksum32(buf)
	if err != nil {
		t.Fatalf("checksum32: %v", err)
	}
	binary.LittleEndian.PutUint32(buf[offChecksum:], sum)
	return buf
}

func writeTestFile(t *testing.T, pageSize uint32, numPages int) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "esedb-*.edb")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer f.Close()

	header := buildHeader(t, pageSize, format.SupportedFormatVersion, format.FormatRevisionExtendedPageHeader)
	if _, err := f.Write(header); err != nil {
		t.Fatalf("write primary header: %v", err)
	}
	if _, err := f.Write(header); err != nil {
		t.Fatalf("write mirror header: %v", err)
	}
	for i := 0; i < numPages; i++ {
		page := make([]byte, pageSize)
		// Stamp each page with its own (1-based) page number so reads can
		// be checked.
		binary.LittleEndian.PutUint32(page, uint32(i+1))
		if _, err := f.Write(page); err != nil {
			t.Fatalf("write page %d: %v", i, err)
		}
	}
	return f.Name()
}

func TestOpenValidatesHeader(t *testing.T) {
	path := writeTestFile(t, 4096, 3)
	p, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if p.PageSize != 4096 {
		t.Errorf("PageSize = %d, want 4096", p.PageSize)
	}
	if p.FormatVersion != format.SupportedFormatVersion {
		t.Errorf("FormatVersion = 0x%x, want 0x%x", p.FormatVersion, format.SupportedFormatVersion)
	}
}

func TestOpenBadSignature(t *testing.T) {
	path := writeTestFile(t, 4096, 1)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("open for corruption: %v", err)
	}
	// Corrupt the primary header's signature field.
	if _, err := f.WriteAt([]byte{0, 0, 0, 0}, offSignature); err != nil {
		t.Fatalf("corrupt signature: %v", err)
	}
	f.Close()

	_, err = Open(path, 0)
	if !errors.Is(err, format.ErrBadSignature) {
		t.Fatalf("Open error = %v, want wrapping ErrBadSignature", err)
	}
}

func TestOpenChecksumMismatch(t *testing.T) {
	path := writeTestFile(t, 4096, 1)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("open for corruption: %v", err)
	}
	if _, err := f.WriteAt([]byte{1, 2, 3, 4}, offFormatVersion); err != nil {
		t.Fatalf("corrupt format version word: %v", err)
	}
	f.Close()

	_, err = Open(path, 0)
	if !errors.Is(err, format.ErrChecksumMismatch) {
		t.Fatalf("Open error = %v, want wrapping ErrChecksumMismatch", err)
	}
}

func TestReadPageCachesAndReturnsContent(t *testing.T) {
	path := writeTestFile(t, 4096, 3)
	p, err := Open(path, 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	for i := uint32(1); i <= 3; i++ {
		buf, err := p.ReadPage(i)
		if err != nil {
			t.Fatalf("ReadPage(%d): %v", i, err)
		}
		got := binary.LittleEndian.Uint32(buf)
		if got != i {
			t.Errorf("page %d stamp = %d, want %d", i, got, i)
		}
	}

	// With capacity 2, reading three distinct pages evicts page 1; re-reading
	// it loads it again and must return identical content.
	buf, err := p.ReadPage(1)
	if err != nil {
		t.Fatalf("ReadPage(1) second read: %v", err)
	}
	if binary.LittleEndian.Uint32(buf) != 1 {
		t.Errorf("re-read page 1 stamp changed")
	}
}

func TestOpenRejectsLinearTaggedDataRevision(t *testing.T) {
	path := writeTestFile(t, 4096, 1)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("open for corruption: %v", err)
	}
	// Downgrade both headers to the legacy "linear" tagged-data revision,
	// keeping each header's own checksum correct.
	for _, off := range []int64{0, 4096} {
		buf := make([]byte, headerSize)
		if _, err := f.ReadAt(buf, off); err != nil {
			t.Fatalf("read header at %d: %v", off, err)
		}
		binary.LittleEndian.PutUint32(buf[offFormatRevision:], format.FormatRevisionLinearTaggedData)
		sum, err := checksum32(buf)
		if err != nil {
			t.Fatalf("checksum32: %v", err)
		}
		binary.LittleEndian.PutUint32(buf[offChecksum:], sum)
		if _, err := f.WriteAt(buf, off); err != nil {
			t.Fatalf("write header at %d: %v", off, err)
		}
	}
	f.Close()

	_, err = Open(path, 0)
	if !errors.Is(err, format.ErrUnimplemented) {
		t.Fatalf("Open error = %v, want wrapping ErrUnimplemented", err)
	}
}

func TestReadPageOutOfRange(t *testing.T) {
	path := writeTestFile(t, 4096, 1)
	p, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if _, err := p.ReadPage(50); err == nil {
		t.Fatalf("ReadPage(50) on a 1-page file: want error, got nil")
	}
}
