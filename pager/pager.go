// Package pager implements the Pager component: it owns the open file
// handle, validates the primary/mirror file headers, and serves
// fixed-size page reads through a two-queue (2Q) cache. No layer above it
// interprets page bytes; that is the Page Decoder's job (package page).
package pager

import (
	"fmt"
	"io"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/wilhasse/go-esedb/format"
)

// DefaultCacheCapacity is used when Open is called with a non-positive
// capacity.
const DefaultCacheCapacity = 256

// Pager serves page-sized reads from an ESE database file, backed by a
// two-queue page cache. It is safe for concurrent use: every cache access
// is guarded by mu, matching the single writer-lock discipline the spec's
// concurrency model calls for.
type Pager struct {
	mu    sync.Mutex
	file  *os.File
	cache *lru.TwoQueueCache

	Header         FileHeader
	PageSize       uint32
	FormatVersion  uint32
	FormatRevision uint32
}

// Open validates the primary and mirror file headers (signature, checksum,
// format version, and cross-consistency) the way the original reader does
// before it ever serves a page, and returns a Pager ready to read pages.
// cacheCapacity <= 0 uses DefaultCacheCapacity.
func Open(path string, cacheCapacity int) (*Pager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	p := &Pager{file: f}
	if err := p.loadFileHeader(); err != nil {
		f.Close()
		return nil, err
	}

	if cacheCapacity <= 0 {
		cacheCapacity = DefaultCacheCapacity
	}
	cache, err := lru.New2Q(cacheCapacity)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	p.cache = cache

	return p, nil
}

// Close releases the underlying file handle.
func (p *Pager) Close() error {
	return p.file.Close()
}

func (p *Pager) loadFileHeader() error {
	primaryBuf := make([]byte, headerSize)
	if _, err := p.file.ReadAt(primaryBuf, 0); err != nil {
		return fmt.Errorf("read primary header: %w", err)
	}
	primary, err := parseFileHeader(primaryBuf)
	if err != nil {
		return fmt.Errorf("parse primary header: %w", err)
	}
	if err := validateHeader(primaryBuf, primary); err != nil {
		return fmt.Errorf("validate primary header: %w", err)
	}

	mirrorOffset := int64(primary.PageSize)
	mirrorBuf := make([]byte, headerSize)
	if _, err := p.file.ReadAt(mirrorBuf, mirrorOffset); err != nil {
		return fmt.Errorf("read mirror header: %w", err)
	}
	mirror, err := parseFileHeader(mirrorBuf)
	if err != nil {
		return fmt.Errorf("parse mirror header: %w", err)
	}

	if primary.FormatRevision == 0 {
		primary.FormatRevision = mirror.FormatRevision
	}
	if primary.FormatRevision != mirror.FormatRevision {
		return fmt.Errorf("format revision %d != mirror %d: %w",
			primary.FormatRevision, mirror.FormatRevision, format.ErrHeaderMismatch)
	}
	if primary.PageSize == 0 {
		primary.PageSize = mirror.PageSize
	}
	if primary.PageSize != mirror.PageSize {
		return fmt.Errorf("page size %d != mirror %d: %w",
			primary.PageSize, mirror.PageSize, format.ErrHeaderMismatch)
	}
	if primary.FormatRevision <= format.FormatRevisionLinearTaggedData {
		return fmt.Errorf("revision 0x%x uses the legacy linear tagged-data layout: %w",
			primary.FormatRevision, format.ErrUnimplemented)
	}

	p.Header = primary
	p.PageSize = primary.PageSize
	p.FormatVersion = primary.FormatVersion
	p.FormatRevision = primary.FormatRevision
	return nil
}

// PageOffset returns the file byte offset at which logical page pageNo's
// data begins, (pageNo+1)*PageSize. Data pages are numbered from 1: the
// first two page-sized slots in the file hold the primary and mirror
// headers, so page 1 begins at offset 2*PageSize. Exposed so callers that locate bytes
// within a page (the long-value reassembly path) can translate a page
// number plus in-page offset into an absolute file offset without
// depending on the Pager's internals.
func (p *Pager) PageOffset(pageNo uint32) int64 {
	return int64(pageNo+1) * int64(p.PageSize)
}

// ReadPage returns the raw bytes of logical page pageNo, serving them from
// the 2Q cache when present and populating the cache on a miss.
func (p *Pager) ReadPage(pageNo uint32) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.cache.Get(pageNo); ok {
		return v.([]byte), nil
	}

	buf := make([]byte, p.PageSize)
	off := p.PageOffset(pageNo)
	if _, err := p.file.ReadAt(buf, off); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("read page %d at offset %d: %w", pageNo, off, err)
		}
		return nil, fmt.Errorf("read page %d: %w", pageNo, err)
	}
	p.cache.Add(pageNo, buf)
	return buf, nil
}

// ReadAt returns n bytes starting at absolute file offset off, without
// going through the page cache. It is used for the primary/mirror header
// reads and by callers that already have a page buffer in hand and only
// need raw byte access outside the cache, such as tests.
func (p *Pager) ReadAt(off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := p.file.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("read at %d: %w", off, err)
	}
	return buf, nil
}
