// Package cursor implements the Cursor API component: per-table
// open/close, row positioning (First/Last/Next/Previous), and column
// decode, built on top of the catalog loader, B+tree walker, and record
// decoder.
package cursor

import (
	"fmt"

	"github.com/wilhasse/go-esedb/btree"
	"github.com/wilhasse/go-esedb/catalog"
	"github.com/wilhasse/go-esedb/format"
	"github.com/wilhasse/go-esedb/longvalue"
	"github.com/wilhasse/go-esedb/page"
	"github.com/wilhasse/go-esedb/record"
)

// ColumnInfo describes one column of an opened table, the shape the
// columns() API call returns.
type ColumnInfo struct {
	Name     string
	ID       uint32
	Type     format.ColumnType
	Max      uint32
	Codepage uint32
}

// state is a cursor's position in the Unopened -> Positioned -> Exhausted
// state machine.
type state int

const (
	stateUnopened state = iota
	statePositioned
	stateExhausted
)

// Handle is one opened table: its definition, decoder, and row position.
// A Handle is not safe for concurrent use; the DB it came from owns the
// single Pager/page-cache and must serialize access across handles if
// ever exposed across goroutines.
type Handle struct {
	db    *DB
	table *catalog.TableDefinition

	decoder *record.Decoder

	state  state
	page   *page.DbPage
	tagIdx int
}

// PageByteSource is the narrow dependency a DB needs beyond page.Loader:
// raw byte access for long-value reassembly plus page-to-file-offset
// arithmetic for locating long-value segments, both satisfied by
// *pager.Pager.
type PageByteSource interface {
	longvalue.ByteReader
	PageOffset(pageNo uint32) int64
}

// DB is the top-level cursor-API entry point: one catalog load, shared by
// every Handle opened against it.
type DB struct {
	loader  *page.Loader
	tables  []*catalog.TableDefinition
	byName  map[string]*catalog.TableDefinition
	src     PageByteSource
	lvRoots map[string]*longvalue.Index

	decompressor record.Decompressor
}

// Open loads the catalog from l and returns a DB ready to open tables.
// decompressor may be nil if no table ever decodes a COMPRESSED tagged
// column.
func Open(l *page.Loader, src PageByteSource, decompressor record.Decompressor) (*DB, error) {
	tables, err := catalog.Load(l)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*catalog.TableDefinition, len(tables))
	for _, t := range tables {
		byName[t.Table.Name] = t
	}
	return &DB{
		loader:       l,
		tables:       tables,
		byName:       byName,
		src:          src,
		lvRoots:      make(map[string]*longvalue.Index),
		decompressor: decompressor,
	}, nil
}

// Tables lists every table name found in the catalog.
func (db *DB) Tables() []string {
	names := make([]string, len(db.tables))
	for i, t := range db.tables {
		names[i] = t.Table.Name
	}
	return names
}

// Columns lists column metadata for the named table.
func (db *DB) Columns(name string) ([]ColumnInfo, error) {
	t, ok := db.byName[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, format.ErrTableNotFound)
	}
	cols := make([]ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = ColumnInfo{Name: c.Name, ID: c.Identifier, Type: c.ColumnType, Max: c.Size, Codepage: c.Codepage}
	}
	return cols, nil
}

// longValueIndex builds (and memoizes) a table's long-value index, or
// returns nil if the table has none.
func (db *DB) longValueIndex(t *catalog.TableDefinition) (*longvalue.Index, error) {
	if t.LongValue == nil {
		return nil, nil
	}
	if idx, ok := db.lvRoots[t.Table.Name]; ok {
		return idx, nil
	}
	tags, err := longvalue.Build(db.loader, db.src, t.LongValue.FatherDataPageNumber)
	if err != nil {
		return nil, fmt.Errorf("table %q: long-value index: %w", t.Table.Name, err)
	}
	idx := longvalue.NewIndex(tags)
	db.lvRoots[t.Table.Name] = idx
	return idx, nil
}

// OpenTable resolves name, builds its long-value index if it has one, and
// positions the resulting Handle on the first row (equivalent to
// MoveFirst).
func (db *DB) OpenTable(name string) (*Handle, error) {
	t, ok := db.byName[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, format.ErrTableNotFound)
	}
	lv, err := db.longValueIndex(t)
	if err != nil {
		return nil, err
	}
	h := &Handle{
		db:      db,
		table:   t,
		decoder: record.NewDecoder(t, lv, db.src, db.decompressor),
		state:   stateUnopened,
	}
	h.MoveRow(format.MoveFirst)
	return h, nil
}

// CloseTable releases h. It always succeeds; any subsequent use of h is
// invalid.
func (db *DB) CloseTable(h *Handle) bool {
	h.page = nil
	h.state = stateUnopened
	return true
}

func (h *Handle) rootPageNumber() uint32 {
	return h.table.Table.FatherDataPageNumber
}

// MoveRow repositions h per whence, returning false when no row is
// available (end of data, or a tree-walk error). The error itself is not
// kept: iteration loops stay boolean-clean, and the next
// GetColumn/GetColumnMV call fails with format.ErrOutOfRangeHandle
// because no row is positioned.
func (h *Handle) MoveRow(whence format.Whence) bool {
	switch whence {
	case format.MoveFirst:
		return h.moveFirst()
	case format.MoveLast:
		return h.moveLast()
	case format.MoveNext:
		return h.moveNext()
	case format.MovePrevious:
		return h.movePrevious()
	default:
		h.state = stateExhausted
		return false
	}
}

func (h *Handle) moveFirst() bool {
	p, err := btree.FirstLeaf(h.db.loader, h.rootPageNumber())
	if err != nil {
		h.state = stateExhausted
		return false
	}
	return h.positionAt(p, h.firstLiveTag(p, 1))
}

func (h *Handle) moveLast() bool {
	p, err := btree.LastLeaf(h.db.loader, h.rootPageNumber())
	if err != nil {
		h.state = stateExhausted
		return false
	}
	return h.positionAt(p, h.lastLiveTag(p))
}

func (h *Handle) moveNext() bool {
	if h.state != statePositioned {
		return false
	}
	p := h.page
	idx := h.firstLiveTag(p, h.tagIdx+1)
	for idx >= len(p.Tags) {
		next := p.NextPage()
		if next == 0 {
			h.state = stateExhausted
			return false
		}
		var err error
		p, err = h.db.loader.LoadPage(next)
		if err != nil {
			h.state = stateExhausted
			return false
		}
		idx = h.firstLiveTag(p, 1)
	}
	return h.positionAt(p, idx)
}

func (h *Handle) movePrevious() bool {
	if h.state != statePositioned {
		return false
	}
	p := h.page
	idx := h.lastLiveTagBefore(p, h.tagIdx)
	for idx < 1 {
		prev := p.PreviousPage()
		if prev == 0 {
			h.state = stateExhausted
			return false
		}
		var err error
		p, err = h.db.loader.LoadPage(prev)
		if err != nil {
			h.state = stateExhausted
			return false
		}
		idx = h.lastLiveTag(p)
	}
	return h.positionAt(p, idx)
}

// firstLiveTag returns the first non-defunct tag index >= from, or
// len(p.Tags) if none remain.
func (h *Handle) firstLiveTag(p *page.DbPage, from int) int {
	for i := from; i < len(p.Tags); i++ {
		if !p.Tags[i].Is(format.PageTagFlagDefunct) {
			return i
		}
	}
	return len(p.Tags)
}

// lastLiveTag returns the last non-defunct tag index, or 0 (no row) if
// the page carries only its tag-0 key placeholder.
func (h *Handle) lastLiveTag(p *page.DbPage) int {
	for i := len(p.Tags) - 1; i >= 1; i-- {
		if !p.Tags[i].Is(format.PageTagFlagDefunct) {
			return i
		}
	}
	return 0
}

// lastLiveTagBefore returns the last non-defunct tag index strictly below
// before, or 0 if none.
func (h *Handle) lastLiveTagBefore(p *page.DbPage, before int) int {
	for i := before - 1; i >= 1; i-- {
		if !p.Tags[i].Is(format.PageTagFlagDefunct) {
			return i
		}
	}
	return 0
}

func (h *Handle) positionAt(p *page.DbPage, tagIdx int) bool {
	if tagIdx <= 0 || tagIdx >= len(p.Tags) {
		h.state = stateExhausted
		return false
	}
	h.page = p
	h.tagIdx = tagIdx
	h.state = statePositioned
	return true
}

// MoveTo positions on an arbitrary row identified by an index-specific
// key; the original reader never implements this and neither does this
// port.
func (h *Handle) MoveTo(key []byte) error {
	return fmt.Errorf("MoveTo: %w", format.ErrUnimplemented)
}

// GetColumn returns columnID's value from the current row.
func (h *Handle) GetColumn(columnID uint32) ([]byte, error) {
	return h.GetColumnMV(columnID, 0)
}

// GetColumnMV returns columnID's multiValueIndex'th value (0 selects the
// first/only value) from the current row.
func (h *Handle) GetColumnMV(columnID uint32, multiValueIndex int) ([]byte, error) {
	if h.state != statePositioned {
		return nil, fmt.Errorf("no row positioned: %w", format.ErrOutOfRangeHandle)
	}
	return h.decoder.GetColumn(h.page, h.tagIdx, columnID, multiValueIndex)
}
