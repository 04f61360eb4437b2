// Package esedb provides a Go library for parsing Extensible Storage
// Engine (ESE/JET Blue) database files: validating the file header,
// walking the catalog and B+trees, and exposing a cursor-based
// table/row/column API.
//
// The library is organized into logical groups of functionality:
//
// Pager and Page Decoding:
//   - pager: owns the file handle, validates the primary/mirror header,
//     and serves page reads through a two-queue (2Q) cache.
//   - page: decodes one page's header (across its four on-disk
//     revisions), tag array, and root-page header.
//
// Tree Walking and Schema:
//   - btree: descends a tree to its first/last leaf and walks a leaf
//     chain.
//   - catalog: loads the catalog tree into per-table column definitions.
//   - longvalue: builds and reassembles a table's long-value index.
//
// Record Decoding:
//   - record: decodes one column's value out of a leaf record's
//     fixed/variable/tagged layout.
//   - value: converts a decoded column's raw bytes into a typed Go value.
//
// Cursor API:
//   - cursor: per-table open/close and row positioning (First/Last/
//     Next/Previous) over a decoded catalog.
//
// Basic usage:
//
//	db, err := esedb.Open("database.edb", 0, nil)
//	if err != nil { ... }
//	defer db.Close()
//
//	names := db.Tables()
//	h, _ := db.OpenTable("Widgets")
//	for ok := true; ok; ok = h.MoveRow(esedb.MoveNext) {
//	    v, _ := h.GetColumn(1)
//	}
package esedb

import (
	"fmt"

	"github.com/wilhasse/go-esedb/cursor"
	"github.com/wilhasse/go-esedb/format"
	"github.com/wilhasse/go-esedb/page"
	"github.com/wilhasse/go-esedb/pager"
	"github.com/wilhasse/go-esedb/record"
)

// Re-export types from format so callers need not import it directly for
// everyday use.
type (
	ColumnType   = format.ColumnType
	CatalogType  = format.CatalogType
	Whence       = format.Whence
	Decompressor = record.Decompressor
)

// Re-export the Whence constants.
const (
	MoveFirst    = format.MoveFirst
	MoveLast     = format.MoveLast
	MoveNext     = format.MoveNext
	MovePrevious = format.MovePrevious
)

// Re-export cursor's public surface.
type (
	DB         = cursor.DB
	Handle     = cursor.Handle
	ColumnInfo = cursor.ColumnInfo
)

// OpenedDB wraps the opened file's Pager alongside the cursor-level DB, so
// Close can release the underlying file handle.
type OpenedDB struct {
	*cursor.DB
	pager *pager.Pager
}

// Open validates path's file header, loads its catalog, and returns a
// ready-to-use database handle. cacheCapacity <= 0 uses
// pager.DefaultCacheCapacity. decompressor may be nil if no table ever
// decodes a COMPRESSED tagged column.
func Open(path string, cacheCapacity int, decompressor Decompressor) (*OpenedDB, error) {
	p, err := pager.Open(path, cacheCapacity)
	if err != nil {
		return nil, err
	}

	loader := page.NewLoader(p, p.PageSize, p.FormatRevision)
	db, err := cursor.Open(loader, p, decompressor)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return &OpenedDB{DB: db, pager: p}, nil
}

// Close releases the underlying file handle.
func (o *OpenedDB) Close() error {
	return o.pager.Close()
}
