package page

import "github.com/wilhasse/go-esedb/format"

// Loader adapts a PageReader (the Pager) plus the file's page size and
// format revision into something that hands back fully decoded DbPages on
// request. btree, catalog, longvalue, and cursor all depend only on this,
// never on the Pager type directly, so they can be tested against a fake
// PageReader.
type Loader struct {
	Reader         PageReader
	PageSize       uint32
	FormatRevision format.FormatRevision
}

// NewLoader builds a Loader bound to the given PageReader and file-wide
// layout parameters.
func NewLoader(r PageReader, pageSize uint32, formatRevision format.FormatRevision) *Loader {
	return &Loader{Reader: r, PageSize: pageSize, FormatRevision: formatRevision}
}

// LoadPage reads and fully decodes one page. It does not cache beyond
// what the underlying PageReader (normally the Pager's 2Q cache) already
// provides.
func (l *Loader) LoadPage(pageNo uint32) (*DbPage, error) {
	return Load(l.Reader, pageNo, l.PageSize, l.FormatRevision)
}
