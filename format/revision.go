package format

import "fmt"

// revisionEntry names a known (format version, format revision) pair, for
// diagnostics only. Ported from the original reader's revision_to_string
// table; never consulted on the core decode path.
type revisionEntry struct {
	version  uint32
	revision uint32
	name     string
}

var knownRevisions = []revisionEntry{
	{0x620, 0x00, "April 1997 beta"},
	{0x620, 0x01, "Exchange 5.5"},
	{0x620, 0x02, "Exchange 5.5 SP1/SP2"},
	{0x620, 0x03, "Exchange 5.5 SP3"},
	{0x620, 0x04, "Windows 2000 beta"},
	{0x620, 0x06, "Windows 2000"},
	{0x620, 0x07, "Windows 2000 SP1 (ECC)"},
	{0x620, 0x08, "Exchange 2000"},
	{0x620, 0x09, "Windows XP"},
	{0x620, 0x0a, "Windows XP (ECC)"},
	{0x620, 0x0b, "Windows Server 2003 (new record format)"},
	{0x620, 0x0c, "Windows Vista"},
	{0x620, 0x11, "Windows 7 / Exchange 2010 (extended page header)"},
	{0x620, 0x12, "Windows 8"},
	{0x620, 0x13, "Windows 8.1"},
	{0x620, 0x14, "Windows 10 / Exchange 2013 / AD 2016"},
}

// RevisionString returns a human-readable label for a (version, revision)
// pair, or a generic "unknown" label when it isn't in the known table.
func RevisionString(version, revision uint32) string {
	for _, e := range knownRevisions {
		if e.version == version && e.revision == revision {
			return e.name
		}
	}
	return fmt.Sprintf("unknown (version 0x%x, revision 0x%x)", version, revision)
}
