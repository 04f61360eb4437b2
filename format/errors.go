package format

import "errors"

// Sentinel errors returned by every package in this module. Call sites wrap
// these with fmt.Errorf("...: %w", err) to add context; callers compare
// with errors.Is.
var (
	ErrBadSignature       = errors.New("esedb: bad file signature")
	ErrChecksumMismatch   = errors.New("esedb: header checksum mismatch")
	ErrHeaderMismatch     = errors.New("esedb: primary and mirror headers disagree")
	ErrUnsupportedVersion = errors.New("esedb: unsupported format version")
	ErrPageFlagsUnexpected = errors.New("esedb: page flags do not match expected role")
	ErrSiblingChainBroken = errors.New("esedb: leaf sibling chain is broken")
	ErrRecordMalformed    = errors.New("esedb: record data is malformed")
	ErrColumnNotFound     = errors.New("esedb: column not found")
	ErrLongValueNotFound  = errors.New("esedb: long value not found")
	ErrTableNotFound      = errors.New("esedb: table not found")
	ErrOutOfRangeHandle   = errors.New("esedb: handle out of range")
	ErrUnimplemented      = errors.New("esedb: operation not implemented")
	ErrNoDecompressor     = errors.New("esedb: column is compressed but no decompressor was configured")
)
