// Package compress provides a ready-to-use record.Decompressor for the
// COMPRESSED tagged-column flag, so callers don't have to bring their own
// implementation of the external decompression collaborator just to
// read a database that happens to use it.
package compress

import (
	"fmt"

	"github.com/golang/snappy"
)

// Snappy decodes COMPRESSED tagged columns written in the Snappy block
// format (not the Snappy framing/stream format).
// The wire format isn't specified by the reader itself (it's an external
// collaborator by design); Snappy is offered here as a ready default
// since it requires no configuration and decodes without knowing the
// original length ahead of time.
type Snappy struct{}

// Decompress implements record.Decompressor.
func (Snappy) Decompress(src []byte) ([]byte, error) {
	dst, err := snappy.Decode(nil, src)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress: %w", err)
	}
	return dst, nil
}
