// Package value converts a column's raw decoded bytes (as returned by
// record.Decoder.GetColumn) into a typed Go value, dispatching on the
// column's catalog-declared format.ColumnType. It never touches page or
// record bytes directly; it only interprets the byte slice a Decoder
// already extracted.
package value

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf16"

	"github.com/wilhasse/go-esedb/format"
)

// ErrUnsupportedType is returned when no converter is registered for a
// column's declared type.
var ErrUnsupportedType = errors.New("esedb: unsupported column type")

// epoch is the OLE Automation date epoch (1899-12-30), which JET_coltypDateTime
// values are counted from: a float64 of whole+fractional days.
var epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Parser converts one column type's raw bytes into a typed value.
type Parser interface {
	Parse(raw []byte) (interface{}, error)
}

type boolParser struct{}

func (boolParser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("bit: %w", format.ErrRecordMalformed)
	}
	return raw[0] != 0, nil
}

type uint8Parser struct{}

func (uint8Parser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("unsigned byte: %w", format.ErrRecordMalformed)
	}
	return raw[0], nil
}

type int16Parser struct{}

func (int16Parser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("short: %w", format.ErrRecordMalformed)
	}
	return int16(binary.LittleEndian.Uint16(raw)), nil
}

type uint16Parser struct{}

func (uint16Parser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("unsigned short: %w", format.ErrRecordMalformed)
	}
	return binary.LittleEndian.Uint16(raw), nil
}

type int32Parser struct{}

func (int32Parser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("long: %w", format.ErrRecordMalformed)
	}
	return int32(binary.LittleEndian.Uint32(raw)), nil
}

type uint32Parser struct{}

func (uint32Parser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("unsigned long: %w", format.ErrRecordMalformed)
	}
	return binary.LittleEndian.Uint32(raw), nil
}

type int64Parser struct{}

func (int64Parser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("currency/long long: %w", format.ErrRecordMalformed)
	}
	return int64(binary.LittleEndian.Uint64(raw)), nil
}

type float32Parser struct{}

func (float32Parser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("IEEE single: %w", format.ErrRecordMalformed)
	}
	bits := binary.LittleEndian.Uint32(raw)
	return math.Float32frombits(bits), nil
}

type float64Parser struct{}

func (float64Parser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("IEEE double: %w", format.ErrRecordMalformed)
	}
	bits := binary.LittleEndian.Uint64(raw)
	return math.Float64frombits(bits), nil
}

type dateTimeParser struct{}

func (dateTimeParser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("datetime: %w", format.ErrRecordMalformed)
	}
	bits := binary.LittleEndian.Uint64(raw)
	days := math.Float64frombits(bits)
	whole := int64(days)
	frac := days - float64(whole)
	d := epoch.AddDate(0, 0, int(whole))
	return d.Add(time.Duration(frac * float64(24*time.Hour))), nil
}

type bytesParser struct{}

func (bytesParser) Parse(raw []byte) (interface{}, error) {
	return append([]byte(nil), raw...), nil
}

type textParser struct{ codepage uint32 }

// Parse decodes a Text/LongText column. Only the common code pages this
// reader is expected to meet in practice are handled: 1200 (UTF-16LE,
// Unicode columns) passes through UTF-16 decoding, everything else
// (ASCII/ANSI code pages, including 1252/0) is returned as the raw bytes
// converted to a Go string with no code-page translation, which reads
// correctly only for 7-bit ASCII data.
func (t textParser) Parse(raw []byte) (interface{}, error) {
	if t.codepage == 1200 {
		if len(raw)%2 != 0 {
			return nil, fmt.Errorf("unicode text: odd byte length: %w", format.ErrRecordMalformed)
		}
		runes := make([]uint16, len(raw)/2)
		for i := range runes {
			runes[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
		return string(utf16.Decode(runes)), nil
	}
	return string(raw), nil
}

type guidParser struct{}

// Parse renders a GUID column's 16 raw bytes in the standard
// xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx layout, without braces (first three fields
// little-endian, last two big-endian, per the Windows GUID wire format).
func (guidParser) Parse(raw []byte) (interface{}, error) {
	if len(raw) < 16 {
		return nil, fmt.Errorf("guid: %w", format.ErrRecordMalformed)
	}
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.LittleEndian.Uint32(raw[0:4]),
		binary.LittleEndian.Uint16(raw[4:6]),
		binary.LittleEndian.Uint16(raw[6:8]),
		binary.BigEndian.Uint16(raw[8:10]),
		raw[10:16],
	), nil
}

// ParserFor returns the Parser registered for colType, or nil if colType
// has no converter (Nil, SLV, and anything future-reserved).
func ParserFor(colType format.ColumnType, codepage uint32) Parser {
	switch colType {
	case format.ColumnTypeBit:
		return boolParser{}
	case format.ColumnTypeUnsignedByte:
		return uint8Parser{}
	case format.ColumnTypeShort:
		return int16Parser{}
	case format.ColumnTypeUnsignedShort:
		return uint16Parser{}
	case format.ColumnTypeLong:
		return int32Parser{}
	case format.ColumnTypeUnsignedLong:
		return uint32Parser{}
	case format.ColumnTypeCurrency, format.ColumnTypeLongLong:
		return int64Parser{}
	case format.ColumnTypeIEEESingle:
		return float32Parser{}
	case format.ColumnTypeIEEEDouble:
		return float64Parser{}
	case format.ColumnTypeDateTime:
		return dateTimeParser{}
	case format.ColumnTypeBinary, format.ColumnTypeLongBinary:
		return bytesParser{}
	case format.ColumnTypeText, format.ColumnTypeLongText:
		return textParser{codepage: codepage}
	case format.ColumnTypeGUID:
		return guidParser{}
	default:
		return nil
	}
}

// Parse converts raw into a typed value for colType. A nil raw (NULL
// column) yields a nil value and no error; an unsupported type yields
// ErrUnsupportedType.
func Parse(colType format.ColumnType, codepage uint32, raw []byte) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	p := ParserFor(colType, codepage)
	if p == nil {
		return nil, fmt.Errorf("column type %d: %w", colType, ErrUnsupportedType)
	}
	return p.Parse(raw)
}
