package value

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/wilhasse/go-esedb/format"
)

func TestParseIntegers(t *testing.T) {
	u32 := make([]byte, 4)
	binary.LittleEndian.PutUint32(u32, 0xdeadbeef)
	v, err := Parse(format.ColumnTypeUnsignedLong, 0, u32)
	if err != nil {
		t.Fatalf("Parse(UnsignedLong): %v", err)
	}
	if v.(uint32) != 0xdeadbeef {
		t.Errorf("got %v, want 0xdeadbeef", v)
	}

	i16 := make([]byte, 2)
	neg := int16(-5)
	binary.LittleEndian.PutUint16(i16, uint16(neg))
	v, err = Parse(format.ColumnTypeShort, 0, i16)
	if err != nil {
		t.Fatalf("Parse(Short): %v", err)
	}
	if v.(int16) != -5 {
		t.Errorf("got %v, want -5", v)
	}
}

func TestParseText(t *testing.T) {
	v, err := Parse(format.ColumnTypeText, 1252, []byte("hello"))
	if err != nil {
		t.Fatalf("Parse(Text ansi): %v", err)
	}
	if v.(string) != "hello" {
		t.Errorf("got %q, want hello", v)
	}

	encoded := utf16.Encode([]rune("héllo"))
	raw := make([]byte, len(encoded)*2)
	for i, r := range encoded {
		binary.LittleEndian.PutUint16(raw[i*2:], r)
	}
	v, err = Parse(format.ColumnTypeText, 1200, raw)
	if err != nil {
		t.Fatalf("Parse(Text unicode): %v", err)
	}
	if v.(string) != "héllo" {
		t.Errorf("got %q, want héllo", v)
	}
}

func TestParseGUID(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	v, err := Parse(format.ColumnTypeGUID, 0, raw)
	if err != nil {
		t.Fatalf("Parse(GUID): %v", err)
	}
	want := "04030201-0605-0807-090a-0b0c0d0e0f10"
	if v.(string) != want {
		t.Errorf("got %q, want %q", v, want)
	}
}

func TestParseNullIsNilNoError(t *testing.T) {
	v, err := Parse(format.ColumnTypeLong, 0, nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if v != nil {
		t.Errorf("got %v, want nil", v)
	}
}

func TestParseUnsupportedType(t *testing.T) {
	if _, err := Parse(format.ColumnTypeSLV, 0, []byte{1}); err == nil {
		t.Fatalf("expected error for unsupported column type")
	}
}
