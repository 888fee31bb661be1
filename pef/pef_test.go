// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pef

import (
	"errors"
	"testing"

	"github.com/saferwall/rsrcfork/binary"
	"github.com/saferwall/rsrcfork/memory"
)

// buildTestPEF assembles a minimal pwpc container with one code section
// and one exported symbol named "entry" at offset 4.
func buildTestPEF(t *testing.T) []byte {
	t.Helper()

	// Loader section: 56-byte header, strings, hash slot, key, symbol.
	loader := binary.NewWriter()
	loader.PutU32BE(0xFFFFFFFF) // mainSection = -1
	loader.PutU32BE(0)          // mainOffset
	loader.PutU32BE(0xFFFFFFFF) // initSection = -1
	loader.PutU32BE(0)
	loader.PutU32BE(0xFFFFFFFF) // termSection = -1
	loader.PutU32BE(0)
	loader.PutU32BE(0) // importedLibraryCount
	loader.PutU32BE(0) // totalImportedSymbolCount
	loader.PutU32BE(0) // relocSectionCount
	loader.PutU32BE(0) // relocInstrOffset
	const stringsOffset = 56
	loader.PutU32BE(stringsOffset)
	const hashOffset = 64
	loader.PutU32BE(hashOffset)
	loader.PutU32BE(0) // exportHashTablePower (1 slot)
	loader.PutU32BE(1) // exportedSymbolCount
	loader.Write([]byte("entry"))
	loader.ExtendTo(hashOffset)
	loader.PutU32BE(0)              // hash slot
	loader.PutU32BE(5 << 16)        // key: name length 5
	loader.PutU32BE(2<<24 | 0)      // class TVector, name offset 0
	loader.PutU32BE(4)              // value
	loader.PutU16BE(0)              // section index
	loaderData := loader.Bytes()

	code := []byte{0x60, 0x00, 0x00, 0x00, 0x4E, 0x80, 0x00, 0x20}

	const headerSize = 40
	const sectionHeaderSize = 28
	codeOffset := headerSize + 2*sectionHeaderSize
	loaderOffset := codeOffset + len(code)

	w := binary.NewWriter()
	w.PutU32BE(0x4A6F7921) // Joy!
	w.PutU32BE(0x70656666) // peff
	w.PutU32BE(0x70777063) // pwpc
	w.PutU32BE(1)          // formatVersion
	w.PutU32BE(0)          // dateTimeStamp
	w.PutU32BE(0)          // oldDefVersion
	w.PutU32BE(0)          // oldImpVersion
	w.PutU32BE(0)          // currentVersion
	w.PutU16BE(2)          // sectionCount
	w.PutU16BE(1)          // instSectionCount
	w.PutU32BE(0)          // reservedA

	// Code section header.
	w.PutU32BE(0xFFFFFFFF) // nameOffset = -1
	w.PutU32BE(0)          // defaultAddress
	w.PutU32BE(uint32(len(code)))
	w.PutU32BE(uint32(len(code)))
	w.PutU32BE(uint32(len(code)))
	w.PutU32BE(uint32(codeOffset))
	w.PutU8(SectionCode)
	w.PutU8(0)
	w.PutU8(2)
	w.PutU8(0)

	// Loader section header.
	w.PutU32BE(0xFFFFFFFF)
	w.PutU32BE(0)
	w.PutU32BE(uint32(len(loaderData)))
	w.PutU32BE(uint32(len(loaderData)))
	w.PutU32BE(uint32(len(loaderData)))
	w.PutU32BE(uint32(loaderOffset))
	w.PutU8(SectionLoader)
	w.PutU8(0)
	w.PutU8(2)
	w.PutU8(0)

	w.Write(code)
	w.Write(loaderData)
	return w.Bytes()
}

func TestParseAndLoad(t *testing.T) {
	f, err := NewFile("<test>", buildTestPEF(t))
	if err != nil {
		t.Fatal(err)
	}
	if !f.IsPPC() {
		t.Fatal("IsPPC() = false")
	}
	if f.Main().Name != "" || f.Init().Name != "" || f.Term().Name != "" {
		t.Fatal("expected no main/init/term symbols")
	}
	exports := f.Exports()
	if len(exports) != 1 {
		t.Fatalf("exports = %d; want 1", len(exports))
	}
	sym, ok := exports["entry"]
	if !ok || sym.Value != 4 || sym.SectionIndex != 0 {
		t.Fatalf("export entry = %+v", sym)
	}

	mem := memory.NewContext()
	if err := f.LoadInto("<test>", mem, 0xF0000000); err != nil {
		t.Fatal(err)
	}
	addr, err := mem.SymbolAddr("<test>:entry")
	if err != nil {
		t.Fatal(err)
	}
	if addr != 0xF0000004 {
		t.Fatalf("entry symbol at %08X; want F0000004", addr)
	}
	v, err := mem.ReadU32BE(0xF0000004)
	if err != nil || v != 0x4E800020 {
		t.Fatalf("code at entry = %08X, %v", v, err)
	}
}

func TestRejectBadMagic(t *testing.T) {
	data := buildTestPEF(t)
	data[0] = 'X'
	if _, err := NewFile("<test>", data); !errors.Is(err, ErrMalformedPEF) {
		t.Fatalf("error = %v; want ErrMalformedPEF", err)
	}
}

func TestUnpackPatternData(t *testing.T) {
	tests := []struct {
		name   string
		packed []byte
		size   uint32
		want   []byte
	}{
		{
			"zero",
			[]byte{0x04}, // opcode 0, count 4
			4,
			[]byte{0, 0, 0, 0},
		},
		{
			"blockCopy",
			[]byte{0x23, 0xAA, 0xBB, 0xCC}, // opcode 1, count 3
			3,
			[]byte{0xAA, 0xBB, 0xCC},
		},
		{
			"repeatedBlock",
			[]byte{0x42, 0x02, 0xDE, 0xAD}, // opcode 2, blockSize 2, repeat 2
			6,
			[]byte{0xDE, 0xAD, 0xDE, 0xAD, 0xDE, 0xAD},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unpackPatternData(tt.packed, tt.size)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != string(tt.want) {
				t.Fatalf("unpacked = % X; want % X", got, tt.want)
			}
		})
	}
}
