// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"strings"
	"testing"

	"github.com/saferwall/rsrcfork/binary"
)

func TestDecodeSize(t *testing.T) {
	w := binary.NewWriter()
	w.PutU16BE(0x5880) // acceptSuspend | canBackground | activateOnFG | cleanAddressing
	w.PutU32BE(0x00100000)
	w.PutU32BE(0x00080000)
	decoded, err := DecodeSize(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.AcceptSuspendEvents || !decoded.CanBackground ||
		!decoded.ActivateOnFGSwitch || !decoded.CleanAddressing {
		t.Fatalf("flags = %+v", decoded)
	}
	if decoded.SaveScreen || decoded.OnlyBackground {
		t.Fatalf("unexpected flags set: %+v", decoded)
	}
	if decoded.Size != 0x00100000 || decoded.MinSize != 0x00080000 {
		t.Fatalf("sizes = %X/%X", decoded.Size, decoded.MinSize)
	}

	if _, err := DecodeSize([]byte{1, 2}); !errors.Is(err, ErrMalformedCode) {
		t.Fatalf("short SIZE error = %v", err)
	}
}

func TestDecodeCode0(t *testing.T) {
	w := binary.NewWriter()
	w.PutU32BE(0x1000) // above A5
	w.PutU32BE(0x2000) // below A5
	w.PutU32BE(16)     // jump table size
	w.PutU32BE(32)     // jump table offset
	// Valid entry: push 3 / _LoadSeg.
	w.PutU16BE(0x0010)
	w.PutU16BE(0x3F3C)
	w.PutU16BE(3)
	w.PutU16BE(0xA9F0)
	// Invalid entry.
	w.PutU16BE(0)
	w.PutU16BE(0x1234)
	w.PutU16BE(9)
	w.PutU16BE(0x5678)

	decoded, err := DecodeCode0(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if decoded.AboveA5Size != 0x1000 || decoded.BelowA5Size != 0x2000 {
		t.Fatalf("A5 sizes = %X/%X", decoded.AboveA5Size, decoded.BelowA5Size)
	}
	if len(decoded.JumpTable) != 2 {
		t.Fatalf("jump table size = %d", len(decoded.JumpTable))
	}
	if decoded.JumpTable[0].CodeResourceID != 3 || decoded.JumpTable[0].Offset != 0x10 {
		t.Fatalf("entry 0 = %+v", decoded.JumpTable[0])
	}
	if decoded.JumpTable[1].CodeResourceID != 0 {
		t.Fatalf("invalid entry should be zeroed: %+v", decoded.JumpTable[1])
	}
}

func TestDecodeCodeNearAndFar(t *testing.T) {
	near := append([]byte{0x00, 0x08, 0x00, 0x00}, 0x4E, 0x75)
	decoded, err := DecodeCode(near)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.EntryOffset != 8 || len(decoded.Code) != 2 {
		t.Fatalf("near decode = %+v", decoded)
	}

	far := binary.NewWriter()
	far.PutU16BE(0xFFFF)
	far.PutU16BE(0x0000)
	far.PutU32BE(0x40) // near entry start A5 offset
	far.PutU32BE(2)    // near entry count
	far.PutU32BE(0x80) // far entry start A5 offset
	far.PutU32BE(1)    // far entry count
	far.PutU32BE(0x100)
	far.PutU32BE(0x12345678) // a5
	far.PutU32BE(0x200)
	far.PutU32BE(0x300) // load address
	far.PutU32BE(0)     // reserved
	far.PutU16BE(0x4E75)
	decoded, err = DecodeCode(far.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if decoded.EntryOffset != -1 {
		t.Fatalf("far model entry offset = %d; want -1", decoded.EntryOffset)
	}
	if decoded.A5 != 0x12345678 || decoded.NearEntryCount != 2 || decoded.FarEntryCount != 1 {
		t.Fatalf("far decode = %+v", decoded)
	}
	if len(decoded.Code) != 2 {
		t.Fatalf("far code length = %d", len(decoded.Code))
	}
}

func TestDecodeDcmpFormats(t *testing.T) {
	// Branch-first format: starts with 0x60 (bra).
	text, err := DecodeDcmp([]byte{0x60, 0x02, 0x4E, 0x75, 0x4E, 0x71, 0x4E, 0x71, 0x4E, 0x71})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "start:") {
		t.Fatalf("missing start label:\n%s", text)
	}

	// Offset-table format: three function offsets then code.
	data := []byte{
		0x00, 0x08, // fn0
		0x00, 0x06, // start (entry)
		0x00, 0x08, // fn2
		0x4E, 0x75, // code at offset 6
		0x4E, 0x75, // code at offset 8
	}
	text, err = DecodeDcmp(data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "# header:") {
		t.Fatalf("missing header comment:\n%s", text)
	}
	if !strings.Contains(text, "start:") {
		t.Fatalf("missing start label:\n%s", text)
	}

	if _, err := DecodeDcmp([]byte{1, 2, 3}); !errors.Is(err, ErrMalformedCode) {
		t.Fatalf("short dcmp error = %v", err)
	}
}

func TestDecodeInline68KCode(t *testing.T) {
	text := DecodeInline68KCode([]byte{0x4E, 0x75})
	if !strings.Contains(text, "start:") || !strings.Contains(text, "rts") {
		t.Fatalf("inline disassembly:\n%s", text)
	}
	if !IsInline68KType(TypeWDEF) || IsInline68KType(TypeSND) {
		t.Fatal("inline type predicate wrong")
	}
}

func TestDecodeCodeFragments(t *testing.T) {
	name := "TestLib"
	w := binary.NewWriter()
	// Header: reserved fields, version 1 at offset 10, entry count at 30.
	w.PutU32BE(0)
	w.PutU32BE(0)
	w.PutU16BE(0)
	w.PutU16BE(1) // version
	w.PutU32BE(0)
	w.PutU32BE(0)
	w.PutU32BE(0)
	w.PutU32BE(0)
	w.PutU16BE(0)
	w.PutU16BE(1) // entry count

	entry := binary.NewWriter()
	entry.PutU32BE(0x70777063) // pwpc
	entry.PutU16BE(0)
	entry.PutU8(0)
	entry.PutU8(2) // update level
	entry.PutU32BE(0x01008000)
	entry.PutU32BE(0x01000000)
	entry.PutU32BE(0) // app stack size
	entry.PutU16BE(0) // subdir id
	entry.PutU8(1)    // usage: application
	entry.PutU8(2)    // where: resource
	entry.PutU32BE(0)
	entry.PutU32BE(0)
	entry.PutU32BE(0)
	entry.PutU16BE(0) // fork instance
	entry.PutU16BE(0) // extension count
	entrySize := cfrgEntryFixedSize + 1 + len(name)
	if entrySize&1 != 0 {
		entrySize++
	}
	entry.PutU16BE(uint16(entrySize))
	entry.PutPString([]byte(name))
	entry.ExtendTo(entrySize)
	w.Write(entry.Bytes())

	frags, err := DecodeCodeFragments(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(frags) != 1 {
		t.Fatalf("fragment count = %d", len(frags))
	}
	fr := frags[0]
	if fr.Architecture != 0x70777063 || fr.Usage != UsageApplication ||
		fr.Where != WhereResource || fr.Name != name {
		t.Fatalf("fragment = %+v", fr)
	}

	bad := w.Bytes()
	bad[10] = 0
	bad[11] = 2
	if _, err := DecodeCodeFragments(bad); !errors.Is(err, ErrMalformedCode) {
		t.Fatalf("bad version error = %v", err)
	}
}

func TestDisassembleCodeWithJumpTable(t *testing.T) {
	// CODE 0 with one valid jump table entry, and CODE 1 that calls
	// through the A5 world.
	code0 := binary.NewWriter()
	code0.PutU32BE(0x100)
	code0.PutU32BE(0x200)
	code0.PutU32BE(8)
	code0.PutU32BE(32)
	code0.PutU16BE(0x0000)
	code0.PutU16BE(0x3F3C)
	code0.PutU16BE(2)
	code0.PutU16BE(0xA9F0)

	code1 := binary.NewWriter()
	code1.PutU16BE(0x0000) // entry offset
	code1.PutU16BE(0x0000)
	code1.PutU16BE(0x4EAD) // jsr [A5 + 0x22]
	code1.PutU16BE(0x0022)
	code1.PutU16BE(0x4E75) // rts

	ress := []Resource{
		{Type: TypeCODE, ID: 0, Data: code0.Bytes()},
		{Type: TypeCODE, ID: 1, Data: code1.Bytes()},
	}
	f, err := NewBytes(buildFork(t, ress), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, _ := f.GetResource(TypeCODE, 1, 0)
	text, err := f.DisassembleCode(res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "export_0") || !strings.Contains(text, "CODE:2") {
		t.Fatalf("jump table annotation missing:\n%s", text)
	}
	if !strings.Contains(text, "entry:") {
		t.Fatalf("entry label missing:\n%s", text)
	}
}
