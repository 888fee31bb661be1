// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderEndianness(t *testing.T) {
	r := NewReader([]byte{0x12, 0x34, 0x56, 0x78})

	v16, err := r.GetU16BE()
	if err != nil || v16 != 0x1234 {
		t.Fatalf("GetU16BE = %04X, %v; want 1234, nil", v16, err)
	}
	if err := r.Go(0); err != nil {
		t.Fatal(err)
	}
	v16, err = r.GetU16LE()
	if err != nil || v16 != 0x3412 {
		t.Fatalf("GetU16LE = %04X, %v; want 3412, nil", v16, err)
	}
	if err := r.Go(0); err != nil {
		t.Fatal(err)
	}
	v32, err := r.GetU32BE()
	if err != nil || v32 != 0x12345678 {
		t.Fatalf("GetU32BE = %08X, %v; want 12345678, nil", v32, err)
	}
	if err := r.Go(0); err != nil {
		t.Fatal(err)
	}
	v32, err = r.GetU32LE()
	if err != nil || v32 != 0x78563412 {
		t.Fatalf("GetU32LE = %08X, %v; want 78563412, nil", v32, err)
	}
}

func TestReaderOutOfRange(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})
	if _, err := r.GetU32BE(); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("GetU32BE error = %v; want ErrOutOfRange", err)
	}
	// A failed read must not advance the cursor.
	if r.Where() != 0 {
		t.Fatalf("cursor moved to %d after failed read", r.Where())
	}
	if _, err := r.PGetU16BE(2); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("PGetU16BE(2) error = %v; want ErrOutOfRange", err)
	}
}

func TestReaderStrings(t *testing.T) {
	r := NewReader([]byte{0x03, 'a', 'b', 'c', 'x', 0x00, 'y'})
	ps, err := r.GetPString()
	if err != nil || !bytes.Equal(ps, []byte("abc")) {
		t.Fatalf("GetPString = %q, %v", ps, err)
	}
	cs, err := r.GetCString()
	if err != nil || !bytes.Equal(cs, []byte("x")) {
		t.Fatalf("GetCString = %q, %v", cs, err)
	}
	if _, err := r.GetCString(); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("unterminated cstring error = %v; want ErrOutOfRange", err)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutU32BE(0xA89F6572)
	w.PutU16LE(0x1234)
	w.PutPString([]byte("hi"))
	w.ExtendTo(12)

	r := NewReader(w.Bytes())
	if v, _ := r.GetU32BE(); v != 0xA89F6572 {
		t.Fatalf("u32be = %08X", v)
	}
	if v, _ := r.GetU16LE(); v != 0x1234 {
		t.Fatalf("u16le = %04X", v)
	}
	if s, _ := r.GetPString(); !bytes.Equal(s, []byte("hi")) {
		t.Fatalf("pstring = %q", s)
	}
	if r.Remaining() != 3 {
		t.Fatalf("remaining = %d; want 3", r.Remaining())
	}
}
