// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package memory

import (
	"bytes"
	"errors"
	"testing"
)

func TestAllocateAtOverlap(t *testing.T) {
	c := NewContext()
	if _, err := c.AllocateAt(0x1000, 0x100); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		addr uint32
		size uint32
		ok   bool
	}{
		{0x1000, 0x100, false},
		{0x10FF, 0x10, false},
		{0x0F80, 0x81, false},
		{0x1100, 0x100, true},
		{0x0F00, 0x100, true},
	}
	for _, tt := range tests {
		_, err := c.AllocateAt(tt.addr, tt.size)
		if tt.ok && err != nil {
			t.Errorf("AllocateAt(%X, %X) failed: %v", tt.addr, tt.size, err)
		}
		if !tt.ok && !errors.Is(err, ErrOverlap) {
			t.Errorf("AllocateAt(%X, %X) = %v; want ErrOverlap", tt.addr, tt.size, err)
		}
	}
}

func TestReadWriteEndian(t *testing.T) {
	c := NewContext()
	addr, err := c.AllocateAt(0x20000000, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.WriteU32BE(addr, 0x11223344); err != nil {
		t.Fatal(err)
	}
	le, err := c.ReadU32LE(addr)
	if err != nil || le != 0x44332211 {
		t.Fatalf("ReadU32LE = %08X, %v", le, err)
	}
	// Misaligned accesses are legal as long as they stay in the region.
	if err := c.WriteU16BE(addr+1, 0xBEEF); err != nil {
		t.Fatalf("misaligned write failed: %v", err)
	}
	v, err := c.ReadU8(addr + 2)
	if err != nil || v != 0xEF {
		t.Fatalf("ReadU8 = %02X, %v", v, err)
	}
}

func TestAccessOutsideRegion(t *testing.T) {
	c := NewContext()
	addr, _ := c.AllocateAt(0x1000, 8)
	if _, err := c.ReadU32BE(addr + 6); !errors.Is(err, ErrBadAddress) {
		t.Fatalf("straddling read error = %v; want ErrBadAddress", err)
	}
	if _, err := c.ReadU8(0x2000); !errors.Is(err, ErrBadAddress) {
		t.Fatalf("unmapped read error = %v; want ErrBadAddress", err)
	}
}

func TestAllocateAvoidsOverlap(t *testing.T) {
	c := NewContext()
	a1, err := c.Allocate(0x100)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.AllocateAt(a1+0x100, 0x10); err != nil {
		t.Fatal(err)
	}
	a2, err := c.Allocate(0x100)
	if err != nil {
		t.Fatal(err)
	}
	blocks := c.AllocatedBlocks()
	for i := 1; i < len(blocks); i++ {
		prevEnd := blocks[i-1][0] + blocks[i-1][1]
		if blocks[i][0] < prevEnd {
			t.Fatalf("blocks overlap: %v", blocks)
		}
	}
	if a2 == a1 {
		t.Fatal("Allocate returned the same address twice")
	}
}

func TestStateRoundTrip(t *testing.T) {
	c := NewContext()
	addr, _ := c.AllocateAt(0xC0000000, 8)
	c.CopyIn(addr, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	var buf bytes.Buffer
	if err := c.ExportState(&buf); err != nil {
		t.Fatal(err)
	}
	c2 := NewContext()
	if err := c2.ImportState(&buf); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 8)
	if err := c2.CopyOut(got, addr); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Fatalf("snapshot data mismatch: %v", got)
	}
}
