// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package ppc32

import (
	"errors"
	"testing"

	"github.com/saferwall/rsrcfork/memory"
)

func buildProgram(t *testing.T, words []uint32) *Emulator {
	t.Helper()
	mem := memory.NewContext()
	addr, err := mem.AllocateAt(0x1000, uint32(len(words)*4))
	if err != nil {
		t.Fatal(err)
	}
	for i, w := range words {
		if err := mem.WriteU32BE(addr+uint32(i*4), w); err != nil {
			t.Fatal(err)
		}
	}
	emu := NewEmulator(mem)
	emu.Regs.PC = addr
	emu.SetSyscallHandler(func(e *Emulator) error {
		if e.Regs.R[2] == 0xFFFFFFFF {
			return ErrTerminate
		}
		return errors.New("unimplemented syscall")
	})
	return emu
}

func TestCountdownLoop(t *testing.T) {
	emu := buildProgram(t, []uint32{
		0x38600005, // addi   r3, 0, 5
		0x3463FFFF, // addic. r3, r3, -1
		0x4082FFFC, // bne    cr0, -4
		0x3840FFFF, // addi   r2, 0, -1
		0x44000002, // sc
	})
	if err := emu.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if emu.Regs.R[3] != 0 {
		t.Fatalf("r3 = %d; want 0", emu.Regs.R[3])
	}
}

func TestLoadStoreAndLogic(t *testing.T) {
	emu := buildProgram(t, []uint32{
		0x3C80C000, // addis  r4, 0, 0xC000
		0x80A40000, // lwz    r5, 0(r4)
		0x54A5C00E, // rlwinm r5, r5, 24, 0, 7 (byte 0 to top)
		0x90A40004, // stw    r5, 4(r4)
		0x3840FFFF, // addi   r2, 0, -1
		0x44000002, // sc
	})
	data, err := emu.Memory().AllocateAt(0xC0000000, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := emu.Memory().WriteU32BE(data, 0x000000AB); err != nil {
		t.Fatal(err)
	}
	if err := emu.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	got, _ := emu.Memory().ReadU32BE(data + 4)
	if got != 0xAB000000 {
		t.Fatalf("stored value = %08X; want AB000000", got)
	}
}

func TestUnknownSyscallAborts(t *testing.T) {
	emu := buildProgram(t, []uint32{
		0x38400000, // addi   r2, 0, 0
		0x44000002, // sc
	})
	if err := emu.Execute(); err == nil {
		t.Fatal("expected error for unknown syscall")
	}
}

func TestBclrReturnsThroughLR(t *testing.T) {
	emu := buildProgram(t, []uint32{
		0x38601111, // addi  r3, 0, 0x1111
		0x4E800020, // blr
	})
	// Point LR at a trap sequence in a second region.
	trap, err := emu.Memory().AllocateAt(0x2000, 8)
	if err != nil {
		t.Fatal(err)
	}
	emu.Memory().WriteU32BE(trap, 0x3840FFFF)   // addi r2, 0, -1
	emu.Memory().WriteU32BE(trap+4, 0x44000002) // sc
	emu.Regs.LR = trap
	if err := emu.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if emu.Regs.R[3] != 0x1111 {
		t.Fatalf("r3 = %X; want 1111", emu.Regs.R[3])
	}
}
