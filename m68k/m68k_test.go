// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package m68k

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/saferwall/rsrcfork/memory"
)

// sumLoop computes 5+4+3+2+1 in D1 and stops with reset.
var sumLoop = []byte{
	0x70, 0x05, // moveq.l    D0, 0x05
	0x72, 0x00, // moveq.l    D1, 0x00
	0xD2, 0x40, // add.w      D1, D0
	0x53, 0x40, // subq.w     D0, 1
	0x66, 0xFA, // bne        label...
	0x4E, 0x70, // reset
}

func newTestEmulator(t *testing.T, code []byte) *Emulator {
	t.Helper()
	mem := memory.NewContext()
	codeAddr, err := mem.AllocateAt(0x1000, uint32(len(code)))
	if err != nil {
		t.Fatal(err)
	}
	if err := mem.CopyIn(codeAddr, code); err != nil {
		t.Fatal(err)
	}
	if _, err := mem.AllocateAt(0x2000, 0x400); err != nil {
		t.Fatal(err)
	}
	emu := NewEmulator(mem)
	emu.Regs.PC = codeAddr
	emu.Regs.SetSP(0x2400)
	return emu
}

func TestExecuteSumLoop(t *testing.T) {
	emu := newTestEmulator(t, sumLoop)
	if err := emu.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if emu.Regs.D[1] != 15 {
		t.Fatalf("D1 = %d; want 15", emu.Regs.D[1])
	}
	if emu.Regs.D[0]&0xFFFF != 0 {
		t.Fatalf("D0 = %d; want 0", emu.Regs.D[0]&0xFFFF)
	}
}

func TestExecuteDivideByZero(t *testing.T) {
	emu := newTestEmulator(t, []byte{0x80, 0xC1}) // divu.w D0, D1
	emu.Regs.D[0] = 100
	emu.Regs.D[1] = 0
	if err := emu.Execute(); !errors.Is(err, ErrDivideByZero) {
		t.Fatalf("Execute error = %v; want ErrDivideByZero", err)
	}
}

func TestExecuteSubroutineAndStack(t *testing.T) {
	// bsr to a subroutine that sets D3 and returns, then reset.
	code := []byte{
		0x61, 0x04, // bsr        fn00001006
		0x4E, 0x70, // reset
		0x4E, 0x71, // nop (padding)
		0x76, 0x2A, // moveq.l    D3, 0x2A
		0x4E, 0x75, // rts
	}
	emu := newTestEmulator(t, code)
	if err := emu.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if emu.Regs.D[3] != 0x2A {
		t.Fatalf("D3 = %X; want 2A", emu.Regs.D[3])
	}
	if emu.Regs.SP() != 0x2400 {
		t.Fatalf("SP = %X; want 2400 (balanced)", emu.Regs.SP())
	}
}

func TestSyscallHandlerTrap(t *testing.T) {
	var got uint16
	emu := newTestEmulator(t, []byte{0xA9, 0xF0})
	emu.SetSyscallHandler(func(e *Emulator, opcode uint16) error {
		got = opcode
		return ErrTerminate
	})
	if err := emu.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != 0xA9F0 {
		t.Fatalf("syscall opcode = %04X; want A9F0", got)
	}
}

func TestInterruptManagerFires(t *testing.T) {
	// An infinite loop; the interrupt callback terminates it.
	code := []byte{0x60, 0xFE} // bra to itself
	emu := newTestEmulator(t, code)
	im := NewInterruptManager()
	fired := false
	im.Add(10, func() error {
		fired = true
		return ErrTerminate
	})
	emu.SetInterruptManager(im)
	if err := emu.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !fired {
		t.Fatal("interrupt callback did not fire")
	}
	if im.Cycles() < 10 {
		t.Fatalf("cycles = %d; want >= 10", im.Cycles())
	}
}

func TestDisassembleBasics(t *testing.T) {
	text := Disassemble(sumLoop, 0, nil, true, nil)
	for _, want := range []string{"moveq.l", "add.w", "subq.w", "bne", "reset", "label00000004:"} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly missing %q:\n%s", want, text)
		}
	}
}

func TestDisassembleTrapName(t *testing.T) {
	text := Disassemble([]byte{0xA9, 0xF0}, 0, nil, true, nil)
	if !strings.Contains(text, "_LoadSeg") {
		t.Fatalf("disassembly should name _LoadSeg:\n%s", text)
	}
	text = Disassemble([]byte{0xA0, 0x46}, 0, nil, true, nil)
	if !strings.Contains(text, "_GetTrapAddress") {
		t.Fatalf("disassembly should name _GetTrapAddress:\n%s", text)
	}
}

func TestBranchTargetStability(t *testing.T) {
	// Re-decoding at every discovered branch target must not surface new
	// targets that the linear pass missed.
	first := BranchTargets(sumLoop, 0)
	if len(first) == 0 {
		t.Fatal("no branch targets found")
	}
	for target := range first {
		if target&1 != 0 || target >= uint32(len(sumLoop)) {
			continue
		}
		again := BranchTargets(sumLoop[target:], target)
		for addr, isCall := range again {
			if addr >= uint32(len(sumLoop)) {
				continue
			}
			if _, ok := first[addr]; !ok && !isCall {
				t.Errorf("second pass at %08X found new target %08X", target, addr)
			}
		}
	}
}

func TestDisassembleLabels(t *testing.T) {
	labels := map[uint32][]string{0: {"start"}}
	text := Disassemble(sumLoop, 0, labels, true, nil)
	if !strings.HasPrefix(text, "start:\n") {
		t.Fatalf("expected leading start label:\n%s", text)
	}
}

func TestJumpTableComment(t *testing.T) {
	// jsr [A5 + 0x22] refers to jump table export 0.
	code := []byte{0x4E, 0xAD, 0x00, 0x22}
	jt := []JumpTableEntry{{CodeResourceID: 2, Offset: 0x10}}
	text := Disassemble(code, 0, nil, true, jt)
	if !strings.Contains(text, "export_0") || !strings.Contains(text, "CODE:2") {
		t.Fatalf("jump table comment missing:\n%s", text)
	}
}

func TestMacsbugSymbolAfterReturn(t *testing.T) {
	code := []byte{
		0x4E, 0x75, // rts
		'D', 'O', 'T', 'H', 'I', 'N', 'G', 'S', // fixed 8-char symbol
	}
	text := Disassemble(code, 0, nil, true, nil)
	if !strings.Contains(text, `"DOTHINGS"`) {
		t.Fatalf("MacsBug symbol not decoded:\n%s", text)
	}
}

func TestSetFlagsSubSemantics(t *testing.T) {
	var r Regs
	r.setFlagsSub(1, 2, SizeByte)
	if r.SR&FlagC == 0 || r.SR&FlagN == 0 {
		t.Fatalf("1-2 should set C and N; SR=%04X", r.SR)
	}
	r.setFlagsSub(2, 2, SizeByte)
	if r.SR&FlagZ == 0 || r.SR&FlagC != 0 {
		t.Fatalf("2-2 should set Z and clear C; SR=%04X", r.SR)
	}
	r.setFlagsSub(0x80, 1, SizeByte)
	if r.SR&FlagV == 0 {
		t.Fatalf("0x80-1 should overflow; SR=%04X", r.SR)
	}
}

func TestRegsSetByName(t *testing.T) {
	var r Regs
	tests := []struct {
		name  string
		value uint32
		check func() uint32
	}{
		{"D3", 0x1234, func() uint32 { return r.D[3] }},
		{"a7", 0x2000, func() uint32 { return r.A[7] }},
		{"PC", 0x4000, func() uint32 { return r.PC }},
	}
	for _, tt := range tests {
		if err := r.SetByName(tt.name, tt.value); err != nil {
			t.Fatalf("SetByName(%q) failed: %v", tt.name, err)
		}
		if got := tt.check(); got != tt.value {
			t.Errorf("SetByName(%q) = %X; want %X", tt.name, got, tt.value)
		}
	}
	if err := r.SetByName("Q9", 1); err == nil {
		t.Error("SetByName(Q9) should fail")
	}
}

func TestMovemRoundTrip(t *testing.T) {
	// movem.l D0-D1/A0, -[A7]; clear; movem.l [A7]+, D0-D1/A0
	code := []byte{
		0x48, 0xE7, 0xC0, 0x80, // movem.l -[A7], D0,D1,A0 (reversed mask)
		0x70, 0x00, // moveq.l D0, 0
		0x72, 0x00, // moveq.l D1, 0
		0x4C, 0xDF, 0x01, 0x03, // movem.l [A7]+, D0,D1,A0
		0x4E, 0x70, // reset
	}
	emu := newTestEmulator(t, code)
	emu.Regs.D[0] = 0x11111111
	emu.Regs.D[1] = 0x22222222
	emu.Regs.A[0] = 0x33333333
	if err := emu.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	want := []uint32{0x11111111, 0x22222222, 0x33333333}
	got := []uint32{emu.Regs.D[0], emu.Regs.D[1], emu.Regs.A[0]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("movem round trip = %08X; want %08X", got, want)
	}
	if emu.Regs.SP() != 0x2400 {
		t.Fatalf("SP = %X; want 2400", emu.Regs.SP())
	}
}
