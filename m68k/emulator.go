// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package m68k

import (
	"fmt"

	"github.com/saferwall/rsrcfork/memory"
)

// SyscallHandler is invoked for A-trap (0xAxxx) and F-line (0xFxxx)
// opcodes. Returning ErrTerminate stops emulation cleanly.
type SyscallHandler func(emu *Emulator, opcode uint16) error

// DebugHook is invoked at the top of every cycle, before the instruction
// fetch. Returning ErrTerminate stops emulation cleanly.
type DebugHook func(emu *Emulator) error

// Emulator executes 68K code against a shared memory context.
type Emulator struct {
	Regs Regs

	mem            *memory.Context
	syscallHandler SyscallHandler
	debugHook      DebugHook
	interrupts     *InterruptManager
	cycles         uint64
}

// NewEmulator creates an emulator bound to mem.
func NewEmulator(mem *memory.Context) *Emulator {
	return &Emulator{mem: mem}
}

// Memory returns the emulator's memory context.
func (e *Emulator) Memory() *memory.Context {
	return e.mem
}

// Cycles returns the number of instructions executed.
func (e *Emulator) Cycles() uint64 {
	return e.cycles
}

// SetSyscallHandler installs the A-trap/F-line handler.
func (e *Emulator) SetSyscallHandler(h SyscallHandler) {
	e.syscallHandler = h
}

// SetDebugHook installs the per-cycle debug hook.
func (e *Emulator) SetDebugHook(h DebugHook) {
	e.debugHook = h
}

// SetInterruptManager installs an interrupt manager.
func (e *Emulator) SetInterruptManager(im *InterruptManager) {
	e.interrupts = im
}

// Execute runs until a hook or handler returns ErrTerminate (a clean exit,
// returned as nil) or an emulated fault occurs.
func (e *Emulator) Execute() error {
	if e.interrupts == nil {
		e.interrupts = NewInterruptManager()
	}
	for {
		if e.debugHook != nil {
			if err := e.debugHook(e); err != nil {
				return cleanTerminate(err)
			}
		}
		if err := e.interrupts.OnCycleStart(); err != nil {
			return cleanTerminate(err)
		}
		opcode, err := e.fetchWord()
		if err != nil {
			return err
		}
		if err := e.execOne(opcode); err != nil {
			return cleanTerminate(err)
		}
		e.cycles++
	}
}

func cleanTerminate(err error) error {
	if err == ErrTerminate {
		return nil
	}
	return err
}

func (e *Emulator) execOne(opcode uint16) error {
	switch opcode >> 12 {
	case 0x0, 0x1, 0x2, 0x3:
		return e.exec0123(opcode)
	case 0x4:
		return e.exec4(opcode)
	case 0x5:
		return e.exec5(opcode)
	case 0x6:
		return e.exec6(opcode)
	case 0x7:
		return e.exec7(opcode)
	case 0x8:
		return e.exec8(opcode)
	case 0x9, 0xD:
		return e.exec9D(opcode)
	case 0xA, 0xF:
		if e.syscallHandler != nil {
			return e.syscallHandler(e, opcode)
		}
		return fmt.Errorf("trap %04X: %w", opcode, ErrUnknownOpcode)
	case 0xB:
		return e.execB(opcode)
	case 0xC:
		return e.execC(opcode)
	case 0xE:
		return e.execE(opcode)
	}
	return fmt.Errorf("opcode %04X: %w", opcode, ErrUnknownOpcode)
}

func (e *Emulator) fetchWord() (uint16, error) {
	if e.Regs.PC&1 != 0 {
		return 0, fmt.Errorf("fetch at %08X: %w", e.Regs.PC, ErrAddressError)
	}
	v, err := e.mem.ReadU16BE(e.Regs.PC)
	if err != nil {
		return 0, err
	}
	e.Regs.PC += 2
	return v, nil
}

func (e *Emulator) fetchData(size uint8) (uint32, error) {
	if size == SizeLong {
		v, err := e.mem.ReadU32BE(e.Regs.PC)
		if err != nil {
			return 0, err
		}
		e.Regs.PC += 4
		return v, nil
	}
	v, err := e.fetchWord()
	if err != nil {
		return 0, err
	}
	if size == SizeByte {
		return uint32(v & 0xFF), nil
	}
	return uint32(v), nil
}

// Location discriminates where a resolved operand lives.
type Location uint8

// Operand locations.
const (
	LocMemory Location = iota
	LocDReg
	LocAReg
	LocSR
	LocImm
)

// ResolvedAddress is the result of effective-address resolution.
type ResolvedAddress struct {
	Loc   Location
	Addr  uint32 // memory address, or register number
	Value uint32 // immediate value when Loc == LocImm
}

// IsRegister reports whether the operand lives in a register.
func (ra ResolvedAddress) IsRegister() bool {
	return ra.Loc != LocMemory
}

func (e *Emulator) readResolved(ra ResolvedAddress, size uint8) (uint32, error) {
	switch ra.Loc {
	case LocDReg:
		return truncate(e.Regs.D[ra.Addr], size), nil
	case LocAReg:
		return truncate(e.Regs.A[ra.Addr], size), nil
	case LocSR:
		return uint32(e.Regs.SR), nil
	case LocImm:
		return truncate(ra.Value, size), nil
	}
	switch size {
	case SizeByte:
		v, err := e.mem.ReadU8(ra.Addr)
		return uint32(v), err
	case SizeWord:
		v, err := e.mem.ReadU16BE(ra.Addr)
		return uint32(v), err
	default:
		return e.mem.ReadU32BE(ra.Addr)
	}
}

func (e *Emulator) writeResolved(ra ResolvedAddress, value uint32, size uint8) error {
	switch ra.Loc {
	case LocDReg:
		switch size {
		case SizeByte:
			e.Regs.D[ra.Addr] = (e.Regs.D[ra.Addr] &^ 0xFF) | (value & 0xFF)
		case SizeWord:
			e.Regs.D[ra.Addr] = (e.Regs.D[ra.Addr] &^ 0xFFFF) | (value & 0xFFFF)
		default:
			e.Regs.D[ra.Addr] = value
		}
		return nil
	case LocAReg:
		if size == SizeWord {
			e.Regs.A[ra.Addr] = uint32(int32(int16(value)))
		} else {
			e.Regs.A[ra.Addr] = value
		}
		return nil
	case LocSR:
		e.Regs.SR = uint16(value)
		return nil
	case LocImm:
		return fmt.Errorf("write to immediate operand: %w", ErrUnknownOpcode)
	}
	switch size {
	case SizeByte:
		return e.mem.WriteU8(ra.Addr, uint8(value))
	case SizeWord:
		return e.mem.WriteU16BE(ra.Addr, uint16(value))
	default:
		return e.mem.WriteU32BE(ra.Addr, value)
	}
}

// stepFor returns the post-increment/pre-decrement step for a register.
// Byte operations on A7 keep the stack pointer word-aligned.
func stepFor(xn uint8, size uint8) uint32 {
	if size == SizeByte && xn == 7 {
		return 2
	}
	return uint32(size)
}

// resolveExtension resolves a mode-6 (or PC-indexed) extension word
// against base. Only the brief form and the common full forms without
// memory indirection are supported for execution.
func (e *Emulator) resolveExtension(base uint32, ext uint16) (uint32, error) {
	indexReg := uint8((ext >> 12) & 7)
	var index int32
	if ext&0x8000 != 0 {
		index = int32(e.Regs.A[indexReg])
	} else {
		index = int32(e.Regs.D[indexReg])
	}
	if ext&0x0800 == 0 {
		index = int32(int16(index))
	}
	scale := int32(1) << ((ext >> 9) & 3)
	index *= scale

	if ext&0x0100 == 0 {
		// Brief extension word: 8-bit signed displacement.
		disp := int32(int8(ext & 0xFF))
		return uint32(int32(base) + index + disp), nil
	}

	// Full extension word.
	if ext&7 != 0 {
		return 0, fmt.Errorf("memory-indirect addressing: %w", ErrUnknownOpcode)
	}
	if ext&0x0080 != 0 {
		base = 0
	}
	if ext&0x0040 != 0 {
		index = 0
	}
	var disp int32
	switch (ext >> 4) & 3 {
	case 2:
		w, err := e.fetchWord()
		if err != nil {
			return 0, err
		}
		disp = int32(int16(w))
	case 3:
		l, err := e.fetchData(SizeLong)
		if err != nil {
			return 0, err
		}
		disp = int32(l)
	}
	return uint32(int32(base) + index + disp), nil
}

func (e *Emulator) resolveAddress(m, xn uint8, size uint8) (ResolvedAddress, error) {
	switch m {
	case 0:
		return ResolvedAddress{Loc: LocDReg, Addr: uint32(xn)}, nil
	case 1:
		return ResolvedAddress{Loc: LocAReg, Addr: uint32(xn)}, nil
	case 2:
		return ResolvedAddress{Loc: LocMemory, Addr: e.Regs.A[xn]}, nil
	case 3:
		addr := e.Regs.A[xn]
		e.Regs.A[xn] += stepFor(xn, size)
		return ResolvedAddress{Loc: LocMemory, Addr: addr}, nil
	case 4:
		e.Regs.A[xn] -= stepFor(xn, size)
		return ResolvedAddress{Loc: LocMemory, Addr: e.Regs.A[xn]}, nil
	case 5:
		disp, err := e.fetchWord()
		if err != nil {
			return ResolvedAddress{}, err
		}
		return ResolvedAddress{Loc: LocMemory,
			Addr: uint32(int32(e.Regs.A[xn]) + int32(int16(disp)))}, nil
	case 6:
		ext, err := e.fetchWord()
		if err != nil {
			return ResolvedAddress{}, err
		}
		addr, err := e.resolveExtension(e.Regs.A[xn], ext)
		return ResolvedAddress{Loc: LocMemory, Addr: addr}, err
	case 7:
		switch xn {
		case 0:
			w, err := e.fetchWord()
			if err != nil {
				return ResolvedAddress{}, err
			}
			return ResolvedAddress{Loc: LocMemory,
				Addr: uint32(int32(int16(w)))}, nil
		case 1:
			l, err := e.fetchData(SizeLong)
			if err != nil {
				return ResolvedAddress{}, err
			}
			return ResolvedAddress{Loc: LocMemory, Addr: l}, nil
		case 2:
			base := e.Regs.PC
			disp, err := e.fetchWord()
			if err != nil {
				return ResolvedAddress{}, err
			}
			return ResolvedAddress{Loc: LocMemory,
				Addr: uint32(int32(base) + int32(int16(disp)))}, nil
		case 3:
			base := e.Regs.PC
			ext, err := e.fetchWord()
			if err != nil {
				return ResolvedAddress{}, err
			}
			addr, err := e.resolveExtension(base, ext)
			return ResolvedAddress{Loc: LocMemory, Addr: addr}, err
		case 4:
			v, err := e.fetchData(size)
			if err != nil {
				return ResolvedAddress{}, err
			}
			return ResolvedAddress{Loc: LocImm, Value: v}, nil
		}
	}
	return ResolvedAddress{}, fmt.Errorf("addressing mode %d/%d: %w", m, xn, ErrUnknownOpcode)
}

// resolveControl resolves a control-addressing-mode operand (lea, jmp,
// jsr, pea, movem) to a memory address without dereferencing it.
func (e *Emulator) resolveControl(m, xn uint8) (uint32, error) {
	switch m {
	case 2:
		return e.Regs.A[xn], nil
	case 5:
		disp, err := e.fetchWord()
		if err != nil {
			return 0, err
		}
		return uint32(int32(e.Regs.A[xn]) + int32(int16(disp))), nil
	case 6:
		ext, err := e.fetchWord()
		if err != nil {
			return 0, err
		}
		return e.resolveExtension(e.Regs.A[xn], ext)
	case 7:
		switch xn {
		case 0:
			w, err := e.fetchWord()
			if err != nil {
				return 0, err
			}
			return uint32(int32(int16(w))), nil
		case 1:
			return e.fetchData(SizeLong)
		case 2:
			base := e.Regs.PC
			disp, err := e.fetchWord()
			if err != nil {
				return 0, err
			}
			return uint32(int32(base) + int32(int16(disp))), nil
		case 3:
			base := e.Regs.PC
			ext, err := e.fetchWord()
			if err != nil {
				return 0, err
			}
			return e.resolveExtension(base, ext)
		}
	}
	return 0, fmt.Errorf("control addressing mode %d/%d: %w", m, xn, ErrUnknownOpcode)
}

// checkCondition evaluates one of the sixteen 68K condition codes against
// the current flags.
func (e *Emulator) checkCondition(cond uint8) (bool, error) {
	sr := e.Regs.SR
	switch cond {
	case 0x0: // t
		return true, nil
	case 0x1: // f
		return false, nil
	case 0x2: // hi
		return sr&(FlagC|FlagZ) == 0, nil
	case 0x3: // ls
		return sr&(FlagC|FlagZ) != 0, nil
	case 0x4: // cc
		return sr&FlagC == 0, nil
	case 0x5: // cs
		return sr&FlagC != 0, nil
	case 0x6: // ne
		return sr&FlagZ == 0, nil
	case 0x7: // eq
		return sr&FlagZ != 0, nil
	case 0x8: // vc
		return sr&FlagV == 0, nil
	case 0x9: // vs
		return sr&FlagV != 0, nil
	case 0xA: // pl
		return sr&FlagN == 0, nil
	case 0xB: // mi
		return sr&FlagN != 0, nil
	case 0xC: // ge
		return (sr&(FlagN|FlagV) == 0) || (sr&(FlagN|FlagV) == FlagN|FlagV), nil
	case 0xD: // lt
		return (sr&(FlagN|FlagV) == FlagN) || (sr&(FlagN|FlagV) == FlagV), nil
	case 0xE: // gt
		if sr&FlagZ != 0 {
			return false, nil
		}
		return (sr&(FlagN|FlagV) == 0) || (sr&(FlagN|FlagV) == FlagN|FlagV), nil
	case 0xF: // le
		if sr&FlagZ != 0 {
			return true, nil
		}
		return (sr&(FlagN|FlagV) == FlagN) || (sr&(FlagN|FlagV) == FlagV), nil
	}
	return false, fmt.Errorf("condition %X: %w", cond, ErrUnknownOpcode)
}

func sizeFromField(s uint8) (uint8, error) {
	switch s {
	case 0:
		return SizeByte, nil
	case 1:
		return SizeWord, nil
	case 2:
		return SizeLong, nil
	}
	return 0, fmt.Errorf("size field %d: %w", s, ErrUnknownOpcode)
}

// exec0123 handles immediate-to-EA arithmetic, bit operations, and all
// move/movea forms.
func (e *Emulator) exec0123(opcode uint16) error {
	i := uint8((opcode >> 12) & 3)
	if i != 0 {
		// move/movea: i selects the destination size.
		var size uint8
		switch i {
		case 1:
			size = SizeByte
		case 3:
			size = SizeWord
		case 2:
			size = SizeLong
		}
		srcM := uint8((opcode >> 3) & 7)
		srcXn := uint8(opcode & 7)
		src, err := e.resolveAddress(srcM, srcXn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, size)
		if err != nil {
			return err
		}
		destM := uint8((opcode >> 6) & 7)
		destXn := uint8((opcode >> 9) & 7)
		dest, err := e.resolveAddress(destM, destXn, size)
		if err != nil {
			return err
		}
		if err := e.writeResolved(dest, value, size); err != nil {
			return err
		}
		if destM != 1 { // movea does not affect flags
			e.Regs.setFlagsNZ(value, size)
		}
		return nil
	}

	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)
	op := uint8((opcode >> 9) & 7)

	// Bit operations with a register-held bit number: btst/bchg/bclr/bset
	// have 1 in bit 8.
	if opcode&0x0100 != 0 {
		if m == 1 {
			return fmt.Errorf("movep: %w", ErrUnknownOpcode)
		}
		return e.execBitOp(uint8((opcode>>6)&3), m, xn, e.Regs.D[op])
	}

	switch op {
	case 0, 1, 2, 3, 5, 6: // ori, andi, subi, addi, eori, cmpi
		size, err := sizeFromField(uint8((opcode >> 6) & 3))
		if err != nil {
			return err
		}
		imm, err := e.fetchData(size)
		if err != nil {
			return err
		}
		dest, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(dest, size)
		if err != nil {
			return err
		}
		var result uint32
		switch op {
		case 0:
			result = truncate(value|imm, size)
			e.Regs.setFlagsNZ(result, size)
		case 1:
			result = truncate(value&imm, size)
			e.Regs.setFlagsNZ(result, size)
		case 2:
			result = e.Regs.setFlagsSub(value, imm, size)
		case 3:
			result = e.Regs.setFlagsAdd(value, imm, size)
		case 5:
			result = truncate(value^imm, size)
			e.Regs.setFlagsNZ(result, size)
		case 6:
			e.Regs.setFlagsCmp(value, imm, size)
			return nil
		}
		return e.writeResolved(dest, result, size)

	case 4: // btst/bchg/bclr/bset with immediate bit number
		imm, err := e.fetchWord()
		if err != nil {
			return err
		}
		return e.execBitOp(uint8((opcode>>6)&3), m, xn, uint32(imm))
	}
	return fmt.Errorf("opcode %04X: %w", opcode, ErrUnknownOpcode)
}

func (e *Emulator) execBitOp(kind, m, xn uint8, bitNum uint32) error {
	size := uint8(SizeLong)
	if m != 0 {
		size = SizeByte
	}
	if m == 0 {
		bitNum &= 31
	} else {
		bitNum &= 7
	}
	dest, err := e.resolveAddress(m, xn, size)
	if err != nil {
		return err
	}
	value, err := e.readResolved(dest, size)
	if err != nil {
		return err
	}
	mask := uint32(1) << bitNum
	z := 0
	if value&mask == 0 {
		z = 1
	}
	e.Regs.setFlags(-1, -1, z, -1, -1)

	switch kind {
	case 0: // btst
		return nil
	case 1: // bchg
		value ^= mask
	case 2: // bclr
		value &^= mask
	case 3: // bset
		value |= mask
	}
	return e.writeResolved(dest, value, size)
}

// exec4 handles the miscellaneous family: clr, neg, not, tst, lea, pea,
// jmp, jsr, rts, movem, ext, swap, link/unlk, and friends.
func (e *Emulator) exec4(opcode uint16) error {
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	switch {
	case opcode == 0x4E70: // reset
		if e.syscallHandler != nil {
			return e.syscallHandler(e, opcode)
		}
		return ErrTerminate

	case opcode == 0x4E71: // nop
		return nil

	case opcode == 0x4E75: // rts
		pc, err := e.Regs.PopU32(e.mem)
		if err != nil {
			return err
		}
		e.Regs.PC = pc
		return nil

	case opcode == 0x4E77: // rtr
		ccr, err := e.Regs.PopU16(e.mem)
		if err != nil {
			return err
		}
		e.Regs.SR = (e.Regs.SR & 0xFF00) | (ccr & 0x00FF)
		pc, err := e.Regs.PopU32(e.mem)
		if err != nil {
			return err
		}
		e.Regs.PC = pc
		return nil

	case opcode&0xFFF8 == 0x4E50: // link
		disp, err := e.fetchWord()
		if err != nil {
			return err
		}
		if err := e.Regs.PushU32(e.mem, e.Regs.A[xn]); err != nil {
			return err
		}
		e.Regs.A[xn] = e.Regs.A[7]
		e.Regs.A[7] = uint32(int32(e.Regs.A[7]) + int32(int16(disp)))
		return nil

	case opcode&0xFFF8 == 0x4E58: // unlk
		e.Regs.A[7] = e.Regs.A[xn]
		v, err := e.Regs.PopU32(e.mem)
		if err != nil {
			return err
		}
		e.Regs.A[xn] = v
		return nil

	case opcode&0xFFC0 == 0x4EC0: // jmp
		addr, err := e.resolveControl(m, xn)
		if err != nil {
			return err
		}
		e.Regs.PC = addr
		return nil

	case opcode&0xFFC0 == 0x4E80: // jsr
		addr, err := e.resolveControl(m, xn)
		if err != nil {
			return err
		}
		if err := e.Regs.PushU32(e.mem, e.Regs.PC); err != nil {
			return err
		}
		e.Regs.PC = addr
		return nil

	case opcode&0xFFC0 == 0x4840 && m == 0: // swap
		v := e.Regs.D[xn]
		e.Regs.D[xn] = (v >> 16) | (v << 16)
		e.Regs.setFlagsNZ(e.Regs.D[xn], SizeLong)
		return nil

	case opcode&0xFFC0 == 0x4840: // pea
		addr, err := e.resolveControl(m, xn)
		if err != nil {
			return err
		}
		return e.Regs.PushU32(e.mem, addr)

	case opcode&0xF1C0 == 0x41C0: // lea
		addr, err := e.resolveControl(m, xn)
		if err != nil {
			return err
		}
		e.Regs.A[(opcode>>9)&7] = addr
		return nil

	case opcode&0xFFB8 == 0x4880 && m == 0: // ext.w / ext.l
		if opcode&0x0040 != 0 {
			e.Regs.D[xn] = uint32(int32(int16(e.Regs.D[xn])))
			e.Regs.setFlagsNZ(e.Regs.D[xn], SizeLong)
		} else {
			v := uint32(int16(int8(e.Regs.D[xn])))
			e.Regs.D[xn] = (e.Regs.D[xn] &^ 0xFFFF) | (v & 0xFFFF)
			e.Regs.setFlagsNZ(e.Regs.D[xn], SizeWord)
		}
		return nil

	case opcode&0xFB80 == 0x4880: // movem
		return e.execMovem(opcode)

	case opcode&0xFFC0 == 0x40C0: // move from SR
		dest, err := e.resolveAddress(m, xn, SizeWord)
		if err != nil {
			return err
		}
		return e.writeResolved(dest, uint32(e.Regs.SR), SizeWord)

	case opcode&0xFFC0 == 0x44C0: // move to CCR
		src, err := e.resolveAddress(m, xn, SizeWord)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, SizeWord)
		if err != nil {
			return err
		}
		e.Regs.SR = (e.Regs.SR & 0xFF00) | uint16(value&0x00FF)
		return nil

	case opcode&0xFFC0 == 0x46C0: // move to SR
		src, err := e.resolveAddress(m, xn, SizeWord)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, SizeWord)
		if err != nil {
			return err
		}
		e.Regs.SR = uint16(value)
		return nil

	case opcode&0xFF00 == 0x4200: // clr
		size, err := sizeFromField(uint8((opcode >> 6) & 3))
		if err != nil {
			return err
		}
		dest, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		if err := e.writeResolved(dest, 0, size); err != nil {
			return err
		}
		e.Regs.setFlags(-1, 0, 1, 0, 0)
		return nil

	case opcode&0xFF00 == 0x4400: // neg
		size, err := sizeFromField(uint8((opcode >> 6) & 3))
		if err != nil {
			return err
		}
		dest, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(dest, size)
		if err != nil {
			return err
		}
		result := e.Regs.setFlagsSub(0, value, size)
		return e.writeResolved(dest, result, size)

	case opcode&0xFF00 == 0x4600: // not
		size, err := sizeFromField(uint8((opcode >> 6) & 3))
		if err != nil {
			return err
		}
		dest, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(dest, size)
		if err != nil {
			return err
		}
		result := truncate(^value, size)
		e.Regs.setFlagsNZ(result, size)
		return e.writeResolved(dest, result, size)

	case opcode&0xFF00 == 0x4A00: // tst / tas
		if opcode&0x00C0 == 0x00C0 { // tas
			dest, err := e.resolveAddress(m, xn, SizeByte)
			if err != nil {
				return err
			}
			value, err := e.readResolved(dest, SizeByte)
			if err != nil {
				return err
			}
			e.Regs.setFlagsNZ(value, SizeByte)
			return e.writeResolved(dest, value|0x80, SizeByte)
		}
		size, err := sizeFromField(uint8((opcode >> 6) & 3))
		if err != nil {
			return err
		}
		src, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, size)
		if err != nil {
			return err
		}
		e.Regs.setFlagsNZ(value, size)
		return nil

	case opcode&0xFF00 == 0x4000: // negx
		size, err := sizeFromField(uint8((opcode >> 6) & 3))
		if err != nil {
			return err
		}
		dest, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(dest, size)
		if err != nil {
			return err
		}
		var x uint32
		if e.Regs.SR&FlagX != 0 {
			x = 1
		}
		result := e.Regs.setFlagsSub(0, truncate(value+x, size), size)
		return e.writeResolved(dest, result, size)
	}
	return fmt.Errorf("opcode %04X: %w", opcode, ErrUnknownOpcode)
}

func (e *Emulator) execMovem(opcode uint16) error {
	toMemory := opcode&0x0400 == 0
	size := uint8(SizeWord)
	if opcode&0x0040 != 0 {
		size = SizeLong
	}
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)
	mask, err := e.fetchWord()
	if err != nil {
		return err
	}

	readReg := func(i int) uint32 {
		if i < 8 {
			return e.Regs.D[i]
		}
		return e.Regs.A[i-8]
	}
	writeReg := func(i int, v uint32) {
		if size == SizeWord {
			v = uint32(signExtend(v, SizeWord))
		}
		if i < 8 {
			e.Regs.D[i] = v
		} else {
			e.Regs.A[i-8] = v
		}
	}
	store := func(addr uint32, v uint32) error {
		if size == SizeWord {
			return e.mem.WriteU16BE(addr, uint16(v))
		}
		return e.mem.WriteU32BE(addr, v)
	}
	load := func(addr uint32) (uint32, error) {
		if size == SizeWord {
			v, err := e.mem.ReadU16BE(addr)
			return uint32(v), err
		}
		return e.mem.ReadU32BE(addr)
	}

	if toMemory && m == 4 {
		// Predecrement: the mask is reversed (bit 0 = A7).
		addr := e.Regs.A[xn]
		for i := 0; i < 16; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			addr -= uint32(size)
			if err := store(addr, readReg(15-i)); err != nil {
				return err
			}
		}
		e.Regs.A[xn] = addr
		return nil
	}

	var addr uint32
	postinc := m == 3
	if postinc {
		addr = e.Regs.A[xn]
	} else {
		if addr, err = e.resolveControl(m, xn); err != nil {
			return err
		}
	}
	for i := 0; i < 16; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		if toMemory {
			if err := store(addr, readReg(i)); err != nil {
				return err
			}
		} else {
			v, err := load(addr)
			if err != nil {
				return err
			}
			writeReg(i, v)
		}
		addr += uint32(size)
	}
	if postinc {
		e.Regs.A[xn] = addr
	}
	return nil
}

// exec5 handles addq/subq, scc, and dbcc.
func (e *Emulator) exec5(opcode uint16) error {
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opcode&0x00C0 == 0x00C0 {
		cond := uint8((opcode >> 8) & 0xF)
		if m == 1 { // dbcc
			disp, err := e.fetchWord()
			if err != nil {
				return err
			}
			taken, err := e.checkCondition(cond)
			if err != nil {
				return err
			}
			if taken {
				return nil
			}
			count := uint16(e.Regs.D[xn]) - 1
			e.Regs.D[xn] = (e.Regs.D[xn] &^ 0xFFFF) | uint32(count)
			if count != 0xFFFF {
				e.Regs.PC = uint32(int32(e.Regs.PC) + int32(int16(disp)) - 2)
			}
			return nil
		}
		// scc
		dest, err := e.resolveAddress(m, xn, SizeByte)
		if err != nil {
			return err
		}
		taken, err := e.checkCondition(cond)
		if err != nil {
			return err
		}
		var v uint32
		if taken {
			v = 0xFF
		}
		return e.writeResolved(dest, v, SizeByte)
	}

	size, err := sizeFromField(uint8((opcode >> 6) & 3))
	if err != nil {
		return err
	}
	value := uint32((opcode >> 9) & 7)
	if value == 0 {
		value = 8
	}
	dest, err := e.resolveAddress(m, xn, size)
	if err != nil {
		return err
	}
	cur, err := e.readResolved(dest, size)
	if err != nil {
		return err
	}
	var result uint32
	if dest.Loc == LocAReg {
		// Address register targets are always long and do not set flags.
		if opcode&0x0100 != 0 {
			result = e.Regs.A[dest.Addr] - value
		} else {
			result = e.Regs.A[dest.Addr] + value
		}
		e.Regs.A[dest.Addr] = result
		return nil
	}
	if opcode&0x0100 != 0 {
		result = e.Regs.setFlagsSub(cur, value, size)
	} else {
		result = e.Regs.setFlagsAdd(cur, value, size)
	}
	return e.writeResolved(dest, result, size)
}

// exec6 handles bra, bsr, and conditional branches.
func (e *Emulator) exec6(opcode uint16) error {
	cond := uint8((opcode >> 8) & 0xF)
	disp := int32(int8(opcode & 0xFF))
	base := e.Regs.PC
	switch disp {
	case 0:
		w, err := e.fetchWord()
		if err != nil {
			return err
		}
		disp = int32(int16(w))
	case -1:
		l, err := e.fetchData(SizeLong)
		if err != nil {
			return err
		}
		disp = int32(l)
	}
	target := uint32(int32(base) + disp)

	switch cond {
	case 0: // bra
		e.Regs.PC = target
		return nil
	case 1: // bsr
		if err := e.Regs.PushU32(e.mem, e.Regs.PC); err != nil {
			return err
		}
		e.Regs.PC = target
		return nil
	}
	taken, err := e.checkCondition(cond)
	if err != nil {
		return err
	}
	if taken {
		e.Regs.PC = target
	}
	return nil
}

// exec7 handles moveq.
func (e *Emulator) exec7(opcode uint16) error {
	if opcode&0x0100 != 0 {
		return fmt.Errorf("opcode %04X: %w", opcode, ErrUnknownOpcode)
	}
	value := uint32(int32(int8(opcode & 0xFF)))
	e.Regs.D[(opcode>>9)&7] = value
	e.Regs.setFlagsNZ(value, SizeLong)
	return nil
}

// exec8 handles or, divu, and divs.
func (e *Emulator) exec8(opcode uint16) error {
	reg := uint8((opcode >> 9) & 7)
	opmode := uint8((opcode >> 6) & 7)
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 { // divu / divs
		src, err := e.resolveAddress(m, xn, SizeWord)
		if err != nil {
			return err
		}
		divisor, err := e.readResolved(src, SizeWord)
		if err != nil {
			return err
		}
		if divisor == 0 {
			return ErrDivideByZero
		}
		dividend := e.Regs.D[reg]
		var quotient, remainder uint32
		overflow := false
		if opmode == 7 {
			q := int32(dividend) / int32(int16(divisor))
			r := int32(dividend) % int32(int16(divisor))
			if q > 0x7FFF || q < -0x8000 {
				overflow = true
			}
			quotient = uint32(q)
			remainder = uint32(r)
		} else {
			q := dividend / divisor
			r := dividend % divisor
			if q > 0xFFFF {
				overflow = true
			}
			quotient = q
			remainder = r
		}
		if overflow {
			e.Regs.setFlags(-1, -1, -1, 1, 0)
			return nil
		}
		e.Regs.D[reg] = (remainder << 16) | (quotient & 0xFFFF)
		e.Regs.setFlagsNZ(quotient, SizeWord)
		return nil
	}

	size, err := sizeFromField(opmode & 3)
	if err != nil {
		return err
	}
	if opmode < 4 { // or Dn, <ea> -> Dn
		src, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, size)
		if err != nil {
			return err
		}
		result := truncate(e.Regs.D[reg]|value, size)
		e.Regs.setFlagsNZ(result, size)
		return e.writeResolved(ResolvedAddress{Loc: LocDReg, Addr: uint32(reg)}, result, size)
	}
	// or <ea> | Dn -> <ea>
	dest, err := e.resolveAddress(m, xn, size)
	if err != nil {
		return err
	}
	value, err := e.readResolved(dest, size)
	if err != nil {
		return err
	}
	result := truncate(value|e.Regs.D[reg], size)
	e.Regs.setFlagsNZ(result, size)
	return e.writeResolved(dest, result, size)
}

// exec9D handles sub/suba (family 9) and add/adda (family D), including
// the extend forms.
func (e *Emulator) exec9D(opcode uint16) error {
	isAdd := opcode>>12 == 0xD
	reg := uint8((opcode >> 9) & 7)
	opmode := uint8((opcode >> 6) & 7)
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 { // suba/adda
		size := uint8(SizeWord)
		if opmode == 7 {
			size = SizeLong
		}
		src, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, size)
		if err != nil {
			return err
		}
		sv := uint32(signExtend(value, size))
		if isAdd {
			e.Regs.A[reg] += sv
		} else {
			e.Regs.A[reg] -= sv
		}
		return nil
	}

	size, err := sizeFromField(opmode & 3)
	if err != nil {
		return err
	}
	if opmode < 4 { // <ea> op Dn -> Dn
		src, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, size)
		if err != nil {
			return err
		}
		var result uint32
		if isAdd {
			result = e.Regs.setFlagsAdd(e.Regs.D[reg], value, size)
		} else {
			result = e.Regs.setFlagsSub(e.Regs.D[reg], value, size)
		}
		return e.writeResolved(ResolvedAddress{Loc: LocDReg, Addr: uint32(reg)}, result, size)
	}
	if m == 0 || m == 1 { // addx/subx
		var x uint32
		if e.Regs.SR&FlagX != 0 {
			x = 1
		}
		if m != 0 {
			return fmt.Errorf("memory addx/subx: %w", ErrUnknownOpcode)
		}
		z := e.Regs.SR & FlagZ
		var result uint32
		if isAdd {
			result = e.Regs.setFlagsAdd(e.Regs.D[xn], truncate(e.Regs.D[reg]+x, size), size)
		} else {
			result = e.Regs.setFlagsSub(e.Regs.D[xn], truncate(e.Regs.D[reg]+x, size), size)
		}
		// addx/subx clear Z on a nonzero result and leave it unchanged
		// on a zero result.
		if result == 0 {
			e.Regs.SR = (e.Regs.SR &^ FlagZ) | z
		}
		return e.writeResolved(ResolvedAddress{Loc: LocDReg, Addr: uint32(xn)}, result, size)
	}
	// Dn op <ea> -> <ea>
	dest, err := e.resolveAddress(m, xn, size)
	if err != nil {
		return err
	}
	value, err := e.readResolved(dest, size)
	if err != nil {
		return err
	}
	var result uint32
	if isAdd {
		result = e.Regs.setFlagsAdd(value, e.Regs.D[reg], size)
	} else {
		result = e.Regs.setFlagsSub(value, e.Regs.D[reg], size)
	}
	return e.writeResolved(dest, result, size)
}

// execB handles cmp, cmpa, cmpm, and eor.
func (e *Emulator) execB(opcode uint16) error {
	reg := uint8((opcode >> 9) & 7)
	opmode := uint8((opcode >> 6) & 7)
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 { // cmpa
		size := uint8(SizeWord)
		if opmode == 7 {
			size = SizeLong
		}
		src, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, size)
		if err != nil {
			return err
		}
		e.Regs.setFlagsCmp(e.Regs.A[reg], uint32(signExtend(value, size)), SizeLong)
		return nil
	}

	size, err := sizeFromField(opmode & 3)
	if err != nil {
		return err
	}
	if opmode < 4 { // cmp
		src, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, size)
		if err != nil {
			return err
		}
		e.Regs.setFlagsCmp(e.Regs.D[reg], value, size)
		return nil
	}
	if m == 1 { // cmpm
		srcAddr := e.Regs.A[xn]
		e.Regs.A[xn] += stepFor(xn, size)
		destAddr := e.Regs.A[reg]
		e.Regs.A[reg] += stepFor(reg, size)
		sv, err := e.readResolved(ResolvedAddress{Loc: LocMemory, Addr: srcAddr}, size)
		if err != nil {
			return err
		}
		dv, err := e.readResolved(ResolvedAddress{Loc: LocMemory, Addr: destAddr}, size)
		if err != nil {
			return err
		}
		e.Regs.setFlagsCmp(dv, sv, size)
		return nil
	}
	// eor Dn -> <ea>
	dest, err := e.resolveAddress(m, xn, size)
	if err != nil {
		return err
	}
	value, err := e.readResolved(dest, size)
	if err != nil {
		return err
	}
	result := truncate(value^e.Regs.D[reg], size)
	e.Regs.setFlagsNZ(result, size)
	return e.writeResolved(dest, result, size)
}

// execC handles and, mulu, muls, and exg.
func (e *Emulator) execC(opcode uint16) error {
	reg := uint8((opcode >> 9) & 7)
	opmode := uint8((opcode >> 6) & 7)
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 { // mulu / muls
		src, err := e.resolveAddress(m, xn, SizeWord)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, SizeWord)
		if err != nil {
			return err
		}
		var result uint32
		if opmode == 7 {
			result = uint32(int32(int16(e.Regs.D[reg])) * int32(int16(value)))
		} else {
			result = (e.Regs.D[reg] & 0xFFFF) * value
		}
		e.Regs.D[reg] = result
		e.Regs.setFlagsNZ(result, SizeLong)
		return nil
	}

	if opmode >= 4 && (m == 0 || m == 1) {
		// exg
		switch {
		case opmode == 5 && m == 0: // exg Dn, Dn
			e.Regs.D[reg], e.Regs.D[xn] = e.Regs.D[xn], e.Regs.D[reg]
			return nil
		case opmode == 5 && m == 1: // exg An, An
			e.Regs.A[reg], e.Regs.A[xn] = e.Regs.A[xn], e.Regs.A[reg]
			return nil
		case opmode == 6 && m == 1: // exg Dn, An
			e.Regs.D[reg], e.Regs.A[xn] = e.Regs.A[xn], e.Regs.D[reg]
			return nil
		case opmode == 4 && m == 0: // abcd
			return fmt.Errorf("abcd: %w", ErrUnknownOpcode)
		}
	}

	size, err := sizeFromField(opmode & 3)
	if err != nil {
		return err
	}
	if opmode < 4 { // and <ea>, Dn
		src, err := e.resolveAddress(m, xn, size)
		if err != nil {
			return err
		}
		value, err := e.readResolved(src, size)
		if err != nil {
			return err
		}
		result := truncate(e.Regs.D[reg]&value, size)
		e.Regs.setFlagsNZ(result, size)
		return e.writeResolved(ResolvedAddress{Loc: LocDReg, Addr: uint32(reg)}, result, size)
	}
	dest, err := e.resolveAddress(m, xn, size)
	if err != nil {
		return err
	}
	value, err := e.readResolved(dest, size)
	if err != nil {
		return err
	}
	result := truncate(value&e.Regs.D[reg], size)
	e.Regs.setFlagsNZ(result, size)
	return e.writeResolved(dest, result, size)
}

// execE handles the shift and rotate family.
func (e *Emulator) execE(opcode uint16) error {
	sizeField := uint8((opcode >> 6) & 3)
	if sizeField == 3 {
		// Memory shift: one-bit shift of a word in memory.
		kind := uint8((opcode >> 9) & 3)
		right := opcode&0x0100 == 0
		m := uint8((opcode >> 3) & 7)
		xn := uint8(opcode & 7)
		dest, err := e.resolveAddress(m, xn, SizeWord)
		if err != nil {
			return err
		}
		value, err := e.readResolved(dest, SizeWord)
		if err != nil {
			return err
		}
		result, err := e.shift(kind, !right, value, 1, SizeWord)
		if err != nil {
			return err
		}
		return e.writeResolved(dest, result, SizeWord)
	}

	size, err := sizeFromField(sizeField)
	if err != nil {
		return err
	}
	xn := uint8(opcode & 7)
	kind := uint8((opcode >> 3) & 3)
	left := opcode&0x0100 != 0
	var count uint32
	if opcode&0x0020 != 0 {
		count = e.Regs.D[(opcode>>9)&7] % 64
	} else {
		count = uint32((opcode >> 9) & 7)
		if count == 0 {
			count = 8
		}
	}
	result, err := e.shift(kind, left, truncate(e.Regs.D[xn], size), count, size)
	if err != nil {
		return err
	}
	return e.writeResolved(ResolvedAddress{Loc: LocDReg, Addr: uint32(xn)}, result, size)
}

// shift applies an asl/asr/lsl/lsr/roxl/roxr/rol/ror operation and sets
// the flags.
func (e *Emulator) shift(kind uint8, left bool, value, count uint32, size uint8) (uint32, error) {
	bits := uint32(size) * 8
	var result uint32
	c := -1
	v := 0
	switch kind {
	case 0: // asl / asr
		if left {
			result = value
			for i := uint32(0); i < count; i++ {
				msb := signBit(result, size)
				result = truncate(result<<1, size)
				if msb != signBit(result, size) {
					v = 1
				}
				if msb {
					c = 1
				} else {
					c = 0
				}
			}
		} else {
			sv := signExtend(value, size)
			for i := uint32(0); i < count; i++ {
				c = int(sv & 1)
				sv >>= 1
			}
			result = truncate(uint32(sv), size)
		}
	case 1: // lsl / lsr
		result = value
		for i := uint32(0); i < count; i++ {
			if left {
				if signBit(result, size) {
					c = 1
				} else {
					c = 0
				}
				result = truncate(result<<1, size)
			} else {
				c = int(result & 1)
				result = result >> 1
			}
		}
	case 2: // roxl / roxr
		result = value
		for i := uint32(0); i < count; i++ {
			var x uint32
			if e.Regs.SR&FlagX != 0 {
				x = 1
			}
			if left {
				msb := signBit(result, size)
				result = truncate(result<<1|x, size)
				if msb {
					c = 1
				} else {
					c = 0
				}
			} else {
				lsb := result & 1
				result = (result >> 1) | (x << (bits - 1))
				c = int(lsb)
			}
			if c >= 0 {
				e.Regs.setFlags(c, -1, -1, -1, -1)
			}
		}
	case 3: // rol / ror
		result = value
		for i := uint32(0); i < count; i++ {
			if left {
				msb := uint32(0)
				if signBit(result, size) {
					msb = 1
				}
				result = truncate(result<<1|msb, size)
				c = int(msb)
			} else {
				lsb := result & 1
				result = truncate((result>>1)|(lsb<<(bits-1)), size)
				c = int(lsb)
			}
		}
	default:
		return 0, fmt.Errorf("shift kind %d: %w", kind, ErrUnknownOpcode)
	}

	n := 0
	if signBit(result, size) {
		n = 1
	}
	z := 0
	if truncate(result, size) == 0 {
		z = 1
	}
	x := -1
	if kind != 3 && c >= 0 { // rol/ror do not touch X
		x = c
	}
	cc := c
	if cc < 0 {
		cc = 0
	}
	e.Regs.setFlags(x, n, z, v, cc)
	return result, nil
}
