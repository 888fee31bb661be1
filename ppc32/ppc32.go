// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package ppc32 implements the PowerPC executor used to run ncmp
// decompressor fragments. It covers the integer instruction set those
// fragments use: arithmetic, logical and rotate ops, compares, loads and
// stores (with update forms), conditional branches, LR/CTR moves, and the
// system-call hook that signals termination.
package ppc32

import (
	"errors"
	"fmt"

	"github.com/saferwall/rsrcfork/memory"
)

// Errors surfaced by emulation.
var (
	// ErrTerminate is the clean-termination sentinel, identical in
	// meaning to the 68K emulator's.
	ErrTerminate = errors.New("terminate emulation")

	// ErrUnknownOpcode is returned when execution reaches an instruction
	// outside the supported subset.
	ErrUnknownOpcode = errors.New("unimplemented opcode")
)

// Regs is the PowerPC register file subset used by decompressors.
type Regs struct {
	R   [32]uint32
	LR  uint32
	CTR uint32
	CR  uint32
	XER uint32
	PC  uint32
}

// SyscallHandler is invoked when emulation executes sc. Returning
// ErrTerminate stops emulation cleanly.
type SyscallHandler func(emu *Emulator) error

// DebugHook runs at the top of every cycle.
type DebugHook func(emu *Emulator) error

// Emulator executes PowerPC code against a shared memory context.
type Emulator struct {
	Regs Regs

	mem            *memory.Context
	syscallHandler SyscallHandler
	debugHook      DebugHook
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

// SetSyscallHandler installs the sc handler.
func (e *Emulator) SetSyscallHandler(h SyscallHandler) {
	e.syscallHandler = h
}

// SetDebugHook installs the per-cycle hook.
func (e *Emulator) SetDebugHook(h DebugHook) {
	e.debugHook = h
}

// Execute runs until a hook returns ErrTerminate or a fault occurs.
func (e *Emulator) Execute() error {
	for {
		if e.debugHook != nil {
			if err := e.debugHook(e); err != nil {
				if err == ErrTerminate {
					return nil
				}
				return err
			}
		}
		op, err := e.mem.ReadU32BE(e.Regs.PC)
		if err != nil {
			return err
		}
		nextPC := e.Regs.PC + 4
		if err := e.execOne(op, &nextPC); err != nil {
			if err == ErrTerminate {
				return nil
			}
			return err
		}
		e.Regs.PC = nextPC
		e.cycles++
	}
}

func simm(op uint32) int32 {
	return int32(int16(op & 0xFFFF))
}

func uimm(op uint32) uint32 {
	return op & 0xFFFF
}

func rD(op uint32) uint32 { return (op >> 21) & 31 }
func rA(op uint32) uint32 { return (op >> 16) & 31 }
func rB(op uint32) uint32 { return (op >> 11) & 31 }

// setCR sets one 4-bit CR field from a signed or unsigned comparison.
func (e *Emulator) setCR(field uint32, lt, gt, eq bool) {
	var bits uint32
	if lt {
		bits |= 8
	}
	if gt {
		bits |= 4
	}
	if eq {
		bits |= 2
	}
	if e.Regs.XER&0x80000000 != 0 {
		bits |= 1 // summary overflow copies into SO
	}
	shift := (7 - field) * 4
	e.Regs.CR = (e.Regs.CR &^ (0xF << shift)) | (bits << shift)
}

func (e *Emulator) setCR0(value uint32) {
	s := int32(value)
	e.setCR(0, s < 0, s > 0, s == 0)
}

func (e *Emulator) crBit(bit uint32) bool {
	return (e.Regs.CR>>(31-bit))&1 != 0
}

// condOK evaluates the BO/BI condition fields, updating CTR when BO asks.
func (e *Emulator) condOK(bo, bi uint32) bool {
	ctrOK := true
	if bo&4 == 0 {
		e.Regs.CTR--
		if bo&2 != 0 {
			ctrOK = e.Regs.CTR == 0
		} else {
			ctrOK = e.Regs.CTR != 0
		}
	}
	condOK := true
	if bo&16 == 0 {
		condOK = e.crBit(bi) == (bo&8 != 0)
	}
	return ctrOK && condOK
}

func rotl32(v uint32, n uint32) uint32 {
	n &= 31
	if n == 0 {
		return v
	}
	return (v << n) | (v >> (32 - n))
}

func maskFromMBME(mb, me uint32) uint32 {
	if mb <= me {
		return (0xFFFFFFFF >> mb) &^ (0x7FFFFFFF >> me)
	}
	return (0xFFFFFFFF >> mb) | ^(0x7FFFFFFF >> me)
}

func (e *Emulator) execOne(op uint32, nextPC *uint32) error {
	r := &e.Regs
	primary := op >> 26
	switch primary {
	case 7: // mulli
		r.R[rD(op)] = uint32(int32(r.R[rA(op)]) * simm(op))
	case 8: // subfic
		r.R[rD(op)] = uint32(simm(op) - int32(r.R[rA(op)]))
	case 10: // cmpli
		field := (op >> 23) & 7
		a := r.R[rA(op)]
		b := uimm(op)
		e.setCR(field, a < b, a > b, a == b)
	case 11: // cmpi
		field := (op >> 23) & 7
		a := int32(r.R[rA(op)])
		b := simm(op)
		e.setCR(field, a < b, a > b, a == b)
	case 12: // addic
		r.R[rD(op)] = uint32(int32(r.R[rA(op)]) + simm(op))
	case 13: // addic.
		r.R[rD(op)] = uint32(int32(r.R[rA(op)]) + simm(op))
		e.setCR0(r.R[rD(op)])
	case 14: // addi
		if rA(op) == 0 {
			r.R[rD(op)] = uint32(simm(op))
		} else {
			r.R[rD(op)] = uint32(int32(r.R[rA(op)]) + simm(op))
		}
	case 15: // addis
		if rA(op) == 0 {
			r.R[rD(op)] = uint32(simm(op)) << 16
		} else {
			r.R[rD(op)] = r.R[rA(op)] + uint32(simm(op))<<16
		}
	case 16: // bc
		disp := int32(int16(op & 0xFFFC))
		taken := e.condOK((op>>21)&31, (op>>16)&31)
		if op&1 != 0 {
			r.LR = e.Regs.PC + 4
		}
		if taken {
			if op&2 != 0 {
				*nextPC = uint32(disp)
			} else {
				*nextPC = uint32(int32(e.Regs.PC) + disp)
			}
		}
	case 17: // sc
		if e.syscallHandler != nil {
			return e.syscallHandler(e)
		}
		return fmt.Errorf("sc: %w", ErrUnknownOpcode)
	case 18: // b
		disp := int32(op&0x03FFFFFC) << 6 >> 6
		if op&1 != 0 {
			r.LR = e.Regs.PC + 4
		}
		if op&2 != 0 {
			*nextPC = uint32(disp)
		} else {
			*nextPC = uint32(int32(e.Regs.PC) + disp)
		}
	case 19:
		switch (op >> 1) & 0x3FF {
		case 16: // bclr
			taken := e.condOK((op>>21)&31, (op>>16)&31)
			target := r.LR &^ 3
			if op&1 != 0 {
				r.LR = e.Regs.PC + 4
			}
			if taken {
				*nextPC = target
			}
		case 528: // bcctr
			taken := e.condOK((op>>21)&31, (op>>16)&31)
			if op&1 != 0 {
				r.LR = e.Regs.PC + 4
			}
			if taken {
				*nextPC = r.CTR &^ 3
			}
		case 150: // isync
		case 0: // mcrf
			src := (op >> 18) & 7
			dst := (op >> 23) & 7
			bits := (r.CR >> ((7 - src) * 4)) & 0xF
			shift := (7 - dst) * 4
			r.CR = (r.CR &^ (0xF << shift)) | (bits << shift)
		default:
			return fmt.Errorf("opcode 19/%d: %w", (op>>1)&0x3FF, ErrUnknownOpcode)
		}
	case 20: // rlwimi
		sh := rB(op)
		mask := maskFromMBME((op>>6)&31, (op>>1)&31)
		res := (rotl32(r.R[rD(op)], sh) & mask) | (r.R[rA(op)] &^ mask)
		r.R[rA(op)] = res
		if op&1 != 0 {
			e.setCR0(res)
		}
	case 21: // rlwinm
		sh := rB(op)
		mask := maskFromMBME((op>>6)&31, (op>>1)&31)
		res := rotl32(r.R[rD(op)], sh) & mask
		r.R[rA(op)] = res
		if op&1 != 0 {
			e.setCR0(res)
		}
	case 23: // rlwnm
		sh := r.R[rB(op)] & 31
		mask := maskFromMBME((op>>6)&31, (op>>1)&31)
		res := rotl32(r.R[rD(op)], sh) & mask
		r.R[rA(op)] = res
		if op&1 != 0 {
			e.setCR0(res)
		}
	case 24: // ori
		r.R[rA(op)] = r.R[rD(op)] | uimm(op)
	case 25: // oris
		r.R[rA(op)] = r.R[rD(op)] | uimm(op)<<16
	case 26: // xori
		r.R[rA(op)] = r.R[rD(op)] ^ uimm(op)
	case 27: // xoris
		r.R[rA(op)] = r.R[rD(op)] ^ uimm(op)<<16
	case 28: // andi.
		r.R[rA(op)] = r.R[rD(op)] & uimm(op)
		e.setCR0(r.R[rA(op)])
	case 29: // andis.
		r.R[rA(op)] = r.R[rD(op)] & (uimm(op) << 16)
		e.setCR0(r.R[rA(op)])
	case 31:
		if err := e.execExtended(op); err != nil {
			return err
		}
	case 32, 33, 34, 35, 40, 41, 42, 43: // lwz(u), lbz(u), lhz(u), lha(u)
		ea := effectiveAddr(r, op)
		var v uint32
		switch primary {
		case 32, 33:
			w, err := e.mem.ReadU32BE(ea)
			if err != nil {
				return err
			}
			v = w
		case 34, 35:
			b, err := e.mem.ReadU8(ea)
			if err != nil {
				return err
			}
			v = uint32(b)
		case 40, 41:
			h, err := e.mem.ReadU16BE(ea)
			if err != nil {
				return err
			}
			v = uint32(h)
		case 42, 43:
			h, err := e.mem.ReadU16BE(ea)
			if err != nil {
				return err
			}
			v = uint32(int32(int16(h)))
		}
		r.R[rD(op)] = v
		if primary&1 != 0 {
			r.R[rA(op)] = ea
		}
	case 36, 37, 38, 39, 44, 45: // stw(u), stb(u), sth(u)
		ea := effectiveAddr(r, op)
		var err error
		switch primary {
		case 36, 37:
			err = e.mem.WriteU32BE(ea, r.R[rD(op)])
		case 38, 39:
			err = e.mem.WriteU8(ea, uint8(r.R[rD(op)]))
		case 44, 45:
			err = e.mem.WriteU16BE(ea, uint16(r.R[rD(op)]))
		}
		if err != nil {
			return err
		}
		if primary&1 != 0 {
			r.R[rA(op)] = ea
		}
	case 46: // lmw
		ea := effectiveAddr(r, op)
		for i := rD(op); i < 32; i++ {
			v, err := e.mem.ReadU32BE(ea)
			if err != nil {
				return err
			}
			r.R[i] = v
			ea += 4
		}
	case 47: // stmw
		ea := effectiveAddr(r, op)
		for i := rD(op); i < 32; i++ {
			if err := e.mem.WriteU32BE(ea, r.R[i]); err != nil {
				return err
			}
			ea += 4
		}
	default:
		return fmt.Errorf("opcode %d: %w", primary, ErrUnknownOpcode)
	}
	return nil
}

func effectiveAddr(r *Regs, op uint32) uint32 {
	if rA(op) == 0 {
		return uint32(simm(op))
	}
	return uint32(int32(r.R[rA(op)]) + simm(op))
}

func (e *Emulator) execExtended(op uint32) error {
	r := &e.Regs
	xo := (op >> 1) & 0x3FF
	rc := op&1 != 0
	record := func(v uint32) {
		if rc {
			e.setCR0(v)
		}
	}
	idx := func() uint32 {
		if rA(op) == 0 {
			return r.R[rB(op)]
		}
		return r.R[rA(op)] + r.R[rB(op)]
	}
	switch xo {
	case 0: // cmp
		field := (op >> 23) & 7
		a := int32(r.R[rA(op)])
		b := int32(r.R[rB(op)])
		e.setCR(field, a < b, a > b, a == b)
	case 32: // cmpl
		field := (op >> 23) & 7
		a := r.R[rA(op)]
		b := r.R[rB(op)]
		e.setCR(field, a < b, a > b, a == b)
	case 19: // mfcr
		r.R[rD(op)] = r.CR
	case 144: // mtcrf
		mask := uint32(0)
		crm := (op >> 12) & 0xFF
		for i := uint32(0); i < 8; i++ {
			if crm&(0x80>>i) != 0 {
				mask |= 0xF << ((7 - i) * 4)
			}
		}
		r.CR = (r.CR &^ mask) | (r.R[rD(op)] & mask)
	case 339: // mfspr
		switch (op >> 11) & 0x3FF {
		case 0x100: // LR
			r.R[rD(op)] = r.LR
		case 0x120: // CTR
			r.R[rD(op)] = r.CTR
		case 0x020: // XER
			r.R[rD(op)] = r.XER
		default:
			return fmt.Errorf("mfspr %d: %w", (op>>11)&0x3FF, ErrUnknownOpcode)
		}
	case 467: // mtspr
		switch (op >> 11) & 0x3FF {
		case 0x100:
			r.LR = r.R[rD(op)]
		case 0x120:
			r.CTR = r.R[rD(op)]
		case 0x020:
			r.XER = r.R[rD(op)]
		default:
			return fmt.Errorf("mtspr %d: %w", (op>>11)&0x3FF, ErrUnknownOpcode)
		}
	case 266: // add
		r.R[rD(op)] = r.R[rA(op)] + r.R[rB(op)]
		record(r.R[rD(op)])
	case 10: // addc
		a, b := r.R[rA(op)], r.R[rB(op)]
		r.R[rD(op)] = a + b
		if uint64(a)+uint64(b) > 0xFFFFFFFF {
			r.XER |= 0x20000000
		} else {
			r.XER &^= 0x20000000
		}
		record(r.R[rD(op)])
	case 138: // adde
		a, b := r.R[rA(op)], r.R[rB(op)]
		var ca uint32
		if r.XER&0x20000000 != 0 {
			ca = 1
		}
		sum := uint64(a) + uint64(b) + uint64(ca)
		r.R[rD(op)] = uint32(sum)
		if sum > 0xFFFFFFFF {
			r.XER |= 0x20000000
		} else {
			r.XER &^= 0x20000000
		}
		record(r.R[rD(op)])
	case 202: // addze
		a := r.R[rA(op)]
		var ca uint32
		if r.XER&0x20000000 != 0 {
			ca = 1
		}
		sum := uint64(a) + uint64(ca)
		r.R[rD(op)] = uint32(sum)
		if sum > 0xFFFFFFFF {
			r.XER |= 0x20000000
		} else {
			r.XER &^= 0x20000000
		}
		record(r.R[rD(op)])
	case 40: // subf
		r.R[rD(op)] = r.R[rB(op)] - r.R[rA(op)]
		record(r.R[rD(op)])
	case 8: // subfc
		a, b := r.R[rA(op)], r.R[rB(op)]
		r.R[rD(op)] = b - a
		if a <= b {
			r.XER |= 0x20000000
		} else {
			r.XER &^= 0x20000000
		}
		record(r.R[rD(op)])
	case 104: // neg
		r.R[rD(op)] = uint32(-int32(r.R[rA(op)]))
		record(r.R[rD(op)])
	case 235: // mullw
		r.R[rD(op)] = uint32(int32(r.R[rA(op)]) * int32(r.R[rB(op)]))
		record(r.R[rD(op)])
	case 75: // mulhw
		prod := int64(int32(r.R[rA(op)])) * int64(int32(r.R[rB(op)]))
		r.R[rD(op)] = uint32(prod >> 32)
		record(r.R[rD(op)])
	case 11: // mulhwu
		prod := uint64(r.R[rA(op)]) * uint64(r.R[rB(op)])
		r.R[rD(op)] = uint32(prod >> 32)
		record(r.R[rD(op)])
	case 459: // divwu
		if r.R[rB(op)] == 0 {
			r.R[rD(op)] = 0
		} else {
			r.R[rD(op)] = r.R[rA(op)] / r.R[rB(op)]
		}
		record(r.R[rD(op)])
	case 491: // divw
		if r.R[rB(op)] == 0 {
			r.R[rD(op)] = 0
		} else {
			r.R[rD(op)] = uint32(int32(r.R[rA(op)]) / int32(r.R[rB(op)]))
		}
		record(r.R[rD(op)])
	case 28: // and
		r.R[rA(op)] = r.R[rD(op)] & r.R[rB(op)]
		record(r.R[rA(op)])
	case 60: // andc
		r.R[rA(op)] = r.R[rD(op)] &^ r.R[rB(op)]
		record(r.R[rA(op)])
	case 444: // or
		r.R[rA(op)] = r.R[rD(op)] | r.R[rB(op)]
		record(r.R[rA(op)])
	case 124: // nor
		r.R[rA(op)] = ^(r.R[rD(op)] | r.R[rB(op)])
		record(r.R[rA(op)])
	case 316: // xor
		r.R[rA(op)] = r.R[rD(op)] ^ r.R[rB(op)]
		record(r.R[rA(op)])
	case 26: // cntlzw
		v := r.R[rD(op)]
		n := uint32(0)
		for ; n < 32 && v&0x80000000 == 0; n++ {
			v <<= 1
		}
		r.R[rA(op)] = n
		record(n)
	case 24: // slw
		sh := r.R[rB(op)] & 63
		if sh > 31 {
			r.R[rA(op)] = 0
		} else {
			r.R[rA(op)] = r.R[rD(op)] << sh
		}
		record(r.R[rA(op)])
	case 536: // srw
		sh := r.R[rB(op)] & 63
		if sh > 31 {
			r.R[rA(op)] = 0
		} else {
			r.R[rA(op)] = r.R[rD(op)] >> sh
		}
		record(r.R[rA(op)])
	case 792: // sraw
		sh := r.R[rB(op)] & 63
		if sh > 31 {
			sh = 31
		}
		r.R[rA(op)] = uint32(int32(r.R[rD(op)]) >> sh)
		record(r.R[rA(op)])
	case 824: // srawi
		sh := rB(op)
		r.R[rA(op)] = uint32(int32(r.R[rD(op)]) >> sh)
		record(r.R[rA(op)])
	case 954: // extsb
		r.R[rA(op)] = uint32(int32(int8(r.R[rD(op)])))
		record(r.R[rA(op)])
	case 922: // extsh
		r.R[rA(op)] = uint32(int32(int16(r.R[rD(op)])))
		record(r.R[rA(op)])
	case 23: // lwzx
		v, err := e.mem.ReadU32BE(idx())
		if err != nil {
			return err
		}
		r.R[rD(op)] = v
	case 87: // lbzx
		v, err := e.mem.ReadU8(idx())
		if err != nil {
			return err
		}
		r.R[rD(op)] = uint32(v)
	case 279: // lhzx
		v, err := e.mem.ReadU16BE(idx())
		if err != nil {
			return err
		}
		r.R[rD(op)] = uint32(v)
	case 151: // stwx
		return e.mem.WriteU32BE(idx(), r.R[rD(op)])
	case 215: // stbx
		return e.mem.WriteU8(idx(), uint8(r.R[rD(op)]))
	case 407: // sthx
		return e.mem.WriteU16BE(idx(), uint16(r.R[rD(op)]))
	case 598: // sync
	case 982: // icbi
	case 86: // dcbf
	case 54: // dcbst
	case 278: // dcbt
	case 246: // dcbtst
	case 1014: // dcbz
		base := idx() &^ 31
		for i := uint32(0); i < 32; i += 4 {
			if err := e.mem.WriteU32BE(base+i, 0); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("opcode 31/%d: %w", xo, ErrUnknownOpcode)
	}
	return nil
}

// DisassembleOne renders a one-line approximation of the instruction for
// the verbose trace hook. It names only the forms the executor supports.
func DisassembleOne(pc, op uint32) string {
	primary := op >> 26
	switch primary {
	case 14:
		return fmt.Sprintf("addi    r%d, r%d, %d", rD(op), rA(op), simm(op))
	case 15:
		return fmt.Sprintf("addis   r%d, r%d, %d", rD(op), rA(op), simm(op))
	case 16:
		return fmt.Sprintf("bc      %d, %d, 0x%08X", (op>>21)&31, (op>>16)&31,
			uint32(int32(pc)+int32(int16(op&0xFFFC))))
	case 17:
		return "sc"
	case 18:
		disp := int32(op&0x03FFFFFC) << 6 >> 6
		return fmt.Sprintf("b       0x%08X", uint32(int32(pc)+disp))
	case 21:
		return fmt.Sprintf("rlwinm  r%d, r%d, %d, %d, %d", rA(op), rD(op), rB(op),
			(op>>6)&31, (op>>1)&31)
	case 24:
		return fmt.Sprintf("ori     r%d, r%d, 0x%X", rA(op), rD(op), uimm(op))
	case 32:
		return fmt.Sprintf("lwz     r%d, %d(r%d)", rD(op), simm(op), rA(op))
	case 34:
		return fmt.Sprintf("lbz     r%d, %d(r%d)", rD(op), simm(op), rA(op))
	case 36:
		return fmt.Sprintf("stw     r%d, %d(r%d)", rD(op), simm(op), rA(op))
	case 38:
		return fmt.Sprintf("stb     r%d, %d(r%d)", rD(op), simm(op), rA(op))
	case 19:
		if (op>>1)&0x3FF == 16 {
			return "bclr"
		}
		return fmt.Sprintf(".long   0x%08X", op)
	case 31:
		return fmt.Sprintf("x31/%d  r%d, r%d, r%d", (op>>1)&0x3FF, rD(op), rA(op), rB(op))
	default:
		return fmt.Sprintf(".long   0x%08X", op)
	}
}
