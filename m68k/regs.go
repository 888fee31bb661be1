// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package m68k implements a Motorola 68000-family instruction decoder,
// disassembler and partial emulator. The execution subset covers the
// integer instruction set used by classic resource decompressors; the
// disassembler covers considerably more, including Mac-specific trap names
// and MacsBug symbol recognition.
package m68k

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saferwall/rsrcfork/memory"
)

// Errors surfaced by emulation.
var (
	// ErrTerminate is the clean-termination sentinel. The syscall handler
	// or debug hook returns it to stop emulation; Execute treats it as a
	// normal exit, not an error.
	ErrTerminate = errors.New("terminate emulation")

	// ErrUnknownOpcode is returned when execution reaches a reserved or
	// unimplemented instruction pattern.
	ErrUnknownOpcode = errors.New("unimplemented opcode")

	// ErrDivideByZero is returned by divu/divs with a zero divisor.
	ErrDivideByZero = errors.New("division by zero")

	// ErrAddressError is returned when an instruction fetch misbehaves
	// (for example, an odd PC).
	ErrAddressError = errors.New("address error")
)

// Condition flag bits in the low byte of SR.
const (
	FlagC uint16 = 0x0001
	FlagV uint16 = 0x0002
	FlagZ uint16 = 0x0004
	FlagN uint16 = 0x0008
	FlagX uint16 = 0x0010
)

// Operand sizes in bytes.
const (
	SizeByte = 1
	SizeWord = 2
	SizeLong = 4
)

// Regs is the 68K register file. A[7] is the stack pointer; the low five
// bits of SR are the X, N, Z, V, C condition flags.
type Regs struct {
	D  [8]uint32
	A  [8]uint32
	PC uint32
	SR uint16
}

// SP returns the stack pointer (A7).
func (r *Regs) SP() uint32 {
	return r.A[7]
}

// SetSP sets the stack pointer (A7).
func (r *Regs) SetSP(sp uint32) {
	r.A[7] = sp
}

// SetByName sets a register by its conventional name (D0-D7, A0-A7, PC,
// SR), case-insensitively.
func (r *Regs) SetByName(name string, value uint32) error {
	n := strings.ToUpper(name)
	switch {
	case n == "PC":
		r.PC = value
		return nil
	case n == "SR":
		r.SR = uint16(value)
		return nil
	case len(n) == 2 && n[0] == 'D' && n[1] >= '0' && n[1] <= '7':
		r.D[n[1]-'0'] = value
		return nil
	case len(n) == 2 && n[0] == 'A' && n[1] >= '0' && n[1] <= '7':
		r.A[n[1]-'0'] = value
		return nil
	}
	return fmt.Errorf("unknown register name %q", name)
}

// setFlags sets the condition flags; pass -1 to leave a flag unchanged.
func (r *Regs) setFlags(x, n, z, v, c int) {
	set := func(bit uint16, val int) {
		if val < 0 {
			return
		}
		if val != 0 {
			r.SR |= bit
		} else {
			r.SR &^= bit
		}
	}
	set(FlagX, x)
	set(FlagN, n)
	set(FlagZ, z)
	set(FlagV, v)
	set(FlagC, c)
}

func signBit(v uint32, size uint8) bool {
	switch size {
	case SizeByte:
		return v&0x80 != 0
	case SizeWord:
		return v&0x8000 != 0
	default:
		return v&0x80000000 != 0
	}
}

func truncate(v uint32, size uint8) uint32 {
	switch size {
	case SizeByte:
		return v & 0xFF
	case SizeWord:
		return v & 0xFFFF
	default:
		return v
	}
}

func signExtend(v uint32, size uint8) int32 {
	switch size {
	case SizeByte:
		return int32(int8(v))
	case SizeWord:
		return int32(int16(v))
	default:
		return int32(v)
	}
}

// setFlagsNZ computes N and Z from a result and clears V and C.
func (r *Regs) setFlagsNZ(result uint32, size uint8) {
	n := 0
	if signBit(result, size) {
		n = 1
	}
	z := 0
	if truncate(result, size) == 0 {
		z = 1
	}
	r.setFlags(-1, n, z, 0, 0)
}

// setFlagsAdd computes XNZVC for left + right at the given size.
func (r *Regs) setFlagsAdd(left, right uint32, size uint8) uint32 {
	l := truncate(left, size)
	rr := truncate(right, size)
	result := truncate(l+rr, size)

	carry := uint64(l)+uint64(rr) > uint64(truncate(0xFFFFFFFF, size))
	ls := signBit(l, size)
	rs := signBit(rr, size)
	os := signBit(result, size)
	overflow := (ls == rs) && (os != ls)

	n, z, v, c := 0, 0, 0, 0
	if os {
		n = 1
	}
	if result == 0 {
		z = 1
	}
	if overflow {
		v = 1
	}
	if carry {
		c = 1
	}
	r.setFlags(c, n, z, v, c)
	return result
}

// setFlagsSub computes XNZVC for left - right at the given size.
func (r *Regs) setFlagsSub(left, right uint32, size uint8) uint32 {
	l := truncate(left, size)
	rr := truncate(right, size)
	result := truncate(l-rr, size)

	borrow := rr > l
	ls := signBit(l, size)
	rs := signBit(rr, size)
	os := signBit(result, size)
	overflow := (ls != rs) && (os == rs)

	n, z, v, c := 0, 0, 0, 0
	if os {
		n = 1
	}
	if result == 0 {
		z = 1
	}
	if overflow {
		v = 1
	}
	if borrow {
		c = 1
	}
	r.setFlags(c, n, z, v, c)
	return result
}

// setFlagsCmp is setFlagsSub without touching X.
func (r *Regs) setFlagsCmp(left, right uint32, size uint8) {
	x := r.SR & FlagX
	r.setFlagsSub(left, right, size)
	r.SR = (r.SR &^ FlagX) | x
}

// PushU32 pushes a 32-bit value.
func (r *Regs) PushU32(mem *memory.Context, v uint32) error {
	r.A[7] -= 4
	return mem.WriteU32BE(r.A[7], v)
}

// PopU32 pops a 32-bit value.
func (r *Regs) PopU32(mem *memory.Context) (uint32, error) {
	v, err := mem.ReadU32BE(r.A[7])
	if err != nil {
		return 0, err
	}
	r.A[7] += 4
	return v, nil
}

// PushU16 pushes a 16-bit value.
func (r *Regs) PushU16(mem *memory.Context, v uint16) error {
	r.A[7] -= 2
	return mem.WriteU16BE(r.A[7], v)
}

// PopU16 pops a 16-bit value.
func (r *Regs) PopU16(mem *memory.Context) (uint16, error) {
	v, err := mem.ReadU16BE(r.A[7])
	if err != nil {
		return 0, err
	}
	r.A[7] += 2
	return v, nil
}
