// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package sh4 implements an SH-4 disassembler and a two-pass assembler.
// The disassembly syntax is pseudo-Intel (destination first, memory
// references in square brackets) rather than the traditional SH syntax.
// The assembler accepts the disassembler's syntax for every instruction it
// encodes, so the two round-trip at byte level for that set; fipr, ftrv,
// fcnvsd and fcnvds are disassembled but not assembled.
package sh4

import (
	"fmt"
	"sort"
	"strings"
)

// disassemblyState carries the cursor context for one disassembly run.
type disassemblyState struct {
	pc              uint32
	startPC         uint32
	doublePrecision bool
	branchTargets   map[uint32]bool // true = function call
}

func opOp(op uint16) uint8  { return uint8((op >> 12) & 0xF) }
func opR1(op uint16) uint8  { return uint8((op >> 8) & 0xF) }
func opR2(op uint16) uint8  { return uint8((op >> 4) & 0xF) }
func opR3(op uint16) uint8  { return uint8(op & 0xF) }
func uimm8(op uint16) int32 { return int32(op & 0xFF) }
func simm8(op uint16) int32 { return int32(int8(op & 0xFF)) }
func simm12(op uint16) int32 {
	v := int32(op & 0x0FFF)
	if v&0x800 != 0 {
		v |= -0x1000
	}
	return v
}

func ins(name, format string, a ...interface{}) string {
	return fmt.Sprintf("%-8s", name) + fmt.Sprintf(format, a...)
}

func dispRef(reg uint8, disp int32) string {
	if disp == 0 {
		return fmt.Sprintf("[r%d]", reg)
	}
	return fmt.Sprintf("[r%d + %d]", reg, disp)
}

// DisassembleOne decodes a single instruction word at pc.
func DisassembleOne(pc uint32, op uint16, doublePrecision bool) string {
	s := &disassemblyState{
		pc:              pc,
		startPC:         pc,
		doublePrecision: doublePrecision,
		branchTargets:   make(map[uint32]bool),
	}
	return disassembleOne(s, op)
}

var controlRegNames = [5]string{"sr", "gbr", "vbr", "ssr", "spc"}

func disassembleOne(s *disassemblyState, op uint16) string {
	switch opOp(op) {
	case 0x0:
		switch opR3(op) {
		case 0x2:
			r1, r2 := opR1(op), opR2(op)
			if int(r2) < len(controlRegNames) {
				return ins("stc", "r%d, %s", r1, controlRegNames[r2])
			} else if r2&8 != 0 {
				return ins("stc", "r%d, r%db", r1, r2&7)
			}
		case 0x3:
			switch opR2(op) {
			case 0x0:
				return ins("calls", "npc + r%d // 0x%08X + r%d", opR1(op), s.pc+4, opR1(op))
			case 0x2:
				return ins("bs", "npc + r%d // 0x%08X + r%d", opR1(op), s.pc+4, opR1(op))
			case 0x8:
				return ins("pref", "[r%d]", opR1(op))
			case 0x9:
				return ins("ocbi", "[r%d]", opR1(op))
			case 0xA:
				return ins("ocbp", "[r%d]", opR1(op))
			case 0xB:
				return ins("ocbwb", "[r%d]", opR1(op))
			case 0xC:
				return ins("movca.l", "[r%d], r0", opR1(op))
			}
		case 0x4:
			return ins("mov.b", "[r%d + r0], r%d", opR1(op), opR2(op))
		case 0x5:
			return ins("mov.w", "[r%d + r0], r%d", opR1(op), opR2(op))
		case 0x6:
			return ins("mov.l", "[r%d + r0], r%d", opR1(op), opR2(op))
		case 0x7:
			return ins("mul.l", "r%d, r%d", opR1(op), opR2(op))
		case 0x8:
			if opR1(op) == 0 {
				switch opR2(op) {
				case 0x0:
					return "clrt"
				case 0x1:
					return "sett"
				case 0x2:
					return "clrmac"
				case 0x3:
					return "ldtlb"
				case 0x4:
					return "clrs"
				case 0x5:
					return "sets"
				}
			}
		case 0x9:
			switch opR2(op) {
			case 0x0:
				if opR1(op) == 0 {
					return "nop"
				}
			case 0x1:
				if opR1(op) == 0 {
					return "div0u"
				}
			case 0x2:
				return ins("movt", "r%d, t", opR1(op))
			}
		case 0xA:
			switch opR2(op) {
			case 0x0:
				return ins("sts", "r%d, mach", opR1(op))
			case 0x1:
				return ins("sts", "r%d, macl", opR1(op))
			case 0x2:
				return ins("sts", "r%d, pr", opR1(op))
			case 0x3:
				return ins("stc", "r%d, sgr", opR1(op))
			case 0x5:
				return ins("sts", "r%d, fpul", opR1(op))
			case 0x6:
				return ins("sts", "r%d, fpscr", opR1(op))
			case 0xF:
				return ins("stc", "r%d, dbr", opR1(op))
			}
		case 0xB:
			switch op {
			case 0x000B:
				return "rets"
			case 0x001B:
				return "sleep"
			case 0x002B:
				return "rte"
			}
		case 0xC:
			return ins("mov.b", "r%d, [r%d + r0]", opR1(op), opR2(op))
		case 0xD:
			return ins("mov.w", "r%d, [r%d + r0]", opR1(op), opR2(op))
		case 0xE:
			return ins("mov.l", "r%d, [r%d + r0]", opR1(op), opR2(op))
		case 0xF:
			return ins("mac.l", "[r%d]+, [r%d]+", opR1(op), opR2(op))
		}

	case 0x1:
		return ins("mov.l", "%s, r%d", dispRef(opR1(op), int32(opR3(op))*4), opR2(op))

	case 0x2:
		names := [16]string{
			"mov.b", "mov.w", "mov.l", "",
			"mov.b", "mov.w", "mov.l", "div0s",
			"test", "and", "xor", "or",
			"cmpstr", "xtrct", "mulu.w", "muls.w"}
		r1, r2 := opR1(op), opR2(op)
		switch r3 := opR3(op); r3 {
		case 0x0, 0x1, 0x2:
			return ins(names[r3], "[r%d], r%d", r1, r2)
		case 0x4, 0x5, 0x6:
			return ins(names[r3], "-[r%d], r%d", r1, r2)
		case 0x3:
			break
		default:
			return ins(names[r3], "r%d, r%d", r1, r2)
		}

	case 0x3:
		names := [16]string{
			"cmpeq", "", "cmpae", "cmpge", "div1", "dmulu.l", "cmpa", "cmpgt",
			"sub", "", "subc", "subv", "add", "dmuls.l", "addc", "addv"}
		if name := names[opR3(op)]; name != "" {
			return ins(name, "r%d, r%d", opR1(op), opR2(op))
		}

	case 0x4:
		r1 := opR1(op)
		switch op & 0xFF {
		case 0x00:
			return ins("shl", "r%d, 1", r1)
		case 0x01:
			return ins("shr", "r%d, 1", r1)
		case 0x04:
			return ins("rol", "r%d", r1)
		case 0x05:
			return ins("ror", "r%d", r1)
		case 0x08:
			return ins("shl", "r%d, 2", r1)
		case 0x09:
			return ins("shr", "r%d, 2", r1)
		case 0x0A:
			return ins("lds", "mach, r%d", r1)
		case 0x0B:
			return ins("calls", "[r%d]", r1)
		case 0x0E:
			return ins("ldc", "sr, r%d", r1)
		case 0x10:
			return ins("dec", "r%d", r1)
		case 0x11:
			return ins("cmppz", "r%d", r1)
		case 0x15:
			return ins("cmppl", "r%d", r1)
		case 0x18:
			return ins("shl", "r%d, 8", r1)
		case 0x19:
			return ins("shr", "r%d, 8", r1)
		case 0x1A:
			return ins("lds", "macl, r%d", r1)
		case 0x1B:
			return ins("tas.b", "[r%d]", r1)
		case 0x1E:
			return ins("ldc", "gbr, r%d", r1)
		case 0x20:
			return ins("shal", "r%d", r1)
		case 0x21:
			return ins("shar", "r%d", r1)
		case 0x22:
			return ins("sts.l", "-[r%d], pr", r1)
		case 0x24:
			return ins("rcl", "r%d", r1)
		case 0x25:
			return ins("rcr", "r%d", r1)
		case 0x26:
			return ins("lds.l", "pr, [r%d]+", r1)
		case 0x28:
			return ins("shl", "r%d, 16", r1)
		case 0x29:
			return ins("shr", "r%d, 16", r1)
		case 0x2A:
			return ins("lds", "pr, r%d", r1)
		case 0x2B:
			return ins("bs", "[r%d]", r1)
		case 0x2E:
			return ins("ldc", "vbr, r%d", r1)
		case 0x5A:
			return ins("lds", "fpul, r%d", r1)
		case 0x6A:
			return ins("lds", "fpscr, r%d", r1)
		default:
			switch opR3(op) {
			case 0xC:
				return ins("shad", "r%d, r%d", r1, opR2(op))
			case 0xD:
				return ins("shld", "r%d, r%d", r1, opR2(op))
			case 0xF:
				return ins("mac.w", "[r%d]+, [r%d]+", r1, opR2(op))
			case 0xE:
				if opR2(op)&8 != 0 {
					return ins("ldc", "r%db, r%d", opR2(op)&7, r1)
				}
			}
		}

	case 0x5:
		return ins("mov.l", "r%d, %s", opR1(op), dispRef(opR2(op), int32(opR3(op))*4))

	case 0x6:
		names := [16]string{
			"mov.b", "mov.w", "mov.l", "mov",
			"mov.b", "mov.w", "mov.l", "not",
			"swap.b", "swap.w", "negc", "neg",
			"extu.b", "extu.w", "exts.b", "exts.w"}
		r1, r2 := opR1(op), opR2(op)
		switch r3 := opR3(op); r3 {
		case 0x0, 0x1, 0x2:
			return ins(names[r3], "r%d, [r%d]", r1, r2)
		case 0x4, 0x5, 0x6:
			return ins(names[r3], "r%d, [r%d]+", r1, r2)
		default:
			return ins(names[r3], "r%d, r%d", r1, r2)
		}

	case 0x7:
		return ins("add", "r%d, 0x%02X", opR1(op), op&0xFF)

	case 0x8:
		switch opR1(op) {
		case 0x0:
			return ins("mov.b", "%s, r0", dispRef(opR2(op), int32(opR3(op))))
		case 0x1:
			return ins("mov.w", "%s, r0", dispRef(opR2(op), int32(opR3(op))*2))
		case 0x4:
			return ins("mov.b", "r0, %s", dispRef(opR2(op), int32(opR3(op))))
		case 0x5:
			return ins("mov.w", "r0, %s", dispRef(opR2(op), int32(opR3(op))*2))
		case 0x8:
			return ins("cmpeq", "r0, 0x%02X", op&0xFF)
		case 0x9, 0xB, 0xD, 0xF:
			names := map[uint8]string{0x9: "bt", 0xB: "bf", 0xD: "bts", 0xF: "bfs"}
			target := uint32(int32(s.pc) + 4 + simm8(op)*2)
			if _, ok := s.branchTargets[target]; !ok {
				s.branchTargets[target] = false
			}
			return ins(names[opR1(op)], "label%08X", target)
		}

	case 0x9:
		addr := s.pc + 4 + uint32(uimm8(op))*2
		return ins("mov.w", "r%d, [0x%08X]", opR1(op), addr)

	case 0xA, 0xB:
		target := uint32(int32(s.pc) + 4 + simm12(op)*2)
		if opOp(op) == 0xA {
			if _, ok := s.branchTargets[target]; !ok {
				s.branchTargets[target] = false
			}
			return ins("bs", "label%08X", target)
		}
		s.branchTargets[target] = true
		return ins("calls", "fn%08X", target)

	case 0xC:
		switch opR1(op) {
		case 0x0:
			return ins("mov.b", "[gbr + %d], r0", uimm8(op))
		case 0x1:
			return ins("mov.w", "[gbr + %d], r0", uimm8(op)*2)
		case 0x2:
			return ins("mov.l", "[gbr + %d], r0", uimm8(op)*4)
		case 0x3:
			return ins("trapa", "0x%02X", op&0xFF)
		case 0x4:
			return ins("mov.b", "r0, [gbr + %d]", uimm8(op))
		case 0x5:
			return ins("mov.w", "r0, [gbr + %d]", uimm8(op)*2)
		case 0x6:
			return ins("mov.l", "r0, [gbr + %d]", uimm8(op)*4)
		case 0x7:
			addr := (s.pc &^ 3) + 4 + uint32(uimm8(op))*4
			return ins("mova", "r0, [0x%08X]", addr)
		case 0x8:
			return ins("test", "r0, 0x%02X", op&0xFF)
		case 0x9:
			return ins("and", "r0, 0x%02X", op&0xFF)
		case 0xA:
			return ins("xor", "r0, 0x%02X", op&0xFF)
		case 0xB:
			return ins("or", "r0, 0x%02X", op&0xFF)
		case 0xC:
			return ins("test.b", "[gbr + r0], 0x%02X", op&0xFF)
		case 0xD:
			return ins("and.b", "[gbr + r0], 0x%02X", op&0xFF)
		case 0xE:
			return ins("xor.b", "[gbr + r0], 0x%02X", op&0xFF)
		case 0xF:
			return ins("or.b", "[gbr + r0], 0x%02X", op&0xFF)
		}

	case 0xD:
		addr := (s.pc &^ 3) + 4 + uint32(uimm8(op))*4
		return ins("mov.l", "r%d, [0x%08X]", opR1(op), addr)

	case 0xE:
		return ins("mov", "r%d, 0x%02X", opR1(op), op&0xFF)

	case 0xF:
		return disassembleFloat(s, op)
	}
	return ins(".invalid", "0x%04X", op)
}

// disassembleFloat decodes the floating-point family. Double-precision
// forms are gated by the caller-supplied flag.
func disassembleFloat(s *disassemblyState, op uint16) string {
	freg := func(n uint8) string {
		if s.doublePrecision && n&1 == 0 {
			return fmt.Sprintf("dr%d", n)
		}
		return fmt.Sprintf("fr%d", n)
	}
	r1, r2 := opR1(op), opR2(op)
	switch opR3(op) {
	case 0x0:
		return ins("fadd", "%s, %s", freg(r1), freg(r2))
	case 0x1:
		return ins("fsub", "%s, %s", freg(r1), freg(r2))
	case 0x2:
		return ins("fmul", "%s, %s", freg(r1), freg(r2))
	case 0x3:
		return ins("fdiv", "%s, %s", freg(r1), freg(r2))
	case 0x4:
		return ins("fcmpeq", "%s, %s", freg(r1), freg(r2))
	case 0x5:
		return ins("fcmpgt", "%s, %s", freg(r1), freg(r2))
	case 0x6:
		return ins("fmov.s", "fr%d, [r%d + r0]", r1, r2)
	case 0x7:
		return ins("fmov.s", "[r%d + r0], fr%d", r1, r2)
	case 0x8:
		return ins("fmov.s", "fr%d, [r%d]", r1, r2)
	case 0x9:
		return ins("fmov.s", "fr%d, [r%d]+", r1, r2)
	case 0xA:
		return ins("fmov.s", "[r%d], fr%d", r1, r2)
	case 0xB:
		return ins("fmov.s", "-[r%d], fr%d", r1, r2)
	case 0xC:
		return ins("fmov", "%s, %s", freg(r1), freg(r2))
	case 0xD:
		switch r2 {
		case 0x0:
			return ins("fsts", "fr%d, fpul", r1)
		case 0x1:
			return ins("flds", "fpul, fr%d", r1)
		case 0x2:
			return ins("float", "%s, fpul", freg(r1))
		case 0x3:
			return ins("ftrc", "fpul, %s", freg(r1))
		case 0x4:
			return ins("fneg", "%s", freg(r1))
		case 0x5:
			return ins("fabs", "%s", freg(r1))
		case 0x6:
			return ins("fsqrt", "%s", freg(r1))
		case 0x8:
			return ins("fldi0", "fr%d", r1)
		case 0x9:
			return ins("fldi1", "fr%d", r1)
		case 0xA:
			return ins("fcnvsd", "dr%d, fpul", r1)
		case 0xB:
			return ins("fcnvds", "fpul, dr%d", r1)
		case 0xE:
			return ins("fipr", "fv%d, fv%d", (r1&3)<<2, r1&0xC)
		case 0xF:
			switch op {
			case 0xFBFD:
				return "frchg"
			case 0xF3FD:
				return "fschg"
			}
			if r1&3 == 1 {
				return ins("ftrv", "fv%d, xmtrx", r1&0xC)
			}
		}
	case 0xE:
		return ins("fmac", "fr%d, fr0, fr%d", r1, r2)
	}
	return ins(".invalid", "0x%04X", op)
}

// Disassemble renders a listing for data beginning at startPC. SH-4
// opcodes are fixed-length, so there is no alternate-branch machinery;
// labels and collected branch targets are interleaved in a second pass.
func Disassemble(data []byte, startPC uint32, labels map[uint32][]string,
	doublePrecision bool) string {
	s := &disassemblyState{
		pc:              startPC,
		startPC:         startPC,
		doublePrecision: doublePrecision,
		branchTargets:   make(map[uint32]bool),
	}

	count := len(data) / 2
	lines := make([]string, count)
	for i := 0; i < count; i++ {
		op := uint16(data[i*2]) | uint16(data[i*2+1])<<8
		lines[i] = fmt.Sprintf("%08X  %04X  ", s.pc, op) + disassembleOne(s, op) + "\n"
		s.pc += 2
	}

	labelAddrs := make([]uint32, 0, len(labels))
	for a := range labels {
		labelAddrs = append(labelAddrs, a)
	}
	sort.Slice(labelAddrs, func(i, j int) bool { return labelAddrs[i] < labelAddrs[j] })
	targetAddrs := make([]uint32, 0, len(s.branchTargets))
	for a := range s.branchTargets {
		targetAddrs = append(targetAddrs, a)
	}
	sort.Slice(targetAddrs, func(i, j int) bool { return targetAddrs[i] < targetAddrs[j] })

	var out strings.Builder
	li, ti := 0, 0
	pc := startPC
	for i := 0; i < count; i++ {
		for li < len(labelAddrs) && labelAddrs[li] <= pc+1 {
			addr := labelAddrs[li]
			for _, name := range labels[addr] {
				if addr != pc {
					fmt.Fprintf(&out, "%s: // at %08X (misaligned)\n", name, addr)
				} else {
					fmt.Fprintf(&out, "%s:\n", name)
				}
			}
			li++
		}
		for ti < len(targetAddrs) && targetAddrs[ti] <= pc {
			addr := targetAddrs[ti]
			labelType := "label"
			if s.branchTargets[addr] {
				labelType = "fn"
			}
			if addr != pc {
				fmt.Fprintf(&out, "%s%08X: // (misaligned)\n", labelType, addr)
			} else {
				fmt.Fprintf(&out, "%s%08X:\n", labelType, addr)
			}
			ti++
		}
		out.WriteString(lines[i])
		pc += 2
	}
	return out.String()
}
