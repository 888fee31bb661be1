// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sh4

// assembleOne dispatches a stream item to its per-mnemonic encoder and
// returns the 16-bit instruction word.
func (a *Assembler) assembleOne(si *streamItem) (uint16, error) {
	fn, ok := assembleFuncs[si.opName]
	if !ok {
		return 0, asmErr(si.lineNum, "unknown opcode: %s", si.opName)
	}
	return fn(a, si)
}

type assembleFunc func(a *Assembler, si *streamItem) (uint16, error)

// regRegOps encode as base | n<<8 | m<<4 with both operands integer
// registers.
var regRegOps = map[string]uint16{
	"add":     0x300C,
	"addc":    0x300E,
	"addv":    0x300F,
	"sub":     0x3008,
	"subc":    0x300A,
	"subv":    0x300B,
	"and":     0x2009,
	"or":      0x200B,
	"xor":     0x200A,
	"test":    0x2008,
	"cmpeq":   0x3000,
	"cmpae":   0x3002,
	"cmpge":   0x3003,
	"cmpa":    0x3006,
	"cmpgt":   0x3007,
	"cmpstr":  0x200C,
	"div0s":   0x2007,
	"div1":    0x3004,
	"dmulu.l": 0x3005,
	"dmuls.l": 0x300D,
	"mul.l":   0x0007,
	"mulu.w":  0x200E,
	"muls.w":  0x200F,
	"exts.b":  0x600E,
	"exts.w":  0x600F,
	"extu.b":  0x600C,
	"extu.w":  0x600D,
	"neg":     0x600B,
	"negc":    0x600A,
	"not":     0x6007,
	"swap.b":  0x6008,
	"swap.w":  0x6009,
	"xtrct":   0x200D,
	"shad":    0x400C,
	"shld":    0x400D,
}

// r0ImmOps encode as base | imm with the first argument constrained to r0.
var r0ImmOps = map[string]uint16{
	"and":   0xC900,
	"or":    0xCB00,
	"xor":   0xCA00,
	"test":  0xC800,
	"cmpeq": 0x8800,
}

// gbrR0ImmOps encode the read-modify-write [gbr + r0] byte forms.
var gbrR0ImmOps = map[string]uint16{
	"and.b":  0xCD00,
	"or.b":   0xCF00,
	"xor.b":  0xCE00,
	"test.b": 0xCC00,
}

// singleRegOps encode as base | n<<8 with one integer register operand.
var singleRegOps = map[string]uint16{
	"shal":  0x4020,
	"shar":  0x4021,
	"rol":   0x4004,
	"ror":   0x4005,
	"rcl":   0x4024,
	"rcr":   0x4025,
	"dec":   0x4010,
	"cmppz": 0x4011,
	"cmppl": 0x4015,
}

// zeroArgOps are complete instruction words.
var zeroArgOps = map[string]uint16{
	"nop":    0x0009,
	"rets":   0x000B,
	"sleep":  0x001B,
	"rte":    0x002B,
	"clrt":   0x0008,
	"sett":   0x0018,
	"clrmac": 0x0028,
	"ldtlb":  0x0038,
	"clrs":   0x0048,
	"sets":   0x0058,
	"div0u":  0x0019,
	"frchg":  0xFBFD,
	"fschg":  0xF3FD,
}

// memRefOps encode as base | n<<8 with one [rn] operand.
var memRefOps = map[string]uint16{
	"pref":  0x0083,
	"ocbi":  0x0093,
	"ocbp":  0x00A3,
	"ocbwb": 0x00B3,
	"tas.b": 0x401B,
}

// stsRegs / ldsRegs map system registers to their sts/lds nibbles.
var stsRegs = map[ArgType]uint16{
	ArgMACH: 0x0A, ArgMACL: 0x1A, ArgPR: 0x2A, ArgFPUL: 0x5A, ArgFPSCR: 0x6A,
}
var stcRegs = map[ArgType]uint16{
	ArgSR: 0x02, ArgGBR: 0x12, ArgVBR: 0x22, ArgSSR: 0x32, ArgSPC: 0x42,
	ArgSGR: 0x3A, ArgDBR: 0xFA,
}
var ldcRegs = map[ArgType]uint16{
	ArgSR: 0x0E, ArgGBR: 0x1E, ArgVBR: 0x2E, ArgSSR: 0x3E, ArgSPC: 0x4E,
}

// fpRegRegOps encode as base | n<<8 | m<<4 with float register operands.
var fpRegRegOps = map[string]uint16{
	"fadd":   0xF000,
	"fsub":   0xF001,
	"fmul":   0xF002,
	"fdiv":   0xF003,
	"fcmpeq": 0xF004,
	"fcmpgt": 0xF005,
	"fmov":   0xF00C,
}

// fpSingleOps encode as base | n<<8 with one float register operand.
var fpSingleOps = map[string]uint16{
	"fneg":  0xF04D,
	"fabs":  0xF05D,
	"fsqrt": 0xF06D,
	"fldi0": 0xF08D,
	"fldi1": 0xF09D,
}

func isFloatReg(t ArgType) bool {
	return t == ArgFRReg || t == ArgDRReg
}

var assembleFuncs map[string]assembleFunc

func init() {
	assembleFuncs = map[string]assembleFunc{
		"mov":     asmMov,
		"mov.b":   asmMovB,
		"mov.w":   asmMovW,
		"mov.l":   asmMovL,
		"mova":    asmMova,
		"movt":    asmMovt,
		"movca.l": asmMovcaL,
		"bs":      asmBsCalls,
		"calls":   asmBsCalls,
		"bt":      asmBtBf,
		"bf":      asmBtBf,
		"bts":     asmBtBf,
		"bfs":     asmBtBf,
		"trapa":   asmTrapa,
		"shl":     asmShlShr,
		"shr":     asmShlShr,
		"sts":     asmSts,
		"stc":     asmStc,
		"lds":     asmLds,
		"ldc":     asmLdc,
		"sts.l":   asmStsL,
		"lds.l":   asmLdsL,
		"mac.w":   asmMac,
		"mac.l":   asmMac,
		"flds":    asmFlds,
		"fsts":    asmFsts,
		"float":   asmFloat,
		"ftrc":    asmFtrc,
		"fmov.s":  asmFmovS,
		"fmac":    asmFmac,
	}
	for name, base := range regRegOps {
		base := base
		immBase, hasImm := r0ImmOps[name]
		addImm := name == "add"
		assembleFuncs[name] = func(a *Assembler, si *streamItem) (uint16, error) {
			if si.argTypesMatch(ArgIntReg, ArgIntReg) {
				return base | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
			}
			if si.argTypesMatch(ArgIntReg, ArgImmediate) {
				v := si.args[1].Value
				if addImm {
					if err := checkImmRange(si, v, -0x80, 0xFF); err != nil {
						return 0, err
					}
					return 0x7000 | n(si.args[0].Reg) | uint16(v&0xFF), nil
				}
				if hasImm {
					if si.args[0].Reg != 0 {
						return 0, asmErr(si.lineNum, "%s with immediate requires r0", si.opName)
					}
					if err := checkImmRange(si, v, -0x80, 0xFF); err != nil {
						return 0, err
					}
					return immBase | uint16(v&0xFF), nil
				}
			}
			return 0, si.invalidArgs()
		}
	}
	for name, base := range gbrR0ImmOps {
		base := base
		assembleFuncs[name] = func(a *Assembler, si *streamItem) (uint16, error) {
			if si.argTypesMatch(ArgGBRR0MemRef, ArgImmediate) {
				v := si.args[1].Value
				if err := checkImmRange(si, v, 0, 0xFF); err != nil {
					return 0, err
				}
				return base | uint16(v&0xFF), nil
			}
			return 0, si.invalidArgs()
		}
	}
	for name, base := range singleRegOps {
		base := base
		assembleFuncs[name] = func(a *Assembler, si *streamItem) (uint16, error) {
			if si.argTypesMatch(ArgIntReg) {
				return base | n(si.args[0].Reg), nil
			}
			return 0, si.invalidArgs()
		}
	}
	for name, word := range zeroArgOps {
		word := word
		assembleFuncs[name] = func(a *Assembler, si *streamItem) (uint16, error) {
			if len(si.args) != 0 {
				return 0, si.invalidArgs()
			}
			return word, nil
		}
	}
	for name, base := range memRefOps {
		base := base
		assembleFuncs[name] = func(a *Assembler, si *streamItem) (uint16, error) {
			if si.argTypesMatch(ArgMemRef) {
				return base | n(si.args[0].Reg), nil
			}
			return 0, si.invalidArgs()
		}
	}
	for name, base := range fpRegRegOps {
		base := base
		assembleFuncs[name] = func(a *Assembler, si *streamItem) (uint16, error) {
			if len(si.args) == 2 && isFloatReg(si.args[0].Type) &&
				si.args[0].Type == si.args[1].Type {
				return base | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
			}
			return 0, si.invalidArgs()
		}
	}
	for name, base := range fpSingleOps {
		base := base
		assembleFuncs[name] = func(a *Assembler, si *streamItem) (uint16, error) {
			if len(si.args) == 1 && isFloatReg(si.args[0].Type) {
				return base | n(si.args[0].Reg), nil
			}
			return 0, si.invalidArgs()
		}
	}
}

func asmMov(a *Assembler, si *streamItem) (uint16, error) {
	if si.argTypesMatch(ArgIntReg, ArgIntReg) {
		return 0x6003 | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	}
	if si.argTypesMatch(ArgIntReg, ArgImmediate) {
		v := si.args[1].Value
		if err := checkImmRange(si, v, -0x80, 0xFF); err != nil {
			return 0, err
		}
		return 0xE000 | n(si.args[0].Reg) | uint16(v&0xFF), nil
	}
	return 0, si.invalidArgs()
}

// asmMovSized covers the shared mov.b/mov.w addressing forms. width is 0
// for byte, 1 for word, 2 for long.
func asmMovSized(a *Assembler, si *streamItem, width uint16) (uint16, error) {
	scale := int32(1) << width
	switch {
	// Stores (destination first).
	case si.argTypesMatch(ArgMemRef, ArgIntReg):
		return 0x2000 | width | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	case si.argTypesMatch(ArgPredecMemRef, ArgIntReg):
		return 0x2004 | width | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	case si.argTypesMatch(ArgRegR0MemRef, ArgIntReg):
		return 0x0004 | width | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	// Loads.
	case si.argTypesMatch(ArgIntReg, ArgMemRef):
		return 0x6000 | width | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	case si.argTypesMatch(ArgIntReg, ArgPostincMemRef):
		return 0x6004 | width | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	case si.argTypesMatch(ArgIntReg, ArgRegR0MemRef):
		return 0x000C | width | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	// Displacement forms (r0 only for byte/word).
	case si.argTypesMatch(ArgRegDispMemRef, ArgIntReg):
		if si.args[1].Reg != 0 {
			return 0, asmErr(si.lineNum, "displacement store requires r0 source")
		}
		d := si.args[0].Value
		if d%scale != 0 {
			return 0, asmErr(si.lineNum, "displacement is not a multiple of %d", scale)
		}
		if err := checkImmRange(si, d/scale, 0, 15); err != nil {
			return 0, err
		}
		return 0x8000 | width<<8 | mm(si.args[0].Reg) | uint16(d/scale), nil
	case si.argTypesMatch(ArgIntReg, ArgRegDispMemRef):
		if si.args[0].Reg != 0 {
			return 0, asmErr(si.lineNum, "displacement load requires r0 destination")
		}
		d := si.args[1].Value
		if d%scale != 0 {
			return 0, asmErr(si.lineNum, "displacement is not a multiple of %d", scale)
		}
		if err := checkImmRange(si, d/scale, 0, 15); err != nil {
			return 0, err
		}
		return 0x8400 | width<<8 | mm(si.args[1].Reg) | uint16(d/scale), nil
	// GBR forms (r0 only).
	case si.argTypesMatch(ArgGBRDispMemRef, ArgIntReg):
		if si.args[1].Reg != 0 {
			return 0, asmErr(si.lineNum, "gbr store requires r0 source")
		}
		d := si.args[0].Value
		if d%scale != 0 {
			return 0, asmErr(si.lineNum, "displacement is not a multiple of %d", scale)
		}
		if err := checkImmRange(si, d/scale, 0, 0xFF); err != nil {
			return 0, err
		}
		return 0xC000 | width<<8 | uint16(d/scale), nil
	case si.argTypesMatch(ArgIntReg, ArgGBRDispMemRef):
		if si.args[0].Reg != 0 {
			return 0, asmErr(si.lineNum, "gbr load requires r0 destination")
		}
		d := si.args[1].Value
		if d%scale != 0 {
			return 0, asmErr(si.lineNum, "displacement is not a multiple of %d", scale)
		}
		if err := checkImmRange(si, d/scale, 0, 0xFF); err != nil {
			return 0, err
		}
		return 0xC400 | width<<8 | uint16(d/scale), nil
	}
	return 0, si.invalidArgs()
}

func asmMovB(a *Assembler, si *streamItem) (uint16, error) {
	return asmMovSized(a, si, 0)
}

func asmMovW(a *Assembler, si *streamItem) (uint16, error) {
	// PC-relative word load.
	if si.argTypesMatch(ArgIntReg, ArgPCMemRef) {
		target, err := a.resolveTarget(si, &si.args[1])
		if err != nil {
			return 0, err
		}
		pc := a.startAddress + si.offset
		delta := int32(target) - int32(pc) - 4
		if delta%2 != 0 {
			return 0, asmErr(si.lineNum, "pc-relative displacement is not even")
		}
		if err := checkImmRange(si, delta/2, 0, 0xFF); err != nil {
			return 0, err
		}
		return 0x9000 | n(si.args[0].Reg) | uint16(delta/2), nil
	}
	return asmMovSized(a, si, 1)
}

func asmMovL(a *Assembler, si *streamItem) (uint16, error) {
	switch {
	case si.argTypesMatch(ArgIntReg, ArgPCMemRef):
		target, err := a.resolveTarget(si, &si.args[1])
		if err != nil {
			return 0, err
		}
		pc := (a.startAddress + si.offset) &^ 3
		delta := int32(target) - int32(pc) - 4
		if delta%4 != 0 {
			return 0, asmErr(si.lineNum, "pc-relative displacement is not a multiple of 4")
		}
		if err := checkImmRange(si, delta/4, 0, 0xFF); err != nil {
			return 0, err
		}
		return 0xD000 | n(si.args[0].Reg) | uint16(delta/4), nil
	case si.argTypesMatch(ArgRegDispMemRef, ArgIntReg):
		d := si.args[0].Value
		if d%4 != 0 {
			return 0, asmErr(si.lineNum, "displacement is not a multiple of 4")
		}
		if err := checkImmRange(si, d/4, 0, 15); err != nil {
			return 0, err
		}
		return 0x1000 | n(si.args[0].Reg) | mm(si.args[1].Reg) | uint16(d/4), nil
	case si.argTypesMatch(ArgIntReg, ArgRegDispMemRef):
		d := si.args[1].Value
		if d%4 != 0 {
			return 0, asmErr(si.lineNum, "displacement is not a multiple of 4")
		}
		if err := checkImmRange(si, d/4, 0, 15); err != nil {
			return 0, err
		}
		return 0x5000 | n(si.args[0].Reg) | mm(si.args[1].Reg) | uint16(d/4), nil
	}
	return asmMovSized(a, si, 2)
}

func asmMova(a *Assembler, si *streamItem) (uint16, error) {
	if si.argTypesMatch(ArgIntReg, ArgPCMemRef) && si.args[0].Reg == 0 {
		target, err := a.resolveTarget(si, &si.args[1])
		if err != nil {
			return 0, err
		}
		pc := (a.startAddress + si.offset) &^ 3
		delta := int32(target) - int32(pc) - 4
		if delta%4 != 0 || delta < 0 {
			return 0, asmErr(si.lineNum, "mova target out of range")
		}
		if err := checkImmRange(si, delta/4, 0, 0xFF); err != nil {
			return 0, err
		}
		return 0xC700 | uint16(delta/4), nil
	}
	return 0, si.invalidArgs()
}

func asmMovt(a *Assembler, si *streamItem) (uint16, error) {
	if si.argTypesMatch(ArgIntReg, ArgT) {
		return 0x0029 | n(si.args[0].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmMovcaL(a *Assembler, si *streamItem) (uint16, error) {
	if si.argTypesMatch(ArgMemRef, ArgIntReg) && si.args[1].Reg == 0 {
		return 0x00C3 | n(si.args[0].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmBsCalls(a *Assembler, si *streamItem) (uint16, error) {
	isCall := si.opName == "calls"
	switch {
	case si.argTypesMatch(ArgBranchTarget) || si.argTypesMatch(ArgImmediate):
		disp, err := a.branchDisp12(si)
		if err != nil {
			return 0, err
		}
		if isCall {
			return 0xB000 | disp, nil
		}
		return 0xA000 | disp, nil
	case si.argTypesMatch(ArgMemRef):
		if isCall {
			return 0x400B | n(si.args[0].Reg), nil
		}
		return 0x402B | n(si.args[0].Reg), nil
	case si.argTypesMatch(ArgPCRegOffset):
		if si.args[0].Label != "npc" {
			return 0, asmErr(si.lineNum, "computed branch must use npc + rn")
		}
		if isCall {
			return 0x0003 | n(si.args[0].Reg), nil
		}
		return 0x0023 | n(si.args[0].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmBtBf(a *Assembler, si *streamItem) (uint16, error) {
	if !si.argTypesMatch(ArgBranchTarget) && !si.argTypesMatch(ArgImmediate) {
		return 0, si.invalidArgs()
	}
	disp, err := a.branchDisp8(si)
	if err != nil {
		return 0, err
	}
	bases := map[string]uint16{"bt": 0x8900, "bf": 0x8B00, "bts": 0x8D00, "bfs": 0x8F00}
	return bases[si.opName] | disp, nil
}

func asmTrapa(a *Assembler, si *streamItem) (uint16, error) {
	if si.argTypesMatch(ArgImmediate) {
		if err := checkImmRange(si, si.args[0].Value, 0, 0xFF); err != nil {
			return 0, err
		}
		return 0xC300 | uint16(si.args[0].Value), nil
	}
	return 0, si.invalidArgs()
}

func asmShlShr(a *Assembler, si *streamItem) (uint16, error) {
	if !si.argTypesMatch(ArgIntReg, ArgImmediate) {
		return 0, si.invalidArgs()
	}
	var low uint16
	switch si.args[1].Value {
	case 1:
		low = 0x00
	case 2:
		low = 0x08
	case 8:
		low = 0x18
	case 16:
		low = 0x28
	default:
		return 0, asmErr(si.lineNum, "shift count must be 1, 2, 8, or 16")
	}
	base := uint16(0x4000)
	if si.opName == "shr" {
		base = 0x4001
	}
	return base | low | n(si.args[0].Reg), nil
}

func asmSts(a *Assembler, si *streamItem) (uint16, error) {
	if len(si.args) == 2 && si.args[0].Type == ArgIntReg {
		if low, ok := stsRegs[si.args[1].Type]; ok {
			return 0x0000 | n(si.args[0].Reg) | low, nil
		}
	}
	return 0, si.invalidArgs()
}

func asmStc(a *Assembler, si *streamItem) (uint16, error) {
	if len(si.args) == 2 && si.args[0].Type == ArgIntReg {
		if si.args[1].Type == ArgBankReg {
			return 0x0002 | n(si.args[0].Reg) | mm(8|si.args[1].Reg), nil
		}
		if low, ok := stcRegs[si.args[1].Type]; ok {
			return 0x0000 | n(si.args[0].Reg) | low, nil
		}
	}
	return 0, si.invalidArgs()
}

func asmLds(a *Assembler, si *streamItem) (uint16, error) {
	if len(si.args) == 2 && si.args[1].Type == ArgIntReg {
		if low, ok := stsRegs[si.args[0].Type]; ok {
			return 0x4000 | n(si.args[1].Reg) | low, nil
		}
	}
	return 0, si.invalidArgs()
}

func asmLdc(a *Assembler, si *streamItem) (uint16, error) {
	if len(si.args) == 2 && si.args[1].Type == ArgIntReg {
		if si.args[0].Type == ArgBankReg {
			return 0x400E | n(si.args[1].Reg) | mm(8|si.args[0].Reg), nil
		}
		if low, ok := ldcRegs[si.args[0].Type]; ok {
			return 0x4000 | n(si.args[1].Reg) | low, nil
		}
	}
	return 0, si.invalidArgs()
}

func asmStsL(a *Assembler, si *streamItem) (uint16, error) {
	if si.argTypesMatch(ArgPredecMemRef, ArgPR) {
		return 0x4022 | n(si.args[0].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmLdsL(a *Assembler, si *streamItem) (uint16, error) {
	if si.argTypesMatch(ArgPR, ArgPostincMemRef) {
		return 0x4026 | n(si.args[1].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmMac(a *Assembler, si *streamItem) (uint16, error) {
	if !si.argTypesMatch(ArgPostincMemRef, ArgPostincMemRef) {
		return 0, si.invalidArgs()
	}
	if si.opName == "mac.w" {
		return 0x400F | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	}
	return 0x000F | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
}

func asmFlds(a *Assembler, si *streamItem) (uint16, error) {
	if len(si.args) == 2 && si.args[0].Type == ArgFPUL && si.args[1].Type == ArgFRReg {
		return 0xF01D | n(si.args[1].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmFsts(a *Assembler, si *streamItem) (uint16, error) {
	if len(si.args) == 2 && si.args[0].Type == ArgFRReg && si.args[1].Type == ArgFPUL {
		return 0xF00D | n(si.args[0].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmFloat(a *Assembler, si *streamItem) (uint16, error) {
	if len(si.args) == 2 && isFloatReg(si.args[0].Type) && si.args[1].Type == ArgFPUL {
		return 0xF02D | n(si.args[0].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmFtrc(a *Assembler, si *streamItem) (uint16, error) {
	if len(si.args) == 2 && si.args[0].Type == ArgFPUL && isFloatReg(si.args[1].Type) {
		return 0xF03D | n(si.args[1].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmFmovS(a *Assembler, si *streamItem) (uint16, error) {
	switch {
	case si.argTypesMatch(ArgFRReg, ArgRegR0MemRef):
		return 0xF006 | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	case si.argTypesMatch(ArgRegR0MemRef, ArgFRReg):
		return 0xF007 | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	case si.argTypesMatch(ArgFRReg, ArgMemRef):
		return 0xF008 | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	case si.argTypesMatch(ArgFRReg, ArgPostincMemRef):
		return 0xF009 | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	case si.argTypesMatch(ArgMemRef, ArgFRReg):
		return 0xF00A | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	case si.argTypesMatch(ArgPredecMemRef, ArgFRReg):
		return 0xF00B | n(si.args[0].Reg) | mm(si.args[1].Reg), nil
	}
	return 0, si.invalidArgs()
}

func asmFmac(a *Assembler, si *streamItem) (uint16, error) {
	if len(si.args) == 3 && si.args[0].Type == ArgFRReg &&
		si.args[1].Type == ArgFRReg && si.args[1].Reg == 0 &&
		si.args[2].Type == ArgFRReg {
		return 0xF00E | n(si.args[0].Reg) | mm(si.args[2].Reg), nil
	}
	return 0, si.invalidArgs()
}
