// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package m68k

import (
	"fmt"
	"strings"

	"github.com/saferwall/rsrcfork/binary"
)

// JumpTableEntry is one slot of a CODE 0 jump table. An entry with a zero
// resource id is not valid.
type JumpTableEntry struct {
	CodeResourceID int16
	Offset         uint16
}

// ValueType describes the operand type of an address reference; the values
// correspond to the source-specifier field in float opcodes.
type ValueType uint8

// Operand value types.
const (
	ValueLong ValueType = iota
	ValueFloat
	ValueExtended
	ValuePackedDecimalReal
	ValueWord
	ValueDouble
	ValueByte
	ValueInvalid
)

// addressDasmType distinguishes data references from jump and call targets
// so the right label kind gets emitted.
type addressDasmType uint8

const (
	dasmData addressDasmType = iota
	dasmJump
	dasmFunctionCall
)

// DisassemblyState carries the cursor and cross-instruction context for a
// disassembly run.
type DisassemblyState struct {
	r                  *binary.Reader
	startAddress       uint32
	opcodeStartAddress uint32
	branchTargets      map[uint32]bool // value: true = function call
	prevWasReturn      bool
	isMacEnvironment   bool
	jumpTable          []JumpTableEntry
}

// NewDisassemblyState prepares a state over data beginning at startAddress.
func NewDisassemblyState(data []byte, startAddress uint32, isMacEnvironment bool,
	jumpTable []JumpTableEntry) *DisassemblyState {
	return &DisassemblyState{
		r:                  binary.NewReader(data),
		startAddress:       startAddress,
		opcodeStartAddress: startAddress,
		branchTargets:      make(map[uint32]bool),
		isMacEnvironment:   isMacEnvironment,
		jumpTable:          jumpTable,
	}
}

func (s *DisassemblyState) addBranchTarget(addr uint32, isCall bool) {
	if isCall {
		s.branchTargets[addr] = true
	} else if _, ok := s.branchTargets[addr]; !ok {
		s.branchTargets[addr] = false
	}
}

func op(mnemonic, format string, a ...interface{}) string {
	return fmt.Sprintf("%-10s ", mnemonic) + fmt.Sprintf(format, a...)
}

func formatImmediate(v uint32) string {
	return fmt.Sprintf("0x%X", v)
}

var sizeSuffixes = [3]string{".b", ".w", ".l"}

func dasmSizeFromField(f uint8) (uint8, string) {
	switch f {
	case 0:
		return SizeByte, ".b"
	case 1:
		return SizeWord, ".w"
	case 2:
		return SizeLong, ".l"
	}
	return 0, ".?"
}

func valueTypeForSize(size uint8) ValueType {
	switch size {
	case SizeByte:
		return ValueByte
	case SizeWord:
		return ValueWord
	default:
		return ValueLong
	}
}

// estimatePString formats the Pascal string at addr when its bytes look
// like printable text.
func estimatePString(r *binary.Reader, off int) string {
	length, err := r.PGetU8(off)
	if err != nil || length < 2 {
		return ""
	}
	data, err := r.PRead(off+1, int(length))
	if err != nil {
		return ""
	}
	return formatTextGuess(data, false)
}

// estimateCString formats the zero-terminated string at addr when its bytes
// look like printable text.
func estimateCString(r *binary.Reader, off int) string {
	var data []byte
	for i := 0; len(data) < 0x20; i++ {
		ch, err := r.PGetU8(off + i)
		if err != nil {
			return ""
		}
		if ch == 0 {
			return formatTextGuess(data, false)
		}
		data = append(data, ch)
	}
	return formatTextGuess(data, true)
}

func formatTextGuess(data []byte, truncated bool) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, ch := range data {
		switch {
		case ch == '\r':
			b.WriteString("\\r")
		case ch == '\n':
			b.WriteString("\\n")
		case ch == '\t':
			b.WriteString("\\t")
		case ch == '\'':
			b.WriteString("\\'")
		case ch == '"':
			b.WriteString("\\\"")
		case ch >= 0x20 && ch <= 0x7E:
			b.WriteByte(ch)
		default:
			return ""
		}
	}
	b.WriteByte('"')
	if truncated {
		b.WriteString("...")
	}
	return b.String()
}

// dasmRegMask formats a movem register mask. When reverse is set (the
// predecrement form) bit 15 is D0.
func dasmRegMask(mask uint16, reverse bool) string {
	if mask == 0 {
		return "<none>"
	}
	var regs []string
	if reverse {
		for i := 0; i < 8; i++ {
			if mask&(0x8000>>i) != 0 {
				regs = append(regs, fmt.Sprintf("D%d", i))
			}
		}
		for i := 0; i < 8; i++ {
			if mask&(0x0080>>i) != 0 {
				regs = append(regs, fmt.Sprintf("A%d", i))
			}
		}
	} else {
		for i := 0; i < 8; i++ {
			if mask&(1<<i) != 0 {
				regs = append(regs, fmt.Sprintf("D%d", i))
			}
		}
		for i := 0; i < 8; i++ {
			if mask&(0x0100<<i) != 0 {
				regs = append(regs, fmt.Sprintf("A%d", i))
			}
		}
	}
	return strings.Join(regs, ",")
}

// dasmAddressExtension formats a mode-6 or PC-indexed extension word. An
// an value of -1 means the base register is PC.
func dasmAddressExtension(r *binary.Reader, ext uint16, an int8) string {
	indexIsA := ext&0x8000 != 0
	indexReg := uint8((ext >> 12) & 7)
	indexIsWord := ext&0x0800 == 0
	scale := 1 << ((ext >> 9) & 3)

	base := "PC"
	if an >= 0 {
		base = fmt.Sprintf("A%d", an)
	}
	indexSuffix := ""
	if indexIsWord {
		indexSuffix = ".w"
	}
	regChar := 'D'
	if indexIsA {
		regChar = 'A'
	}

	if ext&0x0100 == 0 {
		// Brief extension word.
		ret := "[" + base
		if scale != 1 {
			ret += fmt.Sprintf(" + %c%d%s * %d", regChar, indexReg, indexSuffix, scale)
		} else {
			ret += fmt.Sprintf(" + %c%d%s", regChar, indexReg, indexSuffix)
		}
		offset := int8(ext & 0xFF)
		if offset > 0 {
			return ret + fmt.Sprintf(" + 0x%X]", offset)
		} else if offset < 0 {
			return ret + fmt.Sprintf(" - 0x%X]", -int32(offset))
		}
		return ret + "]"
	}

	// Full extension word.
	includeBase := ext&0x0080 == 0
	includeIndex := ext&0x0040 == 0
	baseDispSize := uint8((ext >> 4) & 3)
	indexIndirect := uint8(ext & 7)

	if indexIndirect == 4 {
		return "<<invalid full ext with I/IS == 4>>"
	}

	readDisp := func(size uint8) int32 {
		switch size {
		case 2:
			v, err := r.GetS16BE()
			if err != nil {
				return 0
			}
			return int32(v)
		case 3:
			v, err := r.GetS32BE()
			if err != nil {
				return 0
			}
			return v
		}
		return 0
	}
	appendDisp := func(ret string, disp int32, includePrev bool) string {
		if disp > 0 {
			if includePrev {
				return ret + fmt.Sprintf(" + 0x%X", disp)
			}
			return ret + fmt.Sprintf("0x%X", disp)
		} else if disp < 0 {
			if includePrev {
				return ret + fmt.Sprintf(" - 0x%X", -disp)
			}
			return ret + fmt.Sprintf("-0x%X", -disp)
		}
		return ret
	}
	indexStr := func() string {
		scaleStr := ""
		if scale != 1 {
			scaleStr = fmt.Sprintf(" * %d", scale)
		}
		return fmt.Sprintf(" + %c%d%s", regChar, indexReg, scaleStr)
	}

	if indexIndirect == 0 {
		ret := "["
		if includeBase {
			ret += base
		}
		if baseDispSize == 0 {
			ret += " + <<invalid base displacement size>>"
		} else {
			ret = appendDisp(ret, readDisp(baseDispSize), includeBase)
		}
		if includeIndex {
			ret += indexStr()
		}
		return ret + "]"
	}

	if !includeIndex && indexIndirect > 4 {
		return fmt.Sprintf("<<invalid full ext with IS == 1 and I/IS == %d>>", indexIndirect)
	}

	ret := "[["
	if includeBase {
		ret += base
	}
	if baseDispSize == 0 {
		ret += " + <<invalid base displacement size>>"
	} else {
		ret = appendDisp(ret, readDisp(baseDispSize), includeBase)
	}
	if includeIndex {
		if indexIndirect < 4 {
			ret += indexStr() + "]"
		} else {
			ret += "]" + indexStr()
		}
	} else {
		ret += "]"
	}

	outerMode := indexIndirect & 3
	if outerMode == 0 {
		ret += " + <<invalid outer displacement mode>>"
	} else {
		outer := readDisp(outerMode)
		if outer > 0 {
			ret += fmt.Sprintf(" + 0x%X", outer)
		} else if outer < 0 {
			ret += fmt.Sprintf(" - 0x%X", -outer)
		}
	}
	return ret + "]"
}

// dasmAddress formats an effective address, consuming any extension words.
// PC-relative data references get a comment with the referenced value and
// recognized string contents; jump and call targets are collected for the
// labeling pass.
func dasmAddress(s *DisassemblyState, m, xn uint8, vt ValueType, dt addressDasmType) string {
	switch m {
	case 0:
		return fmt.Sprintf("D%d", xn)
	case 1:
		return fmt.Sprintf("A%d", xn)
	case 2:
		return fmt.Sprintf("[A%d]", xn)
	case 3:
		return fmt.Sprintf("[A%d]+", xn)
	case 4:
		return fmt.Sprintf("-[A%d]", xn)
	case 5:
		dispU, err := s.r.GetU16BE()
		if err != nil {
			return "<<incomplete>>"
		}
		disp := int16(dispU)
		if disp < 0 {
			return fmt.Sprintf("[A%d - 0x%X]", xn, -int32(disp))
		}
		// The jump table lives at A5: positive displacements aligned to a
		// jump-table slot get the export label, and the CODE target when a
		// jump table was supplied.
		if xn == 5 && disp >= 0x20 && disp&7 == 2 {
			exportNum := (int(disp) - 0x22) / 8
			if s.jumpTable != nil {
				if exportNum < len(s.jumpTable) {
					entry := s.jumpTable[exportNum]
					return fmt.Sprintf("[A%d + 0x%X /* export_%d, CODE:%d @ %08X */]",
						xn, disp, exportNum, entry.CodeResourceID, entry.Offset)
				}
				return fmt.Sprintf("[A%d + 0x%X /* export_%d, out of jump table range */]",
					xn, disp, exportNum)
			}
			return fmt.Sprintf("[A%d + 0x%X /* export_%d */]", xn, disp, exportNum)
		}
		return fmt.Sprintf("[A%d + 0x%X]", xn, disp)
	case 6:
		ext, err := s.r.GetU16BE()
		if err != nil {
			return "<<incomplete>>"
		}
		return dasmAddressExtension(s.r, ext, int8(xn))
	case 7:
		switch xn {
		case 0:
			w, err := s.r.GetU16BE()
			if err != nil {
				return "<<incomplete>>"
			}
			address := uint32(int32(int16(w)))
			if name, ok := NameForLowMemGlobal(address); ok {
				return fmt.Sprintf("[0x%08X /* %s */]", address, name)
			}
			return fmt.Sprintf("[0x%08X]", address)
		case 1:
			address, err := s.r.GetU32BE()
			if err != nil {
				return "<<incomplete>>"
			}
			if name, ok := NameForLowMemGlobal(address); ok {
				return fmt.Sprintf("[0x%08X /* %s */]", address, name)
			}
			return fmt.Sprintf("[0x%08X]", address)
		case 2:
			dispU, err := s.r.GetU16BE()
			if err != nil {
				return "<<incomplete>>"
			}
			disp := int16(dispU)
			target := s.opcodeStartAddress + 2 + uint32(int32(disp))
			if dt != dasmData && target&1 == 0 {
				s.addBranchTarget(target, dt == dasmFunctionCall)
			}
			if disp == 0 {
				return fmt.Sprintf("[PC /* %08X */]", target)
			}
			offsetStr := fmt.Sprintf(" + 0x%X", disp)
			if disp < 0 {
				offsetStr = fmt.Sprintf(" - 0x%X", -int32(disp))
			}
			comment := []string{fmt.Sprintf("%08X", target)}
			if dt == dasmData {
				// Values are probably not useful for jumps or calls.
				off := int(target - s.startAddress)
				switch vt {
				case ValueByte:
					if v, err := s.r.PGetU8(off); err == nil {
						comment = append(comment, "value "+formatImmediate(uint32(v)))
					}
				case ValueWord:
					if v, err := s.r.PGetU16BE(off); err == nil {
						comment = append(comment, "value "+formatImmediate(uint32(v)))
					}
				case ValueLong:
					if v, err := s.r.PGetU32BE(off); err == nil {
						comment = append(comment, "value "+formatImmediate(v))
					}
				}
				if ps := estimatePString(s.r, off); ps != "" {
					comment = append(comment, "pstring "+ps)
				} else if cs := estimateCString(s.r, off); cs != "" {
					comment = append(comment, "cstring "+cs)
				}
			}
			return fmt.Sprintf("[PC%s /* %s */]", offsetStr, strings.Join(comment, ", "))
		case 3:
			ext, err := s.r.GetU16BE()
			if err != nil {
				return "<<incomplete>>"
			}
			return dasmAddressExtension(s.r, ext, -1)
		case 4:
			switch vt {
			case ValueByte:
				w, err := s.r.GetU16BE()
				if err != nil {
					return "<<incomplete>>"
				}
				return formatImmediate(uint32(w & 0xFF))
			case ValueWord:
				w, err := s.r.GetU16BE()
				if err != nil {
					return "<<incomplete>>"
				}
				return formatImmediate(uint32(w))
			case ValueLong:
				l, err := s.r.GetU32BE()
				if err != nil {
					return "<<incomplete>>"
				}
				return formatImmediate(l)
			default:
				return "<<unsupported immediate type>>"
			}
		}
		return "<<invalid special address>>"
	}
	return "<<invalid address>>"
}

var conditionNames = [16]string{
	"t ", "f ", "hi", "ls", "cc", "cs", "ne", "eq",
	"vc", "vs", "pl", "mi", "ge", "lt", "gt", "le"}

func dasmUnimplemented(s *DisassemblyState) string {
	w, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	return op(".unimplemented", "%04X", w)
}

func dasm0123(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	i := uint8((opcode >> 12) & 3)
	if i != 0 {
		var size uint8
		switch i {
		case 1:
			size = SizeByte
		case 3:
			size = SizeWord
		case 2:
			size = SizeLong
		}
		vt := valueTypeForSize(size)
		src := dasmAddress(s, uint8((opcode>>3)&7), uint8(opcode&7), vt, dasmData)
		destM := uint8((opcode >> 6) & 7)
		dest := dasmAddress(s, destM, uint8((opcode>>9)&7), vt, dasmData)
		mn := "move" + sizeSuffixes[size>>1]
		if destM == 1 {
			mn = "movea" + sizeSuffixes[size>>1]
		}
		return op(mn, "%s, %s", dest, src)
	}

	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)
	opField := uint8((opcode >> 9) & 7)
	bitOpNames := [4]string{"btst", "bchg", "bclr", "bset"}

	if opcode&0x0100 != 0 {
		if m == 1 {
			// movep
			dispU, err := s.r.GetU16BE()
			if err != nil {
				return ".incomplete"
			}
			sizeSuffix := ".w"
			if opcode&0x0040 != 0 {
				sizeSuffix = ".l"
			}
			if opcode&0x0080 != 0 {
				return op("movep"+sizeSuffix, "[A%d + 0x%X], D%d", xn, int16(dispU), opField)
			}
			return op("movep"+sizeSuffix, "D%d, [A%d + 0x%X]", opField, xn, int16(dispU))
		}
		addr := dasmAddress(s, m, xn, ValueByte, dasmData)
		return op(bitOpNames[(opcode>>6)&3], "%s, D%d", addr, opField)
	}

	switch opField {
	case 0, 1, 2, 3, 5, 6:
		names := [8]string{"ori", "andi", "subi", "addi", "", "eori", "cmpi", ""}
		size, suffix := dasmSizeFromField(uint8((opcode >> 6) & 3))
		if size == 0 {
			return op(".invalid", "%04X", opcode)
		}
		var imm uint32
		if size == SizeLong {
			l, err := s.r.GetU32BE()
			if err != nil {
				return ".incomplete"
			}
			imm = l
		} else {
			w, err := s.r.GetU16BE()
			if err != nil {
				return ".incomplete"
			}
			imm = uint32(truncate(uint32(w), size))
		}
		// Special cases: ori/andi/eori to CCR or SR.
		if m == 7 && xn == 4 {
			target := "CCR"
			if size == SizeWord {
				target = "SR"
			}
			switch opField {
			case 0, 1, 5:
				return op(names[opField]+suffix, "%s, %s", target, formatImmediate(imm))
			}
		}
		addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
		return op(names[opField]+suffix, "%s, %s", addr, formatImmediate(imm))

	case 4:
		imm, err := s.r.GetU16BE()
		if err != nil {
			return ".incomplete"
		}
		addr := dasmAddress(s, m, xn, ValueByte, dasmData)
		return op(bitOpNames[(opcode>>6)&3], "%s, %s", addr, formatImmediate(uint32(imm)))
	}
	return op(".invalid", "%04X", opcode)
}

func dasm4(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	switch {
	case opcode == 0x4E70:
		return "reset"
	case opcode == 0x4E71:
		return "nop"
	case opcode == 0x4E72:
		w, err := s.r.GetU16BE()
		if err != nil {
			return ".incomplete"
		}
		return op("stop", "%s", formatImmediate(uint32(w)))
	case opcode == 0x4E73:
		s.prevWasReturn = true
		return "rte"
	case opcode == 0x4E75:
		s.prevWasReturn = true
		return "rts"
	case opcode == 0x4E76:
		return "trapv"
	case opcode == 0x4E77:
		s.prevWasReturn = true
		return "rtr"
	case opcode&0xFFF0 == 0x4E40:
		return op("trap", "%d", opcode&0xF)
	case opcode&0xFFF8 == 0x4E50:
		w, err := s.r.GetU16BE()
		if err != nil {
			return ".incomplete"
		}
		return op("link", "A%d, %s", xn, formatImmediate(uint32(w)))
	case opcode&0xFFF8 == 0x4E58:
		return op("unlk", "A%d", xn)
	case opcode&0xFFF8 == 0x4E60:
		return op("move", "USP, A%d", xn)
	case opcode&0xFFF8 == 0x4E68:
		return op("move", "A%d, USP", xn)
	case opcode&0xFFC0 == 0x4EC0:
		addr := dasmAddress(s, m, xn, ValueLong, dasmJump)
		s.prevWasReturn = true
		return op("jmp", "%s", addr)
	case opcode&0xFFC0 == 0x4E80:
		addr := dasmAddress(s, m, xn, ValueLong, dasmFunctionCall)
		return op("jsr", "%s", addr)
	case opcode&0xFFF8 == 0x4840:
		return op("swap.w", "D%d", xn)
	case opcode&0xFFC0 == 0x4840:
		addr := dasmAddress(s, m, xn, ValueLong, dasmData)
		return op("pea.l", "%s", addr)
	case opcode&0xF1C0 == 0x41C0:
		addr := dasmAddress(s, m, xn, ValueLong, dasmData)
		return op("lea.l", "A%d, %s", (opcode>>9)&7, addr)
	case opcode&0xFFF8 == 0x4880:
		return op("ext.w", "D%d", xn)
	case opcode&0xFFF8 == 0x48C0:
		return op("ext.l", "D%d", xn)
	case opcode&0xFB80 == 0x4880:
		mask, err := s.r.GetU16BE()
		if err != nil {
			return ".incomplete"
		}
		suffix := ".w"
		if opcode&0x0040 != 0 {
			suffix = ".l"
		}
		addr := dasmAddress(s, m, xn, valueTypeForSize(SizeWord), dasmData)
		if opcode&0x0400 == 0 {
			return op("movem"+suffix, "%s, %s", addr, dasmRegMask(mask, m == 4))
		}
		return op("movem"+suffix, "%s, %s", dasmRegMask(mask, false), addr)
	case opcode&0xFF00 == 0x4000 || opcode&0xFF00 == 0x4200 ||
		opcode&0xFF00 == 0x4400 || opcode&0xFF00 == 0x4600:
		names := map[uint16]string{0x4000: "negx", 0x4200: "clr", 0x4400: "neg", 0x4600: "not"}
		name := names[opcode&0xFF00]
		sizeField := uint8((opcode >> 6) & 3)
		if sizeField == 3 {
			// move from SR / to CCR / to SR
			switch opcode & 0xFFC0 {
			case 0x40C0:
				addr := dasmAddress(s, m, xn, ValueWord, dasmData)
				return op("move.w", "%s, SR", addr)
			case 0x42C0:
				addr := dasmAddress(s, m, xn, ValueWord, dasmData)
				return op("move.w", "%s, CCR", addr)
			case 0x44C0:
				addr := dasmAddress(s, m, xn, ValueWord, dasmData)
				return op("move.w", "CCR, %s", addr)
			case 0x46C0:
				addr := dasmAddress(s, m, xn, ValueWord, dasmData)
				return op("move.w", "SR, %s", addr)
			}
			return op(".invalid", "%04X", opcode)
		}
		size, suffix := dasmSizeFromField(sizeField)
		addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
		return op(name+suffix, "%s", addr)
	case opcode&0xFFC0 == 0x4AC0:
		addr := dasmAddress(s, m, xn, ValueByte, dasmData)
		return op("tas.b", "%s", addr)
	case opcode&0xFF00 == 0x4A00:
		size, suffix := dasmSizeFromField(uint8((opcode >> 6) & 3))
		if size == 0 {
			return op(".invalid", "%04X", opcode)
		}
		addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
		return op("tst"+suffix, "%s", addr)
	case opcode&0xFFC0 == 0x4880:
		return op(".invalid", "%04X", opcode)
	}
	return op(".invalid", "%04X", opcode)
}

func dasm5(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opcode&0x00C0 == 0x00C0 {
		cond := conditionNames[(opcode>>8)&0xF]
		if m == 1 {
			// dbcc: always emits a label for its target.
			dispU, err := s.r.GetU16BE()
			if err != nil {
				return ".incomplete"
			}
			target := s.opcodeStartAddress + 2 + uint32(int32(int16(dispU)))
			s.addBranchTarget(target, false)
			return op("db"+strings.TrimSpace(cond), "D%d, label%08X", xn, target)
		}
		addr := dasmAddress(s, m, xn, ValueByte, dasmData)
		return op("s"+strings.TrimSpace(cond)+".b", "%s", addr)
	}

	size, suffix := dasmSizeFromField(uint8((opcode >> 6) & 3))
	if size == 0 {
		return op(".invalid", "%04X", opcode)
	}
	value := (opcode >> 9) & 7
	if value == 0 {
		value = 8
	}
	name := "addq"
	if opcode&0x0100 != 0 {
		name = "subq"
	}
	addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
	return op(name+suffix, "%s, %d", addr, value)
}

func dasm6(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	cond := uint8((opcode >> 8) & 0xF)
	disp := int32(int8(opcode & 0xFF))
	base := s.opcodeStartAddress + 2
	switch disp {
	case 0:
		w, err := s.r.GetU16BE()
		if err != nil {
			return ".incomplete"
		}
		disp = int32(int16(w))
	case -1:
		l, err := s.r.GetU32BE()
		if err != nil {
			return ".incomplete"
		}
		disp = int32(l)
	}
	target := base + uint32(disp)

	var name string
	switch cond {
	case 0:
		name = "bra"
	case 1:
		name = "bsr"
	default:
		name = "b" + strings.TrimSpace(conditionNames[cond])
	}
	if target&1 == 0 {
		s.addBranchTarget(target, cond == 1)
		prefix := "label"
		if cond == 1 {
			prefix = "fn"
		}
		return op(name, "%s%08X", prefix, target)
	}
	return op(name, "0x%08X // misaligned branch target", target)
}

func dasm7(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	if opcode&0x0100 != 0 {
		return op(".invalid", "%04X", opcode)
	}
	return op("moveq.l", "D%d, 0x%02X", (opcode>>9)&7, opcode&0xFF)
}

func dasm8(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	reg := (opcode >> 9) & 7
	opmode := uint8((opcode >> 6) & 7)
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 {
		name := "divu.w"
		if opmode == 7 {
			name = "divs.w"
		}
		addr := dasmAddress(s, m, xn, ValueWord, dasmData)
		return op(name, "D%d, %s", reg, addr)
	}
	size, suffix := dasmSizeFromField(opmode & 3)
	if size == 0 {
		return op(".invalid", "%04X", opcode)
	}
	addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
	if opmode < 4 {
		return op("or"+suffix, "D%d, %s", reg, addr)
	}
	return op("or"+suffix, "%s, D%d", addr, reg)
}

func dasm9D(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	name := "sub"
	if opcode>>12 == 0xD {
		name = "add"
	}
	reg := (opcode >> 9) & 7
	opmode := uint8((opcode >> 6) & 7)
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 {
		suffix := ".w"
		size := uint8(SizeWord)
		if opmode == 7 {
			suffix = ".l"
			size = SizeLong
		}
		addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
		return op(name+"a"+suffix, "A%d, %s", reg, addr)
	}
	size, suffix := dasmSizeFromField(opmode & 3)
	if size == 0 {
		return op(".invalid", "%04X", opcode)
	}
	if opmode >= 4 && m <= 1 {
		if m == 0 {
			return op(name+"x"+suffix, "D%d, D%d", reg, xn)
		}
		return op(name+"x"+suffix, "-[A%d], -[A%d]", reg, xn)
	}
	addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
	if opmode < 4 {
		return op(name+suffix, "D%d, %s", reg, addr)
	}
	return op(name+suffix, "%s, D%d", addr, reg)
}

func dasmA(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	if !s.isMacEnvironment {
		return op(".invalid", "0x%04X", opcode)
	}

	var trapNumber uint16
	autoPop := false
	var flags uint8
	if opcode&0x0800 != 0 {
		trapNumber = opcode & 0x0BFF
		autoPop = opcode&0x0400 != 0
	} else {
		trapNumber = opcode & 0x00FF
		flags = uint8((opcode >> 8) & 7)
	}

	ret := "syscall    "
	if info := InfoForTrap(trapNumber, flags); info != nil {
		ret += info.Name
	} else {
		ret += fmt.Sprintf("0x%03X", trapNumber)
	}
	if flags != 0 {
		ret += fmt.Sprintf(", flags=%d", flags)
	}
	if autoPop {
		ret += ", auto_pop"
	}
	return ret
}

func dasmB(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	reg := (opcode >> 9) & 7
	opmode := uint8((opcode >> 6) & 7)
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 {
		suffix := ".w"
		size := uint8(SizeWord)
		if opmode == 7 {
			suffix = ".l"
			size = SizeLong
		}
		addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
		return op("cmpa"+suffix, "A%d, %s", reg, addr)
	}
	size, suffix := dasmSizeFromField(opmode & 3)
	if size == 0 {
		return op(".invalid", "%04X", opcode)
	}
	if opmode < 4 {
		addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
		return op("cmp"+suffix, "D%d, %s", reg, addr)
	}
	if m == 1 {
		return op("cmpm"+suffix, "[A%d]+, [A%d]+", reg, xn)
	}
	addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
	return op("eor"+suffix, "%s, D%d", addr, reg)
}

func dasmC(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	reg := (opcode >> 9) & 7
	opmode := uint8((opcode >> 6) & 7)
	m := uint8((opcode >> 3) & 7)
	xn := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 {
		name := "mulu.w"
		if opmode == 7 {
			name = "muls.w"
		}
		addr := dasmAddress(s, m, xn, ValueWord, dasmData)
		return op(name, "D%d, %s", reg, addr)
	}
	if opmode >= 4 && m <= 1 {
		switch {
		case opmode == 5 && m == 0:
			return op("exg", "D%d, D%d", reg, xn)
		case opmode == 5 && m == 1:
			return op("exg", "A%d, A%d", reg, xn)
		case opmode == 6 && m == 1:
			return op("exg", "D%d, A%d", reg, xn)
		case opmode == 4 && m == 0:
			return op("abcd", "D%d, D%d", xn, reg)
		case opmode == 4 && m == 1:
			return op("abcd", "-[A%d], -[A%d]", xn, reg)
		}
	}
	size, suffix := dasmSizeFromField(opmode & 3)
	if size == 0 {
		return op(".invalid", "%04X", opcode)
	}
	addr := dasmAddress(s, m, xn, valueTypeForSize(size), dasmData)
	if opmode < 4 {
		return op("and"+suffix, "D%d, %s", reg, addr)
	}
	return op("and"+suffix, "%s, D%d", addr, reg)
}

func dasmE(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	names := [4][2]string{
		{"asr", "asl"}, {"lsr", "lsl"}, {"roxr", "roxl"}, {"ror", "rol"}}
	dir := 0
	if opcode&0x0100 != 0 {
		dir = 1
	}
	sizeField := uint8((opcode >> 6) & 3)
	if sizeField == 3 {
		kind := (opcode >> 9) & 3
		m := uint8((opcode >> 3) & 7)
		xn := uint8(opcode & 7)
		addr := dasmAddress(s, m, xn, ValueWord, dasmData)
		return op(names[kind][dir]+".w", "%s", addr)
	}
	_, suffix := dasmSizeFromField(sizeField)
	kind := (opcode >> 3) & 3
	xn := opcode & 7
	if opcode&0x0020 != 0 {
		return op(names[kind][dir]+suffix, "D%d, D%d", xn, (opcode>>9)&7)
	}
	count := (opcode >> 9) & 7
	if count == 0 {
		count = 8
	}
	return op(names[kind][dir]+suffix, "D%d, %d", xn, count)
}

func dasmF(s *DisassemblyState) string {
	opcode, err := s.r.GetU16BE()
	if err != nil {
		return ".incomplete"
	}
	if s.isMacEnvironment {
		// F-line opcodes dispatch through the same trap mechanism on
		// classic systems.
		return op(".fline", "0x%04X", opcode)
	}
	return op(".invalid", "0x%04X", opcode)
}

func dasmDispatch(s *DisassemblyState, fnIndex uint8) string {
	switch fnIndex {
	case 0x0, 0x1, 0x2, 0x3:
		return dasm0123(s)
	case 0x4:
		return dasm4(s)
	case 0x5:
		return dasm5(s)
	case 0x6:
		return dasm6(s)
	case 0x7:
		return dasm7(s)
	case 0x8:
		return dasm8(s)
	case 0x9, 0xD:
		return dasm9D(s)
	case 0xA:
		return dasmA(s)
	case 0xB:
		return dasmB(s)
	case 0xC:
		return dasmC(s)
	case 0xE:
		return dasmE(s)
	case 0xF:
		return dasmF(s)
	}
	return dasmUnimplemented(s)
}
