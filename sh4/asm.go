// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sh4

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/saferwall/rsrcfork/binary"
)

// AssemblerError is a line-level assembly failure.
type AssemblerError struct {
	Line    int
	Message string
}

func (e *AssemblerError) Error() string {
	return fmt.Sprintf("(line %d) %s", e.Line, e.Message)
}

func asmErr(line int, format string, a ...interface{}) error {
	return &AssemblerError{Line: line, Message: fmt.Sprintf(format, a...)}
}

// AssembleResult is the output of a successful assembly.
type AssembleResult struct {
	Code         []byte
	LabelOffsets map[string]uint32
	MetadataKeys map[string]string
}

// GetIncludeFunc resolves the body of a .include directive by name.
type GetIncludeFunc func(name string) ([]byte, error)

// ArgType classifies one parsed assembler argument.
type ArgType int

// Argument types.
const (
	ArgUnknown ArgType = iota
	ArgIntReg          // r3
	ArgBankReg         // r3b
	ArgMemRef          // [r3]
	ArgPredecMemRef    // -[r3]
	ArgPostincMemRef   // [r3]+
	ArgRegR0MemRef     // [r3 + r0]
	ArgGBRR0MemRef     // [gbr + r0]
	ArgRegDispMemRef   // [r3 + disp]
	ArgGBRDispMemRef   // [gbr + disp]
	ArgPCMemRef        // [0x80001800] or [label]
	ArgPCRegOffset     // npc + r3 / label + r3
	ArgFRReg           // fr3
	ArgDRReg           // dr2
	ArgFVReg           // fv4
	ArgXDReg           // xd2
	ArgXMTRX           // xmtrx
	ArgImmediate       // 7, 0x10, -3
	ArgSR
	ArgGBR
	ArgVBR
	ArgDBR
	ArgSGR
	ArgSSR
	ArgSPC
	ArgPR
	ArgMACH
	ArgMACL
	ArgFPUL
	ArgFPSCR
	ArgT
	ArgBranchTarget // label
	ArgRaw          // .binary payload
)

// Arg is one parsed argument.
type Arg struct {
	Type  ArgType
	Reg   uint8
	Value int32
	Label string
}

var specialArgNames = map[string]ArgType{
	"sr": ArgSR, "gbr": ArgGBR, "vbr": ArgVBR, "dbr": ArgDBR,
	"sgr": ArgSGR, "ssr": ArgSSR, "spc": ArgSPC, "pr": ArgPR,
	"mach": ArgMACH, "macl": ArgMACL, "fpul": ArgFPUL, "fpscr": ArgFPSCR,
	"t": ArgT, "xmtrx": ArgXMTRX,
}

func parseRegNum(text string, max uint8) (uint8, bool) {
	n, err := strconv.ParseUint(text, 10, 8)
	if err != nil || uint8(n) > max {
		return 0, false
	}
	return uint8(n), true
}

func parseNumber(text string) (int32, bool) {
	neg := false
	if strings.HasPrefix(text, "-") {
		neg = true
		text = text[1:]
	}
	var v uint64
	var err error
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		v, err = strconv.ParseUint(text[2:], 16, 32)
	} else if text != "" && text[0] >= '0' && text[0] <= '9' {
		v, err = strconv.ParseUint(text, 10, 32)
	} else {
		return 0, false
	}
	if err != nil {
		return 0, false
	}
	if neg {
		return -int32(v), true
	}
	return int32(v), true
}

// parseArg classifies a single argument string. raw forces the .binary
// passthrough form.
func parseArg(text string, raw bool) (Arg, error) {
	if text == "" {
		return Arg{}, errors.New("argument text is blank")
	}
	if raw {
		return Arg{Type: ArgRaw, Label: text}, nil
	}

	if t, ok := specialArgNames[text]; ok {
		return Arg{Type: t}, nil
	}

	if strings.HasPrefix(text, "r") {
		body := text[1:]
		if strings.HasSuffix(body, "b") {
			if n, ok := parseRegNum(body[:len(body)-1], 7); ok {
				return Arg{Type: ArgBankReg, Reg: n}, nil
			}
		}
		if n, ok := parseRegNum(body, 15); ok {
			return Arg{Type: ArgIntReg, Reg: n}, nil
		}
	}
	for prefix, at := range map[string]ArgType{"fr": ArgFRReg, "dr": ArgDRReg,
		"fv": ArgFVReg, "xd": ArgXDReg} {
		if strings.HasPrefix(text, prefix) {
			if n, ok := parseRegNum(text[len(prefix):], 15); ok {
				if at != ArgFRReg && n&1 != 0 {
					return Arg{}, fmt.Errorf("odd register number in %q", text)
				}
				if at == ArgFVReg && n&3 != 0 {
					return Arg{}, fmt.Errorf("invalid vector register %q", text)
				}
				return Arg{Type: at, Reg: n}, nil
			}
		}
	}

	if v, ok := parseNumber(text); ok {
		return Arg{Type: ArgImmediate, Value: v}, nil
	}

	// Memory references.
	if strings.HasPrefix(text, "-[") && strings.HasSuffix(text, "]") {
		inner := strings.TrimSpace(text[2 : len(text)-1])
		if a, err := parseArg(inner, false); err == nil && a.Type == ArgIntReg {
			return Arg{Type: ArgPredecMemRef, Reg: a.Reg}, nil
		}
		return Arg{}, fmt.Errorf("invalid predecrement reference %q", text)
	}
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]+") {
		inner := strings.TrimSpace(text[1 : len(text)-2])
		if a, err := parseArg(inner, false); err == nil && a.Type == ArgIntReg {
			return Arg{Type: ArgPostincMemRef, Reg: a.Reg}, nil
		}
		return Arg{}, fmt.Errorf("invalid postincrement reference %q", text)
	}
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		inner := strings.TrimSpace(text[1 : len(text)-1])
		parts := strings.Split(inner, "+")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch len(parts) {
		case 1:
			if a, err := parseArg(parts[0], false); err == nil {
				switch a.Type {
				case ArgIntReg:
					return Arg{Type: ArgMemRef, Reg: a.Reg}, nil
				case ArgImmediate:
					return Arg{Type: ArgPCMemRef, Value: a.Value}, nil
				}
			}
			return Arg{Type: ArgPCMemRef, Label: parts[0]}, nil
		case 2:
			a0, err0 := parseArg(parts[0], false)
			a1, err1 := parseArg(parts[1], false)
			if err0 == nil && err1 == nil {
				switch {
				case a0.Type == ArgGBR && a1.Type == ArgIntReg && a1.Reg == 0:
					return Arg{Type: ArgGBRR0MemRef}, nil
				case a0.Type == ArgIntReg && a0.Reg == 0 && a1.Type == ArgGBR:
					return Arg{Type: ArgGBRR0MemRef}, nil
				case a0.Type == ArgGBR && a1.Type == ArgImmediate:
					return Arg{Type: ArgGBRDispMemRef, Value: a1.Value}, nil
				case a0.Type == ArgIntReg && a1.Type == ArgIntReg && a1.Reg == 0:
					return Arg{Type: ArgRegR0MemRef, Reg: a0.Reg}, nil
				case a0.Type == ArgIntReg && a0.Reg == 0 && a1.Type == ArgIntReg:
					return Arg{Type: ArgRegR0MemRef, Reg: a1.Reg}, nil
				case a0.Type == ArgIntReg && a1.Type == ArgImmediate:
					return Arg{Type: ArgRegDispMemRef, Reg: a0.Reg, Value: a1.Value}, nil
				}
			}
			if err1 == nil && a1.Type == ArgIntReg {
				return Arg{Type: ArgPCRegOffset, Reg: a1.Reg, Label: parts[0]}, nil
			}
		}
		return Arg{}, fmt.Errorf("invalid memory reference %q", text)
	}

	// label + rn (calls/bs computed forms).
	if idx := strings.Index(text, "+"); idx > 0 {
		left := strings.TrimSpace(text[:idx])
		right := strings.TrimSpace(text[idx+1:])
		if a, err := parseArg(right, false); err == nil && a.Type == ArgIntReg {
			return Arg{Type: ArgPCRegOffset, Reg: a.Reg, Label: left}, nil
		}
	}

	return Arg{Type: ArgBranchTarget, Label: text}, nil
}

// streamItem is one line of assembly: an opcode plus parsed arguments.
type streamItem struct {
	offset  uint32
	lineNum int
	opName  string
	args    []Arg
}

func (si *streamItem) argTypesMatch(types ...ArgType) bool {
	if len(si.args) != len(types) {
		return false
	}
	for i, t := range types {
		if si.args[i].Type != t {
			return false
		}
	}
	return true
}

func (si *streamItem) invalidArgs() error {
	return asmErr(si.lineNum, "invalid arguments to %s", si.opName)
}

// Assembler holds the two-pass assembly state.
type Assembler struct {
	startAddress uint32
	stream       []streamItem
	labelOffsets map[string]uint32
	includes     map[string][]byte
	metadataKeys map[string]string
	code         *binary.Writer
}

// Assemble assembles a line-oriented source text. getInclude resolves
// .include directives and may be nil if the source uses none.
func Assemble(text string, getInclude GetIncludeFunc, startAddress uint32) (*AssembleResult, error) {
	a := &Assembler{
		startAddress: startAddress,
		labelOffsets: make(map[string]uint32),
		includes:     make(map[string][]byte),
		metadataKeys: make(map[string]string),
		code:         binary.NewWriter(),
	}
	if err := a.assemble(text, getInclude); err != nil {
		return nil, err
	}
	return &AssembleResult{
		Code:         a.code.Bytes(),
		LabelOffsets: a.labelOffsets,
		MetadataKeys: a.metadataKeys,
	}, nil
}

func stripComment(line string) string {
	cut := len(line)
	if i := strings.Index(line, "//"); i >= 0 && i < cut {
		cut = i
	}
	if i := strings.Index(line, "#"); i >= 0 && i < cut {
		cut = i
	}
	if i := strings.Index(line, ";"); i >= 0 && i < cut {
		cut = i
	}
	return line[:cut]
}

func (a *Assembler) assemble(text string, getInclude GetIncludeFunc) error {
	// First pass: tokenize, compute offsets, collect labels and includes.
	var offset uint32
	for lineNum, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(stripComment(rawLine))
		lineNum++
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, ":") {
			label := strings.TrimSpace(line[:len(line)-1])
			if _, dup := a.labelOffsets[label]; dup {
				return asmErr(lineNum, "duplicate label: %s", label)
			}
			a.labelOffsets[label] = offset
			continue
		}

		opName := line
		argsStr := ""
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			opName = line[:i]
			argsStr = strings.TrimSpace(line[i+1:])
		}

		if opName == ".meta" {
			key, value, found := strings.Cut(argsStr, "=")
			if found {
				data, err := parseDataString(value)
				if err != nil {
					return asmErr(lineNum, "bad .meta value: %v", err)
				}
				a.metadataKeys[key] = string(data)
			} else {
				a.metadataKeys[argsStr] = ""
			}
			continue
		}

		var args []Arg
		if argsStr != "" {
			if opName == ".binary" {
				arg, err := parseArg(argsStr, true)
				if err != nil {
					return asmErr(lineNum, "%v", err)
				}
				args = append(args, arg)
			} else {
				for _, argStr := range strings.Split(argsStr, ",") {
					arg, err := parseArg(strings.TrimSpace(argStr), false)
					if err != nil {
						return asmErr(lineNum, "%v", err)
					}
					args = append(args, arg)
				}
			}
		}

		si := streamItem{offset: offset, lineNum: lineNum, opName: opName, args: args}
		a.stream = append(a.stream, si)

		switch opName {
		case ".include":
			if !si.argTypesMatch(ArgBranchTarget) {
				return si.invalidArgs()
			}
			name := si.args[0].Label
			contents, cached := a.includes[name]
			if !cached {
				if getInclude == nil {
					return asmErr(lineNum, "includes are not available")
				}
				var err error
				contents, err = getInclude(name)
				if err != nil {
					return asmErr(lineNum, "failed to get include data: %v", err)
				}
				a.includes[name] = contents
			}
			offset += uint32(len(contents)+1) &^ 1
		case ".align":
			if !si.argTypesMatch(ArgImmediate) {
				return si.invalidArgs()
			}
			alignment := uint32(si.args[0].Value)
			if alignment == 0 || alignment&(alignment-1) != 0 {
				return asmErr(lineNum, ".align argument must be a power of two")
			}
			offset = (offset + alignment - 1) &^ (alignment - 1)
		case ".data", ".offsetof":
			offset += 4
		case ".binary":
			if !si.argTypesMatch(ArgRaw) {
				return si.invalidArgs()
			}
			data, err := parseDataString(si.args[0].Label)
			if err != nil {
				return asmErr(lineNum, "bad .binary data: %v", err)
			}
			offset += uint32(len(data)+1) &^ 1
		default:
			offset += 2
		}
	}

	// Second pass: emit.
	for i := range a.stream {
		si := &a.stream[i]
		switch si.opName {
		case ".include":
			contents := a.includes[si.args[0].Label]
			a.code.Write(contents)
			if a.code.Size()&1 != 0 {
				a.code.PutU8(0)
			}
		case ".align":
			alignment := int(si.args[0].Value)
			a.code.ExtendTo((a.code.Size() + alignment - 1) &^ (alignment - 1))
		case ".data":
			if !si.argTypesMatch(ArgImmediate) {
				return si.invalidArgs()
			}
			a.code.PutU32LE(uint32(si.args[0].Value))
		case ".offsetof":
			if !si.argTypesMatch(ArgBranchTarget) {
				return si.invalidArgs()
			}
			off, ok := a.labelOffsets[si.args[0].Label]
			if !ok {
				return asmErr(si.lineNum, "unknown label: %s", si.args[0].Label)
			}
			a.code.PutU32LE(off)
		case ".binary":
			data, err := parseDataString(si.args[0].Label)
			if err != nil {
				return asmErr(si.lineNum, "bad .binary data: %v", err)
			}
			a.code.Write(data)
			if a.code.Size()&1 != 0 {
				a.code.PutU8(0)
			}
		default:
			word, err := a.assembleOne(si)
			if err != nil {
				return err
			}
			a.code.PutU16LE(word)
		}
	}
	return nil
}

// parseDataString decodes the .binary payload format: hex digit pairs with
// optional whitespace, plus double-quoted ASCII runs.
func parseDataString(text string) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(text) {
		ch := text[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch == '"':
			end := strings.IndexByte(text[i+1:], '"')
			if end < 0 {
				return nil, errors.New("unterminated string in data")
			}
			out = append(out, text[i+1:i+1+end]...)
			i += end + 2
		default:
			if i+1 >= len(text) {
				return nil, errors.New("odd hex digit count in data")
			}
			v, err := strconv.ParseUint(text[i:i+2], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("bad hex byte %q", text[i:i+2])
			}
			out = append(out, uint8(v))
			i += 2
		}
	}
	return out, nil
}

func checkImmRange(si *streamItem, v, min, max int32) error {
	if v < min || v > max {
		return asmErr(si.lineNum, "immediate %d out of range [%d, %d]", v, min, max)
	}
	return nil
}

// resolveTarget resolves a branch-target or PC-reference argument to an
// absolute address.
func (a *Assembler) resolveTarget(si *streamItem, arg *Arg) (uint32, error) {
	if arg.Label == "" {
		return uint32(arg.Value), nil
	}
	off, ok := a.labelOffsets[arg.Label]
	if !ok {
		// Disassembler-generated labels encode their own address.
		for _, prefix := range []string{"label", "fn"} {
			if strings.HasPrefix(arg.Label, prefix) {
				if v, err := strconv.ParseUint(arg.Label[len(prefix):], 16, 32); err == nil {
					return uint32(v), nil
				}
			}
		}
		return 0, asmErr(si.lineNum, "unknown label: %s", arg.Label)
	}
	return a.startAddress + off, nil
}

// branchDisp8 computes and range-checks an 8-bit branch displacement.
func (a *Assembler) branchDisp8(si *streamItem) (uint16, error) {
	target, err := a.resolveTarget(si, &si.args[0])
	if err != nil {
		return 0, err
	}
	pc := a.startAddress + si.offset
	delta := int32(target) - int32(pc) - 4
	if delta&1 != 0 {
		return 0, asmErr(si.lineNum, "branch displacement is not even")
	}
	if err := checkImmRange(si, delta/2, -0x80, 0x7F); err != nil {
		return 0, err
	}
	return uint16(delta/2) & 0xFF, nil
}

func (a *Assembler) branchDisp12(si *streamItem) (uint16, error) {
	target, err := a.resolveTarget(si, &si.args[0])
	if err != nil {
		return 0, err
	}
	pc := a.startAddress + si.offset
	delta := int32(target) - int32(pc) - 4
	if delta&1 != 0 {
		return 0, asmErr(si.lineNum, "branch displacement is not even")
	}
	if err := checkImmRange(si, delta/2, -0x800, 0x7FF); err != nil {
		return 0, err
	}
	return uint16(delta/2) & 0x0FFF, nil
}

func n(reg uint8) uint16  { return uint16(reg) << 8 }
func mm(reg uint8) uint16 { return uint16(reg) << 4 }
