// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"fmt"

	"github.com/saferwall/rsrcfork/binary"
	"github.com/saferwall/rsrcfork/m68k"
	"github.com/saferwall/rsrcfork/pef"
)

// Errors
var (
	// ErrMalformedCode is returned when a code-metadata structure fails
	// a check.
	ErrMalformedCode = errors.New("malformed code resource")
)

// DecodedSize is a decoded SIZE resource.
type DecodedSize struct {
	SaveScreen                   bool
	AcceptSuspendEvents          bool
	DisableOption                bool
	CanBackground                bool
	ActivateOnFGSwitch           bool
	OnlyBackground               bool
	GetFrontClicks               bool
	AcceptDiedEvents             bool
	CleanAddressing              bool // "32-bit compatible"
	HighLevelEventAware          bool
	LocalAndRemoteHighLevelEvents bool
	StationeryAware              bool
	UseTextEditServices          bool
	Size                         uint32
	MinSize                      uint32
}

// DecodeSize decodes a SIZE resource.
func DecodeSize(data []byte) (*DecodedSize, error) {
	r := binary.NewReader(data)
	flags, err := r.GetU16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: SIZE too small for structure", ErrMalformedCode)
	}
	size, _ := r.GetU32BE()
	minSize, err := r.GetU32BE()
	if err != nil {
		return nil, fmt.Errorf("%w: SIZE too small for structure", ErrMalformedCode)
	}
	return &DecodedSize{
		SaveScreen:                    flags&0x8000 != 0,
		AcceptSuspendEvents:           flags&0x4000 != 0,
		DisableOption:                 flags&0x2000 != 0,
		CanBackground:                 flags&0x1000 != 0,
		ActivateOnFGSwitch:            flags&0x0800 != 0,
		OnlyBackground:                flags&0x0400 != 0,
		GetFrontClicks:                flags&0x0200 != 0,
		AcceptDiedEvents:              flags&0x0100 != 0,
		CleanAddressing:               flags&0x0080 != 0,
		HighLevelEventAware:           flags&0x0040 != 0,
		LocalAndRemoteHighLevelEvents: flags&0x0020 != 0,
		StationeryAware:               flags&0x0010 != 0,
		UseTextEditServices:           flags&0x0008 != 0,
		// The low 3 flag bits are unused.
		Size:    size,
		MinSize: minSize,
	}, nil
}

// CodeFragmentUsage is a cfrg entry's usage field.
type CodeFragmentUsage uint8

// cfrg usage values.
const (
	UsageImportLibrary CodeFragmentUsage = iota
	UsageApplication
	UsageDropInAddition
	UsageStubLibrary
	UsageWeakStubLibrary
)

// CodeFragmentWhere is a cfrg entry's container-location field.
type CodeFragmentWhere uint8

// cfrg where values.
const (
	WhereMemory CodeFragmentWhere = iota
	WhereDataFork
	WhereResource
	WhereByteStream     // reserved
	WhereNamedFragment  // reserved
)

// DecodedCodeFragment is one cfrg entry.
type DecodedCodeFragment struct {
	Architecture   uint32
	UpdateLevel    uint8
	CurrentVersion uint32
	OldDefVersion  uint32
	AppStackSize   uint32
	AppSubdirID    int16 // also lib_flags
	Usage          CodeFragmentUsage
	Where          CodeFragmentWhere
	Offset         uint32
	Length         uint32 // zero means the fragment fills the entire space
	SpaceID        uint32 // also fork_kind
	ForkInstance   uint16
	Name           string
}

// cfrg header and entry fixed sizes.
const (
	cfrgHeaderSize     = 32
	cfrgEntryFixedSize = 42
)

// DecodeCodeFragments decodes a cfrg resource.
func DecodeCodeFragments(data []byte) ([]DecodedCodeFragment, error) {
	if len(data) < cfrgHeaderSize {
		return nil, fmt.Errorf("%w: cfrg too small for header", ErrMalformedCode)
	}
	r := binary.NewReader(data)
	version, err := r.PGetU16BE(10)
	if err != nil {
		return nil, fmt.Errorf("%w: cfrg too small for header", ErrMalformedCode)
	}
	if version != 1 {
		return nil, fmt.Errorf("%w: cfrg is not version 1", ErrMalformedCode)
	}
	entryCount, _ := r.PGetU16BE(30)

	var ret []DecodedCodeFragment
	offset := cfrgHeaderSize
	for len(ret) < int(entryCount) {
		if offset+cfrgEntryFixedSize+1 > len(data) {
			return nil, fmt.Errorf("%w: cfrg too small for entries", ErrMalformedCode)
		}
		er, err := r.Sub(offset, len(data)-offset)
		if err != nil {
			return nil, err
		}
		var e DecodedCodeFragment
		e.Architecture, _ = er.GetU32BE()
		er.Skip(2) // reserved
		er.Skip(1) // reserved
		e.UpdateLevel, _ = er.GetU8()
		e.CurrentVersion, _ = er.GetU32BE()
		e.OldDefVersion, _ = er.GetU32BE()
		e.AppStackSize, _ = er.GetU32BE()
		subdir, _ := er.GetS16BE()
		e.AppSubdirID = subdir
		usage, _ := er.GetU8()
		where, _ := er.GetU8()
		e.Offset, _ = er.GetU32BE()
		e.Length, _ = er.GetU32BE()
		e.SpaceID, _ = er.GetU32BE()
		e.ForkInstance, _ = er.GetU16BE()
		extensionCount, _ := er.GetU16BE()
		entrySize, err := er.GetU16BE()
		if err != nil {
			return nil, fmt.Errorf("%w: cfrg too small for entries", ErrMalformedCode)
		}
		name, err := er.GetPString()
		if err != nil {
			return nil, fmt.Errorf("%w: cfrg too small for entries", ErrMalformedCode)
		}

		if usage > 4 {
			return nil, fmt.Errorf("%w: code fragment entry usage is invalid", ErrMalformedCode)
		}
		if where > 4 {
			return nil, fmt.Errorf("%w: code fragment entry location (where) is invalid", ErrMalformedCode)
		}
		if extensionCount != 0 {
			return nil, fmt.Errorf("%w: cfrg entry has extensions", ErrUnsupportedFormat)
		}
		e.Usage = CodeFragmentUsage(usage)
		e.Where = CodeFragmentWhere(where)
		e.Name = string(name)
		ret = append(ret, e)

		if entrySize == 0 {
			return nil, fmt.Errorf("%w: cfrg entry size is zero", ErrMalformedCode)
		}
		offset += int(entrySize)
	}
	return ret, nil
}

// DecodedCode0 is the decoded CODE 0 resource: the A5-world sizes plus
// the jump table.
type DecodedCode0 struct {
	AboveA5Size uint32
	BelowA5Size uint32
	JumpTable   []m68k.JumpTableEntry
}

// DecodeCode0 decodes the CODE 0 jump table. Slots that are not
// push/_LoadSeg trampolines come back zeroed.
func DecodeCode0(data []byte) (*DecodedCode0, error) {
	const headerSize = 16
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: CODE 0 too small for header", ErrMalformedCode)
	}
	r := binary.NewReader(data)
	above, _ := r.GetU32BE()
	below, _ := r.GetU32BE()
	r.Skip(4) // jump table size; should be the resource size minus 0x10
	r.Skip(4) // jump table offset

	ret := &DecodedCode0{AboveA5Size: above, BelowA5Size: below}
	count := (len(data) - headerSize) / 8
	for x := 0; x < count; x++ {
		offset, _ := r.GetU16BE()
		pushOpcode, _ := r.GetU16BE()
		resourceID, _ := r.GetS16BE()
		trapOpcode, err := r.GetU16BE()
		if err != nil {
			return nil, err
		}
		if pushOpcode != 0x3F3C || trapOpcode != 0xA9F0 {
			ret.JumpTable = append(ret.JumpTable, m68k.JumpTableEntry{})
		} else {
			ret.JumpTable = append(ret.JumpTable, m68k.JumpTableEntry{
				CodeResourceID: resourceID,
				Offset:         offset,
			})
		}
	}
	return ret, nil
}

// DecodedCode is a decoded CODE resource (id != 0).
type DecodedCode struct {
	// EntryOffset is non-negative for the near model. For the far model
	// it is -1 and the remaining fields are filled in.
	EntryOffset int32

	NearEntryStartA5Offset uint32 // offset from A5, so subtract 0x20
	NearEntryCount         uint32
	FarEntryStartA5Offset  uint32 // offset from A5, so subtract 0x20
	FarEntryCount          uint32
	A5RelocationDataOffset uint32
	A5                     uint32
	PCRelocationDataOffset uint32
	LoadAddress            uint32 // unintuitive; see the segment loader docs

	Code []byte
}

// DecodeCode decodes a CODE resource, disambiguating the near and far
// header models by the 0xFFFF/0x0000 far-model signature.
func DecodeCode(data []byte) (*DecodedCode, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: CODE too small for header", ErrMalformedCode)
	}
	r := binary.NewReader(data)
	entryOffset, _ := r.GetU16BE()
	unknown, _ := r.GetU16BE()

	ret := &DecodedCode{}
	var headerBytes int
	if entryOffset == 0xFFFF && unknown == 0x0000 {
		const farHeaderSize = 40
		if len(data) < farHeaderSize {
			return nil, fmt.Errorf("%w: CODE too small for far model header", ErrMalformedCode)
		}
		ret.EntryOffset = -1
		ret.NearEntryStartA5Offset, _ = r.GetU32BE()
		ret.NearEntryCount, _ = r.GetU32BE()
		ret.FarEntryStartA5Offset, _ = r.GetU32BE()
		ret.FarEntryCount, _ = r.GetU32BE()
		ret.A5RelocationDataOffset, _ = r.GetU32BE()
		ret.A5, _ = r.GetU32BE()
		ret.PCRelocationDataOffset, _ = r.GetU32BE()
		ret.LoadAddress, _ = r.GetU32BE()
		r.Skip(4) // reserved
		headerBytes = farHeaderSize
	} else {
		ret.EntryOffset = int32(entryOffset)
		headerBytes = 4
	}
	ret.Code = data[headerBytes:]
	return ret, nil
}

// DisassembleCode renders a CODE resource as 68K assembly, labeling
// jump-table references through the fork's CODE 0 when present.
func (f *File) DisassembleCode(res *Resource) (string, error) {
	decoded, err := DecodeCode(res.Data)
	if err != nil {
		return "", err
	}
	var jumpTable []m68k.JumpTableEntry
	if code0Res, err := f.GetResource(TypeCODE, 0, 0); err == nil {
		if code0, err := DecodeCode0(code0Res.Data); err == nil {
			jumpTable = code0.JumpTable
		}
	}
	labels := map[uint32][]string{}
	if decoded.EntryOffset >= 0 {
		labels[uint32(decoded.EntryOffset)] = []string{"entry"}
	}
	return m68k.Disassemble(decoded.Code, 0, labels, true, jumpTable), nil
}

// DecodeDcmp disassembles a dcmp (68K decompressor) resource. A resource
// whose first byte is 0x60 (a bra opcode) starts execution at 0; otherwise
// the first three words are function offsets and the second is the entry
// point.
func DecodeDcmp(data []byte) (string, error) {
	if len(data) < 10 {
		return "", fmt.Errorf("%w: inline code resource is too short", ErrMalformedCode)
	}

	labels := map[uint32][]string{}
	headerBytes := 0
	if data[0] == 0x60 {
		labels[0] = []string{"start"}
	} else {
		labels[uint32(data[0])<<8|uint32(data[1])] = []string{"fn0"}
		start := uint32(data[2])<<8 | uint32(data[3])
		labels[start] = append(labels[start], "start")
		fn2 := uint32(data[4])<<8 | uint32(data[5])
		labels[fn2] = append(labels[fn2], "fn2")
		headerBytes = 6
	}

	var headerComment string
	if headerBytes > 0 {
		headerComment = fmt.Sprintf("# header: %02X%02X %02X%02X %02X%02X\n",
			data[0], data[1], data[2], data[3], data[4], data[5])
	}
	return headerComment + m68k.Disassemble(data[headerBytes:],
		uint32(headerBytes), labels, true, nil), nil
}

// DecodeInline68KCode disassembles a resource whose payload is a bare
// 68K subroutine (ADBS, CDEF, clok, INIT, LDEF, MDBF, MDEF, PACK, proc,
// PTCH, ptch, ROvr, SERD, SMOD, snth, WDEF).
func DecodeInline68KCode(data []byte) string {
	labels := map[uint32][]string{0: {"start"}}
	return m68k.Disassemble(data, 0, labels, true, nil)
}

// inline68KTypes enumerates the resource types decoded by
// DecodeInline68KCode.
var inline68KTypes = map[uint32]bool{
	TypeADBS: true, TypeCDEF: true, TypeCLOK: true, TypeINIT: true,
	TypeLDEF: true, TypeMDBF: true, TypeMDEF: true, TypePACK: true,
	TypePROC: true, TypePTCH: true, Typeptch: true, TypeROvr: true,
	TypeSERD: true, TypeSMOD: true, TypeSNTH: true, TypeWDEF: true,
}

// IsInline68KType reports whether a resource type holds a bare 68K
// subroutine.
func IsInline68KType(typ uint32) bool {
	return inline68KTypes[typ]
}

// DecodePEF parses a PEF-container resource (ncmp, ndmc, ndrv, nift,
// nitt, nlib, nsnd, ntrb).
func DecodePEF(name string, data []byte) (*pef.File, error) {
	return pef.NewFile(name, data)
}

// pefTypes enumerates the resource types that carry PEF containers.
var pefTypes = map[uint32]bool{
	TypeNCMP: true, TypeNDMC: true, TypeNDRV: true, TypeNIFT: true,
	TypeNITT: true, TypeNLIB: true, TypeNSND: true, TypeNTRB: true,
}

// IsPEFType reports whether a resource type holds a PEF container.
func IsPEFType(typ uint32) bool {
	return pefTypes[typ]
}
