// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package pef parses the Preferred Executable Format container used by
// PowerPC code fragments (ncmp decompressors among them) and instantiates
// its sections into an emulated memory context, applying pattern-data
// expansion and the common relocation forms.
package pef

import (
	"errors"
	"fmt"

	"github.com/saferwall/rsrcfork/binary"
	"github.com/saferwall/rsrcfork/memory"
)

// Errors returned by the parser and loader.
var (
	// ErrMalformedPEF is returned when a structural check fails.
	ErrMalformedPEF = errors.New("malformed PEF container")

	// ErrUnsupportedPEF is returned for valid containers that use
	// features this loader does not implement (imported symbols, exotic
	// relocations).
	ErrUnsupportedPEF = errors.New("unsupported PEF feature")
)

// Section kinds.
const (
	SectionCode         = 0
	SectionUnpackedData = 1
	SectionPatternData  = 2
	SectionConstant     = 3
	SectionLoader       = 4
	SectionDebug        = 5
	SectionExecData     = 6
	SectionException    = 7
	SectionTraceback    = 8
)

// Section is one section header plus its raw contents.
type Section struct {
	Name            string
	DefaultAddress  uint32
	TotalSize       uint32
	UnpackedSize    uint32
	PackedSize      uint32
	ContainerOffset uint32
	Kind            uint8
	ShareKind       uint8
	Alignment       uint8

	data []byte

	// LoadAddress is filled in by LoadInto.
	LoadAddress uint32
}

// ExportSymbol is one exported symbol.
type ExportSymbol struct {
	Name         string
	Class        uint8
	Value        uint32
	SectionIndex int16
}

// File is a parsed PEF container.
type File struct {
	Name         string
	Architecture uint32 // 'pwpc' or 'm68k'
	Sections     []Section

	mainSymbol ExportSymbol
	initSymbol ExportSymbol
	termSymbol ExportSymbol
	exports    map[string]ExportSymbol

	loaderSection int
}

const (
	tagJoy  = 0x4A6F7921 // 'Joy!'
	tagPeff = 0x70656666 // 'peff'
	archPPC = 0x70777063 // 'pwpc'
	archM68 = 0x6D36386B // 'm68k'
)

// NewFile parses a PEF container. name is used only for symbol
// registration and error messages.
func NewFile(name string, data []byte) (*File, error) {
	r := binary.NewReader(data)
	tag1, err := r.GetU32BE()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrMalformedPEF)
	}
	tag2, _ := r.GetU32BE()
	arch, _ := r.GetU32BE()
	formatVersion, _ := r.GetU32BE()
	r.Skip(16) // dateTimeStamp, oldDefVersion, oldImpVersion, currentVersion
	sectionCount, _ := r.GetU16BE()
	r.Skip(2) // instSectionCount
	if _, err := r.GetU32BE(); err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrMalformedPEF)
	}

	if tag1 != tagJoy || tag2 != tagPeff {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedPEF)
	}
	if arch != archPPC && arch != archM68 {
		return nil, fmt.Errorf("%w: unknown architecture %08X", ErrMalformedPEF, arch)
	}
	if formatVersion != 1 {
		return nil, fmt.Errorf("%w: format version %d", ErrMalformedPEF, formatVersion)
	}

	f := &File{
		Name:          name,
		Architecture:  arch,
		exports:       make(map[string]ExportSymbol),
		loaderSection: -1,
	}

	for i := 0; i < int(sectionCount); i++ {
		nameOffset, err := r.GetS32BE()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated section table", ErrMalformedPEF)
		}
		var s Section
		s.DefaultAddress, _ = r.GetU32BE()
		s.TotalSize, _ = r.GetU32BE()
		s.UnpackedSize, _ = r.GetU32BE()
		s.PackedSize, _ = r.GetU32BE()
		s.ContainerOffset, _ = r.GetU32BE()
		s.Kind, _ = r.GetU8()
		s.ShareKind, _ = r.GetU8()
		s.Alignment, _ = r.GetU8()
		if _, err := r.GetU8(); err != nil {
			return nil, fmt.Errorf("%w: truncated section table", ErrMalformedPEF)
		}
		_ = nameOffset // section name table is optional and rarely present

		raw, err := r.PRead(int(s.ContainerOffset), int(s.PackedSize))
		if err != nil {
			return nil, fmt.Errorf("%w: section %d contents out of range", ErrMalformedPEF, i)
		}
		s.data = raw
		if s.Kind == SectionLoader {
			f.loaderSection = i
		}
		f.Sections = append(f.Sections, s)
	}

	if f.loaderSection >= 0 {
		if err := f.parseLoader(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// IsPPC reports whether the container holds PowerPC code.
func (f *File) IsPPC() bool {
	return f.Architecture == archPPC
}

// Main returns the main symbol (empty name if absent).
func (f *File) Main() ExportSymbol { return f.mainSymbol }

// Init returns the init symbol (empty name if absent).
func (f *File) Init() ExportSymbol { return f.initSymbol }

// Term returns the term symbol (empty name if absent).
func (f *File) Term() ExportSymbol { return f.termSymbol }

// Exports returns the exported symbol table keyed by name.
func (f *File) Exports() map[string]ExportSymbol {
	return f.exports
}

// parseLoader reads the loader section: entry points, the import/export
// tables, and (later, at load time) relocation instructions.
func (f *File) parseLoader() error {
	ls := &f.Sections[f.loaderSection]
	r := binary.NewReader(ls.data)

	mainSection, err := r.GetS32BE()
	if err != nil {
		return fmt.Errorf("%w: truncated loader header", ErrMalformedPEF)
	}
	mainOffset, _ := r.GetU32BE()
	initSection, _ := r.GetS32BE()
	initOffset, _ := r.GetU32BE()
	termSection, _ := r.GetS32BE()
	termOffset, _ := r.GetU32BE()
	importedLibraryCount, _ := r.GetU32BE()
	totalImportedSymbolCount, _ := r.GetU32BE()
	relocSectionCount, _ := r.GetU32BE()
	_, _ = r.GetU32BE() // relocInstrOffset
	loaderStringsOffset, _ := r.GetU32BE()
	exportHashOffset, _ := r.GetU32BE()
	exportHashTablePower, _ := r.GetU32BE()
	exportedSymbolCount, err := r.GetU32BE()
	if err != nil {
		return fmt.Errorf("%w: truncated loader header", ErrMalformedPEF)
	}
	_ = relocSectionCount

	if importedLibraryCount != 0 || totalImportedSymbolCount != 0 {
		return fmt.Errorf("%w: imported symbols", ErrUnsupportedPEF)
	}

	entry := func(section int32, offset uint32, name string) ExportSymbol {
		if section < 0 {
			return ExportSymbol{}
		}
		return ExportSymbol{Name: name, Value: offset, SectionIndex: int16(section)}
	}
	f.mainSymbol = entry(mainSection, mainOffset, "main")
	f.initSymbol = entry(initSection, initOffset, "init")
	f.termSymbol = entry(termSection, termOffset, "term")

	// Export tables: hash slots, then one key per symbol (carrying the
	// name length), then 10-byte symbol records.
	hashSlots := 1 << exportHashTablePower
	keyTableOffset := int(exportHashOffset) + hashSlots*4
	symTableOffset := keyTableOffset + int(exportedSymbolCount)*4

	for i := 0; i < int(exportedSymbolCount); i++ {
		key, err := r.PGetU32BE(keyTableOffset + i*4)
		if err != nil {
			return fmt.Errorf("%w: truncated export key table", ErrMalformedPEF)
		}
		nameLength := int(key >> 16)

		off := symTableOffset + i*10
		classAndName, err := r.PGetU32BE(off)
		if err != nil {
			return fmt.Errorf("%w: truncated export symbol table", ErrMalformedPEF)
		}
		value, _ := r.PGetU32BE(off + 4)
		sectionIndexU, err := r.PGetU16BE(off + 8)
		if err != nil {
			return fmt.Errorf("%w: truncated export symbol table", ErrMalformedPEF)
		}

		nameOffset := int(loaderStringsOffset) + int(classAndName&0x00FFFFFF)
		nameBytes, err := r.PRead(nameOffset, nameLength)
		if err != nil {
			return fmt.Errorf("%w: export name out of range", ErrMalformedPEF)
		}
		sym := ExportSymbol{
			Name:         string(nameBytes),
			Class:        uint8(classAndName >> 24),
			Value:        value,
			SectionIndex: int16(sectionIndexU),
		}
		f.exports[sym.Name] = sym
	}
	return nil
}

// unpackPatternData expands a pattern-initialized (pidata) section.
func unpackPatternData(packed []byte, unpackedSize uint32) ([]byte, error) {
	out := make([]byte, 0, unpackedSize)
	r := binary.NewReader(packed)

	readArg := func(firstArg uint32) (uint32, error) {
		// Arguments are 7-bit groups, high bit set on all but the last.
		// A zero count field in the opcode byte means the real value
		// follows as a variable-length argument.
		if firstArg != 0 {
			return firstArg, nil
		}
		var v uint32
		for {
			b, err := r.GetU8()
			if err != nil {
				return 0, err
			}
			v = v<<7 | uint32(b&0x7F)
			if b&0x80 == 0 {
				return v, nil
			}
		}
	}

	for !r.EOF() {
		b, err := r.GetU8()
		if err != nil {
			return nil, err
		}
		opcode := b >> 5
		count, err := readArg(uint32(b & 0x1F))
		if err != nil {
			return nil, fmt.Errorf("%w: truncated pattern data", ErrMalformedPEF)
		}

		switch opcode {
		case 0: // Zero
			for i := uint32(0); i < count; i++ {
				out = append(out, 0)
			}
		case 1: // blockCopy
			block, err := r.Read(int(count))
			if err != nil {
				return nil, fmt.Errorf("%w: truncated pattern data", ErrMalformedPEF)
			}
			out = append(out, block...)
		case 2: // repeatedBlock
			repeat, err := readArg(0)
			if err != nil {
				return nil, fmt.Errorf("%w: truncated pattern data", ErrMalformedPEF)
			}
			block, err := r.Read(int(count))
			if err != nil {
				return nil, fmt.Errorf("%w: truncated pattern data", ErrMalformedPEF)
			}
			for i := uint32(0); i <= repeat; i++ {
				out = append(out, block...)
			}
		case 3: // interleaveRepeatBlockWithBlockCopy
			customSize, err := readArg(0)
			if err != nil {
				return nil, err
			}
			repeat, err := readArg(0)
			if err != nil {
				return nil, err
			}
			common, err := r.Read(int(count))
			if err != nil {
				return nil, fmt.Errorf("%w: truncated pattern data", ErrMalformedPEF)
			}
			for i := uint32(0); i < repeat; i++ {
				custom, err := r.Read(int(customSize))
				if err != nil {
					return nil, fmt.Errorf("%w: truncated pattern data", ErrMalformedPEF)
				}
				out = append(out, common...)
				out = append(out, custom...)
			}
			out = append(out, common...)
		case 4: // interleaveRepeatBlockWithZero
			customSize, err := readArg(0)
			if err != nil {
				return nil, err
			}
			repeat, err := readArg(0)
			if err != nil {
				return nil, err
			}
			for i := uint32(0); i < repeat; i++ {
				for j := uint32(0); j < count; j++ {
					out = append(out, 0)
				}
				custom, err := r.Read(int(customSize))
				if err != nil {
					return nil, fmt.Errorf("%w: truncated pattern data", ErrMalformedPEF)
				}
				out = append(out, custom...)
			}
			for j := uint32(0); j < count; j++ {
				out = append(out, 0)
			}
		default:
			return nil, fmt.Errorf("%w: pattern opcode %d", ErrMalformedPEF, opcode)
		}
	}
	if uint32(len(out)) > unpackedSize {
		return nil, fmt.Errorf("%w: pattern data overflows section", ErrMalformedPEF)
	}
	for uint32(len(out)) < unpackedSize {
		out = append(out, 0)
	}
	return out, nil
}

// LoadInto instantiates all instantiable sections into mem starting at
// base, applies relocations, and registers "<name>:<symbol>" symbols for
// the exports and the main entry point; init and term are not registered.
func (f *File) LoadInto(name string, mem *memory.Context, base uint32) error {
	addr := base
	for i := range f.Sections {
		s := &f.Sections[i]
		var contents []byte
		switch s.Kind {
		case SectionCode, SectionConstant, SectionExecData:
			contents = s.data
		case SectionUnpackedData:
			contents = make([]byte, s.TotalSize)
			copy(contents, s.data)
		case SectionPatternData:
			unpacked, err := unpackPatternData(s.data, s.UnpackedSize)
			if err != nil {
				return err
			}
			contents = make([]byte, s.TotalSize)
			copy(contents, unpacked)
		default:
			continue // loader/debug sections are not instantiated
		}
		size := uint32(len(contents))
		if s.TotalSize > size {
			size = s.TotalSize
		}
		if size == 0 {
			continue
		}
		loadAddr, err := mem.AllocateAt(addr, size)
		if err != nil {
			return err
		}
		if err := mem.CopyIn(loadAddr, contents); err != nil {
			return err
		}
		s.LoadAddress = loadAddr
		addr = loadAddr + ((size + 0xFFF) &^ 0xFFF)
	}

	if f.loaderSection >= 0 {
		if err := f.applyRelocations(mem); err != nil {
			return err
		}
	}

	sectionAddr := func(idx int16) uint32 {
		if idx >= 0 && int(idx) < len(f.Sections) {
			return f.Sections[idx].LoadAddress
		}
		return 0
	}
	for _, sym := range f.exports {
		mem.SetSymbol(name+":"+sym.Name, sectionAddr(sym.SectionIndex)+sym.Value)
	}
	if f.mainSymbol.Name != "" {
		mem.SetSymbol(name+":main", sectionAddr(f.mainSymbol.SectionIndex)+f.mainSymbol.Value)
	}
	return nil
}

// applyRelocations walks each relocation header in the loader section and
// interprets the 16-bit relocation instruction stream against the
// instantiated sections.
func (f *File) applyRelocations(mem *memory.Context) error {
	ls := &f.Sections[f.loaderSection]
	r := binary.NewReader(ls.data)
	r.Go(32)
	relocSectionCount, _ := r.GetU32BE()
	relocInstrOffset, err := r.GetU32BE()
	if err != nil {
		return fmt.Errorf("%w: truncated loader header", ErrMalformedPEF)
	}

	headerBase := 56
	for h := 0; h < int(relocSectionCount); h++ {
		off := headerBase + h*12
		sectionIndex, err := r.PGetU16BE(off)
		if err != nil {
			return fmt.Errorf("%w: truncated relocation header", ErrMalformedPEF)
		}
		relocCount, _ := r.PGetU32BE(off + 4)
		firstRelocOffset, err := r.PGetU32BE(off + 8)
		if err != nil {
			return fmt.Errorf("%w: truncated relocation header", ErrMalformedPEF)
		}
		if int(sectionIndex) >= len(f.Sections) {
			return fmt.Errorf("%w: relocation targets section %d", ErrMalformedPEF, sectionIndex)
		}

		target := f.Sections[sectionIndex].LoadAddress
		relocAddress := target
		sectionC := f.sectionAddrOfKind(SectionCode)
		sectionD := f.sectionAddrOfKind(SectionUnpackedData, SectionPatternData, SectionExecData)

		addWord := func(delta uint32) error {
			v, err := mem.ReadU32BE(relocAddress)
			if err != nil {
				return err
			}
			if err := mem.WriteU32BE(relocAddress, v+delta); err != nil {
				return err
			}
			relocAddress += 4
			return nil
		}

		instrOff := int(relocInstrOffset) + int(firstRelocOffset)
		for c := 0; c < int(relocCount); c++ {
			chunk, err := r.PGetU16BE(instrOff + c*2)
			if err != nil {
				return fmt.Errorf("%w: truncated relocation stream", ErrMalformedPEF)
			}
			switch {
			case chunk>>14 == 0: // RelocBySectDWithSkip
				skip := (chunk >> 6) & 0xFF
				count := chunk & 0x3F
				relocAddress += uint32(skip) * 4
				for i := uint16(0); i < count; i++ {
					if err := addWord(sectionD); err != nil {
						return err
					}
				}
			case chunk>>13 == 2: // run group
				subop := (chunk >> 9) & 0xF
				run := int(chunk&0x1FF) + 1
				for i := 0; i < run; i++ {
					switch subop {
					case 0: // RelocBySectC
						if err := addWord(sectionC); err != nil {
							return err
						}
					case 1: // RelocBySectD
						if err := addWord(sectionD); err != nil {
							return err
						}
					case 2: // RelocTVector12
						if err := addWord(sectionC); err != nil {
							return err
						}
						if err := addWord(sectionD); err != nil {
							return err
						}
						relocAddress += 4
					case 3: // RelocTVector8
						if err := addWord(sectionC); err != nil {
							return err
						}
						if err := addWord(sectionD); err != nil {
							return err
						}
					case 4: // RelocVTable8
						if err := addWord(sectionD); err != nil {
							return err
						}
						relocAddress += 4
					default:
						return fmt.Errorf("%w: relocation run subop %d", ErrUnsupportedPEF, subop)
					}
				}
			case chunk>>13 == 3: // small set/by-section group
				subop := (chunk >> 9) & 0xF
				index := int16(chunk & 0x1FF)
				switch subop {
				case 1: // RelocSmSetSectC
					sectionC = f.sectionLoadAddr(index)
				case 2: // RelocSmSetSectD
					sectionD = f.sectionLoadAddr(index)
				case 3: // RelocSmBySection
					if err := addWord(f.sectionLoadAddr(index)); err != nil {
						return err
					}
				default:
					return fmt.Errorf("%w: relocation subop %d", ErrUnsupportedPEF, subop)
				}
			case chunk>>12 == 8: // RelocIncrPosition
				relocAddress += uint32(chunk&0x0FFF) + 1
			case chunk>>10 == 0x2D: // RelocSetPosition (101101)
				c++
				next, err := r.PGetU16BE(instrOff + c*2)
				if err != nil {
					return fmt.Errorf("%w: truncated relocation stream", ErrMalformedPEF)
				}
				pos := uint32(chunk&0x03FF)<<16 | uint32(next)
				relocAddress = target + pos
			default:
				return fmt.Errorf("%w: relocation chunk %04X", ErrUnsupportedPEF, chunk)
			}
		}
	}
	return nil
}

func (f *File) sectionLoadAddr(idx int16) uint32 {
	if idx >= 0 && int(idx) < len(f.Sections) {
		return f.Sections[idx].LoadAddress
	}
	return 0
}

func (f *File) sectionAddrOfKind(kinds ...uint8) uint32 {
	for i := range f.Sections {
		for _, k := range kinds {
			if f.Sections[i].Kind == k {
				return f.Sections[i].LoadAddress
			}
		}
	}
	return 0
}
