// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xyproto/env/v2"

	"github.com/saferwall/rsrcfork/binary"
	"github.com/saferwall/rsrcfork/m68k"
	"github.com/saferwall/rsrcfork/memory"
	"github.com/saferwall/rsrcfork/pef"
	"github.com/saferwall/rsrcfork/ppc32"
)

// Errors
var (
	// ErrNotCompressed is returned when a resource marked compressed does
	// not carry the compressed-resource header.
	ErrNotCompressed = errors.New("resource marked as compressed but does not appear to be compressed")

	// ErrDecompressionFailed is returned when every candidate
	// decompressor raised an error.
	ErrDecompressionFailed = errors.New("no decompressor succeeded")
)

// compressedResourceMagic begins every compressed resource.
const compressedResourceMagic = 0xA89F6572

// compressedHeaderSize is the fixed size of the compressed-resource
// header: magic, header size, version, attributes, decompressed size, and
// the 8-byte version-specific tail.
const compressedHeaderSize = 20

// compressedResourceHeader is the decoded header of a compressed
// resource. The version-8 tail carries buffer sizing hints; version 9
// carries only the decompressor id.
type compressedResourceHeader struct {
	headerSize       uint16
	headerVersion    uint8
	attributes       uint8
	decompressedSize uint32

	// Version 8 only: length of compressed data relative to length of
	// uncompressed data, out of 256, and the greatest number of bytes the
	// data may grow during decompression.
	workingBufferFractionalSize uint8
	expansionBufferSize         uint8

	dcmpResourceID int16
}

func parseCompressedHeader(data []byte) (*compressedResourceHeader, error) {
	if len(data) < compressedHeaderSize {
		return nil, fmt.Errorf("%w: resource too small for header", ErrNotCompressed)
	}
	r := binary.NewReader(data)
	magic, _ := r.GetU32BE()
	if magic != compressedResourceMagic {
		return nil, ErrNotCompressed
	}
	var h compressedResourceHeader
	h.headerSize, _ = r.GetU16BE()
	h.headerVersion, _ = r.GetU8()
	h.attributes, _ = r.GetU8()
	h.decompressedSize, _ = r.GetU32BE()

	switch h.headerVersion {
	case 8:
		h.workingBufferFractionalSize, _ = r.GetU8()
		h.expansionBufferSize, _ = r.GetU8()
		id, _ := r.GetS16BE()
		h.dcmpResourceID = id
	case 9:
		id, _ := r.GetS16BE()
		h.dcmpResourceID = id
	default:
		return nil, fmt.Errorf("compressed resource header version is not 8 or 9 (%d)", h.headerVersion)
	}
	return &h, nil
}

// System decompressors live in an on-disk cache directory, one raw
// payload per file, loaded lazily and cached for the life of the process.
var (
	systemDcmpMu    sync.Mutex
	systemDcmpCache = make(map[uint64]*Resource)
)

func systemDecompressorDir(opts *Options) string {
	if opts != nil && opts.SystemDecompressorDir != "" {
		return opts.SystemDecompressorDir
	}
	return env.Str("RSRCFORK_SYSTEM_DCMP_DIR", "system_dcmps")
}

// getSystemDecompressor loads dcmp_<id>.bin or ncmp_<id>.bin from the
// cache directory.
func getSystemDecompressor(dir string, useNcmp bool, resourceID int16) (*Resource, error) {
	resourceType := uint32(TypeDCMP)
	prefix := 'd'
	if useNcmp {
		resourceType = TypeNCMP
		prefix = 'n'
	}
	key := makeResourceKey(resourceType, resourceID)

	systemDcmpMu.Lock()
	defer systemDcmpMu.Unlock()
	if res, ok := systemDcmpCache[key]; ok {
		return res, nil
	}

	filename := filepath.Join(dir, fmt.Sprintf("%ccmp_%d.bin", prefix, resourceID))
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	res := &Resource{Type: resourceType, ID: resourceID, Data: data}
	systemDcmpCache[key] = res
	return res, nil
}

// Emulated memory layout for a decompression attempt.
const (
	stackRegionAddr   = 0x10000000
	outputRegionAddr  = 0x20000000
	workingRegionAddr = 0x80000000
	inputRegionAddr   = 0xC0000000
	codeRegionAddr    = 0xF0000000

	stackRegionSize = 1024 * 16
)

// decompressResource picks candidate decompressors in preference order
// (fork dcmp, fork ncmp, system dcmp, system ncmp), runs each under
// emulation, and returns the output of the first one that completes.
func (f *File) decompressResource(data []byte, flags uint64) ([]byte, error) {
	verbose := flags&DecompressVerbose != 0

	header, err := parseCompressedHeader(data)
	if err != nil {
		return nil, err
	}

	var candidates []*Resource
	if flags&SkipFileDcmp == 0 {
		if res, ok := f.resources[makeResourceKey(TypeDCMP, header.dcmpResourceID)]; ok {
			candidates = append(candidates, res)
		}
	}
	if flags&SkipFileNcmp == 0 {
		if res, ok := f.resources[makeResourceKey(TypeNCMP, header.dcmpResourceID)]; ok {
			candidates = append(candidates, res)
		}
	}
	dir := systemDecompressorDir(f.opts)
	if flags&SkipSystemDcmp == 0 {
		if res, err := getSystemDecompressor(dir, false, header.dcmpResourceID); err == nil {
			candidates = append(candidates, res)
		}
	}
	if flags&SkipSystemNcmp == 0 {
		if res, err := getSystemDecompressor(dir, true, header.dcmpResourceID); err == nil {
			candidates = append(candidates, res)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no decompressors are available for dcmp/ncmp %d",
			ErrDecompressionFailed, header.dcmpResourceID)
	}

	if verbose {
		f.logger.Infof("using dcmp/ncmp %d (%d implementations available); "+
			"data size is %d (0x%X); decompressed size is %d (0x%X)",
			header.dcmpResourceID, len(candidates),
			len(data), len(data), header.decompressedSize, header.decompressedSize)
	}

	for z, candidate := range candidates {
		if verbose {
			f.logger.Infof("attempting decompression with implementation %d of %d",
				z+1, len(candidates))
		}
		output, err := f.runDecompressor(candidate, header, data, verbose)
		if err == nil {
			return output, nil
		}
		if verbose {
			f.logger.Infof("decompressor implementation %d of %d failed: %v",
				z+1, len(candidates), err)
		}
	}
	return nil, ErrDecompressionFailed
}

// runDecompressor performs a single emulated run of one candidate.
func (f *File) runDecompressor(dcmpRes *Resource, header *compressedResourceHeader,
	data []byte, verbose bool) ([]byte, error) {

	mem := memory.NewContext()

	outputRegionSize := header.decompressedSize + 0x100
	// Some decompressors read past the end of the compressed data; give
	// them slack after the input.
	inputRegionSize := uint32(len(data)) + 0x100
	// A conservative upper bound; the header's fractional-size field
	// suggests a tighter formula, but this always suffices.
	workingRegionSize := uint32(len(data)) * 256

	if _, err := mem.AllocateAt(stackRegionAddr, stackRegionSize); err != nil {
		return nil, err
	}
	outputAddr, err := mem.AllocateAt(outputRegionAddr, outputRegionSize)
	if err != nil {
		return nil, err
	}
	workingAddr, err := mem.AllocateAt(workingRegionAddr, workingRegionSize)
	if err != nil {
		return nil, err
	}
	inputAddr, err := mem.AllocateAt(inputRegionAddr, inputRegionSize)
	if err != nil {
		return nil, err
	}
	if err := mem.CopyIn(inputAddr, data); err != nil {
		return nil, err
	}
	if verbose {
		f.logger.Infof("memory: stack %08X:%X output %08X:%X working %08X:%X input %08X:%X",
			stackRegionAddr, stackRegionSize, outputAddr, outputRegionSize,
			workingAddr, workingRegionSize, inputAddr, inputRegionSize)
	}

	switch dcmpRes.Type {
	case TypeDCMP:
		err = f.run68KDecompressor(mem, dcmpRes, header, inputAddr, inputRegionSize,
			outputAddr, workingAddr, verbose)
	case TypeNCMP:
		err = f.runPPCDecompressor(mem, dcmpRes, header, inputAddr, inputRegionSize,
			outputAddr, workingAddr, verbose)
	default:
		err = errors.New("decompressor resource is not dcmp or ncmp")
	}
	if err != nil {
		return nil, err
	}

	output := make([]byte, header.decompressedSize)
	if err := mem.CopyOut(output, outputAddr); err != nil {
		return nil, err
	}
	return output, nil
}

// m68kInputHeaderSize is the stack image handed to a 68K decompressor: a
// return address, four argument longs, the reset opcode the return
// address points at, and a pad word.
const m68kInputHeaderSize = 4 + 16 + 2 + 2

// run68KDecompressor loads 68K decompressor code, builds the
// documented stack frame, and emulates until the reset opcode runs.
func (f *File) run68KDecompressor(mem *memory.Context, dcmpRes *Resource,
	header *compressedResourceHeader, inputAddr, inputRegionSize, outputAddr,
	workingAddr uint32, verbose bool) error {

	// Two dcmp formats exist: one with 'dcmp' in bytes 4-8, where
	// execution starts at byte 0 (usually a branch opcode), and one whose
	// first three words are function offsets; the second word is the
	// entry point in that format.
	if len(dcmpRes.Data) < 10 {
		return errors.New("decompressor resource is too short")
	}
	var entryOffset uint32
	if string(dcmpRes.Data[4:8]) != "dcmp" {
		entryOffset = uint32(dcmpRes.Data[2])<<8 | uint32(dcmpRes.Data[3])
	}

	codeAddr, err := mem.AllocateAt(codeRegionAddr, uint32(len(dcmpRes.Data)))
	if err != nil {
		return err
	}
	if err := mem.CopyIn(codeAddr, dcmpRes.Data); err != nil {
		return err
	}
	entryPC := codeAddr + entryOffset
	if verbose {
		f.logger.Infof("dcmp entry offset is %08X (loaded at %08X)", entryOffset, entryPC)
	}

	// Build the input header at the top of the stack region. The return
	// address points at the reset opcode within the header itself.
	headerBase := uint32(stackRegionAddr) + stackRegionSize - m68kInputHeaderSize
	resetAddr := headerBase + 20
	if err := mem.WriteU32BE(headerBase, resetAddr); err != nil {
		return err
	}
	dataSize := inputRegionSize - compressedHeaderSize
	if header.headerVersion == 9 {
		mem.WriteU32BE(headerBase+4, inputAddr)                      // source resource header
		mem.WriteU32BE(headerBase+8, outputAddr)                     // dest buffer
		mem.WriteU32BE(headerBase+12, inputAddr+compressedHeaderSize) // source past header
		mem.WriteU32BE(headerBase+16, dataSize)
	} else {
		mem.WriteU32BE(headerBase+4, dataSize)
		mem.WriteU32BE(headerBase+8, workingAddr)
		mem.WriteU32BE(headerBase+12, outputAddr)
		mem.WriteU32BE(headerBase+16, inputAddr+compressedHeaderSize)
	}
	mem.WriteU16BE(headerBase+20, 0x4E70) // reset
	mem.WriteU16BE(headerBase+22, 0x0000)

	emu := m68k.NewEmulator(mem)
	emu.Regs.SetSP(headerBase)
	emu.Regs.PC = entryPC
	if verbose {
		emu.SetDebugHook(func(e *m68k.Emulator) error {
			f.logger.Debugf("cycle %d pc=%08X d0=%08X d1=%08X a0=%08X a7=%08X",
				e.Cycles(), e.Regs.PC, e.Regs.D[0], e.Regs.D[1], e.Regs.A[0], e.Regs.A[7])
			return nil
		})
	}

	trapToStubAddr := make(map[uint16]uint32)
	emu.SetSyscallHandler(func(e *m68k.Emulator, opcode uint16) error {
		if opcode == 0x4E70 { // reset: normal termination
			return m68k.ErrTerminate
		}
		var trapNumber uint16
		autoPop := false
		var trapFlags uint8
		if opcode&0x0800 != 0 {
			trapNumber = opcode & 0x0BFF
			autoPop = opcode&0x0400 != 0
		} else {
			trapNumber = opcode & 0x00FF
			trapFlags = uint8((opcode >> 9) & 3)
		}

		// GetTrapAddress is the only trap decompressors actually need: it
		// gets a 4-byte stub holding the requested A-trap and an rts.
		if trapNumber == 0x0046 {
			requested := uint16(e.Regs.D[0] & 0xFFFF)
			if requested > 0x4F && requested != 0x54 && requested != 0x57 {
				requested |= 0x0800
			}
			stubAddr, ok := trapToStubAddr[requested]
			if !ok {
				var err error
				stubAddr, err = e.Memory().Allocate(4)
				if err != nil {
					return err
				}
				e.Memory().WriteU16BE(stubAddr, 0xA000|requested)
				e.Memory().WriteU16BE(stubAddr+2, 0x4E75) // rts
				trapToStubAddr[requested] = stubAddr
				if verbose {
					f.logger.Infof("GetTrapAddress: created call stub for trap %04X -> %08X",
						requested, stubAddr)
				}
			} else if verbose {
				f.logger.Infof("GetTrapAddress: using cached call stub for trap %04X -> %08X",
					requested, stubAddr)
			}
			e.Regs.A[0] = stubAddr
			return nil
		}

		if verbose {
			if opcode&0x0800 != 0 {
				f.logger.Warnf("skipping unimplemented toolbox trap (num=%X, auto_pop=%v)",
					trapNumber, autoPop)
			} else {
				f.logger.Warnf("skipping unimplemented os trap (num=%X, flags=%d)",
					trapNumber, trapFlags)
			}
		}
		return nil
	})

	if err := emu.Execute(); err != nil {
		if verbose {
			f.logger.Infof("m68k decompressor execution failed: %v", err)
		}
		return err
	}
	return nil
}

// ppcInputHeaderSize is the PPC stack header: saved r1/cr/lr, two
// reserved words, saved r2, two unused words, and the li/sc trap pair the
// return address points at.
const ppcInputHeaderSize = 40

// runPPCDecompressor parses an ncmp PEF, loads it, and emulates until the
// fragment returns through the trap sequence (sc with r2 == -1).
func (f *File) runPPCDecompressor(mem *memory.Context, dcmpRes *Resource,
	header *compressedResourceHeader, inputAddr, inputRegionSize, outputAddr,
	workingAddr uint32, verbose bool) error {

	pf, err := pef.NewFile("<ncmp>", dcmpRes.Data)
	if err != nil {
		return err
	}
	if err := pf.LoadInto("<ncmp>", mem, codeRegionAddr); err != nil {
		return err
	}
	if !pf.IsPPC() {
		return errors.New("ncmp decompressor is not PowerPC")
	}

	// ncmp decompressors don't define the standard export symbols
	// (init/main/term); they define exactly one export, which is a
	// transition vector: the entry pc followed by the desired r2.
	if pf.Init().Name != "" {
		return errors.New("ncmp decompressor has init symbol")
	}
	if pf.Main().Name != "" {
		return errors.New("ncmp decompressor has main symbol")
	}
	if pf.Term().Name != "" {
		return errors.New("ncmp decompressor has term symbol")
	}
	exports := pf.Exports()
	if len(exports) != 1 {
		return errors.New("ncmp decompressor does not export exactly one symbol")
	}
	var symName string
	for name := range exports {
		symName = name
	}
	tvAddr, err := mem.SymbolAddr("<ncmp>:" + symName)
	if err != nil {
		return err
	}
	entryPC, err := mem.ReadU32BE(tvAddr)
	if err != nil {
		return err
	}
	entryR2, err := mem.ReadU32BE(tvAddr + 4)
	if err != nil {
		return err
	}
	if verbose {
		f.logger.Infof("ncmp entry pc is %08X with r2 = %08X", entryPC, entryR2)
	}

	headerBase := uint32(stackRegionAddr) + stackRegionSize - ppcInputHeaderSize
	returnAddr := headerBase + 32
	mem.WriteU32BE(headerBase, 0xAAAAAAAA)    // saved r1
	mem.WriteU32BE(headerBase+4, 0x00000000)  // saved cr
	mem.WriteU32BE(headerBase+8, returnAddr)  // saved lr
	mem.WriteU32BE(headerBase+12, 0)          // reserved
	mem.WriteU32BE(headerBase+16, 0)          // reserved
	mem.WriteU32BE(headerBase+20, entryR2)    // saved r2
	mem.WriteU32BE(headerBase+24, 0)
	mem.WriteU32BE(headerBase+28, 0)
	mem.WriteU32BE(headerBase+32, 0x3840FFFF) // li r2, -1
	mem.WriteU32BE(headerBase+36, 0x44000002) // sc

	emu := ppc32.NewEmulator(mem)
	emu.Regs.R[1] = headerBase
	emu.Regs.R[2] = entryR2
	emu.Regs.R[3] = inputAddr + compressedHeaderSize
	emu.Regs.R[4] = outputAddr
	if header.headerVersion == 9 {
		emu.Regs.R[5] = inputAddr
	} else {
		emu.Regs.R[5] = workingAddr
	}
	emu.Regs.R[6] = inputRegionSize - compressedHeaderSize
	emu.Regs.LR = returnAddr
	emu.Regs.PC = entryPC

	if verbose {
		emu.SetDebugHook(func(e *ppc32.Emulator) error {
			op, err := e.Memory().ReadU32BE(e.Regs.PC)
			if err != nil {
				return err
			}
			f.logger.Debugf("cycle %d pc=%08X r3=%08X r4=%08X r5=%08X => %s",
				e.Cycles(), e.Regs.PC, e.Regs.R[3], e.Regs.R[4], e.Regs.R[5],
				ppc32.DisassembleOne(e.Regs.PC, op))
			return nil
		})
	}
	emu.SetSyscallHandler(func(e *ppc32.Emulator) error {
		// The only expected syscall is the one at the end of emulation,
		// when r2 == -1.
		if e.Regs.R[2] != 0xFFFFFFFF {
			return errors.New("unimplemented syscall")
		}
		return ppc32.ErrTerminate
	})

	if err := emu.Execute(); err != nil {
		if verbose {
			f.logger.Infof("powerpc decompressor execution failed: %v", err)
		}
		return err
	}
	return nil
}
