// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package m68k

import (
	"fmt"
	"sort"
	"strings"
)

// DisassembleOne decodes a single opcode (with any MacsBug symbol handling
// disabled) and returns its text without the address column.
func DisassembleOne(data []byte, startAddress uint32, isMacEnvironment bool,
	jumpTable []JumpTableEntry) string {
	s := NewDisassemblyState(data, startAddress, isMacEnvironment, jumpTable)
	return disassembleOne(s)
}

// disassembleOne decodes the next opcode (or MacsBug symbol) at the
// state's cursor and renders the hex and mnemonic columns.
func disassembleOne(s *DisassemblyState) string {
	opcodeOffset := s.r.Where()
	var text string

	if s.isMacEnvironment && s.prevWasReturn {
		if symbol, numConstants := tryDecodeMacsbugSymbol(s.r); symbol != "" {
			text = fmt.Sprintf("%-10s \"%s\"", "dc.b", symbol)
			if numConstants > 0 {
				text += fmt.Sprintf(" + %d constant bytes", numConstants)
				s.r.Skip(int(numConstants))
			}
		}
	}
	s.prevWasReturn = false

	if text == "" {
		s.opcodeStartAddress = s.startAddress + uint32(s.r.Where())
		hi, err := s.r.PeekU8()
		if err != nil {
			s.r.Skip(1)
			text = ".incomplete"
		} else {
			text = dasmDispatch(s, (hi>>4)&0x0F)
		}
	}

	endOffset := s.r.Where()
	if endOffset <= opcodeOffset {
		// Never fail to advance; a stuck cursor would loop forever.
		s.r.Go(opcodeOffset + 1)
		endOffset = s.r.Where()
	}

	var hexData strings.Builder
	s.r.Go(opcodeOffset)
	for s.r.Where() < endOffset&^1 {
		w, _ := s.r.GetU16BE()
		fmt.Fprintf(&hexData, " %04X", w)
	}
	if endOffset&1 != 0 {
		b, _ := s.r.GetU8()
		fmt.Fprintf(&hexData, " %02X  ", b)
	}
	hex := hexData.String()
	if len(hex) > 25 {
		// Long MacsBug symbols would otherwise blow out the column.
		hex = hex[:22] + "..."
	} else {
		hex += strings.Repeat(" ", 25-len(hex))
	}
	return hex + " " + text
}

// Disassemble renders the full listing for data loaded at startAddress.
// Labels maps addresses to caller-supplied names. Because 68K opcodes are
// variable-length, a mis-interpreted opcode can cascade; any branch target
// or label that does not begin a decoded line is re-decoded as an
// "alternate branch" and emitted inside comment markers, to a fixed point.
func Disassemble(data []byte, startAddress uint32, labels map[uint32][]string,
	isMacEnvironment bool, jumpTable []JumpTableEntry) string {
	type line struct {
		text   string
		nextPC uint32
	}
	lines := make(map[uint32]line)

	// Phase 1: linear decode, collecting branch targets.
	s := NewDisassemblyState(data, startAddress, isMacEnvironment, jumpTable)
	firstPC := startAddress
	for !s.r.EOF() {
		pc := s.startAddress + uint32(s.r.Where())
		text := fmt.Sprintf("%08X ", pc) + disassembleOne(s) + "\n"
		lines[pc] = line{text: text, nextPC: s.startAddress + uint32(s.r.Where())}
	}

	sortedLabelAddrs := func() []uint32 {
		addrs := make([]uint32, 0, len(labels))
		for a := range labels {
			addrs = append(addrs, a)
		}
		sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
		return addrs
	}()

	// Phase 2: re-decode at word-aligned, in-range branch targets and
	// labels that did not land on a decoded line. New targets discovered
	// while doing so are processed the same way.
	inRange := func(pc uint32) bool {
		return pc >= startAddress && pc < startAddress+uint32(len(data))
	}
	pending := make(map[uint32]bool)
	for target := range s.branchTargets {
		if target&1 == 0 && inRange(target) {
			if _, ok := lines[target]; !ok {
				pending[target] = true
			}
		}
	}
	for _, target := range sortedLabelAddrs {
		if target&1 == 0 && inRange(target) {
			if _, ok := lines[target]; !ok {
				pending[target] = true
			}
		}
	}
	type branchRange struct{ start, end uint32 }
	var backupBranches []branchRange
	for len(pending) > 0 {
		var branchStart uint32
		for pc := range pending {
			branchStart = pc
			break
		}
		delete(pending, branchStart)
		if _, ok := lines[branchStart]; ok {
			continue
		}
		pc := branchStart
		s.r.Go(int(pc - startAddress))
		s.prevWasReturn = false
		for !s.r.EOF() {
			if _, ok := lines[pc]; ok {
				break
			}
			saved := s.branchTargets
			s.branchTargets = make(map[uint32]bool)
			text := fmt.Sprintf("%08X ", pc) + disassembleOne(s) + "\n"
			discovered := s.branchTargets
			s.branchTargets = saved

			nextPC := s.startAddress + uint32(s.r.Where())
			lines[pc] = line{text: text, nextPC: nextPC}
			pc = nextPC

			for addr, isCall := range discovered {
				s.addBranchTarget(addr, isCall)
				if addr&1 == 0 && inRange(addr) {
					if _, ok := lines[addr]; !ok {
						pending[addr] = true
					}
				}
			}
		}
		if pc != branchStart {
			backupBranches = append(backupBranches, branchRange{branchStart, pc})
		}
	}
	sort.Slice(backupBranches, func(i, j int) bool {
		if backupBranches[i].start != backupBranches[j].start {
			return backupBranches[i].start < backupBranches[j].start
		}
		return backupBranches[i].end < backupBranches[j].end
	})

	// Phase 3: emit, interleaving caller labels, branch-target labels, and
	// alternate branches.
	sortedTargets := make([]uint32, 0, len(s.branchTargets))
	for a := range s.branchTargets {
		sortedTargets = append(sortedTargets, a)
	}
	sort.Slice(sortedTargets, func(i, j int) bool { return sortedTargets[i] < sortedTargets[j] })

	var out strings.Builder
	labelIdx := 0
	targetIdx := 0
	for labelIdx < len(sortedLabelAddrs) && sortedLabelAddrs[labelIdx] < startAddress {
		labelIdx++
	}
	for targetIdx < len(sortedTargets) && sortedTargets[targetIdx] < startAddress {
		targetIdx++
	}

	emitLabels := func(pc uint32, labelIdx, targetIdx *int) {
		for *labelIdx < len(sortedLabelAddrs) && sortedLabelAddrs[*labelIdx] <= pc {
			addr := sortedLabelAddrs[*labelIdx]
			for _, name := range labels[addr] {
				if addr != pc {
					fmt.Fprintf(&out, "%s: // at %08X (misaligned)\n", name, addr)
				} else {
					fmt.Fprintf(&out, "%s:\n", name)
				}
			}
			*labelIdx++
		}
		for *targetIdx < len(sortedTargets) && sortedTargets[*targetIdx] <= pc {
			addr := sortedTargets[*targetIdx]
			labelType := "label"
			if s.branchTargets[addr] {
				labelType = "fn"
			}
			if addr != pc {
				fmt.Fprintf(&out, "%s%08X: // (misaligned)\n", labelType, addr)
			} else {
				fmt.Fprintf(&out, "%s%08X:\n", labelType, addr)
			}
			*targetIdx++
		}
	}

	backupIdx := 0
	for pc := firstPC; ; {
		ln, ok := lines[pc]
		if !ok {
			break
		}
		for backupIdx < len(backupBranches) && backupBranches[backupIdx].start <= pc {
			br := backupBranches[backupIdx]
			backupIdx++
			fmt.Fprintf(&out, "// begin alternate branch %08X-%08X\n", br.start, br.end)
			altLabelIdx := sort.Search(len(sortedLabelAddrs), func(i int) bool {
				return sortedLabelAddrs[i] >= br.start
			})
			altTargetIdx := sort.Search(len(sortedTargets), func(i int) bool {
				return sortedTargets[i] >= br.start
			})
			for altPC := br.start; altPC != br.end; {
				altLn, ok := lines[altPC]
				if !ok {
					break
				}
				emitLabels(altPC, &altLabelIdx, &altTargetIdx)
				out.WriteString(altLn.text)
				altPC = altLn.nextPC
			}
			fmt.Fprintf(&out, "// end alternate branch %08X-%08X\n", br.start, br.end)
		}
		emitLabels(pc, &labelIdx, &targetIdx)
		out.WriteString(ln.text)
		if ln.nextPC == pc {
			break
		}
		pc = ln.nextPC
	}
	return out.String()
}

// BranchTargets runs a linear decode and returns the collected branch
// target set; the value is true for function-call targets.
func BranchTargets(data []byte, startAddress uint32) map[uint32]bool {
	s := NewDisassemblyState(data, startAddress, true, nil)
	for !s.r.EOF() {
		disassembleOne(s)
	}
	return s.branchTargets
}
