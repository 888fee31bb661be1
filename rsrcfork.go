// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package rsrcfork parses classic Macintosh resource forks, transparently
// decompresses resources that are stored compressed (by running their
// decompressor code under emulation), and decodes the classic resource
// formats into modern representations: images, palettes, WAV and MIDI
// files, disassembled code, and structured metadata.
package rsrcfork

import (
	"fmt"
	"strings"
)

// Version is the library version.
const Version = "1.0.0"

// Resource type tags (four ASCII characters packed big-endian).
const (
	TypeACTB = 0x61637462 // actb
	TypeADBS = 0x41444253 // ADBS
	TypeCCTB = 0x63637462 // cctb
	TypeCDEF = 0x43444546 // CDEF
	TypeCFRG = 0x63667267 // cfrg
	TypeCICN = 0x6369636E // cicn
	TypeCLOK = 0x636C6F6B // clok
	TypeCLUT = 0x636C7574 // clut
	TypeCMID = 0x636D6964 // cmid
	TypeCODE = 0x434F4445 // CODE
	TypeCRSR = 0x63727372 // crsr
	TypeCSND = 0x63736E64 // csnd
	TypeCURS = 0x43555253 // CURS
	TypeDCMP = 0x64636D70 // dcmp
	TypeDCTB = 0x64637462 // dctb
	TypeECMI = 0x65636D69 // ecmi
	TypeEMID = 0x656D6964 // emid
	TypeESnd = 0x45536E64 // ESnd
	TypeESND = 0x65736E64 // esnd
	TypeICL4 = 0x69636C34 // icl4
	TypeICL8 = 0x69636C38 // icl8
	TypeICM4 = 0x69636D34 // icm4
	TypeICM8 = 0x69636D38 // icm8
	TypeICMN = 0x69636D23 // icm#
	TypeICNN = 0x49434E23 // ICN#
	TypeICON = 0x49434F4E // ICON
	TypeICS4 = 0x69637334 // ics4
	TypeICS8 = 0x69637338 // ics8
	TypeICSN = 0x69637323 // ics#
	TypeINIT = 0x494E4954 // INIT
	TypeINST = 0x494E5354 // INST
	TypeKCS4 = 0x6B637334 // kcs4
	TypeKCS8 = 0x6B637338 // kcs8
	TypeKCSN = 0x6B637323 // kcs#
	TypeLDEF = 0x4C444546 // LDEF
	TypeMDBF = 0x4D444246 // MDBF
	TypeMDEF = 0x4D444546 // MDEF
	TypeNCMP = 0x6E636D70 // ncmp
	TypeNDMC = 0x6E646D63 // ndmc
	TypeNDRV = 0x6E647276 // ndrv
	TypeNIFT = 0x6E696674 // nift
	TypeNITT = 0x6E697474 // nitt
	TypeNLIB = 0x6E6C6962 // nlib
	TypeNSND = 0x6E736E64 // nsnd
	TypeNTRB = 0x6E747262 // ntrb
	TypePACK = 0x5041434B // PACK
	TypePAT  = 0x50415420 // 'PAT '
	TypePATN = 0x50415423 // PAT#
	TypePICT = 0x50494354 // PICT
	TypePLTT = 0x706C7474 // pltt
	TypePPAT = 0x70706174 // ppat
	TypePPTN = 0x70707423 // ppt#
	TypePROC = 0x70726F63 // proc
	TypePTCH = 0x50544348 // PTCH
	Typeptch = 0x70746368 // ptch
	TypeROvr = 0x524F7672 // ROvr
	TypeSERD = 0x53455244 // SERD
	TypeSICN = 0x5349434E // SICN
	TypeSIZE = 0x53495A45 // SIZE
	TypeSMOD = 0x534D4F44 // SMOD
	TypeSMSD = 0x534D5344 // SMSD
	TypeSND  = 0x736E6420 // 'snd '
	TypeSNTH = 0x736E7468 // snth
	TypeSONG = 0x534F4E47 // SONG
	TypeSTR  = 0x53545220 // 'STR '
	TypeSTRN = 0x53545223 // STR#
	TypeSTYL = 0x7374796C // styl
	TypeTEXT = 0x54455854 // TEXT
	TypeTune = 0x54756E65 // Tune
	TypeWCTB = 0x77637462 // wctb
	TypeWDEF = 0x57444546 // WDEF
)

// TypeString renders a type tag as four characters, escaping bytes outside
// the printable ASCII range.
func TypeString(typ uint32) string {
	var b strings.Builder
	for s := 24; s >= 0; s -= 8 {
		ch := byte(typ >> s)
		switch {
		case ch == '\\':
			b.WriteString(`\\`)
		case ch < ' ' || ch > 0x7E:
			fmt.Fprintf(&b, `\x%02X`, ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Resource flag bits. The low 8 bits come from the resource itself; the
// high 8 bits are reserved for this library.
const (
	FlagCompressed           = 0x0001
	FlagDirty                = 0x0002
	FlagPreload              = 0x0004
	FlagProtected            = 0x0008
	FlagLocked               = 0x0010
	FlagPurgeable            = 0x0020
	FlagLoadInSystemHeap     = 0x0040
	FlagDecompressionFailed  = 0x0100 // so we don't try to decompress again
	FlagDecompressed         = 0x0200 // decompressor ran successfully
)

// Decompression flags accepted by GetResource.
const (
	DecompressDisabled = 0x01
	DecompressVerbose  = 0x02
	SkipFileDcmp       = 0x04
	SkipFileNcmp       = 0x08
	SkipSystemDcmp     = 0x10
	SkipSystemNcmp     = 0x20
)
