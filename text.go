// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/saferwall/rsrcfork/binary"
)

// Errors
var (
	// ErrMalformedText is returned when a string or style structure
	// fails a check.
	ErrMalformedText = errors.New("malformed text resource")
)

// macRomanTable maps each byte value to its UTF-8 expansion;
// macRomanTableRTF maps to RTF escape sequences. The plain table decodes
// carriage return as "\n" so classic Mac line endings come out as modern
// ones; the RTF table renders it as a "\line " break.
var (
	macRomanTable    [256]string
	macRomanTableRTF [256]string
)

func init() {
	dec := charmap.Macintosh
	for b := 0; b < 256; b++ {
		r := dec.DecodeByte(byte(b))
		macRomanTable[b] = string(r)
		switch {
		case b == 0x09:
			macRomanTableRTF[b] = "\\line "
		case b == 0x0A:
			macRomanTableRTF[b] = "\n"
		case b == '\\':
			macRomanTableRTF[b] = `\\`
		case b >= 0x20 && b <= 0x7E:
			macRomanTableRTF[b] = string(rune(b))
		case b < 0x20 || b == 0x7F:
			macRomanTableRTF[b] = fmt.Sprintf("\\'%02X", b)
		default:
			// Non-ASCII: RTF unicode escape with a signed 16-bit code
			// point and a substitute character.
			cp := int32(r)
			if cp > 0x7FFF {
				cp -= 0x10000
			}
			macRomanTableRTF[b] = fmt.Sprintf("\\u%d?", cp)
		}
	}

	// The classic keyboard glyphs live in the control range.
	macRomanTable[0x11] = "⌘" // command
	macRomanTable[0x12] = "⇧" // shift
	macRomanTable[0x13] = "⌥" // option
	macRomanTable[0x14] = "⌃" // control
	macRomanTableRTF[0x11] = "⌘"
	macRomanTableRTF[0x12] = "⇧"
	macRomanTableRTF[0x13] = "⌥"
	macRomanTableRTF[0x14] = "⌃"

	// Both carriage return and line feed decode to "\n".
	macRomanTable[0x0D] = "\n"
	macRomanTableRTF[0x0D] = "\\line "
}

// DecodeMacRoman decodes Mac-Roman bytes to UTF-8. Carriage returns come
// out as "\n".
func DecodeMacRoman(data []byte) string {
	var b strings.Builder
	for _, ch := range data {
		b.WriteString(macRomanTable[ch])
	}
	return b.String()
}

// DecodedString is a decoded 'STR ' resource: the string plus whatever
// bytes followed it.
type DecodedString struct {
	Str       string
	AfterData []byte
}

// DecodedStringSequence is a decoded STR# resource.
type DecodedStringSequence struct {
	Strs      []string
	AfterData []byte
}

// DecodeString decodes a 'STR ' resource.
func DecodeString(data []byte) (*DecodedString, error) {
	if len(data) == 0 {
		return &DecodedString{}, nil
	}
	length := int(data[0])
	if length > len(data)-1 {
		return nil, fmt.Errorf("%w: length is too large for data", ErrMalformedText)
	}
	return &DecodedString{
		Str:       DecodeMacRoman(data[1 : 1+length]),
		AfterData: data[1+length:],
	}, nil
}

// DecodeStringSequence decodes a STR# resource.
func DecodeStringSequence(data []byte) (*DecodedStringSequence, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: STR# size is too small", ErrMalformedText)
	}
	count := int(data[0])<<8 | int(data[1])

	ret := &DecodedStringSequence{}
	offset := 2
	for ; count > 0; count-- {
		if offset >= len(data) {
			return nil, fmt.Errorf("%w: expected %d more strings in STR# resource", ErrMalformedText, count)
		}
		length := int(data[offset])
		offset++
		if offset+length > len(data) {
			return nil, fmt.Errorf("%w: STR# resource ends before end of string", ErrMalformedText)
		}
		ret.Strs = append(ret.Strs, DecodeMacRoman(data[offset:offset+length]))
		offset += length
	}
	ret.AfterData = data[offset:]
	return ret, nil
}

// DecodeText decodes a TEXT resource.
func DecodeText(data []byte) string {
	return DecodeMacRoman(data)
}

// standardFontIDs maps classic font ids to names for styl output.
var standardFontIDs = map[uint16]string{
	0:     "Chicago",
	1:     "Helvetica", // this is actually "inherit"
	2:     "New York",
	3:     "Geneva",
	4:     "Monaco",
	5:     "Venice",
	6:     "London",
	7:     "Athens",
	8:     "San Francisco",
	9:     "Toronto",
	11:    "Cairo",
	12:    "Los Angeles",
	13:    "Zapf Dingbats",
	14:    "Bookman",
	15:    "N Helvetica Narrow",
	16:    "Palatino",
	18:    "Zapf Chancery",
	20:    "Times",
	21:    "Helvetica",
	22:    "Courier",
	23:    "Symbol",
	24:    "Taliesin",
	33:    "Avant Garde",
	34:    "New Century Schoolbook",
	169:   "O Futura BookOblique",
	173:   "L Futura Light",
	174:   "Futura",
	176:   "H Futura Heavy",
	177:   "O Futura Oblique",
	179:   "BO Futura BoldOblique",
	221:   "HO Futura HeavyOblique",
	258:   "ProFont",
	260:   "LO Futura LightOblique",
	513:   "ISO Latin Nr 1",
	514:   "PCFont 437",
	515:   "PCFont 850",
	1029:  "VT80 Graphics",
	1030:  "3270 Graphics",
	1109:  "Trebuchet MS",
	1345:  "ProFont",
	1895:  "Nu Sans Regular",
	2001:  "Arial",
	2002:  "Charcoal",
	2003:  "Capitals",
	2004:  "Sand",
	2005:  "Courier New",
	2006:  "Techno",
	2010:  "Times New Roman",
	2011:  "Wingdings",
	2013:  "Hoefler Text",
	2018:  "Hoefler Text Ornaments",
	2039:  "Impact",
	2040:  "Skia",
	2305:  "Textile",
	2307:  "Gadget",
	2311:  "Apple Chancery",
	2515:  "MT Extra",
	4513:  "Comic Sans MS",
	7092:  "Monotype.com",
	7102:  "Andale Mono",
	7203:  "Verdana",
	9728:  "Espi Sans",
	9729:  "Charcoal",
	9840:  "Espy Sans/Copland",
	9841:  "Espi Sans Bold",
	9842:  "Espy Sans Bold/Copland",
	10840: "Klang MT",
	10890: "Script MT Bold",
	10897: "Old English Text MT",
	10909: "New Berolina MT",
	10957: "Bodoni MT Ultra Bold",
	10967: "Arial MT Condensed Light",
	11103: "Lydian MT",
	12077: "Arial Black",
	12171: "Georgia",
	14868: "B Futura Bold",
	14870: "Futura Book",
	15011: "Gill Sans Condensed Bold",
	16383: "Chicago",
}

// Style flag bits in a styl command.
const (
	styleBold      = 0x01
	styleItalic    = 0x02
	styleUnderline = 0x04
	styleOutline   = 0x08
	styleShadow    = 0x10
	styleCondensed = 0x20
	styleExtended  = 0x40
)

// stylCommand is one style run.
type stylCommand struct {
	offset     uint32
	fontID     uint16
	styleFlags uint16
	size       uint16
	r, g, b    uint16
}

const stylCommandSize = 20

// DecodeStyle renders a styl resource as an RTF document over the
// matching TEXT resource in the same fork (same id). The font table comes
// from the fixed id-to-name map; the color table from the observed style
// runs.
func (f *File) DecodeStyle(res *Resource) (string, error) {
	textRes, err := f.GetResource(TypeTEXT, res.ID, 0)
	if err != nil {
		return "", fmt.Errorf("%w: style has no corresponding TEXT", ErrNotFound)
	}
	text := textRes.Data

	r := binary.NewReader(res.Data)
	numCommands, err := r.GetU16BE()
	if err != nil {
		return "", fmt.Errorf("%w: styl size is too small", ErrMalformedText)
	}
	if len(res.Data) < 2+int(numCommands)*stylCommandSize {
		return "", fmt.Errorf("%w: styl size is too small for all commands", ErrMalformedText)
	}

	cmds := make([]stylCommand, numCommands)
	for i := range cmds {
		cmds[i].offset, _ = r.GetU32BE()
		r.Skip(4) // two height-ish fields that scale with size
		cmds[i].fontID, _ = r.GetU16BE()
		cmds[i].styleFlags, _ = r.GetU16BE()
		cmds[i].size, _ = r.GetU16BE()
		cmds[i].r, _ = r.GetU16BE()
		cmds[i].g, _ = r.GetU16BE()
		if cmds[i].b, err = r.GetU16BE(); err != nil {
			return "", fmt.Errorf("%w: styl size is too small for all commands", ErrMalformedText)
		}
	}

	var out strings.Builder
	out.WriteString("{\\rtf1\\ansi\n{\\fonttbl")

	// Collect the fonts and write the font table.
	fontTable := make(map[uint16]int)
	var fontOrder []uint16
	for _, cmd := range cmds {
		if _, ok := fontTable[cmd.fontID]; !ok {
			fontTable[cmd.fontID] = len(fontTable)
			fontOrder = append(fontOrder, cmd.fontID)
		}
	}
	for _, fontID := range fontOrder {
		fontName, ok := standardFontIDs[fontID]
		if !ok {
			fontName = "Helvetica"
		}
		fmt.Fprintf(&out, "\\f%d\\fswiss %s;", fontTable[fontID], fontName)
	}
	out.WriteString("}\n{\\colortbl")

	// Collect the colors and write the color table.
	colorTable := make(map[uint64]int)
	var colorOrder []Color
	for _, cmd := range cmds {
		c := Color{cmd.r, cmd.g, cmd.b}
		if _, ok := colorTable[c.ToU64()]; !ok {
			colorTable[c.ToU64()] = len(colorTable)
			colorOrder = append(colorOrder, c)
		}
	}
	for _, c := range colorOrder {
		fmt.Fprintf(&out, "\\red%d\\green%d\\blue%d;", c.R>>8, c.G>>8, c.B>>8)
	}
	out.WriteString("}\n")

	// Write the stylized blocks.
	for i, cmd := range cmds {
		endOffset := uint32(len(text))
		if i+1 < len(cmds) {
			endOffset = cmds[i+1].offset
		}
		if cmd.offset >= uint32(len(text)) {
			return "", fmt.Errorf("%w: offset is past end of TEXT resource data", ErrMalformedText)
		}
		if endOffset <= cmd.offset || endOffset > uint32(len(text)) {
			return "", fmt.Errorf("%w: block size is zero or negative", ErrMalformedText)
		}
		block := text[cmd.offset:endOffset]

		fontID := fontTable[cmd.fontID]
		colorID := colorTable[Color{cmd.r, cmd.g, cmd.b}.ToU64()]
		expansion := 0
		if cmd.styleFlags&styleCondensed != 0 {
			expansion = -int(cmd.size) / 2
		} else if cmd.styleFlags&styleExtended != 0 {
			expansion = int(cmd.size) / 2
		}
		onOff := func(flag uint16, on, off string) string {
			if cmd.styleFlags&flag != 0 {
				return on
			}
			return off
		}
		fmt.Fprintf(&out, "\\f%d\\%s\\%s\\%s\\%s\\fs%d \\cf%d \\expan%d ",
			fontID,
			onOff(styleBold, "b", "b0"),
			onOff(styleItalic, "i", "i0"),
			onOff(styleOutline, "outl", "outl0"),
			onOff(styleShadow, "shad", "shad0"),
			int(cmd.size)*2, colorID, expansion)
		if cmd.styleFlags&styleUnderline != 0 {
			fmt.Fprintf(&out, "\\ul \\ulc%d ", colorID)
		} else {
			out.WriteString("\\ul0 ")
		}

		for _, ch := range block {
			out.WriteString(macRomanTableRTF[ch])
		}
	}
	out.WriteString("}")
	return out.String(), nil
}
