// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"reflect"
	"testing"

	"github.com/saferwall/rsrcfork/binary"
)

func TestColorAs8(t *testing.T) {
	c := Color{R: 0xFFFF, G: 0x8000, B: 0x0000}
	got := c.As8()
	want := Color8{0xFF, 0x7F, 0x00}
	if got != want {
		t.Fatalf("As8() = %+v; want %+v", got, want)
	}
}

func TestRectBasics(t *testing.T) {
	r := Rect{Y1: 0, X1: 0, Y2: 16, X2: 16}
	if r.Width() != 16 || r.Height() != 16 || r.IsEmpty() {
		t.Fatalf("rect geometry wrong: %+v", r)
	}
	if !r.ContainsRect(r) {
		t.Fatal("non-empty rect should contain itself")
	}
	if !r.Contains(0, 0) || r.Contains(16, 16) {
		t.Fatal("rect containment is half-open")
	}
	empty := Rect{Y1: 5, X1: 5, Y2: 5, X2: 9}
	if !empty.IsEmpty() {
		t.Fatal("zero-height rect should be empty")
	}
}

func TestRegionParseSingleRect(t *testing.T) {
	// A 10-byte region: just the bounding rect, no inversion points.
	data := []byte{0x00, 0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x10}
	rgn, err := ParseRegion(binary.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if rgn.Rect != (Rect{0, 0, 16, 16}) {
		t.Fatalf("rect = %+v", rgn.Rect)
	}
	if len(rgn.InversionPoints()) != 0 {
		t.Fatalf("inversions = %v; want none", rgn.InversionPoints())
	}
	// With no inversion points, nothing is inside.
	if rgn.Contains(8, 8) {
		t.Fatal("empty inversion set should contain nothing")
	}
	mask := rgn.Render()
	for _, p := range mask.Pix {
		if p != 0 {
			t.Fatal("mask should be all-clear")
		}
	}
}

// buildQuadrantRegion builds a 16x16 region whose inversion points carve
// out everything except the lower-right quadrant.
func buildQuadrantRegion(t *testing.T) *Region {
	t.Helper()
	rgn := NewRegion(Rect{0, 0, 16, 16})
	// Rows 0-7 cover columns 0-15; rows 8-15 cover columns 0-7.
	rgn.AddInversionPoint(0, 0)
	rgn.AddInversionPoint(16, 0)
	rgn.AddInversionPoint(8, 8)
	rgn.AddInversionPoint(16, 8)
	rgn.AddInversionPoint(0, 16)
	rgn.AddInversionPoint(8, 16)
	return rgn
}

func TestRegionContainsMatchesRender(t *testing.T) {
	rgn := buildQuadrantRegion(t)

	tests := []struct {
		x, y int16
		in   bool
	}{
		{4, 4, true},
		{12, 4, true},
		{4, 12, true},
		{12, 12, false},
		{0, 0, true},
		{15, 15, false},
	}
	for _, tt := range tests {
		if got := rgn.Contains(tt.x, tt.y); got != tt.in {
			t.Errorf("Contains(%d, %d) = %v; want %v", tt.x, tt.y, got, tt.in)
		}
	}

	// Contains must agree with the rendered mask everywhere.
	mask := rgn.Render()
	for y := int16(0); y < 16; y++ {
		for x := int16(0); x < 16; x++ {
			pixel := mask.Pix[mask.PixOffset(int(x), int(y))] != 0
			if rgn.Contains(x, y) != pixel {
				t.Fatalf("Contains(%d, %d) disagrees with mask", x, y)
			}
		}
	}
}

func TestRegionSerializeRoundTrip(t *testing.T) {
	rgn := buildQuadrantRegion(t)
	data := rgn.Serialize()

	parsed, err := ParseRegion(binary.NewReader(data))
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if parsed.Rect != rgn.Rect {
		t.Fatalf("rect = %+v; want %+v", parsed.Rect, rgn.Rect)
	}
	if !reflect.DeepEqual(parsed.InversionPoints(), rgn.InversionPoints()) {
		t.Fatalf("points = %v; want %v", parsed.InversionPoints(), rgn.InversionPoints())
	}
}

func TestRegionParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too small", []byte{0x00, 0x08, 0, 0, 0, 0, 0, 16}},
		{"odd size", []byte{0x00, 0x0B, 0, 0, 0, 0, 0, 16, 0, 16, 0}},
		{"truncated", []byte{0x00, 0x10, 0, 0, 0, 0, 0, 16, 0, 16, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRegion(binary.NewReader(tt.data)); !errors.Is(err, ErrMalformedImage) {
				t.Fatalf("error = %v; want ErrMalformedImage", err)
			}
		})
	}
}

func TestPatternPixelAt(t *testing.T) {
	p := Pattern{Rows: [8]uint8{0x80, 0x40, 0, 0, 0, 0, 0, 0x01}}
	if !p.PixelAt(0, 0) || !p.PixelAt(1, 1) || !p.PixelAt(7, 7) {
		t.Fatal("expected set pixels")
	}
	if p.PixelAt(1, 0) || p.PixelAt(0, 7) {
		t.Fatal("expected clear pixels")
	}
}

func TestDecodeMonochromeImage(t *testing.T) {
	// 8x2 image: first row black, second row white.
	data := []byte{0xFF, 0x00}
	img, err := DecodeMonochromeImage(data, 8, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if img.NRGBAAt(0, 0).R != 0x00 || img.NRGBAAt(0, 1).R != 0xFF {
		t.Fatal("monochrome decode wrong")
	}

	if _, err := DecodeMonochromeImage(data, 8, 3, 0); !errors.Is(err, ErrMalformedImage) {
		t.Fatalf("size mismatch error = %v", err)
	}
}

func TestDecodeColorImageIndexed(t *testing.T) {
	// 2x1, 8-bit indexed, row bytes 2.
	header := &PixelMapHeader{
		FlagsRowBytes: 2,
		Bounds:        Rect{0, 0, 1, 2},
		PixelType:     0,
		PixelSize:     8,
	}
	ctable := &ColorTable{
		Flags: 0x8000, // device table: positional lookup
		Entries: []ColorTableEntry{
			{C: Color{0xFFFF, 0, 0}},
			{C: Color{0, 0xFFFF, 0}},
		},
	}
	img, err := DecodeColorImage(header, []byte{0, 1}, ctable, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if img.Rect.Dx() != 2 || img.Rect.Dy() != 1 {
		t.Fatalf("dimensions = %v", img.Rect)
	}
	if img.NRGBAAt(0, 0).R != 0xFF || img.NRGBAAt(1, 0).G != 0xFF {
		t.Fatal("indexed colors wrong")
	}
}

func TestDecodeColorImageMissingEntryFallthrough(t *testing.T) {
	header := &PixelMapHeader{
		FlagsRowBytes: 1,
		Bounds:        Rect{0, 0, 1, 1},
		PixelType:     0,
		PixelSize:     8,
	}
	ctable := &ColorTable{Flags: 0x8000}

	// Index 255 == (1 << 8) - 1 decodes as opaque black even though the
	// table is empty.
	img, err := DecodeColorImage(header, []byte{0xFF}, ctable, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	c := img.NRGBAAt(0, 0)
	if c.R != 0 || c.G != 0 || c.B != 0 || c.A != 0xFF {
		t.Fatalf("fallthrough color = %+v; want opaque black", c)
	}

	// Any other missing index is an error.
	if _, err := DecodeColorImage(header, []byte{0x42}, ctable, nil, 0); err == nil {
		t.Fatal("expected error for missing color")
	}
}

func TestDecodeColorImageDirect(t *testing.T) {
	// 1x1 xrgb1555: full red.
	header16 := &PixelMapHeader{
		FlagsRowBytes:  2,
		Bounds:         Rect{0, 0, 1, 1},
		PixelType:      0x0010,
		PixelSize:      16,
		ComponentCount: 3,
		ComponentSize:  5,
	}
	img, err := DecodeColorImage(header16, []byte{0x7C, 0x00}, nil, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c := img.NRGBAAt(0, 0); c.R != 0xFF || c.G != 0 || c.B != 0 {
		t.Fatalf("xrgb1555 = %+v; want full red", c)
	}

	// 1x1 xrgb8888.
	header32 := &PixelMapHeader{
		FlagsRowBytes:  4,
		Bounds:         Rect{0, 0, 1, 1},
		PixelType:      0x0010,
		PixelSize:      32,
		ComponentCount: 3,
		ComponentSize:  8,
	}
	img, err = DecodeColorImage(header32, []byte{0x00, 0x12, 0x34, 0x56}, nil, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c := img.NRGBAAt(0, 0); c.R != 0x12 || c.G != 0x34 || c.B != 0x56 {
		t.Fatalf("xrgb8888 = %+v", c)
	}
}

func TestColorTableGetEntry(t *testing.T) {
	ct := &ColorTable{
		Entries: []ColorTableEntry{
			{ColorNum: 10, C: Color{1, 2, 3}},
			{ColorNum: 20, C: Color{4, 5, 6}},
		},
	}
	if e := ct.GetEntry(20); e == nil || e.C.R != 4 {
		t.Fatal("color-number lookup failed")
	}
	if ct.GetEntry(1) != nil {
		t.Fatal("missing number should return nil")
	}
	ct.Flags = 0x8000
	if e := ct.GetEntry(1); e == nil || e.C.R != 4 {
		t.Fatal("positional lookup failed with device flag set")
	}
}

func TestDecodePalettes(t *testing.T) {
	// pltt: header "entry" with count 2, then two colors.
	w := binary.NewWriter()
	w.PutU16BE(2)
	for i := 0; i < 7; i++ {
		w.PutU16BE(0)
	}
	for i := 0; i < 2; i++ {
		w.PutU16BE(uint16(0x1111 * (i + 1))) // r
		w.PutU16BE(0x2222)                   // g
		w.PutU16BE(0x3333)                   // b
		for j := 0; j < 5; j++ {
			w.PutU16BE(0)
		}
	}
	colors, err := DecodePalette(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(colors) != 2 || colors[0].R != 0x1111 || colors[1].R != 0x2222 {
		t.Fatalf("pltt colors = %+v", colors)
	}

	// clut: inclusive count of 1 means two entries.
	cw := binary.NewWriter()
	cw.PutU32BE(0) // seed
	cw.PutU16BE(0) // flags
	cw.PutU16BE(1) // count (inclusive)
	for i := 0; i < 2; i++ {
		cw.PutU16BE(uint16(i))
		cw.PutU16BE(0xAAAA)
		cw.PutU16BE(0xBBBB)
		cw.PutU16BE(0xCCCC)
	}
	entries, err := DecodeColorTableResource(cw.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[1].ColorNum != 1 || entries[0].C.G != 0xBBBB {
		t.Fatalf("clut entries = %+v", entries)
	}
}

func TestDecodeIconFamilies(t *testing.T) {
	// SICN with two 16x16 icons.
	sicn := make([]byte, 0x40)
	icons, err := DecodeSmallIcons(sicn)
	if err != nil {
		t.Fatal(err)
	}
	if len(icons) != 2 {
		t.Fatalf("SICN count = %d; want 2", len(icons))
	}
	if _, err := DecodeSmallIcons(make([]byte, 0x21)); !errors.Is(err, ErrMalformedImage) {
		t.Fatalf("bad SICN size error = %v", err)
	}

	// PAT# with one pattern.
	patn := append([]byte{0x00, 0x01}, make([]byte, 8)...)
	pats, err := DecodePatternSequence(patn)
	if err != nil || len(pats) != 1 {
		t.Fatalf("PAT# = %d patterns, %v", len(pats), err)
	}

	// CURS without hotspot bytes.
	curs, err := DecodeCursor(make([]byte, 0x40))
	if err != nil {
		t.Fatal(err)
	}
	if curs.HotspotX != 0xFFFF || curs.HotspotY != 0xFFFF {
		t.Fatalf("absent hotspot = (%X, %X); want FFFF", curs.HotspotX, curs.HotspotY)
	}
}
