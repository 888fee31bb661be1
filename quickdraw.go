// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/saferwall/rsrcfork/binary"
)

// Errors
var (
	// ErrMalformedImage is returned when a pixel map, bitmap, color
	// table, or region fails a structural check.
	ErrMalformedImage = errors.New("malformed image structure")
)

// Color is a 16-bit-per-channel RGB color.
type Color struct {
	R uint16
	G uint16
	B uint16
}

// ReadColor reads a color from the reader.
func ReadColor(r *binary.Reader) (Color, error) {
	var c Color
	var err error
	if c.R, err = r.GetU16BE(); err != nil {
		return c, err
	}
	if c.G, err = r.GetU16BE(); err != nil {
		return c, err
	}
	c.B, err = r.GetU16BE()
	return c, err
}

// Color8 is an 8-bit-per-channel RGB color.
type Color8 struct {
	R uint8
	G uint8
	B uint8
}

// As8 converts to 8 bits per channel by integer division by 0x101.
func (c Color) As8() Color8 {
	return Color8{uint8(c.R / 0x101), uint8(c.G / 0x101), uint8(c.B / 0x101)}
}

// ToU64 packs the three channels into one comparable value.
func (c Color) ToU64() uint64 {
	return uint64(c.R)<<32 | uint64(c.G)<<16 | uint64(c.B)
}

// Point is a QuickDraw point; the vertical coordinate comes first on the
// wire.
type Point struct {
	Y int16
	X int16
}

// ReadPoint reads a point from the reader.
func ReadPoint(r *binary.Reader) (Point, error) {
	var p Point
	y, err := r.GetS16BE()
	if err != nil {
		return p, err
	}
	x, err := r.GetS16BE()
	if err != nil {
		return p, err
	}
	p.Y, p.X = y, x
	return p, nil
}

func (p Point) String() string {
	return fmt.Sprintf("Point(%d, %d)", p.X, p.Y)
}

// Rect is a QuickDraw rectangle: (y1, x1, y2, x2).
type Rect struct {
	Y1 int16
	X1 int16
	Y2 int16
	X2 int16
}

// ReadRect reads a rect from the reader.
func ReadRect(r *binary.Reader) (Rect, error) {
	var rc Rect
	var err error
	y1, err := r.GetS16BE()
	if err != nil {
		return rc, err
	}
	x1, err := r.GetS16BE()
	if err != nil {
		return rc, err
	}
	y2, err := r.GetS16BE()
	if err != nil {
		return rc, err
	}
	x2, err := r.GetS16BE()
	if err != nil {
		return rc, err
	}
	return Rect{y1, x1, y2, x2}, nil
}

// Width returns x2 - x1.
func (r Rect) Width() int {
	return int(r.X2) - int(r.X1)
}

// Height returns y2 - y1.
func (r Rect) Height() int {
	return int(r.Y2) - int(r.Y1)
}

// IsEmpty reports whether either dimension is zero.
func (r Rect) IsEmpty() bool {
	return r.X1 == r.X2 || r.Y1 == r.Y2
}

// Contains reports whether the point (x, y) is inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= int(r.X1) && x < int(r.X2) && y >= int(r.Y1) && y < int(r.Y2)
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return int(other.X1) >= int(r.X1) && int(other.X1) < int(r.X2) &&
		int(other.Y1) >= int(r.Y1) && int(other.Y1) < int(r.Y2) &&
		int(other.X2) >= int(r.X1) && int(other.X2) <= int(r.X2) &&
		int(other.Y2) >= int(r.Y1) && int(other.Y2) <= int(r.Y2)
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(%d, %d, %d, %d)", r.X1, r.Y1, r.X2, r.Y2)
}

// Fixed is a 16.16 fixed-point value.
type Fixed struct {
	Whole   int16
	Decimal uint16
}

// Pattern is an 8x8 monochrome pattern.
type Pattern struct {
	Rows [8]uint8
}

// PixelAt reports whether the pattern bit at (x, y) is set.
func (p Pattern) PixelAt(x, y uint8) bool {
	return (p.Rows[y&7]>>(7-(x&7)))&1 != 0
}

// Region is an arbitrary-shape 2-D mask: a bounding rect plus a set of
// inversion points. A pixel is inside the region iff an odd number of
// inversion points lie at or above and at or to the left of it.
type Region struct {
	Rect       Rect
	inversions map[int32]struct{}

	// rendered is a lazily-computed, memoized mask; 0 = outside,
	// 0xFF = inside.
	rendered *image.Alpha
}

func inversionSignature(x, y int16) int32 {
	return int32(x)<<16 | int32(uint16(y))
}

func inversionPoint(sig int32) (x, y int16) {
	return int16(sig >> 16), int16(sig)
}

// NewRegion creates a rectangular region with no inversion points.
func NewRegion(rect Rect) *Region {
	return &Region{Rect: rect, inversions: make(map[int32]struct{})}
}

// ParseRegion parses the length-prefixed region encoding: per scanline,
// the x coordinates at which the inside state flips, terminated by the
// 0x7FFF sentinel.
func ParseRegion(r *binary.Reader) (*Region, error) {
	startOffset := r.Where()
	size, err := r.GetU16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: region too small", ErrMalformedImage)
	}
	if size < 0x0A {
		return nil, fmt.Errorf("%w: region cannot be smaller than 10 bytes", ErrMalformedImage)
	}
	if size&1 != 0 {
		return nil, fmt.Errorf("%w: region size is not even", ErrMalformedImage)
	}

	rect, err := ReadRect(r)
	if err != nil {
		return nil, fmt.Errorf("%w: region rect out of range", ErrMalformedImage)
	}
	rgn := NewRegion(rect)

	end := startOffset + int(size)
	for r.Where() < end {
		yU, err := r.GetU16BE()
		if err != nil {
			return nil, fmt.Errorf("%w: region data out of range", ErrMalformedImage)
		}
		if yU == 0x7FFF {
			break
		}
		y := int16(yU)
		for r.Where() < end {
			xU, err := r.GetU16BE()
			if err != nil {
				return nil, fmt.Errorf("%w: region data out of range", ErrMalformedImage)
			}
			if xU == 0x7FFF {
				break
			}
			rgn.inversions[inversionSignature(int16(xU), y)] = struct{}{}
		}
	}
	if r.Where() != end {
		return nil, fmt.Errorf("%w: region ends before all data is parsed", ErrMalformedImage)
	}
	return rgn, nil
}

// InversionPoints returns the inversion-point set.
func (g *Region) InversionPoints() []Point {
	pts := make([]Point, 0, len(g.inversions))
	for sig := range g.inversions {
		x, y := inversionPoint(sig)
		pts = append(pts, Point{Y: y, X: x})
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Y != pts[j].Y {
			return pts[i].Y < pts[j].Y
		}
		return pts[i].X < pts[j].X
	})
	return pts
}

// IsInversionPoint reports whether (x, y) is in the inversion set.
func (g *Region) IsInversionPoint(x, y int16) bool {
	_, ok := g.inversions[inversionSignature(x, y)]
	return ok
}

// AddInversionPoint adds (x, y) to the inversion set and invalidates the
// cached mask.
func (g *Region) AddInversionPoint(x, y int16) {
	g.inversions[inversionSignature(x, y)] = struct{}{}
	g.rendered = nil
}

// Serialize re-encodes the region. The byte encoding round-trips through
// ParseRegion to an equal rect and inversion-point set; byte-level
// identity with the source encoding is not promised.
func (g *Region) Serialize() []byte {
	pts := g.InversionPoints()

	w := binary.NewWriter()
	w.PutU16BE(0) // overwritten with the final size below
	w.PutU16BE(uint16(g.Rect.Y1))
	w.PutU16BE(uint16(g.Rect.X1))
	w.PutU16BE(uint16(g.Rect.Y2))
	w.PutU16BE(uint16(g.Rect.X2))

	for i := 0; i < len(pts); {
		y := pts[i].Y
		w.PutU16BE(uint16(y))
		for ; i < len(pts) && pts[i].Y == y; i++ {
			w.PutU16BE(uint16(pts[i].X))
		}
		w.PutU16BE(0x7FFF)
	}
	if len(pts) > 0 {
		w.PutU16BE(0x7FFF)
	}

	data := w.Bytes()
	w.PutU16BEAt(0, uint16(len(data)))
	return data
}

// Render computes (once) and returns the region mask over the bounding
// rect: 0 = outside, 0xFF = inside. Rendering XORs a downward-right
// rectangle anchored at each inversion point.
func (g *Region) Render() *image.Alpha {
	width := g.Rect.Width()
	height := g.Rect.Height()
	if g.rendered != nil && g.rendered.Rect.Dx() == width && g.rendered.Rect.Dy() == height {
		return g.rendered
	}
	img := image.NewAlpha(image.Rect(0, 0, width, height))
	for sig := range g.inversions {
		px, py := inversionPoint(sig)
		for y := int(py) - int(g.Rect.Y1); y < height; y++ {
			if y < 0 {
				continue
			}
			for x := int(px) - int(g.Rect.X1); x < width; x++ {
				if x < 0 {
					continue
				}
				i := img.PixOffset(x, y)
				img.Pix[i] ^= 0xFF
			}
		}
	}
	g.rendered = img
	return img
}

// Contains reports whether the pixel at (x, y) is inside the region. When
// the bounding rect covers a million pixels or more, counting inversions
// is cheaper on average than rendering; some PICTs define insanely large
// clip regions for packed copy-bits opcodes even though the picture
// itself is small.
func (g *Region) Contains(x, y int16) bool {
	if !g.Rect.Contains(int(x), int(y)) {
		return false
	}
	if g.Rect.Width()*g.Rect.Height() >= 1000000 {
		contained := false
		for sig := range g.inversions {
			px, py := inversionPoint(sig)
			if px <= x && py <= y {
				contained = !contained
			}
		}
		return contained
	}
	mask := g.Render()
	return mask.Pix[mask.PixOffset(int(x)-int(g.Rect.X1), int(y)-int(g.Rect.Y1))] != 0
}

// BitMapHeader heads a monochrome bitmap: row bytes then bounds.
type BitMapHeader struct {
	FlagsRowBytes uint16
	Bounds        Rect
}

// ReadBitMapHeader reads a bitmap header.
func ReadBitMapHeader(r *binary.Reader) (BitMapHeader, error) {
	var h BitMapHeader
	var err error
	if h.FlagsRowBytes, err = r.GetU16BE(); err != nil {
		return h, err
	}
	h.Bounds, err = ReadRect(r)
	return h, err
}

// PixelMapHeader heads a color pixel map. The low 14 bits of
// FlagsRowBytes are the row stride; the high 2 bits are flags.
type PixelMapHeader struct {
	FlagsRowBytes    uint16
	Bounds           Rect
	Version          uint16
	PackFormat       uint16
	PackSize         uint32
	HRes             uint32
	VRes             uint32
	PixelType        uint16
	PixelSize        uint16 // bits per pixel
	ComponentCount   uint16
	ComponentSize    uint16
	PlaneOffset      uint32
	ColorTableOffset uint32
	Reserved         uint32
}

// RowBytes returns the row stride in bytes.
func (h *PixelMapHeader) RowBytes() int {
	return int(h.FlagsRowBytes & 0x3FFF)
}

// ReadPixelMapHeader reads a pixel map header.
func ReadPixelMapHeader(r *binary.Reader) (PixelMapHeader, error) {
	var h PixelMapHeader
	var err error
	if h.FlagsRowBytes, err = r.GetU16BE(); err != nil {
		return h, err
	}
	if h.Bounds, err = ReadRect(r); err != nil {
		return h, err
	}
	h.Version, _ = r.GetU16BE()
	h.PackFormat, _ = r.GetU16BE()
	h.PackSize, _ = r.GetU32BE()
	h.HRes, _ = r.GetU32BE()
	h.VRes, _ = r.GetU32BE()
	h.PixelType, _ = r.GetU16BE()
	h.PixelSize, _ = r.GetU16BE()
	h.ComponentCount, _ = r.GetU16BE()
	h.ComponentSize, _ = r.GetU16BE()
	h.PlaneOffset, _ = r.GetU32BE()
	h.ColorTableOffset, _ = r.GetU32BE()
	if h.Reserved, err = r.GetU32BE(); err != nil {
		return h, err
	}
	return h, nil
}

// pixelMapHeaderSize is the wire size of a PixelMapHeader.
const pixelMapHeaderSize = 36

// lookupPixelMapEntry extracts the pixel value at (x, y) for the given
// depth from raw pixel-map bytes.
func lookupPixelMapEntry(data []byte, pixelSize uint16, rowBytes, x, y int) (uint32, error) {
	switch pixelSize {
	case 1:
		i := y*rowBytes + x/8
		if i >= len(data) {
			return 0, binary.ErrOutOfRange
		}
		return uint32(data[i]>>(7-(x&7))) & 1, nil
	case 2:
		i := y*rowBytes + x/4
		if i >= len(data) {
			return 0, binary.ErrOutOfRange
		}
		return uint32(data[i]>>(6-(x&3)*2)) & 3, nil
	case 4:
		i := y*rowBytes + x/2
		if i >= len(data) {
			return 0, binary.ErrOutOfRange
		}
		return uint32(data[i]>>(4-(x&1)*4)) & 15, nil
	case 8:
		i := y*rowBytes + x
		if i >= len(data) {
			return 0, binary.ErrOutOfRange
		}
		return uint32(data[i]), nil
	case 16:
		i := y*rowBytes + x*2
		if i+1 >= len(data) {
			return 0, binary.ErrOutOfRange
		}
		return uint32(data[i])<<8 | uint32(data[i+1]), nil
	case 32:
		i := y*rowBytes + x*4
		if i+3 >= len(data) {
			return 0, binary.ErrOutOfRange
		}
		return uint32(data[i])<<24 | uint32(data[i+1])<<16 |
			uint32(data[i+2])<<8 | uint32(data[i+3]), nil
	}
	return 0, fmt.Errorf("%w: pixel size is not 1, 2, 4, 8, 16, or 32 bits", ErrMalformedImage)
}

// ColorTableEntry is one color table entry; ColorNum may be a stored
// color number or a positional index, depending on the table flags.
type ColorTableEntry struct {
	ColorNum uint16
	C        Color
}

// ColorTable resolves pixel values to colors.
type ColorTable struct {
	Seed    uint32
	Flags   uint16
	Entries []ColorTableEntry
}

// ReadColorTable reads a color table, including its entries.
func ReadColorTable(r *binary.Reader) (*ColorTable, error) {
	var ct ColorTable
	var err error
	if ct.Seed, err = r.GetU32BE(); err != nil {
		return nil, err
	}
	if ct.Flags, err = r.GetU16BE(); err != nil {
		return nil, err
	}
	numEntriesField, err := r.GetS16BE()
	if err != nil {
		return nil, err
	}
	if numEntriesField < 0 {
		return nil, fmt.Errorf("%w: color table has negative size", ErrMalformedImage)
	}
	// The stored count is the entry count minus one.
	for i := 0; i <= int(numEntriesField); i++ {
		num, err := r.GetU16BE()
		if err != nil {
			return nil, fmt.Errorf("%w: color table contents too large", ErrMalformedImage)
		}
		c, err := ReadColor(r)
		if err != nil {
			return nil, fmt.Errorf("%w: color table contents too large", ErrMalformedImage)
		}
		ct.Entries = append(ct.Entries, ColorTableEntry{ColorNum: num, C: c})
	}
	return &ct, nil
}

// GetEntry resolves a pixel value. If the device flag (0x8000) is set the
// value is a positional index and the stored color numbers are ignored.
func (ct *ColorTable) GetEntry(id uint32) *ColorTableEntry {
	if ct.Flags&0x8000 != 0 {
		if int(id) < len(ct.Entries) {
			return &ct.Entries[id]
		}
	} else {
		for i := range ct.Entries {
			if uint32(ct.Entries[i].ColorNum) == id {
				return &ct.Entries[i]
			}
		}
	}
	return nil
}

// DecodeMonochromeImage decodes a 1-bit image; a set bit is black.
// rowBytes of zero means tightly packed, which requires the width to be a
// multiple of 8.
func DecodeMonochromeImage(data []byte, w, h, rowBytes int) (*image.NRGBA, error) {
	if rowBytes == 0 {
		if w&7 != 0 {
			return nil, fmt.Errorf("%w: width must be a multiple of 8 unless rowBytes is specified", ErrMalformedImage)
		}
		rowBytes = w / 8
	}
	if len(data) != rowBytes*h {
		return nil, fmt.Errorf("%w: incorrect data size: expected %d bytes, got %d bytes",
			ErrMalformedImage, rowBytes*h, len(data))
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x += 8 {
			pixels := data[y*rowBytes+x/8]
			zLimit := 8
			if x+8 > w {
				zLimit = w - x
			}
			for z := 0; z < zLimit; z++ {
				value := uint8(0xFF)
				if pixels&0x80 != 0 {
					value = 0x00
				}
				pixels <<= 1
				img.SetNRGBA(x+z, y, color.NRGBA{value, value, value, 0xFF})
			}
		}
	}
	return img, nil
}

// DecodeMonochromeImageMasked decodes a 1-bit image followed by a 1-bit
// mask of the same dimensions; mask bits become alpha.
func DecodeMonochromeImageMasked(data []byte, w, h int) (*image.NRGBA, error) {
	if w&7 != 0 {
		return nil, fmt.Errorf("%w: width is not a multiple of 8", ErrMalformedImage)
	}
	if len(data) != w*h/4 {
		return nil, fmt.Errorf("%w: incorrect data size: expected %d bytes, got %d bytes",
			ErrMalformedImage, w*h/4, len(data))
	}
	imageData := data[:w*h/8]
	maskData := data[w*h/8:]

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x += 8 {
			pixels := imageData[y*w/8+x/8]
			maskPixels := maskData[y*w/8+x/8]
			for z := 0; z < 8; z++ {
				value := uint8(0xFF)
				if pixels&0x80 != 0 {
					value = 0x00
				}
				alpha := uint8(0x00)
				if maskPixels&0x80 != 0 {
					alpha = 0xFF
				}
				pixels <<= 1
				maskPixels <<= 1
				img.SetNRGBA(x+z, y, color.NRGBA{value, value, value, alpha})
			}
		}
	}
	return img, nil
}

// iconColorTable16 is the fixed 16-color palette used by 4-bit icons.
var iconColorTable16 = [16]uint32{
	0xFFFFFF, 0xFFFF00, 0xFF6600, 0xDD0000, 0xFF0099, 0x330099, 0x0000DD, 0x0099FF,
	0x00BB00, 0x006600, 0x663300, 0x996633, 0xCCCCCC, 0x888888, 0x444444, 0x000000,
}

// Decode4BitImage decodes a 4-bit indexed image using the fixed 16-color
// icon palette.
func Decode4BitImage(data []byte, w, h int) (*image.NRGBA, error) {
	if w&1 != 0 {
		return nil, fmt.Errorf("%w: width is not even", ErrMalformedImage)
	}
	if len(data) != w*h/2 {
		return nil, fmt.Errorf("%w: incorrect data size: expected %d bytes, got %d bytes",
			ErrMalformedImage, w*h/2, len(data))
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x += 2 {
			indexes := data[y*w/2+x/2]
			left := iconColorTable16[(indexes>>4)&0x0F]
			right := iconColorTable16[indexes&0x0F]
			img.SetNRGBA(x, y, color.NRGBA{uint8(left >> 16), uint8(left >> 8), uint8(left), 0xFF})
			img.SetNRGBA(x+1, y, color.NRGBA{uint8(right >> 16), uint8(right >> 8), uint8(right), 0xFF})
		}
	}
	return img, nil
}

// iconColorTable256 is the fixed 256-color palette used by 8-bit icons.
var iconColorTable256 = [256]uint32{
	0xFFFFFF, 0xFFFFCC, 0xFFFF99, 0xFFFF66, 0xFFFF33, 0xFFFF00,
	0xFFCCFF, 0xFFCCCC, 0xFFCC99, 0xFFCC66, 0xFFCC33, 0xFFCC00,
	0xFF99FF, 0xFF99CC, 0xFF9999, 0xFF9966, 0xFF9933, 0xFF9900,
	0xFF66FF, 0xFF66CC, 0xFF6699, 0xFF6666, 0xFF6633, 0xFF6600,
	0xFF33FF, 0xFF33CC, 0xFF3399, 0xFF3366, 0xFF3333, 0xFF3300,
	0xFF00FF, 0xFF00CC, 0xFF0099, 0xFF0066, 0xFF0033, 0xFF0000,
	0xCCFFFF, 0xCCFFCC, 0xCCFF99, 0xCCFF66, 0xCCFF33, 0xCCFF00,
	0xCCCCFF, 0xCCCCCC, 0xCCCC99, 0xCCCC66, 0xCCCC33, 0xCCCC00,
	0xCC99FF, 0xCC99CC, 0xCC9999, 0xCC9966, 0xCC9933, 0xCC9900,
	0xCC66FF, 0xCC66CC, 0xCC6699, 0xCC6666, 0xCC6633, 0xCC6600,
	0xCC33FF, 0xCC33CC, 0xCC3399, 0xCC3366, 0xCC3333, 0xCC3300,
	0xCC00FF, 0xCC00CC, 0xCC0099, 0xCC0066, 0xCC0033, 0xCC0000,
	0x99FFFF, 0x99FFCC, 0x99FF99, 0x99FF66, 0x99FF33, 0x99FF00,
	0x99CCFF, 0x99CCCC, 0x99CC99, 0x99CC66, 0x99CC33, 0x99CC00,
	0x9999FF, 0x9999CC, 0x999999, 0x999966, 0x999933, 0x999900,
	0x9966FF, 0x9966CC, 0x996699, 0x996666, 0x996633, 0x996600,
	0x9933FF, 0x9933CC, 0x993399, 0x993366, 0x993333, 0x993300,
	0x9900FF, 0x9900CC, 0x990099, 0x990066, 0x990033, 0x990000,
	0x66FFFF, 0x66FFCC, 0x66FF99, 0x66FF66, 0x66FF33, 0x66FF00,
	0x66CCFF, 0x66CCCC, 0x66CC99, 0x66CC66, 0x66CC33, 0x66CC00,
	0x6699FF, 0x6699CC, 0x669999, 0x669966, 0x669933, 0x669900,
	0x6666FF, 0x6666CC, 0x666699, 0x666666, 0x666633, 0x666600,
	0x6633FF, 0x6633CC, 0x663399, 0x663366, 0x663333, 0x663300,
	0x6600FF, 0x6600CC, 0x660099, 0x660066, 0x660033, 0x660000,
	0x33FFFF, 0x33FFCC, 0x33FF99, 0x33FF66, 0x33FF33, 0x33FF00,
	0x33CCFF, 0x33CCCC, 0x33CC99, 0x33CC66, 0x33CC33, 0x33CC00,
	0x3399FF, 0x3399CC, 0x339999, 0x339966, 0x339933, 0x339900,
	0x3366FF, 0x3366CC, 0x336699, 0x336666, 0x336633, 0x336600,
	0x3333FF, 0x3333CC, 0x333399, 0x333366, 0x333333, 0x333300,
	0x3300FF, 0x3300CC, 0x330099, 0x330066, 0x330033, 0x330000,
	0x00FFFF, 0x00FFCC, 0x00FF99, 0x00FF66, 0x00FF33, 0x00FF00,
	0x00CCFF, 0x00CCCC, 0x00CC99, 0x00CC66, 0x00CC33, 0x00CC00,
	0x0099FF, 0x0099CC, 0x009999, 0x009966, 0x009933, 0x009900,
	0x0066FF, 0x0066CC, 0x006699, 0x006666, 0x006633, 0x006600,
	0x0033FF, 0x0033CC, 0x003399, 0x003366, 0x003333, 0x003300,
	0x0000FF, 0x0000CC, 0x000099, 0x000066, 0x000033, // note: no black here

	0xEE0000, 0xDD0000, 0xBB0000, 0xAA0000, 0x880000,
	0x770000, 0x550000, 0x440000, 0x220000, 0x110000,
	0x00EE00, 0x00DD00, 0x00BB00, 0x00AA00, 0x008800,
	0x007700, 0x005500, 0x004400, 0x002200, 0x001100,
	0x0000EE, 0x0000DD, 0x0000BB, 0x0000AA, 0x000088,
	0x000077, 0x000055, 0x000044, 0x000022, 0x000011,
	0xEEEEEE, 0xDDDDDD, 0xBBBBBB, 0xAAAAAA, 0x888888,
	0x777777, 0x555555, 0x444444, 0x222222, 0x111111,
	0x000000,
}

// Decode8BitImage decodes an 8-bit indexed image using the fixed
// 256-color icon palette.
func Decode8BitImage(data []byte, w, h int) (*image.NRGBA, error) {
	if len(data) != w*h {
		return nil, fmt.Errorf("%w: incorrect data size: expected %d bytes, got %d bytes",
			ErrMalformedImage, w*h, len(data))
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixel := iconColorTable256[data[y*w+x]]
			img.SetNRGBA(x, y, color.NRGBA{uint8(pixel >> 16), uint8(pixel >> 8), uint8(pixel), 0xFF})
		}
	}
	return img, nil
}

// DecodeColorImage decodes an indexed or direct-color pixel map. For
// indexed maps ctable resolves pixel values; maskData, when non-nil, is a
// 1-bit alpha mask with the given row stride.
func DecodeColorImage(header *PixelMapHeader, pixelData []byte, ctable *ColorTable,
	maskData []byte, maskRowBytes int) (*image.NRGBA, error) {

	// Per the QuickDraw docs, pixel type is 0 for indexed color and 0x10
	// for direct color, even for 32-bit images.
	if header.PixelType != 0 && header.PixelType != 0x0010 {
		return nil, fmt.Errorf("%w: unknown pixel type", ErrMalformedImage)
	}
	if header.PixelType == 0 && ctable == nil {
		return nil, fmt.Errorf("%w: color table must be given for indexed-color image", ErrMalformedImage)
	}
	if header.PixelType == 0x0010 {
		if header.ComponentCount != 3 {
			return nil, fmt.Errorf("%w: unsupported channel count", ErrMalformedImage)
		}
		if header.PixelSize == 16 && header.ComponentSize != 5 {
			return nil, fmt.Errorf("%w: unsupported 16-bit channel width", ErrMalformedImage)
		}
		if header.PixelSize == 32 && header.ComponentSize != 8 {
			return nil, fmt.Errorf("%w: unsupported 32-bit channel width", ErrMalformedImage)
		}
	}

	width := header.Bounds.Width()
	height := header.Bounds.Height()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			colorID, err := lookupPixelMapEntry(pixelData, header.PixelSize, header.RowBytes(), x, y)
			if err != nil {
				return nil, err
			}

			switch {
			case header.PixelType == 0:
				alpha := uint8(0xFF)
				if maskData != nil {
					m, err := lookupPixelMapEntry(maskData, 1, maskRowBytes, x, y)
					if err != nil {
						return nil, err
					}
					if m == 0 {
						alpha = 0
					}
				}
				if e := ctable.GetEntry(colorID); e != nil {
					img.SetNRGBA(x, y, color.NRGBA{uint8(e.C.R >> 8), uint8(e.C.G >> 8),
						uint8(e.C.B >> 8), alpha})
				} else if colorID == (1<<header.PixelSize)-1 {
					// Some rare pixmaps appear to use the all-ones index
					// as black even when the table omits it.
					img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 0xFF})
				} else {
					return nil, fmt.Errorf("%w: color %X not found in color map", ErrMalformedImage, colorID)
				}

			case header.PixelSize == 16:
				// xrgb1555; the top 3 bits of each channel fill the low
				// bits so full-scale channels expand to full-scale bytes.
				r := uint8((colorID>>7)&0xF8) | uint8((colorID>>12)&0x07)
				g := uint8((colorID>>2)&0xF8) | uint8((colorID>>7)&0x07)
				b := uint8((colorID<<3)&0xF8) | uint8((colorID>>2)&0x07)
				img.SetNRGBA(x, y, color.NRGBA{r, g, b, 0xFF})

			case header.PixelSize == 32:
				// xrgb8888
				img.SetNRGBA(x, y, color.NRGBA{uint8(colorID >> 16), uint8(colorID >> 8),
					uint8(colorID), 0xFF})

			default:
				return nil, fmt.Errorf("%w: unsupported pixel format", ErrMalformedImage)
			}
		}
	}
	return img, nil
}

// ApplyAlphaFromMask copies img with the mask's alpha channel applied.
func ApplyAlphaFromMask(img, mask *image.NRGBA) (*image.NRGBA, error) {
	if img.Rect.Dx() != mask.Rect.Dx() || img.Rect.Dy() != mask.Rect.Dy() {
		return nil, fmt.Errorf("%w: image and mask dimensions are unequal", ErrMalformedImage)
	}
	out := image.NewNRGBA(img.Rect)
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			c := img.NRGBAAt(x, y)
			c.A = mask.NRGBAAt(x, y).A
			out.SetNRGBA(x, y, c)
		}
	}
	return out, nil
}
