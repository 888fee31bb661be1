// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"fmt"
	"image"

	"github.com/saferwall/rsrcfork/binary"
)

// DecodedColorIcon is a decoded cicn: the color image plus the 1-bit
// bitmap variant (which may be absent, leaving a zero-size image).
type DecodedColorIcon struct {
	Image  *image.NRGBA
	Bitmap *image.NRGBA
}

// DecodedCursor is a decoded CURS. A hotspot coordinate of 0xFFFF means
// the resource did not carry one.
type DecodedCursor struct {
	Bitmap   *image.NRGBA
	HotspotX uint16
	HotspotY uint16
}

// DecodedColorCursor is a decoded crsr.
type DecodedColorCursor struct {
	Image    *image.NRGBA
	Bitmap   *image.NRGBA
	HotspotX uint16
	HotspotY uint16
}

// DecodedPattern is a decoded ppat: the color pattern plus its monochrome
// fallback.
type DecodedPattern struct {
	Pattern    *image.NRGBA
	Monochrome *image.NRGBA
}

// DecodeColorIcon decodes a cicn resource: pixmap, mask bitmap, and 1-bit
// bitmap headers, then mask, bitmap, color table, and pixel data.
func DecodeColorIcon(data []byte) (*DecodedColorIcon, error) {
	r := binary.NewReader(data)

	// pixMap fields (preceded by an unused handle placeholder).
	if err := r.Skip(4); err != nil {
		return nil, fmt.Errorf("%w: cicn too small for header", ErrMalformedImage)
	}
	pixMap, err := ReadPixelMapHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: cicn too small for header", ErrMalformedImage)
	}
	if err := r.Skip(4); err != nil {
		return nil, fmt.Errorf("%w: cicn too small for header", ErrMalformedImage)
	}
	maskHeader, err := ReadBitMapHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: cicn too small for header", ErrMalformedImage)
	}
	if err := r.Skip(4); err != nil {
		return nil, fmt.Errorf("%w: cicn too small for header", ErrMalformedImage)
	}
	bitmapHeader, err := ReadBitMapHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: cicn too small for header", ErrMalformedImage)
	}
	if err := r.Skip(4); err != nil { // icon data handle, ignored
		return nil, fmt.Errorf("%w: cicn too small for header", ErrMalformedImage)
	}

	// The mask is required, but the bitmap may be missing.
	if pixMap.Bounds.Width() != maskHeader.Bounds.Width() ||
		pixMap.Bounds.Height() != maskHeader.Bounds.Height() {
		return nil, fmt.Errorf("%w: mask dimensions don't match icon dimensions", ErrMalformedImage)
	}
	if bitmapHeader.FlagsRowBytes != 0 &&
		(pixMap.Bounds.Width() != bitmapHeader.Bounds.Width() ||
			pixMap.Bounds.Height() != bitmapHeader.Bounds.Height()) {
		return nil, fmt.Errorf("%w: bitmap dimensions don't match icon dimensions", ErrMalformedImage)
	}
	switch pixMap.PixelSize {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("%w: pixel bit depth is not 1, 2, 4, or 8", ErrMalformedImage)
	}

	maskSize := int(maskHeader.FlagsRowBytes) * maskHeader.Bounds.Height()
	maskData, err := r.Read(maskSize)
	if err != nil {
		return nil, fmt.Errorf("%w: mask map too large", ErrMalformedImage)
	}
	bitmapSize := int(bitmapHeader.FlagsRowBytes) * bitmapHeader.Bounds.Height()
	bitmapData, err := r.Read(bitmapSize)
	if err != nil {
		return nil, fmt.Errorf("%w: bitmap too large", ErrMalformedImage)
	}
	ctable, err := ReadColorTable(r)
	if err != nil {
		return nil, fmt.Errorf("cicn: %w", err)
	}
	pixelSize := pixMap.RowBytes() * pixMap.Bounds.Height()
	pixelData, err := r.Read(pixelSize)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel map too large", ErrMalformedImage)
	}

	img, err := DecodeColorImage(&pixMap, pixelData, ctable, maskData,
		int(maskHeader.FlagsRowBytes))
	if err != nil {
		return nil, err
	}

	var bitmapImg *image.NRGBA
	if bitmapHeader.FlagsRowBytes != 0 {
		w := bitmapHeader.Bounds.Width()
		h := bitmapHeader.Bounds.Height()
		bitmapImg = image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				m, err := lookupPixelMapEntry(maskData, 1, int(maskHeader.FlagsRowBytes), x, y)
				if err != nil {
					return nil, err
				}
				alpha := uint8(0)
				if m != 0 {
					alpha = 0xFF
				}
				b, err := lookupPixelMapEntry(bitmapData, 1, int(bitmapHeader.FlagsRowBytes), x, y)
				if err != nil {
					return nil, err
				}
				value := uint8(0xFF)
				if b != 0 {
					value = 0
				}
				bitmapImg.Pix[bitmapImg.PixOffset(x, y)+0] = value
				bitmapImg.Pix[bitmapImg.PixOffset(x, y)+1] = value
				bitmapImg.Pix[bitmapImg.PixOffset(x, y)+2] = value
				bitmapImg.Pix[bitmapImg.PixOffset(x, y)+3] = alpha
			}
		}
	} else {
		bitmapImg = image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}

	return &DecodedColorIcon{Image: img, Bitmap: bitmapImg}, nil
}

// DecodeCursor decodes a CURS resource: a 16x16 bitmap and mask, then an
// optional hotspot.
func DecodeCursor(data []byte) (*DecodedCursor, error) {
	if len(data) < 0x40 {
		return nil, fmt.Errorf("%w: CURS resource is too small", ErrMalformedImage)
	}
	img, err := DecodeMonochromeImageMasked(data[:0x40], 16, 16)
	if err != nil {
		return nil, err
	}
	hotspotX := uint16(0xFFFF)
	hotspotY := uint16(0xFFFF)
	if len(data) >= 0x42 {
		hotspotX = uint16(data[0x40])<<8 | uint16(data[0x41])
	}
	if len(data) >= 0x44 {
		hotspotY = uint16(data[0x42])<<8 | uint16(data[0x43])
	}
	return &DecodedCursor{Bitmap: img, HotspotX: hotspotX, HotspotY: hotspotY}, nil
}

// DecodeColorCursor decodes a crsr resource. The type word must be 0x8000
// (monochrome) or 0x8001 (color).
func DecodeColorCursor(data []byte) (*DecodedColorCursor, error) {
	r := binary.NewReader(data)
	crsrType, err := r.GetU16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: crsr too small for header", ErrMalformedImage)
	}
	if crsrType&0xFFFE != 0x8000 {
		return nil, fmt.Errorf("%w: unknown crsr type", ErrMalformedImage)
	}
	pixelMapOffset, _ := r.GetU32BE()
	pixelDataOffset, _ := r.GetU32BE()
	r.Skip(4) // expanded data (Color QuickDraw internal)
	r.Skip(2) // expanded depth
	r.Skip(4) // unused
	bitmapBytes, err := r.Read(0x20)
	if err != nil {
		return nil, fmt.Errorf("%w: crsr too small for header", ErrMalformedImage)
	}
	r.Skip(0x20) // mask
	hotspotX, _ := r.GetU16BE()
	hotspotY, err := r.GetU16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: crsr too small for header", ErrMalformedImage)
	}

	bitmap, err := DecodeMonochromeImage(bitmapBytes, 16, 16, 0)
	if err != nil {
		return nil, err
	}

	pmr, err := r.SubFrom(int(pixelMapOffset) + 4)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel map header too large", ErrMalformedImage)
	}
	pixmapHeader, err := ReadPixelMapHeader(pmr)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel map header too large", ErrMalformedImage)
	}

	pixelMapSize := pixmapHeader.RowBytes() * pixmapHeader.Bounds.Height()
	pixelData, err := r.PRead(int(pixelDataOffset), pixelMapSize)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel map data too large", ErrMalformedImage)
	}

	ctr, err := r.SubFrom(int(pixmapHeader.ColorTableOffset))
	if err != nil {
		return nil, fmt.Errorf("%w: color table header too large", ErrMalformedImage)
	}
	ctable, err := ReadColorTable(ctr)
	if err != nil {
		return nil, fmt.Errorf("crsr: %w", err)
	}

	img, err := DecodeColorImage(&pixmapHeader, pixelData, ctable, nil, 0)
	if err != nil {
		return nil, err
	}
	return &DecodedColorCursor{Image: img, Bitmap: bitmap,
		HotspotX: hotspotX, HotspotY: hotspotY}, nil
}

// decodePixelPattern decodes the ppat wire format shared by ppat and
// ppt# entries.
func decodePixelPattern(data []byte) (*DecodedPattern, error) {
	r := binary.NewReader(data)
	patType, err := r.GetU16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: ppat too small for header", ErrMalformedImage)
	}
	pixelMapOffset, _ := r.GetU32BE()
	pixelDataOffset, _ := r.GetU32BE()
	r.Skip(4) // used internally by QuickDraw
	r.Skip(2)
	r.Skip(4) // reserved
	monoBytes, err := r.Read(8)
	if err != nil {
		return nil, fmt.Errorf("%w: ppat too small for header", ErrMalformedImage)
	}

	mono, err := DecodeMonochromeImage(monoBytes, 8, 8, 0)
	if err != nil {
		return nil, err
	}

	// Type 1 is a full-color pattern; types 0 and 2 are monochrome only.
	if patType == 0 || patType == 2 {
		return &DecodedPattern{Pattern: mono, Monochrome: mono}, nil
	}
	if patType != 1 && patType != 3 {
		return nil, fmt.Errorf("%w: unknown ppat type", ErrMalformedImage)
	}

	pmr, err := r.SubFrom(int(pixelMapOffset) + 4)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel map header too large", ErrMalformedImage)
	}
	pixmapHeader, err := ReadPixelMapHeader(pmr)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel map header too large", ErrMalformedImage)
	}
	pixelMapSize := pixmapHeader.RowBytes() * pixmapHeader.Bounds.Height()
	pixelData, err := r.PRead(int(pixelDataOffset), pixelMapSize)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel map data too large", ErrMalformedImage)
	}
	ctr, err := r.SubFrom(int(pixmapHeader.ColorTableOffset))
	if err != nil {
		return nil, fmt.Errorf("%w: color table header too large", ErrMalformedImage)
	}
	ctable, err := ReadColorTable(ctr)
	if err != nil {
		return nil, fmt.Errorf("ppat: %w", err)
	}

	pattern, err := DecodeColorImage(&pixmapHeader, pixelData, ctable, nil, 0)
	if err != nil {
		return nil, err
	}
	return &DecodedPattern{Pattern: pattern, Monochrome: mono}, nil
}

// DecodePixelPattern decodes a ppat resource.
func DecodePixelPattern(data []byte) (*DecodedPattern, error) {
	return decodePixelPattern(data)
}

// DecodePixelPatternSequence decodes a ppt# resource: a 2-byte count,
// then that many 4-byte offsets, then the ppat data.
func DecodePixelPatternSequence(data []byte) ([]*DecodedPattern, error) {
	r := binary.NewReader(data)
	count, err := r.GetU16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: ppt# does not contain count field", ErrMalformedImage)
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		if offsets[i], err = r.GetU32BE(); err != nil {
			return nil, fmt.Errorf("%w: ppt# does not contain all offsets", ErrMalformedImage)
		}
	}

	var ret []*DecodedPattern
	for i, offset := range offsets {
		endOffset := uint32(len(data))
		if i+1 < len(offsets) {
			endOffset = offsets[i+1]
		}
		if int(offset) >= len(data) {
			return nil, fmt.Errorf("%w: offset is past end of resource data", ErrMalformedImage)
		}
		if endOffset <= offset || int(endOffset) > len(data) {
			return nil, fmt.Errorf("%w: subpattern size is zero or negative", ErrMalformedImage)
		}
		pat, err := decodePixelPattern(data[offset:endOffset])
		if err != nil {
			return nil, err
		}
		ret = append(ret, pat)
	}
	return ret, nil
}

// DecodePattern decodes a 'PAT ' resource: a single 8x8 monochrome
// pattern.
func DecodePattern(data []byte) (*image.NRGBA, error) {
	if len(data) != 8 {
		return nil, fmt.Errorf("%w: PAT not exactly 8 bytes in size", ErrMalformedImage)
	}
	return DecodeMonochromeImage(data, 8, 8, 0)
}

// DecodePatternSequence decodes a PAT# resource: a count followed by 8x8
// patterns.
func DecodePatternSequence(data []byte) ([]*image.NRGBA, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: PAT# not large enough for count", ErrMalformedImage)
	}
	count := int(data[0])<<8 | int(data[1])
	var ret []*image.NRGBA
	for len(ret) < count {
		offset := 2 + len(ret)*8
		if offset+8 > len(data) {
			return nil, fmt.Errorf("%w: PAT# not large enough for all data", ErrMalformedImage)
		}
		img, err := DecodeMonochromeImage(data[offset:offset+8], 8, 8, 0)
		if err != nil {
			return nil, err
		}
		ret = append(ret, img)
	}
	return ret, nil
}

// DecodeSmallIcons decodes a SICN resource: several 0x20-byte monochrome
// 16x16 images concatenated together; there isn't even a header.
func DecodeSmallIcons(data []byte) ([]*image.NRGBA, error) {
	if len(data)&0x1F != 0 {
		return nil, fmt.Errorf("%w: SICN size not a multiple of 32", ErrMalformedImage)
	}
	var ret []*image.NRGBA
	for offset := 0; offset < len(data); offset += 0x20 {
		img, err := DecodeMonochromeImage(data[offset:offset+0x20], 16, 16, 0)
		if err != nil {
			return nil, err
		}
		ret = append(ret, img)
	}
	return ret, nil
}

// DecodeIcon decodes an ICON resource: a 32x32 monochrome image.
func DecodeIcon(data []byte) (*image.NRGBA, error) {
	return DecodeMonochromeImage(data, 32, 32, 0)
}

// DecodeIconMasked decodes an ICN# / ics# / icm# / kcs# resource: a
// monochrome image followed by its mask.
func DecodeIconMasked(data []byte, w, h int) (*image.NRGBA, error) {
	return DecodeMonochromeImageMasked(data, w, h)
}

// iconDims gives the pixel dimensions for each icon family.
func iconDims(typ uint32) (w, h int) {
	switch typ {
	case TypeICL4, TypeICL8, TypeICNN, TypeICON:
		return 32, 32
	case TypeICM4, TypeICM8, TypeICMN:
		return 16, 12
	default: // ics/kcs families
		return 16, 16
	}
}

// maskTypeFor returns the resource type of the matching mask list for a
// color icon family member.
func maskTypeFor(typ uint32) uint32 {
	switch typ {
	case TypeICL4, TypeICL8:
		return TypeICNN
	case TypeICM4, TypeICM8:
		return TypeICMN
	case TypeKCS4, TypeKCS8:
		return TypeKCSN
	default:
		return TypeICSN
	}
}

// DecodeColorIconFamily decodes an icl8/icm8/ics8/kcs8 or
// icl4/icm4/ics4/kcs4 resource. When the fork contains the corresponding
// mask ('#') resource with the same id, its mask becomes the alpha
// channel.
func (f *File) DecodeColorIconFamily(res *Resource) (*image.NRGBA, error) {
	w, h := iconDims(res.Type)
	var decoded *image.NRGBA
	var err error
	switch res.Type {
	case TypeICL8, TypeICM8, TypeICS8, TypeKCS8:
		decoded, err = Decode8BitImage(res.Data, w, h)
	case TypeICL4, TypeICM4, TypeICS4, TypeKCS4:
		decoded, err = Decode4BitImage(res.Data, w, h)
	default:
		return nil, fmt.Errorf("%s: %w: not a color icon family type", TypeString(res.Type), ErrMalformedImage)
	}
	if err != nil {
		return nil, err
	}

	maskRes, lookupErr := f.GetResource(maskTypeFor(res.Type), res.ID, 0)
	if lookupErr != nil {
		return decoded, nil
	}
	mask, maskErr := DecodeIconMasked(maskRes.Data, w, h)
	if maskErr != nil {
		return decoded, nil
	}
	return ApplyAlphaFromMask(decoded, mask)
}
