// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"fmt"

	"github.com/saferwall/rsrcfork/binary"
)

// DecodePalette decodes a pltt resource. The 16-byte header's first word
// is the entry count (exclusive); the rest of the header doesn't matter.
func DecodePalette(data []byte) ([]Color, error) {
	const entrySize = 16
	if len(data) < entrySize {
		return nil, fmt.Errorf("%w: pltt too small for header", ErrMalformedImage)
	}
	r := binary.NewReader(data)
	count, _ := r.GetU16BE()
	if len(data) < entrySize*(int(count)+1) {
		return nil, fmt.Errorf("%w: pltt too small for all entries", ErrMalformedImage)
	}
	var ret []Color
	for x := 1; x-1 < int(count); x++ {
		r.Go(x * entrySize)
		c, err := ReadColor(r)
		if err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
	return ret, nil
}

// DecodeColorTableResource decodes a clut-layout resource (clut, actb,
// cctb, dctb, wctb all share it). The count in the 8-byte header is
// inclusive: there are count + 1 colors.
func DecodeColorTableResource(data []byte) ([]ColorTableEntry, error) {
	const entrySize = 8
	if len(data) < entrySize {
		return nil, fmt.Errorf("%w: clut too small for header", ErrMalformedImage)
	}
	r := binary.NewReader(data)
	count, err := r.PGetU16BE(6)
	if err != nil {
		return nil, err
	}
	if len(data) < entrySize*(int(count)+2) {
		return nil, fmt.Errorf("%w: clut too small for all entries", ErrMalformedImage)
	}
	var ret []ColorTableEntry
	for x := 1; x-1 <= int(count); x++ {
		r.Go(x * entrySize)
		num, err := r.GetU16BE()
		if err != nil {
			return nil, err
		}
		c, err := ReadColor(r)
		if err != nil {
			return nil, err
		}
		ret = append(ret, ColorTableEntry{ColorNum: num, C: c})
	}
	return ret, nil
}
