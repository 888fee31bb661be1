// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package m68k

import "github.com/saferwall/rsrcfork/binary"

// Valid characters for MacsBug procedure names are a-z, A-Z, 0-9,
// underscore, percent, period, and space.
func isMacsbugSymbolChar(ch byte) bool {
	return ch == '_' || ch == '%' || ch == '.' || ch == ' ' ||
		(ch >= '0' && ch <= '9') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= 'a' && ch <= 'z')
}

func decodeMacsbugSymbolPart(r *binary.Reader, symbol []byte, length int) ([]byte, bool) {
	if r.Remaining() < length {
		return nil, false
	}
	for i := 0; i < length; i++ {
		ch, err := r.GetU8()
		if err != nil || !isMacsbugSymbolChar(ch) {
			return nil, false
		}
		symbol = append(symbol, ch)
	}
	return symbol, true
}

// tryDecodeMacsbugSymbol recognizes the fixed-length 8/16-character and
// variable-length MacsBug symbol encodings that compilers place after a
// procedure's final return opcode. It returns the symbol text and the size
// of the following constant pool, or ("", 0) with the reader unchanged.
func tryDecodeMacsbugSymbol(r *binary.Reader) (string, uint16) {
	if r.Remaining() < 2 {
		return "", 0
	}
	start := r.Where()
	b0, _ := r.GetU8()
	b1, _ := r.GetU8()
	b0Low := b0 & 0x7F
	b1Low := b1 & 0x7F

	// Fixed-length format: the first byte is in the range 0x20-0x7F with
	// the high bit optionally set. The high bit of the second byte selects
	// a 16-character (class.method) name over an 8-character one.
	if b0Low >= 0x20 {
		if isMacsbugSymbolChar(b0Low) && isMacsbugSymbolChar(b1Low) {
			symbol := []byte{b0Low, b1Low}
			if b1&0x80 != 0 {
				if sym, ok := decodeMacsbugSymbolPart(r, symbol, 16-2); ok {
					return string(sym[8:16]) + "." + string(sym[0:8]), 0
				}
			} else {
				if sym, ok := decodeMacsbugSymbolPart(r, symbol, 8-2); ok {
					return string(sym), 0
				}
			}
		}
	} else if b0 >= 0x80 && b0 <= 0x9F {
		// Variable-length format: stripping the high bit gives a length in
		// 0x00-0x1F; zero means the next byte holds the real length.
		length := int(b0Low)
		var symbol []byte
		valid := true
		if length == 0 {
			length = int(b1)
		} else if isMacsbugSymbolChar(b1) {
			symbol = append(symbol, b1)
			length--
		} else {
			valid = false
		}
		if valid {
			if sym, ok := decodeMacsbugSymbolPart(r, symbol, length); ok {
				if r.Where()&1 != 0 {
					// Data after the name starts on a word boundary.
					r.Skip(1)
				}
				numConstants, err := r.GetU16BE()
				if err == nil {
					if numConstants&1 != 0 {
						numConstants++
					}
					return string(sym), numConstants
				}
			}
		}
	}

	r.Go(start)
	return "", 0
}
