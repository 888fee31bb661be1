// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package binary implements endian-aware cursor access over byte slices.
// All multi-byte accessors come in big- and little-endian flavors because
// classic Mac structures are big-endian while SH-4 code and WAV output are
// little-endian.
package binary

import "errors"

// ErrOutOfRange is returned when a read or write would exceed the bounds of
// the backing slice. Accesses never silently truncate.
var ErrOutOfRange = errors.New("access beyond end of data")

// Reader is a cursor over a borrowed byte slice.
type Reader struct {
	data []byte
	off  int
}

// NewReader creates a reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Size returns the total length of the backing slice.
func (r *Reader) Size() int {
	return len(r.data)
}

// Where returns the current cursor offset.
func (r *Reader) Where() int {
	return r.off
}

// Remaining returns the number of bytes left after the cursor.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// EOF reports whether the cursor is at or past the end of the data.
func (r *Reader) EOF() bool {
	return r.off >= len(r.data)
}

// Go moves the cursor to an absolute offset.
func (r *Reader) Go(off int) error {
	if off < 0 || off > len(r.data) {
		return ErrOutOfRange
	}
	r.off = off
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	return r.Go(r.off + n)
}

// Sub returns a reader over the n bytes beginning at off, without moving
// the cursor.
func (r *Reader) Sub(off, n int) (*Reader, error) {
	if off < 0 || n < 0 || off+n > len(r.data) {
		return nil, ErrOutOfRange
	}
	return NewReader(r.data[off : off+n]), nil
}

// SubFrom returns a reader over everything from off to the end of the data.
func (r *Reader) SubFrom(off int) (*Reader, error) {
	if off < 0 || off > len(r.data) {
		return nil, ErrOutOfRange
	}
	return NewReader(r.data[off:]), nil
}

func (r *Reader) pread(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(r.data) {
		return nil, ErrOutOfRange
	}
	return r.data[off : off+n], nil
}

// PRead returns a copy of the n bytes at off without moving the cursor.
func (r *Reader) PRead(off, n int) ([]byte, error) {
	b, err := r.pread(off, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Read returns a copy of the next n bytes and advances the cursor.
func (r *Reader) Read(n int) ([]byte, error) {
	b, err := r.PRead(r.off, n)
	if err != nil {
		return nil, err
	}
	r.off += n
	return b, nil
}

// GetU8 reads one byte and advances.
func (r *Reader) GetU8() (uint8, error) {
	b, err := r.pread(r.off, 1)
	if err != nil {
		return 0, err
	}
	r.off++
	return b[0], nil
}

// GetS8 reads one signed byte and advances.
func (r *Reader) GetS8() (int8, error) {
	v, err := r.GetU8()
	return int8(v), err
}

// PGetU8 reads one byte at off without advancing.
func (r *Reader) PGetU8(off int) (uint8, error) {
	b, err := r.pread(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// PeekU8 reads the byte at the cursor without advancing.
func (r *Reader) PeekU8() (uint8, error) {
	return r.PGetU8(r.off)
}

// GetU16BE reads a big-endian 16-bit value and advances.
func (r *Reader) GetU16BE() (uint16, error) {
	b, err := r.pread(r.off, 2)
	if err != nil {
		return 0, err
	}
	r.off += 2
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// GetU16LE reads a little-endian 16-bit value and advances.
func (r *Reader) GetU16LE() (uint16, error) {
	b, err := r.pread(r.off, 2)
	if err != nil {
		return 0, err
	}
	r.off += 2
	return uint16(b[1])<<8 | uint16(b[0]), nil
}

// GetS16BE reads a signed big-endian 16-bit value and advances.
func (r *Reader) GetS16BE() (int16, error) {
	v, err := r.GetU16BE()
	return int16(v), err
}

// PGetU16BE reads a big-endian 16-bit value at off without advancing.
func (r *Reader) PGetU16BE(off int) (uint16, error) {
	b, err := r.pread(off, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// PeekU16BE reads the big-endian 16-bit value at the cursor without
// advancing.
func (r *Reader) PeekU16BE() (uint16, error) {
	return r.PGetU16BE(r.off)
}

// GetU32BE reads a big-endian 32-bit value and advances.
func (r *Reader) GetU32BE() (uint32, error) {
	b, err := r.pread(r.off, 4)
	if err != nil {
		return 0, err
	}
	r.off += 4
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// GetU32LE reads a little-endian 32-bit value and advances.
func (r *Reader) GetU32LE() (uint32, error) {
	b, err := r.pread(r.off, 4)
	if err != nil {
		return 0, err
	}
	r.off += 4
	return uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0]), nil
}

// GetS32BE reads a signed big-endian 32-bit value and advances.
func (r *Reader) GetS32BE() (int32, error) {
	v, err := r.GetU32BE()
	return int32(v), err
}

// PGetU32BE reads a big-endian 32-bit value at off without advancing.
func (r *Reader) PGetU32BE(off int) (uint32, error) {
	b, err := r.pread(off, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// GetU64BE reads a big-endian 64-bit value and advances.
func (r *Reader) GetU64BE() (uint64, error) {
	hi, err := r.GetU32BE()
	if err != nil {
		return 0, err
	}
	lo, err := r.GetU32BE()
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// GetU64LE reads a little-endian 64-bit value and advances.
func (r *Reader) GetU64LE() (uint64, error) {
	lo, err := r.GetU32LE()
	if err != nil {
		return 0, err
	}
	hi, err := r.GetU32LE()
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// GetPString reads a Pascal string (length byte followed by that many
// bytes) and advances.
func (r *Reader) GetPString() ([]byte, error) {
	n, err := r.GetU8()
	if err != nil {
		return nil, err
	}
	return r.Read(int(n))
}

// PGetPString reads a Pascal string at off without advancing.
func (r *Reader) PGetPString(off int) ([]byte, error) {
	n, err := r.PGetU8(off)
	if err != nil {
		return nil, err
	}
	return r.PRead(off+1, int(n))
}

// GetCString reads bytes up to (but not including) the next zero byte and
// advances past the terminator. Fails if no terminator exists.
func (r *Reader) GetCString() ([]byte, error) {
	for end := r.off; end < len(r.data); end++ {
		if r.data[end] == 0 {
			out := make([]byte, end-r.off)
			copy(out, r.data[r.off:end])
			r.off = end + 1
			return out, nil
		}
	}
	return nil, ErrOutOfRange
}
