// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"fmt"
	"image"

	"github.com/saferwall/rsrcfork/binary"
)

// Errors
var (
	// ErrNoPictEngine is returned when no QuickDraw picture engine has
	// been installed and a PICT cannot be decoded.
	ErrNoPictEngine = errors.New("no QuickDraw picture engine installed")
)

// DecodedPict is a decoded PICT. When the picture wraps a QuickTime
// payload the engine cannot rasterize, the payload format and bytes are
// surfaced instead of an image.
type DecodedPict struct {
	Image               *image.NRGBA
	EmbeddedImageFormat string
	EmbeddedImageData   []byte
}

// PictHeader is the fixed header of a PICT resource.
type PictHeader struct {
	Size   uint16 // unused in v2 pictures
	Bounds Rect
}

// ReadPictHeader reads the PICT header.
func ReadPictHeader(r *binary.Reader) (PictHeader, error) {
	var h PictHeader
	var err error
	if h.Size, err = r.GetU16BE(); err != nil {
		return h, err
	}
	h.Bounds, err = ReadRect(r)
	return h, err
}

// PictEngine rasterizes QuickDraw pictures. The picture interpreter is a
// separate collaborator; anything that can draw opcodes into a pixel
// buffer (and report undecodable QuickTime payloads) can plug in here.
type PictEngine interface {
	// RenderPict rasterizes the picture. When the picture holds an
	// embedded QuickTime image the engine cannot decode, it returns the
	// payload's format extension and bytes with a nil image.
	RenderPict(f *File, data []byte) (*image.NRGBA, string, []byte, error)
}

// pictEngine is the installed engine, if any.
var pictEngine PictEngine

// SetPictEngine installs the process-wide picture engine.
func SetPictEngine(engine PictEngine) {
	pictEngine = engine
}

// DecodePict decodes a PICT resource through the installed engine.
func (f *File) DecodePict(res *Resource) (*DecodedPict, error) {
	r := binary.NewReader(res.Data)
	if _, err := ReadPictHeader(r); err != nil {
		return nil, fmt.Errorf("%w: PICT too small for header", ErrMalformedImage)
	}
	if pictEngine == nil {
		return nil, ErrNoPictEngine
	}
	img, format, payload, err := pictEngine.RenderPict(f, res.Data)
	if err != nil {
		return nil, err
	}
	return &DecodedPict{
		Image:               img,
		EmbeddedImageFormat: format,
		EmbeddedImageData:   payload,
	}, nil
}
