// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import "github.com/saferwall/rsrcfork/binary"

// defaultBaseNote is middle C, the base note that means "no smpl chunk
// needed".
const defaultBaseNote = 0x3C

// wavHeaderSize is the RIFF/WAVE header size without a smpl chunk.
const wavHeaderSize = 44

// wavHeaderSizeWithLoop adds the 0x3C-byte smpl chunk (plus its 8-byte
// chunk header).
const wavHeaderSizeWithLoop = wavHeaderSize + 8 + 0x3C

// waveFileHeader carries the parameters of a RIFF/WAVE file to be
// emitted. A smpl chunk is inserted before data iff a loop or a
// non-default base note is present; its loop points are byte offsets.
type waveFileHeader struct {
	numSamples    uint32
	numChannels   uint16
	sampleRate    uint32
	bitsPerSample uint16
	loopStart     uint32 // in samples
	loopEnd       uint32 // in samples
	baseNote      uint8
}

func newWaveFileHeader(numSamples uint32, numChannels uint16, sampleRate uint32,
	bitsPerSample uint16, loopStart, loopEnd uint32, baseNote uint8) *waveFileHeader {
	return &waveFileHeader{
		numSamples:    numSamples,
		numChannels:   numChannels,
		sampleRate:    sampleRate,
		bitsPerSample: bitsPerSample,
		loopStart:     loopStart,
		loopEnd:       loopEnd,
		baseNote:      baseNote,
	}
}

func (w *waveFileHeader) hasLoop() bool {
	return (w.loopStart > 0 && w.loopEnd > 0) ||
		(w.baseNote != defaultBaseNote && w.baseNote != 0)
}

func (w *waveFileHeader) headerSize() int {
	if w.hasLoop() {
		return wavHeaderSizeWithLoop
	}
	return wavHeaderSize
}

func (w *waveFileHeader) dataSize() uint32 {
	return w.numSamples * uint32(w.numChannels) * uint32(w.bitsPerSample) / 8
}

// encode renders the header bytes, up to (but not including) the sample
// data.
func (w *waveFileHeader) encode() []byte {
	out := binary.NewWriter()
	out.PutU32BE(0x52494646) // 'RIFF'
	out.PutU32LE(w.dataSize() + uint32(w.headerSize()) - 8)
	out.PutU32BE(0x57415645) // 'WAVE'

	out.PutU32BE(0x666D7420) // 'fmt '
	out.PutU32LE(16)
	out.PutU16LE(1) // PCM
	out.PutU16LE(w.numChannels)
	out.PutU32LE(w.sampleRate)
	out.PutU32LE(uint32(w.numChannels) * w.sampleRate * uint32(w.bitsPerSample) / 8)
	out.PutU16LE(w.numChannels * w.bitsPerSample / 8)
	out.PutU16LE(w.bitsPerSample)

	if w.hasLoop() {
		out.PutU32BE(0x736D706C) // 'smpl'
		out.PutU32LE(0x3C)
		out.PutU32LE(0) // manufacturer
		out.PutU32LE(0) // product
		out.PutU32LE(1000000000 / w.sampleRate)
		out.PutU32LE(uint32(w.baseNote))
		out.PutU32LE(0) // pitch fraction
		out.PutU32LE(0) // SMPTE format
		out.PutU32LE(0) // SMPTE offset
		out.PutU32LE(1) // one loop
		out.PutU32LE(0x18)

		out.PutU32LE(0) // cue point id
		out.PutU32LE(0) // loop type: normal
		// Loop positions arrive as sample offsets but are stored as byte
		// offsets.
		out.PutU32LE(w.loopStart * uint32(w.bitsPerSample>>3))
		out.PutU32LE(w.loopEnd * uint32(w.bitsPerSample>>3))
		out.PutU32LE(0) // loop fraction
		out.PutU32LE(0) // play count: forever
	}

	out.PutU32BE(0x64617461) // 'data'
	out.PutU32LE(w.dataSize())
	return out.Bytes()
}
