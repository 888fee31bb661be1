// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"fmt"

	"github.com/saferwall/rsrcfork/binary"
)

// Errors
var (
	// ErrMalformedSound is returned when a snd structure fails a check.
	ErrMalformedSound = errors.New("malformed sound resource")

	// ErrUnsupportedFormat is returned for format variants that exist but
	// are not supported (variable-ratio compression among them).
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// MACEDecoder decodes MACE 3:1 or 6:1 blocks into 16-bit samples. The
// codec tables are an external sub-library; install an implementation
// with SetMACEDecoder to enable MACE-compressed snd resources.
type MACEDecoder func(data []byte, stereo bool, isMACE3 bool) ([]int16, error)

var maceDecoder MACEDecoder

// SetMACEDecoder installs the process-wide MACE codec.
func SetMACEDecoder(dec MACEDecoder) {
	maceDecoder = dec
}

func decodeMACE(data []byte, stereo bool, isMACE3 bool) ([]int16, error) {
	if maceDecoder == nil {
		return nil, fmt.Errorf("%w: MACE codec not installed", ErrUnsupportedFormat)
	}
	return maceDecoder(data, stereo, isMACE3)
}

// imaStepTable and imaIndexTable are the standard IMA ADPCM tables.
var imaStepTable = [89]int32{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17,
	19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118,
	130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358,
	5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

var imaIndexTable = [16]int32{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

// decodeIMA4 decodes Apple IMA4 packets: 34 bytes per channel holding a
// 2-byte state preamble and 64 nibble-coded samples.
func decodeIMA4(data []byte, stereo bool) ([]int16, error) {
	const packetSize = 34
	if len(data)%packetSize != 0 {
		return nil, fmt.Errorf("%w: ima4 data size is not a multiple of 34", ErrMalformedSound)
	}
	numChannels := 1
	if stereo {
		numChannels = 2
		if (len(data)/packetSize)%2 != 0 {
			return nil, fmt.Errorf("%w: odd ima4 packet count for stereo", ErrMalformedSound)
		}
	}

	numPackets := len(data) / packetSize
	out := make([]int16, numPackets*64)
	for p := 0; p < numPackets; p++ {
		packet := data[p*packetSize : (p+1)*packetSize]
		preamble := int32(packet[0])<<8 | int32(packet[1])
		predictor := int32(int16(preamble & 0xFF80))
		index := preamble & 0x7F
		if index > 88 {
			return nil, fmt.Errorf("%w: ima4 step index out of range", ErrMalformedSound)
		}

		channel := p % numChannels
		frame := p / numChannels
		for i := 0; i < 64; i++ {
			nibble := int32(packet[2+i/2])
			if i&1 != 0 {
				nibble >>= 4
			}
			nibble &= 0x0F

			step := imaStepTable[index]
			diff := step >> 3
			if nibble&1 != 0 {
				diff += step >> 2
			}
			if nibble&2 != 0 {
				diff += step >> 1
			}
			if nibble&4 != 0 {
				diff += step
			}
			if nibble&8 != 0 {
				predictor -= diff
			} else {
				predictor += diff
			}
			if predictor > 32767 {
				predictor = 32767
			} else if predictor < -32768 {
				predictor = -32768
			}
			index += imaIndexTable[nibble]
			if index < 0 {
				index = 0
			} else if index > 88 {
				index = 88
			}

			out[(frame*64+i)*numChannels+channel] = int16(predictor)
		}
	}
	return out, nil
}

// decodeUlaw expands G.711 mu-law bytes to linear 16-bit samples.
func decodeUlaw(data []byte) []int16 {
	out := make([]int16, len(data))
	for i, b := range data {
		u := ^b
		sign := u & 0x80
		exponent := (u >> 4) & 7
		mantissa := u & 0x0F
		sample := (int32(mantissa)<<3 + 0x84) << exponent
		sample -= 0x84
		if sign != 0 {
			sample = -sample
		}
		out[i] = int16(sample)
	}
	return out
}

// decodeAlaw expands G.711 A-law bytes to linear 16-bit samples.
func decodeAlaw(data []byte) []int16 {
	out := make([]int16, len(data))
	for i, b := range data {
		a := b ^ 0x55
		sign := a & 0x80
		exponent := (a >> 4) & 7
		mantissa := a & 0x0F
		var sample int32
		if exponent == 0 {
			sample = int32(mantissa)<<4 + 8
		} else {
			sample = (int32(mantissa)<<4 + 0x108) << (exponent - 1)
		}
		if sign == 0 {
			sample = -sample
		}
		out[i] = int16(sample)
	}
	return out
}

// sampleBuffer is the decoded Sound Manager sample-buffer header.
type sampleBuffer struct {
	dataOffset uint32
	dataBytes  uint32
	sampleRate uint32 // 16.16 fixed point
	loopStart  uint32
	loopEnd    uint32
	encoding   uint8
	baseNote   uint8
}

// compressedBuffer is the decoded compressed-buffer header that follows
// the sample buffer for encodings 0xFE and 0xFF.
type compressedBuffer struct {
	numFrames     uint32
	format        uint32
	stateVars     uint32
	compressionID uint16
	packetSize    uint16
	synthID       uint16
	bitsPerSample uint16
}

// soundCommandNames names the non-buffer Sound Manager commands for
// error messages.
var soundCommandNames = map[uint16]string{
	0x0003: "quiet",
	0x0004: "flush",
	0x0005: "reinit",
	0x000A: "wait",
	0x000B: "pause",
	0x000C: "resume",
	0x000D: "callback",
	0x000E: "sync",
	0x0018: "available",
	0x0019: "version",
	0x001A: "get total cpu load",
	0x001B: "get channel cpu load",
	0x0028: "note",
	0x0029: "rest",
	0x002A: "set pitch",
	0x002B: "set amplitude",
	0x002C: "set timbre",
	0x002D: "get amplitude",
	0x002E: "set volume",
	0x002F: "get volume",
	0x003C: "load wave table",
	0x0052: "set sampled pitch",
	0x0053: "get sampled pitch",
}

// decodeSndData converts an snd resource to a self-contained WAV file.
// debugLog may be nil.
func decodeSndData(data []byte, debugLog func(format string, a ...interface{})) ([]byte, error) {
	r := binary.NewReader(data)
	formatCode, err := r.GetU16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: snd doesn't even contain a format code", ErrMalformedSound)
	}

	numChannels := 1
	var numCommands int
	switch formatCode {
	case 0x0001:
		dataFormatCount, err := r.GetU16BE()
		if err != nil {
			return nil, fmt.Errorf("%w: snd is too small to contain format 1 resource header", ErrMalformedSound)
		}
		switch dataFormatCount {
		case 0:
			// No data formats; assume mono.
		case 1:
			dataFormatID, _ := r.GetU16BE()
			flags, err := r.GetU32BE()
			if err != nil {
				return nil, fmt.Errorf("%w: snd is too small for data format header", ErrMalformedSound)
			}
			if dataFormatID != 5 {
				return nil, fmt.Errorf("%w: snd data format is not sampled", ErrMalformedSound)
			}
			if flags&0x40 != 0 {
				numChannels = 2
			}
		default:
			return nil, fmt.Errorf("%w: snd has multiple data formats", ErrMalformedSound)
		}
		count, err := r.GetU16BE()
		if err != nil {
			return nil, fmt.Errorf("%w: snd is too small for command count", ErrMalformedSound)
		}
		numCommands = int(count)

	case 0x0002:
		r.Skip(2) // reference count
		count, err := r.GetU16BE()
		if err != nil {
			return nil, fmt.Errorf("%w: snd is too small to contain format 2 resource header", ErrMalformedSound)
		}
		numCommands = int(count)

	default:
		return nil, fmt.Errorf("%w: snd is not format 1 or 2", ErrMalformedSound)
	}

	if numCommands == 0 {
		return nil, fmt.Errorf("%w: snd contains no commands", ErrMalformedSound)
	}

	sawBufferCommand := false
	for x := 0; x < numCommands; x++ {
		command, err := r.GetU16BE()
		if err != nil {
			return nil, fmt.Errorf("%w: snd contains more commands than fit in resource", ErrMalformedSound)
		}
		param1, _ := r.GetU16BE()
		param2, err := r.GetU32BE()
		if err != nil {
			return nil, fmt.Errorf("%w: snd contains more commands than fit in resource", ErrMalformedSound)
		}
		switch command {
		case 0x0000: // null command
		case 0x8050, 0x8051: // load sample voice / play sampled sound
			if sawBufferCommand {
				return nil, fmt.Errorf("%w: snd contains multiple buffer commands", ErrMalformedSound)
			}
			sawBufferCommand = true
			// param2 nominally points at the sample buffer, but many real
			// resources carry a wrong offset and the Sound Manager plays
			// them anyway; the buffer actually follows the command list.
		default:
			if name, ok := soundCommandNames[command]; ok {
				return nil, fmt.Errorf("%w: command not implemented: %04X (%s) %04X %08X",
					ErrUnsupportedFormat, command, name, param1, param2)
			}
			return nil, fmt.Errorf("%w: command not implemented: %04X %04X %08X",
				ErrUnsupportedFormat, command, param1, param2)
		}
	}

	// The sample buffer immediately follows the command stream.
	var sb sampleBuffer
	if sb.dataOffset, err = r.GetU32BE(); err != nil {
		return nil, fmt.Errorf("%w: sample buffer is outside snd resource", ErrMalformedSound)
	}
	sb.dataBytes, _ = r.GetU32BE()
	sb.sampleRate, _ = r.GetU32BE()
	sb.loopStart, _ = r.GetU32BE()
	sb.loopEnd, _ = r.GetU32BE()
	encByte, _ := r.GetU8()
	baseNote, err := r.GetU8()
	if err != nil {
		return nil, fmt.Errorf("%w: sample buffer is outside snd resource", ErrMalformedSound)
	}
	sb.encoding = encByte
	sb.baseNote = baseNote
	sampleRate := sb.sampleRate >> 16

	switch sb.encoding {
	case 0x00:
		// Uncompressed 8-bit samples copied verbatim.
		if sb.dataBytes == 0 {
			return nil, fmt.Errorf("%w: snd contains no samples", ErrMalformedSound)
		}
		available := r.Remaining()
		dataBytes := int(sb.dataBytes)
		if available < dataBytes {
			dataBytes = available
		}
		samples, err := r.Read(dataBytes)
		if err != nil {
			return nil, err
		}
		wav := newWaveFileHeader(uint32(dataBytes), uint16(numChannels), sampleRate, 8,
			sb.loopStart, sb.loopEnd, sb.baseNote)
		return append(wav.encode(), samples...), nil

	case 0xFE, 0xFF:
		var cb compressedBuffer
		if cb.numFrames, err = r.GetU32BE(); err != nil {
			return nil, fmt.Errorf("%w: snd is too small to contain compressed buffer", ErrMalformedSound)
		}
		r.Skip(10) // sample rate in 80-bit float; the fixed-point one above wins
		r.Skip(4)  // marker chunk
		cb.format, _ = r.GetU32BE()
		r.Skip(4) // reserved
		cb.stateVars, _ = r.GetU32BE()
		r.Skip(4) // leftover block ptr
		cb.compressionID, _ = r.GetU16BE()
		cb.packetSize, _ = r.GetU16BE()
		cb.synthID, _ = r.GetU16BE()
		if cb.bitsPerSample, err = r.GetU16BE(); err != nil {
			return nil, fmt.Errorf("%w: snd is too small to contain compressed buffer", ErrMalformedSound)
		}

		return decodeCompressedBuffer(r, &sb, &cb, numChannels, sampleRate, debugLog)

	default:
		return nil, fmt.Errorf("%w: unknown encoding for snd data: %02X", ErrMalformedSound, sb.encoding)
	}
}

// decodeCompressedBuffer handles the compressed-buffer encodings: MACE,
// format-tagged codecs, and the uncompressed twos/sowt byte orders.
func decodeCompressedBuffer(r *binary.Reader, sb *sampleBuffer, cb *compressedBuffer,
	numChannels int, sampleRate uint32,
	debugLog func(format string, a ...interface{})) ([]byte, error) {

	emit16 := func(samples []int16, loopFactor uint32) ([]byte, error) {
		wav := newWaveFileHeader(uint32(len(samples)/numChannels), uint16(numChannels),
			sampleRate, 16, sb.loopStart*loopFactor, sb.loopEnd*loopFactor, sb.baseNote)
		if wav.dataSize() != 2*uint32(len(samples)) {
			return nil, fmt.Errorf("%w: computed data size (%d) does not match decoded data size (%d)",
				ErrMalformedSound, wav.dataSize(), 2*len(samples))
		}
		out := binary.NewWriter()
		out.Write(wav.encode())
		for _, s := range samples {
			out.PutU16LE(uint16(s))
		}
		return out.Bytes(), nil
	}

	switch cb.compressionID {
	case 0xFFFE:
		return nil, fmt.Errorf("%w: snd uses variable-ratio compression", ErrUnsupportedFormat)

	case 3, 4:
		isMACE3 := cb.compressionID == 3
		frameBytes := 1
		if isMACE3 {
			frameBytes = 2
		}
		blob, err := r.Read(int(cb.numFrames) * frameBytes * numChannels)
		if err != nil {
			return nil, fmt.Errorf("%w: MACE data out of range", ErrMalformedSound)
		}
		samples, err := decodeMACE(blob, numChannels == 2, isMACE3)
		if err != nil {
			return nil, err
		}
		loopFactor := uint32(6)
		if isMACE3 {
			loopFactor = 3
		}
		return emit16(samples, loopFactor)

	case 0xFFFF:
		// twos/sowt are uncompressed and fall through to the
		// no-compression case below.
		if cb.format != 0x74776F73 && cb.format != 0x736F7774 {
			var samples []int16
			var loopFactor uint32
			switch cb.format {
			case 0x696D6134: // ima4
				blob, err := r.Read(int(cb.numFrames) * 34 * numChannels)
				if err != nil {
					return nil, fmt.Errorf("%w: ima4 data out of range", ErrMalformedSound)
				}
				samples, err = decodeIMA4(blob, numChannels == 2)
				if err != nil {
					return nil, err
				}
				loopFactor = 4
			case 0x4D414333, 0x4D414336: // MAC3, MAC6
				isMACE3 := cb.format == 0x4D414333
				frameBytes := 1
				if isMACE3 {
					frameBytes = 2
				}
				blob, err := r.Read(int(cb.numFrames) * frameBytes * numChannels)
				if err != nil {
					return nil, fmt.Errorf("%w: MACE data out of range", ErrMalformedSound)
				}
				samples, err = decodeMACE(blob, numChannels == 2, isMACE3)
				if err != nil {
					return nil, err
				}
				loopFactor = 6
				if isMACE3 {
					loopFactor = 3
				}
			case 0x756C6177: // ulaw
				blob, err := r.Read(int(cb.numFrames))
				if err != nil {
					return nil, fmt.Errorf("%w: ulaw data out of range", ErrMalformedSound)
				}
				samples = decodeUlaw(blob)
				loopFactor = 2
			case 0x616C6177: // alaw
				blob, err := r.Read(int(cb.numFrames))
				if err != nil {
					return nil, fmt.Errorf("%w: alaw data out of range", ErrMalformedSound)
				}
				samples = decodeAlaw(blob)
				loopFactor = 2
			default:
				return nil, fmt.Errorf("%w: snd uses unknown compression (%08X)",
					ErrUnsupportedFormat, cb.format)
			}
			return emit16(samples, loopFactor)
		}
		fallthrough

	case 0:
		numSamples := cb.numFrames
		bitsPerSample := cb.bitsPerSample
		if bitsPerSample == 0 {
			bitsPerSample = uint16(cb.stateVars >> 16)
		}
		available := r.Remaining()

		// Downgrade to mono when the header claims stereo but the actual
		// data is exactly half the expected size; real-world files do
		// this.
		if numChannels == 2 &&
			int(numSamples)*numChannels*int(bitsPerSample/8) == 2*available {
			numChannels = 1
			if debugLog != nil {
				debugLog("stereo-claimed buffer is half-sized; downgrading to mono")
			}
		}

		wav := newWaveFileHeader(numSamples, uint16(numChannels), sampleRate,
			bitsPerSample, sb.loopStart, sb.loopEnd, sb.baseNote)
		if wav.dataSize() == 0 {
			return nil, fmt.Errorf("%w: computed data size is zero (%d samples, %d channels, %d Hz, %d bits per sample)",
				ErrMalformedSound, numSamples, numChannels, sampleRate, bitsPerSample)
		}
		if int(wav.dataSize()) > available {
			return nil, fmt.Errorf("%w: computed data size exceeds actual data (%d computed, %d available)",
				ErrMalformedSound, wav.dataSize(), available)
		}
		samples, err := r.Read(int(wav.dataSize()))
		if err != nil {
			return nil, err
		}
		out := append(wav.encode(), samples...)

		// 16-bit samples are big-endian on the wire unless tagged sowt.
		if bitsPerSample == 16 && cb.format != 0x736F7774 {
			payload := out[len(out)-len(samples):]
			for i := 0; i+1 < len(payload); i += 2 {
				payload[i], payload[i+1] = payload[i+1], payload[i]
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: snd is compressed using unknown algorithm", ErrUnsupportedFormat)
	}
}

// DecodeSound converts an 'snd ' resource to WAV bytes.
func (f *File) DecodeSound(data []byte) ([]byte, error) {
	return decodeSndData(data, f.logger.Debugf)
}

// DecodeSoundData converts an 'snd ' resource to WAV bytes without a
// fork context.
func DecodeSoundData(data []byte) ([]byte, error) {
	return decodeSndData(data, nil)
}

// lzssDecompress expands the SoundMusicSys LZSS stream: per control byte,
// set bits pass a literal through and clear bits copy (count+3) bytes
// from a 4KiB sliding window.
func lzssDecompress(src []byte) []byte {
	var ret []byte
	offset := 0
	for {
		if offset >= len(src) {
			return ret
		}
		controlBits := src[offset]
		offset++
		for controlMask := uint8(0x01); controlMask != 0; controlMask <<= 1 {
			if controlBits&controlMask != 0 {
				if offset >= len(src) {
					return ret
				}
				ret = append(ret, src[offset])
				offset++
			} else {
				if offset >= len(src)-1 {
					return ret
				}
				params := uint16(src[offset])<<8 | uint16(src[offset+1])
				offset += 2

				copyOffset := len(ret) - ((1 << 12) - int(params&0x0FFF))
				count := int((params>>12)&0x0F) + 3
				for i := 0; i < count; i++ {
					if copyOffset+i < 0 || copyOffset+i >= len(ret) {
						ret = append(ret, 0)
					} else {
						ret = append(ret, ret[copyOffset+i])
					}
				}
			}
		}
	}
}

// decompressSoundMusicSys expands a length-prefixed LZSS blob.
func decompressSoundMusicSys(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: resource too small for compression header", ErrMalformedSound)
	}
	decompressedSize := uint32(data[0])<<24 | uint32(data[1])<<16 |
		uint32(data[2])<<8 | uint32(data[3])
	decompressed := lzssDecompress(data[4:])
	if uint32(len(decompressed)) < decompressedSize {
		return nil, fmt.Errorf("%w: decompression did not produce enough data", ErrMalformedSound)
	}
	if uint32(len(decompressed)) > decompressedSize {
		return nil, fmt.Errorf("%w: decompression produced too much data", ErrMalformedSound)
	}
	return decompressed, nil
}

// decryptSoundMusicSys applies the SoundMusicSys stream cipher (seed
// 56549, constants 52845 and 22719).
func decryptSoundMusicSys(src []byte) []byte {
	ret := make([]byte, len(src))
	key := uint32(56549)
	for i, ch := range src {
		ret[i] = ch ^ uint8(key>>8)
		key = (uint32(ch) + key) * 52845 + 22719
	}
	return ret
}

// DecodeSMSD converts an SMSD resource (an 8-byte header followed by
// 22050 Hz 8-bit mono samples) to WAV bytes.
func DecodeSMSD(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: resource too small for header", ErrMalformedSound)
	}
	wav := newWaveFileHeader(uint32(len(data)-8), 1, 22050, 8, 0, 0, defaultBaseNote)
	return append(wav.encode(), data[8:]...), nil
}

// DecodeCompressedSound converts a csnd resource (LZSS-compressed,
// delta-encoded snd) to WAV bytes.
func (f *File) DecodeCompressedSound(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: csnd too small for header", ErrMalformedSound)
	}
	typeAndSize := uint32(data[0])<<24 | uint32(data[1])<<16 |
		uint32(data[2])<<8 | uint32(data[3])
	sampleType := uint8(typeAndSize >> 24)
	if sampleType > 3 && sampleType != 0xFF {
		return nil, fmt.Errorf("%w: invalid csnd sample type", ErrMalformedSound)
	}

	// For types 1 and 2 the decompressed size must be a multiple of 2;
	// for type 3, of 4.
	decompressedSize := int(typeAndSize & 0x00FFFFFF)
	if sampleType != 0xFF {
		sampleBytes := int(sampleType) + 1
		if sampleType == 2 {
			sampleBytes = 2
		}
		if decompressedSize%sampleBytes != 0 {
			return nil, fmt.Errorf("%w: decompressed size is not a multiple of frame size", ErrMalformedSound)
		}
	}

	decompressed := lzssDecompress(data[4:])
	if len(decompressed) < decompressedSize {
		return nil, fmt.Errorf("%w: decompression did not produce enough data", ErrMalformedSound)
	}
	decompressed = decompressed[:decompressedSize]

	// Unless the type is 0xFF, the buffer is delta-encoded.
	switch sampleType {
	case 0: // mono8
		var sample uint8
		for i, d := range decompressed {
			if i == 0 {
				sample = d
				continue
			}
			sample += d
			decompressed[i] = sample
		}
	case 1: // stereo8
		var s0, s1 uint8
		for i := 0; i+1 < len(decompressed); i += 2 {
			if i == 0 {
				s0, s1 = decompressed[0], decompressed[1]
				continue
			}
			s0 += decompressed[i]
			s1 += decompressed[i+1]
			decompressed[i] = s0
			decompressed[i+1] = s1
		}
	case 2: // mono16
		var sample uint16
		for i := 0; i+1 < len(decompressed); i += 2 {
			v := uint16(decompressed[i])<<8 | uint16(decompressed[i+1])
			if i == 0 {
				sample = v
				continue
			}
			sample += v
			decompressed[i] = uint8(sample >> 8)
			decompressed[i+1] = uint8(sample)
		}
	case 3: // stereo16
		var s0, s1 uint16
		for i := 0; i+3 < len(decompressed); i += 4 {
			v0 := uint16(decompressed[i])<<8 | uint16(decompressed[i+1])
			v1 := uint16(decompressed[i+2])<<8 | uint16(decompressed[i+3])
			if i == 0 {
				s0, s1 = v0, v1
				continue
			}
			s0 += v0
			s1 += v1
			decompressed[i] = uint8(s0 >> 8)
			decompressed[i+1] = uint8(s0)
			decompressed[i+2] = uint8(s1 >> 8)
			decompressed[i+3] = uint8(s1)
		}
	}

	// The result is a normal snd resource.
	return f.DecodeSound(decompressed)
}

// DecodeEncryptedSound converts an esnd resource (stream-ciphered snd)
// to WAV bytes.
func (f *File) DecodeEncryptedSound(data []byte) ([]byte, error) {
	return f.DecodeSound(decryptSoundMusicSys(data))
}

// DecodeEncryptedDeltaSound converts an ESnd resource (XOR-0xFF delta
// stream) to WAV bytes.
func (f *File) DecodeEncryptedDeltaSound(data []byte) ([]byte, error) {
	decoded := make([]byte, len(data))
	var sample uint8
	for i, b := range data {
		if i == 0 {
			sample = b ^ 0xFF
			decoded[0] = sample
			continue
		}
		sample += b ^ 0xFF
		decoded[i] = sample
	}
	return f.DecodeSound(decoded)
}
