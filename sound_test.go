// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"bytes"
	"errors"
	"testing"

	"github.com/saferwall/rsrcfork/binary"
)

func TestWaveHeaderNoLoop(t *testing.T) {
	wav := newWaveFileHeader(1000, 1, 22050, 8, 0, 0, 0x3C)
	hdr := wav.encode()
	if len(hdr) != 44 {
		t.Fatalf("header size = %d; want 44 (no smpl chunk)", len(hdr))
	}

	r := binary.NewReader(hdr)
	if magic, _ := r.GetU32BE(); magic != 0x52494646 {
		t.Fatal("missing RIFF magic")
	}
	fileSize, _ := r.GetU32LE()
	if fileSize != 44+1000-8 {
		t.Fatalf("file size = %d; want 1036", fileSize)
	}
	r.Go(16)
	if fmtSize, _ := r.GetU32LE(); fmtSize != 16 {
		t.Fatalf("fmt size = %d", fmtSize)
	}
	if format, _ := r.GetU16LE(); format != 1 {
		t.Fatalf("format = %d; want 1 (PCM)", format)
	}
	if channels, _ := r.GetU16LE(); channels != 1 {
		t.Fatalf("channels = %d", channels)
	}
	if rate, _ := r.GetU32LE(); rate != 22050 {
		t.Fatalf("sample rate = %d", rate)
	}
	if byteRate, _ := r.GetU32LE(); byteRate != 22050 {
		t.Fatalf("byte rate = %d", byteRate)
	}
	if blockAlign, _ := r.GetU16LE(); blockAlign != 1 {
		t.Fatalf("block align = %d", blockAlign)
	}
	r.Go(40)
	if dataSize, _ := r.GetU32LE(); dataSize != 1000 {
		t.Fatalf("data size = %d", dataSize)
	}
}

func TestWaveHeaderWithLoop(t *testing.T) {
	wav := newWaveFileHeader(100, 1, 22050, 16, 10, 50, 0x3C)
	hdr := wav.encode()
	if len(hdr) != wavHeaderSizeWithLoop {
		t.Fatalf("header size = %d; want %d", len(hdr), wavHeaderSizeWithLoop)
	}
	r := binary.NewReader(hdr)
	if magic, _ := r.PGetU32BE(36); magic != 0x736D706C {
		t.Fatal("missing smpl chunk")
	}
	// Loop points are byte offsets: sample index times bytes per sample.
	loopStart, _ := r.PGetU32BE(36 + 8 + 44)
	_ = loopStart
	ls := uint32(hdr[36+8+44]) | uint32(hdr[36+8+45])<<8 |
		uint32(hdr[36+8+46])<<16 | uint32(hdr[36+8+47])<<24
	if ls != 20 {
		t.Fatalf("loop start = %d bytes; want 20", ls)
	}
	// RIFF length equals total length minus 8 once data is appended.
	fileSize := uint32(hdr[4]) | uint32(hdr[5])<<8 | uint32(hdr[6])<<16 | uint32(hdr[7])<<24
	if fileSize != uint32(len(hdr))+200-8 {
		t.Fatalf("file size = %d", fileSize)
	}
}

// buildSndFormat2 wraps samples in a minimal format-2 snd resource with a
// single bufferCmd.
func buildSndFormat2(samples []byte, sampleRate uint32, loopStart, loopEnd uint32,
	baseNote uint8) []byte {
	w := binary.NewWriter()
	w.PutU16BE(0x0002)
	w.PutU16BE(0) // reference count
	w.PutU16BE(1) // one command
	w.PutU16BE(0x8051)
	w.PutU16BE(0)
	w.PutU32BE(20) // param2: nominal buffer offset (ignored)
	// Sample buffer header.
	w.PutU32BE(0) // data offset
	w.PutU32BE(uint32(len(samples)))
	w.PutU32BE(sampleRate << 16)
	w.PutU32BE(loopStart)
	w.PutU32BE(loopEnd)
	w.PutU8(0x00) // encoding: uncompressed
	w.PutU8(baseNote)
	w.Write(samples)
	return w.Bytes()
}

func TestDecodeSndUncompressed(t *testing.T) {
	samples := []byte{0x80, 0x81, 0x82, 0x83}
	wav, err := DecodeSoundData(buildSndFormat2(samples, 22050, 0, 0, 0x3C))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(wav[len(wav)-4:], samples) {
		t.Fatalf("sample payload = % X", wav[len(wav)-4:])
	}
	// RIFF length invariant: field equals file length minus 8.
	fileSize := uint32(wav[4]) | uint32(wav[5])<<8 | uint32(wav[6])<<16 | uint32(wav[7])<<24
	if fileSize != uint32(len(wav))-8 {
		t.Fatalf("RIFF size = %d; want %d", fileSize, len(wav)-8)
	}
}

func TestDecodeSndErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad format", []byte{0x00, 0x03}},
		{"no commands", []byte{0x00, 0x02, 0x00, 0x00, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSoundData(tt.data); !errors.Is(err, ErrMalformedSound) {
				t.Fatalf("error = %v; want ErrMalformedSound", err)
			}
		})
	}
}

func TestDecodeSndUnsupportedCommand(t *testing.T) {
	w := binary.NewWriter()
	w.PutU16BE(0x0002)
	w.PutU16BE(0)
	w.PutU16BE(1)
	w.PutU16BE(0x0028) // note command
	w.PutU16BE(0)
	w.PutU32BE(0)
	if _, err := DecodeSoundData(w.Bytes()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v; want ErrUnsupportedFormat", err)
	}
}

func TestDecodeSMSD(t *testing.T) {
	data := append(make([]byte, 8), 0x10, 0x20, 0x30)
	wav, err := DecodeSMSD(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(wav) != 44+3 {
		t.Fatalf("wav length = %d; want 47", len(wav))
	}
	rate := uint32(wav[24]) | uint32(wav[25])<<8 | uint32(wav[26])<<16 | uint32(wav[27])<<24
	if rate != 22050 {
		t.Fatalf("sample rate = %d", rate)
	}
}

func TestLZSSDecompress(t *testing.T) {
	// Control byte 0xFF: eight literals.
	src := []byte{0xFF, 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h'}
	if got := lzssDecompress(src); !bytes.Equal(got, []byte("abcdefgh")) {
		t.Fatalf("literals = %q", got)
	}

	// Literals "ab", then a back-reference copying 3 bytes from offset
	// -2 (params: count = 0, distance field = 0x1000 - 2 = 0xFFE).
	src = []byte{0x03, 'a', 'b', 0x0F, 0xFE}
	if got := lzssDecompress(src); !bytes.Equal(got, []byte("ababa")) {
		t.Fatalf("backref = %q", got)
	}
}

func TestDecryptSoundMusicSysInvertsEncrypt(t *testing.T) {
	// The cipher XORs each byte against the high key byte and mixes the
	// ciphertext byte back into the key, so encrypting plaintext then
	// decrypting the result restores it.
	plaintext := []byte("The Answer to the Great Question... is Forty-two.")

	encrypt := func(src []byte) []byte {
		out := make([]byte, len(src))
		key := uint32(56549)
		for i, ch := range src {
			enc := ch ^ uint8(key>>8)
			out[i] = enc
			key = (uint32(enc) + key) * 52845 + 22719
		}
		return out
	}
	got := decryptSoundMusicSys(encrypt(plaintext))
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("decrypt(encrypt(x)) = %q", got)
	}
}

func TestDecodeUlawAlaw(t *testing.T) {
	// 0xFF mu-law is near-silence; 0x00 is the negative extreme.
	u := decodeUlaw([]byte{0xFF})
	if u[0] != 0 {
		t.Fatalf("ulaw(FF) = %d; want 0", u[0])
	}
	u = decodeUlaw([]byte{0x00})
	if u[0] > -8000 {
		t.Fatalf("ulaw(00) = %d; want large negative", u[0])
	}
	a := decodeAlaw([]byte{0xD5})
	if a[0] != 8 {
		t.Fatalf("alaw(D5) = %d; want 8", a[0])
	}
}

func TestDecodeIMA4Silence(t *testing.T) {
	// One packet with zero predictor/index and all-zero nibbles decodes
	// to 64 near-zero samples.
	packet := make([]byte, 34)
	samples, err := decodeIMA4(packet, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 64 {
		t.Fatalf("sample count = %d; want 64", len(samples))
	}
	for _, s := range samples {
		if s > 16 || s < -16 {
			t.Fatalf("silence sample = %d", s)
		}
	}
	if _, err := decodeIMA4(make([]byte, 33), false); !errors.Is(err, ErrMalformedSound) {
		t.Fatalf("bad size error = %v", err)
	}
}

func TestMACERequiresDecoder(t *testing.T) {
	SetMACEDecoder(nil)
	if _, err := decodeMACE(nil, false, true); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v; want ErrUnsupportedFormat", err)
	}
	SetMACEDecoder(func(data []byte, stereo, isMACE3 bool) ([]int16, error) {
		return make([]int16, len(data)*3), nil
	})
	defer SetMACEDecoder(nil)
	out, err := decodeMACE(make([]byte, 2), false, true)
	if err != nil || len(out) != 6 {
		t.Fatalf("plugged decoder: %d samples, %v", len(out), err)
	}
}

func TestDecodeCompressedSoundDelta(t *testing.T) {
	// Build a csnd resource: type 0 (mono8 delta), containing a
	// LZSS-literal-coded snd resource.
	snd := buildSndFormat2([]byte{0x80, 0x01, 0x01, 0xFF}, 22050, 0, 0, 0x3C)

	// Delta-encode: first byte verbatim, then differences.
	delta := make([]byte, len(snd))
	copy(delta, snd)
	for i := len(delta) - 1; i > 0; i-- {
		delta[i] -= delta[i-1]
	}

	// LZSS with all-literal control bytes.
	var lz []byte
	for i := 0; i < len(delta); i += 8 {
		end := i + 8
		if end > len(delta) {
			end = len(delta)
		}
		lz = append(lz, 0xFF)
		lz = append(lz, delta[i:end]...)
	}

	w := binary.NewWriter()
	w.PutU32BE(uint32(len(snd))) // type 0 | 24-bit size
	w.Write(lz)

	f := NewResources(nil)
	wav, err := f.DecodeCompressedSound(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(wav[len(wav)-4:], []byte{0x80, 0x01, 0x01, 0xFF}) {
		t.Fatalf("decoded samples = % X", wav[len(wav)-4:])
	}
}

func TestDecodeEncryptedDeltaSound(t *testing.T) {
	snd := buildSndFormat2([]byte{0x10, 0x11, 0x12}, 22050, 0, 0, 0x3C)

	// Build the ESnd wire form: cumulative values become XOR-0xFF
	// deltas.
	enc := make([]byte, len(snd))
	prev := uint8(0)
	for i, b := range snd {
		enc[i] = (b - prev) ^ 0xFF
		prev = b
	}

	f := NewResources(nil)
	wav, err := f.DecodeEncryptedDeltaSound(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(wav[len(wav)-3:], []byte{0x10, 0x11, 0x12}) {
		t.Fatalf("decoded samples = % X", wav[len(wav)-3:])
	}
}
