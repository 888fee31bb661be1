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

// buildTuneEvents wraps raw 32-bit events in a Tune resource header.
func buildTuneEvents(events ...uint32) []byte {
	w := binary.NewWriter()
	w.PutU32BE(tuneHeaderSize) // header size
	w.PutU32BE(0x6D757369)     // 'musi'
	w.PutU32BE(0)
	w.PutU16BE(0)
	w.PutU16BE(0) // index
	w.PutU32BE(0) // flags
	for _, ev := range events {
		w.PutU32BE(ev)
	}
	return w.Bytes()
}

func TestDecodeTuneBasics(t *testing.T) {
	// Controller event on partition 1 creates channel 0, then a short
	// note, a pause, and a second note.
	midi, err := DecodeTune(buildTuneEvents(
		0x41070000|(7<<16),           // controller: partition 1, message 7
		0x20000000|(1<<24)|(0x10<<18)|(0x40<<11)|100, // note on partition 1
		0x00000032, // pause 50 ticks
	))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.HasPrefix(midi, []byte("MThd")) {
		t.Fatal("missing MThd header")
	}
	r := binary.NewReader(midi)
	r.Go(12)
	division, _ := r.GetU16BE()
	if division != 600 {
		t.Fatalf("division = %d; want 600", division)
	}
	if trk, _ := r.GetU32BE(); trk != 0x4D54726B {
		t.Fatal("missing MTrk header")
	}
	// The track ends with the end-of-track meta event.
	if !bytes.HasSuffix(midi, []byte{0xFF, 0x2F, 0x00}) {
		t.Fatal("missing end-of-track event")
	}
	// The note on event carries key 0x10 + 32.
	if !bytes.Contains(midi, []byte{0x90, 0x30, 0x40}) {
		t.Fatalf("note-on not found in %X", midi)
	}
}

func TestDecodeTuneUninitializedPartition(t *testing.T) {
	_, err := DecodeTune(buildTuneEvents(
		0x20000000 | (2 << 24) | (0x10 << 18) | (0x40 << 11) | 10,
	))
	if !errors.Is(err, ErrMalformedMusic) {
		t.Fatalf("error = %v; want ErrMalformedMusic", err)
	}
}

func TestDecodeTuneChannelExhaustion(t *testing.T) {
	// 17 distinct partitions cannot fit in 16 MIDI channels.
	var events []uint32
	for i := uint32(0); i < 17; i++ {
		events = append(events, 0x40070000|(i<<24)|(7<<16))
	}
	_, err := DecodeTune(buildTuneEvents(events...))
	if !errors.Is(err, ErrMalformedMusic) {
		t.Fatalf("error = %v; want ErrMalformedMusic", err)
	}
}

func TestDecodeTuneStableOrder(t *testing.T) {
	// Two zero-duration notes at the same tick: their note-on events
	// must keep source order (stable sort).
	midi, err := DecodeTune(buildTuneEvents(
		0x40070000|(1<<24)|(7<<16),
		0x20000000|(1<<24)|(0x05<<18)|(0x40<<11)|0,
		0x20000000|(1<<24)|(0x06<<18)|(0x40<<11)|0,
	))
	if err != nil {
		t.Fatal(err)
	}
	first := bytes.Index(midi, []byte{0x90, 0x25, 0x40})
	second := bytes.Index(midi, []byte{0x90, 0x26, 0x40})
	if first < 0 || second < 0 || first > second {
		t.Fatalf("note order wrong: %d vs %d", first, second)
	}
}

func TestDecodeSongResource(t *testing.T) {
	w := binary.NewWriter()
	w.PutU16BE(0xFFFE) // midi id = -2
	w.PutU8(1)         // lead instrument
	w.PutU8(0)         // reverb
	w.PutU16BE(16667)  // tempo bias
	w.PutU8(0)         // type: SMS
	w.PutU8(0xFD)      // semitone shift = -3
	w.PutU8(4)         // max effects
	w.PutU8(8)         // max notes
	w.PutU16BE(0)      // mix level
	w.PutU8(songFlag1EnableMIDIProgramChange)
	w.PutU8(0)    // note decay
	w.PutU8(0xFF) // percussion: GM
	w.PutU8(0)    // flags2
	w.PutU16BE(1) // one override
	w.PutU16BE(3)
	w.PutU16BE(500)

	song, err := DecodeSong(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if song.MidiID != -2 || song.TempoBias != 16667 || song.SemitoneShift != -3 ||
		song.PercussionInstrument != 0xFF || !song.AllowProgramChange {
		t.Fatalf("song = %+v", song)
	}
	if song.InstrumentOverrides[3] != 500 {
		t.Fatalf("overrides = %v", song.InstrumentOverrides)
	}
}

func TestDecodeSongRejectsNonSMS(t *testing.T) {
	w := binary.NewWriter()
	w.PutU16BE(1)
	w.PutU8(0)
	w.PutU8(0)
	w.PutU16BE(0)
	w.PutU8(2) // type: mod
	w.PutU8(0)
	w.PutU8(0)
	w.PutU8(0)
	w.PutU16BE(0)
	w.PutU8(0)
	w.PutU8(0)
	w.PutU8(0)
	w.PutU8(0)
	w.PutU16BE(0)
	if _, err := DecodeSong(w.Bytes()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v; want ErrUnsupportedFormat", err)
	}
}

func TestDecodeInstrument(t *testing.T) {
	sndData := buildSndFormat2([]byte{0x80}, 22050, 0, 0, 0x3C)
	inst := binary.NewWriter()
	inst.PutU16BE(100)  // snd id
	inst.PutU16BE(0x3C) // base note
	inst.PutU8(0)       // panning
	inst.PutU8(instFlag1UseSampleRate)
	inst.PutU8(0) // flags2
	inst.PutU8(0) // smod
	inst.PutU32BE(0)
	inst.PutU16BE(0) // no key regions

	ress := []Resource{
		{Type: TypeSND, ID: 100, Data: sndData},
		{Type: TypeINST, ID: 1, Data: inst.Bytes()},
	}
	f, err := NewBytes(buildFork(t, ress), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, _ := f.GetResource(TypeINST, 1, 0)
	decoded, err := f.DecodeInstrument(res)
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.UseSampleRate || decoded.ConstantPitch {
		t.Fatalf("flags = %+v", decoded)
	}
	if len(decoded.KeyRegions) != 1 {
		t.Fatalf("key regions = %d; want 1 synthetic full-range region", len(decoded.KeyRegions))
	}
	kr := decoded.KeyRegions[0]
	if kr.KeyLow != 0 || kr.KeyHigh != 0x7F || kr.SndID != 100 || kr.SndType != TypeSND {
		t.Fatalf("key region = %+v", kr)
	}
}

func TestCompressedMIDIRoundTrip(t *testing.T) {
	midi := []byte("MThd fake midi payload")

	// cmid: 4-byte size then LZSS literals.
	var lz []byte
	for i := 0; i < len(midi); i += 8 {
		end := i + 8
		if end > len(midi) {
			end = len(midi)
		}
		lz = append(lz, 0xFF)
		lz = append(lz, midi[i:end]...)
	}
	w := binary.NewWriter()
	w.PutU32BE(uint32(len(midi)))
	w.Write(lz)

	got, err := DecodeCompressedMIDI(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, midi) {
		t.Fatalf("cmid = %q", got)
	}

	// emid: encrypting with the stream cipher, then decoding, restores
	// the payload.
	enc := make([]byte, len(midi))
	key := uint32(56549)
	for i, ch := range midi {
		e := ch ^ uint8(key>>8)
		enc[i] = e
		key = (uint32(e) + key) * 52845 + 22719
	}
	got, err = DecodeEncryptedMIDI(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, midi) {
		t.Fatalf("emid = %q", got)
	}
}
