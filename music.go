// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"fmt"
	"sort"

	"github.com/saferwall/rsrcfork/binary"
)

// Errors
var (
	// ErrMalformedMusic is returned when a Tune/INST/SONG structure
	// fails a check.
	ErrMalformedMusic = errors.New("malformed music resource")
)

// InstrumentKeyRegion maps a key range to a sound resource.
type InstrumentKeyRegion struct {
	KeyLow   uint8
	KeyHigh  uint8
	BaseNote uint8
	SndID    int16
	SndType  uint32 // snd, csnd, or esnd
}

// DecodedInstrument is a decoded INST resource.
type DecodedInstrument struct {
	KeyRegions    []InstrumentKeyRegion
	BaseNote      uint8
	UseSampleRate bool
	ConstantPitch bool
}

// INST flag bits.
const (
	instFlag1UseSampleRate     = 0x08
	instFlag2PlayAtSampledFreq = 0x40
)

// DecodeInstrument decodes an INST resource. Sound lookups resolve
// against this fork in esnd, csnd, snd preference order.
func (f *File) DecodeInstrument(res *Resource) (*DecodedInstrument, error) {
	r := binary.NewReader(res.Data)
	sndID, err := r.GetS16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: INST too small for header", ErrMalformedMusic)
	}
	baseNote, _ := r.GetU16BE()
	r.Skip(1) // panning
	flags1, _ := r.GetU8()
	flags2, _ := r.GetU8()
	r.Skip(1) // smod id
	r.Skip(4) // params
	numKeyRegions, err := r.GetU16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: INST too small for header", ErrMalformedMusic)
	}

	sndTypes := []uint32{TypeESND, TypeCSND, TypeSND}
	ret := &DecodedInstrument{
		BaseNote:      uint8(baseNote),
		UseSampleRate: flags1&instFlag1UseSampleRate != 0,
		ConstantPitch: flags2&instFlag2PlayAtSampledFreq != 0,
	}

	if numKeyRegions == 0 {
		sndType, err := f.FindResourceByID(sndID, sndTypes)
		if err != nil {
			return nil, err
		}
		ret.KeyRegions = append(ret.KeyRegions, InstrumentKeyRegion{
			KeyLow: 0x00, KeyHigh: 0x7F, BaseNote: uint8(baseNote),
			SndID: sndID, SndType: sndType,
		})
		return ret, nil
	}

	for x := 0; x < int(numKeyRegions); x++ {
		keyLow, err := r.GetU8()
		if err != nil {
			return nil, fmt.Errorf("%w: INST too small for key regions", ErrMalformedMusic)
		}
		keyHigh, _ := r.GetU8()
		rgnSndID, _ := r.GetS16BE()
		if err := r.Skip(4); err != nil {
			return nil, fmt.Errorf("%w: INST too small for key regions", ErrMalformedMusic)
		}

		sndType, err := f.FindResourceByID(rgnSndID, sndTypes)
		if err != nil {
			return nil, err
		}

		// When PlayAtSampledFreq is set, a fake base note of 0x3C makes
		// downstream players ignore whatever the snd says.
		rgnBaseNote := uint8(baseNote)
		if flags2&instFlag2PlayAtSampledFreq != 0 {
			rgnBaseNote = 0x3C
		}

		// Without UseSampleRate the library never corrects for sample
		// rate differences; songs exist that depend on the resulting
		// octave shifts, so the flag is surfaced rather than fixed up.
		ret.KeyRegions = append(ret.KeyRegions, InstrumentKeyRegion{
			KeyLow: keyLow, KeyHigh: keyHigh, BaseNote: rgnBaseNote,
			SndID: rgnSndID, SndType: sndType,
		})
	}
	return ret, nil
}

// DecodedSong is a decoded SONG resource.
type DecodedSong struct {
	MidiID               int16
	TempoBias            uint16
	SemitoneShift        int8
	PercussionInstrument uint8
	AllowProgramChange   bool
	InstrumentOverrides  map[uint16]uint16
}

// songFlag1EnableMIDIProgramChange gates program-change passthrough.
const songFlag1EnableMIDIProgramChange = 0x04

// DecodeSong decodes a SONG resource (SMS type only).
func DecodeSong(data []byte) (*DecodedSong, error) {
	r := binary.NewReader(data)
	midiID, err := r.GetS16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: SONG too small for header", ErrMalformedMusic)
	}
	r.Skip(1) // lead instrument
	r.Skip(1) // reverb type
	tempoBias, _ := r.GetU16BE()
	songType, _ := r.GetU8()
	semitoneShift, _ := r.GetS8()
	r.Skip(1) // max effects
	r.Skip(1) // max notes
	r.Skip(2) // mix level
	flags1, _ := r.GetU8()
	r.Skip(1) // note decay
	percussionInstrument, _ := r.GetU8()
	if _, err := r.GetU8(); err != nil { // flags2
		return nil, fmt.Errorf("%w: SONG too small for header", ErrMalformedMusic)
	}

	// A later library version split the pitch-shift field; old SONGs
	// with a negative shift can carry 0xFF here where the type now
	// lives.
	if songType == 0xFF {
		songType = 0
	}
	if songType != 0 {
		return nil, fmt.Errorf("%w: SONG is not type 0 (SMS)", ErrUnsupportedFormat)
	}

	overrideCount, err := r.GetU16BE()
	if err != nil {
		return nil, fmt.Errorf("%w: SONG too small for header", ErrMalformedMusic)
	}
	ret := &DecodedSong{
		MidiID:               midiID,
		TempoBias:            tempoBias,
		SemitoneShift:        semitoneShift,
		PercussionInstrument: percussionInstrument,
		AllowProgramChange:   flags1&songFlag1EnableMIDIProgramChange != 0,
		InstrumentOverrides:  make(map[uint16]uint16),
	}
	for x := 0; x < int(overrideCount); x++ {
		channel, err := r.GetU16BE()
		if err != nil {
			return nil, fmt.Errorf("%w: SONG too small for data", ErrMalformedMusic)
		}
		instID, err := r.GetU16BE()
		if err != nil {
			return nil, fmt.Errorf("%w: SONG too small for data", ErrMalformedMusic)
		}
		ret.InstrumentOverrides[channel] = instID
	}
	return ret, nil
}

// midiEvent is one pending MIDI event during Tune conversion.
type midiEvent struct {
	when   uint64
	status uint8
	data   []byte
}

// tuneHeaderSize is the fixed Tune resource header: size, 'musi' magic,
// reserved fields, index, and flags.
const tuneHeaderSize = 20

// DecodeTune converts a Tune event stream into a standard MIDI file
// (type 0, single track, 600 ticks per quarter note).
func DecodeTune(data []byte) ([]byte, error) {
	if len(data) < tuneHeaderSize {
		return nil, fmt.Errorf("%w: Tune size is too small", ErrMalformedMusic)
	}
	r := binary.NewReader(data)
	r.Go(tuneHeaderSize)

	var events []midiEvent
	partitionToChannel := make(map[uint16]uint8)
	var currentTime uint64

	channelFor := func(partitionID uint16) (uint8, error) {
		if ch, ok := partitionToChannel[partitionID]; ok {
			return ch, nil
		}
		ch := uint8(len(partitionToChannel))
		if ch >= 0x10 {
			return 0, fmt.Errorf("%w: not enough MIDI channels", ErrMalformedMusic)
		}
		partitionToChannel[partitionID] = ch
		return ch, nil
	}

	for !r.EOF() {
		event, err := r.GetU32BE()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated event stream", ErrMalformedMusic)
		}
		eventType := uint8(event >> 28)

		switch eventType {
		case 0x0, 0x1: // pause
			currentTime += uint64(event & 0x00FFFFFF)

		case 0x2, 0x3, 0x9: // note events
			var key, vel uint8
			var partitionID, duration uint16
			if eventType == 0x9 {
				options, err := r.GetU32BE()
				if err != nil {
					return nil, fmt.Errorf("%w: extended note missing options", ErrMalformedMusic)
				}
				partitionID = uint16((event >> 16) & 0xFFF)
				key = uint8(event >> 8)
				vel = uint8((options >> 22) & 0x7F)
				duration = uint16(options & 0x3FFFFF)
			} else {
				partitionID = uint16((event >> 24) & 0x1F)
				key = uint8((event>>18)&0x3F) + 32
				vel = uint8((event >> 11) & 0x7F)
				duration = uint16(event & 0x7FF)
			}

			channel, ok := partitionToChannel[partitionID]
			if !ok {
				return nil, fmt.Errorf("%w: notes produced on uninitialized partition", ErrMalformedMusic)
			}
			events = append(events,
				midiEvent{currentTime, 0x90 | channel, []byte{key, vel}},
				midiEvent{currentTime + uint64(duration), 0x80 | channel, []byte{key, vel}})

		case 0x4, 0x5, 0xA: // controller events
			var message, value uint16
			var partitionID uint16
			if eventType == 0xA {
				options, err := r.GetU32BE()
				if err != nil {
					return nil, fmt.Errorf("%w: extended controller missing options", ErrMalformedMusic)
				}
				message = uint16((options >> 16) & 0x3FFF)
				partitionID = uint16((event >> 16) & 0xFFF)
				value = uint16(options)
			} else {
				message = uint16((event >> 16) & 0xFF)
				partitionID = uint16((event >> 24) & 0x1F)
				value = uint16(event)
			}

			// Controller messages can create channels.
			channel, err := channelFor(partitionID)
			if err != nil {
				return nil, err
			}

			switch message {
			case 0:
				// Bank select; nothing to emit.
			case 32:
				// Pitch bend: clamp and widen to the MIDI 14-bit range.
				sValue := int16(value)
				if sValue < -0x0200 {
					sValue = -0x0200
				}
				if sValue > 0x01FF {
					sValue = 0x01FF
				}
				sValue = (sValue + 0x200) * 0x10
				events = append(events, midiEvent{currentTime, 0xE0 | channel,
					[]byte{uint8(sValue & 0x7F), uint8((sValue >> 7) & 0x7F)}})
			default:
				events = append(events, midiEvent{currentTime, 0xB0 | channel,
					[]byte{uint8(message), uint8(value >> 8)}})
			}

		case 0xF: // metadata message
			partitionID := uint16((event >> 16) & 0xFFF)
			messageSize := int(event&0xFFFF) * 4
			if messageSize < 8 {
				return nil, fmt.Errorf("%w: metadata message too short for type field", ErrMalformedMusic)
			}
			messageData, err := r.Read(messageSize - 4)
			if err != nil {
				return nil, fmt.Errorf("%w: metadata message exceeds track boundary", ErrMalformedMusic)
			}

			// The second-to-last word is the message type.
			messageType := (uint16(messageData[len(messageData)-4])<<8 |
				uint16(messageData[len(messageData)-3])) & 0x3FFF

			// Meta messages can create channels.
			channel, err := channelFor(partitionID)
			if err != nil {
				return nil, err
			}

			switch messageType {
			case 1: // instrument definition
				if messageSize != 0x5C {
					return nil, fmt.Errorf("%w: message size is incorrect", ErrMalformedMusic)
				}
				instrument := uint32(messageData[0x50])<<24 | uint32(messageData[0x51])<<16 |
					uint32(messageData[0x52])<<8 | uint32(messageData[0x53])
				events = append(events,
					midiEvent{currentTime, 0xC0 | channel, []byte{uint8(instrument)}},
					midiEvent{currentTime, 0xB0 | channel, []byte{7, 0x7F}},    // volume
					midiEvent{currentTime, 0xB0 | channel, []byte{10, 0x40}},   // panning
					midiEvent{currentTime, 0xE0 | channel, []byte{0x00, 0x40}}) // pitch bend
			case 6: // extended instrument definition
				if messageSize != 0x88 {
					return nil, fmt.Errorf("%w: message size is incorrect", ErrMalformedMusic)
				}
				instrument := uint32(messageData[0x7C])<<24 | uint32(messageData[0x7D])<<16 |
					uint32(messageData[0x7E])<<8 | uint32(messageData[0x7F])
				events = append(events,
					midiEvent{currentTime, 0xC0 | channel, []byte{uint8(instrument)}},
					midiEvent{currentTime, 0xB0 | channel, []byte{7, 0x7F}},
					midiEvent{currentTime, 0xB0 | channel, []byte{10, 0x40}},
					midiEvent{currentTime, 0xE0 | channel, []byte{0x00, 0x40}})
			case 5, 8, 10, 11:
				// tune difference, MIDI channel, nop, notes used
			default:
				return nil, fmt.Errorf("%w: unknown metadata event %08X/%X",
					ErrMalformedMusic, event, messageType)
			}

		case 0x8, 0xC, 0xD, 0xE: // reserved, with a 4-byte argument
			if err := r.Skip(4); err != nil {
				return nil, fmt.Errorf("%w: truncated event stream", ErrMalformedMusic)
			}
		case 0x6, 0x7: // markers, ignored

		default:
			return nil, fmt.Errorf("%w: unsupported event in stream", ErrMalformedMusic)
		}
	}

	// Append the MIDI track end event at the latest event time, so it also
	// follows note-offs that outlast the final pause.
	endTime := currentTime
	for _, ev := range events {
		if ev.when > endTime {
			endTime = ev.when
		}
	}
	events = append(events, midiEvent{endTime, 0xFF, []byte{0x2F, 0x00}})

	// Note-off events can land out of order; the sort is stable so
	// same-tick events keep their source order.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].when < events[j].when
	})

	// Generate the MIDI track.
	track := binary.NewWriter()
	currentTime = 0
	for _, ev := range events {
		delta := ev.when - currentTime
		currentTime = ev.when

		// Delta times are variable-length quantities.
		var vlq []byte
		vlq = append(vlq, uint8(delta&0x7F))
		delta >>= 7
		for delta > 0 {
			vlq = append(vlq, uint8(delta&0x7F)|0x80)
			delta >>= 7
		}
		for i := len(vlq) - 1; i >= 0; i-- {
			track.PutU8(vlq[i])
		}
		track.PutU8(ev.status)
		track.Write(ev.data)
	}

	out := binary.NewWriter()
	out.PutU32BE(0x4D546864) // 'MThd'
	out.PutU32BE(6)
	out.PutU16BE(0)   // format 0
	out.PutU16BE(1)   // one track
	out.PutU16BE(600) // ticks per quarter note
	out.PutU32BE(0x4D54726B) // 'MTrk'
	out.PutU32BE(uint32(track.Size()))
	out.Write(track.Bytes())
	return out.Bytes(), nil
}

// DecodeCompressedMIDI expands a cmid resource to raw MIDI bytes.
func DecodeCompressedMIDI(data []byte) ([]byte, error) {
	return decompressSoundMusicSys(data)
}

// DecodeEncryptedMIDI decrypts an emid resource to raw MIDI bytes.
func DecodeEncryptedMIDI(data []byte) ([]byte, error) {
	return decryptSoundMusicSys(data), nil
}

// DecodeEncryptedCompressedMIDI decrypts then expands an ecmi resource
// to raw MIDI bytes.
func DecodeEncryptedCompressedMIDI(data []byte) ([]byte, error) {
	return decompressSoundMusicSys(decryptSoundMusicSys(data))
}
