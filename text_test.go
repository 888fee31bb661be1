// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/saferwall/rsrcfork/binary"
)

func TestDecodeMacRomanLineEndings(t *testing.T) {
	// Both carriage return and line feed decode to \n.
	got := DecodeMacRoman([]byte{0x0D, 0x41, 0x0A, 0x42})
	if got != "\nA\nB" {
		t.Fatalf("DecodeMacRoman = %q; want \"\\nA\\nB\"", got)
	}
}

func TestDecodeMacRomanHighBytes(t *testing.T) {
	tests := []struct {
		in  byte
		out string
	}{
		{0x80, "Ä"},
		{0xA5, "•"},
		{0xD0, "–"},
		{0x11, "⌘"},
	}
	for _, tt := range tests {
		if got := DecodeMacRoman([]byte{tt.in}); got != tt.out {
			t.Errorf("DecodeMacRoman(%02X) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestDecodeString(t *testing.T) {
	decoded, err := DecodeString([]byte{0x05, 'h', 'e', 'l', 'l', 'o', 0xAA, 0xBB})
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Str != "hello" {
		t.Fatalf("Str = %q", decoded.Str)
	}
	if !reflect.DeepEqual(decoded.AfterData, []byte{0xAA, 0xBB}) {
		t.Fatalf("AfterData = %v", decoded.AfterData)
	}

	if decoded, err := DecodeString(nil); err != nil || decoded.Str != "" {
		t.Fatalf("empty STR = %+v, %v", decoded, err)
	}
	if _, err := DecodeString([]byte{0x09, 'x'}); !errors.Is(err, ErrMalformedText) {
		t.Fatalf("short STR error = %v", err)
	}
}

func TestDecodeStringSequence(t *testing.T) {
	data := []byte{
		0x00, 0x02,
		0x03, 'o', 'n', 'e',
		0x03, 't', 'w', 'o',
		0xFF, // trailing data
	}
	decoded, err := DecodeStringSequence(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded.Strs, []string{"one", "two"}) {
		t.Fatalf("Strs = %v", decoded.Strs)
	}
	if len(decoded.AfterData) != 1 || decoded.AfterData[0] != 0xFF {
		t.Fatalf("AfterData = %v", decoded.AfterData)
	}

	if _, err := DecodeStringSequence([]byte{0x00, 0x03, 0x01, 'x'}); !errors.Is(err, ErrMalformedText) {
		t.Fatalf("missing strings error = %v", err)
	}
}

func buildStylResource(cmds []stylCommand) []byte {
	w := binary.NewWriter()
	w.PutU16BE(uint16(len(cmds)))
	for _, cmd := range cmds {
		w.PutU32BE(cmd.offset)
		w.PutU32BE(0) // line height fields
		w.PutU16BE(cmd.fontID)
		w.PutU16BE(cmd.styleFlags)
		w.PutU16BE(cmd.size)
		w.PutU16BE(cmd.r)
		w.PutU16BE(cmd.g)
		w.PutU16BE(cmd.b)
	}
	return w.Bytes()
}

func TestDecodeStyle(t *testing.T) {
	styl := buildStylResource([]stylCommand{
		{offset: 0, fontID: 22, styleFlags: styleBold, size: 12, r: 0xFFFF},
		{offset: 5, fontID: 3, styleFlags: styleUnderline, size: 10, g: 0xFFFF},
	})
	ress := []Resource{
		{Type: TypeTEXT, ID: 128, Data: []byte("bold rest")},
		{Type: TypeSTYL, ID: 128, Data: styl},
	}
	f, err := NewBytes(buildFork(t, ress), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := f.GetResource(TypeSTYL, 128, 0)
	if err != nil {
		t.Fatal(err)
	}
	rtf, err := f.DecodeStyle(res)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"{\\rtf1\\ansi",
		"\\fonttbl",
		"Courier",
		"Geneva",
		"\\red255\\green0\\blue0;",
		"\\red0\\green255\\blue0;",
		"\\b\\",   // bold run
		"\\ul ",   // underline run
		"bold ",   // first text block
		"rest",    // second text block
	} {
		if !strings.Contains(rtf, want) {
			t.Errorf("RTF missing %q:\n%s", want, rtf)
		}
	}
}

func TestDecodeStyleRequiresText(t *testing.T) {
	styl := buildStylResource([]stylCommand{{offset: 0, fontID: 3, size: 9}})
	f, err := NewBytes(buildFork(t, []Resource{{Type: TypeSTYL, ID: 1, Data: styl}}), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, _ := f.GetResource(TypeSTYL, 1, 0)
	if _, err := f.DecodeStyle(res); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}
