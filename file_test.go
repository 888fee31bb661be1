// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"bytes"
	"errors"
	"os"
	"reflect"
	"sort"
	"testing"

	"github.com/saferwall/rsrcfork/binary"
)

func writeTestFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// buildFork assembles an on-disk resource fork from a resource list,
// exercising the full three-region layout.
func buildFork(t *testing.T, ress []Resource) []byte {
	t.Helper()

	// Data segment: length-prefixed payloads.
	dataSeg := binary.NewWriter()
	dataOffsets := make([]uint32, len(ress))
	for i, res := range ress {
		dataOffsets[i] = uint32(dataSeg.Size())
		dataSeg.PutU32BE(uint32(len(res.Data)))
		dataSeg.Write(res.Data)
	}

	// Group resources by type, preserving input order within a type.
	var typeOrder []uint32
	byType := make(map[uint32][]int)
	for i, res := range ress {
		if _, ok := byType[res.Type]; !ok {
			typeOrder = append(typeOrder, res.Type)
		}
		byType[res.Type] = append(byType[res.Type], i)
	}

	// Name list.
	nameList := binary.NewWriter()
	nameOffsets := make([]uint16, len(ress))
	for i, res := range ress {
		if res.Name == "" {
			nameOffsets[i] = 0xFFFF
			continue
		}
		nameOffsets[i] = uint16(nameList.Size())
		nameList.PutPString([]byte(res.Name))
	}

	// Type list plus reference lists.
	typeList := binary.NewWriter()
	typeList.PutU16BE(uint16(len(typeOrder) - 1))
	refListStart := 2 + 8*len(typeOrder)
	refOffset := refListStart
	for _, typ := range typeOrder {
		typeList.PutU32BE(typ)
		typeList.PutU16BE(uint16(len(byType[typ]) - 1))
		typeList.PutU16BE(uint16(refOffset))
		refOffset += 12 * len(byType[typ])
	}
	for _, typ := range typeOrder {
		for _, i := range byType[typ] {
			typeList.PutU16BE(uint16(ress[i].ID))
			typeList.PutU16BE(nameOffsets[i])
			typeList.PutU32BE(uint32(ress[i].Flags)<<24 | dataOffsets[i])
			typeList.PutU32BE(0) // reserved
		}
	}

	const headerSize = 16
	const mapHeaderSize = 28
	dataOffset := uint32(headerSize)
	mapOffset := dataOffset + uint32(dataSeg.Size())

	mapSeg := binary.NewWriter()
	for i := 0; i < 16; i++ { // reserved
		mapSeg.PutU8(0)
	}
	mapSeg.PutU32BE(0) // handle placeholder
	mapSeg.PutU16BE(0) // file ref num
	mapSeg.PutU16BE(0) // attributes
	mapSeg.PutU16BE(mapHeaderSize)
	mapSeg.PutU16BE(uint16(mapHeaderSize + typeList.Size()))
	mapSeg.Write(typeList.Bytes())
	mapSeg.Write(nameList.Bytes())

	out := binary.NewWriter()
	out.PutU32BE(dataOffset)
	out.PutU32BE(mapOffset)
	out.PutU32BE(uint32(dataSeg.Size()))
	out.PutU32BE(uint32(mapSeg.Size()))
	out.Write(dataSeg.Bytes())
	out.Write(mapSeg.Bytes())
	return out.Bytes()
}

func TestEmptyFork(t *testing.T) {
	f, err := NewBytes(nil, nil)
	if err != nil {
		t.Fatalf("NewBytes(empty) failed: %v", err)
	}
	if all := f.AllResources(); len(all) != 0 {
		t.Fatalf("AllResources = %v; want empty", all)
	}
	if f.ResourceExists(TypeSTR, 128) {
		t.Fatal("ResourceExists on empty fork")
	}
}

func TestParseForkRoundTrip(t *testing.T) {
	ress := []Resource{
		{Type: TypeSTR, ID: 128, Name: "greeting", Data: []byte("\x05hello")},
		{Type: TypeSTR, ID: 5, Data: []byte("\x02hi")},
		{Type: TypeTEXT, ID: 128, Data: []byte("some text")},
		{Type: TypeSTR, ID: -1, Data: []byte("\x00")},
	}
	f, err := NewBytes(buildFork(t, ress), nil)
	if err != nil {
		t.Fatal(err)
	}

	// Every (t, id) in the index resolves to a resource whose stored
	// type and id match the key.
	for _, rid := range f.AllResources() {
		res, err := f.GetResource(rid.Type, rid.ID, 0)
		if err != nil {
			t.Fatalf("GetResource(%s, %d) failed: %v", TypeString(rid.Type), rid.ID, err)
		}
		if res.Type != rid.Type || res.ID != rid.ID {
			t.Fatalf("resource key mismatch: %s:%d vs %s:%d",
				TypeString(rid.Type), rid.ID, TypeString(res.Type), res.ID)
		}
	}

	ids := f.AllResourcesOfType(TypeSTR)
	if !sort.SliceIsSorted(ids, func(i, j int) bool { return ids[i] < ids[j] }) {
		t.Fatalf("ids not ascending: %v", ids)
	}
	if !reflect.DeepEqual(ids, []int16{-1, 5, 128}) {
		t.Fatalf("STR ids = %v; want [-1 5 128]", ids)
	}

	// Named and id lookups return the same resource.
	byName, err := f.GetResourceByName(TypeSTR, "greeting", 0)
	if err != nil {
		t.Fatal(err)
	}
	byID, err := f.GetResource(TypeSTR, 128, 0)
	if err != nil {
		t.Fatal(err)
	}
	if byName != byID {
		t.Fatal("name and id lookups returned different resources")
	}
	if !f.ResourceExistsName(TypeSTR, "greeting") {
		t.Fatal("ResourceExistsName failed")
	}
	if f.ResourceExistsName(TypeTEXT, "greeting") {
		t.Fatal("ResourceExistsName matched the wrong type")
	}

	if _, err := f.GetResource(TypeSTR, 9999, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing resource error = %v; want ErrNotFound", err)
	}
}

func TestFindResourceByID(t *testing.T) {
	ress := []Resource{
		{Type: TypeCSND, ID: 7, Data: []byte{}},
		{Type: TypeSND, ID: 7, Data: []byte{}},
	}
	f, err := NewBytes(buildFork(t, ress), nil)
	if err != nil {
		t.Fatal(err)
	}
	typ, err := f.FindResourceByID(7, []uint32{TypeESND, TypeCSND, TypeSND})
	if err != nil {
		t.Fatal(err)
	}
	if typ != TypeCSND {
		t.Fatalf("FindResourceByID = %s; want csnd", TypeString(typ))
	}
	if _, err := f.FindResourceByID(8, []uint32{TypeESND}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}

func TestMalformedFork(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated header", []byte{0x00, 0x00, 0x00}},
		{"map offset out of range", func() []byte {
			w := binary.NewWriter()
			w.PutU32BE(16)
			w.PutU32BE(0xFFFF00)
			w.PutU32BE(0)
			w.PutU32BE(0)
			return w.Bytes()
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBytes(tt.data, nil); !errors.Is(err, ErrMalformedFork) {
				t.Fatalf("error = %v; want ErrMalformedFork", err)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		in  uint32
		out string
	}{
		{TypeSTR, "STR "},
		{TypeICNN, "ICN#"},
		{0x00616263, `\x00abc`},
	}
	for _, tt := range tests {
		if got := TypeString(tt.in); got != tt.out {
			t.Errorf("TypeString(%08X) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

// copyDcmp is a hand-assembled 68K decompressor in the 'dcmp'-tagged
// format: it reads the decompressed size from the compressed resource
// header and copies that many bytes from source to destination.
var copyDcmp = []byte{
	0x60, 0x08, // bra to offset 10
	0x00, 0x00,
	'd', 'c', 'm', 'p',
	0x00, 0x00,
	0x20, 0x6F, 0x00, 0x04, // movea.l A0, [A7 + 4] (source header)
	0x20, 0x28, 0x00, 0x08, // move.l  D0, [A0 + 8] (decompressed size)
	0x22, 0x6F, 0x00, 0x08, // movea.l A1, [A7 + 8] (dest)
	0x24, 0x6F, 0x00, 0x0C, // movea.l A2, [A7 + 12] (source)
	0x4A, 0x80, // tst.l D0
	0x67, 0x08, // beq done
	0x12, 0xDA, // move.b [A1]+, [A2]+
	0x53, 0x80, // subq.l D0, 1
	0x60, 0xF6, // bra loop
	0x4E, 0x75, // rts
	0x4E, 0x75, // done: rts
}

// buildCompressed wraps plaintext in a version-9 compressed-resource
// header naming the given dcmp id.
func buildCompressed(plaintext []byte, dcmpID int16) []byte {
	w := binary.NewWriter()
	w.PutU32BE(compressedResourceMagic)
	w.PutU16BE(compressedHeaderSize)
	w.PutU8(9) // header version
	w.PutU8(1) // attributes
	w.PutU32BE(uint32(len(plaintext)))
	w.PutU16BE(uint16(dcmpID))
	w.PutU16BE(0)
	w.PutU32BE(0) // pad the tail to 8 bytes
	w.Write(plaintext)
	return w.Bytes()
}

func TestDecompressResourceEndToEnd(t *testing.T) {
	plaintext := []byte("Hello, decompressed world!")
	ress := []Resource{
		{Type: TypeDCMP, ID: 1, Data: copyDcmp},
		{Type: TypeTEXT, ID: 128, Flags: FlagCompressed,
			Data: buildCompressed(plaintext, 1)},
	}
	f, err := NewBytes(buildFork(t, ress), &Options{
		SystemDecompressorDir: t.TempDir(), // no system decompressors
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := f.GetResource(TypeTEXT, 128, 0)
	if err != nil {
		t.Fatalf("GetResource failed: %v", err)
	}
	if !bytes.Equal(res.Data, plaintext) {
		t.Fatalf("decompressed data = %q; want %q", res.Data, plaintext)
	}
	if res.Flags&FlagCompressed != 0 || res.Flags&FlagDecompressed == 0 {
		t.Fatalf("flags = %04X; want decompressed", res.Flags)
	}

	// A second call returns the cached bytes without re-running.
	res2, err := f.GetResource(TypeTEXT, 128, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(res2.Data, plaintext) {
		t.Fatal("second lookup returned different data")
	}
}

func TestDecompressDisabledAndSticky(t *testing.T) {
	// A compressed resource with no decompressor available.
	ress := []Resource{
		{Type: TypeTEXT, ID: 1, Flags: FlagCompressed,
			Data: buildCompressed([]byte("x"), 99)},
	}
	f, err := NewBytes(buildFork(t, ress), &Options{
		SystemDecompressorDir: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	// Disabled: the raw compressed bytes come back untouched.
	res, err := f.GetResource(TypeTEXT, 1, DecompressDisabled)
	if err != nil {
		t.Fatal(err)
	}
	if res.Flags&FlagCompressed == 0 {
		t.Fatal("disabled lookup cleared the compressed flag")
	}

	// Enabled: the attempt fails once and the failure is sticky.
	_, err = f.GetResource(TypeTEXT, 1, 0)
	if !errors.Is(err, ErrDecompressionFailed) {
		t.Fatalf("error = %v; want ErrDecompressionFailed", err)
	}
	res, err = f.GetResource(TypeTEXT, 1, 0)
	if err != nil {
		t.Fatalf("second lookup should not retry: %v", err)
	}
	if res.Flags&FlagDecompressionFailed == 0 {
		t.Fatal("decompression-failed flag not set")
	}
}

func TestParseCompressedHeaderVersions(t *testing.T) {
	v8 := binary.NewWriter()
	v8.PutU32BE(compressedResourceMagic)
	v8.PutU16BE(compressedHeaderSize)
	v8.PutU8(8)
	v8.PutU8(1)
	v8.PutU32BE(0x1000)
	v8.PutU8(0x40) // working buffer fractional size
	v8.PutU8(0x10) // expansion buffer size
	v8.PutU16BE(2) // dcmp id
	v8.PutU32BE(0)
	h, err := parseCompressedHeader(v8.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if h.headerVersion != 8 || h.dcmpResourceID != 2 ||
		h.decompressedSize != 0x1000 || h.workingBufferFractionalSize != 0x40 {
		t.Fatalf("v8 header = %+v", h)
	}

	bad := v8.Bytes()
	bad[6] = 7 // neither 8 nor 9
	if _, err := parseCompressedHeader(bad); err == nil {
		t.Fatal("expected error for bad header version")
	}

	if _, err := parseCompressedHeader([]byte{1, 2, 3}); !errors.Is(err, ErrNotCompressed) {
		t.Fatalf("error = %v; want ErrNotCompressed", err)
	}
}

func TestSystemDecompressorCache(t *testing.T) {
	dir := t.TempDir()
	payload := []byte{0x60, 0x00, 0x4E, 0x75}
	if err := writeTestFile(dir+"/dcmp_3.bin", payload); err != nil {
		t.Fatal(err)
	}

	res, err := getSystemDecompressor(dir, false, 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Type != TypeDCMP || res.ID != 3 || !bytes.Equal(res.Data, payload) {
		t.Fatalf("system decompressor = %+v", res)
	}

	// Cached: same pointer comes back.
	res2, err := getSystemDecompressor(dir, false, 3)
	if err != nil {
		t.Fatal(err)
	}
	if res != res2 {
		t.Fatal("system decompressor not cached")
	}

	if _, err := getSystemDecompressor(dir, true, 3); err == nil {
		t.Fatal("expected error for missing ncmp file")
	}
}
