// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sh4

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

func TestAssembleBasics(t *testing.T) {
	tests := []struct {
		src  string
		want []byte // little-endian instruction words
	}{
		{"nop", []byte{0x09, 0x00}},
		{"rets", []byte{0x0B, 0x00}},
		{"mov r3, r5", []byte{0x53, 0x63}},
		{"mov r2, 0x7F", []byte{0x7F, 0xE2}},
		{"add r1, r2", []byte{0x2C, 0x31}},
		{"add r1, 0x10", []byte{0x10, 0x71}},
		{"mov.l [r4 + 8], r6", []byte{0x62, 0x14}},
		{"mov.b [r3], r2", []byte{0x20, 0x23}},
		{"mov.b r2, [r3]+", []byte{0x34, 0x62}},
		{"shl r7, 2", []byte{0x08, 0x47}},
		{"dec r4", []byte{0x10, 0x44}},
		{"sts r3, pr", []byte{0x2A, 0x03}},
		{"lds pr, r3", []byte{0x2A, 0x43}},
		{"trapa 0x20", []byte{0x20, 0xC3}},
		{"calls [r5]", []byte{0x0B, 0x45}},
		{"test r0, 0x0F", []byte{0x0F, 0xC8}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			res, err := Assemble(tt.src, nil, 0)
			if err != nil {
				t.Fatalf("Assemble failed: %v", err)
			}
			if !bytes.Equal(res.Code, tt.want) {
				t.Fatalf("code = % X; want % X", res.Code, tt.want)
			}
		})
	}
}

func TestAssembleBranchesAndLabels(t *testing.T) {
	src := `
start:
	mov    r0, 0x00
loop:
	add    r0, 0x01
	cmpeq  r0, 0x05
	bf     loop
	bs     done
	nop
done:
	rets
	nop
`
	res, err := Assemble(src, nil, 0)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if res.LabelOffsets["start"] != 0 || res.LabelOffsets["loop"] != 2 ||
		res.LabelOffsets["done"] != 12 {
		t.Fatalf("label offsets = %v", res.LabelOffsets)
	}
	// bf loop: at offset 6, target 2 => disp (2-6-4)/2 = -4 => 0x8BFC
	if res.Code[6] != 0xFC || res.Code[7] != 0x8B {
		t.Fatalf("bf encoding = %02X%02X", res.Code[7], res.Code[6])
	}
}

func TestAssembleDirectives(t *testing.T) {
	src := `
	nop
	.align 4
value:
	.data 0x11223344
	.offsetof value
	.binary DEADBEEF "ok"
`
	res, err := Assemble(src, nil, 0)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	// nop, pad to 4, 4-byte data, 4-byte offsetof, 6-byte binary.
	want := []byte{
		0x09, 0x00, 0x00, 0x00,
		0x44, 0x33, 0x22, 0x11,
		0x04, 0x00, 0x00, 0x00,
		0xDE, 0xAD, 0xBE, 0xEF, 'o', 'k',
	}
	if !bytes.Equal(res.Code, want) {
		t.Fatalf("code = % X; want % X", res.Code, want)
	}
}

func TestAssembleInclude(t *testing.T) {
	includes := map[string][]byte{
		"pad": {0xAA, 0xBB},
	}
	loads := 0
	getInclude := func(name string) ([]byte, error) {
		loads++
		return includes[name], nil
	}
	src := ".include pad\n.include pad\nnop\n"
	res, err := Assemble(src, getInclude, 0)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if loads != 1 {
		t.Fatalf("include loaded %d times; want 1 (cached)", loads)
	}
	want := []byte{0xAA, 0xBB, 0xAA, 0xBB, 0x09, 0x00}
	if !bytes.Equal(res.Code, want) {
		t.Fatalf("code = % X; want % X", res.Code, want)
	}
}

func TestAssemblerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown opcode", "frobnicate r1"},
		{"bad shift count", "shl r1, 3"},
		{"imm out of range", "mov r1, 0x1234"},
		{"odd branch", "bs 0x3"},
		{"duplicate label", "x:\nx:\n"},
		{"unknown label", "bs nowhere_special_0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Assemble(tt.src, nil, 0); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAssemblerErrorCarriesLine(t *testing.T) {
	_, err := Assemble("nop\nnop\nbogus r1\n", nil, 0)
	asmErr, ok := err.(*AssemblerError)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if asmErr.Line != 3 {
		t.Fatalf("line = %d; want 3", asmErr.Line)
	}
}

func TestDisassembleBasics(t *testing.T) {
	// mov r3, r5; nop; rets
	code := []byte{0x53, 0x63, 0x09, 0x00, 0x0B, 0x00}
	text := Disassemble(code, 0, nil, false)
	for _, want := range []string{"mov     r3, r5", "nop", "rets"} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly missing %q:\n%s", want, text)
		}
	}
}

var listingLine = regexp.MustCompile(`^[0-9A-F]{8}  [0-9A-F]{4}  `)

// stripListing removes the address and hex columns so a listing can be fed
// back into the assembler.
func stripListing(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, listingLine.ReplaceAllString(line, ""))
	}
	return strings.Join(out, "\n")
}

func TestRoundTrip(t *testing.T) {
	src := `
	mov     r1, 0x10
	mov     r2, r1
	add     r2, r1
	sub     r2, r1
	and     r2, r1
	or      r2, r1
	xor     r2, r1
	test    r2, r1
	cmpeq   r2, r1
	cmpgt   r2, r1
	mov.b   [r3], r2
	mov.w   [r3], r2
	mov.l   [r3], r2
	mov.b   r2, [r3]
	mov.l   [r4 + 8], r6
	mov.l   r6, [r4 + 8]
	mov.b   [r3 + r0], r2
	mov.b   r2, [r3 + r0]
	mov.b   -[r3], r2
	mov.b   r2, [r3]+
	shl     r5, 1
	shl     r5, 2
	shl     r5, 8
	shl     r5, 16
	shr     r5, 1
	shal    r5
	shar    r5
	rol     r5
	ror     r5
	rcl     r5
	rcr     r5
	dec     r5
	cmppz   r5
	cmppl   r5
	neg     r2, r1
	not     r2, r1
	swap.b  r2, r1
	swap.w  r2, r1
	exts.b  r2, r1
	extu.w  r2, r1
	mul.l   r2, r1
	mulu.w  r2, r1
	muls.w  r2, r1
	dmulu.l r2, r1
	div0s   r2, r1
	div1    r2, r1
	div0u
	sts     r3, mach
	sts     r3, macl
	sts     r3, pr
	lds     mach, r3
	lds     pr, r3
	stc     r3, sr
	stc     r3, gbr
	ldc     sr, r3
	sts.l   -[r3], pr
	lds.l   pr, [r3]+
	mac.w   [r1]+, [r2]+
	mac.l   [r1]+, [r2]+
	pref    [r4]
	movca.l [r4], r0
	movt    r4, t
	tas.b   [r4]
	trapa   0x10
	calls   [r5]
	bs      [r5]
	clrt
	sett
	clrmac
	nop
	rets
	nop
`
	res, err := Assemble(src, nil, 0)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	listing := Disassemble(res.Code, 0, nil, false)
	res2, err := Assemble(stripListing(listing), nil, 0)
	if err != nil {
		t.Fatalf("reassembly failed: %v\nlisting:\n%s", err, listing)
	}
	if !bytes.Equal(res.Code, res2.Code) {
		t.Fatalf("round trip mismatch:\n% X\n% X\nlisting:\n%s", res.Code, res2.Code, listing)
	}
}

func TestRoundTripBranches(t *testing.T) {
	src := `
	mov     r0, 0x00
	cmpeq   r0, 0x05
	bt      0x000A
	bs      0x000C
	nop
	rets
	nop
`
	res, err := Assemble(src, nil, 0)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	listing := Disassemble(res.Code, 0, nil, false)
	res2, err := Assemble(stripListing(listing), nil, 0)
	if err != nil {
		t.Fatalf("reassembly failed: %v\nlisting:\n%s", err, listing)
	}
	if !bytes.Equal(res.Code, res2.Code) {
		t.Fatalf("round trip mismatch:\n% X\n% X", res.Code, res2.Code)
	}
}

func TestDoublePrecisionGate(t *testing.T) {
	// fadd fr2, fr4 = 0xF240.
	code := []byte{0x40, 0xF2}
	single := Disassemble(code, 0, nil, false)
	if !strings.Contains(single, "fadd    fr2, fr4") {
		t.Fatalf("single-precision decode:\n%s", single)
	}
	double := Disassemble(code, 0, nil, true)
	if !strings.Contains(double, "fadd    dr2, dr4") {
		t.Fatalf("double-precision decode:\n%s", double)
	}
}
