// seehuhn.de/go/pdfraster - a library for rendering PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package font

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/font/cmap"
)

func TestCIDWidthRanges(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	w := pdf.Array{
		pdf.Integer(10), pdf.Array{pdf.Integer(100), pdf.Integer(200), pdf.Integer(300)},
		pdf.Integer(20), pdf.Integer(22), pdf.Integer(400),
	}
	cidFont := pdf.NewDict(
		"Type", pdf.Name("Font"),
		"Subtype", pdf.Name("CIDFontType2"),
		"BaseFont", pdf.Name("Test"),
		"W", w,
	)
	dict := pdf.NewDict(
		"Type", pdf.Name("Font"),
		"Subtype", pdf.Name("Type0"),
		"BaseFont", pdf.Name("Test"),
		"Encoding", pdf.Name("Identity-H"),
		"DescendantFonts", pdf.Array{cidFont},
	)
	f := Load(doc, dict)

	want := map[cmap.CID]float64{
		10: 100, 11: 200, 12: 300,
		20: 400, 21: 400, 22: 400,
		13: 1000, 19: 1000, 23: 1000,
	}
	for cid, w := range want {
		if got := f.CIDWidth(cid); got != w {
			t.Errorf("width(%d) = %g, want %g", cid, got, w)
		}
		if got := f.Width(uint32(cid)); got != w {
			t.Errorf("Width(code %d) = %g, want %g", cid, got, w)
		}
	}
}

func TestReadCIDWidthsMalformed(t *testing.T) {
	w := pdf.Array{
		pdf.Integer(1), pdf.Array{pdf.Integer(500)},
		pdf.Integer(5), pdf.Integer(3), pdf.Integer(100),
	}
	res, err := readCIDWidths(nil, w)
	if err == nil {
		t.Error("missing error for reversed range")
	}
	if res[1] != 500 {
		t.Errorf("entries before the error lost: %v", res)
	}
}

func TestChars(t *testing.T) {
	w := pdf.Array{pdf.Integer(10), pdf.Array{pdf.Integer(100)}, pdf.Integer(20), pdf.Integer(20), pdf.Integer(400)}
	dict := pdf.NewDict(
		"Subtype", pdf.Name("Type0"),
		"Encoding", pdf.Name("Identity-H"),
		"DescendantFonts", pdf.Array{pdf.NewDict("Subtype", pdf.Name("CIDFontType0"), "W", w, "DW", pdf.Integer(250))},
	)
	f := Load(nil, dict)

	var got []Char
	for c := range f.Chars(pdf.String("\x00\x0a\x00\x14\x00\x01")) {
		got = append(got, c)
	}
	want := []Char{
		{Code: 10, Len: 2, CID: 10, Width: 100},
		{Code: 20, Len: 2, CID: 20, Width: 400},
		{Code: 1, Len: 2, CID: 1, Width: 250},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("chars (-want +got):\n%s", d)
	}
}

func TestSimpleWidthOrder(t *testing.T) {
	dict := pdf.NewDict(
		"Type", pdf.Name("Font"),
		"Subtype", pdf.Name("Type1"),
		"BaseFont", pdf.Name("Helvetica"),
		"FirstChar", pdf.Integer(65),
		"LastChar", pdf.Integer(66),
		"Widths", pdf.Array{pdf.Integer(123), pdf.Real(456.5)},
	)
	f := Load(nil, dict)

	cases := []struct {
		code uint32
		want float64
	}{
		{65, 123},
		{66, 456.5},
		{67, 722}, // C from the standard metrics
		{32, 278},
		{300, 0},
	}
	for _, c := range cases {
		if got := f.Width(c.code); got != c.want {
			t.Errorf("Width(%d) = %g, want %g", c.code, got, c.want)
		}
	}

	// MissingWidth takes precedence over the standard metrics
	dict.Set("FontDescriptor", pdf.NewDict("MissingWidth", pdf.Integer(42)))
	f = Load(nil, dict)
	if got := f.Width(67); got != 42 {
		t.Errorf("MissingWidth: got %g", got)
	}
}

func TestAliases(t *testing.T) {
	for _, name := range []string{"Arial", "ABCDEF+Arial", "ArialMT"} {
		dict := pdf.NewDict("Subtype", pdf.Name("TrueType"), "BaseFont", pdf.Name(name))
		f := Load(nil, dict)
		if got := f.Width('A'); got != 667 {
			t.Errorf("%s: width of A = %g", name, got)
		}
	}
	dict := pdf.NewDict("Subtype", pdf.Name("Type1"), "BaseFont", pdf.Name("TimesNewRoman,Bold"))
	if got := Load(nil, dict).Width('M'); got != 944 {
		t.Errorf("TimesNewRoman,Bold: width of M = %g", got)
	}
}

func TestDifferences(t *testing.T) {
	enc := pdf.NewDict(
		"Type", pdf.Name("Encoding"),
		"BaseEncoding", pdf.Name("WinAnsiEncoding"),
		"Differences", pdf.Array{pdf.Integer(65), pdf.Name("W"), pdf.Name("M")},
	)
	dict := pdf.NewDict(
		"Subtype", pdf.Name("Type1"),
		"BaseFont", pdf.Name("Helvetica"),
		"Encoding", enc,
	)
	f := Load(nil, dict)
	if got := f.GlyphName(65); got != "W" {
		t.Errorf("code 65 maps to %q", got)
	}
	if got := f.Width(65); got != 944 {
		t.Errorf("Width(65) = %g", got)
	}
	if got := f.Width(66); got != 833 {
		t.Errorf("Width(66) = %g", got)
	}
	if got := f.GlyphName(0x80); got != "Euro" {
		t.Errorf("code 0x80 maps to %q", got)
	}
	if got := f.GlyphName(0x27); got != "quotesingle" {
		t.Errorf("code 0x27 maps to %q", got)
	}
}

func TestType3(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	proc, err := doc.NewStream(nil, strings.NewReader("1000 0 0 0 750 750 d1 0 0 750 750 re f"))
	if err != nil {
		t.Fatal(err)
	}
	dict := pdf.NewDict(
		"Subtype", pdf.Name("Type3"),
		"FontMatrix", pdf.Array{pdf.Real(0.01), pdf.Integer(0), pdf.Integer(0), pdf.Real(0.01), pdf.Integer(0), pdf.Integer(0)},
		"FirstChar", pdf.Integer(97),
		"Widths", pdf.Array{pdf.Integer(50)},
		"Encoding", pdf.NewDict("Differences", pdf.Array{pdf.Integer(97), pdf.Name("square")}),
		"CharProcs", pdf.NewDict("square", proc),
	)
	f := Load(doc, dict)
	if got := f.Width('a'); got != 500 {
		t.Errorf("Width('a') = %g", got)
	}
	if f.CharProc('a') != proc {
		t.Error("wrong CharProc")
	}
	if f.CharProc('b') != nil {
		t.Error("unexpected CharProc")
	}
	if f.Path('a') != nil {
		t.Error("unexpected outline for Type 3 glyph")
	}
}

func TestBrokenFont(t *testing.T) {
	f := Load(nil, pdf.Integer(7))
	if got := f.Width('A'); got != 667 {
		t.Errorf("fallback width %g", got)
	}

	dict := pdf.NewDict(
		"Subtype", pdf.Name("Type0"),
		"Encoding", pdf.Name("NoSuchCMap"),
	)
	f = Load(nil, dict)
	if got := f.Width(5); got != 1000 {
		t.Errorf("composite fallback width %g", got)
	}
}

func TestFallbackOutline(t *testing.T) {
	dict := pdf.NewDict("Subtype", pdf.Name("Type1"), "BaseFont", pdf.Name("Helvetica"))
	f := Load(nil, dict)
	o := f.Path('A')
	if o.IsBlank() {
		t.Fatal("no outline for A")
	}
	if o.Segments[0].Op != OpMoveTo {
		t.Errorf("outline starts with %d", o.Segments[0].Op)
	}
	for _, seg := range o.Segments {
		for _, p := range seg.Pts {
			if p.X < -0.5 || p.X > 1.5 || p.Y < -0.5 || p.Y > 1.5 {
				t.Fatalf("point %v outside the em square", p)
			}
		}
	}
	if o2 := f.Path('A'); o2 != o {
		t.Error("outline not cached")
	}
	if !f.Path(' ').IsBlank() {
		t.Error("space is not blank")
	}
}

func TestNameToRune(t *testing.T) {
	cases := []struct {
		name, font string
		want       rune
	}{
		{"A", "", 'A'},
		{"space", "", ' '},
		{"quoteleft", "", '‘'},
		{"Adieresis", "", 'Ä'},
		{"emdash", "", '—'},
		{"uni20AC", "", '€'},
		{"u1F600", "", 0x1F600},
		{"A.sc", "", 'A'},
		{"alpha", "Symbol", 'α'},
		{"a1", "ZapfDingbats", '✁'},
		{"f_f_i", "", 0},
		{"", "", 0},
		{"foo", "", 0},
	}
	for _, c := range cases {
		if got := nameToRune(c.name, c.font); got != c.want {
			t.Errorf("nameToRune(%q, %q) = %q, want %q", c.name, c.font, got, c.want)
		}
	}
}

func TestBuiltinEncodings(t *testing.T) {
	cases := []struct {
		font string
		code byte
		name string
		r    rune
	}{
		{"Helvetica", 0xD0, "emdash", '—'},
		{"Helvetica", 0xE1, "AE", 'Æ'},
		{"Symbol", 0x61, "alpha", 'α'},
		{"SymbolMT", 0x44, "Delta", '\u2206'},
		{"ZapfDingbats", 0x21, "a1", '✁'},
	}
	for _, c := range cases {
		dict := pdf.NewDict(
			"Subtype", pdf.Name("Type1"),
			"BaseFont", pdf.Name(c.font),
		)
		f := Load(nil, dict)
		if got := f.GlyphName(c.code); got != c.name {
			t.Errorf("%s: code 0x%02X maps to %q, want %q", c.font, c.code, got, c.name)
		}
		if got := f.enc.runes[c.code]; got != c.r {
			t.Errorf("%s: code 0x%02X maps to %q, want %q", c.font, c.code, got, c.r)
		}
	}
}

func TestWinAnsiAccents(t *testing.T) {
	dict := pdf.NewDict(
		"Subtype", pdf.Name("Type1"),
		"BaseFont", pdf.Name("Helvetica"),
		"Encoding", pdf.Name("WinAnsiEncoding"),
	)
	f := Load(nil, dict)
	if got := f.GlyphName(0xC4); got != "Adieresis" {
		t.Errorf("code 0xC4 maps to %q", got)
	}
	if got := f.Width(0xC4); got != 667 {
		t.Errorf("Width(0xC4) = %g, want 667", got)
	}
	if got := f.Width(0xE9); got != 556 {
		t.Errorf("Width(0xE9) = %g, want 556", got)
	}
}

func TestSymbolFont(t *testing.T) {
	dict := pdf.NewDict(
		"Subtype", pdf.Name("Type1"),
		"BaseFont", pdf.Name("Symbol"),
	)
	f := Load(nil, dict)
	if got := f.Width(0x61); got != 631 {
		t.Errorf("Width(alpha) = %g, want 631", got)
	}
	if got := f.Width(0x20); got != 250 {
		t.Errorf("Width(space) = %g, want 250", got)
	}
}
