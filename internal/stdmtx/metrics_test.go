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

package stdmtx

import (
	"sync"
	"testing"
)

func TestStandardNames(t *testing.T) {
	names := []string{
		"Courier", "Courier-Bold", "Courier-BoldOblique", "Courier-Oblique",
		"Helvetica", "Helvetica-Bold", "Helvetica-BoldOblique", "Helvetica-Oblique",
		"Times-Roman", "Times-Bold", "Times-BoldItalic", "Times-Italic",
		"Symbol", "ZapfDingbats",
	}
	for _, name := range names {
		m, ok := Get(name)
		if !ok {
			t.Errorf("%s: not found", name)
			continue
		}
		if m.FontName != name {
			t.Errorf("%s: wrong font name %q", name, m.FontName)
		}
		if w := m.GlyphWidth(".notdef"); w != 0 {
			t.Errorf("%s: .notdef width %g", name, w)
		}
	}
}

func TestAliases(t *testing.T) {
	cases := map[string]string{
		"Arial":               "Helvetica",
		"Arial,Bold":          "Helvetica-Bold",
		"TimesNewRoman":       "Times-Roman",
		"Times New Roman":     "Times-Roman",
		"CourierNew":          "Courier",
		"ABCDEF+Arial-BoldMT": "Helvetica-Bold",
		"ABCDEF+Helvetica":    "Helvetica",
	}
	for in, want := range cases {
		m, ok := Get(in)
		if !ok {
			t.Errorf("%s: not found", in)
			continue
		}
		if m.FontName != want {
			t.Errorf("%s: got %s, want %s", in, m.FontName, want)
		}
	}
	if _, ok := Get("Garamond"); ok {
		t.Error("unexpected match for Garamond")
	}
}

func TestWidths(t *testing.T) {
	cases := []struct {
		font, glyph string
		want        float64
	}{
		{"Helvetica", "space", 278},
		{"Helvetica", "A", 667},
		{"Helvetica", "W", 944},
		{"Helvetica-Bold", "m", 889},
		{"Times-Roman", "space", 250},
		{"Times-Roman", "M", 889},
		{"Times-Italic", "A", 611},
		{"Courier", "W", 600},
		{"Courier-Bold", "eacute", 600},
		{"Helvetica", "emdash", 1000},
		{"Helvetica", "Adieresis", 667},
		{"Helvetica-Oblique", "Adieresis", 667},
		{"Helvetica-Bold", "Adieresis", 722},
		{"Times-Roman", "eacute", 444},
		{"Times-Bold", "Euro", 500},
		{"Symbol", "alpha", 631},
		{"Symbol", "space", 250},
		{"ZapfDingbats", "a1", 974},
		{"ZapfDingbats", "space", 278},
		{"Helvetica", "no-such-glyph", 556},
	}
	for _, c := range cases {
		m, _ := Get(c.font)
		if got := m.GlyphWidth(c.glyph); got != c.want {
			t.Errorf("%s/%s: got %g, want %g", c.font, c.glyph, got, c.want)
		}
	}
}

func TestConcurrentInit(t *testing.T) {
	var wg sync.WaitGroup
	res := make([]*FontMetrics, 8)
	for i := range res {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res[i], _ = Get("Helvetica")
		}()
	}
	wg.Wait()
	for _, m := range res[1:] {
		if m != res[0] {
			t.Fatal("different metrics instances")
		}
	}
}
