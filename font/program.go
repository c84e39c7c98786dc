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
	"bytes"
	"fmt"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/type1"
	"seehuhn.de/go/postscript/type1/names"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/cff"
	sfntcmap "seehuhn.de/go/sfnt/cmap"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/font/cmap"
)

// program is an embedded font program.
type program interface {
	// lookupName returns the glyph with the given name.
	lookupName(name string) (glyph.ID, bool)

	// lookupRune returns the glyph for a Unicode character.
	lookupRune(r rune) (glyph.ID, bool)

	// builtin returns the glyph for a code, using the encoding built into
	// the font program.
	builtin(code byte) (glyph.ID, bool)

	// lookupCID returns the glyph for a CID.
	lookupCID(cid cmap.CID) glyph.ID

	// width returns the advance width in PDF glyph space units.
	width(gid glyph.ID) float64

	// outline returns the glyph outline in text space units.
	outline(gid glyph.ID) *Outline
}

// loadProgram reads the font program embedded in a font descriptor.
// If the descriptor has no embedded font, nil is returned without error.
func loadProgram(r pdf.Getter, fd *pdf.Dict) (program, error) {
	if fd == nil {
		return nil, nil
	}

	var key pdf.Name
	var stm *pdf.Stream
	for _, k := range []pdf.Name{"FontFile", "FontFile2", "FontFile3"} {
		if stm = fd.GetStream(r, k); stm != nil {
			key = k
			break
		}
	}
	if stm == nil {
		return nil, nil
	}

	data, err := pdf.ReadAll(r, stm)
	if err != nil {
		return nil, err
	}

	switch key {
	case "FontFile":
		f, err := type1.Read(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newType1Program(f), nil
	case "FontFile2":
		f, err := sfnt.Read(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newSFNTProgram(f), nil
	}

	switch subtype := stm.GetName(r, "Subtype", ""); subtype {
	case "Type1C", "CIDFontType0C":
		f, err := cff.Read(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newCFFProgram(f), nil
	case "OpenType":
		f, err := sfnt.Read(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newSFNTProgram(f), nil
	default:
		return nil, fmt.Errorf("unsupported FontFile3 subtype %q", subtype)
	}
}

// type1Program is an embedded Type 1 font.  Glyph IDs are assigned in
// alphabetical order of the glyph names, with .notdef first.
type type1Program struct {
	f     *type1.Font
	names []string
	index map[string]glyph.ID
}

func newType1Program(f *type1.Font) *type1Program {
	glyphNames := make([]string, 0, len(f.Glyphs))
	for name := range f.Glyphs {
		if name != ".notdef" {
			glyphNames = append(glyphNames, name)
		}
	}
	slices.Sort(glyphNames)
	glyphNames = append([]string{".notdef"}, glyphNames...)

	index := make(map[string]glyph.ID, len(glyphNames))
	for i, name := range glyphNames {
		index[name] = glyph.ID(i)
	}
	return &type1Program{f: f, names: glyphNames, index: index}
}

func (p *type1Program) lookupName(name string) (glyph.ID, bool) {
	if _, ok := p.f.Glyphs[name]; !ok {
		return 0, false
	}
	return p.index[name], true
}

func (p *type1Program) lookupRune(r rune) (glyph.ID, bool) {
	return p.lookupName(names.FromUnicode(string(r)))
}

func (p *type1Program) builtin(code byte) (glyph.ID, bool) {
	if int(code) >= len(p.f.Encoding) {
		return 0, false
	}
	return p.lookupName(p.f.Encoding[code])
}

func (p *type1Program) lookupCID(cid cmap.CID) glyph.ID {
	if int(cid) >= len(p.names) {
		return 0
	}
	return glyph.ID(cid)
}

func (p *type1Program) width(gid glyph.ID) float64 {
	if int(gid) >= len(p.names) {
		return 0
	}
	return p.f.GlyphWidthPDF(p.names[gid])
}

func (p *type1Program) outline(gid glyph.ID) *Outline {
	if int(gid) >= len(p.names) {
		return &Outline{}
	}
	g := p.f.Glyphs[p.names[gid]]
	if g == nil {
		return &Outline{}
	}
	return type1Outline(g, p.f.FontMatrix)
}

// cffProgram is an embedded CFF font, either simple or CID-keyed.
type cffProgram struct {
	f      *cff.Font
	byName map[string]glyph.ID
	byCID  map[cmap.CID]glyph.ID
}

func newCFFProgram(f *cff.Font) *cffProgram {
	p := &cffProgram{f: f}
	if f.IsCIDKeyed() {
		p.byCID = make(map[cmap.CID]glyph.ID, len(f.GIDToCID))
		for gid, cid := range f.GIDToCID {
			p.byCID[cmap.CID(cid)] = glyph.ID(gid)
		}
	} else {
		p.byName = make(map[string]glyph.ID, len(f.Glyphs))
		for gid, g := range f.Glyphs {
			if g.Name != "" {
				p.byName[g.Name] = glyph.ID(gid)
			}
		}
	}
	return p
}

func (p *cffProgram) lookupName(name string) (glyph.ID, bool) {
	gid, ok := p.byName[name]
	return gid, ok
}

func (p *cffProgram) lookupRune(r rune) (glyph.ID, bool) {
	return p.lookupName(names.FromUnicode(string(r)))
}

func (p *cffProgram) builtin(code byte) (glyph.ID, bool) {
	if int(code) >= len(p.f.Encoding) {
		return 0, false
	}
	gid := p.f.Encoding[code]
	return gid, gid != 0
}

func (p *cffProgram) lookupCID(cid cmap.CID) glyph.ID {
	if p.byCID != nil {
		return p.byCID[cid]
	}
	if int(cid) >= len(p.f.Glyphs) {
		return 0
	}
	return glyph.ID(cid)
}

func (p *cffProgram) width(gid glyph.ID) float64 {
	if int(gid) >= len(p.f.Glyphs) {
		return 0
	}
	return float64(p.f.Glyphs[gid].Width) * p.f.FontMatrix[0] * 1000
}

func (p *cffProgram) outline(gid glyph.ID) *Outline {
	if int(gid) >= len(p.f.Glyphs) {
		return &Outline{}
	}
	return cffOutline(p.f.Glyphs[gid], p.f.FontMatrix)
}

// sfntProgram is an embedded TrueType or OpenType font.
type sfntProgram struct {
	f    *sfnt.Font
	cmap sfntcmap.Subtable
}

func newSFNTProgram(f *sfnt.Font) *sfntProgram {
	p := &sfntProgram{f: f}
	if f.CMapTable != nil {
		p.cmap, _ = f.CMapTable.GetBest()
	}
	return p
}

func (p *sfntProgram) lookupName(name string) (glyph.ID, bool) {
	r := nameToRune(name, "")
	if r == 0 {
		return 0, false
	}
	return p.lookupRune(r)
}

func (p *sfntProgram) lookupRune(r rune) (glyph.ID, bool) {
	if p.cmap == nil {
		return 0, false
	}
	gid := p.cmap.Lookup(r)
	return gid, gid != 0
}

// builtin implements the lookup for symbolic TrueType fonts, where codes
// are mapped through the (3,0) cmap subtable at U+F000 to U+F0FF.
func (p *sfntProgram) builtin(code byte) (glyph.ID, bool) {
	if p.cmap != nil {
		if gid := p.cmap.Lookup(0xF000 + rune(code)); gid != 0 {
			return gid, true
		}
		if gid := p.cmap.Lookup(rune(code)); gid != 0 {
			return gid, true
		}
	}
	if int(code) < p.f.NumGlyphs() {
		return glyph.ID(code), true
	}
	return 0, false
}

func (p *sfntProgram) lookupCID(cid cmap.CID) glyph.ID {
	if int(cid) >= p.f.NumGlyphs() {
		return 0
	}
	return glyph.ID(cid)
}

func (p *sfntProgram) width(gid glyph.ID) float64 {
	if int(gid) >= p.f.NumGlyphs() {
		return 0
	}
	return p.f.GlyphWidthPDF(gid)
}

func (p *sfntProgram) outline(gid glyph.ID) *Outline {
	return sfntOutline(p.f, gid)
}

var _ = []program{(*type1Program)(nil), (*cffProgram)(nil), (*sfntProgram)(nil)}

// defaultFontMatrix maps glyph space to text space for all fonts except
// Type 3 fonts.
var defaultFontMatrix = matrix.Matrix{0.001, 0, 0, 0.001, 0, 0}
