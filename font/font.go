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
	"fmt"
	"iter"
	"log/slog"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/font/cmap"
	"seehuhn.de/go/pdfraster/internal/lru"
	"seehuhn.de/go/pdfraster/internal/stdmtx"
)

// Kind identifies the type of a font dictionary.
type Kind int

// These are the supported font types.
const (
	Type1 Kind = iota
	TrueType
	Type3
	Type0
)

func (k Kind) String() string {
	switch k {
	case Type1:
		return "Type1"
	case TrueType:
		return "TrueType"
	case Type3:
		return "Type3"
	case Type0:
		return "Type0"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// outlineCacheSize is the number of glyph outlines kept per font.
const outlineCacheSize = 256

// symbolicFlag is bit 3 of the font descriptor flags.
const symbolicFlag = 1 << 2

// Font is a font loaded from a PDF file.  A Font is immutable once loaded,
// apart from the internal glyph outline cache.
type Font struct {
	Kind Kind

	// BaseFont is the PostScript name of the font, without subset tag.
	BaseFont string

	// IsEmbedded reports whether a font program was found and parsed.
	IsEmbedded bool

	// Matrix maps glyph space to text space.
	Matrix matrix.Matrix

	// simple fonts
	firstChar    int
	widths       []float64
	missingWidth float64
	hasMissing   bool
	enc          *encoding
	std          *stdmtx.FontMetrics

	// Type 3 fonts
	charProcs *pdf.Dict
	Resources *pdf.Dict

	// composite fonts
	cmap      *cmap.File
	cidWidths map[cmap.CID]float64
	dw        float64
	cidToGID  []glyph.ID

	prog     program
	outlines *lru.Cache[glyph.ID, *Outline]
	r        pdf.Getter
}

// Load reads a font from a font dictionary.  Load never fails.  If the
// font dictionary is broken, a warning is logged and defaults are used.
func Load(r pdf.Getter, obj pdf.Object) *Font {
	log := pdf.LoggerFor(r)
	f := &Font{
		Matrix:   defaultFontMatrix,
		outlines: lru.New[glyph.ID, *Outline](outlineCacheSize),
		r:        r,
	}

	dict, err := pdf.GetDict(r, obj)
	if dict == nil {
		if err == nil {
			err = pdf.Error("missing font dictionary")
		}
		log.Warn("using fallback font", "err", err)
		f.enc = standardEncoding()
		f.std, _ = stdmtx.Get("Helvetica")
		return f
	}

	f.BaseFont = stripSubsetTag(string(dict.GetName(r, "BaseFont", "")))

	switch subtype := dict.GetName(r, "Subtype", ""); subtype {
	case "Type0":
		f.Kind = Type0
		f.loadComposite(r, dict, log)
	case "Type3":
		f.Kind = Type3
		f.loadType3(r, dict)
	case "TrueType":
		f.Kind = TrueType
		f.loadSimple(r, dict, log)
	case "Type1", "MMType1":
		f.Kind = Type1
		f.loadSimple(r, dict, log)
	default:
		log.Warn("unknown font type, treating as Type1",
			"subtype", subtype, "font", f.BaseFont)
		f.Kind = Type1
		f.loadSimple(r, dict, log)
	}
	return f
}

func stripSubsetTag(name string) string {
	if len(name) > 7 && name[6] == '+' {
		for _, c := range name[:6] {
			if c < 'A' || c > 'Z' {
				return name
			}
		}
		return name[7:]
	}
	return name
}

func (f *Font) loadSimple(r pdf.Getter, dict *pdf.Dict, log *slog.Logger) {
	f.firstChar, f.widths = readSimpleWidths(r, dict)
	f.std, _ = stdmtx.Get(f.BaseFont)

	fd := dict.GetDict(r, "FontDescriptor")
	isSymbolic := false
	if fd != nil {
		if x, ok := fd.GetItem("MissingWidth"); ok && x != nil {
			f.missingWidth = fd.GetFloat(r, "MissingWidth", 0)
			f.hasMissing = true
		}
		isSymbolic = fd.GetInt(r, "Flags", 0)&symbolicFlag != 0
	}

	prog, err := loadProgram(r, fd)
	if err != nil {
		log.Warn("cannot read embedded font program",
			"font", f.BaseFont, "err", err)
	} else if prog != nil {
		f.prog = prog
		f.IsEmbedded = true
	}

	f.enc = f.readEncoding(r, dict.Get(r, "Encoding"), isSymbolic)
}

// readEncoding determines the code to glyph name mapping of a simple font.
// Codes without names are mapped using the built-in encoding of the font
// program.
func (f *Font) readEncoding(r pdf.Getter, obj pdf.Object, isSymbolic bool) *encoding {
	fontName := f.BaseFont
	if f.std != nil {
		fontName = f.std.FontName
	}

	var base *encoding
	var diff pdf.Array
	switch x := obj.(type) {
	case pdf.Name:
		base = baseEncoding(x, fontName)
	case *pdf.Dict:
		base = baseEncoding(x.GetName(r, "BaseEncoding", ""), fontName)
		diff = x.GetArray(r, "Differences")
	}

	if base == nil {
		switch {
		case f.prog != nil || f.Kind == Type3:
			base = &encoding{fontName: fontName}
		case fontName == "Symbol" || fontName == "ZapfDingbats":
			base = builtinEncoding(fontName)
		case isSymbolic:
			base = &encoding{fontName: fontName}
		default:
			base = standardEncoding()
		}
	}
	base.applyDifferences(r, diff)
	return base
}

func (f *Font) loadType3(r pdf.Getter, dict *pdf.Dict) {
	if m := dict.GetFloats(r, "FontMatrix"); len(m) == 6 {
		f.Matrix = matrix.Matrix(m)
	}
	f.firstChar, f.widths = readSimpleWidths(r, dict)
	f.charProcs = dict.GetDict(r, "CharProcs")
	f.Resources = dict.GetDict(r, "Resources")
	f.enc = f.readEncoding(r, dict.Get(r, "Encoding"), false)
}

func (f *Font) loadComposite(r pdf.Getter, dict *pdf.Dict, log *slog.Logger) {
	cm, err := cmap.Read(r, dict.Get(r, "Encoding"))
	if err != nil {
		log.Warn("cannot read CMap, using Identity-H", "font", f.BaseFont, "err", err)
		cm, _ = cmap.Predefined("Identity-H")
	}
	f.cmap = cm
	f.dw = 1000

	desc := dict.GetArray(r, "DescendantFonts")
	var cidFont *pdf.Dict
	if len(desc) > 0 {
		cidFont, _ = pdf.GetDict(r, desc[0])
	}
	if cidFont == nil {
		log.Warn("missing CIDFont dictionary", "font", f.BaseFont)
		return
	}

	f.dw = cidFont.GetFloat(r, "DW", 1000)
	f.cidWidths, err = readCIDWidths(r, cidFont.Get(r, "W"))
	if err != nil {
		log.Warn("malformed W array", "font", f.BaseFont, "err", err)
	}

	if stm := cidFont.GetStream(r, "CIDToGIDMap"); stm != nil {
		data, err := pdf.ReadAll(r, stm)
		if err != nil {
			log.Warn("cannot read CIDToGIDMap", "font", f.BaseFont, "err", err)
		} else {
			f.cidToGID = make([]glyph.ID, len(data)/2)
			for i := range f.cidToGID {
				f.cidToGID[i] = glyph.ID(data[2*i])<<8 | glyph.ID(data[2*i+1])
			}
		}
	}

	prog, err := loadProgram(r, cidFont.GetDict(r, "FontDescriptor"))
	if err != nil {
		log.Warn("cannot read embedded font program",
			"font", f.BaseFont, "err", err)
	} else if prog != nil {
		f.prog = prog
		f.IsEmbedded = true
	}
}

// Char is a character from a PDF string.
type Char struct {
	// Code is the character code.  Multi-byte codes are read big-endian.
	Code uint32

	// Len is the number of bytes in the code.
	Len int

	// CID is the character identifier (composite fonts only).
	CID cmap.CID

	// Width is the advance width in PDF glyph space units.
	Width float64

	// IsSpace reports whether word spacing applies to the character.
	IsSpace bool
}

// Chars iterates over the characters in s.
func (f *Font) Chars(s pdf.String) iter.Seq[Char] {
	return func(yield func(Char) bool) {
		if f.cmap == nil {
			for _, b := range s {
				c := Char{Code: uint32(b), Len: 1, Width: f.simpleWidth(b), IsSpace: b == ' '}
				if !yield(c) {
					return
				}
			}
			return
		}

		for code, cid := range f.cmap.All(s) {
			c := Char{
				Code:    codeValue(code),
				Len:     len(code),
				CID:     cid,
				Width:   f.CIDWidth(cid),
				IsSpace: len(code) == 1 && code[0] == ' ',
			}
			if !yield(c) {
				return
			}
		}
	}
}

func codeValue(code []byte) uint32 {
	var x uint32
	for _, b := range code {
		x = x<<8 | uint32(b)
	}
	return x
}

// codeBytes converts a code value back into bytes, choosing the shortest
// code length which is valid in the codespace of the CMap.
func (f *Font) codeBytes(code uint32) []byte {
	for n := 1; n <= 4; n++ {
		if n < 4 && code >= 1<<(8*n) {
			continue
		}
		buf := make([]byte, n)
		for i := range n {
			buf[n-1-i] = byte(code >> (8 * i))
		}
		if f.cmap.IsValid(buf) {
			return buf
		}
	}
	return []byte{byte(code >> 8), byte(code)}
}

// Width returns the advance width of a character in PDF glyph space units
// (1/1000 of text space for all fonts except Type 3 fonts, where the
// width is converted using the font matrix).
func (f *Font) Width(code uint32) float64 {
	if f.cmap != nil {
		return f.CIDWidth(f.cmap.LookupCID(f.codeBytes(code)))
	}
	if code > 255 {
		return 0
	}
	return f.simpleWidth(byte(code))
}

// CIDWidth returns the width of a CID in a composite font.
func (f *Font) CIDWidth(cid cmap.CID) float64 {
	if w, ok := f.cidWidths[cid]; ok {
		return w
	}
	return f.dw
}

func (f *Font) simpleWidth(c byte) float64 {
	if idx := int(c) - f.firstChar; idx >= 0 && idx < len(f.widths) {
		w := f.widths[idx]
		if f.Kind == Type3 {
			w *= f.Matrix[0] * 1000
		}
		return w
	}

	if f.prog != nil {
		if gid, ok := f.simpleGID(c); ok {
			return f.prog.width(gid)
		}
	}

	if f.hasMissing {
		w := f.missingWidth
		if f.Kind == Type3 {
			w *= f.Matrix[0] * 1000
		}
		return w
	}

	if f.std != nil {
		name := f.enc.names[c]
		if name == "" {
			return f.std.DefaultWidth
		}
		return f.std.GlyphWidth(name)
	}
	return 0
}

// GlyphName returns the glyph name for a code of a simple font.
func (f *Font) GlyphName(code byte) string {
	if f.enc == nil {
		return ""
	}
	return f.enc.names[code]
}

// simpleGID maps a code of a simple font to a glyph of the embedded font
// program.
func (f *Font) simpleGID(c byte) (glyph.ID, bool) {
	name := f.enc.names[c]
	if name != "" {
		if gid, ok := f.prog.lookupName(name); ok {
			return gid, true
		}
	}
	if r := f.enc.runes[c]; r != 0 {
		if gid, ok := f.prog.lookupRune(r); ok {
			return gid, true
		}
	}
	return f.prog.builtin(c)
}

// cidGID maps a CID to a glyph of the embedded font program.
func (f *Font) cidGID(cid cmap.CID) glyph.ID {
	if f.cidToGID != nil {
		if int(cid) < len(f.cidToGID) {
			return f.cidToGID[cid]
		}
		return 0
	}
	return f.prog.lookupCID(cid)
}

// Path returns the outline for a character code, in text space units.
// For Type 3 fonts, nil is returned; use [Font.CharProc] instead.
// Outlines are cached per font.
func (f *Font) Path(code uint32) *Outline {
	if f.Kind == Type3 {
		return nil
	}

	if f.prog != nil {
		var gid glyph.ID
		if f.cmap != nil {
			gid = f.cidGID(f.cmap.LookupCID(f.codeBytes(code)))
		} else if code < 256 {
			gid, _ = f.simpleGID(byte(code))
		}
		o, _ := f.outlines.GetOrCompute(gid, func() (*Outline, error) {
			return f.prog.outline(gid), nil
		})
		return o
	}

	fb, err := fallbackFont()
	if err != nil {
		return nil
	}
	var r rune
	if f.cmap == nil && code < 256 {
		r = f.enc.runes[code]
		if r == 0 && f.std == nil {
			r = rune(code)
		}
	}
	if r == 0 {
		return nil
	}
	gid, _ := fb.lookupRune(r)
	o, _ := f.outlines.GetOrCompute(gid, func() (*Outline, error) {
		return fb.outline(gid), nil
	})
	return o
}

// CharProc returns the glyph description of a Type 3 font for the given
// code, or nil if the code is not mapped.
func (f *Font) CharProc(code byte) *pdf.Stream {
	if f.Kind != Type3 || f.charProcs == nil {
		return nil
	}
	name := f.enc.names[code]
	if name == "" {
		return nil
	}
	return f.charProcs.GetStream(f.r, pdf.Intern(name))
}

// IsVertical reports whether the font uses vertical writing mode.
func (f *Font) IsVertical() bool {
	return f.cmap != nil && f.cmap.WMode == cmap.Vertical
}

// Evict drops cached glyph outlines.
func (f *Font) Evict() {
	f.outlines.Purge()
}
