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
	"seehuhn.de/go/postscript/type1/names"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/font/pdfenc"
)

// encoding maps single-byte codes to glyph names and, where known, to
// Unicode runes.  Empty names and zero runes mark unmapped codes.
type encoding struct {
	names [256]string
	runes [256]rune

	// fontName selects font specific glyph names when mapping to Unicode.
	fontName string
}

func (e *encoding) set(code byte, name string) {
	if name == ".notdef" {
		name = ""
	}
	e.names[code] = name
	e.runes[code] = nameToRune(name, e.fontName)
}

// fromTable builds an encoding from one of the tables in [pdfenc].
func fromTable(tab *[256]string, fontName string) *encoding {
	e := &encoding{fontName: fontName}
	for code, name := range tab {
		e.set(byte(code), name)
	}
	return e
}

func standardEncoding() *encoding {
	return fromTable(&pdfenc.Standard, "")
}

// builtinEncoding returns the built-in encoding of a standard font without
// an embedded font program.
func builtinEncoding(fontName string) *encoding {
	switch fontName {
	case "Symbol":
		return fromTable(&pdfenc.Symbol, fontName)
	case "ZapfDingbats":
		return fromTable(&pdfenc.ZapfDingbats, fontName)
	default:
		return standardEncoding()
	}
}

// baseEncoding returns the named base encoding, or nil if the name is not
// known.
func baseEncoding(name pdf.Name, fontName string) *encoding {
	switch name {
	case "StandardEncoding":
		return fromTable(&pdfenc.Standard, fontName)
	case "WinAnsiEncoding":
		return fromTable(&pdfenc.WinAnsi, fontName)
	case "MacRomanEncoding":
		return fromTable(&pdfenc.MacRoman, fontName)
	default:
		return nil
	}
}

// applyDifferences applies a /Differences array to e.
func (e *encoding) applyDifferences(r pdf.Getter, diff pdf.Array) {
	code := -1
	for _, obj := range diff {
		obj, _ = pdf.Resolve(r, obj)
		switch x := obj.(type) {
		case pdf.Integer:
			code = int(x)
		case pdf.Real:
			code = int(x)
		case pdf.Name:
			if code >= 0 && code < 256 {
				e.set(byte(code), string(x))
				code++
			}
		}
	}
}

// nameToRune returns the Unicode value for a glyph name, or 0 if the name
// is not known or maps to more than one character.
func nameToRune(name, fontName string) rune {
	if name == "" {
		return 0
	}
	rr := []rune(names.ToUnicode(name, fontName))
	if len(rr) != 1 {
		return 0
	}
	return rr[0]
}
