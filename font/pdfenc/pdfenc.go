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

// Package pdfenc implements the simple font encodings defined in the PDF
// specification.
//
// Each encoding maps single byte codes to glyph names.  Unused codes map
// to ".notdef".
package pdfenc

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"seehuhn.de/go/postscript/psenc"
	"seehuhn.de/go/postscript/type1/names"
)

// Standard is the Adobe Standard Encoding for Latin text.
//
// See Appendix D.2 of PDF 32000-1:2008.
var Standard = psenc.StandardEncoding

// WinAnsi is the PDF version of the standard Microsoft Windows specific
// encoding for Latin text in Western writing systems.
//
// See Appendix D.2 of PDF 32000-1:2008.
var WinAnsi = fromCharmap(charmap.Windows1252, map[byte]string{
	0x7F: "bullet",
	0x81: "bullet",
	0x8D: "bullet",
	0x8F: "bullet",
	0x90: "bullet",
	0x9D: "bullet",
})

// MacRoman is the PDF version of the MacOS standard encoding for Latin
// text in Western writing systems.
//
// This differs from the Mac OS Roman character set by 15 unused codes and
// by the currency glyph in place of the Euro symbol.
//
// See Appendix D.2 of PDF 32000-1:2008.
var MacRoman = fromCharmap(charmap.Macintosh, map[byte]string{
	0xAD: ".notdef", // notequal
	0xB0: ".notdef", // infinity
	0xB2: ".notdef", // lessequal
	0xB3: ".notdef", // greaterequal
	0xB6: ".notdef", // partialdiff
	0xB7: ".notdef", // summation
	0xB8: ".notdef", // product
	0xB9: ".notdef", // pi
	0xBA: ".notdef", // integral
	0xBD: ".notdef", // Omega
	0xC3: ".notdef", // radical
	0xC5: ".notdef", // approxequal
	0xC6: ".notdef", // Delta
	0xD7: ".notdef", // lozenge
	0xDB: "currency",
	0xF0: ".notdef", // apple
})

// latinNames lists the glyph names used in the Latin encodings where the
// Adobe Glyph List For New Fonts has no entry, or decomposes the
// character.
var latinNames = map[rune]string{
	0x00A0: "space",
	0x00AD: "hyphen",
	0x00B2: "twosuperior",
	0x00B3: "threesuperior",
	0x00B9: "onesuperior",
	0x2026: "ellipsis",
	0xFB01: "fi",
	0xFB02: "fl",
}

func fromCharmap(cm *charmap.Charmap, fixup map[byte]string) [256]string {
	var res [256]string
	for c := range 256 {
		res[c] = ".notdef"
		if c < 32 {
			continue
		}
		if name, ok := fixup[byte(c)]; ok {
			res[c] = name
			continue
		}
		r := cm.DecodeByte(byte(c))
		if r == utf8.RuneError || r == 0x7F || r >= 0x80 && r < 0xA0 {
			continue
		}
		if name, ok := latinNames[r]; ok {
			res[c] = name
		} else {
			res[c] = names.FromUnicode(string(r))
		}
	}
	return res
}
