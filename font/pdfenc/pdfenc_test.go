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

package pdfenc

import (
	"testing"

	"seehuhn.de/go/postscript/type1/names"
)

func TestNames(t *testing.T) {
	cases := []struct {
		enc  *[256]string
		code byte
		want string
	}{
		{&Standard, 0x27, "quoteright"},
		{&Standard, 0xD0, "emdash"},
		{&Standard, 0xE1, "AE"},
		{&WinAnsi, 0x27, "quotesingle"},
		{&WinAnsi, 0x2D, "hyphen"},
		{&WinAnsi, 0x80, "Euro"},
		{&WinAnsi, 0x81, "bullet"},
		{&WinAnsi, 0x85, "ellipsis"},
		{&WinAnsi, 0x9F, "Ydieresis"},
		{&WinAnsi, 0xA0, "space"},
		{&WinAnsi, 0xAD, "hyphen"},
		{&WinAnsi, 0xB9, "onesuperior"},
		{&WinAnsi, 0xC4, "Adieresis"},
		{&WinAnsi, 0xE9, "eacute"},
		{&MacRoman, 0x80, "Adieresis"},
		{&MacRoman, 0xAD, ".notdef"},
		{&MacRoman, 0xC9, "ellipsis"},
		{&MacRoman, 0xCA, "space"},
		{&MacRoman, 0xDB, "currency"},
		{&MacRoman, 0xDE, "fi"},
		{&MacRoman, 0xF5, "dotlessi"},
		{&Symbol, 0x61, "alpha"},
		{&Symbol, 0xA0, "Euro"},
		{&ZapfDingbats, 0x21, "a1"},
		{&ZapfDingbats, 0x80, "a89"},
		{&ZapfDingbats, 0xA1, "a101"},
		{&ZapfDingbats, 0xF0, ".notdef"},
		{&ZapfDingbats, 0xFE, "a191"},
	}
	for _, c := range cases {
		if got := c.enc[c.code]; got != c.want {
			t.Errorf("0x%02X: got %q, want %q", c.code, got, c.want)
		}
	}
}

func TestUnicode(t *testing.T) {
	encodings := []struct {
		name     string
		enc      *[256]string
		fontName string
	}{
		{"Standard", &Standard, ""},
		{"WinAnsi", &WinAnsi, ""},
		{"MacRoman", &MacRoman, ""},
		{"Symbol", &Symbol, "Symbol"},
		{"ZapfDingbats", &ZapfDingbats, "ZapfDingbats"},
	}
	for _, e := range encodings {
		for code, name := range e.enc {
			if name == ".notdef" {
				continue
			}
			if code < 32 {
				t.Errorf("%s: control code %d maps to %q", e.name, code, name)
			}
			if names.ToUnicode(name, e.fontName) == "" {
				t.Errorf("%s: glyph name %q at 0x%02X is not known", e.name, name, code)
			}
		}
	}
}
