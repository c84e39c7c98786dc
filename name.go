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

package pdf

import (
	"io"
	"sync"
)

// Name represents a name object in a PDF file.
//
// Names which are read from PDF files are interned, see [Intern].  Since
// Name is a string type, names can be compared with ==, and interned names
// share their backing storage.
type Name string

// PDF implements the [Object] interface.
func (x Name) PDF(w io.Writer) error {
	l := []byte(x)

	buf := make([]byte, 0, len(l)+1)
	buf = append(buf, '/')
	for _, c := range l {
		if c < 33 || c > 126 || c == '#' || isDelimiter[c] {
			buf = append(buf, '#', "0123456789ABCDEF"[c>>4], "0123456789ABCDEF"[c&15])
		} else {
			buf = append(buf, c)
		}
	}
	_, err := w.Write(buf)
	return err
}

func (Name) isObject() {}

// commonNames seeds the static part of the name table.
var commonNames = []string{
	"A", "AIS", "Alternate", "AntiAlias", "Annots", "ArtBox", "BBox",
	"BG", "BPC", "Background", "BaseEncoding", "BaseFont",
	"BitsPerComponent", "BitsPerCoordinate", "BitsPerFlag",
	"BitsPerSample", "BlackIs1", "BlackPoint", "Bounds", "C", "C0", "C1",
	"CA", "CIDFontType0", "CIDFontType2", "CIDSystemInfo", "CIDToGIDMap",
	"CMYK", "CalGray", "CalRGB", "Catalog", "ColorSpace", "Colors",
	"Columns", "Contents", "Coords", "Count", "CropBox", "D", "DCTDecode",
	"DW", "Decode", "DecodeParms", "DefaultCMYK", "DefaultGray",
	"DefaultRGB", "DescendantFonts", "DeviceCMYK", "DeviceGray", "DeviceN",
	"DeviceRGB", "Differences", "Domain", "EarlyChange", "Encode",
	"Encoding", "Extend", "ExtGState", "F", "Filter", "First", "FirstChar",
	"FlateDecode", "Font", "FontDescriptor", "FontFile", "FontFile2",
	"FontFile3", "FontMatrix", "FontName", "Function", "FunctionType",
	"G", "Gamma", "Height", "I", "ICCBased", "Identity", "Identity-H",
	"Identity-V", "ImageMask", "Indexed", "Interpolate", "K", "Kids",
	"LZWDecode", "Lab", "LastChar", "Length", "Length1", "Length2",
	"Length3", "Mask", "Matrix", "MediaBox", "MissingWidth", "N", "Order",
	"Page", "Pages", "Parent", "Pattern", "PatternType", "Predictor",
	"Prev", "Range", "Resources", "Root", "Rotate", "RunLengthDecode",
	"SMask", "Separation", "Shading", "ShadingType", "Size", "Subtype",
	"Type", "Type0", "Type1", "Type3", "TrueType", "VerticesPerRow", "W",
	"WhitePoint", "Widths", "Width", "XObject", "XRef", "XRefStm",
	"XStep", "YStep",
}

var (
	staticNames  map[string]Name
	dynamicNames sync.Map // string -> Name
)

func init() {
	staticNames = make(map[string]Name, len(commonNames))
	for _, s := range commonNames {
		staticNames[s] = Name(s)
	}
}

// Intern returns the canonical instance of the name with the given text.
//
// Repeated calls with equal text return names which share the same
// backing storage, for the lifetime of the process.  Intern is safe for
// concurrent use and does not block readers.
func Intern(text string) Name {
	if n, ok := staticNames[text]; ok {
		return n
	}
	if n, ok := dynamicNames.Load(text); ok {
		return n.(Name)
	}

	// Copy the text so that the table does not retain a larger buffer
	// which text may be a slice of.
	owned := string(append([]byte(nil), text...))
	n, _ := dynamicNames.LoadOrStore(owned, Name(owned))
	return n.(Name)
}
