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

// Package font resolves glyph widths and glyph outlines for PDF fonts.
//
// A [Font] is loaded from a font dictionary with [Load].  Loading never
// fails: broken or missing parts of the font dictionary are replaced by
// defaults, and a warning is logged.  Widths are resolved in the order
//
//  1. the Widths array (or W array for CIDFonts) of the font dictionary,
//  2. the advance width from the embedded font program,
//  3. the MissingWidth entry of the font descriptor,
//  4. the metrics of the corresponding standard font.
//
// Glyph outlines are taken from the embedded font program, if present.
// Otherwise a fallback font is used.
package font

// References:
// - section 9.6 (Simple fonts) in ISO 32000-2:2020
// - section 9.7 (Composite fonts) in ISO 32000-2:2020
