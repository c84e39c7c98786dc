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

// Package function implements PDF functions, which map m input values to n
// output values.
//
// Functions are used by shadings, by Separation and DeviceN color spaces
// for tint transforms, and in a few other places.  Four function types
// are supported:
//
//   - [Type0]: sampled functions with multilinear interpolation
//   - [Type2]: exponential interpolation, y = C0 + x^N × (C1 - C0)
//   - [Type3]: stitching of several 1-input functions
//   - [Type4]: PostScript calculator functions
//
// Functions are read from a PDF file using [Read].
package function
