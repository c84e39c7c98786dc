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

// Package image decodes PDF image XObjects into raster images.
//
// [Decode] converts the samples of an image stream to RGB, using the color
// space and the Decode array of the image.  Explicit masks, color key
// masks and soft masks become the alpha channel of the result.  Stencil
// masks are painted with a fill color supplied by the caller.
//
// Decoded images can be kept in a [Cache], keyed by the reference of the
// image stream.
package image
