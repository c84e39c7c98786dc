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

// Package shading reads and rasterizes PDF shadings.
//
// All seven shading types are supported.  A shading is read once using
// [Read] and can then be rasterized any number of times, for different
// transformations and device areas.
//
// Axial and radial shadings precompute a table of colors along the
// gradient, with one entry per device pixel on the diagonal of the area
// being painted.  Mesh shadings are split into triangles, which are
// filled using barycentric color interpolation.  Coons and tensor-product
// patches are subdivided before triangulation.
package shading
