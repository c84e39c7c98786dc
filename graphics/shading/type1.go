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

package shading

import (
	"image"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/function"
)

// Type1 is a function-based shading.
type Type1 struct {
	*Common

	// Domain is the rectangle [xmin xmax ymin ymax] on which F is
	// evaluated.
	Domain [4]float64

	// Matrix maps the domain to shading space.
	Matrix matrix.Matrix

	F function.Func
}

func readType1(r pdf.Getter, dict *pdf.Dict, c *Common) (Shading, error) {
	s := &Type1{
		Common: c,
		Domain: [4]float64{0, 1, 0, 1},
		Matrix: matrix.Identity,
	}
	if d := dict.GetFloats(r, "Domain"); len(d) == 4 && d[0] <= d[1] && d[2] <= d[3] {
		copy(s.Domain[:], d)
	}
	if m := dict.GetFloats(r, "Matrix"); len(m) == 6 {
		copy(s.Matrix[:], m)
	}
	fn, err := readFunction(r, dict, c, 2, true)
	if err != nil {
		return nil, err
	}
	s.F = fn
	return s, nil
}

// ShadingType implements the [Shading] interface.
func (s *Type1) ShadingType() int { return 1 }

// Rasterize implements the [Shading] interface.
func (s *Type1) Rasterize(ctm matrix.Matrix, bounds image.Rectangle) *image.NRGBA {
	cv := newCanvas(s.Common, ctm, bounds)
	inv, ok := invert(s.Matrix.Mul(ctm))
	if !ok {
		return cv.img
	}

	z := &colorizer{cs: s.ColorSpace, fn: s.F}
	in := make([]float64, 2)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			u, v := apply(inv, float64(x)+0.5, float64(y)+0.5)
			if u < s.Domain[0] || u > s.Domain[1] || v < s.Domain[2] || v > s.Domain[3] {
				continue
			}
			in[0], in[1] = u, v
			cv.set(x, y, z.rgba(in))
		}
	}
	return cv.img
}
