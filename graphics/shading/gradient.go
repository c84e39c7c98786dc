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
	stdcolor "image/color"
	"math"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/function"
)

// Type2 is an axial shading.
type Type2 struct {
	*Common

	// X0, Y0, X1, Y1 are the start and end points of the axis.
	X0, Y0, X1, Y1 float64

	F      function.Func
	Domain [2]float64
	Extend [2]bool
}

// Type3 is a radial shading.
type Type3 struct {
	*Common

	// The shading blends between the circle with center (X0, Y0) and
	// radius R0, and the circle with center (X1, Y1) and radius R1.
	X0, Y0, R0 float64
	X1, Y1, R1 float64

	F      function.Func
	Domain [2]float64
	Extend [2]bool
}

func readGradient(r pdf.Getter, dict *pdf.Dict, c *Common, tp int) (Shading, error) {
	n := 4
	if tp == 3 {
		n = 6
	}
	coords := dict.GetFloats(r, "Coords")
	if len(coords) != n {
		return nil, pdf.Error("invalid /Coords for shading")
	}

	domain := [2]float64{0, 1}
	if d := dict.GetFloats(r, "Domain"); len(d) == 2 {
		domain = [2]float64{d[0], d[1]}
	}
	var extend [2]bool
	if e := dict.GetArray(r, "Extend"); len(e) == 2 {
		for i := range 2 {
			b, _ := pdf.GetBoolean(r, e[i])
			extend[i] = bool(b)
		}
	}
	fn, err := readFunction(r, dict, c, 1, true)
	if err != nil {
		return nil, err
	}

	if tp == 2 {
		return &Type2{
			Common: c,
			X0:     coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3],
			F: fn, Domain: domain, Extend: extend,
		}, nil
	}
	if coords[2] < 0 || coords[5] < 0 {
		return nil, pdf.Error("negative radius in radial shading")
	}
	return &Type3{
		Common: c,
		X0:     coords[0], Y0: coords[1], R0: coords[2],
		X1: coords[3], Y1: coords[4], R1: coords[5],
		F: fn, Domain: domain, Extend: extend,
	}, nil
}

// ShadingType implements the [Shading] interface.
func (s *Type2) ShadingType() int { return 2 }

// Rasterize implements the [Shading] interface.
//
// Each device pixel is projected onto the axis.  The parameter t of the
// projection is used to look up the color in a precomputed table.
func (s *Type2) Rasterize(ctm matrix.Matrix, bounds image.Rectangle) *image.NRGBA {
	cv := newCanvas(s.Common, ctm, bounds)
	dx, dy := s.X1-s.X0, s.Y1-s.Y0
	denom := dx*dx + dy*dy
	if denom == 0 {
		return cv.img
	}

	lut := newLUT(s.Common, s.F, s.Domain, bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px, py := apply(cv.inv, float64(x)+0.5, float64(y)+0.5)
			t := ((px-s.X0)*dx + (py-s.Y0)*dy) / denom
			t, ok := extendParam(t, s.Extend)
			if !ok {
				continue
			}
			cv.set(x, y, lut.at(t))
		}
	}
	return cv.img
}

// ShadingType implements the [Shading] interface.
func (s *Type3) ShadingType() int { return 3 }

// Rasterize implements the [Shading] interface.
//
// For each device pixel, the largest parameter s is found such that the
// pixel lies on the circle for s, and the radius for s is non-negative.
func (s *Type3) Rasterize(ctm matrix.Matrix, bounds image.Rectangle) *image.NRGBA {
	cv := newCanvas(s.Common, ctm, bounds)
	lut := newLUT(s.Common, s.F, s.Domain, bounds)

	cdx, cdy := s.X1-s.X0, s.Y1-s.Y0
	dr := s.R1 - s.R0
	a := cdx*cdx + cdy*cdy - dr*dr
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px, py := apply(cv.inv, float64(x)+0.5, float64(y)+0.5)
			pdx, pdy := px-s.X0, py-s.Y0
			b := pdx*cdx + pdy*cdy + s.R0*dr
			c := pdx*pdx + pdy*pdy - s.R0*s.R0

			t, ok := s.solve(a, b, c)
			if !ok {
				continue
			}
			cv.set(x, y, lut.at(t))
		}
	}
	return cv.img
}

// solve finds the parameter for a pixel, given the coefficients of the
// equation a*s^2 - 2*b*s + c = 0.  The result is clamped to [0, 1].
func (s *Type3) solve(a, b, c float64) (float64, bool) {
	var cand [2]float64
	var n int
	if math.Abs(a) < 1e-9 {
		if b == 0 {
			return 0, false
		}
		cand[0] = c / (2 * b)
		n = 1
	} else {
		disc := b*b - a*c
		if disc < 0 {
			return 0, false
		}
		sq := math.Sqrt(disc)
		s1, s2 := (b+sq)/a, (b-sq)/a
		cand[0], cand[1] = max(s1, s2), min(s1, s2)
		n = 2
	}

	for _, t := range cand[:n] {
		if s.R0+t*(s.R1-s.R0) < 0 {
			continue
		}
		if t, ok := extendParam(t, s.Extend); ok {
			return t, true
		}
	}
	return 0, false
}

// extendParam maps the parameter t to [0, 1], using the extend flags for
// values outside this range.
func extendParam(t float64, extend [2]bool) (float64, bool) {
	switch {
	case t < 0:
		return 0, extend[0]
	case t > 1:
		return 1, extend[1]
	case math.IsNaN(t):
		return 0, false
	}
	return t, true
}

// lut holds the colors of a gradient for N+1 evenly spaced parameter
// values.
type lut struct {
	colors []stdcolor.NRGBA
}

// newLUT evaluates the shading function.  The number of steps is the
// length of the diagonal of the device area.
func newLUT(c *Common, fn function.Func, domain [2]float64, bounds image.Rectangle) *lut {
	n := max(int(math.Ceil(diagonal(bounds))), 1)
	z := &colorizer{cs: c.ColorSpace, fn: fn}
	res := &lut{colors: make([]stdcolor.NRGBA, n+1)}
	in := make([]float64, 1)
	for i := range res.colors {
		in[0] = domain[0] + (domain[1]-domain[0])*float64(i)/float64(n)
		res.colors[i] = z.rgba(in)
	}
	return res
}

// at returns the color for t in [0, 1].
func (l *lut) at(t float64) stdcolor.NRGBA {
	n := len(l.colors) - 1
	return l.colors[int(math.Round(t*float64(n)))]
}
