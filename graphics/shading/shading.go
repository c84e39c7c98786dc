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
	"errors"
	"fmt"
	"image"
	stdcolor "image/color"
	"math"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/function"
	"seehuhn.de/go/pdfraster/graphics/color"
)

// Shading is a PDF shading.
type Shading interface {
	// ShadingType returns the shading type, 1 to 7.
	ShadingType() int

	// Rasterize paints the shading into the device area bounds.  The
	// matrix ctm maps shading space to device pixels.  Pixels which are
	// not covered by the shading are set to the background color if one
	// is given, and are transparent otherwise.
	Rasterize(ctm matrix.Matrix, bounds image.Rectangle) *image.NRGBA
}

// Common holds the entries shared by all shading types.
type Common struct {
	ColorSpace color.Space

	// Background is nil if no background color is given.
	Background []float64

	// BBox is the bounding box of the shading in shading space, or nil.
	BBox *pdf.Rectangle

	AntiAlias bool
}

// Read reads a shading dictionary or stream.
func Read(r pdf.Getter, obj pdf.Object) (Shading, error) {
	obj, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	var dict *pdf.Dict
	var stm *pdf.Stream
	switch obj := obj.(type) {
	case *pdf.Dict:
		dict = obj
	case *pdf.Stream:
		dict = obj.Dict
		stm = obj
	default:
		return nil, pdf.Error(fmt.Sprintf("invalid shading %s", pdf.Format(obj)))
	}

	c, err := readCommon(r, dict)
	if err != nil {
		return nil, err
	}

	tp := dict.GetInt(r, "ShadingType", 0)
	switch tp {
	case 1:
		return readType1(r, dict, c)
	case 2, 3:
		return readGradient(r, dict, c, tp)
	case 4, 5, 6, 7:
		if stm == nil {
			return nil, pdf.Error(fmt.Sprintf("shading type %d must be a stream", tp))
		}
		switch tp {
		case 4:
			return readType4(r, stm, c)
		case 5:
			return readType5(r, stm, c)
		default:
			return readPatches(r, stm, c, tp)
		}
	}
	return nil, pdf.Error(fmt.Sprintf("invalid shading type %d", tp))
}

func readCommon(r pdf.Getter, dict *pdf.Dict) (*Common, error) {
	csObj := dict.Get(r, "ColorSpace")
	if csObj == nil {
		return nil, &pdf.MalformedFileError{Err: errors.New("shading without color space")}
	}
	cs, err := color.Read(r, csObj, nil)
	if err != nil {
		return nil, pdf.Wrap(err, "shading color space")
	}
	if cs.Family() == color.FamilyPattern {
		return nil, pdf.Error("shading with Pattern color space")
	}

	c := &Common{
		ColorSpace: cs,
		AntiAlias:  dict.GetBool(r, "AntiAlias", false),
	}
	if bg := dict.GetFloats(r, "Background"); len(bg) == cs.Components() {
		c.Background = bg
	}
	if bbox, err := pdf.GetRectangle(r, dict.Get(r, "BBox")); err == nil {
		c.BBox = bbox
	}
	return c, nil
}

// readFunction reads the /Function entry of a shading and checks that the
// function maps m inputs to the components of the color space.
func readFunction(r pdf.Getter, dict *pdf.Dict, c *Common, m int, required bool) (function.Func, error) {
	obj := dict.Get(r, "Function")
	if obj == nil {
		if required {
			return nil, pdf.Error("shading without function")
		}
		return nil, nil
	}
	fn, err := function.Read(r, obj)
	if err != nil {
		return nil, pdf.Wrap(err, "shading function")
	}
	in, out := fn.Shape()
	if in != m || out != c.ColorSpace.Components() {
		return nil, pdf.Error(fmt.Sprintf("shading function has shape %d->%d, need %d->%d",
			in, out, m, c.ColorSpace.Components()))
	}
	return fn, nil
}

// colorizer converts shading values to device colors.  If a function is
// set, the values are function inputs, otherwise they are color
// components.
type colorizer struct {
	cs color.Space
	fn function.Func
}

func (z *colorizer) rgba(v []float64) stdcolor.NRGBA {
	if z.fn != nil {
		v = z.fn.Apply(v...)
	}
	return toNRGBA(z.cs, v)
}

func toNRGBA(cs color.Space, v []float64) stdcolor.NRGBA {
	r, g, b := cs.ToRGB(v)
	return stdcolor.NRGBA{R: toByte(r), G: toByte(g), B: toByte(b), A: 255}
}

// WithoutBackground returns a copy of sh which leaves pixels outside the
// shading transparent, even if the shading dictionary specifies a
// background color.  This is used by the sh operator.
func WithoutBackground(sh Shading) Shading {
	switch s := sh.(type) {
	case *Type1:
		c := *s
		c.Common = s.Common.withoutBackground()
		return &c
	case *Type2:
		c := *s
		c.Common = s.Common.withoutBackground()
		return &c
	case *Type3:
		c := *s
		c.Common = s.Common.withoutBackground()
		return &c
	case *Type4:
		c := *s
		c.Common = s.Common.withoutBackground()
		return &c
	case *Type5:
		c := *s
		c.Common = s.Common.withoutBackground()
		return &c
	case *Type6:
		c := *s
		c.Common = s.Common.withoutBackground()
		return &c
	case *Type7:
		c := *s
		c.Common = s.Common.withoutBackground()
		return &c
	}
	return sh
}

func (c *Common) withoutBackground() *Common {
	if c.Background == nil {
		return c
	}
	res := *c
	res.Background = nil
	return &res
}

func toByte(v float64) uint8 {
	return uint8(pdf.Clamp(v, 0, 1)*255 + 0.5)
}

// canvas is the output of rasterization.
type canvas struct {
	img  *image.NRGBA
	inv  matrix.Matrix // device to shading space
	bbox *pdf.Rectangle

	// blank is set if the shading space collapses to a line or a point
	blank bool
}

func newCanvas(c *Common, ctm matrix.Matrix, bounds image.Rectangle) *canvas {
	inv, ok := invert(ctm)
	cv := &canvas{
		img:  image.NewNRGBA(bounds),
		inv:  inv,
		bbox: c.BBox,
	}
	if !ok {
		cv.blank = true
		return cv
	}
	if c.Background != nil {
		bg := toNRGBA(c.ColorSpace, c.Background)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				cv.set(x, y, bg)
			}
		}
	}
	return cv
}

// set paints the device pixel (x, y), if it is inside the canvas and
// inside the bounding box of the shading.
func (cv *canvas) set(x, y int, col stdcolor.NRGBA) {
	if cv.blank || !(image.Point{x, y}).In(cv.img.Rect) {
		return
	}
	if cv.bbox != nil {
		sx, sy := apply(cv.inv, float64(x)+0.5, float64(y)+0.5)
		if !cv.bbox.Contains(sx, sy) {
			return
		}
	}
	cv.img.SetNRGBA(x, y, col)
}

// diagonal returns the length of the diagonal of r.
func diagonal(r image.Rectangle) float64 {
	return math.Hypot(float64(r.Dx()), float64(r.Dy()))
}

func apply(m matrix.Matrix, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func invert(m matrix.Matrix) (matrix.Matrix, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-12 {
		return matrix.Matrix{}, false
	}
	return matrix.Matrix{
		m[3] / det, -m[1] / det,
		-m[2] / det, m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det, (m[1]*m[4] - m[0]*m[5]) / det,
	}, true
}
