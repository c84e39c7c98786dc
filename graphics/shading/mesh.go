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
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/function"
)

// meshParams holds the stream parameters shared by the mesh shading
// types 4 to 7.
type meshParams struct {
	BitsPerCoordinate int
	BitsPerComponent  int
	BitsPerFlag       int

	// Decode maps the raw coordinate and color values, as pairs of
	// minimum and maximum for x, y and each color value.
	Decode []float64

	// F is the optional function which maps one parametric value to the
	// color components.
	F function.Func
}

// numValues returns the number of color values stored per vertex.
func (p *meshParams) numValues(c *Common) int {
	if p.F != nil {
		return 1
	}
	return c.ColorSpace.Components()
}

func readMeshParams(r pdf.Getter, dict *pdf.Dict, c *Common, needFlag bool) (*meshParams, error) {
	p := &meshParams{
		BitsPerCoordinate: dict.GetInt(r, "BitsPerCoordinate", 0),
		BitsPerComponent:  dict.GetInt(r, "BitsPerComponent", 0),
		BitsPerFlag:       dict.GetInt(r, "BitsPerFlag", 0),
	}
	switch p.BitsPerCoordinate {
	case 1, 2, 4, 8, 12, 16, 24, 32:
	default:
		return nil, pdf.Error(fmt.Sprintf("invalid BitsPerCoordinate %d", p.BitsPerCoordinate))
	}
	switch p.BitsPerComponent {
	case 1, 2, 4, 8, 12, 16:
	default:
		return nil, pdf.Error(fmt.Sprintf("invalid BitsPerComponent %d", p.BitsPerComponent))
	}
	if needFlag {
		switch p.BitsPerFlag {
		case 2, 4, 8:
		default:
			return nil, pdf.Error(fmt.Sprintf("invalid BitsPerFlag %d", p.BitsPerFlag))
		}
	} else {
		p.BitsPerFlag = 0
	}

	fn, err := readFunction(r, dict, c, 1, false)
	if err != nil {
		return nil, err
	}
	p.F = fn

	p.Decode = dict.GetFloats(r, "Decode")
	if want := 4 + 2*p.numValues(c); len(p.Decode) < want {
		return nil, pdf.Error(fmt.Sprintf("/Decode has %d entries, need %d", len(p.Decode), want))
	}
	return p, nil
}

// bitReader reads big-endian bit fields from mesh data.
type bitReader struct {
	data []byte
	pos  int // in bits
}

var errMeshData = errors.New("not enough mesh data")

func (br *bitReader) read(n int) (uint32, error) {
	if br.pos+n > 8*len(br.data) {
		return 0, errMeshData
	}
	var res uint64
	for n > 0 {
		b := br.data[br.pos/8]
		avail := 8 - br.pos%8
		k := min(n, avail)
		bits := uint64(b>>(avail-k)) & (1<<k - 1)
		res = res<<k | bits
		br.pos += k
		n -= k
	}
	return uint32(res), nil
}

// align skips to the next byte boundary.
func (br *bitReader) align() {
	br.pos = (br.pos + 7) &^ 7
}

func (br *bitReader) hasMore() bool {
	return br.pos < 8*len(br.data)
}

// readValue reads one value and maps it to the range [lo, hi].
func (br *bitReader) readValue(bits int, lo, hi float64) (float64, error) {
	x, err := br.read(bits)
	if err != nil {
		return 0, err
	}
	maxVal := float64(uint64(1)<<bits - 1)
	return lo + float64(x)*(hi-lo)/maxVal, nil
}

func (br *bitReader) readPoint(p *meshParams) (vec.Vec2, error) {
	x, err := br.readValue(p.BitsPerCoordinate, p.Decode[0], p.Decode[1])
	if err != nil {
		return vec.Vec2{}, err
	}
	y, err := br.readValue(p.BitsPerCoordinate, p.Decode[2], p.Decode[3])
	if err != nil {
		return vec.Vec2{}, err
	}
	return vec.Vec2{X: x, Y: y}, nil
}

func (br *bitReader) readColor(p *meshParams, n int) ([]float64, error) {
	res := make([]float64, n)
	for j := range res {
		v, err := br.readValue(p.BitsPerComponent, p.Decode[4+2*j], p.Decode[5+2*j])
		if err != nil {
			return nil, err
		}
		res[j] = v
	}
	return res, nil
}

// vertex is a mesh vertex with its color values.
type vertex struct {
	P     vec.Vec2
	Color []float64
}

// triangle is a triangle in device space.
type triangle struct {
	P     [3]vec.Vec2
	Color [3][]float64

	degree int // number of distinct corners

	// for degree 3
	det float64

	// for degree 2: the end points of the line
	line [2]int
}

func newTriangle(p [3]vec.Vec2, c [3][]float64) *triangle {
	t := &triangle{P: p, Color: c}
	same01 := p[0] == p[1]
	same12 := p[1] == p[2]
	same02 := p[0] == p[2]
	switch {
	case same01 && same12:
		t.degree = 1
	case same01 || same12 || same02:
		t.degree = 2
		switch {
		case same01:
			t.line = [2]int{0, 2}
		case same12:
			t.line = [2]int{0, 1}
		default:
			t.line = [2]int{0, 1}
		}
	default:
		t.det = (p[1].X-p[0].X)*(p[2].Y-p[0].Y) - (p[2].X-p[0].X)*(p[1].Y-p[0].Y)
		if t.det == 0 {
			// collinear: use the longest side as the line
			t.degree = 2
			t.line = [2]int{0, 1}
			best := dist(p[0], p[1])
			if d := dist(p[1], p[2]); d > best {
				t.line, best = [2]int{1, 2}, d
			}
			if d := dist(p[0], p[2]); d > best {
				t.line = [2]int{0, 2}
			}
		} else {
			t.degree = 3
		}
	}
	return t
}

// calcColor returns the interpolated color values at p.
//
// For proper triangles barycentric interpolation is used.  If two corners
// coincide, the color is interpolated along the line between the distinct
// corners.  If all corners coincide, the mean of the corner colors is
// used.
func (t *triangle) calcColor(p vec.Vec2) []float64 {
	n := len(t.Color[0])
	res := make([]float64, n)
	switch t.degree {
	case 1:
		for j := range n {
			res[j] = (t.Color[0][j] + t.Color[1][j] + t.Color[2][j]) / 3
		}
	case 2:
		a, b := t.P[t.line[0]], t.P[t.line[1]]
		ca, cb := t.lineColor(t.line[0]), t.lineColor(t.line[1])
		d := b.Sub(a)
		s := 0.0
		if l2 := d.X*d.X + d.Y*d.Y; l2 > 0 {
			s = pdf.Clamp(((p.X-a.X)*d.X+(p.Y-a.Y)*d.Y)/l2, 0, 1)
		}
		for j := range n {
			res[j] = ca[j] + s*(cb[j]-ca[j])
		}
	default:
		w1 := ((p.X-t.P[0].X)*(t.P[2].Y-t.P[0].Y) - (t.P[2].X-t.P[0].X)*(p.Y-t.P[0].Y)) / t.det
		w2 := ((t.P[1].X-t.P[0].X)*(p.Y-t.P[0].Y) - (p.X-t.P[0].X)*(t.P[1].Y-t.P[0].Y)) / t.det
		w1 = pdf.Clamp(w1, 0, 1)
		w2 = pdf.Clamp(w2, 0, 1-w1)
		w0 := 1 - w1 - w2
		for j := range n {
			res[j] = w0*t.Color[0][j] + w1*t.Color[1][j] + w2*t.Color[2][j]
		}
	}
	return res
}

// lineColor returns the color of corner i of a degenerate triangle.  If
// another corner coincides with i, the two colors are averaged.
func (t *triangle) lineColor(i int) []float64 {
	var sum []float64
	count := 0
	for k := range 3 {
		if t.P[k] != t.P[i] {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(t.Color[k]))
		}
		for j, v := range t.Color[k] {
			sum[j] += v
		}
		count++
	}
	for j := range sum {
		sum[j] /= float64(count)
	}
	return sum
}

// contains reports whether p is inside the triangle, using the signs of
// the edge functions.
func (t *triangle) contains(p vec.Vec2) bool {
	if t.degree != 3 {
		return false
	}
	e0 := edge(t.P[0], t.P[1], p)
	e1 := edge(t.P[1], t.P[2], p)
	e2 := edge(t.P[2], t.P[0], p)
	return (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0)
}

func edge(a, b, p vec.Vec2) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

func dist(a, b vec.Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// fillTriangles rasterizes a list of device space triangles onto cv.
func fillTriangles(cv *canvas, z *colorizer, tris []*triangle) {
	bounds := cv.img.Rect
	for _, t := range tris {
		if t.degree == 3 {
			minX := math.Min(t.P[0].X, math.Min(t.P[1].X, t.P[2].X))
			maxX := math.Max(t.P[0].X, math.Max(t.P[1].X, t.P[2].X))
			minY := math.Min(t.P[0].Y, math.Min(t.P[1].Y, t.P[2].Y))
			maxY := math.Max(t.P[0].Y, math.Max(t.P[1].Y, t.P[2].Y))
			box := image.Rect(
				int(math.Floor(minX)), int(math.Floor(minY)),
				int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
			).Intersect(bounds)
			for y := box.Min.Y; y < box.Max.Y; y++ {
				for x := box.Min.X; x < box.Max.X; x++ {
					p := vec.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
					if t.contains(p) {
						cv.set(x, y, z.rgba(t.calcColor(p)))
					}
				}
			}
		}

		// draw the edges, to avoid gaps between adjacent triangles
		for k := range 3 {
			a, b := t.P[k], t.P[(k+1)%3]
			if !lineVisible(a, b, bounds) {
				continue
			}
			bresenham(a, b, func(x, y int) {
				p := vec.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
				cv.set(x, y, z.rgba(t.calcColor(p)))
			})
		}
	}
}

// lineVisible reports whether the bounding box of the line from a to b
// overlaps the pixel area r.
func lineVisible(a, b vec.Vec2, r image.Rectangle) bool {
	for _, v := range []float64{a.X, a.Y, b.X, b.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return math.Max(a.X, b.X) >= float64(r.Min.X) && math.Min(a.X, b.X) < float64(r.Max.X) &&
		math.Max(a.Y, b.Y) >= float64(r.Min.Y) && math.Min(a.Y, b.Y) < float64(r.Max.Y)
}

// maxLineSteps limits the length of lines drawn by bresenham.
const maxLineSteps = 1 << 16

// bresenham calls plot for every pixel on the line from a to b.
func bresenham(a, b vec.Vec2, plot func(x, y int)) {
	x0, y0 := int(math.Floor(a.X)), int(math.Floor(a.Y))
	x1, y1 := int(math.Floor(b.X)), int(math.Floor(b.Y))
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for range maxLineSteps {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
