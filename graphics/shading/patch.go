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
	"fmt"
	"image"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfraster"
)

// Type6 is a Coons patch mesh.
type Type6 struct {
	patchMesh
}

// Type7 is a tensor-product patch mesh.
type Type7 struct {
	patchMesh
}

type patchMesh struct {
	*Common
	*meshParams

	Patches []patch
}

// patch is a Coons or tensor-product patch.
//
// The control points are stored in the order in which they appear in the
// shading stream: p00 p01 p02 p03 p13 p23 p33 p32 p31 p30 p20 p10, followed
// by the interior points p11 p12 p22 p21.  For Coons patches, the interior
// points are computed from the boundary.  The corner colors are stored in
// the order c00 c03 c33 c30.
type patch struct {
	P     [16]vec.Vec2
	Color [4][]float64
}

// gridIndex maps the grid position p[i][j] to the stream order.
var gridIndex = [4][4]int{
	{0, 1, 2, 3},
	{11, 12, 13, 4},
	{10, 15, 14, 5},
	{9, 8, 7, 6},
}

// edgeConnections lists, for the edge flags 1 to 3, which control points
// and colors of the previous patch become the first points and colors of
// the next patch.
var edgeConnections = [4]struct {
	points [4]int
	colors [2]int
}{
	1: {[4]int{3, 4, 5, 6}, [2]int{1, 2}},
	2: {[4]int{6, 7, 8, 9}, [2]int{2, 3}},
	3: {[4]int{9, 10, 11, 0}, [2]int{3, 0}},
}

// readPatches reads the patch data of a type 6 or type 7 shading.  Each
// patch record starts at a byte boundary.
func readPatches(r pdf.Getter, stm *pdf.Stream, c *Common, tp int) (Shading, error) {
	p, err := readMeshParams(r, stm.Dict, c, true)
	if err != nil {
		return nil, err
	}
	data, err := pdf.ReadAll(r, stm)
	if err != nil {
		return nil, err
	}

	tensor := tp == 7
	numPoints := 12
	if tensor {
		numPoints = 16
	}
	n := p.numValues(c)

	m := patchMesh{Common: c, meshParams: p}
	br := &bitReader{data: data}
	for br.hasMore() {
		pa, err := readPatch(br, p, m.Patches, numPoints, n)
		if err != nil {
			if err != errMeshData {
				pdf.LoggerFor(r).Warn("broken patch data", "type", tp, "err", err)
			}
			break
		}
		if !tensor {
			pa.coonsInterior()
		}
		m.Patches = append(m.Patches, pa)
		br.align()
	}

	if tensor {
		return &Type7{m}, nil
	}
	return &Type6{m}, nil
}

func readPatch(br *bitReader, p *meshParams, prev []patch, numPoints, n int) (patch, error) {
	var pa patch
	flag, err := br.read(p.BitsPerFlag)
	if err != nil {
		return pa, err
	}

	firstPoint, firstColor := 0, 0
	if flag != 0 {
		if flag > 3 {
			return pa, fmt.Errorf("invalid edge flag %d", flag)
		}
		if len(prev) == 0 {
			return pa, fmt.Errorf("edge flag %d for first patch", flag)
		}
		last := &prev[len(prev)-1]
		conn := edgeConnections[flag]
		for i, k := range conn.points {
			pa.P[i] = last.P[k]
		}
		for i, k := range conn.colors {
			pa.Color[i] = last.Color[k]
		}
		firstPoint, firstColor = 4, 2
	}

	for i := firstPoint; i < numPoints; i++ {
		pa.P[i], err = br.readPoint(p)
		if err != nil {
			return pa, err
		}
	}
	for i := firstColor; i < 4; i++ {
		pa.Color[i], err = br.readColor(p, n)
		if err != nil {
			return pa, err
		}
	}
	return pa, nil
}

// coonsInterior computes the interior control points which make the
// tensor-product patch equal to the Coons patch with the same boundary.
func (pa *patch) coonsInterior() {
	g := func(i, j int) vec.Vec2 { return pa.P[gridIndex[i][j]] }
	comb := func(terms ...any) vec.Vec2 {
		var res vec.Vec2
		for k := 0; k < len(terms); k += 2 {
			w := terms[k].(float64)
			v := terms[k+1].(vec.Vec2)
			res.X += w * v.X
			res.Y += w * v.Y
		}
		return vec.Vec2{X: res.X / 9, Y: res.Y / 9}
	}

	pa.P[gridIndex[1][1]] = comb(
		-4.0, g(0, 0), 6.0, g(0, 1), 6.0, g(1, 0), -2.0, g(0, 3), -2.0, g(3, 0),
		3.0, g(3, 1), 3.0, g(1, 3), -1.0, g(3, 3))
	pa.P[gridIndex[1][2]] = comb(
		-4.0, g(0, 3), 6.0, g(0, 2), 6.0, g(1, 3), -2.0, g(0, 0), -2.0, g(3, 3),
		3.0, g(3, 2), 3.0, g(1, 0), -1.0, g(3, 0))
	pa.P[gridIndex[2][1]] = comb(
		-4.0, g(3, 0), 6.0, g(3, 1), 6.0, g(2, 0), -2.0, g(3, 3), -2.0, g(0, 0),
		3.0, g(0, 1), 3.0, g(2, 3), -1.0, g(0, 3))
	pa.P[gridIndex[2][2]] = comb(
		-4.0, g(3, 3), 6.0, g(3, 2), 6.0, g(2, 3), -2.0, g(3, 0), -2.0, g(0, 3),
		3.0, g(0, 2), 3.0, g(2, 0), -1.0, g(0, 0))
}

// eval returns the point of the patch for the parameters (u, v).
func (pa *patch) eval(u, v float64) vec.Vec2 {
	bu := bernstein(u)
	bv := bernstein(v)
	var res vec.Vec2
	for i := range 4 {
		for j := range 4 {
			w := bu[i] * bv[j]
			q := pa.P[gridIndex[i][j]]
			res.X += w * q.X
			res.Y += w * q.Y
		}
	}
	return res
}

// color returns the bilinearly interpolated color values for (u, v).
func (pa *patch) color(u, v float64) []float64 {
	res := make([]float64, len(pa.Color[0]))
	for j := range res {
		res[j] = (1-u)*(1-v)*pa.Color[0][j] + (1-u)*v*pa.Color[1][j] +
			u*v*pa.Color[2][j] + u*(1-v)*pa.Color[3][j]
	}
	return res
}

func bernstein(t float64) [4]float64 {
	s := 1 - t
	return [4]float64{s * s * s, 3 * t * s * s, 3 * t * t * s, t * t * t}
}

// level returns the subdivision level, between 1 and 4, for a patch.  The
// level depends on the length of the boundary control polygon in device
// space.
func (pa *patch) level(ctm matrix.Matrix) int {
	var length float64
	for k := range 12 {
		ax, ay := apply(ctm, pa.P[k].X, pa.P[k].Y)
		bx, by := apply(ctm, pa.P[(k+1)%12].X, pa.P[(k+1)%12].Y)
		length = math.Max(length, math.Hypot(bx-ax, by-ay))
	}
	switch {
	case length < 4:
		return 1
	case length < 16:
		return 2
	case length < 64:
		return 3
	}
	return 4
}

// triangles subdivides the patch into device space triangles.
func (pa *patch) triangles(ctm matrix.Matrix) []*triangle {
	steps := 1 << (pa.level(ctm) + 1)
	grid := make([][]vertex, steps+1)
	for i := range grid {
		grid[i] = make([]vertex, steps+1)
		u := float64(i) / float64(steps)
		for j := range grid[i] {
			v := float64(j) / float64(steps)
			q := pa.eval(u, v)
			x, y := apply(ctm, q.X, q.Y)
			grid[i][j] = vertex{P: vec.Vec2{X: x, Y: y}, Color: pa.color(u, v)}
		}
	}

	tris := make([]*triangle, 0, 2*steps*steps)
	for i := range steps {
		for j := range steps {
			a, b := grid[i][j], grid[i+1][j]
			c, d := grid[i][j+1], grid[i+1][j+1]
			tris = append(tris,
				newTriangle([3]vec.Vec2{a.P, b.P, c.P}, [3][]float64{a.Color, b.Color, c.Color}),
				newTriangle([3]vec.Vec2{b.P, d.P, c.P}, [3][]float64{b.Color, d.Color, c.Color}))
		}
	}
	return tris
}

func (m *patchMesh) rasterize(ctm matrix.Matrix, bounds image.Rectangle) *image.NRGBA {
	cv := newCanvas(m.Common, ctm, bounds)
	var tris []*triangle
	for i := range m.Patches {
		tris = append(tris, m.Patches[i].triangles(ctm)...)
	}
	fillTriangles(cv, &colorizer{cs: m.ColorSpace, fn: m.F}, tris)
	return cv.img
}

// ShadingType implements the [Shading] interface.
func (s *Type6) ShadingType() int { return 6 }

// Rasterize implements the [Shading] interface.
func (s *Type6) Rasterize(ctm matrix.Matrix, bounds image.Rectangle) *image.NRGBA {
	return s.rasterize(ctm, bounds)
}

// ShadingType implements the [Shading] interface.
func (s *Type7) ShadingType() int { return 7 }

// Rasterize implements the [Shading] interface.
func (s *Type7) Rasterize(ctm matrix.Matrix, bounds image.Rectangle) *image.NRGBA {
	return s.rasterize(ctm, bounds)
}
