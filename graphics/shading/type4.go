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
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfraster"
)

// Type4 is a free-form Gouraud-shaded triangle mesh.
type Type4 struct {
	*Common
	*meshParams

	// Triangles holds the triangles of the mesh, in shading space.
	Triangles [][3]vertex
}

// Type5 is a lattice-form Gouraud-shaded triangle mesh.
type Type5 struct {
	*Common
	*meshParams

	VerticesPerRow int

	// Rows holds the vertices of the lattice, in shading space.
	Rows [][]vertex
}

// readType4 reads the vertex data of a type 4 shading.  Each vertex record
// starts at a byte boundary.
func readType4(r pdf.Getter, stm *pdf.Stream, c *Common) (Shading, error) {
	p, err := readMeshParams(r, stm.Dict, c, true)
	if err != nil {
		return nil, err
	}
	data, err := pdf.ReadAll(r, stm)
	if err != nil {
		return nil, err
	}

	s := &Type4{Common: c, meshParams: p}
	n := p.numValues(c)
	br := &bitReader{data: data}

	var tri [3]vertex
	need := 3
	for br.hasMore() {
		flag, err := br.read(p.BitsPerFlag)
		if err != nil {
			break
		}
		v, err := readVertex(br, p, n)
		if err != nil {
			break
		}

		if need > 0 {
			// the flags of the second and third vertex of a new
			// triangle are ignored
			tri[3-need] = v
			need--
			if need == 0 {
				s.Triangles = append(s.Triangles, tri)
			}
			continue
		}
		switch flag {
		case 0:
			tri[0] = v
			need = 2
		case 1:
			tri = [3]vertex{tri[1], tri[2], v}
			s.Triangles = append(s.Triangles, tri)
		case 2:
			tri = [3]vertex{tri[0], tri[2], v}
			s.Triangles = append(s.Triangles, tri)
		default:
			pdf.LoggerFor(r).Warn("invalid edge flag in type 4 shading", "flag", flag)
			tri[0] = v
			need = 2
		}
	}
	return s, nil
}

func readVertex(br *bitReader, p *meshParams, n int) (vertex, error) {
	pt, err := br.readPoint(p)
	if err != nil {
		return vertex{}, err
	}
	col, err := br.readColor(p, n)
	if err != nil {
		return vertex{}, err
	}
	br.align()
	return vertex{P: pt, Color: col}, nil
}

// ShadingType implements the [Shading] interface.
func (s *Type4) ShadingType() int { return 4 }

// Rasterize implements the [Shading] interface.
func (s *Type4) Rasterize(ctm matrix.Matrix, bounds image.Rectangle) *image.NRGBA {
	cv := newCanvas(s.Common, ctm, bounds)
	tris := make([]*triangle, 0, len(s.Triangles))
	for _, t := range s.Triangles {
		tris = append(tris, deviceTriangle(ctm, t[0], t[1], t[2]))
	}
	fillTriangles(cv, &colorizer{cs: s.ColorSpace, fn: s.F}, tris)
	return cv.img
}

// readType5 reads the vertex data of a type 5 shading.  Each vertex
// record starts at a byte boundary.
func readType5(r pdf.Getter, stm *pdf.Stream, c *Common) (Shading, error) {
	p, err := readMeshParams(r, stm.Dict, c, false)
	if err != nil {
		return nil, err
	}
	perRow := stm.GetInt(r, "VerticesPerRow", 0)
	if perRow < 2 {
		return nil, pdf.Error("invalid /VerticesPerRow")
	}
	data, err := pdf.ReadAll(r, stm)
	if err != nil {
		return nil, err
	}

	s := &Type5{Common: c, meshParams: p, VerticesPerRow: perRow}
	n := p.numValues(c)
	br := &bitReader{data: data}
	for br.hasMore() {
		row := make([]vertex, 0, perRow)
		for range perRow {
			v, err := readVertex(br, p, n)
			if err != nil {
				break
			}
			row = append(row, v)
		}
		if len(row) < perRow {
			break
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

// ShadingType implements the [Shading] interface.
func (s *Type5) ShadingType() int { return 5 }

// Rasterize implements the [Shading] interface.
func (s *Type5) Rasterize(ctm matrix.Matrix, bounds image.Rectangle) *image.NRGBA {
	cv := newCanvas(s.Common, ctm, bounds)
	var tris []*triangle
	for i := 1; i < len(s.Rows); i++ {
		above, below := s.Rows[i-1], s.Rows[i]
		for j := 1; j < s.VerticesPerRow; j++ {
			tris = append(tris,
				deviceTriangle(ctm, above[j-1], above[j], below[j-1]),
				deviceTriangle(ctm, above[j], below[j], below[j-1]))
		}
	}
	fillTriangles(cv, &colorizer{cs: s.ColorSpace, fn: s.F}, tris)
	return cv.img
}

// deviceTriangle transforms a triangle from shading space to device space.
func deviceTriangle(ctm matrix.Matrix, a, b, c vertex) *triangle {
	var p [3]vec.Vec2
	for i, v := range []vertex{a, b, c} {
		x, y := apply(ctm, v.P.X, v.P.Y)
		p[i] = vec.Vec2{X: x, Y: y}
	}
	return newTriangle(p, [3][]float64{a.Color, b.Color, c.Color})
}
