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


package render

import (
	"image"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfraster/font"
)

type pathOp uint8

const (
	opMoveTo pathOp = iota
	opLineTo
	opQuadTo
	opCubeTo
	opClose
)

type segment struct {
	op  pathOp
	pts [3]vec.Vec2
}

// Path is a sequence of subpaths.
//
// The zero value is an empty path, ready to use.
type Path struct {
	segs       []segment
	start, cur vec.Vec2
	hasCur     bool
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) {
	pt := vec.Vec2{X: x, Y: y}
	p.segs = append(p.segs, segment{op: opMoveTo, pts: [3]vec.Vec2{pt}})
	p.start, p.cur, p.hasCur = pt, pt, true
}

// LineTo appends a straight line segment.
// Without a current point, this is the same as [Path.MoveTo].
func (p *Path) LineTo(x, y float64) {
	if !p.hasCur {
		p.MoveTo(x, y)
		return
	}
	pt := vec.Vec2{X: x, Y: y}
	p.segs = append(p.segs, segment{op: opLineTo, pts: [3]vec.Vec2{pt}})
	p.cur = pt
}

// QuadTo appends a quadratic Bézier curve.
func (p *Path) QuadTo(x1, y1, x2, y2 float64) {
	if !p.hasCur {
		p.MoveTo(x1, y1)
	}
	p1 := vec.Vec2{X: x1, Y: y1}
	p2 := vec.Vec2{X: x2, Y: y2}
	p.segs = append(p.segs, segment{op: opQuadTo, pts: [3]vec.Vec2{p1, p2}})
	p.cur = p2
}

// CubeTo appends a cubic Bézier curve.
func (p *Path) CubeTo(x1, y1, x2, y2, x3, y3 float64) {
	if !p.hasCur {
		p.MoveTo(x1, y1)
	}
	p1 := vec.Vec2{X: x1, Y: y1}
	p2 := vec.Vec2{X: x2, Y: y2}
	p3 := vec.Vec2{X: x3, Y: y3}
	p.segs = append(p.segs, segment{op: opCubeTo, pts: [3]vec.Vec2{p1, p2, p3}})
	p.cur = p3
}

// Close closes the current subpath.
func (p *Path) Close() {
	if !p.hasCur {
		return
	}
	p.segs = append(p.segs, segment{op: opClose})
	p.cur = p.start
}

// Rect appends a closed rectangle as a complete subpath.
func (p *Path) Rect(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// CurrentPoint returns the current point of the path.
func (p *Path) CurrentPoint() (x, y float64, ok bool) {
	return p.cur.X, p.cur.Y, p.hasCur
}

// IsEmpty reports whether the path has no segments.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.segs) == 0
}

// Reset removes all segments from the path.
func (p *Path) Reset() {
	p.segs = p.segs[:0]
	p.hasCur = false
}

// Clone returns an independent copy of the path.
func (p *Path) Clone() *Path {
	res := *p
	res.segs = append([]segment(nil), p.segs...)
	return &res
}

// outlinePath converts a glyph outline into a path.
func outlinePath(o *font.Outline) *Path {
	p := &Path{}
	for _, s := range o.Segments {
		switch s.Op {
		case font.OpMoveTo:
			p.MoveTo(s.Pts[0].X, s.Pts[0].Y)
		case font.OpLineTo:
			p.LineTo(s.Pts[0].X, s.Pts[0].Y)
		case font.OpQuadTo:
			p.QuadTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y)
		case font.OpCubeTo:
			p.CubeTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y, s.Pts[2].X, s.Pts[2].Y)
		case font.OpClose:
			p.Close()
		}
	}
	return p
}

// transform returns the segments of p, mapped through m.
func (p *Path) transform(m matrix.Matrix) []segment {
	res := make([]segment, len(p.segs))
	for i, s := range p.segs {
		res[i].op = s.op
		for j := range s.op.numPoints() {
			res[i].pts[j] = apply(m, s.pts[j])
		}
	}
	return res
}

func (op pathOp) numPoints() int {
	switch op {
	case opMoveTo, opLineTo:
		return 1
	case opQuadTo:
		return 2
	case opCubeTo:
		return 3
	default:
		return 0
	}
}

func apply(m matrix.Matrix, v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*v.X + m[2]*v.Y + m[4],
		Y: m[1]*v.X + m[3]*v.Y + m[5],
	}
}

// segBounds returns the smallest pixel rectangle which contains all points
// of segs.  Control points are included, so the result also covers all
// curves.
func segBounds(segs []segment) image.Rectangle {
	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for _, s := range segs {
		for j := range s.op.numPoints() {
			pt := s.pts[j]
			xMin = min(xMin, pt.X)
			xMax = max(xMax, pt.X)
			yMin = min(yMin, pt.Y)
			yMax = max(yMax, pt.Y)
		}
	}
	if xMin > xMax || yMin > yMax {
		return image.Rectangle{}
	}
	const limit = 1 << 24
	if xMin < -limit || yMin < -limit || xMax > limit || yMax > limit {
		xMin = max(xMin, -limit)
		yMin = max(yMin, -limit)
		xMax = min(xMax, limit)
		yMax = min(yMax, limit)
	}
	return image.Rect(
		int(math.Floor(xMin)), int(math.Floor(yMin)),
		int(math.Ceil(xMax))+1, int(math.Ceil(yMax))+1)
}

// flatten converts the curves in segs into polylines.  Each returned
// polyline is one subpath, and closed reports whether it was closed
// explicitly.
func flatten(segs []segment) (lines [][]vec.Vec2, closed []bool) {
	var cur []vec.Vec2
	isClosed := false
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, cur)
			closed = append(closed, isClosed)
		}
		cur = nil
		isClosed = false
	}
	for _, s := range segs {
		switch s.op {
		case opMoveTo:
			flush()
			cur = []vec.Vec2{s.pts[0]}
		case opLineTo:
			cur = append(cur, s.pts[0])
		case opQuadTo:
			p0 := cur[len(cur)-1]
			n := numSteps(p0, s.pts[0], s.pts[1])
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				u := 1 - t
				cur = append(cur, vec.Vec2{
					X: u*u*p0.X + 2*u*t*s.pts[0].X + t*t*s.pts[1].X,
					Y: u*u*p0.Y + 2*u*t*s.pts[0].Y + t*t*s.pts[1].Y,
				})
			}
		case opCubeTo:
			p0 := cur[len(cur)-1]
			n := numSteps(p0, s.pts[0], s.pts[1], s.pts[2])
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				u := 1 - t
				a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
				cur = append(cur, vec.Vec2{
					X: a*p0.X + b*s.pts[0].X + c*s.pts[1].X + d*s.pts[2].X,
					Y: a*p0.Y + b*s.pts[0].Y + c*s.pts[1].Y + d*s.pts[2].Y,
				})
			}
		case opClose:
			if len(cur) > 0 {
				isClosed = true
				start := cur[0]
				flush()
				cur = []vec.Vec2{start}
			}
		}
	}
	if len(cur) > 1 || isClosed {
		flush()
	}
	return lines, closed
}

// numSteps chooses the number of line segments used to approximate a
// curve, based on the length of its control polygon in device pixels.
func numSteps(pts ...vec.Vec2) int {
	var l float64
	for i := 1; i < len(pts); i++ {
		l += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return min(max(int(math.Ceil(l/3)), 1), 100)
}
