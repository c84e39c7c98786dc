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

package font

import (
	"bytes"
	"sync"

	"seehuhn.de/go/geom/matrix"
	geompath "seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/postscript/type1"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/glyph"

	"golang.org/x/image/font/gofont/goregular"
)

// Op is a path construction operator.
type Op uint8

// These are the operators used in glyph outlines.
const (
	OpMoveTo Op = iota // one point
	OpLineTo           // one point
	OpQuadTo           // two points
	OpCubeTo           // three points
	OpClose            // no points
)

// Segment is one element of a glyph outline.
type Segment struct {
	Op  Op
	Pts []vec.Vec2
}

// Outline is the outline of a glyph, in text space units.  A glyph with
// an advance width of 1000 in PDF glyph space has an advance of 1 in
// these units.
type Outline struct {
	Segments []Segment
}

// IsBlank reports whether the outline has no visible parts.
func (o *Outline) IsBlank() bool {
	return o == nil || len(o.Segments) == 0
}

func (o *Outline) add(op Op, m matrix.Matrix, pts ...vec.Vec2) {
	for i, p := range pts {
		pts[i] = vec.Vec2{
			X: m[0]*p.X + m[2]*p.Y + m[4],
			Y: m[1]*p.X + m[3]*p.Y + m[5],
		}
	}
	o.Segments = append(o.Segments, Segment{Op: op, Pts: pts})
}

// type1Outline converts the charstring of a Type 1 glyph.
func type1Outline(g *type1.Glyph, m matrix.Matrix) *Outline {
	o := &Outline{}
	for _, cmd := range g.Cmds {
		switch cmd.Op {
		case type1.OpMoveTo:
			if len(cmd.Args) >= 2 {
				o.add(OpMoveTo, m, vec.Vec2{X: cmd.Args[0], Y: cmd.Args[1]})
			}
		case type1.OpLineTo:
			if len(cmd.Args) >= 2 {
				o.add(OpLineTo, m, vec.Vec2{X: cmd.Args[0], Y: cmd.Args[1]})
			}
		case type1.OpCurveTo:
			if len(cmd.Args) >= 6 {
				o.add(OpCubeTo, m,
					vec.Vec2{X: cmd.Args[0], Y: cmd.Args[1]},
					vec.Vec2{X: cmd.Args[2], Y: cmd.Args[3]},
					vec.Vec2{X: cmd.Args[4], Y: cmd.Args[5]})
			}
		case type1.OpClosePath:
			o.add(OpClose, m)
		}
	}
	return o
}

// cffOutline converts the charstring of a CFF glyph.  CFF subpaths are
// closed implicitly.
func cffOutline(g *cff.Glyph, m matrix.Matrix) *Outline {
	o := &Outline{}
	open := false
	for _, cmd := range g.Cmds {
		switch cmd.Op {
		case cff.OpMoveTo:
			if open {
				o.add(OpClose, m)
			}
			o.add(OpMoveTo, m, vec.Vec2{X: cmd.Args[0], Y: cmd.Args[1]})
			open = false
		case cff.OpLineTo:
			o.add(OpLineTo, m, vec.Vec2{X: cmd.Args[0], Y: cmd.Args[1]})
			open = true
		case cff.OpCurveTo:
			o.add(OpCubeTo, m,
				vec.Vec2{X: cmd.Args[0], Y: cmd.Args[1]},
				vec.Vec2{X: cmd.Args[2], Y: cmd.Args[3]},
				vec.Vec2{X: cmd.Args[4], Y: cmd.Args[5]})
			open = true
		}
	}
	if open {
		o.add(OpClose, m)
	}
	return o
}

// sfntOutline extracts a glyph outline from a TrueType or OpenType font.
func sfntOutline(f *sfnt.Font, gid glyph.ID) *Outline {
	o := &Outline{}
	if f.Outlines == nil || int(gid) >= f.NumGlyphs() {
		return o
	}
	q := 1 / float64(f.UnitsPerEm)
	m := matrix.Matrix{q, 0, 0, q, 0, 0}
	for cmd, pts := range f.Outlines.Path(gid) {
		pts = append([]vec.Vec2(nil), pts...)
		switch cmd {
		case geompath.CmdMoveTo:
			o.add(OpMoveTo, m, pts...)
		case geompath.CmdLineTo:
			o.add(OpLineTo, m, pts...)
		case geompath.CmdQuadTo:
			o.add(OpQuadTo, m, pts...)
		case geompath.CmdCubeTo:
			o.add(OpCubeTo, m, pts...)
		case geompath.CmdClose:
			o.add(OpClose, m)
		}
	}
	return o
}

// fallbackFont is used for glyphs of fonts without an embedded font
// program.
var fallbackFont = sync.OnceValues(func() (*sfntProgram, error) {
	f, err := sfnt.Read(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return newSFNTProgram(f), nil
})
