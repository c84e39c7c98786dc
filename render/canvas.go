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
	stdcolor "image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfraster/graphics/shading"
)

// LineCap is the shape at the ends of open subpaths when stroking.
type LineCap int

// These are the line cap styles defined by PDF.
const (
	ButtCap LineCap = iota
	RoundCap
	SquareCap
)

// LineJoin is the shape at the corners of stroked paths.
type LineJoin int

// These are the line join styles defined by PDF.
const (
	MiterJoin LineJoin = iota
	RoundJoin
	BevelJoin
)

// LineStyle describes how paths are stroked.
type LineStyle struct {
	// Width is the line width in user space units.
	Width float64
	Cap   LineCap
	Join  LineJoin
}

// Canvas is the raster surface of a page.
//
// All drawing methods take a matrix which maps the coordinates of the
// drawn object to device pixels.  Drawing is restricted to the current
// clipping region.
type Canvas struct {
	img *image.NRGBA
	ras *vector.Rasterizer

	// cov is scratch space for path coverage
	cov *image.Alpha

	clip  clipRegion
	saved []clipRegion
}

// clipRegion is the current clipping area.  A nil mask means that only
// rect restricts drawing.  Masks are never modified once installed.
type clipRegion struct {
	mask *image.Alpha
	rect image.Rectangle
}

// NewCanvas allocates a canvas of the given size in pixels, filled with
// the background color bg.
func NewCanvas(width, height int, bg stdcolor.NRGBA) *Canvas {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if bg.A != 0 {
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	return &Canvas{
		img:  img,
		ras:  vector.NewRasterizer(width, height),
		cov:  image.NewAlpha(img.Bounds()),
		clip: clipRegion{rect: img.Bounds()},
	}
}

// Image returns the pixels of the canvas.
func (c *Canvas) Image() *image.NRGBA {
	return c.img
}

// Bounds returns the pixel rectangle of the canvas.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Save pushes the current clipping region onto a stack.
func (c *Canvas) Save() {
	c.saved = append(c.saved, c.clip)
}

// Restore pops the clipping region saved by the last call to
// [Canvas.Save].  Calls without a matching Save are ignored.
func (c *Canvas) Restore() {
	if len(c.saved) == 0 {
		return
	}
	c.clip = c.saved[len(c.saved)-1]
	c.saved = c.saved[:len(c.saved)-1]
}

// Fill fills the interior of p, using the nonzero winding rule.
func (c *Canvas) Fill(p *Path, m matrix.Matrix, col stdcolor.NRGBA) {
	if p.IsEmpty() || col.A == 0 {
		return
	}
	r, mask := c.coverage(p.transform(m))
	if mask == nil {
		return
	}
	draw.DrawMask(c.img, r, image.NewUniform(col), image.Point{}, mask, r.Min, draw.Over)
}

// Stroke draws the outline of p.
func (c *Canvas) Stroke(p *Path, m matrix.Matrix, style LineStyle, col stdcolor.NRGBA) {
	if p.IsEmpty() || col.A == 0 {
		return
	}
	scale := math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
	w := max(style.Width*scale/2, 0.5)

	outline := strokeOutline(p.transform(m), w, style)
	r, mask := c.coverage(outline)
	if mask == nil {
		return
	}
	draw.DrawMask(c.img, r, image.NewUniform(col), image.Point{}, mask, r.Min, draw.Over)
}

// Clip intersects the clipping region with the interior of p.
func (c *Canvas) Clip(p *Path, m matrix.Matrix) {
	var segs []segment
	if p != nil {
		segs = p.transform(m)
	}
	r, mask := c.coverage(segs)
	next := image.NewAlpha(c.img.Bounds())
	if mask != nil {
		draw.Draw(next, r, mask, r.Min, draw.Src)
	}
	c.clip = clipRegion{mask: next, rect: r}
}

// DrawImage draws img into the parallelogram obtained by mapping the unit
// square through m.  The top-left corner of the image is mapped to the
// point (0, 1) of the unit square.
func (c *Canvas) DrawImage(img image.Image, m matrix.Matrix, interpolate bool) {
	b := img.Bounds()
	if b.Empty() || math.Abs(m[0]*m[3]-m[1]*m[2]) < 1e-9 || c.clip.rect.Empty() {
		return
	}
	W := float64(b.Dx())
	H := float64(b.Dy())

	// pixel (sx, sy) maps to the unit square point (sx/W, 1 - sy/H)
	aff := f64.Aff3{
		m[0] / W, -m[2] / H, m[2] + m[4] - (m[0]/W)*float64(b.Min.X) + (m[2]/H)*float64(b.Min.Y),
		m[1] / W, -m[3] / H, m[3] + m[5] - (m[1]/W)*float64(b.Min.X) + (m[3]/H)*float64(b.Min.Y),
	}

	var scaler xdraw.Transformer = xdraw.BiLinear
	devW := math.Hypot(m[0], m[1])
	devH := math.Hypot(m[2], m[3])
	if !interpolate && devW > W && devH > H {
		scaler = xdraw.NearestNeighbor
	}

	var opt *xdraw.Options
	if c.clip.mask != nil {
		opt = &xdraw.Options{DstMask: c.clip.mask}
	}
	dst := c.img.SubImage(c.clip.rect).(*image.NRGBA)
	scaler.Transform(dst, aff, img, b, draw.Over, opt)
}

// DrawShading paints sh over the whole clipping region.  The matrix m
// maps shading space to device pixels.
func (c *Canvas) DrawShading(sh shading.Shading, m matrix.Matrix) {
	r := c.clip.rect
	if r.Empty() {
		return
	}
	img := sh.Rasterize(m, r)
	if c.clip.mask != nil {
		draw.DrawMask(c.img, r, img, r.Min, c.clip.mask, r.Min, draw.Over)
	} else {
		draw.Draw(c.img, r, img, r.Min, draw.Over)
	}
}

// FillShading paints sh inside the interior of p.  The matrix m maps the
// path to device pixels, and shm maps shading space to device pixels.
func (c *Canvas) FillShading(p *Path, m matrix.Matrix, sh shading.Shading, shm matrix.Matrix) {
	if p.IsEmpty() {
		return
	}
	r, mask := c.coverage(p.transform(m))
	if mask == nil {
		return
	}
	img := sh.Rasterize(shm, r)
	draw.DrawMask(c.img, r, img, r.Min, mask, r.Min, draw.Over)
}

// coverage rasterizes segs, which are given in device coordinates.  The
// returned mask is restricted to the clipping region and is only valid
// until the next call.  If nothing is covered, mask is nil.
func (c *Canvas) coverage(segs []segment) (r image.Rectangle, mask *image.Alpha) {
	r = segBounds(segs).Intersect(c.clip.rect)
	if r.Empty() {
		return r, nil
	}

	c.ras.Reset(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	pt := func(v vec.Vec2) (float32, float32) {
		return float32(v.X - ox), float32(v.Y - oy)
	}
	for _, s := range segs {
		switch s.op {
		case opMoveTo:
			c.ras.MoveTo(pt(s.pts[0]))
		case opLineTo:
			c.ras.LineTo(pt(s.pts[0]))
		case opQuadTo:
			x1, y1 := pt(s.pts[0])
			x2, y2 := pt(s.pts[1])
			c.ras.QuadTo(x1, y1, x2, y2)
		case opCubeTo:
			x1, y1 := pt(s.pts[0])
			x2, y2 := pt(s.pts[1])
			x3, y3 := pt(s.pts[2])
			c.ras.CubeTo(x1, y1, x2, y2, x3, y3)
		case opClose:
			c.ras.ClosePath()
		}
	}

	mask = c.cov.SubImage(r).(*image.Alpha)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := mask.PixOffset(r.Min.X, y)
		clear(mask.Pix[i : i+r.Dx()])
	}
	c.ras.Draw(mask, r, image.Opaque, image.Point{})

	if clip := c.clip.mask; clip != nil {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			i := mask.PixOffset(r.Min.X, y)
			j := clip.PixOffset(r.Min.X, y)
			row := mask.Pix[i : i+r.Dx()]
			for x, a := range row {
				row[x] = mul8(a, clip.Pix[j+x])
			}
		}
	}
	return r, mask
}

func mul8(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}

// strokeOutline returns a path whose interior is the stroke of segs.
// All parts of the outline have the same orientation, so that overlaps
// do not cancel under the nonzero winding rule.
func strokeOutline(segs []segment, w float64, style LineStyle) []segment {
	lines, closed := flatten(segs)

	var res []segment
	poly := func(pts ...vec.Vec2) {
		res = append(res, segment{op: opMoveTo, pts: [3]vec.Vec2{pts[0]}})
		for _, pt := range pts[1:] {
			res = append(res, segment{op: opLineTo, pts: [3]vec.Vec2{pt}})
		}
		res = append(res, segment{op: opClose})
	}
	disk := func(c vec.Vec2) {
		n := min(max(int(w*2), 8), 64)
		pts := make([]vec.Vec2, n)
		for i := range pts {
			phi := -2 * math.Pi * float64(i) / float64(n)
			pts[i] = vec.Vec2{X: c.X + w*math.Cos(phi), Y: c.Y + w*math.Sin(phi)}
		}
		poly(pts...)
	}

	for k, line := range lines {
		if closed[k] && len(line) > 1 && line[0] != line[len(line)-1] {
			line = append(line, line[0])
		}
		if len(line) < 2 {
			continue
		}
		last := len(line) - 2
		for i := 0; i <= last; i++ {
			a, b := line[i], line[i+1]
			vx, vy := b.X-a.X, b.Y-a.Y
			l := math.Hypot(vx, vy)
			if l == 0 {
				continue
			}
			ux, uy := vx/l, vy/l
			if style.Cap == SquareCap && !closed[k] {
				if i == 0 {
					a = vec.Vec2{X: a.X - ux*w, Y: a.Y - uy*w}
				}
				if i == last {
					b = vec.Vec2{X: b.X + ux*w, Y: b.Y + uy*w}
				}
			}
			nx, ny := -uy*w, ux*w
			poly(
				vec.Vec2{X: a.X + nx, Y: a.Y + ny},
				vec.Vec2{X: b.X + nx, Y: b.Y + ny},
				vec.Vec2{X: b.X - nx, Y: b.Y - ny},
				vec.Vec2{X: a.X - nx, Y: a.Y - ny},
			)
		}

		if style.Join == RoundJoin || style.Join == MiterJoin {
			for i := 1; i <= last; i++ {
				disk(line[i])
			}
			if closed[k] {
				disk(line[0])
			}
		}
		if style.Cap == RoundCap && !closed[k] {
			disk(line[0])
			disk(line[len(line)-1])
		}
	}
	return res
}
