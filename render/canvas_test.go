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
	"testing"

	"seehuhn.de/go/geom/matrix"
)

var (
	white = stdcolor.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = stdcolor.NRGBA{A: 255}
	red   = stdcolor.NRGBA{R: 255, A: 255}
	blue  = stdcolor.NRGBA{B: 255, A: 255}
)

func checkPixel(t *testing.T, img *image.NRGBA, x, y int, want stdcolor.NRGBA) {
	t.Helper()
	if got := img.NRGBAAt(x, y); got != want {
		t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
	}
}

func TestFill(t *testing.T) {
	c := NewCanvas(10, 10, white)
	p := &Path{}
	p.Rect(2, 2, 4, 4)
	c.Fill(p, matrix.Identity, red)

	img := c.Image()
	checkPixel(t, img, 3, 3, red)
	checkPixel(t, img, 5, 5, red)
	checkPixel(t, img, 1, 1, white)
	checkPixel(t, img, 8, 8, white)
}

func TestFillOutside(t *testing.T) {
	c := NewCanvas(10, 10, white)
	p := &Path{}
	p.Rect(-100, -100, 50, 50)
	c.Fill(p, matrix.Identity, red)
	checkPixel(t, c.Image(), 0, 0, white)
}

func TestClip(t *testing.T) {
	c := NewCanvas(10, 10, white)
	all := &Path{}
	all.Rect(0, 0, 10, 10)

	c.Save()
	clip := &Path{}
	clip.Rect(0, 0, 5, 10)
	c.Clip(clip, matrix.Identity)
	c.Fill(all, matrix.Identity, red)
	c.Restore()

	img := c.Image()
	checkPixel(t, img, 2, 5, red)
	checkPixel(t, img, 7, 5, white)

	c.Fill(all, matrix.Identity, blue)
	checkPixel(t, img, 7, 5, blue)
}

func TestEmptyClip(t *testing.T) {
	c := NewCanvas(10, 10, white)
	clip := &Path{}
	clip.Rect(20, 20, 5, 5)
	c.Clip(clip, matrix.Identity)

	all := &Path{}
	all.Rect(0, 0, 10, 10)
	c.Fill(all, matrix.Identity, red)
	checkPixel(t, c.Image(), 5, 5, white)
}

func TestStroke(t *testing.T) {
	c := NewCanvas(10, 10, white)
	p := &Path{}
	p.MoveTo(1, 5)
	p.LineTo(9, 5)
	c.Stroke(p, matrix.Identity, LineStyle{Width: 2}, black)

	img := c.Image()
	checkPixel(t, img, 5, 4, black)
	checkPixel(t, img, 5, 5, black)
	checkPixel(t, img, 5, 8, white)
	checkPixel(t, img, 5, 1, white)
}

func TestStrokeClosed(t *testing.T) {
	c := NewCanvas(20, 20, white)
	p := &Path{}
	p.Rect(4, 4, 12, 12)
	c.Stroke(p, matrix.Identity, LineStyle{Width: 2, Join: RoundJoin}, black)

	img := c.Image()
	for _, pt := range []image.Point{{10, 4}, {15, 10}, {10, 15}, {3, 10}} {
		checkPixel(t, img, pt.X, pt.Y, black)
	}
	checkPixel(t, img, 10, 10, white)
}

func TestDrawImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, red)
	src.SetNRGBA(1, 0, white)
	src.SetNRGBA(0, 1, white)
	src.SetNRGBA(1, 1, blue)

	c := NewCanvas(10, 10, black)
	// the unit square, with the top edge of the image at the top
	c.DrawImage(src, matrix.Matrix{10, 0, 0, -10, 0, 10}, false)

	img := c.Image()
	checkPixel(t, img, 2, 2, red)
	checkPixel(t, img, 7, 7, blue)
	checkPixel(t, img, 7, 2, white)
}

func TestDrawImageSingular(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, red)
	c := NewCanvas(4, 4, white)
	c.DrawImage(src, matrix.Matrix{10, 0, 10, 0, 0, 0}, true)
	checkPixel(t, c.Image(), 1, 1, white)
}

func TestFlattenCurve(t *testing.T) {
	p := &Path{}
	p.MoveTo(0, 0)
	p.CubeTo(0, 10, 10, 10, 10, 0)
	lines, closed := flatten(p.transform(matrix.Identity))
	if len(lines) != 1 || closed[0] {
		t.Fatalf("got %d subpaths, closed=%v", len(lines), closed)
	}
	line := lines[0]
	if len(line) < 3 {
		t.Fatalf("curve flattened into %d points", len(line))
	}
	if end := line[len(line)-1]; end.X != 10 || end.Y != 0 {
		t.Errorf("end point %v, want (10,0)", end)
	}
}
