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
	"errors"
	"fmt"
	"image"
	stdcolor "image/color"
	"io"
	"math"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/pagetree"
)

// DefaultDPI is the resolution used when no resolution is given.
const DefaultDPI = 72

// maxPixels limits the size of rendered pages.
const maxPixels = 1 << 28

// Interpreter executes page content streams.
type Interpreter interface {
	// Run executes the content stream read from content and paints onto
	// c.  The matrix ctm maps the default user space of the page to
	// device pixels, and res is the resource dictionary of the page.
	Run(r pdf.Getter, c *Canvas, ctm matrix.Matrix, res *pdf.Dict, content io.Reader) error
}

// Options control how pages are rendered.
type Options struct {
	// DPI is the output resolution in pixels per inch.
	// If this is zero, [DefaultDPI] is used.
	DPI float64

	// Background is used to fill the page before drawing.
	// The zero value gives a transparent background.
	Background stdcolor.NRGBA

	// Interpreter executes the content streams.
	// If this is nil, a [Basic] interpreter is used.
	Interpreter Interpreter

	// CacheSize is the number of decoded images kept in memory.
	// If this is zero, [DefaultCacheSize] is used.
	CacheSize int
}

// Renderer draws pages into raster images.
//
// A Renderer keeps caches which are shared between the pages of a
// document.  It is not safe for concurrent use.
type Renderer struct {
	dpi    float64
	bg     stdcolor.NRGBA
	interp Interpreter
}

// New returns a renderer with the given options.
// If opt is nil, default options are used.
func New(opt *Options) *Renderer {
	if opt == nil {
		opt = &Options{}
	}
	rr := &Renderer{
		dpi:    opt.DPI,
		bg:     opt.Background,
		interp: opt.Interpreter,
	}
	if rr.dpi <= 0 {
		rr.dpi = DefaultDPI
	}
	if rr.interp == nil {
		rr.interp = NewBasic(opt.CacheSize)
	}
	return rr
}

// Page renders a single page.
//
// Errors in individual images, shadings and fonts are logged and the
// affected objects are skipped.  An error is only returned if the page
// cannot be rendered at all.
func (rr *Renderer) Page(r pdf.Getter, page *pagetree.Page) (*image.NRGBA, error) {
	if page == nil {
		return nil, errNoPage
	}
	bbox := page.BBox()
	if bbox == nil || bbox.IsZero() || bbox.Dx() <= 0 || bbox.Dy() <= 0 {
		return nil, &pdf.MalformedFileError{Err: errors.New("empty page")}
	}

	ctm, w, h := DeviceMatrix(bbox, page.Rotate, rr.dpi)
	if w <= 0 || h <= 0 || w > maxPixels/h {
		return nil, fmt.Errorf("page size %dx%d pixels is out of range", w, h)
	}

	c := NewCanvas(w, h, rr.bg)
	content := pagetree.ContentStream(r, page.Dict)
	err := rr.interp.Run(r, c, ctm, page.Resources, content)
	if err != nil {
		return nil, err
	}
	return c.Image(), nil
}

// Evict releases cached data, where the interpreter supports this.
func (rr *Renderer) Evict() {
	if e, ok := rr.interp.(interface{ Evict() }); ok {
		e.Evict()
	}
}

// Page renders a single page with the given options.
// To render more than one page of a document, use a [Renderer].
func Page(r pdf.Getter, page *pagetree.Page, opt *Options) (*image.NRGBA, error) {
	return New(opt).Page(r, page)
}

// DeviceMatrix returns the matrix which maps the default user space of a
// page to device pixels, together with the size of the output in pixels.
// Device pixels have the origin in the top-left corner, with y increasing
// downwards.
func DeviceMatrix(bbox *pdf.Rectangle, rot pdf.PageRotation, dpi float64) (matrix.Matrix, int, int) {
	s := dpi / 72
	pw := int(math.Ceil(bbox.Dx()*s - 1e-6))
	ph := int(math.Ceil(bbox.Dy()*s - 1e-6))

	switch rot {
	case 90:
		return matrix.Matrix{0, s, s, 0, -s * bbox.LLy, -s * bbox.LLx}, ph, pw
	case 180:
		return matrix.Matrix{-s, 0, 0, s, s * bbox.URx, -s * bbox.LLy}, pw, ph
	case 270:
		return matrix.Matrix{0, -s, -s, 0, s * bbox.URy, s * bbox.URx}, ph, pw
	default:
		return matrix.Matrix{s, 0, 0, -s, -s * bbox.LLx, s * bbox.URy}, pw, ph
	}
}

var errNoPage = errors.New("missing page")
