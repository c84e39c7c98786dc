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
	"io"
	"log/slog"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/font"
	"seehuhn.de/go/pdfraster/graphics/color"
	pdfimage "seehuhn.de/go/pdfraster/graphics/image"
)

// DefaultCacheSize is the default number of decoded images kept by a
// [Basic] interpreter.
const DefaultCacheSize = 64

// maxFormDepth limits the nesting of form XObjects and Type 3 glyphs.
const maxFormDepth = 32

// Basic is a content stream interpreter which covers the operators needed
// for most pages: path construction and painting, clipping, the graphics
// state operators, colors, images, shadings and text.
//
// Marked content, optional content, transparency groups, soft masks,
// blend modes and tiling patterns are not supported.  Operators which are
// not supported are ignored.
type Basic struct {
	images *pdfimage.Cache
	fonts  map[any]*font.Font
}

// NewBasic returns a new interpreter which caches up to cacheSize decoded
// images.  If cacheSize is zero, [DefaultCacheSize] is used.
func NewBasic(cacheSize int) *Basic {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Basic{
		images: pdfimage.NewCache(cacheSize),
		fonts:  make(map[any]*font.Font),
	}
}

// Evict releases cached images and glyph outlines.
func (b *Basic) Evict() {
	b.images.Evict(b.images.Len())
	for _, f := range b.fonts {
		f.Evict()
	}
}

// Run implements the [Interpreter] interface.
func (b *Basic) Run(r pdf.Getter, c *Canvas, ctm matrix.Matrix, res *pdf.Dict, content io.Reader) error {
	e := &executor{
		b:      b,
		r:      r,
		c:      c,
		log:    pdf.LoggerFor(r),
		warned: make(map[string]bool),
	}
	e.state = newState(ctm)
	return e.run(content, res, ctm, 0)
}

// loadFont returns the font for a font dictionary, using the cache where
// possible.
func (b *Basic) loadFont(r pdf.Getter, obj pdf.Object) *font.Font {
	var key any
	switch obj := obj.(type) {
	case pdf.Reference:
		key = obj
	case *pdf.Dict:
		key = obj
	}
	if key != nil {
		if f, ok := b.fonts[key]; ok {
			return f
		}
	}
	f := font.Load(r, obj)
	if key != nil {
		b.fonts[key] = f
	}
	return f
}

// state is the part of the graphics state which is used by the
// interpreter.
type state struct {
	ctm matrix.Matrix

	fillSpace   color.Space
	fillColor   []float64
	fillPattern pdf.Object
	fillAlpha   float64

	strokeSpace   color.Space
	strokeColor   []float64
	strokePattern pdf.Object
	strokeAlpha   float64

	line LineStyle

	font        *font.Font
	fontSize    float64
	charSpacing float64
	wordSpacing float64
	hScale      float64
	leading     float64
	rise        float64
	textMode    int
}

func newState(ctm matrix.Matrix) state {
	return state{
		ctm:         ctm,
		fillSpace:   color.DeviceGray,
		fillColor:   []float64{0},
		fillAlpha:   1,
		strokeSpace: color.DeviceGray,
		strokeColor: []float64{0},
		strokeAlpha: 1,
		line:        LineStyle{Width: 1},
		hScale:      1,
	}
}

// executor holds the state of one call to [Basic.Run].
type executor struct {
	b   *Basic
	r   pdf.Getter
	c   *Canvas
	log *slog.Logger

	state
	stack []state

	path        Path
	pendingClip bool

	inText bool
	tm     matrix.Matrix
	tlm    matrix.Matrix

	// warned records which unsupported features have been reported
	warned map[string]bool
}

// frame describes the content stream currently being executed.
type frame struct {
	res *pdf.Dict

	// base maps pattern space to device pixels
	base matrix.Matrix

	depth int
}

func (e *executor) run(content io.Reader, res *pdf.Dict, base matrix.Matrix, depth int) error {
	fr := &frame{res: res, base: base, depth: depth}
	stackLen := len(e.stack)
	saved := len(e.c.saved)

	err := newScanner().Scan(content)(func(op string, args []pdf.Object) error {
		return e.do(fr, op, args)
	})

	// restore the state after unbalanced q operators
	for len(e.stack) > stackLen {
		e.state = e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
	}
	for len(e.c.saved) > saved {
		e.c.Restore()
	}

	if err != nil {
		return pdf.Wrap(err, "content stream")
	}
	return nil
}

// warnOnce logs a message about an unsupported feature, once per page.
func (e *executor) warnOnce(feature string, args ...any) {
	if e.warned[feature] {
		return
	}
	e.warned[feature] = true
	e.log.Warn("unsupported feature: "+feature, args...)
}

func (e *executor) do(fr *frame, op string, args []pdf.Object) error {
	nums := func(n int) ([]float64, bool) {
		if len(args) < n {
			return nil, false
		}
		res := make([]float64, n)
		for i, obj := range args[len(args)-n:] {
			switch x := obj.(type) {
			case pdf.Integer:
				res[i] = float64(x)
			case pdf.Real:
				res[i] = float64(x)
			default:
				return nil, false
			}
		}
		return res, true
	}
	name := func() (pdf.Name, bool) {
		if len(args) == 0 {
			return "", false
		}
		x, ok := args[len(args)-1].(pdf.Name)
		return x, ok
	}

	switch op {
	// general graphics state
	case "q":
		e.stack = append(e.stack, e.state)
		e.c.Save()
	case "Q":
		if len(e.stack) == 0 {
			break
		}
		e.state = e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		e.c.Restore()
	case "cm":
		if x, ok := nums(6); ok {
			m := matrix.Matrix{x[0], x[1], x[2], x[3], x[4], x[5]}
			e.ctm = m.Mul(e.ctm)
		}
	case "w":
		if x, ok := nums(1); ok {
			e.line.Width = x[0]
		}
	case "J":
		if x, ok := nums(1); ok && x[0] >= 0 && x[0] <= 2 {
			e.line.Cap = LineCap(x[0])
		}
	case "j":
		if x, ok := nums(1); ok && x[0] >= 0 && x[0] <= 2 {
			e.line.Join = LineJoin(x[0])
		}
	case "d":
		e.warnOnce("dashed lines")
	case "gs":
		if n, ok := name(); ok {
			e.setExtGState(fr, n)
		}

	// path construction
	case "m":
		if x, ok := nums(2); ok {
			e.path.MoveTo(x[0], x[1])
		}
	case "l":
		if x, ok := nums(2); ok {
			e.path.LineTo(x[0], x[1])
		}
	case "c":
		if x, ok := nums(6); ok {
			e.path.CubeTo(x[0], x[1], x[2], x[3], x[4], x[5])
		}
	case "v":
		if x, ok := nums(4); ok {
			x0, y0, _ := e.path.CurrentPoint()
			e.path.CubeTo(x0, y0, x[0], x[1], x[2], x[3])
		}
	case "y":
		if x, ok := nums(4); ok {
			e.path.CubeTo(x[0], x[1], x[2], x[3], x[2], x[3])
		}
	case "h":
		e.path.Close()
	case "re":
		if x, ok := nums(4); ok {
			e.path.Rect(x[0], x[1], x[2], x[3])
		}

	// path painting
	case "f", "F", "f*":
		e.fill(fr, &e.path)
		e.endPath()
	case "S":
		e.stroke(fr, &e.path)
		e.endPath()
	case "s":
		e.path.Close()
		e.stroke(fr, &e.path)
		e.endPath()
	case "B", "B*":
		e.fill(fr, &e.path)
		e.stroke(fr, &e.path)
		e.endPath()
	case "b", "b*":
		e.path.Close()
		e.fill(fr, &e.path)
		e.stroke(fr, &e.path)
		e.endPath()
	case "n":
		e.endPath()
	case "W", "W*":
		e.pendingClip = true

	// color
	case "g":
		if x, ok := nums(1); ok {
			e.fillSpace, e.fillColor, e.fillPattern = color.DeviceGray, x, nil
		}
	case "G":
		if x, ok := nums(1); ok {
			e.strokeSpace, e.strokeColor, e.strokePattern = color.DeviceGray, x, nil
		}
	case "rg":
		if x, ok := nums(3); ok {
			e.fillSpace, e.fillColor, e.fillPattern = color.DeviceRGB, x, nil
		}
	case "RG":
		if x, ok := nums(3); ok {
			e.strokeSpace, e.strokeColor, e.strokePattern = color.DeviceRGB, x, nil
		}
	case "k":
		if x, ok := nums(4); ok {
			e.fillSpace, e.fillColor, e.fillPattern = color.DeviceCMYK, x, nil
		}
	case "K":
		if x, ok := nums(4); ok {
			e.strokeSpace, e.strokeColor, e.strokePattern = color.DeviceCMYK, x, nil
		}
	case "cs":
		if n, ok := name(); ok {
			e.fillSpace = color.New(e.r, n, fr.res)
			e.fillColor, e.fillPattern = e.fillSpace.Initial(), nil
		}
	case "CS":
		if n, ok := name(); ok {
			e.strokeSpace = color.New(e.r, n, fr.res)
			e.strokeColor, e.strokePattern = e.strokeSpace.Initial(), nil
		}
	case "sc", "scn":
		e.fillColor, e.fillPattern = e.setColor(fr, e.fillSpace, args, e.fillColor, e.fillPattern)
	case "SC", "SCN":
		e.strokeColor, e.strokePattern = e.setColor(fr, e.strokeSpace, args, e.strokeColor, e.strokePattern)

	// shadings, images and XObjects
	case "sh":
		if n, ok := name(); ok {
			e.paintShading(fr, n)
		}
	case "Do":
		if n, ok := name(); ok {
			e.drawXObject(fr, n)
		}
	case "BI":
		if len(args) == 2 {
			dict, _ := args[0].(*pdf.Dict)
			data, _ := args[1].(pdf.String)
			e.drawInlineImage(fr, dict, data)
		}

	// text objects and text state
	case "BT":
		e.inText = true
		e.tm = matrix.Identity
		e.tlm = matrix.Identity
	case "ET":
		e.inText = false
	case "Tc":
		if x, ok := nums(1); ok {
			e.charSpacing = x[0]
		}
	case "Tw":
		if x, ok := nums(1); ok {
			e.wordSpacing = x[0]
		}
	case "Tz":
		if x, ok := nums(1); ok {
			e.hScale = x[0] / 100
		}
	case "TL":
		if x, ok := nums(1); ok {
			e.leading = x[0]
		}
	case "Tf":
		if x, ok := nums(1); ok && len(args) == 2 {
			if n, ok := args[0].(pdf.Name); ok {
				e.setFont(fr, n, x[0])
			}
		}
	case "Tr":
		if x, ok := nums(1); ok {
			e.textMode = int(x[0])
		}
	case "Ts":
		if x, ok := nums(1); ok {
			e.rise = x[0]
		}
	case "Td":
		if x, ok := nums(2); ok {
			e.textMove(x[0], x[1])
		}
	case "TD":
		if x, ok := nums(2); ok {
			e.leading = -x[1]
			e.textMove(x[0], x[1])
		}
	case "Tm":
		if x, ok := nums(6); ok {
			e.tm = matrix.Matrix{x[0], x[1], x[2], x[3], x[4], x[5]}
			e.tlm = e.tm
		}
	case "T*":
		e.textMove(0, -e.leading)
	case "Tj":
		if len(args) == 1 {
			if s, ok := args[0].(pdf.String); ok {
				e.showText(fr, s)
			}
		}
	case "TJ":
		if len(args) == 1 {
			if a, ok := args[0].(pdf.Array); ok {
				e.showTextArray(fr, a)
			}
		}
	case "'":
		if len(args) == 1 {
			if s, ok := args[0].(pdf.String); ok {
				e.textMove(0, -e.leading)
				e.showText(fr, s)
			}
		}
	case "\"":
		if len(args) == 3 {
			s, isString := args[2].(pdf.String)
			args = args[:2]
			if x, ok := nums(2); ok && isString {
				e.wordSpacing = x[0]
				e.charSpacing = x[1]
				e.textMove(0, -e.leading)
				e.showText(fr, s)
			}
		}
	}
	return nil
}

// endPath installs a pending clipping path and starts a new path.
func (e *executor) endPath() {
	if e.pendingClip {
		e.c.Clip(&e.path, e.ctm)
		e.pendingClip = false
	}
	e.path.Reset()
}

func (e *executor) fill(fr *frame, p *Path) {
	if e.fillPattern != nil {
		e.fillWithPattern(fr, p, e.fillPattern)
		return
	}
	e.c.Fill(p, e.ctm, toNRGBA(e.fillSpace, e.fillColor, e.fillAlpha))
}

func (e *executor) stroke(fr *frame, p *Path) {
	if e.strokePattern != nil {
		e.warnOnce("stroking with patterns")
		return
	}
	e.c.Stroke(p, e.ctm, e.line, toNRGBA(e.strokeSpace, e.strokeColor, e.strokeAlpha))
}

// setColor implements the sc, scn, SC and SCN operators.  The current
// values are returned unchanged if the operands do not fit the color
// space.
func (e *executor) setColor(fr *frame, cs color.Space, args []pdf.Object, cur []float64, curPat pdf.Object) ([]float64, pdf.Object) {
	var pattern pdf.Object
	if cs.Family() == color.FamilyPattern {
		if len(args) == 0 {
			return cur, curPat
		}
		n, ok := args[len(args)-1].(pdf.Name)
		if !ok {
			return cur, curPat
		}
		pattern = fr.res.GetDict(e.r, "Pattern").Get(e.r, n)
		if pattern == nil {
			e.log.Warn("missing pattern", "name", n)
			return cur, curPat
		}
		args = args[:len(args)-1]
		ps, _ := cs.(*color.SpacePattern)
		if ps == nil || ps.Base == nil {
			return nil, pattern
		}
		cs = ps.Base
	}

	if len(args) != cs.Components() {
		return cur, curPat
	}
	vals := make([]float64, len(args))
	for i, obj := range args {
		switch x := obj.(type) {
		case pdf.Integer:
			vals[i] = float64(x)
		case pdf.Real:
			vals[i] = float64(x)
		default:
			return cur, curPat
		}
	}
	return vals, pattern
}

// setExtGState applies the supported entries of an ExtGState dictionary.
func (e *executor) setExtGState(fr *frame, n pdf.Name) {
	dict, err := pdf.GetDict(e.r, fr.res.GetDict(e.r, "ExtGState").Get(e.r, n))
	if err != nil || dict == nil {
		e.log.Warn("missing graphics state", "name", n, "err", err)
		return
	}
	for key := range dict.All() {
		switch key {
		case "LW":
			e.line.Width = dict.GetFloat(e.r, key, e.line.Width)
		case "LC":
			if x := dict.GetInt(e.r, key, -1); x >= 0 && x <= 2 {
				e.line.Cap = LineCap(x)
			}
		case "LJ":
			if x := dict.GetInt(e.r, key, -1); x >= 0 && x <= 2 {
				e.line.Join = LineJoin(x)
			}
		case "CA":
			e.strokeAlpha = pdf.Clamp(dict.GetFloat(e.r, key, 1), 0, 1)
		case "ca":
			e.fillAlpha = pdf.Clamp(dict.GetFloat(e.r, key, 1), 0, 1)
		case "Font":
			a := dict.GetArray(e.r, key)
			if len(a) == 2 {
				size, err := pdf.GetNumber(e.r, a[1])
				if err == nil {
					e.font = e.b.loadFont(e.r, a[0])
					e.fontSize = size
				}
			}
		case "SMask":
			if dict.GetName(e.r, key, "None") != "None" {
				e.warnOnce("soft masks")
			}
		case "BM":
			if x := dict.GetName(e.r, key, "Normal"); x != "Normal" && x != "Compatible" {
				e.warnOnce("blend modes", "mode", x)
			}
		}
	}
}

var errDepth = errors.New("XObjects nested too deeply")

func resourceError(kind string, n pdf.Name) error {
	return pdf.Error(fmt.Sprintf("missing %s %q", kind, n))
}
