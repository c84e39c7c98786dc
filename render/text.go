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
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/font"
)

// setFont implements the Tf operator.
func (e *executor) setFont(fr *frame, n pdf.Name, size float64) {
	raw, ok := fr.res.GetDict(e.r, "Font").GetItem(n)
	if !ok {
		e.log.Warn("missing font, using fallback", "name", n)
	}
	e.font = e.b.loadFont(e.r, raw)
	e.fontSize = size
}

// textMove starts a new line, offset by (tx, ty) from the start of the
// current line.
func (e *executor) textMove(tx, ty float64) {
	e.tlm = matrix.Translate(tx, ty).Mul(e.tlm)
	e.tm = e.tlm
}

// showTextArray implements the TJ operator.
func (e *executor) showTextArray(fr *frame, a pdf.Array) {
	for _, obj := range a {
		switch x := obj.(type) {
		case pdf.String:
			e.showText(fr, x)
		case pdf.Integer:
			e.adjust(float64(x))
		case pdf.Real:
			e.adjust(float64(x))
		}
	}
}

// adjust moves the text position by the amount given in a TJ array.
func (e *executor) adjust(delta float64) {
	d := -delta / 1000 * e.fontSize
	if e.font != nil && e.font.IsVertical() {
		e.tm = matrix.Translate(0, d).Mul(e.tm)
	} else {
		e.tm = matrix.Translate(d*e.hScale, 0).Mul(e.tm)
	}
}

// showText implements the Tj operator.
func (e *executor) showText(fr *frame, s pdf.String) {
	if !e.inText {
		e.warnOnce("text outside of BT/ET")
	}
	if e.font == nil {
		e.warnOnce("text without font")
		e.font = e.b.loadFont(e.r, nil)
		e.fontSize = 12
	}
	f := e.font
	vertical := f.IsVertical()

	for c := range f.Chars(s) {
		// maps text space of the glyph to device pixels
		trm := matrix.Matrix{e.fontSize * e.hScale, 0, 0, e.fontSize, 0, e.rise}.Mul(e.tm).Mul(e.ctm)
		e.drawGlyph(fr, f, c, trm)

		spacing := e.charSpacing
		if c.IsSpace {
			spacing += e.wordSpacing
		}
		if vertical {
			ty := -e.fontSize + spacing
			e.tm = matrix.Translate(0, ty).Mul(e.tm)
		} else {
			tx := (c.Width/1000*e.fontSize + spacing) * e.hScale
			e.tm = matrix.Translate(tx, 0).Mul(e.tm)
		}
	}
}

// drawGlyph paints a single glyph.  The matrix trm maps text space units
// (scaled to a font size of 1) to device pixels.
func (e *executor) drawGlyph(fr *frame, f *font.Font, c font.Char, trm matrix.Matrix) {
	mode := e.textMode % 4
	if mode == 3 {
		return
	}

	if f.Kind == font.Type3 {
		if c.Len == 1 {
			e.drawType3Glyph(fr, f, byte(c.Code), trm)
		}
		return
	}

	outline := f.Path(c.Code)
	if outline.IsBlank() {
		return
	}
	p := outlinePath(outline)
	if mode == 0 || mode == 2 {
		if e.fillPattern != nil {
			e.fillWithPattern(fr, p, e.fillPattern)
		} else {
			e.c.Fill(p, trm, toNRGBA(e.fillSpace, e.fillColor, e.fillAlpha))
		}
	}
	if mode == 1 || mode == 2 {
		// the line width is given in user space
		style := e.line
		if s := e.fontSize * e.hScale; s != 0 {
			style.Width /= s
		}
		e.c.Stroke(p, trm, style, toNRGBA(e.strokeSpace, e.strokeColor, e.strokeAlpha))
	}
}

// drawType3Glyph executes the glyph procedure of a Type 3 font.
func (e *executor) drawType3Glyph(fr *frame, f *font.Font, code byte, trm matrix.Matrix) {
	stm := f.CharProc(code)
	if stm == nil {
		return
	}
	if fr.depth >= maxFormDepth {
		e.warnOnce("deeply nested Type 3 glyphs")
		return
	}
	body, err := pdf.DecodeStream(e.r, stm, 0)
	if err != nil {
		e.log.Warn("skipping Type 3 glyph", "code", code, "err", err)
		return
	}
	defer body.Close()

	res := f.Resources
	if res == nil {
		res = fr.res
	}

	e.stack = append(e.stack, e.state)
	e.c.Save()
	path, pendingClip := e.path, e.pendingClip
	inText, tm, tlm := e.inText, e.tm, e.tlm
	e.path, e.pendingClip = Path{}, false

	e.ctm = f.Matrix.Mul(trm)
	err = e.run(body, res, e.ctm, fr.depth+1)
	if err != nil {
		e.log.Warn("Type 3 glyph", "code", code, "err", err)
	}

	e.c.Restore()
	e.state = e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	e.path, e.pendingClip = path, pendingClip
	e.inText, e.tm, e.tlm = inText, tm, tlm
}
