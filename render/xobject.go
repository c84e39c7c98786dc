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
	"math"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/graphics/color"
	pdfimage "seehuhn.de/go/pdfraster/graphics/image"
	"seehuhn.de/go/pdfraster/graphics/shading"
)

// drawXObject implements the Do operator.
func (e *executor) drawXObject(fr *frame, n pdf.Name) {
	raw, _ := fr.res.GetDict(e.r, "XObject").GetItem(n)
	stm, err := pdf.GetStream(e.r, raw)
	if err != nil || stm == nil {
		if err == nil {
			err = resourceError("XObject", n)
		}
		e.log.Warn("skipping XObject", "name", n, "err", err)
		return
	}

	switch stm.GetName(e.r, "Subtype", "") {
	case "Image":
		opt := &pdfimage.Options{
			Resources: fr.res,
			Fill:      toNRGBA(e.fillSpace, e.fillColor, 1),
		}
		var img *image.NRGBA
		if ref, ok := raw.(pdf.Reference); ok {
			img, err = e.b.images.Decode(e.r, ref, opt)
		} else {
			img, err = pdfimage.Decode(e.r, stm, opt)
		}
		if err != nil {
			e.log.Warn("skipping image", "name", n, "err", err)
			return
		}
		e.drawImage(img, stm.GetBool(e.r, "Interpolate", false))
	case "Form":
		err := e.drawForm(fr, stm)
		if err != nil {
			e.log.Warn("skipping form XObject", "name", n, "err", err)
		}
	case "PS":
		// PostScript XObjects are ignored by PDF viewers
	default:
		e.log.Warn("skipping XObject of unknown type", "name", n)
	}
}

func (e *executor) drawImage(img *image.NRGBA, interpolate bool) {
	if e.fillAlpha < 1 {
		img = fade(img, e.fillAlpha)
	}
	e.c.DrawImage(img, e.ctm, interpolate)
}

// fade returns a copy of img with the alpha channel scaled by alpha.
func fade(img *image.NRGBA, alpha float64) *image.NRGBA {
	res := image.NewNRGBA(img.Bounds())
	copy(res.Pix, img.Pix)
	a := uint8(math.Round(alpha * 255))
	for i := 3; i < len(res.Pix); i += 4 {
		res.Pix[i] = mul8(res.Pix[i], a)
	}
	return res
}

// drawForm executes the content stream of a form XObject.
func (e *executor) drawForm(fr *frame, stm *pdf.Stream) error {
	if fr.depth >= maxFormDepth {
		return errDepth
	}

	m := matrix.Identity
	if x := stm.GetFloats(e.r, "Matrix"); len(x) == 6 {
		m = matrix.Matrix(x)
	}
	res := stm.GetDict(e.r, "Resources")
	if res == nil {
		res = fr.res
	}

	body, err := pdf.DecodeStream(e.r, stm, 0)
	if err != nil {
		return err
	}
	defer body.Close()

	e.stack = append(e.stack, e.state)
	e.c.Save()
	path, pendingClip := e.path, e.pendingClip
	e.path, e.pendingClip = Path{}, false

	e.ctm = m.Mul(e.ctm)
	if bbox, _ := pdf.GetRectangle(e.r, stm.Get(e.r, "BBox")); bbox != nil {
		clip := &Path{}
		clip.Rect(bbox.LLx, bbox.LLy, bbox.Dx(), bbox.Dy())
		e.c.Clip(clip, e.ctm)
	}
	err = e.run(body, res, e.ctm, fr.depth+1)

	e.c.Restore()
	e.state = e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	e.path, e.pendingClip = path, pendingClip
	return err
}

// drawInlineImage implements the BI ... ID ... EI sequence.
func (e *executor) drawInlineImage(fr *frame, dict *pdf.Dict, data pdf.String) {
	if dict == nil {
		return
	}
	dict = dict.Clone()
	for abbr, key := range inlineFilterKeys {
		if val, ok := dict.GetItem(abbr); ok && !dict.Has(key) {
			dict.Set(key, val)
			dict.Delete(abbr)
		}
	}

	stm := pdf.NewInlineStream(dict, []byte(data))
	opt := &pdfimage.Options{
		Resources: fr.res,
		Fill:      toNRGBA(e.fillSpace, e.fillColor, 1),
	}
	img, err := pdfimage.Decode(e.r, stm, opt)
	if err != nil {
		e.log.Warn("skipping inline image", "err", err)
		return
	}
	interpolate, _ := pdf.GetBoolean(e.r, dict.Get(e.r, "I"))
	e.drawImage(img, bool(interpolate) || dict.GetBool(e.r, "Interpolate", false))
}

// inlineFilterKeys lists the abbreviated keys of inline images which are
// needed to decode the stream data.
var inlineFilterKeys = map[pdf.Name]pdf.Name{
	"F":  "Filter",
	"DP": "DecodeParms",
}

// paintShading implements the sh operator.
func (e *executor) paintShading(fr *frame, n pdf.Name) {
	obj := fr.res.GetDict(e.r, "Shading").Get(e.r, n)
	if obj == nil {
		e.log.Warn("skipping shading", "err", resourceError("shading", n))
		return
	}
	sh, err := shading.Read(e.r, obj)
	if err != nil {
		e.log.Warn("skipping shading", "name", n, "err", err)
		return
	}
	e.c.DrawShading(shading.WithoutBackground(sh), e.ctm)
}

// fillWithPattern fills p with a pattern.  Only shading patterns are
// supported.
func (e *executor) fillWithPattern(fr *frame, p *Path, pat pdf.Object) {
	dict, err := pdf.GetDict(e.r, pat)
	if err != nil || dict == nil {
		e.log.Warn("skipping pattern", "err", err)
		return
	}
	switch dict.GetInt(e.r, "PatternType", 0) {
	case 2:
		sh, err := shading.Read(e.r, dict.Get(e.r, "Shading"))
		if err != nil {
			e.log.Warn("skipping shading pattern", "err", err)
			return
		}
		m := matrix.Identity
		if x := dict.GetFloats(e.r, "Matrix"); len(x) == 6 {
			m = matrix.Matrix(x)
		}
		e.c.FillShading(p, e.ctm, sh, m.Mul(fr.base))
	case 1:
		e.warnOnce("tiling patterns")
	default:
		e.log.Warn("skipping pattern of unknown type")
	}
}

// toNRGBA converts a color to the device color space.  Invalid colors
// are mapped to black.
func toNRGBA(cs color.Space, vals []float64, alpha float64) stdcolor.NRGBA {
	if p, ok := cs.(*color.SpacePattern); ok {
		cs = p.Base
	}
	a := uint8(math.Round(pdf.Clamp(alpha, 0, 1) * 255))
	if cs == nil || len(vals) != cs.Components() {
		return stdcolor.NRGBA{A: a}
	}
	r, g, b := cs.ToRGB(vals)
	return stdcolor.NRGBA{R: toByte(r), G: toByte(g), B: toByte(b), A: a}
}

func toByte(x float64) uint8 {
	return uint8(math.Round(pdf.Clamp(x, 0, 1) * 255))
}
