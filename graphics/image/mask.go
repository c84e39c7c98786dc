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

package image

import (
	"image"
	stdcolor "image/color"

	xdraw "golang.org/x/image/draw"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/graphics/color"
)

// stencilAlpha decodes a stencil mask.  The result is 255 where the mask
// paints and 0 elsewhere.  By default, sample value 0 paints; a decode
// array of [1 0] reverses this.
func (d *Dict) stencilAlpha(r pdf.Getter) (*image.Gray, error) {
	data, err := d.readData(r, 1)
	if err != nil {
		return nil, err
	}
	var paint uint16
	if len(d.Decode) == 2 && d.Decode[0] > d.Decode[1] {
		paint = 1
	}

	w, h := d.Width, d.Height
	stride := d.rowBytes(1)
	res := image.NewGray(image.Rect(0, 0, w, h))
	row := newPixRow(d.BitsPerComponent)
	for y := range h {
		row.reset(data[y*stride : (y+1)*stride])
		out := res.Pix[y*res.Stride:]
		for x := range w {
			if row.readBits() == paint {
				out[x] = 255
			}
		}
	}
	return res, nil
}

// paintStencil returns an image which has the fill color where alpha is
// non-zero and is transparent elsewhere.
func paintStencil(alpha *image.Gray, fill stdcolor.NRGBA) *image.NRGBA {
	b := alpha.Bounds()
	img := image.NewNRGBA(b)
	for y := range b.Dy() {
		in := alpha.Pix[y*alpha.Stride:]
		out := img.Pix[y*img.Stride:]
		for x := range b.Dx() {
			a := uint8((uint16(in[x])*uint16(fill.A) + 127) / 255)
			if a == 0 {
				continue
			}
			out[4*x], out[4*x+1], out[4*x+2], out[4*x+3] = fill.R, fill.G, fill.B, a
		}
	}
	return img
}

// applyMask uses an explicit mask as the alpha channel of img.
func (d *Dict) applyMask(r pdf.Getter, img *image.NRGBA) (*image.NRGBA, error) {
	md, err := ReadDict(r, d.Mask, nil)
	if err != nil {
		return img, err
	}
	md.ImageMask = true
	md.BitsPerComponent = 1
	alpha, err := md.stencilAlpha(r)
	if err != nil {
		return img, err
	}
	return combine(img, alpha, d.Interpolate), nil
}

// applySoftMask uses the gray values of a soft mask image as the alpha
// channel of img.
func (d *Dict) applySoftMask(r pdf.Getter, img *image.NRGBA) (*image.NRGBA, error) {
	sd, err := ReadDict(r, d.SMask, nil)
	if err != nil {
		return img, err
	}
	if sd.ImageMask || sd.ColorSpace == nil || sd.ColorSpace.Components() != 1 {
		sd.ImageMask = false
		sd.ColorSpace = color.DeviceGray
		sd.Decode = nil
	}
	sd.SMask, sd.Mask, sd.ColorKey = nil, nil, nil
	gray, err := sd.decodeBase(r)
	if err != nil {
		return img, err
	}

	alpha := image.NewGray(gray.Bounds())
	for i := range alpha.Pix {
		alpha.Pix[i] = gray.Pix[4*i]
	}

	matte := d.SMask.GetFloats(r, "Matte")
	if d.ColorSpace != nil && len(matte) == d.ColorSpace.Components() &&
		gray.Bounds().Eq(img.Bounds()) {
		unpremultiply(img, alpha, d.ColorSpace, matte)
	}

	return combine(img, alpha, d.Interpolate || sd.Interpolate), nil
}

// unpremultiply undoes the pre-blending of image colors with the matte
// color of a soft mask.
func unpremultiply(img *image.NRGBA, alpha *image.Gray, cs color.Space, matte []float64) {
	mr, mg, mb := cs.ToRGB(matte)
	m := [3]float64{mr, mg, mb}
	for i, a := range alpha.Pix {
		if a == 0 {
			continue
		}
		af := float64(a) / 255
		px := img.Pix[4*i : 4*i+3]
		for j := range px {
			c := float64(px[j]) / 255
			px[j] = toByte(m[j] + (c-m[j])/af)
		}
	}
}

// combine sets the alpha channel of img to alpha.  If the sizes differ,
// the smaller image is scaled to the size of the larger one.
func combine(img *image.NRGBA, alpha *image.Gray, interpolate bool) *image.NRGBA {
	ib, ab := img.Bounds(), alpha.Bounds()

	var scaler xdraw.Scaler = xdraw.NearestNeighbor
	if interpolate {
		scaler = xdraw.BiLinear
	}
	if !ib.Size().Eq(ab.Size()) {
		if area(ab) > area(ib) {
			scaled := image.NewNRGBA(ab)
			scaler.Scale(scaled, ab, img, ib, xdraw.Src, nil)
			img = scaled
		} else {
			scaled := image.NewGray(ib)
			scaler.Scale(scaled, ib, alpha, ab, xdraw.Src, nil)
			alpha = scaled
		}
	}

	b := img.Bounds()
	for y := range b.Dy() {
		in := alpha.Pix[y*alpha.Stride:]
		out := img.Pix[y*img.Stride:]
		for x := range b.Dx() {
			out[4*x+3] = min(out[4*x+3], in[x])
		}
	}
	return img
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
