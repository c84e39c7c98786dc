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
	"errors"
	"fmt"
	"image"
	stdcolor "image/color"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/filter"
	"seehuhn.de/go/pdfraster/graphics/color"
)

// ErrUnsupportedFilter is returned for images which use an image codec
// which cannot be decoded, e.g. JPXDecode.
var ErrUnsupportedFilter = errors.New("unsupported image filter")

// Options control how images are decoded.
type Options struct {
	// Resources is used to look up named color spaces.
	Resources *pdf.Dict

	// Fill is the color used to paint stencil masks.
	Fill stdcolor.NRGBA
}

// Decode decodes the image XObject stm.
//
// Masks and soft masks are applied to the alpha channel of the result.
// If the mask and the image have different sizes, the smaller of the two
// is scaled to the size of the larger one.
func Decode(r pdf.Getter, stm *pdf.Stream, opt *Options) (*image.NRGBA, error) {
	if opt == nil {
		opt = &Options{}
	}
	d, err := ReadDict(r, stm, opt.Resources)
	if err != nil {
		return nil, err
	}
	return d.Load(r, opt)
}

// Load decodes the image data.
func (d *Dict) Load(r pdf.Getter, opt *Options) (*image.NRGBA, error) {
	if opt == nil {
		opt = &Options{}
	}
	if d.ImageMask {
		alpha, err := d.stencilAlpha(r)
		if err != nil {
			return nil, err
		}
		return paintStencil(alpha, opt.Fill), nil
	}

	img, err := d.decodeBase(r)
	if err != nil {
		return nil, err
	}

	switch {
	case d.SMask != nil:
		img, err = d.applySoftMask(r, img)
	case d.Mask != nil:
		img, err = d.applyMask(r, img)
	}
	if err != nil {
		pdf.LoggerFor(r).Warn("ignoring broken image mask", "err", err)
	}
	return img, nil
}

// decodeBase decodes the color data of the image, including color key
// masking.
func (d *Dict) decodeBase(r pdf.Getter) (*image.NRGBA, error) {
	switch d.Filter {
	case filter.DCT:
		return d.decodeJPEG(r)
	case filter.JPX, filter.JBIG2:
		return nil, fmt.Errorf("%w %s", ErrUnsupportedFilter, d.Filter)
	}

	data, err := d.readData(r, d.ColorSpace.Components())
	if err != nil {
		return nil, err
	}
	if d.BitsPerComponent == 8 && d.ColorKey == nil && d.hasDefaultDecode() {
		return d.decodeFast(data), nil
	}
	return d.decodeGeneral(data), nil
}

// readData reads the decoded stream data.  Missing data at the end of the
// stream is filled with zeros.
func (d *Dict) readData(r pdf.Getter, n int) ([]byte, error) {
	data, err := pdf.ReadAll(r, d.Stream)
	if err != nil {
		return nil, err
	}
	need := d.rowBytes(n) * d.Height
	if len(data) < need {
		pdf.LoggerFor(r).Warn("image data too short",
			"have", len(data), "need", need)
		data = append(data, make([]byte, need-len(data))...)
	}
	return data, nil
}

// decodeFast converts 8-bit samples with the default decode array.
func (d *Dict) decodeFast(data []byte) *image.NRGBA {
	w, h := d.Width, d.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cs := d.ColorSpace
	n := cs.Components()
	stride := d.rowBytes(n)

	switch {
	case cs == color.DeviceRGB:
		for y := range h {
			row := data[y*stride:]
			out := img.Pix[y*img.Stride:]
			for x := range w {
				copy(out[4*x:4*x+3], row[3*x:3*x+3])
				out[4*x+3] = 255
			}
		}
	case cs == color.DeviceGray:
		for y := range h {
			row := data[y*stride:]
			out := img.Pix[y*img.Stride:]
			for x := range w {
				v := row[x]
				out[4*x], out[4*x+1], out[4*x+2], out[4*x+3] = v, v, v, 255
			}
		}
	case n == 1:
		lut := singleLUT(cs, cs.DefaultDecode(8))
		for y := range h {
			row := data[y*stride:]
			out := img.Pix[y*img.Stride:]
			for x := range w {
				v := lut[row[x]]
				out[4*x], out[4*x+1], out[4*x+2], out[4*x+3] = v[0], v[1], v[2], 255
			}
		}
	default:
		decode := cs.DefaultDecode(8)
		c := make([]float64, n)
		for y := range h {
			row := data[y*stride:]
			out := img.Pix[y*img.Stride:]
			for x := range w {
				for j := range n {
					lo, hi := decode[2*j], decode[2*j+1]
					c[j] = lo + float64(row[n*x+j])*(hi-lo)/255
				}
				setRGB(out[4*x:], cs, c)
			}
		}
	}
	return img
}

// decodeGeneral converts samples of any depth, applying the decode array
// and color key masking.
func (d *Dict) decodeGeneral(data []byte) *image.NRGBA {
	w, h := d.Width, d.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cs := d.ColorSpace
	n := cs.Components()
	stride := d.rowBytes(n)
	decode := d.decodeArray()
	maxVal := float64(int(1)<<d.BitsPerComponent - 1)
	key := d.ColorKey

	row := newPixRow(d.BitsPerComponent)
	c := make([]float64, n)
	for y := range h {
		row.reset(data[y*stride : (y+1)*stride])
		out := img.Pix[y*img.Stride:]
		for x := range w {
			masked := key != nil
			for j := range n {
				s := row.readBits()
				if masked && (int(s) < key[2*j] || int(s) > key[2*j+1]) {
					masked = false
				}
				c[j] = decode[2*j] + float64(s)*(decode[2*j+1]-decode[2*j])/maxVal
			}
			if masked {
				// leave the pixel transparent
				continue
			}
			setRGB(out[4*x:], cs, c)
		}
	}
	return img
}

// singleLUT returns the RGB values for all 256 sample values of a
// single-component color space.
func singleLUT(cs color.Space, decode []float64) *[256][3]uint8 {
	lut := new([256][3]uint8)
	lo, hi := decode[0], decode[1]
	c := make([]float64, 1)
	for s := range lut {
		c[0] = lo + float64(s)*(hi-lo)/255
		r, g, b := cs.ToRGB(c)
		lut[s] = [3]uint8{toByte(r), toByte(g), toByte(b)}
	}
	return lut
}

func setRGB(out []byte, cs color.Space, c []float64) {
	r, g, b := cs.ToRGB(c)
	out[0] = toByte(r)
	out[1] = toByte(g)
	out[2] = toByte(b)
	out[3] = 255
}

func toByte(v float64) uint8 {
	return uint8(pdf.Clamp(v, 0, 1)*255 + 0.5)
}
