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
	"image"
	"image/jpeg"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/graphics/color"
)

// decodeJPEG decodes a DCTDecode image.  The filters before DCTDecode
// are applied by the pdf package, the JPEG data itself is decoded by
// image/jpeg.
//
// image/jpeg already undoes the inversion used by Adobe CMYK JPEG files.
func (d *Dict) decodeJPEG(r pdf.Getter) (*image.NRGBA, error) {
	rc, err := pdf.DecodeStream(r, d.Stream, 1)
	if err != nil {
		return nil, err
	}
	src, err := jpeg.Decode(rc)
	err = errors.Join(err, rc.Close())
	if src == nil {
		return nil, err
	}

	var n int
	switch src.(type) {
	case *image.Gray:
		n = 1
	case *image.CMYK:
		n = 4
	default:
		n = 3
	}

	cs := d.ColorSpace
	decode := d.Decode
	if cs == nil || cs.Components() != n {
		if cs != nil {
			pdf.LoggerFor(r).Warn("JPEG data does not match color space",
				"space", cs.Family(), "components", n)
		}
		switch n {
		case 1:
			cs = color.DeviceGray
		case 4:
			cs = color.DeviceCMYK
		default:
			cs = color.DeviceRGB
		}
		decode = nil
	}
	if decode == nil {
		decode = cs.DefaultDecode(8)
	}

	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	raw := make([]uint8, 4)
	c := make([]float64, n)
	for y := range b.Dy() {
		out := img.Pix[y*img.Stride:]
		for x := range b.Dx() {
			sx, sy := b.Min.X+x, b.Min.Y+y
			switch src := src.(type) {
			case *image.Gray:
				raw[0] = src.GrayAt(sx, sy).Y
			case *image.CMYK:
				v := src.CMYKAt(sx, sy)
				raw[0], raw[1], raw[2], raw[3] = v.C, v.M, v.Y, v.K
			default:
				cr, cg, cb, _ := src.At(sx, sy).RGBA()
				raw[0], raw[1], raw[2] = uint8(cr>>8), uint8(cg>>8), uint8(cb>>8)
			}
			for j := range n {
				lo, hi := decode[2*j], decode[2*j+1]
				c[j] = lo + float64(raw[j])*(hi-lo)/255
			}
			setRGB(out[4*x:], cs, c)
		}
	}
	if err != nil {
		pdf.LoggerFor(r).Warn("damaged JPEG data", "err", err)
	}
	return img, nil
}
