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

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/filter"
	"seehuhn.de/go/pdfraster/graphics/color"
)

// maxPixels limits the size of images which are decoded.
const maxPixels = 1 << 28

// Dict describes an image XObject.
type Dict struct {
	Width, Height    int
	BitsPerComponent int

	// ColorSpace is nil for DCT encoded images without a /ColorSpace
	// entry.  In this case the color space is taken from the JPEG data.
	ColorSpace color.Space

	// Decode is nil if the image uses the default decode array.
	Decode []float64

	ImageMask bool

	// Mask is an explicit mask, i.e. a stencil mask image.
	Mask *pdf.Stream

	// ColorKey holds the ranges for color key masking, as pairs of
	// minimum and maximum raw sample values for each component.
	ColorKey []int

	SMask       *pdf.Stream
	Interpolate bool

	Stream *pdf.Stream

	// Filter is the last filter of the stream.
	Filter string
}

// ReadDict reads the image dictionary of stm.  Named color spaces are
// looked up in the resource dictionary res.  The abbreviated keys used
// for inline images are accepted.
func ReadDict(r pdf.Getter, stm *pdf.Stream, res *pdf.Dict) (*Dict, error) {
	if stm == nil {
		return nil, errors.New("missing image stream")
	}
	get := func(key, abbr pdf.Name) pdf.Object {
		if obj := stm.Get(r, key); obj != nil {
			return obj
		}
		return stm.Get(r, abbr)
	}
	getInt := func(key, abbr pdf.Name) int {
		x, _ := pdf.GetNumber(r, get(key, abbr))
		return int(x)
	}

	d := &Dict{
		Width:            getInt("Width", "W"),
		Height:           getInt("Height", "H"),
		BitsPerComponent: getInt("BitsPerComponent", "BPC"),
		Stream:           stm,
	}
	if d.Width <= 0 || d.Height <= 0 || d.Width > maxPixels/d.Height {
		return nil, &pdf.MalformedFileError{
			Err: fmt.Errorf("invalid image size %dx%d", d.Width, d.Height),
		}
	}
	im, _ := pdf.GetBoolean(r, get("ImageMask", "IM"))
	d.ImageMask = bool(im)
	interp, _ := pdf.GetBoolean(r, get("Interpolate", "I"))
	d.Interpolate = bool(interp)

	filters, err := pdf.Filters(r, stm)
	if err != nil {
		return nil, err
	}
	if len(filters) > 0 {
		d.Filter = string(filters[len(filters)-1].Name)
	}

	if d.ImageMask {
		d.BitsPerComponent = 1
		d.ColorSpace = color.DeviceGray
	} else {
		csObj := get("ColorSpace", "CS")
		switch {
		case csObj != nil:
			d.ColorSpace = color.New(r, csObj, res)
		case d.Filter != filter.DCT && d.Filter != filter.JPX:
			return nil, &pdf.MalformedFileError{Err: errors.New("image without color space")}
		}
		if d.ColorSpace != nil && d.ColorSpace.Family() == color.FamilyPattern {
			return nil, &pdf.MalformedFileError{Err: errors.New("image with Pattern color space")}
		}
		if d.Filter == filter.DCT && d.BitsPerComponent == 0 {
			d.BitsPerComponent = 8
		}
	}
	switch d.BitsPerComponent {
	case 1, 2, 4, 8, 16:
	default:
		if d.Filter != filter.JPX {
			return nil, &pdf.MalformedFileError{
				Err: fmt.Errorf("invalid BitsPerComponent %d", d.BitsPerComponent),
			}
		}
	}

	decode := pdf.Floats(r, get("Decode", "D"))
	if d.ColorSpace != nil && len(decode) == 2*d.ColorSpace.Components() {
		d.Decode = decode
	}

	switch mask := stm.Get(r, "Mask").(type) {
	case *pdf.Stream:
		d.Mask = mask
	case pdf.Array:
		key := pdf.Floats(r, mask)
		if d.ColorSpace != nil && len(key) == 2*d.ColorSpace.Components() {
			d.ColorKey = make([]int, len(key))
			for i, x := range key {
				d.ColorKey[i] = int(x)
			}
		}
	}
	d.SMask = stm.GetStream(r, "SMask")

	return d, nil
}

// decodeArray returns the Decode array to use for the image.
func (d *Dict) decodeArray() []float64 {
	if d.Decode != nil {
		return d.Decode
	}
	return d.ColorSpace.DefaultDecode(d.BitsPerComponent)
}

// hasDefaultDecode reports whether the image uses the default decode array
// of its color space.
func (d *Dict) hasDefaultDecode() bool {
	if d.Decode == nil {
		return true
	}
	def := d.ColorSpace.DefaultDecode(d.BitsPerComponent)
	for i, x := range d.Decode {
		if x != def[i] {
			return false
		}
	}
	return true
}

// rowBytes returns the number of bytes per row of sample data.
func (d *Dict) rowBytes(n int) int {
	return (d.Width*n*d.BitsPerComponent + 7) / 8
}
