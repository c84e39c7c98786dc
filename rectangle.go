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

package pdf

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// Rectangle represents a PDF rectangle.
type Rectangle struct {
	LLx, LLy, URx, URy float64
}

var errNoRectangle = errors.New("not a valid PDF rectangle")

// GetRectangle resolves references to indirect objects and makes sure the
// resulting object is a PDF rectangle object.
// If the object is null, nil is returned.
func GetRectangle(r Getter, obj Object) (*Rectangle, error) {
	a, err := GetArray(r, obj)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	if len(a) != 4 {
		return nil, &MalformedFileError{Err: errNoRectangle}
	}
	var values [4]float64
	for i, obj := range a {
		values[i], err = GetNumber(r, obj)
		if err != nil {
			return nil, err
		}
	}
	rect := &Rectangle{
		LLx: math.Min(values[0], values[2]),
		LLy: math.Min(values[1], values[3]),
		URx: math.Max(values[0], values[2]),
		URy: math.Max(values[1], values[3]),
	}
	return rect, nil
}

func (rect *Rectangle) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", rect.LLx, rect.LLy, rect.URx, rect.URy)
}

// PDF writes the rectangle as a PDF array.
func (rect *Rectangle) PDF(w io.Writer) error {
	res := Array{}
	for _, x := range []float64{rect.LLx, rect.LLy, rect.URx, rect.URy} {
		if i := Integer(x); float64(i) == x {
			res = append(res, i)
		} else {
			res = append(res, Real(math.Round(100*x)/100))
		}
	}
	return res.PDF(w)
}

// IsZero is true if the rectangle is the zero rectangle object.
func (rect Rectangle) IsZero() bool {
	return rect.LLx == 0 && rect.LLy == 0 && rect.URx == 0 && rect.URy == 0
}

// Dx returns the width of the rectangle.
func (rect *Rectangle) Dx() float64 {
	return rect.URx - rect.LLx
}

// Dy returns the height of the rectangle.
func (rect *Rectangle) Dy() float64 {
	return rect.URy - rect.LLy
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the boundary are inside.
func (rect *Rectangle) Contains(x, y float64) bool {
	return x >= rect.LLx && x <= rect.URx && y >= rect.LLy && y <= rect.URy
}

// Intersect returns the intersection of two rectangles.  If the
// rectangles do not overlap, the zero rectangle is returned.
func (rect *Rectangle) Intersect(other *Rectangle) *Rectangle {
	res := &Rectangle{
		LLx: max(rect.LLx, other.LLx),
		LLy: max(rect.LLy, other.LLy),
		URx: min(rect.URx, other.URx),
		URy: min(rect.URy, other.URy),
	}
	if res.LLx >= res.URx || res.LLy >= res.URy {
		return &Rectangle{}
	}
	return res
}

// PageRotation describes how a page shall be rotated when displayed or
// printed, in degrees clockwise.  The only valid values are 0, 90, 180
// and 270.
type PageRotation int

// DecodeRotation normalizes the /Rotate value of a page.  Values which are
// not multiples of 90 give an error.
func DecodeRotation(rot Integer) (PageRotation, error) {
	rot = rot % 360
	if rot < 0 {
		rot += 360
	}
	if rot%90 != 0 {
		return 0, &MalformedFileError{Err: errNoRotation}
	}
	return PageRotation(rot), nil
}

var errNoRotation = errors.New("not a valid PDF rotation")
