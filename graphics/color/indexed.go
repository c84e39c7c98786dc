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

package color

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/pdfraster"
)

// SpaceIndexed is an indexed color space.
//
// The RGB values of all palette entries are computed when the color space
// is constructed.
type SpaceIndexed struct {
	Base   Space
	HiVal  int
	Lookup []byte

	rgb [][3]float64
}

// NewIndexed returns an indexed color space with the given base space and
// lookup table.  The table holds one byte per base component for each of
// the hival+1 entries.  Missing entries are treated as zero.
func NewIndexed(base Space, hival int, lookup []byte) (*SpaceIndexed, error) {
	switch base.Family() {
	case FamilyIndexed, FamilyPattern:
		return nil, fmt.Errorf("Indexed: invalid base color space %s", base.Family())
	}
	if hival < 0 || hival > 255 {
		return nil, &pdf.MalformedFileError{Err: fmt.Errorf("Indexed: invalid hival %d", hival)}
	}

	n := base.Components()
	need := n * (hival + 1)
	if len(lookup) < need {
		lookup = append(lookup, make([]byte, need-len(lookup))...)
	}
	lookup = lookup[:need]

	ranges := base.DefaultDecode(8)
	res := &SpaceIndexed{
		Base:   base,
		HiVal:  hival,
		Lookup: lookup,
		rgb:    make([][3]float64, hival+1),
	}
	c := make([]float64, n)
	for i := range res.rgb {
		for j := range n {
			lo, hi := ranges[2*j], ranges[2*j+1]
			c[j] = lo + float64(lookup[i*n+j])*(hi-lo)/255
		}
		r, g, b := base.ToRGB(c)
		res.rgb[i] = [3]float64{r, g, b}
	}
	return res, nil
}

func (rd *reader) readIndexed(args pdf.Array, depth int) (Space, error) {
	if len(args) < 3 {
		return nil, pdf.Error("Indexed: not enough parameters")
	}
	base, err := rd.read(args[0], depth+1, true)
	if err != nil {
		return nil, pdf.Wrap(err, "Indexed base space")
	}
	hival, err := pdf.GetNumber(rd.r, args[1])
	if err != nil {
		return nil, pdf.Wrap(err, "Indexed hival")
	}

	var lookup []byte
	obj, err := pdf.Resolve(rd.r, args[2])
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case pdf.String:
		lookup = []byte(obj)
	case *pdf.Stream:
		lookup, err = pdf.ReadAll(rd.r, obj)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &pdf.MalformedFileError{Err: errors.New("Indexed: invalid lookup table")}
	}

	return NewIndexed(base, int(hival), lookup)
}

// Family implements the [Space] interface.
func (s *SpaceIndexed) Family() pdf.Name { return FamilyIndexed }

// Components implements the [Space] interface.
func (s *SpaceIndexed) Components() int { return 1 }

// DefaultDecode implements the [Space] interface.
func (s *SpaceIndexed) DefaultDecode(bpc int) []float64 {
	return []float64{0, float64(int(1)<<bpc - 1)}
}

// Initial implements the [Space] interface.
func (s *SpaceIndexed) Initial() []float64 { return []float64{0} }

// ToRGB implements the [Space] interface.
// Indices outside the range [0, HiVal] are clamped.
func (s *SpaceIndexed) ToRGB(c []float64) (r, g, b float64) {
	x := math.Round(c[0])
	if !(x > 0) {
		x = 0
	}
	v := s.rgb[int(min(x, float64(s.HiVal)))]
	return v[0], v[1], v[2]
}
