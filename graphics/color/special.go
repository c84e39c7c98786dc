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
	"fmt"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/function"
)

// SpaceSeparation is a Separation color space.
type SpaceSeparation struct {
	Colorant  pdf.Name
	Alternate Space
	Transform function.Func
}

func (rd *reader) readSeparation(args pdf.Array, depth int) (Space, error) {
	if len(args) < 3 {
		return nil, pdf.Error("Separation: not enough parameters")
	}
	colorant, err := pdf.GetName(rd.r, args[0])
	if err != nil {
		return nil, pdf.Wrap(err, "Separation colorant")
	}
	alt, fn, err := rd.readTint(args[1], args[2], 1, depth)
	if err != nil {
		return nil, pdf.Wrap(err, "Separation")
	}
	return &SpaceSeparation{Colorant: colorant, Alternate: alt, Transform: fn}, nil
}

// Family implements the [Space] interface.
func (s *SpaceSeparation) Family() pdf.Name { return FamilySeparation }

// Components implements the [Space] interface.
func (s *SpaceSeparation) Components() int { return 1 }

// DefaultDecode implements the [Space] interface.
func (s *SpaceSeparation) DefaultDecode(int) []float64 { return []float64{0, 1} }

// Initial implements the [Space] interface.
func (s *SpaceSeparation) Initial() []float64 { return []float64{1} }

// ToRGB implements the [Space] interface.
func (s *SpaceSeparation) ToRGB(c []float64) (r, g, b float64) {
	if s.Colorant == "None" {
		return 1, 1, 1
	}
	return tintToRGB(s.Alternate, s.Transform, c)
}

// SpaceDeviceN is a DeviceN color space.
type SpaceDeviceN struct {
	Colorants []pdf.Name
	Alternate Space
	Transform function.Func
}

func (rd *reader) readDeviceN(args pdf.Array, depth int) (Space, error) {
	if len(args) < 3 {
		return nil, pdf.Error("DeviceN: not enough parameters")
	}
	names, err := pdf.GetArray(rd.r, args[0])
	if err != nil {
		return nil, pdf.Wrap(err, "DeviceN colorants")
	}
	if len(names) == 0 {
		return nil, pdf.Error("DeviceN: no colorants")
	}
	colorants := make([]pdf.Name, len(names))
	for i, obj := range names {
		colorants[i], err = pdf.GetName(rd.r, obj)
		if err != nil {
			return nil, pdf.Wrap(err, "DeviceN colorants")
		}
	}
	alt, fn, err := rd.readTint(args[1], args[2], len(colorants), depth)
	if err != nil {
		return nil, pdf.Wrap(err, "DeviceN")
	}
	return &SpaceDeviceN{Colorants: colorants, Alternate: alt, Transform: fn}, nil
}

// Family implements the [Space] interface.
func (s *SpaceDeviceN) Family() pdf.Name { return FamilyDeviceN }

// Components implements the [Space] interface.
func (s *SpaceDeviceN) Components() int { return len(s.Colorants) }

// DefaultDecode implements the [Space] interface.
func (s *SpaceDeviceN) DefaultDecode(int) []float64 { return unitDecode(len(s.Colorants)) }

// Initial implements the [Space] interface.
func (s *SpaceDeviceN) Initial() []float64 {
	res := make([]float64, len(s.Colorants))
	for i := range res {
		res[i] = 1
	}
	return res
}

// ToRGB implements the [Space] interface.
func (s *SpaceDeviceN) ToRGB(c []float64) (r, g, b float64) {
	return tintToRGB(s.Alternate, s.Transform, c)
}

// readTint reads the alternate space and the tint transform of a
// Separation or DeviceN color space.
func (rd *reader) readTint(altObj, fnObj pdf.Object, n, depth int) (Space, function.Func, error) {
	alt, err := rd.read(altObj, depth+1, true)
	if err != nil {
		return nil, nil, err
	}
	switch alt.Family() {
	case FamilyPattern, FamilyIndexed, FamilySeparation, FamilyDeviceN:
		return nil, nil, pdf.Error(fmt.Sprintf("invalid alternate space %s", alt.Family()))
	}
	fn, err := function.Read(rd.r, fnObj)
	if err != nil {
		return nil, nil, err
	}
	m, k := fn.Shape()
	if m != n || k != alt.Components() {
		return nil, nil, pdf.Error(fmt.Sprintf("tint transform has shape %d->%d, need %d->%d",
			m, k, n, alt.Components()))
	}
	return alt, fn, nil
}

func tintToRGB(alt Space, fn function.Func, c []float64) (r, g, b float64) {
	in := make([]float64, len(c))
	for i, v := range c {
		in[i] = clamp01(v)
	}
	return alt.ToRGB(fn.Apply(in...))
}
