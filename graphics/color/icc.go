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
	"strings"

	"seehuhn.de/go/icc"
	"seehuhn.de/go/pdfraster"
)

// SpaceICCBased is an ICC-based color space.
//
// Colors are converted using the color space of the embedded profile.  If
// the profile cannot be used, the conversion is done by Alternate instead.
type SpaceICCBased struct {
	N      int
	Ranges []float64

	// Alternate is the color space used for conversion when the profile
	// is unusable.  It is nil if the profile is used.
	Alternate Space

	toRGB func(c []float64) (r, g, b float64)
}

// Family implements the [Space] interface.
func (s *SpaceICCBased) Family() pdf.Name { return FamilyICCBased }

// Components implements the [Space] interface.
func (s *SpaceICCBased) Components() int { return s.N }

// DefaultDecode implements the [Space] interface.
func (s *SpaceICCBased) DefaultDecode(int) []float64 {
	return append([]float64(nil), s.Ranges...)
}

// Initial implements the [Space] interface.
func (s *SpaceICCBased) Initial() []float64 {
	res := make([]float64, s.N)
	for i := range res {
		res[i] = pdf.Clamp(0, s.Ranges[2*i], s.Ranges[2*i+1])
	}
	return res
}

// ToRGB implements the [Space] interface.
func (s *SpaceICCBased) ToRGB(c []float64) (r, g, b float64) {
	return s.toRGB(c)
}

// iccCandidate is one step of the fallback chain for ICCBased color
// spaces.  Each step either returns a usable color space or the reason
// why it cannot be used.
type iccCandidate struct {
	name string
	try  func() (*SpaceICCBased, error)
}

func (rd *reader) readICCBased(stm *pdf.Stream, depth int) (Space, error) {
	n := stm.GetInt(rd.r, "N", 0)
	if n != 0 && n != 1 && n != 3 && n != 4 {
		return nil, &pdf.MalformedFileError{Err: fmt.Errorf("ICCBased: invalid /N %d", n)}
	}
	rng := stm.GetFloats(rd.r, "Range")

	chain := []iccCandidate{
		{"profile", func() (*SpaceICCBased, error) {
			return rd.iccFromProfile(stm, n)
		}},
		{"alternate", func() (*SpaceICCBased, error) {
			return rd.iccFromAlternate(stm.Get(rd.r, "Alternate"), n, rng, depth)
		}},
		{"N", func() (*SpaceICCBased, error) {
			return iccFromN(n, rng)
		}},
	}

	var reasons []string
	for _, c := range chain {
		s, err := c.try()
		if err != nil {
			reasons = append(reasons, c.name+": "+err.Error())
			continue
		}
		if len(reasons) > 0 {
			pdf.LoggerFor(rd.r).Warn("ICC profile not used",
				"using", c.name, "reasons", strings.Join(reasons, "; "))
		}
		return s, nil
	}
	return nil, &pdf.MalformedFileError{
		Err: errors.New("ICCBased: " + strings.Join(reasons, "; ")),
	}
}

func (rd *reader) iccFromProfile(stm *pdf.Stream, n int) (*SpaceICCBased, error) {
	data, err := pdf.ReadAll(rd.r, stm)
	if err != nil {
		return nil, err
	}
	p, err := icc.Decode(data)
	if err != nil {
		return nil, err
	}

	res := &SpaceICCBased{N: p.ColorSpace.NumComponents()}
	switch p.ColorSpace {
	case icc.GraySpace:
		res.Ranges = []float64{0, 1}
		res.toRGB = DeviceGray.ToRGB
	case icc.RGBSpace:
		res.Ranges = unitDecode(3)
		res.toRGB = DeviceRGB.ToRGB
	case icc.CMYKSpace:
		res.Ranges = unitDecode(4)
		res.toRGB = DeviceCMYK.ToRGB
	case icc.CIELabSpace:
		res.Ranges = []float64{0, 100, -128, 127, -128, 127}
		res.toRGB = func(c []float64) (r, g, b float64) {
			X, Y, Z := labToXYZ(pdf.Clamp(c[0], 0, 100),
				pdf.Clamp(c[1], -128, 127), pdf.Clamp(c[2], -128, 127), whiteD50)
			return xyzToSRGB(X, Y, Z)
		}
	default:
		return nil, fmt.Errorf("unsupported profile color space %v", p.ColorSpace)
	}
	if n != 0 && n != res.N {
		return nil, fmt.Errorf("profile has %d components, /N is %d", res.N, n)
	}
	return res, nil
}

func (rd *reader) iccFromAlternate(desc pdf.Object, n int, rng []float64, depth int) (*SpaceICCBased, error) {
	if desc == nil {
		return nil, errors.New("no /Alternate")
	}
	alt, err := rd.read(desc, depth+1, false)
	if err != nil {
		return nil, err
	}
	if alt.Family() == FamilyPattern || alt.Family() == FamilyIndexed {
		return nil, fmt.Errorf("invalid alternate %s", alt.Family())
	}
	m := alt.Components()
	if n != 0 && m != n {
		return nil, fmt.Errorf("alternate has %d components, /N is %d", m, n)
	}
	return &SpaceICCBased{
		N:         m,
		Ranges:    iccRanges(m, rng),
		Alternate: alt,
		toRGB:     alt.ToRGB,
	}, nil
}

func iccFromN(n int, rng []float64) (*SpaceICCBased, error) {
	alt := deviceSpace(n)
	if alt == nil {
		return nil, errors.New("missing /N")
	}
	return &SpaceICCBased{
		N:         n,
		Ranges:    iccRanges(n, rng),
		Alternate: alt,
		toRGB:     alt.ToRGB,
	}, nil
}

func iccRanges(n int, rng []float64) []float64 {
	if len(rng) == 2*n {
		return rng
	}
	return unitDecode(n)
}
