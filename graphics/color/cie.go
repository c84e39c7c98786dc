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
	"math"

	"seehuhn.de/go/pdfraster"
)

// whiteD50 is the white point of the PCS used by ICC profiles.
var whiteD50 = [3]float64{0.9642, 1, 0.8249}

// SpaceCalGray is a CIE-based gray color space.
type SpaceCalGray struct {
	WhitePoint [3]float64
	Gamma      float64

	adapt [9]float64
}

func readCalGray(r pdf.Getter, dict *pdf.Dict) (*SpaceCalGray, error) {
	wp, err := readWhitePoint(r, dict)
	if err != nil {
		return nil, pdf.Wrap(err, "CalGray")
	}
	res := &SpaceCalGray{
		WhitePoint: wp,
		Gamma:      dict.GetFloat(r, "Gamma", 1),
		adapt:      bradford(wp, whiteD50),
	}
	if res.Gamma <= 0 {
		res.Gamma = 1
	}
	return res, nil
}

// Family implements the [Space] interface.
func (s *SpaceCalGray) Family() pdf.Name { return FamilyCalGray }

// Components implements the [Space] interface.
func (s *SpaceCalGray) Components() int { return 1 }

// DefaultDecode implements the [Space] interface.
func (s *SpaceCalGray) DefaultDecode(int) []float64 { return []float64{0, 1} }

// Initial implements the [Space] interface.
func (s *SpaceCalGray) Initial() []float64 { return []float64{0} }

// ToRGB implements the [Space] interface.
func (s *SpaceCalGray) ToRGB(c []float64) (r, g, b float64) {
	ag := math.Pow(clamp01(c[0]), s.Gamma)
	X := s.WhitePoint[0] * ag
	Y := s.WhitePoint[1] * ag
	Z := s.WhitePoint[2] * ag
	return xyzToSRGB(apply3(&s.adapt, X, Y, Z))
}

// SpaceCalRGB is a CIE-based RGB color space.
type SpaceCalRGB struct {
	WhitePoint [3]float64
	Gamma      [3]float64
	Matrix     [9]float64

	adapt [9]float64
}

func readCalRGB(r pdf.Getter, dict *pdf.Dict) (*SpaceCalRGB, error) {
	wp, err := readWhitePoint(r, dict)
	if err != nil {
		return nil, pdf.Wrap(err, "CalRGB")
	}
	res := &SpaceCalRGB{
		WhitePoint: wp,
		Gamma:      [3]float64{1, 1, 1},
		Matrix:     [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
		adapt:      bradford(wp, whiteD50),
	}
	if gamma := dict.GetFloats(r, "Gamma"); len(gamma) == 3 {
		for i, g := range gamma {
			if g > 0 {
				res.Gamma[i] = g
			}
		}
	}
	if m := dict.GetFloats(r, "Matrix"); len(m) == 9 {
		copy(res.Matrix[:], m)
	}
	return res, nil
}

// Family implements the [Space] interface.
func (s *SpaceCalRGB) Family() pdf.Name { return FamilyCalRGB }

// Components implements the [Space] interface.
func (s *SpaceCalRGB) Components() int { return 3 }

// DefaultDecode implements the [Space] interface.
func (s *SpaceCalRGB) DefaultDecode(int) []float64 { return unitDecode(3) }

// Initial implements the [Space] interface.
func (s *SpaceCalRGB) Initial() []float64 { return []float64{0, 0, 0} }

// ToRGB implements the [Space] interface.
func (s *SpaceCalRGB) ToRGB(c []float64) (r, g, b float64) {
	A := math.Pow(clamp01(c[0]), s.Gamma[0])
	B := math.Pow(clamp01(c[1]), s.Gamma[1])
	C := math.Pow(clamp01(c[2]), s.Gamma[2])
	m := &s.Matrix
	X := m[0]*A + m[3]*B + m[6]*C
	Y := m[1]*A + m[4]*B + m[7]*C
	Z := m[2]*A + m[5]*B + m[8]*C
	return xyzToSRGB(apply3(&s.adapt, X, Y, Z))
}

// SpaceLab is a CIE 1976 L*a*b* color space.
type SpaceLab struct {
	WhitePoint [3]float64
	Ranges     [4]float64

	adapt [9]float64
}

func readLab(r pdf.Getter, dict *pdf.Dict) (*SpaceLab, error) {
	wp, err := readWhitePoint(r, dict)
	if err != nil {
		return nil, pdf.Wrap(err, "Lab")
	}
	res := &SpaceLab{
		WhitePoint: wp,
		Ranges:     [4]float64{-100, 100, -100, 100},
		adapt:      bradford(wp, whiteD50),
	}
	if rng := dict.GetFloats(r, "Range"); len(rng) == 4 && rng[0] <= rng[1] && rng[2] <= rng[3] {
		copy(res.Ranges[:], rng)
	}
	return res, nil
}

// Family implements the [Space] interface.
func (s *SpaceLab) Family() pdf.Name { return FamilyLab }

// Components implements the [Space] interface.
func (s *SpaceLab) Components() int { return 3 }

// DefaultDecode implements the [Space] interface.
func (s *SpaceLab) DefaultDecode(int) []float64 {
	return []float64{0, 100, s.Ranges[0], s.Ranges[1], s.Ranges[2], s.Ranges[3]}
}

// Initial implements the [Space] interface.
func (s *SpaceLab) Initial() []float64 {
	a := pdf.Clamp(0, s.Ranges[0], s.Ranges[1])
	b := pdf.Clamp(0, s.Ranges[2], s.Ranges[3])
	return []float64{0, a, b}
}

// ToRGB implements the [Space] interface.
func (s *SpaceLab) ToRGB(c []float64) (r, g, b float64) {
	L := pdf.Clamp(c[0], 0, 100)
	A := pdf.Clamp(c[1], s.Ranges[0], s.Ranges[1])
	B := pdf.Clamp(c[2], s.Ranges[2], s.Ranges[3])
	X, Y, Z := labToXYZ(L, A, B, s.WhitePoint)
	return xyzToSRGB(apply3(&s.adapt, X, Y, Z))
}

func labToXYZ(L, a, b float64, white [3]float64) (X, Y, Z float64) {
	M := (L + 16) / 116
	X = white[0] * labInv(M+a/500)
	Y = white[1] * labInv(M)
	Z = white[2] * labInv(M-b/200)
	return X, Y, Z
}

func labInv(x float64) float64 {
	if x >= 6.0/29 {
		return x * x * x
	}
	return 108.0 / 841 * (x - 4.0/29)
}

func readWhitePoint(r pdf.Getter, dict *pdf.Dict) ([3]float64, error) {
	var res [3]float64
	wp := dict.GetFloats(r, "WhitePoint")
	if len(wp) != 3 || wp[0] <= 0 || wp[1] != 1 || wp[2] <= 0 {
		return res, &pdf.MalformedFileError{Err: errors.New("invalid /WhitePoint")}
	}
	copy(res[:], wp)
	return res, nil
}

var (
	bradfordM = [9]float64{
		0.8951, 0.2664, -0.1614,
		-0.7502, 1.7135, 0.0367,
		0.0389, -0.0685, 1.0296,
	}
	bradfordInv = [9]float64{
		0.9869929, -0.1470543, 0.1599627,
		0.4323053, 0.5183603, 0.0492912,
		-0.0085287, 0.0400428, 0.9684867,
	}
)

// bradford returns the matrix for the Bradford chromatic adaptation from
// white point src to white point dst.
func bradford(src, dst [3]float64) [9]float64 {
	s0, s1, s2 := apply3(&bradfordM, src[0], src[1], src[2])
	d0, d1, d2 := apply3(&bradfordM, dst[0], dst[1], dst[2])
	scale := [3]float64{d0 / s0, d1 / s1, d2 / s2}

	var res [9]float64
	for i := range 3 {
		for j := range 3 {
			var sum float64
			for k := range 3 {
				sum += bradfordInv[3*i+k] * scale[k] * bradfordM[3*k+j]
			}
			res[3*i+j] = sum
		}
	}
	return res
}

// apply3 multiplies the row-major 3x3 matrix m with a column vector.
func apply3(m *[9]float64, x, y, z float64) (float64, float64, float64) {
	return m[0]*x + m[1]*y + m[2]*z,
		m[3]*x + m[4]*y + m[5]*z,
		m[6]*x + m[7]*y + m[8]*z
}

// xyzToSRGB converts CIE XYZ relative to D50 to sRGB.
func xyzToSRGB(X, Y, Z float64) (r, g, b float64) {
	// Bradford chromatic adaptation D50 to D65
	X2 := 0.9555766*X - 0.0230393*Y + 0.0631636*Z
	Y2 := -0.0282895*X + 1.0099416*Y + 0.0210077*Z
	Z2 := 0.0122982*X - 0.0204830*Y + 1.3299098*Z

	// XYZ (D65) to linear sRGB
	rLin := 3.2404542*X2 - 1.5371385*Y2 - 0.4985314*Z2
	gLin := -0.9692660*X2 + 1.8760108*Y2 + 0.0415560*Z2
	bLin := 0.0556434*X2 - 0.2040259*Y2 + 1.0572252*Z2

	r = srgbGamma(rLin)
	g = srgbGamma(gLin)
	b = srgbGamma(bLin)
	return clamp01(r), clamp01(g), clamp01(b)
}

func srgbGamma(v float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}
