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

package function

import (
	"math"

	"seehuhn.de/go/pdfraster"
)

// Type2 is an exponential interpolation function of the form
// y = C0 + x^N × (C1 - C0).  The function has a single input.
type Type2 struct {
	// XMin and XMax give the domain of the function.
	XMin, XMax float64

	// Range optionally gives clipping ranges for the outputs.
	Range []float64

	// C0 is the function value at x = 0.
	C0 []float64

	// C1 is the function value at x = 1.
	C1 []float64

	// N is the interpolation exponent.
	N float64
}

// Shape implements the [Func] interface.
func (f *Type2) Shape() (int, int) {
	return 1, len(f.C0)
}

// Apply implements the [Func] interface.
func (f *Type2) Apply(inputs ...float64) []float64 {
	checkInputs(1, inputs)
	x := clip(inputs[0], f.XMin, f.XMax)

	var xN float64
	switch f.N {
	case 0:
		xN = 1
	case 1:
		xN = x
	default:
		xN = math.Pow(x, f.N)
	}

	res := make([]float64, len(f.C0))
	for i, c0 := range f.C0 {
		res[i] = c0 + xN*(f.C1[i]-c0)
	}
	clipOutputs(res, f.Range)
	return res
}

func readType2(r pdf.Getter, d *pdf.Dict) (*Type2, error) {
	domain, err := readDomain(r, d, 2)
	if err != nil {
		return nil, err
	}

	c0 := []float64{0}
	if d.Has("C0") {
		c0 = d.GetFloats(r, "C0")
	}
	c1 := []float64{1}
	if d.Has("C1") {
		c1 = d.GetFloats(r, "C1")
	}
	if len(c0) == 0 || len(c0) != len(c1) {
		return nil, newInvalidFunctionError(2, "C0/C1", "lengths %d and %d", len(c0), len(c1))
	}

	n := d.GetFloat(r, "N", math.NaN())
	if !isFinite(n) {
		return nil, newInvalidFunctionError(2, "N", "missing or invalid")
	}

	f := &Type2{
		XMin:  domain[0],
		XMax:  domain[1],
		Range: d.GetFloats(r, "Range"),
		C0:    c0,
		C1:    c1,
		N:     n,
	}
	if n != math.Trunc(n) && f.XMin < 0 {
		// x^N is undefined for negative x
		f.XMin = 0
		f.XMax = max(f.XMax, 0)
	}
	return f, nil
}
