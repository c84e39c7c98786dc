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
	"seehuhn.de/go/pdfraster"
)

// Type3 is a stitching function.  It combines several 1-input functions,
// each applied to one subinterval of the domain.
type Type3 struct {
	// XMin and XMax give the domain of the function.
	XMin, XMax float64

	// Range optionally gives clipping ranges for the outputs.
	Range []float64

	// Functions holds the k functions to be combined.
	Functions []Func

	// Bounds holds the k-1 boundaries between the subdomains, in
	// increasing order.
	Bounds []float64

	// Encode maps each subdomain to the domain of the corresponding
	// function, as [min0, max0, min1, max1, ...].
	Encode []float64
}

// Shape implements the [Func] interface.
func (f *Type3) Shape() (int, int) {
	_, n := f.Functions[0].Shape()
	return 1, n
}

// Apply implements the [Func] interface.
func (f *Type3) Apply(inputs ...float64) []float64 {
	checkInputs(1, inputs)
	x := clip(inputs[0], f.XMin, f.XMax)

	k := len(f.Functions)
	i := 0
	for i < k-1 && x >= f.Bounds[i] {
		i++
	}
	// If the first subdomain is degenerate, it consists of the single
	// point XMin.
	if i > 0 && x == f.XMin && f.Bounds[0] == f.XMin {
		i = 0
	}

	lo, hi := f.XMin, f.XMax
	if i > 0 {
		lo = f.Bounds[i-1]
	}
	if i < k-1 {
		hi = f.Bounds[i]
	}
	t := interpolate(x, lo, hi, f.Encode[2*i], f.Encode[2*i+1])

	res := f.Functions[i].Apply(t)
	clipOutputs(res, f.Range)
	return res
}

func readType3(r pdf.Getter, d *pdf.Dict, depth int) (*Type3, error) {
	domain, err := readDomain(r, d, 3)
	if err != nil {
		return nil, err
	}

	fnArray := d.GetArray(r, "Functions")
	k := len(fnArray)
	if k == 0 {
		return nil, newInvalidFunctionError(3, "Functions", "missing")
	}
	fns := make([]Func, k)
	nOut := -1
	for i, obj := range fnArray {
		fn, err := read(r, obj, depth+1)
		if err != nil {
			return nil, err
		}
		m, n := fn.Shape()
		if m != 1 || nOut >= 0 && n != nOut {
			return nil, newInvalidFunctionError(3, "Functions", "inconsistent shapes")
		}
		nOut = n
		fns[i] = fn
	}

	bounds := d.GetFloats(r, "Bounds")
	if len(bounds) != k-1 {
		return nil, newInvalidFunctionError(3, "Bounds", "expected %d values, got %d", k-1, len(bounds))
	}
	prev := domain[0]
	for _, b := range bounds {
		if b < prev || b > domain[1] {
			return nil, newInvalidFunctionError(3, "Bounds", "%v", bounds)
		}
		prev = b
	}

	encode := d.GetFloats(r, "Encode")
	if len(encode) != 2*k {
		return nil, newInvalidFunctionError(3, "Encode", "expected %d values, got %d", 2*k, len(encode))
	}

	f := &Type3{
		XMin:      domain[0],
		XMax:      domain[1],
		Range:     d.GetFloats(r, "Range"),
		Functions: fns,
		Bounds:    bounds,
		Encode:    encode,
	}
	return f, nil
}
