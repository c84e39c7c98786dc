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
	"errors"
	"fmt"

	"seehuhn.de/go/pdfraster"
)

// Func is a PDF function.
type Func interface {
	// Shape returns the number of input and output values of the function.
	Shape() (int, int)

	// Apply evaluates the function.  The number of inputs must match
	// the first return value of Shape.  Inputs outside the domain are
	// clipped.
	Apply(inputs ...float64) []float64
}

// maxDepth limits the nesting of stitching functions.
const maxDepth = 16

// Read reads a function from a PDF file.
//
// If obj is an array of functions, the result is a [Parallel] function
// which combines the outputs of all functions in the array.  This form is
// used by shadings.
func Read(r pdf.Getter, obj pdf.Object) (Func, error) {
	return read(r, obj, 0)
}

func read(r pdf.Getter, obj pdf.Object, depth int) (Func, error) {
	if depth > maxDepth {
		return nil, &pdf.MalformedFileError{Err: errors.New("functions nested too deeply")}
	}

	ref, isIndirect := obj.(pdf.Reference)
	obj, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	var dict *pdf.Dict
	var stm *pdf.Stream
	switch x := obj.(type) {
	case pdf.Array:
		if len(x) == 0 {
			return nil, pdf.Error("empty function array")
		}
		res := make(Parallel, len(x))
		for i, elem := range x {
			f, err := read(r, elem, depth+1)
			if err != nil {
				return nil, err
			}
			if m, _ := f.Shape(); m != 1 {
				return nil, pdf.Error("function array elements must have one input")
			}
			res[i] = f
		}
		return res, nil
	case *pdf.Dict:
		dict = x
	case *pdf.Stream:
		dict = x.Dict
		stm = x
	case nil:
		return nil, pdf.Error("missing function")
	default:
		return nil, pdf.Error(fmt.Sprintf("invalid function object %s", pdf.Format(obj)))
	}

	var f Func
	switch tp := dict.GetInt(r, "FunctionType", -1); tp {
	case 0:
		if stm == nil {
			return nil, newInvalidFunctionError(0, "object", "must be a stream")
		}
		f, err = readType0(r, stm)
	case 2:
		f, err = readType2(r, dict)
	case 3:
		f, err = readType3(r, dict, depth)
	case 4:
		if stm == nil {
			return nil, newInvalidFunctionError(4, "object", "must be a stream")
		}
		f, err = readType4(r, stm)
	default:
		err = &pdf.MalformedFileError{Err: fmt.Errorf("unsupported function type %d", tp)}
	}
	if err != nil && isIndirect {
		err = pdf.Wrap(err, ref.String())
	}
	return f, err
}

// Parallel combines several functions with the same inputs.  The outputs
// of the individual functions are concatenated.
type Parallel []Func

// Shape implements the [Func] interface.
func (p Parallel) Shape() (int, int) {
	var m, n int
	for _, f := range p {
		fm, fn := f.Shape()
		m = max(m, fm)
		n += fn
	}
	return m, n
}

// Apply implements the [Func] interface.
func (p Parallel) Apply(inputs ...float64) []float64 {
	var res []float64
	for _, f := range p {
		res = append(res, f.Apply(inputs...)...)
	}
	return res
}

// readDomain reads the /Domain entry, which every function must have.
func readDomain(r pdf.Getter, dict *pdf.Dict, tp int) ([]float64, error) {
	domain := dict.GetFloats(r, "Domain")
	if !checkRanges(domain) {
		return nil, newInvalidFunctionError(tp, "Domain", "%v", domain)
	}
	return domain, nil
}

func checkInputs(m int, inputs []float64) {
	if len(inputs) != m {
		panic(fmt.Sprintf("function: expected %d inputs, got %d", m, len(inputs)))
	}
}
