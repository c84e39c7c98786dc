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
	"strings"

	"seehuhn.de/go/pdfraster"
)

// Type4 is a PostScript calculator function.
type Type4 struct {
	// Domain gives the input ranges as [min0, max0, min1, max1, ...].
	Domain []float64

	// Range gives the output ranges as [min0, max0, min1, max1, ...].
	Range []float64

	// Program is the PostScript code, including the enclosing braces.
	Program string

	code []instruction
}

// NewType4 compiles a PostScript calculator function.
func NewType4(domain, rng []float64, program string) (*Type4, error) {
	if !checkRanges(domain) {
		return nil, newInvalidFunctionError(4, "Domain", "%v", domain)
	}
	if !checkRanges(rng) {
		return nil, newInvalidFunctionError(4, "Range", "%v", rng)
	}

	body := strings.TrimSpace(program)
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return nil, newInvalidFunctionError(4, "Program", "missing braces")
	}
	code, err := compile(body[1 : len(body)-1])
	if err != nil {
		return nil, newInvalidFunctionError(4, "Program", "%v", err)
	}

	f := &Type4{
		Domain:  domain,
		Range:   rng,
		Program: program,
		code:    code,
	}
	return f, nil
}

// Shape implements the [Func] interface.
func (f *Type4) Shape() (int, int) {
	return len(f.Domain) / 2, len(f.Range) / 2
}

// Apply implements the [Func] interface.
//
// If the program fails at run time, all outputs are set to the lower end
// of their range.
func (f *Type4) Apply(inputs ...float64) []float64 {
	m, n := f.Shape()
	checkInputs(m, inputs)

	vm := &machine{stack: make([]value, 0, 16)}
	for i, x := range inputs {
		vm.push(realVal(clip(x, f.Domain[2*i], f.Domain[2*i+1])))
	}

	res := make([]float64, n)
	err := vm.run(f.code)
	if err == nil && len(vm.stack) >= n {
		for j, v := range vm.stack[len(vm.stack)-n:] {
			res[j] = v.asFloat()
		}
	} else {
		for j := range res {
			res[j] = f.Range[2*j]
		}
	}
	clipOutputs(res, f.Range)
	return res
}

func readType4(r pdf.Getter, stm *pdf.Stream) (*Type4, error) {
	domain, err := readDomain(r, stm.Dict, 4)
	if err != nil {
		return nil, err
	}
	rng := stm.GetFloats(r, "Range")

	body, err := pdf.ReadAll(r, stm)
	if err != nil {
		return nil, err
	}
	return NewType4(domain, rng, string(body))
}
