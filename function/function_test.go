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
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"seehuhn.de/go/pdfraster"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestIsRange(t *testing.T) {
	cases := []struct {
		x, y  float64
		valid bool
	}{
		{0, 1, true},
		{1, 0, false},
		{0, 0, true},
		{math.NaN(), 1, false},
		{1, math.NaN(), false},
		{math.Inf(-1), 0, false},
		{0, math.Inf(1), false},
	}
	for i, c := range cases {
		if isRange(c.x, c.y) != c.valid {
			t.Errorf("%d: isRange(%f, %f) != %v", i, c.x, c.y, c.valid)
		}
	}
}

func TestType0Linear(t *testing.T) {
	f := &Type0{
		Domain:        []float64{0, 1},
		Range:         []float64{0, 1},
		Size:          []int{3},
		BitsPerSample: 8,
		Encode:        []float64{0, 2},
		Decode:        []float64{0, 1},
		Samples:       []byte{0, 255, 51},
	}
	cases := []struct{ in, out float64 }{
		{-1, 0},
		{0, 0},
		{0.25, 0.5},
		{0.5, 1},
		{0.75, 0.6},
		{1, 0.2},
		{2, 0.2},
	}
	for _, c := range cases {
		got := f.Apply(c.in)
		if d := cmp.Diff([]float64{c.out}, got, approx); d != "" {
			t.Errorf("f(%g): %s", c.in, d)
		}
	}
}

func TestType0TwoInputs(t *testing.T) {
	// 2x2 grid, first dimension varies fastest
	f := &Type0{
		Domain:        []float64{0, 1, 0, 1},
		Range:         []float64{0, 255},
		Size:          []int{2, 2},
		BitsPerSample: 8,
		Encode:        []float64{0, 1, 0, 1},
		Decode:        []float64{0, 255},
		Samples:       []byte{0, 100, 20, 200},
	}
	cases := []struct {
		x, y float64
		out  float64
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 1, 20},
		{1, 1, 200},
		{0.5, 0.5, 80},
	}
	for _, c := range cases {
		got := f.Apply(c.x, c.y)
		if d := cmp.Diff([]float64{c.out}, got, approx); d != "" {
			t.Errorf("f(%g, %g): %s", c.x, c.y, d)
		}
	}
}

func TestType0Packed(t *testing.T) {
	f := &Type0{
		Domain:        []float64{0, 3},
		Range:         []float64{0, 15},
		Size:          []int{4},
		BitsPerSample: 4,
		Encode:        []float64{0, 3},
		Decode:        []float64{0, 15},
		Samples:       []byte{0x1F, 0x7C},
	}
	want := []float64{1, 15, 7, 12}
	for i, w := range want {
		got := f.Apply(float64(i))
		if d := cmp.Diff([]float64{w}, got, approx); d != "" {
			t.Errorf("f(%d): %s", i, d)
		}
	}

	f.BitsPerSample = 12
	f.Range = []float64{0, 4095}
	f.Decode = []float64{0, 4095}
	f.Size = []int{1}
	f.Domain = []float64{0, 1}
	f.Encode = []float64{0, 0}
	if got := f.Apply(0.5); got[0] != 0x1F7 {
		t.Errorf("12 bit sample: got %g", got[0])
	}
}

func TestType2(t *testing.T) {
	f := &Type2{
		XMin: 0,
		XMax: 1,
		C0:   []float64{0, 1},
		C1:   []float64{1, 0},
		N:    2,
	}
	got := f.Apply(0.5)
	if d := cmp.Diff([]float64{0.25, 0.75}, got, approx); d != "" {
		t.Error(d)
	}
	got = f.Apply(7)
	if d := cmp.Diff([]float64{1, 0}, got, approx); d != "" {
		t.Error(d)
	}
}

func TestType3(t *testing.T) {
	lin := func(a, b float64) Func {
		return &Type2{XMin: 0, XMax: 1, C0: []float64{a}, C1: []float64{b}, N: 1}
	}
	f := &Type3{
		XMin:      0,
		XMax:      1,
		Functions: []Func{lin(0, 1), lin(10, 20)},
		Bounds:    []float64{0.5},
		Encode:    []float64{0, 1, 0, 1},
	}
	cases := []struct{ in, out float64 }{
		{0, 0},
		{0.25, 0.5},
		{0.5, 10},
		{0.75, 15},
		{1, 20},
	}
	for _, c := range cases {
		got := f.Apply(c.in)
		if d := cmp.Diff([]float64{c.out}, got, approx); d != "" {
			t.Errorf("f(%g): %s", c.in, d)
		}
	}
}

func TestType3Degenerate(t *testing.T) {
	constant := func(v float64) Func {
		return &Type2{XMin: 0, XMax: 1, C0: []float64{v}, C1: []float64{v}, N: 1}
	}
	f := &Type3{
		XMin:      0,
		XMax:      1,
		Functions: []Func{constant(1), constant(2)},
		Bounds:    []float64{0},
		Encode:    []float64{0, 1, 0, 1},
	}
	if got := f.Apply(0); got[0] != 1 {
		t.Errorf("f(0) = %g", got[0])
	}
	if got := f.Apply(0.1); got[0] != 2 {
		t.Errorf("f(0.1) = %g", got[0])
	}
}

func TestReadType2(t *testing.T) {
	dict := pdf.NewDict(
		"FunctionType", pdf.Integer(2),
		"Domain", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
		"C0", pdf.Array{pdf.Real(0.5)},
		"N", pdf.Integer(1),
	)
	f, err := Read(nil, dict)
	if err != nil {
		t.Fatal(err)
	}
	m, n := f.Shape()
	if m != 1 || n != 1 {
		t.Fatalf("wrong shape %d, %d", m, n)
	}
	_, err = Read(nil, pdf.NewDict("FunctionType", pdf.Integer(2)))
	if !errors.Is(err, &InvalidFunctionError{}) {
		t.Errorf("got %v, want InvalidFunctionError", err)
	}
	if !pdf.IsMalformed(err) {
		t.Errorf("%v is not marked as malformed", err)
	}
}

func TestReadStreams(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	sampled, err := doc.NewStream(pdf.NewDict(
		"FunctionType", pdf.Integer(0),
		"Domain", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
		"Range", pdf.Array{pdf.Integer(0), pdf.Integer(1), pdf.Integer(0), pdf.Integer(1)},
		"Size", pdf.Array{pdf.Integer(2)},
		"BitsPerSample", pdf.Integer(8),
	), bytes.NewReader([]byte{0, 255, 255, 0}))
	if err != nil {
		t.Fatal(err)
	}
	ref := doc.Alloc()
	doc.Put(ref, sampled)

	calc, err := doc.NewStream(pdf.NewDict(
		"FunctionType", pdf.Integer(4),
		"Domain", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
		"Range", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
	), bytes.NewReader([]byte("{ 1 exch sub }")))
	if err != nil {
		t.Fatal(err)
	}

	f, err := Read(doc, pdf.Array{ref, calc})
	if err != nil {
		t.Fatal(err)
	}
	got := f.Apply(0.25)
	if d := cmp.Diff([]float64{0.25, 0.75, 0.75}, got, approx); d != "" {
		t.Error(d)
	}
}

func TestReadLoop(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	ref := doc.Alloc()
	doc.Put(ref, pdf.NewDict(
		"FunctionType", pdf.Integer(3),
		"Domain", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
		"Functions", pdf.Array{ref},
		"Encode", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
	))
	_, err := Read(doc, ref)
	if err == nil {
		t.Error("self-referencing function accepted")
	}
}
