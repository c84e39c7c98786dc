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

package shading

import (
	"bytes"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfraster"
)

func grayRamp() *pdf.Dict {
	return pdf.NewDict(
		"FunctionType", pdf.Integer(2),
		"Domain", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
		"C0", pdf.Array{pdf.Real(0)},
		"C1", pdf.Array{pdf.Real(1)},
		"N", pdf.Integer(1))
}

func readTest(t *testing.T, r pdf.Getter, obj pdf.Object) Shading {
	t.Helper()
	sh, err := Read(r, obj)
	if err != nil {
		t.Fatal(err)
	}
	return sh
}

func TestAxialEndpoints(t *testing.T) {
	dict := pdf.NewDict(
		"ShadingType", pdf.Integer(2),
		"ColorSpace", pdf.Name("DeviceGray"),
		"Coords", pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(100), pdf.Integer(0)},
		"Domain", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
		"Function", grayRamp())
	sh := readTest(t, nil, dict)
	if sh.ShadingType() != 2 {
		t.Fatalf("wrong shading type %d", sh.ShadingType())
	}

	img := sh.Rasterize(matrix.Identity, image.Rect(-20, 0, 130, 1))
	for _, x := range []int{-10, 110} {
		if a := img.NRGBAAt(x, 0).A; a != 0 {
			t.Errorf("pixel at x=%d painted (alpha %d)", x, a)
		}
	}
	c := img.NRGBAAt(50, 0)
	if c.A != 255 || c.R < 126 || c.R > 130 || c.R != c.G || c.G != c.B {
		t.Errorf("unexpected color %v at x=50", c)
	}
	if c := img.NRGBAAt(0, 0); c.A != 255 || c.R > 2 {
		t.Errorf("unexpected color %v at x=0", c)
	}
}

func TestAxialExtendAndBackground(t *testing.T) {
	dict := pdf.NewDict(
		"ShadingType", pdf.Integer(2),
		"ColorSpace", pdf.Name("DeviceGray"),
		"Coords", pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(100), pdf.Integer(0)},
		"Extend", pdf.Array{pdf.Boolean(true), pdf.Boolean(false)},
		"Background", pdf.Array{pdf.Real(0.5)},
		"Function", grayRamp())
	sh := readTest(t, nil, dict)

	img := sh.Rasterize(matrix.Identity, image.Rect(-20, 0, 130, 1))
	if c := img.NRGBAAt(-10, 0); c.A != 255 || c.R != 0 {
		t.Errorf("extended start: got %v", c)
	}
	if c := img.NRGBAAt(110, 0); c.A != 255 || c.R != 128 {
		t.Errorf("background: got %v", c)
	}
}

func TestWithoutBackground(t *testing.T) {
	dict := pdf.NewDict(
		"ShadingType", pdf.Integer(2),
		"ColorSpace", pdf.Name("DeviceGray"),
		"Coords", pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(100), pdf.Integer(0)},
		"Background", pdf.Array{pdf.Real(0.5)},
		"Function", grayRamp())
	sh := readTest(t, nil, dict)

	plain := WithoutBackground(sh)
	img := plain.Rasterize(matrix.Identity, image.Rect(-20, 0, 130, 1))
	if c := img.NRGBAAt(110, 0); c.A != 0 {
		t.Errorf("background painted: got %v", c)
	}
	if c := img.NRGBAAt(50, 0); c.A != 255 {
		t.Errorf("shading not painted: got %v", c)
	}

	// the original shading is unchanged
	img = sh.Rasterize(matrix.Identity, image.Rect(-20, 0, 130, 1))
	if c := img.NRGBAAt(110, 0); c.A != 255 || c.R != 128 {
		t.Errorf("background: got %v", c)
	}
}

func TestRadial(t *testing.T) {
	dict := pdf.NewDict(
		"ShadingType", pdf.Integer(3),
		"ColorSpace", pdf.Name("DeviceGray"),
		"Coords", pdf.Array{
			pdf.Integer(50), pdf.Integer(50), pdf.Integer(0),
			pdf.Integer(50), pdf.Integer(50), pdf.Integer(50),
		},
		"Function", grayRamp())
	sh := readTest(t, nil, dict)

	img := sh.Rasterize(matrix.Identity, image.Rect(0, 0, 100, 100))
	if c := img.NRGBAAt(50, 50); c.A != 255 || c.R > 8 {
		t.Errorf("center: got %v", c)
	}
	if c := img.NRGBAAt(89, 50); c.A != 255 || c.R < 190 || c.R > 210 {
		t.Errorf("at radius 39.5: got %v", c)
	}
	if c := img.NRGBAAt(2, 2); c.A != 0 {
		t.Errorf("outside: got %v", c)
	}
}

func TestFunctionBased(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	fn, err := doc.NewStream(pdf.NewDict(
		"FunctionType", pdf.Integer(4),
		"Domain", pdf.Array{pdf.Integer(0), pdf.Integer(1), pdf.Integer(0), pdf.Integer(1)},
		"Range", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
	), bytes.NewReader([]byte("{ add 2 div }")))
	if err != nil {
		t.Fatal(err)
	}
	dict := pdf.NewDict(
		"ShadingType", pdf.Integer(1),
		"ColorSpace", pdf.Name("DeviceGray"),
		"Matrix", pdf.Array{
			pdf.Integer(10), pdf.Integer(0), pdf.Integer(0),
			pdf.Integer(10), pdf.Integer(0), pdf.Integer(0),
		},
		"Function", fn)
	sh := readTest(t, doc, dict)

	img := sh.Rasterize(matrix.Identity, image.Rect(0, 0, 20, 20))
	if c := img.NRGBAAt(5, 5); c.A != 255 || c.R < 138 || c.R > 142 {
		t.Errorf("inside domain: got %v", c)
	}
	if c := img.NRGBAAt(15, 5); c.A != 0 {
		t.Errorf("outside domain: got %v", c)
	}
}

func TestFunctionShape(t *testing.T) {
	fn := pdf.NewDict(
		"FunctionType", pdf.Integer(2),
		"Domain", pdf.Array{pdf.Integer(0), pdf.Integer(1)},
		"C0", pdf.Array{pdf.Real(0), pdf.Real(0), pdf.Real(1)},
		"C1", pdf.Array{pdf.Real(1), pdf.Real(0), pdf.Real(0)},
		"N", pdf.Integer(1))
	dict := pdf.NewDict(
		"ShadingType", pdf.Integer(1),
		"ColorSpace", pdf.Name("DeviceRGB"),
		"Domain", pdf.Array{pdf.Integer(0), pdf.Integer(1), pdf.Integer(0), pdf.Integer(1)},
		"Matrix", pdf.Array{
			pdf.Integer(10), pdf.Integer(0), pdf.Integer(0),
			pdf.Integer(10), pdf.Integer(0), pdf.Integer(0),
		},
		"Function", pdf.Array{fn, fn})
	_, err := Read(nil, dict)
	if err == nil {
		t.Error("function with wrong number of inputs accepted")
	}
}

func TestDegenerateTriangle(t *testing.T) {
	p := vec.Vec2{X: 5, Y: 5}
	tri := newTriangle([3]vec.Vec2{p, p, p},
		[3][]float64{{0.3}, {0.6}, {0.9}})
	if tri.degree != 1 {
		t.Fatalf("degree %d, want 1", tri.degree)
	}
	for _, q := range []vec.Vec2{p, {X: 0, Y: 0}, {X: 100, Y: -7}} {
		got := tri.calcColor(q)
		if d := cmp.Diff([]float64{0.6}, got, cmp.Comparer(near)); d != "" {
			t.Errorf("calcColor(%v): %s", q, d)
		}
	}
}

func TestLineTriangle(t *testing.T) {
	a := vec.Vec2{X: 0, Y: 0}
	b := vec.Vec2{X: 10, Y: 0}
	tri := newTriangle([3]vec.Vec2{a, a, b},
		[3][]float64{{0}, {0.2}, {1}})
	if tri.degree != 2 {
		t.Fatalf("degree %d, want 2", tri.degree)
	}

	// the coinciding corners contribute their mean color
	cases := []struct {
		p    vec.Vec2
		want float64
	}{
		{vec.Vec2{X: 0, Y: 3}, 0.1},
		{vec.Vec2{X: 10, Y: 0}, 1},
		{vec.Vec2{X: 5, Y: 0}, 0.55},
		{vec.Vec2{X: 20, Y: 0}, 1},
	}
	for _, c := range cases {
		got := tri.calcColor(c.p)
		if !near(got[0], c.want) {
			t.Errorf("calcColor(%v) = %g, want %g", c.p, got[0], c.want)
		}
	}
}

func TestBarycentric(t *testing.T) {
	tri := newTriangle(
		[3]vec.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}},
		[3][]float64{{0}, {1}, {0.5}})
	if tri.degree != 3 {
		t.Fatalf("degree %d, want 3", tri.degree)
	}
	for i, p := range tri.P {
		got := tri.calcColor(p)
		if !near(got[0], tri.Color[i][0]) {
			t.Errorf("corner %d: got %g", i, got[0])
		}
	}
	if !tri.contains(vec.Vec2{X: 2, Y: 2}) {
		t.Error("inner point not contained")
	}
	if tri.contains(vec.Vec2{X: 8, Y: 8}) {
		t.Error("outer point contained")
	}
}

func TestBitReader(t *testing.T) {
	br := &bitReader{data: []byte{0b10110011, 0xFF}}
	var got []uint32
	for _, n := range []int{3, 5} {
		x, err := br.read(n)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, x)
	}
	br.align()
	x, err := br.read(4)
	if err != nil {
		t.Fatal(err)
	}
	got = append(got, x)
	br.align()
	if br.hasMore() {
		t.Error("unexpected data after align")
	}
	if _, err := br.read(1); err != errMeshData {
		t.Errorf("read past end: %v", err)
	}
	if d := cmp.Diff([]uint32{5, 19, 15}, got); d != "" {
		t.Error(d)
	}
}

func TestBresenham(t *testing.T) {
	var got [][2]int
	bresenham(vec.Vec2{X: 0.5, Y: 0.5}, vec.Vec2{X: 4.5, Y: 2.5}, func(x, y int) {
		got = append(got, [2]int{x, y})
	})
	if len(got) != 5 {
		t.Fatalf("got %d pixels, want 5: %v", len(got), got)
	}
	if got[0] != [2]int{0, 0} || got[4] != [2]int{4, 2} {
		t.Errorf("wrong end points: %v", got)
	}
}

func meshStream(t *testing.T, doc *pdf.Document, tp int, data []byte) *pdf.Stream {
	t.Helper()
	dict := pdf.NewDict(
		"ShadingType", pdf.Integer(tp),
		"ColorSpace", pdf.Name("DeviceGray"),
		"BitsPerCoordinate", pdf.Integer(8),
		"BitsPerComponent", pdf.Integer(8),
		"BitsPerFlag", pdf.Integer(8),
		"Decode", pdf.Array{
			pdf.Integer(0), pdf.Integer(255),
			pdf.Integer(0), pdf.Integer(255),
			pdf.Integer(0), pdf.Integer(1),
		})
	stm, err := doc.NewStream(dict, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return stm
}

func TestFreeFormMesh(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	data := []byte{
		0, 0, 0, 255,
		0, 20, 0, 255,
		0, 0, 20, 255,
		1, 20, 20, 0, // shares the edge (20,0)-(0,20)
	}
	sh := readTest(t, doc, meshStream(t, doc, 4, data))
	mesh := sh.(*Type4)
	if len(mesh.Triangles) != 2 {
		t.Fatalf("got %d triangles, want 2", len(mesh.Triangles))
	}
	if p := mesh.Triangles[1][0].P; p != (vec.Vec2{X: 20, Y: 0}) {
		t.Errorf("second triangle starts at %v", p)
	}

	img := sh.Rasterize(matrix.Identity, image.Rect(0, 0, 30, 30))
	if c := img.NRGBAAt(2, 2); c.A != 255 || c.R != 255 {
		t.Errorf("inside first triangle: got %v", c)
	}
	if c := img.NRGBAAt(25, 25); c.A != 0 {
		t.Errorf("outside: got %v", c)
	}
	if c := img.NRGBAAt(18, 18); c.A != 255 || c.R > 100 {
		t.Errorf("inside second triangle: got %v", c)
	}
}

func TestCoonsPatch(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	// a square with straight edges, in stream order
	coords := []byte{
		0, 0, 0, 10, 0, 20, 0, 30,
		10, 30, 20, 30, 30, 30,
		30, 20, 30, 10, 30, 0,
		20, 0, 10, 0,
	}
	data := append([]byte{0}, coords...)
	data = append(data, 255, 255, 255, 255)

	sh := readTest(t, doc, meshStream(t, doc, 6, data))
	mesh := sh.(*Type6)
	if len(mesh.Patches) != 1 {
		t.Fatalf("got %d patches, want 1", len(mesh.Patches))
	}
	pa := &mesh.Patches[0]
	if p := pa.P[gridIndex[1][1]]; !near(p.X, 10) || !near(p.Y, 10) {
		t.Errorf("p11 = %v, want (10, 10)", p)
	}
	if p := pa.eval(0.5, 0.5); !near(p.X, 15) || !near(p.Y, 15) {
		t.Errorf("center = %v, want (15, 15)", p)
	}

	img := sh.Rasterize(matrix.Identity, image.Rect(0, 0, 40, 40))
	if c := img.NRGBAAt(15, 15); c.A != 255 || c.R != 255 {
		t.Errorf("inside: got %v", c)
	}
	if c := img.NRGBAAt(35, 35); c.A != 0 {
		t.Errorf("outside: got %v", c)
	}
}

func TestSingularCTM(t *testing.T) {
	dict := pdf.NewDict(
		"ShadingType", pdf.Integer(2),
		"ColorSpace", pdf.Name("DeviceGray"),
		"Coords", pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(100), pdf.Integer(0)},
		"Background", pdf.Array{pdf.Real(1)},
		"Function", grayRamp())
	sh := readTest(t, nil, dict)
	img := sh.Rasterize(matrix.Scale(0, 0), image.Rect(0, 0, 10, 10))
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatal("singular matrix painted pixels")
		}
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

func TestFreeFormMeshEdgeFlags(t *testing.T) {
	a := vec.Vec2{X: 0, Y: 0}
	b := vec.Vec2{X: 20, Y: 0}
	c := vec.Vec2{X: 0, Y: 20}
	v := vec.Vec2{X: 20, Y: 20}
	cases := []struct {
		flag byte
		want [3]vec.Vec2
	}{
		{1, [3]vec.Vec2{b, c, v}},
		{2, [3]vec.Vec2{a, c, v}},
	}
	for _, tc := range cases {
		doc := pdf.New(nil)
		data := []byte{
			0, 0, 0, 255,
			0, 20, 0, 255,
			0, 0, 20, 255,
			tc.flag, 20, 20, 0,
		}
		mesh := readTest(t, doc, meshStream(t, doc, 4, data)).(*Type4)
		if len(mesh.Triangles) != 2 {
			t.Fatalf("flag %d: got %d triangles, want 2", tc.flag, len(mesh.Triangles))
		}
		var got [3]vec.Vec2
		for i, vert := range mesh.Triangles[1] {
			got[i] = vert.P
		}
		if d := cmp.Diff(tc.want, got); d != "" {
			t.Errorf("flag %d: %s", tc.flag, d)
		}
		doc.Close()
	}
}

func TestLatticeMesh(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	data := []byte{
		0, 0, 0, 20, 0, 255,
		0, 20, 0, 20, 20, 255,
		0, 40, 0, // incomplete row
	}
	stm := meshStream(t, doc, 5, data)
	stm.Dict.Set("VerticesPerRow", pdf.Integer(2))
	sh := readTest(t, doc, stm)
	mesh := sh.(*Type5)
	if len(mesh.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(mesh.Rows))
	}

	img := sh.Rasterize(matrix.Identity, image.Rect(0, 0, 30, 30))
	if c := img.NRGBAAt(5, 10); c.A != 255 || c.R < 66 || c.R > 74 {
		t.Errorf("at x=5.5: got %v", c)
	}
	if c := img.NRGBAAt(15, 3); c.A != 255 || c.R < 193 || c.R > 201 {
		t.Errorf("at x=15.5: got %v", c)
	}
	if c := img.NRGBAAt(25, 10); c.A != 0 {
		t.Errorf("outside: got %v", c)
	}
}

func TestLatticeMeshRowLength(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	stm := meshStream(t, doc, 5, []byte{0, 0, 0})
	stm.Dict.Set("VerticesPerRow", pdf.Integer(1))
	if _, err := Read(doc, stm); err == nil {
		t.Error("missing error for /VerticesPerRow 1")
	}
}

// squarePatch is a Coons patch covering the square [0, 30]x[0, 30], with
// the corner colors 0, 1/3, 2/3 and 1.
var squarePatch = []byte{
	0,
	0, 0, 0, 10, 0, 20, 0, 30,
	10, 30, 20, 30, 30, 30,
	30, 20, 30, 10, 30, 0,
	20, 0, 10, 0,
	0, 85, 170, 255,
}

func TestPatchEdgeFlags(t *testing.T) {
	for flag := byte(1); flag <= 3; flag++ {
		doc := pdf.New(nil)
		data := append([]byte{}, squarePatch...)
		data = append(data, flag)
		for i := range 8 {
			data = append(data, byte(40+i), byte(50+i))
		}
		data = append(data, 10, 20)

		mesh := readTest(t, doc, meshStream(t, doc, 6, data)).(*Type6)
		if len(mesh.Patches) != 2 {
			t.Fatalf("flag %d: got %d patches, want 2", flag, len(mesh.Patches))
		}
		prev, next := &mesh.Patches[0], &mesh.Patches[1]
		conn := edgeConnections[flag]
		for i, k := range conn.points {
			if next.P[i] != prev.P[k] {
				t.Errorf("flag %d: point %d is %v, want %v", flag, i, next.P[i], prev.P[k])
			}
		}
		for i, k := range conn.colors {
			if d := cmp.Diff(prev.Color[k], next.Color[i]); d != "" {
				t.Errorf("flag %d: color %d: %s", flag, i, d)
			}
		}
		if p := next.P[4]; p != (vec.Vec2{X: 40, Y: 50}) {
			t.Errorf("flag %d: first new point is %v", flag, p)
		}
		if c := next.Color[3]; len(c) != 1 || !near(c[0], 20.0/255) {
			t.Errorf("flag %d: last color is %v", flag, c)
		}
		doc.Close()
	}
}

func TestPatchEdgeFlagWithoutPrevious(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	data := append([]byte{}, squarePatch...)
	data[0] = 2
	mesh := readTest(t, doc, meshStream(t, doc, 6, data)).(*Type6)
	if len(mesh.Patches) != 0 {
		t.Errorf("got %d patches, want 0", len(mesh.Patches))
	}
}

func TestTensorPatch(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	data := []byte{
		0,
		0, 0, 0, 10, 0, 20, 0, 30,
		10, 30, 20, 30, 30, 30,
		30, 20, 30, 10, 30, 0,
		20, 0, 10, 0,
		10, 10, 10, 20, 20, 20, 20, 10, // p11 p12 p22 p21
		0, 0, 255, 255,
	}
	sh := readTest(t, doc, meshStream(t, doc, 7, data))
	if sh.ShadingType() != 7 {
		t.Fatalf("wrong shading type %d", sh.ShadingType())
	}
	mesh := sh.(*Type7)
	if len(mesh.Patches) != 1 {
		t.Fatalf("got %d patches, want 1", len(mesh.Patches))
	}
	pa := &mesh.Patches[0]
	if p := pa.P[gridIndex[1][2]]; p != (vec.Vec2{X: 10, Y: 20}) {
		t.Errorf("p12 = %v, want (10, 20)", p)
	}
	if p := pa.eval(0.5, 0.5); !near(p.X, 15) || !near(p.Y, 15) {
		t.Errorf("center = %v, want (15, 15)", p)
	}

	img := sh.Rasterize(matrix.Identity, image.Rect(0, 0, 40, 40))
	if c := img.NRGBAAt(15, 15); c.A != 255 || c.R < 125 || c.R > 138 {
		t.Errorf("center pixel: got %v", c)
	}
	if c := img.NRGBAAt(35, 5); c.A != 0 {
		t.Errorf("outside: got %v", c)
	}
}
