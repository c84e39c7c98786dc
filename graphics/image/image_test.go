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

package image

import (
	"bytes"
	"errors"
	"image"
	stdcolor "image/color"
	"image/jpeg"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfraster"
)

func newStream(t *testing.T, doc *pdf.Document, data []byte, kv ...any) *pdf.Stream {
	t.Helper()
	stm, err := doc.NewStream(pdf.NewDict(kv...), bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return stm
}

// pixels returns the NRGBA values of all pixels, in row order.
func pixels(img *image.NRGBA) [][4]uint8 {
	b := img.Bounds()
	var res [][4]uint8
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			res = append(res, [4]uint8{c.R, c.G, c.B, c.A})
		}
	}
	return res
}

func decodeTest(t *testing.T, doc *pdf.Document, stm *pdf.Stream, opt *Options) *image.NRGBA {
	t.Helper()
	img, err := Decode(doc, stm, opt)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestGrayRoundTrip(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	stm := newStream(t, doc, []byte{0, 128, 255, 64},
		"Width", pdf.Integer(2), "Height", pdf.Integer(2),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray"))
	img := decodeTest(t, doc, stm, nil)

	want := [][4]uint8{
		{0, 0, 0, 255}, {128, 128, 128, 255},
		{255, 255, 255, 255}, {64, 64, 64, 255},
	}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestFastAndGeneralAgree(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	data := []byte{10, 20, 30, 200, 100, 50, 0, 0, 0, 255, 255, 255}
	kv := []any{
		"Width", pdf.Integer(2), "Height", pdf.Integer(2),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceRGB"),
	}
	fast := decodeTest(t, doc, newStream(t, doc, data, kv...), nil)

	d, err := ReadDict(doc, newStream(t, doc, data, kv...), nil)
	if err != nil {
		t.Fatal(err)
	}
	general := d.decodeGeneral(data)
	if d := cmp.Diff(pixels(fast), pixels(general)); d != "" {
		t.Error(d)
	}
}

func TestDecodeArray(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	stm := newStream(t, doc, []byte{0, 255, 51},
		"Width", pdf.Integer(3), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray"),
		"Decode", pdf.Array{pdf.Integer(1), pdf.Integer(0)})
	img := decodeTest(t, doc, stm, nil)

	want := [][4]uint8{{255, 255, 255, 255}, {0, 0, 0, 255}, {204, 204, 204, 255}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestLowBitDepth(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	// 4 bits per component, 3 pixels: 0, 15, 5 (padded to a full byte)
	stm := newStream(t, doc, []byte{0x0F, 0x50},
		"Width", pdf.Integer(3), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(4),
		"ColorSpace", pdf.Name("DeviceGray"))
	img := decodeTest(t, doc, stm, nil)

	want := [][4]uint8{{0, 0, 0, 255}, {255, 255, 255, 255}, {85, 85, 85, 255}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}

	// 16 bits per component
	stm = newStream(t, doc, []byte{0xFF, 0xFF, 0x00, 0x00},
		"Width", pdf.Integer(2), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(16),
		"ColorSpace", pdf.Name("DeviceGray"))
	img = decodeTest(t, doc, stm, nil)
	want = [][4]uint8{{255, 255, 255, 255}, {0, 0, 0, 255}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestIndexed(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	cs := pdf.Array{
		pdf.Name("Indexed"), pdf.Name("DeviceRGB"), pdf.Integer(1),
		pdf.String{255, 0, 0, 0, 0, 255},
	}
	// 1 bit per component: indices 0 and 1
	stm := newStream(t, doc, []byte{0x40},
		"Width", pdf.Integer(2), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(1),
		"ColorSpace", cs)
	img := decodeTest(t, doc, stm, nil)
	want := [][4]uint8{{255, 0, 0, 255}, {0, 0, 255, 255}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}

	// 8 bits per component, with an out-of-range index
	stm = newStream(t, doc, []byte{1, 0, 7},
		"Width", pdf.Integer(3), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", cs)
	img = decodeTest(t, doc, stm, nil)
	want = [][4]uint8{{0, 0, 255, 255}, {255, 0, 0, 255}, {0, 0, 255, 255}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestColorKey(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	stm := newStream(t, doc, []byte{200, 100, 50, 1, 2, 3},
		"Width", pdf.Integer(2), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceRGB"),
		"Mask", pdf.Array{
			pdf.Integer(190), pdf.Integer(210),
			pdf.Integer(100), pdf.Integer(100),
			pdf.Integer(0), pdf.Integer(60),
		})
	img := decodeTest(t, doc, stm, nil)
	want := [][4]uint8{{0, 0, 0, 0}, {1, 2, 3, 255}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestSoftMask(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	smask := newStream(t, doc, []byte{128},
		"Type", pdf.Name("XObject"), "Subtype", pdf.Name("Image"),
		"Width", pdf.Integer(1), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray"))
	stm := newStream(t, doc, []byte{200, 100, 50},
		"Width", pdf.Integer(1), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceRGB"),
		"SMask", smask)
	img := decodeTest(t, doc, stm, nil)

	want := [][4]uint8{{200, 100, 50, 128}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestSoftMaskResample(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	// mask larger than the image: the image is scaled up
	smask := newStream(t, doc, []byte{0, 255, 255, 0},
		"Width", pdf.Integer(2), "Height", pdf.Integer(2),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray"))
	stm := newStream(t, doc, []byte{10, 20, 30},
		"Width", pdf.Integer(1), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceRGB"),
		"SMask", smask)
	img := decodeTest(t, doc, stm, nil)
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("wrong size %v", img.Bounds())
	}
	want := [][4]uint8{{10, 20, 30, 0}, {10, 20, 30, 255}, {10, 20, 30, 255}, {10, 20, 30, 0}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}

	// mask smaller than the image: the mask is scaled up
	smask = newStream(t, doc, []byte{64},
		"Width", pdf.Integer(1), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray"))
	stm = newStream(t, doc, []byte{1, 2, 3, 4},
		"Width", pdf.Integer(2), "Height", pdf.Integer(2),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray"),
		"SMask", smask)
	img = decodeTest(t, doc, stm, nil)
	want = [][4]uint8{{1, 1, 1, 64}, {2, 2, 2, 64}, {3, 3, 3, 64}, {4, 4, 4, 64}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestExplicitMask(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	// sample 1 masks out the pixel
	mask := newStream(t, doc, []byte{0x40},
		"Width", pdf.Integer(2), "Height", pdf.Integer(1),
		"ImageMask", pdf.Boolean(true))
	stm := newStream(t, doc, []byte{10, 20},
		"Width", pdf.Integer(2), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray"),
		"Mask", mask)
	img := decodeTest(t, doc, stm, nil)
	want := [][4]uint8{{10, 10, 10, 255}, {20, 20, 20, 0}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestStencil(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	fill := stdcolor.NRGBA{R: 255, G: 0, B: 0, A: 255}
	red := [4]uint8{255, 0, 0, 255}
	none := [4]uint8{}

	stm := newStream(t, doc, []byte{0xF0},
		"Width", pdf.Integer(8), "Height", pdf.Integer(1),
		"ImageMask", pdf.Boolean(true))
	img := decodeTest(t, doc, stm, &Options{Fill: fill})
	want := [][4]uint8{none, none, none, none, red, red, red, red}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}

	stm = newStream(t, doc, []byte{0xF0},
		"Width", pdf.Integer(8), "Height", pdf.Integer(1),
		"ImageMask", pdf.Boolean(true),
		"Decode", pdf.Array{pdf.Integer(1), pdf.Integer(0)})
	img = decodeTest(t, doc, stm, &Options{Fill: fill})
	want = [][4]uint8{red, red, red, red, none, none, none, none}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestShortData(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	stm := newStream(t, doc, []byte{255},
		"Width", pdf.Integer(2), "Height", pdf.Integer(2),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray"))
	img := decodeTest(t, doc, stm, nil)
	want := [][4]uint8{{255, 255, 255, 255}, {0, 0, 0, 255}, {0, 0, 0, 255}, {0, 0, 0, 255}}
	if d := cmp.Diff(want, pixels(img)); d != "" {
		t.Error(d)
	}
}

func TestJPEG(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	src := image.NewGray(image.Rect(0, 0, 16, 8))
	for i := range src.Pix {
		src.Pix[i] = 100
	}
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, src, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}

	stm := newStream(t, doc, buf.Bytes(),
		"Width", pdf.Integer(16), "Height", pdf.Integer(8),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray"),
		"Filter", pdf.Name("DCTDecode"))
	img := decodeTest(t, doc, stm, nil)
	if img.Bounds() != image.Rect(0, 0, 16, 8) {
		t.Fatalf("wrong size %v", img.Bounds())
	}
	for _, px := range pixels(img) {
		if px[0] < 97 || px[0] > 103 || px[0] != px[1] || px[3] != 255 {
			t.Fatalf("unexpected pixel %v", px)
		}
	}
}

func TestUnsupported(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	stm := newStream(t, doc, []byte("not decoded"),
		"Width", pdf.Integer(16), "Height", pdf.Integer(8),
		"Filter", pdf.Name("JPXDecode"))
	_, err := Decode(doc, stm, nil)
	if !errors.Is(err, ErrUnsupportedFilter) {
		t.Errorf("expected ErrUnsupportedFilter, got %v", err)
	}

	for _, kv := range [][]any{
		{"Width", pdf.Integer(0), "Height", pdf.Integer(1)},
		{"Width", pdf.Integer(1), "Height", pdf.Integer(1), "BitsPerComponent", pdf.Integer(8)},
		{"Width", pdf.Integer(1), "Height", pdf.Integer(1), "BitsPerComponent", pdf.Integer(3),
			"ColorSpace", pdf.Name("DeviceGray")},
	} {
		stm := newStream(t, doc, []byte{0}, kv...)
		if _, err := Decode(doc, stm, nil); !pdf.IsMalformed(err) {
			t.Errorf("%v: expected malformed file error, got %v", kv, err)
		}
	}
}

func TestCache(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	ref := doc.Alloc()
	doc.Put(ref, newStream(t, doc, []byte{7},
		"Width", pdf.Integer(1), "Height", pdf.Integer(1),
		"BitsPerComponent", pdf.Integer(8),
		"ColorSpace", pdf.Name("DeviceGray")))

	c := NewCache(4)
	img1, err := c.Decode(doc, ref, nil)
	if err != nil {
		t.Fatal(err)
	}
	img2, err := c.Decode(doc, ref, nil)
	if err != nil {
		t.Fatal(err)
	}
	if img1 != img2 {
		t.Error("image decoded twice")
	}
	if c.Len() != 1 {
		t.Errorf("wrong cache size %d", c.Len())
	}

	c.Evict(1)
	if c.Len() != 0 {
		t.Errorf("wrong cache size %d after Evict", c.Len())
	}
	img3, err := c.Decode(doc, ref, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(pixels(img1), pixels(img3)); d != "" {
		t.Error(d)
	}

	if _, err := c.Decode(doc, doc.Alloc(), nil); err == nil {
		t.Error("missing image decoded")
	}
}
