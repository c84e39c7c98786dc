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

package filter

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zlib"
)

func decodeAll(t *testing.T, name string, parms Params, in []byte) []byte {
	t.Helper()
	r, err := Decode(bytes.NewReader(in), name, parms)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSimpleFilters(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{ASCIIHex, "48 65 6c6C6f>", "Hello"},
		{ASCIIHex, "414>", "A@"},
		{ASCIIHex, "4142", "AB"},
		{"AHx", "41>", "A"},
		{ASCII85, "87cURD_*#TDfTZ)+T~>", "Hello, world!"},
		{ASCII85, "z@:E^~>", "\x00\x00\x00\x00abc"},
		{ASCII85, "87cU\nRD_*#TDfTZ)+T", "Hello, world!"},
		{RunLength, "\x02abc\xfdx\x80", "abcxxxx"},
		{RunLength, "\x00q", "q"},
	}
	for _, c := range cases {
		got := decodeAll(t, c.name, nil, []byte(c.in))
		if d := cmp.Diff(c.want, string(got)); d != "" {
			t.Errorf("%s(%q): (-want +got):\n%s", c.name, c.in, d)
		}
	}
}

func TestASCII85Invalid(t *testing.T) {
	r, err := Decode(bytes.NewReader([]byte("87c\x01")), ASCII85, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = io.ReadAll(r)
	if err == nil {
		t.Error("invalid character not detected")
	}
}

func TestFlate(t *testing.T) {
	data := bytes.Repeat([]byte("PDF stream data. "), 100)
	buf := &bytes.Buffer{}
	zw := zlib.NewWriter(buf)
	zw.Write(data)
	zw.Close()

	got := decodeAll(t, Flate, nil, buf.Bytes())
	if !bytes.Equal(got, data) {
		t.Errorf("wrong data: got %d bytes, want %d", len(got), len(data))
	}

	// a missing checksum is not an error
	truncated := buf.Bytes()[:buf.Len()-4]
	r, err := Decode(bytes.NewReader(truncated), Flate, nil)
	if err != nil {
		t.Fatal(err)
	}
	part, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(part, data) {
		t.Errorf("wrong data: got %d bytes, want %d", len(part), len(data))
	}
}

func TestPNGPredictor(t *testing.T) {
	// two rows of three RGB pixels, first row with Sub, second with Up
	rows := []byte{
		1, 10, 20, 30, 1, 1, 1, 2, 2, 2,
		2, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	}
	buf := &bytes.Buffer{}
	zw := zlib.NewWriter(buf)
	zw.Write(rows)
	zw.Close()

	parms := Params{"Predictor": 12, "Colors": 3, "Columns": 3}
	got := decodeAll(t, Flate, parms, buf.Bytes())
	want := []byte{
		10, 20, 30, 11, 21, 31, 13, 23, 33,
		11, 21, 31, 12, 22, 32, 14, 24, 34,
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestTIFFPredictor(t *testing.T) {
	in := io.NopCloser(bytes.NewReader([]byte{5, 1, 1, 250, 1, 10}))
	r, err := NewPredictorReader(in, &PredictorParams{
		Predictor:        2,
		Colors:           1,
		BitsPerComponent: 8,
		Columns:          3,
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{5, 6, 7, 250, 251, 5}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestTIFFPredictor4Bit(t *testing.T) {
	// components 1, +2, +3, +4 in two bytes
	in := io.NopCloser(bytes.NewReader([]byte{0x12, 0x34}))
	r, err := NewPredictorReader(in, &PredictorParams{
		Predictor:        2,
		Colors:           1,
		BitsPerComponent: 4,
		Columns:          4,
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x13, 0x6A}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestInvalidPredictor(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil), LZW, Params{"Predictor": 7})
	if err == nil {
		t.Error("invalid predictor accepted")
	}
}

func TestUnsupported(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil), "JBIG2Decode", nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("got %v, want ErrUnsupported", err)
	}
	if !IsImageCodec("DCT") || IsImageCodec(Flate) {
		t.Error("IsImageCodec is wrong")
	}
}
