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

// Package filter implements the decoding side of the PDF stream filters.
//
// Image-specific filters which produce a raster instead of a byte stream
// (DCTDecode, JPXDecode, JBIG2Decode) are not handled here; callers detect
// these using [IsImageCodec] and stop the pipeline before them.
package filter

import (
	"errors"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
	"github.com/klauspost/compress/zlib"
)

// Names of the standard filters.
const (
	ASCIIHex  = "ASCIIHexDecode"
	ASCII85   = "ASCII85Decode"
	LZW       = "LZWDecode"
	Flate     = "FlateDecode"
	RunLength = "RunLengthDecode"
	CCITTFax  = "CCITTFaxDecode"
	JBIG2     = "JBIG2Decode"
	DCT       = "DCTDecode"
	JPX       = "JPXDecode"
	Crypt     = "Crypt"
)

// ErrUnsupported is returned for filters which cannot be decoded.
var ErrUnsupported = errors.New("unsupported filter")

// Params holds the decode parameters of a filter.  Boolean parameters
// are stored as 0 or 1.
type Params map[string]int

// Get returns the value of the parameter key, or def if the key is not set.
func (p Params) Get(key string, def int) int {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// abbreviations maps the names allowed in inline images to the full names.
var abbreviations = map[string]string{
	"AHx": ASCIIHex,
	"A85": ASCII85,
	"LZW": LZW,
	"Fl":  Flate,
	"RL":  RunLength,
	"CCF": CCITTFax,
	"DCT": DCT,
}

// Normalize expands abbreviated filter names.
func Normalize(name string) string {
	if full, ok := abbreviations[name]; ok {
		return full
	}
	return name
}

// IsImageCodec reports whether the filter decodes to a raster image
// rather than to a byte stream.
func IsImageCodec(name string) bool {
	switch Normalize(name) {
	case DCT, JPX, JBIG2:
		return true
	}
	return false
}

// Decode returns a reader which decodes the data read from r using the
// named filter.
func Decode(r io.Reader, name string, parms Params) (io.ReadCloser, error) {
	switch Normalize(name) {
	case ASCIIHex:
		return decodeASCIIHex(r), nil
	case ASCII85:
		return decodeASCII85(r), nil
	case RunLength:
		return decodeRunLength(r), nil
	case Flate:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", Flate, err)
		}
		return withPredictor(&lenientReader{zr}, parms)
	case LZW:
		earlyChange := parms.Get("EarlyChange", 1)
		lr := lzw.NewReader(r, earlyChange == 1)
		return withPredictor(&lenientReader{lr}, parms)
	case CCITTFax:
		return decodeCCITT(r, parms)
	case Crypt:
		// Only the Identity crypt filter can occur in unencrypted files.
		return io.NopCloser(r), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupported, name)
}

func withPredictor(r io.ReadCloser, parms Params) (io.ReadCloser, error) {
	p := &PredictorParams{
		Predictor:        parms.Get("Predictor", 1),
		Colors:           parms.Get("Colors", 1),
		BitsPerComponent: parms.Get("BitsPerComponent", 8),
		Columns:          parms.Get("Columns", 1),
	}
	pr, err := NewPredictorReader(r, p)
	if err != nil {
		r.Close()
		return nil, err
	}
	return pr, nil
}

// lenientReader turns an unexpected end of the compressed data into a
// normal end of stream.  Truncated Flate and LZW data is common in PDF
// files found in the wild.
type lenientReader struct {
	io.ReadCloser
}

func (r *lenientReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}
