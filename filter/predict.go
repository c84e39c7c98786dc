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
	"errors"
	"fmt"
	"io"
)

const maxColumns = 1 << 20

// PredictorParams describes the predictor used by the Flate and LZW filters.
type PredictorParams struct {
	// Predictor is the prediction algorithm:
	//   1: no prediction
	//   2: TIFF horizontal differencing
	//  10-15: PNG predictors (the per-row tag selects the algorithm)
	Predictor int

	// Colors is the number of color components per pixel.
	Colors int

	// BitsPerComponent is one of 1, 2, 4, 8 or 16.
	BitsPerComponent int

	// Columns is the number of pixels per row.
	Columns int
}

// Validate checks that the parameters are usable.
func (p *PredictorParams) Validate() error {
	switch p.Predictor {
	case 1:
		return nil
	case 2, 10, 11, 12, 13, 14, 15:
		// pass
	default:
		return fmt.Errorf("Predictor must be 1, 2, or 10-15, got %d", p.Predictor)
	}

	if p.Colors < 1 || p.Colors > 256 {
		return errors.New("invalid Colors value")
	}
	switch p.BitsPerComponent {
	case 1, 2, 4, 8, 16:
		// pass
	default:
		return fmt.Errorf("invalid BitsPerComponent %d", p.BitsPerComponent)
	}
	maxCols := min(maxColumns, (1<<31-1)/(p.Colors*p.BitsPerComponent))
	if p.Columns < 1 || p.Columns > maxCols {
		return errors.New("invalid Columns value")
	}
	return nil
}

func (p *PredictorParams) bytesPerRow() int {
	return (p.Colors*p.BitsPerComponent*p.Columns + 7) / 8
}

func (p *PredictorParams) bytesPerPixel() int {
	return (p.Colors*p.BitsPerComponent + 7) / 8
}

// NewPredictorReader returns a reader which undoes the effect of a
// predictor on the data read from r.  For predictor 1, r is returned
// unchanged.
func NewPredictorReader(r io.ReadCloser, p *PredictorParams) (io.ReadCloser, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Predictor == 1 {
		return r, nil
	}

	rowLen := p.bytesPerRow()
	pr := &predictReader{
		r:      r,
		params: p,
		cur:    make([]byte, rowLen),
	}
	if p.Predictor >= 10 {
		pr.in = make([]byte, rowLen+1)
		pr.prev = make([]byte, rowLen)
	} else {
		pr.in = make([]byte, rowLen)
	}
	return pr, nil
}

type predictReader struct {
	r      io.ReadCloser
	params *PredictorParams

	in   []byte // one encoded row, including the PNG tag byte
	prev []byte // previous decoded row (PNG only)
	cur  []byte // current decoded row
	out  []byte // undelivered part of cur
	err  error
}

func (r *predictReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.out) > 0 {
			k := copy(p[n:], r.out)
			r.out = r.out[k:]
			n += k
			continue
		}
		if r.err != nil {
			break
		}

		k, err := io.ReadFull(r.r, r.in)
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			err = io.EOF
		}
		if k > 0 {
			r.decodeRow(r.in[:k])
		}
		r.err = err
	}
	if n > 0 {
		return n, nil
	}
	return 0, r.err
}

func (r *predictReader) decodeRow(data []byte) {
	if r.params.Predictor == 2 {
		row := r.cur[:len(data)]
		copy(row, data)
		r.undoTIFF(row)
		r.out = row
		return
	}

	tag := data[0]
	data = data[1:]
	row := r.cur[:len(data)]
	bpp := r.params.bytesPerPixel()
	for i, x := range data {
		var left, up, upLeft byte
		if i >= bpp {
			left = row[i-bpp]
			upLeft = r.prev[i-bpp]
		}
		up = r.prev[i]

		var pred byte
		switch tag {
		case 1: // Sub
			pred = left
		case 2: // Up
			pred = up
		case 3: // Average
			pred = byte((int(left) + int(up)) / 2)
		case 4: // Paeth
			pred = paeth(left, up, upLeft)
		}
		row[i] = x + pred
	}
	copy(r.prev, row)
	r.out = row
}

// undoTIFF reverses horizontal differencing on one row, in place.
func (r *predictReader) undoTIFF(row []byte) {
	colors := r.params.Colors
	switch bpc := r.params.BitsPerComponent; bpc {
	case 8:
		for i := colors; i < len(row); i++ {
			row[i] += row[i-colors]
		}
	case 16:
		for i := 2 * colors; i+1 < len(row); i += 2 {
			prev := uint16(row[i-2*colors])<<8 | uint16(row[i-2*colors+1])
			cur := uint16(row[i])<<8 | uint16(row[i+1])
			cur += prev
			row[i] = byte(cur >> 8)
			row[i+1] = byte(cur)
		}
	default: // 1, 2, 4
		mask := byte(1<<bpc - 1)
		perByte := 8 / bpc
		total := colors * r.params.Columns
		prev := make([]byte, colors)
		for k := 0; k < total && k/perByte < len(row); k++ {
			shift := uint(8 - bpc*(k%perByte+1))
			idx := k / perByte
			v := (row[idx] >> shift) & mask
			c := k % colors
			if k >= colors {
				v = (v + prev[c]) & mask
			}
			prev[c] = v
			row[idx] = row[idx]&^(mask<<shift) | v<<shift
		}
	}
}

func (r *predictReader) Close() error {
	return r.r.Close()
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
