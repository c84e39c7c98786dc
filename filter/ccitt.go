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
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
)

// decodeCCITT decodes Group 3 and Group 4 fax data.  The output uses one
// bit per pixel, rows padded to whole bytes, with 0 meaning black unless
// BlackIs1 is set.
func decodeCCITT(r io.Reader, parms Params) (io.ReadCloser, error) {
	k := parms.Get("K", 0)
	cols := parms.Get("Columns", 1728)
	rows := parms.Get("Rows", 0)
	if cols < 1 || cols > maxColumns {
		return nil, fmt.Errorf("%s: invalid Columns %d", CCITTFax, cols)
	}
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}

	opts := &ccitt.Options{
		Invert: parms.Get("BlackIs1", 0) == 1,
		Align:  parms.Get("EncodedByteAlign", 0) == 1,
	}

	mode := ccitt.Group3
	if k < 0 {
		mode = ccitt.Group4
	}
	cr := ccitt.NewReader(r, ccitt.MSB, mode, cols, rows, opts)
	return &lenientReader{io.NopCloser(cr)}, nil
}
