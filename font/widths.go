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

package font

import (
	"errors"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/font/cmap"
)

// readSimpleWidths reads the FirstChar and Widths entries of a simple
// font dictionary.  Codes outside the 0-255 range are dropped.
func readSimpleWidths(r pdf.Getter, dict *pdf.Dict) (int, []float64) {
	first := dict.GetInt(r, "FirstChar", 0)
	a := dict.GetArray(r, "Widths")
	if len(a) == 0 || first < 0 || first > 255 {
		return 0, nil
	}
	if last := dict.GetInt(r, "LastChar", first+len(a)-1); last >= first && last-first+1 < len(a) {
		a = a[:last-first+1]
	}
	if first+len(a) > 256 {
		a = a[:256-first]
	}

	res := make([]float64, len(a))
	for i, obj := range a {
		w, err := pdf.GetNumber(r, obj)
		if err == nil {
			res[i] = w
		}
	}
	return first, res
}

var errInvalidW = &pdf.MalformedFileError{Err: errors.New("invalid W entry in CIDFont dictionary")}

// maxRange limits the size of c_first c_last w ranges in a W array.
const maxRange = 65536

// readCIDWidths decodes the W array of a CIDFont dictionary.  Both forms
// of entries are supported:
//
//	c [w1 w2 ... wn]      CIDs c, c+1, ..., c+n-1
//	c_first c_last w      all CIDs from c_first to c_last
//
// If the array is malformed, the widths decoded so far are returned
// together with an error.
func readCIDWidths(r pdf.Getter, obj pdf.Object) (map[cmap.CID]float64, error) {
	w, err := pdf.GetArray(r, obj)
	if err != nil {
		return nil, err
	}

	res := make(map[cmap.CID]float64)
	for len(w) > 1 {
		c0, err := pdf.GetInteger(r, w[0])
		if err != nil {
			return res, err
		} else if c0 < 0 {
			return res, errInvalidW
		}
		obj1, err := pdf.Resolve(r, w[1])
		if err != nil {
			return res, err
		}

		if c1, ok := obj1.(pdf.Integer); ok {
			if len(w) < 3 || c1 < c0 || c1-c0 >= maxRange {
				return res, errInvalidW
			}
			wi, err := pdf.GetNumber(r, w[2])
			if err != nil {
				return res, err
			}
			for c := c0; c <= c1; c++ {
				res[cmap.CID(c)] = wi
			}
			w = w[3:]
		} else {
			ww, err := pdf.GetArray(r, obj1)
			if err != nil {
				return res, err
			}
			for i, wiObj := range ww {
				wi, err := pdf.GetNumber(r, wiObj)
				if err != nil {
					return res, err
				}
				res[cmap.CID(c0)+cmap.CID(i)] = wi
			}
			w = w[2:]
		}
	}
	if len(w) != 0 {
		return res, errInvalidW
	}
	return res, nil
}
