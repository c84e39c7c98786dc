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


package pagetree

import (
	"io"

	"seehuhn.de/go/pdfraster"
)

// ContentStream returns a reader for the content stream(s) of a page.
// If Contents is an array, the decoded streams are concatenated, separated
// by newline characters.  Missing streams are skipped.
func ContentStream(r pdf.Getter, page *pdf.Dict) io.Reader {
	var parts pdf.Array
	switch contents := page.Get(r, "Contents").(type) {
	case nil:
	case pdf.Array:
		parts = contents
	default:
		parts = pdf.Array{contents}
	}
	return &contentsReader{r: r, todo: parts}
}

// A contentsReader decodes the content streams of a page one after the
// other.  Streams are only opened once the previous one is exhausted.
type contentsReader struct {
	r    pdf.Getter
	todo pdf.Array

	body      io.ReadCloser
	opened    int
	separator bool

	// err is sticky; it is io.EOF after the last stream.
	err error
}

func (cr *contentsReader) Read(p []byte) (int, error) {
	if cr.err != nil {
		return 0, cr.err
	}
	if len(p) == 0 {
		return 0, nil
	}

	for {
		if cr.body == nil {
			cr.err = cr.next()
			if cr.err != nil {
				return 0, cr.err
			}
		}

		if cr.separator {
			cr.separator = false
			p[0] = '\n'
			return 1, nil
		}

		n, err := cr.body.Read(p)
		if err == io.EOF {
			err = cr.body.Close()
			cr.body = nil
			if err != nil {
				cr.err = err
			}
			if n > 0 || err != nil {
				return n, err
			}
			continue
		} else if err != nil {
			cr.body.Close()
			cr.body = nil
			cr.err = err
		}
		return n, err
	}
}

// next opens the next stream from the Contents array.
func (cr *contentsReader) next() error {
	for len(cr.todo) > 0 {
		obj := cr.todo[0]
		cr.todo = cr.todo[1:]

		stm, err := pdf.GetStream(cr.r, obj)
		if err != nil {
			return err
		} else if stm == nil {
			continue
		}
		body, err := pdf.DecodeStream(cr.r, stm, 0)
		if err != nil {
			return err
		}

		cr.body = body
		cr.separator = cr.opened > 0
		cr.opened++
		return nil
	}
	return io.EOF
}
