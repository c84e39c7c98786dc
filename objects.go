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

package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Object represents an object in a PDF file.
//
// The concrete types are [Boolean], [Integer], [Real], [Name], [String],
// [Null], [Array], [*Dict], [*Stream] and [Reference].  A nil Object is
// treated like [Null].
type Object interface {
	// PDF writes the PDF file representation of the object to w.
	PDF(w io.Writer) error

	isObject()
}

// Boolean represents a boolean value in a PDF file.
type Boolean bool

// PDF implements the [Object] interface.
func (x Boolean) PDF(w io.Writer) error {
	var s string
	if x {
		s = "true"
	} else {
		s = "false"
	}
	_, err := io.WriteString(w, s)
	return err
}

func (Boolean) isObject() {}

// Integer represents an integer constant in a PDF file.
type Integer int64

// PDF implements the [Object] interface.
func (x Integer) PDF(w io.Writer) error {
	_, err := io.WriteString(w, strconv.FormatInt(int64(x), 10))
	return err
}

func (Integer) isObject() {}

// Real represents a real number in a PDF file.
type Real float64

// PDF implements the [Object] interface.
func (x Real) PDF(w io.Writer) error {
	s := strconv.FormatFloat(float64(x), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	_, err := io.WriteString(w, s)
	return err
}

func (Real) isObject() {}

// Null represents the PDF null object.
type Null struct{}

// PDF implements the [Object] interface.
func (Null) PDF(w io.Writer) error {
	_, err := io.WriteString(w, "null")
	return err
}

func (Null) isObject() {}

// IsNull reports whether obj is nil or the PDF null object.
func IsNull(obj Object) bool {
	if obj == nil {
		return true
	}
	_, isNull := obj.(Null)
	return isNull
}

// String represents a string constant in a PDF file.
type String []byte

// PDF implements the [Object] interface.
func (x String) PDF(w io.Writer) error {
	l := []byte(x)

	var funny int
	for _, c := range l {
		if c < 32 || c >= 127 {
			funny++
		}
	}
	if funny > len(l)/4 {
		buf := make([]byte, 0, 2*len(l)+2)
		buf = append(buf, '<')
		for _, c := range l {
			buf = append(buf, "0123456789abcdef"[c>>4], "0123456789abcdef"[c&15])
		}
		buf = append(buf, '>')
		_, err := w.Write(buf)
		return err
	}

	var buf bytes.Buffer
	buf.WriteByte('(')
	for _, c := range l {
		switch c {
		case '\r':
			buf.WriteString(`\r`)
		case '\n':
			buf.WriteString(`\n`)
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
	_, err := w.Write(buf.Bytes())
	return err
}

func (String) isObject() {}

// Array represent an array of objects in a PDF file.
type Array []Object

// PDF implements the [Object] interface.
func (x Array) PDF(w io.Writer) error {
	_, err := io.WriteString(w, "[")
	if err != nil {
		return err
	}
	for i, val := range x {
		if i > 0 {
			_, err = io.WriteString(w, " ")
			if err != nil {
				return err
			}
		}
		if val == nil {
			val = Null{}
		}
		err = val.PDF(w)
		if err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "]")
	return err
}

func (Array) isObject() {}

// Reference represents a reference to an indirect object in a PDF file.
type Reference struct {
	Number     uint32
	Generation uint16
}

// NewReference returns a new reference to an indirect object.
func NewReference(number uint32, generation uint16) Reference {
	return Reference{Number: number, Generation: generation}
}

// PDF implements the [Object] interface.
func (x Reference) PDF(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d %d R", x.Number, x.Generation)
	return err
}

func (Reference) isObject() {}

func (x Reference) String() string {
	return fmt.Sprintf("%d %d R", x.Number, x.Generation)
}

// Format returns the PDF representation of obj, for use in diagnostics.
func Format(obj Object) string {
	if obj == nil {
		return "null"
	}
	buf := &bytes.Buffer{}
	if err := obj.PDF(buf); err != nil {
		return "<" + err.Error() + ">"
	}
	return buf.String()
}
