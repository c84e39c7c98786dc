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


package render

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strconv"

	"seehuhn.de/go/pdfraster"
)

// maxNesting limits the nesting of arrays and dictionaries in content
// streams.
const maxNesting = 64

// A scanner breaks a content stream into operators and their operands.
//
// Parse errors are ignored as much as possible.
type scanner struct {
	args []pdf.Object
	src  *bufio.Reader

	// err is the first error seen while reading from src.
	err error
}

// token is either an operand or an operator.  Delimiters for arrays and
// dictionaries are returned as operators.
type token struct {
	obj pdf.Object
	op  string
}

func newScanner() *scanner {
	return &scanner{
		src: bufio.NewReaderSize(nil, 512),
	}
}

// Scan returns an iterator over all operators in the content stream.
//
// Inline images are reported as a single "BI" operator with two operands:
// the image dictionary and the raw image data as a [pdf.String].
//
// The []pdf.Object slice passed to the yield function is owned by the
// scanner and is only valid until the yield returns.
func (s *scanner) Scan(r io.Reader) func(yield func(op string, args []pdf.Object) error) error {
	return func(yield func(string, []pdf.Object) error) error {
		s.err = nil
		s.src.Reset(r)
		s.args = s.args[:0]

	tokenLoop:
		for {
			tok, err := s.nextToken()
			if err != nil {
				break
			}

			switch tok.op {
			case "":
				s.args = append(s.args, tok.obj)
			case "[", "<<":
				obj, err := s.readComposite(tok.op, 0)
				if err != nil {
					break tokenLoop
				}
				s.args = append(s.args, obj)
			case "]", ">>":
				// unbalanced delimiter
			case "BI":
				dict, data, err := s.readInlineImage()
				if err != nil {
					break tokenLoop
				}
				s.args = append(s.args[:0], dict, data)
				err = yield("BI", s.args)
				if err != nil {
					return err
				}
				s.args = s.args[:0]
			default:
				err := yield(tok.op, s.args)
				if err != nil {
					return err
				}
				s.args = s.args[:0]
			}
		}

		if s.err == io.EOF {
			return nil
		}
		return s.err
	}
}

// readComposite reads an array or a dictionary.  The opening delimiter
// has already been consumed.
func (s *scanner) readComposite(open string, depth int) (pdf.Object, error) {
	if depth > maxNesting {
		return nil, errNesting
	}
	closing := "]"
	if open == "<<" {
		closing = ">>"
	}

	var data []pdf.Object
	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		switch tok.op {
		case "":
			data = append(data, tok.obj)
			continue
		case "[", "<<":
			obj, err := s.readComposite(tok.op, depth+1)
			if err != nil {
				return nil, err
			}
			data = append(data, obj)
			continue
		case closing:
		case "]", ">>":
			// mismatched delimiter
			continue
		default:
			// operators are not allowed inside arrays and dictionaries
			continue
		}
		break
	}

	if open == "[" {
		return pdf.Array(data), nil
	}
	return makeDict(data), nil
}

func makeDict(data []pdf.Object) *pdf.Dict {
	dict := &pdf.Dict{}
	for i := 0; i+1 < len(data); i += 2 {
		key, ok := data[i].(pdf.Name)
		if !ok {
			// invalid key
			continue
		}
		dict.Set(key, data[i+1])
	}
	return dict
}

// readInlineImage reads the dictionary and the data of an inline image.
// The "BI" operator has already been consumed.
func (s *scanner) readInlineImage() (*pdf.Dict, pdf.String, error) {
	var data []pdf.Object
dictLoop:
	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, nil, err
		}
		switch tok.op {
		case "":
			data = append(data, tok.obj)
		case "[", "<<":
			obj, err := s.readComposite(tok.op, 1)
			if err != nil {
				return nil, nil, err
			}
			data = append(data, obj)
		case "ID":
			break dictLoop
		}
	}
	dict := makeDict(data)

	// a single white-space character follows the ID operator
	if b, err := s.peek(); err == nil && class[b] == space {
		s.readByte()
	}

	var body []byte
	for {
		b, err := s.readByte()
		if err != nil {
			// missing EI, use everything up to the end of the stream
			return dict, pdf.String(body), nil
		}
		if class[b] == space {
			tail := s.peekN(3)
			if len(tail) >= 2 && tail[0] == 'E' && tail[1] == 'I' &&
				(len(tail) == 2 || class[tail[2]] != regular) {
				s.skipN(2)
				return dict, pdf.String(body), nil
			}
		}
		body = append(body, b)
	}
}

func (s *scanner) nextToken() (token, error) {
	s.skipWhiteSpace()
	bb := s.peekN(2)
	if len(bb) == 0 {
		return token{}, s.err
	}

	switch {
	case bb[0] == '/':
		s.skipN(1)
		return token{obj: s.readName()}, nil
	case bb[0] == '(':
		s.skipN(1)
		str, err := s.readString()
		return token{obj: str}, err
	case string(bb) == "<<":
		s.skipN(2)
		return token{op: "<<"}, nil
	case bb[0] == '<':
		s.skipN(1)
		str, err := s.readHexString()
		return token{obj: str}, err
	case string(bb) == ">>":
		s.skipN(2)
		return token{op: ">>"}, nil
	default:
		opBytes := []byte{bb[0]}
		s.readByte() // skip bb[0] (invalidates bb)
		if class[opBytes[0]] == regular {
			for {
				b, err := s.peek()
				if err == io.EOF {
					break
				} else if err != nil {
					return token{}, err
				}
				if class[b] != regular {
					break
				}
				s.readByte()
				opBytes = append(opBytes, b)
			}
		}

		if x := parseNumber(opBytes); x != nil {
			return token{obj: x}, nil
		}

		switch string(opBytes) {
		case "false":
			return token{obj: pdf.Boolean(false)}, nil
		case "true":
			return token{obj: pdf.Boolean(true)}, nil
		case "null":
			return token{}, nil
		}
		return token{op: string(opBytes)}, nil
	}
}

// readString reads a PDF string (not including the leading parenthesis).
func (s *scanner) readString() (pdf.String, error) {
	var res []byte
	depth := 0
	for {
		b, err := s.readByte()
		if err != nil {
			return nil, err
		}

		switch {
		case b == '(':
			depth++
		case b == ')' && depth == 0:
			return pdf.String(res), nil
		case b == ')':
			depth--
		case b == '\\':
			b, err = s.readByte()
			if err != nil {
				return nil, err
			}
			if esc, ok := escapes[b]; ok {
				b = esc
			} else if b == '\n' {
				continue
			} else if b == '\r' {
				s.skipByte('\n')
				continue
			} else if isOctal(b) {
				b -= '0'
				for range 2 {
					c, err := s.peek()
					if err != nil || !isOctal(c) {
						break
					}
					s.skipN(1)
					b = b<<3 | (c - '0')
				}
			}
		}
		res = append(res, b)
	}
}

var escapes = map[byte]byte{
	'n': '\n',
	'r': '\r',
	't': '\t',
	'b': '\b',
	'f': '\f',
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

// readHexString reads a hex string, after the opening "<".
func (s *scanner) readHexString() (pdf.String, error) {
	var digits []byte
	for {
		b, err := s.readByte()
		if err != nil {
			return nil, err
		}
		if b == '>' {
			break
		} else if class[b] == space {
			continue
		}
		d := hexDigit(b)
		if d > 15 {
			return nil, errParse
		}
		digits = append(digits, d)
	}

	res := make(pdf.String, (len(digits)+1)/2)
	for i, d := range digits {
		if i%2 == 0 {
			res[i/2] = d << 4
		} else {
			res[i/2] |= d
		}
	}
	return res, nil
}

// readName reads a PDF name object (not including the leading slash).
// Invalid "#" escapes are kept literally.
func (s *scanner) readName() pdf.Name {
	var name []byte
	for {
		b, err := s.peek()
		if err != nil || class[b] != regular {
			break
		}
		s.skipN(1)

		if b == '#' {
			if hex := s.peekN(2); len(hex) == 2 && hexDigit(hex[0]) < 16 && hexDigit(hex[1]) < 16 {
				b = hexDigit(hex[0])<<4 | hexDigit(hex[1])
				s.skipN(2)
			}
		}
		name = append(name, b)
	}
	return pdf.Intern(string(name))
}

// skipWhiteSpace skips white space and comments.
func (s *scanner) skipWhiteSpace() {
	inComment := false
	for {
		b, err := s.peek()
		if err != nil {
			return
		}
		switch {
		case inComment:
			inComment = b != '\r' && b != '\n'
		case b == '%':
			inComment = true
		case class[b] != space:
			return
		}
		s.skipN(1)
	}
}

// skipByte consumes the next byte, if it equals b.
func (s *scanner) skipByte(b byte) {
	if c, err := s.peek(); err == nil && c == b {
		s.skipN(1)
	}
}

// readByte consumes and returns the next byte of the input stream.
func (s *scanner) readByte() (byte, error) {
	b, err := s.src.ReadByte()
	if err != nil {
		s.setErr(err)
	}
	return b, err
}

// peek returns the next byte from the input stream without consuming it.
func (s *scanner) peek() (byte, error) {
	buf, err := s.src.Peek(1)
	if len(buf) == 0 {
		s.setErr(err)
		return 0, err
	}
	return buf[0], nil
}

// peekN returns up to n bytes from the input stream without consuming
// them.  The slice is only valid until the next read.
func (s *scanner) peekN(n int) []byte {
	buf, err := s.src.Peek(n)
	if len(buf) < n {
		s.setErr(err)
	}
	return buf
}

// skipN consumes n bytes from the input stream.
func (s *scanner) skipN(n int) {
	s.src.Discard(n)
}

func (s *scanner) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
}

func hexDigit(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 255
	}
}

// parseNumber tries to interpret s as a number.
// The function returns [pdf.Integer] or [pdf.Real] in case s is a valid
// number, and nil otherwise.
func parseNumber(s []byte) pdf.Object {
	x, err := strconv.ParseInt(string(s), 10, 64)
	if err == nil {
		return pdf.Integer(x)
	}

	for i, c := range s {
		if i == 0 && (c == '+' || c == '-') {
			continue
		}
		if c != '.' && (c < '0' || c > '9') {
			return nil
		}
	}

	y, err := strconv.ParseFloat(string(s), 64)
	if err != nil || math.IsInf(y, 0) || math.IsNaN(y) {
		return nil
	}
	return pdf.Real(y)
}

var (
	errParse   = errors.New("parse error")
	errNesting = errors.New("objects nested too deeply")
)

type characterClass byte

const (
	regular characterClass = iota
	space
	delimiter
)

var class [256]characterClass

func init() {
	for _, c := range []byte{0, 9, 10, 12, 13, 32} {
		class[c] = space
	}
	for _, c := range []byte("()<>[]{}/%") {
		class[c] = delimiter
	}
}
