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
)

const scannerBufSize = 1024

// maxNesting limits the depth of nested arrays and dictionaries.
const maxNesting = 256

// streamFunc stores the body of a stream which starts at the given file
// position.  It returns the stream and the number of bytes consumed.
type streamFunc func(dict *Dict, start int64) (*Stream, int64, error)

type scanner struct {
	r         io.Reader
	buf       []byte
	used, pos int

	// total is the file position of buf[0].
	total int64

	depth int

	readStream streamFunc
}

func newScanner(r io.Reader, start int64, readStream streamFunc) *scanner {
	return &scanner{
		r:          r,
		buf:        make([]byte, scannerBufSize),
		total:      start,
		readStream: readStream,
	}
}

func (s *scanner) currentPos() int64 {
	return s.total + int64(s.pos)
}

func (s *scanner) malformed(format string, args ...any) error {
	return &MalformedFileError{
		Pos: s.currentPos(),
		Err: fmt.Errorf(format, args...),
	}
}

// ReadIndirectObject reads an object of the form "N G obj ... endobj".
func (s *scanner) ReadIndirectObject() (Object, Reference, error) {
	// Some files point the xref entries at the end of the previous line.
	err := s.SkipWhiteSpace()
	if err != nil {
		return nil, Reference{}, err
	}

	number, err := s.ReadInteger()
	if err != nil {
		return nil, Reference{}, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, Reference{}, err
	}
	generation, err := s.ReadInteger()
	if err != nil {
		return nil, Reference{}, err
	}
	if number < 0 || number > 1<<32-1 || generation < 0 || generation > 65535 {
		return nil, Reference{}, s.malformed("invalid object id %d %d", number, generation)
	}
	ref := NewReference(uint32(number), uint16(generation))

	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, ref, err
	}
	err = s.SkipString("obj")
	if err != nil {
		return nil, ref, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, ref, err
	}

	obj, err := s.ReadObject()
	if err != nil {
		return nil, ref, err
	}
	if dict, isDict := obj.(*Dict); isDict {
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, ref, err
		}
		buf, _ := s.Peek(6)
		if bytes.HasPrefix(buf, []byte("stream")) {
			obj, err = s.ReadStreamData(dict)
			if err != nil {
				return nil, ref, err
			}
		}
	}

	// A missing "endobj" is tolerated.
	s.SkipWhiteSpace()
	s.SkipString("endobj")

	return obj, ref, nil
}

// ReadObject reads one object.  References ("N G R") are recognised in
// all contexts.
func (s *scanner) ReadObject() (Object, error) {
	obj, err := s.readDirect()
	if err != nil {
		return nil, err
	}

	a, isInt := obj.(Integer)
	if !isInt || a < 0 {
		return obj, nil
	}

	// Check whether this is the start of a reference.
	buf, err := s.Peek(32)
	if err != nil {
		return nil, err
	}
	if ref, n, ok := parseRefTail(buf); ok {
		s.pos += n
		return NewReference(uint32(a), ref), nil
	}
	return obj, nil
}

// parseRefTail checks whether buf starts with " G R" and returns G and the
// number of bytes used.
func parseRefTail(buf []byte) (uint16, int, bool) {
	i := 0
	for i < len(buf) && isSpace[buf[i]] {
		i++
	}
	if i == 0 {
		return 0, 0, false
	}
	start := i
	for i < len(buf) && buf[i] >= '0' && buf[i] <= '9' {
		i++
	}
	if i == start {
		return 0, 0, false
	}
	gen, err := strconv.ParseUint(string(buf[start:i]), 10, 16)
	if err != nil {
		return 0, 0, false
	}
	j := i
	for j < len(buf) && isSpace[buf[j]] {
		j++
	}
	if j == i || j >= len(buf) || buf[j] != 'R' {
		return 0, 0, false
	}
	j++
	if j < len(buf) && !isSpace[buf[j]] && !isDelimiter[buf[j]] {
		return 0, 0, false
	}
	return uint16(gen), j, true
}

func (s *scanner) readDirect() (Object, error) {
	buf, err := s.Peek(5) // len("false") == 5
	if err != nil {
		return nil, err
	}

	switch {
	case len(buf) == 0:
		return nil, &MalformedFileError{Pos: s.currentPos(), Err: io.ErrUnexpectedEOF}
	case bytes.HasPrefix(buf, []byte("null")):
		s.pos += 4
		return Null{}, nil
	case bytes.HasPrefix(buf, []byte("true")):
		s.pos += 4
		return Boolean(true), nil
	case bytes.HasPrefix(buf, []byte("false")):
		s.pos += 5
		return Boolean(false), nil
	case buf[0] == '/':
		return s.ReadName()
	case buf[0] >= '0' && buf[0] <= '9', buf[0] == '+', buf[0] == '-', buf[0] == '.':
		return s.ReadNumber()
	case bytes.HasPrefix(buf, []byte("<<")):
		return s.ReadDict()
	case buf[0] == '(':
		s.pos++
		return s.ReadQuotedString()
	case buf[0] == '<':
		s.pos++
		return s.ReadHexString()
	case buf[0] == '[':
		s.pos++
		return s.ReadArray()
	}
	return nil, s.malformed("unexpected %q", buf)
}

// ReadInteger reads an integer with an optional sign.
func (s *scanner) ReadInteger() (Integer, error) {
	var digits []byte
	for {
		c, ok, err := s.peekByte()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		isSign := len(digits) == 0 && (c == '+' || c == '-')
		if !isSign && (c < '0' || c > '9') {
			break
		}
		digits = append(digits, c)
		s.pos++
	}
	if len(digits) == 0 {
		return 0, s.malformed("integer expected")
	}

	x, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, &MalformedFileError{Pos: s.currentPos(), Err: err}
	}
	return Integer(x), nil
}

// ReadNumber reads an integer or real number.
func (s *scanner) ReadNumber() (Object, error) {
	var word []byte
	for {
		c, ok, err := s.peekByte()
		if err != nil {
			return nil, err
		}
		if !ok || !(c >= '0' && c <= '9' || c == '.' || c == '+' || c == '-') {
			break
		}
		word = append(word, c)
		s.pos++
	}

	// Broken writers produce numbers like "0.00-5"; a sign is only
	// allowed at the start.
	text := make([]byte, 0, len(word))
	isReal := false
	for i, c := range word {
		switch {
		case c == '+' || c == '-':
			if i == 0 {
				text = append(text, c)
			}
		case c == '.':
			if !isReal {
				text = append(text, c)
			}
			isReal = true
		default:
			text = append(text, c)
		}
	}

	if !isReal {
		if x, err := strconv.ParseInt(string(text), 10, 64); err == nil {
			return Integer(x), nil
		}
		// Out-of-range integers are read as reals.
	}
	if !bytes.ContainsAny(text, "0123456789") {
		return Real(0), nil
	}
	x, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return nil, &MalformedFileError{Pos: s.currentPos(), Err: err}
	}
	return Real(x), nil
}

// ReadQuotedString reads a ()-delimited string, starting after the opening
// bracket.  A missing closing bracket at the end of input is tolerated.
func (s *scanner) ReadQuotedString() (String, error) {
	var res []byte
	depth := 0
	for {
		c, err := s.readByte()
		if err == io.EOF {
			return String(res), nil
		} else if err != nil {
			return nil, err
		}

		switch c {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return String(res), nil
			}
			depth--
		case '\\':
			c, err = s.readByte()
			if err == io.EOF {
				return String(res), nil
			} else if err != nil {
				return nil, err
			}
			var keep bool
			c, keep, err = s.readEscape(c)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
		case '\r':
			// end-of-line markers are normalised to a single LF
			s.skipLF()
			c = '\n'
		}
		res = append(res, c)
	}
}

// readEscape decodes the escape sequence which starts with c, after a
// backslash.  If keep is false, the sequence was a line continuation and
// produces no output.
func (s *scanner) readEscape(c byte) (out byte, keep bool, err error) {
	switch c {
	case 'n':
		return '\n', true, nil
	case 'r':
		return '\r', true, nil
	case 't':
		return '\t', true, nil
	case 'b':
		return '\b', true, nil
	case 'f':
		return '\f', true, nil
	case '\n':
		return 0, false, nil
	case '\r':
		s.skipLF()
		return 0, false, nil
	}
	if c < '0' || c > '7' {
		// unknown escapes stand for the character itself
		return c, true, nil
	}

	val := c - '0'
	for range 2 {
		d, ok, err := s.peekByte()
		if err != nil {
			return 0, false, err
		}
		if !ok || d < '0' || d > '7' {
			break
		}
		val = val<<3 | (d - '0')
		s.pos++
	}
	return val, true, nil
}

// skipLF consumes the next byte, if it is a line feed.
func (s *scanner) skipLF() {
	if c, ok, _ := s.peekByte(); ok && c == '\n' {
		s.pos++
	}
}

// ReadHexString reads a <>-delimited string, starting after the opening
// angled bracket.  Characters other than hex digits are skipped, and an
// odd number of digits is completed with a trailing zero.
func (s *scanner) ReadHexString() (String, error) {
	var res []byte
	pending := -1
	for {
		c, err := s.readByte()
		if err == io.EOF || err == nil && c == '>' {
			break
		} else if err != nil {
			return nil, err
		}

		d, ok := hexValue(c)
		if !ok {
			continue
		}
		if pending < 0 {
			pending = int(d)
		} else {
			res = append(res, byte(pending)<<4|d)
			pending = -1
		}
	}
	if pending >= 0 {
		res = append(res, byte(pending)<<4)
	}
	return String(res), nil
}

// ReadName reads a PDF name object.  The result is interned.
func (s *scanner) ReadName() (Name, error) {
	err := s.SkipString("/")
	if err != nil {
		return "", err
	}

	word, err := s.readRegular()
	if err != nil && err != io.EOF {
		return "", err
	}

	res := make([]byte, 0, len(word))
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c == '#' && i+2 < len(word) {
			hi, ok1 := hexValue(word[i+1])
			lo, ok2 := hexValue(word[i+2])
			if ok1 && ok2 {
				c = hi<<4 | lo
				i += 2
			}
		}
		res = append(res, c)
	}
	return Intern(string(res)), nil
}

// readRegular reads a run of regular characters, i.e. all bytes up to the
// next white space or delimiter.
func (s *scanner) readRegular() ([]byte, error) {
	var res []byte
	for {
		c, ok, err := s.peekByte()
		if err != nil {
			return nil, err
		}
		if !ok || isSpace[c] || isDelimiter[c] {
			break
		}
		res = append(res, c)
		s.pos++
	}
	if len(res) == 0 {
		return nil, io.EOF
	}
	return res, nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

// ReadArray reads an array, starting after the opening "[".
func (s *scanner) ReadArray() (Array, error) {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > maxNesting {
		return nil, s.malformed("arrays nested too deeply")
	}

	array := Array{}
	for {
		err := s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}

		buf, err := s.Peek(1)
		if err != nil {
			return nil, err
		}
		if len(buf) == 0 {
			// unterminated array at end of input
			return array, nil
		}
		if buf[0] == ']' {
			break
		}

		obj, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		array = append(array, obj)
	}
	s.pos++ // we have already seen the closing "]"

	return array, nil
}

// ReadDict reads a PDF dictionary.
func (s *scanner) ReadDict() (*Dict, error) {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > maxNesting {
		return nil, s.malformed("dictionaries nested too deeply")
	}

	err := s.SkipString("<<")
	if err != nil {
		return nil, err
	}

	dict := &Dict{}
	for {
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		buf, err := s.Peek(2)
		if err != nil {
			return nil, err
		}
		if len(buf) == 0 || bytes.HasPrefix(buf, []byte(">>")) {
			break
		}
		if buf[0] != '/' {
			// Skip junk between entries, one token at a time.
			if _, err := s.ReadObject(); err != nil {
				s.pos++
			}
			continue
		}

		key, err := s.ReadName()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}

		buf, _ = s.Peek(2)
		if bytes.HasPrefix(buf, []byte(">>")) {
			// missing value
			dict.put(key, Null{})
			continue
		}

		val, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		dict.put(key, val)
	}
	s.SkipString(">>")

	return dict, nil
}

// ReadStreamData reads the data of a PDF Stream, starting after the Dict.
func (s *scanner) ReadStreamData(dict *Dict) (*Stream, error) {
	if s.readStream == nil {
		return nil, s.malformed("unexpected stream")
	}

	err := s.SkipString("stream")
	if err != nil {
		return nil, err
	}

	buf, err := s.Peek(2)
	if err != nil {
		return nil, err
	}
	if len(buf) >= 2 && buf[0] == '\r' && buf[1] == '\n' {
		s.pos += 2
	} else if len(buf) >= 1 && (buf[0] == '\n' || buf[0] == '\r') {
		s.pos++
	}

	stm, n, err := s.readStream(dict, s.currentPos())
	if err != nil {
		return nil, err
	}
	err = s.Discard(n)
	if err != nil && err != io.EOF {
		return nil, err
	}

	s.SkipWhiteSpace()
	s.SkipString("endstream")

	return stm, nil
}

// refill discards the read part of the buffer and reads as much new data as
// possible.  Once the end of file is reached, s.used will be smaller than the
// buffer size, but no error will be returned.
func (s *scanner) refill() error {
	s.total += int64(s.pos)
	copy(s.buf, s.buf[s.pos:s.used])
	s.used -= s.pos
	s.pos = 0

	n, err := io.ReadFull(s.r, s.buf[s.used:])
	s.used += n

	if s.used > 0 || err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}

	return err
}

// Peek returns a view of the next n bytes of input.  The function panics, if n
// is larger than scannerBufSize.  On EOF, short buffers without an error code
// will be returned.
func (s *scanner) Peek(n int) ([]byte, error) {
	if n > scannerBufSize {
		panic("peek window too large")
	}

	var err error
	if s.pos+n > s.used {
		err = s.refill()
	}

	if s.pos+n > s.used {
		return s.buf[s.pos:s.used], err
	}

	return s.buf[s.pos : s.pos+n], nil
}

// Discard skips the next n bytes of input.
func (s *scanner) Discard(n int64) error {
	if n < 0 {
		panic("negative offset for Discard()")
	}
	unread := int64(s.used - s.pos)
	if n <= unread {
		s.pos += int(n)
		return nil
	}

	n -= unread
	s.total += int64(s.used)
	s.pos = 0
	s.used = 0

	n, err := io.CopyN(io.Discard, s.r, n)
	s.total += n
	return err
}

// readByte consumes and returns the next byte of input.
// At the end of input, io.EOF is returned.
func (s *scanner) readByte() (byte, error) {
	c, ok, err := s.peekByte()
	if err != nil {
		return 0, err
	} else if !ok {
		return 0, io.EOF
	}
	s.pos++
	return c, nil
}

// peekByte returns the next byte of input without consuming it.
// At the end of input, ok is false.
func (s *scanner) peekByte() (c byte, ok bool, err error) {
	if s.pos >= s.used {
		err = s.refill()
		if err != nil || s.used == 0 {
			return 0, false, err
		}
	}
	return s.buf[s.pos], true, nil
}

// SkipWhiteSpace skips white space and comments.
func (s *scanner) SkipWhiteSpace() error {
	inComment := false
	for {
		c, ok, err := s.peekByte()
		if err != nil || !ok {
			return err
		}
		switch {
		case inComment:
			inComment = c != '\r' && c != '\n'
		case c == '%':
			inComment = true
		case !isSpace[c]:
			return nil
		}
		s.pos++
	}
}

// SkipString consumes pat, which must be the next part of the input.
func (s *scanner) SkipString(pat string) error {
	patBytes := []byte(pat)
	n := len(patBytes)
	buf, err := s.Peek(n)
	if err != nil {
		return err
	}
	if !bytes.Equal(buf, patBytes) {
		return s.malformed("expected %q but found %q", pat, string(buf))
	}
	s.pos += n
	return nil
}

var (
	isSpace = [256]bool{
		0:  true,
		9:  true,
		10: true,
		12: true,
		13: true,
		32: true,
	}
	isDelimiter = [256]bool{
		'(': true,
		')': true,
		'<': true,
		'>': true,
		'[': true,
		']': true,
		'{': true,
		'}': true,
		'/': true,
		'%': true,
	}
)
