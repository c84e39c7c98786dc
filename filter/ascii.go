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
	"bufio"
	"errors"
	"fmt"
	"io"
)

func isSpace(c byte) bool {
	switch c {
	case 0, 9, 10, 12, 13, 32:
		return true
	}
	return false
}

func decodeASCIIHex(r io.Reader) io.ReadCloser {
	return &hexReader{r: bufio.NewReader(r)}
}

type hexReader struct {
	r   *bufio.Reader
	err error
}

func (r *hexReader) Read(p []byte) (n int, err error) {
	if r.err != nil {
		return 0, r.err
	}

	haveHigh := false
	var high byte
readLoop:
	for n < len(p) {
		c, err := r.r.ReadByte()
		if err == io.EOF {
			// A missing end marker is tolerated.
			if haveHigh {
				p[n] = high << 4
				n++
			}
			r.err = io.EOF
			break
		} else if err != nil {
			r.err = err
			break
		}

		var b byte
		switch {
		case c >= '0' && c <= '9':
			b = c - '0'
		case c >= 'A' && c <= 'F':
			b = c - 'A' + 10
		case c >= 'a' && c <= 'f':
			b = c - 'a' + 10
		case isSpace(c):
			continue readLoop
		case c == '>':
			if haveHigh {
				p[n] = high << 4
				n++
			}
			r.err = io.EOF
			break readLoop
		default:
			r.err = fmt.Errorf("%s: invalid character %q", ASCIIHex, c)
			break readLoop
		}

		if haveHigh {
			p[n] = high<<4 | b
			n++
			haveHigh = false
		} else {
			high = b
			haveHigh = true
		}
	}
	if n > 0 && r.err == io.EOF {
		return n, nil
	}
	return n, r.err
}

func (r *hexReader) Close() error {
	return nil
}

func decodeASCII85(r io.Reader) io.ReadCloser {
	return &a85Reader{r: bufio.NewReader(r)}
}

type a85Reader struct {
	r        *bufio.Reader
	err      error
	out      [4]byte
	leftover []byte
	v        uint32
	k        int
	isEnd    bool
}

func (r *a85Reader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	if len(r.leftover) > 0 {
		n = copy(p, r.leftover)
		r.leftover = r.leftover[n:]
	}

	for n < len(p) && r.err == nil {
		c, err := r.r.ReadByte()
		if err == io.EOF {
			// Missing "~>" marker: flush a partial group.
			r.flushPartial()
			r.err = io.EOF
			break
		} else if err != nil {
			r.err = err
			break
		}

		if r.isEnd {
			if c == '>' {
				r.err = io.EOF
			} else {
				r.err = errors.New("invalid end marker in ASCII85 stream")
			}
			break
		}

		switch {
		case isSpace(c):
			continue
		case c >= '!' && c < '!'+85:
			r.v = r.v*85 + uint32(c-'!')
			r.k++
		case r.k == 0 && c == 'z':
			r.v = 0
			r.k = 5
		case c == '~':
			r.flushPartial()
			r.isEnd = true
		default:
			r.err = fmt.Errorf("%s: invalid character %q", ASCII85, c)
		}

		if r.k == 5 {
			r.emit(4)
			r.k = 0
			r.v = 0
		}

		if len(r.leftover) > 0 {
			l := copy(p[n:], r.leftover)
			n += l
			r.leftover = r.leftover[l:]
		}
	}

	if len(r.leftover) > 0 && n < len(p) {
		l := copy(p[n:], r.leftover)
		n += l
		r.leftover = r.leftover[l:]
	}

	if n > 0 && (r.err == io.EOF || len(r.leftover) > 0) {
		return n, nil
	}
	return n, r.err
}

// flushPartial completes a final group of 2 to 4 characters.
func (r *a85Reader) flushPartial() {
	if r.k < 2 || r.k >= 5 {
		r.k = 0
		return
	}
	count := r.k - 1
	for i := r.k; i < 5; i++ {
		r.v = r.v*85 + 84
	}
	r.emit(count)
	r.k = 0
	r.v = 0
}

func (r *a85Reader) emit(count int) {
	r.out[0] = byte(r.v >> 24)
	r.out[1] = byte(r.v >> 16)
	r.out[2] = byte(r.v >> 8)
	r.out[3] = byte(r.v)
	r.leftover = append(r.leftover, r.out[:count]...)
}

func (r *a85Reader) Close() error {
	return nil
}

func decodeRunLength(r io.Reader) io.ReadCloser {
	return &rlReader{br: bufio.NewReader(r)}
}

type rlReader struct {
	br      *bufio.Reader
	err     error
	literal bool
	count   int
	value   byte
}

func (r *rlReader) Read(p []byte) (n int, err error) {
	if r.err != nil {
		return 0, r.err
	}

	for len(p) > 0 {
		if r.count > 0 {
			count := min(r.count, len(p))
			if r.literal {
				read, err := io.ReadFull(r.br, p[:count])
				n += read
				r.count -= read
				p = p[read:]
				if err != nil {
					r.err = io.EOF
					return n, nil
				}
			} else {
				for i := range count {
					p[i] = r.value
				}
				n += count
				r.count -= count
				p = p[count:]
			}
			continue
		}

		length, err := r.br.ReadByte()
		if err != nil {
			r.err = err
			if err == io.EOF && n > 0 {
				return n, nil
			}
			return n, err
		}

		switch {
		case length == 128:
			r.err = io.EOF
			if n > 0 {
				return n, nil
			}
			return 0, io.EOF
		case length < 128:
			r.count = int(length) + 1
			r.literal = true
		default:
			r.count = 257 - int(length)
			b, err := r.br.ReadByte()
			if err != nil {
				r.err = io.EOF
				if n > 0 {
					return n, nil
				}
				return 0, io.EOF
			}
			r.literal = false
			r.value = b
		}
	}

	return n, nil
}

func (r *rlReader) Close() error {
	return nil
}
