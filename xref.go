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
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

type xRefEntry struct {
	// Pos is the byte offset of the object, or the index inside the
	// object stream if InStream is non-zero.  Free objects have Pos < 0.
	Pos        int64
	Generation uint16
	InStream   uint32
}

// IsFree reports whether the entry describes a free object.
func (entry *xRefEntry) IsFree() bool {
	return entry == nil || entry.Pos < 0
}

func (d *Document) findXRef() (int64, error) {
	pos, err := d.lastOccurence("startxref")
	if err != nil {
		return 0, err
	}
	s := d.scannerAt(pos + 9)
	if err := s.SkipWhiteSpace(); err != nil {
		return 0, err
	}
	xRefPos, err := s.ReadInteger()
	if err != nil {
		return 0, err
	}
	if xRefPos <= 0 || int64(xRefPos) >= d.size {
		return 0, &MalformedFileError{
			Pos: s.currentPos(),
			Err: errors.New("invalid xref position"),
		}
	}
	return int64(xRefPos), nil
}

func (d *Document) lastOccurence(pat string) (int64, error) {
	const chunkSize = 1024

	buf := make([]byte, chunkSize)
	k := int64(len(pat))
	pos := d.size
	for pos >= k {
		start := max(pos-chunkSize, 0)
		n, err := d.src.ReadAt(buf[:pos-start], start)
		if err != nil && err != io.EOF {
			return 0, err
		}

		idx := bytes.LastIndex(buf[:n], []byte(pat))
		if idx >= 0 {
			return start + int64(idx), nil
		}
		if start == 0 {
			break
		}
		pos = start + k - 1
	}
	return 0, &MalformedFileError{Err: errors.New("startxref not found")}
}

// readXRef reads the chain of cross-reference sections, starting from the
// section pointed to by "startxref".  Entries from newer sections take
// precedence.
func (d *Document) readXRef() error {
	start, err := d.findXRef()
	if err != nil {
		return err
	}

	first := true
	seen := make(map[int64]bool)
	for !seen[start] {
		seen[start] = true

		s := d.scannerAt(start)
		s.SkipWhiteSpace()
		buf, err := s.Peek(4)
		if err != nil {
			return err
		}
		var dict *Dict
		if bytes.Equal(buf, []byte("xref")) {
			dict, err = d.readXRefTable(s)
			if err != nil {
				return err
			}
			if zStart, ok := dict.vals["XRefStm"].(Integer); ok {
				// hybrid file: the stream supplements the table
				if _, err := d.readXRefStream(d.scannerAt(int64(zStart))); err != nil {
					return err
				}
			}
		} else {
			dict, err = d.readXRefStream(s)
			if err != nil {
				return err
			}
		}

		if first {
			for _, key := range []Name{"Root", "Encrypt", "Info", "ID", "Size"} {
				if val, ok := dict.GetItem(key); ok {
					d.trailer.Set(key, val)
				}
			}
			first = false
		}

		prev, ok := dict.vals["Prev"].(Integer)
		if !ok {
			break
		}
		if prev <= 0 || int64(prev) >= d.size {
			return &MalformedFileError{
				Pos: start,
				Err: fmt.Errorf("invalid /Prev value %d", prev),
			}
		}
		start = int64(prev)
	}

	return nil
}

func (d *Document) readXRefTable(s *scanner) (*Dict, error) {
	err := s.SkipString("xref")
	if err != nil {
		return nil, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}

	for {
		buf, err := s.Peek(1)
		if err != nil {
			return nil, err
		}
		if len(buf) == 0 || buf[0] < '0' || buf[0] > '9' {
			break
		}

		start, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		s.SkipWhiteSpace()
		length, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		if start < 0 || length < 0 || start+length > 1<<32-1 {
			return nil, s.malformed("invalid xref subsection %d %d", start, length)
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}

		err = d.decodeXRefSection(s, uint32(start), uint32(start+length))
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
	}

	err = s.SkipString("trailer")
	if err != nil {
		return nil, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	return s.ReadDict()
}

func (d *Document) decodeXRefSection(s *scanner, start, end uint32) error {
	for i := start; i < end; i++ {
		buf, err := s.Peek(20)
		if err != nil {
			return err
		}
		if len(buf) < 18 {
			return &MalformedFileError{Pos: s.currentPos(), Err: io.ErrUnexpectedEOF}
		}

		// Entries are supposed to be exactly 20 bytes long, but some
		// writers use a single-byte line ending.
		entryLen := 20
		if isSpace[buf[18]] && !isSpace[buf[19]] {
			entryLen = 19
		}

		if d.xref[i] != nil {
			s.pos += entryLen
			continue
		}

		a, err := strconv.ParseInt(string(buf[:10]), 10, 64)
		if err != nil {
			return &MalformedFileError{Pos: s.currentPos(), Err: err}
		}
		b, err := strconv.ParseUint(string(buf[11:16]), 10, 16)
		if err != nil {
			if !bytes.HasPrefix(buf, []byte("0000000000 65536 ")) {
				return &MalformedFileError{Pos: s.currentPos(), Err: err}
			}
			b = 65535
			buf[17] = 'f'
		}
		switch buf[17] {
		case 'f':
			d.xref[i] = &xRefEntry{Pos: -1, Generation: uint16(b)}
		case 'n':
			d.xref[i] = &xRefEntry{Pos: a, Generation: uint16(b)}
		default:
			return s.malformed("malformed xref table")
		}
		d.maxNumber = max(d.maxNumber, i)

		s.pos += entryLen
	}
	return nil
}

func (d *Document) readXRefStream(s *scanner) (*Dict, error) {
	obj, _, err := s.ReadIndirectObject()
	if err != nil {
		return nil, err
	}
	stream, ok := obj.(*Stream)
	if !ok {
		return nil, s.malformed("invalid xref stream")
	}

	w, ss, err := checkXRefStreamDict(stream.Dict)
	if err != nil {
		return nil, err
	}
	// The xref stream may not use indirect objects in its dictionary,
	// so no Getter is needed.
	body, err := DecodeStream(nil, stream, 0)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	err = d.decodeXRefStream(body, w, ss)
	if err != nil {
		return nil, err
	}

	return stream.Dict, nil
}

type xRefSubSection struct {
	Start, Size uint32
}

func checkXRefStreamDict(dict *Dict) ([]int, []xRefSubSection, error) {
	size, ok := dict.vals["Size"].(Integer)
	if !ok || size < 0 || size > 1<<32-1 {
		return nil, nil, Error("xref stream: invalid /Size")
	}
	W, ok := dict.vals["W"].(Array)
	if !ok || len(W) < 3 {
		return nil, nil, Error("xref stream: invalid /W")
	}
	var w []int
	for i, Wi := range W {
		wi, ok := Wi.(Integer)
		if !ok || i < 3 && (wi < 0 || wi > 8) {
			return nil, nil, Error("xref stream: invalid /W")
		}
		w = append(w, int(wi))
	}

	var ss []xRefSubSection
	ind, ok := dict.vals["Index"].(Array)
	if !ok {
		ss = append(ss, xRefSubSection{0, uint32(size)})
	} else {
		if len(ind)%2 != 0 {
			return nil, nil, Error("xref stream: invalid /Index")
		}
		for i := 0; i < len(ind); i += 2 {
			start, ok1 := ind[i].(Integer)
			n, ok2 := ind[i+1].(Integer)
			if !ok1 || !ok2 || start < 0 || n < 0 || start+n > 1<<32-1 {
				return nil, nil, Error("xref stream: invalid /Index")
			}
			ss = append(ss, xRefSubSection{uint32(start), uint32(n)})
		}
	}
	return w, ss, nil
}

func (d *Document) decodeXRefStream(r io.Reader, w []int, ss []xRefSubSection) error {
	wTotal := 0
	for _, wi := range w {
		wTotal += wi
	}
	buf := make([]byte, wTotal)

	w0, w1, w2 := w[0], w[1], w[2]
	for _, sec := range ss {
		for i := sec.Start; i < sec.Start+sec.Size; i++ {
			_, err := io.ReadFull(r, buf)
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			} else if err != nil {
				return err
			}

			if d.xref[i] != nil {
				continue
			}

			tp := decodeInt(buf[:w0])
			if w0 == 0 {
				tp = 1
			}
			a := decodeInt(buf[w0 : w0+w1])
			b := decodeInt(buf[w0+w1 : w0+w1+w2])
			switch tp {
			case 0:
				d.xref[i] = &xRefEntry{Pos: -1, Generation: uint16(b)}
			case 1:
				d.xref[i] = &xRefEntry{Pos: a, Generation: uint16(b)}
			case 2:
				d.xref[i] = &xRefEntry{Pos: b, InStream: uint32(a)}
			}
			d.maxNumber = max(d.maxNumber, i)
		}
	}
	return nil
}

func decodeInt(buf []byte) (res int64) {
	for _, x := range buf {
		res = res<<8 | int64(x)
	}
	return res
}

var objHeader = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d{1,10})\s+(\d{1,5})\s+obj\b`)

// reconstructXRef rebuilds the cross-reference table by scanning the whole
// file for object headers.  This is used when the xref table is damaged.
func (d *Document) reconstructXRef() error {
	data := make([]byte, d.size)
	n, err := d.src.ReadAt(data, 0)
	if err != nil && err != io.EOF {
		return err
	}
	data = data[:n]

	clear(d.xref)
	for _, m := range objHeader.FindAllSubmatchIndex(data, -1) {
		num, err1 := strconv.ParseUint(string(data[m[2]:m[3]]), 10, 32)
		gen, err2 := strconv.ParseUint(string(data[m[4]:m[5]]), 10, 16)
		if err1 != nil || err2 != nil {
			continue
		}
		// Later definitions override earlier ones, as for incremental
		// updates.
		d.xref[uint32(num)] = &xRefEntry{Pos: int64(m[2]), Generation: uint16(gen)}
		d.maxNumber = max(d.maxNumber, uint32(num))
	}
	if len(d.xref) == 0 {
		return &MalformedFileError{Err: errors.New("no objects found")}
	}

	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		s := newScanner(bytes.NewReader(data[idx+7:]), int64(idx+7), nil)
		s.SkipWhiteSpace()
		if dict, err := s.ReadDict(); err == nil {
			for key, val := range dict.All() {
				d.trailer.Set(key, val)
			}
		}
	}
	if d.trailer.Has("Root") {
		return nil
	}

	// Find the catalog by looking at all objects.
	for num, entry := range d.xref {
		ref := NewReference(num, entry.Generation)
		obj, err := d.Get(ref)
		if err != nil {
			continue
		}
		if dict, ok := obj.(*Dict); ok && dict.GetName(d, "Type", "") == "Catalog" {
			d.trailer.Set("Root", ref)
			return nil
		}
	}
	return &MalformedFileError{Err: errors.New("document catalog not found")}
}
