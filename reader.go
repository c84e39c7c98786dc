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
	"os"
)

// Open opens the named PDF file for reading.  The caller must close the
// returned document.
func Open(fname string, opt *Options) (*Document, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	fi, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, err
	}

	d, err := Read(fd, fi.Size(), opt)
	if err != nil {
		fd.Close()
		return nil, err
	}
	d.closer = fd
	return d, nil
}

// Read reads a PDF document from r.  Objects are loaded on demand, so r
// must remain valid until the document is closed.
func Read(r io.ReaderAt, size int64, opt *Options) (*Document, error) {
	d := New(opt)
	d.src = r
	d.size = size

	err := d.readHeader()
	if err != nil {
		d.Close()
		return nil, err
	}

	err = d.readXRef()
	if err == nil && !d.trailer.Has("Root") {
		err = &MalformedFileError{Err: errors.New("trailer without /Root")}
	}
	if err != nil {
		if !IsMalformed(err) && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			d.Close()
			return nil, err
		}
		d.log.Warn("reconstructing xref table", "err", err)
		d.trailer = &Dict{}
		err = d.reconstructXRef()
		if err != nil {
			d.Close()
			return nil, err
		}
	}

	if d.trailer.Has("Encrypt") {
		d.Close()
		return nil, errors.New("encrypted documents are not supported")
	}
	return d, nil
}

func (d *Document) readHeader() error {
	buf := make([]byte, 1024)
	n, err := d.src.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]
	idx := bytes.Index(buf, []byte("%PDF-"))
	if idx < 0 {
		return &MalformedFileError{Err: errNoPDF}
	}
	v := buf[idx+5:]
	end := 0
	for end < len(v) && (v[end] >= '0' && v[end] <= '9' || v[end] == '.') {
		end++
	}
	d.Version = string(v[:end])
	return nil
}

func (d *Document) scannerAt(pos int64) *scanner {
	r := io.NewSectionReader(d.src, pos, d.size-pos)
	return newScanner(r, pos, d.storeStream)
}

// storeStream copies a stream body from the file into the scratch area.
func (d *Document) storeStream(dict *Dict, start int64) (*Stream, int64, error) {
	length := int64(-1)
	if lengthObj, _ := dict.GetItem("Length"); lengthObj != nil {
		if ref, isRef := lengthObj.(Reference); isRef && d.loading[ref] {
			// self-referential /Length
		} else if x, err := GetInteger(d, lengthObj); err == nil {
			length = int64(x)
		}
	}

	if length < 0 || start+length > d.size || !d.hasEndstream(start+length) {
		fixed, err := d.findEndstream(start)
		if err != nil {
			return nil, 0, err
		}
		if length >= 0 {
			d.log.Warn("wrong stream length", "pos", start, "length", length, "actual", fixed)
		}
		length = fixed
	}

	stm, err := d.NewStream(dict, io.NewSectionReader(d.src, start, length))
	if err != nil {
		return nil, 0, err
	}
	return stm, length, nil
}

func (d *Document) hasEndstream(pos int64) bool {
	buf := make([]byte, 32)
	n, _ := d.src.ReadAt(buf, pos)
	rest := bytes.TrimLeft(buf[:n], " \t\r\n\f\x00")
	return bytes.HasPrefix(rest, []byte("endstream"))
}

// findEndstream locates the end of a stream body starting at start, by
// searching for the "endstream" keyword.
func (d *Document) findEndstream(start int64) (int64, error) {
	const chunkSize = 64 * 1024
	pat := []byte("endstream")
	buf := make([]byte, chunkSize+len(pat))
	pos := start
	for pos < d.size {
		n, err := d.src.ReadAt(buf, pos)
		if err != nil && err != io.EOF {
			return 0, err
		}
		if idx := bytes.Index(buf[:n], pat); idx >= 0 {
			end := pos + int64(idx)
			// strip the end-of-line marker before "endstream"
			if end > start {
				var c [2]byte
				d.src.ReadAt(c[:], end-2)
				if c[1] == '\n' && c[0] == '\r' && end-2 >= start {
					end -= 2
				} else if c[1] == '\n' || c[1] == '\r' {
					end--
				}
			}
			return end - start, nil
		}
		if n < len(buf) {
			break
		}
		pos += chunkSize
	}
	return 0, &MalformedFileError{Pos: start, Err: errors.New("endstream not found")}
}

// load reads an object from the file and stores it in the object pool.
func (d *Document) load(ref Reference, entry *xRefEntry) (Object, error) {
	if d.loading[ref] {
		return nil, &MalformedFileError{Err: fmt.Errorf("object %s refers to itself", ref)}
	}
	d.loading[ref] = true
	defer delete(d.loading, ref)

	if entry.InStream != 0 {
		err := d.loadObjectStream(entry.InStream)
		if err != nil {
			return nil, err
		}
		s := d.objects[ref]
		if s == nil || !s.filled {
			return nil, &MalformedFileError{Err: fmt.Errorf("object %s not found in object stream", ref)}
		}
		return s.obj, nil
	}

	if d.src == nil {
		return nil, nil
	}
	s := d.scannerAt(entry.Pos)
	obj, found, err := s.ReadIndirectObject()
	if err != nil {
		return nil, Wrap(err, ref.String())
	}
	if found.Number != ref.Number {
		return nil, &MalformedFileError{
			Pos: entry.Pos,
			Err: fmt.Errorf("expected object %s but found %s", ref, found),
		}
	}
	d.objects[ref] = &slot{obj: obj, filled: true}
	return obj, nil
}

// loadObjectStream reads all objects from a compressed object stream into
// the object pool.
func (d *Document) loadObjectStream(number uint32) error {
	if d.objStms[number] {
		return nil
	}
	d.objStms[number] = true

	stmRef := NewReference(number, 0)
	stm, err := GetStream(d, stmRef)
	if err != nil {
		return err
	} else if stm == nil {
		return &MalformedFileError{Err: fmt.Errorf("object stream %s not found", stmRef)}
	}

	n := stm.GetInt(d, "N", 0)
	first := stm.GetInt(d, "First", 0)
	if n < 0 || first < 0 {
		return &MalformedFileError{Err: errors.New("invalid object stream header")}
	}

	data, err := ReadAll(d, stm)
	if err != nil {
		return err
	}
	if first > len(data) {
		return &MalformedFileError{Err: errors.New("object stream too short")}
	}

	hs := newScanner(bytes.NewReader(data[:first]), 0, nil)
	type header struct {
		number uint32
		offset int64
	}
	headers := make([]header, 0, min(n, first/2+1))
	for range n {
		hs.SkipWhiteSpace()
		num, err := hs.ReadInteger()
		if err != nil {
			break
		}
		hs.SkipWhiteSpace()
		off, err := hs.ReadInteger()
		if err != nil {
			break
		}
		headers = append(headers, header{uint32(num), int64(off)})
	}

	for _, h := range headers {
		ref := NewReference(h.number, 0)
		entry := d.xref[h.number]
		if entry == nil || entry.InStream != number {
			// superseded by a later update
			continue
		}
		if s := d.objects[ref]; s != nil && s.filled {
			continue
		}
		pos := int64(first) + h.offset
		if h.offset < 0 || pos >= int64(len(data)) {
			d.log.Warn("invalid offset in object stream", "ref", ref, "offset", h.offset)
			continue
		}
		s := newScanner(bytes.NewReader(data[pos:]), pos, nil)
		s.SkipWhiteSpace()
		obj, err := s.ReadObject()
		if err != nil {
			d.log.Warn("malformed object in object stream", "ref", ref, "err", err)
			continue
		}
		d.objects[ref] = &slot{obj: obj, filled: true}
	}
	return nil
}
