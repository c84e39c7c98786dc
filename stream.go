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

	"seehuhn.de/go/pdfraster/filter"
)

// Stream represents a stream object in a PDF file.
//
// The stream body is held in the scratch area of the document which
// created the stream.  The body is written once and can be read any
// number of times until the document is closed.
type Stream struct {
	*Dict

	body *Section
}

// NewInlineStream returns a stream which keeps data in memory, outside of
// any document.  Content streams use this for inline images.
func NewInlineStream(dict *Dict, data []byte) *Stream {
	if dict == nil {
		dict = &Dict{}
	}
	s := NewScratch(-1, "")
	sec, _ := s.Append(bytes.NewReader(data))
	return &Stream{Dict: dict, body: sec}
}

// Raw returns a reader for the encoded stream data.
func (x *Stream) Raw() io.Reader {
	if x == nil || x.body == nil {
		return bytes.NewReader(nil)
	}
	return x.body.Reader()
}

// RawSize returns the length of the encoded stream data.
func (x *Stream) RawSize() int64 {
	if x == nil || x.body == nil {
		return 0
	}
	return x.body.Size()
}

// PDF implements the [Object] interface.
func (x *Stream) PDF(w io.Writer) error {
	dict := x.Dict.Clone()
	if dict == nil {
		dict = &Dict{}
	}
	dict.Set("Length", Integer(x.RawSize()))
	err := dict.PDF(w)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\nstream\n")
	if err != nil {
		return err
	}
	_, err = io.Copy(w, x.Raw())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\nendstream")
	return err
}

func (*Stream) isObject() {}

// FilterInfo describes one filter in the filter pipeline of a stream.
type FilterInfo struct {
	Name  Name
	Parms filter.Params
}

// Filters returns the filter pipeline of a stream, in the order in which
// the filters are applied when decoding.
func Filters(r Getter, x *Stream) ([]FilterInfo, error) {
	if x == nil {
		return nil, nil
	}
	filterObj := x.Get(r, "Filter")
	parmsObj := x.Get(r, "DecodeParms")

	var names []Object
	var parms []Object
	switch f := filterObj.(type) {
	case nil:
		return nil, nil
	case Name:
		names = []Object{f}
		parms = []Object{parmsObj}
	case Array:
		names = f
		if pa, ok := parmsObj.(Array); ok {
			parms = pa
		}
	default:
		return nil, &MalformedFileError{
			Err: fmt.Errorf("invalid /Filter %s", Format(filterObj)),
		}
	}

	res := make([]FilterInfo, 0, len(names))
	for i, nameObj := range names {
		name, err := GetName(r, nameObj)
		if err != nil || name == "" {
			return nil, &MalformedFileError{
				Err: fmt.Errorf("invalid filter name %s", Format(nameObj)),
			}
		}
		info := FilterInfo{Name: Name(filter.Normalize(string(name)))}
		if i < len(parms) {
			info.Parms = filterParams(r, parms[i])
		}
		res = append(res, info)
	}
	return res, nil
}

func filterParams(r Getter, obj Object) filter.Params {
	dict, _ := GetDict(r, obj)
	if dict == nil {
		return nil
	}
	res := filter.Params{}
	for key := range dict.All() {
		switch x := dict.Get(r, key).(type) {
		case Integer:
			res[string(key)] = int(x)
		case Real:
			res[string(key)] = int(x)
		case Boolean:
			if x {
				res[string(key)] = 1
			} else {
				res[string(key)] = 0
			}
		}
	}
	return res
}

// DecodeStream returns a reader for the decoded stream data.
//
// The last numSkip filters of the pipeline are not applied.  This allows
// image decoders to handle codecs like DCTDecode themselves.
func DecodeStream(r Getter, x *Stream, numSkip int) (io.ReadCloser, error) {
	filters, err := Filters(r, x)
	if err != nil {
		return nil, err
	}
	if numSkip > len(filters) {
		numSkip = len(filters)
	}
	filters = filters[:len(filters)-numSkip]

	var rc io.ReadCloser = io.NopCloser(x.Raw())
	closers := []io.Closer{}
	for _, fi := range filters {
		next, err := filter.Decode(rc, string(fi.Name), fi.Parms)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, err
		}
		closers = append(closers, next)
		rc = next
	}
	return &multiCloser{ReadCloser: rc, closers: closers}, nil
}

// ReadAll returns the decoded contents of a stream.
func ReadAll(r Getter, x *Stream) ([]byte, error) {
	rc, err := DecodeStream(r, x, 0)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rc)
	return data, errors.Join(err, rc.Close())
}

type multiCloser struct {
	io.ReadCloser
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	return errors.Join(errs...)
}
