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

// Package cmap reads the CMaps used by composite (Type 0) fonts.
//
// A CMap maps character codes of one to four bytes to character
// identifiers (CIDs).  Both embedded CMap streams and the predefined
// Identity-H and Identity-V CMaps are supported.
package cmap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/postscript"
)

// References:
// - section 9.7.5 (CMaps) in ISO 32000-2:2020
// - https://adobe-type-tools.github.io/font-tech-notes/pdfs/5014.CIDFont_Spec.pdf

// CID is a character identifier.
// The special value 0 is used to indicate a missing glyph.
type CID uint32

// WritingMode is the writing mode of a CMap.
type WritingMode int

const (
	// Horizontal indicates horizontal writing mode.
	Horizontal WritingMode = 0

	// Vertical indicates vertical writing mode.
	Vertical WritingMode = 1
)

func (m WritingMode) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("WritingMode(%d)", m)
	}
}

// CodeRange is a codespace range.  Low and High have the same length, and
// a code belongs to the range if every byte lies between the corresponding
// bytes of Low and High.
type CodeRange struct {
	Low, High []byte
}

// Contains reports whether code belongs to the range.
func (r CodeRange) Contains(code []byte) bool {
	if len(code) != len(r.Low) || len(code) != len(r.High) {
		return false
	}
	for i, b := range code {
		if b < r.Low[i] || b > r.High[i] {
			return false
		}
	}
	return true
}

// Single specifies that character code Code represents the given CID.
type Single struct {
	Code  []byte
	Value CID
}

// Range describes a range of character codes with consecutive CIDs.
// Value is the CID of the first code in the range.
type Range struct {
	First []byte
	Last  []byte
	Value CID
}

func (r Range) String() string {
	return fmt.Sprintf("% 02x-% 02x: %d", r.First, r.Last, r.Value)
}

// File represents the information from a CMap file.
type File struct {
	Name  pdf.Name
	WMode WritingMode

	CodeSpace     []CodeRange
	CIDSingles    []Single
	CIDRanges     []Range
	NotdefSingles []Single
	NotdefRanges  []Range

	Parent *File // from the UseCMap entry
}

// maxChain limits the length of UseCMap chains.
const maxChain = 8

var errChain = &pdf.MalformedFileError{Err: errors.New("UseCMap chain too long")}

// Read reads a CMap from a PDF file.  The argument must be the name of a
// predefined CMap or a stream containing a CMap.
func Read(r pdf.Getter, obj pdf.Object) (*File, error) {
	return read(r, obj, 0)
}

func read(r pdf.Getter, obj pdf.Object, depth int) (*File, error) {
	if depth >= maxChain {
		return nil, errChain
	}

	obj, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	switch obj := obj.(type) {
	case pdf.Name:
		return Predefined(obj)

	case *pdf.Stream:
		body, err := pdf.DecodeStream(r, obj, 0)
		if err != nil {
			return nil, err
		}
		defer body.Close()

		res, parent, err := Parse(body)
		if err != nil {
			return nil, err
		}

		if name := obj.GetName(r, "CMapName", ""); name != "" {
			res.Name = name
		}
		if obj.GetInt(r, "WMode", 0) == 1 {
			res.WMode = Vertical
		}
		if p := obj.Get(r, "UseCMap"); p != nil {
			parent = p
		}
		if parent != nil {
			res.Parent, err = read(r, parent, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return res, nil

	default:
		return nil, pdf.Error(fmt.Sprintf("invalid CMap object %s", pdf.Format(obj)))
	}
}

// Parse reads a CMap from a PostScript CMap file.  If the file refers to a
// parent CMap with usecmap, the name of the parent is returned as the
// second return value.
func Parse(r io.Reader) (*File, pdf.Object, error) {
	raw, err := postscript.ReadCMap(r)
	if err != nil {
		return nil, nil, &pdf.MalformedFileError{Err: err}
	}

	if tp, _ := raw["CMapType"].(postscript.Integer); !(tp == 0 || tp == 1) {
		return nil, nil, pdf.Error(fmt.Sprintf("invalid CMapType %d", tp))
	}

	res := &File{}
	var parent pdf.Object

	if name, _ := raw["CMapName"].(postscript.Name); name != "" {
		res.Name = pdf.Intern(string(name))
	}
	if wMode, _ := raw["WMode"].(postscript.Integer); wMode == 1 {
		res.WMode = Vertical
	}

	codeMap, _ := raw["CodeMap"].(*postscript.CMapInfo)
	if codeMap == nil {
		return nil, nil, pdf.Error("CMap without code map")
	}
	if codeMap.UseCMap != "" {
		parent = pdf.Intern(string(codeMap.UseCMap))
	}

	for _, entry := range codeMap.CodeSpaceRanges {
		if !rangeIsValid(entry.Low, entry.High) {
			continue
		}
		res.CodeSpace = append(res.CodeSpace, CodeRange{Low: entry.Low, High: entry.High})
	}

	for _, entry := range codeMap.CidChars {
		if cid, ok := toCID(entry.Dst); ok && len(entry.Src) > 0 {
			res.CIDSingles = append(res.CIDSingles, Single{Code: entry.Src, Value: cid})
		}
	}
	for _, entry := range codeMap.CidRanges {
		if cid, ok := toCID(entry.Dst); ok && rangeIsValid(entry.Low, entry.High) {
			res.CIDRanges = append(res.CIDRanges, Range{First: entry.Low, Last: entry.High, Value: cid})
		}
	}
	for _, entry := range codeMap.NotdefChars {
		if cid, ok := toCID(entry.Dst); ok && len(entry.Src) > 0 {
			res.NotdefSingles = append(res.NotdefSingles, Single{Code: entry.Src, Value: cid})
		}
	}
	for _, entry := range codeMap.NotdefRanges {
		if cid, ok := toCID(entry.Dst); ok && rangeIsValid(entry.Low, entry.High) {
			res.NotdefRanges = append(res.NotdefRanges, Range{First: entry.Low, Last: entry.High, Value: cid})
		}
	}

	return res, parent, nil
}

func toCID(obj postscript.Object) (CID, bool) {
	x, ok := obj.(postscript.Integer)
	if !ok || x < 0 || x > 0xFFFF_FFFF {
		return 0, false
	}
	return CID(x), true
}

func rangeIsValid(low, high []byte) bool {
	if len(low) != len(high) || len(low) == 0 || len(low) > 4 {
		return false
	}
	for i := range low {
		if low[i] > high[i] {
			return false
		}
	}
	return true
}

// codeSpace returns the codespace ranges of the CMap.  If the CMap itself
// has none, the ranges of the parent are used.
func (c *File) codeSpace() []CodeRange {
	for f := c; f != nil; f = f.Parent {
		if len(f.CodeSpace) > 0 {
			return f.CodeSpace
		}
	}
	return nil
}

// IsValid reports whether code is a complete code in the codespace of the
// CMap.
func (c *File) IsValid(code []byte) bool {
	for _, r := range c.codeSpace() {
		if r.Contains(code) {
			return true
		}
	}
	return false
}

// Split returns the length of the first character code in s.
//
// If no codespace range matches, the length of the shortest range whose
// first byte matches is used.  If even this fails, a single byte is
// consumed.  The return value is 0 only if s is empty.
func (c *File) Split(s []byte) int {
	if len(s) == 0 {
		return 0
	}
	cs := c.codeSpace()
	for n := 1; n <= 4 && n <= len(s); n++ {
		for _, r := range cs {
			if r.Contains(s[:n]) {
				return n
			}
		}
	}

	best := 0
	for _, r := range cs {
		if s[0] < r.Low[0] || s[0] > r.High[0] {
			continue
		}
		if best == 0 || len(r.Low) < best {
			best = len(r.Low)
		}
	}
	if best == 0 {
		best = 1
	}
	return min(best, len(s))
}

// All iterates over the character codes in s, together with the
// corresponding CIDs.
func (c *File) All(s []byte) iter.Seq2[[]byte, CID] {
	return func(yield func([]byte, CID) bool) {
		for len(s) > 0 {
			n := c.Split(s)
			code := s[:n]
			if !yield(code, c.LookupCID(code)) {
				return
			}
			s = s[n:]
		}
	}
}

// LookupCID returns the CID for the given character code.
// Codes which are not mapped give the notdef CID, usually 0.
func (c *File) LookupCID(code []byte) CID {
	for f := c; f != nil; f = f.Parent {
		for _, s := range f.CIDSingles {
			if bytes.Equal(s.Code, code) {
				return s.Value
			}
		}

	rangesLoop:
		for _, r := range f.CIDRanges {
			if len(r.First) != len(code) || len(r.Last) != len(code) {
				continue
			}
			var index int
			for i, b := range code {
				if b < r.First[i] || b > r.Last[i] {
					continue rangesLoop
				}
				index = index*int(r.Last[i]-r.First[i]+1) + int(b-r.First[i])
			}
			return r.Value + CID(index)
		}
	}

	return c.LookupNotdefCID(code)
}

// LookupNotdefCID returns the CID used for the given code if the code
// does not map to a glyph.
func (c *File) LookupNotdefCID(code []byte) CID {
	for f := c; f != nil; f = f.Parent {
		for _, s := range f.NotdefSingles {
			if bytes.Equal(s.Code, code) {
				return s.Value
			}
		}
		for _, r := range f.NotdefRanges {
			if (CodeRange{Low: r.First, High: r.Last}).Contains(code) {
				return r.Value
			}
		}
	}
	return 0
}

// IsIdentity reports whether the CMap maps two-byte codes to the CID with
// the same value.
func (c *File) IsIdentity() bool {
	return c == identityH || c == identityV
}

var (
	identityH = newIdentity("Identity-H", Horizontal)
	identityV = newIdentity("Identity-V", Vertical)
)

func newIdentity(name pdf.Name, wMode WritingMode) *File {
	return &File{
		Name:      name,
		WMode:     wMode,
		CodeSpace: []CodeRange{{Low: []byte{0x00, 0x00}, High: []byte{0xFF, 0xFF}}},
		CIDRanges: []Range{{First: []byte{0x00, 0x00}, Last: []byte{0xFF, 0xFF}, Value: 0}},
	}
}

// ErrUnknownCMap is returned by [Predefined] for names which are not
// available.
var ErrUnknownCMap = errors.New("unknown predefined CMap")

var (
	predefinedMu sync.RWMutex
	predefined   = make(map[pdf.Name]*File)
)

// Predefined returns the predefined CMap with the given name.
// Only the Identity-H and Identity-V CMaps are built in.
func Predefined(name pdf.Name) (*File, error) {
	predefinedMu.RLock()
	res, ok := predefined[name]
	predefinedMu.RUnlock()
	if ok {
		return res, nil
	}

	predefinedMu.Lock()
	defer predefinedMu.Unlock()
	if res, ok := predefined[name]; ok {
		return res, nil
	}

	switch name {
	case "Identity-H":
		res = identityH
	case "Identity-V":
		res = identityV
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownCMap, name)
	}
	predefined[name] = res
	return res, nil
}
