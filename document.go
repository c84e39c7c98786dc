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
	"errors"
	"io"
	"log/slog"
	"slices"
)

// Options control how a [Document] is created or read.
type Options struct {
	// SpillThreshold is the amount of stream data kept in memory before
	// the scratch area moves to a temporary file.  Zero selects
	// [DefaultSpillThreshold], a negative value never spills.
	SpillThreshold int64

	// ScratchDir is the directory for temporary files.
	ScratchDir string

	// Logger receives diagnostics about repaired input.
	// If this is nil, [slog.Default] is used.
	Logger *slog.Logger
}

// Document is the object graph of a PDF file.
//
// The document owns an object pool, indexed by [Reference], and the scratch
// storage for all stream bodies.  Objects of documents read from a file
// are loaded lazily, using the cross-reference table.
//
// A Document is not safe for concurrent use.
type Document struct {
	objects map[Reference]*slot
	xref    map[uint32]*xRefEntry
	trailer *Dict

	// Version is the version string from the file header, e.g. "1.7".
	Version string

	src     io.ReaderAt
	size    int64
	closer  io.Closer
	scratch *Scratch
	log     *slog.Logger

	loading   map[Reference]bool
	objStms   map[uint32]bool
	maxNumber uint32
	closed    bool
}

// slot holds one indirect object.  Unfilled slots are placeholders for
// objects which have been referenced before their definition was seen.
type slot struct {
	obj    Object
	filled bool
}

// New returns an empty document.
func New(opt *Options) *Document {
	if opt == nil {
		opt = &Options{}
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Document{
		objects: make(map[Reference]*slot),
		xref:    make(map[uint32]*xRefEntry),
		trailer: &Dict{},
		scratch: NewScratch(opt.SpillThreshold, opt.ScratchDir),
		log:     log,
		loading: make(map[Reference]bool),
		objStms: make(map[uint32]bool),
	}
}

// Logger returns the logger used for diagnostics.
func (d *Document) Logger() *slog.Logger {
	return d.log
}

// Get returns the object with the given reference.
//
// If the object has not been seen yet, a placeholder is created and nil
// is returned.  A later call to [Document.Put] fills the placeholder.
func (d *Document) Get(ref Reference) (Object, error) {
	if d.closed {
		return nil, ErrClosed
	}

	if s, ok := d.objects[ref]; ok && s.filled {
		return s.obj, nil
	}

	if entry := d.xref[ref.Number]; entry != nil && !entry.IsFree() {
		if entry.Generation == ref.Generation || entry.InStream != 0 {
			obj, err := d.load(ref, entry)
			if err != nil {
				d.log.Warn("cannot load object", "ref", ref, "err", err)
				if !IsMalformed(err) {
					return nil, err
				}
			} else {
				return obj, nil
			}
		}
	}

	if _, ok := d.objects[ref]; !ok {
		d.objects[ref] = &slot{}
	}
	return nil, nil
}

// Put stores obj in the object pool.  If a placeholder for ref exists, it
// is filled.  Storing nil removes the object.
func (d *Document) Put(ref Reference, obj Object) {
	if obj == nil {
		delete(d.objects, ref)
		return
	}
	d.objects[ref] = &slot{obj: obj, filled: true}
	d.maxNumber = max(d.maxNumber, ref.Number)
}

// Alloc returns a reference for a new indirect object.
func (d *Document) Alloc() Reference {
	n := d.maxNumber + 1
	for {
		_, used := d.objects[NewReference(n, 0)]
		if !used && d.xref[n] == nil {
			break
		}
		n++
	}
	d.maxNumber = n
	ref := NewReference(n, 0)
	d.objects[ref] = &slot{}
	return ref
}

// Placeholders returns the references which have been read but not yet
// defined, in increasing order.
func (d *Document) Placeholders() []Reference {
	var res []Reference
	for ref, s := range d.objects {
		if !s.filled {
			res = append(res, ref)
		}
	}
	slices.SortFunc(res, func(a, b Reference) int {
		if a.Number != b.Number {
			return int(a.Number) - int(b.Number)
		}
		return int(a.Generation) - int(b.Generation)
	})
	return res
}

// NewStream creates a stream with the given dictionary.  The data from body
// is copied into the scratch storage of the document.
func (d *Document) NewStream(dict *Dict, body io.Reader) (*Stream, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if dict == nil {
		dict = &Dict{}
	}
	sec, err := d.scratch.Append(body)
	if err != nil {
		return nil, err
	}
	return &Stream{Dict: dict, body: sec}, nil
}

// Trailer returns the trailer dictionary.
func (d *Document) Trailer() *Dict {
	return d.trailer
}

// Catalog returns the document catalog, or nil if the catalog is missing.
func (d *Document) Catalog() *Dict {
	return d.trailer.GetDict(d, "Root")
}

// Close releases the scratch storage and the underlying file, if any.
// Objects obtained from the document must not be used after Close.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.objects = nil

	var errs []error
	errs = append(errs, d.scratch.Close())
	if d.closer != nil {
		errs = append(errs, d.closer.Close())
	}
	return errors.Join(errs...)
}

// LoggerFor returns the logger used by r for diagnostics.  If r does not
// provide a logger, [slog.Default] is returned.
func LoggerFor(r Getter) *slog.Logger {
	if lr, ok := r.(interface{ Logger() *slog.Logger }); ok {
		if log := lr.Logger(); log != nil {
			return log
		}
	}
	return slog.Default()
}
