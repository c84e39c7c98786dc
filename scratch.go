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
	"os"
	"sync"
)

// DefaultSpillThreshold is the amount of stream data kept in memory before
// a [Scratch] area moves to a temporary file.
const DefaultSpillThreshold = 16 << 20

// Scratch is an append-only storage area for stream bodies.
//
// Data is kept in memory until the total size exceeds the spill threshold.
// After this, all data is moved to a temporary file.  Close releases the
// storage and removes the temporary file.
type Scratch struct {
	mu        sync.Mutex
	threshold int64
	dir       string

	mem    []byte
	file   *os.File
	size   int64
	closed bool
}

// NewScratch returns a new scratch area.  If threshold is zero,
// [DefaultSpillThreshold] is used; a negative threshold keeps everything
// in memory.  Temporary files are created in dir, or in the default
// directory for temporary files if dir is empty.
func NewScratch(threshold int64, dir string) *Scratch {
	if threshold == 0 {
		threshold = DefaultSpillThreshold
	}
	return &Scratch{threshold: threshold, dir: dir}
}

// Size returns the number of bytes stored.
func (s *Scratch) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Spilled reports whether the data has been moved to a temporary file.
func (s *Scratch) Spilled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file != nil
}

// Append copies all data from r into the scratch area and returns the
// section which holds the data.
func (s *Scratch) Append(r io.Reader) (*Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	start := s.size
	if s.file == nil {
		buf := make([]byte, 32*1024)
		for {
			n, err := r.Read(buf)
			s.mem = append(s.mem, buf[:n]...)
			s.size += int64(n)
			if s.threshold > 0 && s.size > s.threshold {
				if spillErr := s.spill(); spillErr != nil {
					return nil, s.truncate(start, spillErr)
				}
				if err == io.EOF {
					return &Section{s: s, start: start, n: s.size - start}, nil
				} else if err != nil {
					return nil, s.truncate(start, err)
				}
				break
			}
			if err == io.EOF {
				return &Section{s: s, start: start, n: s.size - start}, nil
			} else if err != nil {
				return nil, s.truncate(start, err)
			}
		}
	}

	if _, err := s.file.Seek(s.size, io.SeekStart); err != nil {
		return nil, s.truncate(start, err)
	}
	n, err := io.Copy(s.file, r)
	s.size += n
	if err != nil {
		return nil, s.truncate(start, err)
	}
	return &Section{s: s, start: start, n: s.size - start}, nil
}

// truncate discards everything stored after position start and returns
// err.  The caller must hold s.mu.
func (s *Scratch) truncate(start int64, err error) error {
	if s.file != nil {
		if truncErr := s.file.Truncate(start); truncErr != nil {
			return errors.Join(err, truncErr)
		}
	} else {
		s.mem = s.mem[:start]
	}
	s.size = start
	return err
}

// spill moves the in-memory data to a temporary file.
// The caller must hold s.mu.
func (s *Scratch) spill() error {
	f, err := os.CreateTemp(s.dir, "pdfraster-*.tmp")
	if err != nil {
		return err
	}
	if _, err := f.Write(s.mem); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	s.file = f
	s.mem = nil
	return nil
}

func (s *Scratch) readAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if s.file != nil {
		return s.file.ReadAt(p, off)
	}
	if off >= int64(len(s.mem)) {
		return 0, io.EOF
	}
	n := copy(p, s.mem[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close releases the scratch storage.  Close can be called more than once.
func (s *Scratch) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.mem = nil
	if s.file == nil {
		return nil
	}
	name := s.file.Name()
	err := s.file.Close()
	s.file = nil
	return errors.Join(err, os.Remove(name))
}

// Section is a byte range inside a [Scratch] area.
type Section struct {
	s        *Scratch
	start, n int64
}

// Size returns the length of the section in bytes.
func (sec *Section) Size() int64 {
	return sec.n
}

// ReadAt implements the [io.ReaderAt] interface.
func (sec *Section) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= sec.n {
		return 0, io.EOF
	}
	if rest := sec.n - off; int64(len(p)) > rest {
		p = p[:rest]
		n, err := sec.s.readAt(p, sec.start+off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return sec.s.readAt(p, sec.start+off)
}

// Reader returns a new reader for the data in the section.
func (sec *Section) Reader() io.Reader {
	return io.NewSectionReader(sec, 0, sec.n)
}
