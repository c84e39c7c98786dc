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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
)

func TestResolveIdempotent(t *testing.T) {
	doc := New(nil)
	defer doc.Close()

	a := doc.Alloc()
	b := doc.Alloc()
	doc.Put(a, Name("Target"))
	doc.Put(b, a) // a chained reference

	values := []Object{
		nil,
		Integer(1),
		Name("X"),
		Array{a},
		a,
		b,
		NewReference(100, 0),
	}
	for _, v := range values {
		once, err := Resolve(doc, v)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := Resolve(doc, once)
		if err != nil {
			t.Fatal(err)
		}
		if Format(once) != Format(twice) {
			t.Errorf("%s: %s != %s", Format(v), Format(once), Format(twice))
		}
		if _, isRef := once.(Reference); isRef {
			t.Errorf("%s resolved to a reference", Format(v))
		}
	}
}

func TestPlaceholder(t *testing.T) {
	doc := New(nil)
	defer doc.Close()

	ref := NewReference(5, 0)
	obj, err := doc.Get(ref)
	if err != nil || obj != nil {
		t.Fatalf("got %v, %v", obj, err)
	}
	if diff := cmp.Diff([]Reference{ref}, doc.Placeholders()); diff != "" {
		t.Error(diff)
	}

	doc.Put(ref, Integer(17))
	obj, err = doc.Get(ref)
	if err != nil || obj != Integer(17) {
		t.Errorf("got %v, %v", obj, err)
	}
	if len(doc.Placeholders()) != 0 {
		t.Error("placeholder was not filled")
	}

	// Alloc must not hand out a number which is in use.
	if next := doc.Alloc(); next == ref {
		t.Error("Alloc returned a used reference")
	}
}

func TestClosedDocument(t *testing.T) {
	doc := New(nil)
	err := doc.Close()
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Close()
	if err != nil {
		t.Errorf("second Close: %v", err)
	}
	_, err = doc.Get(NewReference(1, 0))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
}

func TestScratchSpill(t *testing.T) {
	dir := t.TempDir()
	s := NewScratch(100, dir)

	small, err := s.Append(strings.NewReader("0123456789"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Spilled() {
		t.Fatal("spilled too early")
	}

	big := bytes.Repeat([]byte("abcdefgh"), 50)
	large, err := s.Append(bytes.NewReader(big))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Spilled() {
		t.Fatal("data was not spilled")
	}

	files, _ := filepath.Glob(filepath.Join(dir, "pdfraster-*.tmp"))
	if len(files) != 1 {
		t.Fatalf("found %d temporary files", len(files))
	}

	buf := make([]byte, small.Size())
	_, err = small.ReadAt(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "0123456789" {
		t.Errorf("small section: %q", buf)
	}
	buf = make([]byte, large.Size())
	_, err = large.ReadAt(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, big) {
		t.Error("large section corrupted")
	}

	err = s.Close()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(files[0]); !os.IsNotExist(err) {
		t.Error("temporary file was not removed")
	}
	if _, err := small.ReadAt(buf[:1], 0); !errors.Is(err, ErrClosed) {
		t.Errorf("read after close: %v", err)
	}
}

func TestScratchInMemory(t *testing.T) {
	s := NewScratch(-1, t.TempDir())
	defer s.Close()

	_, err := s.Append(bytes.NewReader(make([]byte, 1<<20)))
	if err != nil {
		t.Fatal(err)
	}
	if s.Spilled() {
		t.Error("negative threshold spilled")
	}
}

func TestScratchAppendError(t *testing.T) {
	errRead := errors.New("read failed")
	for _, threshold := range []int64{-1, 8} {
		s := NewScratch(threshold, t.TempDir())

		first, err := s.Append(strings.NewReader("abc"))
		if err != nil {
			t.Fatal(err)
		}
		r := io.MultiReader(strings.NewReader("0123456789"), iotest.ErrReader(errRead))
		_, err = s.Append(r)
		if !errors.Is(err, errRead) {
			t.Errorf("threshold %d: got %v, want %v", threshold, err, errRead)
		}
		if s.Size() != 3 {
			t.Errorf("threshold %d: size %d after failed append", threshold, s.Size())
		}

		second, err := s.Append(strings.NewReader("xyz"))
		if err != nil {
			t.Fatal(err)
		}
		for i, sec := range []*Section{first, second} {
			buf := make([]byte, 3)
			_, err = sec.ReadAt(buf, 0)
			if err != nil {
				t.Fatal(err)
			}
			if want := []string{"abc", "xyz"}[i]; string(buf) != want {
				t.Errorf("threshold %d: section %d is %q, want %q", threshold, i, buf, want)
			}
		}
		s.Close()
	}
}
