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
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
)

func TestInternIdentity(t *testing.T) {
	for _, text := range []string{"Type", "Widths", "SomethingUnusual", "", "A#20B"} {
		a := Intern(text)
		b := Intern(strings.Clone(text))
		if a != b {
			t.Errorf("%q: %q != %q", text, a, b)
		}
		if len(text) > 0 && unsafe.StringData(string(a)) != unsafe.StringData(string(b)) {
			t.Errorf("%q: interned names do not share storage", text)
		}
	}
}

func TestInternConcurrent(t *testing.T) {
	const workers = 8
	res := make([]Name, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res[i] = Intern(strings.Repeat("Concurrent", 3))
		}()
	}
	wg.Wait()

	want := unsafe.StringData(string(Intern(strings.Repeat("Concurrent", 3))))
	for i, n := range res {
		if unsafe.StringData(string(n)) != want {
			t.Errorf("worker %d got a different instance", i)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in  Object
		out string
	}{
		{nil, "null"},
		{Null{}, "null"},
		{Boolean(true), "true"},
		{Integer(-12), "-12"},
		{Real(1), "1.0"},
		{Real(0.25), "0.25"},
		{Name("A B"), "/A#20B"},
		{Name("Type"), "/Type"},
		{String("a(b)c"), `(a\(b\)c)`},
		{String{0, 1, 2, 3}, "<00010203>"},
		{Array{Integer(1), nil, Name("X")}, "[1 null /X]"},
		{NewReference(12, 3), "12 3 R"},
		{NewDict("Type", Name("Page"), "Count", Integer(2)), "<<\n/Type /Page\n/Count 2\n>>"},
	}
	for _, test := range cases {
		got := Format(test.in)
		if got != test.out {
			t.Errorf("Format(%v) = %q, want %q", test.in, got, test.out)
		}
	}
}

func TestStream(t *testing.T) {
	doc := New(nil)
	defer doc.Close()

	body := "hello world"
	stm, err := doc.NewStream(NewDict("Type", Name("Test")), strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if stm.RawSize() != int64(len(body)) {
		t.Errorf("wrong size %d", stm.RawSize())
	}

	buf := &bytes.Buffer{}
	err = stm.PDF(buf)
	if err != nil {
		t.Fatal(err)
	}
	want := "<<\n/Type /Test\n/Length 11\n>>\nstream\nhello world\nendstream"
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Error(d)
	}

	for range 2 {
		data, err := ReadAll(doc, stm)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != body {
			t.Errorf("got %q", data)
		}
	}
}
