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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDictNullRemoval(t *testing.T) {
	d := NewDict("A", Integer(1), "B", Integer(2))
	d.Set("A", Null{})
	if _, ok := d.GetItem("A"); ok {
		t.Error("null value was stored")
	}

	d.Set("B", nil)
	if _, ok := d.GetItem("B"); ok {
		t.Error("nil value was stored")
	}

	fresh := &Dict{}
	if d.Len() != fresh.Len() || d.Has("A") != fresh.Has("A") {
		t.Error("dictionary differs from an empty one")
	}
}

func TestDictOrder(t *testing.T) {
	d := &Dict{}
	for _, key := range []Name{"Z", "A", "M", "B"} {
		d.Set(key, Boolean(true))
	}
	d.Set("A", Integer(7)) // overwriting keeps the position
	d.Delete("M")

	want := []Name{"Z", "A", "B"}
	if diff := cmp.Diff(want, d.Keys()); diff != "" {
		t.Error(diff)
	}
}

func TestDictParserKeepsNull(t *testing.T) {
	d := &Dict{}
	d.put("X", Null{})

	val, ok := d.GetItem("X")
	if !ok || !IsNull(val) {
		t.Error("explicit null was not kept")
	}
	if d.Get(nil, "X") != nil {
		t.Error("Get did not collapse null")
	}
	if d.Has("X") {
		t.Error("Has reported a null entry")
	}
}

func TestDictDefaults(t *testing.T) {
	doc := New(nil)
	defer doc.Close()

	ref := doc.Alloc()
	doc.Put(ref, Integer(12))

	d := NewDict(
		"Int", Integer(3),
		"Real", Real(2.5),
		"Name", Name("Foo"),
		"Bool", Boolean(true),
		"Indirect", ref,
		"Broken", NewReference(999, 0),
		"Floats", Array{Integer(1), Real(0.5)},
		"Mixed", Array{Integer(1), Name("X")},
	)

	cases := []struct {
		name string
		got  any
		want any
	}{
		{"int", d.GetInt(doc, "Int", -1), 3},
		{"int from real", d.GetInt(doc, "Real", -1), 2},
		{"int from name", d.GetInt(doc, "Name", -1), -1},
		{"int missing", d.GetInt(doc, "Nothing", 42), 42},
		{"int indirect", d.GetInt(doc, "Indirect", -1), 12},
		{"int broken", d.GetInt(doc, "Broken", -1), -1},
		{"float", d.GetFloat(doc, "Real", 0), 2.5},
		{"float from int", d.GetFloat(doc, "Int", 0), 3.0},
		{"name", d.GetName(doc, "Name", ""), Name("Foo")},
		{"name from int", d.GetName(doc, "Int", "Default"), Name("Default")},
		{"bool", d.GetBool(doc, "Bool", false), true},
		{"bool from int", d.GetBool(doc, "Int", false), false},
		{"floats", d.GetFloats(doc, "Floats"), []float64{1, 0.5}},
		{"mixed floats", d.GetFloats(doc, "Mixed"), []float64(nil)},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, c.got); diff != "" {
			t.Errorf("%s: %s", c.name, diff)
		}
	}
}
