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

package cmap

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfraster"
)

const testCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo 3 dict dup begin
/Registry (Test) def
/Ordering (Example) def
/Supplement 0 def
end def
/CMapName /Test-H def
/CMapType 1 def
/WMode 0 def
2 begincodespacerange
<00> <80>
<8140> <FFFF>
endcodespacerange
1 begincidchar
<41> 100
endcidchar
1 begincidrange
<8140> <817F> 1000
endcidrange
1 beginnotdefrange
<00> <1F> 1
endnotdefrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`

func TestParse(t *testing.T) {
	f, parent, err := Parse(strings.NewReader(testCMap))
	if err != nil {
		t.Fatal(err)
	}
	if parent != nil {
		t.Errorf("unexpected parent %v", parent)
	}
	if f.Name != "Test-H" {
		t.Errorf("wrong name %q", f.Name)
	}

	want := []CodeRange{
		{Low: []byte{0x00}, High: []byte{0x80}},
		{Low: []byte{0x81, 0x40}, High: []byte{0xFF, 0xFF}},
	}
	if d := cmp.Diff(want, f.CodeSpace); d != "" {
		t.Errorf("codespace (-want +got):\n%s", d)
	}

	cases := []struct {
		code []byte
		cid  CID
	}{
		{[]byte{0x41}, 100},
		{[]byte{0x81, 0x40}, 1000},
		{[]byte{0x81, 0x50}, 1016},
		{[]byte{0x05}, 1},
		{[]byte{0x42}, 0},
	}
	for _, c := range cases {
		if got := f.LookupCID(c.code); got != c.cid {
			t.Errorf("LookupCID(% x) = %d, want %d", c.code, got, c.cid)
		}
	}
}

func TestSplit(t *testing.T) {
	f, _, err := Parse(strings.NewReader(testCMap))
	if err != nil {
		t.Fatal(err)
	}

	var codes []string
	var cids []CID
	for code, cid := range f.All([]byte{0x41, 0x81, 0x50, 0x90}) {
		codes = append(codes, string(code))
		cids = append(cids, cid)
	}
	wantCodes := []string{"\x41", "\x81\x50", "\x90"}
	if d := cmp.Diff(wantCodes, codes); d != "" {
		t.Errorf("codes (-want +got):\n%s", d)
	}
	wantCIDs := []CID{100, 1016, 0}
	if d := cmp.Diff(wantCIDs, cids); d != "" {
		t.Errorf("CIDs (-want +got):\n%s", d)
	}

	if n := f.Split(nil); n != 0 {
		t.Errorf("Split(nil) = %d", n)
	}
}

func TestIdentity(t *testing.T) {
	for _, name := range []pdf.Name{"Identity-H", "Identity-V"} {
		f, err := Read(nil, name)
		if err != nil {
			t.Fatal(err)
		}
		if !f.IsIdentity() {
			t.Errorf("%s: not identity", name)
		}
		if got := f.LookupCID([]byte{0x12, 0x34}); got != 0x1234 {
			t.Errorf("%s: got CID %d", name, got)
		}
		if f.Split([]byte{1, 2, 3}) != 2 {
			t.Errorf("%s: wrong code length", name)
		}
	}
	v, _ := Predefined("Identity-V")
	if v.WMode != Vertical {
		t.Error("Identity-V is not vertical")
	}

	_, err := Predefined("UniJIS-UCS2-H")
	if err == nil {
		t.Error("missing error for unknown CMap")
	}
}

func TestUseCMap(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	body := `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CMapName /Child def
/CMapType 1 def
1 begincidchar
<0041> 7
endcidchar
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`
	dict := pdf.NewDict("Type", pdf.Name("CMap"), "UseCMap", pdf.Name("Identity-H"))
	stm, err := doc.NewStream(dict, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	ref := doc.Alloc()
	doc.Put(ref, stm)

	f, err := Read(doc, ref)
	if err != nil {
		t.Fatal(err)
	}
	if f.Parent == nil || f.Parent.Name != "Identity-H" {
		t.Fatal("parent CMap not found")
	}
	if got := f.LookupCID([]byte{0x00, 0x41}); got != 7 {
		t.Errorf("overridden code: got %d", got)
	}
	if got := f.LookupCID([]byte{0x00, 0x42}); got != 0x42 {
		t.Errorf("inherited code: got %d", got)
	}
	if f.Split([]byte{0x00, 0x41}) != 2 {
		t.Error("codespace not inherited")
	}
}

func TestUseCMapLoop(t *testing.T) {
	doc := pdf.New(nil)
	defer doc.Close()

	ref := doc.Alloc()
	body := "/CIDInit /ProcSet findresource begin 12 dict begin begincmap " +
		"/CMapName /Loop def /CMapType 1 def endcmap " +
		"CMapName currentdict /CMap defineresource pop end end"
	stm, err := doc.NewStream(pdf.NewDict("UseCMap", ref), strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	doc.Put(ref, stm)

	_, err = Read(doc, ref)
	if err == nil {
		t.Error("missing error for UseCMap loop")
	}
}

func TestPredefinedConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	res := make([]*File, 16)
	for i := range res {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res[i], _ = Predefined("Identity-H")
		}()
	}
	wg.Wait()
	for _, f := range res {
		if f != identityH {
			t.Fatal("wrong CMap instance")
		}
	}
}
