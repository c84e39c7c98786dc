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
	"fmt"
	"strings"
	"testing"
)

// buildFile returns a PDF file containing the given objects, numbered from
// 1, with a classical xref table.
func buildFile(objects ...string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefPos := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, pos := range offsets {
		fmt.Fprintf(buf, "%010d 00000 n \n", pos)
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root 1 0 R >>\n", len(objects)+1)
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", xrefPos)
	return buf.Bytes()
}

var testObjects = []string{
	"<< /Type /Catalog /Pages 2 0 R >>",
	"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
	"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R >>",
	"<< /Length 5 0 R >>\nstream\nBT ET\nendstream",
	"5",
}

func checkTestFile(t *testing.T, doc *Document) {
	t.Helper()

	catalog := doc.Catalog()
	if catalog == nil {
		t.Fatal("catalog not found")
	}
	pages := catalog.GetDict(doc, "Pages")
	if pages.GetInt(doc, "Count", 0) != 1 {
		t.Fatal("wrong page count")
	}
	kids := pages.GetArray(doc, "Kids")
	if len(kids) != 1 {
		t.Fatal("wrong number of kids")
	}
	page, err := GetDict(doc, kids[0])
	if err != nil {
		t.Fatal(err)
	}
	box := page.GetFloats(doc, "MediaBox")
	if len(box) != 4 || box[2] != 612 {
		t.Errorf("wrong media box %v", box)
	}
	contents := page.GetStream(doc, "Contents")
	if contents == nil {
		t.Fatal("content stream not found")
	}
	data, err := ReadAll(doc, contents)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "BT ET" {
		t.Errorf("wrong stream contents %q", data)
	}
}

func TestRead(t *testing.T) {
	data := buildFile(testObjects...)
	doc, err := Read(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()

	if doc.Version != "1.7" {
		t.Errorf("wrong version %q", doc.Version)
	}
	checkTestFile(t, doc)
}

func TestReadBrokenXRef(t *testing.T) {
	data := buildFile(testObjects...)
	idx := bytes.LastIndex(data, []byte("startxref"))
	data = append(data[:idx:idx], "startxref\n99999999\n%%EOF\n"...)

	doc, err := Read(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()
	checkTestFile(t, doc)
}

func TestReadNoTrailer(t *testing.T) {
	data := buildFile(testObjects...)
	idx := bytes.Index(data, []byte("xref\n"))
	data = data[:idx:idx]

	doc, err := Read(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()
	checkTestFile(t, doc)
}

func TestReadWrongLength(t *testing.T) {
	objects := append([]string(nil), testObjects...)
	objects[4] = "3" // too short
	data := buildFile(objects...)

	doc, err := Read(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()
	checkTestFile(t, doc)
}

// objectStreamFile returns a PDF file where objects 1 and 2 are stored in
// the object stream 3.
func objectStreamFile(n, first int, body string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.5\n")
	pos3 := buf.Len()
	fmt.Fprintf(buf, "3 0 obj\n<< /Type /ObjStm /N %d /First %d /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		n, first, len(body), body)
	pos4 := buf.Len()
	xref := []byte{
		0, 0, 0, 255,
		2, 0, 3, 0,
		2, 0, 3, 1,
		1, byte(pos3 >> 8), byte(pos3), 0,
		1, byte(pos4 >> 8), byte(pos4), 0,
	}
	fmt.Fprintf(buf, "4 0 obj\n<< /Type /XRef /Size 5 /W [1 2 1] /Root 1 0 R /Length %d >>\nstream\n", len(xref))
	buf.Write(xref)
	fmt.Fprintf(buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", pos4)
	return buf.Bytes()
}

func TestReadObjectStream(t *testing.T) {
	objA := "<< /Type /Catalog /Pages 2 0 R >>"
	objB := "<< /Type /Pages /Kids [] /Count 0 >>"
	header := fmt.Sprintf("1 0 2 %d ", len(objA)+1)
	data := objectStreamFile(2, len(header), header+objA+"\n"+objB)

	doc, err := Read(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()

	catalog := doc.Catalog()
	if catalog.GetName(doc, "Type", "") != "Catalog" {
		t.Fatalf("wrong catalog %s", Format(catalog))
	}
	pages := catalog.GetDict(doc, "Pages")
	if pages.GetName(doc, "Type", "") != "Pages" {
		t.Errorf("wrong pages object %s", Format(pages))
	}
}

func TestReadMalformedObjectStream(t *testing.T) {
	cases := []struct {
		name   string
		n      int
		header string
		body   string
	}{
		{"huge N", 1 << 60, "2 0 ", "42"},
		{"negative offset", 2, "2 0 1 -9 ", "42"},
		{"offset past end", 2, "2 0 1 1000 ", "42"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data := objectStreamFile(c.n, len(c.header), c.header+c.body)
			doc, err := Read(bytes.NewReader(data), int64(len(data)), nil)
			if err != nil {
				t.Fatal(err)
			}
			defer doc.Close()

			obj, err := doc.Get(NewReference(1, 0))
			if err != nil || obj != nil {
				t.Errorf("object 1: got %v, %v", obj, err)
			}
			obj, err = doc.Get(NewReference(2, 0))
			if err != nil || obj != Integer(42) {
				t.Errorf("object 2: got %v, %v", obj, err)
			}
		})
	}
}

func TestReadNotPDF(t *testing.T) {
	data := []byte(strings.Repeat("hello world\n", 10))
	_, err := Read(bytes.NewReader(data), int64(len(data)), nil)
	if err == nil {
		t.Error("missing error")
	}
}
