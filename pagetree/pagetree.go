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

// Package pagetree finds the pages of a PDF document.
//
// Pages are located by walking the page tree from the document catalog.
// Inheritable attributes (Resources, MediaBox, CropBox and Rotate) are
// resolved while walking, so that every [Page] carries its effective
// values.
package pagetree

import (
	"errors"
	"iter"

	"seehuhn.de/go/pdfraster"
)

// Page is a leaf of the page tree.
type Page struct {
	// Ref is the reference of the page object.  This is zero if the page
	// object is a direct object.
	Ref pdf.Reference

	Dict      *pdf.Dict
	Resources *pdf.Dict
	MediaBox  *pdf.Rectangle
	CropBox   *pdf.Rectangle
	Rotate    pdf.PageRotation
}

// BBox returns the visible region of the page: the crop box, clipped to the
// media box.
func (p *Page) BBox() *pdf.Rectangle {
	if p.CropBox == nil {
		return p.MediaBox
	}
	if box := p.CropBox.Intersect(p.MediaBox); box != nil && !box.IsZero() {
		return box
	}
	return p.MediaBox
}

// letter is used if neither the page nor its ancestors specify a media box.
var letter = &pdf.Rectangle{URx: 612, URy: 792}

// maxDepth limits the depth of the page tree.
const maxDepth = 64

type inherited struct {
	resources *pdf.Dict
	mediaBox  *pdf.Rectangle
	cropBox   *pdf.Rectangle
	rotate    pdf.PageRotation
}

// All iterates over the pages of the document, in order.  Loops in the
// page tree are broken, and malformed nodes are skipped.
func All(r pdf.Getter, catalog *pdf.Dict) iter.Seq2[int, *Page] {
	return func(yield func(int, *Page) bool) {
		if catalog == nil {
			return
		}
		root, _ := catalog.GetItem("Pages")
		if root == nil {
			return
		}
		log := pdf.LoggerFor(r)
		seen := make(map[pdf.Reference]bool)
		idx := 0

		var walk func(obj pdf.Object, attr inherited, depth int) bool
		walk = func(obj pdf.Object, attr inherited, depth int) bool {
			ref, isRef := obj.(pdf.Reference)
			if isRef {
				if seen[ref] {
					log.Warn("loop in page tree", "ref", ref)
					return true
				}
				seen[ref] = true
			}
			if depth > maxDepth {
				log.Warn("page tree too deep")
				return true
			}

			node, err := pdf.GetDict(r, obj)
			if err != nil || node == nil {
				log.Warn("malformed page tree node", "err", err)
				return true
			}

			if res := node.GetDict(r, "Resources"); res != nil {
				attr.resources = res
			}
			if box, err := pdf.GetRectangle(r, node.Get(r, "MediaBox")); err == nil && box != nil {
				attr.mediaBox = box
			}
			if box, err := pdf.GetRectangle(r, node.Get(r, "CropBox")); err == nil && box != nil {
				attr.cropBox = box
			}
			if node.Has("Rotate") {
				if x, err := pdf.DecodeRotation(pdf.Integer(node.GetInt(r, "Rotate", 0))); err == nil {
					attr.rotate = x
				}
			}

			kids := node.GetArray(r, "Kids")
			tp := node.GetName(r, "Type", "")
			if tp == "Pages" || tp == "" && kids != nil {
				for _, kid := range kids {
					if !walk(kid, attr, depth+1) {
						return false
					}
				}
				return true
			}

			page := &Page{
				Ref:       ref,
				Dict:      node,
				Resources: attr.resources,
				MediaBox:  attr.mediaBox,
				CropBox:   attr.cropBox,
				Rotate:    attr.rotate,
			}
			if page.MediaBox == nil {
				page.MediaBox = letter
			}
			if page.Resources == nil {
				page.Resources = &pdf.Dict{}
			}
			ok := yield(idx, page)
			idx++
			return ok
		}
		walk(root, inherited{}, 0)
	}
}

// GetPage returns the page with the given index, starting from 0.
func GetPage(r pdf.Getter, catalog *pdf.Dict, pageNo int) (*Page, error) {
	if pageNo >= 0 {
		for i, page := range All(r, catalog) {
			if i == pageNo {
				return page, nil
			}
		}
	}
	return nil, &pdf.MalformedFileError{Err: errPageNotFound}
}

// NumPages returns the number of pages in the document.
func NumPages(r pdf.Getter, catalog *pdf.Dict) int {
	n := 0
	for range All(r, catalog) {
		n++
	}
	return n
}

var errPageNotFound = errors.New("page not found")
