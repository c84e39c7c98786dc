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


// Package pdf provides the object model of PDF files.
//
// This package treats PDF files as containers holding a graph of objects
// (typically Dictionaries and Streams).  Objects are loaded lazily, when
// first used, and can be accessed in any order.
//
// A [Document] is obtained by reading an existing file:
//
//	doc, err := pdf.Open("in.pdf", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer doc.Close()
//	catalog := doc.Catalog()
//	... use catalog to locate objects in the file ...
//
// New objects can be added using [Document.Alloc], [Document.Put] and
// [Document.NewStream].
//
// The following types implement the native PDF object types.
// All of these implement the [Object] interface:
//
//	Array
//	Boolean
//	*Dict
//	Integer
//	Name
//	Null
//	Real
//	Reference
//	*Stream
//	String
//
// Subpackages decode color spaces, images, shadings and fonts, and render
// pages to raster images.
package pdf
