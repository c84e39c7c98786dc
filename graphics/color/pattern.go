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

package color

import "seehuhn.de/go/pdfraster"

// SpacePattern is the Pattern color space.
//
// Colors in a pattern space are given by patterns, not by component
// values, so Components, DefaultDecode and ToRGB panic.
type SpacePattern struct {
	// Base is the underlying color space for uncolored tiling patterns,
	// or nil.
	Base Space
}

// Family implements the [Space] interface.
func (s *SpacePattern) Family() pdf.Name { return FamilyPattern }

// Components implements the [Space] interface.  It panics.
func (s *SpacePattern) Components() int {
	panic("color: Components called on Pattern color space")
}

// DefaultDecode implements the [Space] interface.  It panics.
func (s *SpacePattern) DefaultDecode(int) []float64 {
	panic("color: DefaultDecode called on Pattern color space")
}

// Initial implements the [Space] interface.
// The initial color is the base color, if any.
func (s *SpacePattern) Initial() []float64 {
	if s.Base == nil {
		return nil
	}
	return s.Base.Initial()
}

// ToRGB implements the [Space] interface.  It panics.
func (s *SpacePattern) ToRGB([]float64) (r, g, b float64) {
	panic("color: ToRGB called on Pattern color space")
}
