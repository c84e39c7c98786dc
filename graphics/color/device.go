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

// The device color spaces.
var (
	DeviceGray = spaceDeviceGray{}
	DeviceRGB  = spaceDeviceRGB{}
	DeviceCMYK = spaceDeviceCMYK{}
)

type spaceDeviceGray struct{}

// Family implements the [Space] interface.
func (spaceDeviceGray) Family() pdf.Name { return FamilyDeviceGray }

// Components implements the [Space] interface.
func (spaceDeviceGray) Components() int { return 1 }

// DefaultDecode implements the [Space] interface.
func (spaceDeviceGray) DefaultDecode(int) []float64 { return []float64{0, 1} }

// Initial implements the [Space] interface.
func (spaceDeviceGray) Initial() []float64 { return []float64{0} }

// ToRGB implements the [Space] interface.
func (spaceDeviceGray) ToRGB(c []float64) (r, g, b float64) {
	y := clamp01(c[0])
	return y, y, y
}

type spaceDeviceRGB struct{}

// Family implements the [Space] interface.
func (spaceDeviceRGB) Family() pdf.Name { return FamilyDeviceRGB }

// Components implements the [Space] interface.
func (spaceDeviceRGB) Components() int { return 3 }

// DefaultDecode implements the [Space] interface.
func (spaceDeviceRGB) DefaultDecode(int) []float64 { return unitDecode(3) }

// Initial implements the [Space] interface.
func (spaceDeviceRGB) Initial() []float64 { return []float64{0, 0, 0} }

// ToRGB implements the [Space] interface.
func (spaceDeviceRGB) ToRGB(c []float64) (r, g, b float64) {
	return clamp01(c[0]), clamp01(c[1]), clamp01(c[2])
}

type spaceDeviceCMYK struct{}

// Family implements the [Space] interface.
func (spaceDeviceCMYK) Family() pdf.Name { return FamilyDeviceCMYK }

// Components implements the [Space] interface.
func (spaceDeviceCMYK) Components() int { return 4 }

// DefaultDecode implements the [Space] interface.
func (spaceDeviceCMYK) DefaultDecode(int) []float64 { return unitDecode(4) }

// Initial implements the [Space] interface.
func (spaceDeviceCMYK) Initial() []float64 { return []float64{0, 0, 0, 1} }

// ToRGB implements the [Space] interface.
func (spaceDeviceCMYK) ToRGB(c []float64) (r, g, b float64) {
	return cmykToRGB(c[0], c[1], c[2], c[3])
}

func cmykToRGB(c, m, y, k float64) (r, g, b float64) {
	k = clamp01(k)
	r = (1 - clamp01(c)) * (1 - k)
	g = (1 - clamp01(m)) * (1 - k)
	b = (1 - clamp01(y)) * (1 - k)
	return r, g, b
}

// deviceSpace returns the device color space with n components, or nil.
func deviceSpace(n int) Space {
	switch n {
	case 1:
		return DeviceGray
	case 3:
		return DeviceRGB
	case 4:
		return DeviceCMYK
	}
	return nil
}
