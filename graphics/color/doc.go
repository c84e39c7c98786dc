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

// Package color implements PDF color spaces.
//
// Every color space maps its component values to RGB.  Color spaces are
// read from PDF files using [Read], or, without failing, using [New].
//
// The device color spaces DeviceGray, DeviceRGB and DeviceCMYK are
// available as [DeviceGray], [DeviceRGB] and [DeviceCMYK].  The CIE-based
// spaces CalGray, CalRGB and Lab are converted to sRGB using a Bradford
// chromatic adaptation.  ICCBased spaces use the color space of the
// embedded profile, falling back to the alternate space where the profile
// cannot be used.
package color
