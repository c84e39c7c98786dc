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

import (
	"errors"
	"fmt"

	"seehuhn.de/go/pdfraster"
)

// Space is a PDF color space.
//
// Color spaces are immutable once constructed and can be shared between
// goroutines.
type Space interface {
	// Family returns the color space family, e.g. /DeviceRGB.
	Family() pdf.Name

	// Components returns the number of color components.
	Components() int

	// DefaultDecode returns the default decode array for image samples
	// with the given number of bits per component.
	DefaultDecode(bpc int) []float64

	// Initial returns the initial color of the color space.
	Initial() []float64

	// ToRGB converts a color to RGB.  The input has one value per
	// component, in the native range of the color space.  The outputs
	// are in the range [0, 1].
	ToRGB(c []float64) (r, g, b float64)
}

// Color space families.
const (
	FamilyDeviceGray pdf.Name = "DeviceGray"
	FamilyDeviceRGB  pdf.Name = "DeviceRGB"
	FamilyDeviceCMYK pdf.Name = "DeviceCMYK"
	FamilyCalGray    pdf.Name = "CalGray"
	FamilyCalRGB     pdf.Name = "CalRGB"
	FamilyLab        pdf.Name = "Lab"
	FamilyICCBased   pdf.Name = "ICCBased"
	FamilyIndexed    pdf.Name = "Indexed"
	FamilyPattern    pdf.Name = "Pattern"
	FamilySeparation pdf.Name = "Separation"
	FamilyDeviceN    pdf.Name = "DeviceN"
)

// Abbreviations used in inline images.
var abbreviations = map[pdf.Name]pdf.Name{
	"G":    FamilyDeviceGray,
	"RGB":  FamilyDeviceRGB,
	"CMYK": FamilyDeviceCMYK,
	"I":    FamilyIndexed,
}

// maxDepth limits the nesting of color spaces, e.g. an Indexed space
// with a Separation base.
const maxDepth = 8

// New returns the color space described by desc.  Named color spaces are
// looked up in the /ColorSpace entry of the resource dictionary res.
//
// New never fails.  If desc cannot be used, a warning is logged and
// DeviceRGB is returned.
func New(r pdf.Getter, desc pdf.Object, res *pdf.Dict) Space {
	s, err := Read(r, desc, res)
	if err != nil {
		pdf.LoggerFor(r).Warn("unusable color space, using DeviceRGB",
			"space", pdf.Format(desc), "err", err)
		return DeviceRGB
	}
	return s
}

// Read returns the color space described by desc.
//
// If desc is one of the device color space names, the resource dictionary
// is checked for a /DefaultGray, /DefaultRGB or /DefaultCMYK override
// first.
func Read(r pdf.Getter, desc pdf.Object, res *pdf.Dict) (Space, error) {
	rd := &reader{r: r, res: res}
	return rd.read(desc, 0, true)
}

type reader struct {
	r   pdf.Getter
	res *pdf.Dict
}

func (rd *reader) read(desc pdf.Object, depth int, useDefaults bool) (Space, error) {
	if depth > maxDepth {
		return nil, &pdf.MalformedFileError{Err: errors.New("color spaces nested too deeply")}
	}

	desc, err := pdf.Resolve(rd.r, desc)
	if err != nil {
		return nil, err
	}

	switch desc := desc.(type) {
	case pdf.Name:
		return rd.readName(desc, depth, useDefaults)
	case pdf.Array:
		if len(desc) == 0 {
			return nil, pdf.Error("empty color space array")
		}
		family, err := pdf.GetName(rd.r, desc[0])
		if err != nil {
			return nil, err
		}
		if long, ok := abbreviations[family]; ok {
			family = long
		}
		return rd.readArray(family, desc[1:], depth)
	case nil:
		return nil, pdf.Error("missing color space")
	default:
		return nil, pdf.Error(fmt.Sprintf("invalid color space %s", pdf.Format(desc)))
	}
}

func (rd *reader) readName(name pdf.Name, depth int, useDefaults bool) (Space, error) {
	if long, ok := abbreviations[name]; ok {
		name = long
	}

	var device Space
	var defaultKey pdf.Name
	switch name {
	case FamilyDeviceGray:
		device, defaultKey = DeviceGray, "DefaultGray"
	case FamilyDeviceRGB:
		device, defaultKey = DeviceRGB, "DefaultRGB"
	case FamilyDeviceCMYK:
		device, defaultKey = DeviceCMYK, "DefaultCMYK"
	case FamilyPattern:
		return &SpacePattern{}, nil
	}

	resSpaces := rd.res.GetDict(rd.r, "ColorSpace")
	if device != nil {
		if useDefaults && resSpaces.Has(defaultKey) {
			override, err := rd.read(resSpaces.Get(rd.r, defaultKey), depth+1, false)
			if err == nil && override.Components() == device.Components() {
				return override, nil
			}
			pdf.LoggerFor(rd.r).Warn("ignoring default color space",
				"key", defaultKey, "err", err)
		}
		return device, nil
	}

	if desc := resSpaces.Get(rd.r, name); desc != nil {
		return rd.read(desc, depth+1, useDefaults)
	}
	return nil, pdf.Error(fmt.Sprintf("unknown color space %q", name))
}

func (rd *reader) readArray(family pdf.Name, args pdf.Array, depth int) (Space, error) {
	arg := func(i int) pdf.Object {
		if i < len(args) {
			return args[i]
		}
		return nil
	}
	argDict := func(i int) *pdf.Dict {
		d, _ := pdf.GetDict(rd.r, arg(i))
		return d
	}

	switch family {
	case FamilyDeviceGray, FamilyDeviceRGB, FamilyDeviceCMYK:
		return rd.readName(family, depth, true)
	case FamilyCalGray:
		return readCalGray(rd.r, argDict(0))
	case FamilyCalRGB:
		return readCalRGB(rd.r, argDict(0))
	case FamilyLab:
		return readLab(rd.r, argDict(0))
	case FamilyICCBased:
		stm, err := pdf.GetStream(rd.r, arg(0))
		if err != nil {
			return nil, err
		} else if stm == nil {
			return nil, pdf.Error("ICCBased: missing profile stream")
		}
		return rd.readICCBased(stm, depth)
	case FamilyIndexed:
		return rd.readIndexed(args, depth)
	case FamilyPattern:
		if len(args) == 0 {
			return &SpacePattern{}, nil
		}
		base, err := rd.read(args[0], depth+1, true)
		if err != nil {
			return nil, pdf.Wrap(err, "Pattern base space")
		}
		return &SpacePattern{Base: base}, nil
	case FamilySeparation:
		return rd.readSeparation(args, depth)
	case FamilyDeviceN:
		return rd.readDeviceN(args, depth)
	}
	return nil, pdf.Error(fmt.Sprintf("unsupported color space family %q", family))
}

// unitDecode returns the decode array [0 1 0 1 ...] for n components.
func unitDecode(n int) []float64 {
	res := make([]float64, 2*n)
	for i := range n {
		res[2*i+1] = 1
	}
	return res
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
