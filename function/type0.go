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

package function

import (
	"math"
	"slices"

	"seehuhn.de/go/pdfraster"
)

// Type0 is a sampled function.  The function values are interpolated from
// a table of samples on a regular grid.
type Type0 struct {
	// Domain gives the input ranges as [min0, max0, min1, max1, ...].
	Domain []float64

	// Range gives the output ranges as [min0, max0, min1, max1, ...].
	Range []float64

	// Size is the number of samples in each input dimension.
	Size []int

	// BitsPerSample is the width of each sample value in bits.
	BitsPerSample int

	// Encode maps the inputs to sample grid coordinates.
	// The default is [0, Size[0]-1, 0, Size[1]-1, ...].
	Encode []float64

	// Decode maps sample values to outputs.  The default is Range.
	Decode []float64

	// Samples holds the packed sample values.  The first dimension varies
	// fastest.
	Samples []byte
}

// Shape implements the [Func] interface.
func (f *Type0) Shape() (int, int) {
	return len(f.Domain) / 2, len(f.Range) / 2
}

// Apply implements the [Func] interface.
//
// Cubic spline interpolation (/Order 3) is approximated by multilinear
// interpolation.
func (f *Type0) Apply(inputs ...float64) []float64 {
	m, n := f.Shape()
	checkInputs(m, inputs)

	base := make([]int, m)
	frac := make([]float64, m)
	for i := range m {
		x := clip(inputs[i], f.Domain[2*i], f.Domain[2*i+1])
		e := interpolate(x, f.Domain[2*i], f.Domain[2*i+1], f.Encode[2*i], f.Encode[2*i+1])
		e = clip(e, 0, float64(f.Size[i]-1))
		k := int(math.Floor(e))
		if k >= f.Size[i]-1 {
			k = max(f.Size[i]-2, 0)
		}
		base[i] = k
		frac[i] = e - float64(k)
	}

	sum := make([]float64, n)
	idx := make([]int, m)
	for corner := range 1 << m {
		weight := 1.0
		for i := range m {
			if corner&(1<<i) != 0 {
				weight *= frac[i]
				idx[i] = min(base[i]+1, f.Size[i]-1)
			} else {
				weight *= 1 - frac[i]
				idx[i] = base[i]
			}
		}
		if weight == 0 {
			continue
		}

		pos := 0
		for i := m - 1; i >= 0; i-- {
			pos = pos*f.Size[i] + idx[i]
		}
		for j := range n {
			sum[j] += weight * float64(f.sample(pos*n+j))
		}
	}

	maxSample := float64(uint64(1)<<f.BitsPerSample - 1)
	for j := range n {
		sum[j] = interpolate(sum[j], 0, maxSample, f.Decode[2*j], f.Decode[2*j+1])
	}
	clipOutputs(sum, f.Range)
	return sum
}

// sample returns the k-th sample value from the packed table.
func (f *Type0) sample(k int) uint32 {
	bps := f.BitsPerSample
	bitPos := k * bps
	var res uint32
	for bps > 0 {
		byteIdx := bitPos / 8
		if byteIdx >= len(f.Samples) {
			return 0
		}
		avail := 8 - bitPos%8
		take := min(avail, bps)
		shift := avail - take
		bits := uint32(f.Samples[byteIdx]>>shift) & (1<<take - 1)
		res = res<<take | bits
		bitPos += take
		bps -= take
	}
	return res
}

var validBitsPerSample = []int{1, 2, 4, 8, 12, 16, 24, 32}

func readType0(r pdf.Getter, stm *pdf.Stream) (*Type0, error) {
	d := stm.Dict
	domain, err := readDomain(r, d, 0)
	if err != nil {
		return nil, err
	}
	m := len(domain) / 2

	rng := d.GetFloats(r, "Range")
	if !checkRanges(rng) {
		return nil, newInvalidFunctionError(0, "Range", "%v", rng)
	}
	n := len(rng) / 2

	sizeF := d.GetFloats(r, "Size")
	if len(sizeF) != m {
		return nil, newInvalidFunctionError(0, "Size", "expected %d values, got %d", m, len(sizeF))
	}
	size := make([]int, m)
	total := 1
	for i, s := range sizeF {
		if s < 1 || s > 1<<20 {
			return nil, newInvalidFunctionError(0, "Size", "%v", sizeF)
		}
		size[i] = int(s)
		total *= size[i]
		if total > 1<<26 {
			return nil, newInvalidFunctionError(0, "Size", "sample table too large")
		}
	}

	bps := d.GetInt(r, "BitsPerSample", 0)
	if !slices.Contains(validBitsPerSample, bps) {
		return nil, newInvalidFunctionError(0, "BitsPerSample", "%d", bps)
	}

	encode := d.GetFloats(r, "Encode")
	if len(encode) != 2*m {
		encode = make([]float64, 2*m)
		for i := range m {
			encode[2*i+1] = float64(size[i] - 1)
		}
	}
	decode := d.GetFloats(r, "Decode")
	if len(decode) != 2*n {
		decode = rng
	}

	data, err := pdf.ReadAll(r, stm)
	if err != nil && len(data) == 0 {
		return nil, err
	}
	need := (total*n*bps + 7) / 8
	if len(data) < need {
		data = append(data, make([]byte, need-len(data))...)
	}

	f := &Type0{
		Domain:        domain,
		Range:         rng,
		Size:          size,
		BitsPerSample: bps,
		Encode:        encode,
		Decode:        decode,
		Samples:       data[:need],
	}
	return f, nil
}
