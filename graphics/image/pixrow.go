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

package image

// pixRow reads samples from one row of packed image data.
// Samples are stored most significant bit first.
type pixRow struct {
	bytes   []byte
	byteIdx int
	bitPos  int
	numBits int // bits per sample
}

func newPixRow(numBits int) *pixRow {
	return &pixRow{numBits: numBits}
}

func (r *pixRow) reset(row []byte) {
	r.bytes = row
	r.byteIdx = 0
	r.bitPos = 0
}

func (r *pixRow) readBits() uint16 {
	bitsToDo := r.numBits

	// fast path for 8 bit reads
	if bitsToDo == 8 {
		v := r.bytes[r.byteIdx]
		r.byteIdx++
		return uint16(v)
	}

	// general case
	var res uint16
	for bitsToDo > 0 {
		availableBits := 8 - r.bitPos
		k := min(bitsToDo, availableBits)

		b := r.bytes[r.byteIdx] >> (availableBits - k)
		res = res<<k | uint16(b&(1<<k-1))

		r.bitPos += k
		bitsToDo -= k
		if r.bitPos == 8 {
			r.byteIdx++
			r.bitPos = 0
		}
	}
	return res
}
