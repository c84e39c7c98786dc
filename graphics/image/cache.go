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

import (
	"image"
	stdcolor "image/color"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/internal/lru"
)

// Cache holds decoded images, keyed by the reference of the image stream.
//
// Entries can be evicted at any time and are decoded again when needed.
// The images returned by the cache are shared and must not be modified.
type Cache struct {
	lru *lru.Cache[cacheKey, *image.NRGBA]
}

type cacheKey struct {
	ref  pdf.Reference
	fill stdcolor.NRGBA
}

// NewCache returns a cache which holds at most capacity images.
func NewCache(capacity int) *Cache {
	return &Cache{lru: lru.New[cacheKey, *image.NRGBA](capacity)}
}

// Decode returns the decoded image for the image XObject ref.
func (c *Cache) Decode(r pdf.Getter, ref pdf.Reference, opt *Options) (*image.NRGBA, error) {
	if opt == nil {
		opt = &Options{}
	}
	key := cacheKey{ref: ref, fill: opt.Fill}
	return c.lru.GetOrCompute(key, func() (*image.NRGBA, error) {
		stm, err := pdf.GetStream(r, ref)
		if err != nil {
			return nil, err
		} else if stm == nil {
			return nil, pdf.Wrap(errMissing, ref.String())
		}
		return Decode(r, stm, opt)
	})
}

// Evict removes the n least recently used images from the cache.
func (c *Cache) Evict(n int) {
	c.lru.Evict(n)
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	return c.lru.Len()
}

var errMissing = pdf.Error("image XObject not found")
