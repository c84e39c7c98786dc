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

package lru

import (
	"errors"
	"testing"
)

func TestCache(t *testing.T) {
	cache := New[int, int](12)
	cache.Put(100, 100)
	cache.Put(101, 101)
	cache.Put(102, 102)
	val, ok := cache.Get(100)
	if !ok || val != 100 {
		t.Error("cache miss")
	}
	// now 101 is the oldest entry and should drop out later

	if _, ok := cache.Get(0); ok {
		t.Error("cache hit")
	}

	for i := range 25 {
		x := i % 10
		val, ok := cache.Get(x)
		if ok != (i >= 10) {
			t.Errorf("%d: cache hit/miss mismatch", i)
		}
		if ok {
			if val != x {
				t.Error("wrong value")
			}
		} else {
			cache.Put(x, x)
		}
	}

	if _, ok := cache.Get(100); !ok {
		t.Error("100: cache miss")
	}
	if _, ok := cache.Get(101); ok {
		t.Error("101: cache hit")
	}
	if _, ok := cache.Get(102); !ok {
		t.Error("102: cache miss")
	}
}

func TestEvict(t *testing.T) {
	cache := New[string, int](10)
	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3)
	cache.Get("a")

	cache.Evict(2)
	if cache.Len() != 1 {
		t.Fatalf("got %d entries, want 1", cache.Len())
	}
	if _, ok := cache.Get("a"); !ok {
		t.Error("most recently used entry was evicted")
	}

	cache.Evict(5)
	if cache.Len() != 0 {
		t.Error("cache not empty")
	}
	cache.Put("d", 4)
	if v, ok := cache.Get("d"); !ok || v != 4 {
		t.Error("cache unusable after eviction")
	}
}

func TestGetOrCompute(t *testing.T) {
	cache := New[int, string](2)
	calls := 0
	compute := func() (string, error) {
		calls++
		return "x", nil
	}
	for range 3 {
		v, err := cache.GetOrCompute(1, compute)
		if err != nil || v != "x" {
			t.Fatal("wrong result")
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times", calls)
	}

	_, err := cache.GetOrCompute(2, func() (string, error) {
		return "", errors.New("fail")
	})
	if err == nil {
		t.Error("error not propagated")
	}
	if _, ok := cache.Get(2); ok {
		t.Error("failed result was cached")
	}
}
