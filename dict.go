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

package pdf

import (
	"io"
	"iter"
	"slices"
)

// Dict represent a Dictionary object in a PDF file.
//
// Keys are kept in insertion order.  Storing a null value removes the key.
// The zero value is an empty dictionary, ready to use.
type Dict struct {
	keys []Name
	vals map[Name]Object
}

// NewDict returns a dictionary with the given entries.  The arguments must
// alternate between [Name] and [Object] values.  Null values are skipped.
func NewDict(kv ...any) *Dict {
	if len(kv)%2 != 0 {
		panic("NewDict: odd number of arguments")
	}
	d := &Dict{}
	for i := 0; i < len(kv); i += 2 {
		var key Name
		switch k := kv[i].(type) {
		case Name:
			key = k
		case string:
			key = Intern(k)
		default:
			panic("NewDict: key is not a name")
		}
		var val Object
		if kv[i+1] != nil {
			val = kv[i+1].(Object)
		}
		d.Set(key, val)
	}
	return d
}

// Len returns the number of entries in the dictionary.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Set stores val under key.  If val is nil or [Null], the key is removed
// and the dictionary behaves as if key had never been set.
func (d *Dict) Set(key Name, val Object) {
	if IsNull(val) {
		d.Delete(key)
		return
	}
	d.put(key, val)
}

// put stores val without the null check.  This is used by the parser, so
// that explicit null entries survive for round-tripping.
func (d *Dict) put(key Name, val Object) {
	if d.vals == nil {
		d.vals = make(map[Name]Object)
	}
	if _, exists := d.vals[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = val
}

// Delete removes key from the dictionary.
func (d *Dict) Delete(key Name) {
	if d == nil || d.vals == nil {
		return
	}
	if _, exists := d.vals[key]; !exists {
		return
	}
	delete(d.vals, key)
	if i := slices.Index(d.keys, key); i >= 0 {
		d.keys = slices.Delete(d.keys, i, i+1)
	}
}

// GetItem returns the raw value stored under key, without resolving
// references.  The second return value reports whether the key is present.
// A present value may be [Null] for dictionaries read from a file.
func (d *Dict) GetItem(key Name) (Object, bool) {
	if d == nil || d.vals == nil {
		return nil, false
	}
	val, ok := d.vals[key]
	return val, ok
}

// Get returns the value stored under key, with references resolved.
// Absent keys, null values and broken references all give nil.
func (d *Dict) Get(r Getter, key Name) Object {
	val, _ := d.GetItem(key)
	obj, err := Resolve(r, val)
	if err != nil || IsNull(obj) {
		return nil
	}
	return obj
}

// Has reports whether key is present with a non-null value.
func (d *Dict) Has(key Name) bool {
	val, ok := d.GetItem(key)
	return ok && !IsNull(val)
}

// Keys returns the keys of the dictionary in insertion order.
func (d *Dict) Keys() []Name {
	if d == nil {
		return nil
	}
	return slices.Clone(d.keys)
}

// All iterates over the entries in insertion order.
func (d *Dict) All() iter.Seq2[Name, Object] {
	return func(yield func(Name, Object) bool) {
		if d == nil {
			return
		}
		for _, key := range d.keys {
			if !yield(key, d.vals[key]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of the dictionary.
func (d *Dict) Clone() *Dict {
	if d == nil {
		return nil
	}
	res := &Dict{
		keys: slices.Clone(d.keys),
		vals: make(map[Name]Object, len(d.vals)),
	}
	for k, v := range d.vals {
		res.vals[k] = v
	}
	return res
}

// PDF implements the [Object] interface.
func (d *Dict) PDF(w io.Writer) error {
	_, err := io.WriteString(w, "<<")
	if err != nil {
		return err
	}
	for key, val := range d.All() {
		if val == nil {
			val = Null{}
		}
		_, err = io.WriteString(w, "\n")
		if err != nil {
			return err
		}
		err = key.PDF(w)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, " ")
		if err != nil {
			return err
		}
		err = val.PDF(w)
		if err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "\n>>")
	return err
}

func (*Dict) isObject() {}

// GetInt returns the integer stored under key, or def if the key is absent
// or the value is not a number.  Real values are truncated.
func (d *Dict) GetInt(r Getter, key Name, def int) int {
	switch x := d.Get(r, key).(type) {
	case Integer:
		return int(x)
	case Real:
		return int(x)
	}
	return def
}

// GetFloat returns the number stored under key, or def.
func (d *Dict) GetFloat(r Getter, key Name, def float64) float64 {
	switch x := d.Get(r, key).(type) {
	case Integer:
		return float64(x)
	case Real:
		return float64(x)
	}
	return def
}

// GetName returns the name stored under key, or def.
func (d *Dict) GetName(r Getter, key Name, def Name) Name {
	if x, ok := d.Get(r, key).(Name); ok {
		return x
	}
	return def
}

// GetBool returns the boolean stored under key, or def.
func (d *Dict) GetBool(r Getter, key Name, def bool) bool {
	if x, ok := d.Get(r, key).(Boolean); ok {
		return bool(x)
	}
	return def
}

// GetString returns the string stored under key, or nil.
func (d *Dict) GetString(r Getter, key Name) String {
	x, _ := d.Get(r, key).(String)
	return x
}

// GetArray returns the array stored under key, or nil.
func (d *Dict) GetArray(r Getter, key Name) Array {
	x, _ := d.Get(r, key).(Array)
	return x
}

// GetDict returns the dictionary stored under key, or nil.  If the value is
// a stream, the stream dictionary is returned.
func (d *Dict) GetDict(r Getter, key Name) *Dict {
	switch x := d.Get(r, key).(type) {
	case *Dict:
		return x
	case *Stream:
		return x.Dict
	}
	return nil
}

// GetStream returns the stream stored under key, or nil.
func (d *Dict) GetStream(r Getter, key Name) *Stream {
	x, _ := d.Get(r, key).(*Stream)
	return x
}

// GetFloats returns the numeric array stored under key.  If the value is
// absent, or if any element is not a number, nil is returned.
func (d *Dict) GetFloats(r Getter, key Name) []float64 {
	return Floats(r, d.Get(r, key))
}

// Floats converts an array of numbers into a slice.  It returns nil if obj
// is not an array or contains non-numeric elements.
func Floats(r Getter, obj Object) []float64 {
	a, _ := obj.(Array)
	if a == nil {
		return nil
	}
	res := make([]float64, len(a))
	for i, elem := range a {
		x, err := GetNumber(r, elem)
		if err != nil {
			return nil
		}
		res[i] = x
	}
	return res
}
