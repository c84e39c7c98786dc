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
	"fmt"

	"golang.org/x/exp/constraints"
)

// Getter represents a PDF file opened for reading.
type Getter interface {
	// Get returns the object with the given reference.  Missing objects
	// are reported as a nil Object without an error.
	Get(Reference) (Object, error)
}

// Resolve resolves a reference to an indirect object.
//
// Exactly one level of indirection is followed.  If the target is itself a
// reference, the reference is treated as broken and nil is returned.  This
// makes Resolve idempotent.  Other objects are returned unchanged.
func Resolve(r Getter, obj Object) (Object, error) {
	ref, isReference := obj.(Reference)
	if !isReference {
		return obj, nil
	}
	if r == nil {
		return nil, nil
	}
	res, err := r.Get(ref)
	if err != nil {
		return nil, Wrap(err, ref.String())
	}
	if _, chained := res.(Reference); chained {
		return nil, nil
	}
	return res, nil
}

func resolveAndCast[T Object](r Getter, obj Object) (x T, err error) {
	obj, err = Resolve(r, obj)
	if err != nil {
		return x, err
	}

	if IsNull(obj) {
		return x, nil
	}

	var isCorrectType bool
	x, isCorrectType = obj.(T)
	if isCorrectType {
		return x, nil
	}

	return x, &MalformedFileError{
		Err: fmt.Errorf("expected %T but got %T", x, obj),
	}
}

// Helper functions for getting objects of a specific type.  Each of these
// functions calls [Resolve] on the argument and then checks the type of
// the result.  Null gives the zero value without an error; a value of the
// wrong type gives a [MalformedFileError].
var (
	GetArray   = resolveAndCast[Array]
	GetBoolean = resolveAndCast[Boolean]
	GetInteger = resolveAndCast[Integer]
	GetName    = resolveAndCast[Name]
	GetReal    = resolveAndCast[Real]
	GetStream  = resolveAndCast[*Stream]
	GetString  = resolveAndCast[String]
)

// GetDict resolves obj and returns it as a dictionary.  For streams, the
// stream dictionary is returned.
func GetDict(r Getter, obj Object) (*Dict, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case *Dict:
		return x, nil
	case *Stream:
		return x.Dict, nil
	case nil, Null:
		return nil, nil
	}
	return nil, &MalformedFileError{
		Err: fmt.Errorf("expected dictionary but got %T", obj),
	}
}

// GetNumber resolves obj and returns its value as a float64.
// Both [Integer] and [Real] objects are accepted.
func GetNumber(r Getter, obj Object) (float64, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	switch x := obj.(type) {
	case Integer:
		return float64(x), nil
	case Real:
		return float64(x), nil
	}
	return 0, &MalformedFileError{
		Err: fmt.Errorf("expected number but got %T", obj),
	}
}

// Clamp restricts x to the interval [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
