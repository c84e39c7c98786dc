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
	"fmt"

	"seehuhn.de/go/pdfraster"
)

// InvalidFunctionError describes a function dictionary with an invalid
// or missing entry.  It is always returned wrapped in a
// [pdf.MalformedFileError], so that [pdf.IsMalformed] recognises it.
type InvalidFunctionError struct {
	FunctionType int
	Field        string
	Message      string
}

func (e *InvalidFunctionError) Error() string {
	return fmt.Sprintf("type %d function: invalid %s: %s", e.FunctionType, e.Field, e.Message)
}

// Is makes errors.Is match any InvalidFunctionError.
func (e *InvalidFunctionError) Is(target error) bool {
	_, ok := target.(*InvalidFunctionError)
	return ok
}

func newInvalidFunctionError(tp int, field, format string, args ...any) error {
	return &pdf.MalformedFileError{
		Err: &InvalidFunctionError{
			FunctionType: tp,
			Field:        field,
			Message:      fmt.Sprintf(format, args...),
		},
	}
}
