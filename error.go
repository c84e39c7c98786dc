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
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrClosed is returned when a closed document or scratch area is used.
	ErrClosed = errors.New("document is closed")

	errNoPDF = errors.New("PDF header not found")
)

// MalformedFileError indicates that the PDF file could not be parsed.
type MalformedFileError struct {
	Pos int64
	Err error
	Loc []string
}

func (err *MalformedFileError) Error() string {
	parts := []string{"not a valid PDF file"}
	for i := len(err.Loc) - 1; i >= 0; i-- {
		parts = append(parts, err.Loc[i])
	}
	if err.Err != nil {
		parts = append(parts, err.Err.Error())
	}
	tail := ""
	if err.Pos > 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return strings.Join(parts, ": ") + tail
}

func (err *MalformedFileError) Unwrap() error {
	return err.Err
}

// Error returns a new [MalformedFileError] with the given message.
func Error(msg string) error {
	return &MalformedFileError{Err: errors.New(msg)}
}

// Wrap adds location information to a [MalformedFileError].  Other errors
// are returned unchanged.
func Wrap(err error, loc string) error {
	if err == nil {
		return nil
	}
	var m *MalformedFileError
	if !errors.As(err, &m) {
		return err
	}
	res := *m
	res.Loc = append(append([]string(nil), m.Loc...), loc)
	return &res
}

// IsMalformed reports whether err indicates a malformed PDF file.
func IsMalformed(err error) bool {
	var m *MalformedFileError
	return errors.As(err, &m)
}
