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


package config

import (
	"bytes"
	"image/color"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var usage bytes.Buffer
	cfg, err := Load("pdf2png", []string{"in.pdf"}, &usage)
	require.NoError(t, err)

	assert.Equal(t, "in.pdf", cfg.Input)
	assert.Equal(t, "in.png", cfg.Output)
	assert.Equal(t, DefaultPage, cfg.Page)
	assert.Equal(t, float64(DefaultDPI), cfg.DPI)
	assert.Equal(t, DefaultBackground, cfg.Background)
	assert.Equal(t, int64(DefaultSpillThreshold), cfg.SpillThreshold)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, usage.String())
}

func TestLoadFlags(t *testing.T) {
	args := []string{
		"-p", "3",
		"--dpi=150",
		"-o", "out.png",
		"--background", "#102030",
		"--spill-threshold", "1024",
		"--cache-size", "5",
		"--log-level", "DEBUG",
		"doc.pdf",
	}
	cfg, err := Load("pdf2png", args, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "doc.pdf", cfg.Input)
	assert.Equal(t, "out.png", cfg.Output)
	assert.Equal(t, 3, cfg.Page)
	assert.Equal(t, 150.0, cfg.DPI)
	assert.Equal(t, int64(1024), cfg.SpillThreshold)
	assert.Equal(t, 5, cfg.CacheSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, cfg.BackgroundColor())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PDFRASTER_DPI", "300")
	t.Setenv("PDFRASTER_PAGE", "2")
	t.Setenv("PDFRASTER_SPILL_THRESHOLD", "-1")
	t.Setenv("PDFRASTER_BACKGROUND", "transparent")

	cfg, err := Load("pdf2png", []string{"--page=7", "x.pdf"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 300.0, cfg.DPI)
	assert.Equal(t, 7, cfg.Page, "flags take precedence over the environment")
	assert.Equal(t, int64(-1), cfg.SpillThreshold)
	assert.Equal(t, color.NRGBA{}, cfg.BackgroundColor())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no input", nil},
		{"two inputs", []string{"a.pdf", "b.pdf"}},
		{"page zero", []string{"--page=0", "a.pdf"}},
		{"negative dpi", []string{"--dpi=-1", "a.pdf"}},
		{"huge dpi", []string{"--dpi=100000", "a.pdf"}},
		{"bad background", []string{"--background=#12", "a.pdf"}},
		{"bad log level", []string{"--log-level=loud", "a.pdf"}},
		{"unknown flag", []string{"--frobnicate", "a.pdf"}},
		{"bad number", []string{"--page=two", "a.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("pdf2png", tt.args, &bytes.Buffer{})
			require.Error(t, err)
		})
	}
}

func TestHelp(t *testing.T) {
	var usage bytes.Buffer
	_, err := Load("pdf2png", []string{"--help"}, &usage)
	require.ErrorIs(t, err, ErrHelp)
	assert.Contains(t, usage.String(), "--dpi")
	assert.Contains(t, usage.String(), EnvPrefix+"_DPI")
}

func TestParseBackground(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"white", color.NRGBA{255, 255, 255, 255}},
		{"WHITE", color.NRGBA{255, 255, 255, 255}},
		{"black", color.NRGBA{0, 0, 0, 255}},
		{"none", color.NRGBA{}},
		{"#ff8000", color.NRGBA{255, 128, 0, 255}},
		{"#FF800080", color.NRGBA{255, 128, 0, 128}},
	}
	for _, tt := range tests {
		got, err := ParseBackground(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"red", "#", "#12345", "#gggggg", "ff8000"} {
		_, err := ParseBackground(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate(), "input is required")

	cfg.Input = "a.pdf"
	require.NoError(t, cfg.Validate())

	cfg.CacheSize = -1
	require.Error(t, cfg.Validate())
}
