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


// Package config collects the settings of the command line tools.
//
// Values are taken, in order of decreasing priority, from command line
// flags, from PDFRASTER_* environment variables and from the defaults
// below.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultDPI            = 72
	DefaultPage           = 1
	DefaultSpillThreshold = 16 << 20
	DefaultCacheSize      = 64
	DefaultLogLevel       = "warn"
	DefaultBackground     = "white"

	maxDPI = 2400
)

// EnvPrefix is the prefix of all environment variables read by [Load].
const EnvPrefix = "PDFRASTER"

// ErrHelp is returned by [Load] if the user asked for the usage message.
var ErrHelp = pflag.ErrHelp

// Config holds the settings for rendering a page.
type Config struct {
	Input  string // name of the PDF file
	Output string // name of the PNG file, "-" for standard output
	Page   int    // page number, starting at 1

	DPI        float64
	Background string // "white", "transparent", "#rrggbb" or "#rrggbbaa"

	SpillThreshold int64 // bytes of stream data kept in memory
	CacheSize      int   // number of decoded images kept in memory

	LogLevel string
}

// DefaultConfig returns a configuration with all fields set to their
// default values.
func DefaultConfig() *Config {
	return &Config{
		Page:           DefaultPage,
		DPI:            DefaultDPI,
		Background:     DefaultBackground,
		SpillThreshold: DefaultSpillThreshold,
		CacheSize:      DefaultCacheSize,
		LogLevel:       DefaultLogLevel,
	}
}

// Load parses the command line arguments args (without the program name)
// together with the environment, and returns the validated configuration.
// The usage message is written to usage, if the flags cannot be parsed.
func Load(name string, args []string, usage io.Writer) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(usage)
	flags.StringP("output", "o", "", "output file name (default: input with .png)")
	flags.IntP("page", "p", cfg.Page, "page number to render")
	flags.Float64P("dpi", "r", cfg.DPI, "resolution in dots per inch")
	flags.String("background", cfg.Background, "page background: white, transparent, #rrggbb or #rrggbbaa")
	flags.Int64("spill-threshold", cfg.SpillThreshold, "stream bytes kept in memory before using a temporary file")
	flags.Int("cache-size", cfg.CacheSize, "number of decoded images to keep in memory")
	flags.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.Usage = func() {
		fmt.Fprintf(usage, "Usage: %s [options] file.pdf\n\nOptions:\n", name)
		flags.PrintDefaults()
		fmt.Fprintf(usage, "\nAll options can also be set using %s_* environment variables,\n", EnvPrefix)
		fmt.Fprintf(usage, "for example %s_DPI=300.\n", EnvPrefix)
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	cfg.Output = v.GetString("output")
	cfg.Page = v.GetInt("page")
	cfg.DPI = v.GetFloat64("dpi")
	cfg.Background = v.GetString("background")
	cfg.SpillThreshold = v.GetInt64("spill-threshold")
	cfg.CacheSize = v.GetInt("cache-size")
	cfg.LogLevel = strings.ToLower(v.GetString("log-level"))

	switch flags.NArg() {
	case 0:
		flags.Usage()
		return nil, errors.New("missing input file")
	case 1:
		cfg.Input = flags.Arg(0)
	default:
		flags.Usage()
		return nil, fmt.Errorf("too many arguments: %q", flags.Args()[1:])
	}
	if cfg.Output == "" {
		cfg.Output = strings.TrimSuffix(cfg.Input, ".pdf") + ".png"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks whether the configuration is usable.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input file name cannot be empty")
	}
	if c.Page < 1 {
		return fmt.Errorf("invalid page number %d", c.Page)
	}
	if !(c.DPI > 0 && c.DPI <= maxDPI) {
		return fmt.Errorf("resolution must be between 0 and %d dpi", maxDPI)
	}
	if c.CacheSize < 0 {
		return errors.New("cache size must not be negative")
	}
	if _, err := ParseBackground(c.Background); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
}

// BackgroundColor returns the parsed background color.
// Invalid values give opaque white.
func (c *Config) BackgroundColor() color.NRGBA {
	col, err := ParseBackground(c.Background)
	if err != nil {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return col
}

// ParseBackground converts a background setting into a color.
func ParseBackground(s string) (color.NRGBA, error) {
	switch strings.ToLower(s) {
	case "white", "":
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}, nil
	case "black":
		return color.NRGBA{A: 255}, nil
	case "transparent", "none":
		return color.NRGBA{}, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.NRGBA{}, fmt.Errorf("invalid background color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	x, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid background color %q", s)
	}
	return color.NRGBA{
		R: uint8(x >> 24),
		G: uint8(x >> 16),
		B: uint8(x >> 8),
		A: uint8(x),
	}, nil
}

// String returns a summary of the configuration, for debug output.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Input: %s, Output: %s, Page: %d, DPI: %g, Background: %s, LogLevel: %s}",
		c.Input, c.Output, c.Page, c.DPI, c.Background, c.LogLevel)
}
