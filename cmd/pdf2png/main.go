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


// Pdf2png renders one page of a PDF file to a PNG image.
//
// Usage:
//
//	pdf2png [options] file.pdf
//
// Run "pdf2png --help" for the list of options.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"seehuhn.de/go/pdfraster"
	"seehuhn.de/go/pdfraster/internal/config"
	"seehuhn.de/go/pdfraster/pagetree"
	"seehuhn.de/go/pdfraster/render"
)

func main() {
	name := filepath.Base(os.Args[0])
	cfg, err := config.Load(name, os.Args[1:], os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(2)
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("starting", "config", cfg.String())

	err = run(cfg, logger)
	if err != nil {
		logger.Error("rendering failed", "file", cfg.Input, "page", cfg.Page, "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.Output == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write binary image data to a terminal")
	}

	doc, err := pdf.Open(cfg.Input, &pdf.Options{
		SpillThreshold: cfg.SpillThreshold,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer doc.Close()

	numPages := pagetree.NumPages(doc, doc.Catalog())
	if cfg.Page > numPages {
		return fmt.Errorf("page %d requested, but document has %d pages", cfg.Page, numPages)
	}
	page, err := pagetree.GetPage(doc, doc.Catalog(), cfg.Page-1)
	if err != nil {
		return err
	}

	img, err := render.Page(doc, page, &render.Options{
		DPI:        cfg.DPI,
		Background: cfg.BackgroundColor(),
		CacheSize:  cfg.CacheSize,
	})
	if err != nil {
		return err
	}
	logger.Info("page rendered",
		"page", cfg.Page,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())

	if cfg.Output == "-" {
		return writePNG(os.Stdout, img)
	}
	out, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	err = writePNG(out, img)
	if err2 := out.Close(); err == nil {
		err = err2
	}
	return err
}

func writePNG(w io.Writer, img image.Image) error {
	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}
