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

// Package stdmtx provides glyph widths for the 14 standard PDF fonts.
//
// The tables cover the full character sets of the fonts.  Glyphs outside
// the tables use the default width of the font.
package stdmtx

import (
	"strings"
	"sync"
	"sync/atomic"
)

// FontMetrics holds the glyph widths of one standard font.
// Widths are given in PDF glyph space units.
type FontMetrics struct {
	FontName     string
	IsFixedPitch bool
	Width        map[string]float64
	DefaultWidth float64
}

// GlyphWidth returns the width of the named glyph.
func (m *FontMetrics) GlyphWidth(glyphName string) float64 {
	if w, ok := m.Width[glyphName]; ok {
		return w
	}
	return m.DefaultWidth
}

func proportional(name string, width map[string]float64, def float64) *FontMetrics {
	width[".notdef"] = 0
	return &FontMetrics{
		FontName:     name,
		Width:        width,
		DefaultWidth: def,
	}
}

func fixedPitch(name string, width float64) *FontMetrics {
	return &FontMetrics{
		FontName:     name,
		IsFixedPitch: true,
		Width:        map[string]float64{".notdef": 0},
		DefaultWidth: width,
	}
}

var (
	metricsMu   sync.Mutex
	metricsDone atomic.Bool
	metrics     map[string]*FontMetrics
)

// all returns the metrics table, building it on first use.
func all() map[string]*FontMetrics {
	if metricsDone.Load() {
		return metrics
	}

	metricsMu.Lock()
	defer metricsMu.Unlock()
	if !metricsDone.Load() {
		helvetica := helveticaWidths()
		helveticaBold := helveticaBoldWidths()
		metrics = map[string]*FontMetrics{
			"Courier":               fixedPitch("Courier", 600),
			"Courier-Bold":          fixedPitch("Courier-Bold", 600),
			"Courier-BoldOblique":   fixedPitch("Courier-BoldOblique", 600),
			"Courier-Oblique":       fixedPitch("Courier-Oblique", 600),
			"Helvetica":             proportional("Helvetica", helvetica, 556),
			"Helvetica-Bold":        proportional("Helvetica-Bold", helveticaBold, 556),
			"Helvetica-BoldOblique": proportional("Helvetica-BoldOblique", helveticaBold, 556),
			"Helvetica-Oblique":     proportional("Helvetica-Oblique", helvetica, 556),
			"Times-Roman":           proportional("Times-Roman", timesRomanWidths(), 500),
			"Times-Bold":            proportional("Times-Bold", timesBoldWidths(), 500),
			"Times-BoldItalic":      proportional("Times-BoldItalic", timesBoldItalicWidths(), 500),
			"Times-Italic":          proportional("Times-Italic", timesItalicWidths(), 500),
			"Symbol":                proportional("Symbol", symbolWidths(), 500),
			"ZapfDingbats":          proportional("ZapfDingbats", zapfDingbatsWidths(), 788),
		}
		metricsDone.Store(true)
	}
	return metrics
}

// aliases maps common names of metric-compatible fonts to the standard
// fonts.  Keys are normalized with [normalize].
var aliases = map[string]string{
	"arial":                        "Helvetica",
	"arialmt":                      "Helvetica",
	"arial,bold":                   "Helvetica-Bold",
	"arial-boldmt":                 "Helvetica-Bold",
	"arial,italic":                 "Helvetica-Oblique",
	"arial-italicmt":               "Helvetica-Oblique",
	"arial,bolditalic":             "Helvetica-BoldOblique",
	"arial-bolditalicmt":           "Helvetica-BoldOblique",
	"helvetica,bold":               "Helvetica-Bold",
	"helvetica,italic":             "Helvetica-Oblique",
	"helvetica,bolditalic":         "Helvetica-BoldOblique",
	"helvetica-italic":             "Helvetica-Oblique",
	"helvetica-bolditalic":         "Helvetica-BoldOblique",
	"timesnewroman":                "Times-Roman",
	"timesnewromanpsmt":            "Times-Roman",
	"timesnewroman,bold":           "Times-Bold",
	"timesnewromanps-boldmt":       "Times-Bold",
	"timesnewroman,italic":         "Times-Italic",
	"timesnewromanps-italicmt":     "Times-Italic",
	"timesnewroman,bolditalic":     "Times-BoldItalic",
	"timesnewromanps-bolditalicmt": "Times-BoldItalic",
	"times":                        "Times-Roman",
	"times,bold":                   "Times-Bold",
	"times,italic":                 "Times-Italic",
	"times,bolditalic":             "Times-BoldItalic",
	"couriernew":                   "Courier",
	"couriernewpsmt":               "Courier",
	"couriernew,bold":              "Courier-Bold",
	"couriernewps-boldmt":          "Courier-Bold",
	"couriernew,italic":            "Courier-Oblique",
	"couriernewps-italicmt":        "Courier-Oblique",
	"couriernew,bolditalic":        "Courier-BoldOblique",
	"couriernewps-bolditalicmt":    "Courier-BoldOblique",
	"courier,bold":                 "Courier-Bold",
	"courier,italic":               "Courier-Oblique",
	"courier,bolditalic":           "Courier-BoldOblique",
	"symbolmt":                     "Symbol",
	"zapfdingbatsitc":              "ZapfDingbats",
	"dingbats":                     "ZapfDingbats",
}

// Get returns the metrics for a standard font.  Besides the 14 standard
// names, common names of metric-compatible fonts are recognized.
// A subset tag like "ABCDEF+" is ignored.
func Get(fontName string) (*FontMetrics, bool) {
	if i := strings.IndexByte(fontName, '+'); i == 6 {
		fontName = fontName[7:]
	}
	tab := all()
	if m, ok := tab[fontName]; ok {
		return m, true
	}
	if std, ok := aliases[normalize(fontName)]; ok {
		return tab[std], true
	}
	return nil, false
}

// normalize lower-cases name and removes spaces.
func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}
