package text

import (
	"strings"

	"github.com/gompdf/gompage/internal/style"
)

// Font identifies a core PDF font at a size in CSS px
type Font struct {
	// Family is one of the core families: Helvetica, Times or Courier
	Family string
	// Style is the fpdf style string: "", "B", "I" or "BI"
	Style string
	Size  float64
}

// FontFromStyle maps CSS font properties to a core PDF font
func FontFromStyle(st style.ComputedStyle) Font {
	f := Font{Family: "Helvetica", Size: st.FontSize()}

	for _, name := range strings.Split(st.Get("font-family"), ",") {
		name = strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(name), `'"`)))
		if family, ok := families[name]; ok {
			f.Family = family
			break
		}
	}

	switch strings.ToLower(st.Get("font-weight")) {
	case "bold", "bolder", "600", "700", "800", "900":
		f.Style += "B"
	}
	switch strings.ToLower(st.Get("font-style")) {
	case "italic", "oblique":
		f.Style += "I"
	}
	return f
}

var families = map[string]string{
	"arial":           "Helvetica",
	"helvetica":       "Helvetica",
	"sans-serif":      "Helvetica",
	"verdana":         "Helvetica",
	"times":           "Times",
	"times new roman": "Times",
	"georgia":         "Times",
	"serif":           "Times",
	"courier":         "Courier",
	"courier new":     "Courier",
	"monospace":       "Courier",
}
