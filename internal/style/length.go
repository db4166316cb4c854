package style

import (
	"strconv"
	"strings"
)

// DefaultFontSize is the root font size in CSS px
const DefaultFontSize = 16.0

// Absolute unit factors to CSS px (96 px per inch)
var unitFactors = map[string]float64{
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"in": 96,
	"cm": 96.0 / 2.54,
	"mm": 96.0 / 25.4,
	"q":  96.0 / 101.6,
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   16,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// ParseLength parses a CSS length into px. Percentages resolve against base and
// em against fontSize. The boolean is false for "auto", empty or malformed values.
func ParseLength(value string, base, fontSize float64) (float64, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "auto" || v == "none" || v == "normal" {
		return 0, false
	}

	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(v[:len(v)-1], 64)
		if err != nil {
			return 0, false
		}
		return base * f / 100, true
	}

	if strings.HasSuffix(v, "rem") {
		f, err := strconv.ParseFloat(v[:len(v)-3], 64)
		if err != nil {
			return 0, false
		}
		return f * DefaultFontSize, true
	}

	if strings.HasSuffix(v, "em") {
		f, err := strconv.ParseFloat(v[:len(v)-2], 64)
		if err != nil {
			return 0, false
		}
		return f * fontSize, true
	}

	for unit, factor := range unitFactors {
		if strings.HasSuffix(v, unit) {
			f, err := strconv.ParseFloat(v[:len(v)-len(unit)], 64)
			if err != nil {
				continue
			}
			return f * factor, true
		}
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// resolveFontSize turns a font-size value into px relative to the parent size
func resolveFontSize(value string, parent float64) float64 {
	v := strings.ToLower(strings.TrimSpace(value))
	if px, ok := fontSizeKeywords[v]; ok {
		return px
	}
	switch v {
	case "smaller":
		return parent / 1.2
	case "larger":
		return parent * 1.2
	}
	if px, ok := ParseLength(v, parent, parent); ok && px > 0 {
		return px
	}
	return parent
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
