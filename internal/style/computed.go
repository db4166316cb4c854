package style

import (
	"strconv"
	"strings"
)

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the value of a property, or "" when it is not set
func (s ComputedStyle) Get(name string) string {
	return strings.TrimSpace(s[name].Value)
}

// Display returns the display value, defaulting to inline
func (s ComputedStyle) Display() string {
	if v := strings.ToLower(s.Get("display")); v != "" {
		return v
	}
	return "inline"
}

// FontSize returns the resolved font size in px
func (s ComputedStyle) FontSize() float64 {
	if px, ok := ParseLength(s.Get("font-size"), DefaultFontSize, DefaultFontSize); ok && px > 0 {
		return px
	}
	return DefaultFontSize
}

// LineHeight returns the used line height in px
func (s ComputedStyle) LineHeight() float64 {
	size := s.FontSize()
	v := s.Get("line-height")
	if f, ok := parseNumber(v); ok {
		return f * size
	}
	if px, ok := ParseLength(v, size, size); ok {
		return px
	}
	return size * 1.2
}

// Length resolves a length property against base, which percentages refer to.
// The boolean is false when the property is unset or auto.
func (s ComputedStyle) Length(name string, base float64) (float64, bool) {
	return ParseLength(s.Get(name), base, s.FontSize())
}

// LengthOr is like Length but returns def when the property does not resolve
func (s ComputedStyle) LengthOr(name string, base, def float64) float64 {
	if v, ok := s.Length(name, base); ok {
		return v
	}
	return def
}

// BorderWidth returns the used border width of a side. Borders without a
// visible style have no width.
func (s ComputedStyle) BorderWidth(side string) float64 {
	switch strings.ToLower(s.Get("border-" + side + "-style")) {
	case "", "none", "hidden":
		return 0
	}
	v := strings.ToLower(s.Get("border-" + side + "-width"))
	if kw, ok := borderWidthKeywords[v]; ok {
		v = kw
	}
	if v == "" {
		v = borderWidthKeywords["medium"]
	}
	w, ok := ParseLength(v, 0, s.FontSize())
	if !ok || w < 0 {
		return 0
	}
	return w
}

// Edges holds per-side box lengths in px
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Vertical returns top plus bottom
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// Horizontal returns left plus right
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Margin returns the margins, percentages resolved against the containing width
func (s ComputedStyle) Margin(containing float64) Edges {
	return s.edges("margin-%s", containing)
}

// Padding returns the paddings, percentages resolved against the containing width
func (s ComputedStyle) Padding(containing float64) Edges {
	return s.edges("padding-%s", containing)
}

// Border returns the used border widths
func (s ComputedStyle) Border() Edges {
	return Edges{
		Top:    s.BorderWidth("top"),
		Right:  s.BorderWidth("right"),
		Bottom: s.BorderWidth("bottom"),
		Left:   s.BorderWidth("left"),
	}
}

func (s ComputedStyle) edges(pattern string, containing float64) Edges {
	get := func(side string) float64 {
		return s.LengthOr(strings.Replace(pattern, "%s", side, 1), containing, 0)
	}
	return Edges{Top: get("top"), Right: get("right"), Bottom: get("bottom"), Left: get("left")}
}

// BorderSpacing returns the horizontal and vertical border-spacing of a table
// in the separated borders model
func (s ComputedStyle) BorderSpacing() (float64, float64) {
	if strings.EqualFold(s.Get("border-collapse"), "collapse") {
		return 0, 0
	}
	parts := strings.Fields(s.Get("border-spacing"))
	size := s.FontSize()
	switch len(parts) {
	case 1:
		v, _ := ParseLength(parts[0], 0, size)
		return v, v
	case 2:
		h, _ := ParseLength(parts[0], 0, size)
		v, _ := ParseLength(parts[1], 0, size)
		return h, v
	}
	return 0, 0
}

// Hidden reports whether the element generates no box
func (s ComputedStyle) Hidden() bool {
	return s.Display() == "none"
}

// parseNumber parses a unitless number
func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
