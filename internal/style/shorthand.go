package style

import (
	"strings"
)

var sides = [4]string{"top", "right", "bottom", "left"}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dashed": true, "dotted": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

var borderWidthKeywords = map[string]string{
	"thin":   "1px",
	"medium": "3px",
	"thick":  "5px",
}

type longhand struct {
	property string
	value    string
}

// expandShorthand splits box shorthands into their longhands. Properties that
// are not shorthands are returned unchanged.
func expandShorthand(property, value string) []longhand {
	switch property {
	case "margin", "padding":
		return expandBoxSides(property+"-%s", value)
	case "border-width":
		return expandBoxSides("border-%s-width", value)
	case "border-style":
		return expandBoxSides("border-%s-style", value)
	case "border-color":
		return expandBoxSides("border-%s-color", value)
	case "border":
		var out []longhand
		for _, side := range sides {
			out = append(out, expandBorderSide(side, value)...)
		}
		return out
	case "border-top", "border-right", "border-bottom", "border-left":
		return expandBorderSide(strings.TrimPrefix(property, "border-"), value)
	case "background":
		for _, f := range strings.Fields(value) {
			if !strings.HasPrefix(f, "url(") {
				return []longhand{{"background-color", f}}
			}
		}
		return nil
	}
	return []longhand{{property, value}}
}

// expandBoxSides applies the 1-4 value top/right/bottom/left rule
func expandBoxSides(pattern, value string) []longhand {
	v := strings.Fields(value)
	var top, right, bottom, left string
	switch len(v) {
	case 1:
		top, right, bottom, left = v[0], v[0], v[0], v[0]
	case 2:
		top, right, bottom, left = v[0], v[1], v[0], v[1]
	case 3:
		top, right, bottom, left = v[0], v[1], v[2], v[1]
	case 4:
		top, right, bottom, left = v[0], v[1], v[2], v[3]
	default:
		return nil
	}
	name := func(side string) string { return strings.Replace(pattern, "%s", side, 1) }
	return []longhand{
		{name("top"), top},
		{name("right"), right},
		{name("bottom"), bottom},
		{name("left"), left},
	}
}

// expandBorderSide expands a "width style color" border value for one side
func expandBorderSide(side, value string) []longhand {
	width, style, color := "medium", "none", "currentcolor"
	for _, tok := range strings.Fields(value) {
		lower := strings.ToLower(tok)
		switch {
		case borderStyles[lower]:
			style = lower
		case borderWidthKeywords[lower] != "":
			width = lower
		default:
			if _, ok := ParseLength(lower, 0, DefaultFontSize); ok {
				width = lower
			} else {
				color = tok
			}
		}
	}
	if w, ok := borderWidthKeywords[width]; ok {
		width = w
	}
	prefix := "border-" + side
	return []longhand{
		{prefix + "-width", width},
		{prefix + "-style", style},
		{prefix + "-color", color},
	}
}
