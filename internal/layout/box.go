package layout

import (
	"github.com/gompdf/gompage/internal/parser/html"
)

// Box is a laid out element or text fragment. Coordinates are CSS px with the
// origin at the top left of the layout root; X, Y, width and height describe
// the border box.
type Box interface {
	GetX() float64
	GetY() float64
	GetWidth() float64
	GetHeight() float64
	GetMarginTop() float64
	GetMarginBottom() float64
	GetMarginLeft() float64
	GetMarginRight() float64
	SetPosition(x, y float64)
	GetNode() *html.Node
}

// collapseMargins combines two adjoining vertical margins
func collapseMargins(a, b float64) float64 {
	switch {
	case a >= 0 && b >= 0:
		return max(a, b)
	case a < 0 && b < 0:
		return min(a, b)
	default:
		return a + b
	}
}
