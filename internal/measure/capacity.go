package measure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/gompdf/gompage/internal/style"
)

// ErrNoPageHeight is returned when a page template has no definite height
var ErrNoPageHeight = errors.New("page template has no definite height")

// Geometry is the content box of a page template in px
type Geometry struct {
	// Width is the width available to page content
	Width float64
	// Capacity is the maximum height of page content
	Capacity float64
}

// DeriveGeometry computes the content box of a page template from its
// computed style. containing is the width of the element the template lives in,
// used when the template declares no width of its own.
func DeriveGeometry(styles *style.StyleEngine, shell *html.Node, containing float64) (Geometry, error) {
	if !shell.IsElement() {
		return Geometry{}, fmt.Errorf("page template: %w", ErrMeasurement)
	}
	st := styles.ComputeChain(shell)

	pad := st.Padding(containing)
	border := st.Border()
	borderBox := strings.EqualFold(st.Get("box-sizing"), "border-box")

	h, ok := 0.0, false
	if !strings.HasSuffix(st.Get("height"), "%") {
		h, ok = st.Length("height", 0)
	}
	if !ok {
		return Geometry{}, ErrNoPageHeight
	}
	if borderBox {
		h -= pad.Vertical() + border.Vertical()
	}

	w, ok := st.Length("width", containing)
	switch {
	case !ok:
		m := st.Margin(containing)
		w = containing - m.Horizontal() - pad.Horizontal() - border.Horizontal()
	case borderBox:
		w -= pad.Horizontal() + border.Horizontal()
	}

	return Geometry{Width: max(0, w), Capacity: max(0, h)}, nil
}
