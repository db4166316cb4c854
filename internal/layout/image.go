package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/gompdf/gompage/internal/style"
	"go.uber.org/zap"
)

// ImageSource reports the intrinsic size of an image reference in px
type ImageSource interface {
	ImageSize(src string) (float64, float64, error)
}

// ImageBox represents an <img> element laid out as a replaced element.
// Width and Height are the border box.
type ImageBox struct {
	Node  *html.Node
	Style style.ComputedStyle

	X      float64
	Y      float64
	Width  float64
	Height float64

	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// Src is resolved later by the renderer
	Src string
}

// layoutImage sizes an image from CSS, then attributes, then its intrinsic
// size, keeping the aspect ratio when only one dimension is given
func (e *Engine) layoutImage(n *html.Node, st style.ComputedStyle, containing float64) *ImageBox {
	src, _ := n.GetAttr("src")
	img := &ImageBox{Node: n, Style: st, Src: src}

	m := st.Margin(containing)
	img.MarginTop, img.MarginRight, img.MarginBottom, img.MarginLeft = m.Top, m.Right, m.Bottom, m.Left
	chromeW := st.Padding(containing).Horizontal() + st.Border().Horizontal()
	chromeH := st.Padding(containing).Vertical() + st.Border().Vertical()

	w, hasW := st.Length("width", containing)
	h, hasH := 0.0, false
	if !strings.HasSuffix(st.Get("height"), "%") {
		h, hasH = st.Length("height", 0)
	}
	if !hasW {
		w, hasW = attrLength(n, "width")
	}
	if !hasH {
		h, hasH = attrLength(n, "height")
	}

	var iw, ih float64
	if (!hasW || !hasH) && e.images != nil && src != "" {
		var err error
		if iw, ih, err = e.images.ImageSize(src); err != nil {
			e.log.Debug("Image size unavailable", zap.String("src", truncateSrc(src)), zap.Error(err))
			iw, ih = 0, 0
		}
	}

	switch {
	case hasW && hasH:
	case hasW:
		if iw > 0 {
			h = w * ih / iw
		}
	case hasH:
		if ih > 0 {
			w = h * iw / ih
		}
	default:
		w, h = iw, ih
	}

	if mw, ok := st.Length("max-width", containing); ok && w > mw && w > 0 {
		h = h * mw / w
		w = mw
	}

	img.Width = max(0, w) + chromeW
	img.Height = max(0, h) + chromeH
	return img
}

func attrLength(n *html.Node, name string) (float64, bool) {
	v, ok := n.GetAttr(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

func truncateSrc(s string) string {
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}

func (b *ImageBox) GetX() float64      { return b.X }
func (b *ImageBox) GetY() float64      { return b.Y }
func (b *ImageBox) GetWidth() float64  { return b.Width }
func (b *ImageBox) GetHeight() float64 { return b.Height }

func (b *ImageBox) GetMarginTop() float64    { return b.MarginTop }
func (b *ImageBox) GetMarginBottom() float64 { return b.MarginBottom }
func (b *ImageBox) GetMarginLeft() float64   { return b.MarginLeft }
func (b *ImageBox) GetMarginRight() float64  { return b.MarginRight }

func (b *ImageBox) SetPosition(x, y float64) { b.X, b.Y = x, y }

func (b *ImageBox) GetNode() *html.Node { return b.Node }
