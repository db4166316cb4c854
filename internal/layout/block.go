package layout

import (
	"strings"

	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/gompdf/gompage/internal/style"
)

// BlockBox represents a block-level box in the layout. Table boxes, rows and
// cells are block boxes too.
type BlockBox struct {
	Node          *html.Node
	Style         style.ComputedStyle
	X             float64
	Y             float64
	Width         float64
	Height        float64
	MarginTop     float64
	MarginRight   float64
	MarginBottom  float64
	MarginLeft    float64
	PaddingTop    float64
	PaddingRight  float64
	PaddingBottom float64
	PaddingLeft   float64
	BorderTop     float64
	BorderRight   float64
	BorderBottom  float64
	BorderLeft    float64
	Children      []Box

	// ContentHeight is the height of the laid out content, which may differ
	// from the content box when a height is declared
	ContentHeight float64
	// margins of the first and last in-flow children, included in ContentHeight
	leadingMargin  float64
	trailingMargin float64
}

// NewBlockBox creates a new block box for an element and resolves its margins,
// padding and borders against the containing block width
func NewBlockBox(node *html.Node, computedStyle style.ComputedStyle, containing float64) *BlockBox {
	b := &BlockBox{
		Node:     node,
		Style:    computedStyle,
		Children: []Box{},
	}
	b.parseBoxModel(containing)
	return b
}

// parseBoxModel resolves margin, padding, and border properties
func (b *BlockBox) parseBoxModel(containing float64) {
	m := b.Style.Margin(containing)
	b.MarginTop, b.MarginRight, b.MarginBottom, b.MarginLeft = m.Top, m.Right, m.Bottom, m.Left

	p := b.Style.Padding(containing)
	b.PaddingTop, b.PaddingRight, b.PaddingBottom, b.PaddingLeft = p.Top, p.Right, p.Bottom, p.Left

	bd := b.Style.Border()
	b.BorderTop, b.BorderRight, b.BorderBottom, b.BorderLeft = bd.Top, bd.Right, bd.Bottom, bd.Left
}

// resolveWidth sets the border box width. A positive fixed width wins over
// declared and auto widths.
func (b *BlockBox) resolveWidth(containing, fixed float64) {
	switch {
	case fixed > 0:
		b.Width = fixed
	default:
		if w, ok := b.Style.Length("width", containing); ok {
			if !b.borderBoxSizing() {
				w += b.horizontalChrome()
			}
			b.Width = w
		} else {
			b.Width = containing - b.MarginLeft - b.MarginRight
		}
	}
	if mw, ok := b.Style.Length("max-width", containing); ok {
		if !b.borderBoxSizing() {
			mw += b.horizontalChrome()
		}
		b.Width = min(b.Width, mw)
	}
	b.Width = max(b.Width, b.horizontalChrome())
}

// resolveHeight sets the border box height from the content height and the
// declared height constraints
func (b *BlockBox) resolveHeight(content float64) {
	b.ContentHeight = content
	h := content + b.verticalChrome()

	if v, ok := b.definiteLength("height"); ok {
		if !b.borderBoxSizing() {
			v += b.verticalChrome()
		}
		h = max(v, b.verticalChrome())
	}
	if v, ok := b.definiteLength("max-height"); ok {
		if !b.borderBoxSizing() {
			v += b.verticalChrome()
		}
		h = min(h, v)
	}
	if v, ok := b.definiteLength("min-height"); ok {
		if !b.borderBoxSizing() {
			v += b.verticalChrome()
		}
		h = max(h, v)
	}
	b.Height = h
}

// definiteLength resolves a vertical length. Percentages need a definite
// containing block height and are treated as auto.
func (b *BlockBox) definiteLength(name string) (float64, bool) {
	if strings.HasSuffix(b.Style.Get(name), "%") {
		return 0, false
	}
	return b.Style.Length(name, 0)
}

func (b *BlockBox) borderBoxSizing() bool {
	return strings.EqualFold(b.Style.Get("box-sizing"), "border-box")
}

func (b *BlockBox) horizontalChrome() float64 {
	return b.PaddingLeft + b.PaddingRight + b.BorderLeft + b.BorderRight
}

func (b *BlockBox) verticalChrome() float64 {
	return b.PaddingTop + b.PaddingBottom + b.BorderTop + b.BorderBottom
}

// ContentX returns the left edge of the content box
func (b *BlockBox) ContentX() float64 { return b.X + b.BorderLeft + b.PaddingLeft }

// ContentY returns the top edge of the content box
func (b *BlockBox) ContentY() float64 { return b.Y + b.BorderTop + b.PaddingTop }

// ContentWidth returns the width of the content box
func (b *BlockBox) ContentWidth() float64 { return max(0, b.Width-b.horizontalChrome()) }

// FlowExtent returns the height of the laid out content without the outer
// margins of the first and last children, which would collapse through a box
// without padding or borders
func (b *BlockBox) FlowExtent() float64 {
	return max(0, b.ContentHeight-b.leadingMargin-b.trailingMargin)
}

// GetX returns the x position of the box
func (b *BlockBox) GetX() float64 {
	return b.X
}

// GetY returns the y position of the box
func (b *BlockBox) GetY() float64 {
	return b.Y
}

// GetWidth returns the width of the box
func (b *BlockBox) GetWidth() float64 {
	return b.Width
}

// GetHeight returns the height of the box
func (b *BlockBox) GetHeight() float64 {
	return b.Height
}

// GetMarginTop returns the top margin of the box
func (b *BlockBox) GetMarginTop() float64 {
	return b.MarginTop
}

// GetMarginBottom returns the bottom margin of the box
func (b *BlockBox) GetMarginBottom() float64 {
	return b.MarginBottom
}

// GetMarginLeft returns the left margin of the box
func (b *BlockBox) GetMarginLeft() float64 {
	return b.MarginLeft
}

// GetMarginRight returns the right margin of the box
func (b *BlockBox) GetMarginRight() float64 {
	return b.MarginRight
}

// SetPosition moves the box and all of its descendants
func (b *BlockBox) SetPosition(x, y float64) {
	dx, dy := x-b.X, y-b.Y
	b.X, b.Y = x, y
	for _, ch := range b.Children {
		ch.SetPosition(ch.GetX()+dx, ch.GetY()+dy)
	}
}

// AddChild adds a child box
func (b *BlockBox) AddChild(child Box) {
	b.Children = append(b.Children, child)
}

// GetNode returns the HTML node associated with this box
func (b *BlockBox) GetNode() *html.Node {
	return b.Node
}
