package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/gompdf/gompage/internal/style"
	"github.com/gompdf/gompage/internal/text"
	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"
)

// ErrNotElement is returned when layout is requested for a non-element node
var ErrNotElement = errors.New("layout root is not an element")

// Engine handles the layout process. It is not safe for concurrent use when
// the style engine's stylesheets change.
type Engine struct {
	log      *zap.Logger
	styles   *style.StyleEngine
	measurer *text.Measurer
	images   ImageSource
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log.Named("layout")
		}
	}
}

// WithMeasurer replaces the shared text measurer
func WithMeasurer(m *text.Measurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

// WithImages sets the source of intrinsic image sizes
func WithImages(src ImageSource) Option {
	return func(e *Engine) {
		e.images = src
	}
}

// NewEngine creates a new layout engine over a style engine
func NewEngine(styles *style.StyleEngine, opts ...Option) *Engine {
	e := &Engine{
		log:      zap.NewNop(),
		styles:   styles,
		measurer: text.Shared(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout lays out the element n as a block at (x, y) inside a containing
// block of the given width. Inherited styles come from n's ancestors.
func (e *Engine) Layout(n *html.Node, x, y, width float64) (*BlockBox, error) {
	if !n.IsElement() {
		return nil, ErrNotElement
	}
	var parent style.ComputedStyle
	if n.Parent != nil {
		parent = e.styles.ComputeChain(n.Parent)
	}
	st := e.styles.Compute(n, parent)

	b, err := e.layoutBlock(n, st, x, y, width, 0)
	if err != nil {
		return nil, fmt.Errorf("layout of <%s>: %w", n.Tag(), err)
	}
	e.log.Debug("Laid out element",
		zap.String("tag", n.Tag()),
		zap.Float64("width", b.Width),
		zap.Float64("height", b.Height),
		zap.Int("children", len(b.Children)))
	return b, nil
}

// layoutBlock lays out a block-level element with its border box at (x, y).
// A positive fixedWidth overrides the element's own width.
func (e *Engine) layoutBlock(n *html.Node, st style.ComputedStyle, x, y, containing, fixedWidth float64) (*BlockBox, error) {
	if st.Display() == "table" && fixedWidth == 0 {
		return e.layoutTable(n, st, x, y, containing)
	}

	b := NewBlockBox(n, st, containing)
	b.X, b.Y = x, y
	b.resolveWidth(containing, fixedWidth)

	h, err := e.layoutFlow(b, n, st)
	if err != nil {
		return nil, err
	}
	b.resolveHeight(h)
	return b, nil
}

// layoutFlow lays out the children of n in the content box of b and returns
// the content height. Runs of inline content between block children become
// anonymous blocks.
func (e *Engine) layoutFlow(b *BlockBox, n *html.Node, st style.ComputedStyle) (float64, error) {
	x, top, width := b.ContentX(), b.ContentY(), b.ContentWidth()
	cursor := top
	prevMargin := 0.0
	first := true
	var inline []*html.Node

	flushInline := func() error {
		if !hasInlineContent(inline) {
			inline = inline[:0]
			return nil
		}
		anon := &BlockBox{Style: st, Children: []Box{}}
		anon.X, anon.Width = x, width
		anon.Y = cursor + prevMargin
		h, err := e.layoutInline(anon, inline, st, x, anon.Y, width)
		if err != nil {
			return err
		}
		anon.Height, anon.ContentHeight = h, h
		b.Children = append(b.Children, anon)
		cursor = anon.Y + h
		prevMargin = 0
		first = false
		inline = inline[:0]
		return nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode {
			inline = append(inline, c)
			continue
		}
		if c.Type != xhtml.ElementNode {
			continue
		}
		cs := e.styles.Compute(c, st)
		if cs.Hidden() {
			continue
		}
		if !isBlockLevel(cs) {
			inline = append(inline, c)
			continue
		}
		if err := flushInline(); err != nil {
			return 0, err
		}

		m := cs.Margin(width)
		gap := m.Top
		if first {
			b.leadingMargin = gap
		} else {
			gap = collapseMargins(prevMargin, m.Top)
		}

		var child Box
		if c.IsElement("img") {
			img := e.layoutImage(c, cs, width)
			img.SetPosition(x+m.Left, cursor+gap)
			child = img
		} else {
			cb, err := e.layoutBlock(c, cs, x+m.Left, cursor+gap, width, 0)
			if err != nil {
				return 0, err
			}
			child = cb
		}
		b.Children = append(b.Children, child)
		cursor = child.GetY() + child.GetHeight()
		prevMargin = child.GetMarginBottom()
		first = false
	}
	if err := flushInline(); err != nil {
		return 0, err
	}

	if first {
		return 0, nil
	}
	b.trailingMargin = prevMargin
	return cursor + prevMargin - top, nil
}

// isBlockLevel reports whether an element takes part in block layout
func isBlockLevel(st style.ComputedStyle) bool {
	switch st.Display() {
	case "inline", "inline-block", "inline-flex", "inline-table":
		return false
	}
	return true
}

// hasInlineContent reports whether a run of inline nodes produces any line
func hasInlineContent(nodes []*html.Node) bool {
	for _, n := range nodes {
		if n.Type == xhtml.ElementNode {
			return true
		}
		if strings.TrimSpace(n.Data) != "" {
			return true
		}
	}
	return false
}
