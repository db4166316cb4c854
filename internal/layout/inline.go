package layout

import (
	"strings"

	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/gompdf/gompage/internal/style"
	"github.com/gompdf/gompage/internal/text"
	xhtml "golang.org/x/net/html"
)

// ascentRatio approximates the ascent of the core fonts relative to the em size
const ascentRatio = 0.8

// InlineBox is a laid out piece of text on a line
type InlineBox struct {
	Node   *html.Node
	Style  style.ComputedStyle
	Font   text.Font
	X      float64
	Y      float64
	Width  float64
	Height float64
	// Baseline is the y coordinate of the text baseline
	Baseline float64
	Text     string
}

// GetX returns the x position of the box
func (b *InlineBox) GetX() float64 { return b.X }

// GetY returns the y position of the box
func (b *InlineBox) GetY() float64 { return b.Y }

// GetWidth returns the width of the box
func (b *InlineBox) GetWidth() float64 { return b.Width }

// GetHeight returns the height of the box
func (b *InlineBox) GetHeight() float64 { return b.Height }

func (b *InlineBox) GetMarginTop() float64    { return 0 }
func (b *InlineBox) GetMarginBottom() float64 { return 0 }
func (b *InlineBox) GetMarginLeft() float64   { return 0 }
func (b *InlineBox) GetMarginRight() float64  { return 0 }

// SetPosition moves the box together with its baseline
func (b *InlineBox) SetPosition(x, y float64) {
	b.Baseline += y - b.Y
	b.X, b.Y = x, y
}

// GetNode returns the text node the box was created from
func (b *InlineBox) GetNode() *html.Node { return b.Node }

// inlineItem is a word, a collapsible space, a forced break or an atomic image
type inlineItem struct {
	node   *html.Node
	text   string
	space  bool
	brk    bool
	style  style.ComputedStyle
	font   text.Font
	width  float64
	ascent float64
	// descent below the baseline, including half the leading for text
	descent float64
	image   *ImageBox
	nowrap  bool
}

// layoutInline lays out a run of inline nodes into line boxes inside the
// content box starting at (x, y) and returns the total height of the lines
func (e *Engine) layoutInline(container *BlockBox, nodes []*html.Node, parent style.ComputedStyle, x, y, width float64) (float64, error) {
	var items []inlineItem
	for _, n := range nodes {
		if err := e.collectInline(n, parent, width, &items); err != nil {
			return 0, err
		}
	}
	items = collapseSpaces(items)
	if len(items) == 0 {
		return 0, nil
	}

	strutAscent, strutDescent := textMetrics(parent)
	align := strings.ToLower(parent.Get("text-align"))

	var (
		line      []inlineItem
		lineWidth float64
		curY      = y
	)

	emitLine := func() {
		for len(line) > 0 && line[len(line)-1].space {
			lineWidth -= line[len(line)-1].width
			line = line[:len(line)-1]
		}
		maxAscent, maxDescent := strutAscent, strutDescent
		for _, it := range line {
			maxAscent = max(maxAscent, it.ascent)
			maxDescent = max(maxDescent, it.descent)
		}
		baseline := curY + maxAscent

		offsetX := 0.0
		switch align {
		case "right", "end":
			offsetX = max(0, width-lineWidth)
		case "center":
			offsetX = max(0, (width-lineWidth)/2)
		}

		cx := x + offsetX
		for _, it := range line {
			switch {
			case it.image != nil:
				it.image.SetPosition(cx+it.image.MarginLeft, baseline-it.ascent+it.image.MarginTop)
				container.Children = append(container.Children, it.image)
			case it.text != "" && !it.space:
				container.Children = append(container.Children, &InlineBox{
					Node:     it.node,
					Style:    it.style,
					Font:     it.font,
					X:        cx,
					Y:        baseline - it.font.Size*ascentRatio,
					Width:    it.width,
					Height:   it.font.Size,
					Baseline: baseline,
					Text:     it.text,
				})
			}
			cx += it.width
		}
		curY += maxAscent + maxDescent
		line = line[:0]
		lineWidth = 0
	}

	for i := 0; i < len(items); {
		it := items[i]
		if it.brk {
			emitLine()
			i++
			continue
		}
		if it.space {
			if len(line) > 0 {
				line = append(line, it)
				lineWidth += it.width
			}
			i++
			continue
		}

		// words not separated by a space break as one unit
		j, unitWidth := i, 0.0
		for j < len(items) && !items[j].space && !items[j].brk {
			unitWidth += items[j].width
			j++
		}
		if len(line) > 0 && !it.nowrap && lineWidth+unitWidth > width {
			emitLine()
		}
		for ; i < j; i++ {
			line = append(line, items[i])
			lineWidth += items[i].width
		}
	}
	if len(line) > 0 {
		emitLine()
	}
	return curY - y, nil
}

// collectInline flattens an inline subtree into items
func (e *Engine) collectInline(n *html.Node, parent style.ComputedStyle, width float64, out *[]inlineItem) error {
	switch n.Type {
	case xhtml.TextNode:
		return e.collectText(n, parent, out)
	case xhtml.ElementNode:
	default:
		return nil
	}

	st := e.styles.Compute(n, parent)
	if st.Hidden() {
		return nil
	}
	switch n.Tag() {
	case "br":
		*out = append(*out, inlineItem{brk: true})
		return nil
	case "img":
		img := e.layoutImage(n, st, width)
		asc := img.Height + img.MarginTop + img.MarginBottom
		*out = append(*out, inlineItem{
			node:   n,
			image:  img,
			style:  st,
			width:  img.Width + img.MarginLeft + img.MarginRight,
			ascent: asc,
		})
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := e.collectInline(c, st, width, out); err != nil {
			return err
		}
	}
	return nil
}

// collectText measures the words and spaces of a text node
func (e *Engine) collectText(n *html.Node, st style.ComputedStyle, out *[]inlineItem) error {
	font := text.FontFromStyle(st)
	ascent, descent := textMetrics(st)
	ws := strings.ToLower(st.Get("white-space"))

	add := func(s string, space bool) error {
		w, err := e.measurer.Width(s, font)
		if err != nil {
			return err
		}
		*out = append(*out, inlineItem{
			node:    n,
			text:    s,
			space:   space,
			style:   st,
			font:    font,
			width:   w,
			ascent:  ascent,
			descent: descent,
			nowrap:  ws == "nowrap" || ws == "pre",
		})
		return nil
	}

	switch ws {
	case "pre", "pre-wrap", "pre-line":
		for i, line := range strings.Split(strings.ReplaceAll(n.Data, "\r\n", "\n"), "\n") {
			if i > 0 {
				*out = append(*out, inlineItem{brk: true})
			}
			if ws == "pre-line" {
				line = strings.TrimSpace(text.NormalizeSpace(line))
			}
			if line == "" {
				continue
			}
			if err := add(line, false); err != nil {
				return err
			}
		}
		return nil
	}

	for _, tok := range text.Tokenize(text.NormalizeSpace(n.Data)) {
		if err := add(tok, text.IsSpace(tok)); err != nil {
			return err
		}
	}
	return nil
}

// collapseSpaces removes spaces at the start, after another space or around
// forced breaks
func collapseSpaces(items []inlineItem) []inlineItem {
	out := items[:0]
	for _, it := range items {
		if it.space {
			if len(out) == 0 || out[len(out)-1].space || out[len(out)-1].brk {
				continue
			}
		}
		if it.brk && len(out) > 0 && out[len(out)-1].space {
			out = out[:len(out)-1]
		}
		out = append(out, it)
	}
	return out
}

// textMetrics returns the ascent and descent of a line of text in the given
// style, with the leading split evenly above and below
func textMetrics(st style.ComputedStyle) (float64, float64) {
	size := st.FontSize()
	lh := st.LineHeight()
	halfLeading := (lh - size) / 2
	ascent := halfLeading + size*ascentRatio
	return ascent, lh - ascent
}
