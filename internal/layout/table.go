package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/gompdf/gompage/internal/style"
)

// tableRow is a <tr> together with the styles of its row group and itself
type tableRow struct {
	node  *html.Node
	style style.ComputedStyle
}

// layoutTable lays out a table in the separated borders model. Rows are
// stacked in visual order (head, bodies, foot) with border-spacing around
// them; a row is as tall as its tallest cell or its declared height.
func (e *Engine) layoutTable(n *html.Node, st style.ComputedStyle, x, y, containing float64) (*BlockBox, error) {
	t := NewBlockBox(n, st, containing)
	t.X, t.Y = x, y
	t.resolveWidth(containing, 0)

	hs, vs := st.BorderSpacing()
	cx, cy, cw := t.ContentX(), t.ContentY(), t.ContentWidth()
	cursor := cy

	captions, rows := e.collectTableParts(n, st)
	for _, c := range captions {
		cs := e.styles.Compute(c, st)
		m := cs.Margin(cw)
		cb, err := e.layoutBlock(c, cs, cx+m.Left, cursor+m.Top, cw, 0)
		if err != nil {
			return nil, err
		}
		t.Children = append(t.Children, cb)
		cursor = cb.Y + cb.Height + m.Bottom
	}

	cols := e.columnWidths(rows, cw, hs)
	if len(rows) > 0 {
		cursor += vs
	}
	for _, r := range rows {
		row, err := e.layoutRow(r, cols, cx, cursor, cw, hs)
		if err != nil {
			return nil, err
		}
		t.Children = append(t.Children, row)
		cursor += row.Height + vs
	}

	t.resolveHeight(cursor - cy)
	// a declared table height is a minimum
	t.Height = max(t.Height, t.ContentHeight+t.verticalChrome())
	return t, nil
}

// collectTableParts returns the captions and the rows of a table in visual order
func (e *Engine) collectTableParts(n *html.Node, st style.ComputedStyle) ([]*html.Node, []tableRow) {
	var captions []*html.Node
	var head, body, foot []tableRow

	addRows := func(group *html.Node, gs style.ComputedStyle, dst *[]tableRow) {
		for _, tr := range group.Elements() {
			if !tr.IsElement("tr") {
				continue
			}
			rs := e.styles.Compute(tr, gs)
			if rs.Hidden() {
				continue
			}
			*dst = append(*dst, tableRow{node: tr, style: rs})
		}
	}

	seenHead, seenFoot := false, false
	for _, c := range n.Elements() {
		cs := e.styles.Compute(c, st)
		if cs.Hidden() {
			continue
		}
		switch c.Tag() {
		case "caption":
			captions = append(captions, c)
		case "thead":
			if seenHead {
				addRows(c, cs, &body)
			} else {
				addRows(c, cs, &head)
				seenHead = true
			}
		case "tfoot":
			if seenFoot {
				addRows(c, cs, &body)
			} else {
				addRows(c, cs, &foot)
				seenFoot = true
			}
		case "tbody":
			addRows(c, cs, &body)
		case "tr":
			body = append(body, tableRow{node: c, style: cs})
		}
	}

	rows := append(head, body...)
	return captions, append(rows, foot...)
}

// tableCells returns the visible cells of a row with their styles
func (e *Engine) tableCells(r tableRow) ([]*html.Node, []style.ComputedStyle) {
	var cells []*html.Node
	var styles []style.ComputedStyle
	for _, c := range r.node.Elements() {
		if !c.IsElement("td", "th") {
			continue
		}
		cs := e.styles.Compute(c, r.style)
		if cs.Hidden() {
			continue
		}
		cells = append(cells, c)
		styles = append(styles, cs)
	}
	return cells, styles
}

// columnWidths determines consistent column widths. Widths declared on the
// first row (the header row when present) are honored; the remaining space is
// split evenly among the other columns.
func (e *Engine) columnWidths(rows []tableRow, width, spacing float64) []float64 {
	cols := 0
	for _, r := range rows {
		cells, _ := e.tableCells(r)
		n := 0
		for _, c := range cells {
			n += colspan(c)
		}
		cols = max(cols, n)
	}
	if cols == 0 {
		return nil
	}

	effective := max(0, width-spacing*float64(cols+1))
	widths := make([]float64, cols)
	declared := make([]bool, cols)

	cells, styles := e.tableCells(rows[0])
	idx, total := 0, 0.0
	for i, c := range cells {
		span := colspan(c)
		w, ok := styles[i].Length("width", effective)
		if !ok {
			w, ok = attrWidth(c, effective)
		}
		for j := 0; j < span && idx < cols; j++ {
			if ok {
				widths[idx] = w / float64(span)
				declared[idx] = true
				total += widths[idx]
			}
			idx++
		}
	}

	free := 0
	for _, d := range declared {
		if !d {
			free++
		}
	}
	if free > 0 {
		each := max(0, effective-total) / float64(free)
		for i := range widths {
			if !declared[i] {
				widths[i] = each
			}
		}
	}
	return widths
}

// layoutRow places the cells of a row at the column positions and sizes the
// row to its tallest cell
func (e *Engine) layoutRow(r tableRow, cols []float64, x, y, width, spacing float64) (*BlockBox, error) {
	row := NewBlockBox(r.node, r.style, width)
	row.X, row.Y, row.Width = x, y, width
	row.MarginTop, row.MarginRight, row.MarginBottom, row.MarginLeft = 0, 0, 0, 0

	cells, styles := e.tableCells(r)
	cellX := x + spacing
	col := 0
	maxH := 0.0
	for i, c := range cells {
		if col >= len(cols) {
			break
		}
		span := colspan(c)
		w := 0.0
		for j := 0; j < span && col+j < len(cols); j++ {
			w += cols[col+j]
		}
		w += spacing * float64(min(span, len(cols)-col)-1)

		cell, err := e.layoutBlock(c, styles[i], cellX, y, w, w)
		if err != nil {
			return nil, err
		}
		// a declared cell height is a minimum
		cell.Height = max(cell.Height, cell.ContentHeight+cell.verticalChrome())
		row.Children = append(row.Children, cell)
		maxH = max(maxH, cell.Height)

		cellX += w + spacing
		col += span
	}

	if h, ok := row.definiteLength("height"); ok {
		maxH = max(maxH, h)
	}
	row.Height, row.ContentHeight = maxH, maxH
	// cells stretch to the row height
	for _, c := range row.Children {
		if cb, ok := c.(*BlockBox); ok {
			cb.Height = maxH
		}
	}
	return row, nil
}

func colspan(n *html.Node) int {
	v, ok := n.GetAttr("colspan")
	if !ok {
		return 1
	}
	if span, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && span > 1 {
		return span
	}
	return 1
}

// attrWidth reads the legacy width attribute as px or a percentage
func attrWidth(n *html.Node, base float64) (float64, bool) {
	v, ok := n.GetAttr("width")
	if !ok {
		return 0, false
	}
	return style.ParseLength(strings.TrimSpace(v), base, style.DefaultFontSize)
}
