package pagination

import (
	"github.com/gompdf/gompage/internal/parser/html"
)

// Table is a parsed view of a <table> being split
type Table struct {
	Shell *html.Node
	Head  *html.Node
	Body  *html.Node
	// Foot is optional
	Foot *html.Node
	// Rows are the <tr> children of Body in order
	Rows []*html.Node
}

// ParseTable checks that n has a single header and body section and
// collects its body rows
func ParseTable(n *html.Node, template int) (*Table, error) {
	t := &Table{Shell: n}
	for _, c := range n.Elements() {
		var slot **html.Node
		switch c.Tag() {
		case "thead":
			slot = &t.Head
		case "tbody":
			slot = &t.Body
		case "tfoot":
			slot = &t.Foot
		case "tr":
			return nil, &MalformedTableError{Template: template, Reason: "row outside a table section"}
		default:
			continue
		}
		if *slot != nil {
			return nil, &MalformedTableError{Template: template, Reason: "more than one <" + c.Tag() + ">"}
		}
		*slot = c
	}
	switch {
	case t.Head == nil:
		return nil, &MalformedTableError{Template: template, Reason: "no <thead>"}
	case t.Body == nil:
		return nil, &MalformedTableError{Template: template, Reason: "no <tbody>"}
	}
	for _, r := range t.Body.Elements() {
		if r.IsElement("tr") {
			t.Rows = append(t.Rows, r)
		}
	}
	return t, nil
}

// fragment is a header together with a contiguous slice of body rows.
// Extending a fragment never changes the original.
type fragment struct {
	table *Table
	rows  []*html.Node
}

func (f fragment) with(row *html.Node) fragment {
	rows := make([]*html.Node, len(f.rows), len(f.rows)+1)
	copy(rows, f.rows)
	return fragment{table: f.table, rows: append(rows, row)}
}

// candidate builds a detached copy of the fragment for measurement
func (f fragment) candidate() *html.Node {
	return f.build(func(r *html.Node) *html.Node { return r.Clone() })
}

// materialize builds the output table, moving the rows into it
func (f fragment) materialize() *html.Node {
	return f.build(func(r *html.Node) *html.Node { return r })
}

// build copies the table structure around the rows. Sections other than the
// body (header, footer, caption, column groups) are cloned.
func (f fragment) build(row func(*html.Node) *html.Node) *html.Node {
	t := f.table.Shell.CloneShallow()
	for c := f.table.Shell.FirstChild; c != nil; c = c.NextSibling {
		if c != f.table.Body {
			if c.IsElement() {
				t.AppendChild(c.Clone())
			}
			continue
		}
		body := c.CloneShallow()
		for _, r := range f.rows {
			body.AppendChild(row(r))
		}
		t.AppendChild(body)
	}
	return t
}
