package pagination

import (
	"github.com/gompdf/gompage/internal/parser/html"
)

// DefaultPageClass marks page templates inside the document container
const DefaultPageClass = "page"

// Template is an authored page before it is split
type Template struct {
	// Shell is the authored page element
	Shell *html.Node
	// Blocks are the element children of Shell in order
	Blocks []*html.Node
	// Index is the 0-based position among the container's templates
	Index int
}

// NewTemplate builds a template from a page element
func NewTemplate(shell *html.Node, index int) Template {
	return Template{Shell: shell, Blocks: shell.Elements(), Index: index}
}

// Templates returns the children of container that carry the page class
func Templates(container *html.Node, pageClass string) []Template {
	if pageClass == "" {
		pageClass = DefaultPageClass
	}
	var out []Template
	for _, c := range container.Elements() {
		if c.HasClass(pageClass) {
			out = append(out, NewTemplate(c, len(out)))
		}
	}
	return out
}

// Page is an output page
type Page struct {
	// Node is a shallow clone of the template shell holding Blocks
	Node   *html.Node
	Blocks []*html.Node
	// Index is the 1-based page number across the whole run, set by PackAll
	Index int
	// Template is the 1-based position of the originating template
	Template int
	// Overflow is set when an oversized block was placed on the page anyway
	Overflow *Overflow
}

// Overflow records a block placed on a page it does not fit
type Overflow struct {
	// Template is the 1-based position of the page template
	Template int
	Tag      string
	// Row is the body row of a table, or -1
	Row int
}

// draft is a page under construction
type draft struct {
	blocks   []*html.Node
	overflow *Overflow
}

// finalize moves the blocks of d into a fresh clone of shell. template is
// the 0-based Template.Index.
func finalize(shell *html.Node, template int, d draft) *Page {
	node := shell.CloneShallow()
	for _, b := range d.blocks {
		node.AppendChild(b)
	}
	return &Page{
		Node:     node,
		Blocks:   d.blocks,
		Template: template + 1,
		Overflow: d.overflow,
	}
}
