// Package htmldoc prepares a document for pagination and writes the packed
// pages back into it.
package htmldoc

import (
	"fmt"
	"strings"

	"github.com/gompdf/gompage/internal/pagination"
	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PageSize is a page box as CSS lengths
type PageSize struct {
	Width  string
	Height string
}

// PageInfo is passed to an InjectFunc for every output page
type PageInfo struct {
	// Number is the 1-based page number
	Number int
	Total  int
	// Node is the page element
	Node *html.Node
}

// InjectFunc returns HTML to append to a page, or "" for nothing
type InjectFunc func(p PageInfo) string

// styleMarker identifies the injected print stylesheet
const styleMarker = "data-gompage"

// EnsureID returns the id of container, assigning a random one when it has none
func EnsureID(container *html.Node) string {
	if id, ok := container.GetAttr("id"); ok && strings.TrimSpace(id) != "" {
		return id
	}
	id := "id-" + uuid.NewString()
	container.SetAttr("id", id)
	return id
}

// PrintStylesheet returns the stylesheet laying out the pages of a container
// as fixed-size boxes, one per printed sheet
func PrintStylesheet(containerID, pageClass string, size PageSize) string {
	return fmt.Sprintf(`
#%[1]s {
  display: flex;
  flex-direction: column;
  gap: 10px;
}
#%[1]s .%[2]s {
  background-color: #FFF;
  width: %[3]s;
  height: %[4]s;
  margin: 0 auto;
  page-break-after: always;
  -webkit-print-color-adjust: exact;
  print-color-adjust: exact;
  overflow: hidden;
  box-sizing: border-box;
  position: relative;
}
@page {
  size: %[3]s %[4]s;
  margin: 0;
}
@media print {
  #%[1]s {
    gap: 0;
  }
}
`, containerID, pageClass, size.Width, size.Height)
}

// InjectStyle appends a <style> element with css to the document head, or to
// the body when there is no head. A stylesheet injected earlier is replaced.
func InjectStyle(root *html.Node, css string) (*html.Node, error) {
	if old := root.Find(func(n *html.Node) bool {
		_, ok := n.GetAttr(styleMarker)
		return ok && n.IsElement("style")
	}); old != nil {
		old.Detach()
	}

	target := root.Find(func(n *html.Node) bool { return n.IsElement("head") })
	if target == nil {
		target = root.Find(func(n *html.Node) bool { return n.IsElement("body") })
	}
	if target == nil {
		return nil, fmt.Errorf("document has neither head nor body")
	}

	style := html.NewElement("style")
	style.SetAttr("type", "text/css")
	style.SetAttr(styleMarker, "")
	style.AppendChild(html.NewText(css))
	target.AppendChild(style)
	return style, nil
}

// Rebuild clears container and appends the page elements in order
func Rebuild(container *html.Node, pages []*pagination.Page) {
	container.RemoveChildren()
	for _, p := range pages {
		container.AppendChild(p.Node)
	}
}

// Enricher runs an InjectFunc over packed pages
type Enricher struct {
	log    *zap.Logger
	parser *html.Parser
	fn     InjectFunc
}

// NewEnricher creates an enricher. A nil fn makes Enrich a no-op.
func NewEnricher(fn InjectFunc, log *zap.Logger) *Enricher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enricher{log: log.Named("inject"), parser: html.NewParser(), fn: fn}
}

// Enrich calls the hook once per page and appends the returned HTML to it.
// The HTML is parsed in the context of the page element.
func (e *Enricher) Enrich(pages []*pagination.Page) error {
	if e.fn == nil {
		return nil
	}
	for i, p := range pages {
		out := e.fn(PageInfo{Number: i + 1, Total: len(pages), Node: p.Node})
		if strings.TrimSpace(out) == "" {
			continue
		}
		nodes, err := e.parser.ParseFragment(strings.NewReader(out), p.Node)
		if err != nil {
			return fmt.Errorf("page %d: parsing injected content: %w", i+1, err)
		}
		for _, n := range nodes {
			p.Node.AppendChild(n)
		}
		e.log.Debug("Injected page content", zap.Int("page", i+1), zap.Int("nodes", len(nodes)))
	}
	return nil
}
