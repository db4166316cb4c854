package html

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser represents an HTML parser
type Parser struct {
	// Configuration options could be added here
}

// Node represents an HTML node in the document tree
type Node struct {
	Type        html.NodeType
	Data        string
	Attr        []html.Attribute
	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node
}

// Document represents a parsed HTML document
type Document struct {
	Root *Node
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(content string) (*Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := convertNode(node, nil)
	return &Document{Root: root}, nil
}

// ParseFragment parses an HTML fragment as if it were the content of the
// context element. The returned nodes are detached.
func (p *Parser) ParseFragment(r io.Reader, context *Node) ([]*Node, error) {
	tag := "div"
	if context != nil && context.Type == html.ElementNode {
		tag = strings.ToLower(context.Data)
	}
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	nodes, err := html.ParseFragment(r, ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, convertNode(n, nil))
	}
	return out, nil
}

// convertNode converts an html.Node to our Node structure
func convertNode(n *html.Node, parent *Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{
		Type:   n.Type,
		Data:   n.Data,
		Attr:   append([]html.Attribute(nil), n.Attr...),
		Parent: parent,
	}

	var lastChild *Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		child := convertNode(c, node)
		if node.FirstChild == nil {
			node.FirstChild = child
		}
		if lastChild != nil {
			lastChild.NextSibling = child
			child.PrevSibling = lastChild
		}
		lastChild = child
	}
	node.LastChild = lastChild

	return node
}

// Render renders the document back to HTML
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := d.RenderTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTo writes the document as HTML to w
func (d *Document) RenderTo(w io.Writer) error {
	if d.Root == nil {
		return nil
	}
	return Render(w, d.Root)
}

// Render writes the subtree rooted at n as HTML to w
func Render(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	return html.Render(w, toNet(n))
}

// toNet rebuilds an x/net/html tree for the subtree rooted at n
func toNet(n *Node) *html.Node {
	out := &html.Node{
		Type: n.Type,
		Data: n.Data,
		Attr: n.Attr,
	}
	if n.Type == html.ElementNode {
		out.DataAtom = atom.Lookup([]byte(n.Data))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(toNet(c))
	}
	return out
}
