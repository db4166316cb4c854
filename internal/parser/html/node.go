package html

import (
	"strings"

	"golang.org/x/net/html"
)

// IsElement reports whether n is an element, optionally one of the given tags.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if strings.EqualFold(n.Data, t) {
			return true
		}
	}
	return false
}

// Tag returns the lower-case tag name of an element, or "" for other nodes.
func (n *Node) Tag() string {
	if !n.IsElement() {
		return ""
	}
	return strings.ToLower(n.Data)
}

// GetAttr returns the value of the named attribute
func (n *Node) GetAttr(key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute
func (n *Node) SetAttr(key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether the class attribute contains the given class token
func (n *Node) HasClass(class string) bool {
	v, ok := n.GetAttr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// Elements returns the element children of n in document order
func (n *Node) Elements() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstElement returns the first element child with the given tag
func (n *Node) FirstElement(tag string) *Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.IsElement(tag) {
			return c
		}
	}
	return nil
}

// Find returns the first node in depth-first order, n included, matching fn
func (n *Node) Find(fn func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	if fn(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := c.Find(fn); found != nil {
			return found
		}
	}
	return nil
}

// AppendChild appends c as the last child of n. A node that is still attached
// elsewhere is moved.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	c.Parent = n
	c.PrevSibling = n.LastChild
	if n.LastChild != nil {
		n.LastChild.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
}

// RemoveChild detaches c from n. It is a no-op when c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	if c == nil || c.Parent != n {
		return
	}
	if c.PrevSibling != nil {
		c.PrevSibling.NextSibling = c.NextSibling
	} else {
		n.FirstChild = c.NextSibling
	}
	if c.NextSibling != nil {
		c.NextSibling.PrevSibling = c.PrevSibling
	} else {
		n.LastChild = c.PrevSibling
	}
	c.Parent, c.PrevSibling, c.NextSibling = nil, nil, nil
}

// Detach removes n from its parent, if any
func (n *Node) Detach() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// RemoveChildren detaches every child of n and returns them in order
func (n *Node) RemoveChildren() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		c.Parent, c.PrevSibling, c.NextSibling = nil, nil, nil
		out = append(out, c)
		c = next
	}
	n.FirstChild, n.LastChild = nil, nil
	return out
}

// CloneShallow copies n without its children. The copy is detached.
func (n *Node) CloneShallow() *Node {
	return &Node{
		Type: n.Type,
		Data: n.Data,
		Attr: append([]html.Attribute(nil), n.Attr...),
	}
}

// Clone deep-copies the subtree rooted at n. The copy is detached.
func (n *Node) Clone() *Node {
	c := n.CloneShallow()
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(ch.Clone())
	}
	return c
}

// TextContent concatenates the text of all descendant text nodes
func (n *Node) TextContent() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// NewElement creates a detached element node
func NewElement(tag string, attrs ...html.Attribute) *Node {
	return &Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

// NewText creates a detached text node
func NewText(data string) *Node {
	return &Node{Type: html.TextNode, Data: data}
}
