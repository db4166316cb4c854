package measure

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gompdf/gompage/internal/parser/html"
)

// Workspace is a scratch element attached under the document container while
// a candidate set is measured. Release detaches it again.
type Workspace struct {
	parent  *html.Node
	wrapper *html.Node
}

// workspaceAttr marks workspace elements in the tree
const workspaceAttr = "data-gompage-workspace"

// neutralStyle cancels the page box geometry on a workspace cloned from a
// page template, so only its content is measured
const neutralStyle = "display:block;visibility:hidden;height:auto;min-height:0;max-height:none;" +
	"margin:0;padding:0;border:0;box-sizing:content-box;width:"

// Acquire attaches a workspace of the given content width under parent. When
// shell is not nil the workspace is a shallow clone of it, so selectors that
// target page templates also apply to measured content.
func Acquire(parent, shell *html.Node, width float64) (*Workspace, error) {
	if parent == nil {
		return nil, errors.New("workspace has no parent")
	}
	var wrapper *html.Node
	if shell != nil {
		wrapper = shell.CloneShallow()
		removeAttr(wrapper, "id")
	} else {
		wrapper = html.NewElement("div")
	}
	wrapper.SetAttr(workspaceAttr, "")
	wrapper.SetAttr("style", neutralStyle+strconv.FormatFloat(width, 'f', -1, 64)+"px")

	parent.AppendChild(wrapper)
	return &Workspace{parent: parent, wrapper: wrapper}, nil
}

// Add deep-clones blocks into the workspace
func (w *Workspace) Add(blocks []*html.Node) error {
	for i, b := range blocks {
		if b == nil {
			return fmt.Errorf("candidate %d is nil", i)
		}
		if !b.IsElement() {
			return fmt.Errorf("candidate %d is not an element", i)
		}
		w.wrapper.AppendChild(b.Clone())
	}
	return nil
}

// Node returns the workspace element
func (w *Workspace) Node() *html.Node {
	return w.wrapper
}

// Release detaches the workspace and drops the clones
func (w *Workspace) Release() {
	w.wrapper.Detach()
	w.wrapper.RemoveChildren()
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}
