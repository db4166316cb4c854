package htmldoc

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gompdf/gompage/internal/pagination"
	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/gompdf/gompage/internal/style"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

func parse(t *testing.T, src string) *html.Document {
	t.Helper()
	doc, err := html.NewParser().ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func byClass(root *html.Node, class string) *html.Node {
	return root.Find(func(n *html.Node) bool { return n.HasClass(class) })
}

func TestEnsureID(t *testing.T) {
	doc := parse(t, `<div class="document" id="keep"></div><div class="other"></div>`)
	if id := EnsureID(byClass(doc.Root, "document")); id != "keep" {
		t.Errorf("EnsureID() = %q, want existing id", id)
	}

	other := byClass(doc.Root, "other")
	id := EnsureID(other)
	if !strings.HasPrefix(id, "id-") {
		t.Fatalf("EnsureID() = %q, want id- prefix", id)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(id, "id-")); err != nil {
		t.Errorf("EnsureID() = %q: %v", id, err)
	}
	if got, _ := other.GetAttr("id"); got != id {
		t.Errorf("id attribute = %q, want %q", got, id)
	}
}

func TestInjectedStylesheetSizesPages(t *testing.T) {
	doc := parse(t, `<html><head></head><body><div class="document"><div class="page"><p>x</p></div></div></body></html>`)
	container := byClass(doc.Root, "document")
	id := EnsureID(container)

	css := PrintStylesheet(id, "page", PageSize{Width: "210mm", Height: "297mm"})
	if _, err := InjectStyle(doc.Root, css); err != nil {
		t.Fatalf("InjectStyle() error = %v", err)
	}
	// a second injection replaces the first
	if _, err := InjectStyle(doc.Root, css); err != nil {
		t.Fatalf("InjectStyle() error = %v", err)
	}
	head := doc.Root.Find(func(n *html.Node) bool { return n.IsElement("head") })
	if n := len(head.Elements()); n != 1 {
		t.Errorf("head has %d elements, want 1", n)
	}

	styles := style.NewStyleEngine(zaptest.NewLogger(t))
	if err := styles.LoadDocumentStyles(doc.Root); err != nil {
		t.Fatalf("LoadDocumentStyles() error = %v", err)
	}
	st := styles.ComputeChain(byClass(doc.Root, "page"))
	if got := st.Get("height"); got != "297mm" {
		t.Errorf("page height = %q, want 297mm", got)
	}
	if got := st.Get("box-sizing"); got != "border-box" {
		t.Errorf("page box-sizing = %q, want border-box", got)
	}
	if got := styles.ComputeChain(container).Get("display"); got != "flex" {
		t.Errorf("container display = %q, want flex", got)
	}
}

func TestInjectStyleNeedsHeadOrBody(t *testing.T) {
	if _, err := InjectStyle(html.NewElement("div"), "p{}"); err == nil {
		t.Error("InjectStyle() on a bare element should fail")
	}
}

func TestRebuildAndEnrich(t *testing.T) {
	doc := parse(t, `<div class="document"><div class="page" data-kind="a"><p>one</p><p>two</p></div></div>`)
	container := byClass(doc.Root, "document")
	shell := byClass(doc.Root, "page")
	blocks := shell.Elements()

	var pages []*pagination.Page
	for i, b := range blocks {
		node := shell.CloneShallow()
		node.AppendChild(b)
		pages = append(pages, &pagination.Page{Node: node, Blocks: []*html.Node{b}, Index: i + 1})
	}
	Rebuild(container, pages)

	got := container.Elements()
	if len(got) != 2 {
		t.Fatalf("container has %d children, want 2", len(got))
	}
	for i, n := range got {
		if v, _ := n.GetAttr("data-kind"); v != "a" || !n.HasClass("page") {
			t.Errorf("page %d lost the template attributes", i)
		}
	}

	var seen []string
	e := NewEnricher(func(p PageInfo) string {
		seen = append(seen, fmt.Sprintf("%d/%d", p.Number, p.Total))
		if p.Number == 2 {
			return ""
		}
		return fmt.Sprintf(`<footer class="num">%d / %d</footer>`, p.Number, p.Total)
	}, zaptest.NewLogger(t))
	if err := e.Enrich(pages); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if strings.Join(seen, ",") != "1/2,2/2" {
		t.Errorf("hook calls = %v", seen)
	}
	footer := byClass(got[0], "num")
	if footer == nil || footer.TextContent() != "1 / 2" || got[0].LastChild != footer {
		t.Error("first page is missing the injected footer")
	}
	if byClass(got[1], "num") != nil {
		t.Error("second page should be unchanged")
	}

	if err := NewEnricher(nil, nil).Enrich(pages); err != nil {
		t.Errorf("Enrich() without hook error = %v", err)
	}
}
