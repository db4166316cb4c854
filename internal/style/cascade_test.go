package style

import (
	"errors"
	"math"
	"testing"

	"github.com/gompdf/gompage/internal/parser/html"
	"go.uber.org/zap/zaptest"
)

func computeFor(t *testing.T, src string, id string) ComputedStyle {
	t.Helper()
	doc, err := html.NewParser().ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	e := NewStyleEngine(zaptest.NewLogger(t))
	if err := e.LoadDocumentStyles(doc.Root); err != nil {
		t.Fatalf("LoadDocumentStyles() error = %v", err)
	}
	n := doc.Root.Find(func(n *html.Node) bool { v, _ := n.GetAttr("id"); return v == id })
	if n == nil {
		t.Fatalf("no element with id %q", id)
	}
	return e.ComputeChain(n)
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCascadeOrder(t *testing.T) {
	s := computeFor(t, `<style>
		#x { color: blue; }
		.a { color: red; height: 10px !important; }
		div { color: green; height: 20px; }
		.a { width: 1px; }
		.a { width: 2px; }
	</style><div id="x" class="a" style="height: 30px">t</div>`, "x")

	if got := s.Get("color"); got != "blue" {
		t.Errorf("color = %q, want blue (id beats class and type)", got)
	}
	if got := s.Get("height"); got != "10px" {
		t.Errorf("height = %q, want 10px (!important beats inline)", got)
	}
	if got := s.Get("width"); got != "2px" {
		t.Errorf("width = %q, want 2px (later rule wins)", got)
	}
}

func TestSelectorCombinators(t *testing.T) {
	src := `<style>
		.document > .page { padding-top: 5px; }
		.document p { padding-left: 7px; }
	</style>
	<div class="document"><div class="page" id="pg"><div class="page" id="inner"><p id="p">x</p></div></div></div>`

	if got := computeFor(t, src, "pg").Get("padding-top"); got != "5px" {
		t.Errorf("direct child padding-top = %q, want 5px", got)
	}
	if got := computeFor(t, src, "inner").Get("padding-top"); got != "" {
		t.Errorf("grandchild matched child combinator: %q", got)
	}
	if got := computeFor(t, src, "p").Get("padding-left"); got != "7px" {
		t.Errorf("descendant padding-left = %q, want 7px", got)
	}
}

func TestInheritanceAndFontSize(t *testing.T) {
	src := `<style>
		#outer { font-size: 20px; line-height: 1.5; color: #333; margin: 4px; }
		#inner { font-size: 2em; }
	</style><div id="outer"><p id="inner">x</p></div>`

	s := computeFor(t, src, "inner")
	if !almost(s.FontSize(), 40) {
		t.Errorf("FontSize() = %v, want 40", s.FontSize())
	}
	if !almost(s.LineHeight(), 60) {
		t.Errorf("LineHeight() = %v, want 60 (factor inherited)", s.LineHeight())
	}
	if s.Get("color") != "#333" {
		t.Errorf("color not inherited: %q", s.Get("color"))
	}
	// UA margin: 1em 0 on p, resolved against the element's own font size
	if m := s.Margin(100); !almost(m.Top, 40) || m.Left != 0 {
		t.Errorf("Margin() = %+v", m)
	}
}

func TestShorthandExpansion(t *testing.T) {
	s := computeFor(t, `<div id="x" style="padding: 1px 2px 3px; border: 2px solid #000; border-left: none; margin: 0 auto">x</div>`, "x")

	p := s.Padding(0)
	if p != (Edges{Top: 1, Right: 2, Bottom: 3, Left: 2}) {
		t.Errorf("Padding() = %+v", p)
	}
	b := s.Border()
	if b != (Edges{Top: 2, Right: 2, Bottom: 2, Left: 0}) {
		t.Errorf("Border() = %+v", b)
	}
	if _, ok := s.Length("margin-left", 100); ok {
		t.Error("auto margin should not resolve")
	}
}

func TestParseLengthUnits(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10px", 10, true},
		{"72pt", 96, true},
		{"1in", 96, true},
		{"25.4mm", 96, true},
		{"2.54cm", 96, true},
		{"1pc", 16, true},
		{"2em", 20, true},
		{"1rem", 16, true},
		{"50%", 100, true},
		{"0", 0, true},
		{"auto", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLength(tt.in, 200, 10)
		if ok != tt.ok || !almost(got, tt.want) {
			t.Errorf("ParseLength(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStyleMediaAttribute(t *testing.T) {
	s := computeFor(t, `<style media="screen">#x { height: 1px }</style><style media="print">#x { width: 3px }</style><div id="x"></div>`, "x")
	if s.Get("height") != "" {
		t.Error("screen stylesheet applied")
	}
	if s.Get("width") != "3px" {
		t.Error("print stylesheet not applied")
	}
}

func TestLinkedStylesheets(t *testing.T) {
	doc, err := html.NewParser().ParseString(`<html><head>
		<link rel="stylesheet" href="a.css">
		<link rel="stylesheet" href="missing.css">
		<link rel="icon" href="favicon.ico">
		<style>#x { width: 5px }</style>
	</head><body><div id="x"></div></body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	e := NewStyleEngine(zaptest.NewLogger(t))
	var asked []string
	e.SetLinkResolver(func(href string) (string, error) {
		asked = append(asked, href)
		if href == "a.css" {
			return "#x { height: 7px; width: 1px }", nil
		}
		return "", errors.New("not found")
	})
	if err := e.LoadDocumentStyles(doc.Root); err != nil {
		t.Fatalf("LoadDocumentStyles() error = %v", err)
	}
	x := doc.Root.Find(func(n *html.Node) bool { v, _ := n.GetAttr("id"); return v == "x" })
	s := e.ComputeChain(x)
	if s.Get("height") != "7px" {
		t.Errorf("height = %q, want 7px from the linked stylesheet", s.Get("height"))
	}
	if s.Get("width") != "5px" {
		t.Errorf("width = %q, want 5px from the later <style>", s.Get("width"))
	}
	if len(asked) != 2 {
		t.Errorf("resolver asked for %q, want the two stylesheet links", asked)
	}
}

func TestMatches(t *testing.T) {
	doc, err := html.NewParser().ParseString(`<body><main class="document"><div class="page" id="p"></div></main></body>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	p := doc.Root.Find(func(n *html.Node) bool { v, _ := n.GetAttr("id"); return v == "p" })
	for sel, want := range map[string]bool{
		".page":                  true,
		"div#p.page":             true,
		".document > .page":      true,
		"body .page":             true,
		"section .page":          false,
		".document > body .page": false,
		"":                       false,
	} {
		if got := Matches(p, sel); got != want {
			t.Errorf("Matches(%q) = %v, want %v", sel, got, want)
		}
	}
}
