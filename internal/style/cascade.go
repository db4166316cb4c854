package style

import (
	"strings"

	"github.com/gompdf/gompage/internal/parser/css"
	"github.com/gompdf/gompage/internal/parser/html"
	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
	// position of the declaring rule in cascade order
	Order int
}

// Source represents the source of a style property
type Source int

const (
	SourceUserAgent Source = iota
	SourceAuthor
	SourceInline
	// SourceInherited marks values taken from the parent element
	SourceInherited
)

// Properties inherited from the parent when the element does not set them
var inherited = map[string]bool{
	"color":           true,
	"font-family":     true,
	"font-size":       true,
	"font-style":      true,
	"font-weight":     true,
	"line-height":     true,
	"text-align":      true,
	"white-space":     true,
	"direction":       true,
	"visibility":      true,
	"list-style-type": true,
	"border-collapse": true,
	"border-spacing":  true,
}

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	log             *zap.Logger
	parser          *css.Parser
	userAgentStyles *css.Stylesheet
	authorStyles    []*css.Stylesheet
	links           LinkResolver
}

// LinkResolver returns the text of the stylesheet referenced by a <link> href
type LinkResolver func(href string) (string, error)

// NewStyleEngine creates a new style engine
func NewStyleEngine(log *zap.Logger) *StyleEngine {
	if log == nil {
		log = zap.NewNop()
	}
	parser := css.NewParser(log)
	return &StyleEngine{
		log:             log.Named("style"),
		parser:          parser,
		userAgentStyles: defaultUserAgentStyles(parser),
		authorStyles:    []*css.Stylesheet{},
	}
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	if stylesheet != nil {
		e.authorStyles = append(e.authorStyles, stylesheet)
	}
}

// SetLinkResolver enables loading of <link rel="stylesheet"> elements
func (e *StyleEngine) SetLinkResolver(fn LinkResolver) {
	e.links = fn
}

// LoadDocumentStyles replaces the author stylesheets with the <style> elements
// of the document, and linked stylesheets when a resolver is set, in document
// order. Elements with a non-print media attribute are ignored. A linked
// stylesheet that cannot be loaded is skipped.
func (e *StyleEngine) LoadDocumentStyles(root *html.Node) error {
	e.authorStyles = e.authorStyles[:0]
	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		if n.IsElement("link") && e.links != nil {
			rel, _ := n.GetAttr("rel")
			href, _ := n.GetAttr("href")
			if href == "" || !strings.Contains(strings.ToLower(rel), "stylesheet") {
				return nil
			}
			if media, ok := n.GetAttr("media"); ok && !printMedia(media) {
				return nil
			}
			text, err := e.links(href)
			if err != nil {
				e.log.Debug("Skipping linked stylesheet", zap.String("href", href), zap.Error(err))
				return nil
			}
			sheet, err := e.parser.ParseString(text)
			if err != nil {
				return err
			}
			e.AddStylesheet(sheet)
			return nil
		}
		if n.IsElement("style") {
			if media, ok := n.GetAttr("media"); ok && !printMedia(media) {
				e.log.Debug("Skipping style element", zap.String("media", media))
				return nil
			}
			sheet, err := e.parser.ParseString(n.TextContent())
			if err != nil {
				return err
			}
			e.AddStylesheet(sheet)
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return err
	}
	e.log.Debug("Loaded document styles", zap.Int("stylesheets", len(e.authorStyles)))
	return nil
}

func printMedia(media string) bool {
	for _, m := range strings.Split(media, ",") {
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "", "all", "print":
			return true
		}
	}
	return false
}

// ComputeStyles computes styles for all elements in the document
func (e *StyleEngine) ComputeStyles(doc *html.Document) map[*html.Node]ComputedStyle {
	result := make(map[*html.Node]ComputedStyle)
	e.computeStylesRecursive(doc.Root, nil, result)
	return result
}

// computeStylesRecursive computes styles for an element and its children
func (e *StyleEngine) computeStylesRecursive(node *html.Node, parent ComputedStyle, result map[*html.Node]ComputedStyle) {
	if node == nil {
		return
	}

	if node.Type == xhtml.ElementNode {
		parent = e.Compute(node, parent)
		result[node] = parent
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		e.computeStylesRecursive(child, parent, result)
	}
}

// ComputeChain computes the style of node, computing its ancestors first so
// inherited values are correct.
func (e *StyleEngine) ComputeChain(node *html.Node) ComputedStyle {
	var chain []*html.Node
	for n := node; n != nil; n = n.Parent {
		if n.Type == xhtml.ElementNode {
			chain = append(chain, n)
		}
	}
	var style ComputedStyle
	for i := len(chain) - 1; i >= 0; i-- {
		style = e.Compute(chain[i], style)
	}
	return style
}

// Compute computes the style of a single element given its parent's style,
// which may be nil for the root.
func (e *StyleEngine) Compute(node *html.Node, parent ComputedStyle) ComputedStyle {
	style := make(ComputedStyle)
	order := 0

	e.applyStylesheet(style, node, e.userAgentStyles, SourceUserAgent, &order)

	for _, stylesheet := range e.authorStyles {
		e.applyStylesheet(style, node, stylesheet, SourceAuthor, &order)
	}

	e.applyInlineStyles(style, node, &order)

	inherit(style, parent)
	return style
}

// inherit fills inherited properties from the parent and resolves font-size
// and line-height to px
func inherit(style, parent ComputedStyle) {
	for name, prop := range style {
		switch strings.ToLower(prop.Value) {
		case "inherit":
			if p, ok := parent[name]; ok {
				p.Source = SourceInherited
				style[name] = p
			} else {
				delete(style, name)
			}
		case "initial", "unset":
			delete(style, name)
		}
	}

	for name := range inherited {
		if _, ok := style[name]; ok {
			continue
		}
		if p, ok := parent[name]; ok {
			p.Source = SourceInherited
			style[name] = p
		}
	}

	parentSize := parent.FontSize()
	size := parentSize
	if p, ok := style["font-size"]; ok && p.Source != SourceInherited {
		size = resolveFontSize(p.Value, parentSize)
	}
	style["font-size"] = StyleProperty{Name: "font-size", Value: formatPx(size), Source: style["font-size"].Source}

	// unitless line-height inherits as a factor, anything else as a length
	if p, ok := style["line-height"]; ok && p.Source != SourceInherited {
		if _, unitless := parseNumber(p.Value); !unitless {
			if px, ok := ParseLength(p.Value, size, size); ok {
				p.Value = formatPx(px)
				style["line-height"] = p
			}
		}
	}
}

// applyStylesheet applies styles from a stylesheet to an element
func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *html.Node, stylesheet *css.Stylesheet, source Source, order *int) {
	for _, rule := range stylesheet.Rules {
		*order++
		for _, selector := range rule.Selectors {
			if e.selectorMatches(node, selector) {
				specificity := calculateSpecificity(selector)
				e.applyDeclarations(style, rule.Declarations, specificity, source, *order)
			}
		}
	}
}

// applyInlineStyles applies inline styles to an element
func (e *StyleEngine) applyInlineStyles(style ComputedStyle, node *html.Node, order *int) {
	attr, ok := node.GetAttr("style")
	if !ok || strings.TrimSpace(attr) == "" {
		return
	}
	*order++
	e.applyDeclarations(style, e.parser.ParseInline(attr), Specificity{1, 0, 0}, SourceInline, *order)
}

// applyDeclarations applies CSS declarations to a style
func (e *StyleEngine) applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source, order int) {
	for _, decl := range declarations {
		for _, lh := range expandShorthand(decl.Property, decl.Value) {
			candidate := StyleProperty{
				Name:        lh.property,
				Value:       lh.value,
				Important:   decl.Important,
				Source:      source,
				Specificity: specificity,
				Order:       order,
			}
			existing, exists := style[lh.property]
			if !exists || outranks(candidate, existing) {
				style[lh.property] = candidate
			}
		}
	}
}

// outranks reports whether a wins the cascade over b. Importance is compared
// first, then origin, then specificity and finally declaration order.
func outranks(a, b StyleProperty) bool {
	if a.Important != b.Important {
		return a.Important
	}
	if a.Source != b.Source {
		return a.Source > b.Source
	}
	if c := compareSpecificity(a.Specificity, b.Specificity); c != 0 {
		return c > 0
	}
	return a.Order >= b.Order
}

func (e *StyleEngine) selectorMatches(node *html.Node, selector string) bool {
	return Matches(node, selector)
}

// Matches checks if an element matches a CSS selector. Descendant and
// child combinators are supported.
func Matches(node *html.Node, selector string) bool {
	parts := strings.Fields(strings.ReplaceAll(selector, ">", " > "))
	if len(parts) == 0 || node == nil {
		return false
	}
	return matchParts(node, parts)
}

func matchParts(node *html.Node, parts []string) bool {
	last := len(parts) - 1
	if !matchCompoundSelector(node, parts[last]) {
		return false
	}
	if last == 0 {
		return true
	}

	if parts[last-1] == ">" {
		if last < 2 || node.Parent == nil {
			return false
		}
		return matchParts(node.Parent, parts[:last-1])
	}

	for anc := node.Parent; anc != nil; anc = anc.Parent {
		if anc.Type == xhtml.ElementNode && matchParts(anc, parts[:last]) {
			return true
		}
	}
	return false
}

// matchCompoundSelector matches a single compound selector against a node.
// Compound selectors can be forms like:
//   - tag
//   - .class
//   - #id
//   - tag.class
//   - tag#id.class1.class2
//   - .class1.class2
//
// It does not support attributes or pseudo-classes.
func matchCompoundSelector(node *html.Node, sel string) bool {
	if node == nil || node.Type != xhtml.ElementNode || sel == "" {
		return false
	}

	var wantTag string
	var wantID string
	var wantClasses []string

	i := 0
	if sel[i] != '.' && sel[i] != '#' {
		j := i
		for j < len(sel) && sel[j] != '#' && sel[j] != '.' {
			j++
		}
		wantTag = sel[i:j]
		i = j
	}
	for i < len(sel) {
		if sel[i] != '#' && sel[i] != '.' {
			return false
		}
		j := i + 1
		for j < len(sel) && sel[j] != '.' && sel[j] != '#' {
			j++
		}
		if sel[i] == '#' {
			wantID = sel[i+1 : j]
		} else {
			wantClasses = append(wantClasses, sel[i+1:j])
		}
		i = j
	}

	// pseudo-classes and attribute selectors never match
	if strings.ContainsAny(wantTag+wantID+strings.Join(wantClasses, ""), ":[") {
		return false
	}

	if wantTag != "" && wantTag != "*" && !strings.EqualFold(wantTag, node.Data) {
		return false
	}

	if wantID != "" {
		if id, ok := node.GetAttr("id"); !ok || id != wantID {
			return false
		}
	}

	for _, need := range wantClasses {
		if !node.HasClass(need) {
			return false
		}
	}

	return true
}

// calculateSpecificity calculates the specificity of a CSS selector
func calculateSpecificity(selector string) Specificity {
	specificity := Specificity{}

	for _, part := range strings.Fields(strings.ReplaceAll(selector, ">", " ")) {
		specificity.ID += strings.Count(part, "#")
		specificity.Class += strings.Count(part, ".") + strings.Count(part, "[") + strings.Count(part, ":")
		if part[0] != '#' && part[0] != '.' && part[0] != '*' {
			specificity.Element++
		}
	}

	return specificity
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// defaultUserAgentStyles returns the default user agent stylesheet
func defaultUserAgentStyles(parser *css.Parser) *css.Stylesheet {
	stylesheet, _ := parser.ParseString(`
		html, body, div, p, section, article, header, footer, main, nav, aside,
		h1, h2, h3, h4, h5, h6, ul, ol, blockquote, pre, hr, form, figure,
		figcaption, address, dl, dt, dd, fieldset { display: block; }
		head, script, style, title, meta, link, template { display: none; }
		li { display: list-item; }
		table { display: table; border-collapse: separate; border-spacing: 2px; }
		caption { display: table-caption; }
		thead { display: table-header-group; }
		tbody { display: table-row-group; }
		tfoot { display: table-footer-group; }
		tr { display: table-row; }
		td, th { display: table-cell; padding: 1px; }
		th { font-weight: bold; text-align: center; }
		body { margin: 8px; }
		h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
		h2 { font-size: 1.5em; margin: 0.83em 0; font-weight: bold; }
		h3 { font-size: 1.17em; margin: 1em 0; font-weight: bold; }
		h4 { margin: 1.33em 0; font-weight: bold; }
		h5 { font-size: 0.83em; margin: 1.67em 0; font-weight: bold; }
		h6 { font-size: 0.67em; margin: 2.33em 0; font-weight: bold; }
		p, ul, ol, dl, blockquote, figure, pre { margin: 1em 0; }
		ul, ol { padding-left: 40px; }
		blockquote, figure { margin-left: 40px; margin-right: 40px; }
		dd { margin-left: 40px; }
		hr { margin: 0.5em 0; border: 1px inset; }
		a { color: #0000EE; text-decoration: underline; }
		b, strong { font-weight: bold; }
		i, em { font-style: italic; }
		pre { white-space: pre; font-family: monospace; }
	`)
	return stylesheet
}
