package api

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gompdf/gompage/internal/layout"
	"github.com/gompdf/gompage/internal/measure"
	"github.com/gompdf/gompage/internal/pagination"
	"github.com/gompdf/gompage/internal/parser/html"
	"github.com/gompdf/gompage/internal/render/htmldoc"
	"github.com/gompdf/gompage/internal/render/pdf"
	"github.com/gompdf/gompage/internal/res"
	"github.com/gompdf/gompage/internal/style"
	"go.uber.org/zap"
)

var (
	// ErrNoContainer is returned when the document has no container element
	ErrNoContainer = errors.New("document container not found")
	// ErrNoPageTemplates is returned when the container holds no page template
	ErrNoPageTemplates = errors.New("no page templates in container")
	// ErrInvalidPageSize is returned for page dimensions that are not absolute lengths
	ErrInvalidPageSize = errors.New("invalid page size")

	// ErrUnrepresentable is returned when a block does not fit on an empty page
	ErrUnrepresentable = pagination.ErrUnrepresentable
	// ErrMalformedTable is returned for a table without a header or body section
	ErrMalformedTable = pagination.ErrMalformedTable
)

type (
	// Page is an output page
	Page = pagination.Page
	// Overflow records a block force-placed on its own page
	Overflow = pagination.Overflow
	// UnrepresentableError describes a block that cannot be placed on any page
	UnrepresentableError = pagination.UnrepresentableError
	// MalformedTableError describes a table that cannot be split
	MalformedTableError = pagination.MalformedTableError
)

// Paginator is the main API for splitting the page templates of a document
// into page-sized pages
type Paginator struct {
	options Options
}

// New creates a new paginator with default options modified by opts
func New(opts ...Option) *Paginator {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a new paginator with the specified options
func NewWithOptions(options Options) *Paginator {
	return &Paginator{options: options}
}

// Options returns a copy of the paginator options
func (p *Paginator) Options() Options {
	return p.options
}

// WithOption returns a new paginator with the specified option set
func (p *Paginator) WithOption(option Option) *Paginator {
	newOptions := p.options
	newOptions.ResourcePaths = append([]string(nil), p.options.ResourcePaths...)
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// Result is a paginated document
type Result struct {
	// Document is the whole document with the container repopulated
	Document *html.Document
	// Container holds one element per output page
	Container *html.Node
	// Pages are the output pages in order
	Pages []*Page
	// Overflows lists blocks force-placed under OverflowPlace
	Overflows []Overflow
	// Capacity is the page content height in px
	Capacity float64
	// Width is the page content width in px
	Width float64
	// MeasureCalls counts the fit queries made while packing
	MeasureCalls int

	options    Options
	log        *zap.Logger
	loader     *res.Loader
	engine     *layout.Engine
	pageWidth  float64
	pageHeight float64
}

// Paginate paginates an HTML document given as a string
func (p *Paginator) Paginate(htmlContent string) (*Result, error) {
	return p.PaginateReader(strings.NewReader(htmlContent))
}

// PaginateReader paginates an HTML document read from r. Relative resources
// are resolved against the resource paths only.
func (p *Paginator) PaginateReader(r io.Reader) (*Result, error) {
	doc, err := html.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return p.run(doc, p.newLoader(""))
}

// PaginateFile paginates an HTML file. Relative resources are resolved against
// the file location.
func (p *Paginator) PaginateFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML file: %w", err)
	}
	defer f.Close()

	doc, err := html.NewParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return p.run(doc, p.newLoader(path))
}

// PaginateURL loads and paginates an HTML document
func (p *Paginator) PaginateURL(url string) (*Result, error) {
	loader := p.newLoader(url)
	resource, err := loader.LoadHTML(url)
	if err != nil {
		return nil, fmt.Errorf("failed to load HTML from URL: %w", err)
	}
	doc, err := html.NewParser().Parse(resource.GetReader())
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return p.run(doc, loader)
}

func (p *Paginator) logger() *zap.Logger {
	if p.options.Logger == nil {
		return zap.NewNop()
	}
	return p.options.Logger
}

func (p *Paginator) newLoader(base string) *res.Loader {
	loader := res.NewLoader(base, p.logger())
	for _, path := range p.options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	return loader
}

func (p *Paginator) run(doc *html.Document, loader *res.Loader) (*Result, error) {
	log := p.logger()
	o := p.options

	size, pageW, pageH, err := o.pageSize()
	if err != nil {
		return nil, err
	}
	pageClass := o.PageClass
	if pageClass == "" {
		pageClass = pagination.DefaultPageClass
	}

	container, err := findContainer(doc.Root, o.ContainerSelector)
	if err != nil {
		return nil, err
	}
	id := htmldoc.EnsureID(container)
	if _, err := htmldoc.InjectStyle(doc.Root, htmldoc.PrintStylesheet(id, pageClass, size)); err != nil {
		return nil, fmt.Errorf("failed to inject print stylesheet: %w", err)
	}

	styles := style.NewStyleEngine(log)
	styles.SetLinkResolver(func(href string) (string, error) {
		r, err := loader.LoadCSS(href)
		if err != nil {
			return "", err
		}
		return r.GetString(), nil
	})
	if err := styles.LoadDocumentStyles(doc.Root); err != nil {
		return nil, fmt.Errorf("failed to parse CSS: %w", err)
	}

	templates := pagination.Templates(container, pageClass)
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: class %q", ErrNoPageTemplates, pageClass)
	}

	geom, err := measure.DeriveGeometry(styles, templates[0].Shell, pageW)
	switch {
	case err == nil:
	case errors.Is(err, measure.ErrNoPageHeight) && o.Capacity > 0:
		geom.Width = pageW
	default:
		return nil, fmt.Errorf("failed to derive page capacity: %w", err)
	}
	if o.Capacity > 0 {
		geom.Capacity = o.Capacity
	}
	log.Debug("Page geometry",
		zap.String("width", size.Width),
		zap.String("height", size.Height),
		zap.Float64("content width", geom.Width),
		zap.Float64("capacity", geom.Capacity))

	engine := layout.NewEngine(styles, layout.WithLogger(log), layout.WithImages(loader))
	oracle := measure.NewLayoutOracle(engine, container, geom.Width, geom.Capacity,
		measure.WithTolerance(o.Tolerance),
		measure.WithLogger(log))
	// the packer measures every template inside its own page element
	packer := pagination.NewPacker(oracle,
		pagination.WithLogger(log),
		pagination.WithOverflowPolicy(o.Overflow))

	report, err := packer.PackAll(templates)
	if err != nil {
		return nil, err
	}
	htmldoc.Rebuild(container, report.Pages)
	if err := htmldoc.NewEnricher(o.Inject, log).Enrich(report.Pages); err != nil {
		return nil, err
	}

	log.Debug("Paginated document",
		zap.Int("templates", len(templates)),
		zap.Int("pages", len(report.Pages)),
		zap.Int("measurements", oracle.Calls()))

	return &Result{
		Document:     doc,
		Container:    container,
		Pages:        report.Pages,
		Overflows:    report.Overflows,
		Capacity:     geom.Capacity,
		Width:        geom.Width,
		MeasureCalls: oracle.Calls(),
		options:      o,
		log:          log,
		loader:       loader,
		engine:       engine,
		pageWidth:    pageW,
		pageHeight:   pageH,
	}, nil
}

// pageSize resolves the page dimensions and applies the orientation
func (o Options) pageSize() (htmldoc.PageSize, float64, float64, error) {
	size := htmldoc.PageSize{Width: strings.TrimSpace(o.PageWidth), Height: strings.TrimSpace(o.PageHeight)}
	w, okW := absoluteLength(size.Width)
	h, okH := absoluteLength(size.Height)
	if !okW || !okH || w <= 0 || h <= 0 {
		return size, 0, 0, fmt.Errorf("%w: %q x %q", ErrInvalidPageSize, o.PageWidth, o.PageHeight)
	}

	swap := false
	switch o.PageOrientation {
	case PageOrientationLandscape:
		swap = w < h
	case PageOrientationPortrait, "":
		swap = w > h
	}
	if swap {
		size.Width, size.Height = size.Height, size.Width
		w, h = h, w
	}
	return size, w, h, nil
}

func absoluteLength(v string) (float64, bool) {
	if strings.HasSuffix(v, "%") {
		return 0, false
	}
	return style.ParseLength(v, 0, style.DefaultFontSize)
}

// findContainer returns the element matching selector, or the first element
// with class "document", or <body>
func findContainer(root *html.Node, selector string) (*html.Node, error) {
	if selector = strings.TrimSpace(selector); selector != "" {
		if n := root.Find(func(n *html.Node) bool { return style.Matches(n, selector) }); n != nil {
			return n, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrNoContainer, selector)
	}
	if n := root.Find(func(n *html.Node) bool { return n.IsElement() && n.HasClass("document") }); n != nil {
		return n, nil
	}
	if n := root.Find(func(n *html.Node) bool { return n.IsElement("body") }); n != nil {
		return n, nil
	}
	return nil, ErrNoContainer
}

// HTML returns the paginated document as HTML
func (r *Result) HTML() (string, error) {
	return r.Document.Render()
}

// WriteHTML writes the paginated document as HTML to w
func (r *Result) WriteHTML(w io.Writer) error {
	if err := r.Document.RenderTo(w); err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	return nil
}

// WritePDF lays out every output page and writes them as a PDF document to w
func (r *Result) WritePDF(w io.Writer) error {
	boxes := make([]*layout.BlockBox, 0, len(r.Pages))
	for _, pg := range r.Pages {
		b, err := r.engine.Layout(pg.Node, 0, 0, r.pageWidth)
		if err != nil {
			return fmt.Errorf("failed to lay out page %d: %w", pg.Index, err)
		}
		// the page box is exactly one sheet
		b.Width, b.Height = r.pageWidth, r.pageHeight
		boxes = append(boxes, b)
	}

	renderer := pdf.NewRenderer(r.loader, r.log)
	renderer.RenderBackgrounds = r.options.RenderBackgrounds
	renderer.RenderBorders = r.options.RenderBorders
	renderer.DebugDrawBoxes = r.options.DebugDrawBoxes

	err := renderer.Render(boxes, w, pdf.RenderOptions{
		Title:    r.options.Title,
		Author:   r.options.Author,
		Subject:  r.options.Subject,
		Keywords: r.options.Keywords,
		Creator:  "gompage",
		Producer: "gompage",
	})
	if err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}
