package api

import (
	"github.com/gompdf/gompage/internal/measure"
	"github.com/gompdf/gompage/internal/pagination"
	"github.com/gompdf/gompage/internal/render/htmldoc"
	"go.uber.org/zap"
)

// Options represents configuration options for the paginator
type Options struct {
	// Page dimensions as CSS lengths
	PageWidth  string
	PageHeight string
	// Page orientation: portrait or landscape
	PageOrientation PageOrientation

	// ContainerSelector selects the element holding the page templates.
	// When empty the first element with class "document" is used, then <body>.
	ContainerSelector string
	// PageClass marks the page templates inside the container
	PageClass string

	// Capacity is a fixed page content height in px. When 0 it is derived
	// from the first page template.
	Capacity float64
	// Tolerance is the slack in px allowed above capacity
	Tolerance float64
	// Overflow decides what happens to a block larger than a page
	Overflow OverflowPolicy

	// Inject is called once per output page
	Inject InjectFunc

	// Logger receives debug output; nil disables logging
	Logger *zap.Logger

	// Visual rendering toggles for PDF output
	// When false, backgrounds will not be painted
	RenderBackgrounds bool
	// When false, borders will not be painted
	RenderBorders bool
	// When true, draw debug box outlines
	DebugDrawBoxes bool

	// Resource paths
	ResourcePaths []string

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait makes the page at least as tall as it is wide
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape makes the page wider than it is tall
	PageOrientationLandscape PageOrientation = "landscape"
)

type (
	// OverflowPolicy decides what happens to a block larger than a page
	OverflowPolicy = pagination.OverflowPolicy
	// PageInfo describes an output page to an InjectFunc
	PageInfo = htmldoc.PageInfo
	// InjectFunc returns HTML appended to a page
	InjectFunc = htmldoc.InjectFunc
)

const (
	OverflowError = pagination.OverflowError
	OverflowPlace = pagination.OverflowPlace
)

// ParseOverflowPolicy parses "error" or "place"
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	return pagination.ParseOverflowPolicy(s)
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		PageWidth:       PageSizeA4Width,
		PageHeight:      PageSizeA4Height,
		PageOrientation: PageOrientationPortrait,

		PageClass: pagination.DefaultPageClass,
		Tolerance: measure.DefaultTolerance,
		Overflow:  OverflowError,

		RenderBackgrounds: true,
		RenderBorders:     true,

		ResourcePaths: []string{},
	}
}

// WithPageSize sets the page size as CSS lengths, for example "210mm"
func WithPageSize(width, height string) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// WithContainerSelector sets the selector of the element holding the pages
func WithContainerSelector(selector string) Option {
	return func(o *Options) {
		o.ContainerSelector = selector
	}
}

// WithPageClass sets the class marking page templates
func WithPageClass(class string) Option {
	return func(o *Options) {
		o.PageClass = class
	}
}

// WithCapacity fixes the page content height in px
func WithCapacity(px float64) Option {
	return func(o *Options) {
		o.Capacity = px
	}
}

// WithTolerance sets the slack in px allowed above capacity
func WithTolerance(px float64) Option {
	return func(o *Options) {
		o.Tolerance = px
	}
}

// WithOverflowPolicy sets the policy for blocks larger than a page
func WithOverflowPolicy(policy OverflowPolicy) Option {
	return func(o *Options) {
		o.Overflow = policy
	}
}

// WithInject sets the per-page enrichment hook
func WithInject(fn InjectFunc) Option {
	return func(o *Options) {
		o.Inject = fn
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithRenderBackgrounds toggles painting of backgrounds in PDF output
func WithRenderBackgrounds(on bool) Option {
	return func(o *Options) {
		o.RenderBackgrounds = on
	}
}

// WithRenderBorders toggles painting of borders in PDF output
func WithRenderBorders(on bool) Option {
	return func(o *Options) {
		o.RenderBorders = on
	}
}

// WithDebugDrawBoxes toggles debug outlines in PDF output
func WithDebugDrawBoxes(on bool) Option {
	return func(o *Options) {
		o.DebugDrawBoxes = on
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// Standard page sizes as CSS lengths
const (
	// A series
	PageSizeA3Width  = "297mm"
	PageSizeA3Height = "420mm"
	PageSizeA4Width  = "210mm"
	PageSizeA4Height = "297mm"
	PageSizeA5Width  = "148mm"
	PageSizeA5Height = "210mm"

	// US sizes
	PageSizeLetterWidth  = "8.5in"
	PageSizeLetterHeight = "11in"
	PageSizeLegalWidth   = "8.5in"
	PageSizeLegalHeight  = "14in"
)
