// Package gompage splits the page templates of an HTML document into
// page-sized pages for print or PDF export.
package gompage

import (
	"github.com/gompdf/gompage/pkg/api"
)

type Paginator = api.Paginator
type Result = api.Result
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation
type PageInfo = api.PageInfo
type InjectFunc = api.InjectFunc
type OverflowPolicy = api.OverflowPolicy
type Page = api.Page
type Overflow = api.Overflow
type UnrepresentableError = api.UnrepresentableError
type MalformedTableError = api.MalformedTableError

func New(opts ...Option) *Paginator            { return api.New(opts...) }
func NewWithOptions(options Options) *Paginator { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	WithPageSize          = api.WithPageSize
	WithPageSizeA4        = api.WithPageSizeA4
	WithPageSizeLetter    = api.WithPageSizeLetter
	WithPageSizeLegal     = api.WithPageSizeLegal
	WithPageOrientation   = api.WithPageOrientation
	WithContainerSelector = api.WithContainerSelector
	WithPageClass         = api.WithPageClass
	WithCapacity          = api.WithCapacity
	WithTolerance         = api.WithTolerance
	WithOverflowPolicy    = api.WithOverflowPolicy
	WithInject            = api.WithInject
	WithLogger            = api.WithLogger
	WithResourcePath      = api.WithResourcePath
	WithRenderBackgrounds = api.WithRenderBackgrounds
	WithRenderBorders     = api.WithRenderBorders
	WithDebugDrawBoxes    = api.WithDebugDrawBoxes
	WithTitle             = api.WithTitle
	WithAuthor            = api.WithAuthor
	WithSubject           = api.WithSubject
	WithKeywords          = api.WithKeywords
)

var (
	ErrNoContainer     = api.ErrNoContainer
	ErrNoPageTemplates = api.ErrNoPageTemplates
	ErrInvalidPageSize = api.ErrInvalidPageSize
	ErrUnrepresentable = api.ErrUnrepresentable
	ErrMalformedTable  = api.ErrMalformedTable
)

const (
	PageSizeA3Width  = api.PageSizeA3Width
	PageSizeA3Height = api.PageSizeA3Height
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight

	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape

	OverflowError = api.OverflowError
	OverflowPlace = api.OverflowPlace
)
