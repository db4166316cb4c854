package measure

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gompdf/gompage/internal/layout"
	"github.com/gompdf/gompage/internal/parser/html"
	"go.uber.org/zap"
)

// DefaultTolerance absorbs floating point noise in the fit comparison
const DefaultTolerance = 1e-6

// ErrMeasurement is returned when a candidate set cannot be measured
var ErrMeasurement = errors.New("measurement failed")

// Oracle answers whether an ordered set of blocks fits within one page.
// Answers must not change during a pagination run.
type Oracle interface {
	Fits(blocks []*html.Node) (bool, error)
}

// ShellOracle is an Oracle that can measure inside a given page template, so
// styles scoped to that template apply to the candidates
type ShellOracle interface {
	Oracle
	ForShell(shell *html.Node) Oracle
}

// OracleFunc adapts a function to the Oracle interface
type OracleFunc func(blocks []*html.Node) (bool, error)

// Fits calls f(blocks)
func (f OracleFunc) Fits(blocks []*html.Node) (bool, error) {
	return f(blocks)
}

// HeightFunc returns the rendered height of a candidate set in px
type HeightFunc func(blocks []*html.Node) (float64, error)

// Capped builds an oracle from a height function, a capacity and a tolerance
func Capped(height HeightFunc, capacity, tolerance float64) Oracle {
	return OracleFunc(func(blocks []*html.Node) (bool, error) {
		h, err := height(blocks)
		if err != nil {
			return false, err
		}
		return h <= capacity+tolerance, nil
	})
}

// LayoutOracle measures candidates by laying out clones of them in a
// workspace under the document container. One measurement runs at a time,
// across all views returned by ForShell.
type LayoutOracle struct {
	log       *zap.Logger
	engine    *layout.Engine
	container *html.Node
	shell     *html.Node
	width     float64
	capacity  float64
	tolerance float64
	stats     *oracleStats
}

// oracleStats is shared by an oracle and its shell views
type oracleStats struct {
	mu    sync.Mutex
	calls int
}

// OracleOption configures a LayoutOracle
type OracleOption func(*LayoutOracle)

// WithTolerance sets the slack allowed above capacity
func WithTolerance(t float64) OracleOption {
	return func(o *LayoutOracle) {
		if t >= 0 {
			o.tolerance = t
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) OracleOption {
	return func(o *LayoutOracle) {
		if log != nil {
			o.log = log.Named("oracle")
		}
	}
}

// NewLayoutOracle creates an oracle measuring at the given content width
// against capacity
func NewLayoutOracle(engine *layout.Engine, container *html.Node, width, capacity float64, opts ...OracleOption) *LayoutOracle {
	o := &LayoutOracle{
		log:       zap.NewNop(),
		engine:    engine,
		container: container,
		width:     width,
		capacity:  capacity,
		tolerance: DefaultTolerance,
		stats:     &oracleStats{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ForShell returns a view of o measuring inside a clone of shell. The view
// shares the workspace lock and the call count with o.
func (o *LayoutOracle) ForShell(shell *html.Node) Oracle {
	v := *o
	v.shell = shell
	return &v
}

// Fits reports whether blocks, stacked in order, fit within the capacity
func (o *LayoutOracle) Fits(blocks []*html.Node) (bool, error) {
	h, err := o.Height(blocks)
	if err != nil {
		return false, err
	}
	fits := h <= o.capacity+o.tolerance
	o.log.Debug("Measured candidate",
		zap.Int("blocks", len(blocks)),
		zap.Float64("height", h),
		zap.Float64("capacity", o.capacity),
		zap.Bool("fits", fits))
	return fits, nil
}

// Height lays out clones of blocks and returns their stacked height in px
func (o *LayoutOracle) Height(blocks []*html.Node) (float64, error) {
	o.stats.mu.Lock()
	defer o.stats.mu.Unlock()
	o.stats.calls++

	ws, err := Acquire(o.container, o.shell, o.width)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMeasurement, err)
	}
	defer ws.Release()

	if err := ws.Add(blocks); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMeasurement, err)
	}
	box, err := o.engine.Layout(ws.Node(), 0, 0, o.width)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMeasurement, err)
	}
	return box.FlowExtent(), nil
}

// Calls returns the number of measurements made
func (o *LayoutOracle) Calls() int {
	o.stats.mu.Lock()
	defer o.stats.mu.Unlock()
	return o.stats.calls
}

// Capacity returns the page content height in px
func (o *LayoutOracle) Capacity() float64 {
	return o.capacity
}
