package text

import (
	"errors"
	"fmt"
	"sync"

	"codeberg.org/go-pdf/fpdf"
)

// ErrMetrics is returned when font metrics are unavailable
var ErrMetrics = errors.New("text metrics unavailable")

// Measurer computes string widths from core PDF font metrics. It is safe for
// concurrent use.
type Measurer struct {
	mu        sync.Mutex
	pdf       *fpdf.Fpdf
	translate func(string) string
}

var (
	sharedOnce sync.Once
	shared     *Measurer
)

// Shared returns the process-wide measurer
func Shared() *Measurer {
	sharedOnce.Do(func() { shared = NewMeasurer() })
	return shared
}

// NewMeasurer creates a measurer backed by its own fpdf instance. The unit is
// points, so a font set to N points measures like a font of N px.
func NewMeasurer() *Measurer {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	return &Measurer{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// Width returns the advance width of s in px
func (m *Measurer) Width(s string, f Font) (float64, error) {
	if s == "" || f.Size <= 0 {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pdf.SetFont(f.Family, f.Style, f.Size)
	w := m.pdf.GetStringWidth(m.translate(s))
	if err := m.pdf.Error(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMetrics, err)
	}
	return w, nil
}

