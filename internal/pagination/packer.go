package pagination

import (
	"fmt"

	"github.com/gompdf/gompage/internal/measure"
	"github.com/gompdf/gompage/internal/parser/html"
	"go.uber.org/zap"
)

// OverflowPolicy decides what happens to a block that does not fit on an
// empty page
type OverflowPolicy int

const (
	// OverflowError aborts the run with an *UnrepresentableError
	OverflowError OverflowPolicy = iota
	// OverflowPlace puts the block alone on its own page
	OverflowPlace
)

// ParseOverflowPolicy parses "error" or "place"
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "error":
		return OverflowError, nil
	case "place":
		return OverflowPlace, nil
	}
	return OverflowError, fmt.Errorf("unknown overflow policy %q", s)
}

func (p OverflowPolicy) String() string {
	if p == OverflowPlace {
		return "place"
	}
	return "error"
}

// Packer distributes the blocks of page templates over output pages. It
// holds no state between runs.
type Packer struct {
	log    *zap.Logger
	oracle measure.Oracle
	policy OverflowPolicy
}

// Option configures a Packer
type Option func(*Packer)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(p *Packer) {
		if log != nil {
			p.log = log.Named("packer")
		}
	}
}

// WithOverflowPolicy sets the policy for blocks larger than a page
func WithOverflowPolicy(policy OverflowPolicy) Option {
	return func(p *Packer) {
		p.policy = policy
	}
}

// NewPacker creates a packer asking oracle whether candidate pages fit
func NewPacker(oracle measure.Oracle, opts ...Option) *Packer {
	p := &Packer{
		log:    zap.NewNop(),
		oracle: oracle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Report is the outcome of a packing run
type Report struct {
	Pages     []*Page
	Overflows []Overflow
}

// PackAll packs every template in order and numbers the resulting pages.
// Tables are validated for all templates before anything is measured.
func (p *Packer) PackAll(templates []Template) (*Report, error) {
	for _, t := range templates {
		if err := validateTables(t); err != nil {
			return nil, err
		}
	}

	report := &Report{}
	for _, t := range templates {
		pages, err := p.Pack(t)
		if err != nil {
			return nil, err
		}
		report.Pages = append(report.Pages, pages...)
	}
	for i, pg := range report.Pages {
		pg.Index = i + 1
		if pg.Overflow != nil {
			report.Overflows = append(report.Overflows, *pg.Overflow)
		}
	}
	p.log.Debug("Packed document",
		zap.Int("templates", len(templates)),
		zap.Int("pages", len(report.Pages)),
		zap.Int("overflows", len(report.Overflows)))
	return report, nil
}

// Pack splits one template into pages with a single greedy pass. Blocks are
// moved out of the template into the pages.
func (p *Packer) Pack(t Template) ([]*Page, error) {
	if err := validateTables(t); err != nil {
		return nil, err
	}
	drafts, err := p.forShell(t.Shell).pack(t)
	if err != nil {
		return nil, err
	}
	pages := make([]*Page, 0, len(drafts))
	for _, d := range drafts {
		pages = append(pages, finalize(t.Shell, t.Index, d))
	}
	p.log.Debug("Packed page template",
		zap.Int("template", t.Index+1),
		zap.Int("blocks", len(t.Blocks)),
		zap.Int("pages", len(pages)))
	return pages, nil
}

// forShell returns a packer measuring inside shell when the oracle supports it
func (p *Packer) forShell(shell *html.Node) *Packer {
	so, ok := p.oracle.(measure.ShellOracle)
	if !ok || shell == nil {
		return p
	}
	q := *p
	q.oracle = so.ForShell(shell)
	return &q
}

func (p *Packer) pack(t Template) ([]draft, error) {
	switch {
	case len(t.Blocks) == 0:
		return []draft{{}}, nil
	case len(t.Blocks) == 1 && !isTable(t.Blocks[0]):
		return []draft{{blocks: t.Blocks}}, nil
	case len(t.Blocks) == 1:
		tbl, err := ParseTable(t.Blocks[0], t.Index+1)
		if err != nil {
			return nil, err
		}
		pages, tail, err := p.split(t.Index, nil, tbl)
		if err != nil {
			return nil, err
		}
		if len(tail) > 0 {
			pages = append(pages, draft{blocks: tail})
		}
		return pages, nil
	}

	var (
		pages []draft
		acc   []*html.Node
		err   error
	)
	// carried is set while acc holds a single block moved over from a full
	// page that has not been measured on its own yet
	carried := false

	for _, b := range t.Blocks {
		alone := len(acc) == 0
		ok, err := p.oracle.Fits(appendBlock(acc, b))
		if err != nil {
			return nil, err
		}
		if ok {
			acc = append(acc, b)
			carried = false
			continue
		}
		if carried {
			if acc, pages, err = p.settle(t.Index, acc, pages); err != nil {
				return nil, err
			}
			carried = false
		}

		switch {
		case isTable(b):
			tbl, err := ParseTable(b, t.Index+1)
			if err != nil {
				return nil, err
			}
			split, tail, err := p.split(t.Index, acc, tbl)
			if err != nil {
				return nil, err
			}
			pages = append(pages, split...)
			acc = tail
		case alone:
			d, err := p.overflow(t.Index, b, -1)
			if err != nil {
				return nil, err
			}
			pages = append(pages, d)
		default:
			if len(acc) > 0 {
				pages = append(pages, draft{blocks: acc})
			}
			acc = []*html.Node{b}
			carried = true
		}
	}

	if carried {
		if acc, pages, err = p.settle(t.Index, acc, pages); err != nil {
			return nil, err
		}
	}
	if len(acc) > 0 {
		pages = append(pages, draft{blocks: acc})
	}
	return pages, nil
}

// settle measures a block carried over to a fresh page on its own. A block
// that does not fit goes through the overflow policy and acc is emptied.
func (p *Packer) settle(template int, acc []*html.Node, pages []draft) ([]*html.Node, []draft, error) {
	ok, err := p.oracle.Fits(acc)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return acc, pages, nil
	}
	d, err := p.overflow(template, acc[0], -1)
	if err != nil {
		return nil, nil, err
	}
	return nil, append(pages, d), nil
}

// overflow applies the overflow policy to a block that does not fit alone
func (p *Packer) overflow(template int, block *html.Node, row int) (draft, error) {
	if p.policy != OverflowPlace {
		return draft{}, &UnrepresentableError{Template: template + 1, Tag: block.Tag(), Row: row}
	}
	o := &Overflow{Template: template + 1, Tag: block.Tag(), Row: row}
	p.log.Warn("Placing block larger than a page",
		zap.Int("template", o.Template),
		zap.String("tag", o.Tag),
		zap.Int("row", row))
	return draft{blocks: []*html.Node{block}, overflow: o}, nil
}

// appendBlock returns acc followed by b without touching acc's backing array
func appendBlock(acc []*html.Node, b ...*html.Node) []*html.Node {
	out := make([]*html.Node, 0, len(acc)+len(b))
	out = append(out, acc...)
	return append(out, b...)
}

func isTable(n *html.Node) bool {
	return n.IsElement("table")
}

func validateTables(t Template) error {
	for _, b := range t.Blocks {
		if isTable(b) {
			if _, err := ParseTable(b, t.Index+1); err != nil {
				return err
			}
		}
	}
	return nil
}
