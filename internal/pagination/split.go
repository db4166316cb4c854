package pagination

import (
	"github.com/gompdf/gompage/internal/parser/html"
	"go.uber.org/zap"
)

// SplitTable distributes the rows of table over pages, the first of which
// starts with preceding. The header (and footer) is repeated on every page
// that receives rows. The caller has established that preceding fits on its
// own but not together with the whole table.
func (p *Packer) SplitTable(shell *html.Node, template int, preceding []*html.Node, table *html.Node) ([]*Page, error) {
	tbl, err := ParseTable(table, template+1)
	if err != nil {
		return nil, err
	}
	drafts, tail, err := p.forShell(shell).split(template, preceding, tbl)
	if err != nil {
		return nil, err
	}
	if len(tail) > 0 {
		drafts = append(drafts, draft{blocks: tail})
	}
	pages := make([]*Page, 0, len(drafts))
	for _, d := range drafts {
		pages = append(pages, finalize(shell, template, d))
	}
	return pages, nil
}

// split returns the completed pages and the blocks of the last, still open
// page, which the caller may keep filling
func (p *Packer) split(template int, preceding []*html.Node, tbl *Table) ([]draft, []*html.Node, error) {
	var pages []draft
	fresh := fragment{table: tbl}
	frag := fresh
	current := preceding

	if len(tbl.Rows) == 0 {
		if len(current) > 0 {
			pages = append(pages, draft{blocks: current})
		}
		ok, err := p.oracle.Fits([]*html.Node{frag.candidate()})
		if err != nil {
			return nil, nil, err
		}
		if ok {
			return pages, []*html.Node{frag.materialize()}, nil
		}
		d, err := p.overflow(template, frag.materialize(), -1)
		if err != nil {
			return nil, nil, err
		}
		return append(pages, d), nil, nil
	}

	// carried is the index of the row moved over to a fresh page that has
	// not been measured with the header alone yet, or -1
	carried := -1

	for i, row := range tbl.Rows {
		alone := len(frag.rows) == 0 && len(current) == 0
		next := frag.with(row)
		ok, err := p.oracle.Fits(appendBlock(current, next.candidate()))
		if err != nil {
			return nil, nil, err
		}
		if ok {
			frag = next
			carried = -1
			continue
		}
		if carried >= 0 {
			if frag, pages, err = p.settleRow(template, carried, frag, pages); err != nil {
				return nil, nil, err
			}
			carried = -1
		}

		switch {
		case len(frag.rows) > 0:
			pages = append(pages, draft{blocks: appendBlock(current, frag.materialize())})
		case len(current) > 0:
			pages = append(pages, draft{blocks: current})
		case alone:
			// a bare header and this row failed on an empty page
			d, err := p.overflow(template, next.materialize(), i)
			if err != nil {
				return nil, nil, err
			}
			pages = append(pages, d)
			frag = fresh
			continue
		}
		current = nil
		frag = fresh.with(row)
		carried = i
	}

	if carried >= 0 {
		var err error
		if frag, pages, err = p.settleRow(template, carried, frag, pages); err != nil {
			return nil, nil, err
		}
	}

	p.log.Debug("Split table",
		zap.Int("template", template+1),
		zap.Int("rows", len(tbl.Rows)),
		zap.Int("pages", len(pages)+1))

	if len(frag.rows) == 0 {
		return pages, current, nil
	}
	return pages, appendBlock(current, frag.materialize()), nil
}

// settleRow measures a fragment holding only the carried row. A row that does
// not fit with its header goes through the overflow policy and an empty
// fragment is returned.
func (p *Packer) settleRow(template, row int, frag fragment, pages []draft) (fragment, []draft, error) {
	ok, err := p.oracle.Fits([]*html.Node{frag.candidate()})
	if err != nil {
		return fragment{}, nil, err
	}
	if ok {
		return frag, pages, nil
	}
	d, err := p.overflow(template, frag.materialize(), row)
	if err != nil {
		return fragment{}, nil, err
	}
	return fragment{table: frag.table}, append(pages, d), nil
}
