package pagination

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrepresentable is returned when a single block or table row does
	// not fit on an otherwise empty page
	ErrUnrepresentable = errors.New("block does not fit on a page")
	// ErrMalformedTable is returned for a table without a header or body section
	ErrMalformedTable = errors.New("malformed table")
)

// UnrepresentableError describes a block that cannot be placed on any page
type UnrepresentableError struct {
	// Template is the 1-based position of the page template
	Template int
	// Tag is the tag name of the block
	Tag string
	// Row is the 0-based body row of a table, or -1 for other blocks
	Row int
}

func (e *UnrepresentableError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("page template %d: row %d of <%s> with its header: %v", e.Template, e.Row, e.Tag, ErrUnrepresentable)
	}
	return fmt.Sprintf("page template %d: <%s>: %v", e.Template, e.Tag, ErrUnrepresentable)
}

func (e *UnrepresentableError) Unwrap() error { return ErrUnrepresentable }

// MalformedTableError describes a table that cannot be split
type MalformedTableError struct {
	// Template is the 1-based position of the page template
	Template int
	// Reason names the structural problem
	Reason string
}

func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("page template %d: %v: %s", e.Template, ErrMalformedTable, e.Reason)
}

func (e *MalformedTableError) Unwrap() error { return ErrMalformedTable }
