// Package annotate marks cells of a written table so problems stand out when
// the file is opened.
//
// Two highlight kinds exist. ErrorPrimary marks the data that is wrong: the
// date or balance cell of a record, or the whole row for a general error.
// ErrorSecondary marks the error-column cell that explains it. A Plan lists
// every mark for a run; Apply sends all primary marks before any secondary
// mark so an explanation cell is never repainted by its own row.
//
// Rows and columns are 1-based spreadsheet coordinates: row 1 is the header.
package annotate

import (
	"fmt"

	"golang-ledger-validator/internal/models"
)

// Kind is a semantic highlight.
type Kind int

const (
	ErrorPrimary Kind = iota
	ErrorSecondary
)

func (k Kind) String() string {
	switch k {
	case ErrorPrimary:
		return "error_primary"
	case ErrorSecondary:
		return "error_secondary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Annotator marks single cells of one output destination. Close keeps the
// marks, Discard releases the destination unchanged.
type Annotator interface {
	Mark(row, column int, kind Kind) error
	Close() error
	Discard() error
}

// MarkRow marks every cell of a row, one call per column.
func MarkRow(a Annotator, row, columns int, kind Kind) error {
	for col := 1; col <= columns; col++ {
		if err := a.Mark(row, col, kind); err != nil {
			return err
		}
	}
	return nil
}

// Mark is one planned highlight. Column 0 means the whole row.
type Mark struct {
	Row    int
	Column int
	Kind   Kind
}

// Plan is the ordered list of marks for one table.
type Plan struct {
	Columns int
	Marks   []Mark
}

// BuildPlan derives the marks for a validated table from its summary.
// Date and balance records mark their source cell and their error cell.
// General records mark the whole row and their error cell.
func BuildPlan(columns []string, summary *models.Summary) (*Plan, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i + 1
	}
	lookup := func(name string) (int, error) {
		col, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("column %q not in output table", name)
		}
		return col, nil
	}

	var primary, secondary []Mark
	for _, group := range summary.Groups() {
		if len(group.Records) == 0 {
			continue
		}

		errCol, err := lookup(group.ErrorColumn())
		if err != nil {
			return nil, err
		}
		srcCol := 0
		if src := group.SourceColumn(); src != "" {
			if srcCol, err = lookup(src); err != nil {
				return nil, err
			}
		}

		for _, rec := range group.Records {
			primary = append(primary, Mark{Row: rec.Row, Column: srcCol, Kind: ErrorPrimary})
			secondary = append(secondary, Mark{Row: rec.Row, Column: errCol, Kind: ErrorSecondary})
		}
	}

	return &Plan{
		Columns: len(columns),
		Marks:   append(primary, secondary...),
	}, nil
}

// Apply sends every mark of the plan to a.
func (p *Plan) Apply(a Annotator) error {
	for _, m := range p.Marks {
		var err error
		if m.Column == 0 {
			err = MarkRow(a, m.Row, p.Columns, m.Kind)
		} else {
			err = a.Mark(m.Row, m.Column, m.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Recorder keeps every mark in memory.
type Recorder struct {
	Marks     []Mark
	Closed    bool
	Discarded bool
}

func (r *Recorder) Mark(row, column int, kind Kind) error {
	r.Marks = append(r.Marks, Mark{Row: row, Column: column, Kind: kind})
	return nil
}

func (r *Recorder) Close() error {
	r.Closed = true
	return nil
}

func (r *Recorder) Discard() error {
	r.Discarded = true
	return nil
}

// KindAt returns the last kind recorded for a cell.
func (r *Recorder) KindAt(row, column int) (Kind, bool) {
	for i := len(r.Marks) - 1; i >= 0; i-- {
		if m := r.Marks[i]; m.Row == row && m.Column == column {
			return m.Kind, true
		}
	}
	return 0, false
}

// Noop discards marks, for formats that cannot carry cell styles.
type Noop struct{}

func (Noop) Mark(int, int, Kind) error { return nil }

func (Noop) Close() error { return nil }

func (Noop) Discard() error { return nil }
