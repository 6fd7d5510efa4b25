// Package models defines the in-memory ledger table and the records the
// validation pipeline produces from it.
//
// A Table is an ordered list of rows over a fixed, ordered column set. Cell
// values are absent, text, or a decimal number. Pipeline stages treat tables
// as values: each stage clones its input and returns the modified copy, so
// ordering effects between stages stay visible in tests.
package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValueKind identifies what a cell holds.
type ValueKind int

const (
	// KindNull is an absent cell.
	KindNull ValueKind = iota
	// KindString is a textual cell.
	KindString
	// KindNumber is a numeric cell.
	KindNumber
)

// String returns the string representation of ValueKind
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is a single table cell.
type Value struct {
	Kind ValueKind
	Str  string
	Num  decimal.Decimal
}

// Null returns an absent cell.
func Null() Value {
	return Value{Kind: KindNull}
}

// Text returns a textual cell.
func Text(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Number returns a numeric cell.
func Number(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: d}
}

// Int returns a numeric cell holding a whole number.
func Int(i int64) Value {
	return Number(decimal.NewFromInt(i))
}

// IsNull reports whether the cell is absent.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// IsText reports whether the cell holds text.
func (v Value) IsText() bool {
	return v.Kind == KindString
}

// String renders the cell the way it would appear as text. Absent cells
// render as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num.String()
	default:
		return ""
	}
}

// Equal compares two cells by kind and content.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindNumber:
		return v.Num.Equal(other.Num)
	default:
		return true
	}
}

// Row holds one value per table column, in column order.
type Row []Value

// Table is an ordered set of rows sharing one ordered column set.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// NewTable builds a table. Column names must be unique. Short rows are padded
// with absent cells; rows longer than the header are rejected.
func NewTable(columns []string, rows []Row) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		index[name] = i
	}

	t := &Table{
		columns: append([]string(nil), columns...),
		index:   index,
		rows:    make([]Row, 0, len(rows)),
	}

	for i, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("row %d has %d cells but the table has %d columns", i, len(row), len(columns))
		}
		padded := make(Row, len(columns))
		copy(padded, row)
		for j := len(row); j < len(columns); j++ {
			padded[j] = Null()
		}
		t.rows = append(t.rows, padded)
	}

	return t, nil
}

// MustTable is NewTable for literals known to be valid.
func MustTable(columns []string, rows ...Row) *Table {
	t, err := NewTable(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// ColumnIndex returns the zero-based position of a column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns a copy of the row at position i.
func (t *Table) Row(i int) Row {
	return append(Row(nil), t.rows[i]...)
}

// Cell returns the value at row i of the named column. Unknown columns read
// as absent.
func (t *Table) Cell(i int, column string) Value {
	j, ok := t.index[column]
	if !ok {
		return Null()
	}
	return t.rows[i][j]
}

// Column returns every value of the named column in row order.
func (t *Table) Column(name string) ([]Value, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	values := make([]Value, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[j]
	}
	return values, nil
}

// SetColumn replaces the values of the named column, appending the column at
// the end when it does not exist yet. An existing column keeps its position.
func (t *Table) SetColumn(name string, values []Value) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values but the table has %d rows", name, len(values), len(t.rows))
	}

	j, ok := t.index[name]
	if !ok {
		j = len(t.columns)
		t.columns = append(t.columns, name)
		t.index[name] = j
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], Null())
		}
	}

	for i := range t.rows {
		t.rows[i][j] = values[i]
	}
	return nil
}

// RenameColumns applies fn to every column name. Renames that would make two
// columns share a name are rejected and leave the table unchanged.
func (t *Table) RenameColumns(fn func(string) string) error {
	renamed := make([]string, len(t.columns))
	index := make(map[string]int, len(t.columns))
	for i, name := range t.columns {
		renamed[i] = fn(name)
		if _, dup := index[renamed[i]]; dup {
			return fmt.Errorf("renaming %q would duplicate column %q", name, renamed[i])
		}
		index[renamed[i]] = i
	}
	t.columns = renamed
	t.index = index
	return nil
}

// MapValues replaces every cell with fn(cell).
func (t *Table) MapValues(fn func(Value) Value) {
	for _, row := range t.rows {
		for j := range row {
			row[j] = fn(row[j])
		}
	}
}

// Retain keeps the rows for which keep returns true, preserving order, and
// returns how many rows were removed.
func (t *Table) Retain(keep func(i int, row Row) bool) int {
	kept := t.rows[:0:0]
	for i, row := range t.rows {
		if keep(i, row) {
			kept = append(kept, row)
		}
	}
	removed := len(t.rows) - len(kept)
	t.rows = kept
	return removed
}

// Clone returns a copy that shares nothing mutable with t.
func (t *Table) Clone() *Table {
	clone := &Table{
		columns: append([]string(nil), t.columns...),
		index:   make(map[string]int, len(t.index)),
		rows:    make([]Row, len(t.rows)),
	}
	for k, v := range t.index {
		clone.index[k] = v
	}
	for i, row := range t.rows {
		clone.rows[i] = append(Row(nil), row...)
	}
	return clone
}

// Equal reports whether two tables have the same columns and cells.
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.columns) != len(other.columns) || len(t.rows) != len(other.rows) {
		return false
	}
	for i := range t.columns {
		if t.columns[i] != other.columns[i] {
			return false
		}
	}
	for i := range t.rows {
		for j := range t.rows[i] {
			if !t.rows[i][j].Equal(other.rows[i][j]) {
				return false
			}
		}
	}
	return true
}

// String renders a compact, human-readable dump used in test failures.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.columns, " | "))
	for _, row := range t.rows {
		b.WriteString("\n")
		cells := make([]string, len(row))
		for j, v := range row {
			if v.IsNull() {
				cells[j] = "<null>"
			} else {
				cells[j] = v.String()
			}
		}
		b.WriteString(strings.Join(cells, " | "))
	}
	return b.String()
}
