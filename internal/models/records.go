package models

import "fmt"

// Pair links a date column with the balance column it is checked against.
type Pair struct {
	DateColumn    string `json:"date_column" yaml:"date_column"`
	BalanceColumn string `json:"balance_column" yaml:"balance_column"`
}

// String returns the "<date> & <balance>" label used in reports.
func (p Pair) String() string {
	return fmt.Sprintf("%s & %s", p.DateColumn, p.BalanceColumn)
}

// DateErrorColumn is the column receiving date errors for this pair.
func (p Pair) DateErrorColumn() string {
	return ErrorColumnFor(p.DateColumn)
}

// BalanceErrorColumn is the column receiving balance errors for this pair.
func (p Pair) BalanceErrorColumn() string {
	return ErrorColumnFor(p.BalanceColumn)
}

// GeneralErrorColumn is the column receiving errors that concern both cells.
func (p Pair) GeneralErrorColumn() string {
	return fmt.Sprintf("General Errors (%s & %s)", p.DateColumn, p.BalanceColumn)
}

// ErrorColumnFor names the error column attached to a source column.
func ErrorColumnFor(column string) string {
	return column + " Errors"
}

// ErrorKind is one of the three per-row error slots.
type ErrorKind string

const (
	ErrorKindDate    ErrorKind = "date"
	ErrorKindBalance ErrorKind = "balance"
	ErrorKindGeneral ErrorKind = "general"
)

// ErrorRecord is one reported problem. Row is the display row number: the
// zero-based data position plus two, which accounts for the header row and
// matches spreadsheet row numbering.
type ErrorRecord struct {
	Row     int    `json:"row" yaml:"row"`
	Message string `json:"message" yaml:"message"`
}

// DisplayRow converts a zero-based data position into a display row number.
func DisplayRow(position int) int {
	return position + 2
}

// IDMismatch is one identifier that differed from its expected serial value.
// Position is one-based.
type IDMismatch struct {
	Position int   `json:"position" yaml:"position"`
	Expected int64 `json:"expected" yaml:"expected"`
	Actual   int64 `json:"actual" yaml:"actual"`
}

// String returns the line used in the resequencing notice.
func (m IDMismatch) String() string {
	return fmt.Sprintf("Row %d: expected %d, found %d", m.Position, m.Expected, m.Actual)
}
