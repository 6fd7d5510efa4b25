package models

import "fmt"

// ErrorGroup is the list of records collected under one aggregation key: a
// date column, a balance column, or a pair for general errors.
type ErrorGroup struct {
	Kind    ErrorKind     `json:"kind" yaml:"kind"`
	Column  string        `json:"column,omitempty" yaml:"column,omitempty"`
	Pair    *Pair         `json:"pair,omitempty" yaml:"pair,omitempty"`
	Records []ErrorRecord `json:"records" yaml:"records"`
}

// Label returns the line prefix used in the summary text.
func (g ErrorGroup) Label() string {
	switch g.Kind {
	case ErrorKindDate:
		return fmt.Sprintf("%s (Date Errors)", g.Column)
	case ErrorKindBalance:
		return fmt.Sprintf("%s (Balance Errors)", g.Column)
	default:
		return fmt.Sprintf("%s (General Errors)", g.Pair.String())
	}
}

// SourceColumn is the data column the records point at. General errors
// concern the whole row and have none.
func (g ErrorGroup) SourceColumn() string {
	if g.Kind == ErrorKindGeneral {
		return ""
	}
	return g.Column
}

// ErrorColumn is the column holding the messages of this group.
func (g ErrorGroup) ErrorColumn() string {
	if g.Kind == ErrorKindGeneral {
		return g.Pair.GeneralErrorColumn()
	}
	return ErrorColumnFor(g.Column)
}

// Summary is the aggregated result of a validation run. Each slice keeps the
// order in which its keys were first seen.
type Summary struct {
	DateErrors    []ErrorGroup `json:"date_errors" yaml:"date_errors"`
	BalanceErrors []ErrorGroup `json:"balance_errors" yaml:"balance_errors"`
	GeneralErrors []ErrorGroup `json:"general_errors" yaml:"general_errors"`
}

// Groups returns every group: date keys, then balance keys, then pairs.
func (s *Summary) Groups() []ErrorGroup {
	groups := make([]ErrorGroup, 0, len(s.DateErrors)+len(s.BalanceErrors)+len(s.GeneralErrors))
	groups = append(groups, s.DateErrors...)
	groups = append(groups, s.BalanceErrors...)
	return append(groups, s.GeneralErrors...)
}

// Total returns the number of records across all groups.
func (s *Summary) Total() int {
	total := 0
	for _, g := range s.Groups() {
		total += len(g.Records)
	}
	return total
}

// Clean reports whether no records were collected.
func (s *Summary) Clean() bool {
	return s.Total() == 0
}
