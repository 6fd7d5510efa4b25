// Package validator cross-checks each date column against each balance
// column, row by row, and normalizes BS date strings to YYYY/MM/DD.
//
// For every (date, balance) pair and every row exactly one outcome applies,
// checked in this order:
//
//  1. both cells empty    -> general error
//  2. balance empty       -> balance error, date kept as written
//  3. date empty          -> date error
//  4. both present        -> date normalization, which may yield a date error
//
// Date normalization replaces '.' and '-' with '/', rejects day/month/year
// strings whose order cannot be told apart, parses year/month/day and checks
// each range independently, reporting every failing part.
package validator

import (
	"fmt"

	"golang-ledger-validator/internal/calendar"
)

// ErrorColumnPolicy decides what happens when a date or balance column
// takes part in more than one pair and its error column is written twice.
type ErrorColumnPolicy string

const (
	// PolicyOverwrite keeps only the messages of the last pair processed.
	PolicyOverwrite ErrorColumnPolicy = "overwrite"
	// PolicyMerge joins the messages of every pair with "; ".
	PolicyMerge ErrorColumnPolicy = "merge"
)

// IsValid checks if the policy is supported
func (p ErrorColumnPolicy) IsValid() bool {
	return p == PolicyOverwrite || p == PolicyMerge
}

// MinYear is the earliest accepted BS year.
const MinYear = 1900

// Config holds the settings for row validation
type Config struct {
	// Calendar supplies the latest acceptable year.
	Calendar calendar.Reference

	// MinYear is the earliest accepted year.
	MinYear int

	// AcceptTrailingYear reads dash or dot separated month-day-year values
	// such as 05-15-2080 as year/month/day. When false those values are
	// reported as ambiguous like their slash separated form.
	AcceptTrailingYear bool

	// ErrorColumns selects the repeated error column policy.
	ErrorColumns ErrorColumnPolicy
}

// DefaultConfig returns a configuration reading the year from the system clock
func DefaultConfig() *Config {
	return &Config{
		Calendar:           calendar.NewBS(),
		MinYear:            MinYear,
		AcceptTrailingYear: true,
		ErrorColumns:       PolicyOverwrite,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Calendar == nil {
		return fmt.Errorf("calendar reference is required")
	}
	if c.MinYear <= 0 {
		return fmt.Errorf("minimum year must be positive, got %d", c.MinYear)
	}
	if current := c.Calendar.CurrentYear(); current < c.MinYear {
		return fmt.Errorf("current year %d is before minimum year %d", current, c.MinYear)
	}
	if !c.ErrorColumns.IsValid() {
		return fmt.Errorf("invalid error column policy: %s", c.ErrorColumns)
	}
	return nil
}
