// Package matcher classifies ledger columns by name and pairs date columns
// with balance columns.
//
// Classification is a single pass over the column names of the normalized
// table. Its result is reused by every later stage, so error columns added
// during validation never feed back into pairing.
//
// Two pairings are produced:
//  1. Validation pairs: the full cross product of date columns and balance
//     columns, in table order. Every pair is validated row by row.
//  2. Prune pairs: at most one per date column, the first column matching a
//     prune keyword, trying keywords in priority order.
//
// Example usage:
//
//	m, err := matcher.NewColumnMatcher(matcher.DefaultMatchingConfig())
//	cls := m.Classify(table.Columns())
//	for _, pair := range cls.ValidationPairs {
//		...
//	}
package matcher

import (
	"fmt"
	"strings"
)

// MatchingConfig holds the name heuristics used to classify columns.
// Keywords are matched case-insensitively as substrings.
type MatchingConfig struct {
	// DateKeywords mark a column as a date column.
	DateKeywords []string `json:"date_keywords"`

	// ExcludedSuffixes keep derived columns, such as earlier error columns,
	// out of the date set.
	ExcludedSuffixes []string `json:"excluded_suffixes"`

	// BalanceKeywords mark a column as a balance column. Any one match counts.
	BalanceKeywords []string `json:"balance_keywords"`

	// PruneKeywords are tried in order to pick one balance column per date
	// column for empty-row pruning.
	PruneKeywords []string `json:"prune_keywords"`
}

// DefaultMatchingConfig returns the heuristics the validator ships with
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		DateKeywords:     []string{"date"},
		ExcludedSuffixes: []string{"errors"},
		BalanceKeywords:  []string{"balance", "amount", "closing"},
		PruneKeywords:    []string{"balance", "amount"},
	}
}

// Validate validates the matching configuration
func (mc *MatchingConfig) Validate() error {
	if len(mc.DateKeywords) == 0 {
		return fmt.Errorf("at least one date keyword is required")
	}
	if len(mc.BalanceKeywords) == 0 {
		return fmt.Errorf("at least one balance keyword is required")
	}

	for name, list := range map[string][]string{
		"date keyword":    mc.DateKeywords,
		"excluded suffix": mc.ExcludedSuffixes,
		"balance keyword": mc.BalanceKeywords,
		"prune keyword":   mc.PruneKeywords,
	} {
		for _, k := range list {
			if strings.TrimSpace(k) == "" {
				return fmt.Errorf("%s cannot be empty", name)
			}
		}
	}

	return nil
}

// Clone creates a deep copy of the matching configuration
func (mc *MatchingConfig) Clone() *MatchingConfig {
	return &MatchingConfig{
		DateKeywords:     append([]string(nil), mc.DateKeywords...),
		ExcludedSuffixes: append([]string(nil), mc.ExcludedSuffixes...),
		BalanceKeywords:  append([]string(nil), mc.BalanceKeywords...),
		PruneKeywords:    append([]string(nil), mc.PruneKeywords...),
	}
}

// String returns a string representation of the configuration
func (mc *MatchingConfig) String() string {
	return fmt.Sprintf("MatchingConfig{Date: %v, Excluded: %v, Balance: %v, Prune: %v}",
		mc.DateKeywords, mc.ExcludedSuffixes, mc.BalanceKeywords, mc.PruneKeywords)
}
