package matcher

import (
	"strings"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// Classification is the result of one pass over the column names.
type Classification struct {
	DateColumns     []string      `json:"date_columns" yaml:"date_columns"`
	BalanceColumns  []string      `json:"balance_columns" yaml:"balance_columns"`
	ValidationPairs []models.Pair `json:"validation_pairs" yaml:"validation_pairs"`
	PrunePairs      []models.Pair `json:"prune_pairs" yaml:"prune_pairs"`
}

// ColumnMatcher classifies columns using a MatchingConfig.
type ColumnMatcher struct {
	config *MatchingConfig
	logger logger.Logger
}

// NewColumnMatcher creates a new column matcher
func NewColumnMatcher(config *MatchingConfig) (*ColumnMatcher, error) {
	if config == nil {
		config = DefaultMatchingConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "matching", config.String(), err)
	}

	return &ColumnMatcher{
		config: config.Clone(),
		logger: logger.WithComponent("matcher"),
	}, nil
}

// Classify sorts column names into date and balance columns and derives
// both pairings. Columns keep their table order everywhere.
func (cm *ColumnMatcher) Classify(columns []string) *Classification {
	cls := &Classification{}

	for _, col := range columns {
		if cm.IsDateColumn(col) {
			cls.DateColumns = append(cls.DateColumns, col)
		}
		if cm.IsBalanceColumn(col) {
			cls.BalanceColumns = append(cls.BalanceColumns, col)
		}
	}

	for _, date := range cls.DateColumns {
		for _, balance := range cls.BalanceColumns {
			cls.ValidationPairs = append(cls.ValidationPairs, models.Pair{DateColumn: date, BalanceColumn: balance})
		}
	}

	cls.PrunePairs = cm.prunePairs(columns)

	cm.logger.WithFields(logger.Fields{
		"date_columns":     len(cls.DateColumns),
		"balance_columns":  len(cls.BalanceColumns),
		"validation_pairs": len(cls.ValidationPairs),
		"prune_pairs":      len(cls.PrunePairs),
	}).Debug("Classified columns")

	return cls
}

// IsDateColumn reports whether a column holds dates to be validated.
func (cm *ColumnMatcher) IsDateColumn(name string) bool {
	lower := strings.ToLower(name)
	if !containsAny(lower, cm.config.DateKeywords) {
		return false
	}
	for _, suffix := range cm.config.ExcludedSuffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return false
		}
	}
	return true
}

// IsBalanceColumn reports whether a column holds balances or amounts.
func (cm *ColumnMatcher) IsBalanceColumn(name string) bool {
	return containsAny(strings.ToLower(name), cm.config.BalanceKeywords)
}

// prunePairs picks, for each column whose name contains a date keyword, the
// first column matching the highest-priority prune keyword. The suffix
// exclusion does not apply here.
func (cm *ColumnMatcher) prunePairs(columns []string) []models.Pair {
	var pairs []models.Pair

	for _, col := range columns {
		if !containsAny(strings.ToLower(col), cm.config.DateKeywords) {
			continue
		}
		for _, keyword := range cm.config.PruneKeywords {
			if balance, ok := firstContaining(columns, keyword); ok {
				pairs = append(pairs, models.Pair{DateColumn: col, BalanceColumn: balance})
				break
			}
		}
	}

	return pairs
}

func firstContaining(columns []string, keyword string) (string, bool) {
	keyword = strings.ToLower(keyword)
	for _, col := range columns {
		if strings.Contains(strings.ToLower(col), keyword) {
			return col, true
		}
	}
	return "", false
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
