package preprocess

import (
	"strings"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/pkg/logger"
)

// PruneResult counts the rows removed for one pair.
type PruneResult struct {
	Pair    models.Pair `json:"pair" yaml:"pair"`
	Removed int         `json:"removed" yaml:"removed"`
}

// Prune removes rows in which both the date and the balance cell of a pair
// are empty. Pairs are applied in order, so rows removed for the first pair
// are no longer seen by the second.
func Prune(table *models.Table, pairs []models.Pair) (*models.Table, []PruneResult) {
	log := logger.WithComponent("pruner")
	out := table.Clone()
	results := make([]PruneResult, 0, len(pairs))

	for _, pair := range pairs {
		dateIdx, dateOK := out.ColumnIndex(pair.DateColumn)
		balanceIdx, balanceOK := out.ColumnIndex(pair.BalanceColumn)
		if !dateOK || !balanceOK {
			results = append(results, PruneResult{Pair: pair})
			continue
		}

		removed := out.Retain(func(_ int, row models.Row) bool {
			return !(isBlank(row[dateIdx]) && isBlankBalance(row[balanceIdx]))
		})
		results = append(results, PruneResult{Pair: pair, Removed: removed})

		if removed > 0 {
			log.WithFields(logger.Fields{
				"date_column":    pair.DateColumn,
				"balance_column": pair.BalanceColumn,
				"removed":        removed,
			}).Infof("Removed %d rows where both '%s' and '%s' were empty.", removed, pair.DateColumn, pair.BalanceColumn)
		}
	}

	return out, results
}

func isBlank(v models.Value) bool {
	return v.IsNull() || strings.TrimSpace(v.String()) == ""
}

func isBlankBalance(v models.Value) bool {
	return isBlank(v) || strings.TrimSpace(v.String()) == "nan"
}
