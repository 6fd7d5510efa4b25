// Package preprocess holds the table stages that run before column pairing:
// whitespace normalization, identifier resequencing and empty-row pruning.
//
// Every stage takes a table and returns a new one; the input is never
// modified.
package preprocess

import (
	"strings"

	"golang-ledger-validator/internal/models"
)

// Normalize trims surrounding whitespace from every column name and every
// textual cell. Numbers and absent cells are left as they are. Running it on
// an already normalized table returns an equal table.
func Normalize(table *models.Table) (*models.Table, error) {
	out := table.Clone()

	if err := out.RenameColumns(strings.TrimSpace); err != nil {
		return nil, err
	}

	out.MapValues(func(v models.Value) models.Value {
		if v.IsText() {
			return models.Text(strings.TrimSpace(v.Str))
		}
		return v
	})

	return out, nil
}
