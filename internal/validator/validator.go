package validator

import (
	"strings"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// RowOutcome is the result of checking one row of one pair. At most one of
// the three error messages is set.
type RowOutcome struct {
	Date         string
	DateError    string
	BalanceError string
	GeneralError string
}

// PairResult holds the errors found for one (date, balance) pair, in row
// order, with display row numbers.
type PairResult struct {
	Pair          models.Pair          `json:"pair" yaml:"pair"`
	DateErrors    []models.ErrorRecord `json:"date_errors" yaml:"date_errors"`
	BalanceErrors []models.ErrorRecord `json:"balance_errors" yaml:"balance_errors"`
	GeneralErrors []models.ErrorRecord `json:"general_errors" yaml:"general_errors"`
}

// Total returns the number of errors in the result
func (r *PairResult) Total() int {
	return len(r.DateErrors) + len(r.BalanceErrors) + len(r.GeneralErrors)
}

// Validator checks date/balance pairs and writes the outcome back into the
// table.
type Validator struct {
	config *Config
	dates  *DateNormalizer
	logger logger.Logger
}

// NewValidator creates a validator. The current year is read once, so a run
// that spans the BS new year uses a single upper bound.
func NewValidator(config *Config) (*Validator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "validator", config.ErrorColumns, err)
	}

	current := config.Calendar.CurrentYear()
	return &Validator{
		config: config,
		dates:  NewDateNormalizer(config.MinYear, current, config.AcceptTrailingYear),
		logger: logger.WithComponent("validator").WithField("current_year", current),
	}, nil
}

// CheckRow applies the per-row decision to one date cell and one balance
// cell.
func (v *Validator) CheckRow(date, balance models.Value, pair models.Pair) RowOutcome {
	val := ""
	if !date.IsNull() {
		val = strings.TrimSpace(date.String())
	}
	hasDate := val != "" && strings.ToLower(val) != "nan"
	hasBalance := balancePresent(balance)

	switch {
	case !hasDate && !hasBalance:
		return RowOutcome{
			GeneralError: "Date and Balance missing for '" + pair.DateColumn + "' and '" + pair.BalanceColumn + "'",
		}
	case !hasBalance:
		return RowOutcome{
			Date:         val,
			BalanceError: "Balance missing for '" + pair.BalanceColumn + "'",
		}
	case !hasDate:
		return RowOutcome{
			DateError: "Date missing for '" + pair.DateColumn + "'",
		}
	}

	res := v.dates.Normalize(val)
	return RowOutcome{Date: res.Value, DateError: res.Error}
}

func balancePresent(v models.Value) bool {
	if v.IsNull() {
		return false
	}
	switch strings.TrimSpace(v.String()) {
	case "", "nan", "NaN":
		return false
	}
	return true
}

// ValidateAll validates every pair in order on a copy of table. Each pair
// sees the date values written back by the pairs before it.
func (v *Validator) ValidateAll(table *models.Table, pairs []models.Pair) (*models.Table, []*PairResult, error) {
	out := table.Clone()
	written := make(map[string]bool)
	results := make([]*PairResult, 0, len(pairs))

	for _, pair := range pairs {
		result, err := v.validatePair(out, pair, written)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, result)
	}

	return out, results, nil
}

func (v *Validator) validatePair(t *models.Table, pair models.Pair, written map[string]bool) (*PairResult, error) {
	dates, err := t.Column(pair.DateColumn)
	if err != nil {
		return nil, errors.ParseError(errors.CodeMissingColumn, "input table", pair.DateColumn, err)
	}
	balances, err := t.Column(pair.BalanceColumn)
	if err != nil {
		return nil, errors.ParseError(errors.CodeMissingColumn, "input table", pair.BalanceColumn, err)
	}

	n := t.Len()
	fixed := make([]models.Value, n)
	dateMsgs := make([]string, n)
	balanceMsgs := make([]string, n)
	generalMsgs := make([]string, n)
	result := &PairResult{Pair: pair}

	for i := 0; i < n; i++ {
		outcome := v.CheckRow(dates[i], balances[i], pair)

		fixed[i] = optionalText(outcome.Date)
		dateMsgs[i] = outcome.DateError
		balanceMsgs[i] = outcome.BalanceError
		generalMsgs[i] = outcome.GeneralError

		row := models.DisplayRow(i)
		if outcome.DateError != "" {
			result.DateErrors = append(result.DateErrors, models.ErrorRecord{Row: row, Message: outcome.DateError})
		}
		if outcome.BalanceError != "" {
			result.BalanceErrors = append(result.BalanceErrors, models.ErrorRecord{Row: row, Message: outcome.BalanceError})
		}
		if outcome.GeneralError != "" {
			result.GeneralErrors = append(result.GeneralErrors, models.ErrorRecord{Row: row, Message: outcome.GeneralError})
		}
	}

	if err := t.SetColumn(pair.DateColumn, fixed); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "write date column", err)
	}
	for _, col := range []struct {
		name string
		msgs []string
	}{
		{pair.DateErrorColumn(), dateMsgs},
		{pair.BalanceErrorColumn(), balanceMsgs},
		{pair.GeneralErrorColumn(), generalMsgs},
	} {
		if err := v.writeErrorColumn(t, col.name, col.msgs, written); err != nil {
			return nil, err
		}
	}

	v.logger.WithFields(logger.Fields{
		"pair":           pair.String(),
		"date_errors":    len(result.DateErrors),
		"balance_errors": len(result.BalanceErrors),
		"general_errors": len(result.GeneralErrors),
	}).Debug("Validated pair")

	return result, nil
}

func (v *Validator) writeErrorColumn(t *models.Table, name string, msgs []string, written map[string]bool) error {
	values := make([]models.Value, len(msgs))
	merge := v.config.ErrorColumns == PolicyMerge && written[name]

	for i, msg := range msgs {
		if merge {
			msg = MergeMessages(t.Cell(i, name).String(), msg)
		}
		values[i] = optionalText(msg)
	}

	if err := t.SetColumn(name, values); err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "write error column", err).
			WithContext("column", name)
	}
	written[name] = true
	return nil
}

// MergeMessages appends msg to a "; " separated message list, skipping
// blanks and messages already present.
func MergeMessages(existing, msg string) string {
	if msg == "" {
		return existing
	}
	if existing == "" {
		return msg
	}
	for _, part := range strings.Split(existing, "; ") {
		if part == msg {
			return existing
		}
	}
	return existing + "; " + msg
}

func optionalText(s string) models.Value {
	if s == "" {
		return models.Null()
	}
	return models.Text(s)
}
