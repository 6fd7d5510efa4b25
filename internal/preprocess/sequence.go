package preprocess

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// DefaultIdentifierColumn is the member identifier header used by the
// ledgers this tool was written for. The spelling is intentional.
const DefaultIdentifierColumn = "Membe Id"

// SequenceConfig controls identifier resequencing.
type SequenceConfig struct {
	// Column is the exact name of the identifier column.
	Column string
	// ListMismatches includes per-row differences in the notice text.
	ListMismatches bool
	// MaxListed caps how many differences the notice lists.
	MaxListed int
}

// DefaultSequenceConfig returns the default identifier settings
func DefaultSequenceConfig() *SequenceConfig {
	return &SequenceConfig{
		Column:         DefaultIdentifierColumn,
		ListMismatches: true,
		MaxListed:      10,
	}
}

// Validate validates the sequence configuration
func (c *SequenceConfig) Validate() error {
	if strings.TrimSpace(c.Column) == "" {
		return fmt.Errorf("identifier column cannot be empty")
	}
	if c.MaxListed < 0 {
		return fmt.Errorf("max listed mismatches cannot be negative, got %d", c.MaxListed)
	}
	return nil
}

// SequenceReport describes what the identifier stage found.
type SequenceReport struct {
	Column      string              `json:"column" yaml:"column"`
	Rows        int                 `json:"rows" yaml:"rows"`
	Resequenced bool                `json:"resequenced" yaml:"resequenced"`
	Mismatches  []models.IDMismatch `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
}

// Sequencer checks that the identifier column reads 1..N in row order.
type Sequencer struct {
	config *SequenceConfig
	logger logger.Logger
}

// NewSequencer creates a new identifier sequencer
func NewSequencer(config *SequenceConfig) (*Sequencer, error) {
	if config == nil {
		config = DefaultSequenceConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "identifier_column", config.Column, err)
	}

	return &Sequencer{
		config: config,
		logger: logger.WithComponent("sequencer"),
	}, nil
}

// Resequence coerces the identifier column to whole numbers and compares it
// with 1..N. When any position differs the whole column is replaced by the
// expected sequence; otherwise the returned table carries the coerced values
// unchanged in meaning. A missing identifier column is a parse error.
func (s *Sequencer) Resequence(table *models.Table) (*models.Table, *SequenceReport, error) {
	values, err := table.Column(s.config.Column)
	if err != nil {
		return nil, nil, errors.ParseError(errors.CodeMissingColumn, "input table", s.config.Column, err)
	}

	report := &SequenceReport{Column: s.config.Column, Rows: len(values)}
	coerced := make([]models.Value, len(values))
	expected := make([]models.Value, len(values))

	for i, v := range values {
		actual := CoerceIdentifier(v)
		want := int64(i + 1)
		coerced[i] = models.Int(actual)
		expected[i] = models.Int(want)
		if actual != want {
			report.Mismatches = append(report.Mismatches, models.IDMismatch{
				Position: i + 1,
				Expected: want,
				Actual:   actual,
			})
		}
	}

	out := table.Clone()
	column := coerced
	if len(report.Mismatches) > 0 {
		report.Resequenced = true
		column = expected
		s.logger.WithFields(logger.Fields{
			"column":     s.config.Column,
			"mismatches": len(report.Mismatches),
		}).Warn("Identifier column is not serial, resequenced")
	}

	if err := out.SetColumn(s.config.Column, column); err != nil {
		return nil, nil, errors.InternalError(errors.CodeUnexpectedError, "identifier resequencing", err)
	}

	return out, report, nil
}

// Notice returns the title and body shown to the user for a report.
func (s *Sequencer) Notice(report *SequenceReport) (title, body string) {
	if !report.Resequenced {
		return "Validation Complete", fmt.Sprintf("The '%s' column is already in proper serial order.", report.Column)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The %s column is not serial! \n\n", report.Column)
	if s.config.ListMismatches {
		for i, m := range report.Mismatches {
			if s.config.MaxListed > 0 && i >= s.config.MaxListed {
				fmt.Fprintf(&b, "... and %d more\n", len(report.Mismatches)-s.config.MaxListed)
				break
			}
			b.WriteString(m.String())
			b.WriteString("\n")
		}
	}
	b.WriteString("\n IDs have been re-sequenced and saved to final output.")

	return "Validation Alert", b.String()
}

// CoerceIdentifier turns an identifier cell into a whole number. Absent and
// non-numeric cells become 0; fractional numbers truncate toward zero.
func CoerceIdentifier(v models.Value) int64 {
	switch v.Kind {
	case models.KindNumber:
		return v.Num.Truncate(0).IntPart()
	case models.KindString:
		d, err := decimal.NewFromString(strings.TrimSpace(v.Str))
		if err != nil {
			return 0
		}
		return d.Truncate(0).IntPart()
	default:
		return 0
	}
}
