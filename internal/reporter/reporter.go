// Package reporter renders the results of a validation run.
//
// The summary text is what the user sees at the end of every run: one line
// per error group with its record count. The full report carries the same
// counts plus the identifier and pruning reports and every error record,
// in one of several output formats:
//   - Text: the summary notice exactly as shown to the user
//   - Console: styled, column-aligned output for a terminal
//   - JSON and YAML: structured data for other tools
//
// Example usage:
//
//	gen, err := reporter.NewReportGenerator(&reporter.ReportConfig{Format: reporter.FormatJSON})
//	err = gen.GenerateReport(report, os.Stdout)
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"golang-ledger-validator/internal/matcher"
	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/internal/preprocess"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeRecords    bool `json:"include_records"`
	IncludeSequence   bool `json:"include_sequence"`
	IncludePruning    bool `json:"include_pruning"`
	IncludeZeroGroups bool `json:"include_zero_groups"`

	// Console formatting options
	UseColors     bool `json:"use_colors"`
	TableMaxWidth int  `json:"table_max_width"`
	MaxRecords    int  `json:"max_records"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:            FormatConsole,
		IncludeRecords:    true,
		IncludeSequence:   true,
		IncludePruning:    true,
		IncludeZeroGroups: true,
		UseColors:         true,
		TableMaxWidth:     120,
		MaxRecords:        10,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.TableMaxWidth < 50 {
		return fmt.Errorf("table max width must be at least 50 characters, got %d", c.TableMaxWidth)
	}

	if c.MaxRecords < 0 {
		return fmt.Errorf("max records cannot be negative, got %d", c.MaxRecords)
	}

	return nil
}

// Report is everything known about one finished run.
type Report struct {
	RunID          string
	Input          string
	Output         string
	GeneratedAt    time.Time
	Duration       time.Duration
	RowsIn         int
	RowsOut        int
	Sequence       *preprocess.SequenceReport
	Classification *matcher.Classification
	Pruned         []preprocess.PruneResult
	Summary        *models.Summary
}

// ReportGenerator generates validation reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport writes the report to writer in the configured format.
func (rg *ReportGenerator) GenerateReport(report *Report, writer io.Writer) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if report.Summary == nil {
		return fmt.Errorf("report summary cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(report, writer)
	case FormatText:
		return rg.generateTextReport(report, writer)
	case FormatJSON:
		return rg.generateJSONReport(report, writer)
	case FormatYAML:
		return rg.generateYAMLReport(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateTextReport(report *Report, writer io.Writer) error {
	title, body := SummaryText(report.Summary)
	_, err := fmt.Fprintf(writer, "%s\n\n%s\n", title, strings.TrimRight(body, "\n"))
	return err
}

func (rg *ReportGenerator) generateJSONReport(report *Report, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(rg.document(report))
}

func (rg *ReportGenerator) generateYAMLReport(report *Report, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(rg.document(report)); err != nil {
		return err
	}
	return encoder.Close()
}

// Document is the structured form shared by the JSON and YAML reports.
type Document struct {
	RunID          string                     `json:"run_id" yaml:"run_id"`
	Input          string                     `json:"input" yaml:"input"`
	Output         string                     `json:"output" yaml:"output"`
	GeneratedAt    time.Time                  `json:"generated_at" yaml:"generated_at"`
	Duration       string                     `json:"duration" yaml:"duration"`
	RowsIn         int                        `json:"rows_in" yaml:"rows_in"`
	RowsOut        int                        `json:"rows_out" yaml:"rows_out"`
	TotalErrors    int                        `json:"total_errors" yaml:"total_errors"`
	Groups         []GroupCount               `json:"groups" yaml:"groups"`
	Sequence       *preprocess.SequenceReport `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Classification *matcher.Classification    `json:"classification,omitempty" yaml:"classification,omitempty"`
	Pruned         []preprocess.PruneResult   `json:"pruned,omitempty" yaml:"pruned,omitempty"`
}

// GroupCount is one summary line with its records.
type GroupCount struct {
	Label       string               `json:"label" yaml:"label"`
	Kind        models.ErrorKind     `json:"kind" yaml:"kind"`
	ErrorColumn string               `json:"error_column" yaml:"error_column"`
	Count       int                  `json:"count" yaml:"count"`
	Records     []models.ErrorRecord `json:"records,omitempty" yaml:"records,omitempty"`
}

func (rg *ReportGenerator) document(report *Report) *Document {
	doc := &Document{
		RunID:          report.RunID,
		Input:          report.Input,
		Output:         report.Output,
		GeneratedAt:    report.GeneratedAt,
		Duration:       report.Duration.String(),
		RowsIn:         report.RowsIn,
		RowsOut:        report.RowsOut,
		TotalErrors:    report.Summary.Total(),
		Groups:         make([]GroupCount, 0),
		Classification: report.Classification,
	}

	for _, g := range report.Summary.Groups() {
		if len(g.Records) == 0 && !rg.config.IncludeZeroGroups {
			continue
		}
		count := GroupCount{
			Label:       g.Label(),
			Kind:        g.Kind,
			ErrorColumn: g.ErrorColumn(),
			Count:       len(g.Records),
		}
		if rg.config.IncludeRecords {
			count.Records = g.Records
		}
		doc.Groups = append(doc.Groups, count)
	}

	if rg.config.IncludeSequence {
		doc.Sequence = report.Sequence
	}
	if rg.config.IncludePruning {
		doc.Pruned = report.Pruned
	}

	return doc
}
