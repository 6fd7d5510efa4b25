// Package tableio loads ledgers into models.Table and writes them back.
//
// Two container formats are supported, chosen by file extension:
//   - .xlsx / .xlsm: read and written with excelize, first worksheet only
//   - .csv: read and written with encoding/csv
//
// Legacy binary workbooks (.xls) are rejected with an unsupported_format
// error. The first row is the header. Blank header cells are named
// "Unnamed: <index>" and repeated names get a ".1", ".2", ... suffix so that
// column names stay unique.
//
// Cell typing follows what a spreadsheet user sees: numeric cells become
// numbers, text cells stay text, numeric cells displayed as dates keep their
// displayed text, and empty cells are absent.
//
// Example usage:
//
//	r := tableio.NewReader(tableio.DefaultConfig())
//	table, err := r.Load(ctx, "ledger.xlsx")
//
//	out := tableio.OutputPath("ledger.xlsx", "_validated")
//	if err := tableio.PrepareDestination(out); err != nil {
//		return err // destination_locked
//	}
//	err = tableio.NewWriter(nil).Save(ctx, table, out)
package tableio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// Format is a supported container format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".xls":
		return "", errors.FileError(errors.CodeUnsupportedFormat, path,
			fmt.Errorf("legacy .xls workbooks cannot be read")).
			WithSuggestion("open the file in a spreadsheet program and save it as .xlsx")
	default:
		return "", errors.FileError(errors.CodeUnsupportedFormat, path,
			fmt.Errorf("unknown extension %q", filepath.Ext(path)))
	}
}

// Config holds options for reading and writing tables
type Config struct {
	// Sheet is the worksheet to read. Empty means the first one.
	Sheet string

	// OutputSheet is the worksheet name used when writing workbooks.
	OutputSheet string

	// Delimiter separates CSV fields.
	Delimiter rune

	// SkipEmptyRows drops rows whose cells are all blank. Kept blank rows
	// count toward the identifier sequence.
	SkipEmptyRows bool

	// ValidateEncoding rejects CSV input that is not valid UTF-8.
	ValidateEncoding bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputSheet:      "Sheet1",
		Delimiter:        ',',
		SkipEmptyRows:    false,
		ValidateEncoding: true,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputSheet) == "" {
		return fmt.Errorf("output sheet name cannot be empty")
	}
	if len(c.OutputSheet) > 31 {
		return fmt.Errorf("output sheet name %q exceeds 31 characters", c.OutputSheet)
	}
	if c.Delimiter == 0 || c.Delimiter == '"' || c.Delimiter == '\n' || c.Delimiter == '\r' {
		return fmt.Errorf("invalid CSV delimiter %q", c.Delimiter)
	}
	return nil
}

// Reader loads tables from disk.
type Reader struct {
	config *Config
	logger logger.Logger
}

// NewReader creates a reader. A nil config uses DefaultConfig.
func NewReader(config *Config) *Reader {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reader{
		config: config,
		logger: logger.WithComponent("table_reader"),
	}
}

// Writer persists tables to disk.
type Writer struct {
	config *Config
	logger logger.Logger
}

// NewWriter creates a writer. A nil config uses DefaultConfig.
func NewWriter(config *Config) *Writer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Writer{
		config: config,
		logger: logger.WithComponent("table_writer"),
	}
}

// Load reads the table stored at path.
func (r *Reader) Load(ctx context.Context, path string) (*models.Table, error) {
	if path == "" {
		return nil, errors.SourceUnavailable("", nil)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.SourceUnavailable(path, err)
	}
	if info.IsDir() {
		return nil, errors.SourceUnavailable(path, fmt.Errorf("%s is a directory", path))
	}

	r.logger.WithField("file_path", path).WithField("format", format).Debug("Loading table")

	if format == FormatCSV {
		return r.loadCSV(ctx, path)
	}
	return r.loadXLSX(ctx, path)
}

// Save writes table to path in the format implied by its extension.
func (w *Writer) Save(ctx context.Context, table *models.Table, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	w.logger.WithField("file_path", path).WithField("rows", table.Len()).Debug("Saving table")

	if format == FormatCSV {
		return w.saveCSV(ctx, table, path)
	}
	return w.saveXLSX(ctx, table, path)
}

// buildTable turns raw cells into a table, naming columns from the header
// row and widening the header when data rows are longer.
func buildTable(header []string, body [][]models.Value, skipEmpty bool) (*models.Table, error) {
	width := len(header)
	for _, row := range body {
		if len(row) > width {
			width = len(row)
		}
	}

	rows := make([]models.Row, 0, len(body))
	for _, row := range body {
		if skipEmpty && isEmptyRow(row) {
			continue
		}
		rows = append(rows, models.Row(row))
	}

	return models.NewTable(uniqueHeaders(header, width), rows)
}

func uniqueHeaders(raw []string, width int) []string {
	headers := make([]string, width)
	seen := make(map[string]int, width)
	used := make(map[string]bool, width)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = strings.TrimSpace(raw[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		if used[base] {
			for n := max(seen[base], 1); ; n++ {
				candidate := fmt.Sprintf("%s.%d", base, n)
				if !used[candidate] {
					name = candidate
					break
				}
			}
		}
		seen[base]++
		used[name] = true
		headers[i] = name
	}

	return headers
}

func isEmptyRow(row []models.Value) bool {
	for _, v := range row {
		if !v.IsNull() && strings.TrimSpace(v.String()) != "" {
			return false
		}
	}
	return true
}

var dateLike = regexp.MustCompile(`^\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}`)

// parseNumber reads a plain decimal number. Grouped or currency formatted
// text is not a number.
func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// cellValue converts one written value to a table value. Numeric text
// becomes a number unless the display form looks like a date.
func cellValue(raw, shown string) models.Value {
	if raw == "" && shown == "" {
		return models.Null()
	}
	if dateLike.MatchString(shown) {
		return models.Text(shown)
	}
	if d, ok := parseNumber(raw); ok {
		return models.Number(d)
	}
	return models.Text(shown)
}
