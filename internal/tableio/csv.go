package tableio

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

const utf8BOM = "\ufeff"

func (r *Reader) loadCSV(ctx context.Context, path string) (*models.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.WithError(err).WithField("file_path", path).Error("Failed to read CSV file")
		return nil, errors.SourceUnavailable(path, err)
	}

	if r.config.ValidateEncoding && !utf8.Valid(data) {
		return nil, errors.ParseError(errors.CodeInvalidData, path, "encoding",
			fmt.Errorf("invalid UTF-8 encoding detected")).
			WithSuggestion("save the file in UTF-8 encoding and try again")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = r.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		r.logger.WithField("file_path", path).Warn("CSV file is empty")
		return models.NewTable(nil, nil)
	}
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, "header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var body [][]models.Value
	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.InternalError(errors.CodeUnexpectedError, "csv reading", err)
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidData, path, fmt.Sprintf("line %d", line), err)
		}

		row := make([]models.Value, len(record))
		for j, field := range record {
			row[j] = cellValue(field, field)
		}
		body = append(body, row)
	}

	table, err := buildTable(header, body, r.config.SkipEmptyRows)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, "header", err)
	}

	r.logger.WithFields(logger.Fields{
		"file_path": path,
		"rows":      table.Len(),
		"columns":   table.ColumnCount(),
	}).Debug("Loaded CSV file")

	return table, nil
}

func (w *Writer) saveCSV(ctx context.Context, table *models.Table, path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.FileError(errors.CodeWriteFailed, path, cerr)
		}
	}()

	writer := csv.NewWriter(file)
	writer.Comma = w.config.Delimiter

	if err := writer.Write(table.Columns()); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}

	record := make([]string, table.ColumnCount())
	for i := 0; i < table.Len(); i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return errors.InternalError(errors.CodeUnexpectedError, "csv writing", err)
			}
		}
		for j, v := range table.Row(i) {
			record[j] = v.String()
		}
		if err := writer.Write(record); err != nil {
			return errors.FileError(errors.CodeWriteFailed, path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	return nil
}
