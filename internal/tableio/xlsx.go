package tableio

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

func (r *Reader) loadXLSX(ctx context.Context, path string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		r.logger.WithError(err).WithField("file_path", path).Error("Failed to open workbook")
		return nil, errors.SourceUnavailable(path, err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.SourceUnavailable(path, fmt.Errorf("worksheet %q not found", sheet)).
			WithContext("sheet", sheet)
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.SourceUnavailable(path, err)
	}
	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.SourceUnavailable(path, err)
	}

	if len(raw) == 0 {
		r.logger.WithField("sheet", sheet).Warn("Worksheet is empty")
		return models.NewTable(nil, nil)
	}

	body := make([][]models.Value, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.InternalError(errors.CodeUnexpectedError, "workbook reading", err)
			}
		}

		row := make([]models.Value, len(raw[i]))
		for j, rawCell := range raw[i] {
			display := rawCell
			if i < len(shown) && j < len(shown[i]) {
				display = shown[i][j]
			}
			row[j], err = r.xlsxCell(f, sheet, j+1, i+1, rawCell, display)
			if err != nil {
				return nil, errors.SourceUnavailable(path, err)
			}
		}
		body = append(body, row)
	}

	header := shown[0]
	table, err := buildTable(header, body, r.config.SkipEmptyRows)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, "header", err)
	}

	r.logger.WithFields(logger.Fields{
		"file_path": path,
		"sheet":     sheet,
		"rows":      table.Len(),
		"columns":   table.ColumnCount(),
	}).Debug("Loaded workbook")

	return table, nil
}

// xlsxCell types one cell. Text cells stay text even when they hold digits.
func (r *Reader) xlsxCell(f *excelize.File, sheet string, col, row int, raw, shown string) (models.Value, error) {
	if raw == "" && shown == "" {
		return models.Null(), nil
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return models.Value{}, err
	}
	kind, err := f.GetCellType(sheet, cell)
	if err != nil {
		return models.Value{}, err
	}

	switch kind {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return models.Text(shown), nil
	case excelize.CellTypeDate:
		return models.Text(shown), nil
	default:
		return cellValue(raw, shown), nil
	}
}

func (w *Writer) saveXLSX(ctx context.Context, table *models.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := w.config.OutputSheet
	if def := f.GetSheetName(0); def != sheet {
		if err := f.SetSheetName(def, sheet); err != nil {
			return errors.FileError(errors.CodeWriteFailed, path, err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}

	header := make([]interface{}, table.ColumnCount())
	for j, name := range table.Columns() {
		header[j] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}

	for i := 0; i < table.Len(); i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return errors.InternalError(errors.CodeUnexpectedError, "workbook writing", err)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.FileError(errors.CodeWriteFailed, path, err)
		}
		if err := sw.SetRow(cell, xlsxRow(table.Row(i))); err != nil {
			return errors.FileError(errors.CodeWriteFailed, path, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	if err := f.SaveAs(path); err != nil {
		w.logger.WithError(err).WithField("file_path", path).Error("Failed to save workbook")
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}

	return nil
}

func xlsxRow(row models.Row) []interface{} {
	values := make([]interface{}, len(row))
	for j, v := range row {
		switch v.Kind {
		case models.KindNull:
			values[j] = nil
		case models.KindNumber:
			if v.Num.IsInteger() {
				values[j] = v.Num.IntPart()
			} else {
				values[j] = v.Num.InexactFloat64()
			}
		default:
			values[j] = v.Str
		}
	}
	return values
}
