package annotate

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"golang-ledger-validator/internal/tableio"
	"golang-ledger-validator/pkg/errors"
	"golang-ledger-validator/pkg/logger"
)

// Fills maps each highlight kind to its solid fill color.
var Fills = map[Kind]string{
	ErrorPrimary:   "FFC7CE",
	ErrorSecondary: "FFF59D",
}

// Workbook highlights cells of a saved .xlsx file with solid fills. Marks are
// kept in memory until Close saves the file.
type Workbook struct {
	file   *excelize.File
	path   string
	sheet  string
	styles map[Kind]int
	marks  int
	logger logger.Logger
}

// OpenWorkbook opens path for highlighting. An empty sheet selects the first
// worksheet.
func OpenWorkbook(path, sheet string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.FileError(errors.CodeAnnotationFailed, path, err)
	}
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	styles := make(map[Kind]int, len(Fills))
	for kind, color := range Fills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			f.Close()
			return nil, errors.FileError(errors.CodeAnnotationFailed, path, err)
		}
		styles[kind] = id
	}

	return &Workbook{
		file:   f,
		path:   path,
		sheet:  sheet,
		styles: styles,
		logger: logger.WithComponent("annotator").WithField("file_path", path),
	}, nil
}

// Mark fills one cell.
func (w *Workbook) Mark(row, column int, kind Kind) error {
	style, ok := w.styles[kind]
	if !ok {
		return errors.FileError(errors.CodeAnnotationFailed, w.path, fmt.Errorf("unknown highlight %s", kind))
	}

	cell, err := excelize.CoordinatesToCellName(column, row)
	if err != nil {
		return errors.FileError(errors.CodeAnnotationFailed, w.path, err)
	}
	if err := w.file.SetCellStyle(w.sheet, cell, cell, style); err != nil {
		return errors.FileError(errors.CodeAnnotationFailed, w.path, err).WithContext("cell", cell)
	}

	w.marks++
	return nil
}

// Close saves the highlighted workbook and releases it.
func (w *Workbook) Close() error {
	defer w.file.Close()

	if err := w.file.Save(); err != nil {
		return errors.FileError(errors.CodeAnnotationFailed, w.path, err)
	}
	w.logger.WithField("marks", w.marks).Debug("Saved highlights")
	return nil
}

// Discard releases the workbook without saving any mark.
func (w *Workbook) Discard() error {
	if err := w.file.Close(); err != nil {
		return errors.FileError(errors.CodeAnnotationFailed, w.path, err)
	}
	w.logger.WithField("marks", w.marks).Debug("Discarded highlights")
	return nil
}

// ForPath returns the annotator suited to the file at path: fills for
// workbooks, nothing for CSV.
func ForPath(path string) (Annotator, error) {
	format, err := tableio.DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if format == tableio.FormatCSV {
		logger.WithComponent("annotator").WithField("file_path", path).
			Debug("CSV output cannot carry highlights, skipping")
		return Noop{}, nil
	}
	return OpenWorkbook(path, "")
}
