package tableio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/pkg/errors"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func assertCell(t *testing.T, table *models.Table, row int, column string, want models.Value) {
	t.Helper()
	got := table.Cell(row, column)
	assert.True(t, got.Equal(want), "row %d column %q: want %s %q, got %s %q",
		row, column, want.Kind, want.String(), got.Kind, got.String())
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		code   errors.ErrorCode
	}{
		{"ledger.xlsx", FormatXLSX, ""},
		{"LEDGER.XLSX", FormatXLSX, ""},
		{"ledger.xlsm", FormatXLSX, ""},
		{"ledger.csv", FormatCSV, ""},
		{"ledger.xls", "", errors.CodeUnsupportedFormat},
		{"ledger.ods", "", errors.CodeUnsupportedFormat},
		{"ledger", "", errors.CodeUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, err := DetectFormat(tt.path)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.code))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
		})
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "ledger_validated.xlsx"),
		OutputPath(filepath.Join("data", "ledger.xlsx"), "_validated"))
	assert.Equal(t, "ledger.v2_checked.csv", OutputPath("ledger.v2.csv", "_checked"))
}

func TestPrepareDestination(t *testing.T) {
	t.Run("missing file is fine", func(t *testing.T) {
		require.NoError(t, PrepareDestination(filepath.Join(t.TempDir(), "out.xlsx")))
	})

	t.Run("existing output is removed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

		require.NoError(t, PrepareDestination(path))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("owner lock file means locked", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "~$out.xlsx"), []byte("owner"), 0o644))

		err := PrepareDestination(path)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeDestinationLocked))

		_, statErr := os.Stat(path)
		assert.NoError(t, statErr, "locked output must not be touched")
	})
}

func TestReader_LoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"Membe Id", " Date ", "Balance", "Balance", "", "Notes"},
		{1, "2080-1-5", 100.5, "007", nil, "first"},
		{},
		{2, "2080/01/01", nil, nil, nil, "  padded  "},
	})

	table, err := NewReader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Membe Id", "Date", "Balance", "Balance.1", "Unnamed: 4", "Notes"}, table.Columns())
	require.Equal(t, 3, table.Len(), "blank rows are kept")

	assertCell(t, table, 0, "Membe Id", models.Int(1))
	assertCell(t, table, 0, "Date", models.Text("2080-1-5"))
	assertCell(t, table, 0, "Balance", models.Number(decimal.RequireFromString("100.5")))
	assertCell(t, table, 0, "Balance.1", models.Text("007"))
	assertCell(t, table, 1, "Membe Id", models.Null())
	assertCell(t, table, 1, "Notes", models.Null())
	assertCell(t, table, 2, "Balance", models.Null())
	assertCell(t, table, 2, "Notes", models.Text("  padded  "))

	config := DefaultConfig()
	config.SkipEmptyRows = true
	skipped, err := NewReader(config).Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, skipped.Len(), "blank rows are skipped")
	assertCell(t, skipped, 1, "Membe Id", models.Int(2))
}

func TestReader_LoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := "\ufeffMembe Id,Date,Balance\n1,2080-01-05,100\n,,\n2,2080/01/06,nan\n3,,12.50\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := NewReader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Membe Id", "Date", "Balance"}, table.Columns())
	require.Equal(t, 4, table.Len())

	assertCell(t, table, 0, "Membe Id", models.Int(1))
	assertCell(t, table, 0, "Date", models.Text("2080-01-05"))
	assertCell(t, table, 1, "Membe Id", models.Null())
	assertCell(t, table, 2, "Balance", models.Text("nan"))
	assertCell(t, table, 3, "Date", models.Null())
	assertCell(t, table, 3, "Balance", models.Number(decimal.RequireFromString("12.50")))
}

func TestReader_LoadCSVRejectsInvalidEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Balance\n\xff\xfe,1\n"), 0o644))

	_, err := NewReader(nil).Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidData))
}

func TestReader_LoadFailures(t *testing.T) {
	r := NewReader(nil)

	_, err := r.Load(context.Background(), "")
	assert.True(t, errors.HasCode(err, errors.CodeSourceUnavailable))

	_, err = r.Load(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.True(t, errors.HasCode(err, errors.CodeSourceUnavailable))

	_, err = r.Load(context.Background(), "ledger.xls")
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedFormat))

	corrupt := filepath.Join(t.TempDir(), "corrupt.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a zip"), 0o644))
	_, err = r.Load(context.Background(), corrupt)
	assert.True(t, errors.HasCode(err, errors.CodeSourceUnavailable))
}

func TestWriter_RoundTrip(t *testing.T) {
	table := models.MustTable([]string{"Membe Id", "Date", "Balance", "Date Errors"},
		models.Row{models.Int(1), models.Text("2080/01/05"), models.Number(decimal.RequireFromString("100.25")), models.Null()},
		models.Row{models.Int(2), models.Null(), models.Int(7), models.Text("Date missing for 'Date'")},
	)

	for _, name := range []string{"out.xlsx", "out.csv"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, NewWriter(nil).Save(context.Background(), table, path))

			loaded, err := NewReader(nil).Load(context.Background(), path)
			require.NoError(t, err)

			assert.Equal(t, table.Columns(), loaded.Columns())
			require.Equal(t, table.Len(), loaded.Len())
			for i := 0; i < table.Len(); i++ {
				for _, col := range table.Columns() {
					assertCell(t, loaded, i, col, table.Cell(i, col))
				}
			}
		})
	}
}

func TestWriter_SheetName(t *testing.T) {
	config := DefaultConfig()
	config.OutputSheet = "Validated"
	path := filepath.Join(t.TempDir(), "out.xlsx")

	table := models.MustTable([]string{"A"}, models.Row{models.Text("x")})
	require.NoError(t, NewWriter(config).Save(context.Background(), table, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Validated"}, f.GetSheetList())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.OutputSheet = ""
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Delimiter = '"'
	assert.Error(t, bad.Validate())
}

func TestUniqueHeaders(t *testing.T) {
	got := uniqueHeaders([]string{"A", "A", " ", "A.1", "A"}, 6)
	assert.Equal(t, []string{"A", "A.1", "Unnamed: 2", "A.1.1", "A.2", "Unnamed: 5"}, got)
}
