package annotate

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/internal/tableio"
)

var testColumns = []string{
	"Membe Id", "Date", "Balance",
	"Date Errors", "Balance Errors", "General Errors (Date & Balance)",
}

func testSummary() *models.Summary {
	pair := models.Pair{DateColumn: "Date", BalanceColumn: "Balance"}
	return &models.Summary{
		DateErrors: []models.ErrorGroup{{
			Kind: models.ErrorKindDate, Column: "Date",
			Records: []models.ErrorRecord{{Row: 3, Message: "Invalid month: 13. "}},
		}},
		BalanceErrors: []models.ErrorGroup{{
			Kind: models.ErrorKindBalance, Column: "Balance",
			Records: []models.ErrorRecord{{Row: 4, Message: "Balance missing for 'Balance'"}},
		}},
		GeneralErrors: []models.ErrorGroup{{
			Kind: models.ErrorKindGeneral, Pair: &pair,
			Records: []models.ErrorRecord{{Row: 2, Message: "Date and Balance missing for 'Date' and 'Balance'"}},
		}},
	}
}

func TestBuildPlan(t *testing.T) {
	plan, err := BuildPlan(testColumns, testSummary())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	want := []Mark{
		{Row: 3, Column: 2, Kind: ErrorPrimary},
		{Row: 4, Column: 3, Kind: ErrorPrimary},
		{Row: 2, Column: 0, Kind: ErrorPrimary},
		{Row: 3, Column: 4, Kind: ErrorSecondary},
		{Row: 4, Column: 5, Kind: ErrorSecondary},
		{Row: 2, Column: 6, Kind: ErrorSecondary},
	}
	if !reflect.DeepEqual(plan.Marks, want) {
		t.Errorf("unexpected plan\nwant %v\ngot  %v", want, plan.Marks)
	}
	if plan.Columns != len(testColumns) {
		t.Errorf("expected %d columns, got %d", len(testColumns), plan.Columns)
	}
}

func TestBuildPlan_UnknownColumn(t *testing.T) {
	if _, err := BuildPlan([]string{"Date"}, testSummary()); err == nil {
		t.Error("expected an error for a summary that does not match the table")
	}
}

func TestPlanApply_GeneralErrorCellStaysSecondary(t *testing.T) {
	plan, err := BuildPlan(testColumns, testSummary())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	rec := &Recorder{}
	if err := plan.Apply(rec); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for col := 1; col <= 5; col++ {
		if kind, ok := rec.KindAt(2, col); !ok || kind != ErrorPrimary {
			t.Errorf("row 2 column %d: expected primary, got %v (marked %v)", col, kind, ok)
		}
	}
	if kind, _ := rec.KindAt(2, 6); kind != ErrorSecondary {
		t.Errorf("general error cell should end secondary, got %v", kind)
	}
	if kind, _ := rec.KindAt(3, 2); kind != ErrorPrimary {
		t.Errorf("date cell should be primary, got %v", kind)
	}
	if _, ok := rec.KindAt(3, 1); ok {
		t.Error("unrelated cell should not be marked")
	}
}

func TestMarkRow(t *testing.T) {
	rec := &Recorder{}
	if err := MarkRow(rec, 7, 3, ErrorSecondary); err != nil {
		t.Fatalf("MarkRow failed: %v", err)
	}
	want := []Mark{{7, 1, ErrorSecondary}, {7, 2, ErrorSecondary}, {7, 3, ErrorSecondary}}
	if !reflect.DeepEqual(rec.Marks, want) {
		t.Errorf("want %v, got %v", want, rec.Marks)
	}
}

func TestWorkbookFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	rows := []models.Row{
		{models.Int(1), models.Null(), models.Null(), models.Null(), models.Null(), models.Text("Date and Balance missing for 'Date' and 'Balance'")},
		{models.Int(2), models.Text("2080/13/01"), models.Int(5), models.Text("Invalid month: 13. "), models.Null(), models.Null()},
		{models.Int(3), models.Text("2080/01/01"), models.Null(), models.Null(), models.Text("Balance missing for 'Balance'"), models.Null()},
	}
	table := models.MustTable(testColumns, rows...)
	if err := tableio.NewWriter(nil).Save(context.Background(), table, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	a, err := ForPath(path)
	if err != nil {
		t.Fatalf("ForPath failed: %v", err)
	}
	plan, err := BuildPlan(table.Columns(), testSummary())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if err := plan.Apply(a); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	fill := func(cell string) string {
		id, err := f.GetCellStyle("Sheet1", cell)
		if err != nil {
			t.Fatalf("GetCellStyle(%s) failed: %v", cell, err)
		}
		style, err := f.GetStyle(id)
		if err != nil {
			t.Fatalf("GetStyle(%d) failed: %v", id, err)
		}
		if len(style.Fill.Color) == 0 {
			return ""
		}
		return strings.ToUpper(style.Fill.Color[0])
	}

	tests := []struct {
		cell string
		want string
	}{
		{"A2", Fills[ErrorPrimary]},
		{"E2", Fills[ErrorPrimary]},
		{"F2", Fills[ErrorSecondary]},
		{"B3", Fills[ErrorPrimary]},
		{"D3", Fills[ErrorSecondary]},
		{"C4", Fills[ErrorPrimary]},
		{"E4", Fills[ErrorSecondary]},
		{"A3", ""},
	}
	for _, tt := range tests {
		got := fill(tt.cell)
		if tt.want == "" {
			if got != "" {
				t.Errorf("%s: expected no fill, got %s", tt.cell, got)
			}
			continue
		}
		if !strings.HasSuffix(got, tt.want) {
			t.Errorf("%s: expected fill %s, got %q", tt.cell, tt.want, got)
		}
	}
}

func TestWorkbookDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	table := models.MustTable([]string{"Date"}, models.Row{models.Text("2080/13/01")})
	if err := tableio.NewWriter(nil).Save(context.Background(), table, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	w, err := OpenWorkbook(path, "")
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	if err := w.Mark(2, 1, ErrorPrimary); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if err := w.Discard(); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()
	id, err := f.GetCellStyle("Sheet1", "A2")
	if err != nil {
		t.Fatalf("GetCellStyle failed: %v", err)
	}
	style, err := f.GetStyle(id)
	if err != nil {
		t.Fatalf("GetStyle failed: %v", err)
	}
	if len(style.Fill.Color) != 0 {
		t.Errorf("expected discarded marks to leave A2 unfilled, got %v", style.Fill.Color)
	}
}

func TestForPathCSV(t *testing.T) {
	a, err := ForPath(filepath.Join(t.TempDir(), "out.csv"))
	if err != nil {
		t.Fatalf("ForPath failed: %v", err)
	}
	if _, ok := a.(Noop); !ok {
		t.Errorf("expected Noop annotator for CSV, got %T", a)
	}
	if err := a.Mark(2, 1, ErrorPrimary); err != nil {
		t.Errorf("Noop.Mark returned %v", err)
	}
}
