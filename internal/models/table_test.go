package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValueKind_String(t *testing.T) {
	tests := []struct {
		kind     ValueKind
		expected string
	}{
		{KindNull, "null"},
		{KindString, "string"},
		{KindNumber, "number"},
		{ValueKind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("ValueKind.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"null", Null(), ""},
		{"text", Text(" 2080/01/01 "), " 2080/01/01 "},
		{"integer", Int(42), "42"},
		{"decimal", Number(decimal.RequireFromString("1500.50")), "1500.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.expected {
				t.Errorf("Value.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestValue_Equal(t *testing.T) {
	if !Number(decimal.RequireFromString("1.50")).Equal(Number(decimal.RequireFromString("1.5"))) {
		t.Error("expected numerically equal decimals to compare equal")
	}
	if Text("1").Equal(Int(1)) {
		t.Error("expected text and number to differ")
	}
	if !Null().Equal(Null()) {
		t.Error("expected null to equal null")
	}
}

func TestNewTable(t *testing.T) {
	t.Run("pads short rows", func(t *testing.T) {
		table, err := NewTable([]string{"a", "b"}, []Row{{Text("x")}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !table.Cell(0, "b").IsNull() {
			t.Errorf("expected padded cell to be null, got %v", table.Cell(0, "b"))
		}
	})

	t.Run("rejects duplicate columns", func(t *testing.T) {
		if _, err := NewTable([]string{"a", "a"}, nil); err == nil {
			t.Error("expected duplicate column error")
		}
	})

	t.Run("rejects long rows", func(t *testing.T) {
		if _, err := NewTable([]string{"a"}, []Row{{Text("x"), Text("y")}}); err == nil {
			t.Error("expected long row error")
		}
	})
}

func TestTable_SetColumn(t *testing.T) {
	table := MustTable([]string{"Date", "Balance"},
		Row{Text("2080/01/01"), Int(10)},
		Row{Text("2080/01/02"), Int(20)},
	)

	if err := table.SetColumn("Date Errors", []Value{Text("bad"), Text("")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Columns(); strings.Join(got, ",") != "Date,Balance,Date Errors" {
		t.Errorf("expected new column appended, got %v", got)
	}

	if err := table.SetColumn("Date", []Value{Text("x"), Text("y")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx, _ := table.ColumnIndex("Date"); idx != 0 {
		t.Errorf("expected overwritten column to keep position 0, got %d", idx)
	}
	if table.Cell(1, "Date").String() != "y" {
		t.Errorf("expected overwritten value, got %v", table.Cell(1, "Date"))
	}

	if err := table.SetColumn("Short", []Value{Text("only one")}); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestTable_RenameColumns(t *testing.T) {
	table := MustTable([]string{" Date ", "Date"})
	if err := table.RenameColumns(strings.TrimSpace); err == nil {
		t.Fatal("expected collision error")
	}
	if got := table.Columns(); got[0] != " Date " {
		t.Errorf("expected failed rename to leave table unchanged, got %v", got)
	}

	table = MustTable([]string{" Date ", "Balance  "})
	if err := table.RenameColumns(strings.TrimSpace); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.HasColumn("Date") || !table.HasColumn("Balance") {
		t.Errorf("expected trimmed names, got %v", table.Columns())
	}
}

func TestTable_Retain(t *testing.T) {
	table := MustTable([]string{"n"}, Row{Int(1)}, Row{Int(2)}, Row{Int(3)})
	removed := table.Retain(func(i int, row Row) bool { return i != 1 })

	if removed != 1 {
		t.Errorf("expected 1 removed row, got %d", removed)
	}
	if table.Len() != 2 || table.Cell(1, "n").String() != "3" {
		t.Errorf("unexpected rows after retain:\n%s", table)
	}
}

func TestTable_CloneIsIndependent(t *testing.T) {
	original := MustTable([]string{"a"}, Row{Text("x")})
	clone := original.Clone()

	if !clone.Equal(original) {
		t.Fatal("expected clone to equal original")
	}

	_ = clone.SetColumn("a", []Value{Text("changed")})
	_ = clone.SetColumn("b", []Value{Text("new")})

	if original.Cell(0, "a").String() != "x" {
		t.Error("mutating the clone changed the original cell")
	}
	if original.HasColumn("b") {
		t.Error("adding a column to the clone changed the original")
	}
}

func TestPairColumnNames(t *testing.T) {
	pair := Pair{DateColumn: "Date", BalanceColumn: "Closing Balance"}

	if pair.DateErrorColumn() != "Date Errors" {
		t.Errorf("unexpected date error column %q", pair.DateErrorColumn())
	}
	if pair.BalanceErrorColumn() != "Closing Balance Errors" {
		t.Errorf("unexpected balance error column %q", pair.BalanceErrorColumn())
	}
	if pair.GeneralErrorColumn() != "General Errors (Date & Closing Balance)" {
		t.Errorf("unexpected general error column %q", pair.GeneralErrorColumn())
	}
	if pair.String() != "Date & Closing Balance" {
		t.Errorf("unexpected label %q", pair.String())
	}
}

func TestDisplayRow(t *testing.T) {
	if DisplayRow(0) != 2 {
		t.Errorf("expected first data row to display as 2, got %d", DisplayRow(0))
	}
}
