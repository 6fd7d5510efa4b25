// Package ledgergen builds synthetic ledgers with a known set of seeded
// problems, for exercising the validator at scale.
package ledgergen

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/internal/preprocess"
	"golang-ledger-validator/internal/tableio"
)

// Column names of generated ledgers.
const (
	DateColumn    = "Date"
	BalanceColumn = "Balance"
)

// Generator generates member ledgers
type Generator struct {
	Rows      int
	StartYear int
	Seed      int64

	// IssueRate is the share of rows given a date or balance problem.
	IssueRate float64
	// EmptyRate is the share of rows with neither a date nor a balance.
	EmptyRate float64
	// ScrambleRate is the share of identifiers replaced with random values.
	ScrambleRate float64
	// DevanagariRate is the share of dates written with Devanagari digits.
	DevanagariRate float64
}

// Issue is one seeded problem. Row is the display row the validator reports
// once empty rows are removed.
type Issue struct {
	Row  int
	Kind models.ErrorKind
}

// Ledger is a generated table together with what was seeded into it.
type Ledger struct {
	Table      *models.Table
	Issues     []Issue
	Empty      int
	Scrambled  int
	Devanagari int
}

// Count returns the number of seeded issues of the given kind.
func (l *Ledger) Count(kind models.ErrorKind) int {
	n := 0
	for _, issue := range l.Issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

// Generate builds the ledger. The same seed always yields the same ledger.
func (g *Generator) Generate() *Ledger {
	rng := rand.New(rand.NewSource(g.Seed))
	ledger := &Ledger{}

	rows := make([]models.Row, 0, g.Rows)
	balance := decimal.NewFromInt(1000)
	kept := 0

	for i := 0; i < g.Rows; i++ {
		id := models.Int(int64(i + 1))
		if rng.Float64() < g.ScrambleRate {
			id = models.Int(int64(g.Rows + 1 + rng.Intn(g.Rows+1)))
			ledger.Scrambled++
		}

		if rng.Float64() < g.EmptyRate {
			rows = append(rows, models.Row{id, models.Null(), models.Null()})
			ledger.Empty++
			continue
		}

		year := g.StartYear + rng.Intn(2)
		month := 1 + rng.Intn(12)
		day := 1 + rng.Intn(30)
		balance = balance.Add(decimal.NewFromFloat(rng.Float64() * 500).Round(2))
		amount := models.Number(balance)

		if rng.Float64() < g.IssueRate {
			kind := models.ErrorKindDate
			if rng.Intn(2) == 0 {
				month = 13
			} else {
				kind = models.ErrorKindBalance
				amount = models.Null()
			}
			ledger.Issues = append(ledger.Issues, Issue{Row: models.DisplayRow(kept), Kind: kind})
		}

		date := fmt.Sprintf("%d/%02d/%02d", year, month, day)
		if rng.Float64() < g.DevanagariRate {
			date = toDevanagari(date)
			ledger.Devanagari++
		}

		rows = append(rows, models.Row{id, models.Text(date), amount})
		kept++
	}

	ledger.Table = models.MustTable([]string{preprocess.DefaultIdentifierColumn, DateColumn, BalanceColumn}, rows...)
	return ledger
}

// Save writes the ledger as a workbook or CSV file, chosen by extension.
func (l *Ledger) Save(ctx context.Context, path string) error {
	return tableio.NewWriter(nil).Save(ctx, l.Table, path)
}

func toDevanagari(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return '०' + (r - '0')
		}
		return r
	}, s)
}
