package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-ledger-validator/internal/calendar"
	"golang-ledger-validator/internal/ledgergen"
	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/internal/validator"
	"golang-ledger-validator/pkg/errors"
)

func testConfig(policy validator.ErrorColumnPolicy) *Config {
	config := DefaultConfig()
	config.Validator = &validator.Config{
		Calendar:           calendar.Fixed(2081),
		MinYear:            validator.MinYear,
		AcceptTrailingYear: true,
		ErrorColumns:       policy,
	}
	return config
}

func newTestPipeline(t *testing.T, policy validator.ErrorColumnPolicy) *Pipeline {
	t.Helper()
	p, err := New(testConfig(policy))
	require.NoError(t, err)
	return p
}

func TestPipeline_EndToEnd(t *testing.T) {
	table := models.MustTable(
		[]string{"Membe Id", "Date", "Balance"},
		models.Row{models.Int(1), models.Text("2080-1-5"), models.Int(100)},
		models.Row{models.Int(2), models.Text("2080/02/01"), models.Null()},
	)

	result, err := newTestPipeline(t, validator.PolicyOverwrite).Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Total())
	require.Len(t, result.Summary.BalanceErrors, 1)
	assert.Equal(t, []models.ErrorRecord{{Row: 3, Message: "Balance missing for 'Balance'"}}, result.Summary.BalanceErrors[0].Records)
	require.Len(t, result.Summary.DateErrors, 1)
	assert.Empty(t, result.Summary.DateErrors[0].Records)
	require.Len(t, result.Summary.GeneralErrors, 1)
	assert.Empty(t, result.Summary.GeneralErrors[0].Records)

	out := result.Table
	assert.Equal(t, []string{
		"Membe Id", "Date", "Balance",
		"Date Errors", "Balance Errors", "General Errors (Date & Balance)",
	}, out.Columns())
	assert.Equal(t, "2080/01/05", out.Cell(0, "Date").String())
	assert.Equal(t, "Balance missing for 'Balance'", out.Cell(1, "Balance Errors").String())
	assert.True(t, out.Cell(0, "Balance Errors").IsNull())
	assert.False(t, result.Sequence.Resequenced)
	assert.Equal(t, 2, result.RowsIn)

	// The input is left untouched.
	assert.Equal(t, "2080-1-5", table.Cell(0, "Date").String())
	assert.Equal(t, 3, table.ColumnCount())
}

func TestPipeline_PrunesEmptyRows(t *testing.T) {
	rows := []models.Row{
		{models.Int(1), models.Text("2080/01/01"), models.Int(10)},
		{models.Int(2), models.Text("2080/01/02"), models.Int(20)},
		{models.Int(3), models.Null(), models.Null()},
		{models.Int(4), models.Text("2080/01/04"), models.Int(40)},
		{models.Int(5), models.Text("2080/01/05"), models.Int(50)},
	}
	table := models.MustTable([]string{"Membe Id", "Date", "Balance"}, rows...)

	result, err := newTestPipeline(t, validator.PolicyOverwrite).Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Table.Len())
	require.Len(t, result.Pruned, 1)
	assert.Equal(t, 1, result.Pruned[0].Removed)
	assert.True(t, result.Summary.Clean())
}

func TestPipeline_ResequencesIdentifiers(t *testing.T) {
	table := models.MustTable(
		[]string{"Membe Id", "Date", "Balance"},
		models.Row{models.Int(1), models.Text("2080/01/01"), models.Int(1)},
		models.Row{models.Int(7), models.Text("2080/01/02"), models.Int(2)},
		models.Row{models.Text("x"), models.Text("2080/01/03"), models.Int(3)},
	)

	p := newTestPipeline(t, validator.PolicyOverwrite)
	result, err := p.Run(context.Background(), table)
	require.NoError(t, err)

	assert.True(t, result.Sequence.Resequenced)
	ids, err := result.Table.Column("Membe Id")
	require.NoError(t, err)
	for i, v := range ids {
		assert.Equal(t, int64(i+1), v.Num.IntPart())
	}

	title, body := p.SequenceNotice(result.Sequence)
	assert.Equal(t, "Validation Alert", title)
	assert.Contains(t, body, "Row 2: expected 2, found 7")
	assert.Contains(t, body, "Row 3: expected 3, found 0")
}

func TestPipeline_MissingIdentifierColumn(t *testing.T) {
	table := models.MustTable([]string{"Date", "Balance"}, models.Row{models.Text("2080/01/01"), models.Int(1)})

	_, err := newTestPipeline(t, validator.PolicyOverwrite).Run(context.Background(), table)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeMissingColumn))
}

func TestPipeline_ReportsProgress(t *testing.T) {
	var seen []Progress
	config := testConfig(validator.PolicyOverwrite)
	config.Progress = func(p Progress) { seen = append(seen, p) }
	p, err := New(config)
	require.NoError(t, err)

	table := models.MustTable(
		[]string{"Membe Id", "Date", "Balance"},
		models.Row{models.Int(1), models.Text("2080/01/01"), models.Int(1)},
		models.Row{models.Int(2), models.Null(), models.Null()},
	)
	_, err = p.Run(context.Background(), table)
	require.NoError(t, err)

	require.Len(t, seen, len(Stages))
	for i, s := range seen {
		assert.Equal(t, Stages[i], s.Stage)
		assert.Equal(t, i+1, s.Step)
		assert.Equal(t, len(Stages), s.Steps)
	}
	prune := seen[3]
	assert.Equal(t, StagePrune, prune.Stage)
	assert.Equal(t, 2, prune.RowsIn)
	assert.Equal(t, 1, prune.RowsOut)
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table := models.MustTable([]string{"Membe Id"}, models.Row{models.Int(1)})
	_, err := newTestPipeline(t, validator.PolicyOverwrite).Run(ctx, table)
	assert.Error(t, err)
}

func TestPipeline_NoDateColumns(t *testing.T) {
	table := models.MustTable(
		[]string{"Membe Id", "Name"},
		models.Row{models.Int(1), models.Text("A")},
	)

	result, err := newTestPipeline(t, validator.PolicyOverwrite).Run(context.Background(), table)
	require.NoError(t, err)
	assert.True(t, result.Summary.Clean())
	assert.Empty(t, result.Summary.Groups())
	assert.Equal(t, []string{"Membe Id", "Name"}, result.Table.Columns())
}

func TestNew_InvalidConfig(t *testing.T) {
	config := testConfig("append")
	_, err := New(config)
	require.Error(t, err)

	p, err := New(&Config{})
	require.NoError(t, err)
	assert.Equal(t, validator.PolicyOverwrite, p.ErrorColumnPolicy())
}

func sharedColumnResults() []*validator.PairResult {
	first := models.Pair{DateColumn: "Date", BalanceColumn: "Balance"}
	second := models.Pair{DateColumn: "Date", BalanceColumn: "Amount"}
	return []*validator.PairResult{
		{
			Pair:          first,
			DateErrors:    []models.ErrorRecord{{Row: 4, Message: "Invalid month: 13. "}},
			BalanceErrors: []models.ErrorRecord{{Row: 2, Message: "Balance missing for 'Balance'"}},
		},
		{
			Pair: second,
			DateErrors: []models.ErrorRecord{
				{Row: 3, Message: "Date missing for 'Date'"},
				{Row: 4, Message: "Invalid month: 13. "},
			},
			GeneralErrors: []models.ErrorRecord{{Row: 5, Message: "Date and Balance missing for 'Date' and 'Amount'"}},
		},
	}
}

func TestAggregate_Overwrite(t *testing.T) {
	summary := Aggregate(sharedColumnResults(), validator.PolicyOverwrite)

	require.Len(t, summary.DateErrors, 1)
	assert.Equal(t, "Date", summary.DateErrors[0].Column)
	assert.Equal(t, []models.ErrorRecord{
		{Row: 3, Message: "Date missing for 'Date'"},
		{Row: 4, Message: "Invalid month: 13. "},
	}, summary.DateErrors[0].Records)

	require.Len(t, summary.BalanceErrors, 2)
	assert.Equal(t, "Balance", summary.BalanceErrors[0].Column)
	assert.Equal(t, "Amount", summary.BalanceErrors[1].Column)
	assert.NotNil(t, summary.BalanceErrors[1].Records)
	assert.Empty(t, summary.BalanceErrors[1].Records)

	require.Len(t, summary.GeneralErrors, 2)
	assert.Equal(t, "Date & Balance (General Errors)", summary.GeneralErrors[0].Label())
	assert.Equal(t, "Date & Amount (General Errors)", summary.GeneralErrors[1].Label())

	assert.Equal(t, 4, summary.Total())
}

func TestAggregate_Merge(t *testing.T) {
	summary := Aggregate(sharedColumnResults(), validator.PolicyMerge)

	require.Len(t, summary.DateErrors, 1)
	assert.Equal(t, []models.ErrorRecord{
		{Row: 3, Message: "Date missing for 'Date'"},
		{Row: 4, Message: "Invalid month: 13. "},
	}, summary.DateErrors[0].Records)
	assert.Equal(t, 4, summary.Total())
}

func TestAggregate_MergeCombinesMessages(t *testing.T) {
	results := []*validator.PairResult{
		{Pair: models.Pair{DateColumn: "Date", BalanceColumn: "Balance"},
			DateErrors: []models.ErrorRecord{{Row: 2, Message: "first"}}},
		{Pair: models.Pair{DateColumn: "Date", BalanceColumn: "Amount"},
			DateErrors: []models.ErrorRecord{{Row: 2, Message: "second"}}},
	}

	summary := Aggregate(results, validator.PolicyMerge)
	assert.Equal(t, []models.ErrorRecord{{Row: 2, Message: "first; second"}}, summary.DateErrors[0].Records)
}

func TestPipeline_MergePolicyMatchesErrorColumn(t *testing.T) {
	table := models.MustTable(
		[]string{"Membe Id", "Date", "Balance", "Amount"},
		models.Row{models.Int(1), models.Null(), models.Int(5), models.Int(6)},
		models.Row{models.Int(2), models.Text("2080/01/01"), models.Int(5), models.Int(6)},
	)

	result, err := newTestPipeline(t, validator.PolicyMerge).Run(context.Background(), table)
	require.NoError(t, err)

	require.Len(t, result.Summary.DateErrors, 1)
	records := result.Summary.DateErrors[0].Records
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, records[0].Message, result.Table.Cell(0, "Date Errors").String())
}

func TestPipeline_GeneratedLedger(t *testing.T) {
	ledger := (&ledgergen.Generator{
		Rows:           2000,
		StartYear:      2079,
		Seed:           20240101,
		IssueRate:      0.05,
		EmptyRate:      0.02,
		ScrambleRate:   0.01,
		DevanagariRate: 0.05,
	}).Generate()

	result, err := newTestPipeline(t, validator.PolicyOverwrite).Run(context.Background(), ledger.Table)
	require.NoError(t, err)

	assert.Equal(t, 2000-ledger.Empty, result.Table.Len())
	require.Len(t, result.Pruned, 1)
	assert.Equal(t, ledger.Empty, result.Pruned[0].Removed)
	assert.Equal(t, ledger.Scrambled > 0, result.Sequence.Resequenced)

	require.Len(t, result.Summary.DateErrors, 1)
	require.Len(t, result.Summary.BalanceErrors, 1)
	assert.Len(t, result.Summary.DateErrors[0].Records, ledger.Count(models.ErrorKindDate))
	assert.Len(t, result.Summary.BalanceErrors[0].Records, ledger.Count(models.ErrorKindBalance))
	assert.Empty(t, result.Summary.GeneralErrors[0].Records)

	var got []ledgergen.Issue
	for _, g := range result.Summary.Groups() {
		for _, rec := range g.Records {
			got = append(got, ledgergen.Issue{Row: rec.Row, Kind: g.Kind})
		}
	}
	assert.ElementsMatch(t, ledger.Issues, got)
}
