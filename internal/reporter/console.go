package reporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"golang-ledger-validator/internal/models"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	issueStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func (rg *ReportGenerator) style(s lipgloss.Style, text string) string {
	if !rg.config.UseColors {
		return text
	}
	return s.Render(text)
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(report *Report, writer io.Writer) error {
	w := &errWriter{w: writer}

	w.printf("%s\n", rg.style(headingStyle, "LEDGER VALIDATION REPORT"))
	if report.RunID != "" {
		w.printf("Run:       %s\n", report.RunID)
	}
	if report.Input != "" {
		w.printf("Input:     %s\n", rg.style(pathStyle, report.Input))
	}
	if report.Output != "" {
		w.printf("Output:    %s\n", rg.style(pathStyle, report.Output))
	}
	if !report.GeneratedAt.IsZero() {
		w.printf("Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	}
	w.printf("Rows:      %d in, %d out\n", report.RowsIn, report.RowsOut)
	if report.Duration > 0 {
		w.printf("Duration:  %v\n", report.Duration)
	}
	w.printf("\n")

	if rg.config.IncludeSequence && report.Sequence != nil {
		w.printf("%s\n", rg.style(headingStyle, "=== IDENTIFIERS ==="))
		rg.printSequence(report, w)
		w.printf("\n")
	}

	if rg.config.IncludePruning && len(report.Pruned) > 0 {
		w.printf("%s\n", rg.style(headingStyle, "=== EMPTY ROWS REMOVED ==="))
		for _, p := range report.Pruned {
			w.printf("  %s: %d\n", p.Pair.String(), p.Removed)
		}
		w.printf("\n")
	}

	w.printf("%s\n", rg.style(headingStyle, "=== SUMMARY ==="))
	rg.printSummaryTable(report.Summary, w)

	if rg.config.IncludeRecords && !report.Summary.Clean() {
		w.printf("\n%s\n", rg.style(headingStyle, "=== ERROR RECORDS ==="))
		rg.printRecords(report.Summary, w)
	}

	return w.err
}

func (rg *ReportGenerator) printSequence(report *Report, w *errWriter) {
	seq := report.Sequence
	if !seq.Resequenced {
		w.printf("  %s '%s' is in serial order (%d rows)\n", rg.style(okStyle, "✓"), seq.Column, seq.Rows)
		return
	}

	w.printf("  %s '%s' was resequenced, %d of %d rows differed\n",
		rg.style(issueStyle, "✗"), seq.Column, len(seq.Mismatches), seq.Rows)
	for i, m := range seq.Mismatches {
		if rg.config.MaxRecords > 0 && i >= rg.config.MaxRecords {
			w.printf("    ... and %d more\n", len(seq.Mismatches)-rg.config.MaxRecords)
			break
		}
		w.printf("    %s\n", m.String())
	}
}

func (rg *ReportGenerator) printSummaryTable(summary *models.Summary, w *errWriter) {
	groups := rg.visibleGroups(summary)
	if summary.Clean() {
		w.printf("  %s %s\n", rg.style(okStyle, "✓"), CleanBody)
		if len(groups) == 0 {
			return
		}
	}

	width := 0
	for _, g := range groups {
		if lw := runewidth.StringWidth(g.Label()); lw > width {
			width = lw
		}
	}
	if limit := rg.config.TableMaxWidth - 12; width > limit {
		width = limit
	}

	for _, g := range groups {
		label := runewidth.FillRight(runewidth.Truncate(g.Label(), width, "..."), width)
		count := fmt.Sprintf("%5d", len(g.Records))
		if len(g.Records) > 0 {
			count = rg.style(issueStyle, count)
		}
		w.printf("  %s %s\n", label, count)
	}
	w.printf("  %s %5d\n", runewidth.FillRight("Total", width), summary.Total())
}

func (rg *ReportGenerator) printRecords(summary *models.Summary, w *errWriter) {
	msgWidth := rg.config.TableMaxWidth - 14
	for _, g := range summary.Groups() {
		if len(g.Records) == 0 {
			continue
		}
		w.printf("%s (%d):\n", g.Label(), len(g.Records))
		for i, rec := range g.Records {
			if rg.config.MaxRecords > 0 && i >= rg.config.MaxRecords {
				w.printf("  ... and %d more\n", len(g.Records)-rg.config.MaxRecords)
				break
			}
			msg := runewidth.Truncate(strings.TrimSpace(rec.Message), msgWidth, "...")
			w.printf("  Row %-6d %s\n", rec.Row, msg)
		}
	}
}

func (rg *ReportGenerator) visibleGroups(summary *models.Summary) []models.ErrorGroup {
	var groups []models.ErrorGroup
	for _, g := range summary.Groups() {
		if len(g.Records) == 0 && !rg.config.IncludeZeroGroups {
			continue
		}
		groups = append(groups, g)
	}
	return groups
}

// errWriter keeps the first write error so the report body stays readable.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
