package reporter

import (
	"fmt"
	"strings"

	"golang-ledger-validator/internal/models"
)

const (
	IssuesTitle = "Validation Issues"
	CleanTitle  = "Validation Complete"
	CleanBody   = "All date and balance values are valid."
)

// SummaryText returns the title and body of the end-of-run notice. With
// issues the body lists every group in discovery order, zero counts
// included.
func SummaryText(summary *models.Summary) (title, body string) {
	if summary == nil || summary.Clean() {
		return CleanTitle, CleanBody
	}

	var b strings.Builder
	b.WriteString("Validation found issues:\n\n")
	for _, g := range summary.Groups() {
		fmt.Fprintf(&b, "%s: %d\n", g.Label(), len(g.Records))
	}
	return IssuesTitle, b.String()
}
