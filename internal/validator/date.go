package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// day/month/year with a four digit year: which of the first two fields
	// is the month cannot be decided.
	ambiguousPattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

	trailingYearPattern = regexp.MustCompile(`^(\d{1,2})[-.](\d{1,2})[-.](\d{4})$`)

	separators = strings.NewReplacer(".", "/", "-", "/")
)

// DateResult is the outcome of normalizing one date string.
type DateResult struct {
	// Value is the canonical YYYY/MM/DD form when Error is empty, and the
	// separator-substituted input otherwise.
	Value string
	Error string
}

// DateNormalizer validates BS date strings against a year range.
type DateNormalizer struct {
	minYear            int
	maxYear            int
	acceptTrailingYear bool
}

// NewDateNormalizer creates a normalizer accepting years in [minYear, maxYear].
func NewDateNormalizer(minYear, maxYear int, acceptTrailingYear bool) *DateNormalizer {
	return &DateNormalizer{
		minYear:            minYear,
		maxYear:            maxYear,
		acceptTrailingYear: acceptTrailingYear,
	}
}

// Normalize checks a trimmed, non-empty date string.
func (n *DateNormalizer) Normalize(raw string) DateResult {
	digits := toASCIIDigits(raw)
	val := separators.Replace(raw)

	rotated := false
	if n.acceptTrailingYear {
		if m := trailingYearPattern.FindStringSubmatch(digits); m != nil {
			digits = m[3] + "/" + m[1] + "/" + m[2]
			rotated = true
		}
	}
	digits = separators.Replace(digits)

	if !rotated && ambiguousPattern.MatchString(digits) {
		return DateResult{Value: val, Error: fmt.Sprintf("Ambiguous format: '%s'", val)}
	}

	parts := strings.Split(digits, "/")
	if len(parts) != 3 {
		return DateResult{Value: val, Error: fmt.Sprintf("Invalid format: '%s'", val)}
	}

	var fields [3]dateField
	for i, p := range parts {
		f, ok := parseDateField(p)
		if !ok {
			return DateResult{Value: val, Error: fmt.Sprintf("Non-numeric date: '%s'", val)}
		}
		fields[i] = f
	}
	y, m, d := fields[0], fields[1], fields[2]

	var b strings.Builder
	if !y.within(n.minYear, n.maxYear) {
		fmt.Fprintf(&b, "Invalid year: %s. ", y.text)
	}
	if !m.within(1, 12) {
		fmt.Fprintf(&b, "Invalid month: %s. ", m.text)
	}
	if !d.within(1, 32) {
		fmt.Fprintf(&b, "Invalid day: %s. ", d.text)
	}

	if b.Len() > 0 {
		return DateResult{Value: val, Error: b.String()}
	}
	return DateResult{Value: fmt.Sprintf("%04d/%02d/%02d", y.value, m.value, d.value)}
}

// dateField is one numeric part of a date. Parts too large for an int keep
// only their text and are out of every range.
type dateField struct {
	value    int
	text     string
	overflow bool
}

func (f dateField) within(lo, hi int) bool {
	return !f.overflow && f.value >= lo && f.value <= hi
}

func parseDateField(s string) (dateField, bool) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err == nil {
		return dateField{value: v, text: strconv.Itoa(v)}, true
	}
	if !errors.Is(err, strconv.ErrRange) {
		return dateField{}, false
	}

	sign := ""
	switch s[0] {
	case '-':
		sign = "-"
		s = s[1:]
	case '+':
		s = s[1:]
	}
	return dateField{text: sign + strings.TrimLeft(s, "0"), overflow: true}, true
}

// toASCIIDigits maps Devanagari digits to ASCII so dates typed with a
// Nepali keyboard parse the same way.
func toASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '०' && r <= '९' {
			return '0' + (r - '०')
		}
		return r
	}, s)
}
