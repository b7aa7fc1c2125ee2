package extract

import (
	"regexp"
	"strings"

	"github.com/receiptdesk/receipt-pipeline/constants"
)

// The pattern cascades are data-driven tables iterated in priority order so
// individual formats can be added and tested independently of scoring.

// amountPattern is one entry of the amount cascade. Matches carry a leading
// guard so fragments of longer digit runs never qualify; the trailing
// boundary is checked in amountMatchesIn rather than consumed here, so a
// single separator character between two amounts can serve as the trailing
// boundary of the first and the leading guard of the second.
type amountPattern struct {
	re    *regexp.Regexp
	group int
}

var amountPatterns = []amountPattern{
	// currency-tagged: symbol or ISO code, then 0-2 decimal places with
	// comma/space thousands separators and comma-or-period decimal marker
	{regexp.MustCompile(`(?i)(?:[$£€]|USD|EUR|GBP|CAD|AUD)\s*(\d{1,3}(?:[ ,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)`), 1},
	// bare numeric with a decimal marker
	{regexp.MustCompile(`(?:^|[^\d.,€£$])(\d{1,3}(?:[ ,]\d{3})+[.,]\d{1,2}|\d+[.,]\d{1,2})`), 1},
	// bare integers count only with a thousands separator; an undecorated
	// integer is indistinguishable from quantity or reference noise
	{regexp.MustCompile(`(?:^|[^\d.,])(\d{1,3}(?:,\d{3})+)`), 1},
}

// amountMatch is a raw candidate string with its offset in the line.
type amountMatch struct {
	raw string
	pos int
}

// amountMatchesIn runs the amount cascade over one line in priority order.
// A match followed by another digit or separator is a fragment of something
// longer ("17.10" out of 17.10.2025) and is discarded.
func amountMatchesIn(line string) []amountMatch {
	var out []amountMatch
	for _, p := range amountPatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(line, -1) {
			s, e := loc[2*p.group], loc[2*p.group+1]
			if s < 0 {
				continue
			}
			if e < len(line) && isAmountByte(line[e]) {
				continue
			}
			out = append(out, amountMatch{raw: line[s:e], pos: s})
		}
	}
	return out
}

func isAmountByte(b byte) bool {
	return b >= '0' && b <= '9' || b == '.' || b == ','
}

// datePattern is one entry of the date cascade. Month-name forms capture the
// name and resolve it against the month table, so garbage words drop out as
// invalid candidates rather than erroring.
type datePattern struct {
	re         *regexp.Regexp
	dayGroup   int
	monthGroup int
	yearGroup  int
	monthName  bool
}

var datePatterns = []datePattern{
	// D/M/YYYY
	{regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`), 1, 2, 3, false},
	// D-M-YYYY
	{regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`), 1, 2, 3, false},
	// D.M.YYYY
	{regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`), 1, 2, 3, false},
	// D MonthName YYYY
	{regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[ .,]+([A-Za-z]{3,9})[ .,]+(\d{4})\b`), 1, 2, 3, true},
	// D MonthName YY
	{regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[ .,]+([A-Za-z]{3,9})[ .,]+(\d{2})\b`), 1, 2, 3, true},
	// YYYY-M-D
	{regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`), 3, 2, 1, false},
	// D/M/YY
	{regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2})\b`), 1, 2, 3, false},
}

// monthNumber resolves a captured month field, numeric or named.
func monthNumber(field string, named bool) (int, bool) {
	if named {
		m, ok := constants.MonthNumbers[strings.ToUpper(field)]
		return m, ok
	}
	m := 0
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, false
		}
		m = m*10 + int(r-'0')
	}
	return m, m >= 1 && m <= 12
}

// timePattern matches 24-hour HH:MM[:SS] and 12-hour HH:MM AM/PM.
var timePattern = regexp.MustCompile(`\b(\d{1,2}):([0-5]\d)(?::([0-5]\d))?(?:\s*([AaPp])\.?[Mm]\.?)?`)

// Keyword matchers compiled once from the constants tables.

type amountKeywordMatcher struct {
	re    *regexp.Regexp
	boost float64
}

var amountKeywordMatchers = buildAmountKeywordMatchers()

func buildAmountKeywordMatchers() []amountKeywordMatcher {
	out := make([]amountKeywordMatcher, 0, len(constants.AmountKeywordFamilies))
	for _, fam := range constants.AmountKeywordFamilies {
		out = append(out, amountKeywordMatcher{
			re:    regexp.MustCompile(`\b(?:` + strings.Join(quoteAll(fam.Terms), "|") + `)\b`),
			boost: fam.Boost,
		})
	}
	return out
}

var amountExclusionRe = regexp.MustCompile(`\b(?:` + strings.Join(quoteAll(constants.AmountExclusionKeywords), "|") + `)\b`)

var dateKeywordRe = regexp.MustCompile(`\b(?:` + strings.Join(quoteAll(constants.DateKeywords), "|") + `)\b`)

func quoteAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = regexp.QuoteMeta(t)
	}
	return out
}
