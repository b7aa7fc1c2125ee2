// Package extract recovers amount, date/time, and merchant fields from
// recognized receipt text. All extractors are pure computation over the text
// and safe for concurrent use; none ever returns an error for bad input —
// malformed candidates are discarded and an empty field means "needs manual
// entry".
package extract

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/receiptdesk/receipt-pipeline/internal/common"
	"github.com/receiptdesk/receipt-pipeline/internal/entity"
)

type AmountExtractor struct {
	cfg    common.ExtractionConfig
	logger *slog.Logger
}

func NewAmount(cfg common.ExtractionConfig, logger *slog.Logger) *AmountExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &AmountExtractor{cfg: cfg, logger: logger}
}

type amountCandidate struct {
	value decimal.Decimal
	line  int
	pos   int
}

// before reports text order: earlier line, then earlier column.
func (c amountCandidate) before(o amountCandidate) bool {
	return c.line < o.line || (c.line == o.line && c.pos < o.pos)
}

// Extract runs candidate generation, keyword-anchored scoring, and the
// largest-value fallback over the recognized text.
func (e *AmountExtractor) Extract(text string) entity.Field[decimal.Decimal] {
	lines := strings.Split(text, "\n")

	// In enhanced mode, lines carrying an exclusion keyword leave the
	// candidate-search pool entirely.
	excluded := make([]bool, len(lines))
	if e.cfg.Enhanced {
		for i, ln := range lines {
			excluded[i] = amountExclusionRe.MatchString(strings.ToUpper(ln))
		}
	}

	// Candidate generation: all distinct normalized values, plus the per-line
	// values the keyword search inspects.
	seen := make(map[string]struct{})
	var distinct []amountCandidate
	lineValues := make([][]amountCandidate, len(lines))
	for i, ln := range lines {
		if excluded[i] {
			continue
		}
		for _, m := range amountMatchesIn(ln) {
			v, ok := e.normalize(m.raw)
			if !ok {
				continue
			}
			c := amountCandidate{value: v, line: i, pos: m.pos}
			lineValues[i] = append(lineValues[i], c)
			if _, dup := seen[v.String()]; !dup {
				seen[v.String()] = struct{}{}
				distinct = append(distinct, c)
			}
		}
	}
	if len(distinct) == 0 {
		return entity.EmptyField[decimal.Decimal]()
	}

	// Keyword-anchored search: a keyword line anchors the line itself plus
	// the next two lines. score = proximity x family boost; ties keep the
	// earliest candidate in the text.
	var (
		best       amountCandidate
		bestScore  float64
		bestOffset int
		found      bool
	)
	for i := range lines {
		if excluded[i] {
			continue
		}
		boost, ok := amountKeywordBoost(lines[i])
		if !ok {
			continue
		}
		for off := 0; off < len(e.cfg.ProximityWeights); off++ {
			j := i + off
			if j >= len(lines) {
				break
			}
			if excluded[j] {
				continue
			}
			for _, c := range lineValues[j] {
				score := e.cfg.ProximityWeights[off] * boost
				switch {
				case !found || score > bestScore:
					best, bestScore, bestOffset, found = c, score, off, true
				case score == bestScore && c.before(best):
					best, bestOffset = c, off
				}
			}
		}
	}
	if found {
		conf := e.cfg.AmountKeywordNearby
		if bestOffset == 0 {
			conf = e.cfg.AmountKeywordSameLine
		}
		return entity.NewField(best.value, conf)
	}

	// Fallback: the grand total is assumed to be the largest line item.
	max := distinct[0]
	for _, c := range distinct[1:] {
		if c.value.GreaterThan(max.value) {
			max = c
		}
	}
	return entity.NewField(max.value, e.cfg.FallbackConfidence)
}

// amountKeywordBoost returns the boost of the first keyword family present
// on the line. Families are ordered most-specific first, so GRAND TOTAL is
// never scored as plain TOTAL.
func amountKeywordBoost(line string) (float64, bool) {
	up := strings.ToUpper(line)
	for _, m := range amountKeywordMatchers {
		if m.re.MatchString(up) {
			return m.boost, true
		}
	}
	return 0, false
}

// normalize strips thousands separators (comma or space), treats a single
// remaining comma as the decimal point, and rejects values outside the
// configured range.
func (e *AmountExtractor) normalize(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(raw, " ", "")
	hasComma := strings.Contains(s, ",")
	hasPeriod := strings.Contains(s, ".")
	switch {
	case hasComma && hasPeriod:
		// commas can only be thousands separators here
		s = strings.ReplaceAll(s, ",", "")
	case hasComma:
		if strings.Count(s, ",") == 1 && len(s)-strings.Index(s, ",") <= 3 {
			// a single trailing comma group of 1-2 digits is the decimal marker
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if v.LessThan(decimal.NewFromFloat(e.cfg.MinAmount)) || v.GreaterThan(decimal.NewFromFloat(e.cfg.MaxAmount)) {
		return decimal.Decimal{}, false
	}
	return v, true
}
