package recognize

import (
	"regexp"
	"strings"
)

var (
	reDateish   = regexp.MustCompile(`\b\d{1,4}[/.-]\d{1,2}[/.-]\d{1,4}\b`)
	reCurrency  = regexp.MustCompile(`\b(usd|eur|gbp|cad|aud|inr|jpy)\b|[$£€]`)
	reAmountish = regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+[.,]\d{2}\b`)
)

// Quality is a naive heuristic score for recognized text based on common
// receipt artifacts (date-ish, currency-ish, amount-ish) plus length. The
// orchestrator uses it to decide whether a rotated retry pass is worth it.
func Quality(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDateish.MatchString(txtL) {
		score += 0.2
	}
	if reCurrency.MatchString(txtL) {
		score += 0.15
	}
	if reAmountish.MatchString(txtL) {
		score += 0.15
	}
	if len(strings.TrimSpace(txt)) > 120 {
		score += 0.1
	} // enough content
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
