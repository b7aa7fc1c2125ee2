package extract

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/receiptdesk/receipt-pipeline/internal/common"
	"github.com/receiptdesk/receipt-pipeline/internal/entity"
	"github.com/receiptdesk/receipt-pipeline/internal/merchants"
)

// Line-scoring vocabularies. Token lists match whole words only; the
// substring lists are safe without boundaries.
var (
	headerTerms = []string{"RECEIPT", "INVOICE", "TAX INVOICE", "COPY", "DUPLICATE", "CREDIT NOTE"}

	companyFormTokens = []string{"LTD", "INC", "LLC", "PLC", "CO", "CORP", "GMBH", "PTY", "LIMITED", "COMPANY"}

	addressTokens     = []string{"ST", "RD", "AVE", "BLVD", "LN", "HWY"}
	addressSubstrings = []string{"STREET", "ROAD", "AVENUE", "BOULEVARD", "LANE", "DRIVE", "SUITE", "UNIT", "PO BOX"}

	contactTokens     = []string{"TEL", "PHONE", "FAX", "EMAIL", "MOBILE"}
	contactSubstrings = []string{"WWW", "HTTP", ".COM", "@"}
)

// MerchantExtractor identifies the business name near the top of the
// receipt. With a repository attached and enhanced mode on, the winning line
// is validated against the known-merchant set.
type MerchantExtractor struct {
	cfg    common.ExtractionConfig
	repo   merchants.Repository
	logger *slog.Logger
}

func NewMerchant(cfg common.ExtractionConfig, repo merchants.Repository, logger *slog.Logger) *MerchantExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MerchantExtractor{cfg: cfg, repo: repo, logger: logger}
}

// Extract scores the leading lines and returns the best business-name-like
// one, canonicalized through the merchant database when a validation match
// exists.
func (e *MerchantExtractor) Extract(ctx context.Context, text string) entity.Field[string] {
	line, score, ok := e.bestLine(text)
	if !ok {
		return entity.EmptyField[string]()
	}

	if e.cfg.Enhanced && e.repo != nil {
		match, found, err := e.repo.FindBestMatch(ctx, line, e.cfg.ValidationThreshold)
		if err != nil {
			e.logger.Warn("merchant.validate.failed", "error", err)
		} else if found {
			return entity.NewField(match.Name, float32((float64(score)+match.Similarity)/2))
		}
	}
	return entity.NewField(line, score)
}

// Suggest returns up to k ranked database alternatives for the extracted
// line, for UI disambiguation instead of a single best guess.
func (e *MerchantExtractor) Suggest(ctx context.Context, text string, k int) ([]entity.MerchantCandidate, error) {
	if e.repo == nil {
		return nil, nil
	}
	line, _, ok := e.bestLine(text)
	if !ok {
		return nil, nil
	}
	return e.repo.Suggest(ctx, line, e.cfg.SuggestionThreshold, k)
}

func (e *MerchantExtractor) bestLine(text string) (string, float32, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) > e.cfg.MerchantHeaderLines {
		lines = lines[:e.cfg.MerchantHeaderLines]
	}

	var (
		best      string
		bestScore float32
		found     bool
	)
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if utf8.RuneCountInString(line) < 3 || !containsLetter(line) {
			continue
		}
		score := scoreLine(line)
		if !found || score > bestScore {
			best, bestScore, found = line, score, true
		}
	}
	return best, bestScore, found
}

// scoreLine rates how business-name-like a line is, clamped to [0,1].
func scoreLine(line string) float32 {
	up := strings.ToUpper(line)
	tokens := splitTokens(up)
	score := 0.5

	if containsAny(up, headerTerms) {
		score -= 0.6
	}
	if hasToken(tokens, companyFormTokens) {
		score += 0.3
	}
	n := utf8.RuneCountInString(line)
	if n >= 5 && n <= 50 {
		score += 0.1
	} else if n > 50 {
		score -= 0.2
	}
	if containsLetter(line) && strings.Contains(line, " ") {
		score += 0.1
	}
	if digitDensity(line) > 0.3 {
		score -= 0.3
	}
	if hasToken(tokens, addressTokens) || containsAny(up, addressSubstrings) {
		score -= 0.4
	}
	if hasToken(tokens, contactTokens) || containsAny(up, contactSubstrings) {
		score -= 0.5
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return float32(score)
}

func splitTokens(up string) []string {
	return strings.FieldsFunc(up, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasToken(tokens, wanted []string) bool {
	for _, t := range tokens {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}

func containsAny(up string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(up, t) {
			return true
		}
	}
	return false
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func digitDensity(s string) float64 {
	total := 0
	digits := 0
	for _, r := range s {
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}
