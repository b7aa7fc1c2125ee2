package extract

import (
	"log/slog"
	"strings"
	"time"

	"github.com/receiptdesk/receipt-pipeline/constants"
	"github.com/receiptdesk/receipt-pipeline/internal/common"
	"github.com/receiptdesk/receipt-pipeline/internal/entity"
)

type DateTimeExtractor struct {
	cfg    common.ExtractionConfig
	logger *slog.Logger
}

func NewDateTime(cfg common.ExtractionConfig, logger *slog.Logger) *DateTimeExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DateTimeExtractor{cfg: cfg, logger: logger}
}

// DateTimeResult carries both fields so their confidences can be combined.
type DateTimeResult struct {
	Date entity.Field[time.Time]
	Time entity.Field[entity.TimeOfDay]
}

// Extract recovers the transaction date and wall-clock time from the text.
// now anchors the fallback validation window. Combined confidence: the
// average of both when both are present, 0.8x the date confidence with no
// time, 0.5x the time confidence with no date.
func (e *DateTimeExtractor) Extract(text string, now time.Time) DateTimeResult {
	date := e.extractDate(text, now)
	tod := e.extractTime(text)

	switch {
	case date.Found() && tod.Found():
		avg := (date.Confidence + tod.Confidence) / 2
		date.Confidence = avg
		tod.Confidence = avg
	case date.Found():
		date.Confidence *= e.cfg.DateOnlyFactor
	case tod.Found():
		tod.Confidence *= e.cfg.TimeOnlyFactor
	}
	return DateTimeResult{Date: date, Time: tod}
}

func (e *DateTimeExtractor) extractDate(text string, now time.Time) entity.Field[time.Time] {
	candidates := dateCandidatesIn(text)
	if len(candidates) == 0 {
		return entity.EmptyField[time.Time]()
	}

	// Keyword-anchored search: only the keyword line itself is inspected.
	for _, ln := range strings.Split(text, "\n") {
		if !dateKeywordRe.MatchString(strings.ToUpper(ln)) {
			continue
		}
		if hits := dateCandidatesIn(ln); len(hits) > 0 {
			return entity.NewField(hits[0], e.cfg.DateKeywordConfidence)
		}
	}

	// Fallback: the most recent candidate inside the validation window and
	// not after today.
	oldest := now.AddDate(-e.cfg.DateWindowYears, 0, 0)
	var best time.Time
	var ok bool
	for _, c := range candidates {
		if c.After(now) || c.Before(oldest) {
			continue
		}
		if !ok || c.After(best) {
			best, ok = c, true
		}
	}
	if !ok {
		return entity.EmptyField[time.Time]()
	}
	return entity.NewField(best, e.cfg.FallbackConfidence)
}

// dateCandidatesIn collects all distinct valid dates in text order. Invalid
// calendar constructions are silently discarded.
func dateCandidatesIn(text string) []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			day := atoiField(m[p.dayGroup])
			month, ok := monthNumber(m[p.monthGroup], p.monthName)
			if !ok {
				continue
			}
			year := atoiField(m[p.yearGroup])
			d, valid := resolveDate(day, month, year)
			if !valid {
				continue
			}
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

// resolveDate applies the two-digit-year pivot and rejects impossible
// calendar dates (e.g. 31 February) by round-tripping through time.Date.
func resolveDate(day, month, year int) (time.Time, bool) {
	if year < 100 {
		if year < constants.TwoDigitYearPivot {
			year += 2000
		} else {
			year += 1900
		}
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// extractTime returns the first valid time in the text, 24-hour or 12-hour.
func (e *DateTimeExtractor) extractTime(text string) entity.Field[entity.TimeOfDay] {
	for _, m := range timePattern.FindAllStringSubmatch(text, -1) {
		hour := atoiField(m[1])
		minute := atoiField(m[2])
		second := 0
		if m[3] != "" {
			second = atoiField(m[3])
		}
		meridiem := strings.ToUpper(m[4])
		switch meridiem {
		case "A":
			if hour < 1 || hour > 12 {
				continue
			}
			if hour == 12 {
				hour = 0
			}
		case "P":
			if hour < 1 || hour > 12 {
				continue
			}
			if hour != 12 {
				hour += 12
			}
		default:
			if hour > 23 {
				continue
			}
		}
		return entity.NewField(entity.TimeOfDay{Hour: hour, Minute: minute, Second: second}, e.cfg.TimeConfidence)
	}
	return entity.EmptyField[entity.TimeOfDay]()
}

func atoiField(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}
