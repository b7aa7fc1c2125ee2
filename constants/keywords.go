package constants

// AmountKeywordFamily groups total-like keywords that share a scoring boost.
type AmountKeywordFamily struct {
	Terms []string
	Boost float64
}

// AmountKeywordFamilies is checked in order; more specific families first so
// "GRAND TOTAL" is never swallowed by the plain "TOTAL" family. Garbled
// spellings cover the usual OCR digit/letter swaps.
var AmountKeywordFamilies = []AmountKeywordFamily{
	{Terms: []string{"GRAND TOTAL", "GRANDTOTAL", "GRAND T0TAL"}, Boost: 1.2},
	{Terms: []string{"FINAL TOTAL", "FINAL AMOUNT", "FINAL T0TAL"}, Boost: 1.1},
	{Terms: []string{"SUBTOTAL", "SUB-TOTAL", "SUB TOTAL"}, Boost: 0.7},
	{Terms: []string{
		"TOTAL", "T0TAL", "TOTA1", "TOTAI",
		"AMOUNT DUE", "AMOUNT", "AM0UNT",
		"BALANCE DUE", "BALANCE",
		"DUE", "PAYABLE", "PAID",
	}, Boost: 1.0},
}

// AmountExclusionKeywords mark lines whose numbers are never the grand total.
var AmountExclusionKeywords = []string{
	"TAX", "VAT", "GST", "TIP", "GRATUITY", "SUBTOTAL", "SUB-TOTAL",
	"DISCOUNT", "CHANGE",
}

// DateKeywords anchor a same-line search for a transaction date.
var DateKeywords = []string{
	"DATE", "TIME", "TRANSACTION", "PURCHASE", "SALE", "RECEIPT",
}

// MonthNumbers maps full and three-letter month names (uppercase) to 1..12.
var MonthNumbers = map[string]int{
	"JANUARY": 1, "FEBRUARY": 2, "MARCH": 3, "APRIL": 4, "MAY": 5,
	"JUNE": 6, "JULY": 7, "AUGUST": 8, "SEPTEMBER": 9, "OCTOBER": 10,
	"NOVEMBER": 11, "DECEMBER": 12,
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "JUN": 6, "JUL": 7,
	"AUG": 8, "SEP": 9, "SEPT": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// TwoDigitYearPivot disambiguates YY years: <50 resolves to 2000+YY,
// everything else to 1900+YY.
const TwoDigitYearPivot = 50
