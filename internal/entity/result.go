package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ExtractionResult is produced fresh per receipt-processing attempt and never
// persisted by this subsystem.
type ExtractionResult struct {
	AttemptID    uuid.UUID              `json:"attempt_id"`
	Amount       Field[decimal.Decimal] `json:"amount"`
	Date         Field[time.Time]       `json:"date"`
	Time         Field[TimeOfDay]       `json:"time"`
	Merchant     Field[string]          `json:"merchant"`
	Preprocessed bool                   `json:"preprocessed"`
	Quality      float32                `json:"quality"`
	Duration     time.Duration          `json:"duration"`
}

// MerchantCandidate is a ranked fuzzy-match alternative for UI disambiguation.
type MerchantCandidate struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}
