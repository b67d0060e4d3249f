// Package extraction pulls structured facts out of filing sections with the
// text model and persists them per fiscal year.
package extraction

import (
	"encoding/json"
	"time"

	"sectracker/internal/filings"
	id "sectracker/pkg/domain"
)

// Record is one extraction result, keyed by (ticker, section, fiscal year).
type Record struct {
	Ticker     id.Ticker       `json:"ticker"`
	Section    filings.Section `json:"section"`
	FiscalYear string          `json:"fiscal_year"`
	FilingDate string          `json:"filing_date"`
	Data       json.RawMessage `json:"data"`

	// Usage accounting for the model call that produced Data.
	Model       string  `json:"model"`
	CostUSD     float64 `json:"cost_usd"`
	TotalTokens int     `json:"total_tokens"`
	LatencyMS   float64 `json:"latency_ms"`

	ExtractedAt time.Time `json:"extracted_at"`
}

// YearResult is one period of a historical extraction. A period can fail
// independently without sinking the others.
type YearResult struct {
	FiscalYear string          `json:"fiscal_year"`
	FilingDate string          `json:"filing_date"`
	Data       json.RawMessage `json:"data,omitempty"`
	CostUSD    float64         `json:"cost_usd"`
	Error      string          `json:"error,omitempty"`
}

// History is a multi-period extraction with aggregate spend.
type History struct {
	Ticker         id.Ticker       `json:"ticker"`
	Section        filings.Section `json:"section"`
	YearsRequested int             `json:"years_requested"`
	YearsFound     int             `json:"years_found"`
	Years          []YearResult    `json:"years"`
	TotalCostUSD   float64         `json:"total_cost_usd"`
}
