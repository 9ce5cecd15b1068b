package models

import "time"

// FetchResult is what a source adapter returns: raw records plus variant bookkeeping.
type FetchResult struct {
	Records    []RawSourceRecord
	Dropped    int
	Variants   int
	VariantsOK int
	StatusCode int
}

// CollectionResult is the per-source outcome of one collection run. Diagnostic only.
type CollectionResult struct {
	Source         string          `json:"source"`
	Success        bool            `json:"success"`
	Events         []EconomicEvent `json:"-"`
	EventCount     int             `json:"event_count"`
	Error          string          `json:"error,omitempty"`
	ResponseTimeMs int64           `json:"response_time_ms"`
	StatusCode     int             `json:"status_code,omitempty"`
	Dropped        int             `json:"dropped"`
	Variants       int             `json:"variants"`
	VariantsOK     int             `json:"variants_ok"`
}

// CycleSummary describes one collect-and-score cycle.
type CycleSummary struct {
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Results    []CollectionResult       `json:"results"`
	EventCount int                      `json:"event_count"`
	Stored     int                      `json:"stored"`
	Strength   []CurrencyStrengthResult `json:"strength"`
	Power      []CurrencyPowerScore     `json:"power"`
}

// SourcesOK counts successful sources.
func (s *CycleSummary) SourcesOK() int {
	n := 0
	for _, r := range s.Results {
		if r.Success {
			n++
		}
	}
	return n
}
