package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	"FxPulse/pkg/config"
	xhttp "FxPulse/pkg/http"
	"FxPulse/pkg/util"
)

// DefaultFREDSeries is used when no series are configured.
var DefaultFREDSeries = []config.FREDSeries{
	{ID: "FEDFUNDS", Currency: "USD", Title: "Federal Funds Rate"},
	{ID: "CPIAUCSL", Currency: "USD", Title: "CPI All Items"},
	{ID: "UNRATE", Currency: "USD", Title: "Unemployment Rate"},
	{ID: "GDPC1", Currency: "USD", Title: "Real GDP"},
	{ID: "PAYEMS", Currency: "USD", Title: "Nonfarm Payrolls"},
	{ID: "ICSA", Currency: "USD", Title: "Initial Jobless Claims"},
	{ID: "ECBDFR", Currency: "EUR", Title: "ECB Deposit Facility Rate"},
	{ID: "CP0000EZ19M086NEST", Currency: "EUR", Title: "Euro Area HICP"},
	{ID: "LRHUTTTTGBM156S", Currency: "GBP", Title: "UK Unemployment Rate"},
	{ID: "IRSTCI01JPM156N", Currency: "JPY", Title: "Japan Policy Interest Rate"},
}

type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
	ErrorMessage string `json:"error_message"`
}

// FREDSource reads the latest two observations of each configured series.
type FREDSource struct {
	HTTPSourceBase
	apiKey  string
	baseURL string
	series  []config.FREDSeries
}

func NewFREDSource(client *xhttp.Client, apiKey, baseURL string, series []config.FREDSeries, opts ...BaseOption) *FREDSource {
	if len(series) == 0 {
		series = DefaultFREDSeries
	}
	return &FREDSource{HTTPSourceBase: newBase("fred", client, opts...), apiKey: apiKey, baseURL: baseURL, series: series}
}

func (s *FREDSource) Fetch(ctx context.Context) (*models.FetchResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%s: %w: FRED_API_KEY not set", s.name, repository.ErrSourceUnavailable)
	}

	byID := make(map[string]config.FREDSeries, len(s.series))
	variants := make([]variant, 0, len(s.series))
	for _, sr := range s.series {
		byID[sr.ID] = sr
		variants = append(variants, variant{
			label: sr.ID,
			url:   s.baseURL,
			query: map[string][]string{
				"series_id":  {sr.ID},
				"api_key":    {s.apiKey},
				"file_type":  {"json"},
				"sort_order": {"desc"},
				"limit":      {"2"},
			},
		})
	}

	return s.collect(ctx, variants, func(v variant, resp *xhttp.Response) ([]models.RawSourceRecord, int, error) {
		var body fredResponse
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return nil, 0, fmt.Errorf("decode fred: %w", err)
		}
		if body.ErrorMessage != "" {
			return nil, 0, fmt.Errorf("fred: %s", body.ErrorMessage)
		}

		sr := byID[v.label]
		var values []float64
		var dates []string
		for _, o := range body.Observations {
			// "." marks a missing observation.
			if val, ok := util.ParseValue(o.Value); ok && o.Value != "." {
				values = append(values, val)
				dates = append(dates, o.Date)
			}
		}
		if len(values) == 0 {
			return nil, 1, nil
		}
		rec := models.APIRowRecord{
			RecordOrigin: s.origin(""),
			SeriesID:     sr.ID,
			Currency:     sr.Currency,
			Title:        sr.Title,
			Date:         dates[0],
			Actual:       &values[0],
		}
		if len(values) > 1 {
			rec.Previous = &values[1]
		}
		return []models.RawSourceRecord{rec}, 0, nil
	})
}
