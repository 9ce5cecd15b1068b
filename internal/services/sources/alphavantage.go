package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	xhttp "FxPulse/pkg/http"
	"FxPulse/pkg/util"
)

var alphaVantageFields = struct {
	Title, Unit []Rule[map[string]any]
}{
	Title: []Rule[map[string]any]{Key("name"), Key("title")},
	Unit:  []Rule[map[string]any]{Key("unit"), Key("units")},
}

// AlphaVantageSource reads US economic indicators, one function per variant.
type AlphaVantageSource struct {
	HTTPSourceBase
	apiKey    string
	baseURL   string
	functions []string
}

func NewAlphaVantageSource(client *xhttp.Client, apiKey, baseURL string, functions []string, opts ...BaseOption) *AlphaVantageSource {
	return &AlphaVantageSource{
		HTTPSourceBase: newBase("alphavantage", client, opts...),
		apiKey:         apiKey,
		baseURL:        baseURL,
		functions:      functions,
	}
}

func (s *AlphaVantageSource) Fetch(ctx context.Context) (*models.FetchResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%s: %w: ALPHAVANTAGE_API_KEY not set", s.name, repository.ErrSourceUnavailable)
	}

	variants := make([]variant, 0, len(s.functions))
	for _, fn := range s.functions {
		variants = append(variants, variant{
			label: fn,
			url:   s.baseURL,
			query: map[string][]string{"function": {fn}, "apikey": {s.apiKey}},
		})
	}
	return s.collect(ctx, variants, s.parse)
}

func (s *AlphaVantageSource) parse(v variant, resp *xhttp.Response) ([]models.RawSourceRecord, int, error) {
	var body map[string]any
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, 0, fmt.Errorf("decode alphavantage: %w", err)
	}
	// Throttled or rejected calls still answer 200 with a message instead of data.
	for _, k := range []string{"Note", "Information", "Error Message"} {
		if msg, ok := body[k].(string); ok {
			return nil, 0, fmt.Errorf("alphavantage: %s", msg)
		}
	}

	data, _ := body["data"].([]any)
	var values []float64
	var dates []string
	for _, item := range data {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if val, ok := util.ParseValue(Key("value")(row)); ok {
			values = append(values, val)
			dates = append(dates, Key("date")(row))
		}
		if len(values) == 2 {
			break
		}
	}
	if len(values) == 0 {
		return nil, 1, nil
	}

	title := First(body, alphaVantageFields.Title...)
	if title == "" {
		title = strings.ReplaceAll(v.label, "_", " ")
	}
	rec := models.APIRowRecord{
		RecordOrigin: s.origin(""),
		SeriesID:     v.label,
		Currency:     string(models.USD),
		Title:        title,
		Date:         dates[0],
		Actual:       &values[0],
		Unit:         First(body, alphaVantageFields.Unit...),
	}
	if len(values) > 1 {
		rec.Previous = &values[1]
	}
	return []models.RawSourceRecord{rec}, 0, nil
}
