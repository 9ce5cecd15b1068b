package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/services/normalize"
	xhttp "FxPulse/pkg/http"
)

// calendarJSONFields are tried in order per field; feeds rename keys between versions.
var calendarJSONFields = struct {
	Title, Country, Date, Impact, Actual, Forecast, Previous []Rule[map[string]any]
}{
	Title:    []Rule[map[string]any]{Key("title"), Key("event"), Key("name")},
	Country:  []Rule[map[string]any]{Key("country"), Key("currency"), Key("ccy")},
	Date:     []Rule[map[string]any]{Key("date"), Key("datetime"), Key("timestamp"), Key("time")},
	Impact:   []Rule[map[string]any]{Key("impact"), Key("importance"), Key("volatility")},
	Actual:   []Rule[map[string]any]{Key("actual"), Key("value")},
	Forecast: []Rule[map[string]any]{Key("forecast"), Key("consensus"), Key("estimate")},
	Previous: []Rule[map[string]any]{Key("previous"), Key("prior")},
}

// CalendarJSONSource reads weekly economic-calendar JSON feeds.
type CalendarJSONSource struct {
	HTTPSourceBase
	urls []string
}

func NewCalendarJSONSource(client *xhttp.Client, urls []string, opts ...BaseOption) *CalendarJSONSource {
	return &CalendarJSONSource{HTTPSourceBase: newBase("calendar_json", client, opts...), urls: urls}
}

func (s *CalendarJSONSource) Fetch(ctx context.Context) (*models.FetchResult, error) {
	variants := make([]variant, 0, len(s.urls))
	for _, u := range s.urls {
		variants = append(variants, variant{label: variantLabel(u), url: u})
	}
	return s.collect(ctx, variants, s.parse)
}

func (s *CalendarJSONSource) parse(v variant, resp *xhttp.Response) ([]models.RawSourceRecord, int, error) {
	rows, err := calendarRows(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	origin := s.origin("")
	recs := make([]models.RawSourceRecord, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		title := First(row, calendarJSONFields.Title...)
		cur, ok := normalize.LookupCurrency(First(row, calendarJSONFields.Country...))
		if !ok || title == "" {
			dropped++
			continue
		}
		recs = append(recs, models.FeedItemRecord{
			RecordOrigin: origin,
			Title:        title,
			Country:      string(cur),
			Date:         First(row, calendarJSONFields.Date...),
			Impact:       First(row, calendarJSONFields.Impact...),
			Actual:       First(row, calendarJSONFields.Actual...),
			Forecast:     First(row, calendarJSONFields.Forecast...),
			Previous:     First(row, calendarJSONFields.Previous...),
			Link:         v.url,
		})
	}
	return recs, dropped, nil
}

// calendarRows accepts a bare array or an object wrapping it under a common key.
func calendarRows(body []byte) ([]map[string]any, error) {
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}
	for _, k := range []string{"events", "data", "calendar", "result"} {
		raw, ok := wrapped[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &rows); err == nil {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("decode calendar: no event array found")
}

func variantLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host + u.Path
}
