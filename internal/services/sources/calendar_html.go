package sources

import (
	"bytes"
	"context"
	"fmt"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/services/normalize"
	xhttp "FxPulse/pkg/http"

	"github.com/PuerkitoBio/goquery"
)

// calendarRowSelectors are tried in order; the first one that matches any row is used.
var calendarRowSelectors = []string{
	"table#economicCalendarData tr.js-event-item",
	"table.calendar__table tr.calendar__row",
	"table.ecEventsTable tr[event_attr_id]",
	"table tr[data-event-datetime]",
}

var calendarHTMLFields = struct {
	Currency, Title, Impact, Actual, Forecast, Previous, DateTime []Rule[*goquery.Selection]
}{
	Currency: []Rule[*goquery.Selection]{Text("td.flagCur"), Text("td.calendar__currency"), Text("td.currency"),
		Attr("[data-currency]", "data-currency")},
	Title: []Rule[*goquery.Selection]{Text("td.event a"), Text("td.event"), Text("td.calendar__event .calendar__event-title"),
		Text("td.calendar__event"), Attr("", "data-event-title")},
	Impact: []Rule[*goquery.Selection]{Attr("td.sentiment", "title"), Count("td.sentiment i.grayFullBullishIcon", "bull"),
		Attr("td.calendar__impact span", "title"), Attr("td.calendar__impact span", "class"), Text("td.impact")},
	Actual:   []Rule[*goquery.Selection]{Text("td.act"), Text("td.calendar__actual"), Text("td.actual")},
	Forecast: []Rule[*goquery.Selection]{Text("td.fore"), Text("td.calendar__forecast"), Text("td.forecast")},
	Previous: []Rule[*goquery.Selection]{Text("td.prev"), Text("td.calendar__previous"), Text("td.previous")},
	DateTime: []Rule[*goquery.Selection]{Attr("", "data-event-datetime"), Attr("td.time", "data-datetime"),
		Attr("time", "datetime")},
}

// CalendarHTMLSource scrapes economic-calendar HTML tables.
type CalendarHTMLSource struct {
	HTTPSourceBase
	urls []string
}

func NewCalendarHTMLSource(client *xhttp.Client, urls []string, opts ...BaseOption) *CalendarHTMLSource {
	return &CalendarHTMLSource{HTTPSourceBase: newBase("calendar_html", client, opts...), urls: urls}
}

func (s *CalendarHTMLSource) Fetch(ctx context.Context) (*models.FetchResult, error) {
	variants := make([]variant, 0, len(s.urls))
	for _, u := range s.urls {
		variants = append(variants, variant{label: variantLabel(u), url: u})
	}
	return s.collect(ctx, variants, s.parse)
}

func (s *CalendarHTMLSource) parse(v variant, resp *xhttp.Response) ([]models.RawSourceRecord, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse html: %w", err)
	}

	var rows *goquery.Selection
	for _, sel := range calendarRowSelectors {
		if rows = doc.Find(sel); rows.Length() > 0 {
			break
		}
	}
	if rows == nil || rows.Length() == 0 {
		return nil, 0, fmt.Errorf("no calendar rows found")
	}

	origin := s.origin("")
	var recs []models.RawSourceRecord
	dropped := 0
	rows.Each(func(_ int, row *goquery.Selection) {
		title := First(row, calendarHTMLFields.Title...)
		cur, ok := normalize.LookupCurrency(First(row, calendarHTMLFields.Currency...))
		if !ok || title == "" {
			dropped++
			return
		}
		recs = append(recs, models.ScrapedRecord{
			RecordOrigin: origin,
			Currency:     string(cur),
			Title:        title,
			Impact:       First(row, calendarHTMLFields.Impact...),
			Actual:       First(row, calendarHTMLFields.Actual...),
			Forecast:     First(row, calendarHTMLFields.Forecast...),
			Previous:     First(row, calendarHTMLFields.Previous...),
			DateTime:     First(row, calendarHTMLFields.DateTime...),
			URL:          v.url,
		})
	})
	return recs, dropped, nil
}
