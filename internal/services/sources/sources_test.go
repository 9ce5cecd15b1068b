package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	"FxPulse/pkg/config"
	xhttp "FxPulse/pkg/http"
)

var testNow = time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)

func testClient() *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(2*time.Second), xhttp.WithRetry(0, time.Millisecond))
}

func clock() func() time.Time { return func() time.Time { return testNow } }

const calendarJSON = `[
  {"title":"Unemployment Claims","country":"USD","date":"2024-03-07T08:30:00-05:00","impact":"High","forecast":"217K","previous":"215K","actual":"217K"},
  {"title":"Some Holiday","country":"XYZ","date":"2024-03-07T00:00:00-05:00","impact":"Holiday"},
  {"title":"","country":"EUR","impact":"Low"},
  {"event":"Main Refinancing Rate","currency":"EUR","datetime":"2024-03-07T13:15:00Z","importance":"3","consensus":"4.50%","prior":"4.50%"}
]`

func TestCalendarJSONKeepsSuccessfulVariants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/thisweek.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(calendarJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewCalendarJSONSource(testClient(), []string{srv.URL + "/thisweek.json", srv.URL + "/nextweek.json"}, WithClock(clock()))
	res, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.Variants != 2 || res.VariantsOK != 1 {
		t.Fatalf("variants %d/%d, want 1/2", res.VariantsOK, res.Variants)
	}
	if len(res.Records) != 2 || res.Dropped != 2 {
		t.Fatalf("records=%d dropped=%d", len(res.Records), res.Dropped)
	}
	second := res.Records[1].(models.FeedItemRecord)
	if second.Title != "Main Refinancing Rate" || second.Country != "EUR" || second.Forecast != "4.50%" || second.Impact != "3" {
		t.Fatalf("fallback keys not applied: %+v", second)
	}
	if second.Source != "calendar_json" || !second.FetchedAt.Equal(testNow) {
		t.Fatalf("origin = %+v", second.RecordOrigin)
	}
}

func TestAllVariantsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	src := NewCalendarJSONSource(testClient(), []string{srv.URL + "/a", srv.URL + "/b"})
	res, err := src.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if res.VariantsOK != 0 || len(res.Records) != 0 || res.StatusCode != http.StatusGone {
		t.Fatalf("unexpected result %+v", res)
	}
}

const calendarHTML = `<html><body>
<table id="economicCalendarData">
 <tr class="js-event-item" data-event-datetime="2024/03/07 13:30:00">
  <td class="time">13:30</td>
  <td class="left flagCur noWrap"><span title="United States" class="ceFlags USA"></span> USD</td>
  <td class="left textNum sentiment noWrap" title="High Volatility Expected"><i class="grayFullBullishIcon"></i><i class="grayFullBullishIcon"></i><i class="grayFullBullishIcon"></i></td>
  <td class="left event"><a href="/x">Nonfarm Payrolls (Feb)</a></td>
  <td class="bold act blackFont">275K</td>
  <td class="fore">200K</td>
  <td class="prev">229K</td>
 </tr>
 <tr class="js-event-item">
  <td class="left flagCur noWrap">MXN</td>
  <td class="left event">Mexican CPI</td>
 </tr>
 <tr class="js-event-item">
  <td class="left flagCur noWrap">GBP</td>
  <td class="left textNum sentiment noWrap"><i class="grayFullBullishIcon"></i><i class="grayFullBullishIcon"></i></td>
  <td class="left event">Halifax HPI m/m</td>
  <td class="act">&nbsp;</td>
  <td class="fore">0.3%</td>
 </tr>
</table></body></html>`

func TestCalendarHTMLExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(calendarHTML))
	}))
	defer srv.Close()

	res, err := NewCalendarHTMLSource(testClient(), []string{srv.URL}).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(res.Records) != 2 || res.Dropped != 1 {
		t.Fatalf("records=%d dropped=%d", len(res.Records), res.Dropped)
	}
	nfp := res.Records[0].(models.ScrapedRecord)
	want := models.ScrapedRecord{
		RecordOrigin: nfp.RecordOrigin,
		Currency:     "USD",
		Title:        "Nonfarm Payrolls (Feb)",
		Impact:       "High Volatility Expected",
		Actual:       "275K",
		Forecast:     "200K",
		Previous:     "229K",
		DateTime:     "2024/03/07 13:30:00",
		URL:          srv.URL,
	}
	if nfp != want {
		t.Fatalf("got  %+v\nwant %+v", nfp, want)
	}
	gbp := res.Records[1].(models.ScrapedRecord)
	if gbp.Impact != "bull2" || gbp.Actual != "" {
		t.Fatalf("second row: %+v", gbp)
	}
}

func TestCalendarHTMLWithoutRowsFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>captcha</p></body></html>"))
	}))
	defer srv.Close()

	if _, err := NewCalendarHTMLSource(testClient(), []string{srv.URL}).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for a page without calendar rows")
	}
}

func TestFREDMissingKeyIsUnavailableWithoutIO(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	defer srv.Close()

	_, err := NewFREDSource(testClient(), "", srv.URL, nil).Fetch(context.Background())
	if !errors.Is(err, repository.ErrSourceUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if hits.Load() != 0 {
		t.Fatal("unavailable source must not touch the network")
	}
}

func TestFREDLatestObservation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "k" || r.URL.Query().Get("sort_order") != "desc" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"observations":[{"date":"2024-02-01","value":"."},{"date":"2024-01-01","value":"3.7"},{"date":"2023-12-01","value":"3.9"}]}`))
	}))
	defer srv.Close()

	series := []config.FREDSeries{{ID: "UNRATE", Currency: "USD", Title: "Unemployment Rate"}}
	res, err := NewFREDSource(testClient(), "k", srv.URL, series).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d", len(res.Records))
	}
	rec := res.Records[0].(models.APIRowRecord)
	if rec.Date != "2024-01-01" || *rec.Actual != 3.7 || rec.Previous == nil || *rec.Previous != 3.9 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestAlphaVantageThrottleNoteFailsVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("function") {
		case "CPI":
			_, _ = w.Write([]byte(`{"name":"Consumer Price Index for all Urban Consumers","unit":"index 1982-1984=100","data":[{"date":"2024-01-01","value":"308.417"},{"date":"2023-12-01","value":"306.746"}]}`))
		default:
			_, _ = w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`))
		}
	}))
	defer srv.Close()

	res, err := NewAlphaVantageSource(testClient(), "k", srv.URL, []string{"REAL_GDP", "CPI"}).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.VariantsOK != 1 || len(res.Records) != 1 {
		t.Fatalf("variants ok=%d records=%d", res.VariantsOK, len(res.Records))
	}
	rec := res.Records[0].(models.APIRowRecord)
	if rec.Currency != "USD" || rec.SeriesID != "CPI" || rec.Unit == "" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Press releases</title>
<item><title>Bank of Japan raises policy rate for the first time in 17 years</title><link>https://example.org/1</link>
<pubDate>Tue, 19 Mar 2024 04:00:00 GMT</pubDate><description>The yen weakened after the decision.</description></item>
<item><title>Monetary policy statement</title><link>https://example.org/2</link><pubDate>Wed, 20 Mar 2024 18:00:00 GMT</pubDate></item>
<item><title></title><link>https://example.org/3</link></item>
</channel></rss>`

func TestRSSTagsCurrencies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	res, err := NewRSSSource(testClient(), []config.RSSFeed{{URL: srv.URL + "/feed.xml", Currency: "USD"}}).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(res.Records) != 2 || res.Dropped != 1 {
		t.Fatalf("records=%d dropped=%d", len(res.Records), res.Dropped)
	}
	first := res.Records[0].(models.FeedItemRecord)
	if first.Country != "JPY" || first.Date != "2024-03-19T04:00:00Z" {
		t.Fatalf("first item: %+v", first)
	}
	if second := res.Records[1].(models.FeedItemRecord); second.Country != "USD" {
		t.Fatalf("feed default currency not applied: %+v", second)
	}
}

type stubSource struct {
	name  string
	res   *models.FetchResult
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Fetch(context.Context) (*models.FetchResult, error) {
	s.calls++
	return s.res, s.err
}

func TestChainFallsBackWhenPrimaryFails(t *testing.T) {
	rec := models.ScrapedRecord{Currency: "USD", Title: "CPI"}
	primary := &stubSource{name: "json", res: &models.FetchResult{Variants: 2}, err: errors.New("down")}
	fallback := &stubSource{name: "html", res: &models.FetchResult{Variants: 1, VariantsOK: 1, Records: []models.RawSourceRecord{rec}}}

	res, err := NewChain("calendar", primary, fallback).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(res.Records) != 1 || res.Variants != 3 || res.VariantsOK != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestChainSkipsFallbackWhenPrimaryHasRecords(t *testing.T) {
	rec := models.ScrapedRecord{Currency: "USD", Title: "CPI"}
	primary := &stubSource{name: "json", res: &models.FetchResult{Records: []models.RawSourceRecord{rec}}}
	fallback := &stubSource{name: "html"}

	if _, err := NewChain("calendar", primary, fallback).Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fallback.calls != 0 {
		t.Fatal("fallback should not run")
	}
}

func TestChainAllFail(t *testing.T) {
	a := &stubSource{name: "a", err: repository.ErrSourceUnavailable}
	b := &stubSource{name: "b", res: &models.FetchResult{}}

	_, err := NewChain("calendar", a, b).Fetch(context.Background())
	if !errors.Is(err, repository.ErrSourceUnavailable) || !errors.Is(err, repository.ErrNoRecords) {
		t.Fatalf("err = %v", err)
	}
}

func TestSimulatedIsDeterministicAndTagged(t *testing.T) {
	s := NewSimulatedSource([]models.Currency{models.USD, models.EUR}, 3, 7, clock())
	a, _ := s.Fetch(context.Background())
	b, _ := s.Fetch(context.Background())
	if len(a.Records) != 6 {
		t.Fatalf("records = %d", len(a.Records))
	}
	for i := range a.Records {
		ra, rb := a.Records[i].(models.APIRowRecord), b.Records[i].(models.APIRowRecord)
		if ra.Source != models.SourceSimulated {
			t.Fatalf("record %d not tagged: %s", i, ra.Source)
		}
		if ra.Title != rb.Title || ra.Date != rb.Date || *ra.Actual != *rb.Actual {
			t.Fatalf("record %d differs between runs", i)
		}
	}
}

func TestFirstRule(t *testing.T) {
	row := map[string]any{"a": "", "b": 3.5, "nested": map[string]any{"c": "x"}}
	if got := First(row, Key("a"), Key("b")); got != "3.5" {
		t.Fatalf("got %q", got)
	}
	if got := First(row, Key("missing"), Key("nested", "c")); got != "x" {
		t.Fatalf("got %q", got)
	}
	if got := First(row, Key("nested")); got != "" {
		t.Fatalf("objects are not values, got %q", got)
	}
}

func TestPacerBounds(t *testing.T) {
	p := NewPacer(10*time.Millisecond, 20*time.Millisecond)
	for i := 0; i < 100; i++ {
		if d := p.Next(); d < 10*time.Millisecond || d > 20*time.Millisecond {
			t.Fatalf("delay %s out of bounds", d)
		}
	}
	if NewPacer(0, 0).Next() != 0 {
		t.Fatal("zero pacer should not delay")
	}
}
