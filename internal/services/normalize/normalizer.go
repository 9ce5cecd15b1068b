// Package normalize converts raw source records into canonical economic events and
// classifies their impact, sentiment and confidence.
package normalize

import (
	"strings"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/pkg/util"

	"github.com/google/uuid"
)

var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("fxpulse:economic-event"))

// DefaultCredibleSources are sources whose events earn the credibility bonus. Entries
// match a source name exactly or as a host suffix.
var DefaultCredibleSources = []string{
	"fred", "alphavantage",
	"federalreserve.gov", "ecb.europa.eu", "bankofengland.co.uk", "boj.or.jp", "rba.gov.au",
	"bankofcanada.ca", "snb.ch", "rbnz.govt.nz", "pbc.gov.cn",
}

// Option configures Normalizer.
type Option func(*Normalizer)

// WithCredibleSources replaces the credible source list.
func WithCredibleSources(sources ...string) Option {
	return func(n *Normalizer) {
		n.credible = lowerAll(sources)
	}
}

// Normalizer is stateless apart from its configuration and safe for concurrent use.
type Normalizer struct {
	credible []string
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{credible: lowerAll(DefaultCredibleSources)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// draft collects the fields every variant resolves before classification.
type draft struct {
	origin      models.RecordOrigin
	currency    models.Currency
	related     []models.Currency
	title       string
	description string
	date        string
	impact      string
	actual      *float64
	forecast    *float64
	previous    *float64
	explicit    string
	confidence  *float64
	url         string
}

// Normalize converts rec into a canonical event. ok is false when the title is empty.
// The result depends only on rec, so normalizing the same record twice is identical.
func (n *Normalizer) Normalize(rec models.RawSourceRecord) (models.EconomicEvent, bool) {
	var d draft
	switch r := rec.(type) {
	case models.ScrapedRecord:
		d = draft{
			origin:   r.RecordOrigin,
			currency: NormalizeCurrency(r.Currency),
			title:    r.Title,
			date:     r.DateTime,
			impact:   r.Impact,
			actual:   util.ParseValuePtr(r.Actual),
			forecast: util.ParseValuePtr(r.Forecast),
			previous: util.ParseValuePtr(r.Previous),
			url:      r.URL,
		}
	case models.FeedItemRecord:
		d = draft{
			origin:      r.RecordOrigin,
			title:       r.Title,
			description: r.Description,
			date:        r.Date,
			impact:      r.Impact,
			actual:      util.ParseValuePtr(r.Actual),
			forecast:    util.ParseValuePtr(r.Forecast),
			previous:    util.ParseValuePtr(r.Previous),
			explicit:    r.Sentiment,
			url:         r.Link,
		}
		d.currency, d.related = feedCurrencies(r)
	case models.APIRowRecord:
		d = draft{
			origin:     r.RecordOrigin,
			currency:   NormalizeCurrency(r.Currency),
			title:      r.Title,
			date:       r.Date,
			impact:     r.Impact,
			actual:     r.Actual,
			forecast:   r.Forecast,
			previous:   r.Previous,
			confidence: r.Confidence,
		}
		if r.Unit != "" {
			d.description = "unit: " + r.Unit
		}
	default:
		return models.EconomicEvent{}, false
	}
	return n.build(d)
}

// NormalizeAll normalizes a batch, keeping only accepted events.
func (n *Normalizer) NormalizeAll(recs []models.RawSourceRecord) []models.EconomicEvent {
	out := make([]models.EconomicEvent, 0, len(recs))
	for _, rec := range recs {
		if ev, ok := n.Normalize(rec); ok {
			out = append(out, ev)
		}
	}
	return out
}

func (n *Normalizer) build(d draft) (models.EconomicEvent, bool) {
	title := util.CollapseSpace(d.title)
	if title == "" {
		return models.EconomicEvent{}, false
	}

	eventType := ClassifyEventType(title)
	if eventType == models.EventOther && d.description != "" {
		eventType = ClassifyEventType(title + " " + d.description)
	}

	impact := NormalizeImpact(d.impact)
	if strings.TrimSpace(d.impact) == "" {
		if ind, ok := LookupIndicator(eventType); ok {
			impact = ind.DefaultImpact
		}
	}

	date := util.ParseTimeDefault(d.date, d.origin.FetchedAt).UTC()

	ev := models.EconomicEvent{
		ID:                EventID(d.origin.Source, d.currency, title, date),
		Currency:          d.currency,
		RelatedCurrencies: d.related,
		EventType:         eventType,
		Title:             title,
		Description:       util.CollapseSpace(d.description),
		EventDate:         date,
		ActualValue:       d.actual,
		ExpectedValue:     d.forecast,
		PreviousValue:     d.previous,
		Impact:            impact,
		Source:            d.origin.Source,
		URL:               d.url,
		Simulated:         d.origin.Source == models.SourceSimulated,
	}
	classify(&ev, d.explicit)
	ev.ConfidenceScore = Confidence(impact, d.confidence, n.isCredible(d.origin.Source), d.actual != nil && d.forecast != nil)
	return ev, true
}

// classify sets Sentiment, SentimentScore and PriceImpact. An explicit label wins,
// then numeric deviation, then keywords. SentimentScore stays nil without evidence.
func classify(ev *models.EconomicEvent, explicit string) {
	if s, ok := ParseSentiment(explicit); ok {
		ev.Sentiment = s
		ev.SentimentScore = ptr(ScoreFromLabel(s))
		return
	}
	if d, ok := Deviation(ev.ActualValue, ev.ExpectedValue, ev.PreviousValue); ok {
		ev.Sentiment = SentimentFromDeviation(ev.EventType, d)
		ev.SentimentScore = ptr(ScoreFromDeviation(ev.EventType, d))
		ev.PriceImpact = ptr(Polarity(ev.EventType) * d)
		return
	}
	if s, ok := KeywordSentiment(ev.EventType, ev.Title+" "+ev.Description); ok {
		ev.Sentiment = s
		ev.SentimentScore = ptr(ScoreFromLabel(s))
		return
	}
	ev.Sentiment = models.Neutral
}

// EventID is a UUIDv5 over source, currency, title and event date.
func EventID(source string, c models.Currency, title string, date time.Time) string {
	name := strings.Join([]string{source, string(c), title, date.UTC().Format(time.RFC3339)}, "|")
	return uuid.NewSHA1(eventNamespace, []byte(name)).String()
}

func feedCurrencies(r models.FeedItemRecord) (models.Currency, []models.Currency) {
	detected := DetectCurrencies(r.Title + " " + r.Description + " " + strings.Join(r.Categories, " "))
	primary, ok := LookupCurrency(r.Country)
	if !ok {
		if len(detected) == 0 {
			return models.BaseCurrency, nil
		}
		primary = detected[0]
	}
	var related []models.Currency
	for _, c := range detected {
		if c != primary {
			related = append(related, c)
		}
	}
	return primary, related
}

func (n *Normalizer) isCredible(source string) bool {
	s := strings.ToLower(source)
	for _, c := range n.credible {
		if s == c || (strings.Contains(c, ".") && strings.HasSuffix(s, c)) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func ptr(v float64) *float64 { return &v }
