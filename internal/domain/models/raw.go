package models

import "time"

// SourceKind discriminates RawSourceRecord variants.
type SourceKind string

const (
	KindScraped  SourceKind = "scraped"
	KindFeedItem SourceKind = "feed_item"
	KindAPIRow   SourceKind = "api_row"
)

// RawSourceRecord is what an adapter extracts before normalization. It is a closed set:
// only the variants in this file implement it.
type RawSourceRecord interface {
	Tag() SourceKind
	Origin() RecordOrigin
	rawRecord()
}

// RecordOrigin is carried by every variant. FetchedAt is the fallback event date.
type RecordOrigin struct {
	Source    string
	FetchedAt time.Time
}

func (o RecordOrigin) Origin() RecordOrigin { return o }

// ScrapedRecord holds string cells read from an HTML calendar table.
type ScrapedRecord struct {
	RecordOrigin
	Currency string
	Title    string
	Impact   string
	Actual   string
	Forecast string
	Previous string
	DateTime string
	URL      string
}

func (ScrapedRecord) Tag() SourceKind { return KindScraped }
func (ScrapedRecord) rawRecord()      {}

// FeedItemRecord holds one JSON calendar entry or RSS item.
type FeedItemRecord struct {
	RecordOrigin
	Title       string
	Description string
	Country     string
	Date        string
	Impact      string
	Actual      string
	Forecast    string
	Previous    string
	Link        string
	Categories  []string
	// Sentiment is an explicit label supplied by the source, if any.
	Sentiment string
}

func (FeedItemRecord) Tag() SourceKind { return KindFeedItem }
func (FeedItemRecord) rawRecord()      {}

// APIRowRecord holds one numeric observation from a macro-data API.
type APIRowRecord struct {
	RecordOrigin
	SeriesID   string
	Currency   string
	Title      string
	Date       string
	Actual     *float64
	Previous   *float64
	Forecast   *float64
	Unit       string
	Impact     string
	Confidence *float64
}

func (APIRowRecord) Tag() SourceKind { return KindAPIRow }
func (APIRowRecord) rawRecord()      {}
