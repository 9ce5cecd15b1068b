package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/services/normalize"
	"FxPulse/pkg/config"
	xhttp "FxPulse/pkg/http"

	"github.com/mmcdole/gofeed"
)

// RSSSource reads central-bank and FX news feeds. Each item is tagged with the currencies
// it mentions, or with its feed's default currency when it mentions none.
type RSSSource struct {
	HTTPSourceBase
	feeds  []config.RSSFeed
	parser *gofeed.Parser
}

func NewRSSSource(client *xhttp.Client, feeds []config.RSSFeed, opts ...BaseOption) *RSSSource {
	return &RSSSource{HTTPSourceBase: newBase("rss", client, opts...), feeds: feeds, parser: gofeed.NewParser()}
}

func (s *RSSSource) Fetch(ctx context.Context) (*models.FetchResult, error) {
	defaults := make(map[string]string, len(s.feeds))
	variants := make([]variant, 0, len(s.feeds))
	for _, f := range s.feeds {
		defaults[f.URL] = f.Currency
		variants = append(variants, variant{label: variantLabel(f.URL), url: f.URL})
	}

	return s.collect(ctx, variants, func(v variant, resp *xhttp.Response) ([]models.RawSourceRecord, int, error) {
		feed, err := s.parser.Parse(bytes.NewReader(resp.Body))
		if err != nil {
			return nil, 0, fmt.Errorf("parse feed: %w", err)
		}

		origin := s.origin(feedHost(v.url))
		recs := make([]models.RawSourceRecord, 0, len(feed.Items))
		dropped := 0
		for _, item := range feed.Items {
			title := strings.TrimSpace(item.Title)
			country := itemCurrency(item, defaults[v.url])
			if title == "" || country == "" {
				dropped++
				continue
			}
			recs = append(recs, models.FeedItemRecord{
				RecordOrigin: origin,
				Title:        title,
				Description:  item.Description,
				Country:      country,
				Date:         itemDate(item),
				Link:         item.Link,
				Categories:   item.Categories,
			})
		}
		return recs, dropped, nil
	})
}

func itemCurrency(item *gofeed.Item, fallback string) string {
	found := normalize.DetectCurrencies(item.Title + " " + item.Description + " " + strings.Join(item.Categories, " "))
	if len(found) > 0 {
		return string(found[0])
	}
	if c, ok := normalize.LookupCurrency(fallback); ok {
		return string(c)
	}
	return ""
}

func itemDate(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	default:
		return item.Published
	}
}

func feedHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "rss"
	}
	return strings.TrimPrefix(u.Host, "www.")
}
