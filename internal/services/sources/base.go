// Package sources holds the upstream adapters. Each adapter walks its URL variants in
// order, keeps whatever subset succeeds and returns raw records for normalization.
package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/service/ratelimit"
	xhttp "FxPulse/pkg/http"
	applogger "FxPulse/pkg/logger"
)

// variant is one URL/query attempt for a logical source.
type variant struct {
	label string
	url   string
	query map[string][]string
}

// parseFunc extracts records from one variant's body. dropped counts rows that were
// read but rejected (unknown currency, empty title).
type parseFunc func(v variant, resp *xhttp.Response) (recs []models.RawSourceRecord, dropped int, err error)

// HTTPSourceBase centralizes the shared client, rate limiting and pacing of HTTP adapters.
type HTTPSourceBase struct {
	name    string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	pacer   *Pacer
	headers map[string]string
	now     func() time.Time
	l       *applogger.Logger
}

// BaseOption configures HTTPSourceBase.
type BaseOption func(*HTTPSourceBase)

// WithLimiter routes every request through the shared per-API rate limit registry.
func WithLimiter(l *ratelimit.Limiter) BaseOption {
	return func(b *HTTPSourceBase) { b.limiter = l }
}

// WithPacer sets the jittered delay between consecutive variant requests.
func WithPacer(p *Pacer) BaseOption {
	return func(b *HTTPSourceBase) { b.pacer = p }
}

// WithClock overrides the fetch timestamp source.
func WithClock(now func() time.Time) BaseOption {
	return func(b *HTTPSourceBase) { b.now = now }
}

// WithLogger sets the adapter logger.
func WithLogger(l *applogger.Logger) BaseOption {
	return func(b *HTTPSourceBase) {
		if l != nil {
			b.l = l
		}
	}
}

// WithHeaders adds request headers sent on every variant.
func WithHeaders(h map[string]string) BaseOption {
	return func(b *HTTPSourceBase) {
		for k, v := range h {
			b.headers[k] = v
		}
	}
}

func newBase(name string, client *xhttp.Client, opts ...BaseOption) HTTPSourceBase {
	b := HTTPSourceBase{
		name:    name,
		client:  client,
		pacer:   NewPacer(0, 0),
		headers: map[string]string{},
		now:     time.Now,
		l:       applogger.Nop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.l = b.l.With("source." + name)
	return b
}

// Name returns the adapter name used in CollectionResult.
func (b *HTTPSourceBase) Name() string { return b.name }

func (b *HTTPSourceBase) get(ctx context.Context, v variant) (*xhttp.Response, error) {
	if b.client == nil {
		return nil, fmt.Errorf("%s: http client not initialized", b.name)
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, b.name); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return b.client.Do(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         v.url,
		Headers:     b.headers,
		QueryParams: v.query,
	})
}

// collect fetches variants sequentially. A failing variant is recorded and skipped; the
// call fails only when no variant succeeded.
func (b *HTTPSourceBase) collect(ctx context.Context, variants []variant, parse parseFunc) (*models.FetchResult, error) {
	res := &models.FetchResult{Variants: len(variants)}
	var errs []error

	for i, v := range variants {
		if i > 0 {
			if err := b.pacer.Wait(ctx); err != nil {
				errs = append(errs, err)
				break
			}
		}

		resp, err := b.get(ctx, v)
		if resp != nil {
			res.StatusCode = resp.StatusCode
		}
		if err != nil {
			b.l.Debug("variant failed", applogger.String("variant", v.label), applogger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", v.label, err))
			continue
		}

		recs, dropped, err := parse(v, resp)
		res.Dropped += dropped
		if err != nil {
			b.l.Debug("variant unparseable", applogger.String("variant", v.label), applogger.Error(err))
			errs = append(errs, fmt.Errorf("%s: parse: %w", v.label, err))
			continue
		}
		res.VariantsOK++
		res.Records = append(res.Records, recs...)
	}

	if res.VariantsOK == 0 {
		if len(errs) == 0 {
			errs = append(errs, errors.New("no variants configured"))
		}
		return res, fmt.Errorf("%s: all variants failed: %w", b.name, errors.Join(errs...))
	}
	return res, nil
}

func (b *HTTPSourceBase) origin(source string) models.RecordOrigin {
	if source == "" {
		source = b.name
	}
	return models.RecordOrigin{Source: source, FetchedAt: b.now().UTC()}
}
