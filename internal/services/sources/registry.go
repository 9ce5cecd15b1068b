package sources

import (
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	"FxPulse/internal/service/ratelimit"
	"FxPulse/pkg/config"
	xhttp "FxPulse/pkg/http"
	applogger "FxPulse/pkg/logger"
)

// FromConfig builds the adapter set for the configured mode. Demo mode runs only the
// simulated source; live mode never constructs it.
func FromConfig(cfg *config.Config, client *xhttp.Client, limiter *ratelimit.Limiter, l *applogger.Logger) []repository.Source {
	if cfg.Collector.Mode == "demo" {
		return []repository.Source{
			NewSimulatedSource(Currencies(cfg.Collector.Currencies), cfg.Sources.Simulated.EventsPerCurrency,
				cfg.Sources.Simulated.Seed, time.Now),
		}
	}

	opts := []BaseOption{
		WithLimiter(limiter),
		WithPacer(NewPacer(cfg.Collector.DelayMin, cfg.Collector.DelayMax)),
		WithLogger(l),
	}

	var out []repository.Source
	src := cfg.Sources

	var calendars []repository.Source
	if !src.CalendarJSON.Disabled && len(src.CalendarJSON.URLs) > 0 {
		calendars = append(calendars, NewCalendarJSONSource(client, src.CalendarJSON.URLs, opts...))
	}
	if !src.CalendarHTML.Disabled && len(src.CalendarHTML.URLs) > 0 {
		calendars = append(calendars, NewCalendarHTMLSource(client, src.CalendarHTML.URLs,
			append(opts, WithHeaders(map[string]string{"Accept": "text/html", "X-Requested-With": "XMLHttpRequest"}))...))
	}
	if len(calendars) > 0 {
		out = append(out, NewChain("calendar", calendars[0], calendars[1:]...))
	}

	out = append(out,
		NewFREDSource(client, src.FRED.APIKey, src.FRED.BaseURL, src.FRED.Series, opts...),
		NewAlphaVantageSource(client, src.AlphaVantage.APIKey, src.AlphaVantage.BaseURL, src.AlphaVantage.Functions, opts...),
	)
	if len(src.RSS.Feeds) > 0 {
		out = append(out, NewRSSSource(client, src.RSS.Feeds, opts...))
	}
	return out
}

// Currencies converts configured codes, skipping unsupported ones.
func Currencies(codes []string) []models.Currency {
	out := make([]models.Currency, 0, len(codes))
	for _, c := range codes {
		if cur := models.Currency(c); cur.Valid() {
			out = append(out, cur)
		}
	}
	return out
}
