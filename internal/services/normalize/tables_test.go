package normalize

import (
	"testing"

	"FxPulse/internal/domain/models"
)

func TestLookupCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want models.Currency
		ok   bool
	}{
		{"USD", models.USD, true},
		{"eur", models.EUR, true},
		{"Euro Area", models.EUR, true},
		{"  united   kingdom ", models.GBP, true},
		{"Sterling", models.GBP, true},
		{"Bank of Japan", models.JPY, true},
		{"aussie", models.AUD, true},
		{"Loonie", models.CAD, true},
		{"SNB", models.CHF, true},
		{"New Zealand", models.NZD, true},
		{"renminbi", models.CNY, true},
		{"Mexico", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := LookupCurrency(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LookupCurrency(%q) = %s,%v want %s,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeCurrencyFallsBackToBase(t *testing.T) {
	if got := NormalizeCurrency("Narnia"); got != models.BaseCurrency {
		t.Fatalf("got %s", got)
	}
}

func TestNormalizeImpact(t *testing.T) {
	tests := []struct {
		in   string
		want models.Impact
	}{
		{"High", models.ImpactHigh},
		{"icon--ff-impact-red", models.ImpactHigh},
		{"3", models.ImpactHigh},
		{"bull3", models.ImpactHigh},
		{"★★★", models.ImpactHigh},
		{"Medium", models.ImpactMedium},
		{"orange", models.ImpactMedium},
		{"2", models.ImpactMedium},
		{"Low", models.ImpactLow},
		{"yellow", models.ImpactLow},
		{"Holiday", models.ImpactLow},
		{"", models.ImpactLow},
	}
	for _, tt := range tests {
		if got := NormalizeImpact(tt.in); got != tt.want {
			t.Errorf("NormalizeImpact(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClassifyEventType(t *testing.T) {
	tests := []struct {
		in   string
		want models.EventType
	}{
		{"Unemployment Claims", models.EventJoblessClaims},
		{"Unemployment Rate", models.EventUnemployment},
		{"Non-Farm Employment Change", models.EventEmployment},
		{"Core CPI m/m", models.EventCPI},
		{"FEDERAL_FUNDS_RATE", models.EventInterestRate},
		{"Official Bank Rate", models.EventInterestRate},
		{"FOMC Meeting Minutes", models.EventCentralBank},
		{"Flash Manufacturing PMI", models.EventPMI},
		{"German ZEW Economic Sentiment", models.EventBusinessSentiment},
		{"Trade Balance", models.EventTradeBalance},
		{"Bank Holiday", models.EventOther},
	}
	for _, tt := range tests {
		if got := ClassifyEventType(tt.in); got != tt.want {
			t.Errorf("ClassifyEventType(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCatalogPolarity(t *testing.T) {
	inverted := []models.EventType{models.EventJoblessClaims, models.EventUnemployment, models.EventCPI, models.EventPPI}
	for _, et := range inverted {
		if Polarity(et) != -1 {
			t.Errorf("%s polarity = %v, want -1", et, Polarity(et))
		}
	}
	if Polarity(models.EventGDP) != 1 || Polarity(models.EventOther) != 1 {
		t.Error("expected +1 polarity")
	}
}

func TestDeviation(t *testing.T) {
	tests := []struct {
		name                       string
		actual, forecast, previous *float64
		want                       float64
		ok                         bool
	}{
		{"vs forecast", f(3.1), f(3.0), f(2.0), 3.333333333333336, true},
		{"vs previous", f(2.0), nil, f(4.0), -50, true},
		{"zero reference", f(0.2), f(0), nil, 20, true},
		{"no actual", nil, f(1), nil, 0, false},
		{"no reference", f(1), nil, nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Deviation(tt.actual, tt.forecast, tt.previous)
			if ok != tt.ok || (ok && !approx(got, tt.want)) {
				t.Fatalf("Deviation = %v,%v want %v,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSentimentThresholds(t *testing.T) {
	if s := SentimentFromDeviation(models.EventGDP, 0.5); s != models.Neutral {
		t.Errorf("small deviation should be neutral, got %s", s)
	}
	if s := SentimentFromDeviation(models.EventGDP, -5); s != models.Bearish {
		t.Errorf("got %s", s)
	}
	if s := ScoreFromDeviation(models.EventGDP, 50); s != 100 {
		t.Errorf("score should clamp to 100, got %v", s)
	}
	if s := ScoreFromDeviation(models.EventCPI, 50); s != 0 {
		t.Errorf("inverted score should clamp to 0, got %v", s)
	}
}

func TestKeywordSentiment(t *testing.T) {
	if s, ok := KeywordSentiment(models.EventCentralBank, "Fed sounds hawkish as dollar rallies"); !ok || s != models.Bullish {
		t.Errorf("got %s %v", s, ok)
	}
	if s, ok := KeywordSentiment(models.EventUnemployment, "Unemployment rises sharply"); !ok || s != models.Bearish {
		t.Errorf("inverted polarity: got %s %v", s, ok)
	}
	if _, ok := KeywordSentiment(models.EventOther, "Markets await data"); ok {
		t.Error("expected no match")
	}
	// "cuts" must not match inside "executives".
	if _, ok := KeywordSentiment(models.EventOther, "executives meet"); ok {
		t.Error("expected whole-word matching")
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
