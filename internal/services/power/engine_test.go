package power

import (
	"testing"

	"FxPulse/internal/domain/models"
)

func ev(c models.Currency, s models.Sentiment, i models.Impact, conf float64, related ...models.Currency) models.EconomicEvent {
	return models.EconomicEvent{Currency: c, RelatedCurrencies: related, Sentiment: s, Impact: i, ConfidenceScore: conf}
}

func TestScore(t *testing.T) {
	events := []models.EconomicEvent{
		ev(models.USD, models.Bullish, models.ImpactHigh, 90),
		ev(models.USD, models.Bullish, models.ImpactMedium, 70),
		ev(models.USD, models.Bearish, models.ImpactLow, 50),
		ev(models.USD, models.Neutral, models.ImpactHigh, 90),
	}
	got := New().Score(models.USD, events)

	// sentiment 50+50*(0.5-0.25)=62.5; impact 100*0.5+50*0.25=62.5; confidence 75
	// total round(25 + 21.875 + 18.75) = 66
	if got.SentimentScore != 62.5 || got.ImpactScore != 62.5 || got.ConfidenceScore != 75 {
		t.Fatalf("components = %v/%v/%v", got.SentimentScore, got.ImpactScore, got.ConfidenceScore)
	}
	if got.TotalScore != 66 || got.Strength != models.PowerModerate || got.Trend != models.Bullish {
		t.Fatalf("got %+v", got)
	}
	if got.BullishCount != 2 || got.BearishCount != 1 || got.NeutralCount != 1 || got.HighCount != 2 || got.EventCount != 4 {
		t.Fatalf("counts %+v", got)
	}
}

func TestNeutralAttenuation(t *testing.T) {
	events := []models.EconomicEvent{
		ev(models.EUR, models.Bullish, models.ImpactLow, 50),
		ev(models.EUR, models.Neutral, models.ImpactLow, 50),
		ev(models.EUR, models.Neutral, models.ImpactLow, 50),
		ev(models.EUR, models.Neutral, models.ImpactLow, 50),
	}
	got := New().Score(models.EUR, events)
	// raw 62.5, neutral ratio 0.75 -> 50 + 12.5*0.25
	if got.SentimentScore != 53.13 {
		t.Fatalf("sentiment = %v", got.SentimentScore)
	}
	if got.Trend != models.Neutral {
		t.Fatalf("trend = %s", got.Trend)
	}
}

func TestZeroEventCurrencyGetsNeutralDefault(t *testing.T) {
	got := New().Score(models.CHF, nil)
	if got.TotalScore != 50 || got.SentimentScore != 50 || got.ImpactScore != 50 || got.ConfidenceScore != 50 ||
		got.Strength != models.PowerModerate || got.Trend != models.Neutral {
		t.Fatalf("got %+v", got)
	}
}

func TestRankOrderAndTies(t *testing.T) {
	events := []models.EconomicEvent{
		ev(models.GBP, models.Bullish, models.ImpactHigh, 95),
		ev(models.JPY, models.Bearish, models.ImpactLow, 40),
	}
	// AUD, CAD and NZD have no events and tie at 50.
	got := New().Rank([]models.Currency{models.AUD, models.JPY, models.CAD, models.GBP, models.NZD, models.AUD}, events)

	want := []models.Currency{models.GBP, models.AUD, models.CAD, models.NZD, models.JPY}
	if len(got) != len(want) {
		t.Fatalf("got %d scores", len(got))
	}
	for i, c := range want {
		if got[i].Currency != c || got[i].Rank != i+1 {
			t.Fatalf("position %d = %s rank %d, want %s rank %d", i, got[i].Currency, got[i].Rank, c, i+1)
		}
		if i > 0 && got[i].TotalScore > got[i-1].TotalScore {
			t.Fatalf("ranking not descending at %d", i)
		}
	}
}

func TestRelatedCurrenciesCount(t *testing.T) {
	events := []models.EconomicEvent{ev(models.EUR, models.Bearish, models.ImpactHigh, 80, models.JPY)}
	if got := New().Score(models.JPY, events); got.EventCount != 1 {
		t.Fatalf("related currency should see the event: %+v", got)
	}
}

func TestSimulatedExcludedByDefault(t *testing.T) {
	e := ev(models.USD, models.Bullish, models.ImpactHigh, 90)
	e.Simulated = true
	if got := New().Score(models.USD, []models.EconomicEvent{e}); got.EventCount != 0 {
		t.Fatal("simulated event counted")
	}
	if got := New(AllowSimulated()).Score(models.USD, []models.EconomicEvent{e}); got.EventCount != 1 {
		t.Fatal("simulated event not counted in demo mode")
	}
}
