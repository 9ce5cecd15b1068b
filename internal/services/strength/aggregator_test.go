package strength

import (
	"testing"
	"time"

	"FxPulse/internal/domain/models"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

func event(c models.Currency, t models.EventType, impact models.Impact, ageDays int, score float64) models.EconomicEvent {
	return models.EconomicEvent{
		ID:             string(c) + string(t),
		Currency:       c,
		EventType:      t,
		Title:          string(t),
		EventDate:      now.Add(-time.Duration(ageDays) * 24 * time.Hour),
		Impact:         impact,
		Sentiment:      models.Neutral,
		SentimentScore: f(score),
		Source:         "test",
	}
}

func newAgg(opts ...Option) *Aggregator {
	return New(append([]Option{WithClock(func() time.Time { return now })}, opts...)...)
}

func TestDecayIsNonIncreasing(t *testing.T) {
	if Decay(8) > Decay(1) {
		t.Fatalf("decay(8)=%v > decay(1)=%v", Decay(8), Decay(1))
	}
	prev := Decay(0)
	for d := 0.0; d <= 200; d += 0.5 {
		cur := Decay(d)
		if cur > prev {
			t.Fatalf("decay increased at %v days: %v > %v", d, cur, prev)
		}
		prev = cur
	}
}

func TestDefaultResultWithoutEligibleEvents(t *testing.T) {
	tests := []struct {
		name   string
		events []models.EconomicEvent
	}{
		{"no events", nil},
		{"other currency", []models.EconomicEvent{event(models.EUR, models.EventCPI, models.ImpactHigh, 1, 80)}},
		{"unmapped type", []models.EconomicEvent{event(models.USD, models.EventOther, models.ImpactHigh, 1, 80)}},
		{"outside window", []models.EconomicEvent{event(models.USD, models.EventCPI, models.ImpactHigh, 120, 80)}},
		{"simulated", func() []models.EconomicEvent {
			e := event(models.USD, models.EventCPI, models.ImpactHigh, 1, 80)
			e.Simulated = true
			return []models.EconomicEvent{e}
		}()},
	}
	prev := &models.CurrencyStrengthResult{StrengthScore: 90}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newAgg().Aggregate(models.USD, tt.events, prev)
			if got.StrengthScore != 50 || got.Sentiment != models.Neutral || got.ConfidenceLevel != 0 || got.Trend != models.Stable {
				t.Fatalf("got %+v", got)
			}
			if len(got.TierBreakdown) != 5 || got.IndicatorsCount != 0 {
				t.Fatalf("breakdown %+v", got.TierBreakdown)
			}
		})
	}
}

func TestEmptyTiersAreNotRedistributed(t *testing.T) {
	events := []models.EconomicEvent{event(models.USD, models.EventInterestRate, models.ImpactLow, 1, 60)}
	got := newAgg().Aggregate(models.USD, events, nil)

	if got.TierBreakdown[0].Tier != models.TierMonetaryPolicy || got.TierBreakdown[0].Score != 60 {
		t.Fatalf("monetary tier = %+v", got.TierBreakdown[0])
	}
	for _, ts := range got.TierBreakdown[1:] {
		if ts.Score != 0 || ts.Contribution != 0 || ts.EventCount != 0 {
			t.Fatalf("empty tier should contribute 0: %+v", ts)
		}
	}
	if got.StrengthScore != 21 { // 60 * 0.35
		t.Fatalf("strength = %v, want 21", got.StrengthScore)
	}
	if got.Sentiment != models.Bearish {
		t.Fatalf("sentiment = %s", got.Sentiment)
	}
}

func TestTierScoreWeighting(t *testing.T) {
	events := []models.EconomicEvent{
		event(models.USD, models.EventCPI, models.ImpactLow, 1, 40),     // weight 1.0, decay 1.0
		event(models.USD, models.EventPPI, models.ImpactMedium, 10, 80), // weight 0.6, x1.5, decay 0.8
	}
	events[1].ID = "ppi"
	got := newAgg().Aggregate(models.USD, events, nil)

	// (40*1*1*1 + 80*0.6*1.5*0.8) / (1+0.6) = (40 + 57.6) / 1.6 = 61
	if got.TierBreakdown[1].Score != 61 || got.TierBreakdown[1].EventCount != 2 {
		t.Fatalf("inflation tier = %+v", got.TierBreakdown[1])
	}
	if got.StrengthScore != 15.25 {
		t.Fatalf("strength = %v", got.StrengthScore)
	}
}

func TestScoresStayInRange(t *testing.T) {
	var events []models.EconomicEvent
	for i, et := range []models.EventType{models.EventInterestRate, models.EventCPI, models.EventGDP, models.EventPMI, models.EventTradeBalance} {
		e := event(models.USD, et, models.ImpactHigh, i, 100)
		e.ActualValue, e.ExpectedValue = f(2), f(1)
		events = append(events, e)
	}
	got := newAgg().Aggregate(models.USD, events, nil)
	if got.StrengthScore != 100 || got.Sentiment != models.Bullish {
		t.Fatalf("strength = %v (%s), want clamp to 100", got.StrengthScore, got.Sentiment)
	}
	if got.TierBreakdown[0].Score != 300 {
		t.Fatalf("tier scores are reported unclamped, got %v", got.TierBreakdown[0].Score)
	}
	if got.ConfidenceLevel != 90 {
		t.Fatalf("confidence = %v", got.ConfidenceLevel)
	}
}

func TestConfidenceLevelAveragesCompleteness(t *testing.T) {
	complete := event(models.USD, models.EventGDP, models.ImpactLow, 1, 50)
	complete.ActualValue, complete.ExpectedValue = f(1), f(1)
	scored := event(models.USD, models.EventPMI, models.ImpactLow, 1, 50)
	bare := event(models.USD, models.EventTradeBalance, models.ImpactLow, 1, 50)
	bare.SentimentScore = nil

	got := newAgg().Aggregate(models.USD, []models.EconomicEvent{complete, scored, bare}, nil)
	if got.ConfidenceLevel != 66.67 { // (90+70+40)/3
		t.Fatalf("confidence = %v", got.ConfidenceLevel)
	}
	if got.IndicatorsCount != 3 {
		t.Fatalf("indicators = %d", got.IndicatorsCount)
	}
}

func TestLabelThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  models.Sentiment
	}{
		{70, models.Bullish},
		{65, models.Bullish},
		{64.99, models.Neutral},
		{50, models.Neutral},
		{35.01, models.Neutral},
		{35, models.Bearish},
		{30, models.Bearish},
	}
	for _, tt := range tests {
		if got := Label(tt.score); got != tt.want {
			t.Errorf("Label(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		prev  *models.CurrencyStrengthResult
		want  models.Trend
	}{
		{"cold start", 80, nil, models.Stable},
		{"up", 56, &models.CurrencyStrengthResult{StrengthScore: 50}, models.Strengthening},
		{"down", 44, &models.CurrencyStrengthResult{StrengthScore: 50}, models.Weakening},
		{"small move", 54, &models.CurrencyStrengthResult{StrengthScore: 50}, models.Stable},
	}
	for _, tt := range tests {
		if got := TrendOf(tt.score, tt.prev); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestEventScoreFallbacks(t *testing.T) {
	e := event(models.USD, models.EventUnemployment, models.ImpactLow, 1, 0)
	e.SentimentScore = nil
	e.ActualValue, e.ExpectedValue = f(4.2), f(4.0)
	// inverted polarity: 50 - 5*5 = 25
	if got := EventScore(&e); got < 24.99 || got > 25.01 {
		t.Fatalf("deviation score = %v", got)
	}
	e.ActualValue, e.ExpectedValue = nil, nil
	e.Sentiment = models.Bullish
	if got := EventScore(&e); got != 70 {
		t.Fatalf("label score = %v", got)
	}
}

func TestAllowSimulated(t *testing.T) {
	e := event(models.USD, models.EventCPI, models.ImpactLow, 1, 80)
	e.Simulated = true
	got := newAgg(AllowSimulated()).Aggregate(models.USD, []models.EconomicEvent{e}, nil)
	if got.IndicatorsCount != 1 {
		t.Fatalf("simulated events should count in demo mode: %+v", got)
	}
}
