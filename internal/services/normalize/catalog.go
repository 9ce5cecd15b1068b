package normalize

import (
	"strings"

	"FxPulse/internal/domain/models"
)

// Indicator describes how one event type is scored.
type Indicator struct {
	Type models.EventType
	Tier models.Tier
	// Weight is the indicator's weight inside its tier.
	Weight float64
	// Polarity is +1 when a higher print is good for the currency and -1 for claims,
	// unemployment and cost-of-living indicators.
	Polarity float64
	// Threshold is the percent deviation that must be exceeded to leave NEUTRAL.
	Threshold     float64
	DefaultImpact models.Impact
	Keywords      []string
}

// DefaultThreshold applies to event types without a catalog entry.
const DefaultThreshold = 1.0

var catalog = []Indicator{
	{models.EventInterestRate, models.TierMonetaryPolicy, 1.0, 1, 0.5, models.ImpactHigh,
		[]string{"interest rate", "rate decision", "cash rate", "bank rate", "policy rate", "federal funds", "fed funds",
			"refinancing rate", "main refinancing", "deposit facility rate", "overnight rate", "loan prime rate", "rate statement"}},
	{models.EventCentralBank, models.TierMonetaryPolicy, 0.6, 1, 1.0, models.ImpactMedium,
		[]string{"fomc", "monetary policy", "press conference", "minutes", "speaks", "governor", "policy statement",
			"central bank", "testimony", "beige book"}},
	{models.EventCPI, models.TierInflation, 1.0, -1, 1.0, models.ImpactHigh,
		[]string{"cpi", "consumer price", "inflation", "hicp", "pce price", "core pce", "rpi", "cost of living"}},
	{models.EventPPI, models.TierInflation, 0.6, -1, 1.0, models.ImpactMedium,
		[]string{"ppi", "producer price", "import price", "input price", "output price"}},
	{models.EventGDP, models.TierGrowth, 1.0, 1, 1.0, models.ImpactHigh,
		[]string{"gdp", "gross domestic product", "economic growth"}},
	{models.EventEmployment, models.TierGrowth, 0.9, 1, 1.0, models.ImpactHigh,
		[]string{"non-farm", "nonfarm", "non farm", "payroll", "employment change", "adp", "jobs", "job openings", "jolts",
			"average hourly earnings"}},
	{models.EventUnemployment, models.TierGrowth, 0.8, -1, 1.0, models.ImpactHigh,
		[]string{"unemployment", "jobless rate", "claimant count"}},
	{models.EventJoblessClaims, models.TierGrowth, 0.5, -1, 2.0, models.ImpactMedium,
		[]string{"jobless claims", "initial claims", "continuing claims", "unemployment claims"}},
	{models.EventRetailSales, models.TierGrowth, 0.7, 1, 1.0, models.ImpactMedium,
		[]string{"retail sales", "consumer spending", "personal spending"}},
	{models.EventIndustrial, models.TierGrowth, 0.6, 1, 1.0, models.ImpactMedium,
		[]string{"industrial production", "manufacturing production", "industrial output", "factory orders", "durable goods"}},
	{models.EventPMI, models.TierSentiment, 0.9, 1, 1.0, models.ImpactMedium,
		[]string{"pmi", "purchasing managers", "ism manufacturing", "ism services", "ism non-manufacturing"}},
	{models.EventConsumerConfidence, models.TierSentiment, 0.6, 1, 1.0, models.ImpactMedium,
		[]string{"consumer confidence", "consumer sentiment", "michigan", "gfk"}},
	{models.EventBusinessSentiment, models.TierSentiment, 0.6, 1, 1.0, models.ImpactMedium,
		[]string{"business confidence", "business climate", "economic sentiment", "zew", "ifo", "tankan"}},
	{models.EventTradeBalance, models.TierExternal, 0.8, 1, 1.0, models.ImpactMedium,
		[]string{"trade balance", "goods trade", "exports", "imports"}},
	{models.EventCurrentAccount, models.TierExternal, 0.6, 1, 1.0, models.ImpactLow,
		[]string{"current account", "capital flows", "tic long-term", "foreign investment"}},
}

var byType = func() map[models.EventType]Indicator {
	m := make(map[models.EventType]Indicator, len(catalog))
	for _, ind := range catalog {
		m[ind.Type] = ind
	}
	return m
}()

// LookupIndicator returns the catalog entry for t. OTHER and unknown types have none.
func LookupIndicator(t models.EventType) (Indicator, bool) {
	ind, ok := byType[t]
	return ind, ok
}

// Polarity returns the sign convention for t, +1 when uncatalogued.
func Polarity(t models.EventType) float64 {
	if ind, ok := byType[t]; ok {
		return ind.Polarity
	}
	return 1
}

// Threshold returns the neutral band half-width for t.
func Threshold(t models.EventType) float64 {
	if ind, ok := byType[t]; ok {
		return ind.Threshold
	}
	return DefaultThreshold
}

// ClassifyEventType matches catalog keywords against text. The longest matching keyword
// wins so that "Unemployment Claims" is claims, not unemployment.
func ClassifyEventType(text string) models.EventType {
	padded := " " + tokenize(text) + " "
	best, bestLen := models.EventOther, 0
	for _, ind := range catalog {
		for _, kw := range ind.Keywords {
			needle := " " + tokenize(kw) + " "
			if len(needle) > bestLen && strings.Contains(padded, needle) {
				best, bestLen = ind.Type, len(needle)
			}
		}
	}
	return best
}
