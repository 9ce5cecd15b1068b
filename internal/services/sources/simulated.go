package sources

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"FxPulse/internal/domain/models"
)

type simTemplate struct {
	title  string
	impact string
	base   float64
	spread float64
}

var simTemplates = []simTemplate{
	{"Interest Rate Decision", "High", 3.0, 0.25},
	{"CPI y/y", "High", 2.5, 0.4},
	{"GDP q/q", "High", 0.4, 0.3},
	{"Unemployment Rate", "High", 4.5, 0.3},
	{"Retail Sales m/m", "Medium", 0.3, 0.5},
	{"Manufacturing PMI", "Medium", 50, 2},
	{"Consumer Confidence", "Medium", 95, 4},
	{"Trade Balance", "Low", 2.0, 1.5},
}

// SimulatedSource generates a deterministic demo batch. Every record is tagged SIMULATED
// and it is only constructed in demo mode.
type SimulatedSource struct {
	currencies []models.Currency
	perCur     int
	seed       uint64
	now        func() time.Time
}

func NewSimulatedSource(currencies []models.Currency, perCurrency int, seed int64, now func() time.Time) *SimulatedSource {
	if now == nil {
		now = time.Now
	}
	if perCurrency <= 0 {
		perCurrency = 1
	}
	return &SimulatedSource{currencies: currencies, perCur: perCurrency, seed: uint64(seed), now: now}
}

func (s *SimulatedSource) Name() string { return "simulated" }

func (s *SimulatedSource) Fetch(ctx context.Context) (*models.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rng := rand.New(rand.NewPCG(s.seed, uint64(now.Unix()/86400)))

	res := &models.FetchResult{Variants: 1, VariantsOK: 1}
	for _, c := range s.currencies {
		for i := 0; i < s.perCur; i++ {
			tpl := simTemplates[rng.IntN(len(simTemplates))]
			forecast := round2(tpl.base + (rng.Float64()*2-1)*tpl.spread)
			actual := round2(forecast + (rng.Float64()*2-1)*tpl.spread)
			previous := round2(tpl.base + (rng.Float64()*2-1)*tpl.spread)
			age := time.Duration(rng.IntN(60*24)) * time.Hour
			res.Records = append(res.Records, models.APIRowRecord{
				RecordOrigin: models.RecordOrigin{Source: models.SourceSimulated, FetchedAt: now},
				SeriesID:     "SIM-" + string(c),
				Currency:     string(c),
				Title:        tpl.title,
				Date:         now.Add(-age).Format(time.RFC3339),
				Impact:       tpl.impact,
				Actual:       &actual,
				Forecast:     &forecast,
				Previous:     &previous,
			})
		}
	}
	return res, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
