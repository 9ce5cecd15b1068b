package normalize

import (
	"strings"

	"FxPulse/internal/domain/models"
)

type impactRule struct {
	needles []string
	impact  models.Impact
}

// impactRules are checked in order; the first substring hit wins.
var impactRules = []impactRule{
	{[]string{"high", "red", "bull3", "★★★", "3"}, models.ImpactHigh},
	{[]string{"medium", "med", "moderate", "orange", "ora", "bull2", "★★", "2"}, models.ImpactMedium},
	{[]string{"low", "yellow", "yel", "bull1", "★", "1"}, models.ImpactLow},
}

// NormalizeImpact maps a free-text impact descriptor to HIGH, MEDIUM or LOW. Unmatched text is LOW.
func NormalizeImpact(s string) models.Impact {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range impactRules {
		for _, n := range r.needles {
			if strings.Contains(s, n) {
				return r.impact
			}
		}
	}
	return models.ImpactLow
}
