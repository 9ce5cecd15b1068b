package normalize

import "FxPulse/internal/domain/models"

const (
	credibilityBonus   = 5.0
	completenessBonus  = 5.0
	baseConfidenceHigh = 90.0
	baseConfidenceMed  = 70.0
	baseConfidenceLow  = 50.0
)

// BaseConfidence is the starting confidence for an impact level.
func BaseConfidence(i models.Impact) float64 {
	switch i {
	case models.ImpactHigh:
		return baseConfidenceHigh
	case models.ImpactMedium:
		return baseConfidenceMed
	default:
		return baseConfidenceLow
	}
}

// Confidence scores an event in [0,100]. A source-supplied value replaces the impact base;
// bonuses apply for credible sources and for events carrying both actual and forecast.
func Confidence(impact models.Impact, supplied *float64, credible, complete bool) float64 {
	c := BaseConfidence(impact)
	if supplied != nil {
		c = *supplied
	}
	if credible {
		c += credibilityBonus
	}
	if complete {
		c += completenessBonus
	}
	return clamp(c, 0, 100)
}
