package scoring

import (
	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

// DivergenceRule is one (predicate, outcome) row of the classification table
type DivergenceRule struct {
	Flag  models.DivergenceFlag
	Match func(hype, build float64, th config.DivergenceThresholds) bool
}

// DivergenceRules are evaluated top to bottom; the first match wins. A score
// in [low, high) on either axis falls through to NO_SIGNAL even when the
// other axis is extreme.
var DivergenceRules = []DivergenceRule{
	{
		Flag: models.ConfirmedMomentum,
		Match: func(hype, build float64, th config.DivergenceThresholds) bool {
			return hype >= th.High && build >= th.High
		},
	},
	{
		Flag: models.MispricedOpportunity,
		Match: func(hype, build float64, th config.DivergenceThresholds) bool {
			return hype < th.Low && build >= th.High
		},
	},
	{
		Flag: models.BubbleRisk,
		Match: func(hype, build float64, th config.DivergenceThresholds) bool {
			return hype >= th.High && build < th.Low
		},
	},
}

// Classify maps a (hype, build) pair to its divergence flag
func Classify(hype, build float64, th config.DivergenceThresholds) models.DivergenceFlag {
	for _, rule := range DivergenceRules {
		if rule.Match(hype, build, th) {
			return rule.Flag
		}
	}
	return models.NoSignal
}
