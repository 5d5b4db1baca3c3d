package signals

import (
	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

// RuleInput is what the recommendation rules see for one company
type RuleInput struct {
	Divergence models.DivergenceFlag
	Build      float64
	Moat       float64
}

// RecommendationRule is one (predicate, outcome) row
type RecommendationRule struct {
	Outcome models.Recommendation
	Match   func(in RuleInput, th config.RecommendationThresholds) bool
}

// RecommendationRules are evaluated top to bottom; the first match wins.
// SELL is never produced by this table.
var RecommendationRules = []RecommendationRule{
	{
		Outcome: models.Short,
		Match: func(in RuleInput, th config.RecommendationThresholds) bool {
			return in.Divergence == models.BubbleRisk && in.Build < th.ShortBuildCutoff
		},
	},
	{
		Outcome: models.Fade,
		Match: func(in RuleInput, _ config.RecommendationThresholds) bool {
			return in.Divergence == models.BubbleRisk
		},
	},
	{
		Outcome: models.StrongBuy,
		Match: func(in RuleInput, th config.RecommendationThresholds) bool {
			return in.Divergence == models.ConfirmedMomentum && in.Moat > th.StrongBuyMoat
		},
	},
	{
		Outcome: models.Buy,
		Match: func(in RuleInput, _ config.RecommendationThresholds) bool {
			return in.Divergence == models.MispricedOpportunity
		},
	},
	{
		Outcome: models.Buy,
		Match: func(in RuleInput, _ config.RecommendationThresholds) bool {
			return in.Divergence == models.ConfirmedMomentum
		},
	},
}

// Recommend applies RecommendationRules, defaulting to HOLD
func Recommend(in RuleInput, th config.RecommendationThresholds) models.Recommendation {
	for _, rule := range RecommendationRules {
		if rule.Match(in, th) {
			return rule.Outcome
		}
	}
	return models.Hold
}

// Conviction combines momentum, moat, a near-term catalyst indicator and the
// hype/build gap into [0,1], rounded to 4 places
func Conviction(m models.MomentumScore, moat float64, nearTermCatalyst bool, weights map[string]float64) float64 {
	catalyst := 0.0
	if nearTermCatalyst {
		catalyst = 1
	}
	v := weights[config.ConvictionMomentum]*models.ClampScore(m.Momentum)/100 +
		weights[config.ConvictionMoat]*models.ClampScore(moat)/100 +
		weights[config.ConvictionCatalyst]*catalyst +
		weights[config.ConvictionGap]*models.ClampScore(m.Gap())/100
	return models.Round(models.Clamp(v, 0, 1), 4)
}

// PositionFor picks the first bucket whose floor the conviction reaches and
// caps both bounds at maxPct. Below every floor the last bucket applies.
func PositionFor(conviction float64, buckets []config.PositionBucket, maxPct float64) models.PositionSize {
	if len(buckets) == 0 {
		return models.PositionSize{}
	}
	chosen := buckets[len(buckets)-1]
	for _, b := range buckets {
		if conviction >= b.MinConviction {
			chosen = b
			break
		}
	}
	return models.PositionSize{
		MinPct: min(chosen.MinPct, maxPct),
		MaxPct: min(chosen.MaxPct, maxPct),
	}
}
