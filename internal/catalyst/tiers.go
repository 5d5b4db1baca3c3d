package catalyst

import (
	"math"
	"time"

	"github.com/sawpanic/techrun/internal/models"
)

const day = 24 * time.Hour

// ClassifyTier buckets an estimated date by its distance from asOf
func ClassifyTier(estimated, asOf time.Time) models.CatalystTier {
	delta := estimated.Sub(asOf)
	switch {
	case delta < 0:
		return models.TierElapsed
	case delta <= 7*day:
		return models.TierImminent
	case delta <= 30*day:
		return models.TierNearTerm
	case delta <= 90*day:
		return models.TierMedium
	default:
		return models.TierDistant
	}
}

// DaysUntil is the signed whole-day distance from asOf to the estimated date
func DaysUntil(c models.Catalyst, asOf time.Time) int {
	return int(math.Floor(c.EstimatedDate.Sub(asOf).Hours() / 24))
}

// IsNearTerm reports whether the catalyst falls within [0, days] of asOf
func IsNearTerm(c models.Catalyst, asOf time.Time, days int) bool {
	d := c.EstimatedDate.Sub(asOf)
	return d >= 0 && d <= time.Duration(days)*day
}

// TierDecayConfig holds the per-tier base weight and half-life used to rank
// catalysts by urgency
type TierDecayConfig struct {
	ImminentHalfLife time.Duration `yaml:"imminent_half_life"`
	NearTermHalfLife time.Duration `yaml:"near_term_half_life"`
	MediumHalfLife   time.Duration `yaml:"medium_half_life"`
	DistantHalfLife  time.Duration `yaml:"distant_half_life"`

	ImminentBase float64 `yaml:"imminent_base"`
	NearTermBase float64 `yaml:"near_term_base"`
	MediumBase   float64 `yaml:"medium_base"`
	DistantBase  float64 `yaml:"distant_base"`

	// elapsed events keep a fraction of their weight
	PastWeight float64 `yaml:"past_weight"`
}

// DefaultTierDecayConfig returns the standard decay curve
func DefaultTierDecayConfig() TierDecayConfig {
	return TierDecayConfig{
		ImminentHalfLife: 7 * day,
		NearTermHalfLife: 30 * day,
		MediumHalfLife:   90 * day,
		DistantHalfLife:  180 * day,

		ImminentBase: 1.2,
		NearTermBase: 1.0,
		MediumBase:   0.8,
		DistantBase:  0.6,

		PastWeight: 0.5,
	}
}

// Urgency is confidence × tier base × exponential time decay. Elapsed
// catalysts decay with the imminent half-life and are scaled by PastWeight.
func (cfg TierDecayConfig) Urgency(c models.Catalyst, asOf time.Time) float64 {
	base, halfLife := cfg.params(c.Tier)
	delta := math.Abs(float64(c.EstimatedDate.Sub(asOf)))
	weight := base * math.Exp(-math.Ln2*delta/float64(halfLife)) * c.Confidence
	if c.Tier == models.TierElapsed {
		weight *= cfg.PastWeight
	}
	return math.Max(0, weight)
}

func (cfg TierDecayConfig) params(tier models.CatalystTier) (float64, time.Duration) {
	switch tier {
	case models.TierImminent, models.TierElapsed:
		return cfg.ImminentBase, cfg.ImminentHalfLife
	case models.TierNearTerm:
		return cfg.NearTermBase, cfg.NearTermHalfLife
	case models.TierMedium:
		return cfg.MediumBase, cfg.MediumHalfLife
	default:
		return cfg.DistantBase, cfg.DistantHalfLife
	}
}

// TierDescription returns a human-readable description of a tier
func TierDescription(tier models.CatalystTier) string {
	switch tier {
	case models.TierElapsed:
		return "Elapsed: estimated date already passed"
	case models.TierImminent:
		return "Imminent (0-7 days)"
	case models.TierNearTerm:
		return "Near-term (7-30 days)"
	case models.TierMedium:
		return "Medium-term (30-90 days)"
	case models.TierDistant:
		return "Distant (90+ days)"
	default:
		return "Unknown tier"
	}
}
