// Package moat scores competitive durability across five dimensions:
// regulatory barriers, network effects, capital intensity, proprietary data
// and customer switching costs.
package moat

import (
	"fmt"

	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

// Durability ratings
const (
	DurabilityVeryHigh = "Very High"
	DurabilityHigh     = "High"
	DurabilityMedium   = "Medium"
	DurabilityLow      = "Low"
)

const (
	strongMoat = 60.0
	mediumMoat = 40.0

	// rail-owner eligibility is a fixed label threshold, distinct from the
	// configurable wave 4 cutoff
	railOwnerThreshold = 75.0
)

// Scorer computes MoatScore values from sector baselines plus company evidence
type Scorer struct {
	cfg config.PipelineConfig
}

// NewScorer binds a scorer to a validated configuration
func NewScorer(cfg config.PipelineConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score never fails. An unknown sector falls back to the neutral baseline
// and is reported as a warning.
func (s *Scorer) Score(c models.Company) (models.MoatScore, []models.Warning) {
	var warnings []models.Warning

	base, known := s.cfg.Baseline(c.Sector)
	if !known {
		warnings = append(warnings, models.Warning{
			CompanyID: c.ID,
			Kind:      models.WarnUnknownSector,
			Detail:    fmt.Sprintf("sector %q has no moat baseline, using neutral", c.Sector),
		})
	}

	dims := Dimensions{
		Regulatory: base.Regulatory + regulatoryBoost(c),
		Network:    base.Network + networkBoost(c),
		Capital:    base.Capital + capitalBoost(c),
		Data:       base.Data + dataBoost(c),
		Switching:  base.Switching + switchingBoost(c),
	}
	dims = dims.withOverrides(c.MoatOverrides).clamped()

	w := s.cfg.MoatWeights
	total := w[config.MoatRegulatory]*dims.Regulatory +
		w[config.MoatNetwork]*dims.Network +
		w[config.MoatCapital]*dims.Capital +
		w[config.MoatData]*dims.Data +
		w[config.MoatSwitching]*dims.Switching
	total = models.Round(models.ClampScore(total), 2)

	return models.MoatScore{
		CompanyID:      c.ID,
		Regulatory:     models.Round(dims.Regulatory, 2),
		NetworkEffects: models.Round(dims.Network, 2),
		CapitalIntense: models.Round(dims.Capital, 2),
		Data:           models.Round(dims.Data, 2),
		SwitchingCost:  models.Round(dims.Switching, 2),
		Total:          total,
		RailOwner:      total > railOwnerThreshold,
		WavePotential:  s.wavePotential(total, c.Wave),
		Durability:     Durability(total),
	}, warnings
}

func (s *Scorer) wavePotential(total float64, current models.WaveCategory) models.WaveCategory {
	switch {
	case total > s.cfg.Wave4MoatThreshold:
		return models.Wave4
	case total >= strongMoat:
		return models.Wave3
	case total >= mediumMoat:
		return models.Wave2
	default:
		return current
	}
}

// Durability converts a total moat score into a qualitative rating
func Durability(total float64) string {
	switch {
	case total >= 80:
		return DurabilityVeryHigh
	case total >= 60:
		return DurabilityHigh
	case total >= 40:
		return DurabilityMedium
	default:
		return DurabilityLow
	}
}
