package moat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestScoreSectorBaseline(t *testing.T) {
	scorer := NewScorer(config.Default())

	score, warnings := scorer.Score(models.Company{ID: "orbital", Sector: models.SectorSixG, Wave: models.Wave1})
	assert.Empty(t, warnings)

	assert.Equal(t, 85.0, score.Regulatory)
	assert.Equal(t, 35.0, score.NetworkEffects)
	assert.Equal(t, 85.0, score.CapitalIntense)
	assert.Equal(t, 60.25, score.Total)
	assert.False(t, score.RailOwner)
	assert.Equal(t, models.Wave3, score.WavePotential)
	assert.Equal(t, DurabilityHigh, score.Durability)
}

func TestScoreRailOwner(t *testing.T) {
	scorer := NewScorer(config.Default())

	c := models.Company{
		ID:                  "foundry",
		Sector:              models.SectorSemiconductor,
		TotalFunding:        1_000_000_000,
		PatentCount:         100,
		EnterpriseCustomers: 100,
		RegulatoryLicense:   true,
		DefenseContracts:    true,
		GovernmentCustomers: true,
		RegulatoryApprovals: 9,
	}
	score, warnings := scorer.Score(c)
	assert.Empty(t, warnings)

	assert.Equal(t, 95.0, score.Regulatory, "defense supersedes government, approvals cap at +15")
	assert.Equal(t, 85.0, score.NetworkEffects)
	assert.Equal(t, 100.0, score.CapitalIntense)
	assert.Equal(t, 80.0, score.Data)
	assert.Equal(t, 100.0, score.SwitchingCost)
	assert.Equal(t, 91.75, score.Total)
	assert.True(t, score.RailOwner)
	assert.Equal(t, models.Wave4, score.WavePotential)
	assert.Equal(t, DurabilityVeryHigh, score.Durability)
}

func TestScoreUnknownSectorFallsBackToNeutral(t *testing.T) {
	scorer := NewScorer(config.Default())

	score, warnings := scorer.Score(models.Company{ID: "mystery", Sector: "Robotics", Wave: models.Wave1})
	require.Len(t, warnings, 1)
	assert.Equal(t, models.WarnUnknownSector, warnings[0].Kind)
	assert.Equal(t, "mystery", warnings[0].CompanyID)

	assert.Equal(t, 50.0, score.Total)
	assert.Equal(t, models.Wave2, score.WavePotential)
	assert.Equal(t, DurabilityMedium, score.Durability)
}

func TestScoreOverridesReplaceComputedDimensions(t *testing.T) {
	scorer := NewScorer(config.Default())

	c := models.Company{
		ID:            "override",
		Sector:        models.SectorSixG,
		Wave:          models.Wave2,
		MoatOverrides: &models.MoatOverrides{Regulatory: ptr(0), Data: ptr(500)},
	}
	score, _ := scorer.Score(c)

	assert.Equal(t, 0.0, score.Regulatory)
	assert.Equal(t, 100.0, score.Data, "overrides are clamped like computed values")
	assert.Equal(t, 45.25, score.Total) // 60.25 - 25.5 + 0.15*(100-30)
	assert.Equal(t, models.Wave2, score.WavePotential)
}

func TestScoreStaysInRange(t *testing.T) {
	scorer := NewScorer(config.Default())

	extremes := []models.Company{
		{ID: "neg", Sector: models.SectorDataInfra, TotalFunding: -5e9, PatentCount: -10, EnterpriseCustomers: -3},
		{ID: "huge", Sector: models.SectorQuantum, TotalFunding: 9e12, PatentCount: 1e6, EnterpriseCustomers: 1e6, RegulatoryApprovals: 1000, DefenseContracts: true, RegulatoryLicense: true},
	}
	for _, c := range extremes {
		score, _ := scorer.Score(c)
		for _, v := range []float64{score.Regulatory, score.NetworkEffects, score.CapitalIntense, score.Data, score.SwitchingCost, score.Total} {
			assert.GreaterOrEqual(t, v, 0.0, c.ID)
			assert.LessOrEqual(t, v, 100.0, c.ID)
		}
	}
}

func TestWavePotentialFallsBackToCompanyWave(t *testing.T) {
	scorer := NewScorer(config.Default())

	c := models.Company{
		ID:            "weak",
		Sector:        models.SectorDataInfra,
		Wave:          models.Wave1,
		MoatOverrides: &models.MoatOverrides{Regulatory: ptr(0), NetworkEffects: ptr(0), CapitalIntense: ptr(0), Data: ptr(0), SwitchingCost: ptr(0)},
	}
	score, _ := scorer.Score(c)
	assert.Equal(t, 0.0, score.Total)
	assert.Equal(t, models.Wave1, score.WavePotential)
	assert.Equal(t, DurabilityLow, score.Durability)
}

func TestDurability(t *testing.T) {
	testCases := []struct {
		total    float64
		expected string
	}{
		{100, DurabilityVeryHigh},
		{80, DurabilityVeryHigh},
		{79.99, DurabilityHigh},
		{60, DurabilityHigh},
		{40, DurabilityMedium},
		{39.9, DurabilityLow},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Durability(tc.total), "total %v", tc.total)
	}
}
