package catalyst

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

var asOf = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }

func findKind(cats []models.Catalyst, kind models.CatalystKind) (models.Catalyst, bool) {
	for _, c := range cats {
		if c.Kind == kind {
			return c, true
		}
	}
	return models.Catalyst{}, false
}

func TestPredictNoIndicators(t *testing.T) {
	p := NewPredictor(config.Default(), asOf)
	cats := p.Predict(models.Company{ID: "bare", Sector: models.SectorQuantum})
	assert.NotNil(t, cats)
	assert.Empty(t, cats)
}

func TestPredictCFOHire(t *testing.T) {
	p := NewPredictor(config.Default(), asOf)

	c := models.Company{
		ID: "ledger",
		ExecutiveHires: []models.ExecutiveHire{
			{Date: date(2024, 3, 1), Role: "VP Engineering"},
			{Date: date(2024, 6, 1), Role: "Chief Financial Officer", Name: "A. Park"},
			{Date: date(2024, 2, 1), Role: "CFO"},
		},
	}
	cats := p.Predict(c)
	require.Len(t, cats, 1)

	cfo := cats[0]
	assert.Equal(t, models.CatalystCFOHire, cfo.Kind)
	assert.Equal(t, "ledger", cfo.CompanyID)
	assert.Equal(t, date(2024, 6, 1), cfo.ObservedAt, "latest IPO-signal hire wins")
	assert.Equal(t, date(2025, 3, 1), cfo.EstimatedDate)
	assert.Equal(t, date(2025, 6, 1), cfo.WindowEnd)
	assert.Equal(t, 0.85, cfo.Confidence)
	assert.Equal(t, 0.45, cfo.Prob6M)
	assert.Equal(t, 0.85, cfo.Prob12M)
	assert.Equal(t, models.TierMedium, cfo.Tier)
	assert.Contains(t, cfo.Indicator, "A. Park")
}

func TestPredictFullIndicatorSet(t *testing.T) {
	p := NewPredictor(config.Default(), asOf)

	c := models.Company{
		ID:           "stack",
		Sector:       models.SectorCybersecurity,
		TotalFunding: 320_000_000,
		EstimatedARR: 140_000_000,
		FundingRounds: []models.FundingRound{
			{Date: date(2023, 5, 10), Stage: "Series C", Amount: 90_000_000},
			{Date: date(2024, 4, 10), Stage: "Series D", Amount: 150_000_000},
		},
		ExecutiveHires:    []models.ExecutiveHire{{Date: date(2024, 10, 1), Role: "CCO"}},
		LatestPatentGrant: tp(date(2024, 11, 20)),
		ARRObservedAt:     tp(date(2024, 12, 31)),
	}
	cats := p.Predict(c)
	require.Len(t, cats, 5)

	for i := 1; i < len(cats); i++ {
		assert.False(t, cats[i].EstimatedDate.Before(cats[i-1].EstimatedDate), "sorted by estimated date")
	}

	arr, ok := findKind(cats, models.CatalystARRThreshold)
	require.True(t, ok)
	assert.Equal(t, date(2024, 12, 31), arr.EstimatedDate)
	assert.Equal(t, models.TierElapsed, arr.Tier)
	assert.Equal(t, 0.75, arr.Confidence)

	series, ok := findKind(cats, models.CatalystSeriesDPlus)
	require.True(t, ok)
	assert.Equal(t, date(2025, 10, 10), series.EstimatedDate)

	patent, ok := findKind(cats, models.CatalystPatentGrant)
	require.True(t, ok)
	assert.Equal(t, date(2025, 5, 20), patent.EstimatedDate)
	assert.Equal(t, date(2025, 11, 20), patent.WindowEnd)

	ma, ok := findKind(cats, models.CatalystMAExit)
	require.True(t, ok)
	assert.Equal(t, date(2026, 7, 15), ma.EstimatedDate)
	assert.Equal(t, 0.5, ma.Confidence, "high-M&A sector lift")
	assert.Equal(t, 0.10, ma.Prob6M)
}

func TestPredictARRBelowThreshold(t *testing.T) {
	p := NewPredictor(config.Default(), asOf)
	cats := p.Predict(models.Company{ID: "small", EstimatedARR: 99_999_999})
	_, ok := findKind(cats, models.CatalystARRThreshold)
	assert.False(t, ok)
}

func TestPredictARRDefaultsToAsOf(t *testing.T) {
	p := NewPredictor(config.Default(), asOf)
	cats := p.Predict(models.Company{ID: "scale", EstimatedARR: 250_000_000})
	arr, ok := findKind(cats, models.CatalystARRThreshold)
	require.True(t, ok)
	assert.Equal(t, asOf, arr.EstimatedDate)
	assert.Equal(t, models.TierImminent, arr.Tier)
}

func TestPredictIPOFilingHorizons(t *testing.T) {
	p := NewPredictor(config.Default(), asOf)

	testCases := []struct {
		name      string
		expected  time.Time
		p6, p12   float64
		tierCheck models.CatalystTier
	}{
		{"within six months", asOf.AddDate(0, 0, 20), 0.6, 0.75, models.TierNearTerm},
		{"within a year", asOf.AddDate(0, 0, 250), 0.3, 0.6, models.TierDistant},
		{"beyond a year", asOf.AddDate(0, 0, 500), 0.12, 0.36, models.TierDistant},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cats := p.Predict(models.Company{ID: "ipo", IPOProbability: 0.6, ExpectedIPODate: tp(tc.expected)})
			ipo, ok := findKind(cats, models.CatalystIPOFiling)
			require.True(t, ok)
			assert.Equal(t, tc.p6, ipo.Prob6M)
			assert.Equal(t, tc.p12, ipo.Prob12M)
			assert.Equal(t, tc.tierCheck, ipo.Tier)
		})
	}
}

func TestPredictMAExitFundingBand(t *testing.T) {
	p := NewPredictor(config.Default(), asOf)

	for _, funding := range []float64{50_000_000, 900_000_000} {
		cats := p.Predict(models.Company{ID: "out", TotalFunding: funding})
		_, ok := findKind(cats, models.CatalystMAExit)
		assert.False(t, ok, "funding %v", funding)
	}

	cats := p.Predict(models.Company{ID: "in", Sector: models.SectorQuantum, TotalFunding: 200_000_000})
	ma, ok := findKind(cats, models.CatalystMAExit)
	require.True(t, ok)
	assert.Equal(t, 0.35, ma.Confidence)
}

func TestPredictSkipsNonSeriesDRounds(t *testing.T) {
	p := NewPredictor(config.Default(), asOf)
	c := models.Company{
		ID: "early",
		FundingRounds: []models.FundingRound{
			{Date: date(2024, 1, 1), Stage: "Series C"},
			{Date: date(2024, 2, 1), Stage: "Seed"},
			{Date: date(2024, 3, 1), Stage: "Series"},
		},
	}
	assert.Empty(t, p.Predict(c))
}

func TestPredictIsRepeatable(t *testing.T) {
	p := NewPredictor(config.Default(), asOf)
	c := models.Company{
		ID:                "repeat",
		TotalFunding:      150_000_000,
		EstimatedARR:      120_000_000,
		ExecutiveHires:    []models.ExecutiveHire{{Date: date(2024, 9, 1), Role: "CFO"}},
		LatestPatentGrant: tp(date(2024, 7, 4)),
	}
	first := p.Predict(c)
	assert.Equal(t, first, p.Predict(c))
}

func TestClassifyTier(t *testing.T) {
	testCases := []struct {
		offset   time.Duration
		expected models.CatalystTier
	}{
		{-time.Hour, models.TierElapsed},
		{0, models.TierImminent},
		{7 * day, models.TierImminent},
		{8 * day, models.TierNearTerm},
		{30 * day, models.TierNearTerm},
		{31 * day, models.TierMedium},
		{90 * day, models.TierMedium},
		{91 * day, models.TierDistant},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ClassifyTier(asOf.Add(tc.offset), asOf), "offset %v", tc.offset)
	}
}

func TestIsNearTerm(t *testing.T) {
	c := models.Catalyst{EstimatedDate: asOf.AddDate(0, 0, 30)}
	assert.True(t, IsNearTerm(c, asOf, 30))
	assert.False(t, IsNearTerm(c, asOf, 29))

	past := models.Catalyst{EstimatedDate: asOf.AddDate(0, 0, -1)}
	assert.False(t, IsNearTerm(past, asOf, 30))
}
