package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

var asOf = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func TestRecommend(t *testing.T) {
	th := config.Default().Recommendation

	testCases := []struct {
		name     string
		in       RuleInput
		expected models.Recommendation
	}{
		{"bubble with collapsed build escalates to short", RuleInput{Divergence: models.BubbleRisk, Build: 20, Moat: 90}, models.Short},
		{"bubble at the short cutoff fades", RuleInput{Divergence: models.BubbleRisk, Build: 30}, models.Fade},
		{"bubble fades", RuleInput{Divergence: models.BubbleRisk, Build: 40}, models.Fade},
		{"confirmed with strong moat", RuleInput{Divergence: models.ConfirmedMomentum, Build: 80, Moat: 70.01}, models.StrongBuy},
		{"confirmed with moat at 70 is a buy", RuleInput{Divergence: models.ConfirmedMomentum, Build: 80, Moat: 70}, models.Buy},
		{"mispriced", RuleInput{Divergence: models.MispricedOpportunity, Build: 90, Moat: 95}, models.Buy},
		{"no signal holds", RuleInput{Divergence: models.NoSignal, Build: 60, Moat: 99}, models.Hold},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Recommend(tc.in, th))
		})
	}
}

func TestRecommendNeverSells(t *testing.T) {
	th := config.Default().Recommendation
	for _, flag := range []models.DivergenceFlag{models.ConfirmedMomentum, models.MispricedOpportunity, models.BubbleRisk, models.NoSignal} {
		for build := 0.0; build <= 100; build += 5 {
			for moat := 0.0; moat <= 100; moat += 10 {
				assert.NotEqual(t, models.Sell, Recommend(RuleInput{Divergence: flag, Build: build, Moat: moat}, th))
			}
		}
	}
}

func TestConviction(t *testing.T) {
	weights := config.Default().ConvictionWeights

	m := models.MomentumScore{Hype: 90, Build: 72, Momentum: 80}
	assert.InDelta(t, 0.7145, Conviction(m, 75, true, weights), 1e-9)
	assert.InDelta(t, 0.6145, Conviction(m, 75, false, weights), 1e-9)

	maxed := models.MomentumScore{Hype: 100, Build: 0, Momentum: 100}
	assert.LessOrEqual(t, Conviction(maxed, 100, true, weights), 1.0)
	assert.Equal(t, 0.0, Conviction(models.MomentumScore{}, 0, false, weights))
}

func TestPositionFor(t *testing.T) {
	cfg := config.Default()

	testCases := []struct {
		conviction float64
		maxPct     float64
		expected   models.PositionSize
	}{
		{0.95, 5, models.PositionSize{MinPct: 4, MaxPct: 5}},
		{0.80, 5, models.PositionSize{MinPct: 4, MaxPct: 5}},
		{0.79, 5, models.PositionSize{MinPct: 3, MaxPct: 5}},
		{0.70, 5, models.PositionSize{MinPct: 3, MaxPct: 5}},
		{0.10, 5, models.PositionSize{MinPct: 2, MaxPct: 4}},
		{0.95, 3, models.PositionSize{MinPct: 3, MaxPct: 3}},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, PositionFor(tc.conviction, cfg.PositionBuckets, tc.maxPct), "conviction %v", tc.conviction)
	}
	assert.Equal(t, "4-5%", PositionFor(0.9, cfg.PositionBuckets, 5).String())
}

func TestPositionMonotoneAndCapped(t *testing.T) {
	cfg := config.Default()
	prev := PositionFor(0, cfg.PositionBuckets, cfg.RiskLimits.MaxPositionPct)
	for c := 0.0; c <= 1.0; c += 0.01 {
		pos := PositionFor(c, cfg.PositionBuckets, cfg.RiskLimits.MaxPositionPct)
		assert.GreaterOrEqual(t, pos.MinPct, prev.MinPct)
		assert.GreaterOrEqual(t, pos.MaxPct, prev.MaxPct)
		assert.LessOrEqual(t, pos.MaxPct, cfg.RiskLimits.MaxPositionPct)
		prev = pos
	}
}

func fixture() Input {
	companies := []models.Company{
		{
			ID: "lattice", Name: "Lattice Compute", Sector: models.SectorAIInfra,
			LastValuation: 2_000_000_000, SecondaryVenues: []string{"Forge", "EquityZen"},
			EnterpriseCustomers: 40, TotalFunding: 600_000_000,
		},
		{
			ID: "bubble", Name: "Bubble Sec", Sector: models.SectorCybersecurity,
			PublicProxies: []models.PublicProxy{
				{Ticker: "CRWD", ExposureType: "peer", Correlation: 0.80},
				{Ticker: "ZS", ExposureType: "peer", Correlation: -0.85},
			},
		},
		{ID: "quiet", Name: "Quiet Qubits", Sector: models.SectorQuantum, TotalFunding: 250_000_000},
	}
	return Input{
		Companies: companies,
		Momentum: map[string]models.MomentumScore{
			"lattice": {CompanyID: "lattice", Hype: 70, Build: 80, Momentum: 76, Divergence: models.ConfirmedMomentum},
			"bubble":  {CompanyID: "bubble", Hype: 80, Build: 20, Momentum: 44, Divergence: models.BubbleRisk},
			"quiet":   {CompanyID: "quiet", Hype: 50, Build: 50, Momentum: 50, Divergence: models.NoSignal},
		},
		Moat: map[string]models.MoatScore{
			"lattice": {CompanyID: "lattice", Total: 78, RailOwner: true},
			"bubble":  {CompanyID: "bubble", Total: 45},
			"quiet":   {CompanyID: "quiet", Total: 60},
		},
		Catalysts: map[string][]models.Catalyst{
			"lattice": {{CompanyID: "lattice", Kind: models.CatalystCFOHire, EstimatedDate: asOf.AddDate(0, 0, 20), Prob6M: 0.45}},
			"quiet":   {{CompanyID: "quiet", Kind: models.CatalystMAExit, EstimatedDate: asOf.AddDate(0, 0, 200), Prob6M: 0.10}},
		},
	}
}

func TestGenerate(t *testing.T) {
	gen := NewGenerator(config.Default(), asOf)
	sigs := gen.Generate(fixture())
	require.Len(t, sigs, 3)

	lattice := sigs[0]
	assert.Equal(t, 1, lattice.Rank)
	assert.Equal(t, "lattice", lattice.CompanyID)
	assert.Equal(t, models.StrongBuy, lattice.Recommendation)
	assert.InDelta(t, 0.69, lattice.Conviction, 1e-9)
	assert.Equal(t, models.PositionSize{MinPct: 2, MaxPct: 4}, lattice.Position)
	assert.Equal(t, "Immediate (catalyst within 6 months)", lattice.EntryTiming)
	assert.Equal(t, models.CatalystCFOHire, lattice.NextCatalyst)
	require.NotNil(t, lattice.CatalystDate)
	assert.Equal(t, "3-6 months (near-term catalyst)", lattice.TimeHorizon)
	assert.Contains(t, lattice.Tags, "rail_owner")
	assert.Contains(t, lattice.Tags, "near_term_catalyst")

	proxy, ok := lattice.Route(models.RoutePublicProxy)
	require.True(t, ok)
	assert.Equal(t, "SKYY", proxy.Ticker, "sector ETF fallback")
	secondary, ok := lattice.Route(models.RouteSecondary)
	require.True(t, ok)
	assert.Contains(t, secondary.Reference, "Forge/EquityZen")
	assert.Contains(t, secondary.Reference, "$2000M")
	_, ok = lattice.Route(models.RouteSynthetic)
	assert.True(t, ok)

	bubble := sigs[1]
	assert.Equal(t, 2, bubble.Rank)
	assert.Equal(t, models.Short, bubble.Recommendation)
	assert.InDelta(t, 0.4225, bubble.Conviction, 1e-9)
	assert.Equal(t, "Monitor (no immediate entry)", bubble.EntryTiming)
	assert.Equal(t, "18-36 months (long-term hold)", bubble.TimeHorizon)
	assert.Nil(t, bubble.CatalystDate)
	assert.Contains(t, bubble.RiskFactors, "Bubble risk: high hype relative to execution")
	proxy, ok = bubble.Route(models.RoutePublicProxy)
	require.True(t, ok)
	assert.Equal(t, "ZS", proxy.Ticker, "highest absolute correlation wins")
	_, ok = bubble.Route(models.RouteSecondary)
	assert.False(t, ok)

	quiet := sigs[2]
	assert.Equal(t, 3, quiet.Rank)
	assert.Equal(t, models.Hold, quiet.Recommendation)
	assert.Equal(t, "Wait for catalyst (monitor until 2025-08)", quiet.EntryTiming)
	assert.Equal(t, "6-12 months (medium-term)", quiet.TimeHorizon)
	assert.Contains(t, quiet.RiskFactors, "Technology commercialization timeline uncertain")
	_, ok = quiet.Route(models.RouteSynthetic)
	assert.False(t, ok, "no basket configured for Quantum")
}

func TestGenerateOrderIndependent(t *testing.T) {
	gen := NewGenerator(config.Default(), asOf)

	in := fixture()
	first := gen.Generate(in)

	reversed := fixture()
	for i, j := 0, len(reversed.Companies)-1; i < j; i, j = i+1, j-1 {
		reversed.Companies[i], reversed.Companies[j] = reversed.Companies[j], reversed.Companies[i]
	}
	assert.Equal(t, first, gen.Generate(reversed))
}

func TestRankTieBreaks(t *testing.T) {
	sigs := []models.TradeSignal{
		{CompanyID: "b", Conviction: 0.5, Momentum: 60},
		{CompanyID: "a", Conviction: 0.5, Momentum: 60},
		{CompanyID: "c", Conviction: 0.5, Momentum: 61},
		{CompanyID: "d", Conviction: 0.9, Momentum: 10},
	}
	Rank(sigs)

	ids := make([]string, len(sigs))
	for i, s := range sigs {
		ids[i] = s.CompanyID
		assert.Equal(t, i+1, s.Rank)
	}
	assert.Equal(t, []string{"d", "c", "a", "b"}, ids)
}

func TestGenerateEmpty(t *testing.T) {
	gen := NewGenerator(config.Default(), asOf)
	sigs := gen.Generate(Input{})
	assert.NotNil(t, sigs)
	assert.Empty(t, sigs)
}
