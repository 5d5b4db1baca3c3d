package models

import (
	"math"
	"strings"
	"time"
)

// Sector is the technology sector a company operates in
type Sector string

const (
	SectorAIInfra       Sector = "AI_Infra"
	SectorDataInfra     Sector = "Data_Infra"
	SectorSemiconductor Sector = "Semiconductors"
	SectorCybersecurity Sector = "Cybersecurity"
	SectorQuantum       Sector = "Quantum"
	SectorSixG          Sector = "6G"
	SectorGreenEnergy   Sector = "Green_Energy"
	SectorBiotechInfra  Sector = "Biotech_Infra"
)

// KnownSectors lists every sector with built-in baseline tables
var KnownSectors = []Sector{
	SectorAIInfra, SectorDataInfra, SectorSemiconductor, SectorCybersecurity,
	SectorQuantum, SectorSixG, SectorGreenEnergy, SectorBiotechInfra,
}

// WaveCategory is the wave progression stage (replace, arbitrage, embed, own)
type WaveCategory string

const (
	Wave1 WaveCategory = "Wave1"
	Wave2 WaveCategory = "Wave2"
	Wave3 WaveCategory = "Wave3"
	Wave4 WaveCategory = "Wave4"
)

// HypeMetrics are the narrative sub-metrics, each pre-normalized to [0,100] upstream
type HypeMetrics struct {
	MediaMentions         float64 `json:"media_mentions" yaml:"media_mentions"`
	SocialGrowth          float64 `json:"social_growth" yaml:"social_growth"`
	VCThesisMentions      float64 `json:"vc_thesis_mentions" yaml:"vc_thesis_mentions"`
	ConferenceAppearances float64 `json:"conference_appearances" yaml:"conference_appearances"`
	SearchTrend           float64 `json:"search_trend" yaml:"search_trend"`
}

// BuildMetrics are the execution sub-metrics, each pre-normalized to [0,100] upstream
type BuildMetrics struct {
	RevenueGrowth     float64 `json:"revenue_growth" yaml:"revenue_growth"`
	LogoCount         float64 `json:"logo_count" yaml:"logo_count"`
	PatentVelocity    float64 `json:"patent_velocity" yaml:"patent_velocity"`
	TalentDensity     float64 `json:"talent_density" yaml:"talent_density"`
	ProductMilestones float64 `json:"product_milestones" yaml:"product_milestones"`
}

// ExecutiveHire is a tracked senior hire; CFO/CCO hires lead IPOs
type ExecutiveHire struct {
	Date time.Time `json:"date" yaml:"date" validate:"required"`
	Role string    `json:"role" yaml:"role" validate:"required"`
	Name string    `json:"name,omitempty" yaml:"name,omitempty"`
}

// IsIPOSignal reports whether the hire is a finance or commercial chief
func (h ExecutiveHire) IsIPOSignal() bool {
	role := strings.ToUpper(h.Role)
	for _, marker := range []string{"CFO", "CCO", "CHIEF FINANCIAL", "CHIEF COMMERCIAL"} {
		if strings.Contains(role, marker) {
			return true
		}
	}
	return false
}

// FundingRound is a single priced round
type FundingRound struct {
	Date         time.Time `json:"date" yaml:"date" validate:"required"`
	Stage        string    `json:"stage" yaml:"stage" validate:"required"` // "Seed", "Series A", ... "Series F"
	Amount       float64   `json:"amount" yaml:"amount"`
	LeadInvestor string    `json:"lead_investor,omitempty" yaml:"lead_investor,omitempty"`
}

// IsSeriesDPlus reports whether the round is Series D or later
func (r FundingRound) IsSeriesDPlus() bool {
	stage := strings.ToUpper(strings.TrimSpace(r.Stage))
	if !strings.HasPrefix(stage, "SERIES ") {
		return false
	}
	letter := strings.TrimPrefix(stage, "SERIES ")
	return len(letter) == 1 && letter[0] >= 'D' && letter[0] <= 'Z'
}

// PublicProxy is a listed instrument that tracks a private company's exposure
type PublicProxy struct {
	Ticker       string  `json:"ticker" yaml:"ticker" validate:"required"`
	ExposureType string  `json:"exposure_type,omitempty" yaml:"exposure_type,omitempty"`
	Correlation  float64 `json:"correlation" yaml:"correlation"` // [-1,1]
}

// MoatOverrides replace computed moat dimensions when set
type MoatOverrides struct {
	Regulatory     *float64 `json:"regulatory,omitempty" yaml:"regulatory,omitempty"`
	NetworkEffects *float64 `json:"network_effects,omitempty" yaml:"network_effects,omitempty"`
	CapitalIntense *float64 `json:"capital_intensity,omitempty" yaml:"capital_intensity,omitempty"`
	Data           *float64 `json:"data,omitempty" yaml:"data,omitempty"`
	SwitchingCost  *float64 `json:"switching_cost,omitempty" yaml:"switching_cost,omitempty"`
}

// Company is a normalized record supplied by the ingestion layer. It is
// read-only for the duration of a run.
type Company struct {
	ID               string       `json:"company_id" yaml:"company_id" validate:"required"`
	Name             string       `json:"name" yaml:"name" validate:"required"`
	Sector           Sector       `json:"sector" yaml:"sector"`
	Wave             WaveCategory `json:"wave_category" yaml:"wave_category"`
	BottleneckSolved string       `json:"bottleneck_solved,omitempty" yaml:"bottleneck_solved,omitempty"`

	TotalFunding        float64 `json:"total_funding" yaml:"total_funding"`
	LastValuation       float64 `json:"last_valuation" yaml:"last_valuation"`
	PatentCount         int     `json:"patent_count" yaml:"patent_count"`
	EnterpriseCustomers int     `json:"enterprise_customers" yaml:"enterprise_customers"`
	EstimatedARR        float64 `json:"estimated_arr" yaml:"estimated_arr"`
	IPOProbability      float64 `json:"ipo_probability" yaml:"ipo_probability"` // [0,1], 12 month horizon

	Hype  HypeMetrics  `json:"hype" yaml:"hype"`
	Build BuildMetrics `json:"build" yaml:"build"`

	ExecutiveHires    []ExecutiveHire `json:"executive_hires,omitempty" yaml:"executive_hires,omitempty" validate:"dive"`
	FundingRounds     []FundingRound  `json:"funding_rounds,omitempty" yaml:"funding_rounds,omitempty" validate:"dive"`
	LatestPatentGrant *time.Time      `json:"latest_patent_grant,omitempty" yaml:"latest_patent_grant,omitempty"`
	ARRObservedAt     *time.Time      `json:"arr_observed_at,omitempty" yaml:"arr_observed_at,omitempty"`
	ExpectedIPODate   *time.Time      `json:"expected_ipo_date,omitempty" yaml:"expected_ipo_date,omitempty"`

	RegulatoryLicense   bool           `json:"regulatory_license" yaml:"regulatory_license"`
	DefenseContracts    bool           `json:"defense_contracts" yaml:"defense_contracts"`
	GovernmentCustomers bool           `json:"government_customers" yaml:"government_customers"`
	RegulatoryApprovals int            `json:"regulatory_approvals" yaml:"regulatory_approvals"`
	MoatOverrides       *MoatOverrides `json:"moat_overrides,omitempty" yaml:"moat_overrides,omitempty"`

	PublicProxies   []PublicProxy `json:"public_proxies,omitempty" yaml:"public_proxies,omitempty" validate:"dive"`
	SecondaryVenues []string      `json:"secondary_venues,omitempty" yaml:"secondary_venues,omitempty"`
}

// RangeIssues lists fields outside their documented range, NaN included. Callers clamp and
// continue; the list exists so the anomaly can be surfaced as a warning.
func (c Company) RangeIssues() []string {
	var issues []string
	check := func(field string, v, lo, hi float64) {
		if math.IsNaN(v) || v < lo || v > hi {
			issues = append(issues, field)
		}
	}

	check("hype.media_mentions", c.Hype.MediaMentions, 0, 100)
	check("hype.social_growth", c.Hype.SocialGrowth, 0, 100)
	check("hype.vc_thesis_mentions", c.Hype.VCThesisMentions, 0, 100)
	check("hype.conference_appearances", c.Hype.ConferenceAppearances, 0, 100)
	check("hype.search_trend", c.Hype.SearchTrend, 0, 100)
	check("build.revenue_growth", c.Build.RevenueGrowth, 0, 100)
	check("build.logo_count", c.Build.LogoCount, 0, 100)
	check("build.patent_velocity", c.Build.PatentVelocity, 0, 100)
	check("build.talent_density", c.Build.TalentDensity, 0, 100)
	check("build.product_milestones", c.Build.ProductMilestones, 0, 100)
	check("ipo_probability", c.IPOProbability, 0, 1)

	if c.PatentCount < 0 {
		issues = append(issues, "patent_count")
	}
	if c.EnterpriseCustomers < 0 {
		issues = append(issues, "enterprise_customers")
	}
	if c.RegulatoryApprovals < 0 {
		issues = append(issues, "regulatory_approvals")
	}
	for _, p := range c.PublicProxies {
		check("public_proxies."+p.Ticker+".correlation", p.Correlation, -1, 1)
	}
	return issues
}
