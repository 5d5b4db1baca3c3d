package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/techrun/internal/models"
)

// Hype sub-metric weight keys
const (
	HypeMedia      = "media"
	HypeSocial     = "social"
	HypeVCBuzz     = "vc_buzz"
	HypeConference = "conference"
	HypeSearch     = "search"
)

// Build sub-metric weight keys
const (
	BuildRevenue    = "revenue"
	BuildLogos      = "logos"
	BuildPatents    = "patents"
	BuildTalent     = "talent"
	BuildMilestones = "milestones"
)

// Moat dimension weight keys
const (
	MoatRegulatory = "regulatory"
	MoatNetwork    = "network"
	MoatCapital    = "capital"
	MoatData       = "data"
	MoatSwitching  = "switching"
)

// Conviction component weight keys
const (
	ConvictionMomentum = "momentum"
	ConvictionMoat     = "moat"
	ConvictionCatalyst = "catalyst"
	ConvictionGap      = "gap"
)

// CompositeWeights blend hype and build into the momentum score
type CompositeWeights struct {
	Hype  float64 `yaml:"hype" json:"hype"`
	Build float64 `yaml:"build" json:"build"`
}

// DivergenceThresholds are the [low, high) cutoffs on each axis
type DivergenceThresholds struct {
	High float64 `yaml:"high" json:"high"` // 65
	Low  float64 `yaml:"low" json:"low"`   // 45
}

// SecondOrderThresholds gate supplier plays
type SecondOrderThresholds struct {
	Dependency      float64 `yaml:"dependency" json:"dependency"`             // edge dependency must exceed
	Correlation     float64 `yaml:"correlation" json:"correlation"`           // |price correlation| must stay below
	PrimaryMomentum float64 `yaml:"primary_momentum" json:"primary_momentum"` // primary momentum must exceed
}

// RiskLimits are portfolio-level risk controls, in percent except correlation
type RiskLimits struct {
	MaxPositionPct float64 `yaml:"max_position_pct" json:"max_position_pct"`
	MaxSectorPct   float64 `yaml:"max_sector_pct" json:"max_sector_pct"`
	MaxCorrelation float64 `yaml:"max_correlation" json:"max_correlation"`
}

// PositionBucket maps a conviction floor to a position range
type PositionBucket struct {
	MinConviction float64 `yaml:"min_conviction" json:"min_conviction"`
	MinPct        float64 `yaml:"min_pct" json:"min_pct"`
	MaxPct        float64 `yaml:"max_pct" json:"max_pct"`
}

// RecommendationThresholds are the secondary cutoffs used by the recommendation rules
type RecommendationThresholds struct {
	StrongBuyMoat    float64 `yaml:"strong_buy_moat" json:"strong_buy_moat"`
	ShortBuildCutoff float64 `yaml:"short_build_cutoff" json:"short_build_cutoff"`
}

// CatalystLead is one row of the leading-indicator table
type CatalystLead struct {
	LeadMonths   int     `yaml:"lead_months" json:"lead_months"`
	WindowMonths int     `yaml:"window_months" json:"window_months"`
	Confidence   float64 `yaml:"confidence" json:"confidence"`
	Prob6M       float64 `yaml:"prob_6m" json:"prob_6m"`
	Prob12M      float64 `yaml:"prob_12m" json:"prob_12m"`
}

// MoatBaseline is a sector's starting value per moat dimension
type MoatBaseline struct {
	Regulatory float64 `yaml:"regulatory" json:"regulatory"`
	Network    float64 `yaml:"network" json:"network"`
	Capital    float64 `yaml:"capital" json:"capital"`
	Data       float64 `yaml:"data" json:"data"`
	Switching  float64 `yaml:"switching" json:"switching"`
}

// PipelineConfig holds every weight, threshold and lookup table the scoring
// pipeline reads. A validated value is built once per run and handed to each
// component; components never write to it.
type PipelineConfig struct {
	HypeWeights           map[string]float64    `yaml:"hype_weights" json:"hype_weights"`
	BuildWeights          map[string]float64    `yaml:"build_weights" json:"build_weights"`
	CompositeWeights      CompositeWeights      `yaml:"composite_weights" json:"composite_weights"`
	DivergenceThresholds  DivergenceThresholds  `yaml:"divergence_thresholds" json:"divergence_thresholds"`
	MoatWeights           map[string]float64    `yaml:"moat_weights" json:"moat_weights"`
	SecondOrderThresholds SecondOrderThresholds `yaml:"second_order_thresholds" json:"second_order_thresholds"`
	RiskLimits            RiskLimits            `yaml:"risk_limits" json:"risk_limits"`

	ConvictionWeights    map[string]float64       `yaml:"conviction_weights" json:"conviction_weights"`
	PositionBuckets      []PositionBucket         `yaml:"position_buckets" json:"position_buckets"`
	Recommendation       RecommendationThresholds `yaml:"recommendation" json:"recommendation"`
	NearTermCatalystDays int                      `yaml:"near_term_catalyst_days" json:"near_term_catalyst_days"`
	Wave4MoatThreshold   float64                  `yaml:"wave4_moat_threshold" json:"wave4_moat_threshold"`

	CatalystLeads map[models.CatalystKind]CatalystLead `yaml:"catalyst_leads" json:"catalyst_leads"`
	ARRThreshold  float64                              `yaml:"arr_threshold" json:"arr_threshold"`

	SectorBaselines map[models.Sector]MoatBaseline `yaml:"sector_baselines" json:"sector_baselines"`
	NeutralBaseline MoatBaseline                   `yaml:"neutral_baseline" json:"neutral_baseline"`

	ProxyTable    map[string][]models.PublicProxy `yaml:"proxy_table" json:"proxy_table"` // company id or sector -> proxies
	SectorBaskets map[models.Sector]string        `yaml:"sector_baskets" json:"sector_baskets"`
}

// weightSets holds the weight maps of a config file. A weight map present in
// the file replaces its default as a whole; merging keys would change the sum.
type weightSets struct {
	HypeWeights       map[string]float64 `yaml:"hype_weights"`
	BuildWeights      map[string]float64 `yaml:"build_weights"`
	MoatWeights       map[string]float64 `yaml:"moat_weights"`
	ConvictionWeights map[string]float64 `yaml:"conviction_weights"`
}

func (w weightSets) apply(cfg *PipelineConfig) {
	if w.HypeWeights != nil {
		cfg.HypeWeights = w.HypeWeights
	}
	if w.BuildWeights != nil {
		cfg.BuildWeights = w.BuildWeights
	}
	if w.MoatWeights != nil {
		cfg.MoatWeights = w.MoatWeights
	}
	if w.ConvictionWeights != nil {
		cfg.ConvictionWeights = w.ConvictionWeights
	}
}

// Load reads a YAML file and overlays it onto Default(). Keys missing from the
// file keep their default values. Weight maps are replaced whole; lookup
// tables (baselines, leads, proxies, baskets) are merged per key. The result
// is validated.
func Load(path string) (PipelineConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("failed to read pipeline config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PipelineConfig{}, fmt.Errorf("failed to parse pipeline config %s: %w", path, err)
	}
	var weights weightSets
	if err := yaml.Unmarshal(data, &weights); err != nil {
		return PipelineConfig{}, fmt.Errorf("failed to parse pipeline config %s: %w", path, err)
	}
	weights.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return PipelineConfig{}, err
	}
	return cfg, nil
}

// Marshal renders the effective configuration as YAML
func (c PipelineConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Baseline returns the moat baseline for a sector and whether the sector was known
func (c PipelineConfig) Baseline(sector models.Sector) (MoatBaseline, bool) {
	if b, ok := c.SectorBaselines[sector]; ok {
		return b, true
	}
	return c.NeutralBaseline, false
}
