package scoring

import (
	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

// Scorer computes dual-track momentum: a hype track for narrative attention
// and a build track for execution evidence, blended into one composite.
type Scorer struct {
	hypeWeights  map[string]float64
	buildWeights map[string]float64
	composite    config.CompositeWeights
	thresholds   config.DivergenceThresholds
}

// NewScorer binds a scorer to a validated configuration
func NewScorer(cfg config.PipelineConfig) *Scorer {
	return &Scorer{
		hypeWeights:  cfg.HypeWeights,
		buildWeights: cfg.BuildWeights,
		composite:    cfg.CompositeWeights,
		thresholds:   cfg.DivergenceThresholds,
	}
}

// Score computes the momentum score for one company. Sub-metrics outside
// [0,100] are clamped before weighting; the caller records the range warning.
func (s *Scorer) Score(c models.Company) models.MomentumScore {
	hype := s.HypeScore(c.Hype)
	build := s.BuildScore(c.Build)
	momentum := models.ClampScore(hype*s.composite.Hype + build*s.composite.Build)

	return models.MomentumScore{
		CompanyID:  c.ID,
		Hype:       hype,
		Build:      build,
		Momentum:   models.Round(momentum, 2),
		Divergence: Classify(hype, build, s.thresholds),
	}
}

// HypeScore is the weighted hype track in [0,100]
func (s *Scorer) HypeScore(h models.HypeMetrics) float64 {
	parts := []part{
		{config.HypeMedia, h.MediaMentions},
		{config.HypeSocial, h.SocialGrowth},
		{config.HypeVCBuzz, h.VCThesisMentions},
		{config.HypeConference, h.ConferenceAppearances},
		{config.HypeSearch, h.SearchTrend},
	}
	return weighted(parts, s.hypeWeights)
}

// BuildScore is the weighted build track in [0,100]
func (s *Scorer) BuildScore(b models.BuildMetrics) float64 {
	parts := []part{
		{config.BuildRevenue, b.RevenueGrowth},
		{config.BuildLogos, b.LogoCount},
		{config.BuildPatents, b.PatentVelocity},
		{config.BuildTalent, b.TalentDensity},
		{config.BuildMilestones, b.ProductMilestones},
	}
	return weighted(parts, s.buildWeights)
}

type part struct {
	key   string
	value float64
}

// weighted sums in fixed key order so results are bit-identical across runs
func weighted(parts []part, weights map[string]float64) float64 {
	total := 0.0
	for _, p := range parts {
		total += weights[p.key] * models.ClampScore(p.value)
	}
	return models.Round(models.ClampScore(total), 2)
}
