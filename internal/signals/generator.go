// Package signals turns per-company scores into ranked, sized trade signals
// with exposure routes for private companies.
package signals

import (
	"sort"
	"time"

	"github.com/sawpanic/techrun/internal/catalyst"
	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

// HighConviction is the conviction floor for the high-conviction tag and summary count
const HighConviction = 0.70

// Input is the complete per-company result set of a run. The generator is
// the aggregation barrier: it must see every company before ranking.
type Input struct {
	Companies []models.Company
	Momentum  map[string]models.MomentumScore
	Moat      map[string]models.MoatScore
	Catalysts map[string][]models.Catalyst
}

// Generator builds and ranks TradeSignals
type Generator struct {
	cfg  config.PipelineConfig
	asOf time.Time
}

// NewGenerator binds a generator to a validated configuration and the run's as-of time
func NewGenerator(cfg config.PipelineConfig, asOf time.Time) *Generator {
	return &Generator{cfg: cfg, asOf: asOf.UTC()}
}

// Generate returns one signal per company with a momentum score, ranked by
// conviction desc, momentum desc, company id asc. Ranks are dense from 1.
func (g *Generator) Generate(in Input) []models.TradeSignal {
	out := make([]models.TradeSignal, 0, len(in.Companies))
	for _, c := range in.Companies {
		m, ok := in.Momentum[c.ID]
		if !ok {
			continue
		}
		out = append(out, g.signal(c, m, in.Moat[c.ID], in.Catalysts[c.ID]))
	}

	Rank(out)
	return out
}

// Rank sorts signals into their total order and assigns dense ranks
func Rank(sigs []models.TradeSignal) {
	sort.SliceStable(sigs, func(i, j int) bool {
		a, b := sigs[i], sigs[j]
		if a.Conviction != b.Conviction {
			return a.Conviction > b.Conviction
		}
		if a.Momentum != b.Momentum {
			return a.Momentum > b.Momentum
		}
		return a.CompanyID < b.CompanyID
	})
	for i := range sigs {
		sigs[i].Rank = i + 1
	}
}

func (g *Generator) signal(c models.Company, m models.MomentumScore, moat models.MoatScore, cats []models.Catalyst) models.TradeSignal {
	next, hasNext := catalyst.NextUpcoming(cats, g.asOf)
	nearTerm := hasNext && catalyst.IsNearTerm(next, g.asOf, g.cfg.NearTermCatalystDays)

	conviction := Conviction(m, moat.Total, nearTerm, g.cfg.ConvictionWeights)
	rec := Recommend(RuleInput{Divergence: m.Divergence, Build: m.Build, Moat: moat.Total}, g.cfg.Recommendation)

	sig := models.TradeSignal{
		CompanyID:      c.ID,
		CompanyName:    c.Name,
		Sector:         c.Sector,
		Momentum:       m.Momentum,
		Hype:           m.Hype,
		Build:          m.Build,
		Moat:           moat.Total,
		Divergence:     m.Divergence,
		Conviction:     conviction,
		Recommendation: rec,
		Position:       PositionFor(conviction, g.cfg.PositionBuckets, g.cfg.RiskLimits.MaxPositionPct),
		Routes:         g.routes(c),
		RiskFactors:    riskFactors(c, m, moat),
		TimeHorizon:    g.timeHorizon(next, hasNext),
	}

	var nextPtr *models.Catalyst
	if hasNext {
		nextPtr = &next
		sig.NextCatalyst = next.Kind
		date := next.EstimatedDate
		sig.CatalystDate = &date
	}
	sig.EntryTiming = g.entryTiming(m, nextPtr, nearTerm)
	sig.ExpectedReturn = expectedReturn(m, moat, nextPtr)

	if moat.RailOwner {
		sig.Tags = append(sig.Tags, "rail_owner")
	}
	if conviction >= HighConviction {
		sig.Tags = append(sig.Tags, "high_conviction")
	}
	if nearTerm {
		sig.Tags = append(sig.Tags, "near_term_catalyst")
	}
	return sig
}

// entryTiming rules, first match wins
func (g *Generator) entryTiming(m models.MomentumScore, next *models.Catalyst, nearTerm bool) string {
	switch {
	case m.Momentum > 75 && next != nil && (nearTerm || next.Prob6M > 0.50):
		return "Immediate (catalyst within 6 months)"
	case m.Divergence == models.MispricedOpportunity:
		return "Immediate (mispriced execution momentum)"
	case m.Momentum > 75:
		return "Immediate"
	case m.Momentum > 55:
		return "Staged entry (build position over 30-60 days)"
	case next != nil:
		return "Wait for catalyst (monitor until " + next.EstimatedDate.Format("2006-01") + ")"
	default:
		return "Monitor (no immediate entry)"
	}
}

func (g *Generator) timeHorizon(next models.Catalyst, ok bool) string {
	if !ok {
		return "18-36 months (long-term hold)"
	}
	days := catalyst.DaysUntil(next, g.asOf)
	switch {
	case days < 180:
		return "3-6 months (near-term catalyst)"
	case days < 365:
		return "6-12 months (medium-term)"
	case days < 730:
		return "12-24 months (long-term)"
	default:
		return "24+ months (very long-term)"
	}
}

func expectedReturn(m models.MomentumScore, moat models.MoatScore, next *models.Catalyst) string {
	switch {
	case m.Momentum > 85 && moat.Total > 70 && next != nil && next.Prob6M > 0.60:
		return "50-100% (12-18 months)"
	case m.Momentum > 75 && next != nil:
		return "30-60% (12 months)"
	case m.Divergence == models.MispricedOpportunity:
		return "40-80% (18-24 months, mispricing corrects)"
	case m.Momentum > 60:
		return "20-40% (12-18 months)"
	default:
		return "10-25% (18-24 months)"
	}
}

var capexSectors = map[models.Sector]bool{
	models.SectorSemiconductor: true,
	models.SectorQuantum:       true,
	models.SectorSixG:          true,
	models.SectorGreenEnergy:   true,
}

func riskFactors(c models.Company, m models.MomentumScore, moat models.MoatScore) []string {
	risks := make([]string, 0, 4)
	if m.Divergence == models.BubbleRisk {
		risks = append(risks, "Bubble risk: high hype relative to execution")
	}
	if moat.Total < 40 {
		risks = append(risks, "Weak competitive moat (susceptible to competition)")
	}
	if c.EnterpriseCustomers < 10 {
		risks = append(risks, "Limited customer diversification")
	}
	if c.TotalFunding < 200_000_000 {
		risks = append(risks, "Requires additional funding rounds (dilution risk)")
	}
	if capexSectors[c.Sector] {
		risks = append(risks, "Capital-intensive model (high burn rate)")
	}
	if c.IPOProbability > 0.60 {
		risks = append(risks, "IPO window dependency (market conditions)")
	}
	switch c.Sector {
	case models.SectorQuantum:
		risks = append(risks, "Technology commercialization timeline uncertain")
	case models.SectorBiotechInfra:
		risks = append(risks, "Regulatory approval timelines")
	}
	return risks
}
