package gates

import (
	"fmt"
	"math"
	"sort"

	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

// Gate names
const (
	GatePositionCap       = "max_position"
	GateProxyCorrelation  = "max_correlation"
	GateSectorConcentrate = "max_sector"
)

// GateCheck is one evaluated portfolio limit for one signal
type GateCheck struct {
	Name        string  `json:"name"`
	Passed      bool    `json:"passed"`
	Value       float64 `json:"value"`
	Threshold   float64 `json:"threshold"`
	Description string  `json:"description"`
}

// GateReport collects the checks of one Apply call
type GateReport struct {
	Checks      map[string][]GateCheck    `json:"checks"` // company id -> checks
	SectorTotal map[models.Sector]float64 `json:"sector_total"`
	Flagged     int                       `json:"flagged"`
}

// RiskGate applies portfolio-level limits to ranked signals. It annotates
// signals with risk flags and never reorders or removes them.
type RiskGate struct {
	limits config.RiskLimits
}

// NewRiskGate binds a gate to the configured limits
func NewRiskGate(limits config.RiskLimits) *RiskGate {
	return &RiskGate{limits: limits}
}

// Apply returns annotated copies of the ranked signals
func (g *RiskGate) Apply(ranked []models.TradeSignal) []models.TradeSignal {
	out, _ := g.Evaluate(ranked)
	return out
}

// Evaluate is Apply plus the per-signal check report. Long signals are walked
// in rank order and each adds its maximum position to its sector's running
// total; a signal that pushes the total past max_sector_pct is flagged.
func (g *RiskGate) Evaluate(ranked []models.TradeSignal) ([]models.TradeSignal, *GateReport) {
	report := &GateReport{
		Checks:      make(map[string][]GateCheck, len(ranked)),
		SectorTotal: make(map[models.Sector]float64),
	}
	out := make([]models.TradeSignal, len(ranked))

	for i, sig := range ranked {
		sig.RiskFlags = append([]string(nil), sig.RiskFlags...)
		checks := []GateCheck{g.positionCheck(sig)}

		if proxy, ok := sig.Route(models.RoutePublicProxy); ok {
			checks = append(checks, g.correlationCheck(proxy))
		}

		if sig.Recommendation.IsLong() {
			report.SectorTotal[sig.Sector] += sig.Position.MaxPct
			checks = append(checks, g.sectorCheck(sig.Sector, report.SectorTotal[sig.Sector]))
		}

		for _, c := range checks {
			if !c.Passed {
				sig.RiskFlags = append(sig.RiskFlags, c.Name+": "+c.Description)
			}
		}
		if len(sig.RiskFlags) > len(ranked[i].RiskFlags) {
			report.Flagged++
		}
		report.Checks[sig.CompanyID] = checks
		out[i] = sig
	}
	return out, report
}

// relation is the operator shown between a checked value and its limit
func relation(passed bool) string {
	if passed {
		return "≤"
	}
	return ">"
}

func (g *RiskGate) positionCheck(sig models.TradeSignal) GateCheck {
	passed := sig.Position.MaxPct <= g.limits.MaxPositionPct
	return GateCheck{
		Name:        GatePositionCap,
		Passed:      passed,
		Value:       sig.Position.MaxPct,
		Threshold:   g.limits.MaxPositionPct,
		Description: fmt.Sprintf("position %.1f%% %s %.1f%%", sig.Position.MaxPct, relation(passed), g.limits.MaxPositionPct),
	}
}

func (g *RiskGate) correlationCheck(proxy models.ExposureRoute) GateCheck {
	corr := math.Abs(proxy.Correlation)
	passed := corr <= g.limits.MaxCorrelation
	return GateCheck{
		Name:        GateProxyCorrelation,
		Passed:      passed,
		Value:       corr,
		Threshold:   g.limits.MaxCorrelation,
		Description: fmt.Sprintf("proxy %s |correlation| %.2f %s %.2f", proxy.Ticker, corr, relation(passed), g.limits.MaxCorrelation),
	}
}

func (g *RiskGate) sectorCheck(sector models.Sector, total float64) GateCheck {
	passed := total <= g.limits.MaxSectorPct
	return GateCheck{
		Name:        GateSectorConcentrate,
		Passed:      passed,
		Value:       total,
		Threshold:   g.limits.MaxSectorPct,
		Description: fmt.Sprintf("sector %s cumulative %.1f%% %s %.1f%%", sector, total, relation(passed), g.limits.MaxSectorPct),
	}
}

// Summary renders a one-line view of the report
func (r *GateReport) Summary() string {
	sectors := make([]string, 0, len(r.SectorTotal))
	for s := range r.SectorTotal {
		sectors = append(sectors, string(s))
	}
	sort.Strings(sectors)

	line := fmt.Sprintf("%d/%d signals flagged", r.Flagged, len(r.Checks))
	for _, s := range sectors {
		line += fmt.Sprintf(" | %s %.1f%%", s, r.SectorTotal[models.Sector(s)])
	}
	return line
}
