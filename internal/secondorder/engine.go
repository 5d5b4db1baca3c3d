// Package secondorder finds supplier exposure to high-momentum primaries:
// suppliers the primary depends on heavily whose prices have not yet moved
// with it.
package secondorder

import (
	"math"
	"sort"

	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

// EntryImmediate is the entry timing of every qualifying play
const EntryImmediate = "Immediate"

// Engine applies the second-order thresholds to a dependency graph
type Engine struct {
	thresholds config.SecondOrderThresholds
}

// NewEngine binds an engine to a validated configuration
func NewEngine(cfg config.PipelineConfig) *Engine {
	return &Engine{thresholds: cfg.SecondOrderThresholds}
}

// FindPlays needs the complete momentum set. A primary qualifies when its
// momentum exceeds primary_momentum; each of its edges with dependency above
// the dependency threshold and |correlation| below the correlation threshold
// becomes one play. A supplier reached from several primaries yields one play
// per primary. sectors maps company id to sector for sector-keyed edges.
//
// Plays are ordered by dependency minus |correlation| descending, then by
// primary momentum descending, primary id and supplier id.
func (e *Engine) FindPlays(momentum []models.MomentumScore, graph *Graph, sectors map[string]models.Sector) []models.SecondOrderPlay {
	plays := make([]models.SecondOrderPlay, 0)
	if graph == nil {
		return plays
	}

	for _, m := range momentum {
		if !(m.Momentum > e.thresholds.PrimaryMomentum) {
			continue
		}
		for _, edge := range graph.EdgesFor(m.CompanyID, sectors[m.CompanyID]) {
			if !e.qualifies(edge) {
				continue
			}
			plays = append(plays, models.SecondOrderPlay{
				PrimaryID:       m.CompanyID,
				PrimaryMomentum: m.Momentum,
				SupplierID:      edge.SupplierID,
				SupplierName:    edge.SupplierName,
				SupplierTicker:  edge.Ticker,
				ExposureType:    edge.Category,
				Dependency:      edge.Dependency,
				Correlation:     edge.Correlation,
				Thesis:          edge.Thesis,
				Action:          models.PlayActionBuy,
				EntryTiming:     EntryImmediate,
			})
		}
	}

	sort.SliceStable(plays, func(i, j int) bool {
		a, b := plays[i], plays[j]
		ea, eb := edgeQuality(a), edgeQuality(b)
		if ea != eb {
			return ea > eb
		}
		if a.PrimaryMomentum != b.PrimaryMomentum {
			return a.PrimaryMomentum > b.PrimaryMomentum
		}
		if a.PrimaryID != b.PrimaryID {
			return a.PrimaryID < b.PrimaryID
		}
		return a.SupplierID < b.SupplierID
	})
	return plays
}

func (e *Engine) qualifies(edge Edge) bool {
	return edge.Dependency > e.thresholds.Dependency &&
		math.Abs(edge.Correlation) < e.thresholds.Correlation
}

func edgeQuality(p models.SecondOrderPlay) float64 {
	return models.Round(p.Dependency-math.Abs(p.Correlation), 6)
}
