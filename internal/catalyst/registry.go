package catalyst

import (
	"sort"
	"time"

	"github.com/sawpanic/techrun/internal/models"
)

// Registry indexes a run's catalysts by company for query-time filtering
type Registry struct {
	events map[string][]models.Catalyst // company id -> catalysts
	asOf   time.Time
	decay  TierDecayConfig
}

// NewRegistry indexes catalysts keyed by company id
func NewRegistry(byCompany map[string][]models.Catalyst, asOf time.Time) *Registry {
	events := make(map[string][]models.Catalyst, len(byCompany))
	for id, cats := range byCompany {
		own := append([]models.Catalyst(nil), cats...)
		sortCatalysts(own)
		events[id] = own
	}
	return &Registry{events: events, asOf: asOf, decay: DefaultTierDecayConfig()}
}

// ForCompany returns the catalysts for one company in estimated-date order
func (r *Registry) ForCompany(id string) []models.Catalyst {
	return r.events[id]
}

// Next returns the earliest catalyst not yet elapsed
func (r *Registry) Next(id string) (models.Catalyst, bool) {
	return NextUpcoming(r.events[id], r.asOf)
}

// Filter selects catalysts matching the optional kind/tier and within horizon
// days of asOf (0 means no horizon). Results are ordered by estimated date,
// then company id, then kind.
func (r *Registry) Filter(kind models.CatalystKind, tier models.CatalystTier, horizonDays int) []models.Catalyst {
	out := make([]models.Catalyst, 0)
	limit := r.asOf.Add(time.Duration(horizonDays) * day)
	for _, cats := range r.events {
		for _, c := range cats {
			if kind != "" && c.Kind != kind {
				continue
			}
			if tier != "" && c.Tier != tier {
				continue
			}
			if horizonDays > 0 && (c.EstimatedDate.Before(r.asOf) || c.EstimatedDate.After(limit)) {
				continue
			}
			out = append(out, c)
		}
	}
	sortCatalysts(out)
	return out
}

// ByUrgency returns every catalyst ordered by decayed urgency, highest first
func (r *Registry) ByUrgency() []models.Catalyst {
	type weighted struct {
		cat     models.Catalyst
		urgency float64
	}
	all := r.Filter("", "", 0)
	ranked := make([]weighted, len(all))
	for i, c := range all {
		ranked[i] = weighted{cat: c, urgency: r.decay.Urgency(c, r.asOf)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].urgency > ranked[j].urgency
	})

	out := make([]models.Catalyst, len(ranked))
	for i, w := range ranked {
		out[i] = w.cat
	}
	return out
}

// TierCounts counts catalysts per tier
func (r *Registry) TierCounts() map[models.CatalystTier]int {
	counts := make(map[models.CatalystTier]int)
	for _, cats := range r.events {
		for _, c := range cats {
			counts[c.Tier]++
		}
	}
	return counts
}

// NextUpcoming returns the earliest catalyst on or after asOf
func NextUpcoming(cats []models.Catalyst, asOf time.Time) (models.Catalyst, bool) {
	var best models.Catalyst
	found := false
	for _, c := range cats {
		if c.EstimatedDate.Before(asOf) {
			continue
		}
		if !found || c.EstimatedDate.Before(best.EstimatedDate) ||
			(c.EstimatedDate.Equal(best.EstimatedDate) && c.Kind < best.Kind) {
			best = c
			found = true
		}
	}
	return best, found
}

func sortCatalysts(cats []models.Catalyst) {
	sort.SliceStable(cats, func(i, j int) bool {
		a, b := cats[i], cats[j]
		if !a.EstimatedDate.Equal(b.EstimatedDate) {
			return a.EstimatedDate.Before(b.EstimatedDate)
		}
		if a.CompanyID != b.CompanyID {
			return a.CompanyID < b.CompanyID
		}
		return a.Kind < b.Kind
	})
}
