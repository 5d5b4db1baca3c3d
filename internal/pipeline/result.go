package pipeline

import "github.com/sawpanic/techrun/internal/models"

// Signal returns the ranked signal for one company
func (r *Result) Signal(companyID string) (models.TradeSignal, bool) {
	for _, s := range r.Signals {
		if s.CompanyID == companyID {
			return s, true
		}
	}
	return models.TradeSignal{}, false
}

// Top returns at most n signals in rank order, optionally restricted to one
// recommendation. n <= 0 means no limit.
func (r *Result) Top(n int, rec models.Recommendation) []models.TradeSignal {
	out := make([]models.TradeSignal, 0, len(r.Signals))
	for _, s := range r.Signals {
		if rec != "" && s.Recommendation != rec {
			continue
		}
		out = append(out, s)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// PlaysFor returns the second-order plays whose primary is companyID
func (r *Result) PlaysFor(companyID string) []models.SecondOrderPlay {
	out := []models.SecondOrderPlay{}
	for _, p := range r.Plays {
		if p.PrimaryID == companyID {
			out = append(out, p)
		}
	}
	return out
}

// WarningsFor returns the recovered anomalies of one company
func (r *Result) WarningsFor(companyID string) []models.Warning {
	out := []models.Warning{}
	for _, w := range r.Warnings {
		if w.CompanyID == companyID {
			out = append(out, w)
		}
	}
	return out
}
