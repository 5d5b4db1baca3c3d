package catalyst

import (
	"fmt"
	"sort"
	"time"

	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/models"
)

const (
	maExitMinFunding = 100_000_000
	maExitMaxFunding = 500_000_000
	maExitSectorLift = 0.15
)

var highMASectors = map[models.Sector]bool{
	models.SectorCybersecurity: true,
	models.SectorDataInfra:     true,
	models.SectorBiotechInfra:  true,
}

// Predictor derives dated catalysts from leading-indicator fields. All dates
// are relative to the as-of time fixed at construction, so repeated calls on
// the same company return identical sequences.
type Predictor struct {
	leads        map[models.CatalystKind]config.CatalystLead
	arrThreshold float64
	asOf         time.Time
}

// NewPredictor binds a predictor to a validated configuration and an as-of time
func NewPredictor(cfg config.PipelineConfig, asOf time.Time) *Predictor {
	return &Predictor{
		leads:        cfg.CatalystLeads,
		arrThreshold: cfg.ARRThreshold,
		asOf:         asOf.UTC(),
	}
}

// Predict returns every catalyst the company's indicators support, sorted by
// estimated date then kind. Missing indicators produce no catalyst.
func (p *Predictor) Predict(c models.Company) []models.Catalyst {
	out := make([]models.Catalyst, 0, 6)

	for _, derive := range []func(models.Company) (models.Catalyst, bool){
		p.cfoHire,
		p.seriesDPlus,
		p.arrScale,
		p.patentGrant,
		p.ipoFiling,
		p.maExit,
	} {
		if cat, ok := derive(c); ok {
			cat.CompanyID = c.ID
			cat.Tier = ClassifyTier(cat.EstimatedDate, p.asOf)
			out = append(out, cat)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EstimatedDate.Equal(out[j].EstimatedDate) {
			return out[i].EstimatedDate.Before(out[j].EstimatedDate)
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// fromTable builds a catalyst using the lead table row for kind
func (p *Predictor) fromTable(kind models.CatalystKind, observed time.Time, indicator string) (models.Catalyst, bool) {
	lead, ok := p.leads[kind]
	if !ok {
		return models.Catalyst{}, false
	}
	observed = observed.UTC()
	estimated := observed.AddDate(0, lead.LeadMonths, 0)
	return models.Catalyst{
		Kind:          kind,
		ObservedAt:    observed,
		EstimatedDate: estimated,
		WindowStart:   estimated,
		WindowEnd:     estimated.AddDate(0, lead.WindowMonths, 0),
		Confidence:    lead.Confidence,
		Prob6M:        lead.Prob6M,
		Prob12M:       lead.Prob12M,
		Indicator:     indicator,
	}, true
}

func (p *Predictor) cfoHire(c models.Company) (models.Catalyst, bool) {
	var latest *models.ExecutiveHire
	for i := range c.ExecutiveHires {
		h := &c.ExecutiveHires[i]
		if !h.IsIPOSignal() || h.Date.IsZero() {
			continue
		}
		if latest == nil || h.Date.After(latest.Date) {
			latest = h
		}
	}
	if latest == nil {
		return models.Catalyst{}, false
	}
	indicator := fmt.Sprintf("%s hired %s", latest.Role, latest.Date.Format("2006-01-02"))
	if latest.Name != "" {
		indicator = fmt.Sprintf("%s (%s) hired %s", latest.Role, latest.Name, latest.Date.Format("2006-01-02"))
	}
	return p.fromTable(models.CatalystCFOHire, latest.Date, indicator)
}

func (p *Predictor) seriesDPlus(c models.Company) (models.Catalyst, bool) {
	var latest *models.FundingRound
	for i := range c.FundingRounds {
		r := &c.FundingRounds[i]
		if !r.IsSeriesDPlus() || r.Date.IsZero() {
			continue
		}
		if latest == nil || r.Date.After(latest.Date) {
			latest = r
		}
	}
	if latest == nil {
		return models.Catalyst{}, false
	}
	indicator := fmt.Sprintf("%s closed %s ($%.0fM)", latest.Stage, latest.Date.Format("2006-01-02"), latest.Amount/1_000_000)
	return p.fromTable(models.CatalystSeriesDPlus, latest.Date, indicator)
}

func (p *Predictor) arrScale(c models.Company) (models.Catalyst, bool) {
	if c.EstimatedARR < p.arrThreshold || p.arrThreshold <= 0 {
		return models.Catalyst{}, false
	}
	observed := p.asOf
	if c.ARRObservedAt != nil && !c.ARRObservedAt.IsZero() {
		observed = *c.ARRObservedAt
	}
	indicator := fmt.Sprintf("$%.0fM ARR (IPO-ready scale)", c.EstimatedARR/1_000_000)
	return p.fromTable(models.CatalystARRThreshold, observed, indicator)
}

func (p *Predictor) patentGrant(c models.Company) (models.Catalyst, bool) {
	if c.LatestPatentGrant == nil || c.LatestPatentGrant.IsZero() {
		return models.Catalyst{}, false
	}
	indicator := fmt.Sprintf("patent granted %s, product expected within window", c.LatestPatentGrant.Format("2006-01-02"))
	return p.fromTable(models.CatalystPatentGrant, *c.LatestPatentGrant, indicator)
}

// ipoFiling turns an explicit expected IPO date into a catalyst whose
// horizon probabilities fall off with distance from the as-of date
func (p *Predictor) ipoFiling(c models.Company) (models.Catalyst, bool) {
	if c.ExpectedIPODate == nil || c.ExpectedIPODate.IsZero() {
		return models.Catalyst{}, false
	}
	lead, ok := p.leads[models.CatalystIPOFiling]
	if !ok {
		return models.Catalyst{}, false
	}

	expected := c.ExpectedIPODate.UTC()
	prob := models.Clamp(c.IPOProbability, 0, 1)
	days := expected.Sub(p.asOf).Hours() / 24

	var p6, p12 float64
	switch {
	case days < 180:
		p6, p12 = prob, min(prob+0.15, 0.95)
	case days < 365:
		p6, p12 = prob*0.5, prob
	default:
		p6, p12 = prob*0.2, prob*0.6
	}

	return models.Catalyst{
		Kind:          models.CatalystIPOFiling,
		ObservedAt:    p.asOf,
		EstimatedDate: expected,
		WindowStart:   expected,
		WindowEnd:     expected.AddDate(0, lead.WindowMonths, 0),
		Confidence:    lead.Confidence,
		Prob6M:        models.Round(p6, 2),
		Prob12M:       models.Round(p12, 2),
		Indicator:     fmt.Sprintf("IPO expected %s at %.0f%% probability", expected.Format("2006-01"), prob*100),
	}, true
}

// maExit flags mid-stage companies, too funded to be early and too small
// for an IPO path, as acquisition candidates
func (p *Predictor) maExit(c models.Company) (models.Catalyst, bool) {
	if c.TotalFunding < maExitMinFunding || c.TotalFunding > maExitMaxFunding {
		return models.Catalyst{}, false
	}
	cat, ok := p.fromTable(models.CatalystMAExit, p.asOf, "mid-stage funding with strategic buyer interest")
	if !ok {
		return cat, false
	}
	if highMASectors[c.Sector] {
		cat.Confidence = models.Round(min(cat.Confidence+maExitSectorLift, 1), 2)
		cat.Indicator = fmt.Sprintf("mid-stage funding in high-M&A sector %s", c.Sector)
	}
	return cat, true
}
