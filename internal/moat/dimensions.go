package moat

import "github.com/sawpanic/techrun/internal/models"

// Dimensions are the five per-dimension moat values in [0,100]
type Dimensions struct {
	Regulatory float64
	Network    float64
	Capital    float64
	Data       float64
	Switching  float64
}

func (d Dimensions) withOverrides(o *models.MoatOverrides) Dimensions {
	if o == nil {
		return d
	}
	if o.Regulatory != nil {
		d.Regulatory = *o.Regulatory
	}
	if o.NetworkEffects != nil {
		d.Network = *o.NetworkEffects
	}
	if o.CapitalIntense != nil {
		d.Capital = *o.CapitalIntense
	}
	if o.Data != nil {
		d.Data = *o.Data
	}
	if o.SwitchingCost != nil {
		d.Switching = *o.SwitchingCost
	}
	return d
}

func (d Dimensions) clamped() Dimensions {
	return Dimensions{
		Regulatory: models.ClampScore(d.Regulatory),
		Network:    models.ClampScore(d.Network),
		Capital:    models.ClampScore(d.Capital),
		Data:       models.ClampScore(d.Data),
		Switching:  models.ClampScore(d.Switching),
	}
}

// scaled maps v linearly from [lo,hi] onto [0,scale], clamped
func scaled(v, lo, hi, scale float64) float64 {
	if hi == lo {
		return 0
	}
	return models.Clamp((v-lo)/(hi-lo)*scale, 0, scale)
}

func regulatoryBoost(c models.Company) float64 {
	boost := 0.0
	if c.RegulatoryLicense {
		boost += 10
	}
	if c.DefenseContracts {
		boost += 15
	} else if c.GovernmentCustomers {
		boost += 8
	}
	if c.RegulatoryApprovals > 0 {
		boost += models.Clamp(float64(c.RegulatoryApprovals)*3, 0, 15)
	}
	return boost
}

func networkBoost(c models.Company) float64 {
	boost := scaled(float64(c.EnterpriseCustomers), 0, 100, 35)
	switch {
	case c.TotalFunding > 500_000_000:
		boost += 20
	case c.TotalFunding > 200_000_000:
		boost += 15
	case c.TotalFunding > 100_000_000:
		boost += 10
	}
	return boost
}

func capitalBoost(c models.Company) float64 {
	return scaled(c.TotalFunding, 0, 1_000_000_000, 15)
}

func dataBoost(c models.Company) float64 {
	return scaled(float64(c.EnterpriseCustomers), 0, 100, 25) +
		scaled(float64(c.PatentCount), 0, 100, 20)
}

func switchingBoost(c models.Company) float64 {
	boost := scaled(float64(c.EnterpriseCustomers), 0, 100, 30)
	switch {
	case c.TotalFunding > 300_000_000:
		boost += 25
	case c.TotalFunding > 150_000_000:
		boost += 15
	case c.TotalFunding > 75_000_000:
		boost += 10
	}
	return boost
}
