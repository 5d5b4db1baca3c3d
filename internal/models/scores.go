package models

import (
	"math"
	"time"
)

// DivergenceFlag classifies the (hype, build) pair
type DivergenceFlag string

const (
	ConfirmedMomentum    DivergenceFlag = "CONFIRMED_MOMENTUM"
	MispricedOpportunity DivergenceFlag = "MISPRICED_OPPORTUNITY"
	BubbleRisk           DivergenceFlag = "BUBBLE_RISK"
	NoSignal             DivergenceFlag = "NO_SIGNAL"
)

// MomentumScore is the dual-track momentum result for one company
type MomentumScore struct {
	CompanyID  string         `json:"company_id"`
	Hype       float64        `json:"hype_score"`
	Build      float64        `json:"build_score"`
	Momentum   float64        `json:"momentum_score"`
	Divergence DivergenceFlag `json:"divergence_flag"`
}

// Gap is the absolute hype/build spread
func (m MomentumScore) Gap() float64 {
	return math.Abs(m.Hype - m.Build)
}

// MoatScore is the five-dimension competitive durability result
type MoatScore struct {
	CompanyID      string       `json:"company_id"`
	Regulatory     float64      `json:"regulatory"`
	NetworkEffects float64      `json:"network_effects"`
	CapitalIntense float64      `json:"capital_intensity"`
	Data           float64      `json:"data"`
	SwitchingCost  float64      `json:"switching_cost"`
	Total          float64      `json:"total"`
	RailOwner      bool         `json:"rail_owner"`
	WavePotential  WaveCategory `json:"wave_potential"`
	Durability     string       `json:"durability"`
}

// CatalystKind enumerates the dated events the timing predictor emits
type CatalystKind string

const (
	CatalystCFOHire      CatalystKind = "CFO_HIRE"
	CatalystSeriesDPlus  CatalystKind = "SERIES_D_PLUS"
	CatalystARRThreshold CatalystKind = "ARR_THRESHOLD"
	CatalystPatentGrant  CatalystKind = "PATENT_GRANT"
	CatalystIPOFiling    CatalystKind = "IPO_FILING"
	CatalystMAExit       CatalystKind = "MA_EXIT"
)

// CatalystTier buckets a catalyst by distance from the run's as-of date
type CatalystTier string

const (
	TierElapsed  CatalystTier = "elapsed"
	TierImminent CatalystTier = "imminent"  // 0-7 days
	TierNearTerm CatalystTier = "near_term" // 7-30 days
	TierMedium   CatalystTier = "medium"    // 30-90 days
	TierDistant  CatalystTier = "distant"   // 90+ days
)

// Catalyst is a predicted event expected to convert momentum into a market event
type Catalyst struct {
	CompanyID     string       `json:"company_id"`
	Kind          CatalystKind `json:"kind"`
	ObservedAt    time.Time    `json:"observed_at"`
	EstimatedDate time.Time    `json:"estimated_date"`
	WindowStart   time.Time    `json:"window_start"`
	WindowEnd     time.Time    `json:"window_end"`
	Confidence    float64      `json:"confidence"`
	Prob6M        float64      `json:"probability_6m"`
	Prob12M       float64      `json:"probability_12m"`
	Tier          CatalystTier `json:"tier"`
	Indicator     string       `json:"indicator"`
}

// PlayAction is the recommended action on a second-order play
type PlayAction string

const (
	PlayActionBuy PlayAction = "MISPRICED_EXPOSURE_BUY"
)

// SecondOrderPlay is supplier exposure to a high-momentum primary
type SecondOrderPlay struct {
	PrimaryID       string     `json:"primary_company_id"`
	PrimaryMomentum float64    `json:"primary_momentum_score"`
	SupplierID      string     `json:"supplier_company_id"`
	SupplierName    string     `json:"supplier_name"`
	SupplierTicker  string     `json:"supplier_ticker,omitempty"`
	ExposureType    string     `json:"exposure_type,omitempty"`
	Dependency      float64    `json:"dependency"`
	Correlation     float64    `json:"price_correlation"`
	Thesis          string     `json:"thesis"`
	Action          PlayAction `json:"action"`
	EntryTiming     string     `json:"entry_timing"`
}

// EmergingBottleneck is produced by the discovery subsystem and passed
// through to the run output unchanged.
type EmergingBottleneck struct {
	Name             string       `json:"bottleneck_name" yaml:"bottleneck_name" validate:"required"`
	Description      string       `json:"description" yaml:"description"`
	Confidence       float64      `json:"confidence" yaml:"confidence"`
	Evidence         []string     `json:"evidence" yaml:"evidence"`
	PrivateCompanies []string     `json:"private_companies" yaml:"private_companies"`
	PublicProxies    []string     `json:"public_proxies" yaml:"public_proxies"`
	Wave             WaveCategory `json:"wave_classification" yaml:"wave_classification"`
	Sector           Sector       `json:"sector" yaml:"sector"`
	Priority         string       `json:"priority" yaml:"priority"`
}

// WarningKind names a recovered per-company anomaly
type WarningKind string

const (
	WarnUnknownSector WarningKind = "UnknownSector"
	WarnInvalidRange  WarningKind = "InvalidRange"
)

// Warning is a per-company anomaly that was recovered locally
type Warning struct {
	CompanyID string      `json:"company_id"`
	Kind      WarningKind `json:"kind"`
	Detail    string      `json:"detail"`
}
