package models

import (
	"fmt"
	"strings"
	"time"
)

// Recommendation is the trade action attached to a signal
type Recommendation string

const (
	StrongBuy Recommendation = "STRONG_BUY"
	Buy       Recommendation = "BUY"
	Hold      Recommendation = "HOLD"
	Sell      Recommendation = "SELL"
	Fade      Recommendation = "FADE"
	Short     Recommendation = "SHORT"
)

// Recommendations lists the vocabulary in display order
var Recommendations = []Recommendation{StrongBuy, Buy, Hold, Sell, Fade, Short}

// ParseRecommendation matches a recommendation name case-insensitively
func ParseRecommendation(s string) (Recommendation, bool) {
	for _, r := range Recommendations {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// IsLong reports whether the recommendation opens a long position
func (r Recommendation) IsLong() bool {
	return r == StrongBuy || r == Buy
}

// PositionSize is a portfolio percentage range
type PositionSize struct {
	MinPct float64 `json:"min_pct"`
	MaxPct float64 `json:"max_pct"`
}

func (p PositionSize) String() string {
	return fmt.Sprintf("%.0f-%.0f%%", p.MinPct, p.MaxPct)
}

// RouteKind is the exposure vehicle type
type RouteKind string

const (
	RoutePublicProxy RouteKind = "public_proxy"
	RouteSecondary   RouteKind = "secondary_market"
	RouteSynthetic   RouteKind = "synthetic"
)

// ExposureRoute is one way to get exposure to a (usually private) company
type ExposureRoute struct {
	Kind        RouteKind `json:"kind"`
	Ticker      string    `json:"ticker,omitempty"`
	Correlation float64   `json:"correlation,omitempty"`
	Reference   string    `json:"reference"`
}

// TradeSignal is the ranked output of a run. Signals are rebuilt on every
// run and never mutated once ranked.
type TradeSignal struct {
	Rank           int             `json:"rank"`
	CompanyID      string          `json:"company_id"`
	CompanyName    string          `json:"company"`
	Sector         Sector          `json:"sector"`
	Momentum       float64         `json:"momentum_score"`
	Hype           float64         `json:"hype_score"`
	Build          float64         `json:"build_score"`
	Moat           float64         `json:"moat_score"`
	Divergence     DivergenceFlag  `json:"divergence_flag"`
	Conviction     float64         `json:"conviction"`
	Recommendation Recommendation  `json:"recommendation"`
	Position       PositionSize    `json:"position_size"`
	EntryTiming    string          `json:"entry_timing"`
	Routes         []ExposureRoute `json:"exposure_routes"`
	NextCatalyst   CatalystKind    `json:"next_catalyst,omitempty"`
	CatalystDate   *time.Time      `json:"catalyst_date,omitempty"`
	TimeHorizon    string          `json:"time_horizon"`
	ExpectedReturn string          `json:"expected_return"`
	RiskFactors    []string        `json:"risk_factors"`
	Tags           []string        `json:"tags,omitempty"`
	RiskFlags      []string        `json:"risk_flags,omitempty"`
}

// Route returns the first route of the given kind
func (s TradeSignal) Route(kind RouteKind) (ExposureRoute, bool) {
	for _, r := range s.Routes {
		if r.Kind == kind {
			return r, true
		}
	}
	return ExposureRoute{}, false
}
