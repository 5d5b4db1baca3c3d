package http

import (
	"time"

	"github.com/sawpanic/techrun/internal/models"
	"github.com/sawpanic/techrun/internal/persistence"
	"github.com/sawpanic/techrun/internal/pipeline"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse reports liveness and the latest run
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
	LatestRunID string    `json:"latest_run_id,omitempty"`
	LatestAsOf  time.Time `json:"latest_as_of,omitempty"`
	WSClients   int       `json:"ws_clients"`

	Store *persistence.HealthCheck `json:"store,omitempty"`
}

// SummaryResponse is the headline view of a run
type SummaryResponse struct {
	RunID       string                      `json:"run_id"`
	ReportDate  time.Time                   `json:"report_date"`
	Summary     pipeline.Summary            `json:"summary"`
	TierCounts  map[models.CatalystTier]int `json:"catalyst_tiers"`
	RiskGates   string                      `json:"risk_gates,omitempty"`
	Bottlenecks int                         `json:"emerging_bottlenecks"`
}

// TriggerRunRequest is the optional body of POST /runs
type TriggerRunRequest struct {
	AsOf string `json:"as_of,omitempty"` // YYYY-MM-DD or RFC3339
}

// TriggerRunResponse acknowledges a completed run
type TriggerRunResponse struct {
	RunID      string           `json:"run_id"`
	AsOf       time.Time        `json:"as_of"`
	Summary    pipeline.Summary `json:"summary"`
	StoreError string           `json:"store_error,omitempty"`
}

// SignalsResponse is a filtered slice of ranked signals
type SignalsResponse struct {
	RunID   string               `json:"run_id"`
	Count   int                  `json:"count"`
	Signals []models.TradeSignal `json:"signals"`
}

// CompanyResponse is everything a run knows about one company
type CompanyResponse struct {
	RunID     string                   `json:"run_id"`
	Signal    models.TradeSignal       `json:"signal"`
	Momentum  models.MomentumScore     `json:"momentum"`
	Moat      models.MoatScore         `json:"moat"`
	Catalysts []models.Catalyst        `json:"catalysts"`
	Plays     []models.SecondOrderPlay `json:"second_order_plays"`

	NextCatalyst *models.Catalyst `json:"next_catalyst,omitempty"`
	Warnings  []models.Warning         `json:"warnings"`
	History   []persistence.SignalRow  `json:"history"`
}

// CatalystsResponse lists catalysts matching a query
type CatalystsResponse struct {
	RunID     string            `json:"run_id"`
	AsOf      time.Time         `json:"as_of"`
	Count     int               `json:"count"`
	Catalysts []models.Catalyst `json:"catalysts"`
}
