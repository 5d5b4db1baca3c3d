// Package report renders a completed run as JSON and Markdown documents.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sawpanic/techrun/internal/models"
	"github.com/sawpanic/techrun/internal/pipeline"
)

// DefaultTopN is the number of signals in the headline section
const DefaultTopN = 10

// DefaultTopPlays caps the second-order section of the Markdown report
const DefaultTopPlays = 5

// Document is the exported view of one run
type Document struct {
	RunID           string                      `json:"run_id"`
	ReportDate      time.Time                   `json:"report_date"`
	Summary         pipeline.Summary            `json:"summary"`
	TopSignals      []models.TradeSignal        `json:"top_momentum_plays"`
	Bottlenecks     []models.EmergingBottleneck `json:"emerging_bottlenecks"`
	SecondOrder     []models.SecondOrderPlay    `json:"second_order_plays"`
	Warnings        []models.Warning            `json:"warnings"`
	GateSummary     string                      `json:"risk_gates,omitempty"`
	TotalCompanies  int                         `json:"total_companies"`
	TotalCandidates int                         `json:"total_signals"`
}

// Build selects the top n signals of res; n <= 0 uses DefaultTopN
func Build(res *pipeline.Result, n int) Document {
	if n <= 0 {
		n = DefaultTopN
	}
	doc := Document{
		RunID:           res.RunID,
		ReportDate:      res.AsOf,
		Summary:         res.Summary,
		TopSignals:      res.Top(n, ""),
		Bottlenecks:     res.Bottlenecks,
		SecondOrder:     res.Plays,
		Warnings:        res.Warnings,
		TotalCompanies:  res.Summary.Companies,
		TotalCandidates: len(res.Signals),
	}
	if res.Gates != nil {
		doc.GateSummary = res.Gates.Summary()
	}
	return doc
}

// WriteJSON writes doc as indented JSON
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
