package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sawpanic/techrun/internal/models"
)

// WriteMarkdown renders doc in the weekly-report layout
func WriteMarkdown(w io.Writer, doc Document) error {
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "# Tech Momentum Report\n")
	fmt.Fprintf(b, "**As of**: %s | **Run**: `%s`\n\n", doc.ReportDate.Format("January 02, 2006"), doc.RunID)

	fmt.Fprintf(b, "## Executive Summary\n\n")
	fmt.Fprintf(b, "- **Companies Scored**: %d\n", doc.TotalCompanies)
	fmt.Fprintf(b, "- **Signals Generated**: %d\n", doc.Summary.Signals)
	fmt.Fprintf(b, "- **High Conviction Plays**: %d\n", doc.Summary.HighConviction)
	fmt.Fprintf(b, "- **Average Momentum Score**: %.1f/100\n", doc.Summary.AverageMomentum)
	fmt.Fprintf(b, "- **Second-Order Plays**: %d\n", doc.Summary.Plays)
	for _, rec := range models.Recommendations {
		if n := doc.Summary.Recommendations[rec]; n > 0 {
			fmt.Fprintf(b, "- **%s**: %d\n", rec, n)
		}
	}
	if doc.GateSummary != "" {
		fmt.Fprintf(b, "- **Risk Gates**: %s\n", doc.GateSummary)
	}
	fmt.Fprintf(b, "\n---\n\n")

	fmt.Fprintf(b, "## Top %d Momentum Plays\n\n", len(doc.TopSignals))
	for _, s := range doc.TopSignals {
		writeSignal(b, s)
	}

	if len(doc.Bottlenecks) > 0 {
		fmt.Fprintf(b, "## Emerging Bottlenecks\n\n")
		for _, bn := range doc.Bottlenecks {
			fmt.Fprintf(b, "### %s\n", bn.Name)
			fmt.Fprintf(b, "**Sector**: %s | **Priority**: %s | **Confidence**: %.0f%%\n\n", bn.Sector, bn.Priority, bn.Confidence*100)
			if bn.Description != "" {
				fmt.Fprintf(b, "**Description:** %s\n\n", bn.Description)
			}
			for _, e := range bn.Evidence {
				fmt.Fprintf(b, "- %s\n", e)
			}
			if len(bn.PrivateCompanies) > 0 {
				fmt.Fprintf(b, "\n**Private Companies:** %s\n", strings.Join(firstN(bn.PrivateCompanies, 5), ", "))
			}
			if len(bn.PublicProxies) > 0 {
				fmt.Fprintf(b, "**Public Proxies:** %s\n", strings.Join(bn.PublicProxies, ", "))
			}
			fmt.Fprintf(b, "\n---\n\n")
		}
	}

	fmt.Fprintf(b, "## Second-Order Plays\n\n")
	if len(doc.SecondOrder) == 0 {
		fmt.Fprintf(b, "No primary cleared the momentum threshold this run.\n\n")
	}
	for i, p := range doc.SecondOrder {
		if i == DefaultTopPlays {
			break
		}
		fmt.Fprintf(b, "### %s\n", p.SupplierName)
		fmt.Fprintf(b, "**Ticker**: %s | **Exposure**: %s\n\n", p.SupplierTicker, p.ExposureType)
		fmt.Fprintf(b, "- Primary: %s (momentum %.1f/100)\n", p.PrimaryID, p.PrimaryMomentum)
		fmt.Fprintf(b, "- Dependency: %.0f%%\n", p.Dependency*100)
		fmt.Fprintf(b, "- Price Correlation: %.2f\n", p.Correlation)
		fmt.Fprintf(b, "- Entry Timing: %s\n", p.EntryTiming)
		if p.Thesis != "" {
			fmt.Fprintf(b, "\n**Thesis:** %s\n", p.Thesis)
		}
		fmt.Fprintf(b, "\n---\n\n")
	}

	if len(doc.Warnings) > 0 {
		fmt.Fprintf(b, "## Data Warnings\n\n")
		for _, w := range doc.Warnings {
			fmt.Fprintf(b, "- `%s` %s: %s\n", w.CompanyID, w.Kind, w.Detail)
		}
		fmt.Fprintf(b, "\n")
	}

	return b.Flush()
}

func writeSignal(b *bufio.Writer, s models.TradeSignal) {
	fmt.Fprintf(b, "### %d. %s\n", s.Rank, s.CompanyName)
	fmt.Fprintf(b, "**Sector**: %s | **Recommendation**: %s | **Divergence**: %s\n\n", s.Sector, s.Recommendation, s.Divergence)

	fmt.Fprintf(b, "**Momentum Metrics:**\n")
	fmt.Fprintf(b, "- Overall Momentum: **%.1f/100**\n", s.Momentum)
	fmt.Fprintf(b, "- Hype Score (Narrative): %.1f/100\n", s.Hype)
	fmt.Fprintf(b, "- Build Score (Execution): %.1f/100\n", s.Build)
	fmt.Fprintf(b, "- Moat Score: %.1f/100\n", s.Moat)
	fmt.Fprintf(b, "- Conviction: **%.0f%%**\n\n", s.Conviction*100)

	fmt.Fprintf(b, "**Investment Thesis:**\n")
	fmt.Fprintf(b, "- Position Size: %s\n", s.Position)
	fmt.Fprintf(b, "- Entry Timing: %s\n", s.EntryTiming)
	fmt.Fprintf(b, "- Expected Return: %s\n", s.ExpectedReturn)
	fmt.Fprintf(b, "- Time Horizon: %s\n\n", s.TimeHorizon)

	if len(s.Routes) > 0 {
		fmt.Fprintf(b, "**Exposure Routes:**\n")
		for _, r := range s.Routes {
			fmt.Fprintf(b, "- %s: %s\n", routeLabel(r.Kind), r.Reference)
		}
		fmt.Fprintf(b, "\n")
	}

	if s.CatalystDate != nil {
		fmt.Fprintf(b, "**Next Catalyst:** %s (%s)\n\n", s.NextCatalyst, s.CatalystDate.Format("2006-01-02"))
	}

	if len(s.RiskFactors) > 0 || len(s.RiskFlags) > 0 {
		fmt.Fprintf(b, "**Risk Factors:**\n")
		for _, r := range s.RiskFactors {
			fmt.Fprintf(b, "- %s\n", r)
		}
		for _, r := range s.RiskFlags {
			fmt.Fprintf(b, "- Gate: %s\n", r)
		}
		fmt.Fprintf(b, "\n")
	}
	fmt.Fprintf(b, "---\n\n")
}

func routeLabel(k models.RouteKind) string {
	switch k {
	case models.RoutePublicProxy:
		return "Public Proxy"
	case models.RouteSecondary:
		return "Pre-IPO"
	case models.RouteSynthetic:
		return "Synthetic"
	default:
		return string(k)
	}
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
