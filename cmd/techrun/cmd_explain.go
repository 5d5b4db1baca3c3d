package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sawpanic/techrun/internal/catalyst"
	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/ingest"
	"github.com/sawpanic/techrun/internal/pipeline"
)

func runExplain(cmd *cobra.Command, env config.Env, companyID string) error {
	ds := readDatasetFlags(cmd)
	asOfRaw, _ := cmd.Flags().GetString("as-of")
	req, err := parseAsOfFlag(asOfRaw)
	if err != nil {
		return err
	}
	if req.AsOf.IsZero() {
		req.AsOf = time.Now().UTC()
	}

	cfg, err := config.Load(ds.ConfigPath)
	if err != nil {
		return err
	}
	data, err := ingest.LoadDir(ds.DataDir)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), cfg, pipeline.Input{
		Companies:   data.Companies,
		Graph:       data.Graph,
		Bottlenecks: data.Bottlenecks,
		AsOf:        req.AsOf,
		Workers:     ds.Workers,
	})
	if err != nil {
		return err
	}
	return explain(cmd.OutOrStdout(), res, companyID)
}

func explain(out io.Writer, res *pipeline.Result, id string) error {
	sig, ok := res.Signal(id)
	if !ok {
		return fmt.Errorf("company %q not found in dataset", id)
	}
	m := res.Momentum[id]
	moat := res.Moat[id]

	fmt.Fprintf(out, "%s (%s)  sector %s  as of %s\n\n", sig.CompanyName, id, sig.Sector, res.AsOf.Format("2006-01-02"))

	fmt.Fprintf(out, "Momentum %.2f  = hype %.2f / build %.2f  -> %s\n", m.Momentum, m.Hype, m.Build, m.Divergence)
	fmt.Fprintf(out, "Moat     %.2f  regulatory %.1f  network %.1f  capital %.1f  data %.1f  switching %.1f\n",
		moat.Total, moat.Regulatory, moat.NetworkEffects, moat.CapitalIntense, moat.Data, moat.SwitchingCost)
	fmt.Fprintf(out, "         durability %s  wave potential %s  rail owner %t\n\n", moat.Durability, moat.WavePotential, moat.RailOwner)

	fmt.Fprintf(out, "Signal   #%d %s  conviction %.4f  position %s\n", sig.Rank, sig.Recommendation, sig.Conviction, sig.Position)
	fmt.Fprintf(out, "         entry %s  horizon %s  expected %s\n", sig.EntryTiming, sig.TimeHorizon, sig.ExpectedReturn)
	for _, r := range sig.Routes {
		fmt.Fprintf(out, "         route %s: %s\n", r.Kind, r.Reference)
	}
	if len(sig.Tags) > 0 {
		fmt.Fprintf(out, "         tags %s\n", strings.Join(sig.Tags, ", "))
	}
	for _, f := range sig.RiskFlags {
		fmt.Fprintf(out, "         risk flag: %s\n", f)
	}
	fmt.Fprintln(out)

	reg := catalyst.NewRegistry(res.Catalysts, res.AsOf)
	cats := reg.ForCompany(id)
	fmt.Fprintf(out, "Catalysts (%d)\n", len(cats))
	if next, ok := reg.Next(id); ok {
		fmt.Fprintf(out, "  next: %s in %d days\n", next.Kind, catalyst.DaysUntil(next, res.AsOf))
	}
	for _, c := range cats {
		fmt.Fprintf(out, "  %-14s %s  [%s .. %s]  p6 %.2f  p12 %.2f  %s (%s)\n",
			c.Kind, c.EstimatedDate.Format("2006-01-02"),
			c.WindowStart.Format("2006-01-02"), c.WindowEnd.Format("2006-01-02"),
			c.Prob6M, c.Prob12M, c.Tier, catalyst.TierDescription(c.Tier))
	}

	plays := res.PlaysFor(id)
	if len(plays) > 0 {
		fmt.Fprintf(out, "\nSecond-order plays (%d)\n", len(plays))
		for _, p := range plays {
			fmt.Fprintf(out, "  %-8s %-28s dependency %.2f  correlation %.2f  %s\n",
				p.SupplierTicker, p.SupplierName, p.Dependency, p.Correlation, p.EntryTiming)
		}
	}

	if warnings := res.WarningsFor(id); len(warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings\n")
		for _, w := range warnings {
			fmt.Fprintf(out, "  %s: %s\n", w.Kind, w.Detail)
		}
	}
	return nil
}
