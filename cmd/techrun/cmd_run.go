package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/metrics"
	"github.com/sawpanic/techrun/internal/pipeline"
	"github.com/sawpanic/techrun/internal/report"
)

func runRun(cmd *cobra.Command, env config.Env) error {
	ctx := cmd.Context()
	fs := cmd.Flags()
	asOfRaw, _ := fs.GetString("as-of")
	outDir, _ := fs.GetString("out")
	formatRaw, _ := fs.GetString("format")
	top, _ := fs.GetInt("top")

	req, err := parseAsOfFlag(asOfRaw)
	if err != nil {
		return err
	}
	formats, err := report.ParseFormats(formatRaw)
	if err != nil {
		return err
	}

	st, err := buildStack(ctx, env, readDatasetFlags(cmd), readStorageFlags(cmd), nil, metrics.NewRegistry())
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := st.svc.Execute(ctx, req)
	if res == nil {
		return fmt.Errorf("run failed: %w", err)
	}
	if err != nil {
		log.Error().Err(err).Str("run_id", res.RunID).Msg("Run completed but was not stored")
	}

	printRun(cmd.OutOrStdout(), res, top)

	if outDir != "" {
		paths, err := report.Export(outDir, res, top, formats...)
		if err != nil {
			return err
		}
		for _, p := range []string{paths.JSON, paths.Markdown} {
			if p != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
			}
		}
	}
	return err
}

// printRun writes the run summary and the top signals as a table
func printRun(out io.Writer, res *pipeline.Result, top int) {
	s := res.Summary
	fmt.Fprintf(out, "Run %s  as of %s\n", res.RunID, res.AsOf.Format("2006-01-02"))
	fmt.Fprintf(out, "Companies: %d  Signals: %d  High conviction: %d  Avg momentum: %.1f  Second-order plays: %d  Warnings: %d\n\n",
		s.Companies, s.Signals, s.HighConviction, s.AverageMomentum, s.Plays, s.Warnings)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOMPANY\tSECTOR\tMOMENTUM\tMOAT\tDIVERGENCE\tREC\tCONVICTION\tPOSITION\tFLAGS")
	for _, sig := range res.Top(top, "") {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%.1f\t%s\t%s\t%.2f\t%s\t%d\n",
			sig.Rank, sig.CompanyName, sig.Sector, sig.Momentum, sig.Moat,
			sig.Divergence, sig.Recommendation, sig.Conviction, sig.Position, len(sig.RiskFlags))
	}
	tw.Flush()
	fmt.Fprintln(out)
}
